package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-cert-api/internal/models"
	appErrors "github.com/noah-isme/edu-cert-api/pkg/errors"
	"github.com/noah-isme/edu-cert-api/pkg/export"
	"github.com/noah-isme/edu-cert-api/pkg/storage"
)

type mockCertificateRepo struct {
	certificates map[int64]*models.Certificate
	byStudent    map[string][]int64
	nextID       int64
	createCalls  int
}

func newMockCertificateRepo() *mockCertificateRepo {
	return &mockCertificateRepo{
		certificates: make(map[int64]*models.Certificate),
		byStudent:    make(map[string][]int64),
	}
}

func (m *mockCertificateRepo) Create(ctx context.Context, cert *models.Certificate) (*models.Event, error) {
	m.createCalls++
	m.nextID++
	cert.ID = m.nextID
	copied := *cert
	m.certificates[cert.ID] = &copied
	m.byStudent[cert.Student] = append(m.byStudent[cert.Student], cert.ID)
	return &models.Event{Type: models.EventCertificateIssued}, nil
}

func (m *mockCertificateRepo) FindByID(ctx context.Context, id int64) (*models.Certificate, error) {
	cert, ok := m.certificates[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return cert, nil
}

func (m *mockCertificateRepo) IDsByStudent(ctx context.Context, student string) ([]int64, error) {
	ids := m.byStudent[student]
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

type certificateFixture struct {
	svc       *CertificateService
	repo      *mockCertificateRepo
	students  *mockStudentRepo
	publisher *capturingPublisher
}

func newCertificateFixture(t *testing.T) *certificateFixture {
	t.Helper()
	repo := newMockCertificateRepo()
	students := newMockStudentRepo()
	students.students["alice"] = &models.Student{Principal: "alice", FullName: "Alice", Enrolled: true}
	students.completions["alice"] = map[int64]bool{1: true}
	courses := &mockCourseReader{courses: map[int64]*models.Course{
		1: {ID: 1, Name: "Algebra", Instructor: "bob", Credits: 3, Active: true},
		2: {ID: 2, Name: "Retired", Instructor: "bob", Credits: 2, Active: false},
	}}
	checker := &stubInstructorChecker{authorized: map[string]bool{"bob": true, "carol": true}}
	publisher := &capturingPublisher{}
	signer := storage.NewShareTokenSigner("share-secret", time.Hour)
	svc := NewCertificateService(repo, students, courses, checker, signer, export.NewPDFExporter(), publisher, nil, zap.NewNop())
	return &certificateFixture{svc: svc, repo: repo, students: students, publisher: publisher}
}

func TestIssueCertificateHappyPath(t *testing.T) {
	f := newCertificateFixture(t)

	cert, err := f.svc.IssueCertificate(context.Background(), "bob", IssueCertificateRequest{Student: "alice", CourseID: 1, ContentRef: "ipfs://abc"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), cert.ID)
	assert.Equal(t, "Algebra", cert.CourseName, "course name is snapshotted at issuance")
	assert.True(t, cert.Valid)
	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, models.EventCertificateIssued, f.publisher.events[0].Type)
}

func TestIssueCertificateRequiresInstructorRole(t *testing.T) {
	f := newCertificateFixture(t)

	_, err := f.svc.IssueCertificate(context.Background(), "alice", IssueCertificateRequest{Student: "alice", CourseID: 1})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
	assert.Zero(t, f.repo.createCalls)
}

func TestIssueCertificateRequiresOwnership(t *testing.T) {
	f := newCertificateFixture(t)

	_, err := f.svc.IssueCertificate(context.Background(), "carol", IssueCertificateRequest{Student: "alice", CourseID: 1})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestIssueCertificateRequiresStudentRecord(t *testing.T) {
	f := newCertificateFixture(t)

	_, err := f.svc.IssueCertificate(context.Background(), "bob", IssueCertificateRequest{Student: "ghost", CourseID: 1})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrStudentNotEnrolled))
}

func TestIssueCertificateRejectsInactiveCourse(t *testing.T) {
	f := newCertificateFixture(t)

	_, err := f.svc.IssueCertificate(context.Background(), "bob", IssueCertificateRequest{Student: "alice", CourseID: 2})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrCourseUnavailable))
}

func TestIssueCertificateRequiresCompletion(t *testing.T) {
	f := newCertificateFixture(t)
	f.students.completions["alice"] = nil

	_, err := f.svc.IssueCertificate(context.Background(), "bob", IssueCertificateRequest{Student: "alice", CourseID: 1})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrCourseNotCompleted))
	assert.Zero(t, f.repo.createCalls, "rejected issuance must not consume an id")
	assert.Empty(t, f.publisher.events)
}

func TestVerifyCertificateUnknownID(t *testing.T) {
	f := newCertificateFixture(t)

	valid, err := f.svc.VerifyCertificate(context.Background(), 404)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestVerifyCertificateIssued(t *testing.T) {
	f := newCertificateFixture(t)
	cert, err := f.svc.IssueCertificate(context.Background(), "bob", IssueCertificateRequest{Student: "alice", CourseID: 1})
	require.NoError(t, err)

	valid, err := f.svc.VerifyCertificate(context.Background(), cert.ID)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestStudentCertificatesUnknownStudentEmpty(t *testing.T) {
	f := newCertificateFixture(t)

	ids, err := f.svc.StudentCertificates(context.Background(), "ghost")
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)
}

func TestShareLinkRoundTrip(t *testing.T) {
	f := newCertificateFixture(t)
	cert, err := f.svc.IssueCertificate(context.Background(), "bob", IssueCertificateRequest{Student: "alice", CourseID: 1})
	require.NoError(t, err)

	token, expiresAt, err := f.svc.ShareLink(context.Background(), cert.ID)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	resolved, err := f.svc.ResolveShareToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, cert.ID, resolved.ID)
}

func TestShareLinkUnknownCertificate(t *testing.T) {
	f := newCertificateFixture(t)

	_, _, err := f.svc.ShareLink(context.Background(), 404)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestResolveShareTokenRejectsGarbage(t *testing.T) {
	f := newCertificateFixture(t)

	_, err := f.svc.ResolveShareToken(context.Background(), "not-a-token")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestRenderPDFProducesDocument(t *testing.T) {
	f := newCertificateFixture(t)
	cert, err := f.svc.IssueCertificate(context.Background(), "bob", IssueCertificateRequest{Student: "alice", CourseID: 1})
	require.NoError(t, err)

	payload, err := f.svc.RenderPDF(context.Background(), cert.ID)
	require.NoError(t, err)
	require.NotEmpty(t, payload)
	assert.Equal(t, "%PDF", string(payload[:4]))
}
