package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-cert-api/internal/models"
	appErrors "github.com/noah-isme/edu-cert-api/pkg/errors"
)

// mockEnrollmentRepo mimics the transactional roster append: the transfer
// callback runs first and a failure leaves the roster untouched.
type mockEnrollmentRepo struct {
	courses map[int64]*models.Course
	roster  map[int64][]string
}

func newMockEnrollmentRepo(courses ...*models.Course) *mockEnrollmentRepo {
	repo := &mockEnrollmentRepo{courses: make(map[int64]*models.Course), roster: make(map[int64][]string)}
	for _, c := range courses {
		repo.courses[c.ID] = c
	}
	return repo
}

func (m *mockEnrollmentRepo) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	course, ok := m.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return course, nil
}

func (m *mockEnrollmentRepo) IsEnrolled(ctx context.Context, courseID int64, student string) (bool, error) {
	for _, s := range m.roster[courseID] {
		if s == student {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockEnrollmentRepo) EnrollStudent(ctx context.Context, course *models.Course, student string, amount int64, transfer func(context.Context) error) (*models.Event, error) {
	if err := transfer(ctx); err != nil {
		return nil, err
	}
	m.roster[course.ID] = append(m.roster[course.ID], student)
	return &models.Event{Type: models.EventStudentEnrolledInCourse}, nil
}

type stubStudentReader struct {
	students map[string]*models.Student
}

func (s *stubStudentReader) FindByPrincipal(ctx context.Context, principal string) (*models.Student, error) {
	student, ok := s.students[principal]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return student, nil
}

type recordingTransferrer struct {
	err       error
	calls     int
	lastPayer string
	lastPayee string
	lastAmt   int64
}

func (r *recordingTransferrer) Transfer(ctx context.Context, payer, payee string, amount int64) error {
	r.calls++
	r.lastPayer = payer
	r.lastPayee = payee
	r.lastAmt = amount
	return r.err
}

func enrollmentFixture(t *testing.T, transfer *recordingTransferrer) (*EnrollmentService, *mockEnrollmentRepo, *capturingPublisher) {
	t.Helper()
	courses := newMockEnrollmentRepo(&models.Course{ID: 1, Name: "Algebra", Instructor: "bob", Fee: 500, Active: true})
	students := &stubStudentReader{students: map[string]*models.Student{
		"alice": {Principal: "alice", Enrolled: true},
	}}
	publisher := &capturingPublisher{}
	svc := NewEnrollmentService(courses, students, transfer, publisher, zap.NewNop())
	return svc, courses, publisher
}

func TestEnrollInCourseHappyPath(t *testing.T) {
	transfer := &recordingTransferrer{}
	svc, repo, publisher := enrollmentFixture(t, transfer)

	enrollment, err := svc.EnrollInCourse(context.Background(), "alice", 1, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(1), enrollment.CourseID)
	assert.Equal(t, int64(500), enrollment.PaidAmount)

	assert.Equal(t, []string{"alice"}, repo.roster[1])
	assert.Equal(t, 1, transfer.calls)
	assert.Equal(t, "alice", transfer.lastPayer)
	assert.Equal(t, "bob", transfer.lastPayee)
	assert.Equal(t, int64(500), transfer.lastAmt)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, models.EventStudentEnrolledInCourse, publisher.events[0].Type)
}

func TestEnrollInCourseRequiresStudentRecord(t *testing.T) {
	transfer := &recordingTransferrer{}
	svc, _, _ := enrollmentFixture(t, transfer)

	_, err := svc.EnrollInCourse(context.Background(), "ghost", 1, 500)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrStudentNotEnrolled))
	assert.Zero(t, transfer.calls)
}

func TestEnrollInCourseRejectsInactiveCourse(t *testing.T) {
	courses := newMockEnrollmentRepo(&models.Course{ID: 1, Instructor: "bob", Fee: 500, Active: false})
	students := &stubStudentReader{students: map[string]*models.Student{"alice": {Principal: "alice", Enrolled: true}}}
	svc := NewEnrollmentService(courses, students, &recordingTransferrer{}, &capturingPublisher{}, zap.NewNop())

	_, err := svc.EnrollInCourse(context.Background(), "alice", 1, 500)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrCourseUnavailable))
}

func TestEnrollInCourseUnknownCourse(t *testing.T) {
	svc, _, _ := enrollmentFixture(t, &recordingTransferrer{})

	_, err := svc.EnrollInCourse(context.Background(), "alice", 99, 500)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrCourseUnavailable))
}

func TestEnrollInCourseRejectsUnderpayment(t *testing.T) {
	transfer := &recordingTransferrer{}
	svc, repo, publisher := enrollmentFixture(t, transfer)

	_, err := svc.EnrollInCourse(context.Background(), "alice", 1, 499)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInsufficientPayment))
	assert.Zero(t, transfer.calls)
	assert.Empty(t, repo.roster[1])
	assert.Empty(t, publisher.events)
}

func TestEnrollInCourseRejectsDoubleEnrollment(t *testing.T) {
	transfer := &recordingTransferrer{}
	svc, repo, _ := enrollmentFixture(t, transfer)

	_, err := svc.EnrollInCourse(context.Background(), "alice", 1, 500)
	require.NoError(t, err)

	_, err = svc.EnrollInCourse(context.Background(), "alice", 1, 500)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Len(t, repo.roster[1], 1)
	assert.Equal(t, 1, transfer.calls, "rejected attempt must not pay twice")
}

func TestEnrollInCourseTransferFailureLeavesNoTrace(t *testing.T) {
	transfer := &recordingTransferrer{err: errors.New("gateway timeout")}
	svc, repo, publisher := enrollmentFixture(t, transfer)

	_, err := svc.EnrollInCourse(context.Background(), "alice", 1, 500)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrPaymentFailed))
	assert.Empty(t, repo.roster[1], "failed transfer must roll back the roster append")
	assert.Empty(t, publisher.events, "no event may fire for a rejected transition")
}
