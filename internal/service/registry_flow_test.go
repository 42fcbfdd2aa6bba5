package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-cert-api/internal/models"
)

// fullCourseRepo backs both the catalog and the enrollment transition in
// the flow test below.
type fullCourseRepo struct {
	courses map[int64]*models.Course
	roster  map[int64][]string
	nextID  int64
}

func newFullCourseRepo() *fullCourseRepo {
	return &fullCourseRepo{courses: make(map[int64]*models.Course), roster: make(map[int64][]string)}
}

func (m *fullCourseRepo) Create(ctx context.Context, course *models.Course) (*models.Event, error) {
	m.nextID++
	course.ID = m.nextID
	copied := *course
	m.courses[course.ID] = &copied
	return &models.Event{Type: models.EventCourseCreated}, nil
}

func (m *fullCourseRepo) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	course, ok := m.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *course
	return &copied, nil
}

func (m *fullCourseRepo) SetStatus(ctx context.Context, id int64, active bool) error {
	if course, ok := m.courses[id]; ok {
		course.Active = active
	}
	return nil
}

func (m *fullCourseRepo) Roster(ctx context.Context, courseID int64) ([]models.CourseRosterEntry, error) {
	entries := make([]models.CourseRosterEntry, 0, len(m.roster[courseID]))
	for _, student := range m.roster[courseID] {
		entries = append(entries, models.CourseRosterEntry{Student: student})
	}
	return entries, nil
}

func (m *fullCourseRepo) IsEnrolled(ctx context.Context, courseID int64, student string) (bool, error) {
	for _, s := range m.roster[courseID] {
		if s == student {
			return true, nil
		}
	}
	return false, nil
}

func (m *fullCourseRepo) EnrollStudent(ctx context.Context, course *models.Course, student string, amount int64, transfer func(context.Context) error) (*models.Event, error) {
	if err := transfer(ctx); err != nil {
		return nil, err
	}
	m.roster[course.ID] = append(m.roster[course.ID], student)
	return &models.Event{Type: models.EventStudentEnrolledInCourse}, nil
}

// TestRegistryLifecycle walks the whole happy path: role grant, student
// enrollment, course creation, paid course enrollment, completion, and
// certificate issuance.
func TestRegistryLifecycle(t *testing.T) {
	ctx := context.Background()
	publisher := &capturingPublisher{}
	transfer := &recordingTransferrer{}

	instructorRepo := newMockInstructorRepo()
	studentRepo := newMockStudentRepo()
	courseRepo := newFullCourseRepo()
	certificateRepo := newMockCertificateRepo()

	roles := NewRoleService(instructorRepo, "admin", publisher, zap.NewNop())
	students := NewStudentService(studentRepo, courseRepo, publisher, nil, zap.NewNop())
	courses := NewCourseService(courseRepo, instructorRepo, nil, "admin", publisher, nil, zap.NewNop())
	enrollments := NewEnrollmentService(courseRepo, studentRepo, transfer, publisher, zap.NewNop())
	certificates := NewCertificateService(certificateRepo, studentRepo, courseRepo, instructorRepo, nil, nil, publisher, nil, zap.NewNop())

	require.NoError(t, roles.AuthorizeInstructor(ctx, "admin", "bob"))

	_, err := students.Enroll(ctx, "alice", EnrollRequest{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)

	course, err := courses.CreateCourse(ctx, "bob", CreateCourseRequest{Name: "Distributed Systems", Credits: 4, Fee: 1200})
	require.NoError(t, err)

	_, err = enrollments.EnrollInCourse(ctx, "alice", course.ID, 1200)
	require.NoError(t, err)
	assert.Equal(t, "bob", transfer.lastPayee)

	require.NoError(t, students.MarkCourseCompleted(ctx, "bob", "alice", course.ID))

	cert, err := certificates.IssueCertificate(ctx, "bob", IssueCertificateRequest{Student: "alice", CourseID: course.ID})
	require.NoError(t, err)

	valid, err := certificates.VerifyCertificate(ctx, cert.ID)
	require.NoError(t, err)
	assert.True(t, valid)

	ids, err := certificates.StudentCertificates(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []int64{cert.ID}, ids)

	types := make([]string, 0, len(publisher.events))
	for _, event := range publisher.events {
		types = append(types, event.Type)
	}
	assert.Equal(t, []string{
		models.EventInstructorAuthorized,
		models.EventStudentEnrolled,
		models.EventCourseCreated,
		models.EventStudentEnrolledInCourse,
		models.EventCertificateIssued,
	}, types)
}
