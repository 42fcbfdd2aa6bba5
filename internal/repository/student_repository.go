package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/edu-cert-api/internal/models"
)

// ErrDuplicateStudent surfaces a unique violation on the students table.
// The service layer pre-checks, but the primary key is the last line of
// defence for record uniqueness.
var ErrDuplicateStudent = fmt.Errorf("student record already exists")

// StudentRepository persists student records, completion flags, and the
// per-student course list.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByPrincipal returns the student record for a principal.
func (r *StudentRepository) FindByPrincipal(ctx context.Context, principal string) (*models.Student, error) {
	const query = `SELECT principal, full_name, email, enrolled, enrolled_at FROM students WHERE principal = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, principal); err != nil {
		return nil, err
	}
	return &student, nil
}

// Create inserts a student record, advances the students counter, and
// appends the StudentEnrolled event — all in one transaction.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) (*models.Event, error) {
	if student.EnrolledAt.IsZero() {
		student.EnrolledAt = time.Now().UTC()
	}
	student.Enrolled = true

	var event *models.Event
	err := runTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const query = `INSERT INTO students (principal, full_name, email, enrolled, enrolled_at)
        VALUES (:principal, :full_name, :email, :enrolled, :enrolled_at)`
		if _, err := sqlx.NamedExecContext(ctx, tx, query, student); err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
				return ErrDuplicateStudent
			}
			return fmt.Errorf("create student: %w", err)
		}
		if _, err := nextSequence(ctx, tx, "students"); err != nil {
			return err
		}
		var err error
		event, err = appendEvent(ctx, tx, models.EventStudentEnrolled, map[string]interface{}{
			"principal": student.Principal,
			"name":      student.FullName,
			"timestamp": student.EnrolledAt,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// MarkCompleted sets the completion flag for (student, course). The insert
// is idempotent and deliberately does not require the student record to
// exist.
func (r *StudentRepository) MarkCompleted(ctx context.Context, student string, courseID int64) error {
	const query = `INSERT INTO course_completions (student_principal, course_id, completed_at)
        VALUES ($1, $2, $3) ON CONFLICT (student_principal, course_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, student, courseID, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark completion: %w", err)
	}
	return nil
}

// HasCompleted reports whether the completion flag is set.
func (r *StudentRepository) HasCompleted(ctx context.Context, student string, courseID int64) (bool, error) {
	const query = `SELECT 1 FROM course_completions WHERE student_principal = $1 AND course_id = $2`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, student, courseID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check completion: %w", err)
	}
	return true, nil
}

// EnrolledCourses returns the student's course enrollments in enrollment
// order.
func (r *StudentRepository) EnrolledCourses(ctx context.Context, student string) ([]models.CourseEnrollment, error) {
	const query = `SELECT course_id, student_principal, seq, paid_amount, enrolled_at
        FROM course_enrollments WHERE student_principal = $1 ORDER BY seq`
	var enrollments []models.CourseEnrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, student); err != nil {
		return nil, fmt.Errorf("list enrolled courses: %w", err)
	}
	return enrollments, nil
}
