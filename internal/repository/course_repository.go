package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/edu-cert-api/internal/models"
)

// CourseRepository persists catalog entries and course rosters.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// Create assigns the next sequential course id and inserts the catalog
// entry, appending the CourseCreated event in the same transaction.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) (*models.Event, error) {
	if course.CreatedAt.IsZero() {
		course.CreatedAt = time.Now().UTC()
	}
	course.Active = true

	var event *models.Event
	err := runTx(ctx, r.db, func(tx *sqlx.Tx) error {
		id, err := nextSequence(ctx, tx, "courses")
		if err != nil {
			return err
		}
		course.ID = id

		const query = `INSERT INTO courses (id, name, description, instructor_principal, credits, fee, active, created_at)
        VALUES (:id, :name, :description, :instructor_principal, :credits, :fee, :active, :created_at)`
		if _, err := sqlx.NamedExecContext(ctx, tx, query, course); err != nil {
			return fmt.Errorf("create course: %w", err)
		}

		event, err = appendEvent(ctx, tx, models.EventCourseCreated, map[string]interface{}{
			"course_id":  course.ID,
			"name":       course.Name,
			"instructor": course.Instructor,
			"fee":        course.Fee,
			"timestamp":  course.CreatedAt,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// FindByID returns a course by id.
func (r *CourseRepository) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	const query = `SELECT id, name, description, instructor_principal, credits, fee, active, created_at
        FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// SetStatus toggles the active flag. The update is deliberately permissive:
// a missing course id affects zero rows and is still a success.
func (r *CourseRepository) SetStatus(ctx context.Context, id int64, active bool) error {
	const query = `UPDATE courses SET active = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, active); err != nil {
		return fmt.Errorf("set course status: %w", err)
	}
	return nil
}

// IsEnrolled reports roster membership for (course, student).
func (r *CourseRepository) IsEnrolled(ctx context.Context, courseID int64, student string) (bool, error) {
	const query = `SELECT 1 FROM course_enrollments WHERE course_id = $1 AND student_principal = $2`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, courseID, student); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check roster: %w", err)
	}
	return true, nil
}

// EnrollStudent appends the student to the course roster and runs the
// value transfer inside the same transaction. If the transfer fails the
// roster insert rolls back: no append without payment, no payment without
// the append committing.
func (r *CourseRepository) EnrollStudent(ctx context.Context, course *models.Course, student string, amount int64, transfer func(context.Context) error) (*models.Event, error) {
	now := time.Now().UTC()

	var event *models.Event
	err := runTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const query = `INSERT INTO course_enrollments (course_id, student_principal, paid_amount, enrolled_at)
        VALUES ($1, $2, $3, $4)`
		if _, err := tx.ExecContext(ctx, query, course.ID, student, amount, now); err != nil {
			return fmt.Errorf("append roster: %w", err)
		}

		if err := transfer(ctx); err != nil {
			return err
		}

		var err error
		event, err = appendEvent(ctx, tx, models.EventStudentEnrolledInCourse, map[string]interface{}{
			"course_id": course.ID,
			"student":   student,
			"amount":    amount,
			"payee":     course.Instructor,
			"timestamp": now,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// Roster returns the course roster in enrollment order, with student
// context where a record exists.
func (r *CourseRepository) Roster(ctx context.Context, courseID int64) ([]models.CourseRosterEntry, error) {
	const query = `SELECT e.student_principal, COALESCE(s.full_name, '') AS full_name,
        COALESCE(s.email, '') AS email, e.paid_amount, e.enrolled_at
        FROM course_enrollments e
        LEFT JOIN students s ON s.principal = e.student_principal
        WHERE e.course_id = $1 ORDER BY e.seq`
	var roster []models.CourseRosterEntry
	if err := r.db.SelectContext(ctx, &roster, query, courseID); err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	return roster, nil
}
