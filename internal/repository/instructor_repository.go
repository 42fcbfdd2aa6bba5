package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/edu-cert-api/internal/models"
)

// InstructorRepository persists the authorized-instructor role set.
type InstructorRepository struct {
	db *sqlx.DB
}

// NewInstructorRepository constructs the repository.
func NewInstructorRepository(db *sqlx.DB) *InstructorRepository {
	return &InstructorRepository{db: db}
}

// Authorize grants the instructor role. Re-authorizing an existing
// instructor is a no-op success and emits nothing; the returned event is
// nil in that case.
func (r *InstructorRepository) Authorize(ctx context.Context, principal, authorizedBy string) (*models.Event, error) {
	var event *models.Event
	err := runTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const query = `INSERT INTO instructors (principal, authorized_by, authorized_at)
        VALUES ($1, $2, $3) ON CONFLICT (principal) DO NOTHING`
		res, err := tx.ExecContext(ctx, query, principal, authorizedBy, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("authorize instructor: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("authorize instructor: %w", err)
		}
		if affected == 0 {
			return nil
		}
		event, err = appendEvent(ctx, tx, models.EventInstructorAuthorized, map[string]interface{}{
			"principal":     principal,
			"authorized_by": authorizedBy,
			"timestamp":     time.Now().UTC(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// IsAuthorized reports whether the principal holds the instructor role.
func (r *InstructorRepository) IsAuthorized(ctx context.Context, principal string) (bool, error) {
	const query = `SELECT 1 FROM instructors WHERE principal = $1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, principal); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check instructor: %w", err)
	}
	return true, nil
}

// Find returns the instructor record.
func (r *InstructorRepository) Find(ctx context.Context, principal string) (*models.Instructor, error) {
	const query = `SELECT principal, authorized_by, authorized_at FROM instructors WHERE principal = $1`
	var instructor models.Instructor
	if err := r.db.GetContext(ctx, &instructor, query, principal); err != nil {
		return nil, err
	}
	return &instructor, nil
}
