package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/edu-cert-api/internal/models"
)

// CertificateRepository persists immutable certificate records. There is
// no update path: once a row commits nothing mutates it.
type CertificateRepository struct {
	db *sqlx.DB
}

// NewCertificateRepository constructs the repository.
func NewCertificateRepository(db *sqlx.DB) *CertificateRepository {
	return &CertificateRepository{db: db}
}

// Create assigns the next sequential certificate id and inserts the record
// with the course-name snapshot, appending the CertificateIssued event in
// the same transaction.
func (r *CertificateRepository) Create(ctx context.Context, cert *models.Certificate) (*models.Event, error) {
	if cert.IssuedAt.IsZero() {
		cert.IssuedAt = time.Now().UTC()
	}
	cert.Valid = true

	var event *models.Event
	err := runTx(ctx, r.db, func(tx *sqlx.Tx) error {
		id, err := nextSequence(ctx, tx, "certificates")
		if err != nil {
			return err
		}
		cert.ID = id

		const query = `INSERT INTO certificates (id, student_principal, course_id, course_name, content_ref, valid, issued_at)
        VALUES (:id, :student_principal, :course_id, :course_name, :content_ref, :valid, :issued_at)`
		if _, err := sqlx.NamedExecContext(ctx, tx, query, cert); err != nil {
			return fmt.Errorf("create certificate: %w", err)
		}

		event, err = appendEvent(ctx, tx, models.EventCertificateIssued, map[string]interface{}{
			"certificate_id": cert.ID,
			"student":        cert.Student,
			"course_id":      cert.CourseID,
			"course_name":    cert.CourseName,
			"timestamp":      cert.IssuedAt,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// FindByID returns a certificate by id.
func (r *CertificateRepository) FindByID(ctx context.Context, id int64) (*models.Certificate, error) {
	const query = `SELECT id, student_principal, course_id, course_name, content_ref, valid, issued_at
        FROM certificates WHERE id = $1`
	var cert models.Certificate
	if err := r.db.GetContext(ctx, &cert, query, id); err != nil {
		return nil, err
	}
	return &cert, nil
}

// IDsByStudent returns the student's certificate ids in issuance order.
// Unknown students yield an empty slice, never an error.
func (r *CertificateRepository) IDsByStudent(ctx context.Context, student string) ([]int64, error) {
	const query = `SELECT id FROM certificates WHERE student_principal = $1 ORDER BY id`
	ids := []int64{}
	if err := r.db.SelectContext(ctx, &ids, query, student); err != nil {
		return nil, fmt.Errorf("list student certificates: %w", err)
	}
	return ids, nil
}
