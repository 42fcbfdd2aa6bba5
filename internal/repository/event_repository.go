package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/edu-cert-api/internal/models"
)

// EventRepository reads the committed notification log.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs the repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// List returns committed events in commit order.
func (r *EventRepository) List(ctx context.Context, page, size int) ([]models.Event, int, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 50
	}
	offset := (page - 1) * size

	const query = `SELECT seq, id, type, payload, occurred_at FROM events ORDER BY seq LIMIT $1 OFFSET $2`
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, size, offset); err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}

	const countQuery = `SELECT COUNT(*) FROM events`
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}
	return events, total, nil
}

// Counters returns the global registry totals.
func (r *EventRepository) Counters(ctx context.Context) (*models.RegistryStats, error) {
	const query = `SELECT name, value FROM counters`
	rows := []struct {
		Name  string `db:"name"`
		Value int64  `db:"value"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("read counters: %w", err)
	}

	stats := &models.RegistryStats{}
	for _, row := range rows {
		switch row.Name {
		case "students":
			stats.TotalStudents = row.Value
		case "courses":
			stats.TotalCourses = row.Value
		case "certificates":
			stats.TotalCertificates = row.Value
		}
	}
	return stats, nil
}
