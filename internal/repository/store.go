package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/edu-cert-api/internal/models"
)

// runTx executes fn inside a transaction, committing only when fn returns
// nil. Every mutating transition runs through here: the database acts as
// the single sequencer, so a rolled-back transition leaves no trace — no
// row, no event, no consumed id.
func runTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// nextSequence advances a named counter and returns the new value. The row
// lock taken by UPDATE serializes concurrent transitions on the same
// counter; ids therefore come out dense and strictly increasing, and a
// rollback releases the increment without consuming the id.
func nextSequence(ctx context.Context, tx *sqlx.Tx, name string) (int64, error) {
	const query = `UPDATE counters SET value = value + 1 WHERE name = $1 RETURNING value`
	var value int64
	if err := tx.GetContext(ctx, &value, query, name); err != nil {
		return 0, fmt.Errorf("advance %s counter: %w", name, err)
	}
	return value, nil
}

// appendEvent records a notification row inside the caller's transaction so
// that event order matches commit order exactly.
func appendEvent(ctx context.Context, tx *sqlx.Tx, eventType string, payload interface{}) (*models.Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	event := &models.Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Payload:    body,
		OccurredAt: time.Now().UTC(),
	}
	const query = `INSERT INTO events (id, type, payload, occurred_at) VALUES ($1, $2, $3, $4) RETURNING seq`
	if err := tx.GetContext(ctx, &event.Seq, query, event.ID, event.Type, []byte(event.Payload), event.OccurredAt); err != nil {
		return nil, fmt.Errorf("append %s event: %w", eventType, err)
	}
	return event, nil
}
