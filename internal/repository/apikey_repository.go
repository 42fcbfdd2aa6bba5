package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/edu-cert-api/internal/models"
)

// APIKeyRepository stores principal credentials for the token exchange.
type APIKeyRepository struct {
	db *sqlx.DB
}

// NewAPIKeyRepository constructs the repository.
func NewAPIKeyRepository(db *sqlx.DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// Save upserts the key hash for a principal. Re-registering rotates the key.
func (r *APIKeyRepository) Save(ctx context.Context, key *models.APIKey) error {
	if key.ID == "" {
		key.ID = uuid.NewString()
	}
	if key.CreatedAt.IsZero() {
		key.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO api_keys (id, principal, key_hash, created_at)
        VALUES (:id, :principal, :key_hash, :created_at)
        ON CONFLICT (principal) DO UPDATE SET key_hash = EXCLUDED.key_hash`
	if _, err := r.db.NamedExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("save api key: %w", err)
	}
	return nil
}

// FindByPrincipal returns the stored credential for a principal.
func (r *APIKeyRepository) FindByPrincipal(ctx context.Context, principal string) (*models.APIKey, error) {
	const query = `SELECT id, principal, key_hash, created_at FROM api_keys WHERE principal = $1`
	var key models.APIKey
	if err := r.db.GetContext(ctx, &key, query, principal); err != nil {
		return nil, err
	}
	return &key, nil
}
