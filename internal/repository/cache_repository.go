package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/edu-cert-api/internal/models"
)

// CacheRepository keeps course snapshots in Redis to spare the catalog on
// hot read paths. Cache misses and cache errors are both reported as a
// miss; callers fall back to the database.
type CacheRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCacheRepository constructs the repository.
func NewCacheRepository(client *redis.Client, ttl time.Duration) *CacheRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CacheRepository{client: client, ttl: ttl}
}

func courseKey(id int64) string {
	return fmt.Sprintf("registry:course:%d", id)
}

// GetCourse returns a cached course snapshot when present.
func (r *CacheRepository) GetCourse(ctx context.Context, id int64) (*models.Course, bool) {
	if r == nil || r.client == nil {
		return nil, false
	}
	raw, err := r.client.Get(ctx, courseKey(id)).Bytes()
	if err != nil {
		return nil, false
	}
	var course models.Course
	if err := json.Unmarshal(raw, &course); err != nil {
		return nil, false
	}
	return &course, true
}

// SetCourse stores a course snapshot with the configured TTL.
func (r *CacheRepository) SetCourse(ctx context.Context, course *models.Course) error {
	if r == nil || r.client == nil {
		return nil
	}
	raw, err := json.Marshal(course)
	if err != nil {
		return fmt.Errorf("marshal course: %w", err)
	}
	return r.client.Set(ctx, courseKey(course.ID), raw, r.ttl).Err()
}

// InvalidateCourse drops a cached snapshot after a mutation.
func (r *CacheRepository) InvalidateCourse(ctx context.Context, id int64) error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Del(ctx, courseKey(id)).Err()
}
