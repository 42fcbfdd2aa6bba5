package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-cert-api/internal/models"
	"github.com/noah-isme/edu-cert-api/pkg/config"
	appErrors "github.com/noah-isme/edu-cert-api/pkg/errors"
	"github.com/noah-isme/edu-cert-api/pkg/jobs"
)

// eventPublisher is the fan-out contract transition services depend on.
// Publication happens strictly after commit; the committed events table is
// the source of truth for ordering, Redis is best-effort delivery.
type eventPublisher interface {
	Publish(event *models.Event)
}

type eventRepository interface {
	List(ctx context.Context, page, size int) ([]models.Event, int, error)
	Counters(ctx context.Context) (*models.RegistryStats, error)
}

// EventService reads the committed notification log and fans committed
// events out to Redis via a background queue.
type EventService struct {
	repo    eventRepository
	client  *redis.Client
	channel string
	queue   *jobs.Queue
	metrics *MetricsService
	logger  *zap.Logger
}

// NewEventService constructs EventService and its publish queue.
func NewEventService(repo eventRepository, client *redis.Client, cfg config.EventsConfig, metrics *MetricsService, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	channel := cfg.Channel
	if channel == "" {
		channel = "registry:events"
	}
	s := &EventService{
		repo:    repo,
		client:  client,
		channel: channel,
		metrics: metrics,
		logger:  logger,
	}
	s.queue = jobs.NewQueue("events", s.dispatch, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start launches the publish workers.
func (s *EventService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the publish workers.
func (s *EventService) Stop() {
	s.queue.Stop()
}

// Publish enqueues a committed event for Redis delivery. A nil event is
// ignored: idempotent no-op transitions emit nothing.
func (s *EventService) Publish(event *models.Event) {
	if event == nil {
		return
	}
	job := jobs.Job{ID: event.ID, Type: event.Type, Payload: event}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("event publish enqueue failed",
			zap.String("event_id", event.ID),
			zap.String("type", event.Type),
			zap.Error(err),
		)
	}
}

func (s *EventService) dispatch(ctx context.Context, job jobs.Job) error {
	if s.client == nil {
		return nil
	}
	event, ok := job.Payload.(*models.Event)
	if !ok {
		return fmt.Errorf("unexpected payload type for job %s", job.ID)
	}
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.ID, err)
	}
	if err := s.client.Publish(ctx, s.channel, raw).Err(); err != nil {
		return fmt.Errorf("publish event %s: %w", event.ID, err)
	}
	if s.metrics != nil {
		s.metrics.EventPublished()
	}
	return nil
}

// List returns committed events in commit order with pagination metadata.
func (s *EventService) List(ctx context.Context, page, size int) ([]models.Event, *models.Pagination, error) {
	events, total, err := s.repo.List(ctx, page, size)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 50
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return events, pagination, nil
}

// Stats returns the global registry totals.
func (s *EventService) Stats(ctx context.Context) (*models.RegistryStats, error) {
	stats, err := s.repo.Counters(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read counters")
	}
	return stats, nil
}
