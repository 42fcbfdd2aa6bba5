package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-cert-api/internal/models"
	appErrors "github.com/noah-isme/edu-cert-api/pkg/errors"
)

type courseRepository interface {
	Create(ctx context.Context, course *models.Course) (*models.Event, error)
	FindByID(ctx context.Context, id int64) (*models.Course, error)
	SetStatus(ctx context.Context, id int64, active bool) error
	Roster(ctx context.Context, courseID int64) ([]models.CourseRosterEntry, error)
}

type instructorChecker interface {
	IsAuthorized(ctx context.Context, principal string) (bool, error)
}

type courseCache interface {
	GetCourse(ctx context.Context, id int64) (*models.Course, bool)
	SetCourse(ctx context.Context, course *models.Course) error
	InvalidateCourse(ctx context.Context, id int64) error
}

// CreateCourseRequest is the catalog creation payload.
type CreateCourseRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Credits     int    `json:"credits" validate:"required,gt=0"`
	Fee         int64  `json:"fee" validate:"gte=0"`
}

// CourseService owns the course catalog. Instructor is immutable after
// creation; only the active flag and the roster change afterwards.
type CourseService struct {
	repo        courseRepository
	instructors instructorChecker
	cache       courseCache
	admin       string
	events      eventPublisher
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCourseService constructs CourseService.
func NewCourseService(repo courseRepository, instructors instructorChecker, cache courseCache, admin string, events eventPublisher, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{
		repo:        repo,
		instructors: instructors,
		cache:       cache,
		admin:       admin,
		events:      events,
		validator:   validate,
		logger:      logger,
	}
}

// CreateCourse registers a new catalog entry owned by the caller. Only
// authorized instructors may create courses; the assigned id is the next
// value in the dense course sequence.
func (s *CourseService) CreateCourse(ctx context.Context, caller string, req CreateCourseRequest) (*models.Course, error) {
	ok, err := s.instructors.IsAuthorized(ctx, caller)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check instructor role")
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only authorized instructors may create courses")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "name and positive credits are required")
	}

	course := &models.Course{
		Name:        req.Name,
		Description: req.Description,
		Instructor:  caller,
		Credits:     req.Credits,
		Fee:         req.Fee,
		Active:      true,
		CreatedAt:   time.Now().UTC(),
	}
	event, err := s.repo.Create(ctx, course)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	s.events.Publish(event)
	s.logger.Info("course created", zap.Int64("course_id", course.ID), zap.String("instructor", caller))
	return course, nil
}

// SetCourseStatus toggles the active flag. Admin only. The operation is
// permissive about unknown course ids: toggling a missing course succeeds
// and changes nothing.
func (s *CourseService) SetCourseStatus(ctx context.Context, caller string, courseID int64, active bool) error {
	if caller != s.admin {
		return appErrors.Clone(appErrors.ErrForbidden, "only the admin may change course status")
	}
	if err := s.repo.SetStatus(ctx, courseID, active); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to set course status")
	}
	if s.cache != nil {
		if err := s.cache.InvalidateCourse(ctx, courseID); err != nil {
			s.logger.Warn("course cache invalidation failed", zap.Int64("course_id", courseID), zap.Error(err))
		}
	}
	return nil
}

// GetCourseDetails returns a course snapshot, serving the read path from
// cache when possible. Transition services read the catalog repository
// directly; only this accessor tolerates cache staleness.
func (s *CourseService) GetCourseDetails(ctx context.Context, courseID int64) (*models.Course, error) {
	if s.cache != nil {
		if course, ok := s.cache.GetCourse(ctx, courseID); ok {
			return course, nil
		}
	}

	course, err := s.repo.FindByID(ctx, courseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	if s.cache != nil {
		if err := s.cache.SetCourse(ctx, course); err != nil {
			s.logger.Debug("course cache write failed", zap.Int64("course_id", courseID), zap.Error(err))
		}
	}
	return course, nil
}

// Roster returns the course roster in enrollment order.
func (s *CourseService) Roster(ctx context.Context, courseID int64) (*models.Course, []models.CourseRosterEntry, error) {
	course, err := s.repo.FindByID(ctx, courseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	roster, err := s.repo.Roster(ctx, courseID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list roster")
	}
	return course, roster, nil
}
