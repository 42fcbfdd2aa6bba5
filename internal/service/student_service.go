package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-cert-api/internal/models"
	"github.com/noah-isme/edu-cert-api/internal/repository"
	appErrors "github.com/noah-isme/edu-cert-api/pkg/errors"
)

type studentRepository interface {
	FindByPrincipal(ctx context.Context, principal string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) (*models.Event, error)
	MarkCompleted(ctx context.Context, student string, courseID int64) error
	HasCompleted(ctx context.Context, student string, courseID int64) (bool, error)
	EnrolledCourses(ctx context.Context, student string) ([]models.CourseEnrollment, error)
}

type courseReader interface {
	FindByID(ctx context.Context, id int64) (*models.Course, error)
}

// EnrollRequest is the self-enrollment payload.
type EnrollRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required"`
}

// StudentService owns the student ledger: one record per principal,
// created once, with append-only completion flags and course lists.
type StudentService struct {
	repo      studentRepository
	courses   courseReader
	events    eventPublisher
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs StudentService.
func NewStudentService(repo studentRepository, courses courseReader, events eventPublisher, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, courses: courses, events: events, validator: validate, logger: logger}
}

// Enroll creates the caller's student record. A principal enrolls exactly
// once; a second attempt is rejected and the original record is untouched.
func (s *StudentService) Enroll(ctx context.Context, principal string, req EnrollRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "name and email are required")
	}

	if _, err := s.repo.FindByPrincipal(ctx, principal); err == nil {
		return nil, appErrors.ErrAlreadyEnrolled
	} else if err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	student := &models.Student{
		Principal:  principal,
		FullName:   req.Name,
		Email:      req.Email,
		Enrolled:   true,
		EnrolledAt: time.Now().UTC(),
	}
	event, err := s.repo.Create(ctx, student)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateStudent) {
			return nil, appErrors.ErrAlreadyEnrolled
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	s.events.Publish(event)
	s.logger.Info("student enrolled", zap.String("principal", principal))
	return student, nil
}

// MarkCourseCompleted sets the completion flag for (student, course). Only
// the instructor owning the course may call it. The operation is idempotent
// and deliberately performs no student existence check: the flag may be
// set before the student record exists.
func (s *StudentService) MarkCourseCompleted(ctx context.Context, caller, student string, courseID int64) error {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if course.Instructor != caller {
		return appErrors.Clone(appErrors.ErrForbidden, "only the course instructor may mark completion")
	}

	if err := s.repo.MarkCompleted(ctx, student, courseID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark completion")
	}
	return nil
}

// Get returns a student record.
func (s *StudentService) Get(ctx context.Context, principal string) (*models.Student, error) {
	student, err := s.repo.FindByPrincipal(ctx, principal)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// IsEnrolled reports whether the principal holds a student record.
func (s *StudentService) IsEnrolled(ctx context.Context, principal string) (bool, error) {
	if _, err := s.repo.FindByPrincipal(ctx, principal); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return true, nil
}

// EnrolledCourses returns the student's course enrollments in order.
func (s *StudentService) EnrolledCourses(ctx context.Context, principal string) ([]models.CourseEnrollment, error) {
	enrollments, err := s.repo.EnrolledCourses(ctx, principal)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrolled courses")
	}
	return enrollments, nil
}

// HasCompleted is a pure completion-flag lookup.
func (s *StudentService) HasCompleted(ctx context.Context, student string, courseID int64) (bool, error) {
	done, err := s.repo.HasCompleted(ctx, student, courseID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check completion")
	}
	return done, nil
}
