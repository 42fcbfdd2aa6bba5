package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/noah-isme/edu-cert-api/internal/models"
	"github.com/noah-isme/edu-cert-api/internal/payment"
	appErrors "github.com/noah-isme/edu-cert-api/pkg/errors"
)

type enrollmentCourseRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Course, error)
	IsEnrolled(ctx context.Context, courseID int64, student string) (bool, error)
	EnrollStudent(ctx context.Context, course *models.Course, student string, amount int64, transfer func(context.Context) error) (*models.Event, error)
}

type enrollmentStudentReader interface {
	FindByPrincipal(ctx context.Context, principal string) (*models.Student, error)
}

// EnrollmentService handles the paid course-enrollment transition: roster
// append, student course list, and value transfer commit together or not
// at all.
type EnrollmentService struct {
	courses  enrollmentCourseRepository
	students enrollmentStudentReader
	transfer payment.Transferrer
	events   eventPublisher
	logger   *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(courses enrollmentCourseRepository, students enrollmentStudentReader, transfer payment.Transferrer, events eventPublisher, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		courses:  courses,
		students: students,
		transfer: transfer,
		events:   events,
		logger:   logger,
	}
}

// EnrollInCourse enrolls the caller into a course, paying the full offered
// amount to the course instructor. The roster append and the transfer are
// a single atomic step: a failed transfer leaves no trace in either the
// course roster or the student's course list, and no event fires.
func (s *EnrollmentService) EnrollInCourse(ctx context.Context, caller string, courseID int64, paymentAmount int64) (*models.CourseEnrollment, error) {
	if _, err := s.students.FindByPrincipal(ctx, caller); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrStudentNotEnrolled, "caller has no student record")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrCourseUnavailable
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if !course.Active {
		return nil, appErrors.ErrCourseUnavailable
	}

	if paymentAmount < course.Fee {
		return nil, appErrors.ErrInsufficientPayment
	}

	enrolled, err := s.courses.IsEnrolled(ctx, courseID, caller)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check roster")
	}
	if enrolled {
		return nil, appErrors.Clone(appErrors.ErrConflict, "already enrolled in course")
	}

	event, err := s.courses.EnrollStudent(ctx, course, caller, paymentAmount, func(ctx context.Context) error {
		if err := s.transfer.Transfer(ctx, caller, course.Instructor, paymentAmount); err != nil {
			return appErrors.Wrap(err, appErrors.ErrPaymentFailed.Code, appErrors.ErrPaymentFailed.Status, "value transfer did not complete")
		}
		return nil
	})
	if err != nil {
		if appErrors.Is(err, appErrors.ErrPaymentFailed) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enroll in course")
	}

	s.events.Publish(event)
	s.logger.Info("student enrolled in course",
		zap.Int64("course_id", courseID),
		zap.String("student", caller),
		zap.Int64("amount", paymentAmount),
	)
	return &models.CourseEnrollment{
		CourseID:   courseID,
		Student:    caller,
		PaidAmount: paymentAmount,
	}, nil
}
