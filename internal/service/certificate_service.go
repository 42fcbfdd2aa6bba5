package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-cert-api/internal/models"
	appErrors "github.com/noah-isme/edu-cert-api/pkg/errors"
	"github.com/noah-isme/edu-cert-api/pkg/export"
	"github.com/noah-isme/edu-cert-api/pkg/storage"
)

type certificateRepository interface {
	Create(ctx context.Context, cert *models.Certificate) (*models.Event, error)
	FindByID(ctx context.Context, id int64) (*models.Certificate, error)
	IDsByStudent(ctx context.Context, student string) ([]int64, error)
}

type certificateStudentReader interface {
	FindByPrincipal(ctx context.Context, principal string) (*models.Student, error)
	HasCompleted(ctx context.Context, student string, courseID int64) (bool, error)
}

// IssueCertificateRequest is the issuance payload. ContentRef is an opaque
// pointer to off-core certificate metadata and is never inspected.
type IssueCertificateRequest struct {
	Student    string `json:"student" validate:"required"`
	CourseID   int64  `json:"course_id" validate:"required,gt=0"`
	ContentRef string `json:"content_ref"`
}

// CertificateService owns the immutable certificate registry.
type CertificateService struct {
	repo        certificateRepository
	students    certificateStudentReader
	courses     courseReader
	instructors instructorChecker
	signer      *storage.ShareTokenSigner
	pdf         *export.PDFExporter
	events      eventPublisher
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCertificateService constructs CertificateService.
func NewCertificateService(
	repo certificateRepository,
	students certificateStudentReader,
	courses courseReader,
	instructors instructorChecker,
	signer *storage.ShareTokenSigner,
	pdf *export.PDFExporter,
	events eventPublisher,
	validate *validator.Validate,
	logger *zap.Logger,
) *CertificateService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CertificateService{
		repo:        repo,
		students:    students,
		courses:     courses,
		instructors: instructors,
		signer:      signer,
		pdf:         pdf,
		events:      events,
		validator:   validate,
		logger:      logger,
	}
}

// IssueCertificate creates an immutable issuance record. Preconditions are
// checked in a fixed order and the first failing one determines the error:
// instructor role, student record, course availability, course ownership,
// completion flag.
func (s *CertificateService) IssueCertificate(ctx context.Context, caller string, req IssueCertificateRequest) (*models.Certificate, error) {
	ok, err := s.instructors.IsAuthorized(ctx, caller)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check instructor role")
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only authorized instructors may issue certificates")
	}

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "student and course_id are required")
	}

	student, err := s.students.FindByPrincipal(ctx, req.Student)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrStudentNotEnrolled
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if !student.Enrolled {
		return nil, appErrors.ErrStudentNotEnrolled
	}

	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrCourseUnavailable
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if !course.Active {
		return nil, appErrors.ErrCourseUnavailable
	}

	if course.Instructor != caller {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the course instructor may issue certificates")
	}

	done, err := s.students.HasCompleted(ctx, req.Student, req.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check completion")
	}
	if !done {
		return nil, appErrors.ErrCourseNotCompleted
	}

	cert := &models.Certificate{
		Student:    req.Student,
		CourseID:   req.CourseID,
		CourseName: course.Name,
		ContentRef: req.ContentRef,
		Valid:      true,
		IssuedAt:   time.Now().UTC(),
	}
	event, err := s.repo.Create(ctx, cert)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create certificate")
	}
	s.events.Publish(event)
	s.logger.Info("certificate issued",
		zap.Int64("certificate_id", cert.ID),
		zap.String("student", cert.Student),
		zap.Int64("course_id", cert.CourseID),
	)
	return cert, nil
}

// VerifyCertificate returns the valid flag. Unknown ids verify as false
// rather than erroring.
func (s *CertificateService) VerifyCertificate(ctx context.Context, id int64) (bool, error) {
	cert, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load certificate")
	}
	return cert.Valid, nil
}

// GetCertificate returns the full issuance record.
func (s *CertificateService) GetCertificate(ctx context.Context, id int64) (*models.Certificate, error) {
	cert, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "certificate not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load certificate")
	}
	return cert, nil
}

// StudentCertificates returns the student's certificate ids in issuance
// order; unknown students get an empty list.
func (s *CertificateService) StudentCertificates(ctx context.Context, student string) ([]int64, error) {
	ids, err := s.repo.IDsByStudent(ctx, student)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list certificates")
	}
	return ids, nil
}

// ShareLink mints a signed token that resolves the certificate without
// authentication.
func (s *CertificateService) ShareLink(ctx context.Context, id int64) (string, time.Time, error) {
	if _, err := s.GetCertificate(ctx, id); err != nil {
		return "", time.Time{}, err
	}
	token, expiresAt, err := s.signer.Generate(id)
	if err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign share token")
	}
	return token, expiresAt, nil
}

// ResolveShareToken validates a share token and returns the certificate.
func (s *CertificateService) ResolveShareToken(ctx context.Context, token string) (*models.Certificate, error) {
	id, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired share token")
	}
	return s.GetCertificate(ctx, id)
}

// RenderPDF renders the certificate as a downloadable document.
func (s *CertificateService) RenderPDF(ctx context.Context, id int64) ([]byte, error) {
	cert, err := s.GetCertificate(ctx, id)
	if err != nil {
		return nil, err
	}

	doc := export.CertificateDocument{
		ID:         cert.ID,
		Student:    cert.Student,
		CourseName: cert.CourseName,
		IssuedAt:   cert.IssuedAt,
		ContentRef: cert.ContentRef,
		Valid:      cert.Valid,
	}
	if student, err := s.students.FindByPrincipal(ctx, cert.Student); err == nil {
		doc.StudentName = student.FullName
	}
	if course, err := s.courses.FindByID(ctx, cert.CourseID); err == nil {
		doc.Credits = course.Credits
	}

	raw, err := s.pdf.RenderCertificate(doc)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render certificate")
	}
	return raw, nil
}
