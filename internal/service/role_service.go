package service

import (
	"context"
	"database/sql"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/edu-cert-api/internal/models"
	appErrors "github.com/noah-isme/edu-cert-api/pkg/errors"
)

type instructorRepository interface {
	Authorize(ctx context.Context, principal, authorizedBy string) (*models.Event, error)
	IsAuthorized(ctx context.Context, principal string) (bool, error)
	Find(ctx context.Context, principal string) (*models.Instructor, error)
}

// RoleService owns the identity/role registry: the admin principal is fixed
// at boot and the instructor set is mutated only through AuthorizeInstructor.
type RoleService struct {
	repo   instructorRepository
	admin  string
	events eventPublisher
	logger *zap.Logger
}

// NewRoleService constructs RoleService.
func NewRoleService(repo instructorRepository, admin string, events eventPublisher, logger *zap.Logger) *RoleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoleService{repo: repo, admin: admin, events: events, logger: logger}
}

// Admin returns the admin principal.
func (s *RoleService) Admin() string {
	return s.admin
}

// IsAdmin reports whether the principal is the admin.
func (s *RoleService) IsAdmin(principal string) bool {
	return principal != "" && principal == s.admin
}

// AuthorizeInstructor grants the instructor role to target. Only the admin
// may call it; re-authorizing is a no-op success.
func (s *RoleService) AuthorizeInstructor(ctx context.Context, caller, target string) error {
	if !s.IsAdmin(caller) {
		return appErrors.Clone(appErrors.ErrForbidden, "only the admin may authorize instructors")
	}
	if strings.TrimSpace(target) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "target principal required")
	}

	event, err := s.repo.Authorize(ctx, target, caller)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to authorize instructor")
	}
	if event != nil {
		s.events.Publish(event)
		s.logger.Info("instructor authorized", zap.String("principal", target))
	}
	return nil
}

// IsAuthorizedInstructor is a pure role lookup.
func (s *RoleService) IsAuthorizedInstructor(ctx context.Context, principal string) (bool, error) {
	ok, err := s.repo.IsAuthorized(ctx, principal)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check instructor role")
	}
	return ok, nil
}

// GetInstructor returns the instructor record for a principal.
func (s *RoleService) GetInstructor(ctx context.Context, principal string) (*models.Instructor, error) {
	instructor, err := s.repo.Find(ctx, principal)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}
	return instructor, nil
}
