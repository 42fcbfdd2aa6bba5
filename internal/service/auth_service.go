package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/edu-cert-api/internal/models"
	"github.com/noah-isme/edu-cert-api/pkg/config"
	appErrors "github.com/noah-isme/edu-cert-api/pkg/errors"
)

type apiKeyRepository interface {
	Save(ctx context.Context, key *models.APIKey) error
	FindByPrincipal(ctx context.Context, principal string) (*models.APIKey, error)
}

// RegisterKeyRequest registers (or rotates) a principal's API key.
type RegisterKeyRequest struct {
	Principal string `json:"principal" validate:"required"`
}

// TokenRequest exchanges an API key for an access token.
type TokenRequest struct {
	Principal string `json:"principal" validate:"required"`
	APIKey    string `json:"api_key" validate:"required"`
}

// AuthService provides the principal token exchange. It is transport
// plumbing only: role decisions are never made here, they belong to the
// role registry.
type AuthService struct {
	repo      apiKeyRepository
	config    config.JWTConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAuthService constructs AuthService.
func NewAuthService(repo apiKeyRepository, cfg config.JWTConfig, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{repo: repo, config: cfg, validator: validate, logger: logger}
}

// RegisterKey generates a fresh API key for the principal. The plaintext
// key is returned exactly once; only its bcrypt hash is stored.
func (s *AuthService) RegisterKey(ctx context.Context, req RegisterKeyRequest) (*models.RegisterKeyResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "principal is required")
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate api key")
	}
	plaintext := base64.RawURLEncoding.EncodeToString(raw)

	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash api key")
	}

	key := &models.APIKey{Principal: req.Principal, KeyHash: string(hash)}
	if err := s.repo.Save(ctx, key); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store api key")
	}

	s.logger.Info("api key registered", zap.String("principal", req.Principal))
	return &models.RegisterKeyResponse{Principal: req.Principal, APIKey: plaintext}, nil
}

// IssueToken validates the API key and mints an access token carrying the
// principal.
func (s *AuthService) IssueToken(ctx context.Context, req TokenRequest) (*models.TokenResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "principal and api_key are required")
	}

	key, err := s.repo.FindByPrincipal(ctx, req.Principal)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load api key")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(key.KeyHash), []byte(req.APIKey)); err != nil {
		return nil, appErrors.ErrInvalidCredentials
	}

	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(s.config.Expiration)
	claims := &models.PrincipalClaims{
		Principal: req.Principal,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   req.Principal,
			Issuer:    s.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}

	return &models.TokenResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.config.Expiration.Seconds()),
		Principal:   req.Principal,
		IssuedAt:    issuedAt,
	}, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.PrincipalClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.PrincipalClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.PrincipalClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if claims.Principal == "" {
		claims.Principal = claims.Subject
	}
	if claims.Principal == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token carries no principal")
	}

	return claims, nil
}
