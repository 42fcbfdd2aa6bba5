package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// PrincipalClaims carries the caller principal inside access tokens.
type PrincipalClaims struct {
	Principal string `json:"principal"`
	jwt.RegisteredClaims
}

// APIKey links a principal to its bcrypt-hashed key.
type APIKey struct {
	ID        string    `db:"id" json:"id"`
	Principal string    `db:"principal" json:"principal"`
	KeyHash   string    `db:"key_hash" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TokenResponse returns an issued access token.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	Principal   string    `json:"principal"`
	IssuedAt    time.Time `json:"issued_at"`
}

// RegisterKeyResponse returns a freshly generated API key. The plaintext
// key is shown exactly once.
type RegisterKeyResponse struct {
	Principal string `json:"principal"`
	APIKey    string `json:"api_key"`
}
