package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ShareTokenSigner creates and validates signed certificate share tokens.
// Tokens let anyone with the link resolve a certificate's validity without
// authenticating.
type ShareTokenSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewShareTokenSigner constructs a signer with the provided secret and TTL.
func NewShareTokenSigner(secret string, ttl time.Duration) *ShareTokenSigner {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &ShareTokenSigner{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Generate returns a signed token referencing the certificate id.
func (s *ShareTokenSigner) Generate(certificateID int64) (string, time.Time, error) {
	if certificateID <= 0 {
		return "", time.Time{}, fmt.Errorf("certificate id required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := time.Now().Add(s.ttl)
	payload := fmt.Sprintf("%d|%d", certificateID, expiresAt.Unix())
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(payload))
	signature := hex.EncodeToString(mac.Sum(nil))
	token := strings.Join([]string{
		strconv.FormatInt(certificateID, 10),
		strconv.FormatInt(expiresAt.Unix(), 10),
		signature,
	}, ".")
	return token, expiresAt, nil
}

// Parse validates a token and returns the embedded certificate id.
func (s *ShareTokenSigner) Parse(token string) (int64, time.Time, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return 0, time.Time{}, fmt.Errorf("invalid token format")
	}

	certificateID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("invalid certificate id")
	}
	expUnix, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("invalid timestamp")
	}
	expiresAt := time.Unix(expUnix, 0)

	payload := fmt.Sprintf("%s|%s", parts[0], parts[1])
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(payload))
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(parts[2])) {
		return 0, time.Time{}, fmt.Errorf("invalid token signature")
	}
	if time.Now().After(expiresAt) {
		return 0, time.Time{}, fmt.Errorf("token expired")
	}
	return certificateID, expiresAt, nil
}
