package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestShareTokenSignerGenerateAndParse(t *testing.T) {
	signer := NewShareTokenSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	certID, parsedExpiry, err := signer.Parse(token)
	require.NoError(t, err)
	require.Equal(t, int64(42), certID)
	require.WithinDuration(t, expiresAt, parsedExpiry, time.Second)
}

func TestShareTokenSignerExpired(t *testing.T) {
	signer := NewShareTokenSigner("secret", time.Millisecond*10)
	token, _, err := signer.Generate(1)
	require.NoError(t, err)
	time.Sleep(time.Millisecond * 20)

	_, _, err = signer.Parse(token)
	require.Error(t, err)
}

func TestShareTokenSignerTampered(t *testing.T) {
	signer := NewShareTokenSigner("secret", time.Hour)
	token, _, err := signer.Generate(7)
	require.NoError(t, err)

	other := NewShareTokenSigner("other-secret", time.Hour)
	_, _, err = other.Parse(token)
	require.Error(t, err)
}
