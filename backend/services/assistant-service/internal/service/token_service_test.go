package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_RoundTrip(t *testing.T) {
	svc := NewTokenService("unit-test-secret", time.Hour)

	token, err := svc.GenerateToken("session-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	sessionID, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "session-123", sessionID)
}

func TestTokenService_RejectsEmptySessionID(t *testing.T) {
	svc := NewTokenService("unit-test-secret", time.Hour)

	_, err := svc.GenerateToken("")
	require.Error(t, err)
}

func TestTokenService_RejectsWrongSecret(t *testing.T) {
	issuer := NewTokenService("secret-a", time.Hour)
	verifier := NewTokenService("secret-b", time.Hour)

	token, err := issuer.GenerateToken("session-123")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	require.Error(t, err)
}

func TestTokenService_RejectsExpiredToken(t *testing.T) {
	svc := NewTokenService("unit-test-secret", time.Nanosecond)

	token, err := svc.GenerateToken("session-123")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = svc.ValidateToken(token)
	require.Error(t, err)
}

func TestTokenService_RejectsGarbage(t *testing.T) {
	svc := NewTokenService("unit-test-secret", time.Hour)

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
}
