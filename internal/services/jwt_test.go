package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJWTService(t *testing.T) {
	svc := NewJWTService("secret", 15*time.Minute)

	assert.NotNil(t, svc)
	assert.Equal(t, 15*time.Minute, svc.AccessExpiry())
}

func TestJWTService_GenerateAccessToken(t *testing.T) {
	svc := NewJWTService("test-secret", 15*time.Minute)

	token, err := svc.GenerateAccessToken(uuid.New(), "test@example.com")

	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)
	assert.Equal(t, int64(15*60), token.ExpiresIn)
}

func TestJWTService_ValidateAccessToken_Valid(t *testing.T) {
	svc := NewJWTService("test-secret", 15*time.Minute)
	memberID := uuid.New()
	email := "test@example.com"

	token, err := svc.GenerateAccessToken(memberID, email)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token.Token)

	require.NoError(t, err)
	assert.Equal(t, memberID, claims.MemberID)
	assert.Equal(t, email, claims.Email)
	assert.Equal(t, "fleetdesk-api", claims.Issuer)
}

func TestJWTService_ValidateAccessToken_WrongSecret(t *testing.T) {
	svc1 := NewJWTService("secret-1", 15*time.Minute)
	svc2 := NewJWTService("secret-2", 15*time.Minute)

	token, err := svc1.GenerateAccessToken(uuid.New(), "test@example.com")
	require.NoError(t, err)

	_, err = svc2.ValidateAccessToken(token.Token)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse token")
}

func TestJWTService_ValidateAccessToken_Expired(t *testing.T) {
	svc := NewJWTService("test-secret", -time.Minute)

	token, err := svc.GenerateAccessToken(uuid.New(), "test@example.com")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token.Token)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse token")
}

func TestJWTService_ValidateAccessToken_MalformedToken(t *testing.T) {
	svc := NewJWTService("test-secret", 15*time.Minute)

	testCases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt-token"},
		{"partial jwt", "eyJhbGciOiJIUzI1NiJ9."},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ValidateAccessToken(tc.token)
			assert.Error(t, err)
		})
	}
}

func TestJWTService_TokensAreUnique(t *testing.T) {
	svc := NewJWTService("test-secret", 15*time.Minute)
	memberID := uuid.New()

	first, err := svc.GenerateAccessToken(memberID, "test@example.com")
	require.NoError(t, err)
	second, err := svc.GenerateAccessToken(memberID, "test@example.com")
	require.NoError(t, err)

	// jti differs even within the same second
	assert.NotEqual(t, first.Token, second.Token)
}

func TestHashToken(t *testing.T) {
	token := "my-verification-token"

	hash1 := HashToken(token)
	hash2 := HashToken(token)

	assert.Equal(t, hash1, hash2)
	assert.Len(t, hash1, 64)
	assert.NotEqual(t, hash1, HashToken("different-token"))
}
