package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// SignToken mints a token the way the identity provider does.
func SignToken(secret, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func TestValidateToken_Valid(t *testing.T) {
	token, err := SignToken(testSecret, "user-123", time.Hour)
	require.NoError(t, err)

	claims, err := NewTokenVerifier(testSecret).ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
}

func TestValidateToken_Expired(t *testing.T) {
	token, err := SignToken(testSecret, "user-123", -time.Minute)
	require.NoError(t, err)

	_, err = NewTokenVerifier(testSecret).ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := SignToken("another-secret-another-secret-xx", "user-123", time.Hour)
	require.NoError(t, err)

	_, err = NewTokenVerifier(testSecret).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_WrongAlgorithm(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "user-123"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenVerifier(testSecret).ValidateToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_MissingUserID(t *testing.T) {
	token, err := SignToken(testSecret, "", time.Hour)
	require.NoError(t, err)

	_, err = NewTokenVerifier(testSecret).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
