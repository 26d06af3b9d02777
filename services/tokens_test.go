package services

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"field-service-server/config"
	"field-service-server/types"
)

func testTokenService(expiryHours int) *TokenService {
	return NewTokenService(config.JWTConfig{
		Secret:      "test-secret-key-for-unit-tests",
		ExpiryHours: expiryHours,
	})
}

func TestGenerateAndValidate(t *testing.T) {
	tokens := testTokenService(1)

	token, err := tokens.Generate(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestValidateExpiredToken(t *testing.T) {
	expired := testTokenService(-1)

	token, err := expired.Generate(42)
	require.NoError(t, err)

	_, err = testTokenService(1).Validate(token)
	assert.Error(t, err, "expired tokens must be rejected")
}

func TestValidateTamperedToken(t *testing.T) {
	tokens := testTokenService(1)

	token, err := tokens.Generate(42)
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = tokens.Validate(tampered)
	assert.Error(t, err)
}

func TestValidateWrongSecret(t *testing.T) {
	tokens := testTokenService(1)
	other := NewTokenService(config.JWTConfig{Secret: "a-different-secret", ExpiryHours: 1})

	token, err := other.Generate(42)
	require.NoError(t, err)

	_, err = tokens.Validate(token)
	assert.Error(t, err)
}

func TestValidateRejectsUnsignedToken(t *testing.T) {
	tokens := testTokenService(1)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &types.Claims{UserID: 42})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tokens.Validate(token)
	assert.Error(t, err, "only HMAC signed tokens are accepted")
}

func TestValidateGarbage(t *testing.T) {
	tokens := testTokenService(1)

	_, err := tokens.Validate("not-a-token")
	assert.Error(t, err)

	_, err = tokens.Validate("")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)

	assert.NotEqual(t, "password123", hash)
	assert.True(t, CheckPasswordHash("password123", hash))
	assert.False(t, CheckPasswordHash("password124", hash))
	assert.False(t, CheckPasswordHash("password123", "not-a-hash"))
}
