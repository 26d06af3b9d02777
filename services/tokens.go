package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"field-service-server/config"
	"field-service-server/types"
)

// TokenService issues and verifies the signed bearer tokens used for
// authentication. Tokens are stateless; logout is a client-side discard.
type TokenService struct {
	secret      []byte
	expiryHours int
}

// NewTokenService creates a token service from JWT config.
func NewTokenService(cfg config.JWTConfig) *TokenService {
	return &TokenService{
		secret:      []byte(cfg.Secret),
		expiryHours: cfg.ExpiryHours,
	}
}

// Generate signs a token for the given user ID, valid for the configured
// expiry window.
func (ts *TokenService) Generate(userID uint) (string, error) {
	now := time.Now()
	claims := &types.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ts.expiryHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "field-service-server",
			Subject:   fmt.Sprintf("%d", userID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(ts.secret)
}

// Validate parses and verifies a token string, returning the user ID it was
// issued for. Expired or tampered tokens fail.
func (ts *TokenService) Validate(tokenString string) (uint, error) {
	token, err := jwt.ParseWithClaims(tokenString, &types.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return ts.secret, nil
	})
	if err != nil {
		return 0, err
	}

	claims, ok := token.Claims.(*types.Claims)
	if !ok || !token.Valid {
		return 0, errors.New("invalid token claims")
	}

	return claims.UserID, nil
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	return string(bytes), err
}

// CheckPasswordHash compares a password with its hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
