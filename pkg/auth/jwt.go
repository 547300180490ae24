// Package auth validates the bearer tokens that carry a request's principal.
// Tokens are issued elsewhere; GenerateToken exists for development seeding.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hugohenrick/arte-ideas/internal/access"
	"github.com/hugohenrick/arte-ideas/internal/domain/user"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token expired")
	ErrInvalidClaims = errors.New("invalid token claims")
	ErrMissingJWTKey = errors.New("jwt secret is not configured")
)

// Claims are the custom claims of an access token
type Claims struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id,omitempty"`
	Login    string `json:"login"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Principal converts the claims into the identity the access layer resolves
func (c *Claims) Principal() *access.Principal {
	return &access.Principal{UserID: c.UserID, Login: c.Login, Role: c.Role, TenantID: c.TenantID}
}

// JWTService signs and validates HS256 tokens
type JWTService struct {
	secretKey  []byte
	issuer     string
	expiration time.Duration
}

// NewJWTService creates a JWTService. A zero expiration means 24 hours.
func NewJWTService(secret, issuer string, expiration time.Duration) (*JWTService, error) {
	if secret == "" {
		return nil, ErrMissingJWTKey
	}
	if expiration <= 0 {
		expiration = 24 * time.Hour
	}
	return &JWTService{secretKey: []byte(secret), issuer: issuer, expiration: expiration}, nil
}

// GenerateToken signs a token for the user
func (s *JWTService) GenerateToken(u *user.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   u.ID,
		TenantID: u.TenantID,
		Login:    u.Login,
		Role:     string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Subject:   u.ID,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
}

// ValidateToken checks the signature and lifetime of a token and returns
// its claims
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}
