package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformed covers bad encoding, wrong signing method, and signature
	// mismatch. Callers get no detail beyond "the token is not valid".
	ErrMalformed = errors.New("malformed token")

	// ErrExpired is returned for a well-formed token past its TTL.
	ErrExpired = errors.New("token expired")
)

// Claims carries the authenticated user id alongside the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID int `json:"user_id"`
}

// Service issues and verifies signed bearer tokens. The secret is set once
// at construction and never mutated; verification is pure.
type Service struct {
	secret []byte
	ttl    time.Duration
}

func NewService(secret []byte, ttl time.Duration) *Service {
	return &Service{secret: secret, ttl: ttl}
}

// Issue returns a signed HS256 token for userID, expiring after the
// service TTL.
func (s *Service) Issue(userID int) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID: userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses and validates tokenString, returning the embedded user id.
// Expired tokens yield ErrExpired; every other failure yields ErrMalformed.
func (s *Service) Verify(tokenString string) (int, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrMalformed
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrExpired
		}
		return 0, ErrMalformed
	}

	if !token.Valid || claims.UserID == 0 {
		return 0, ErrMalformed
	}

	return claims.UserID, nil
}
