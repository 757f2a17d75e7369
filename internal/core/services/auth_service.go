package services

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired")
	ErrInvalidAdminSecret = errors.New("invalid admin secret")
)

// AuthService guards the admin surface. Operators exchange the shared admin
// secret for a short-lived JWT that the admin middleware checks on every call.
type AuthService interface {
	Login(secret string) (string, time.Time, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type authService struct {
	adminSecret    []byte
	jwtSecret      []byte
	accessTokenTTL time.Duration
}

func NewAuthService(adminSecret, jwtSecret string, accessTokenTTL time.Duration) AuthService {
	return &authService{
		adminSecret:    []byte(adminSecret),
		jwtSecret:      []byte(jwtSecret),
		accessTokenTTL: accessTokenTTL,
	}
}

func (s *authService) Login(secret string) (string, time.Time, error) {
	if len(s.adminSecret) == 0 {
		return "", time.Time{}, ErrInvalidAdminSecret
	}
	if subtle.ConstantTimeCompare([]byte(secret), s.adminSecret) != 1 {
		return "", time.Time{}, ErrInvalidAdminSecret
	}

	expiresAt := time.Now().Add(s.accessTokenTTL)
	claims := &Claims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin",
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
