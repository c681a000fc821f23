// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"atelier/config"
	"atelier/internal/domain/service"
	"atelier/internal/errors"
)

const serviceTokenTTL = time.Hour

// serviceTokenService signs short-lived HS256 tokens for internal callers:
// the cleanup scheduler and diagnostic harnesses. These are machine
// credentials and never reach end users.
type serviceTokenService struct {
	secret []byte
	clock  service.Clock
}

// NewServiceTokenService is the constructor for serviceTokenService.
func NewServiceTokenService(cfg *config.Config, clock service.Clock) (service.ServiceTokenService, error) {
	if cfg.SecretKey.Service == "" {
		return nil, errors.New("service token secret must be provided")
	}

	return &serviceTokenService{
		secret: []byte(cfg.SecretKey.Service),
		clock:  clock,
	}, nil
}

// MintServiceToken issues a signed token identifying an internal caller.
func (s *serviceTokenService) MintServiceToken(subject string) (string, error) {
	now := s.clock.Now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"iat":  now.Unix(),
		"exp":  now.Add(serviceTokenTTL).Unix(),
		"type": "service",
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign service token")
	}

	return token, nil
}

// ValidateServiceToken checks a token and returns its subject.
func (s *serviceTokenService) ValidateServiceToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return s.secret, nil
	}, jwt.WithTimeFunc(s.clock.Now))
	if err != nil {
		return "", errors.Wrap(err, "invalid service token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid service token claims")
	}

	if kind, _ := claims["type"].(string); kind != "service" {
		return "", errors.New("not a service token")
	}

	subject, ok := claims["sub"].(string)
	if !ok || subject == "" {
		return "", errors.New("service token subject missing")
	}

	return subject, nil
}
