// Package auth issues and verifies the signed session tokens carried in the
// session cookie.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultValidity is the lifetime of a session token.
const DefaultValidity = 24 * time.Hour

// Claims carries the user id in the standard subject claim.
type Claims struct {
	jwt.RegisteredClaims
}

type TokenService struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
	logger   logging.Logger
}

type Option func(*TokenService)

// WithClock replaces time.Now for issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) {
		s.now = now
	}
}

func WithLogger(l logging.Logger) Option {
	return func(s *TokenService) {
		s.logger = l
	}
}

// NewTokenService returns an HS256 token service. A non-positive validity
// selects DefaultValidity.
func NewTokenService(secret []byte, validity time.Duration, opts ...Option) *TokenService {
	if validity <= 0 {
		validity = DefaultValidity
	}
	s := &TokenService{
		secret:   secret,
		validity: validity,
		now:      time.Now,
		logger:   logging.Nop{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *TokenService) Validity() time.Duration {
	return s.validity
}

// Issue signs a token for userID valid from now until now+validity.
func (s *TokenService) Issue(userID string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.validity)),
		},
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Verify returns the user id of a valid token. Every failure is reported as
// common.ErrInvalidToken; the cause is only logged.
func (s *TokenService) Verify(ctx context.Context, tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			s.logger.Debug(ctx, "token expired")
		} else {
			s.logger.Warn(ctx, "token rejected", "error", err)
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		s.logger.Warn(ctx, "token without subject")
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}
