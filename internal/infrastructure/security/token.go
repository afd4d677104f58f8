package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/application"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/user"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("security: token expired")
	ErrTokenInvalid = errors.New("security: token invalid")
)

type claims struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// JWTMaker issues and verifies HS256 tokens.
type JWTMaker struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTMaker(secret string, ttl time.Duration) (*JWTMaker, error) {
	if secret == "" {
		return nil, errors.New("security: jwt secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("security: jwt ttl must be positive")
	}
	return &JWTMaker{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for id and returns it with its expiry.
func (m *JWTMaker) Issue(id application.Caller) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(m.ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		ID:    id.ID,
		Name:  id.Name,
		Email: id.Email,
		Role:  string(id.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := tok.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("security: sign token: %w", err)
	}
	return signed, exp, nil
}

// Verify checks signature, algorithm and expiry.
func (m *JWTMaker) Verify(token string) (application.Caller, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return application.Caller{}, ErrTokenExpired
	case err != nil:
		return application.Caller{}, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	case c.ID == "":
		return application.Caller{}, ErrTokenInvalid
	}
	return application.Caller{ID: c.ID, Name: c.Name, Email: c.Email, Role: user.Role(c.Role)}, nil
}

// TTL is how long issued tokens stay valid.
func (m *JWTMaker) TTL() time.Duration { return m.ttl }
