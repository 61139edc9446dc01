package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cyco/cyco-engine/internal/core/domain"
)

const DefaultTokenTTL = 24 * time.Hour

// tokenClaims is the signed payload: the identity claim plus iat/exp.
type tokenClaims struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 session tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs the identity claim with a fixed expiry.
func (s *TokenService) Issue(claim domain.Identity) (string, error) {
	if claim.Email == "" {
		return "", domain.NewError(domain.ErrBadRequest, "email is required")
	}
	now := s.now().UTC()
	claims := tokenClaims{
		Email: claim.Email,
		Role:  claim.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify fails closed with domain.ErrUnauthorized on any malformed, expired,
// or foreign-signed token.
func (s *TokenService) Verify(token string) (*domain.Identity, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}

	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	},
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid || claims.Email == "" {
		return nil, domain.ErrUnauthorized
	}

	return &domain.Identity{Email: claims.Email, Role: claims.Role}, nil
}
