package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/artpar/modhost/ports"
	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin is the only role accepted by write endpoints.
const RoleAdmin = "admin"

// Claims are the JWT claims of an administrative session token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 session tokens. Safe for concurrent
// use.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	clock  ports.Clock
}

// NewTokenService creates a token service. An empty secret yields a random
// one, so issued tokens die with the process; a zero ttl means 24h.
func NewTokenService(secret string, ttl time.Duration, clock ports.Clock) *TokenService {
	key := []byte(secret)
	if secret == "" {
		key = make([]byte, 32)
		rand.Read(key)
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenService{secret: key, ttl: ttl, clock: clock}
}

// Issue creates a token for subject with the given role.
func (s *TokenService) Issue(subject, role string) (string, time.Time, error) {
	now := s.clock.Now()
	expiresAt := now.Add(s.ttl)

	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "modhost",
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse validates a token and returns its claims.
func (s *TokenService) Parse(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithIssuer("modhost"), jwt.WithTimeFunc(s.clock.Now))
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Verify accepts unexpired admin tokens.
func (s *TokenService) Verify(ctx context.Context, token string) bool {
	claims, err := s.Parse(token)
	return err == nil && claims.Role == RoleAdmin
}

var _ ports.RequestVerifier = (*TokenService)(nil)

// GenerateSecret returns a random hex secret suitable for signing.
func GenerateSecret() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}
