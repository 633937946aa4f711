// Package auth verifies the administrative capability required by write
// endpoints. Callers present either the static admin token, checked against
// its configured hash, or a session token issued by TokenService.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/artpar/modhost/ports"
)

// StaticToken verifies a bearer token against a stored hash.
type StaticToken struct {
	hash   []byte
	hasher ports.Hasher
}

// NewStaticToken creates a verifier for hash. An empty hash rejects every
// token.
func NewStaticToken(hash string, hasher ports.Hasher) *StaticToken {
	return &StaticToken{hash: []byte(hash), hasher: hasher}
}

// Verify compares token against the stored hash.
func (v *StaticToken) Verify(ctx context.Context, token string) bool {
	if len(v.hash) == 0 || token == "" {
		return false
	}
	return v.hasher.Compare(v.hash, token)
}

var _ ports.RequestVerifier = (*StaticToken)(nil)

// Any accepts a token when at least one verifier does.
type Any []ports.RequestVerifier

// Verify tries each verifier in order.
func (a Any) Verify(ctx context.Context, token string) bool {
	for _, v := range a {
		if v != nil && v.Verify(ctx, token) {
			return true
		}
	}
	return false
}

// AllowAll accepts every request. Used when no credentials are configured
// and the server is bound to loopback.
type AllowAll struct{}

// Verify always succeeds.
func (AllowAll) Verify(context.Context, string) bool { return true }

// BearerToken extracts the token from an "Authorization: Bearer" header,
// falling back to the X-Admin-Token header.
func BearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	return strings.TrimSpace(r.Header.Get("X-Admin-Token"))
}
