package console

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/saju-admin-api/internal/models"
)

// Gate answers who the console is acting as.
type Gate interface {
	IsAuthenticated() bool
	IsAdmin() bool
	Token() string
}

// TokenGate derives the caller's identity from the bearer token it holds. The
// signature is not checked here; the API re-validates every request.
type TokenGate struct {
	token  string
	claims *models.JWTClaims
	now    func() time.Time
}

// NewTokenGate decodes token. A malformed token yields an unauthenticated gate.
func NewTokenGate(token string) *TokenGate {
	g := &TokenGate{token: strings.TrimSpace(token), now: time.Now}
	if g.token == "" {
		return g
	}
	claims := &models.JWTClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(g.token, claims); err == nil {
		g.claims = claims
	}
	return g
}

// IsAuthenticated is true for a decodable, unexpired token.
func (g *TokenGate) IsAuthenticated() bool {
	if g == nil || g.claims == nil {
		return false
	}
	if exp := g.claims.ExpiresAt; exp != nil && !g.now().Before(exp.Time) {
		return false
	}
	return true
}

// IsAdmin is true for authenticated SUPERADMIN and ADMIN callers.
func (g *TokenGate) IsAdmin() bool {
	return g.IsAuthenticated() && g.claims.Role.IsAdmin()
}

// Token returns the raw bearer credential.
func (g *TokenGate) Token() string {
	if g == nil {
		return ""
	}
	return g.token
}

// Claims exposes the decoded claims, or nil.
func (g *TokenGate) Claims() *models.JWTClaims {
	if !g.IsAuthenticated() {
		return nil
	}
	return g.claims
}
