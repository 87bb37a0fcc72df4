package auth

import (
	"context"
	"time"

	"github.com/smartcampus/portal/backend/internal/sessions"
)

// Principal is the authenticated caller of one request.
type Principal struct {
	UserID    string
	Role      string
	ExpiresAt time.Time
	TokenID   string

	// Resolution is set once a role guard has resolved the acting role.
	Resolution *RoleResolution
}

// PrincipalFromSession builds the principal carried by a validated session.
func PrincipalFromSession(s *sessions.Session) *Principal {
	return &Principal{UserID: s.UserID, Role: s.Role, ExpiresAt: s.ExpiresAt, TokenID: s.ID}
}

// Session converts the principal back into the session it came from.
func (p *Principal) Session() *sessions.Session {
	return &sessions.Session{ID: p.TokenID, UserID: p.UserID, Role: p.Role, ExpiresAt: p.ExpiresAt}
}

// EffectiveRole is the resolved role when a guard ran, else the session role.
func (p *Principal) EffectiveRole() string {
	if p.Resolution != nil {
		return p.Resolution.Role
	}
	return p.Role
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal stored in ctx, if any.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
