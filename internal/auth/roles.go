package auth

import (
	"context"

	"github.com/smartcampus/portal/backend/internal/apperrors"
	"github.com/smartcampus/portal/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoleSource tells where a resolved role came from.
type RoleSource int

const (
	FromSession RoleSource = iota
	FromStore
)

func (s RoleSource) String() string {
	if s == FromStore {
		return "store"
	}
	return "session"
}

// RoleResolution is the acting role of a request and its origin.
type RoleResolution struct {
	Role   string
	Source RoleSource
}

// Role policies accepted by NewRoleResolver.
const (
	PolicySession = "session"
	PolicyStore   = "store"
)

// UserLookup is the part of the credential store the resolver needs.
type UserLookup interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// RoleResolver decides which role a request acts with. Under PolicySession the
// role signed into the cookie wins and the store is only consulted when the
// cookie has none; under PolicyStore the store is always asked, so role
// changes take effect before the session expires.
type RoleResolver struct {
	policy string
	users  UserLookup
}

func NewRoleResolver(policy string, users UserLookup) *RoleResolver {
	if policy != PolicyStore {
		policy = PolicySession
	}
	return &RoleResolver{policy: policy, users: users}
}

// Policy returns the active policy name.
func (r *RoleResolver) Policy() string { return r.policy }

// Resolve returns the acting role for p, or ErrUnauthorized when none can be
// determined (for example the user was deleted).
func (r *RoleResolver) Resolve(ctx context.Context, p *Principal) (RoleResolution, error) {
	if p == nil {
		return RoleResolution{}, apperrors.ErrUnauthorized
	}
	if r.policy == PolicySession && p.Role != "" {
		return RoleResolution{Role: p.Role, Source: FromSession}, nil
	}
	id, err := primitive.ObjectIDFromHex(p.UserID)
	if err != nil || r.users == nil {
		return RoleResolution{}, apperrors.ErrUnauthorized
	}
	u, err := r.users.FindByID(ctx, id)
	if err != nil {
		return RoleResolution{}, err
	}
	if u == nil || u.Role == "" {
		return RoleResolution{}, apperrors.ErrUnauthorized
	}
	return RoleResolution{Role: u.Role, Source: FromStore}, nil
}

// Permits reports whether role is one of allowed.
func Permits(role string, allowed ...string) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

// RequireOwnership allows the resource owner, or a caller whose acting role is
// in allowedRoles.
func RequireOwnership(owner primitive.ObjectID, p *Principal, allowedRoles ...string) error {
	if p == nil {
		return apperrors.ErrUnauthorized
	}
	if !owner.IsZero() && owner.Hex() == p.UserID {
		return nil
	}
	if Permits(p.EffectiveRole(), allowedRoles...) {
		return nil
	}
	return apperrors.New(apperrors.ErrForbidden, "Not allowed")
}
