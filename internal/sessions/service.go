package sessions

import (
	"context"
	"fmt"

	"github.com/smartcampus/portal/backend/internal/apperrors"
)

// Service issues, validates and revokes session tokens.
type Service struct {
	codec   *Codec
	revoked RevocationStore
}

func NewService(c *Codec, r RevocationStore) *Service {
	if r == nil {
		r = NewMemoryRevocations()
	}
	return &Service{codec: c, revoked: r}
}

// Codec exposes the signer, mainly for cookie lifetimes.
func (s *Service) Codec() *Codec { return s.codec }

// Issue signs a new session embedding the user id and role.
func (s *Service) Issue(ctx context.Context, userID, role string) (*Issued, error) {
	return s.codec.Sign(userID, role)
}

// Validate returns the session carried by raw. Bad, expired and revoked
// tokens all yield ErrUnauthorized.
func (s *Service) Validate(ctx context.Context, raw string) (*Session, error) {
	if raw == "" {
		return nil, apperrors.ErrUnauthorized
	}
	sess, err := s.codec.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnauthorized, err)
	}
	revoked, err := s.revoked.IsRevoked(ctx, sess.ID)
	if err != nil {
		return nil, fmt.Errorf("revocation lookup: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("%w: session revoked", apperrors.ErrUnauthorized)
	}
	return sess, nil
}

// Revoke invalidates the session until its natural expiry.
func (s *Service) Revoke(ctx context.Context, sess *Session) error {
	if sess == nil || sess.ID == "" {
		return nil
	}
	return s.revoked.Revoke(ctx, sess.ID, sess.ExpiresAt)
}
