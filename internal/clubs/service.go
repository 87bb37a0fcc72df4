// Package clubs manages student clubs and their memberships.
package clubs

import (
	"context"
	"strings"
	"time"

	"github.com/smartcampus/portal/backend/internal/apperrors"
	"github.com/smartcampus/portal/backend/internal/auth"
	"github.com/smartcampus/portal/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreateInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Contact     string `json:"contact"`
}

// Patch holds the fields an update may change; empty fields are left alone.
type Patch struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Contact     string `json:"contact"`
}

var errNotFound = apperrors.New(apperrors.ErrNotFound, "Not found")

type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

func caller(p *auth.Principal) (primitive.ObjectID, error) {
	if p == nil {
		return primitive.NilObjectID, apperrors.ErrUnauthorized
	}
	id, err := primitive.ObjectIDFromHex(p.UserID)
	if err != nil {
		return primitive.NilObjectID, apperrors.ErrUnauthorized
	}
	return id, nil
}

// Create registers a club owned by the caller, who becomes its first member.
func (s *Service) Create(ctx context.Context, p *auth.Principal, in CreateInput) (*models.Club, error) {
	owner, err := caller(p)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperrors.New(apperrors.ErrValidation, "Name required")
	}
	c := &models.Club{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Contact:     in.Contact,
		Owner:       owner,
		Members:     []primitive.ObjectID{owner},
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) List(ctx context.Context) ([]*models.Club, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.Club, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errNotFound
	}
	return c, nil
}

// Join adds the caller to the club; joining twice is harmless.
func (s *Service) Join(ctx context.Context, p *auth.Principal, id primitive.ObjectID) (*models.Club, error) {
	member, err := caller(p)
	if err != nil {
		return nil, err
	}
	return found(s.repo.AddMember(ctx, id, member))
}

// Leave removes the caller from the club.
func (s *Service) Leave(ctx context.Context, p *auth.Principal, id primitive.ObjectID) (*models.Club, error) {
	member, err := caller(p)
	if err != nil {
		return nil, err
	}
	return found(s.repo.RemoveMember(ctx, id, member))
}

// Update changes club details. Only the owner or an admin may do so.
func (s *Service) Update(ctx context.Context, p *auth.Principal, id primitive.ObjectID, patch Patch) (*models.Club, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwnership(c.Owner, p, models.RoleAdmin); err != nil {
		return nil, err
	}
	patch.Name = strings.TrimSpace(patch.Name)
	return found(s.repo.Update(ctx, id, patch))
}

// Delete removes the club. Only the owner or an admin may do so.
func (s *Service) Delete(ctx context.Context, p *auth.Principal, id primitive.ObjectID) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.RequireOwnership(c.Owner, p, models.RoleAdmin); err != nil {
		return err
	}
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return errNotFound
	}
	return nil
}

func found(c *models.Club, err error) (*models.Club, error) {
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errNotFound
	}
	return c, nil
}
