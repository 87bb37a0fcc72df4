package users

import (
	"context"
	"math"

	"github.com/smartcampus/portal/backend/internal/apperrors"
	"github.com/smartcampus/portal/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// Service encapsulates user-related business logic
type Service struct {
	repo UserRepository
}

func NewService(r UserRepository) *Service {
	return &Service{repo: r}
}

// Create stores u, defaulting the role to student.
func (s *Service) Create(ctx context.Context, u *models.User) error {
	if u.Role == "" {
		u.Role = models.RoleStudent
	}
	if !models.ValidRole(u.Role) {
		return apperrors.New(apperrors.ErrValidation, "Invalid role")
	}
	return s.repo.Create(ctx, u)
}

// FindByEmail returns the user or (nil, nil).
func (s *Service) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

// FindByID returns the user or (nil, nil).
func (s *Service) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

// Get is FindByID that reports a missing user as ErrNotFound.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperrors.New(apperrors.ErrNotFound, "User not found")
	}
	return u, nil
}

// SetRole changes a user's stored role. Sessions already issued keep the role
// they were signed with.
func (s *Service) SetRole(ctx context.Context, id primitive.ObjectID, role string) (*models.User, error) {
	if !models.ValidRole(role) {
		return nil, apperrors.New(apperrors.ErrValidation, "Invalid role")
	}
	u, err := s.repo.SetRole(ctx, id, role)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperrors.New(apperrors.ErrNotFound, "User not found")
	}
	return u, nil
}

// List returns one page of users. page is 1-based; limit is clamped to
// MaxPageSize and defaults to DefaultPageSize.
func (s *Service) List(ctx context.Context, page, limit int) ([]*models.User, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	// pages past the addressable range are empty rather than a negative skip
	if int64(page-1) > math.MaxInt64/int64(limit) {
		return []*models.User{}, nil
	}
	return s.repo.List(ctx, int64(page-1)*int64(limit), int64(limit))
}
