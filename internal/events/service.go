// Package events implements the campus event board.
package events

import (
	"context"
	"strings"
	"time"

	"github.com/smartcampus/portal/backend/internal/apperrors"
	"github.com/smartcampus/portal/backend/internal/auth"
	"github.com/smartcampus/portal/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// date layouts accepted from clients, most specific first
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate accepts RFC 3339 timestamps and the values HTML date and
// datetime-local inputs produce (read as UTC).
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperrors.New(apperrors.ErrValidation, "Invalid date")
}

type CreateInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Location    string `json:"location"`
}

type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// Create stores an event organised by the caller.
func (s *Service) Create(ctx context.Context, p *auth.Principal, in CreateInput) (*models.Event, error) {
	if p == nil {
		return nil, apperrors.ErrUnauthorized
	}
	organizer, err := primitive.ObjectIDFromHex(p.UserID)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperrors.New(apperrors.ErrValidation, "Title is required")
	}
	if strings.TrimSpace(in.Date) == "" {
		return nil, apperrors.New(apperrors.ErrValidation, "Date is required")
	}
	date, err := ParseDate(in.Date)
	if err != nil {
		return nil, err
	}
	e := &models.Event{
		Title:        in.Title,
		Description:  in.Description,
		Organizer:    organizer,
		Date:         date,
		Location:     in.Location,
		Participants: []primitive.ObjectID{},
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) List(ctx context.Context) ([]*models.Event, error) {
	return s.repo.List(ctx)
}
