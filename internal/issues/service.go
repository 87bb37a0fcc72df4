// Package issues collects feedback reports and their moderation.
package issues

import (
	"context"
	"strings"
	"time"

	"github.com/smartcampus/portal/backend/internal/apperrors"
	"github.com/smartcampus/portal/backend/internal/auth"
	"github.com/smartcampus/portal/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TypeFeedback is the only report type accepted so far.
const TypeFeedback = "feedback"

type CreateInput struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Contact string `json:"contact"`
}

var errNotFound = apperrors.New(apperrors.ErrNotFound, "Not found")

type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// Create files a report. p may be nil for anonymous reports.
func (s *Service) Create(ctx context.Context, p *auth.Principal, in CreateInput) (*models.Issue, error) {
	if strings.TrimSpace(in.Type) == "" || strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Message) == "" {
		return nil, apperrors.New(apperrors.ErrValidation, "Missing fields")
	}
	if in.Type != TypeFeedback {
		return nil, apperrors.New(apperrors.ErrValidation, "Invalid type")
	}
	is := &models.Issue{
		Type:      in.Type,
		Title:     in.Title,
		Message:   in.Message,
		Contact:   in.Contact,
		Status:    models.IssueOpen,
		CreatedAt: time.Now().UTC(),
	}
	if p != nil {
		if id, err := primitive.ObjectIDFromHex(p.UserID); err == nil {
			is.ReportedBy = &id
		}
	}
	if err := s.repo.Create(ctx, is); err != nil {
		return nil, err
	}
	return is, nil
}

// List returns reports newest first; issueType "" means all.
func (s *Service) List(ctx context.Context, issueType string) ([]*models.Issue, error) {
	return s.repo.List(ctx, issueType)
}

func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	is, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if is == nil {
		return nil, errNotFound
	}
	return is, nil
}

// Moderate updates status and response. Admin only.
func (s *Service) Moderate(ctx context.Context, p *auth.Principal, id primitive.ObjectID, m Moderation) (*models.Issue, error) {
	if p == nil {
		return nil, apperrors.ErrUnauthorized
	}
	if !auth.Permits(p.EffectiveRole(), models.RoleAdmin) {
		return nil, apperrors.New(apperrors.ErrForbidden, "Not allowed")
	}
	if m.Status != nil && !models.ValidIssueStatus(*m.Status) {
		return nil, apperrors.New(apperrors.ErrValidation, "Invalid status")
	}
	is, err := s.repo.Moderate(ctx, id, m)
	if err != nil {
		return nil, err
	}
	if is == nil {
		return nil, errNotFound
	}
	return is, nil
}
