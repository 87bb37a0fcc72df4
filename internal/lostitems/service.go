// Package lostitems runs the lost-and-found board.
package lostitems

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/smartcampus/portal/backend/internal/apperrors"
	"github.com/smartcampus/portal/backend/internal/auth"
	"github.com/smartcampus/portal/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ImageStore saves uploaded photos and returns the URL clients load them from.
type ImageStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

// Input is the body of a create or update request. Found, when present,
// overrides Status.
type Input struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Contact     *string `json:"contact"`
	Location    *string `json:"location"`
	ImageURL    *string `json:"imageUrl"`
	Status      *string `json:"status"`
	Found       *bool   `json:"found"`
}

// status resolves the requested state; "" means unchanged.
func (in Input) status() (string, error) {
	if in.Found != nil {
		if *in.Found {
			return models.LostStatusFound, nil
		}
		return models.LostStatusLost, nil
	}
	if in.Status == nil {
		return "", nil
	}
	switch *in.Status {
	case models.LostStatusLost, models.LostStatusFound, models.LostStatusReturned:
		return *in.Status, nil
	}
	return "", apperrors.New(apperrors.ErrValidation, "Invalid status")
}

// changes validates in and returns the fields it sets.
func (in Input) changes() (Changes, error) {
	st, err := in.status()
	if err != nil {
		return Changes{}, err
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return Changes{}, apperrors.New(apperrors.ErrValidation, "Title is required")
	}
	ch := Changes{
		Title:       in.Title,
		Description: in.Description,
		Contact:     in.Contact,
		Location:    in.Location,
		ImageURL:    in.ImageURL,
	}
	if st != "" {
		ch.Status = &st
	}
	return ch, nil
}

var errNotFound = apperrors.New(apperrors.ErrNotFound, "Not found")

type Service struct {
	repo   Repository
	images ImageStore
}

// NewService creates the service; images may be nil when object storage is
// not configured.
func NewService(r Repository, images ImageStore) *Service {
	return &Service{repo: r, images: images}
}

// Create records a report by the caller.
func (s *Service) Create(ctx context.Context, p *auth.Principal, in Input) (*models.LostItem, error) {
	if p == nil {
		return nil, apperrors.ErrUnauthorized
	}
	reporter, err := primitive.ObjectIDFromHex(p.UserID)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return nil, apperrors.New(apperrors.ErrValidation, "Title is required")
	}
	ch, err := in.changes()
	if err != nil {
		return nil, err
	}
	it := &models.LostItem{Status: models.LostStatusLost, ReportedBy: reporter, ReportedAt: time.Now().UTC()}
	ch.applyTo(it)
	if err := s.repo.Create(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *Service) List(ctx context.Context) ([]*models.LostItem, error) {
	return s.repo.List(ctx)
}

func (s *Service) get(ctx context.Context, id primitive.ObjectID) (*models.LostItem, error) {
	it, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, errNotFound
	}
	return it, nil
}

// update writes ch in one persistence operation, so concurrent edits of
// different fields do not overwrite each other.
func (s *Service) update(ctx context.Context, id primitive.ObjectID, ch Changes) (*models.LostItem, error) {
	it, err := s.repo.Update(ctx, id, ch)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, errNotFound
	}
	return it, nil
}

// Update edits a report. Reporter or admin.
func (s *Service) Update(ctx context.Context, p *auth.Principal, id primitive.ObjectID, in Input) (*models.LostItem, error) {
	it, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwnership(it.ReportedBy, p, models.RoleAdmin); err != nil {
		return nil, err
	}
	ch, err := in.changes()
	if err != nil {
		return nil, err
	}
	return s.update(ctx, id, ch)
}

// MarkReturned closes a report. Only the reporter may do this.
func (s *Service) MarkReturned(ctx context.Context, p *auth.Principal, id primitive.ObjectID) (*models.LostItem, error) {
	it, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwnership(it.ReportedBy, p); err != nil {
		return nil, err
	}
	returned := models.LostStatusReturned
	return s.update(ctx, it.ID, Changes{Status: &returned})
}

// Delete removes a report. Reporter or admin.
func (s *Service) Delete(ctx context.Context, p *auth.Principal, id primitive.ObjectID) error {
	it, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.RequireOwnership(it.ReportedBy, p, models.RoleAdmin); err != nil {
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

// Image is an uploaded photo.
type Image struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// AttachImage stores a photo for the report and records its URL. Reporter or
// admin.
func (s *Service) AttachImage(ctx context.Context, p *auth.Principal, id primitive.ObjectID, img Image) (*models.LostItem, error) {
	if s.images == nil {
		return nil, apperrors.New(apperrors.ErrStorageUnavailable, "Image storage is not configured")
	}
	it, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwnership(it.ReportedBy, p, models.RoleAdmin); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(img.ContentType, "image/") {
		return nil, apperrors.New(apperrors.ErrValidation, "Only image uploads are accepted")
	}
	key := fmt.Sprintf("lost-items/%s/%s%s", it.ID.Hex(), uuid.NewString(), strings.ToLower(path.Ext(img.Filename)))
	url, err := s.images.Put(ctx, key, img.Body, img.Size, img.ContentType)
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}
	return s.update(ctx, it.ID, Changes{ImageURL: &url})
}
