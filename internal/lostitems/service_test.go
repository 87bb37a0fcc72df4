package lostitems

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/smartcampus/portal/backend/internal/apperrors"
	"github.com/smartcampus/portal/backend/internal/auth"
	"github.com/smartcampus/portal/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeImages struct {
	keys []string
	data [][]byte
	err  error
}

func (f *fakeImages) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	b, _ := io.ReadAll(r)
	f.keys = append(f.keys, key)
	f.data = append(f.data, b)
	return "http://files.local/" + key, nil
}

func str(s string) *string { return &s }
func boolp(b bool) *bool { return &b }

func user(role string) *auth.Principal {
	return &auth.Principal{UserID: primitive.NewObjectID().Hex(), Role: role}
}

func TestCreate(t *testing.T) {
	svc := NewService(NewMemoryRepository(), nil)
	ctx := context.Background()
	a := user(models.RoleStudent)

	it, err := svc.Create(ctx, a, Input{Title: str("Blue umbrella"), Location: str("Library")})
	require.NoError(t, err)
	assert.Equal(t, models.LostStatusLost, it.Status)
	assert.Equal(t, a.UserID, it.ReportedBy.Hex())
	assert.False(t, it.ReportedAt.IsZero())

	it, err = svc.Create(ctx, a, Input{Title: str("Keys"), Found: boolp(true), Status: str("returned")})
	require.NoError(t, err)
	assert.Equal(t, models.LostStatusFound, it.Status)

	it, err = svc.Create(ctx, a, Input{Title: str("Wallet"), Found: boolp(false)})
	require.NoError(t, err)
	assert.Equal(t, models.LostStatusLost, it.Status)

	_, err = svc.Create(ctx, a, Input{Description: str("no title")})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Create(ctx, a, Input{Title: str("X"), Status: str("stolen")})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Create(ctx, nil, Input{Title: str("X")})
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestOwnershipRules(t *testing.T) {
	svc := NewService(NewMemoryRepository(), nil)
	ctx := context.Background()
	a := user(models.RoleStudent)
	b := user(models.RoleStudent)
	admin := user(models.RoleAdmin)

	it, err := svc.Create(ctx, a, Input{Title: str("Calculator")})
	require.NoError(t, err)

	// B can neither return nor delete A's item
	_, err = svc.MarkReturned(ctx, b, it.ID)
	require.ErrorIs(t, err, apperrors.ErrForbidden)
	require.ErrorIs(t, svc.Delete(ctx, b, it.ID), apperrors.ErrForbidden)
	_, err = svc.Update(ctx, b, it.ID, Input{Title: str("Mine now")})
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	// admins may not mark someone else's item returned
	_, err = svc.MarkReturned(ctx, admin, it.ID)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Calculator", list[0].Title)
	assert.Equal(t, models.LostStatusLost, list[0].Status)

	returned, err := svc.MarkReturned(ctx, a, it.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LostStatusReturned, returned.Status)

	updated, err := svc.Update(ctx, admin, it.ID, Input{Contact: str("desk@klh.edu.in")})
	require.NoError(t, err)
	assert.Equal(t, "desk@klh.edu.in", updated.Contact)
	assert.Equal(t, models.LostStatusReturned, updated.Status)

	require.NoError(t, svc.Delete(ctx, admin, it.ID))
	require.ErrorIs(t, svc.Delete(ctx, a, it.ID), apperrors.ErrNotFound)

	other, err := svc.Create(ctx, a, Input{Title: str("Bottle")})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, a, other.ID))
}

func TestUpdate_Validation(t *testing.T) {
	svc := NewService(NewMemoryRepository(), nil)
	ctx := context.Background()
	a := user(models.RoleStudent)
	it, err := svc.Create(ctx, a, Input{Title: str("Jacket")})
	require.NoError(t, err)

	_, err = svc.Update(ctx, a, it.ID, Input{Title: str(" ")})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	up, err := svc.Update(ctx, a, it.ID, Input{Found: boolp(true)})
	require.NoError(t, err)
	assert.Equal(t, models.LostStatusFound, up.Status)
	assert.Equal(t, "Jacket", up.Title)

	_, err = svc.Update(ctx, a, primitive.NewObjectID(), Input{})
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAttachImage(t *testing.T) {
	ctx := context.Background()
	a := user(models.RoleStudent)
	b := user(models.RoleStudent)

	disabled := NewService(NewMemoryRepository(), nil)
	it, err := disabled.Create(ctx, a, Input{Title: str("Bag")})
	require.NoError(t, err)
	_, err = disabled.AttachImage(ctx, a, it.ID, Image{Filename: "bag.jpg", ContentType: "image/jpeg", Body: strings.NewReader("x")})
	require.ErrorIs(t, err, apperrors.ErrStorageUnavailable)

	images := &fakeImages{}
	svc := NewService(NewMemoryRepository(), images)
	it, err = svc.Create(ctx, a, Input{Title: str("Bag")})
	require.NoError(t, err)

	_, err = svc.AttachImage(ctx, b, it.ID, Image{Filename: "bag.jpg", ContentType: "image/jpeg", Body: strings.NewReader("x")})
	require.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = svc.AttachImage(ctx, a, it.ID, Image{Filename: "notes.pdf", ContentType: "application/pdf", Body: strings.NewReader("x")})
	require.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Empty(t, images.keys)

	payload := []byte{0xff, 0xd8, 0xff}
	up, err := svc.AttachImage(ctx, a, it.ID, Image{Filename: "Bag.JPG", ContentType: "image/jpeg", Size: 3, Body: bytes.NewReader(payload)})
	require.NoError(t, err)
	require.Len(t, images.keys, 1)
	assert.True(t, strings.HasPrefix(images.keys[0], "lost-items/"+it.ID.Hex()+"/"))
	assert.True(t, strings.HasSuffix(images.keys[0], ".jpg"))
	assert.Equal(t, payload, images.data[0])
	assert.Equal(t, "http://files.local/"+images.keys[0], up.ImageURL)

	images.err = errors.New("bucket gone")
	_, err = svc.AttachImage(ctx, a, it.ID, Image{Filename: "b.png", ContentType: "image/png", Body: strings.NewReader("x")})
	require.Error(t, err)
	assert.Equal(t, 500, apperrors.HTTPStatus(err))
}

// staleRepo serves a snapshot taken before a concurrent write landed.
type staleRepo struct {
	*MemoryRepository
	snapshot *models.LostItem
}

func (s *staleRepo) Get(ctx context.Context, id primitive.ObjectID) (*models.LostItem, error) {
	cp := *s.snapshot
	return &cp, nil
}

func TestConcurrentEditsKeepEachOthersFields(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryRepository()
	images := &fakeImages{}
	a := user(models.RoleStudent)
	admin := user(models.RoleAdmin)

	it, err := NewService(mem, images).Create(ctx, a, Input{Title: str("Headphones"), Location: str("Gym")})
	require.NoError(t, err)
	before, err := mem.Get(ctx, it.ID)
	require.NoError(t, err)

	withImage, err := NewService(mem, images).AttachImage(ctx, a, it.ID, Image{
		Filename: "h.jpg", ContentType: "image/jpeg", Size: 3, Body: bytes.NewReader([]byte("jpg")),
	})
	require.NoError(t, err)
	require.NotEmpty(t, withImage.ImageURL)

	// the admin and the reporter both loaded the item before the image was attached
	racing := NewService(&staleRepo{MemoryRepository: mem, snapshot: before}, images)
	got, err := racing.Update(ctx, admin, it.ID, Input{Found: boolp(true)})
	require.NoError(t, err)
	assert.Equal(t, models.LostStatusFound, got.Status)
	assert.Equal(t, withImage.ImageURL, got.ImageURL)

	got, err = racing.MarkReturned(ctx, a, it.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LostStatusReturned, got.Status)
	assert.Equal(t, withImage.ImageURL, got.ImageURL)
	assert.Equal(t, "Gym", got.Location)

	stored, err := mem.Get(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, withImage.ImageURL, stored.ImageURL)
	assert.Equal(t, models.LostStatusReturned, stored.Status)
}

func TestChangesSetOnlyNamedFields(t *testing.T) {
	ch := Changes{Status: str(models.LostStatusFound), ImageURL: str("")}
	assert.Equal(t, map[string]interface{}{"status": "found", "imageUrl": ""}, map[string]interface{}(ch.set()))
	assert.True(t, Changes{}.empty())
	assert.False(t, ch.empty())
}
