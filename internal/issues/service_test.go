package issues

import (
	"context"
	"testing"
	"time"

	"github.com/smartcampus/portal/backend/internal/apperrors"
	"github.com/smartcampus/portal/backend/internal/auth"
	"github.com/smartcampus/portal/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreate_AnonymousAndSignedIn(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	anon, err := svc.Create(ctx, nil, CreateInput{Type: "feedback", Title: "Wifi", Message: "Slow in hostel"})
	require.NoError(t, err)
	assert.Nil(t, anon.ReportedBy)
	assert.Equal(t, models.IssueOpen, anon.Status)

	uid := primitive.NewObjectID()
	mine, err := svc.Create(ctx, &auth.Principal{UserID: uid.Hex()}, CreateInput{Type: "feedback", Title: "Canteen", Message: "Queues"})
	require.NoError(t, err)
	require.NotNil(t, mine.ReportedBy)
	assert.Equal(t, uid, *mine.ReportedBy)

	for _, in := range []CreateInput{
		{Title: "t", Message: "m"},
		{Type: "feedback", Message: "m"},
		{Type: "feedback", Title: "t"},
	} {
		_, err := svc.Create(ctx, nil, in)
		require.ErrorIs(t, err, apperrors.ErrValidation)
		assert.Equal(t, "Missing fields", apperrors.Message(err))
	}

	_, err = svc.Create(ctx, nil, CreateInput{Type: "complaint", Title: "t", Message: "m"})
	assert.Equal(t, "Invalid type", apperrors.Message(err))
}

func TestList_NewestFirstAndFiltered(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()
	base := time.Now().UTC()
	for i, title := range []string{"old", "mid", "new"} {
		require.NoError(t, repo.Create(ctx, &models.Issue{Type: "feedback", Title: title, Message: "m", Status: models.IssueOpen, CreatedAt: base.Add(time.Duration(i) * time.Minute)}))
	}
	require.NoError(t, repo.Create(ctx, &models.Issue{Type: "legacy", Title: "other", CreatedAt: base.Add(time.Hour)}))

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "other", all[0].Title)

	fb, err := svc.List(ctx, "feedback")
	require.NoError(t, err)
	require.Len(t, fb, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{fb[0].Title, fb[1].Title, fb[2].Title})
}

func TestModerate(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()
	is, err := svc.Create(ctx, nil, CreateInput{Type: "feedback", Title: "Lights", Message: "Broken"})
	require.NoError(t, err)

	admin := &auth.Principal{UserID: primitive.NewObjectID().Hex(), Role: models.RoleAdmin}
	student := &auth.Principal{UserID: primitive.NewObjectID().Hex(), Role: models.RoleStudent}
	status := models.IssueInProgress
	resp := "Electrician booked"

	_, err = svc.Moderate(ctx, student, is.ID, Moderation{Status: &status})
	require.ErrorIs(t, err, apperrors.ErrForbidden)
	got, err := svc.Get(ctx, is.ID)
	require.NoError(t, err)
	assert.Equal(t, models.IssueOpen, got.Status)

	updated, err := svc.Moderate(ctx, admin, is.ID, Moderation{Status: &status, Response: &resp})
	require.NoError(t, err)
	assert.Equal(t, models.IssueInProgress, updated.Status)
	assert.Equal(t, resp, updated.Response)

	bogus := "archived"
	_, err = svc.Moderate(ctx, admin, is.ID, Moderation{Status: &bogus})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Moderate(ctx, admin, primitive.NewObjectID(), Moderation{Response: &resp})
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.Get(ctx, primitive.NewObjectID())
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
