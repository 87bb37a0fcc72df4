package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smartcampus/portal/backend/internal/auth"
	"github.com/smartcampus/portal/backend/internal/clubs"
	"github.com/smartcampus/portal/backend/internal/events"
	"github.com/smartcampus/portal/backend/internal/issues"
	"github.com/smartcampus/portal/backend/internal/lostitems"
	"github.com/smartcampus/portal/backend/internal/models"
	"github.com/smartcampus/portal/backend/internal/oidc"
	"github.com/smartcampus/portal/backend/internal/sessions"
	"github.com/smartcampus/portal/backend/internal/users"
	"github.com/smartcampus/portal/backend/pkg/middleware"
	"github.com/stretchr/testify/require"
)

type stubVerifier map[string]*oidc.Claims

func (s stubVerifier) Verify(ctx context.Context, raw string) (*oidc.Claims, error) {
	if c, ok := s[raw]; ok {
		return c, nil
	}
	return nil, errors.New("bad token")
}

type stubImages struct {
	keys []string
}

func (s *stubImages) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	s.keys = append(s.keys, key)
	return "http://img.test/" + key, nil
}

type testAPI struct {
	r        *gin.Engine
	users    *users.Service
	sessions *sessions.Service
	images   *stubImages
}

// newTestAPI wires every handler over memory repositories.
func newTestAPI(t *testing.T, policy string, withImages bool) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	usvc := users.NewService(users.NewMemoryUserRepository())
	ssvc := sessions.NewService(sessions.NewCodec("handlers-test-key-0123456789abcdef", 24*time.Hour), sessions.NewMemoryRevocations())
	verifier := stubVerifier{
		"campus":  {Email: "new@klh.edu.in", Name: "New Student", EmailVerified: true},
		"outside": {Email: "someone@gmail.com", Name: "Outsider", EmailVerified: true},
	}
	authn := auth.NewAuthenticator(usvc, ssvc, verifier, auth.EmailPolicy{Domain: "klh.edu.in"})
	resolver := auth.NewRoleResolver(policy, usvc)

	api := &testAPI{users: usvc, sessions: ssvc}
	var images lostitems.ImageStore
	if withImages {
		api.images = &stubImages{}
		images = api.images
	}

	r := gin.New()
	r.Use(middleware.SessionMiddleware(ssvc))
	g := Guards{
		Session: middleware.RequireSession(),
		Admin:   middleware.RequireRole(resolver, models.RoleAdmin),
		Role:    middleware.ResolveRole(resolver),
	}
	rg := r.Group("/api")
	NewAuthHandler(authn, usvc, sessions.CookieWriter{MaxAge: 24 * time.Hour}).Register(rg, g)
	NewAdminHandler(usvc).Register(rg, g)
	NewEventsHandler(events.NewService(events.NewMemoryRepository())).Register(rg, g)
	NewClubsHandler(clubs.NewService(clubs.NewMemoryRepository())).Register(rg, g)
	NewLostItemsHandler(lostitems.NewService(lostitems.NewMemoryRepository(), images)).Register(rg, g)
	NewIssuesHandler(issues.NewService(issues.NewMemoryRepository())).Register(rg, g)
	api.r = r
	return api
}

// user stores an account and returns its session cookie.
func (a *testAPI) user(t *testing.T, name, role string) (*models.User, *http.Cookie) {
	t.Helper()
	u := &models.User{Name: name, Email: name + "@klh.edu.in", Role: role}
	require.NoError(t, a.users.Create(context.Background(), u))
	iss, err := a.sessions.Issue(context.Background(), u.ID.Hex(), u.Role)
	require.NoError(t, err)
	return u, &http.Cookie{Name: sessions.CookieName, Value: iss.Token}
}

func (a *testAPI) do(method, path string, body interface{}, ck *http.Cookie) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if ck != nil {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == sessions.CookieName {
			return c
		}
	}
	return nil
}
