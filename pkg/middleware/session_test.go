package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smartcampus/portal/backend/internal/auth"
	"github.com/smartcampus/portal/backend/internal/models"
	"github.com/smartcampus/portal/backend/internal/sessions"
	"github.com/smartcampus/portal/backend/internal/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type guardFixture struct {
	sessions *sessions.Service
	users    *users.Service
}

func newGuardFixture() *guardFixture {
	return &guardFixture{
		sessions: sessions.NewService(sessions.NewCodec("middleware-test-key-0123456789", time.Hour), sessions.NewMemoryRevocations()),
		users:    users.NewService(users.NewMemoryUserRepository()),
	}
}

func (f *guardFixture) cookieFor(t *testing.T, u *models.User) *http.Cookie {
	t.Helper()
	iss, err := f.sessions.Issue(context.Background(), u.ID.Hex(), u.Role)
	require.NoError(t, err)
	return &http.Cookie{Name: sessions.CookieName, Value: iss.Token}
}

func (f *guardFixture) router(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SessionMiddleware(f.sessions))
	r.GET("/x", handlers...)
	return r
}

func do(r http.Handler, ck *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if ck != nil {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireSession(t *testing.T) {
	f := newGuardFixture()
	u := &models.User{Name: "A", Email: "a@klh.edu.in"}
	require.NoError(t, f.users.Create(context.Background(), u))

	r := f.router(RequireSession(), func(c *gin.Context) {
		p := CurrentPrincipal(c)
		fromCtx, ok := auth.PrincipalFrom(c.Request.Context())
		require.True(t, ok)
		assert.Same(t, p, fromCtx)
		c.String(http.StatusOK, p.UserID)
	})

	w := do(r, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())

	w = do(r, &http.Cookie{Name: sessions.CookieName, Value: "forged"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	ck := f.cookieFor(t, u)
	w = do(r, ck)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, u.ID.Hex(), w.Body.String())

	// a revoked cookie is anonymous again
	sess, err := f.sessions.Validate(context.Background(), ck.Value)
	require.NoError(t, err)
	require.NoError(t, f.sessions.Revoke(context.Background(), sess))
	w = do(r, ck)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionMiddleware_AnonymousPassesThrough(t *testing.T) {
	f := newGuardFixture()
	r := f.router(func(c *gin.Context) {
		assert.Nil(t, CurrentPrincipal(c))
		c.Status(http.StatusNoContent)
	})
	assert.Equal(t, http.StatusNoContent, do(r, nil).Code)
}

func TestRequireRole(t *testing.T) {
	ctx := context.Background()
	f := newGuardFixture()
	student := &models.User{Name: "S", Email: "s@klh.edu.in", Role: models.RoleStudent}
	admin := &models.User{Name: "A", Email: "admin@klh.edu.in", Role: models.RoleAdmin}
	require.NoError(t, f.users.Create(ctx, student))
	require.NoError(t, f.users.Create(ctx, admin))

	touched := 0
	handler := func(c *gin.Context) {
		touched++
		p := CurrentPrincipal(c)
		require.NotNil(t, p.Resolution)
		c.String(http.StatusOK, p.Resolution.Source.String())
	}
	r := f.router(RequireRole(auth.NewRoleResolver(auth.PolicySession, f.users), models.RoleAdmin), handler)

	assert.Equal(t, http.StatusUnauthorized, do(r, nil).Code)

	w := do(r, f.cookieFor(t, student))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Forbidden: insufficient role"}`, w.Body.String())
	assert.Equal(t, 0, touched)

	w = do(r, f.cookieFor(t, admin))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "session", w.Body.String())
	assert.Equal(t, 1, touched)
}

func TestRequireRole_StorePolicySeesDemotion(t *testing.T) {
	ctx := context.Background()
	f := newGuardFixture()
	admin := &models.User{Name: "A", Email: "admin@klh.edu.in", Role: models.RoleAdmin}
	require.NoError(t, f.users.Create(ctx, admin))
	ck := f.cookieFor(t, admin)

	_, err := f.users.SetRole(ctx, admin.ID, models.RoleStudent)
	require.NoError(t, err)

	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	sessionPolicy := f.router(RequireRole(auth.NewRoleResolver(auth.PolicySession, f.users), models.RoleAdmin), ok)
	storePolicy := f.router(RequireRole(auth.NewRoleResolver(auth.PolicyStore, f.users), models.RoleAdmin), ok)

	// the cookie still says admin
	assert.Equal(t, http.StatusOK, do(sessionPolicy, ck).Code)
	assert.Equal(t, http.StatusForbidden, do(storePolicy, ck).Code)
}

func TestResolveRole_RecordsWithoutRestricting(t *testing.T) {
	ctx := context.Background()
	f := newGuardFixture()
	u := &models.User{Name: "S", Email: "s@klh.edu.in", Role: models.RoleStudent}
	require.NoError(t, f.users.Create(ctx, u))

	r := f.router(ResolveRole(auth.NewRoleResolver(auth.PolicyStore, f.users)), func(c *gin.Context) {
		p := CurrentPrincipal(c)
		if p == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, p.EffectiveRole()+"/"+p.Resolution.Source.String())
	})

	assert.Equal(t, "anonymous", do(r, nil).Body.String())
	assert.Equal(t, "student/store", do(r, f.cookieFor(t, u)).Body.String())

	ghost := &models.User{Name: "G", Email: "g@klh.edu.in", Role: models.RoleAdmin}
	ghost.ID = [12]byte{1}
	assert.Equal(t, http.StatusUnauthorized, do(r, f.cookieFor(t, ghost)).Code)
}
