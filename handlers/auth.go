package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smartcampus/portal/backend/internal/auth"
	"github.com/smartcampus/portal/backend/internal/sessions"
	"github.com/smartcampus/portal/backend/internal/users"
	"github.com/smartcampus/portal/backend/pkg/logger"
	"github.com/smartcampus/portal/backend/pkg/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthHandler serves registration, sign-in and sign-out.
type AuthHandler struct {
	auth    *auth.Authenticator
	users   *users.Service
	cookies sessions.CookieWriter
}

func NewAuthHandler(a *auth.Authenticator, u *users.Service, cookies sessions.CookieWriter) *AuthHandler {
	return &AuthHandler{auth: a, users: u, cookies: cookies}
}

// Register routes under /auth
func (h *AuthHandler) Register(rg *gin.RouterGroup, g Guards) {
	a := rg.Group("/auth")
	a.POST("/register", h.SignUp)
	a.POST("/login", h.Login)
	a.GET("/me", h.Me)
	a.POST("/logout", g.Session, h.Logout)
	a.POST("/google", h.Google)
}

// SignUp creates a password account.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req auth.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	id, err := h.auth.RegisterLocal(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "userId": id.Hex()})
}

// Login implements email/password sign-in and sets the session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	login, err := h.auth.LoginLocal(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	h.cookies.Set(c, login.Issued.Token)
	u := login.User
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": gin.H{"id": u.ID.Hex(), "name": u.Name, "role": u.Role}})
}

// Google exchanges a Google ID token for a session.
func (h *AuthHandler) Google(c *gin.Context) {
	var req struct {
		IDToken    string `json:"idToken"`
		Credential string `json:"credential"`
	}
	_ = c.ShouldBindJSON(&req)
	token := strings.TrimSpace(req.IDToken)
	if token == "" {
		// the Google Identity Services button posts it as "credential"
		token = strings.TrimSpace(req.Credential)
	}
	if token == "" {
		badRequest(c, "Missing token")
		return
	}
	login, err := h.auth.LoginExternal(c.Request.Context(), token)
	if err != nil {
		writeError(c, err)
		return
	}
	h.cookies.Set(c, login.Issued.Token)
	u := login.User
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": gin.H{"id": u.ID.Hex(), "name": u.Name, "email": u.Email, "role": u.Role}})
}

// Me returns the signed-in user, or null for anonymous callers.
func (h *AuthHandler) Me(c *gin.Context) {
	p := middleware.CurrentPrincipal(c)
	if p == nil {
		c.JSON(http.StatusOK, gin.H{"ok": true, "user": nil})
		return
	}
	id, err := primitive.ObjectIDFromHex(p.UserID)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"ok": true, "user": nil})
		return
	}
	u, err := h.users.FindByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if u == nil {
		c.JSON(http.StatusOK, gin.H{"ok": true, "user": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": u})
}

// Logout revokes the session and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), middleware.CurrentPrincipal(c)); err != nil {
		// the cookie is cleared anyway; the token expires on its own
		logger.Errorf("session revocation failed: %v", err)
	}
	h.cookies.Clear(c)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
