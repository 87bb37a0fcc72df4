package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smartcampus/portal/backend/internal/apperrors"
	"github.com/smartcampus/portal/backend/internal/auth"
	"github.com/smartcampus/portal/backend/internal/sessions"
	"github.com/smartcampus/portal/backend/pkg/logger"
)

// PrincipalKey is the gin context key holding the *auth.Principal.
const PrincipalKey = "principal"

// SessionMiddleware attaches the principal of a valid session cookie to the
// request. Requests without one continue anonymously; guards decide later.
func SessionMiddleware(svc *sessions.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := sessions.Token(c)
		if raw == "" {
			c.Next()
			return
		}
		sess, err := svc.Validate(c.Request.Context(), raw)
		if err != nil {
			if !errors.Is(err, apperrors.ErrUnauthorized) {
				logger.Errorf("session validation failed: %v", err)
			}
			c.Next()
			return
		}
		p := auth.PrincipalFromSession(sess)
		c.Set(PrincipalKey, p)
		c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), p))
		c.Next()
	}
}

// CurrentPrincipal returns the request's principal or nil.
func CurrentPrincipal(c *gin.Context) *auth.Principal {
	if v, ok := c.Get(PrincipalKey); ok {
		if p, ok := v.(*auth.Principal); ok {
			return p
		}
	}
	return nil
}

// RequireSession rejects anonymous requests with 401.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentPrincipal(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// resolve records the acting role on p, aborting the request on failure.
func resolve(c *gin.Context, resolver *auth.RoleResolver, p *auth.Principal) bool {
	res, err := resolver.Resolve(c.Request.Context(), p)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return false
		}
		logger.Errorf("role lookup for %s failed: %v", p.UserID, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return false
	}
	p.Resolution = &res
	return true
}

// RequireRole admits sessions whose resolved role is one of roles. The
// resolution is recorded on the principal for handlers.
func RequireRole(resolver *auth.RoleResolver, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := CurrentPrincipal(c)
		if p == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if !resolve(c, resolver, p) {
			return
		}
		if !auth.Permits(p.Resolution.Role, roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden: insufficient role"})
			return
		}
		c.Next()
	}
}

// ResolveRole records the acting role on the principal without restricting
// access, so ownership checks honour the configured role policy.
func ResolveRole(resolver *auth.RoleResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if p := CurrentPrincipal(c); p != nil && !resolve(c, resolver, p) {
			return
		}
		c.Next()
	}
}
