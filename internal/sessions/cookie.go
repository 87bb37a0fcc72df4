package sessions

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CookieWriter sets and clears the session cookie. Production cookies are
// Secure with SameSite=None so the separately hosted frontend can send them.
type CookieWriter struct {
	Production bool
	MaxAge     time.Duration
}

func (w CookieWriter) sameSite() http.SameSite {
	if w.Production {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

// Set writes token into the session cookie.
func (w CookieWriter) Set(c *gin.Context, token string) {
	c.SetSameSite(w.sameSite())
	c.SetCookie(CookieName, token, int(w.MaxAge.Seconds()), "/", "", w.Production, true)
}

// Clear expires the session cookie on the client.
func (w CookieWriter) Clear(c *gin.Context) {
	c.SetSameSite(w.sameSite())
	c.SetCookie(CookieName, "", -1, "/", "", w.Production, true)
}

// Token returns the raw session cookie value or "".
func Token(c *gin.Context) string {
	v, err := c.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return v
}
