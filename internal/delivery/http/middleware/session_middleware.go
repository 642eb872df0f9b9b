package middleware

import (
	"net/http"
	"time"

	"tarabaho-web/internal/domain"
	"tarabaho-web/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const SessionCookieName = "tarabaho_session"

type SessionConfig struct {
	Store  domain.SessionStore
	TTL    time.Duration
	Secure bool
}

// SessionMiddleware binds every request to a browser session. The cookie only
// carries a random id; the bearer token stays in the store. The session
// manager is injected into the request context for the usecases.
func SessionMiddleware(cfg SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(SessionCookieName)
		if _, parseErr := uuid.Parse(sid); err != nil || parseErr != nil {
			sid = uuid.NewString()
		}

		// Refresh on every request so an active session slides forward.
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookieName, sid, int(cfg.TTL.Seconds()), "/", "", cfg.Secure, true)

		manager := session.NewManager(cfg.Store, sid)
		c.Request = c.Request.WithContext(domain.WithSessionManager(c.Request.Context(), manager))
		c.Next()
	}
}
