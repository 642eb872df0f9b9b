package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"time"

	"tarabaho-web/internal/delivery/http/response"

	"github.com/gin-gonic/gin"
)

const (
	CSRFTokenCookieName = "csrf_token"
	CSRFTokenHeaderName = "X-CSRF-Token"

	csrfTokenBytes = 32
	csrfTokenTTL   = 24 * time.Hour
)

// Routes reached before the browser holds a session.
var csrfExemptPaths = map[string]bool{
	"/v1/auth/login":        true,
	"/v1/auth/recover":      true,
	"/v1/register/user":     true,
	"/v1/register/graduate": true,
	"/v1/health":            true,
}

func newCSRFToken() (string, error) {
	buf := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func csrfSafeMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}

// CSRFMiddleware implements the double-submit cookie pattern: mutating
// requests must echo the csrf_token cookie in the X-CSRF-Token header.
func CSRFMiddleware(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(CSRFTokenCookieName)
		if err != nil || token == "" {
			if token, err = newCSRFToken(); err != nil {
				response.Error(c, http.StatusInternalServerError, "Failed to generate security token", nil)
				c.Abort()
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			// Readable by scripts: the page echoes it back in the header.
			c.SetCookie(CSRFTokenCookieName, token, int(csrfTokenTTL.Seconds()), "/", "", secure, false)
		}

		if csrfSafeMethod(c.Request.Method) || csrfExemptPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		echoed := c.GetHeader(CSRFTokenHeaderName)
		switch {
		case echoed == "":
			response.Error(c, http.StatusForbidden, "Missing CSRF token", nil)
			c.Abort()
		case subtle.ConstantTimeCompare([]byte(echoed), []byte(token)) != 1:
			response.Error(c, http.StatusForbidden, "Invalid CSRF token", nil)
			c.Abort()
		default:
			c.Next()
		}
	}
}
