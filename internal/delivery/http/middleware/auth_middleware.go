package middleware

import (
	"context"
	"net/http"
	"strings"

	"jetsuite-backend/internal/delivery/http/response"
	"jetsuite-backend/internal/domain"
	"jetsuite-backend/pkg/auth"
	"jetsuite-backend/pkg/logger"
	"jetsuite-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

const authCookieName = "sb-access-token"

// Verifier is the token check the auth middleware relies on.
type Verifier interface {
	Verify(token string) (*auth.Claims, error)
}

// BearerToken extracts the Supabase access token from the Authorization
// header, falling back to the session cookie.
func BearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Cookie(authCookieName); err == nil {
		return cookie
	}
	return ""
}

// AuthMiddleware rejects requests without a valid Supabase session and puts
// the caller's identity on both the gin and the request context.
func AuthMiddleware(verifier Verifier, audit security.Recorder) gin.HandlerFunc {
	if audit == nil {
		audit = security.NopRecorder{}
	}
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "Authorization header or session cookie required", nil)
			c.Abort()
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			logger.Log.Debug("Token validation failed", "error", err, "request_id", c.GetString("RequestID"))
			audit.Log(c.Request.Context(), security.SecurityEvent{
				Event:     security.EventUnauthorizedAccess,
				Path:      c.FullPath(),
				RequestID: c.GetString("RequestID"),
				Details:   map[string]interface{}{"ip": c.ClientIP()},
			})
			response.Error(c, http.StatusUnauthorized, "Invalid token", nil)
			c.Abort()
			return
		}

		c.Set(string(domain.KeyUserID), claims.Subject)
		c.Set(string(domain.KeyUserEmail), claims.Email)

		ctx := context.WithValue(c.Request.Context(), domain.KeyUserID, claims.Subject)
		ctx = context.WithValue(ctx, domain.KeyUserEmail, claims.Email)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
