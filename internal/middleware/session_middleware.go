package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/printtts/shiplabel-backend/config"
	"github.com/printtts/shiplabel-backend/internal/app/model"
	"github.com/printtts/shiplabel-backend/pkg/redis"
)

const (
	// SessionIDKey holds the anonymous session token in the gin context
	SessionIDKey = "session_id"

	// SessionHeader lets API clients carry the token without cookies
	SessionHeader = "X-Session-ID"
)

type SessionMiddleware struct {
	cfg config.SessionConfig
}

func NewSessionMiddleware(cfg config.SessionConfig) *SessionMiddleware {
	return &SessionMiddleware{cfg: cfg}
}

// Resolve establishes the anonymous session token for the request:
// X-Session-ID header, then the session cookie, then a fresh token.
// The token is echoed back as a cookie on every request so the TTL slides.
func (m *SessionMiddleware) Resolve() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		token := c.GetHeader(SessionHeader)
		if token == "" {
			if cookie, err := c.Cookie(m.cfg.CookieName); err == nil {
				token = cookie
			}
		}
		if token == "" {
			token = uuid.NewString()
			log.Debug("Issued new session token", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
		}

		c.Set(SessionIDKey, token)
		c.SetCookie(m.cfg.CookieName, token, int(m.cfg.TTL.Seconds()), "/", "", false, true)

		// best effort liveness tracking
		redis.TouchSession(c.Request.Context(), token, m.cfg.TTL)

		c.Next()
	}
}

// GetSessionID extracts the session token from context
func GetSessionID(c *gin.Context) (string, bool) {
	token, exists := c.Get(SessionIDKey)
	if !exists {
		return "", false
	}
	return token.(string), true
}

// GetOwner resolves the caller's owner reference. An authenticated user
// always wins over the anonymous session token.
func GetOwner(c *gin.Context) (model.OwnerRef, bool) {
	if userID, ok := GetUserID(c); ok {
		return model.UserOwner(userID), true
	}
	if token, ok := GetSessionID(c); ok && token != "" {
		return model.SessionOwner(token), true
	}
	return model.OwnerRef{}, false
}
