package middleware

import (
	"net/http"

	apperrors "storefront/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	SessionHeader = "X-Session-Token"
	SessionIDKey  = "session_id"
)

// SessionTokenCodec is implemented by services.SessionTokens.
type SessionTokenCodec interface {
	Issue() (token, sessionID string, err error)
	Parse(token string) (string, error)
}

// Session resolves the visitor's session id from X-Session-Token. Visitors
// without a valid token get a fresh session, returned in the same header.
func Session(tokens SessionTokenCodec) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := c.GetHeader(SessionHeader); raw != "" {
			sid, err := tokens.Parse(raw)
			if err == nil {
				c.Set(SessionIDKey, sid)
				c.Header(SessionHeader, raw)
				c.Next()
				return
			}
			zap.L().Debug("replacing invalid session token", zap.Error(err))
		}

		token, sid, err := tokens.Issue()
		if err != nil {
			zap.L().Error("failed to issue session token", zap.Error(err))
			apperrors.Respond(c, apperrors.Wrap(apperrors.ErrInternalServer, err), nil)
			c.Abort()
			return
		}
		c.Set(SessionIDKey, sid)
		c.Header(SessionHeader, token)
		c.Next()
	}
}

// SessionID returns the id set by Session, or "" outside it.
func SessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}

// NotFound renders unknown routes in the API error shape.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": apperrors.ErrNotFound.Message, "code": http.StatusNotFound})
	}
}
