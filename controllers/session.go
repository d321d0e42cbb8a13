package controllers

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	apperrors "storefront/errors"
	"storefront/logger"
	"storefront/middleware"
	"storefront/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionOpener is implemented by services.SessionFactory.
type SessionOpener interface {
	Open(ctx context.Context, sessionID string, notifier services.Notifier) *services.Session
}

func openSession(c *gin.Context, sessions SessionOpener) (*services.Session, *services.NotificationBuffer) {
	buf := services.NewNotificationBuffer()
	return sessions.Open(c.Request.Context(), middleware.SessionID(c), buf), buf
}

// respondError logs err against the request and renders it. Server-side
// failures are logged at error level, client mistakes at debug.
func respondError(c *gin.Context, err error, extra gin.H) {
	appErr := apperrors.From(err)
	if appErr.Code >= 500 {
		logger.Error(c, "request failed", err, zap.String("path", c.FullPath()))
	} else {
		logger.Debug(c, "request rejected", zap.String("path", c.FullPath()), zap.Int("code", appErr.Code))
	}
	apperrors.Respond(c, appErr, extra)
}

// parseQuantity reads a quantity sent as a JSON number or numeric string.
// ok is false for anything else.
func parseQuantity(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	switch q := v.(type) {
	case float64:
		return quantityFromFloat(q)
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(q), 64)
		if err != nil {
			return 0, false
		}
		return quantityFromFloat(n)
	default:
		return 0, false
	}
}

// quantityFromFloat truncates q, rejecting values an int32 cannot hold.
func quantityFromFloat(q float64) (int, bool) {
	if math.IsNaN(q) || q < math.MinInt32 || q > math.MaxInt32 {
		return 0, false
	}
	return int(q), true
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
