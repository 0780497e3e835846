package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/scoreplay/promo-backend/internal/apperrors"
	"github.com/scoreplay/promo-backend/internal/middleware"
	"golang.org/x/exp/slog"
)

// respondError maps a service error onto an HTTP status. Validation,
// conflict and not-found errors carry their message to the client;
// anything else is reported as a generic 500 so internal details stay in
// the logs.
func respondError(c *gin.Context, err error) {
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperrors.KindConflict:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case apperrors.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		slog.Error("request failed", "error", err, "path", c.Request.URL.Path)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// operator returns the authenticated operator's email, or the fallback on
// unauthenticated routes.
func operator(c *gin.Context) string {
	if email, ok := c.Get(middleware.CtxOperatorEmail); ok {
		if s, ok := email.(string); ok {
			return s
		}
	}
	return "anonymous"
}

// origin describes where a request came from for audit records.
func origin(c *gin.Context) string {
	return c.ClientIP()
}

func queryInt(c *gin.Context, name string, fallback int) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return fallback
	}
	return value
}
