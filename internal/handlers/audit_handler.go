package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/scoreplay/promo-backend/internal/models"
	"github.com/scoreplay/promo-backend/internal/repositories"
	"github.com/scoreplay/promo-backend/internal/services"
)

// AuditHandler handles audit trail HTTP requests
type AuditHandler struct {
	auditService services.AuditService
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(auditService services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// List handles GET /admin/audit
func (h *AuditHandler) List(c *gin.Context) {
	filter := repositories.AuditFilter{
		Action:     models.AuditAction(c.Query("action")),
		EntityType: c.Query("entityType"),
		EntityID:   c.Query("entityId"),
	}
	if sinceParam := c.Query("since"); sinceParam != "" {
		since, err := time.Parse(time.RFC3339, sinceParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'since' timestamp, expected RFC3339"})
			return
		}
		filter.Since = since
	}

	entries, err := h.auditService.List(c.Request.Context(), filter, queryInt(c, "limit", 100))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
