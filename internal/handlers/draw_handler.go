package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scoreplay/promo-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DrawHandler handles draw HTTP requests
type DrawHandler struct {
	drawService services.DrawService
}

// NewDrawHandler creates a new DrawHandler
func NewDrawHandler(drawService services.DrawService) *DrawHandler {
	return &DrawHandler{drawService: drawService}
}

// Conduct handles POST /admin/tiers/:id/draw
func (h *DrawHandler) Conduct(c *gin.Context) {
	tierID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tier ID format"})
		return
	}

	result, err := h.drawService.ConductDraw(c.Request.Context(), tierID, operator(c), origin(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// Get handles GET /admin/draws/:id
func (h *DrawHandler) Get(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	draw, err := h.drawService.GetDraw(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draw)
}

// List handles GET /admin/draws
func (h *DrawHandler) List(c *gin.Context) {
	draws, err := h.drawService.ListDraws(c.Request.Context(), queryInt(c, "page", 1), queryInt(c, "limit", 50))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draws": draws})
}

// ListByTier handles GET /admin/tiers/:id/draws
func (h *DrawHandler) ListByTier(c *gin.Context) {
	tierID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tier ID format"})
		return
	}
	draws, err := h.drawService.DrawsByTier(c.Request.Context(), tierID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draws": draws})
}

// Winners handles GET /admin/draws/:id/winners
func (h *DrawHandler) Winners(c *gin.Context) {
	drawID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	winners, err := h.drawService.WinnersByDraw(c.Request.Context(), drawID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"winners": winners})
}
