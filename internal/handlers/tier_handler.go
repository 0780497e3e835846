package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scoreplay/promo-backend/internal/models"
	"github.com/scoreplay/promo-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TierHandler handles prize tier HTTP requests
type TierHandler struct {
	tierService services.TierService
}

// NewTierHandler creates a new TierHandler
func NewTierHandler(tierService services.TierService) *TierHandler {
	return &TierHandler{tierService: tierService}
}

// ListActive handles GET /tiers
func (h *TierHandler) ListActive(c *gin.Context) {
	tiers, err := h.tierService.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tiers": tiers})
}

// ListWithStats handles GET /admin/tiers
func (h *TierHandler) ListWithStats(c *gin.Context) {
	tiers, err := h.tierService.ListWithStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tiers": tiers})
}

// Get handles GET /tiers/:id
func (h *TierHandler) Get(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	tier, err := h.tierService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tier)
}

// Create handles POST /admin/tiers
func (h *TierHandler) Create(c *gin.Context) {
	var tier models.PrizeTier
	if err := c.ShouldBindJSON(&tier); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.tierService.Create(c.Request.Context(), &tier, operator(c), origin(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Update handles PUT /admin/tiers/:id
func (h *TierHandler) Update(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var update models.PrizeTierUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.tierService.Update(c.Request.Context(), id, &update, operator(c), origin(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /admin/tiers/:id
func (h *TierHandler) Delete(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	if err := h.tierService.Delete(c.Request.Context(), id, operator(c), origin(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Tier deleted"})
}
