package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scoreplay/promo-backend/internal/repositories"
	"github.com/scoreplay/promo-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EntryHandler handles drawing-pool entry HTTP requests
type EntryHandler struct {
	entryService services.EntryService
}

// NewEntryHandler creates a new EntryHandler
func NewEntryHandler(entryService services.EntryService) *EntryHandler {
	return &EntryHandler{entryService: entryService}
}

// EnterRequest is the participant admission payload.
type EnterRequest struct {
	MSISDN      string `json:"msisdn" binding:"required"`
	DisplayName string `json:"displayName"`
	TierID      string `json:"tierId" binding:"required"`
	Score       int    `json:"score"`
}

// Enter handles POST /entries
func (h *EntryHandler) Enter(c *gin.Context) {
	var request EnterRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tierID, err := primitive.ObjectIDFromHex(request.TierID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tier ID format"})
		return
	}

	receipt, err := h.entryService.Enter(c.Request.Context(), services.EnterInput{
		MSISDN:      request.MSISDN,
		DisplayName: request.DisplayName,
		TierID:      tierID,
		Score:       request.Score,
		Origin:      origin(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, receipt)
}

// CheckEligibility handles GET /entries/eligibility?msisdn=&score=
func (h *EntryHandler) CheckEligibility(c *gin.Context) {
	msisdn := c.Query("msisdn")
	score := queryInt(c, "score", 0)

	eligibilities, err := h.entryService.CheckEligibility(c.Request.Context(), msisdn, score)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tiers": eligibilities})
}

// MyEntries handles GET /entries/mine/:msisdn
func (h *EntryHandler) MyEntries(c *gin.Context) {
	entries, err := h.entryService.MyEntries(c.Request.Context(), c.Param("msisdn"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// List handles GET /admin/entries
func (h *EntryHandler) List(c *gin.Context) {
	filter := repositories.EntryFilter{MSISDN: c.Query("msisdn")}

	if tierHex := c.Query("tierId"); tierHex != "" {
		tierID, err := primitive.ObjectIDFromHex(tierHex)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tier ID format"})
			return
		}
		filter.TierID = &tierID
	}
	if wonParam := c.Query("won"); wonParam != "" {
		won := wonParam == "true"
		filter.Won = &won
	}

	entries, err := h.entryService.List(c.Request.Context(), filter, queryInt(c, "page", 1), queryInt(c, "limit", 50))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
