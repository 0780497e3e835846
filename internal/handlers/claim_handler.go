package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scoreplay/promo-backend/internal/repositories"
	"github.com/scoreplay/promo-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClaimHandler handles prize claim HTTP requests
type ClaimHandler struct {
	claimService services.ClaimService
}

// NewClaimHandler creates a new ClaimHandler
func NewClaimHandler(claimService services.ClaimService) *ClaimHandler {
	return &ClaimHandler{claimService: claimService}
}

// ClaimRequest is the branch settlement payload.
type ClaimRequest struct {
	Code   string `json:"code" binding:"required"`
	Branch string `json:"branch" binding:"required"`
	Notes  string `json:"notes"`
}

// Claim handles POST /admin/claims
func (h *ClaimHandler) Claim(c *gin.Context) {
	var request ClaimRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	winner, err := h.claimService.Claim(c.Request.Context(), services.ClaimInput{
		Code:     request.Code,
		Branch:   request.Branch,
		Operator: operator(c),
		Notes:    request.Notes,
		Origin:   origin(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, winner)
}

// Lookup handles GET /admin/claims/:code
func (h *ClaimHandler) Lookup(c *gin.Context) {
	winner, err := h.claimService.FindByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, winner)
}

// ListWinners handles GET /admin/winners
func (h *ClaimHandler) ListWinners(c *gin.Context) {
	filter := repositories.WinnerFilter{MSISDN: c.Query("msisdn")}

	if tierHex := c.Query("tierId"); tierHex != "" {
		tierID, err := primitive.ObjectIDFromHex(tierHex)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tier ID format"})
			return
		}
		filter.TierID = &tierID
	}
	if drawHex := c.Query("drawId"); drawHex != "" {
		drawID, err := primitive.ObjectIDFromHex(drawHex)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid draw ID format"})
			return
		}
		filter.DrawID = &drawID
	}
	if claimedParam := c.Query("claimed"); claimedParam != "" {
		claimed := claimedParam == "true"
		filter.Claimed = &claimed
	}

	winners, err := h.claimService.ListWinners(c.Request.Context(), filter, queryInt(c, "page", 1), queryInt(c, "limit", 50))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"winners": winners})
}
