package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scoreplay/promo-backend/internal/config"
	"github.com/scoreplay/promo-backend/internal/handlers"
	"github.com/scoreplay/promo-backend/internal/middleware"
)

// HandlerDependencies groups everything the router wires together.
type HandlerDependencies struct {
	Config       *config.Config
	AuthHandler  *handlers.AuthHandler
	TierHandler  *handlers.TierHandler
	EntryHandler *handlers.EntryHandler
	DrawHandler  *handlers.DrawHandler
	ClaimHandler *handlers.ClaimHandler
	AuditHandler *handlers.AuditHandler
}

// SetupRouter configures the Gin router with all routes and middleware
func SetupRouter(deps HandlerDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		api.POST("/auth/login", deps.AuthHandler.Login)

		// Participant-facing surface.
		api.GET("/tiers", deps.TierHandler.ListActive)
		api.GET("/tiers/:id", deps.TierHandler.Get)
		api.POST("/entries", deps.EntryHandler.Enter)
		api.GET("/entries/eligibility", deps.EntryHandler.CheckEligibility)
		api.GET("/entries/mine/:msisdn", deps.EntryHandler.MyEntries)

		// Back-office surface, admin operators only.
		admin := api.Group("/admin")
		admin.Use(middleware.AuthMiddleware(deps.Config))
		admin.Use(middleware.AdminMiddleware())
		{
			admin.GET("/tiers", deps.TierHandler.ListWithStats)
			admin.POST("/tiers", deps.TierHandler.Create)
			admin.PUT("/tiers/:id", deps.TierHandler.Update)
			admin.DELETE("/tiers/:id", deps.TierHandler.Delete)

			admin.GET("/entries", deps.EntryHandler.List)

			admin.POST("/tiers/:id/draw", deps.DrawHandler.Conduct)
			admin.GET("/tiers/:id/draws", deps.DrawHandler.ListByTier)
			admin.GET("/draws", deps.DrawHandler.List)
			admin.GET("/draws/:id", deps.DrawHandler.Get)
			admin.GET("/draws/:id/winners", deps.DrawHandler.Winners)

			admin.POST("/claims", deps.ClaimHandler.Claim)
			admin.GET("/claims/:code", deps.ClaimHandler.Lookup)
			admin.GET("/winners", deps.ClaimHandler.ListWinners)

			admin.GET("/audit", deps.AuditHandler.List)
		}
	}

	return router
}
