// Package api wires the HTTP surface onto the service layer.
package api

import (
	"github.com/AlterSupport/erad-trading-copilot-staging/internal/api/handlers"
	"github.com/AlterSupport/erad-trading-copilot-staging/internal/database"
	"github.com/AlterSupport/erad-trading-copilot-staging/internal/middleware"
	"github.com/AlterSupport/erad-trading-copilot-staging/internal/services"
	"github.com/gin-gonic/gin"
)

// Dependencies carries everything the route table needs.
type Dependencies struct {
	DB            *database.PostgresDB
	Redis         *database.RedisClient
	Auth          *middleware.AuthMiddleware
	Sessions      *services.SessionManager
	Orchestrator  *services.UploadOrchestrator
	Selections    *services.AssetSelectionStore
	PriceAlerts   *services.PriceAlertService
	Notifications *services.NotificationPrefsClient
}

// SetupRoutes registers all endpoints. Everything under /api/v1 requires a
// valid bearer token; only the health probe is open.
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Redis)
	sessionHandler := handlers.NewSessionHandler(deps.Sessions)
	blotterHandler := handlers.NewBlotterHandler(deps.Sessions, deps.Orchestrator)
	chatHandler := handlers.NewChatHandler(deps.Sessions)
	assetsHandler := handlers.NewAssetsHandler(deps.Selections)
	alertHandler := handlers.NewPriceAlertHandler(deps.PriceAlerts)
	notificationsHandler := handlers.NewNotificationsHandler(deps.Notifications)

	router.GET("/health", healthHandler.HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(deps.Auth.RequireAuth())
	{
		session := v1.Group("/session")
		{
			session.POST("/signin", sessionHandler.SignIn)
			session.POST("/signout", sessionHandler.SignOut)
		}

		blotter := v1.Group("/blotter")
		{
			blotter.GET("", blotterHandler.GetState)
			blotter.POST("/upload", blotterHandler.Upload)
			blotter.POST("/select", blotterHandler.Select)
			blotter.DELETE("/files/:name", blotterHandler.Remove)
			blotter.GET("/analysis/:name", blotterHandler.GetAnalysis)
		}

		chat := v1.Group("/chat")
		{
			chat.POST("", chatHandler.Send)
			chat.GET("/history", chatHandler.History)
			chat.DELETE("/history", chatHandler.Clear)
		}

		assets := v1.Group("/assets")
		{
			assets.GET("", assetsHandler.List)
			assets.GET("/selection", assetsHandler.GetSelection)
			assets.PUT("/selection", assetsHandler.SetSelection)
			assets.POST("/selection/toggle", assetsHandler.ToggleSelection)
			assets.POST("/selection/reset", assetsHandler.ResetSelection)
		}

		v1.POST("/price-alerts", alertHandler.Lookup)

		notifications := v1.Group("/notifications")
		{
			notifications.GET("/preferences", notificationsHandler.GetPreferences)
			notifications.POST("/preferences", notificationsHandler.SavePreferences)
		}
	}
}
