package api

import (
	"github.com/Nhom4-LTM-UDM17/BTL-LTM-N4/internal/api/handlers"
	"github.com/Nhom4-LTM-UDM17/BTL-LTM-N4/internal/config"
	"github.com/Nhom4-LTM-UDM17/BTL-LTM-N4/internal/history"
	"github.com/Nhom4-LTM-UDM17/BTL-LTM-N4/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// SetupRoutes configures the observer and operator API. stop triggers
// the server's graceful shutdown.
func SetupRoutes(router *gin.Engine, db *sqlx.DB, cfg *config.Config, store *history.Store, stop func()) {
	router.Use(middleware.CORSMiddleware(cfg))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck)

		// Read-only observer endpoints
		v1.GET("/users", handlers.ListUsers)
		v1.GET("/matches", handlers.ListMatches)
		v1.GET("/matches/:id", handlers.GetMatch)
		v1.GET("/matches/:id/ws", handlers.WatchMatch)
		v1.GET("/history", handlers.ListHistory(store))
		v1.GET("/history/:id", handlers.GetHistoryMatch(store))

		// Operator endpoints
		adminGroup := v1.Group("/admin")
		{
			adminGroup.POST("/login", handlers.OperatorLogin(db, cfg))
			adminGroup.GET("/audit", handlers.OperatorAuthRequired(cfg), handlers.GetOperatorAudit(db))
			adminGroup.POST("/shutdown", handlers.OperatorAuthRequired(cfg), handlers.Shutdown(db, stop))
		}
	}
}
