// Package server assembles the service graph and the HTTP routes.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"ledgerbook/internal/handlers"
	"ledgerbook/internal/metrics"
	"ledgerbook/internal/middleware"

	_ "ledgerbook/internal/docs" // Import swagger docs
)

// RouterConfig carries the settings the HTTP layer needs beyond services.
type RouterConfig struct {
	JWTSecret []byte
	JWTIssuer string
	OpsAPIKey string
	DB        handlers.Pinger
}

// NewRouter registers every route on a fresh engine.
func NewRouter(d *Dependencies, cfg RouterConfig) *gin.Engine {
	entryHandler := handlers.NewEntryHandler(d.entries, d.clock)
	settlementHandler := handlers.NewSettlementHandler(d.settlements)
	partyHandler := handlers.NewPartyHandler(d.parties)
	reportHandler := handlers.NewReportHandler(d.reports, d.clock)
	alertHandler := handlers.NewAlertHandler(d.alerts)
	healthHandler := handlers.NewHealthHandler(cfg.DB)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(metrics.Middleware())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", healthHandler.Health)
	router.GET("/metrics", middleware.OpsAuthMiddleware(cfg.OpsAPIKey), gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))

	entries := protected.Group("/entries")
	entries.POST("", entryHandler.CreateEntry)
	entries.GET("", entryHandler.ListEntries)
	entries.GET("/:id", entryHandler.GetEntry)
	entries.PUT("/:id", entryHandler.UpdateEntry)
	entries.DELETE("/:id", entryHandler.DeleteEntry)
	entries.GET("/:id/settlements", settlementHandler.ListEntrySettlements)

	settlements := protected.Group("/settlements")
	settlements.POST("", settlementHandler.CreateSettlement)
	settlements.GET("/:id", settlementHandler.GetSettlement)
	settlements.DELETE("/:id", settlementHandler.ReverseSettlement)

	parties := protected.Group("/parties")
	parties.POST("", partyHandler.CreateParty)
	parties.GET("", partyHandler.ListParties)
	parties.GET("/balances", partyHandler.PendingBalances)
	parties.GET("/:id", partyHandler.GetParty)
	parties.PUT("/:id", partyHandler.UpdateParty)
	parties.DELETE("/:id", partyHandler.DeleteParty)

	reports := protected.Group("/reports")
	reports.GET("/cash", reportHandler.CashReport)
	reports.GET("/accrual", reportHandler.AccrualReport)
	reports.GET("/trend", reportHandler.Trend)
	// Workbooks are expensive to render.
	reports.GET("/export", middleware.RateLimit(d.limiter), reportHandler.Export)

	alerts := protected.Group("/alerts")
	alerts.GET("", alertHandler.ListAlerts)
	alerts.PUT("/:id/read", alertHandler.MarkRead)
	alerts.DELETE("/:id", alertHandler.DeleteAlert)

	return router
}
