package http

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/buscapolo/fieldops/internal/config"
	"github.com/buscapolo/fieldops/internal/http/middleware"
)

// NewRouter builds the gin engine and registers every route.
func NewRouter(handler *Handler, authMiddleware gin.HandlerFunc, cfg *config.Config) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	rateLimiter := middleware.RateLimit(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)
	cacheStore := cache.New(cfg.Server.CacheTTL, 2*cfg.Server.CacheTTL)
	caching := middleware.Cache(cacheStore, cfg.Server.CacheTTL)

	api := router.Group("/api")
	api.Use(rateLimiter, authMiddleware)
	{
		api.GET("/clients", handler.listClients)
		api.POST("/clients", handler.createClient)
		api.GET("/clients/:id", handler.getClient)
		api.PUT("/clients/:id", handler.updateClient)
		api.DELETE("/clients/:id", handler.deleteClient)
		api.GET("/clients/:id/jobs", handler.clientJobs)

		api.GET("/quotes", handler.listQuotes)
		api.GET("/quotes/active", handler.listActiveQuotes)
		api.POST("/quotes", handler.createQuote)
		api.GET("/quotes/:id", handler.getQuote)
		api.PUT("/quotes/:id/status", handler.setQuoteStatus)
		api.POST("/quotes/:id/convert", handler.convertQuote)
		api.DELETE("/quotes/:id", handler.deleteQuote)
		api.GET("/quotes/:id/pdf", handler.quotePDF)

		api.GET("/jobs", handler.listJobs)
		api.GET("/jobs/week", handler.weekJobs)
		api.POST("/jobs", handler.createJob)
		api.GET("/jobs/:id", handler.getJob)
		api.PUT("/jobs/:id/payment", handler.setPaymentStatus)
		api.PUT("/jobs/:id/reschedule", handler.rescheduleJob)
		api.DELETE("/jobs/:id", handler.deleteJob)
		api.GET("/jobs/:id/receipt", handler.jobReceipt)

		api.GET("/summary/monthly", caching, handler.monthlySummary)
		api.GET("/summary/monthly/export", handler.exportMonthlySummary)

		api.GET("/backup/export", handler.exportBackup)
		api.POST("/backup/import", handler.importBackup)

		api.PUT("/subscriptions", handler.putSubscription)
		api.DELETE("/subscriptions", handler.deleteSubscription)
		api.GET("/vapid_public_key", handler.vapidKey)
	}

	return router
}
