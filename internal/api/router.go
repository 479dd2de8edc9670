package api

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/api/handlers"
	"github.com/jafarshop/storefront/internal/api/middleware"
	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/repository"
	"github.com/jafarshop/storefront/internal/validation"
)

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, repos *repository.Repositories, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Checkout rules are shared with the storefront client
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := validation.RegisterRules(v); err != nil {
			logger.Fatal("Failed to register validation rules", zap.Error(err))
		}
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := router.Group("/v1")
	v1.Use(middleware.AuthMiddleware(cfg.API.KeyHash, logger))
	{
		v1.POST("/orders", handlers.HandleCreateOrder(repos, logger))
		v1.GET("/orders", handlers.HandleListOrders(repos, logger))
		v1.GET("/orders/:id", handlers.HandleGetOrder(repos, logger))
		v1.POST("/orders/:id/reconcile", handlers.HandleReconcileOrder(repos, logger))
		v1.POST("/orders/:id/cancel", handlers.HandleCancelOrder(repos, logger))
		v1.POST("/order-items", handlers.HandleAttachItem(repos, logger))

		v1.POST("/payments", handlers.HandlePaymentNotification(repos, logger))
		v1.GET("/payments/:reference", handlers.HandleGetPayment(repos, logger))
	}

	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
		)
	}
}
