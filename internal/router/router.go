// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/javajoker/purbeurre/internal/config"
	"github.com/javajoker/purbeurre/internal/database"
	"github.com/javajoker/purbeurre/internal/handlers"
	"github.com/javajoker/purbeurre/internal/middleware"
	"github.com/javajoker/purbeurre/internal/search"
	"github.com/javajoker/purbeurre/internal/services"
)

const version = "1.0.0"

func Initialize(db *gorm.DB, cfg *config.Config, index search.Index) *gin.Engine {
	// Initialize services
	authService := services.NewAuthService(db, cfg)
	userService := services.NewUserService(db)
	productService := services.NewProductService(db, index)
	substituteService := services.NewSubstituteService(db)
	reviewService := services.NewReviewService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	productHandler := handlers.NewProductHandler(productService)
	substituteHandler := handlers.NewSubstituteHandler(substituteService)
	reviewHandler := handlers.NewReviewHandler(reviewService)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.PrometheusMetrics())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(middleware.I18nMiddleware())
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
		r.Use(limiter.Middleware())
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		if err := database.Ping(db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": err.Error(),
				"version":  version,
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": version,
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		if cfg.RateLimit.Enabled {
			auth.Use(middleware.AuthRateLimit())
		}
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
		}

		// User routes
		users := v1.Group("/users")
		users.Use(middleware.AuthRequired())
		{
			users.GET("/profile", userHandler.GetProfile)
			users.PUT("/profile", userHandler.UpdateProfile)
			users.PUT("/password", userHandler.ChangePassword)
		}

		// Product routes
		products := v1.Group("/products")
		{
			products.GET("/search", productHandler.SearchProducts)
			products.GET("/slug/:slug", productHandler.GetProductBySlug)
			products.GET("/:id", productHandler.GetProduct)
			products.GET("/:id/rating", reviewHandler.GetAverageRating)
			products.GET("/:id/reviews", middleware.OptionalAuth(), reviewHandler.GetProductReviews)

			// Authenticated routes
			products.GET("/:id/substitutes", middleware.AuthRequired(), substituteHandler.FindSubstitutes)
			products.POST("/:id/reviews", middleware.AuthRequired(), reviewHandler.CreateReview)
		}

		// Substitute routes
		substitutes := v1.Group("/substitutes")
		substitutes.Use(middleware.AuthRequired())
		{
			substitutes.GET("", substituteHandler.ListSubstitutes)
			substitutes.POST("", substituteHandler.SaveSubstitute)
			substitutes.DELETE("/:id", substituteHandler.DeleteSubstitute)
		}

		// Review routes
		reviews := v1.Group("/reviews")
		{
			reviews.GET("/:id", reviewHandler.GetReview)

			protected := reviews.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.PUT("/:id", reviewHandler.UpdateReview)
				protected.DELETE("/:id", reviewHandler.DeleteReview)
			}
		}
	}

	return r
}
