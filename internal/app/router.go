package app

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"parkride/internal/handler"
	"parkride/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	FacilityHandler *handler.FacilityHandler
	BookingHandler  *handler.BookingHandler
	PaymentHandler  *handler.PaymentHandler
	UserHandler     *handler.UserHandler
	JWTSecret       string
	AllowedOrigins  []string
	RedisClient     *redis.Client // nil disables idempotent replay
	NewRelicApp     *newrelic.Application
	Logger          logrus.FieldLogger
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(cors.New(corsConfig(deps.AllowedOrigins)))

	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authenticated := []gin.HandlerFunc{
		middleware.RequireAuth(deps.JWTSecret),
		middleware.IdempotencyMiddleware(deps.RedisClient),
	}

	api := router.Group("/api")
	{
		parking := api.Group("/parking")
		{
			parking.GET("/facilities", deps.FacilityHandler.ListFacilities)
			parking.GET("/facilities/:id", deps.FacilityHandler.GetFacility)
			parking.GET("/search", deps.FacilityHandler.SearchFacilities)

			secured := parking.Group("", authenticated...)
			secured.POST("/facilities/:id/reviews", deps.FacilityHandler.SubmitReview)
			secured.POST("/bookings", deps.BookingHandler.CreateBooking)
			secured.GET("/bookings/:id", deps.BookingHandler.GetBooking)
			secured.PUT("/bookings/:id/cancel", deps.BookingHandler.CancelBooking)
		}

		payments := api.Group("/payments", authenticated...)
		{
			payments.GET("/:id", deps.PaymentHandler.GetPayment)
			payments.POST("/:id/process", deps.PaymentHandler.ProcessPayment)
		}

		users := api.Group("/users", authenticated...)
		{
			users.GET("/bookings", deps.UserHandler.ListBookings)
			users.GET("/payments", deps.UserHandler.ListPayments)
		}
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
