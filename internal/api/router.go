package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"laundry-booking-backend/config"
	"laundry-booking-backend/internal/metrics"
	"laundry-booking-backend/internal/mw"
)

// NewRouter creates and configures the Gin router.
func NewRouter(h *Handler, cfg *config.ServerConfig) *gin.Engine {
	r := gin.Default()

	r.Use(mw.RequestID())
	r.Use(metrics.Middleware())

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/slots", h.GetSlots)
		api.POST("/slots", h.CreateSlot)

		api.GET("/bookings", h.GetBookings)
		api.POST("/bookings", h.PostBooking)
		api.GET("/bookings/:id/receipt", h.GetReceipt)
		api.POST("/bookings/:id/cancel", h.CancelBooking)
		api.POST("/bookings/:id/validate", h.ValidateBooking)

		api.GET("/operator/queue", h.GetOperatorQueue)

		// Machine metadata changes rarely; serve the listing from cache.
		api.GET("/machines", caching, h.GetMachines)
		api.POST("/machines", h.CreateMachine)
		api.DELETE("/machines/:id", h.DeleteMachine)

		api.GET("/settings", h.GetSettings)
		api.PUT("/settings", h.PutSettings)

		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}
