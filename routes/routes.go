package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"slotify/handlers"
)

// RegisterRoutes wires every endpoint of the service.
func RegisterRoutes(r *gin.Engine, availabilityHandler *handlers.AvailabilityHandler, bookingHandler *handlers.BookingHandler) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", handlers.HealthHandler)

	api := r.Group("/api")
	{
		api.GET("/availability", availabilityHandler.GetAvailability)

		bookings := api.Group("/bookings")
		{
			bookings.POST("", bookingHandler.CommitBooking)
			bookings.GET("", bookingHandler.ListBookings)
			bookings.DELETE("/:id", bookingHandler.CancelBooking)
		}
	}
}
