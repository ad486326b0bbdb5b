package routes

import (
	"copool/internal/handlers"
	"copool/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRideRoutes sets up ride lifecycle, chat and payment routes
func SetupRideRoutes(r *gin.RouterGroup, rideHandler *handlers.RideHandler, chatHandler *handlers.ChatHandler, paymentHandler *handlers.PaymentHandler, jwtSecret string) {
	rides := r.Group("/rides")
	rides.Use(middleware.AuthRequired(jwtSecret))
	{
		rides.POST("", rideHandler.OfferRide)
		rides.GET("", rideHandler.ListRides)
		rides.GET("/mine", rideHandler.MyRides)
		rides.GET("/:id", rideHandler.GetRide)
		rides.PUT("/:id", rideHandler.UpdateRide)

		rides.POST("/:id/join", rideHandler.JoinRide)
		rides.POST("/:id/leave", rideHandler.LeaveRide)
		rides.POST("/:id/cancel", rideHandler.CancelRide)
		rides.POST("/:id/complete", rideHandler.CompleteRide)

		// Per-ride chat log; clients poll with ?last_seq=
		rides.POST("/:id/messages", chatHandler.PostMessage)
		rides.GET("/:id/messages", chatHandler.ListMessages)

		// Payment reconciliation
		rides.GET("/:id/payments", paymentHandler.ListPayments)
		rides.GET("/:id/payments/:rider_id", paymentHandler.GetPayment)
		rides.POST("/:id/payments/paid", paymentHandler.MarkPaid)
		rides.POST("/:id/payments/:rider_id/received", paymentHandler.MarkReceived)
	}
}
