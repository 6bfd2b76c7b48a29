package routes

import (
	"github.com/gin-gonic/gin"

	config "github.com/phillip/event-marketplace-go/config"
	controllers "github.com/phillip/event-marketplace-go/controllers"
	core "github.com/phillip/event-marketplace-go/core"
	middleware "github.com/phillip/event-marketplace-go/middleware"
)

func SetupRoutes(r *gin.Engine, cfg *config.Config, bookings *core.Bookings, rsvps *core.RSVPs, reviews *core.Reviews, counters *core.Counters) {
	// public
	r.POST("/auth/register", controllers.Register(cfg))
	r.POST("/auth/login", controllers.Login(cfg))
	r.POST("/auth/refresh", controllers.RefreshToken(cfg))

	// protected
	auth := middleware.AuthMiddleware(cfg)

	events := r.Group("/events")
	events.Use(auth)
	{
		events.POST("", controllers.CreateEvent(cfg))
		events.GET("", controllers.ListEvents(cfg))
		events.GET("/:id", controllers.GetEvent(cfg))
		events.PATCH("/:id", controllers.UpdateEvent(cfg))
		events.DELETE("/:id", controllers.DeleteEvent(cfg))

		events.POST("/:id/rsvp", controllers.UpsertRSVP(rsvps))
		events.GET("/:id/rsvps", controllers.ListEventRSVPs(cfg))
		events.POST("/:id/checkin", controllers.CheckInByCode(rsvps))
	}

	services := r.Group("/services")
	services.Use(auth)
	{
		services.POST("", controllers.CreateService(cfg))
		services.GET("", controllers.ListServices(cfg))
		services.GET("/:id", controllers.GetService(cfg))
		services.PATCH("/:id", controllers.UpdateService(cfg))
		services.DELETE("/:id", controllers.DeleteService(cfg))

		services.GET("/:id/reviews", controllers.ListServiceReviews(cfg))
	}

	bookingsGrp := r.Group("/bookings")
	bookingsGrp.Use(auth)
	{
		bookingsGrp.POST("", controllers.CreateBooking(bookings))
		bookingsGrp.GET("", controllers.ListBookings(cfg))
		bookingsGrp.GET("/:id", controllers.GetBooking(cfg))
		bookingsGrp.POST("/:id/confirm", controllers.ConfirmBooking(bookings))
		bookingsGrp.POST("/:id/start", controllers.StartBooking(bookings))
		bookingsGrp.POST("/:id/complete", controllers.CompleteBooking(bookings))
		bookingsGrp.POST("/:id/cancel", controllers.CancelBooking(bookings))
		bookingsGrp.POST("/:id/refund", controllers.RefundBooking(bookings))
		bookingsGrp.POST("/:id/payments", controllers.RecordBookingPayment(bookings))
	}

	rsvpsGrp := r.Group("/rsvps")
	rsvpsGrp.Use(auth)
	{
		rsvpsGrp.POST("/:id/cancel", controllers.CancelRSVP(rsvps))
		rsvpsGrp.POST("/:id/checkin", controllers.CheckInRSVP(rsvps))
		rsvpsGrp.POST("/:id/attended", controllers.MarkRSVPAttended(rsvps))
		rsvpsGrp.POST("/:id/rate", controllers.RateEvent(rsvps))
	}

	reviewsGrp := r.Group("/reviews")
	reviewsGrp.Use(auth)
	{
		reviewsGrp.POST("", controllers.CreateReview(reviews))
		reviewsGrp.POST("/:id/respond", controllers.RespondToReview(reviews))
		reviewsGrp.POST("/:id/helpful", controllers.ToggleReviewHelpful(reviews))
	}

	notifs := r.Group("/notifications")
	notifs.Use(auth)
	{
		notifs.GET("", controllers.ListNotifications(cfg))
		notifs.PATCH("/:id/read", controllers.MarkNotificationRead(cfg))
	}

	admin := r.Group("/admin")
	admin.Use(auth, middleware.RequireAdmin())
	{
		admin.PATCH("/reviews/:id/moderate", controllers.ModerateReview(reviews))
		admin.POST("/recount/events/:id", controllers.RecountEvent(counters))
		admin.POST("/recount/services/:id", controllers.RecountService(counters))
	}
}
