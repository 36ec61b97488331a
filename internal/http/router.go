package api

import (
	"log"
	stdhttp "net/http"

	intconfig "rideshare/internal/config"
	h "rideshare/internal/http/handlers"
	"rideshare/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env, deps h.Deps) *gin.Engine {
	h.Configure(deps)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	authRequired := middleware.AuthRequired(deps.Auth.ParseToken)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/routes", h.Routes)

		// Auth
		auth := api.Group("/auth")
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/reset", h.RequestPasswordReset)
		auth.POST("/verify-otp", h.VerifyOTP)
		auth.GET("/profile", authRequired, h.Profile)

		// Users
		users := api.Group("/users")
		users.GET("", h.GetUsers)
		users.POST("", h.CreateUser)
		users.GET("/me/trips", h.GetMyTrips)
		users.GET("/:id", h.GetUserByID)
		users.PUT("/:id", authRequired, middleware.RequireSameUser("id"), h.UpdateUser)
		users.DELETE("/:id", authRequired, middleware.RequireSameUser("id"), h.DeleteUser)

		// Vehicles
		vehicles := api.Group("/vehicles")
		vehicles.GET("", h.GetVehicles)
		vehicles.POST("", h.CreateVehicle)
		vehicles.GET("/:id", h.GetVehicleByID)
		vehicles.PUT("/:id", h.UpdateVehicle)
		vehicles.DELETE("/:id", h.DeleteVehicle)
		vehicles.POST("/:id/photos", h.AddVehiclePhoto)

		// Trips
		trips := api.Group("/trips")
		trips.GET("/search", h.SearchTrips)
		trips.POST("", h.CreateTrip)
		trips.GET("/:tripId", h.GetTrip)
		trips.PUT("/:tripId", h.UpdateTrip)
		trips.POST("/:tripId/cancel", h.CancelTrip)
		trips.POST("/:tripId/init", h.InitTrip)

		// Bookings
		bookings := api.Group("/bookings", authRequired)
		bookings.POST("/trips/:tripId/bookings", h.CreateBooking)
		bookings.GET("/:bookingId", h.GetBooking)
		bookings.POST("/:bookingId/cancel", h.CancelBooking)
		bookings.POST("/:bookingId/rate", h.RateBooking)
		bookings.GET("/:bookingId/receipt", h.GetBookingReceipt)

		// Misc
		api.GET("/misc/eta/:lat1/:lng1/:lat2/:lng2", h.GetETA)
	}

	h.SetRouter(r)
	return r
}
