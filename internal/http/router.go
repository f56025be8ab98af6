package api

import (
	"log"
	stdhttp "net/http"

	intconfig "transport/internal/config"
	h "transport/internal/http/handlers"
	"transport/internal/http/middleware"
	"transport/internal/services"

	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env, svc *services.ReservationService) *gin.Engine {
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}
	h.SetReservationService(svc)
	h.SetJWTSecret(env.JWTSecret)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS())

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

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/routes", h.Routes)

		auth := api.Group("/auth")
		auth.POST("/login", h.Login)

		trips := api.Group("/trips")
		trips.Use(middleware.RequireAuth(h.JWTSecret()))
		trips.GET("", h.GetTrips)
		trips.POST("", h.CreateTrip)
		trips.GET("/search", h.SearchTrip)
		trips.GET("/seats", h.GetTripSeats)
		trips.GET("/manifest", h.GetTripManifestPDF)

		res := api.Group("/reservations")
		res.Use(middleware.RequireAuth(h.JWTSecret()))
		res.POST("", h.ReserveSeats)

		offices := api.Group("/offices")
		offices.Use(middleware.RequireAuth(h.JWTSecret()))
		offices.GET("", h.GetOffices)
		offices.POST("", h.CreateOffice)

		destinations := api.Group("/destinations")
		destinations.Use(middleware.RequireAuth(h.JWTSecret()))
		destinations.GET("", h.GetDestinations)

		employees := api.Group("/employees")
		employees.Use(middleware.RequireAuth(h.JWTSecret()))
		employees.POST("", h.CreateEmployee)
	}

	h.SetRouter(r)
	return r
}
