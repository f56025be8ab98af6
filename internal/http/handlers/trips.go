package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/trips
func GetTrips(c *gin.Context) {
	trips, err := reservations.ListTrips()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trips": trips})
}

// GET /api/trips/search?destination=...&date=...&time=...
func SearchTrip(c *gin.Context) {
	trip, err := reservations.GetTrip(c.Query("destination"), c.Query("date"), c.Query("time"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trip": trip})
}

// GET /api/trips/seats?destination=...&date=...&time=...
func GetTripSeats(c *gin.Context) {
	seats, err := reservations.SearchTripSeats(c.Query("destination"), c.Query("date"), c.Query("time"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"seats": seats})
}
