package handlers

import (
	"net/http"

	"transport/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

type reserveRequest struct {
	Destination string `json:"destination"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	ClientName  string `json:"client_name"`
	SeatNumbers []int  `json:"seat_numbers"`
}

// POST /api/reservations
func ReserveSeats(c *gin.Context) {
	employeeID, ok := middleware.EmployeeID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "auth_error", "missing authenticated employee", nil)
		return
	}

	var req reserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_payload", "invalid payload", nil)
		return
	}

	trip, err := reservations.GetTrip(req.Destination, req.Date, req.Time)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	if err := reservations.ReserveSeats(req.ClientName, req.SeatNumbers, trip, employeeID); err != nil {
		RespondDomainError(c, err)
		return
	}

	seats, err := reservations.SearchTripSeats(req.Destination, req.Date, req.Time)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "seats reserved", "seats": seats})
}
