package handlers

import "transport/internal/services"

var reservations *services.ReservationService

// SetReservationService stores the shared coordinator used by the REST handlers.
func SetReservationService(svc *services.ReservationService) {
	reservations = svc
}
