package protocol

import "transport/internal/domain/models"

// Frame constructors. Seq is filled in by the caller that owns the
// connection's sequence counter.

func NewLoginRequest(username, password string) Request {
	return Request{Type: LoginRequest, Username: username, Password: password}
}

func NewLogoutRequest(employeeID int64) Request {
	return Request{Type: LogoutRequest, EmployeeID: employeeID}
}

func NewGetAllTripsRequest() Request {
	return Request{Type: GetAllTripsRequest}
}

func NewGetTripRequest(destination, date, timeOfDay string) Request {
	return Request{Type: GetTripRequest, Destination: destination, Date: date, Time: timeOfDay}
}

func NewSearchTripSeatsRequest(destination, date, timeOfDay string) Request {
	return Request{Type: SearchTripSeatsRequest, Destination: destination, Date: date, Time: timeOfDay}
}

func NewReserveSeatsRequest(clientName string, seatNumbers []int, trip models.Trip, employeeID int64) Request {
	return Request{
		Type:        ReserveSeatsRequest,
		ClientName:  clientName,
		SeatNumbers: seatNumbers,
		Trip:        &trip,
		EmployeeID:  employeeID,
	}
}

func NewOkResponse(seq uint64) Response {
	return Response{Seq: seq, Type: OkResponse}
}

func NewErrorResponse(seq uint64, message string) Response {
	return Response{Seq: seq, Type: ErrorResponse, ErrorMessage: message}
}

func NewEmployeeLoggedInResponse(seq uint64, employee models.Employee) Response {
	return Response{Seq: seq, Type: EmployeeLoggedInResponse, Employee: &employee}
}

func NewFindAllTripsResponse(seq uint64, trips []models.Trip) Response {
	return Response{Seq: seq, Type: FindAllTripsResponse, Trips: trips}
}

func NewFindTripResponse(seq uint64, trip models.Trip) Response {
	return Response{Seq: seq, Type: FindTripResponse, Trip: &trip}
}

func NewFindTripSeatsResponse(seq uint64, seats []models.SeatAssignment) Response {
	return Response{Seq: seq, Type: FindTripSeatsResponse, Seats: seats}
}

// NewSeatsReservedNotification is the single push frame: seq 0, no payload.
// Receivers are expected to re-fetch whatever they display.
func NewSeatsReservedNotification() Response {
	return Response{Seq: 0, Type: SeatsReservedResponse}
}
