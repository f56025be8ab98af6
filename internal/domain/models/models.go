package models

// Office is the branch an employee works from.
type Office struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

// Employee is a clerk account. PasswordHash never leaves the server; the
// field is dropped from every wire payload.
type Employee struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	OfficeID     int64  `json:"office_id"`
}

// Destination is a city a trip runs to.
type Destination struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Trip is a scheduled departure. AvailableSeats is the only field mutated
// after load, and only inside the reservation service's exclusive section.
// Date and time are kept as fixed-format strings (YYYY-MM-DD, HH:MM) so the
// wire encoding stays identical between processes.
type Trip struct {
	ID             int64  `json:"id"`
	Destination    string `json:"destination"`
	DestinationID  int64  `json:"destination_id"`
	DepartureDate  string `json:"departure_date"`
	DepartureTime  string `json:"departure_time"`
	AvailableSeats int    `json:"available_seats"`
}

// Client is the person a reservation is made for, resolved or created by
// name at commit time.
type Client struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ReservedSeat is one committed seat row.
type ReservedSeat struct {
	ID         int64  `json:"id"`
	TripID     int64  `json:"trip_id"`
	EmployeeID int64  `json:"employee_id"`
	SeatNumber int    `json:"seat_number"`
	ClientID   int64  `json:"client_id"`
	ClientName string `json:"client_name"`
}

// UnassignedSeat marks a seat with no booking row in a seat map.
const UnassignedSeat = "-"

// SeatAssignment is one entry of a trip's seat map: the seat number and the
// occupying client's name, or UnassignedSeat.
type SeatAssignment struct {
	SeatNumber int    `json:"seat_number"`
	ClientName string `json:"client_name"`
}
