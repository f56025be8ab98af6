package services

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"transport/internal/domain"
	"transport/internal/domain/models"
	"transport/internal/utils"
)

// SeatCount is the fixed seat range of every trip. Not configurable per
// trip; inherited from the vehicle fleet.
const SeatCount = 18

const (
	notifyWorkers   = 5
	notifyQueueSize = 64
)

// Notifier is the capability registered for a logged-in session: one method,
// invoked when another session commits a reservation. Implementations must
// tolerate being called from a pool goroutine.
type Notifier interface {
	SeatsReserved() error
}

// Persistence collaborators. The service treats them as synchronous and
// blocking; each implementation serializes its own storage access.
type EmployeeStore interface {
	FindByUsername(username string) (models.Employee, error)
}

type TripStore interface {
	FindAll() ([]models.Trip, error)
	FindByID(id int64) (models.Trip, error)
	FindByDestinationDateTime(destination, date, timeOfDay string) (models.Trip, error)
	UpdateAvailableSeats(tripID int64, availableSeats int) error
}

type ClientStore interface {
	FindByName(name string) (models.Client, error)
	Save(c models.Client) (models.Client, error)
}

type ReservedSeatStore interface {
	ListByTripID(tripID int64) ([]models.ReservedSeat, error)
	Save(s models.ReservedSeat) (models.ReservedSeat, error)
}

type notifyJob struct {
	employeeID int64
	sink       Notifier
}

// ReservationService is the single shared-state authority for sessions and
// the seat inventory. Every mutating operation runs inside one service-wide
// exclusive section; a worker-pool drains notification fan-out so a slow
// client socket cannot stall the committing request.
type ReservationService struct {
	Employees EmployeeStore
	Trips     TripStore
	Clients   ClientStore
	Seats     ReservedSeatStore

	mu       sync.Mutex
	sessions map[int64]Notifier

	jobs      chan notifyJob
	closeOnce sync.Once
}

func NewReservationService(employees EmployeeStore, trips TripStore,
	clients ClientStore, seats ReservedSeatStore) *ReservationService {
	s := &ReservationService{
		Employees: employees,
		Trips:     trips,
		Clients:   clients,
		Seats:     seats,
		sessions:  make(map[int64]Notifier),
		jobs:      make(chan notifyJob, notifyQueueSize),
	}
	for i := 0; i < notifyWorkers; i++ {
		go s.notifyLoop()
	}
	return s
}

// Close stops the notifier pool. Pending deliveries are drained first.
func (s *ReservationService) Close() {
	s.closeOnce.Do(func() { close(s.jobs) })
}

func (s *ReservationService) notifyLoop() {
	for job := range s.jobs {
		if err := job.sink.SeatsReserved(); err != nil {
			utils.LogEvent("", "reservations", "notify_failed",
				fmt.Sprintf("employee_id=%d err=%v", job.employeeID, err))
		}
	}
}

// Login verifies credentials and registers sink as the employee's session.
// At most one live session per employee id: a second login is rejected
// until the first logs out or disconnects.
func (s *ReservationService) Login(username, password string, sink Notifier) (models.Employee, error) {
	employee, err := s.Employees.FindByUsername(username)
	if err != nil {
		if domain.IsNotFound(err) {
			return models.Employee{}, domain.AuthError{Msg: "invalid username or password"}
		}
		return models.Employee{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, active := s.sessions[employee.ID]; active {
		return models.Employee{}, domain.ConflictError{Resource: "session", Msg: "employee already logged in"}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(employee.PasswordHash), []byte(password)); err != nil {
		return models.Employee{}, domain.AuthError{Msg: "invalid username or password"}
	}

	s.sessions[employee.ID] = sink
	utils.LogEvent("", "reservations", "login", fmt.Sprintf("employee_id=%d", employee.ID))
	return employee, nil
}

// Logout removes the employee's session.
func (s *ReservationService) Logout(employeeID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, active := s.sessions[employeeID]; !active {
		return domain.ConflictError{Resource: "session", Msg: "employee is not logged in"}
	}
	delete(s.sessions, employeeID)
	utils.LogEvent("", "reservations", "logout", fmt.Sprintf("employee_id=%d", employeeID))
	return nil
}

// Disconnect releases a session after a connection loss. Unlike Logout it is
// silent when no session exists, because a worker may close before its client
// ever logged in.
func (s *ReservationService) Disconnect(employeeID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, employeeID)
}

// LoggedIn reports whether the employee currently holds a session.
func (s *ReservationService) LoggedIn(employeeID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, active := s.sessions[employeeID]
	return active
}

// ListTrips returns a snapshot of the trip inventory.
func (s *ReservationService) ListTrips() ([]models.Trip, error) {
	return s.Trips.FindAll()
}

// GetTrip resolves one trip by destination name, date and departure time.
func (s *ReservationService) GetTrip(destination, date, timeOfDay string) (models.Trip, error) {
	if err := validateTripKey(destination, date, timeOfDay); err != nil {
		return models.Trip{}, err
	}
	return s.Trips.FindByDestinationDateTime(destination, date, timeOfDay)
}

// SearchTripSeats returns the fixed 1..SeatCount seat map for a trip,
// defaulting to UnassignedSeat where no booking row exists.
func (s *ReservationService) SearchTripSeats(destination, date, timeOfDay string) ([]models.SeatAssignment, error) {
	if err := validateTripKey(destination, date, timeOfDay); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	trip, err := s.Trips.FindByDestinationDateTime(destination, date, timeOfDay)
	if err != nil {
		return nil, err
	}
	reserved, err := s.Seats.ListByTripID(trip.ID)
	if err != nil {
		return nil, err
	}

	byNumber := make(map[int]string, len(reserved))
	for _, seat := range reserved {
		byNumber[seat.SeatNumber] = seat.ClientName
	}

	seatMap := make([]models.SeatAssignment, 0, SeatCount)
	for n := 1; n <= SeatCount; n++ {
		name, ok := byNumber[n]
		if !ok {
			name = models.UnassignedSeat
		}
		seatMap = append(seatMap, models.SeatAssignment{SeatNumber: n, ClientName: name})
	}
	return seatMap, nil
}

// ReserveSeats commits seatNumbers on trip for clientName, acting as
// employeeID. The client row, the seat rows and the availableSeats update
// all happen inside the exclusive section, so no concurrent call observes a
// half-applied reservation. On success every other session gets one
// best-effort SeatsReserved delivery attempt.
func (s *ReservationService) ReserveSeats(clientName string, seatNumbers []int, trip models.Trip, employeeID int64) error {
	clientName = utils.NormalizeSpace(clientName)
	if clientName == "" {
		return domain.ValidationError{Field: "client_name", Msg: "required"}
	}
	if len(seatNumbers) == 0 {
		return domain.ValidationError{Field: "seat_numbers", Msg: "required"}
	}
	seen := make(map[int]bool, len(seatNumbers))
	for _, n := range seatNumbers {
		if n < 1 || n > SeatCount {
			return domain.ValidationError{Field: "seat_numbers", Msg: fmt.Sprintf("seat %d out of range 1..%d", n, SeatCount)}
		}
		if seen[n] {
			return domain.ValidationError{Field: "seat_numbers", Msg: fmt.Sprintf("seat %d listed twice", n)}
		}
		seen[n] = true
	}

	s.mu.Lock()

	if err := s.commitReservation(clientName, seatNumbers, trip.ID, employeeID); err != nil {
		s.mu.Unlock()
		return err
	}

	recipients := make([]notifyJob, 0, len(s.sessions))
	for id, sink := range s.sessions {
		if id == employeeID {
			continue
		}
		recipients = append(recipients, notifyJob{employeeID: id, sink: sink})
	}
	s.mu.Unlock()

	for _, job := range recipients {
		select {
		case s.jobs <- job:
		default:
			utils.LogEvent("", "reservations", "notify_dropped",
				fmt.Sprintf("employee_id=%d queue full", job.employeeID))
		}
	}
	return nil
}

// commitReservation holds s.mu. Writes are not rolled back on a late
// failure; the operator retries and the storage unique key rejects
// duplicate seat rows.
func (s *ReservationService) commitReservation(clientName string, seatNumbers []int, tripID, employeeID int64) error {
	trip, err := s.Trips.FindByID(tripID)
	if err != nil {
		return err
	}
	if trip.AvailableSeats < len(seatNumbers) {
		return domain.ConflictError{Resource: "trip", Msg: "not enough available seats"}
	}

	reserved, err := s.Seats.ListByTripID(trip.ID)
	if err != nil {
		return err
	}
	taken := make(map[int]bool, len(reserved))
	for _, seat := range reserved {
		taken[seat.SeatNumber] = true
	}
	for _, n := range seatNumbers {
		if taken[n] {
			return domain.ConflictError{Resource: "seat", Msg: fmt.Sprintf("seat %d already reserved", n)}
		}
	}

	client, err := s.Clients.FindByName(clientName)
	if err != nil {
		if !domain.IsNotFound(err) {
			return err
		}
		client, err = s.Clients.Save(models.Client{Name: clientName})
		if err != nil {
			return err
		}
	}

	for _, n := range seatNumbers {
		if _, err := s.Seats.Save(models.ReservedSeat{
			TripID:     trip.ID,
			EmployeeID: employeeID,
			SeatNumber: n,
			ClientID:   client.ID,
			ClientName: client.Name,
		}); err != nil {
			return err
		}
	}

	if err := s.Trips.UpdateAvailableSeats(trip.ID, trip.AvailableSeats-len(seatNumbers)); err != nil {
		return err
	}

	utils.LogEvent("", "reservations", "reserve",
		fmt.Sprintf("trip_id=%d employee_id=%d seats=%d", trip.ID, employeeID, len(seatNumbers)))
	return nil
}

func validateTripKey(destination, date, timeOfDay string) error {
	if utils.TrimOrEmpty(destination) == "" {
		return domain.ValidationError{Field: "destination", Msg: "required"}
	}
	if !utils.ValidDate(date) {
		return domain.ValidationError{Field: "date", Msg: "expected YYYY-MM-DD"}
	}
	if !utils.ValidTimeOfDay(timeOfDay) {
		return domain.ValidationError{Field: "time", Msg: "expected HH:MM"}
	}
	return nil
}
