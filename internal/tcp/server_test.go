package tcp

import (
	"bufio"
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"transport/client"
	"transport/internal/domain"
	"transport/internal/domain/models"
	"transport/internal/services"
)

// Minimal in-memory persistence for wire-level tests.

type testStore struct {
	mu        sync.Mutex
	employees map[string]models.Employee
	trips     map[int64]models.Trip
	clients   map[string]models.Client
	seats     []models.ReservedSeat
	nextID    int64
}

func newTestStore() *testStore {
	return &testStore{
		employees: map[string]models.Employee{},
		trips:     map[int64]models.Trip{},
		clients:   map[string]models.Client{},
		nextID:    1000,
	}
}

func (s *testStore) addEmployee(t *testing.T, id int64, username, password string) models.Employee {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	e := models.Employee{ID: id, Username: username, PasswordHash: string(hash), OfficeID: 1}
	s.employees[username] = e
	return e
}

func (s *testStore) addTrip(id int64, destination, date, timeOfDay string, seats int) models.Trip {
	trip := models.Trip{ID: id, Destination: destination, DestinationID: 1,
		DepartureDate: date, DepartureTime: timeOfDay, AvailableSeats: seats}
	s.trips[id] = trip
	return trip
}

func (s *testStore) FindByUsername(username string) (models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.employees[username]
	if !ok {
		return e, domain.NotFoundError{Resource: "employee"}
	}
	return e, nil
}

func (s *testStore) FindAll() ([]models.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	trips := []models.Trip{}
	for _, t := range s.trips {
		trips = append(trips, t)
	}
	return trips, nil
}

func (s *testStore) FindByID(id int64) (models.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trips[id]
	if !ok {
		return t, domain.NotFoundError{Resource: "trip"}
	}
	return t, nil
}

func (s *testStore) FindByDestinationDateTime(destination, date, timeOfDay string) (models.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.trips {
		if t.Destination == destination && t.DepartureDate == date && t.DepartureTime == timeOfDay {
			return t, nil
		}
	}
	return models.Trip{}, domain.NotFoundError{Resource: "trip"}
}

func (s *testStore) UpdateAvailableSeats(tripID int64, availableSeats int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trips[tripID]
	if !ok {
		return domain.NotFoundError{Resource: "trip"}
	}
	t.AvailableSeats = availableSeats
	s.trips[tripID] = t
	return nil
}

func (s *testStore) FindByName(name string) (models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[name]
	if !ok {
		return c, domain.NotFoundError{Resource: "client"}
	}
	return c, nil
}

func (s *testStore) Save(c models.Client) (models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	c.ID = s.nextID
	s.clients[c.Name] = c
	return c, nil
}

type testSeatStore struct{ s *testStore }

func (ss testSeatStore) ListByTripID(tripID int64) ([]models.ReservedSeat, error) {
	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()
	seats := []models.ReservedSeat{}
	for _, row := range ss.s.seats {
		if row.TripID == tripID {
			seats = append(seats, row)
		}
	}
	return seats, nil
}

func (ss testSeatStore) Save(row models.ReservedSeat) (models.ReservedSeat, error) {
	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()
	ss.s.nextID++
	row.ID = ss.s.nextID
	ss.s.seats = append(ss.s.seats, row)
	return row, nil
}

func startServer(t *testing.T, store *testStore) (addr string, svc *services.ReservationService) {
	t.Helper()
	svc = services.NewReservationService(store, store, store, testSeatStore{s: store})
	srv := NewServer("127.0.0.1:0", svc)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Serve(ctx, ln); err != nil {
			t.Errorf("serve: %v", err)
		}
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		svc.Close()
	})
	return ln.Addr().String(), svc
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not reached: %s", msg)
}

func TestReserveNotifiesOtherSession(t *testing.T) {
	store := newTestStore()
	ana := store.addEmployee(t, 1, "ana", "secret")
	store.addEmployee(t, 2, "bob", "secret")
	trip := store.addTrip(10, "Cluj", "2025-06-01", "08:30", services.SeatCount)
	addr, _ := startServer(t, store)

	var bobPushes sync.WaitGroup
	bobPushes.Add(1)
	anaGot := make(chan struct{}, 8)

	a, err := client.New(client.Config{Addr: addr, OnSeatsReserved: func() { anaGot <- struct{}{} }})
	if err != nil {
		t.Fatalf("new client a: %v", err)
	}
	defer a.Close()
	b, err := client.New(client.Config{Addr: addr, OnSeatsReserved: func() { bobPushes.Done() }})
	if err != nil {
		t.Fatalf("new client b: %v", err)
	}
	defer b.Close()

	if _, err := a.Login("ana", "secret"); err != nil {
		t.Fatalf("login ana: %v", err)
	}
	if _, err := b.Login("bob", "secret"); err != nil {
		t.Fatalf("login bob: %v", err)
	}

	if err := a.ReserveSeats("X", []int{1, 2}, trip, ana.ID); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	pushed := make(chan struct{})
	go func() { bobPushes.Wait(); close(pushed) }()
	select {
	case <-pushed:
	case <-time.After(2 * time.Second):
		t.Fatalf("bob never received the seat-change push")
	}

	seats, err := b.SearchTripSeats("Cluj", "2025-06-01", "08:30")
	if err != nil {
		t.Fatalf("seat map: %v", err)
	}
	if len(seats) != services.SeatCount {
		t.Fatalf("seat map size: got %d want %d", len(seats), services.SeatCount)
	}
	for _, s := range seats {
		want := models.UnassignedSeat
		if s.SeatNumber == 1 || s.SeatNumber == 2 {
			want = "X"
		}
		if s.ClientName != want {
			t.Fatalf("seat %d: got %q want %q", s.SeatNumber, s.ClientName, want)
		}
	}

	got, err := b.GetTrip("Cluj", "2025-06-01", "08:30")
	if err != nil {
		t.Fatalf("get trip: %v", err)
	}
	if got.AvailableSeats != services.SeatCount-2 {
		t.Fatalf("available seats: got %d want %d", got.AvailableSeats, services.SeatCount-2)
	}

	select {
	case <-anaGot:
		t.Fatalf("acting session must not receive its own notification")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSecondLoginRejectedAcrossConnections(t *testing.T) {
	store := newTestStore()
	store.addEmployee(t, 1, "ana", "secret")
	addr, _ := startServer(t, store)

	a, _ := client.New(client.Config{Addr: addr})
	defer a.Close()
	b, _ := client.New(client.Config{Addr: addr})
	defer b.Close()

	if _, err := a.Login("ana", "secret"); err != nil {
		t.Fatalf("first login: %v", err)
	}
	_, err := b.Login("ana", "secret")
	var svcErr *client.ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected business error for second login, got %v", err)
	}

	// The rejected connection stays usable: bob's client can still read data.
	if _, err := b.GetAllTrips(); err != nil {
		t.Fatalf("connection unusable after rejected login: %v", err)
	}
}

func TestLogoutReleasesSession(t *testing.T) {
	store := newTestStore()
	ana := store.addEmployee(t, 1, "ana", "secret")
	addr, _ := startServer(t, store)

	a, _ := client.New(client.Config{Addr: addr})
	if _, err := a.Login("ana", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := a.Logout(ana.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}

	b, _ := client.New(client.Config{Addr: addr})
	defer b.Close()
	if _, err := b.Login("ana", "secret"); err != nil {
		t.Fatalf("login after logout: %v", err)
	}
}

func TestConnectionLossReleasesSession(t *testing.T) {
	store := newTestStore()
	store.addEmployee(t, 1, "ana", "secret")
	addr, svc := startServer(t, store)

	a, _ := client.New(client.Config{Addr: addr})
	if _, err := a.Login("ana", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	a.Close()

	waitFor(t, 2*time.Second, func() bool { return !svc.LoggedIn(1) },
		"session released after connection loss")

	b, _ := client.New(client.Config{Addr: addr})
	defer b.Close()
	if _, err := b.Login("ana", "secret"); err != nil {
		t.Fatalf("login after drop: %v", err)
	}
}

func TestGarbledLineClosesOnlyThatConnection(t *testing.T) {
	store := newTestStore()
	store.addEmployee(t, 1, "ana", "secret")
	store.addTrip(10, "Cluj", "2025-06-01", "08:30", services.SeatCount)
	addr, _ := startServer(t, store)

	good, _ := client.New(client.Config{Addr: addr})
	defer good.Close()
	if _, err := good.Login("ana", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}

	raw, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer raw.Close()
	if _, err := raw.Write([]byte("this is not a frame\n")); err != nil {
		t.Fatalf("write garbage: %v", err)
	}

	// The poisoned connection is closed by the server.
	raw.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := bufio.NewReader(raw).ReadByte(); err == nil {
		t.Fatalf("expected the garbled connection to be closed")
	}

	// Other sessions keep working.
	trips, err := good.GetAllTrips()
	if err != nil {
		t.Fatalf("healthy connection affected: %v", err)
	}
	if len(trips) != 1 {
		t.Fatalf("trips: got %d want 1", len(trips))
	}
}

func TestLogoutOfForeignSessionRejected(t *testing.T) {
	store := newTestStore()
	ana := store.addEmployee(t, 1, "ana", "secret")
	bob := store.addEmployee(t, 2, "bob", "secret")
	addr, svc := startServer(t, store)

	a, _ := client.New(client.Config{Addr: addr})
	if _, err := a.Login("ana", "secret"); err != nil {
		t.Fatalf("login ana: %v", err)
	}
	b, _ := client.New(client.Config{Addr: addr})
	defer b.Close()
	if _, err := b.Login("bob", "secret"); err != nil {
		t.Fatalf("login bob: %v", err)
	}

	// Ana's connection must not be able to end bob's session.
	err := a.Logout(bob.ID)
	var svcErr *client.ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected business error for foreign logout, got %v", err)
	}
	if !svc.LoggedIn(bob.ID) {
		t.Fatalf("bob's session ended by another connection")
	}

	// The client tears the connection down after Logout; ana's own session
	// must be released by the disconnect, not leak behind the cleared flag.
	waitFor(t, 2*time.Second, func() bool { return !svc.LoggedIn(ana.ID) },
		"ana's session released after her connection closed")

	a2, _ := client.New(client.Config{Addr: addr})
	defer a2.Close()
	if _, err := a2.Login("ana", "secret"); err != nil {
		t.Fatalf("ana locked out after foreign logout attempt: %v", err)
	}
}

func TestSecondLoginOnSameConnectionRejected(t *testing.T) {
	store := newTestStore()
	ana := store.addEmployee(t, 1, "ana", "secret")
	store.addEmployee(t, 2, "bob", "secret")
	addr, svc := startServer(t, store)

	a, _ := client.New(client.Config{Addr: addr})
	if _, err := a.Login("ana", "secret"); err != nil {
		t.Fatalf("login ana: %v", err)
	}

	// The same connection cannot open a second session as someone else.
	_, err := a.Login("bob", "secret")
	var svcErr *client.ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected business error for second login, got %v", err)
	}
	if svc.LoggedIn(2) {
		t.Fatalf("bob's session registered on ana's connection")
	}
	if !svc.LoggedIn(ana.ID) {
		t.Fatalf("ana's session lost after rejected second login")
	}

	// Closing the connection still releases ana's session.
	a.Close()
	waitFor(t, 2*time.Second, func() bool { return !svc.LoggedIn(ana.ID) },
		"ana's session released after connection close")
}

func TestLoginFailureKeepsConnection(t *testing.T) {
	store := newTestStore()
	store.addEmployee(t, 1, "ana", "secret")
	addr, _ := startServer(t, store)

	a, _ := client.New(client.Config{Addr: addr})
	defer a.Close()

	_, err := a.Login("ana", "wrong")
	var svcErr *client.ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected business error, got %v", err)
	}
	if _, err := a.Login("ana", "secret"); err != nil {
		t.Fatalf("retry with correct password: %v", err)
	}
}
