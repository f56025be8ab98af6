package tcp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"transport/internal/domain"
	"transport/internal/protocol"
	"transport/internal/services"
	"transport/internal/utils"
)

// worker owns one accepted connection: a blocking read loop that dispatches
// to the reservation service and writes the reply back. It doubles as the
// session's notification sink, so socket writes go through one mutex: the
// reply to the current request and a push triggered by another session's
// commit must never interleave their bytes.
type worker struct {
	svc  *services.ReservationService
	conn net.Conn
	r    *bufio.Reader

	writeMu sync.Mutex

	mu         sync.Mutex
	employeeID int64
	loggedIn   bool
}

func newWorker(svc *services.ReservationService, conn net.Conn) *worker {
	return &worker{
		svc:  svc,
		conn: conn,
		r:    bufio.NewReader(conn),
	}
}

// SeatsReserved implements services.Notifier. Called from the service's
// fan-out pool.
func (w *worker) SeatsReserved() error {
	return w.writeResponse(protocol.NewSeatsReservedNotification())
}

func (w *worker) writeResponse(resp protocol.Response) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	return protocol.WriteResponse(w.conn, resp)
}

// run loops until the peer disconnects, sends garbage, or logs out. The
// session (if any) is always released on the way out.
func (w *worker) run() error {
	defer func() {
		w.mu.Lock()
		if w.loggedIn {
			w.svc.Disconnect(w.employeeID)
			w.loggedIn = false
		}
		w.mu.Unlock()
		w.conn.Close()
	}()

	remote := w.conn.RemoteAddr().String()
	for {
		req, err := protocol.ReadRequest(w.r)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			if errors.Is(err, protocol.ErrMalformedFrame) {
				utils.LogEvent("", "tcp", "malformed_frame", fmt.Sprintf("remote=%s err=%v", remote, err))
				return nil
			}
			return fmt.Errorf("read request from %s: %w", remote, err)
		}

		resp, quit := w.handle(req)
		if err := w.writeResponse(resp); err != nil {
			return fmt.Errorf("write response to %s: %w", remote, err)
		}
		if quit {
			return nil
		}
	}
}

// handle maps one request to one reply. quit is true after a successful
// logout: the reply is still written, then the connection closes.
func (w *worker) handle(req protocol.Request) (resp protocol.Response, quit bool) {
	switch req.Type {
	case protocol.LoginRequest:
		// One session per connection. A second login must not overwrite
		// employeeID, or the first session would never be released.
		w.mu.Lock()
		already := w.loggedIn
		w.mu.Unlock()
		if already {
			err := domain.ConflictError{Resource: "session", Msg: "connection already has a session"}
			return protocol.NewErrorResponse(req.Seq, err.Error()), false
		}
		employee, err := w.svc.Login(req.Username, req.Password, w)
		if err != nil {
			// Business-level failure: the connection stays usable for a
			// retry with different credentials.
			return protocol.NewErrorResponse(req.Seq, err.Error()), false
		}
		w.mu.Lock()
		w.employeeID = employee.ID
		w.loggedIn = true
		w.mu.Unlock()
		return protocol.NewEmployeeLoggedInResponse(req.Seq, employee), false

	case protocol.LogoutRequest:
		// A connection may only end the session it opened. Anything else
		// would leave this worker's flag out of sync with the registry.
		w.mu.Lock()
		owns := w.loggedIn && w.employeeID == req.EmployeeID
		w.mu.Unlock()
		if !owns {
			err := domain.ConflictError{Resource: "session", Msg: "employee is not logged in on this connection"}
			return protocol.NewErrorResponse(req.Seq, err.Error()), false
		}
		if err := w.svc.Logout(req.EmployeeID); err != nil {
			return protocol.NewErrorResponse(req.Seq, err.Error()), false
		}
		w.mu.Lock()
		w.loggedIn = false
		w.mu.Unlock()
		return protocol.NewOkResponse(req.Seq), true

	case protocol.GetAllTripsRequest:
		trips, err := w.svc.ListTrips()
		if err != nil {
			return protocol.NewErrorResponse(req.Seq, err.Error()), false
		}
		return protocol.NewFindAllTripsResponse(req.Seq, trips), false

	case protocol.GetTripRequest:
		trip, err := w.svc.GetTrip(req.Destination, req.Date, req.Time)
		if err != nil {
			return protocol.NewErrorResponse(req.Seq, err.Error()), false
		}
		return protocol.NewFindTripResponse(req.Seq, trip), false

	case protocol.SearchTripSeatsRequest:
		seats, err := w.svc.SearchTripSeats(req.Destination, req.Date, req.Time)
		if err != nil {
			return protocol.NewErrorResponse(req.Seq, err.Error()), false
		}
		return protocol.NewFindTripSeatsResponse(req.Seq, seats), false

	case protocol.ReserveSeatsRequest:
		if req.Trip == nil {
			return protocol.NewErrorResponse(req.Seq, "trip: required"), false
		}
		if err := w.svc.ReserveSeats(req.ClientName, req.SeatNumbers, *req.Trip, req.EmployeeID); err != nil {
			return protocol.NewErrorResponse(req.Seq, err.Error()), false
		}
		return protocol.NewOkResponse(req.Seq), false
	}

	// ReadRequest validates the tag, so decoded frames never reach here.
	return protocol.NewErrorResponse(req.Seq, fmt.Sprintf("unsupported request %q", req.Type)), false
}
