// Package client is the session proxy used by front ends: the six business
// operations as blocking calls over one persistent connection, with pushed
// seat-change notifications delivered to a callback.
package client

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"sync"

	"transport/internal/domain/models"
	"transport/internal/protocol"
)

// ErrConnectionLost marks a transport-level failure. The next call opens a
// fresh connection; the caller must log in again.
var ErrConnectionLost = errors.New("connection lost")

// ServiceError is a business-level failure reported by the server. The
// connection stays usable.
type ServiceError struct {
	Msg string
}

func (e *ServiceError) Error() string { return e.Msg }

type Config struct {
	// Addr is the server's host:port.
	Addr string
	// OnSeatsReserved runs on every pushed seat-change notification, on its
	// own goroutine. The receiver is expected to re-fetch what it displays.
	OnSeatsReserved func()
}

// Client is safe for concurrent use. Frames carry a correlation seq, so
// multiple calls may be in flight on the same connection; a reader goroutine
// routes each reply to its caller and push frames to the callback.
type Client struct {
	conf Config

	mu      sync.Mutex
	conn    net.Conn
	writeMu sync.Mutex
	nextSeq uint64
	pending map[uint64]chan protocol.Response
}

func New(conf Config) (*Client, error) {
	if conf.Addr == "" {
		return nil, errors.New("client: addr not specified")
	}
	return &Client{conf: conf}, nil
}

// Login authenticates and binds this connection as the employee's session.
func (c *Client) Login(username, password string) (models.Employee, error) {
	resp, err := c.call(protocol.NewLoginRequest(username, password))
	if err != nil {
		return models.Employee{}, err
	}
	if resp.Employee == nil {
		c.teardown()
		return models.Employee{}, fmt.Errorf("login reply without employee: %w", protocol.ErrMalformedFrame)
	}
	return *resp.Employee, nil
}

// Logout ends the session and tears the connection down.
func (c *Client) Logout(employeeID int64) error {
	_, err := c.call(protocol.NewLogoutRequest(employeeID))
	c.teardown()
	return err
}

func (c *Client) GetAllTrips() ([]models.Trip, error) {
	resp, err := c.call(protocol.NewGetAllTripsRequest())
	if err != nil {
		return nil, err
	}
	return resp.Trips, nil
}

func (c *Client) GetTrip(destination, date, timeOfDay string) (models.Trip, error) {
	resp, err := c.call(protocol.NewGetTripRequest(destination, date, timeOfDay))
	if err != nil {
		return models.Trip{}, err
	}
	if resp.Trip == nil {
		c.teardown()
		return models.Trip{}, fmt.Errorf("trip reply without trip: %w", protocol.ErrMalformedFrame)
	}
	return *resp.Trip, nil
}

func (c *Client) SearchTripSeats(destination, date, timeOfDay string) ([]models.SeatAssignment, error) {
	resp, err := c.call(protocol.NewSearchTripSeatsRequest(destination, date, timeOfDay))
	if err != nil {
		return nil, err
	}
	return resp.Seats, nil
}

func (c *Client) ReserveSeats(clientName string, seatNumbers []int, trip models.Trip, employeeID int64) error {
	_, err := c.call(protocol.NewReserveSeatsRequest(clientName, seatNumbers, trip, employeeID))
	return err
}

// Close abandons the connection without logging out.
func (c *Client) Close() {
	c.teardown()
}

// call sends one request and blocks for its reply.
func (c *Client) call(req protocol.Request) (protocol.Response, error) {
	conn, seq, ch, err := c.register()
	if err != nil {
		return protocol.Response{}, err
	}
	req.Seq = seq

	c.writeMu.Lock()
	err = protocol.WriteRequest(conn, req)
	c.writeMu.Unlock()
	if err != nil {
		c.unregister(seq)
		c.teardown()
		return protocol.Response{}, fmt.Errorf("%w: %v", ErrConnectionLost, err)
	}

	resp, ok := <-ch
	if !ok {
		return protocol.Response{}, ErrConnectionLost
	}
	if resp.Type == protocol.ErrorResponse {
		return resp, &ServiceError{Msg: resp.ErrorMessage}
	}
	return resp, nil
}

// register lazily opens the connection and reserves a seq slot.
func (c *Client) register() (net.Conn, uint64, chan protocol.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		conn, err := net.Dial("tcp", c.conf.Addr)
		if err != nil {
			return nil, 0, nil, fmt.Errorf("%w: dial %s: %v", ErrConnectionLost, c.conf.Addr, err)
		}
		c.conn = conn
		c.pending = make(map[uint64]chan protocol.Response)
		go c.readLoop(conn)
	}

	// Seq 0 is reserved for push frames.
	c.nextSeq++
	seq := c.nextSeq
	ch := make(chan protocol.Response, 1)
	c.pending[seq] = ch
	return c.conn, seq, ch, nil
}

func (c *Client) unregister(seq uint64) {
	c.mu.Lock()
	delete(c.pending, seq)
	c.mu.Unlock()
}

// readLoop demultiplexes server frames: push notifications go to the
// callback, replies go to the waiting caller by seq. Any read or decode
// failure poisons the connection and fails every pending call.
func (c *Client) readLoop(conn net.Conn) {
	r := bufio.NewReader(conn)
	for {
		resp, err := protocol.ReadResponse(r)
		if err != nil {
			c.failPending(conn)
			return
		}

		if resp.IsPush() {
			if cb := c.conf.OnSeatsReserved; cb != nil {
				go cb()
			}
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[resp.Seq]
		if ok {
			delete(c.pending, resp.Seq)
		}
		c.mu.Unlock()
		if ok {
			ch <- resp
		}
	}
}

// failPending closes every waiting call with ErrConnectionLost. Only runs
// for the connection this loop was started with, so a reconnect racing the
// old reader is left alone.
func (c *Client) failPending(conn net.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != conn {
		return
	}
	for seq, ch := range c.pending {
		close(ch)
		delete(c.pending, seq)
	}
	c.conn.Close()
	c.conn = nil
}

func (c *Client) teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return
	}
	c.conn.Close()
	c.conn = nil
	for seq, ch := range c.pending {
		close(ch)
		delete(c.pending, seq)
	}
}
