package protocol

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"transport/internal/domain/models"
)

// One frame per line: a single JSON object, UTF-8, newline-terminated.
// Every request carries a client-assigned seq which the server echoes in the
// matching reply; pushed frames carry seq 0. A line that does not parse is
// fatal to the connection; there is no resynchronization.

// ErrMalformedFrame marks an unparseable line. The caller must treat the
// connection as unusable and close it.
var ErrMalformedFrame = errors.New("malformed frame")

type RequestType string

const (
	LoginRequest           RequestType = "LOGIN"
	LogoutRequest          RequestType = "LOGOUT"
	GetAllTripsRequest     RequestType = "GET_ALL_TRIPS"
	GetTripRequest         RequestType = "GET_TRIP"
	SearchTripSeatsRequest RequestType = "SEARCH_TRIP_SEATS"
	ReserveSeatsRequest    RequestType = "RESERVE_SEATS"
)

type ResponseType string

const (
	OkResponse               ResponseType = "OK"
	ErrorResponse            ResponseType = "ERROR"
	EmployeeLoggedInResponse ResponseType = "EMPLOYEE_LOGGED_IN"
	FindAllTripsResponse     ResponseType = "FIND_ALL_TRIPS"
	FindTripResponse         ResponseType = "FIND_TRIP"
	FindTripSeatsResponse    ResponseType = "FIND_TRIP_SEATS"
	SeatsReservedResponse    ResponseType = "SEATS_RESERVED"
)

// Request is the client-to-server frame. Only the fields relevant to Type
// are populated.
type Request struct {
	Seq  uint64      `json:"seq"`
	Type RequestType `json:"type"`

	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`

	EmployeeID int64 `json:"employee_id,omitempty"`

	Destination string `json:"destination,omitempty"`
	Date        string `json:"date,omitempty"`
	Time        string `json:"time,omitempty"`

	ClientName  string       `json:"client_name,omitempty"`
	SeatNumbers []int        `json:"seat_numbers,omitempty"`
	Trip        *models.Trip `json:"trip,omitempty"`
}

// Response is the server-to-client frame. Seq 0 plus the SEATS_RESERVED type
// marks a push notification rather than the answer to a request.
type Response struct {
	Seq  uint64       `json:"seq"`
	Type ResponseType `json:"type"`

	ErrorMessage string `json:"error_message,omitempty"`

	Employee *models.Employee        `json:"employee,omitempty"`
	Trips    []models.Trip           `json:"trips,omitempty"`
	Trip     *models.Trip            `json:"trip,omitempty"`
	Seats    []models.SeatAssignment `json:"seats,omitempty"`
}

// IsPush reports whether r was sent without a corresponding request.
func (r Response) IsPush() bool {
	return r.Seq == 0 && r.Type == SeatsReservedResponse
}

func validRequestType(t RequestType) bool {
	switch t {
	case LoginRequest, LogoutRequest, GetAllTripsRequest,
		GetTripRequest, SearchTripSeatsRequest, ReserveSeatsRequest:
		return true
	}
	return false
}

func validResponseType(t ResponseType) bool {
	switch t {
	case OkResponse, ErrorResponse, EmployeeLoggedInResponse,
		FindAllTripsResponse, FindTripResponse, FindTripSeatsResponse,
		SeatsReservedResponse:
		return true
	}
	return false
}

// WriteRequest encodes req as one line. The caller serializes writers.
func WriteRequest(w io.Writer, req Request) error {
	return writeLine(w, req)
}

// WriteResponse encodes resp as one line. The caller serializes writers.
func WriteResponse(w io.Writer, resp Response) error {
	return writeLine(w, resp)
}

func writeLine(w io.Writer, frame any) error {
	line, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}
	line = append(line, '\n')
	if _, err := w.Write(line); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// ReadRequest reads the next request frame. io.EOF is returned as-is when
// the peer closed the stream cleanly; any parse failure wraps
// ErrMalformedFrame.
func ReadRequest(r *bufio.Reader) (Request, error) {
	var req Request
	line, err := readLine(r)
	if err != nil {
		return req, err
	}
	if err := json.Unmarshal(line, &req); err != nil {
		return req, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if !validRequestType(req.Type) {
		return req, fmt.Errorf("%w: unknown request type %q", ErrMalformedFrame, req.Type)
	}
	return req, nil
}

// ReadResponse reads the next response frame.
func ReadResponse(r *bufio.Reader) (Response, error) {
	var resp Response
	line, err := readLine(r)
	if err != nil {
		return resp, err
	}
	if err := json.Unmarshal(line, &resp); err != nil {
		return resp, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if !validResponseType(resp.Type) {
		return resp, fmt.Errorf("%w: unknown response type %q", ErrMalformedFrame, resp.Type)
	}
	return resp, nil
}

func readLine(r *bufio.Reader) ([]byte, error) {
	line, err := r.ReadBytes('\n')
	if err != nil {
		if err == io.EOF && len(line) == 0 {
			return nil, io.EOF
		}
		if err == io.EOF {
			return nil, fmt.Errorf("%w: truncated line", ErrMalformedFrame)
		}
		return nil, fmt.Errorf("read frame: %w", err)
	}
	return line, nil
}
