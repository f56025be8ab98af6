package protocol

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"transport/internal/domain/models"
)

func TestRequestRoundTrip(t *testing.T) {
	trip := models.Trip{
		ID:             7,
		Destination:    "Cluj",
		DestinationID:  3,
		DepartureDate:  "2025-06-01",
		DepartureTime:  "08:30",
		AvailableSeats: 12,
	}
	reqs := []Request{
		withSeq(NewLoginRequest("ana", "secret"), 1),
		withSeq(NewLogoutRequest(42), 2),
		withSeq(NewGetAllTripsRequest(), 3),
		withSeq(NewGetTripRequest("Cluj", "2025-06-01", "08:30"), 4),
		withSeq(NewSearchTripSeatsRequest("Cluj", "2025-06-01", "08:30"), 5),
		withSeq(NewReserveSeatsRequest("Pop Ion", []int{1, 2, 5}, trip, 42), 6),
	}

	var buf bytes.Buffer
	for _, req := range reqs {
		if err := WriteRequest(&buf, req); err != nil {
			t.Fatalf("write %s: %v", req.Type, err)
		}
	}

	r := bufio.NewReader(&buf)
	for _, want := range reqs {
		got, err := ReadRequest(r)
		if err != nil {
			t.Fatalf("read %s: %v", want.Type, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("round trip mismatch for %s:\n got %+v\nwant %+v", want.Type, got, want)
		}
	}
	if _, err := ReadRequest(r); err != io.EOF {
		t.Fatalf("expected EOF after last frame, got %v", err)
	}
}

func withSeq(req Request, seq uint64) Request {
	req.Seq = seq
	return req
}

func TestResponseRoundTrip(t *testing.T) {
	trip := models.Trip{ID: 7, Destination: "Cluj", DepartureDate: "2025-06-01", DepartureTime: "08:30", AvailableSeats: 16}
	emp := models.Employee{ID: 42, Username: "ana", OfficeID: 1}
	resps := []Response{
		NewOkResponse(1),
		NewErrorResponse(2, "invalid password"),
		NewEmployeeLoggedInResponse(3, emp),
		NewFindAllTripsResponse(4, []models.Trip{trip}),
		NewFindTripResponse(5, trip),
		NewFindTripSeatsResponse(6, []models.SeatAssignment{
			{SeatNumber: 1, ClientName: "Pop Ion"},
			{SeatNumber: 2, ClientName: models.UnassignedSeat},
		}),
		NewSeatsReservedNotification(),
	}

	var buf bytes.Buffer
	for _, resp := range resps {
		if err := WriteResponse(&buf, resp); err != nil {
			t.Fatalf("write %s: %v", resp.Type, err)
		}
	}

	r := bufio.NewReader(&buf)
	for _, want := range resps {
		got, err := ReadResponse(r)
		if err != nil {
			t.Fatalf("read %s: %v", want.Type, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("round trip mismatch for %s:\n got %+v\nwant %+v", want.Type, got, want)
		}
	}
}

func TestPasswordHashNeverSerialized(t *testing.T) {
	emp := models.Employee{ID: 1, Username: "ana", PasswordHash: "$2a$10$abcdef"}
	var buf bytes.Buffer
	if err := WriteResponse(&buf, NewEmployeeLoggedInResponse(1, emp)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if strings.Contains(buf.String(), "abcdef") {
		t.Fatalf("password hash leaked onto the wire: %s", buf.String())
	}
}

func TestReadRequestMalformed(t *testing.T) {
	cases := []string{
		"not json\n",
		"{\"seq\":1,\"type\":\"NO_SUCH_OP\"}\n",
		"{\"seq\":1,\"type\":\"LOGIN\"", // truncated, no newline
	}
	for _, in := range cases {
		_, err := ReadRequest(bufio.NewReader(strings.NewReader(in)))
		if !errors.Is(err, ErrMalformedFrame) {
			t.Fatalf("input %q: expected ErrMalformedFrame, got %v", in, err)
		}
	}
}

func TestReadResponseMalformed(t *testing.T) {
	_, err := ReadResponse(bufio.NewReader(strings.NewReader("{\"type\":\"WHAT\"}\n")))
	if !errors.Is(err, ErrMalformedFrame) {
		t.Fatalf("expected ErrMalformedFrame, got %v", err)
	}
}

func TestIsPush(t *testing.T) {
	if !NewSeatsReservedNotification().IsPush() {
		t.Fatalf("notification should be a push frame")
	}
	if NewOkResponse(3).IsPush() {
		t.Fatalf("OK reply should not be a push frame")
	}
}
