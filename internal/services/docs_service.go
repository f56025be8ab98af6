package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"

	"transport/internal/domain/models"
	"transport/internal/utils"
)

// DocsService renders printable trip manifests for the counter staff.
type DocsService struct {
	Reservations *ReservationService
	RequestID    string
}

// GenerateTripManifest returns a PDF listing a trip's seat map.
func (s DocsService) GenerateTripManifest(destination, date, timeOfDay string) ([]byte, string, error) {
	trip, err := s.Reservations.GetTrip(destination, date, timeOfDay)
	if err != nil {
		return nil, "", err
	}
	seats, err := s.Reservations.SearchTripSeats(destination, date, timeOfDay)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "docs", "generate_manifest", fmt.Sprintf("trip_id=%d", trip.ID))
	return buildManifestPDF(trip, seats)
}

func buildManifestPDF(trip models.Trip, seats []models.SeatAssignment) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Trip Manifest", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "TRIP MANIFEST")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	header := []string{
		fmt.Sprintf("Destination : %s", trip.Destination),
		fmt.Sprintf("Departure   : %s %s", trip.DepartureDate, trip.DepartureTime),
		fmt.Sprintf("Free seats  : %d / %d", trip.AvailableSeats, SeatCount),
	}
	for _, line := range header {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(20, 7, "Seat")
	pdf.Cell(0, 7, "Client")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 12)
	for _, seat := range seats {
		pdf.Cell(20, 7, fmt.Sprintf("%d", seat.SeatNumber))
		pdf.Cell(0, 7, seat.ClientName)
		pdf.Ln(7)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("manifest-%s-%s.pdf",
		strings.ToLower(strings.ReplaceAll(trip.Destination, " ", "-")), trip.DepartureDate)
	return buf.Bytes(), filename, nil
}
