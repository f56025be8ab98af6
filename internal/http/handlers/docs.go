package handlers

import (
	"net/http"

	"transport/internal/http/middleware"
	"transport/internal/services"

	"github.com/gin-gonic/gin"
)

// GET /api/trips/manifest?destination=...&date=...&time=... returns the seat
// manifest as an inline PDF.
func GetTripManifestPDF(c *gin.Context) {
	svc := services.DocsService{
		Reservations: reservations,
		RequestID:    middleware.GetRequestID(c),
	}
	pdfBytes, filename, err := svc.GenerateTripManifest(c.Query("destination"), c.Query("date"), c.Query("time"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
