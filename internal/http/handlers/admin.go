package handlers

import (
	"net/http"

	"transport/internal/domain"
	"transport/internal/domain/models"
	"transport/internal/repositories"
	"transport/internal/services"
	"transport/internal/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// Reference-data and account management for the branch back office.

// GET /api/offices
func GetOffices(c *gin.Context) {
	offices, err := repositories.OfficeRepo{}.FindAll()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"offices": offices})
}

type createOfficeRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

// POST /api/offices
func CreateOffice(c *gin.Context) {
	var req createOfficeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_payload", "invalid payload", nil)
		return
	}
	if utils.TrimOrEmpty(req.Name) == "" {
		respondError(c, http.StatusBadRequest, "validation_error", "name: required", nil)
		return
	}
	office, err := repositories.OfficeRepo{}.Save(models.Office{
		Name:     utils.NormalizeSpace(req.Name),
		Location: utils.NormalizeSpace(req.Location),
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"office": office})
}

// GET /api/destinations
func GetDestinations(c *gin.Context) {
	dests, err := repositories.DestinationRepo{}.FindAll()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"destinations": dests})
}

type createEmployeeRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	OfficeID int64  `json:"office_id"`
}

// POST /api/employees
func CreateEmployee(c *gin.Context) {
	var req createEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_payload", "invalid payload", nil)
		return
	}
	if utils.TrimOrEmpty(req.Username) == "" || req.Password == "" {
		respondError(c, http.StatusBadRequest, "validation_error", "username and password required", nil)
		return
	}

	repo := repositories.EmployeeRepo{}
	if _, err := repo.FindByUsername(req.Username); err == nil {
		respondError(c, http.StatusConflict, "conflict", "username already taken", nil)
		return
	} else if !domain.IsNotFound(err) {
		RespondDomainError(c, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "failed to hash password", nil)
		return
	}
	emp, err := repo.Save(models.Employee{
		Username:     utils.TrimOrEmpty(req.Username),
		PasswordHash: string(hash),
		OfficeID:     req.OfficeID,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"employee": emp})
}

type createTripRequest struct {
	Destination string `json:"destination"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Seats       int    `json:"seats"`
}

// POST /api/trips creates a scheduled departure, creating the destination row
// on first use.
func CreateTrip(c *gin.Context) {
	var req createTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_payload", "invalid payload", nil)
		return
	}
	name := utils.NormalizeSpace(req.Destination)
	if name == "" {
		respondError(c, http.StatusBadRequest, "validation_error", "destination: required", nil)
		return
	}
	if !utils.ValidDate(req.Date) {
		respondError(c, http.StatusBadRequest, "validation_error", "date: expected YYYY-MM-DD", nil)
		return
	}
	if !utils.ValidTimeOfDay(req.Time) {
		respondError(c, http.StatusBadRequest, "validation_error", "time: expected HH:MM", nil)
		return
	}
	seats := req.Seats
	if seats <= 0 || seats > services.SeatCount {
		seats = services.SeatCount
	}

	destRepo := repositories.DestinationRepo{}
	dest, err := destRepo.FindByName(name)
	if err != nil {
		if !domain.IsNotFound(err) {
			RespondDomainError(c, err)
			return
		}
		dest, err = destRepo.Save(models.Destination{Name: name})
		if err != nil {
			RespondDomainError(c, err)
			return
		}
	}

	trip, err := repositories.TripRepo{}.Save(models.Trip{
		DestinationID:  dest.ID,
		DepartureDate:  req.Date,
		DepartureTime:  req.Time,
		AvailableSeats: seats,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	trip.Destination = dest.Name
	c.JSON(http.StatusCreated, gin.H{"trip": trip})
}
