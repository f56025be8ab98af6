package handlers

import (
	"net/http"
	"time"

	"transport/internal/domain"
	"transport/internal/repositories"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var jwtSecret = []byte("change-me")

// SetJWTSecret overrides the signing key used for issued tokens.
func SetJWTSecret(secret string) {
	if secret != "" {
		jwtSecret = []byte(secret)
	}
}

// JWTSecret returns the active signing key.
func JWTSecret() []byte {
	return jwtSecret
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// POST /api/auth/login
//
// REST clients authenticate per request with a bearer token, so logging in
// here does not occupy the employee's single interactive session.
func Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_payload", "invalid payload", nil)
		return
	}

	emp, err := repositories.EmployeeRepo{}.FindByUsername(req.Username)
	if err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusUnauthorized, "auth_error", "wrong username or password", nil)
			return
		}
		RespondDomainError(c, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte(req.Password)); err != nil {
		respondError(c, http.StatusUnauthorized, "auth_error", "wrong username or password", nil)
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"employee_id": emp.ID,
		"username":    emp.Username,
		"exp":         time.Now().Add(24 * time.Hour).Unix(),
	})

	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "token_error", "failed to sign token", nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":    tokenString,
		"employee": emp,
	})
}
