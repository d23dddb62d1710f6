// Package handlers adapts the service layer to Gin HTTP endpoints.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/RandySimanca/avicola/internal/repository"
	"github.com/RandySimanca/avicola/internal/service/auth"
	"github.com/RandySimanca/avicola/internal/service/ledger"
)

// SessionKey is the gin context key under which the auth middleware stores
// the caller's session.
const SessionKey = "session"

// writeError maps service errors onto HTTP status codes with a uniform body.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, ledger.ErrValidation),
		errors.Is(err, ledger.ErrInsufficientPopulation),
		errors.Is(err, ledger.ErrInsufficientStock):
		status = http.StatusBadRequest
	case errors.Is(err, ledger.ErrBatchNotFound),
		errors.Is(err, ledger.ErrItemNotFound),
		errors.Is(err, ledger.ErrRecordNotFound),
		errors.Is(err, auth.ErrUserNotFound),
		errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ledger.ErrConcurrencyConflict),
		errors.Is(err, auth.ErrEmailTaken):
		status = http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, auth.ErrUserNotApproved):
		status = http.StatusForbidden
	case errors.Is(err, repository.ErrNetworkUnavailable):
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
