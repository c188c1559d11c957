// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for the domain layer. Services wrap these with %w and a
// detail naming the failed precondition and the quantities involved.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrDuplicate           = errors.New("duplicate entry")
	ErrValidation          = errors.New("validation failed")
	ErrOutstandingBalance  = errors.New("outstanding balance")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrInsufficientPayment = errors.New("insufficient payment")
	ErrOverPayment         = errors.New("payment exceeds remaining balance")
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// Anything outside the business-rule taxonomy is treated as a storage
// failure: the transaction has already rolled back and the client gets a 500.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, ErrOutstandingBalance):
		Problem(w, http.StatusConflict, "Outstanding Balance", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrInsufficientStock),
		errors.Is(err, ErrInsufficientPayment),
		errors.Is(err, ErrOverPayment):
		Problem(w, http.StatusUnprocessableEntity, "Business Rule Violation", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
