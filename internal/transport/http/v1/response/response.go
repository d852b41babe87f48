package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/biggslaundromat/laundromat/internal/service/apperr"
)

// Envelope wraps every API response body.
type Envelope struct {
	Success   bool     `json:"success"`
	Message   string   `json:"message"`
	Data      any      `json:"data,omitempty"`
	Errors    []string `json:"errors,omitempty"`
	Timestamp string   `json:"timestamp"`
}

// JSON writes a successful envelope with status.
func JSON(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, Envelope{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: timestamp(),
	})
}

// Fail writes an error envelope with status.
func Fail(w http.ResponseWriter, status int, message string, errs []string) {
	write(w, status, Envelope{
		Success:   false,
		Message:   message,
		Errors:    errs,
		Timestamp: timestamp(),
	})
}

// FailWithData writes an error envelope that still carries a payload.
func FailWithData(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, Envelope{
		Success:   false,
		Message:   message,
		Data:      data,
		Timestamp: timestamp(),
	})
}

// Error maps a service error onto its HTTP status. Unclassified and
// infrastructure errors are logged and reported without detail.
func Error(w http.ResponseWriter, err error) {
	var (
		validationErr *apperr.ValidationError
		notFoundErr   *apperr.NotFoundError
		businessErr   *apperr.BusinessRuleError
	)

	switch {
	case errors.As(err, &validationErr):
		Fail(w, http.StatusBadRequest, "Validation failed", validationErr.Errors)
	case errors.As(err, &notFoundErr):
		Fail(w, http.StatusNotFound, capitalize(notFoundErr.Resource)+" not found", nil)
	case errors.As(err, &businessErr):
		Fail(w, http.StatusBadRequest, capitalize(businessErr.Error()), nil)
	default:
		slog.Error("Request failed", "error", err)
		Fail(w, http.StatusInternalServerError, "Internal server error", nil)
	}
}

func write(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Error writing response", "error", err)
	}
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}
