// Package respond writes JSON responses for the ingest listener.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"wiki-notify/internal/observability/logging"
)

// JSON writes a JSON response with the given status code and data.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// Headers are already sent
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// Error writes {"error": msg}.
func Error(w http.ResponseWriter, code int, msg string) {
	JSON(w, code, map[string]string{"error": msg})
}

// AppError is an error type that carries a user-facing message.
type AppError struct {
	UserMsg string // Message returned to the caller
	Err     error  // Internal error, logged only
	Code    int    // HTTP status code
}

// Error returns the error message, implementing the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.UserMsg
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError with the given parameters.
func NewAppError(code int, userMsg string, err error) *AppError {
	return &AppError{Code: code, UserMsg: userMsg, Err: err}
}

// SafeError writes err without leaking internals. An AppError returns its
// user message; anything else becomes "internal server error". The internal
// error is logged with webhook URLs masked.
func SafeError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	code, msg := http.StatusInternalServerError, "internal server error"
	var appErr *AppError
	if errors.As(err, &appErr) {
		code, msg = appErr.Code, appErr.UserMsg
		if appErr.Err == nil {
			Error(w, code, msg)
			return
		}
	}

	slog.Default().Error("request failed",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.String("user_message", msg),
		slog.String("error", logging.SanitizeError(err)))
	Error(w, code, msg)
}
