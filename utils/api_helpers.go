package utils

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// RespondJSON sends a JSON response with the given status code and payload.
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Headers are already sent, nothing left to tell the client
		fmt.Printf("Error encoding JSON response: %v\n", err)
	}
}

// RespondSuccess wraps data in the success envelope.
func RespondSuccess(w http.ResponseWriter, status int, data interface{}) {
	RespondJSON(w, status, map[string]interface{}{
		"status": "success",
		"data":   data,
	})
}

// RespondError sends a JSON error response and records the message in the request log.
// Client errors carry status "fail", server errors "error".
func RespondError(w http.ResponseWriter, logger *strings.Builder, message string, status int) {
	if logger != nil {
		AddToLogMessage(logger, message)
	}
	outcome := "fail"
	if status >= http.StatusInternalServerError {
		outcome = "error"
	}
	RespondJSON(w, status, map[string]string{
		"status":  outcome,
		"message": message,
	})
}

// DecodeJSON reads a JSON request body into dst.
func DecodeJSON(body io.Reader, dst interface{}) error {
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// LatencyMiddleware logs the duration of each request
func LatencyMiddleware(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Dur("duration", time.Since(start)).
				Msg("[LATENCY]")
		})
	}
}

// RespondList sends one page of results in the success envelope.
func RespondList(w http.ResponseWriter, results, totalPages, currentPage int, data interface{}) {
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "success",
		"results":     results,
		"totalPages":  totalPages,
		"currentPage": currentPage,
		"data":        data,
	})
}

// RespondMessage sends a success envelope carrying only a message.
func RespondMessage(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, map[string]string{
		"status":  "success",
		"message": message,
	})
}
