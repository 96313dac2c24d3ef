// Package httpserver contains HTTP handlers and middleware.
//
// It exposes resume analysis (file upload and raw text), role keyword
// management, the built-in catalog and health endpoints. Handlers translate
// HTTP to use case calls and map domain errors onto a JSON error envelope.
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fairyhunter13/ats-resume-analyzer/internal/domain"
)

var (
	errUnauthorized    = errors.New("unauthorized")
	errNotAcceptable   = errors.New("not acceptable")
	errPayloadTooLarge = errors.New("payload too large")
)

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorStatus maps an error onto an HTTP status and envelope code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest, "INVALID_ARGUMENT"
	case errors.Is(err, errUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, errNotAcceptable):
		return http.StatusNotAcceptable, "NOT_ACCEPTABLE"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "CONFLICT"
	case errors.Is(err, errPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"
	case errors.Is(err, domain.ErrUnsupportedMedia):
		return http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA"
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "RATE_LIMITED"
	case errors.Is(err, domain.ErrUpstreamTimeout):
		return http.StatusServiceUnavailable, "UPSTREAM_TIMEOUT"
	case errors.Is(err, domain.ErrUpstreamRateLimit):
		return http.StatusServiceUnavailable, "UPSTREAM_RATE_LIMIT"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE"
	case errors.Is(err, domain.ErrSchemaInvalid):
		return http.StatusServiceUnavailable, "SCHEMA_INVALID"
	}
	return http.StatusInternalServerError, "INTERNAL"
}

// writeError renders err in the error envelope. Internal errors are logged
// with their cause and answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error, details any) {
	status, code := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		LoggerFrom(r).Error("request failed", "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorEnvelope{Error: apiError{Code: code, Message: msg, Details: details}})
}
