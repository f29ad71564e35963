package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/j0lvera/pgbudget/internal/adapter/http/dto"
	"github.com/j0lvera/pgbudget/internal/domain"
)

// maxBodyBytes bounds request bodies; bulk postings are the largest.
const maxBodyBytes = 4 << 20

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError maps err to a status and writes it. Internal and
// inconsistent failures are logged; their details stay out of the response
// unless they carry a domain kind.
func writeDomainError(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := mapDomainError(err)
	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("kind", domain.KindName(err)).
			Msg(message)
	}

	details := err.Error()
	if domain.Kind(err) == nil {
		details = ""
	}
	writeError(w, status, message, details)
}

// mapDomainError maps domain error kinds to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// ownerID returns the owner resolved by the auth middleware. It writes a 401
// and returns false when there is none.
func ownerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := domain.OwnerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing owner")
		return "", false
	}
	return id, true
}

// decodeRequest decodes and validates a JSON body. It writes a 400 and
// returns false on failure.
func decodeRequest(w http.ResponseWriter, r *http.Request, req any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	if err := dto.Validate(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed", err.Error())
		return false
	}
	return true
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parsePeriod reads the optional start and end query parameters.
func parsePeriod(r *http.Request) (domain.Period, error) {
	start, err := domain.ParseDate(r.URL.Query().Get("start"))
	if err != nil {
		return domain.Period{}, fmt.Errorf("start: %w", err)
	}
	end, err := domain.ParseDate(r.URL.Query().Get("end"))
	if err != nil {
		return domain.Period{}, fmt.Errorf("end: %w", err)
	}
	period := domain.Period{Start: start, End: end}
	return period, period.Validate()
}
