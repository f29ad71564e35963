package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/j0lvera/pgbudget/internal/domain"
	"github.com/j0lvera/pgbudget/internal/infrastructure/metrics"
	"github.com/j0lvera/pgbudget/internal/usecase"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency keys.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayHeader marks a response served from the idempotency store.
	IdempotencyReplayHeader = "X-Idempotency-Replay"

	defaultIdempotencyTTL = 24 * time.Hour
	processingMarker      = "processing"
)

// IdempotencyMiddleware replays the first successful response of a mutating
// request for every later request carrying the same key. Keys are scoped per
// owner.
type IdempotencyMiddleware struct {
	store   usecase.IdempotencyStore
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore, ttl time.Duration, m *metrics.Metrics, logger zerolog.Logger) *IdempotencyMiddleware {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyMiddleware{store: store, ttl: ttl, metrics: m, logger: logger}
}

type storedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// Wrap wraps an http.Handler with idempotency checking.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodDelete {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}

		ownerID, _ := domain.OwnerFromContext(r.Context())
		scoped := ownerID + ":" + key

		exists, cached, err := m.store.CheckAndSet(r.Context(), scoped, nil, m.ttl)
		if err != nil {
			m.logger.Error().Err(err).Str("owner_id", ownerID).Msg("idempotency check failed")
			writeJSONError(w, http.StatusInternalServerError, "idempotency check failed")
			return
		}

		if exists {
			if string(cached) == processingMarker {
				writeJSONError(w, http.StatusConflict, "a request with this idempotency key is in progress")
				return
			}

			var stored storedResponse
			if err := json.Unmarshal(cached, &stored); err != nil {
				writeJSONError(w, http.StatusInternalServerError, "unreadable idempotent response")
				return
			}

			if m.metrics != nil {
				m.metrics.IdempotencyReplays.Inc()
			}
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set(IdempotencyReplayHeader, "true")
			w.WriteHeader(stored.Status)
			_, _ = w.Write(stored.Body)
			return
		}

		recorder := &responseRecorder{
			ResponseWriter: w,
			body:           &bytes.Buffer{},
			statusCode:     http.StatusOK,
		}
		next.ServeHTTP(recorder, r)

		// Failed requests release the key so the client may retry.
		if recorder.statusCode < 200 || recorder.statusCode >= 300 {
			if err := m.store.Release(r.Context(), scoped); err != nil {
				m.logger.Warn().Err(err).Str("owner_id", ownerID).Msg("failed to release idempotency key")
			}
			return
		}

		body := recorder.body.Bytes()
		if len(body) == 0 {
			body = []byte("null")
		}
		raw, err := json.Marshal(storedResponse{Status: recorder.statusCode, Body: body})
		if err != nil {
			return
		}
		if err := m.store.Update(r.Context(), scoped, raw, m.ttl); err != nil {
			m.logger.Warn().Err(err).Str("owner_id", ownerID).Msg("failed to store idempotent response")
		}
	})
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
