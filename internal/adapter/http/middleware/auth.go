package middleware

import (
	"net/http"
	"strings"

	"github.com/j0lvera/pgbudget/internal/domain"
	"github.com/j0lvera/pgbudget/internal/infrastructure/auth"
)

// OwnerHeader carries the owner id when token authentication is disabled.
const OwnerHeader = "X-Owner-ID"

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(tokenString string) (*auth.Claims, error)
}

// AuthMiddleware resolves the acting owner and stores it in the request
// context. With a verifier the owner is the subject of a bearer token;
// without one it is taken from the X-Owner-ID header.
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var ownerID string

			if verifier == nil {
				ownerID = strings.TrimSpace(r.Header.Get(OwnerHeader))
				if ownerID == "" {
					writeUnauthorized(w, "missing "+OwnerHeader+" header")
					return
				}
			} else {
				authHeader := r.Header.Get("Authorization")
				if authHeader == "" {
					writeUnauthorized(w, "missing authorization header")
					return
				}

				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) != 2 || parts[0] != "Bearer" {
					writeUnauthorized(w, "invalid authorization header format")
					return
				}

				claims, err := verifier.Verify(parts[1])
				if err != nil {
					writeUnauthorized(w, "invalid or expired token")
					return
				}
				ownerID = claims.OwnerID()
			}

			next.ServeHTTP(w, r.WithContext(domain.WithOwner(r.Context(), ownerID)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","message":"` + message + `"}`))
}
