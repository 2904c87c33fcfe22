package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type ctxKey int

const uidKey ctxKey = 0

// Require rejects requests without a valid bearer token and stores the
// account id on the request context.
func Require(issuer *TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "missing auth token", http.StatusUnauthorized)
				return
			}

			uid, err := issuer.Verify(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), uidKey, uid)))
		})
	}
}

// UID returns the authenticated account id stored by Require.
func UID(ctx context.Context) (uuid.UUID, bool) {
	uid, ok := ctx.Value(uidKey).(uuid.UUID)
	return uid, ok
}
