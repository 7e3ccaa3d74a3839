package auth

import (
	"net/http"
	"strings"

	"github.com/taskmaster-app/taskmaster/internal/platform/httpx"
	"github.com/taskmaster-app/taskmaster/internal/shared"
)

// RequireAuth gates protected routes behind bearer-token verification.
// On success the decoded identity is attached to the request context.
// The verifier does not re-check that the user still exists in the store;
// tokens remain valid until expiry.
func RequireAuth(tokens *TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if header == "" || !strings.HasPrefix(header, prefix) {
				httpx.RespondError(w, shared.ErrUnauthorized)
				return
			}

			identity, err := tokens.Verify(strings.TrimPrefix(header, prefix))
			if err != nil {
				httpx.RespondError(w, shared.ErrUnauthorized)
				return
			}

			ctx := shared.ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
