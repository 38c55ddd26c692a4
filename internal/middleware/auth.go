package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/stepbookstep/server/internal/ctxkeys"
)

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	VerifyJWT(token string) (int64, error)
}

// Authenticate adds the user id of a valid bearer token to the request context.
// Requests without a valid token continue anonymously; RequireAuth rejects them.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := verifier.VerifyJWT(token)
			if err != nil {
				slog.Debug("rejected bearer token", "error", err, "path", r.URL.Path)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctxkeys.WithUserID(r.Context(), userID)))
		})
	}
}

// RequireAuth rejects requests that Authenticate did not attach a user to.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ctxkeys.UserID(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, 401002, "authentication required")
			return
		}
		next(w, r)
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
