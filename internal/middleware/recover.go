package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/stepbookstep/server/internal/ctxkeys"
)

// Recover turns a handler panic into a 500 response and an error log.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			slog.Error("panic in handler",
				"panic", rec,
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", ctxkeys.RequestID(r.Context()),
				"stack", string(debug.Stack()),
			)
			writeError(w, http.StatusInternalServerError, http.StatusInternalServerError, "internal server error")
		}()

		next.ServeHTTP(w, r)
	})
}
