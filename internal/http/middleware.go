package http

import (
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pablotasuyuki/Sistema-Agendamento-de-Salas/internal/booking"
	"github.com/pablotasuyuki/Sistema-Agendamento-de-Salas/internal/logging"
)

// RequireActingUser extracts the user identity the chat transport forwards in
// the X-User-ID and X-User-Name headers. Requests without an identity are
// rejected before reaching any handler.
func RequireActingUser(logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := strings.TrimSpace(r.Header.Get("X-User-ID"))
			if userID == "" {
				responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingUserIdentity)
				return
			}

			user := booking.UserRef{
				ID:          userID,
				DisplayName: strings.TrimSpace(r.Header.Get("X-User-Name")),
			}
			if user.DisplayName == "" {
				user.DisplayName = userID
			}

			ctx := ContextWithActingUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	var counter atomic.Uint64

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := counter.Add(1)
			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := logging.ContextWithLogger(r.Context(), logger)
			start := time.Now()
			logger.InfoContext(ctx, "request started")
			next.ServeHTTP(w, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "duration", time.Since(start))
		})
	}
}
