package http

import (
	"context"
	"log/slog"

	"github.com/pablotasuyuki/Sistema-Agendamento-de-Salas/internal/logging"
)

func handlerLogger(ctx context.Context, fallback *slog.Logger, handlerName, operation string, attrs ...any) *slog.Logger {
	logger := logging.Or(ctx, fallback)

	pairs := []any{"handler", handlerName}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	if len(attrs) > 0 {
		pairs = append(pairs, attrs...)
	}
	return logger.With(pairs...)
}
