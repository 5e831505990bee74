package http

import (
	"context"

	"github.com/pablotasuyuki/Sistema-Agendamento-de-Salas/internal/booking"
)

type contextKey string

const (
	actingUserContextKey    contextKey = "acting_user"
	reservationIDContextKey contextKey = "reservation_id"
)

// ContextWithActingUser returns a derived context carrying the user behind the request.
func ContextWithActingUser(ctx context.Context, user booking.UserRef) context.Context {
	return context.WithValue(ctx, actingUserContextKey, user)
}

// ActingUserFromContext extracts the acting user from context if available.
func ActingUserFromContext(ctx context.Context) (booking.UserRef, bool) {
	user, ok := ctx.Value(actingUserContextKey).(booking.UserRef)
	return user, ok
}

// ContextWithReservationID injects the reservation identifier resolved from the request path.
func ContextWithReservationID(ctx context.Context, reservationID string) context.Context {
	return context.WithValue(ctx, reservationIDContextKey, reservationID)
}

// ReservationIDFromContext extracts a reservation identifier previously associated with the context.
func ReservationIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(reservationIDContextKey).(string)
	return id, ok
}
