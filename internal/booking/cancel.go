package booking

import (
	"context"
	"log/slog"
)

// CancelService handles the soft-cancellation flow. Cancelled reservations
// stay in the store so history and exports keep seeing them; they only drop
// out of conflict consideration.
type CancelService struct {
	store  *Store
	logger *slog.Logger
}

// NewCancelService wires the cancellation flow over the reservation store.
func NewCancelService(store *Store, logger *slog.Logger) *CancelService {
	return &CancelService{store: store, logger: defaultLogger(logger)}
}

// Cancellable lists the non-cancelled reservations the user organises or
// participates in, optionally narrowed to one MM/YYYY group.
func (s *CancelService) Cancellable(userID, monthYear string) []Reservation {
	return s.store.Filter(func(r Reservation) bool {
		if r.Status == StatusCancelled || !r.Involves(userID) {
			return false
		}
		if monthYear != "" && r.MonthYear() != monthYear {
			return false
		}
		return true
	})
}

// CancellableMonths lists the MM/YYYY groups holding reservations the user
// could cancel, sorted chronologically.
func (s *CancelService) CancellableMonths(userID string) []string {
	return monthYearKeys(s.Cancellable(userID, ""), false)
}

// Cancel marks the reservation cancelled. The transition is one-way; a
// reservation that is already cancelled reports ErrAlreadyCancelled and is
// otherwise untouched. Only the organizer or a participant may cancel.
func (s *CancelService) Cancel(ctx context.Context, reservationID, userID string) error {
	logger := serviceLogger(ctx, s.logger, "cancel", "cancel",
		"reservation_id", reservationID, "user_id", userID)

	err := s.store.Mutate(ctx, reservationID, func(r *Reservation) error {
		if !r.Involves(userID) {
			return ErrNotFound
		}
		if r.Status == StatusCancelled {
			return ErrAlreadyCancelled
		}
		r.Status = StatusCancelled
		return nil
	})
	if err != nil {
		logger.Info("cancellation rejected", "kind", ErrorKind(err))
		return err
	}

	logger.Info("reservation cancelled")
	return nil
}
