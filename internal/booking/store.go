package booking

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pablotasuyuki/Sistema-Agendamento-de-Salas/internal/conflict"
)

// Snapshot persists the whole reservation collection. Implementations write
// the durable image wholesale; the in-memory collection stays authoritative
// between flushes.
type Snapshot interface {
	LoadAll(ctx context.Context) ([]Reservation, error)
	ReplaceAll(ctx context.Context, reservations []Reservation) error
}

// Store holds the reservation collection in memory and writes through to the
// durable snapshot on every mutation. One mutex serializes all mutations so
// the commit-time conflict re-check stays atomic under concurrency.
type Store struct {
	mu           sync.Mutex
	reservations []Reservation
	snapshot     Snapshot
	logger       *slog.Logger
}

// NewStore wires a store over the given snapshot. A nil snapshot keeps the
// store memory-only, which the tests rely on.
func NewStore(snapshot Snapshot, logger *slog.Logger) *Store {
	return &Store{snapshot: snapshot, logger: defaultLogger(logger)}
}

// Load replaces the in-memory collection with the durable image. A missing,
// unreadable or corrupt image is logged and the store starts empty; startup
// never fails on account of the snapshot.
func (s *Store) Load(ctx context.Context) {
	if s.snapshot == nil {
		return
	}
	loaded, err := s.snapshot.LoadAll(ctx)
	if err != nil {
		s.logger.Warn("failed to load reservation snapshot, starting empty", "error", err)
		loaded = nil
	}
	s.mu.Lock()
	s.reservations = loaded
	s.mu.Unlock()
	s.logger.Info("reservation snapshot loaded", "count", len(loaded))
}

// Append adds a new reservation and flushes the durable image.
func (s *Store) Append(ctx context.Context, reservation Reservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reservations = append(s.reservations, reservation.Clone())
	s.flushLocked(ctx)
}

// CommitIfAvailable re-checks the reservation's slot against the current
// collection and appends only when it is still free. The check and the
// append happen under the same lock, closing the offer/commit race between
// two sessions.
func (s *Store) CommitIfAvailable(ctx context.Context, reservation Reservation) error {
	start, end := RangeMinutes(reservation.TimeRange)
	candidate := conflict.Candidate{
		Room:        reservation.Room,
		Date:        reservation.Date,
		StartMinute: start,
		EndMinute:   end,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if conflict.HasConflict(s.slotsLocked(), candidate) {
		return ErrConflict
	}
	s.reservations = append(s.reservations, reservation.Clone())
	s.flushLocked(ctx)
	return nil
}

// HasConflict reports whether the room/date/range collides with a
// non-cancelled reservation.
func (s *Store) HasConflict(room, date, timeRange string) bool {
	start, end := RangeMinutes(timeRange)
	s.mu.Lock()
	defer s.mu.Unlock()
	return conflict.HasConflict(s.slotsLocked(), conflict.Candidate{
		Room:        room,
		Date:        date,
		StartMinute: start,
		EndMinute:   end,
	})
}

// AvailableRooms returns the subset of the catalog with no conflict for the
// date and range, in catalog order.
func (s *Store) AvailableRooms(rooms []string, date, timeRange string) []string {
	start, end := RangeMinutes(timeRange)
	s.mu.Lock()
	defer s.mu.Unlock()
	return conflict.AvailableRooms(rooms, s.slotsLocked(), date, start, end)
}

// FindByID returns a copy of the reservation with the given id.
func (s *Store) FindByID(id string) (Reservation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reservations {
		if r.ID == id {
			return r.Clone(), true
		}
	}
	return Reservation{}, false
}

// Filter returns copies of the reservations matching the predicate, in
// insertion order.
func (s *Store) Filter(pred func(Reservation) bool) []Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Reservation, 0)
	for _, r := range s.reservations {
		if pred(r) {
			out = append(out, r.Clone())
		}
	}
	return out
}

// All returns a copy of the full collection, cancelled records included.
func (s *Store) All() []Reservation {
	return s.Filter(func(Reservation) bool { return true })
}

// Mutate applies the updater to the reservation with the given id and
// flushes when the updater succeeds. An updater error leaves both memory and
// the durable image untouched.
func (s *Store) Mutate(ctx context.Context, id string, update func(*Reservation) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.reservations {
		if s.reservations[i].ID != id {
			continue
		}
		working := s.reservations[i].Clone()
		if err := update(&working); err != nil {
			return err
		}
		s.reservations[i] = working
		s.flushLocked(ctx)
		return nil
	}
	return ErrNotFound
}

func (s *Store) slotsLocked() []conflict.Slot {
	slots := make([]conflict.Slot, 0, len(s.reservations))
	for _, r := range s.reservations {
		start, end := RangeMinutes(r.TimeRange)
		slots = append(slots, conflict.Slot{
			ReservationID: r.ID,
			Room:          r.Room,
			Date:          r.Date,
			StartMinute:   start,
			EndMinute:     end,
			Cancelled:     r.Status == StatusCancelled,
		})
	}
	return slots
}

// flushLocked writes the durable image. A failed flush is logged and not
// retried; memory stays authoritative until the next successful flush.
func (s *Store) flushLocked(ctx context.Context) {
	if s.snapshot == nil {
		return
	}
	image := make([]Reservation, len(s.reservations))
	for i, r := range s.reservations {
		image[i] = r.Clone()
	}
	if err := s.snapshot.ReplaceAll(ctx, image); err != nil {
		s.logger.Error("failed to flush reservation snapshot", "error", err, "count", len(image))
	}
}
