package booking

import (
	"context"
	"errors"
	"testing"
	"time"
)

type snapshotStub struct {
	loaded     []Reservation
	loadErr    error
	replaced   [][]Reservation
	replaceErr error
}

func (s *snapshotStub) LoadAll(ctx context.Context) ([]Reservation, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	out := make([]Reservation, len(s.loaded))
	copy(out, s.loaded)
	return out, nil
}

func (s *snapshotStub) ReplaceAll(ctx context.Context, reservations []Reservation) error {
	s.replaced = append(s.replaced, reservations)
	return s.replaceErr
}

func newReservation(id, room, date, timeRange string) Reservation {
	return Reservation{
		ID:        id,
		Date:      date,
		TimeRange: timeRange,
		Room:      room,
		Title:     "Planejamento",
		Organizer: UserRef{ID: "user-1", DisplayName: "Ana"},
		Status:    StatusScheduled,
		CreatedAt: time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestStore_Load_StartsEmptyOnCorruptImage(t *testing.T) {
	t.Parallel()

	snapshot := &snapshotStub{loadErr: errors.New("image unreadable")}
	store := NewStore(snapshot, nil)
	store.Load(context.Background())

	if got := len(store.All()); got != 0 {
		t.Fatalf("expected empty store after corrupt image, got %d records", got)
	}
}

func TestStore_Append_FlushesWholeCollection(t *testing.T) {
	t.Parallel()

	snapshot := &snapshotStub{}
	store := NewStore(snapshot, nil)

	store.Append(context.Background(), newReservation("r-1", "Sala Grande", "25/12/2025", "09:00-11:00"))
	store.Append(context.Background(), newReservation("r-2", "Sala Menor", "25/12/2025", "09:00-11:00"))

	if len(snapshot.replaced) != 2 {
		t.Fatalf("expected one flush per mutation, got %d", len(snapshot.replaced))
	}
	if got := len(snapshot.replaced[1]); got != 2 {
		t.Fatalf("expected wholesale flush with 2 records, got %d", got)
	}
}

func TestStore_FlushFailureKeepsMemoryAuthoritative(t *testing.T) {
	t.Parallel()

	snapshot := &snapshotStub{replaceErr: errors.New("disk full")}
	store := NewStore(snapshot, nil)

	store.Append(context.Background(), newReservation("r-1", "Sala Grande", "25/12/2025", "09:00-11:00"))

	if _, ok := store.FindByID("r-1"); !ok {
		t.Fatal("reservation must stay in memory after a failed flush")
	}
}

func TestStore_CommitIfAvailable_RefusesTakenSlot(t *testing.T) {
	t.Parallel()

	store := NewStore(nil, nil)
	store.Append(context.Background(), newReservation("r-1", "Sala Grande", "25/12/2025", "09:00-11:00"))

	err := store.CommitIfAvailable(context.Background(), newReservation("r-2", "Sala Grande", "25/12/2025", "10:00-12:00"))
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, ok := store.FindByID("r-2"); ok {
		t.Fatal("refused commit must not append")
	}

	// A touching interval is not a conflict.
	if err := store.CommitIfAvailable(context.Background(), newReservation("r-3", "Sala Grande", "25/12/2025", "11:00-12:00")); err != nil {
		t.Fatalf("touching interval should commit, got %v", err)
	}
}

func TestStore_CancelledReservationFreesSlot(t *testing.T) {
	t.Parallel()

	store := NewStore(nil, nil)
	store.Append(context.Background(), newReservation("r-1", "Sala Grande", "25/12/2025", "09:00-11:00"))

	err := store.Mutate(context.Background(), "r-1", func(r *Reservation) error {
		r.Status = StatusCancelled
		return nil
	})
	if err != nil {
		t.Fatalf("mutate failed: %v", err)
	}

	if err := store.CommitIfAvailable(context.Background(), newReservation("r-2", "Sala Grande", "25/12/2025", "09:00-11:00")); err != nil {
		t.Fatalf("cancelled reservation must free the slot, got %v", err)
	}
}

func TestStore_Mutate_UpdaterErrorLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	snapshot := &snapshotStub{}
	store := NewStore(snapshot, nil)
	store.Append(context.Background(), newReservation("r-1", "Sala Grande", "25/12/2025", "09:00-11:00"))
	flushes := len(snapshot.replaced)

	sentinel := errors.New("refused")
	err := store.Mutate(context.Background(), "r-1", func(r *Reservation) error {
		r.Title = "should not stick"
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected updater error, got %v", err)
	}

	stored, _ := store.FindByID("r-1")
	if stored.Title != "Planejamento" {
		t.Fatalf("refused mutation must not change state, title = %q", stored.Title)
	}
	if len(snapshot.replaced) != flushes {
		t.Fatal("refused mutation must not flush")
	}
}

func TestStore_Mutate_UnknownID(t *testing.T) {
	t.Parallel()

	store := NewStore(nil, nil)
	err := store.Mutate(context.Background(), "missing", func(r *Reservation) error { return nil })
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_AvailableRooms(t *testing.T) {
	t.Parallel()

	store := NewStore(nil, nil)
	store.Append(context.Background(), newReservation("r-1", "Sala Grande", "25/12/2025", "09:00-11:00"))

	rooms := []string{"Sala Grande", "Sala Menor", "Sala Menor C/Mesa"}
	got := store.AvailableRooms(rooms, "25/12/2025", "10:00-12:00")
	if len(got) != 2 || got[0] != "Sala Menor" {
		t.Fatalf("AvailableRooms = %v, want the two free rooms", got)
	}
}
