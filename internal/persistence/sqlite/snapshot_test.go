package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/pablotasuyuki/Sistema-Agendamento-de-Salas/internal/persistence"
)

func openTestStore(t *testing.T) *SnapshotStore {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "salas.db")
	store, err := Open(dsn)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return store
}

func sampleReservation(id string) persistence.Reservation {
	return persistence.Reservation{
		ID:            id,
		Date:          "25/12/2025",
		TimeRange:     "09:00-11:00",
		Room:          "Sala Grande",
		Title:         "Planejamento",
		OrganizerID:   "user-1",
		OrganizerName: "Ana",
		Participants: []persistence.Participant{
			{ID: "m-1", DisplayName: "Bruna", Username: "bruna"},
		},
		Status:     "Agendada",
		Attendance: map[string]string{"m-1": "Confirmada"},
		CreatedAt:  time.Date(2025, 6, 15, 13, 30, 0, 0, time.UTC),
	}
}

func TestSnapshotStore_RoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := sampleReservation("r-1")
	second := sampleReservation("r-2")
	second.Participants = nil
	second.Attendance = nil
	second.Reminder24Sent = true

	if err := store.ReplaceAll(ctx, []persistence.Reservation{first, second}); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}

	loaded, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 reservations, got %d", len(loaded))
	}
	if loaded[0].ID != "r-1" || loaded[1].ID != "r-2" {
		t.Fatalf("insertion order lost: %s, %s", loaded[0].ID, loaded[1].ID)
	}
	if len(loaded[0].Participants) != 1 || loaded[0].Participants[0].Username != "bruna" {
		t.Fatalf("participants did not round-trip: %+v", loaded[0].Participants)
	}
	if loaded[0].Attendance["m-1"] != "Confirmada" {
		t.Fatalf("attendance did not round-trip: %+v", loaded[0].Attendance)
	}
	if !loaded[0].CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("created_at did not round-trip: %s", loaded[0].CreatedAt)
	}
	if !loaded[1].Reminder24Sent || loaded[1].Reminder1Sent {
		t.Fatalf("reminder flags did not round-trip: %+v", loaded[1])
	}
	if len(loaded[1].Participants) != 0 {
		t.Fatalf("expected empty participants, got %+v", loaded[1].Participants)
	}
}

func TestSnapshotStore_ReplaceAllOverwrites(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.ReplaceAll(ctx, []persistence.Reservation{sampleReservation("r-1"), sampleReservation("r-2")}); err != nil {
		t.Fatalf("first ReplaceAll failed: %v", err)
	}
	if err := store.ReplaceAll(ctx, []persistence.Reservation{sampleReservation("r-3")}); err != nil {
		t.Fatalf("second ReplaceAll failed: %v", err)
	}

	loaded, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(loaded) != 1 || loaded[0].ID != "r-3" {
		t.Fatalf("expected only r-3, got %+v", loaded)
	}
}

func TestSnapshotStore_LoadAllEmpty(t *testing.T) {
	store := openTestStore(t)

	loaded, err := store.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("expected empty collection, got %d", len(loaded))
	}
}

func TestSnapshotStore_CorruptRow(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.ReplaceAll(ctx, []persistence.Reservation{sampleReservation("r-1")}); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}
	if _, err := store.DB().ExecContext(ctx, "UPDATE reservations SET participants = 'not json'"); err != nil {
		t.Fatalf("failed to corrupt row: %v", err)
	}

	_, err := store.LoadAll(ctx)
	if !errors.Is(err, persistence.ErrCorruptImage) {
		t.Fatalf("expected ErrCorruptImage, got %v", err)
	}
}
