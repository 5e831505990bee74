package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type directoryStub struct {
	members []Member
	err     error
}

func (d *directoryStub) EligibleMembers(ctx context.Context) ([]Member, error) {
	if d.err != nil {
		return nil, d.err
	}
	out := make([]Member, len(d.members))
	copy(out, d.members)
	return out, nil
}

type notifierStub struct {
	invitations []string
	reminders   []string
	err         error
}

func (n *notifierStub) SendInvitation(ctx context.Context, participant Participant, reservation Reservation) error {
	n.invitations = append(n.invitations, participant.ID)
	return n.err
}

func (n *notifierStub) SendReminder(ctx context.Context, participant Participant, reservation Reservation, tier ReminderTier) error {
	n.reminders = append(n.reminders, participant.ID+":"+string(tier))
	return n.err
}

var testRooms = []string{"Sala Grande", "Sala Menor", "Sala Menor C/Mesa"}

func testMembers() []Member {
	return []Member{
		{ID: "m-1", DisplayName: "Bruna", Username: "bruna"},
		{ID: "m-2", DisplayName: "Carlos", Username: "carlos"},
		{ID: "m-3", DisplayName: "Diego", Username: "diego"},
	}
}

func newTestManager(store *Store, directory MemberDirectory, notifier Notifier) *SessionManager {
	return NewSessionManager(store, directory, notifier, SessionConfig{
		Rooms:       testRooms,
		Location:    testLoc,
		TTL:         30 * time.Minute,
		IDGenerator: func() string { return "res-1" },
		Now:         testNow,
	}, nil)
}

func organizer() UserRef {
	return UserRef{ID: "user-1", DisplayName: "Ana"}
}

func runToParticipants(t *testing.T, m *SessionManager) {
	t.Helper()
	ctx := context.Background()
	if _, err := m.Start(ctx, organizer(), "25/12/2025", "09:00-11:00"); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := m.ChooseRoom(ctx, "user-1", "Sala Grande"); err != nil {
		t.Fatalf("choose room failed: %v", err)
	}
	if _, err := m.SetTitle(ctx, "user-1", "Reunião de equipe"); err != nil {
		t.Fatalf("set title failed: %v", err)
	}
}

func TestSessionManager_Start_InvalidInputs(t *testing.T) {
	t.Parallel()

	m := newTestManager(NewStore(nil, nil), &directoryStub{}, nil)
	_, err := m.Start(context.Background(), organizer(), "31/02/2025", "17:00-08:00")

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["date"]; !ok {
		t.Fatalf("expected date error, got %v", vErr.FieldErrors)
	}
	if _, ok := vErr.FieldErrors["time"]; !ok {
		t.Fatalf("expected time error, got %v", vErr.FieldErrors)
	}
	if _, live := m.Peek("user-1"); live {
		t.Fatal("invalid input must not open a session")
	}
}

func TestSessionManager_Start_ExcludesConflictingRooms(t *testing.T) {
	t.Parallel()

	store := NewStore(nil, nil)
	store.Append(context.Background(), newReservation("r-1", "Sala Grande", "25/12/2025", "09:00-11:00"))
	m := newTestManager(store, &directoryStub{}, nil)

	outcome, err := m.Start(context.Background(), organizer(), "25/12/2025", "10:00-12:00")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	for _, room := range outcome.OfferedRooms {
		if room == "Sala Grande" {
			t.Fatal("conflicting room must not be offered")
		}
	}

	// Touching interval: the booked room is offered again.
	outcome, err = m.Start(context.Background(), organizer(), "25/12/2025", "11:00-12:00")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if len(outcome.OfferedRooms) != len(testRooms) {
		t.Fatalf("touching interval should offer all rooms, got %v", outcome.OfferedRooms)
	}
}

func TestSessionManager_Start_NoRoomAvailable(t *testing.T) {
	t.Parallel()

	store := NewStore(nil, nil)
	for _, room := range testRooms {
		store.Append(context.Background(), newReservation("r-"+room, room, "25/12/2025", "09:00-11:00"))
	}
	m := newTestManager(store, &directoryStub{}, nil)

	_, err := m.Start(context.Background(), organizer(), "25/12/2025", "09:30-10:30")
	if !errors.Is(err, ErrNoRoomAvailable) {
		t.Fatalf("expected ErrNoRoomAvailable, got %v", err)
	}
	if _, live := m.Peek("user-1"); live {
		t.Fatal("aborted start must not leave a session behind")
	}
}

func TestSessionManager_StepWithoutSession(t *testing.T) {
	t.Parallel()

	m := newTestManager(NewStore(nil, nil), &directoryStub{}, nil)

	if err := m.ChooseRoom(context.Background(), "ghost", "Sala Grande"); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
	if _, err := m.Finish(context.Background(), "ghost", true); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
}

func TestSessionManager_OutOfOrderStep(t *testing.T) {
	t.Parallel()

	m := newTestManager(NewStore(nil, nil), &directoryStub{}, nil)
	if _, err := m.Start(context.Background(), organizer(), "25/12/2025", "09:00-11:00"); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	// Title before a room was chosen.
	if _, err := m.SetTitle(context.Background(), "user-1", "Reunião"); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession for out-of-order step, got %v", err)
	}
}

func TestSessionManager_ChooseRoom_MustBeOffered(t *testing.T) {
	t.Parallel()

	store := NewStore(nil, nil)
	store.Append(context.Background(), newReservation("r-1", "Sala Grande", "25/12/2025", "09:00-11:00"))
	m := newTestManager(store, &directoryStub{}, nil)

	if _, err := m.Start(context.Background(), organizer(), "25/12/2025", "09:30-10:30"); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	err := m.ChooseRoom(context.Background(), "user-1", "Sala Grande")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError for unoffered room, got %v", err)
	}
}

func TestSessionManager_Finish_CommitsReservation(t *testing.T) {
	t.Parallel()

	store := NewStore(nil, nil)
	notifier := &notifierStub{}
	m := newTestManager(store, &directoryStub{members: testMembers()}, notifier)
	runToParticipants(t, m)

	// The same member picked on two pages counts once.
	if err := m.SelectParticipants(context.Background(), "user-1", 0, []string{"m-1", "m-2"}); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if err := m.SelectParticipants(context.Background(), "user-1", 1, []string{"m-2", "m-3"}); err != nil {
		t.Fatalf("select failed: %v", err)
	}

	reservation, err := m.Finish(context.Background(), "user-1", true)
	if err != nil {
		t.Fatalf("finish failed: %v", err)
	}

	if reservation.ID != "res-1" || reservation.Room != "Sala Grande" || reservation.Status != StatusScheduled {
		t.Fatalf("unexpected reservation: %+v", reservation)
	}
	if len(reservation.Participants) != 3 {
		t.Fatalf("expected 3 deduplicated participants, got %d", len(reservation.Participants))
	}
	if reservation.Reminder24Sent || reservation.Reminder1Sent {
		t.Fatal("new reservations must have unset reminder flags")
	}
	if len(reservation.Attendance) != 0 {
		t.Fatal("new reservations must start with empty attendance")
	}
	if len(notifier.invitations) != 3 {
		t.Fatalf("expected one invitation per participant, got %d", len(notifier.invitations))
	}
	if _, ok := store.FindByID("res-1"); !ok {
		t.Fatal("reservation must be appended to the store")
	}
	if _, live := m.Peek("user-1"); live {
		t.Fatal("session must be discarded after commit")
	}
}

func TestSessionManager_Finish_WithoutParticipants(t *testing.T) {
	t.Parallel()

	notifier := &notifierStub{}
	m := newTestManager(NewStore(nil, nil), &directoryStub{members: testMembers()}, notifier)
	runToParticipants(t, m)

	if err := m.SelectParticipants(context.Background(), "user-1", 0, []string{"m-1"}); err != nil {
		t.Fatalf("select failed: %v", err)
	}

	// The explicit "no participants" action drops prior selections.
	reservation, err := m.Finish(context.Background(), "user-1", false)
	if err != nil {
		t.Fatalf("finish failed: %v", err)
	}
	if len(reservation.Participants) != 0 {
		t.Fatalf("expected no participants, got %v", reservation.Participants)
	}
	if len(notifier.invitations) != 0 {
		t.Fatal("no invitations expected without participants")
	}
}

func TestSessionManager_Finish_RechecksConflict(t *testing.T) {
	t.Parallel()

	store := NewStore(nil, nil)
	m := newTestManager(store, &directoryStub{members: testMembers()}, nil)
	runToParticipants(t, m)

	// Another session claims the slot between offer and commit.
	store.Append(context.Background(), newReservation("rival", "Sala Grande", "25/12/2025", "10:00-10:30"))

	_, err := m.Finish(context.Background(), "user-1", false)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, live := m.Peek("user-1"); live {
		t.Fatal("refused commit must discard the session")
	}
}

func TestSessionManager_SessionExpires(t *testing.T) {
	t.Parallel()

	clock := testNow()
	m := NewSessionManager(NewStore(nil, nil), &directoryStub{}, nil, SessionConfig{
		Rooms:       testRooms,
		Location:    testLoc,
		TTL:         10 * time.Minute,
		IDGenerator: func() string { return "res-1" },
		Now:         func() time.Time { return clock },
	}, nil)

	if _, err := m.Start(context.Background(), organizer(), "25/12/2025", "09:00-11:00"); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	clock = clock.Add(11 * time.Minute)
	if err := m.ChooseRoom(context.Background(), "user-1", "Sala Grande"); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("expected expired session to report ErrNoActiveSession, got %v", err)
	}
}

func TestSessionManager_SelectParticipants_ConcurrentSubmissions(t *testing.T) {
	t.Parallel()

	m := newTestManager(NewStore(nil, nil), &directoryStub{members: testMembers()}, nil)
	runToParticipants(t, m)

	// A double-submitted participants page arrives as parallel requests for
	// the same user. Each must see its own copy of the session.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := m.SelectParticipants(context.Background(), "user-1", 0, []string{"m-1", "m-2"}); err != nil {
				t.Errorf("select participants failed: %v", err)
			}
		}()
	}
	wg.Wait()

	reservation, err := m.Finish(context.Background(), "user-1", true)
	if err != nil {
		t.Fatalf("finish failed: %v", err)
	}
	if len(reservation.Participants) != 2 {
		t.Fatalf("expected 2 participants, got %d", len(reservation.Participants))
	}
	if reservation.Participants[0].ID != "m-1" || reservation.Participants[1].ID != "m-2" {
		t.Fatalf("unexpected participants: %+v", reservation.Participants)
	}
}
