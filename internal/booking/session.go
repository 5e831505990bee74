package booking

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

// SessionState tracks how far a booking session has progressed. Steps are
// strictly ordered; an action that does not match the current state is
// treated the same as a missing session.
type SessionState string

const (
	StateAwaitingRoom         SessionState = "awaiting_room"
	StateAwaitingTitle        SessionState = "awaiting_title"
	StateAwaitingParticipants SessionState = "awaiting_participants"
)

// Session is the ephemeral per-user accumulation of a reservation's fields.
type Session struct {
	User           UserRef
	State          SessionState
	Date           string
	TimeRange      string
	OfferedRooms   []string
	Room           string
	Title          string
	pageSelections map[int][]string
}

// clone deep-copies the mutable fields so callers never share the map or
// slices with the entry held by the manager.
func (s Session) clone() Session {
	if s.OfferedRooms != nil {
		out := make([]string, len(s.OfferedRooms))
		copy(out, s.OfferedRooms)
		s.OfferedRooms = out
	}
	if s.pageSelections != nil {
		selections := make(map[int][]string, len(s.pageSelections))
		for page, ids := range s.pageSelections {
			selections[page] = append([]string(nil), ids...)
		}
		s.pageSelections = selections
	}
	return s
}

// MemberDirectory supplies the eligible participant candidates. The list is
// authoritative: the session manager only deduplicates and selects from it.
type MemberDirectory interface {
	EligibleMembers(ctx context.Context) ([]Member, error)
}

// Notifier delivers outbound messages to participants. Delivery failures are
// logged and never roll back state (at-most-once, not guaranteed-delivery).
type Notifier interface {
	SendInvitation(ctx context.Context, participant Participant, reservation Reservation) error
	SendReminder(ctx context.Context, participant Participant, reservation Reservation, tier ReminderTier) error
}

// SessionConfig carries the tunables of the session manager.
type SessionConfig struct {
	// Rooms is the fixed room catalog offered to bookers.
	Rooms []string
	// Location is the organization's timezone, used to decide what "today"
	// means when validating dates.
	Location *time.Location
	// TTL bounds how long an abandoned session stays resident. Every
	// successful step slides the expiry forward.
	TTL time.Duration
	// MaxSessions caps the keyed session store.
	MaxSessions int
	// IDGenerator mints reservation identifiers at commit time.
	IDGenerator func() string
	// Now is the time source.
	Now func() time.Time
}

// SessionManager runs the per-user booking state machine.
type SessionManager struct {
	store     *Store
	directory MemberDirectory
	notifier  Notifier
	cfg       SessionConfig
	logger    *slog.Logger

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	session   Session
	expiresAt time.Time
}

// StartOutcome reports the result of the first booking step.
type StartOutcome struct {
	Date         string
	TimeRange    string
	OfferedRooms []string
}

// NewSessionManager wires the booking flow dependencies.
func NewSessionManager(store *Store, directory MemberDirectory, notifier Notifier, cfg SessionConfig, logger *slog.Logger) *SessionManager {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Minute
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 512
	}
	if cfg.IDGenerator == nil {
		cfg.IDGenerator = func() string { return "" }
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &SessionManager{
		store:     store,
		directory: directory,
		notifier:  notifier,
		cfg:       cfg,
		logger:    defaultLogger(logger),
		sessions:  make(map[string]*sessionEntry),
	}
}

// Start validates the raw date and time inputs and opens a session offering
// the rooms that are free for the slot. When no room is free the session is
// not retained and ErrNoRoomAvailable is returned.
func (m *SessionManager) Start(ctx context.Context, user UserRef, rawDate, rawTime string) (StartOutcome, error) {
	logger := serviceLogger(ctx, m.logger, "booking_session", "start", "user_id", user.ID)

	vErr := &ValidationError{}
	date, ok := NormalizeDate(rawDate, m.cfg.Now(), m.cfg.Location)
	if !ok {
		vErr.add("date", "invalid or past date")
	}
	timeRange, ok := NormalizeTimeRange(rawTime)
	if !ok {
		vErr.add("time", "invalid time range")
	}
	if vErr.HasErrors() {
		return StartOutcome{}, vErr
	}

	offered := m.store.AvailableRooms(m.cfg.Rooms, date, timeRange)
	if len(offered) == 0 {
		logger.Info("no room available", "date", date, "time_range", timeRange)
		return StartOutcome{}, ErrNoRoomAvailable
	}

	m.put(user.ID, Session{
		User:         user,
		State:        StateAwaitingRoom,
		Date:         date,
		TimeRange:    timeRange,
		OfferedRooms: offered,
	})

	logger.Info("booking session opened", "date", date, "time_range", timeRange, "rooms_offered", len(offered))
	return StartOutcome{Date: date, TimeRange: timeRange, OfferedRooms: offered}, nil
}

// ChooseRoom records the picked room. Only rooms offered at start time are
// accepted.
func (m *SessionManager) ChooseRoom(ctx context.Context, userID, room string) error {
	session, err := m.get(userID, StateAwaitingRoom)
	if err != nil {
		return err
	}

	offered := false
	for _, candidate := range session.OfferedRooms {
		if candidate == room {
			offered = true
			break
		}
	}
	if !offered {
		vErr := &ValidationError{}
		vErr.add("room", "room was not offered for this slot")
		return vErr
	}

	session.Room = room
	session.State = StateAwaitingTitle
	m.put(userID, session)
	return nil
}

// SetTitle records the meeting title and returns the eligible participant
// candidates for the selection step.
func (m *SessionManager) SetTitle(ctx context.Context, userID, title string) ([]Member, error) {
	session, err := m.get(userID, StateAwaitingTitle)
	if err != nil {
		return nil, err
	}

	title = strings.TrimSpace(title)
	if title == "" {
		vErr := &ValidationError{}
		vErr.add("title", "title is required")
		return nil, vErr
	}

	candidates, err := m.directory.EligibleMembers(ctx)
	if err != nil {
		return nil, err
	}

	session.Title = title
	session.State = StateAwaitingParticipants
	session.pageSelections = make(map[int][]string)
	m.put(userID, session)
	return candidates, nil
}

// SelectParticipants stores the selection made on one page of the candidate
// list. Re-submitting a page replaces that page's picks; the union across
// pages is computed at finish time.
func (m *SessionManager) SelectParticipants(ctx context.Context, userID string, page int, memberIDs []string) error {
	session, err := m.get(userID, StateAwaitingParticipants)
	if err != nil {
		return err
	}
	if page < 0 {
		vErr := &ValidationError{}
		vErr.add("page", "page must not be negative")
		return vErr
	}
	if session.pageSelections == nil {
		session.pageSelections = make(map[int][]string)
	}
	session.pageSelections[page] = append([]string(nil), memberIDs...)
	m.put(userID, session)
	return nil
}

// Finish commits the accumulated reservation. The conflict check runs again
// under the store lock because another session may have claimed the slot
// since the room was offered; in that case the session is discarded and the
// user must restart. withParticipants false drops all selections, matching
// the explicit "book without participants" action.
func (m *SessionManager) Finish(ctx context.Context, userID string, withParticipants bool) (Reservation, error) {
	session, err := m.get(userID, StateAwaitingParticipants)
	if err != nil {
		return Reservation{}, err
	}
	logger := serviceLogger(ctx, m.logger, "booking_session", "finish", "user_id", userID)

	var participants []Participant
	if withParticipants {
		participants, err = m.resolveParticipants(ctx, session)
		if err != nil {
			return Reservation{}, err
		}
	}

	reservation := Reservation{
		ID:           m.cfg.IDGenerator(),
		Date:         session.Date,
		TimeRange:    session.TimeRange,
		Room:         session.Room,
		Title:        session.Title,
		Organizer:    session.User,
		Participants: participants,
		Status:       StatusScheduled,
		Attendance:   map[string]AttendanceDecision{},
		CreatedAt:    m.cfg.Now(),
	}

	// The session is gone either way: a refused commit sends the user back
	// to the start of the flow, not into a retry loop.
	m.delete(userID)

	if err := m.store.CommitIfAvailable(ctx, reservation); err != nil {
		logger.Info("commit refused, slot taken since offer",
			"date", session.Date, "time_range", session.TimeRange, "room", session.Room)
		return Reservation{}, err
	}

	logger.Info("reservation committed",
		"reservation_id", reservation.ID, "room", reservation.Room,
		"date", reservation.Date, "participants", len(participants))

	for _, participant := range reservation.Participants {
		if m.notifier == nil {
			break
		}
		if err := m.notifier.SendInvitation(ctx, participant, reservation); err != nil {
			logger.Warn("failed to send invitation", "participant_id", participant.ID, "error", err)
		}
	}

	return reservation, nil
}

// resolveParticipants unions the per-page selections in page order, keeping
// first-seen order and dropping duplicates and ids the directory no longer
// knows.
func (m *SessionManager) resolveParticipants(ctx context.Context, session Session) ([]Participant, error) {
	if len(session.pageSelections) == 0 {
		return nil, nil
	}

	pages := make([]int, 0, len(session.pageSelections))
	for page := range session.pageSelections {
		pages = append(pages, page)
	}
	sort.Ints(pages)

	seen := make(map[string]struct{})
	ordered := make([]string, 0)
	for _, page := range pages {
		for _, id := range session.pageSelections[page] {
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ordered = append(ordered, id)
		}
	}
	if len(ordered) == 0 {
		return nil, nil
	}

	candidates, err := m.directory.EligibleMembers(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]Member, len(candidates))
	for _, member := range candidates {
		byID[member.ID] = member
	}

	participants := make([]Participant, 0, len(ordered))
	for _, id := range ordered {
		member, ok := byID[id]
		if !ok {
			continue
		}
		participants = append(participants, Participant{
			ID:          member.ID,
			DisplayName: member.DisplayName,
			Username:    member.Username,
		})
	}
	return participants, nil
}

// Peek returns a copy of the user's live session, mainly for transports that
// want to render progress.
func (m *SessionManager) Peek(userID string) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.sessions[userID]
	if !ok || m.cfg.Now().After(entry.expiresAt) {
		return Session{}, false
	}
	return entry.session.clone(), true
}

// --- keyed session store with TTL eviction ---

func (m *SessionManager) get(userID string, want SessionState) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[userID]
	if !ok {
		return Session{}, ErrNoActiveSession
	}
	if m.cfg.Now().After(entry.expiresAt) {
		delete(m.sessions, userID)
		return Session{}, ErrNoActiveSession
	}
	if entry.session.State != want {
		return Session{}, ErrNoActiveSession
	}
	return entry.session.clone(), nil
}

func (m *SessionManager) put(userID string, session Session) {
	now := m.cfg.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	for key, entry := range m.sessions {
		if now.After(entry.expiresAt) {
			delete(m.sessions, key)
		}
	}
	if _, exists := m.sessions[userID]; !exists && len(m.sessions) >= m.cfg.MaxSessions {
		for key := range m.sessions {
			delete(m.sessions, key)
			break
		}
	}
	m.sessions[userID] = &sessionEntry{session: session.clone(), expiresAt: now.Add(m.cfg.TTL)}
}

func (m *SessionManager) delete(userID string) {
	m.mu.Lock()
	delete(m.sessions, userID)
	m.mu.Unlock()
}
