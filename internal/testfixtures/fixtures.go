// Package testfixtures provides deterministic builders shared by the test
// suites: a controllable clock, sequential identifier generation and
// reservation/member fixtures convertible to the booking and persistence
// shapes.
package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pablotasuyuki/Sistema-Agendamento-de-Salas/internal/booking"
	"github.com/pablotasuyuki/Sistema-Agendamento-de-Salas/internal/persistence"
)

var (
	reservationCounter uint64
	memberCounter      uint64
)

var referenceTime = time.Date(2025, time.June, 15, 10, 30, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// -------------------------- Reservation fixtures --------------------------

// ReservationFixture represents a deterministic reservation record that can
// be materialised for booking or persistence tests.
type ReservationFixture struct {
	ID             string
	Date           string
	TimeRange      string
	Room           string
	Title          string
	OrganizerID    string
	OrganizerName  string
	Participants   []booking.Participant
	Status         booking.Status
	Attendance     map[string]booking.AttendanceDecision
	Reminder24Sent bool
	Reminder1Sent  bool
	CreatedAt      time.Time
}

// ReservationOption configures the generated reservation fixture.
type ReservationOption func(*ReservationFixture)

// NewReservationFixture returns a deterministic reservation fixture with
// optional overrides. Consecutive fixtures occupy consecutive days so they
// never conflict unless a test makes them.
func NewReservationFixture(opts ...ReservationOption) ReservationFixture {
	idx := atomic.AddUint64(&reservationCounter, 1)
	day := referenceTime.AddDate(0, 0, int(idx))
	fixture := ReservationFixture{
		ID:            fmt.Sprintf("res-%03d", idx),
		Date:          day.Format("02/01/2006"),
		TimeRange:     "09:00-10:00",
		Room:          "Sala Grande",
		Title:         fmt.Sprintf("Reunião %03d", idx),
		OrganizerID:   fmt.Sprintf("user-%03d", idx),
		OrganizerName: fmt.Sprintf("Usuário %03d", idx),
		Status:        booking.StatusScheduled,
		Attendance:    map[string]booking.AttendanceDecision{},
		CreatedAt:     referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithReservationID overrides the generated reservation ID.
func WithReservationID(id string) ReservationOption {
	return func(f *ReservationFixture) {
		f.ID = id
	}
}

// WithReservationSlot sets the date and time range.
func WithReservationSlot(date, timeRange string) ReservationOption {
	return func(f *ReservationFixture) {
		f.Date = date
		f.TimeRange = timeRange
	}
}

// WithReservationRoom overrides the room.
func WithReservationRoom(room string) ReservationOption {
	return func(f *ReservationFixture) {
		f.Room = room
	}
}

// WithReservationTitle overrides the title.
func WithReservationTitle(title string) ReservationOption {
	return func(f *ReservationFixture) {
		f.Title = title
	}
}

// WithReservationOrganizer sets the organizer identity.
func WithReservationOrganizer(id, name string) ReservationOption {
	return func(f *ReservationFixture) {
		f.OrganizerID = id
		f.OrganizerName = name
	}
}

// WithReservationParticipants sets the invited participants.
func WithReservationParticipants(participants ...booking.Participant) ReservationOption {
	return func(f *ReservationFixture) {
		f.Participants = append([]booking.Participant(nil), participants...)
	}
}

// WithReservationCancelled marks the fixture cancelled.
func WithReservationCancelled() ReservationOption {
	return func(f *ReservationFixture) {
		f.Status = booking.StatusCancelled
	}
}

// WithReservationAttendance sets the recorded attendance decisions.
func WithReservationAttendance(attendance map[string]booking.AttendanceDecision) ReservationOption {
	return func(f *ReservationFixture) {
		f.Attendance = make(map[string]booking.AttendanceDecision, len(attendance))
		for id, decision := range attendance {
			f.Attendance[id] = decision
		}
	}
}

// WithReservationReminderFlags sets both reminder flags.
func WithReservationReminderFlags(sent24, sent1 bool) ReservationOption {
	return func(f *ReservationFixture) {
		f.Reminder24Sent = sent24
		f.Reminder1Sent = sent1
	}
}

// WithReservationCreatedAt sets the created timestamp.
func WithReservationCreatedAt(t time.Time) ReservationOption {
	return func(f *ReservationFixture) {
		f.CreatedAt = t
	}
}

// Booking returns the fixture as a booking.Reservation value.
func (f ReservationFixture) Booking() booking.Reservation {
	attendance := make(map[string]booking.AttendanceDecision, len(f.Attendance))
	for id, decision := range f.Attendance {
		attendance[id] = decision
	}
	return booking.Reservation{
		ID:             f.ID,
		Date:           f.Date,
		TimeRange:      f.TimeRange,
		Room:           f.Room,
		Title:          f.Title,
		Organizer:      booking.UserRef{ID: f.OrganizerID, DisplayName: f.OrganizerName},
		Participants:   append([]booking.Participant(nil), f.Participants...),
		Status:         f.Status,
		Attendance:     attendance,
		Reminder24Sent: f.Reminder24Sent,
		Reminder1Sent:  f.Reminder1Sent,
		CreatedAt:      f.CreatedAt,
	}
}

// Persistence returns the fixture as a persistence.Reservation value.
func (f ReservationFixture) Persistence() persistence.Reservation {
	participants := make([]persistence.Participant, 0, len(f.Participants))
	for _, p := range f.Participants {
		participants = append(participants, persistence.Participant{
			ID:          p.ID,
			DisplayName: p.DisplayName,
			Username:    p.Username,
		})
	}
	attendance := make(map[string]string, len(f.Attendance))
	for id, decision := range f.Attendance {
		attendance[id] = string(decision)
	}
	return persistence.Reservation{
		ID:             f.ID,
		Date:           f.Date,
		TimeRange:      f.TimeRange,
		Room:           f.Room,
		Title:          f.Title,
		OrganizerID:    f.OrganizerID,
		OrganizerName:  f.OrganizerName,
		Participants:   participants,
		Status:         string(f.Status),
		Attendance:     attendance,
		Reminder24Sent: f.Reminder24Sent,
		Reminder1Sent:  f.Reminder1Sent,
		CreatedAt:      f.CreatedAt,
	}
}

// ---------------------------- Member fixtures -----------------------------

// MemberFixture represents a deterministic invitable member.
type MemberFixture struct {
	ID          string
	DisplayName string
	Username    string
}

// MemberOption configures the generated member fixture.
type MemberOption func(*MemberFixture)

// NewMemberFixture returns a deterministic member fixture with optional overrides.
func NewMemberFixture(opts ...MemberOption) MemberFixture {
	idx := atomic.AddUint64(&memberCounter, 1)
	fixture := MemberFixture{
		ID:          fmt.Sprintf("member-%03d", idx),
		DisplayName: fmt.Sprintf("Membro %03d", idx),
		Username:    fmt.Sprintf("membro%03d", idx),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithMemberID overrides the generated member ID.
func WithMemberID(id string) MemberOption {
	return func(f *MemberFixture) {
		f.ID = id
	}
}

// WithMemberDisplayName overrides the display name.
func WithMemberDisplayName(name string) MemberOption {
	return func(f *MemberFixture) {
		f.DisplayName = name
	}
}

// WithMemberUsername overrides the username.
func WithMemberUsername(username string) MemberOption {
	return func(f *MemberFixture) {
		f.Username = username
	}
}

// Member returns the fixture as a booking.Member value.
func (f MemberFixture) Member() booking.Member {
	return booking.Member{ID: f.ID, DisplayName: f.DisplayName, Username: f.Username}
}

// Participant returns the fixture as a booking.Participant value.
func (f MemberFixture) Participant() booking.Participant {
	return booking.Participant{ID: f.ID, DisplayName: f.DisplayName, Username: f.Username}
}
