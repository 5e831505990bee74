package booking

import "time"

// Status marks the lifecycle state of a reservation. Cancellation is a soft
// state: records are never physically deleted so the full history stays
// available for export.
type Status string

const (
	StatusScheduled Status = "Agendada"
	StatusCancelled Status = "Cancelada"
)

// AttendanceDecision is a participant's one-time answer to an invitation.
type AttendanceDecision string

const (
	AttendanceConfirmed AttendanceDecision = "Confirmada"
	AttendanceDeclined  AttendanceDecision = "Reprovada"
)

// UserRef identifies an acting or referenced user together with the display
// metadata the transport resolved for it.
type UserRef struct {
	ID          string
	DisplayName string
}

// Participant is an invited member of a reservation.
type Participant struct {
	ID          string
	DisplayName string
	Username    string
}

// Reservation is the durable unit of the system.
//
// Date is canonical DD/MM/YYYY and TimeRange canonical HH:MM-HH:MM, both as
// produced by the normalizer. Attendance maps participant IDs to their
// decision; absence means undecided.
type Reservation struct {
	ID             string
	Date           string
	TimeRange      string
	Room           string
	Title          string
	Organizer      UserRef
	Participants   []Participant
	Status         Status
	Attendance     map[string]AttendanceDecision
	Reminder24Sent bool
	Reminder1Sent  bool
	CreatedAt      time.Time
}

// IsParticipant reports whether the given user was invited.
func (r Reservation) IsParticipant(userID string) bool {
	for _, p := range r.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}

// Involves reports whether the user organises or participates in the
// reservation. Cancellation and the personal listings use this visibility
// rule.
func (r Reservation) Involves(userID string) bool {
	return r.Organizer.ID == userID || r.IsParticipant(userID)
}

// MonthYear returns the MM/YYYY group of the reservation date.
func (r Reservation) MonthYear() string {
	if len(r.Date) != 10 {
		return ""
	}
	return r.Date[3:]
}

// Clone returns a deep copy so callers cannot mutate stored state through
// shared slices or maps.
func (r Reservation) Clone() Reservation {
	out := r
	if r.Participants != nil {
		out.Participants = make([]Participant, len(r.Participants))
		copy(out.Participants, r.Participants)
	}
	if r.Attendance != nil {
		out.Attendance = make(map[string]AttendanceDecision, len(r.Attendance))
		for id, decision := range r.Attendance {
			out.Attendance[id] = decision
		}
	}
	return out
}

// Member is an eligible participant candidate supplied by the membership
// directory collaborator.
type Member struct {
	ID          string
	DisplayName string
	Username    string
}

// ReminderTier identifies one of the two fixed reminder lead times.
type ReminderTier string

const (
	ReminderTier24h ReminderTier = "24h"
	ReminderTier1h  ReminderTier = "1h"
)
