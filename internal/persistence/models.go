package persistence

import "time"

// Participant is the stored projection of an invited member.
type Participant struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Username    string `json:"username,omitempty"`
}

// Reservation is the storage shape of a room reservation. The durable image
// is the whole ordered collection of these records, written wholesale on
// every mutation and loaded wholesale at startup.
type Reservation struct {
	ID             string
	Date           string
	TimeRange      string
	Room           string
	Title          string
	OrganizerID    string
	OrganizerName  string
	Participants   []Participant
	Status         string
	Attendance     map[string]string
	Reminder24Sent bool
	Reminder1Sent  bool
	CreatedAt      time.Time
}
