package booking

import "errors"

var (
	// ErrConflict is returned when the requested room/date/time collides
	// with an existing reservation, either at offer time or when the
	// conflict re-check at commit time fails.
	ErrConflict = errors.New("booking: room unavailable for the requested slot")
	// ErrNoRoomAvailable is returned when no room in the catalog is free
	// for the requested date and time.
	ErrNoRoomAvailable = errors.New("booking: no room available")
	// ErrNoActiveSession is returned when a step arrives for a user with
	// no live booking session, typically a stale or duplicate interaction.
	ErrNoActiveSession = errors.New("booking: no active session")
	// ErrNotFound is returned when an operation references a reservation
	// that does not exist.
	ErrNotFound = errors.New("booking: reservation not found")
	// ErrAlreadyCancelled is returned when a cancelled reservation is
	// targeted by an operation that needs a scheduled one.
	ErrAlreadyCancelled = errors.New("booking: reservation already cancelled")
	// ErrAttendanceRecorded is returned when a participant tries to record
	// a second attendance decision. The first decision is retained.
	ErrAttendanceRecorded = errors.New("booking: attendance already recorded")
	// ErrNotParticipant is returned when someone outside the participant
	// list tries to record attendance.
	ErrNotParticipant = errors.New("booking: user is not a participant")
	// ErrPermission is returned when the acting user lacks the required
	// capability, e.g. export without the export passcode.
	ErrPermission = errors.New("booking: permission denied")
	// ErrNoCursor is returned when a paging action arrives for a viewer
	// with no live pagination cursor.
	ErrNoCursor = errors.New("booking: navigation expired")
)

// ValidationError carries field level input problems the transport can show
// to the user. Nothing was mutated when one is returned.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// ErrorKind maps errors to a stable label used in log fields.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrNoRoomAvailable):
		return "no_room_available"
	case errors.Is(err, ErrNoActiveSession):
		return "no_active_session"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyCancelled):
		return "already_cancelled"
	case errors.Is(err, ErrAttendanceRecorded):
		return "duplicate_action"
	case errors.Is(err, ErrNotParticipant):
		return "not_participant"
	case errors.Is(err, ErrPermission):
		return "permission_denied"
	case errors.Is(err, ErrNoCursor):
		return "cursor_expired"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}

	return "unexpected"
}
