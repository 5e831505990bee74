// Package conflict implements interval-conflict detection for room
// reservations. It is a leaf package: callers convert their records into
// Slot values and receive plain answers back.
package conflict

// Slot is the minimal projection of a reservation the detector needs.
type Slot struct {
	ReservationID string
	Room          string
	Date          string
	StartMinute   int
	EndMinute     int
	Cancelled     bool
}

// Candidate describes the room, date and time interval being probed.
type Candidate struct {
	Room        string
	Date        string
	StartMinute int
	EndMinute   int
}

// Overlaps reports whether two half-open intervals [aStart,aEnd) and
// [bStart,bEnd) intersect. Touching intervals do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

// HasConflict reports whether the candidate interval collides with any
// non-cancelled slot for the same room and date.
func HasConflict(existing []Slot, candidate Candidate) bool {
	for _, slot := range existing {
		if slot.Cancelled {
			continue
		}
		if slot.Room != candidate.Room || slot.Date != candidate.Date {
			continue
		}
		if Overlaps(candidate.StartMinute, candidate.EndMinute, slot.StartMinute, slot.EndMinute) {
			return true
		}
	}
	return false
}

// AvailableRooms filters the room catalog down to the rooms with no conflict
// for the candidate date and interval, preserving catalog order.
func AvailableRooms(rooms []string, existing []Slot, date string, startMinute, endMinute int) []string {
	available := make([]string, 0, len(rooms))
	for _, room := range rooms {
		candidate := Candidate{Room: room, Date: date, StartMinute: startMinute, EndMinute: endMinute}
		if !HasConflict(existing, candidate) {
			available = append(available, room)
		}
	}
	return available
}
