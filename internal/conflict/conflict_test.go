package conflict

import (
	"slices"
	"testing"
)

func slot(room, date string, start, end int) Slot {
	return Slot{ReservationID: "r-1", Room: room, Date: date, StartMinute: start, EndMinute: end}
}

func TestOverlaps(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     int
		want                           bool
	}{
		{"disjoint before", 9 * 60, 10 * 60, 11 * 60, 12 * 60, false},
		{"disjoint after", 13 * 60, 14 * 60, 11 * 60, 12 * 60, false},
		{"touching end-to-start", 9 * 60, 11 * 60, 11 * 60, 12 * 60, false},
		{"touching start-to-end", 12 * 60, 13 * 60, 11 * 60, 12 * 60, false},
		{"partial overlap", 10 * 60, 12 * 60, 11 * 60, 13 * 60, true},
		{"contained", 11*60 + 15, 11*60 + 45, 11 * 60, 12 * 60, true},
		{"containing", 10 * 60, 13 * 60, 11 * 60, 12 * 60, true},
		{"identical", 11 * 60, 12 * 60, 11 * 60, 12 * 60, true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd); got != tc.want {
				t.Fatalf("Overlaps(%d,%d,%d,%d) = %v, want %v", tc.aStart, tc.aEnd, tc.bStart, tc.bEnd, got, tc.want)
			}
		})
	}
}

func TestHasConflict_IgnoresOtherRoomsDatesAndCancelled(t *testing.T) {
	t.Parallel()

	existing := []Slot{
		slot("Sala Grande", "25/12/2025", 9*60, 11*60),
		slot("Sala Menor", "25/12/2025", 9*60, 11*60),
		{ReservationID: "r-2", Room: "Sala Grande", Date: "25/12/2025", StartMinute: 14 * 60, EndMinute: 16 * 60, Cancelled: true},
	}

	candidate := Candidate{Room: "Sala Grande", Date: "25/12/2025", StartMinute: 10 * 60, EndMinute: 12 * 60}
	if !HasConflict(existing, candidate) {
		t.Fatal("expected conflict with overlapping reservation in the same room")
	}

	otherDate := Candidate{Room: "Sala Grande", Date: "26/12/2025", StartMinute: 10 * 60, EndMinute: 12 * 60}
	if HasConflict(existing, otherDate) {
		t.Fatal("did not expect conflict on a different date")
	}

	cancelledWindow := Candidate{Room: "Sala Grande", Date: "25/12/2025", StartMinute: 14 * 60, EndMinute: 15 * 60}
	if HasConflict(existing, cancelledWindow) {
		t.Fatal("cancelled reservations must not count as conflicts")
	}
}

func TestAvailableRooms(t *testing.T) {
	t.Parallel()

	rooms := []string{"Sala Grande", "Sala Menor", "Sala Menor C/Mesa"}
	existing := []Slot{
		slot("Sala Grande", "25/12/2025", 9*60, 11*60),
	}

	got := AvailableRooms(rooms, existing, "25/12/2025", 10*60, 12*60)
	want := []string{"Sala Menor", "Sala Menor C/Mesa"}
	if !slices.Equal(got, want) {
		t.Fatalf("AvailableRooms = %v, want %v", got, want)
	}

	// A touching interval frees the booked room again.
	got = AvailableRooms(rooms, existing, "25/12/2025", 11*60, 12*60)
	if !slices.Equal(got, rooms) {
		t.Fatalf("AvailableRooms with touching interval = %v, want all rooms", got)
	}
}
