package booking

import (
	"context"
	"log/slog"
)

// AttendanceStatus is the read model of a reservation's attendance map.
type AttendanceStatus struct {
	Confirmed []Participant
	Declined  []Participant
}

// AttendanceTracker records participant decisions on committed reservations.
type AttendanceTracker struct {
	store  *Store
	logger *slog.Logger
}

// NewAttendanceTracker wires the tracker over the reservation store.
func NewAttendanceTracker(store *Store, logger *slog.Logger) *AttendanceTracker {
	return &AttendanceTracker{store: store, logger: defaultLogger(logger)}
}

// Record stores a participant's decision. Exactly one decision per
// participant per reservation: a second attempt is rejected with
// ErrAttendanceRecorded and the original decision is retained. Only invited
// participants may answer.
func (t *AttendanceTracker) Record(ctx context.Context, reservationID, participantID string, decision AttendanceDecision) error {
	logger := serviceLogger(ctx, t.logger, "attendance", "record",
		"reservation_id", reservationID, "participant_id", participantID)

	err := t.store.Mutate(ctx, reservationID, func(r *Reservation) error {
		if !r.IsParticipant(participantID) {
			return ErrNotParticipant
		}
		if _, exists := r.Attendance[participantID]; exists {
			return ErrAttendanceRecorded
		}
		if r.Attendance == nil {
			r.Attendance = make(map[string]AttendanceDecision)
		}
		r.Attendance[participantID] = decision
		return nil
	})
	if err != nil {
		logger.Info("attendance rejected", "kind", ErrorKind(err))
		return err
	}

	logger.Info("attendance recorded", "decision", string(decision))
	return nil
}

// Status derives the confirmed and declined participant lists. It never
// mutates; participants without a decision appear in neither list.
func (t *AttendanceTracker) Status(reservationID string) (AttendanceStatus, error) {
	reservation, ok := t.store.FindByID(reservationID)
	if !ok {
		return AttendanceStatus{}, ErrNotFound
	}

	status := AttendanceStatus{}
	for _, participant := range reservation.Participants {
		switch reservation.Attendance[participant.ID] {
		case AttendanceConfirmed:
			status.Confirmed = append(status.Confirmed, participant)
		case AttendanceDeclined:
			status.Declined = append(status.Declined, participant)
		}
	}
	return status, nil
}
