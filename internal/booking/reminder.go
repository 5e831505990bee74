package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// errReminderAlreadySent aborts the flag mutation when another sweep won the
// race; the updater error keeps the store and durable image untouched.
var errReminderAlreadySent = errors.New("booking: reminder flag already set")

// ReminderScheduler sweeps the reservation store on a fixed period and fires
// the 24-hour and 1-hour reminders at most once each. Flags are persisted
// before the notifier runs, so a delivery failure can never produce a
// duplicate reminder on the next sweep.
type ReminderScheduler struct {
	store    *Store
	notifier Notifier
	loc      *time.Location
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// NewReminderScheduler wires the sweep dependencies. The interval is a
// tunable, not a contract; 60 seconds is the reference deployment value.
func NewReminderScheduler(store *Store, notifier Notifier, loc *time.Location, interval time.Duration, now func() time.Time, logger *slog.Logger) *ReminderScheduler {
	if loc == nil {
		loc = time.Local
	}
	if interval <= 0 {
		interval = time.Minute
	}
	if now == nil {
		now = time.Now
	}
	return &ReminderScheduler{
		store:    store,
		notifier: notifier,
		loc:      loc,
		interval: interval,
		now:      now,
		logger:   defaultLogger(logger),
	}
}

// Run sweeps on the configured period until the context is cancelled.
func (s *ReminderScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("reminder scheduler started", "interval", s.interval.String())
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reminder scheduler stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep inspects every scheduled reservation with at least one participant
// and fires the due reminder tiers. Both tiers are checked independently, so
// a sweep can fire both when the interval is coarser than the gap.
func (s *ReminderScheduler) Sweep(ctx context.Context) {
	now := s.now()
	pending := s.store.Filter(func(r Reservation) bool {
		return r.Status == StatusScheduled && len(r.Participants) > 0 && !(r.Reminder24Sent && r.Reminder1Sent)
	})

	for _, reservation := range pending {
		start, ok := MeetingStart(reservation.Date, reservation.TimeRange, s.loc)
		if !ok {
			s.logger.Warn("skipping reservation with unparsable schedule", "reservation_id", reservation.ID)
			continue
		}
		hoursUntil := start.Sub(now).Hours()

		if !reservation.Reminder24Sent && hoursUntil > 0 && hoursUntil <= 24 {
			s.fire(ctx, reservation, ReminderTier24h)
		}
		if !reservation.Reminder1Sent && hoursUntil > 0 && hoursUntil <= 1 {
			s.fire(ctx, reservation, ReminderTier1h)
		}
	}
}

func (s *ReminderScheduler) fire(ctx context.Context, reservation Reservation, tier ReminderTier) {
	logger := serviceLogger(ctx, s.logger, "reminder", "fire",
		"reservation_id", reservation.ID, "tier", string(tier))

	err := s.store.Mutate(ctx, reservation.ID, func(r *Reservation) error {
		switch tier {
		case ReminderTier24h:
			if r.Reminder24Sent {
				return errReminderAlreadySent
			}
			r.Reminder24Sent = true
		case ReminderTier1h:
			if r.Reminder1Sent {
				return errReminderAlreadySent
			}
			r.Reminder1Sent = true
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, errReminderAlreadySent) {
			logger.Error("failed to persist reminder flag", "error", err)
		}
		return
	}

	if s.notifier == nil {
		return
	}
	for _, participant := range reservation.Participants {
		if err := s.notifier.SendReminder(ctx, participant, reservation, tier); err != nil {
			logger.Warn("failed to deliver reminder", "participant_id", participant.ID, "error", err)
		}
	}
	logger.Info("reminder fired", "participants", len(reservation.Participants))
}
