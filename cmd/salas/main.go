package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/pablotasuyuki/Sistema-Agendamento-de-Salas/internal/booking"
	"github.com/pablotasuyuki/Sistema-Agendamento-de-Salas/internal/config"
	"github.com/pablotasuyuki/Sistema-Agendamento-de-Salas/internal/directory"
	"github.com/pablotasuyuki/Sistema-Agendamento-de-Salas/internal/export"
	httptransport "github.com/pablotasuyuki/Sistema-Agendamento-de-Salas/internal/http"
	"github.com/pablotasuyuki/Sistema-Agendamento-de-Salas/internal/persistence"
	"github.com/pablotasuyuki/Sistema-Agendamento-de-Salas/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Error("failed to read .env file", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	now := time.Now

	store := booking.NewStore(newSnapshotAdapter(storage), logger)
	store.Load(context.Background())

	roster := directory.NewFileDirectory(cfg.RosterPath)
	notifier := newLogNotifier(logger)

	sessions := booking.NewSessionManager(store, roster, notifier, booking.SessionConfig{
		Rooms:       cfg.Rooms,
		Location:    cfg.Timezone,
		TTL:         cfg.SessionTTL,
		IDGenerator: uuid.NewString,
		Now:         now,
	}, logger)
	attendance := booking.NewAttendanceTracker(store, logger)
	cancel := booking.NewCancelService(store, logger)
	calendar := booking.NewCalendar(store, cfg.Timezone, now, cfg.CursorTTL, logger)

	reminders := booking.NewReminderScheduler(store, notifier, cfg.Timezone, cfg.ReminderInterval, now, logger)
	go reminders.Run(ctx)

	gate := export.NewGate(cfg.ExportPasscodeHash)
	exporter := export.NewExporter(store)

	if cfg.ExportMailEnabled() {
		mailer := export.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
		job := export.NewJob(exporter, mailer, cfg.ExportRecipient, logger)
		scheduler := cron.New(cron.WithLocation(cfg.Timezone))
		if _, err := scheduler.AddJob(cfg.ExportCron, job); err != nil {
			logger.Error("failed to schedule export mail", "error", err, "spec", cfg.ExportCron)
			os.Exit(1)
		}
		scheduler.Start()
		defer scheduler.Stop()
		logger.Info("scheduled export mail", "spec", cfg.ExportCron, "recipient", cfg.ExportRecipient)
	} else {
		logger.Info("export mail disabled, SMTP host or recipient not configured")
	}

	bookingHandler := httptransport.NewBookingHandler(sessions, logger)
	reservationHandler := httptransport.NewReservationHandler(cancel, attendance, logger)
	calendarHandler := httptransport.NewCalendarHandler(calendar, logger)
	exportHandler := httptransport.NewExportHandler(gate, exporter, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Bookings:     bookingHandler,
		Reservations: reservationHandler,
		Calendar:     calendarHandler,
		Export:       exportHandler,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.RequireActingUser(logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelShutdown()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("reservation API listening", "addr", server.Addr, "timezone", cfg.Timezone.String())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// snapshotAdapter bridges the in-memory store and the SQLite image. The store
// works with booking values; the image stores the flattened persistence shape.
type snapshotAdapter struct {
	storage persistence.Snapshot
}

func newSnapshotAdapter(storage persistence.Snapshot) *snapshotAdapter {
	return &snapshotAdapter{storage: storage}
}

func (a *snapshotAdapter) LoadAll(ctx context.Context) ([]booking.Reservation, error) {
	stored, err := a.storage.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	reservations := make([]booking.Reservation, 0, len(stored))
	for _, record := range stored {
		reservations = append(reservations, toBookingReservation(record))
	}
	return reservations, nil
}

func (a *snapshotAdapter) ReplaceAll(ctx context.Context, reservations []booking.Reservation) error {
	records := make([]persistence.Reservation, 0, len(reservations))
	for _, reservation := range reservations {
		records = append(records, toStoredReservation(reservation))
	}
	return a.storage.ReplaceAll(ctx, records)
}

func toBookingReservation(record persistence.Reservation) booking.Reservation {
	participants := make([]booking.Participant, 0, len(record.Participants))
	for _, p := range record.Participants {
		participants = append(participants, booking.Participant{ID: p.ID, DisplayName: p.DisplayName, Username: p.Username})
	}
	var attendance map[string]booking.AttendanceDecision
	if len(record.Attendance) > 0 {
		attendance = make(map[string]booking.AttendanceDecision, len(record.Attendance))
		for id, decision := range record.Attendance {
			attendance[id] = booking.AttendanceDecision(decision)
		}
	}
	return booking.Reservation{
		ID:             record.ID,
		Date:           record.Date,
		TimeRange:      record.TimeRange,
		Room:           record.Room,
		Title:          record.Title,
		Organizer:      booking.UserRef{ID: record.OrganizerID, DisplayName: record.OrganizerName},
		Participants:   participants,
		Status:         booking.Status(record.Status),
		Attendance:     attendance,
		Reminder24Sent: record.Reminder24Sent,
		Reminder1Sent:  record.Reminder1Sent,
		CreatedAt:      record.CreatedAt,
	}
}

func toStoredReservation(reservation booking.Reservation) persistence.Reservation {
	participants := make([]persistence.Participant, 0, len(reservation.Participants))
	for _, p := range reservation.Participants {
		participants = append(participants, persistence.Participant{ID: p.ID, DisplayName: p.DisplayName, Username: p.Username})
	}
	var attendance map[string]string
	if len(reservation.Attendance) > 0 {
		attendance = make(map[string]string, len(reservation.Attendance))
		for id, decision := range reservation.Attendance {
			attendance[id] = string(decision)
		}
	}
	return persistence.Reservation{
		ID:             reservation.ID,
		Date:           reservation.Date,
		TimeRange:      reservation.TimeRange,
		Room:           reservation.Room,
		Title:          reservation.Title,
		OrganizerID:    reservation.Organizer.ID,
		OrganizerName:  reservation.Organizer.DisplayName,
		Participants:   participants,
		Status:         string(reservation.Status),
		Attendance:     attendance,
		Reminder24Sent: reservation.Reminder24Sent,
		Reminder1Sent:  reservation.Reminder1Sent,
		CreatedAt:      reservation.CreatedAt,
	}
}

// logNotifier records outbound invitations and reminders in the structured
// log. A chat or mail transport can replace it without touching the services.
type logNotifier struct {
	logger *slog.Logger
}

func newLogNotifier(logger *slog.Logger) *logNotifier {
	return &logNotifier{logger: logger}
}

func (n *logNotifier) SendInvitation(ctx context.Context, participant booking.Participant, reservation booking.Reservation) error {
	n.logger.InfoContext(ctx, "invitation issued",
		"reservation_id", reservation.ID,
		"participant_id", participant.ID,
		"date", reservation.Date,
		"time_range", reservation.TimeRange,
		"room", reservation.Room,
	)
	return nil
}

func (n *logNotifier) SendReminder(ctx context.Context, participant booking.Participant, reservation booking.Reservation, tier booking.ReminderTier) error {
	n.logger.InfoContext(ctx, "reminder issued",
		"reservation_id", reservation.ID,
		"participant_id", participant.ID,
		"tier", string(tier),
		"date", reservation.Date,
		"time_range", reservation.TimeRange,
	)
	return nil
}
