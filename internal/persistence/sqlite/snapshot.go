package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pablotasuyuki/Sistema-Agendamento-de-Salas/internal/persistence"
	_ "modernc.org/sqlite"
)

// SnapshotStore persists the reservation collection in a single SQLite table.
// ReplaceAll rewrites the whole table inside one transaction, which keeps the
// durable image an exact copy of the in-memory collection after every
// mutation.
type SnapshotStore struct {
	db *sql.DB
}

// Open opens the SQLite database at the given DSN.
func Open(dsn string) (*SnapshotStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// The image is rewritten wholesale; a second writer would only race.
	db.SetMaxOpenConns(1)
	return &SnapshotStore{db: db}, nil
}

// DB returns the underlying database handle.
func (s *SnapshotStore) DB() *sql.DB {
	return s.db
}

// Close closes the database handle.
func (s *SnapshotStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping tests the database connection.
func (s *SnapshotStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate creates the reservations table when it does not exist yet.
func (s *SnapshotStore) Migrate(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS reservations (
			position         INTEGER NOT NULL,
			id               TEXT PRIMARY KEY,
			date             TEXT NOT NULL,
			time_range       TEXT NOT NULL,
			room             TEXT NOT NULL,
			title            TEXT NOT NULL,
			organizer_id     TEXT NOT NULL,
			organizer_name   TEXT NOT NULL,
			participants     TEXT NOT NULL,
			status           TEXT NOT NULL,
			attendance       TEXT NOT NULL,
			reminder_24_sent INTEGER NOT NULL DEFAULT 0,
			reminder_1_sent  INTEGER NOT NULL DEFAULT 0,
			created_at       TEXT NOT NULL
		)
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create reservations table: %w", err)
	}
	return nil
}

// LoadAll reads the entire persisted collection in insertion order. Rows that
// cannot be decoded surface persistence.ErrCorruptImage so the caller can
// decide to start empty.
func (s *SnapshotStore) LoadAll(ctx context.Context) ([]persistence.Reservation, error) {
	const query = `
		SELECT id, date, time_range, room, title, organizer_id, organizer_name,
		       participants, status, attendance, reminder_24_sent, reminder_1_sent, created_at
		FROM reservations
		ORDER BY position ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer rows.Close()

	var reservations []persistence.Reservation
	for rows.Next() {
		var (
			r               persistence.Reservation
			participantsRaw string
			attendanceRaw   string
			createdAtStr    string
		)
		err := rows.Scan(
			&r.ID,
			&r.Date,
			&r.TimeRange,
			&r.Room,
			&r.Title,
			&r.OrganizerID,
			&r.OrganizerName,
			&participantsRaw,
			&r.Status,
			&attendanceRaw,
			&r.Reminder24Sent,
			&r.Reminder1Sent,
			&createdAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation row: %w", err)
		}

		if err := json.Unmarshal([]byte(participantsRaw), &r.Participants); err != nil {
			return nil, fmt.Errorf("%w: participants of %s: %v", persistence.ErrCorruptImage, r.ID, err)
		}
		if err := json.Unmarshal([]byte(attendanceRaw), &r.Attendance); err != nil {
			return nil, fmt.Errorf("%w: attendance of %s: %v", persistence.ErrCorruptImage, r.ID, err)
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
			return nil, fmt.Errorf("%w: created_at of %s: %v", persistence.ErrCorruptImage, r.ID, err)
		}

		reservations = append(reservations, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reservations: %w", err)
	}

	return reservations, nil
}

// ReplaceAll overwrites the durable image with the supplied collection. The
// delete and the inserts run in one transaction, so a crash mid-write never
// leaves a partial image behind.
func (s *SnapshotStore) ReplaceAll(ctx context.Context, reservations []persistence.Reservation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM reservations"); err != nil {
		return fmt.Errorf("failed to clear reservations: %w", err)
	}

	const insert = `
		INSERT INTO reservations (position, id, date, time_range, room, title, organizer_id, organizer_name,
		                          participants, status, attendance, reminder_24_sent, reminder_1_sent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for position, r := range reservations {
		participants := r.Participants
		if participants == nil {
			participants = []persistence.Participant{}
		}
		participantsRaw, err := json.Marshal(participants)
		if err != nil {
			return fmt.Errorf("failed to encode participants of %s: %w", r.ID, err)
		}

		attendance := r.Attendance
		if attendance == nil {
			attendance = map[string]string{}
		}
		attendanceRaw, err := json.Marshal(attendance)
		if err != nil {
			return fmt.Errorf("failed to encode attendance of %s: %w", r.ID, err)
		}

		_, err = stmt.ExecContext(ctx,
			position,
			r.ID,
			r.Date,
			r.TimeRange,
			r.Room,
			r.Title,
			r.OrganizerID,
			r.OrganizerName,
			string(participantsRaw),
			r.Status,
			string(attendanceRaw),
			r.Reminder24Sent,
			r.Reminder1Sent,
			r.CreatedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("failed to insert reservation %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}
