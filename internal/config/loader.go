package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultRooms is the room catalog used when SALAS_ROOMS is not set.
var DefaultRooms = []string{"Sala Grande", "Sala Menor", "Sala Menor C/Mesa"}

// Config captures environment driven configuration values for the reservation service.
type Config struct {
	HTTPPort         int
	SQLiteDSN        string
	Timezone         *time.Location
	Rooms            []string
	RosterPath       string
	SessionTTL       time.Duration
	CursorTTL        time.Duration
	ReminderInterval time.Duration

	ExportPasscodeHash string
	ExportCron         string
	ExportRecipient    string
	SMTPHost           string
	SMTPPort           int
	SMTPUsername       string
	SMTPPassword       string
	SMTPFrom           string
}

// ExportMailEnabled reports whether the scheduled export email can run.
func (c Config) ExportMailEnabled() bool {
	return c.SMTPHost != "" && c.ExportRecipient != ""
}

// Load parses configuration values from the current process environment.
//
// Optional fields fall back to defaults; required and malformed values are
// collected and reported together so one restart fixes every mistake.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:         8080,
		SQLiteDSN:        "file:salas.db?_pragma=journal_mode(WAL)",
		Rooms:            DefaultRooms,
		RosterPath:       "members.json",
		SessionTTL:       30 * time.Minute,
		CursorTTL:        15 * time.Minute,
		ReminderInterval: 60 * time.Second,
		ExportCron:       "0 8,13 * * *",
		SMTPPort:         587,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("SALAS_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "SALAS_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("SALAS_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	zone := strings.TrimSpace(os.Getenv("SALAS_TIMEZONE"))
	if zone == "" {
		zone = "America/Sao_Paulo"
	}
	if loc, err := time.LoadLocation(zone); err != nil {
		invalid = append(invalid, "SALAS_TIMEZONE")
	} else {
		cfg.Timezone = loc
	}

	if roomsValue := strings.TrimSpace(os.Getenv("SALAS_ROOMS")); roomsValue != "" {
		rooms := make([]string, 0, 3)
		for _, room := range strings.Split(roomsValue, ",") {
			if room = strings.TrimSpace(room); room != "" {
				rooms = append(rooms, room)
			}
		}
		if len(rooms) == 0 {
			invalid = append(invalid, "SALAS_ROOMS")
		} else {
			cfg.Rooms = rooms
		}
	}

	if path := strings.TrimSpace(os.Getenv("SALAS_ROSTER_PATH")); path != "" {
		cfg.RosterPath = path
	}

	durations := []struct {
		key    string
		target *time.Duration
	}{
		{"SALAS_SESSION_TTL", &cfg.SessionTTL},
		{"SALAS_CURSOR_TTL", &cfg.CursorTTL},
		{"SALAS_REMINDER_INTERVAL", &cfg.ReminderInterval},
	}
	for _, d := range durations {
		value := strings.TrimSpace(os.Getenv(d.key))
		if value == "" {
			continue
		}
		parsed, err := time.ParseDuration(value)
		if err != nil || parsed <= 0 {
			invalid = append(invalid, d.key)
		} else {
			*d.target = parsed
		}
	}

	if hash := strings.TrimSpace(os.Getenv("SALAS_EXPORT_PASSCODE_HASH")); hash == "" {
		missing = append(missing, "SALAS_EXPORT_PASSCODE_HASH")
	} else {
		cfg.ExportPasscodeHash = hash
	}

	if spec := strings.TrimSpace(os.Getenv("SALAS_EXPORT_CRON")); spec != "" {
		cfg.ExportCron = spec
	}
	cfg.ExportRecipient = strings.TrimSpace(os.Getenv("SALAS_EXPORT_RECIPIENT"))
	cfg.SMTPHost = strings.TrimSpace(os.Getenv("SALAS_SMTP_HOST"))
	cfg.SMTPUsername = strings.TrimSpace(os.Getenv("SALAS_SMTP_USERNAME"))
	cfg.SMTPPassword = os.Getenv("SALAS_SMTP_PASSWORD")
	cfg.SMTPFrom = strings.TrimSpace(os.Getenv("SALAS_SMTP_FROM"))

	if portValue := strings.TrimSpace(os.Getenv("SALAS_SMTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "SALAS_SMTP_PORT")
		} else {
			cfg.SMTPPort = port
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("variáveis de ambiente obrigatórias ausentes: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("variáveis de ambiente com valor inválido: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
