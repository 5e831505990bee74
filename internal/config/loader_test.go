package config

import (
	"os"
	"testing"
	"time"
)

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		unset := []string{
			"SALAS_HTTP_PORT",
			"SALAS_SQLITE_DSN",
			"SALAS_TIMEZONE",
			"SALAS_ROOMS",
			"SALAS_SESSION_TTL",
			"SALAS_CURSOR_TTL",
			"SALAS_REMINDER_INTERVAL",
			"SALAS_EXPORT_CRON",
			"SALAS_SMTP_HOST",
		}
		for _, key := range unset {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		const hash = "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA"
		t.Setenv("SALAS_EXPORT_PASSCODE_HASH", hash)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.Timezone == nil || cfg.Timezone.String() != "America/Sao_Paulo" {
			t.Fatalf("unexpected default timezone: %v", cfg.Timezone)
		}
		if len(cfg.Rooms) != 3 || cfg.Rooms[0] != "Sala Grande" {
			t.Fatalf("unexpected default rooms: %v", cfg.Rooms)
		}
		if cfg.SessionTTL != 30*time.Minute {
			t.Fatalf("expected default session TTL 30m, got %s", cfg.SessionTTL)
		}
		if cfg.CursorTTL != 15*time.Minute {
			t.Fatalf("expected default cursor TTL 15m, got %s", cfg.CursorTTL)
		}
		if cfg.ExportCron != "0 8,13 * * *" {
			t.Fatalf("unexpected default export cron: %q", cfg.ExportCron)
		}
		if cfg.ExportPasscodeHash != hash {
			t.Fatalf("expected passcode hash to round-trip, got %q", cfg.ExportPasscodeHash)
		}
		if cfg.ExportMailEnabled() {
			t.Fatal("export mail must stay disabled without SMTP settings")
		}
	})

	t.Run("errors when required values are missing", func(t *testing.T) {
		if err := os.Unsetenv("SALAS_EXPORT_PASSCODE_HASH"); err != nil {
			t.Fatalf("failed to unset SALAS_EXPORT_PASSCODE_HASH: %v", err)
		}

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error when required values are missing")
		}
		expected := "variáveis de ambiente obrigatórias ausentes: SALAS_EXPORT_PASSCODE_HASH"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("parses overrides", func(t *testing.T) {
		t.Setenv("SALAS_EXPORT_PASSCODE_HASH", "hash-value")
		t.Setenv("SALAS_HTTP_PORT", "9090")
		t.Setenv("SALAS_TIMEZONE", "UTC")
		t.Setenv("SALAS_ROOMS", "Auditório, Sala Azul")
		t.Setenv("SALAS_SESSION_TTL", "1h")
		t.Setenv("SALAS_REMINDER_INTERVAL", "30s")
		t.Setenv("SALAS_SMTP_HOST", "smtp.example.com")
		t.Setenv("SALAS_SMTP_PORT", "2525")
		t.Setenv("SALAS_EXPORT_RECIPIENT", "gestao@example.com")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected HTTP port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.Timezone.String() != "UTC" {
			t.Fatalf("unexpected timezone: %v", cfg.Timezone)
		}
		if len(cfg.Rooms) != 2 || cfg.Rooms[1] != "Sala Azul" {
			t.Fatalf("unexpected rooms: %v", cfg.Rooms)
		}
		if cfg.SessionTTL != time.Hour {
			t.Fatalf("expected session TTL 1h, got %s", cfg.SessionTTL)
		}
		if cfg.ReminderInterval != 30*time.Second {
			t.Fatalf("expected reminder interval 30s, got %s", cfg.ReminderInterval)
		}
		if cfg.SMTPPort != 2525 {
			t.Fatalf("expected SMTP port 2525, got %d", cfg.SMTPPort)
		}
		if !cfg.ExportMailEnabled() {
			t.Fatal("export mail should be enabled with host and recipient set")
		}
	})

	t.Run("rejects malformed values", func(t *testing.T) {
		t.Setenv("SALAS_EXPORT_PASSCODE_HASH", "hash-value")
		t.Setenv("SALAS_SESSION_TTL", "soon")
		t.Setenv("SALAS_HTTP_PORT", "-1")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for malformed values")
		}
		expected := "variáveis de ambiente com valor inválido: SALAS_HTTP_PORT, SALAS_SESSION_TTL"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})
}
