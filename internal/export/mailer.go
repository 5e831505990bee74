package export

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"time"

	"gopkg.in/gomail.v2"
)

// Mailer delivers export workbooks over SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewMailer configures the SMTP delivery channel.
func NewMailer(host string, port int, username, password, from string) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// SendWorkbook emails the workbook as an xlsx attachment.
func (m *Mailer) SendWorkbook(recipient string, workbook []byte) error {
	message := gomail.NewMessage()
	message.SetHeader("From", m.from)
	message.SetHeader("To", recipient)
	message.SetHeader("Subject", "Exportação de agendamentos de salas")
	message.SetBody("text/plain", "Segue em anexo o histórico completo de agendamentos de salas.")
	message.Attach(WorkbookFilename, gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(workbook)
		return err
	}))

	if err := m.dialer.DialAndSend(message); err != nil {
		return fmt.Errorf("failed to send export email: %w", err)
	}
	return nil
}

// WorkbookSender is the delivery side of the scheduled export.
type WorkbookSender interface {
	SendWorkbook(recipient string, workbook []byte) error
}

// Job renders the current collection and mails it. It is registered with the
// cron runner for the twice daily schedule.
type Job struct {
	exporter  *Exporter
	sender    WorkbookSender
	recipient string
	logger    *slog.Logger
}

// NewJob wires the scheduled export delivery.
func NewJob(exporter *Exporter, sender WorkbookSender, recipient string, logger *slog.Logger) *Job {
	if logger == nil {
		logger = slog.Default()
	}
	return &Job{exporter: exporter, sender: sender, recipient: recipient, logger: logger}
}

// Run implements cron.Job. Failures are logged, never fatal; the next firing
// sends a fresh snapshot anyway.
func (j *Job) Run() {
	started := time.Now()
	logger := j.logger.With("service", "export", "operation", "scheduled_delivery")

	var buf bytes.Buffer
	if err := j.exporter.WriteWorkbook(&buf); err != nil {
		logger.Error("failed to render workbook", "error", err)
		return
	}
	if err := j.sender.SendWorkbook(j.recipient, buf.Bytes()); err != nil {
		logger.Error("failed to deliver workbook", "error", err)
		return
	}
	logger.Info("export delivered", "recipient", j.recipient, "bytes", buf.Len(), "elapsed", time.Since(started).String())
}
