package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog"

	"mescore/api/internal/config"
)

// Mailer delivers out-of-band messages (verification and reset links).
type Mailer interface {
	Send(ctx context.Context, to string, subject string, body string) error
}

// New returns an SMTP mailer when mail is enabled, otherwise a transport
// that only logs, so development environments need no SMTP server.
func New(cfg config.MailConfig, log zerolog.Logger) Mailer {
	if !cfg.Enabled {
		return &LogMailer{log: log}
	}
	return &SMTPMailer{cfg: cfg}
}

// SMTPMailer sends HTML mail over implicit TLS (port 465 style).
type SMTPMailer struct {
	cfg config.MailConfig
}

func (m *SMTPMailer) Send(ctx context.Context, to string, subject string, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := []byte(
		fmt.Sprintf("From: %s\r\n", m.cfg.From) +
			fmt.Sprintf("To: %s\r\n", to) +
			fmt.Sprintf("Subject: %s\r\n", subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=\"utf-8\"\r\n" +
			"\r\n" +
			body,
	)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.cfg.Host})
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	defer client.Quit()

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	return w.Close()
}

// LogMailer writes the message to the log instead of sending it.
type LogMailer struct {
	log zerolog.Logger
}

func (m *LogMailer) Send(_ context.Context, to string, subject string, body string) error {
	m.log.Info().
		Str("to", to).
		Str("subject", subject).
		Str("body", body).
		Msg("mail (log transport)")
	return nil
}
