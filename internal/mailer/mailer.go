// Package mailer sends templated notification emails over SMTP. Sends are
// fire-and-forget from the caller's perspective: a failed send is logged and
// never fails the triggering operation.
package mailer

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

// Sender is the narrow surface services depend on.
type Sender interface {
	Send(slug, toEmail string, vars map[string]string) error
}

type Config struct {
	Host     string
	Port     int
	From     string
	Password string
}

type Mailer struct {
	cfg    Config
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Mailer {
	return &Mailer{cfg: cfg, logger: logger}
}

type template struct {
	subject string
	body    string
}

// Templates are keyed by slug; placeholders use {name} syntax.
var templates = map[string]template{
	"booking_requested": {
		subject: "Your table request for {event}",
		body: "Hi {name},\n\n" +
			"We received your table booking request for {event}.\n" +
			"{payment_line}\n" +
			"You will get a confirmation as soon as the venue approves it.",
	},
	"party_guest_removed": {
		subject: "Update on your spot for {event}",
		body: "Hi {name},\n\n" +
			"The host has removed you from the guest list for {event}.\n" +
			"If you think this is a mistake, please get in touch with them directly.",
	},
}

// Send renders the template identified by slug and delivers it to toEmail.
func (m *Mailer) Send(slug, toEmail string, vars map[string]string) error {
	const op = "mailer.Send"

	tpl, ok := templates[slug]
	if !ok {
		return fmt.Errorf("%s: unknown template %q", op, slug)
	}

	subject := interpolate(tpl.subject, vars)
	body := interpolate(tpl.body, vars)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.cfg.From, toEmail, subject, body,
	)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.From, m.cfg.Password, m.cfg.Host)

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{toEmail}, []byte(msg)); err != nil {
		m.logger.Warn("email send failed", "template", slug, "to", toEmail, "error", err)
		return fmt.Errorf("%s:%w", op, err)
	}

	m.logger.Info("email sent", "template", slug, "to", toEmail)
	return nil
}

func interpolate(s string, vars map[string]string) string {
	for k, v := range vars {
		s = strings.ReplaceAll(s, "{"+k+"}", v)
	}
	return s
}
