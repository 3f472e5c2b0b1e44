package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"
)

// Sender delivers a plain-text message to a single recipient.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NewFromConfig returns an SMTP sender when a host is configured and a
// log-only sender otherwise, so development setups need no mail server.
func NewFromConfig(host string, port int, username, password, from string, log zerolog.Logger) Sender {
	if host == "" {
		return &LogSender{log: log}
	}
	return &SMTPSender{
		addr:     fmt.Sprintf("%s:%d", host, port),
		host:     host,
		username: username,
		password: password,
		from:     from,
	}
}

type SMTPSender struct {
	addr     string
	host     string
	username string
	password string
	from     string
}

func (s *SMTPSender) Send(_ context.Context, to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + s.from,
		"To: " + to,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	if err := smtp.SendMail(s.addr, auth, s.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// LogSender records outbound mail instead of delivering it.
type LogSender struct {
	log zerolog.Logger
}

func (s *LogSender) Send(_ context.Context, to, subject, body string) error {
	s.log.Info().
		Str("to", to).
		Str("subject", subject).
		Str("body", body).
		Msg("mail sender disabled, logging message")
	return nil
}
