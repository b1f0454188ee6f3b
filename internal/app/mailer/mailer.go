// Package mailer sends the two applicant notifications: the welcome email
// after signup and the confirmation email after locking.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/MaatFonseca/api-token-sale/internal/app/domain/application"
	"github.com/MaatFonseca/api-token-sale/pkg/logger"
)

// Mailer dispatches applicant notifications. Implementations must not fail
// for benign conditions; any failure propagates to the caller unchanged.
type Mailer interface {
	SendFirstEmail(ctx context.Context, email, privateID string) error
	SendSecondEmail(ctx context.Context, email string, app application.Application) error
}

// SMTPConfig holds the mail transport settings.
type SMTPConfig struct {
	Host    string
	Port    int
	From    string
	BaseURL string
}

// SMTP sends notifications through a plain SMTP relay. The welcome email
// carries the applicant link <BaseURL>/<privateId>.
type SMTP struct {
	cfg  SMTPConfig
	send func(addr, from string, to []string, msg []byte) error
}

var _ Mailer = (*SMTP)(nil)

// NewSMTP creates an SMTP mailer for the given relay.
func NewSMTP(cfg SMTPConfig) *SMTP {
	return &SMTP{
		cfg: cfg,
		send: func(addr, from string, to []string, msg []byte) error {
			return smtp.SendMail(addr, nil, from, to, msg)
		},
	}
}

func (m *SMTP) SendFirstEmail(_ context.Context, email, privateID string) error {
	link := strings.TrimRight(m.cfg.BaseURL, "/") + "/" + privateID
	body := fmt.Sprintf("Welcome to the token pre-sale.\r\n\r\n"+
		"Complete your application here: %s\r\n\r\n"+
		"Keep this link private; it is your access to the application.\r\n", link)
	return m.deliver(email, "Your token pre-sale application", body)
}

func (m *SMTP) SendSecondEmail(_ context.Context, email string, app application.Application) error {
	body := fmt.Sprintf("Hello %s %s,\r\n\r\n"+
		"Your token pre-sale application %s has been finalized on %s.\r\n"+
		"No further changes are possible.\r\n",
		app.FirstName, app.LastName, app.PublicID,
		app.LockDate.Format("2006-01-02 15:04 MST"))
	return m.deliver(email, "Your application is finalized", body)
}

func (m *SMTP) deliver(to, subject, body string) error {
	msg := message(m.cfg.From, to, subject, body)
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	return m.send(addr, m.cfg.From, []string{to}, msg)
}

func message(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

// Log is a development mailer that records dispatches instead of sending.
type Log struct {
	log *logger.Logger
}

var _ Mailer = (*Log)(nil)

// NewLog creates a log-only mailer.
func NewLog(log *logger.Logger) *Log {
	if log == nil {
		log = logger.NewDefault("mailer")
	}
	return &Log{log: log}
}

func (m *Log) SendFirstEmail(_ context.Context, email, privateID string) error {
	m.log.WithField("email", email).
		WithField("private_id", privateID).
		Info("first email dispatched")
	return nil
}

func (m *Log) SendSecondEmail(_ context.Context, email string, app application.Application) error {
	m.log.WithField("email", email).
		WithField("public_id", app.PublicID).
		Info("second email dispatched")
	return nil
}
