package mailer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/MaatFonseca/api-token-sale/internal/app/domain/application"
)

type sentMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func newCapturingSMTP(cfg SMTPConfig) (*SMTP, *[]sentMail) {
	var sent []sentMail
	m := NewSMTP(cfg)
	m.send = func(addr, from string, to []string, msg []byte) error {
		sent = append(sent, sentMail{addr: addr, from: from, to: to, msg: string(msg)})
		return nil
	}
	return m, &sent
}

func TestFirstEmailCarriesApplicantLink(t *testing.T) {
	m, sent := newCapturingSMTP(SMTPConfig{
		Host:    "mail.example.com",
		Port:    587,
		From:    "sale@example.com",
		BaseURL: "https://sale.example.com/application/",
	})

	if err := m.SendFirstEmail(context.Background(), "foo@bar.baz", "priv-1"); err != nil {
		t.Fatalf("send first email: %v", err)
	}

	if len(*sent) != 1 {
		t.Fatalf("expected 1 mail, got %d", len(*sent))
	}
	mail := (*sent)[0]
	if mail.addr != "mail.example.com:587" {
		t.Fatalf("unexpected relay address: %s", mail.addr)
	}
	if mail.to[0] != "foo@bar.baz" {
		t.Fatalf("unexpected recipient: %v", mail.to)
	}
	if !strings.Contains(mail.msg, "https://sale.example.com/application/priv-1") {
		t.Fatalf("applicant link missing from body:\n%s", mail.msg)
	}
	if !strings.Contains(mail.msg, "Subject: Your token pre-sale application") {
		t.Fatalf("subject missing:\n%s", mail.msg)
	}
}

func TestSecondEmailReferencesLockedApplication(t *testing.T) {
	m, sent := newCapturingSMTP(SMTPConfig{
		Host: "mail.example.com", Port: 25, From: "sale@example.com",
	})

	app := application.Application{
		PublicID:  "pub-1",
		FirstName: "Foo",
		LastName:  "Bar",
		IsLocked:  true,
		LockDate:  time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := m.SendSecondEmail(context.Background(), "foo@bar.baz", app); err != nil {
		t.Fatalf("send second email: %v", err)
	}

	mail := (*sent)[0]
	if !strings.Contains(mail.msg, "pub-1") {
		t.Fatalf("public id missing from body:\n%s", mail.msg)
	}
	if !strings.Contains(mail.msg, "Foo Bar") {
		t.Fatalf("applicant name missing from body:\n%s", mail.msg)
	}
}

func TestLogMailerNeverFails(t *testing.T) {
	m := NewLog(nil)
	if err := m.SendFirstEmail(context.Background(), "foo@bar.baz", "priv-1"); err != nil {
		t.Fatalf("log mailer first email: %v", err)
	}
	if err := m.SendSecondEmail(context.Background(), "foo@bar.baz", application.Application{}); err != nil {
		t.Fatalf("log mailer second email: %v", err)
	}
}
