package mail

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"device-approval-backend/internal/domain/notification"

	"github.com/emersion/go-sasl"
	"github.com/sirupsen/logrus"
)

type captured struct {
	calls int
	addr  string
	from  string
	to    []string
	body  string
}

func newTestMailer(t *testing.T, cfg Config, c *captured, sendErr error) *SMTPMailer {
	t.Helper()
	l := logrus.New()
	l.SetOutput(io.Discard)
	m, err := NewSMTPMailer(cfg, logrus.NewEntry(l))
	if err != nil {
		t.Fatalf("NewSMTPMailer: %v", err)
	}
	m.now = func() time.Time { return time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC) }
	m.send = func(addr string, _ sasl.Client, from string, to []string, r io.Reader) error {
		b, _ := io.ReadAll(r)
		c.calls++
		c.addr, c.from, c.to, c.body = addr, from, to, string(b)
		return sendErr
	}
	return m
}

var smtpCfg = Config{Host: "smtp.example.com", Port: "587", User: "noreply@example.com", Password: "secret"}

func TestSMTPMailer_RendersTemplate(t *testing.T) {
	var c captured
	m := newTestMailer(t, smtpCfg, &c, nil)

	err := m.Send(context.Background(), notification.Mail{
		To:       "bob@example.com",
		ToName:   "Bob",
		Subject:  "Approval requested: Laptop",
		Template: "approval_requested",
		Vars: map[string]string{
			"Recipient": "Bob",
			"Requester": "Alice",
			"Title":     "Laptop",
			"Status":    "Awaiting approval",
			"Link":      "https://devices.example.com/approvals/abc",
		},
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if c.calls != 1 || c.addr != "smtp.example.com:587" || c.from != "noreply@example.com" {
		t.Fatalf("send call = %+v", c)
	}
	if len(c.to) != 1 || c.to[0] != "bob@example.com" {
		t.Fatalf("rcpt = %v", c.to)
	}
	for _, want := range []string{
		"To: Bob <bob@example.com>",
		"Subject: Approval requested: Laptop",
		"Alice is waiting for your approval on \"Laptop\".",
		"https://devices.example.com/approvals/abc",
	} {
		if !strings.Contains(c.body, want) {
			t.Fatalf("body missing %q:\n%s", want, c.body)
		}
	}
}

func TestSMTPMailer_UnknownTemplateFallsBack(t *testing.T) {
	var c captured
	m := newTestMailer(t, smtpCfg, &c, nil)
	err := m.Send(context.Background(), notification.Mail{To: "x@example.com", Subject: "Hi", Template: "nope"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !strings.Contains(c.body, "Hi") {
		t.Fatalf("fallback body = %s", c.body)
	}
}

func TestSMTPMailer_Skips(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		to   string
	}{
		{name: "blank recipient", cfg: smtpCfg, to: "  "},
		{name: "not configured", cfg: Config{}, to: "bob@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c captured
			m := newTestMailer(t, tt.cfg, &c, nil)
			if err := m.Send(context.Background(), notification.Mail{To: tt.to, Template: "generic"}); err != nil {
				t.Fatalf("Send: %v", err)
			}
			if c.calls != 0 {
				t.Fatalf("send must not be called")
			}
		})
	}
}

func TestSMTPMailer_SendError(t *testing.T) {
	var c captured
	boom := errors.New("connection refused")
	m := newTestMailer(t, smtpCfg, &c, boom)
	err := m.Send(context.Background(), notification.Mail{To: "bob@example.com", Template: "generic"})
	if !errors.Is(err, boom) {
		t.Fatalf("want wrapped %v, got %v", boom, err)
	}
}
