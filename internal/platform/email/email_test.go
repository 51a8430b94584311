package email

import (
	"context"
	"strings"
	"testing"

	"opshub/internal/platform/config"
)

func TestNewReturnsDisabledMailerWhenOff(t *testing.T) {
	m := New(config.Config{EmailEnabled: false, SMTPHost: "smtp.internal"})
	if _, ok := m.(disabledMailer); !ok {
		t.Fatalf("expected disabledMailer when email is off, got %T", m)
	}

	m = New(config.Config{EmailEnabled: true, SMTPHost: ""})
	if _, ok := m.(disabledMailer); !ok {
		t.Fatalf("expected disabledMailer without an SMTP host, got %T", m)
	}

	if err := m.Send(context.Background(), "ops@opshub.local", "dev@opshub.local", "hi", "body"); err != nil {
		t.Fatalf("disabled mailer should swallow sends, got %v", err)
	}
}

func TestMessageHeaders(t *testing.T) {
	msg := string(message("ops@opshub.local", "dev@opshub.local", "Payslip published", "Your payslip is ready."))

	header, body, found := strings.Cut(msg, "\r\n\r\n")
	if !found {
		t.Fatal("message must separate headers from body with a blank line")
	}
	if body != "Your payslip is ready." {
		t.Fatalf("unexpected body %q", body)
	}

	for _, want := range []string{
		"From: ops@opshub.local",
		"To: dev@opshub.local",
		"Subject: " + subjectTag + " Payslip published",
		"MIME-Version: 1.0",
		"Date: ",
		"Message-ID: <",
	} {
		if !strings.Contains(header, want) {
			t.Fatalf("headers missing %q:\n%s", want, header)
		}
	}
}
