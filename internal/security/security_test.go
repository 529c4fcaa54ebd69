package security

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

const testToken = "123456789:AAHdqTcvCH1vGWJxfSeofSAs0K5PALDsawq"

func TestRedactor_BotToken(t *testing.T) {
	t.Parallel()
	r := NewRedactor()

	tests := []struct {
		name string
		in   string
	}{
		{"bare", "token is " + testToken},
		{"url", "Post \"https://api.telegram.org/bot" + testToken + "/sendDocument\": EOF"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := r.Redact(tc.in)
			if strings.Contains(got, "AAHdqTcvCH1vGWJxfSeofSAs0K5PALDsawq") {
				t.Errorf("Redact(%q) = %q, secret leaked", tc.in, got)
			}
			if !strings.Contains(got, RedactPlaceholder) {
				t.Errorf("Redact(%q) = %q, missing placeholder", tc.in, got)
			}
		})
	}
}

func TestRedactor_Literal(t *testing.T) {
	t.Parallel()
	r := NewRedactor()
	r.AddLiteral("")
	r.AddLiteral("s3cr3t")

	if got := r.Redact("pass=s3cr3t"); got != "pass="+RedactPlaceholder {
		t.Errorf("Redact() = %q", got)
	}
	if got := r.Redact("/home/user/photo.jpg"); got != "/home/user/photo.jpg" {
		t.Errorf("Redact() altered innocent input: %q", got)
	}
}

func TestRedactingHandler(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	inner := slog.NewTextHandler(&buf, nil)
	logger := slog.New(NewRedactingHandler(inner, NewRedactor()))

	logger.With("token", testToken).WithGroup("req").Info("calling with "+testToken,
		"error", errors.New("Post https://api.telegram.org/bot"+testToken+"/getMe: timeout"),
		"path", "/tmp/a.txt",
	)

	out := buf.String()
	if strings.Contains(out, "AAHdqTcvCH1vGWJxfSeofSAs0K5PALDsawq") {
		t.Fatalf("secret leaked into log output: %s", out)
	}
	if !strings.Contains(out, "/tmp/a.txt") {
		t.Errorf("expected non-secret attribute to survive: %s", out)
	}
}
