// Package mail provides outbound email delivery over an HTTP mail API or
// SMTP, with template rendering and a best-effort dispatcher for booking
// notifications.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/smtp"
	"strings"
	"sync"
	"time"
)

// ErrDisabled is returned by the no-op sender when no transport is configured.
var ErrDisabled = errors.New("mail delivery disabled: no transport configured")

// Message is a single outbound email.
type Message struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Sender is the interface for delivering email messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Config selects and configures the mail transport. The API transport is
// preferred when both are configured.
type Config struct {
	From     string
	APIURL   string
	APIKey   string
	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
}

// NewSender picks a transport from the config: HTTP API first, then SMTP,
// falling back to a sender that reports ErrDisabled.
func NewSender(cfg Config) Sender {
	if cfg.APIURL != "" && cfg.APIKey != "" {
		return &APISender{
			url:    cfg.APIURL,
			apiKey: cfg.APIKey,
			client: &http.Client{Timeout: 10 * time.Second},
		}
	}
	if cfg.SMTPHost != "" && cfg.SMTPUser != "" {
		port := cfg.SMTPPort
		if port == "" {
			port = "587"
		}
		return &SMTPSender{
			host: cfg.SMTPHost,
			port: port,
			user: cfg.SMTPUser,
			pass: cfg.SMTPPass,
		}
	}
	return disabledSender{}
}

// APISender delivers mail by POSTing JSON to an HTTP mail API
// (Resend-compatible payload shape).
type APISender struct {
	url    string
	apiKey string
	client *http.Client
}

// Send posts the message to the configured API endpoint.
func (s *APISender) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("mail API returned status %d", resp.StatusCode)
	}
	return nil
}

// SMTPSender delivers mail over SMTP with PLAIN auth.
type SMTPSender struct {
	host string
	port string
	user string
	pass string
}

// Send delivers the message as a single HTML part.
func (s *SMTPSender) Send(_ context.Context, msg Message) error {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", msg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)

	addr := s.host + ":" + s.port
	auth := smtp.PlainAuth("", s.user, s.pass, s.host)
	if err := smtp.SendMail(addr, auth, msg.From, []string{msg.To}, []byte(b.String())); err != nil {
		return fmt.Errorf("sending via %s: %w", addr, err)
	}
	return nil
}

type disabledSender struct{}

func (disabledSender) Send(context.Context, Message) error { return ErrDisabled }

// Call records a single call to Send.
type Call struct {
	To      string
	Subject string
	HTML    string
}

// MockSender is a test double for Sender.
type MockSender struct {
	mu         sync.Mutex
	calls      []Call
	ShouldFail bool
	FailError  string
}

// Send records the call and optionally returns an error.
func (m *MockSender) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{To: msg.To, Subject: msg.Subject, HTML: msg.HTML})
	if m.ShouldFail {
		return errors.New(m.FailError)
	}
	return nil
}

// Calls returns a copy of recorded calls.
func (m *MockSender) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}
