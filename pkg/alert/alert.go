// Package alert notifies operators about conditions that need a human,
// like an embedding provider whose circuit breaker has opened.
package alert

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/soundprediction/quorum/pkg/config"
)

// Notification is one operator alert: which collaborator raised it, the
// condition it entered, and a detail line with the numbers behind it.
type Notification struct {
	// Component names the collaborator that raised the alert, e.g. "embedder".
	Component string
	// Condition is a short description of the state, e.g. "circuit breaker open".
	Condition string
	// Detail carries the specifics: failure counts, state transition, impact.
	Detail string
	// Time is when the condition was observed.
	Time time.Time
}

// Subject builds the one-line summary used as the mail subject.
func (n Notification) Subject() string {
	return fmt.Sprintf("[quorum] %s: %s", n.Component, n.Condition)
}

// Body renders the notification as a plain-text report.
func (n Notification) Body() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Component: %s\n", n.Component)
	fmt.Fprintf(&b, "Condition: %s\n", n.Condition)
	if !n.Time.IsZero() {
		fmt.Fprintf(&b, "Time: %s\n", n.Time.UTC().Format(time.RFC3339))
	}
	if n.Detail != "" {
		fmt.Fprintf(&b, "\n%s\n", n.Detail)
	}
	return b.String()
}

// Alerter delivers operator notifications.
type Alerter interface {
	Alert(n Notification) error
}

// EmailAlerter delivers notifications over SMTP.
type EmailAlerter struct {
	cfg config.AlertConfig
}

// NewEmailAlerter creates an email alerter from the alert configuration.
func NewEmailAlerter(cfg config.AlertConfig) *EmailAlerter {
	return &EmailAlerter{cfg: cfg}
}

// Alert sends the notification to the configured recipients. Disabled
// configuration makes it a no-op so callers never need to guard.
func (a *EmailAlerter) Alert(n Notification) error {
	if !a.cfg.Enabled {
		return nil
	}

	auth := smtp.PlainAuth("", a.cfg.Username, a.cfg.Password, a.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", a.cfg.SMTPHost, a.cfg.SMTPPort)

	if err := smtp.SendMail(addr, auth, a.cfg.From, a.cfg.To, buildMessage(a.cfg, n)); err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}
	return nil
}

// buildMessage assembles the RFC 822 message for a notification.
func buildMessage(cfg config.AlertConfig, n Notification) []byte {
	return []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		strings.Join(cfg.To, ","), n.Subject(), n.Body()))
}

// NoOpAlerter discards notifications. Used when alerting is disabled.
type NoOpAlerter struct{}

func (NoOpAlerter) Alert(n Notification) error { return nil }
