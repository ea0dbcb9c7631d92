package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/smtp"
	"time"

	"go.uber.org/zap"
)

// Mailer delivers one HTML email.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

type Config struct {
	FromEmail    string
	ResendAPIKey string
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPass     string
}

// New picks Resend when an API key is set, then SMTP, and otherwise logs mail.
func New(cfg Config, log *zap.Logger) Mailer {
	switch {
	case cfg.ResendAPIKey != "":
		return &ResendMailer{cfg: cfg, client: &http.Client{Timeout: 15 * time.Second}, endpoint: "https://api.resend.com/emails"}
	case cfg.SMTPHost != "":
		return &SMTPMailer{cfg: cfg}
	default:
		return &LogMailer{log: log}
	}
}

type ResendMailer struct {
	cfg      Config
	client   *http.Client
	endpoint string
}

func (m *ResendMailer) Send(ctx context.Context, to, subject, html string) error {
	body, err := json.Marshal(map[string]interface{}{
		"from":    m.cfg.FromEmail,
		"to":      []string{to},
		"subject": subject,
		"html":    html,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.cfg.ResendAPIKey)
	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("resend API error: status %d", resp.StatusCode)
	}
	return nil
}

type SMTPMailer struct {
	cfg Config
}

func (m *SMTPMailer) Send(_ context.Context, to, subject, html string) error {
	addr := m.cfg.SMTPHost + ":" + m.cfg.SMTPPort
	msg := "From: " + m.cfg.FromEmail + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\"\r\n" +
		"\r\n" +
		html
	var auth smtp.Auth
	if m.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPass, m.cfg.SMTPHost)
	}
	if err := smtp.SendMail(addr, auth, m.cfg.SMTPUser, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogMailer writes mail to the log instead of sending it.
type LogMailer struct {
	log *zap.Logger
}

func (m *LogMailer) Send(_ context.Context, to, subject, html string) error {
	m.log.Info("mail not configured, logging message",
		zap.String("to", to), zap.String("subject", subject), zap.Int("bytes", len(html)))
	return nil
}
