package service

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/config"
)

// Mailer delivers a single notification email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NewMailer picks SMTP delivery when an address is configured and falls
// back to log-only delivery otherwise, so local environments never need
// a mail server.
func NewMailer(cfg config.NotificationConfig, logger *zap.Logger) Mailer {
	if strings.TrimSpace(cfg.SMTPAddr) == "" {
		return &loggingMailer{logger: logger}
	}
	return &smtpMailer{cfg: cfg}
}

type smtpMailer struct {
	cfg config.NotificationConfig
}

func (m *smtpMailer) Send(_ context.Context, to, subject, body string) error {
	host := m.cfg.SMTPAddr
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		host = host[:idx]
	}

	var auth smtp.Auth
	if m.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPassword, host)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.cfg.EmailFrom, to, subject, body)
	return smtp.SendMail(m.cfg.SMTPAddr, auth, m.cfg.EmailFrom, []string{to}, []byte(msg))
}

type loggingMailer struct {
	logger *zap.Logger
}

func (m *loggingMailer) Send(_ context.Context, to, subject, _ string) error {
	m.logger.Info("email notification (log-only delivery)",
		zap.String("to", to),
		zap.String("subject", subject))
	return nil
}
