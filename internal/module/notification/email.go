package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/fedpay/server/internal/shared/config"
)

// EmailSender delivers messages over SMTP.
type EmailSender struct {
	addr   string
	auth   smtp.Auth
	from   string
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	logger *zap.Logger
}

// NewEmailSender creates a new SMTP sender.
func NewEmailSender(cfg *config.NotificationsConfig, logger *zap.Logger) *EmailSender {
	var auth smtp.Auth
	if cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	}
	return &EmailSender{
		addr:   fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		auth:   auth,
		from:   cfg.SMTPFrom,
		send:   smtp.SendMail,
		logger: logger,
	}
}

// Channel returns the channel this sender serves.
func (s *EmailSender) Channel() string {
	return ChannelEmail
}

// Send delivers the notification as a plain-text email.
func (s *EmailSender) Send(ctx context.Context, n *Notification) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.from)
	fmt.Fprintf(&msg, "To: %s\r\n", n.Recipient)
	fmt.Fprintf(&msg, "Subject: %s\r\n", n.Subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(n.Body)

	if err := s.send(s.addr, s.auth, s.from, []string{n.Recipient}, []byte(msg.String())); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
