package services

import (
	"fmt"
	"net/smtp"
	"strings"

	"instagram-agent-platform/internal/config"
)

type EmailSender interface {
	SendRunAlert(subject, body string) error
}

type SMTPEmailSender struct {
	config config.Config
}

func NewSMTPEmailSender(cfg config.Config) *SMTPEmailSender {
	return &SMTPEmailSender{config: cfg}
}

func (s *SMTPEmailSender) SendRunAlert(subject, body string) error {
	recipients := []string{}
	for _, adminEmail := range s.config.AdminEmails {
		if strings.TrimSpace(adminEmail) != "" {
			recipients = append(recipients, strings.TrimSpace(adminEmail))
		}
	}
	if len(recipients) == 0 {
		return fmt.Errorf("no admin recipients configured")
	}

	msg := strings.Builder{}
	msg.WriteString(fmt.Sprintf("From: %s\r\n", s.config.SMTPFrom))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(recipients, ", ")))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	msg.WriteString(body)

	addr := s.config.SMTPHost + ":" + s.config.SMTPPort
	auth := smtp.PlainAuth("", s.config.SMTPUser, s.config.SMTPPass, s.config.SMTPHost)

	if err := smtp.SendMail(addr, auth, s.config.SMTPFrom, recipients, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}
	return nil
}
