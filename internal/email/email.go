package email

import (
	"fmt"
	"log"

	"gopkg.in/gomail.v2"

	"luxeleads/internal/config"
)

// messageSender is satisfied by *gomail.Dialer.
type messageSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Service handles sending email notifications. Without SMTP configuration it runs
// in development mode and only logs what it would send.
type Service struct {
	cfg     *config.Config
	enabled bool
	sender  messageSender
}

// NewService creates a new email service.
func NewService(cfg *config.Config) *Service {
	s := &Service{
		cfg:     cfg,
		enabled: cfg.IsEmailEnabled(),
	}

	if s.enabled {
		s.sender = gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
		log.Printf("Email notifications enabled (SMTP: %s:%d)", cfg.SMTPHost, cfg.SMTPPort)
	} else {
		log.Println("Email notifications in development mode (SMTP not configured)")
	}

	return s
}

// IsEnabled returns true if email is delivered over SMTP.
func (s *Service) IsEnabled() bool {
	return s.enabled
}

// SendEmail sends an email to the specified recipients.
func (s *Service) SendEmail(to []string, subject, htmlBody, textBody string) error {
	if len(to) == 0 {
		return nil
	}

	if !s.enabled {
		log.Printf("Development mode - email would be sent to %v: %s\n%s", to, subject, textBody)
		return nil
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.cfg.SMTPFrom, s.cfg.SMTPFromName)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", textBody)
	if htmlBody != "" {
		m.AddAlternative("text/html", htmlBody)
	}

	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("send email via SMTP: %w", err)
	}
	return nil
}
