package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

type Service interface {
	SendRegistrationReceived(ctx context.Context, to string, name string) error
	SendApprovalNotice(ctx context.Context, to string, name string) error
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPService creates a mail sender backed by an SMTP server.
func NewSMTPService(cfg SMTPConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendRegistrationReceived(ctx context.Context, to string, name string) error {
	body := fmt.Sprintf(
		"Hi %s,\n\nYour clinic staff registration was received and is awaiting approval.",
		name,
	)
	return s.send(to, "Registration received", body)
}

func (s *smtpService) SendApprovalNotice(ctx context.Context, to string, name string) error {
	body := fmt.Sprintf(
		"Hi %s,\n\nYour clinic staff account has been approved. You can now log in.",
		name,
	)
	return s.send(to, "Account approved", body)
}

func (s *smtpService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

type noopService struct{}

// NewNoopService is used when SMTP is not configured.
func NewNoopService() Service {
	return noopService{}
}

func (noopService) SendRegistrationReceived(ctx context.Context, to string, name string) error {
	return nil
}

func (noopService) SendApprovalNotice(ctx context.Context, to string, name string) error {
	return nil
}
