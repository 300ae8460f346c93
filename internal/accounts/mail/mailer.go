package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	gomail "github.com/wneessen/go-mail"

	"github.com/aussiebroadwan/qayimli/pkg/slogx"
)

var ErrSMTPConfig = errors.New("mail: incomplete smtp configuration")

// Sender delivers a single HTML email.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender delivers through an SMTP relay. TLS is mandatory.
type SMTPSender struct {
	cfg  SMTPConfig
	opts []gomail.Option
}

func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, fmt.Errorf("%w: host and from are required", ErrSMTPConfig)
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}

	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	return &SMTPSender{cfg: cfg, opts: opts}, nil
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg, err := buildMessage(s.cfg.From, to, subject, htmlBody)
	if err != nil {
		return err
	}

	client, err := gomail.NewClient(s.cfg.Host, s.opts...)
	if err != nil {
		return fmt.Errorf("mail: client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mail: send to %s: %w", to, err)
	}

	slogx.FromContext(ctx).Info("email sent", "to", to, "subject", subject)
	return nil
}

func buildMessage(from, to, subject, htmlBody string) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("mail: from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("mail: to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlBody)
	return msg, nil
}

// LogSender only logs. Used when no SMTP relay is configured.
type LogSender struct {
	Logger *slog.Logger
}

func (s *LogSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	l := s.Logger
	if l == nil {
		l = slogx.FromContext(ctx)
	}
	l.Warn("smtp not configured, email not delivered", "to", to, "subject", subject)
	l.Debug("undelivered email body", "to", to, "body", htmlBody)
	return nil
}
