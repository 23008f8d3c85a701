// Package mail delivers transactional emails. The provider is picked from
// config: log (local), smtp, or resend.
package mail

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"go-gin-article-api/internal/core/config"
)

type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}

// LogSender 只写日志，本地开发使用
type LogSender struct {
	Log *zap.Logger
}

func (s *LogSender) Send(_ context.Context, to, subject, html string) error {
	s.Log.Info("email (not sent)", zap.String("to", to), zap.String("subject", subject), zap.String("html", html))
	return nil
}

// SMTPSender 通过 SMTP 投递；587 端口优先 STARTTLS
type SMTPSender struct {
	client *gomail.Client
	from   string
}

func NewSMTPSender(c config.SMTP, from string) (*SMTPSender, error) {
	opts := []gomail.Option{
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
	}
	if c.Port > 0 {
		opts = append(opts, gomail.WithPort(c.Port))
	}
	if c.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(c.Username),
			gomail.WithPassword(c.Password),
		)
	}
	client, err := gomail.NewClient(c.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPSender{client: client, from: from}, nil
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, html string) error {
	msg, err := buildMessage(s.from, to, subject, html)
	if err != nil {
		return err
	}
	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func buildMessage(from, to, subject, html string) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("email from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("email to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, html)
	return msg, nil
}

// ResendSender 通过 Resend API 投递
type ResendSender struct {
	client *resend.Client
	from   string
}

func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey), from: from}
}

func (s *ResendSender) Send(ctx context.Context, to, subject, html string) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}
	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func NewSender(c config.Mail, l *zap.Logger) (Sender, error) {
	switch c.Provider {
	case "smtp":
		return NewSMTPSender(c.SMTP, c.From)
	case "resend":
		return NewResendSender(c.ResendAPIKey, c.From), nil
	default:
		return &LogSender{Log: l}, nil
	}
}
