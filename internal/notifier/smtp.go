package notifier

import (
	"context"
	"crypto/tls"
	"fmt"

	"portal/internal/models"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

type SMTPNotifier struct {
	config models.MailerConfiguration
}

func NewSMTPNotifier(config models.MailerConfiguration) *SMTPNotifier {
	return &SMTPNotifier{config: config}
}

func (s *SMTPNotifier) options() []mail.Option {
	tlsPolicy := mail.TLSOpportunistic
	if s.config.EnableTLS {
		tlsPolicy = mail.TLSMandatory
	}

	opts := []mail.Option{
		mail.WithPort(s.config.Port),
		mail.WithTLSPolicy(tlsPolicy),
	}
	if s.config.SkipVerifyTLS {
		// #nosec G402 -- opt-in for self-signed relays in development
		opts = append(opts, mail.WithTLSConfig(&tls.Config{
			ServerName:         s.config.Host,
			InsecureSkipVerify: true,
		}))
	}
	if s.config.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.config.Username),
			mail.WithPassword(s.config.Password),
		)
	}
	return opts
}

func (s *SMTPNotifier) buildMessage(to string, subject string, templateName string, data any) (*mail.Msg, error) {
	body, err := render(templateName, data)
	if err != nil {
		return nil, err
	}

	m := mail.NewMsg()
	if err = m.From(s.config.Sender); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err = m.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextPlain, body.Text)
	m.AddAlternativeString(mail.TypeTextHTML, body.HTML)

	return m, nil
}

func (s *SMTPNotifier) NotifyFromTemplate(
	ctx context.Context,
	to string,
	subject string,
	templateName string,
	data any,
) error {
	m, err := s.buildMessage(to, subject, templateName, data)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(s.config.Host, s.options()...)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if err = client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send e-mail: %w", err)
	}

	zap.L().Info("E-mail sent",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("template", templateName),
	)
	return nil
}
