package notify

import (
	"context"
	"fmt"
	"io"

	"github.com/go-gomail/gomail"

	"github.com/prescripto/prescripto-api/internal/logger"
	"github.com/prescripto/prescripto-api/internal/notification"
)

type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(host string, port int, user, pass, from string) *SMTPSender {
	if from == "" {
		from = user
	}
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
	}
}

func (s *SMTPSender) SendEmail(ctx context.Context, to, subject, htmlBody string, att *notification.Attachment) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if att != nil {
		data := att.Data
		m.Attach(att.Name,
			gomail.SetHeader(map[string][]string{"Content-Type": {att.ContentType}}),
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
		)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// LogEmailSender is used when no SMTP server is configured.
type LogEmailSender struct {
	log *logger.Logger
}

func NewLogEmailSender(log *logger.Logger) *LogEmailSender {
	return &LogEmailSender{log: log}
}

func (s *LogEmailSender) SendEmail(ctx context.Context, to, subject, htmlBody string, att *notification.Attachment) error {
	s.log.WithComponent("email").
		WithField("to", to).
		WithField("subject", subject).
		WithField("attachment", att != nil).
		Info("email not sent: smtp disabled")
	return nil
}
