package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements the Sender interface using a direct SMTP
// connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendAgreementCreatedEmail(ctx context.Context, toEmail, agreementID string) error {
	content, err := renderEmailTemplate("agreement_created.html", agreementCreatedEmailData{
		baseEmailData: baseEmailData{
			Title:   subjectAgreementCreated,
			Heading: "Agreement active",
		},
		AgreementID: agreementID,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectAgreementCreated, content)
}

func (s *SMTPSender) SendFallbackSummaryEmail(ctx context.Context, toEmail string, applied, failed int) error {
	subject := fmt.Sprintf(subjectFallbackSummaryFmt, applied)
	content, err := renderEmailTemplate("fallback_summary.html", fallbackSummaryEmailData{
		baseEmailData: baseEmailData{
			Title:   subject,
			Heading: "Fallback run completed",
		},
		Applied: applied,
		Failed:  failed,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

var (
	_ Sender = (*SMTPSender)(nil)
	_ Sender = NoopSender{}
)
