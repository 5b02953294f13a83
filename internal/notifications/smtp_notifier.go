package notifications

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"strconv"
)

var confirmationTmpl = template.Must(template.New("email-confirmation").Parse(`<!doctype html>
<html>
  <body>
    <p>Hello {{ .Name }},</p>
    <p>Please confirm your email address by following the link below:</p>
    <p><a href="{{ .Link }}">Confirm email</a></p>
    <p>Or enter this confirmation code: <strong>{{ .Code }}</strong></p>
    <p>The link and the code expire in 12 hours.</p>
  </body>
</html>
`))

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// SMTPNotifier renders the confirmation template and delivers it over SMTP.
type SMTPNotifier struct {
	cfg SMTPConfig
}

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

func (n *SMTPNotifier) SendConfirmation(ctx context.Context, in SendConfirmationInput) error {
	var body bytes.Buffer

	err := confirmationTmpl.Execute(&body, in)

	if err != nil {
		return fmt.Errorf("render confirmation template: %w", err)
	}

	msg := bytes.Buffer{}
	msg.WriteString("From: " + n.cfg.From + "\r\n")
	msg.WriteString("To: " + in.Email + "\r\n")
	msg.WriteString("Subject: Email Confirmation\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())

	addr := n.cfg.Host + ":" + strconv.Itoa(n.cfg.Port)

	var auth smtp.Auth
	if n.cfg.User != "" {
		auth = smtp.PlainAuth("", n.cfg.User, n.cfg.Password, n.cfg.Host)
	}

	// net/smtp has no context support; the ProtectedNotifier wrapper bounds
	// the call with a timeout instead.
	done := make(chan error, 1)

	go func() {
		done <- smtp.SendMail(addr, auth, n.cfg.From, []string{in.Email}, msg.Bytes())
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send confirmation mail: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
