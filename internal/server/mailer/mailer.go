// Package mailer delivers password reset codes.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"text/template"

	"github.com/dmitrijs2005/docvault/internal/logging"
)

// Dispatcher sends a one-time code to an e-mail address.
type Dispatcher interface {
	Send(ctx context.Context, address string, code string) error
}

const defaultSubject = "Your DocVault password reset code"

// DefaultTemplate is the plain-text body of the reset e-mail.
const DefaultTemplate = `Hi {{.Email}},

Use this code to reset your DocVault password:

{{.Code}}

If you did not request a password reset, you can ignore this email.
`

// EmailParams is passed as data when executing the e-mail template.
type EmailParams struct {
	Email string
	Code  string
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// sendMail is a seam for tests.
var sendMail = smtp.SendMail

type SMTPDispatcher struct {
	cfg  SMTPConfig
	tmpl *template.Template
}

// NewSMTPDispatcher panics if the body template does not parse.
func NewSMTPDispatcher(cfg SMTPConfig) *SMTPDispatcher {
	return &SMTPDispatcher{
		cfg:  cfg,
		tmpl: template.Must(template.New("reset").Parse(DefaultTemplate)),
	}
}

func (d *SMTPDispatcher) Send(ctx context.Context, address string, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := d.message(address, code)
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if d.cfg.User != "" {
		auth = smtp.PlainAuth("", d.cfg.User, d.cfg.Password, d.cfg.Host)
	}

	addr := net.JoinHostPort(d.cfg.Host, strconv.Itoa(d.cfg.Port))
	if err := sendMail(addr, auth, d.cfg.From, []string{address}, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (d *SMTPDispatcher) message(address, code string) ([]byte, error) {
	body := &bytes.Buffer{}
	if err := d.tmpl.Execute(body, EmailParams{Email: address, Code: code}); err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}

	msg := &bytes.Buffer{}
	fmt.Fprintf(msg, "From: %s\r\n", d.cfg.From)
	fmt.Fprintf(msg, "To: %s\r\n", address)
	fmt.Fprintf(msg, "Subject: %s\r\n", defaultSubject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	msg.WriteString(strings.ReplaceAll(body.String(), "\n", "\r\n"))

	return msg.Bytes(), nil
}

// LogDispatcher writes the code to the log instead of sending it. Used when
// no SMTP host is configured.
type LogDispatcher struct {
	logger logging.Logger
}

func NewLogDispatcher(l logging.Logger) *LogDispatcher {
	return &LogDispatcher{logger: l}
}

func (d *LogDispatcher) Send(ctx context.Context, address string, code string) error {
	d.logger.Info(ctx, "password reset code issued", "email", address, "code", code)
	return nil
}
