// Package mail sends the out-of-band confirmation message of the sign-up flow.
package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strings"
	"time"

	"github.com/jrsteele09/go-ssi-auth-server/internal/config"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// NewFromConfig returns an SMTP mailer when SMTP_HOST is set, otherwise a LogMailer
func NewFromConfig(cfg config.MailConfig) Mailer {
	if cfg.GetSmtpHost() == "" {
		return NewLogMailer(log.Logger)
	}
	return NewSMTPMailer(cfg.GetSmtpHost(), cfg.GetSmtpPort(), cfg.GetSmtpAccount(), cfg.GetSmtpPassword(), cfg.GetEmailFrom())
}

const defaultSendTimeout = 30 * time.Second

type SMTPMailer struct {
	host    string
	addr    string
	auth    smtp.Auth
	from    string
	timeout time.Duration // applied when ctx carries no deadline
	dial    func(ctx context.Context, network, addr string) (net.Conn, error)
}

func NewSMTPMailer(host, port, account, password, from string) *SMTPMailer {
	var auth smtp.Auth
	if account != "" {
		auth = smtp.PlainAuth("", account, password, host)
	}
	return &SMTPMailer{
		host:    host,
		addr:    net.JoinHostPort(host, port),
		auth:    auth,
		from:    from,
		timeout: defaultSendTimeout,
		dial:    (&net.Dialer{}).DialContext,
	}
}

// Send delivers msg over one SMTP session. The session is bounded by the
// deadline of ctx and is torn down when ctx is cancelled.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := m.compose(msg)
	if err != nil {
		return errors.Wrap(err, "failed to compose email")
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	conn, err := m.dial(ctx, "tcp", m.addr)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errors.Wrapf(ctxErr, "failed to connect to %s", m.addr)
		}
		return errors.Wrapf(err, "failed to connect to %s", m.addr)
	}
	defer conn.Close()

	deadline, _ := ctx.Deadline()
	if err := conn.SetDeadline(deadline); err != nil {
		return errors.Wrap(err, "failed to set SMTP deadline")
	}
	stop := context.AfterFunc(ctx, func() { conn.SetDeadline(time.Now()) })
	defer stop()

	if err := m.session(conn, msg.To, body); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errors.Wrapf(ctxErr, "failed to send email to %s", msg.To)
		}
		// the socket deadline can fire just before the context timer
		if !time.Now().Before(deadline) {
			return errors.Wrapf(context.DeadlineExceeded, "failed to send email to %s", msg.To)
		}
		return errors.Wrapf(err, "failed to send email to %s", msg.To)
	}
	return nil
}

func (m *SMTPMailer) session(conn net.Conn, to string, body []byte) error {
	c, err := smtp.NewClient(conn, m.host)
	if err != nil {
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
			return err
		}
	}
	if m.auth != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(m.auth); err != nil {
				return err
			}
		}
	}
	if err := c.Mail(m.from); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(body); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// compose builds a multipart/alternative message with text and HTML parts
func (m *SMTPMailer) compose(msg Message) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", m.from)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", strings.ReplaceAll(msg.Subject, "\n", " "))
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", w.Boundary())

	parts := []struct {
		contentType string
		body        string
	}{
		{contentType: "text/plain; charset=UTF-8", body: msg.Text},
		{contentType: "text/html; charset=UTF-8", body: msg.HTML},
	}
	for _, p := range parts {
		if p.body == "" {
			continue
		}
		pw, err := w.CreatePart(textproto.MIMEHeader{"Content-Type": {p.contentType}})
		if err != nil {
			return nil, err
		}
		if _, err := pw.Write([]byte(p.body)); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LogMailer writes messages to the log instead of sending them
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(l zerolog.Logger) *LogMailer {
	return &LogMailer{log: l}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.Text).
		Msg("email not sent, SMTP is not configured")
	return nil
}
