package mail

import (
	"context"
	"errors"
	"net"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/go-ssi-auth-server/internal/utils"
	"github.com/jrsteele09/go-ssi-auth-server/users"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	sent []Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg Message) error {
	m.sent = append(m.sent, msg)
	return m.err
}

func TestConfirmationLink(t *testing.T) {
	link, err := ConfirmationLink("https://app.example.com/ssi/sign-up", "abc123")
	require.NoError(t, err)
	require.Equal(t, "https://app.example.com/ssi/sign-up?confirmation=abc123", link)

	link, err = ConfirmationLink("https://app.example.com/confirm?lang=en", "abc")
	require.NoError(t, err)
	require.Equal(t, "https://app.example.com/confirm?confirmation=abc&lang=en", link)
}

func TestSendConfirmation(t *testing.T) {
	m := &recordingMailer{}
	s := NewConfirmationSender(m, "https://app.example.com/ssi/sign-up", "SourceCheck")

	u := &users.User{Username: "alice", Email: "alice@example.com", ConfirmationToken: utils.Ptr("tok123")}
	require.NoError(t, s.SendConfirmation(context.Background(), u))

	require.Len(t, m.sent, 1)
	msg := m.sent[0]
	require.Equal(t, "alice@example.com", msg.To)
	require.Equal(t, "Account confirmation", msg.Subject)
	require.Contains(t, msg.Text, "confirmation=tok123")
	require.Contains(t, msg.HTML, `<a href="https://app.example.com/ssi/sign-up?confirmation=tok123">`)
}

func TestSendConfirmationErrors(t *testing.T) {
	m := &recordingMailer{err: errors.New("smtp down")}
	s := NewConfirmationSender(m, "https://app.example.com/ssi/sign-up", "SourceCheck")

	err := s.SendConfirmation(context.Background(), &users.User{Email: "a@b.co"})
	require.ErrorContains(t, err, "no confirmation token")

	err = s.SendConfirmation(context.Background(), &users.User{Email: "a@b.co", ConfirmationToken: utils.Ptr("t")})
	require.ErrorContains(t, err, "smtp down")
}

// smtpServer is a minimal SMTP responder recording the last DATA payload
type smtpServer struct {
	addr string
	data chan string
}

func startSMTPServer(t *testing.T, rcptReply string) *smtpServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	srv := &smtpServer{addr: ln.Addr().String(), data: make(chan string, 1)}
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		tp := textproto.NewConn(conn)
		_ = tp.PrintfLine("220 test ESMTP")
		for {
			line, err := tp.ReadLine()
			if err != nil {
				return
			}
			switch cmd := strings.ToUpper(strings.SplitN(line, " ", 2)[0]); cmd {
			case "EHLO", "HELO":
				_ = tp.PrintfLine("250 test")
			case "MAIL":
				_ = tp.PrintfLine("250 ok")
			case "RCPT":
				_ = tp.PrintfLine("%s", rcptReply)
			case "DATA":
				_ = tp.PrintfLine("354 go ahead")
				body, err := tp.ReadDotBytes()
				if err != nil {
					return
				}
				srv.data <- string(body)
				_ = tp.PrintfLine("250 queued")
			case "QUIT":
				_ = tp.PrintfLine("221 bye")
				return
			default:
				_ = tp.PrintfLine("502 unknown")
			}
		}
	}()
	return srv
}

// startSilentServer accepts connections and never answers
func startSilentServer(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var conns []net.Conn
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			conns = append(conns, c)
		}
	}()
	t.Cleanup(func() {
		ln.Close()
		<-done
		for _, c := range conns {
			c.Close()
		}
	})
	return ln.Addr().String()
}

func newTestMailer(t *testing.T, addr string) *SMTPMailer {
	t.Helper()
	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	return NewSMTPMailer(host, port, "", "", "noreply@example.com")
}

func TestSMTPMailer(t *testing.T) {
	srv := startSMTPServer(t, "250 ok")
	m := newTestMailer(t, srv.addr)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := m.Send(ctx, Message{To: "a@b.co", Subject: "Hi", Text: "plain", HTML: "<p>html</p>"})
	require.NoError(t, err)

	body := <-srv.data
	require.Contains(t, body, "Subject: Hi\n")
	require.Contains(t, body, "To: a@b.co\n")
	require.Contains(t, body, "multipart/alternative")
	require.True(t, strings.Contains(body, "plain") && strings.Contains(body, "<p>html</p>"))
}

func TestSMTPMailerRejectedRecipient(t *testing.T) {
	srv := startSMTPServer(t, "550 no such user")
	m := newTestMailer(t, srv.addr)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.ErrorContains(t, m.Send(ctx, Message{To: "a@b.co", Text: "x"}), "no such user")
}

func TestSMTPMailerCancelledContext(t *testing.T) {
	m := newTestMailer(t, startSilentServer(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, m.Send(ctx, Message{To: "a@b.co"}), context.Canceled)
}

func TestSMTPMailerUnresponsiveServer(t *testing.T) {
	m := newTestMailer(t, startSilentServer(t))

	t.Run("deadline", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()

		start := time.Now()
		err := m.Send(ctx, Message{To: "a@b.co", Text: "x"})
		require.ErrorIs(t, err, context.DeadlineExceeded)
		require.Less(t, time.Since(start), 2*time.Second)
	})

	t.Run("cancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(200*time.Millisecond, cancel)

		start := time.Now()
		err := m.Send(ctx, Message{To: "a@b.co", Text: "x"})
		require.ErrorIs(t, err, context.Canceled)
		require.Less(t, time.Since(start), 2*time.Second)
	})

	t.Run("default timeout", func(t *testing.T) {
		m.timeout = 200 * time.Millisecond

		start := time.Now()
		err := m.Send(context.Background(), Message{To: "a@b.co", Text: "x"})
		require.Error(t, err)
		require.Less(t, time.Since(start), 2*time.Second)
	})
}

func TestLogMailer(t *testing.T) {
	var buf strings.Builder
	m := NewLogMailer(zerolog.New(&buf))
	require.NoError(t, m.Send(context.Background(), Message{To: "a@b.co", Subject: "s", Text: "t"}))
	require.Contains(t, buf.String(), `"to":"a@b.co"`)
}
