package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/storevoice/pkg/domain/model"
)

// DefaultTimeout bounds a whole SMTP exchange
const DefaultTimeout = 30 * time.Second

type smtpSender struct {
	timeout time.Duration
	now     func() time.Time
}

// NewSMTP creates a Sender speaking SMTP with implicit TLS or STARTTLS
func NewSMTP() Sender {
	return &smtpSender{timeout: DefaultTimeout, now: time.Now}
}

func (s *smtpSender) Send(ctx context.Context, cfg *model.SMTPConfig, msg *Message) error {
	if !cfg.Usable() {
		return goerr.New("SMTP is not configured")
	}
	to, err := mail.ParseAddress(msg.To)
	if err != nil {
		return goerr.Wrap(err, "invalid recipient", goerr.V("to", msg.To))
	}

	raw, err := buildMessage(cfg, to, msg, s.now())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	port := cfg.Port
	if port == 0 {
		port = 587
	}
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(port))

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return goerr.Wrap(err, "failed to connect SMTP server", goerr.V("addr", addr))
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	tlsConfig := &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	if cfg.TLS {
		conn = tls.Client(conn, tlsConfig)
	}

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		_ = conn.Close()
		return goerr.Wrap(err, "failed to start SMTP session", goerr.V("addr", addr))
	}
	defer func() { _ = client.Close() }()

	if !cfg.TLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(tlsConfig); err != nil {
				return goerr.Wrap(err, "failed to STARTTLS", goerr.V("addr", addr))
			}
		}
	}

	if cfg.User != "" {
		if err := client.Auth(smtp.PlainAuth("", cfg.User, cfg.Password, cfg.Host)); err != nil {
			return goerr.Wrap(err, "SMTP authentication failed", goerr.V("user", cfg.User))
		}
	}

	if err := client.Mail(cfg.FromEmail); err != nil {
		return goerr.Wrap(err, "MAIL FROM rejected", goerr.V("from", cfg.FromEmail))
	}
	if err := client.Rcpt(to.Address); err != nil {
		return goerr.Wrap(err, "RCPT TO rejected", goerr.V("to", to.Address))
	}

	w, err := client.Data()
	if err != nil {
		return goerr.Wrap(err, "DATA rejected")
	}
	if _, err := w.Write(raw); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write message body")
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "message rejected")
	}

	return client.Quit()
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// stripTags derives the plain text alternative from HTML
func stripTags(html string) string {
	return tagPattern.ReplaceAllString(html, "")
}

func buildMessage(cfg *model.SMTPConfig, to *mail.Address, msg *Message, now time.Time) ([]byte, error) {
	from := mail.Address{Name: cfg.FromName, Address: cfg.FromEmail}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from.String())
	fmt.Fprintf(&buf, "To: %s\r\n", to.String())
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", now.Format(time.RFC1123Z))
	fmt.Fprintf(&buf, "Message-ID: <%s@%s>\r\n", uuid.New().String(), cfg.Host)
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mw.Boundary())

	parts := []struct {
		contentType string
		content     string
	}{
		{contentType: "text/plain; charset=utf-8", content: stripTags(msg.HTML)},
		{contentType: "text/html; charset=utf-8", content: msg.HTML},
	}
	for _, p := range parts {
		header := textproto.MIMEHeader{}
		header.Set("Content-Type", p.contentType)
		header.Set("Content-Transfer-Encoding", "quoted-printable")
		pw, err := mw.CreatePart(header)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create message part")
		}
		qp := quotedprintable.NewWriter(pw)
		if _, err := qp.Write([]byte(p.content)); err != nil {
			return nil, goerr.Wrap(err, "failed to encode message part")
		}
		if err := qp.Close(); err != nil {
			return nil, goerr.Wrap(err, "failed to encode message part")
		}
	}
	if err := mw.Close(); err != nil {
		return nil, goerr.Wrap(err, "failed to finish message")
	}

	buf.Write(body.Bytes())
	return buf.Bytes(), nil
}
