package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"time"

	apperrors "go-career-scraper/internal/errors"

	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"go.uber.org/zap"
)

// Transport submits a composed message.
type Transport interface {
	Send(ctx context.Context, from string, to []string, msg io.Reader) error
}

// SMTPTransport submits over STARTTLS with PLAIN auth.
type SMTPTransport struct {
	Addr     string
	Host     string
	Username string
	Password string
}

func (t *SMTPTransport) Send(ctx context.Context, from string, to []string, msg io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c, err := smtp.DialStartTLS(t.Addr, &tls.Config{ServerName: t.Host})
	if err != nil {
		return fmt.Errorf("dial %s: %w", t.Addr, err)
	}
	defer c.Close()

	if err := c.Auth(sasl.NewPlainClient("", t.Username, t.Password)); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.SendMail(from, to, msg); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	return c.Quit()
}

type EmailNotifier struct {
	from      string
	to        string
	transport Transport
	now       func() time.Time
	logger    *zap.Logger
}

func NewEmailNotifier(from, to string, transport Transport, logger *zap.Logger) *EmailNotifier {
	return &EmailNotifier{
		from:      from,
		to:        to,
		transport: transport,
		now:       time.Now,
		logger:    logger,
	}
}

func (n *EmailNotifier) Name() string {
	return "email"
}

func (n *EmailNotifier) Notify(ctx context.Context, d Digest) error {
	msg, err := n.compose(d)
	if err != nil {
		return apperrors.Notification("compose digest", err)
	}

	n.logger.Info("📧 Sending email...", zap.String("to", n.to), zap.Int("jobs", d.Total()))
	if err := n.transport.Send(ctx, n.from, []string{n.to}, bytes.NewReader(msg)); err != nil {
		return apperrors.Notification("send digest to "+n.to, err)
	}
	n.logger.Info("✅ Email sent successfully")
	return nil
}

func (n *EmailNotifier) compose(d Digest) ([]byte, error) {
	body, err := d.RenderHTML()
	if err != nil {
		return nil, err
	}

	var h mail.Header
	h.SetDate(n.now())
	h.SetAddressList("From", []*mail.Address{{Address: n.from}})
	h.SetAddressList("To", []*mail.Address{{Address: n.to}})
	h.SetSubject(d.Subject())
	h.SetContentType("text/html", map[string]string{"charset": "utf-8"})

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(w, body); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
