package mail

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/amptron-th/testdoc-api/pkg/config"
	appErrors "github.com/amptron-th/testdoc-api/pkg/errors"
)

// SMTPTransport sends notifications through an SMTP relay.
type SMTPTransport struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
	timeout  time.Duration
	logger   *zap.Logger
}

// NewSMTPTransport constructs an SMTP transport from mail configuration.
func NewSMTPTransport(cfg config.MailConfig, logger *zap.Logger) *SMTPTransport {
	if logger == nil {
		logger = zap.NewNop()
	}
	dialer := gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)
	return &SMTPTransport{
		dialer:   dialer,
		from:     cfg.From,
		fromName: cfg.FromName,
		timeout:  cfg.Timeout,
		logger:   logger,
	}
}

// Send delivers one message. SMTP offers no provider id, so a local one is
// synthesized for the ledger.
func (t *SMTPTransport) Send(ctx context.Context, msg Message) (string, error) {
	m := buildMessage(t.from, t.fromName, msg)

	errCh := make(chan error, 1)
	go func() {
		errCh <- t.dialer.DialAndSend(m)
	}()

	timeout := t.timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	select {
	case err := <-errCh:
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrTransportFailure.Code, appErrors.ErrTransportFailure.Status, "smtp send failed")
		}
	case <-time.After(timeout):
		return "", appErrors.Clone(appErrors.ErrTransportFailure, "smtp send timed out")
	case <-ctx.Done():
		return "", appErrors.Wrap(ctx.Err(), appErrors.ErrTransportFailure.Code, appErrors.ErrTransportFailure.Status, "smtp send canceled")
	}

	id := fmt.Sprintf("smtp-%d@%s", time.Now().UnixNano(), domainOf(t.from))
	t.logger.Info("notification sent",
		zap.String("recipient", msg.Recipient),
		zap.String("message_id", id))
	return id, nil
}

// buildMessage assembles the MIME message shared by both transports. Inline
// assets are embedded by cid so the body renders without remote fetches.
func buildMessage(from, fromName string, msg Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", from, fromName)
	m.SetHeader("To", msg.Recipient)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)
	for _, asset := range msg.Inline {
		data := asset.Data
		m.Embed(asset.Name, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}))
	}
	return m
}

func domainOf(addr string) string {
	if i := strings.LastIndex(addr, "@"); i >= 0 && i < len(addr)-1 {
		return addr[i+1:]
	}
	return "localhost"
}
