// Package email sends ticket notifications over SMTP.
package email

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/bajehapp/bajeh_backend/config"
)

type Message struct {
	To       []string
	Subject  string
	TextBody string
	HTMLBody string
	Headers  map[string]string
}

type Client struct {
	cfg config.EmailConfig
}

func NewFromConfig(cfg config.EmailConfig) *Client {
	return &Client{cfg: cfg}
}

// IsEnabled reports whether email sending is enabled.
func (c *Client) IsEnabled() bool {
	return c.cfg.Enabled
}

func (c *Client) Send(ctx context.Context, m Message) error {
	if !c.cfg.Enabled {
		return ErrDisabled{}
	}

	msg, err := buildMessage(c.cfg.From, m)
	if err != nil {
		return err
	}

	d := c.newDialer()
	done := make(chan error, 1)
	go func() {
		done <- d.DialAndSend(msg)
	}()

	// Respect ctx deadline when it is sooner than the config timeout.
	wait := c.timeout()
	if dl, ok := ctx.Deadline(); ok {
		if until := time.Until(dl); until > 0 && until < wait {
			wait = until
		}
	}

	select {
	case err := <-done:
		if err != nil {
			return ErrSend{Provider: "gomail/smtp", Err: err}
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return context.DeadlineExceeded
	}
}

func (c *Client) timeout() time.Duration {
	if c.cfg.SMTP.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.cfg.SMTP.TimeoutSeconds) * time.Second
}

func (c *Client) newDialer() *gomail.Dialer {
	d := gomail.NewDialer(c.cfg.SMTP.Host, c.cfg.SMTP.Port, c.cfg.SMTP.Username, c.cfg.SMTP.Password)
	d.SSL = c.cfg.SMTP.UseTLS
	if c.cfg.SMTP.UseTLS {
		d.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return d
}

func buildMessage(from string, m Message) (*gomail.Message, error) {
	msg := gomail.NewMessage()

	from = strings.TrimSpace(from)
	if from == "" {
		return nil, ErrInvalidMessage{Reason: "from is required"}
	}
	msg.SetHeader("From", from)

	to := cleanAddrs(m.To)
	if len(to) == 0 {
		return nil, ErrInvalidMessage{Reason: "at least one recipient is required"}
	}
	msg.SetHeader("To", to...)

	subj := strings.TrimSpace(m.Subject)
	if subj == "" {
		return nil, ErrInvalidMessage{Reason: "subject is required"}
	}
	msg.SetHeader("Subject", subj)

	for k, v := range m.Headers {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		msg.SetHeader(k, v)
	}

	hasText := strings.TrimSpace(m.TextBody) != ""
	hasHTML := strings.TrimSpace(m.HTMLBody) != ""
	switch {
	case hasText && hasHTML:
		msg.SetBody("text/plain", m.TextBody)
		msg.AddAlternative("text/html", m.HTMLBody)
	case hasHTML:
		msg.SetBody("text/html", m.HTMLBody)
	case hasText:
		msg.SetBody("text/plain", m.TextBody)
	default:
		return nil, ErrInvalidMessage{Reason: "either TextBody or HTMLBody is required"}
	}

	return msg, nil
}

func cleanAddrs(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
