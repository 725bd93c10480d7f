// Package sms notifies ticket owners over sms.ir when their number is
// called.
package sms

import (
	"context"
	"fmt"

	"github.com/arsmn/go-smsir/smsir"
	"github.com/nyaruka/phonenumbers"

	"github.com/bajehapp/bajeh_backend/config"
)

// Client provides SMS sending via sms.ir. When disabled it no-ops, which
// keeps development setups free of provider credentials.
type Client struct {
	client     *smsir.Client
	templateID string
	enabled    bool
}

func NewFromConfig(cfg config.SMSConfig) (*Client, error) {
	if !cfg.Enabled {
		return &Client{enabled: false}, nil
	}
	if cfg.SMSIR.APIKey == "" {
		return nil, fmt.Errorf("sms.ir API key required when SMS enabled")
	}

	client := smsir.NewClient().WithAuthentication(cfg.SMSIR.APIKey, cfg.SMSIR.SecretKey)
	return &Client{
		client:     client,
		templateID: cfg.SMSIR.TemplateID,
		enabled:    true,
	}, nil
}

// IsEnabled reports whether SMS sending is enabled.
func (c *Client) IsEnabled() bool {
	return c.enabled
}

// SendTicketCalled tells a customer their ticket was called and at which
// counter. The template needs "number" and "counter" parameters.
func (c *Client) SendTicketCalled(ctx context.Context, phoneNumber, ticketNumber, counter string) error {
	if !c.enabled {
		return nil
	}
	if ticketNumber == "" || counter == "" {
		return fmt.Errorf("ticket number and counter are required")
	}

	normalized, err := NormalizePhone(phoneNumber)
	if err != nil {
		return fmt.Errorf("normalize recipient: %w", err)
	}

	req := &smsir.UltraFastSendRequest{
		Mobile:     normalized,
		TemplateID: c.templateID,
		Parameters: []smsir.UltraFastParameter{
			{Key: "number", Value: ticketNumber},
			{Key: "counter", Value: counter},
		},
	}
	if _, err := c.client.Verification.UltraFastSend(ctx, req); err != nil {
		return fmt.Errorf("sms.ir send failed: %w", err)
	}
	return nil
}

// NormalizePhone parses a phone number and renders it in E.164. Numbers
// without a country code are assumed Iranian.
func NormalizePhone(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("phone number is required")
	}
	num, err := phonenumbers.Parse(raw, "IR")
	if err != nil {
		return "", fmt.Errorf("parse phone number: %w", err)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("invalid phone number: %s", raw)
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}
