package sms

import (
	"context"
	"testing"

	"github.com/bajehapp/bajeh_backend/config"
)

func TestNewFromConfig(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		client, err := NewFromConfig(config.SMSConfig{Enabled: false})
		if err != nil {
			t.Fatalf("NewFromConfig: %v", err)
		}
		if client.IsEnabled() {
			t.Error("expected client to be disabled")
		}
	})

	t.Run("enabled without api key", func(t *testing.T) {
		_, err := NewFromConfig(config.SMSConfig{Enabled: true})
		if err == nil {
			t.Error("expected error when API key is missing")
		}
	})

	t.Run("enabled with api key", func(t *testing.T) {
		client, err := NewFromConfig(config.SMSConfig{
			Enabled: true,
			SMSIR:   config.SMSIRConfig{APIKey: "key", SecretKey: "secret", TemplateID: "tpl"},
		})
		if err != nil {
			t.Fatalf("NewFromConfig: %v", err)
		}
		if !client.IsEnabled() {
			t.Error("expected client to be enabled")
		}
	})
}

func TestSendTicketCalledDisabled(t *testing.T) {
	client := &Client{enabled: false}
	if err := client.SendTicketCalled(context.Background(), "+989121234567", "TKN20260314001", "counter-3"); err != nil {
		t.Errorf("disabled client must no-op, got: %v", err)
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"e164 passthrough", "+989121234567", "+989121234567", false},
		{"local iranian", "09121234567", "+989121234567", false},
		{"empty", "", "", true},
		{"garbage", "not-a-number", "", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := NormalizePhone(c.in)
			if c.wantErr {
				if err == nil {
					t.Fatalf("got %q, want error", got)
				}
				return
			}
			if err != nil || got != c.want {
				t.Fatalf("got %q, %v; want %q", got, err, c.want)
			}
		})
	}
}
