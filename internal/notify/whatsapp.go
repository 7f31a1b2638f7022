package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// WhatsAppChannel sends messages through a WhatsApp gateway webhook.
type WhatsAppChannel struct {
	url    string
	token  string
	client *http.Client
}

type whatsappPayload struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// NewWhatsAppChannel constructs a channel.
func NewWhatsAppChannel(url, token string) (*WhatsAppChannel, error) {
	if url == "" {
		return nil, errors.New("whatsapp channel: empty url")
	}
	return &WhatsAppChannel{
		url:    url,
		token:  token,
		client: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Send posts one message to the gateway.
func (c *WhatsAppChannel) Send(ctx context.Context, phone, message string) error {
	if c == nil || c.url == "" {
		return errors.New("whatsapp channel: empty url")
	}
	if phone == "" {
		return errors.New("whatsapp channel: empty phone")
	}
	body, err := json.Marshal(whatsappPayload{Phone: phone, Message: message})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", c.token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errors.New("whatsapp channel: non-2xx")
	}
	return nil
}
