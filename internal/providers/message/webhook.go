package message

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
)

// WebhookProvider relays proactive messages to an external gateway
// (the WhatsApp transport lives behind it).
type WebhookProvider struct {
	url    string
	client *http.Client
}

func NewWebhookProvider(url string) *WebhookProvider {
	return &WebhookProvider{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type outboundMessage struct {
	To         string `json:"to"`
	Text       string `json:"text"`
	CustomerID string `json:"customer_id"`
}

func (p *WebhookProvider) SendProactiveMessage(ctx context.Context, to string, text string, customerID snowflake.ID) error {
	payload, err := json.Marshal(outboundMessage{
		To:         to,
		Text:       text,
		CustomerID: customerID.String(),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("message gateway returned %d", resp.StatusCode)
	}
	return nil
}
