package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const resendEndpoint = "https://api.resend.com/emails"

// Resend sends transactional email through the Resend REST API.
type Resend struct {
	apiKey      string
	senderEmail string
	client      *http.Client
}

func NewResend(apiKey, senderEmail string) *Resend {
	return &Resend{
		apiKey:      apiKey,
		senderEmail: senderEmail,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Resend) Name() string {
	return "resend"
}

type resendPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (r *Resend) Send(ctx context.Context, msg Message) error {
	payload := resendPayload{
		From:    r.senderEmail,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode resend payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, resendEndpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build resend request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("resend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("resend returned status %d: %s", resp.StatusCode, detail)
	}

	return nil
}
