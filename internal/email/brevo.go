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

const brevoEndpoint = "https://api.brevo.com/v3/smtp/email"

// Brevo sends transactional email through the Brevo REST API.
type Brevo struct {
	apiKey      string
	senderName  string
	senderEmail string
	client      *http.Client
}

func NewBrevo(apiKey, senderName, senderEmail string) *Brevo {
	return &Brevo{
		apiKey:      apiKey,
		senderName:  senderName,
		senderEmail: senderEmail,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

func (b *Brevo) Name() string {
	return "brevo"
}

type brevoPayload struct {
	Sender      brevoAddress   `json:"sender"`
	To          []brevoAddress `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

type brevoAddress struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

func (b *Brevo) Send(ctx context.Context, msg Message) error {
	payload := brevoPayload{
		Sender:      brevoAddress{Name: b.senderName, Email: b.senderEmail},
		To:          []brevoAddress{{Email: msg.To}},
		Subject:     msg.Subject,
		HTMLContent: msg.HTML,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode brevo payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, brevoEndpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build brevo request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("brevo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("brevo returned status %d: %s", resp.StatusCode, detail)
	}

	return nil
}
