package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/abbasiconnect/api/internal/logging"
)

// ErrNoProviderConfigured is returned when the fallback chain is empty.
var ErrNoProviderConfigured = errors.New("no email provider configured")

// Message is a rendered email ready for delivery.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Notifier delivers a message through one provider.
type Notifier interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Fallback tries providers in order until one reports success.
type Fallback struct {
	notifiers []Notifier
	logger    *logging.Logger
}

func NewFallback(logger *logging.Logger, notifiers ...Notifier) *Fallback {
	return &Fallback{notifiers: notifiers, logger: logger}
}

func (f *Fallback) Name() string {
	return "fallback"
}

func (f *Fallback) Send(ctx context.Context, msg Message) error {
	if len(f.notifiers) == 0 {
		return ErrNoProviderConfigured
	}

	var lastErr error
	for _, n := range f.notifiers {
		if err := n.Send(ctx, msg); err != nil {
			f.logger.Warn("email provider failed, trying next", "provider", n.Name(), "error", err.Error())
			lastErr = err
			continue
		}
		return nil
	}

	return fmt.Errorf("all email providers failed: %w", lastErr)
}
