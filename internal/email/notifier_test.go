package email

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abbasiconnect/api/internal/logging"
)

type stubNotifier struct {
	name    string
	sendErr error
	sent    []Message
}

func (n *stubNotifier) Name() string { return n.name }

func (n *stubNotifier) Send(_ context.Context, msg Message) error {
	if n.sendErr != nil {
		return n.sendErr
	}
	n.sent = append(n.sent, msg)
	return nil
}

func TestFallbackFirstProviderWins(t *testing.T) {
	primary := &stubNotifier{name: "brevo"}
	secondary := &stubNotifier{name: "resend"}
	chain := NewFallback(logging.NewLogger(true), primary, secondary)

	err := chain.Send(context.Background(), Message{To: "amir@example.com"})
	require.NoError(t, err)

	assert.Len(t, primary.sent, 1)
	assert.Empty(t, secondary.sent)
}

func TestFallbackUsesNextProvider(t *testing.T) {
	primary := &stubNotifier{name: "brevo", sendErr: errors.New("quota exceeded")}
	secondary := &stubNotifier{name: "resend"}
	chain := NewFallback(logging.NewLogger(true), primary, secondary)

	err := chain.Send(context.Background(), Message{To: "amir@example.com"})
	require.NoError(t, err)

	assert.Len(t, secondary.sent, 1)
}

func TestFallbackAllProvidersFail(t *testing.T) {
	primary := &stubNotifier{name: "brevo", sendErr: errors.New("quota exceeded")}
	secondary := &stubNotifier{name: "resend", sendErr: errors.New("bad api key")}
	chain := NewFallback(logging.NewLogger(true), primary, secondary)

	err := chain.Send(context.Background(), Message{To: "amir@example.com"})
	require.Error(t, err)
	// The last provider's error is preserved.
	assert.Contains(t, err.Error(), "bad api key")
}

func TestFallbackNoProviders(t *testing.T) {
	chain := NewFallback(logging.NewLogger(true))

	err := chain.Send(context.Background(), Message{To: "amir@example.com"})
	assert.ErrorIs(t, err, ErrNoProviderConfigured)
}

func TestSendOTPEmail(t *testing.T) {
	sink := &stubNotifier{name: "stub"}
	service := NewServiceWithNotifier(sink, logging.NewLogger(true))

	err := service.SendOTPEmail(context.Background(), "amir@example.com", "482916", 10*time.Minute)
	require.NoError(t, err)

	require.Len(t, sink.sent, 1)
	msg := sink.sent[0]
	assert.Equal(t, "amir@example.com", msg.To)
	assert.Contains(t, msg.Subject, "Verification Code")
	assert.Contains(t, msg.HTML, "482916")
	assert.Contains(t, msg.HTML, "10 minutes")
}
