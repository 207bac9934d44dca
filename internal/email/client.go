// Package email defines the interface for notification delivery and provides
// a Resend-backed implementation.
package email

import (
	"context"
	"errors"
)

// ErrDeliveryFailed wraps every rejection or transport failure from the
// provider. Callers match it with errors.Is.
var ErrDeliveryFailed = errors.New("email: delivery failed")

// Payload is a fully rendered message. HTML and Text carry the same content so
// clients without markup support still get everything.
type Payload struct {
	Subject string
	HTML    string
	Text    string
}

// Receipt identifies an accepted message.
type Receipt struct {
	ProviderID string // Resend's message id
	Recipient  string
}

// Sender is the interface the digest pipeline uses to deliver a payload.
// Tests inject a stub that records calls without hitting the network.
type Sender interface {
	// Send makes exactly one delivery attempt. The recipient is assumed to
	// have been validated by the caller.
	Send(ctx context.Context, p Payload, to string) (Receipt, error)
}
