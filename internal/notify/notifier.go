package notify

import "context"

// Channel delivers a text message to a phone number.
type Channel interface {
	Send(ctx context.Context, phone, message string) error
}
