package delivery

import (
	"context"
)

// Sender delivers one message to one address over a channel. The
// WhatsApp channel has no subject concept and ignores it.
type Sender interface {
	Send(ctx context.Context, address, subject, message string) error
}
