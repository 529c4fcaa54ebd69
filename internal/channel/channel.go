// Package channel defines the bridge between a messaging platform and the
// command handler, plus allow-list filtering of senders.
package channel

import (
	"github.com/flemzord/tgupload/internal/core"
	"github.com/flemzord/tgupload/pkg/message"
)

// Channel is the bridge between a messaging platform and the command handler.
//
// A channel receives messages from its platform, checks the allow-list, and
// pushes the accepted ones through the inbox callback. Messages from anyone
// else are dropped without a reply.
type Channel interface {
	core.Module

	// SetInbox gives the channel a function to push inbound messages to.
	// It is called during wiring, before Start().
	SetInbox(fn func(msg message.InboundMessage) error)
}
