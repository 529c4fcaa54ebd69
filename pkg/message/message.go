// Package message defines the data contract between a chat channel and the
// command handler.
package message

import "time"

// ChatType indicates the kind of conversation.
type ChatType string

const (
	// ChatDM is a direct (one-to-one) conversation.
	ChatDM ChatType = "dm"
	// ChatGroup is a multi-participant group conversation.
	ChatGroup ChatType = "group"
	// ChatBroadcast is a one-to-many broadcast channel.
	ChatBroadcast ChatType = "broadcast"
)

// Sender identifies the author of an inbound message.
type Sender struct {
	ID          int64  `json:"id"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// Chat identifies the conversation a message belongs to.
type Chat struct {
	ID    int64    `json:"id"`
	Type  ChatType `json:"type"`
	Title string   `json:"title,omitempty"`
}

// InboundMessage is a text message received from a channel.
type InboundMessage struct {
	ID        int       `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Channel   string    `json:"channel"`
	Sender    Sender    `json:"sender"`
	Chat      Chat      `json:"chat"`
	Text      string    `json:"text"`
}

// IsGroup reports whether the chat is a group conversation.
func (c Chat) IsGroup() bool {
	return c.Type == ChatGroup
}

// IsPrivate reports whether the chat is a direct conversation with one user.
func (c Chat) IsPrivate() bool {
	return c.Type == ChatDM
}
