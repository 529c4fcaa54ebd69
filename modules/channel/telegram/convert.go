package telegram

import (
	"errors"
	"strings"
	"time"

	"github.com/flemzord/tgupload/pkg/message"
)

var (
	errNoMessage = errors.New("update carries no message")
	errNoSender  = errors.New("message has no sender")
	errNoText    = errors.New("message has no text")
)

// convertInbound maps a Telegram update to an InboundMessage. Only new text
// messages with a sender are accepted.
func convertInbound(update *Update, channelName string) (message.InboundMessage, error) {
	msg := update.Message
	if msg == nil {
		return message.InboundMessage{}, errNoMessage
	}
	if msg.From == nil {
		return message.InboundMessage{}, errNoSender
	}
	if strings.TrimSpace(msg.Text) == "" {
		return message.InboundMessage{}, errNoText
	}

	return message.InboundMessage{
		ID:        msg.MessageID,
		Timestamp: time.Unix(int64(msg.Date), 0).UTC(),
		Channel:   channelName,
		Sender: message.Sender{
			ID:          msg.From.ID,
			Username:    msg.From.Username,
			DisplayName: displayName(msg.From),
		},
		Chat: message.Chat{
			ID:    msg.Chat.ID,
			Type:  chatType(msg.Chat.Type),
			Title: msg.Chat.Title,
		},
		Text: msg.Text,
	}, nil
}

func displayName(u *User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

func chatType(t string) message.ChatType {
	switch t {
	case ChatTypePrivate:
		return message.ChatDM
	case ChatTypeChannel:
		return message.ChatBroadcast
	default:
		return message.ChatGroup
	}
}
