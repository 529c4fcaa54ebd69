package telegram

import (
	"context"
	"fmt"

	"github.com/flemzord/tgupload/internal/upload"
)

var _ upload.Messenger = (*Telegram)(nil)

// SendText implements upload.Messenger. Link previews are disabled so that
// index pages stay compact.
func (t *Telegram) SendText(ctx context.Context, chatID int64, html string) (int, error) {
	msg, err := t.client.SendMessage(ctx, SendMessageRequest{
		ChatID:                chatID,
		Text:                  html,
		ParseMode:             ParseModeHTML,
		DisableWebPagePreview: true,
	})
	if err != nil {
		return 0, err
	}
	return msg.MessageID, nil
}

// EditText implements upload.Messenger.
func (t *Telegram) EditText(ctx context.Context, chatID int64, messageID int, html string) error {
	_, err := t.client.EditMessageText(ctx, EditMessageTextRequest{
		ChatID:                chatID,
		MessageID:             messageID,
		Text:                  html,
		ParseMode:             ParseModeHTML,
		DisableWebPagePreview: true,
	})
	return err
}

// DeleteMessage implements upload.Messenger.
func (t *Telegram) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	return t.client.DeleteMessage(ctx, chatID, messageID)
}

// PinMessage implements upload.Messenger. Pins are silent.
func (t *Telegram) PinMessage(ctx context.Context, chatID int64, messageID int) error {
	return t.client.PinChatMessage(ctx, PinChatMessageRequest{
		ChatID:              chatID,
		MessageID:           messageID,
		DisableNotification: true,
	})
}

// UnpinMessage implements upload.Messenger.
func (t *Telegram) UnpinMessage(ctx context.Context, chatID int64, messageID int) error {
	return t.client.UnpinChatMessage(ctx, chatID, messageID)
}

// SendDocument implements upload.Messenger.
func (t *Telegram) SendDocument(ctx context.Context, chatID int64, doc upload.Document) (int, error) {
	msg, err := t.client.SendDocument(ctx, SendDocumentRequest{
		ChatID:    chatID,
		Path:      doc.Path,
		FileName:  doc.Name,
		Caption:   doc.Caption,
		ParseMode: ParseModeHTML,
	})
	if err != nil {
		return 0, err
	}
	return msg.MessageID, nil
}

// ResolveChat implements upload.Messenger. Any getChat failure means the
// bot cannot write to the chat.
func (t *Telegram) ResolveChat(ctx context.Context, chatID int64) (upload.Kind, error) {
	chat, err := t.client.GetChat(ctx, chatID)
	if err != nil {
		return 0, fmt.Errorf("%w: chat %d: %w", upload.ErrDestinationUnreachable, chatID, err)
	}
	if chat.Type == ChatTypePrivate {
		return upload.KindPrivate, nil
	}
	return upload.KindGroup, nil
}
