package upload

import "context"

// Document is a local file sent as a Bot API document.
type Document struct {
	Path    string
	Name    string
	Caption string
}

// Messenger is the chat surface the pipeline drives. Text is always sent
// and edited with HTML formatting. Message ids are those of the chat the
// call targets.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, html string) (int, error)
	EditText(ctx context.Context, chatID int64, messageID int, html string) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	PinMessage(ctx context.Context, chatID int64, messageID int) error
	UnpinMessage(ctx context.Context, chatID int64, messageID int) error
	SendDocument(ctx context.Context, chatID int64, doc Document) (int, error)

	// ResolveChat checks that the bot can reach chatID and reports its kind.
	ResolveChat(ctx context.Context, chatID int64) (Kind, error)
}

// Destination is the chat an invocation writes to.
type Destination struct {
	ChatID int64
	Kind   Kind
}
