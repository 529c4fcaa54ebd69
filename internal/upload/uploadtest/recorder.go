// Package uploadtest provides a recording upload.Messenger for tests.
package uploadtest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/flemzord/tgupload/internal/upload"
)

// Operation names recorded by Recorder.
const (
	OpSend     = "send"
	OpEdit     = "edit"
	OpDelete   = "delete"
	OpPin      = "pin"
	OpUnpin    = "unpin"
	OpDocument = "document"
	OpResolve  = "resolve"
)

// Call is one recorded Messenger call.
type Call struct {
	Op        string
	ChatID    int64
	MessageID int
	Text      string
	Doc       upload.Document

	// Err is set on document calls that failed.
	Err error
}

// Recorder records every call and returns increasing message ids,
// starting at 100.
type Recorder struct {
	mu     sync.Mutex
	calls  []Call
	nextID int

	// Chats lists the chats ResolveChat can reach.
	Chats map[int64]upload.Kind

	// FailDocuments makes SendDocument fail for the given file names.
	FailDocuments map[string]error

	// PinErr and UnpinErr are returned by PinMessage and UnpinMessage.
	PinErr   error
	UnpinErr error

	// OnDocument runs after each successful SendDocument.
	OnDocument func(doc upload.Document)
}

var _ upload.Messenger = (*Recorder)(nil)

// New creates an empty Recorder.
func New() *Recorder {
	return &Recorder{
		nextID:        100,
		Chats:         make(map[int64]upload.Kind),
		FailDocuments: make(map[string]error),
	}
}

func (r *Recorder) add(c Call) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.Op == OpSend || c.Op == OpDocument {
		c.MessageID = r.nextID
		r.nextID++
	}
	r.calls = append(r.calls, c)
	return c.MessageID
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Filter returns the recorded calls of one operation.
func (r *Recorder) Filter(op string) []Call {
	var out []Call
	for _, c := range r.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Texts returns the bodies of all sent messages in order.
func (r *Recorder) Texts() []string {
	var out []string
	for _, c := range r.Filter(OpSend) {
		out = append(out, c.Text)
	}
	return out
}

// SendText implements upload.Messenger.
func (r *Recorder) SendText(_ context.Context, chatID int64, html string) (int, error) {
	return r.add(Call{Op: OpSend, ChatID: chatID, Text: html}), nil
}

// EditText implements upload.Messenger.
func (r *Recorder) EditText(_ context.Context, chatID int64, messageID int, html string) error {
	r.add(Call{Op: OpEdit, ChatID: chatID, MessageID: messageID, Text: html})
	return nil
}

// DeleteMessage implements upload.Messenger.
func (r *Recorder) DeleteMessage(_ context.Context, chatID int64, messageID int) error {
	r.add(Call{Op: OpDelete, ChatID: chatID, MessageID: messageID})
	return nil
}

// PinMessage implements upload.Messenger.
func (r *Recorder) PinMessage(_ context.Context, chatID int64, messageID int) error {
	r.add(Call{Op: OpPin, ChatID: chatID, MessageID: messageID})
	return r.PinErr
}

// UnpinMessage implements upload.Messenger.
func (r *Recorder) UnpinMessage(_ context.Context, chatID int64, messageID int) error {
	r.add(Call{Op: OpUnpin, ChatID: chatID, MessageID: messageID})
	return r.UnpinErr
}

// SendDocument implements upload.Messenger.
func (r *Recorder) SendDocument(_ context.Context, chatID int64, doc upload.Document) (int, error) {
	if err := r.FailDocuments[doc.Name]; err != nil {
		r.mu.Lock()
		r.calls = append(r.calls, Call{Op: OpDocument, ChatID: chatID, Doc: doc, Err: err})
		r.mu.Unlock()
		return 0, err
	}
	id := r.add(Call{Op: OpDocument, ChatID: chatID, Doc: doc})
	if r.OnDocument != nil {
		r.OnDocument(doc)
	}
	return id, nil
}

// ResolveChat implements upload.Messenger.
func (r *Recorder) ResolveChat(_ context.Context, chatID int64) (upload.Kind, error) {
	r.add(Call{Op: OpResolve, ChatID: chatID})
	kind, ok := r.Chats[chatID]
	if !ok {
		return 0, fmt.Errorf("getChat %d: %w", chatID, errors.New("Bad Request: chat not found"))
	}
	return kind, nil
}
