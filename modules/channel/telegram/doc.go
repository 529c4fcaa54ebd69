// Package telegram implements the Telegram Bot API channel for tgupload.
//
// It long-polls getUpdates, converts text messages from allowed users into
// message.InboundMessage values, and exposes the chat operations the
// upload pipeline drives: sending and editing HTML messages, pinning,
// deleting, resolving chats, and streaming local files as documents.
//
// The module registers itself as "channel.telegram" via init() and
// implements the lifecycle Configure → Provision → Validate → Start → Stop.
//
// No external Telegram library is used: the module talks to the Bot API
// through net/http, encoding/json and mime/multipart. The client never
// retries; callers pace their requests.
package telegram
