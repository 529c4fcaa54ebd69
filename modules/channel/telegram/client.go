package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
	"time"
)

const (
	// requestTimeout bounds JSON calls, long polls included (timeout ≤ 50s).
	requestTimeout   = 75 * time.Second
	maxResponseBytes = 10 << 20 // 10 MiB
)

// ParseModeHTML selects HTML formatting for text and captions.
const ParseModeHTML = "HTML"

// Client is a thin HTTP wrapper around the Telegram Bot API.
// It performs no retries.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient creates a new Telegram Bot API client. The HTTP client has no
// global timeout so that large document uploads are bounded by their
// context only.
func NewClient(token, baseURL string) *Client {
	return &Client{
		token:   token,
		baseURL: baseURL,
		http:    &http.Client{},
	}
}

func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
}

// do sends a JSON POST request to the given Bot API method and decodes the response.
func do[T any](ctx context.Context, c *Client, method string, payload any) (*T, error) {
	var body io.Reader
	contentType := ""
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("telegram: marshal %s request: %w", method, err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	return send[T](ctx, c, method, body, contentType)
}

// send posts body to method and decodes the Bot API envelope.
func send[T any](ctx context.Context, c *Client, method string, body io.Reader, contentType string) (*T, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(method), body)
	if err != nil {
		return nil, fmt.Errorf("telegram: create %s request: %w", method, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// The error embeds the token-bearing URL; logs go through the
		// redacting handler.
		return nil, fmt.Errorf("telegram: %s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("telegram: read %s response: %w", method, err)
	}

	var apiResp APIResponse[T]
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("telegram: decode %s response (HTTP %d): %w", method, resp.StatusCode, err)
	}
	if !apiResp.OK {
		apiErr := &APIError{
			Code:        apiResp.ErrorCode,
			Description: apiResp.Description,
		}
		if apiResp.Parameters != nil {
			apiErr.RetryAfter = apiResp.Parameters.RetryAfter
		}
		return nil, apiErr
	}
	return &apiResp.Result, nil
}

// GetUpdatesRequest is the request body for the getUpdates method.
type GetUpdatesRequest struct {
	Offset         int      `json:"offset,omitempty"`
	Limit          int      `json:"limit,omitempty"`
	Timeout        int      `json:"timeout,omitempty"`
	AllowedUpdates []string `json:"allowed_updates,omitempty"`
}

// SendMessageRequest is the request body for the sendMessage method.
type SendMessageRequest struct {
	ChatID                int64  `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview,omitempty"`
	DisableNotification   bool   `json:"disable_notification,omitempty"`
	ReplyToMessageID      int    `json:"reply_to_message_id,omitempty"`
}

// EditMessageTextRequest is the request body for the editMessageText method.
type EditMessageTextRequest struct {
	ChatID                int64  `json:"chat_id"`
	MessageID             int    `json:"message_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview,omitempty"`
}

// messageRef addresses one message; used by deleteMessage and unpinChatMessage.
type messageRef struct {
	ChatID    int64 `json:"chat_id"`
	MessageID int   `json:"message_id"`
}

// PinChatMessageRequest is the request body for the pinChatMessage method.
type PinChatMessageRequest struct {
	ChatID              int64 `json:"chat_id"`
	MessageID           int   `json:"message_id"`
	DisableNotification bool  `json:"disable_notification,omitempty"`
}

// SendDocumentRequest describes a local file sent through sendDocument.
type SendDocumentRequest struct {
	ChatID              int64
	Path                string
	FileName            string
	Caption             string
	ParseMode           string
	DisableNotification bool
}

type getChatRequest struct {
	ChatID int64 `json:"chat_id"`
}

type setMyCommandsRequest struct {
	Commands []BotCommand `json:"commands"`
}

// GetMe returns the bot's user information.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	return do[User](ctx, c, "getMe", nil)
}

// GetUpdates fetches incoming updates using long polling.
func (c *Client) GetUpdates(ctx context.Context, req GetUpdatesRequest) ([]Update, error) {
	result, err := do[[]Update](ctx, c, "getUpdates", req)
	if err != nil {
		return nil, err
	}
	return *result, nil
}

// SendMessage sends a text message to the specified chat.
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (*Message, error) {
	return do[Message](ctx, c, "sendMessage", req)
}

// EditMessageText edits the text of a previously sent message.
func (c *Client) EditMessageText(ctx context.Context, req EditMessageTextRequest) (*Message, error) {
	return do[Message](ctx, c, "editMessageText", req)
}

// DeleteMessage deletes a message.
func (c *Client) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	_, err := do[bool](ctx, c, "deleteMessage", messageRef{ChatID: chatID, MessageID: messageID})
	return err
}

// PinChatMessage pins a message in a chat.
func (c *Client) PinChatMessage(ctx context.Context, req PinChatMessageRequest) error {
	_, err := do[bool](ctx, c, "pinChatMessage", req)
	return err
}

// UnpinChatMessage unpins one message of a chat.
func (c *Client) UnpinChatMessage(ctx context.Context, chatID int64, messageID int) error {
	_, err := do[bool](ctx, c, "unpinChatMessage", messageRef{ChatID: chatID, MessageID: messageID})
	return err
}

// GetChat returns up-to-date information about a chat the bot can access.
func (c *Client) GetChat(ctx context.Context, chatID int64) (*Chat, error) {
	return do[Chat](ctx, c, "getChat", getChatRequest{ChatID: chatID})
}

// SetMyCommands replaces the bot's command menu.
func (c *Client) SetMyCommands(ctx context.Context, commands []BotCommand) error {
	_, err := do[bool](ctx, c, "setMyCommands", setMyCommandsRequest{Commands: commands})
	return err
}

// SendDocument streams a local file as a multipart sendDocument request.
// The file is opened before the request starts, so a missing file fails
// without any network traffic.
func (c *Client) SendDocument(ctx context.Context, req SendDocumentRequest) (*Message, error) {
	f, err := os.Open(req.Path)
	if err != nil {
		return nil, fmt.Errorf("telegram: open document: %w", err)
	}
	defer f.Close()

	name := req.FileName
	if name == "" {
		name = f.Name()
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeDocumentForm(mw, req, name, f))
	}()
	defer pr.Close()

	return send[Message](ctx, c, "sendDocument", pr, mw.FormDataContentType())
}

// writeDocumentForm writes the sendDocument form fields followed by the
// file part and closes the multipart writer.
func writeDocumentForm(mw *multipart.Writer, req SendDocumentRequest, name string, file io.Reader) error {
	fields := [][2]string{
		{"chat_id", strconv.FormatInt(req.ChatID, 10)},
	}
	if req.Caption != "" {
		fields = append(fields, [2]string{"caption", req.Caption})
	}
	if req.ParseMode != "" {
		fields = append(fields, [2]string{"parse_mode", req.ParseMode})
	}
	if req.DisableNotification {
		fields = append(fields, [2]string{"disable_notification", "true"})
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return fmt.Errorf("telegram: write %s field: %w", f[0], err)
		}
	}

	part, err := mw.CreateFormFile("document", name)
	if err != nil {
		return fmt.Errorf("telegram: create document part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("telegram: stream document: %w", err)
	}
	return mw.Close()
}
