// Package bot turns authorized chat commands into queued upload jobs.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/flemzord/tgupload/internal/router"
	"github.com/flemzord/tgupload/internal/upload"
	"github.com/flemzord/tgupload/pkg/message"
)

const replyTimeout = 30 * time.Second

// Reply texts, sent as plain text.
const (
	HelpText = "Hello! I can help you upload your local files to here.\n" +
		"Syntax: /upload <path>\n" +
		"Examples: /upload /home/user/Pictures/\n" +
		"Or /upload /home/user/Pictures/image.jpg"
	MissingPathText   = "Please provide a file/folder path."
	MissingTargetText = "Please provide a chat id and a file/folder path.\nSyntax: /to <chatId> <path>"
	QueueFullText     = "Too many uploads are queued. Try again later."
)

// Uploader runs one upload invocation.
type Uploader interface {
	Run(ctx context.Context, req upload.Request) (upload.Result, error)
}

// Queue accepts jobs for asynchronous execution.
type Queue interface {
	Submit(job router.Job) error
}

// Config groups the handler dependencies.
type Config struct {
	// Messenger sends direct replies to commands.
	Messenger upload.Messenger

	Uploader Uploader
	Queue    Queue

	// BotUsername returns the bot's username, used to accept
	// "/upload@name" forms. Optional.
	BotUsername func() string

	Logger *slog.Logger
}

// Handler dispatches inbound messages. Its Handle method is the channel
// inbox callback; callers have already passed the allow list.
type Handler struct {
	cfg    Config
	logger *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.BotUsername == nil {
		cfg.BotUsername = func() string { return "" }
	}
	return &Handler{cfg: cfg, logger: cfg.Logger.With("component", "bot")}
}

// Handle processes one message. Unknown commands and plain text are
// ignored. Upload commands are queued and Handle returns immediately.
func (h *Handler) Handle(msg message.InboundMessage) error {
	name, args, ok := parseCommand(msg.Text, h.cfg.BotUsername())
	if !ok {
		return nil
	}

	origin := upload.Destination{ChatID: msg.Chat.ID, Kind: kindOf(msg.Chat)}
	logger := h.logger.With("command", name, "chat_id", origin.ChatID, "sender", msg.Sender.ID)

	switch name {
	case "start":
		return h.reply(origin.ChatID, HelpText)
	case "upload":
		if args == "" {
			return h.reply(origin.ChatID, MissingPathText)
		}
		return h.enqueue(logger, upload.Request{Origin: origin, Path: args})
	case "folder":
		if args == "" {
			return h.reply(origin.ChatID, MissingPathText)
		}
		return h.enqueue(logger, upload.Request{Origin: origin, Path: args, FolderOnly: true})
	case "to":
		rawID, path := splitTarget(args)
		target, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil || target == 0 || path == "" {
			return h.reply(origin.ChatID, MissingTargetText)
		}
		return h.enqueue(logger, upload.Request{Origin: origin, Target: target, Path: path})
	default:
		logger.Debug("unknown command ignored")
		return nil
	}
}

// enqueue wraps the request in a router job. The lane is the chat the
// upload writes to.
func (h *Handler) enqueue(logger *slog.Logger, req upload.Request) error {
	req.JobID = uuid.NewString()
	lane := req.Origin.ChatID
	if req.Target != 0 {
		lane = req.Target
	}

	err := h.cfg.Queue.Submit(router.Job{
		ID:   req.JobID,
		Lane: lane,
		Path: req.Path,
		Run: func(ctx context.Context) error {
			_, err := h.cfg.Uploader.Run(ctx, req)
			return err
		},
	})
	switch {
	case errors.Is(err, router.ErrInboxFull):
		return h.reply(req.Origin.ChatID, QueueFullText)
	case err != nil:
		return fmt.Errorf("bot: queue upload: %w", err)
	}

	logger.Info("upload queued", "job", req.JobID, "path", req.Path, "lane", lane)
	return nil
}

// reply sends plain text, escaped for the HTML parse mode.
func (h *Handler) reply(chatID int64, text string) error {
	ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
	defer cancel()
	if _, err := h.cfg.Messenger.SendText(ctx, chatID, upload.Sanitize(text)); err != nil {
		return fmt.Errorf("bot: reply: %w", err)
	}
	return nil
}

func kindOf(chat message.Chat) upload.Kind {
	if chat.IsPrivate() {
		return upload.KindPrivate
	}
	return upload.KindGroup
}
