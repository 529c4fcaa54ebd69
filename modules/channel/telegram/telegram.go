package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flemzord/tgupload/internal/channel"
	"github.com/flemzord/tgupload/internal/core"
	"github.com/flemzord/tgupload/internal/security"
	"github.com/flemzord/tgupload/pkg/message"
	"gopkg.in/yaml.v3"
)

// ServiceName is the service registry key under which the module
// publishes itself as the upload messenger.
const ServiceName = "upload.messenger"

func init() {
	core.RegisterModule(&Telegram{})
}

// Compile-time interface guards.
var (
	_ channel.Channel   = (*Telegram)(nil)
	_ core.Configurable = (*Telegram)(nil)
	_ core.Provisioner  = (*Telegram)(nil)
	_ core.Validator    = (*Telegram)(nil)
	_ core.Starter      = (*Telegram)(nil)
	_ core.Stopper      = (*Telegram)(nil)
)

// Telegram implements the Telegram Bot API channel for tgupload.
type Telegram struct {
	config    Config
	client    *Client
	logger    *slog.Logger
	allowList *channel.AllowList
	inbox     func(message.InboundMessage) error
	commands  []BotCommand
	botUser   *User
	poller    *Poller
}

// ModuleInfo implements core.Module.
func (t *Telegram) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "channel.telegram",
		New: func() core.Module { return &Telegram{} },
	}
}

// Configure implements core.Configurable.
func (t *Telegram) Configure(node *yaml.Node) error {
	if err := node.Decode(&t.config); err != nil {
		return fmt.Errorf("telegram: decode config: %w", err)
	}
	t.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (t *Telegram) Provision(ctx *core.AppContext) error {
	t.config.defaults()
	t.logger = ctx.Logger
	t.client = NewClient(t.config.Token, t.config.APIURL)
	t.allowList = channel.NewAllowList(t.config.users()...)
	if svc, ok := ctx.Service(security.ServiceName); ok {
		if r, ok := svc.(*security.Redactor); ok {
			r.AddLiteral(t.config.Token)
		}
	}
	ctx.RegisterService(ServiceName, t)
	return nil
}

// Validate implements core.Validator.
func (t *Telegram) Validate() error {
	return t.config.validate()
}

// SetInbox implements channel.Channel.
func (t *Telegram) SetInbox(fn func(msg message.InboundMessage) error) {
	t.inbox = fn
}

// SetCommands sets the command menu published on Start.
func (t *Telegram) SetCommands(commands []BotCommand) {
	t.commands = commands
}

// APIURL returns the Bot API root the client talks to.
func (t *Telegram) APIURL() string {
	return t.config.APIURL
}

// AdminID returns the configured administrator id.
func (t *Telegram) AdminID() int64 {
	return t.config.AdminID
}

// BotUsername returns the authenticated bot's username, empty before Start.
func (t *Telegram) BotUsername() string {
	if t.botUser == nil {
		return ""
	}
	return t.botUser.Username
}

// Start implements core.Starter. It validates the bot token, publishes the
// command menu, then starts long polling.
func (t *Telegram) Start() error {
	if t.inbox == nil {
		return errors.New("telegram: inbox not set, call SetInbox before Start")
	}

	ctx := context.Background()
	user, err := t.client.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("telegram: getMe failed (check token): %w", err)
	}
	t.botUser = user
	t.logger.Info("telegram bot authenticated",
		"id", user.ID,
		"username", user.Username,
		"allowed_users", t.allowList.Len(),
	)

	if *t.config.RegisterCommands && len(t.commands) > 0 {
		if err := t.client.SetMyCommands(ctx, t.commands); err != nil {
			t.logger.Warn("telegram: setMyCommands failed", "error", err)
		}
	}

	t.poller = NewPoller(
		t.client, t.inbox, t.allowList, t.logger,
		string(t.ModuleInfo().ID), t.config,
	)
	t.poller.Start()
	t.logger.Info("telegram polling started",
		"timeout", t.config.PollingTimeout,
	)
	return nil
}

// Stop implements core.Stopper.
func (t *Telegram) Stop(_ context.Context) error {
	t.logger.Info("telegram channel stopping")
	if t.poller != nil {
		t.poller.Stop()
	}
	return nil
}
