package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/flemzord/tgupload/internal/bot"
	"github.com/flemzord/tgupload/internal/config"
	"github.com/flemzord/tgupload/internal/core"
	"github.com/flemzord/tgupload/internal/cron"
	"github.com/flemzord/tgupload/internal/journal"
	"github.com/flemzord/tgupload/internal/router"
	"github.com/flemzord/tgupload/internal/upload"
	"github.com/flemzord/tgupload/modules/channel/telegram"
)

const telegramModuleID = "channel.telegram"

// routerModule wraps a *router.Router to satisfy core.Module, core.Starter,
// and core.Stopper, so the router participates in the App lifecycle.
type routerModule struct {
	router *router.Router
	ctx    context.Context
}

func (m *routerModule) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{ID: "upload.router"}
}

func (m *routerModule) Start() error {
	m.router.Start(m.ctx)
	return nil
}

func (m *routerModule) Stop(ctx context.Context) error {
	m.router.Stop(ctx)
	return nil
}

// wireUpload builds the pipeline, the job router, the command handler and
// the journal retention job, connects them to the Telegram channel, and
// appends the router and the scheduler to the app lifecycle. Must be called
// after LoadModules and before Start.
func wireUpload(app *core.App, appCtx *core.AppContext, cfg *config.Config, logger *slog.Logger) error {
	mod, ok := app.Module(telegramModuleID)
	if !ok {
		return fmt.Errorf("app: module %s is not loaded", telegramModuleID)
	}
	tg, ok := mod.(*telegram.Telegram)
	if !ok {
		return fmt.Errorf("app: module %s has unexpected type %T", telegramModuleID, mod)
	}

	store := resolveJournal(appCtx, logger)

	pipeline := upload.NewPipeline(upload.PipelineConfig{
		Config: upload.Config{
			SizeLimit:     upload.SizeLimit(tg.APIURL(), cfg.Upload.MaxFileSize),
			PrivateDelay:  cfg.Upload.PrivateDelay,
			GroupDelay:    cfg.Upload.GroupDelay,
			LinkHost:      cfg.Upload.LinkHost,
			Exclude:       cfg.Upload.Exclude,
			IndexPageSize: cfg.Upload.IndexPageSize,
		},
		Messenger: tg,
		Journal:   store,
		Logger:    logger.With("component", "upload"),
	})

	r := router.NewRouter(router.Config{
		WorkerCount: cfg.Upload.Workers,
		InboxSize:   cfg.Upload.QueueSize,
		Logger:      logger.With("component", "router"),
	})
	appCtx.RegisterService(router.ServiceName, r)

	handler := bot.NewHandler(bot.Config{
		Messenger:   tg,
		Uploader:    pipeline,
		Queue:       r,
		BotUsername: tg.BotUsername,
		Logger:      logger.With("component", "bot"),
	})
	tg.SetInbox(handler.Handle)
	tg.SetCommands(commandMenu())

	app.Append(&routerModule{router: r, ctx: context.Background()})

	scheduler := cron.NewScheduler(logger.With("component", "cron"))
	if err := scheduler.RegisterJob(&cron.JournalPruneJob{
		Store:        store,
		Retention:    cfg.Journal.Retention,
		ScheduleExpr: cfg.Journal.PruneSchedule,
		Logger:       logger.With("component", "cron"),
	}); err != nil {
		return fmt.Errorf("app: register journal retention: %w", err)
	}
	app.Append(scheduler)

	logger.Info("upload pipeline wired",
		"size_limit", pipeline.SizeLimit(),
		"workers", cfg.Upload.Workers,
		"queue_size", cfg.Upload.QueueSize,
	)
	return nil
}

// resolveJournal returns the journal published by a storage module, or an
// in-memory one registered in its place.
func resolveJournal(appCtx *core.AppContext, logger *slog.Logger) journal.Store {
	if svc, ok := appCtx.Service(journal.ServiceName); ok {
		if store, ok := svc.(journal.Store); ok {
			return store
		}
	}
	logger.Warn("no journal module configured, upload history is kept in memory")
	store := journal.NewMemory()
	appCtx.RegisterService(journal.ServiceName, store)
	return store
}

func commandMenu() []telegram.BotCommand {
	cmds := bot.Commands()
	menu := make([]telegram.BotCommand, len(cmds))
	for i, c := range cmds {
		menu[i] = telegram.BotCommand{Command: c.Name, Description: c.Description}
	}
	return menu
}
