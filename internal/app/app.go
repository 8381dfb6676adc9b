package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/five82/parley/internal/config"
	"github.com/five82/parley/internal/poller"
	"github.com/five82/parley/internal/prefs"
	"github.com/five82/parley/internal/state"
	"github.com/five82/parley/internal/ui"
	"github.com/five82/parley/internal/waha"
)

// Options configure the parley application.
type Options struct {
	Config    config.Config
	PrefsPath string // empty uses default ~/.config/parley/prefs.toml
	Session   string // overrides Config.DefaultSession
	Logger    *slog.Logger
}

// Run boots the parley TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs, err := prefs.Load(prefsPath)
	if err != nil {
		logger.Warn("using default preferences", "error", err)
	}

	client, err := waha.NewClient(cfg.WAHAURL, cfg.APIKey, logger.With("component", "waha"))
	if err != nil {
		return fmt.Errorf("init waha client: %w", err)
	}

	store := state.New()

	preferred := opts.Session
	if preferred == "" {
		preferred = cfg.DefaultSession
	}
	session, err := bootstrap(ctx, store, client, preferred, logger)
	if err != nil {
		return err
	}

	scheduler := poller.New(store, client, poller.Options{
		ChatsInterval:    cfg.ChatsPollInterval,
		MessagesInterval: cfg.MessagesPollInterval,
		Logger:           logger,
	})
	defer scheduler.Stop()

	if session != "" {
		scheduler.Start(ctx, session)
	}

	logger.Info("starting ui", "session", session, "url", cfg.WAHAURL)
	return ui.Run(ui.Options{
		Context:   ctx,
		Client:    client,
		Store:     store,
		Scheduler: scheduler,
		Config:    cfg,
		Prefs:     userPrefs,
		PrefsPath: prefsPath,
		Logger:    logger,
	})
}
