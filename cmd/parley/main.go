package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/five82/parley/internal/app"
	"github.com/five82/parley/internal/config"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

type flags struct {
	configPath string
	prefsPath  string
	session    string
	url        string
	apiKey     string
	debug      bool
	initConfig bool
}

func run(args []string) int {
	var f flags
	flagSet := pflag.NewFlagSet("parley", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&f.configPath, "config", "", "config file (default ~/.config/parley/config.toml)")
	flagSet.StringVar(&f.prefsPath, "prefs", "", "preferences file (default ~/.config/parley/prefs.toml)")
	flagSet.StringVar(&f.session, "session", "", "session to open on start (overrides default_session)")
	flagSet.StringVar(&f.url, "url", "", "WAHA server URL (overrides config and "+config.EnvURL+")")
	flagSet.StringVar(&f.apiKey, "api-key", "", "WAHA API key (overrides config and "+config.EnvAPIKey+")")
	flagSet.BoolVar(&f.debug, "debug", false, "write debug records to the log file")
	flagSet.BoolVar(&f.initConfig, "init", false, "write a config file from the current settings and exit")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return 0
		}
		fmt.Fprintf(os.Stderr, "parley: %v\n", err)
		return 2
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return 0
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		fmt.Fprintf(os.Stderr, "parley: unexpected argument: %s\n", rest[0])
		return 2
	}

	cfg, err := config.Load(f.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parley: %v\n", err)
		return 1
	}
	if f.url != "" {
		cfg.WAHAURL = f.url
	}
	if f.apiKey != "" {
		cfg.APIKey = f.apiKey
	}

	if f.initConfig {
		return writeConfig(f.configPath, cfg)
	}

	logger, closeLog, err := openLogger(cfg.LogFile, f.debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parley: %v\n", err)
		return 1
	}
	defer closeLog()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		Config:    cfg,
		PrefsPath: f.prefsPath,
		Session:   f.session,
		Logger:    logger,
	}
	if err := app.Run(ctx, opts); err != nil {
		logger.Error("parley exited", "error", err)
		fmt.Fprintf(os.Stderr, "parley: %v\n", err)
		return 1
	}
	return 0
}

func writeConfig(path string, cfg config.Config) int {
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "parley: %v\n", err)
		return 1
	}
	if path == "" {
		path = config.DefaultPath()
	}
	if err := config.Save(path, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "parley: %v\n", err)
		return 1
	}
	fmt.Printf("wrote %s\n", path)
	return 0
}

// openLogger writes JSON records to path. The terminal belongs to the TUI,
// so nothing is logged to stderr.
func openLogger(path string, debug bool) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	if path == "" {
		return slog.New(slog.NewJSONHandler(io.Discard, nil)), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level}))
	return logger, func() { _ = file.Close() }, nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `parley is a terminal client for WhatsApp through a WAHA server.

Usage:
  parley [flags]

The server URL and API key come from the config file, then from the
%s and %s environment variables, then from --url and --api-key.
Run parley --init --url ... --api-key ... once to write a config file.

Flags:
%s`, config.EnvURL, config.EnvAPIKey, flagSet.FlagUsages())
}
