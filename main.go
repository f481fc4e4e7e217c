// taskchat - terminal client for the ADDit DOit task and chat service.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/taskchat-tui/internal/api"
	"github.com/jeranaias/taskchat-tui/internal/auth"
	"github.com/jeranaias/taskchat-tui/internal/cli"
	"github.com/jeranaias/taskchat-tui/internal/config"
	"github.com/jeranaias/taskchat-tui/internal/logging"
	"github.com/jeranaias/taskchat-tui/internal/storage"
	"github.com/jeranaias/taskchat-tui/internal/ui/app"
	"github.com/jeranaias/taskchat-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// credentialsDebounce lets an atomic credentials write settle before the
// TUI re-reads the file.
const credentialsDebounce = 150 * time.Millisecond

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse(os.Args[1:])

	// Help and version work even with a broken config.
	switch {
	case cmd == cli.CmdVersion:
		cli.PrintVersion(os.Stdout)
		return
	case cmd == cli.CmdHelp && args.Unknown == "":
		cli.PrintUsage(os.Stdout)
		return
	}

	var cfg *config.Config
	var err error
	if args.ConfigFile != "" {
		cfg, err = config.LoadFromPath(args.ConfigFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		if cfg == nil {
			cli.HandleErrorAndExit(err, args.JSON)
		}
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}

	logPath, err := cfg.LogPath()
	if err != nil {
		cli.HandleErrorAndExit(err, args.JSON)
	}
	log, err := logging.Init(logging.Options{
		Level:       cfg.Logging.Level,
		File:        logPath,
		Development: args.Verbose,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
		log = logging.L()
	}
	defer logging.Sync()

	if cmd == cli.CmdTUI {
		if err := runTUI(cfg, args, log); err != nil {
			logging.Sync()
			cli.HandleErrorAndExit(err, false)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	env, err := cli.NewEnv(cfg, args)
	if err == nil {
		log.Debug("running command", zap.Stringer("command", cmd))
		err = cli.Run(ctx, cmd, args, env)
	}
	if err != nil {
		log.Info("command failed", zap.Stringer("command", cmd), zap.Error(err))
		logging.Sync()
		cli.HandleErrorAndExit(err, args.JSON)
	}
}

// runTUI starts the full-screen interface.
func runTUI(cfg *config.Config, args cli.Args, log *zap.Logger) error {
	if err := cli.RequireTerminal("the interactive interface"); err != nil {
		return err
	}
	if args.Server != "" {
		cfg.Server.BaseURL = args.Server
	}

	credsPath, err := cfg.CredentialsPath()
	if err != nil {
		return err
	}
	store := auth.NewStore(credsPath)

	// A missing or expired session starts at the login screen.
	session, err := auth.Resolve(store, cfg.Auth.Token, time.Now())
	if err != nil && !auth.IsAuthError(err) {
		log.Warn("could not read credentials", zap.Error(err))
	}

	var history *storage.History
	if !cfg.Storage.Disabled {
		path, err := cfg.HistoryPath()
		if err == nil {
			history, err = storage.Open(path)
		}
		if err != nil {
			log.Warn("chat history unavailable", zap.Error(err))
			history = nil
		}
	}
	if history != nil {
		defer history.Close()
	}

	watcher, err := auth.NewWatcher(credsPath, credentialsDebounce)
	if err != nil {
		log.Warn("credentials watcher unavailable", zap.Error(err))
		watcher = nil
	}
	if watcher != nil {
		defer watcher.Close()
	}

	client := api.NewFromConfig(cfg, nil)
	defer client.Close()

	m := app.New(app.Options{
		Config:  cfg,
		Client:  client,
		Store:   store,
		Session: session,
		History: history,
		Watcher: watcher,
		Theme:   styles.NewTheme(cfg.UI.Theme),
	})
	defer m.Close()

	log.Info("starting tui", zap.String("server", cfg.Server.BaseURL), zap.Bool("logged_in", session != nil))

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
