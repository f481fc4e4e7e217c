// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/jeranaias/taskchat-tui/internal/api"
	"github.com/jeranaias/taskchat-tui/internal/auth"
	"github.com/jeranaias/taskchat-tui/internal/config"
	"github.com/jeranaias/taskchat-tui/internal/logging"
	"github.com/jeranaias/taskchat-tui/internal/storage"
)

// Env is what every command runs against. Tests build one by hand with
// buffers and an httptest backend.
type Env struct {
	Config *config.Config
	// ConfigPath is the file `config set` edits.
	ConfigPath string
	Client     *api.Client
	Store      *auth.Store

	In  io.Reader
	Out io.Writer
	Err io.Writer

	// Color enables styled and highlighted output.
	Color bool
	// Interactive is true when prompts can be shown.
	Interactive bool

	Now func() time.Time
	// ReadPassword reads a secret without echo.
	ReadPassword func(prompt string) (string, error)
	// OpenHistory opens the local chat history. It returns nil, nil when
	// history is disabled.
	OpenHistory func() (*storage.History, error)

	Log *zap.Logger

	reader *bufio.Reader
}

// NewEnv wires an Env to the real terminal.
func NewEnv(cfg *config.Config, args Args) (*Env, error) {
	if args.Server != "" {
		cfg.Server.BaseURL = args.Server
	}

	credsPath, err := cfg.CredentialsPath()
	if err != nil {
		return nil, err
	}
	configPath := args.ConfigFile
	if configPath == "" {
		if configPath, err = config.ConfigPathTOML(); err != nil {
			return nil, err
		}
	}

	env := &Env{
		Config:      cfg,
		ConfigPath:  configPath,
		Client:      api.NewFromConfig(cfg, nil),
		Store:       auth.NewStore(credsPath),
		In:          os.Stdin,
		Out:         os.Stdout,
		Err:         os.Stderr,
		Color:       ColorsEnabled(),
		Interactive: CanPrompt(),
		Now:         time.Now,
		Log:         logging.L().Named("cli"),
	}
	env.ReadPassword = env.readPasswordTerminal
	env.OpenHistory = func() (*storage.History, error) {
		if cfg.Storage.Disabled {
			return nil, nil
		}
		path, err := cfg.HistoryPath()
		if err != nil {
			return nil, err
		}
		return storage.Open(path)
	}
	return env, nil
}

// Session resolves the current login through the guard.
func (e *Env) Session() (*auth.Session, error) {
	return auth.Resolve(e.Store, e.Config.Auth.Token, e.Now())
}

// AuthedClient returns a client carrying the current session's token.
func (e *Env) AuthedClient() (*api.Client, *auth.Session, error) {
	session, err := e.Session()
	if err != nil {
		return nil, nil, err
	}
	return e.Client.WithTokens(session), session, nil
}

// Prompt prints prompt on Err and reads one line from In.
func (e *Env) Prompt(prompt string) (string, error) {
	fmt.Fprint(e.Err, prompt)
	if e.reader == nil {
		e.reader = bufio.NewReader(e.In)
	}
	line, err := e.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Confirm asks a yes/no question. Anything but y/yes is no.
func (e *Env) Confirm(question string) (bool, error) {
	answer, err := e.Prompt(question + " [y/N]: ")
	if err != nil {
		return false, err
	}
	ok, err := ParseBoolString(answer)
	return ok && err == nil, nil
}

// readPasswordTerminal reads without echo on a terminal and falls back to
// a plain line for piped input (`echo $PW | taskchat login`).
func (e *Env) readPasswordTerminal(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return e.Prompt(prompt)
	}
	fmt.Fprint(e.Err, prompt)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(e.Err)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(secret), nil
}

// printf writes to Out unless nothing should be printed.
func (e *Env) printf(format string, a ...any) {
	fmt.Fprintf(e.Out, format, a...)
}

// style renders text when color is on.
func (e *Env) style(s interface{ Render(...string) string }, text string) string {
	if !e.Color {
		return text
	}
	return s.Render(text)
}
