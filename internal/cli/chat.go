// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/peterh/liner"
	"go.uber.org/zap"

	"github.com/jeranaias/taskchat-tui/internal/api"
	"github.com/jeranaias/taskchat-tui/internal/auth"
	"github.com/jeranaias/taskchat-tui/internal/composer"
	"github.com/jeranaias/taskchat-tui/internal/config"
	"github.com/jeranaias/taskchat-tui/internal/model"
	"github.com/jeranaias/taskchat-tui/internal/storage"
)

// =============================================================================
// LINE INPUT
// =============================================================================

// LineReader is the REPL's input. ChatCLI is the terminal implementation.
type LineReader interface {
	ReadInput(prompt string) (string, error)
	Close()
}

// ChatCLI reads lines with editing and persistent input history.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI whose input history lives in the config
// directory.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	c.loadHistory()
	return c
}

func (c *ChatCLI) loadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads one line. Arrow keys walk the input history.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves the input history (0600) and restores the terminal.
func (c *ChatCLI) Close() {
	if err := config.EnsureConfigDir(); err == nil {
		if f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			c.line.WriteHistory(f)
			f.Close()
		}
	}
	c.line.Close()
}

// =============================================================================
// CHAT SESSION
// =============================================================================

// newLineReader builds the REPL input. Tests replace it.
var newLineReader = func(env *Env) LineReader {
	return NewChatCLI()
}

// ChatSession is one `taskchat chat` run.
type ChatSession struct {
	env      *Env
	client   *api.Client
	session  *auth.Session
	history  *storage.History
	conv     *model.Conversation
	composer *composer.Composer
	queued   []string
	md       *glamour.TermRenderer
	quiet    bool

	mu     sync.Mutex
	cancel context.CancelFunc
}

// HandleChat handles "taskchat chat".
func HandleChat(ctx context.Context, args Args, env *Env) error {
	client, session, err := env.AuthedClient()
	if err != nil {
		return err
	}

	history, err := env.OpenHistory()
	if err != nil {
		env.Log.Warn("chat history unavailable", zap.Error(err))
		fmt.Fprintf(env.Err, "%s local history is unavailable: %v\n", env.style(WarningStyle, "[Warning]"), err)
		history = nil
	}
	if history != nil {
		defer history.Close()
	}

	cs := &ChatSession{
		env:     env,
		client:  client,
		session: session,
		history: history,
		conv:    model.NewConversation(),
		quiet:   args.Quiet,
	}
	cs.composer = composer.New(func(text string) {
		cs.queued = append(cs.queued, text)
	})
	if env.Color && env.Config.UI.RenderMarkdown {
		cs.md, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(GetTerminalWidth()-4),
		)
	}

	input := newLineReader(env)
	defer input.Close()

	stop := cs.cancelOnInterrupt()
	defer stop()

	if !cs.quiet {
		cs.printWelcome()
	}

	for {
		line, err := input.ReadInput(env.style(PromptStyle, "you> "))
		if err != nil {
			if !errors.Is(err, liner.ErrPromptAborted) && !errors.Is(err, io.EOF) {
				return err
			}
			cs.printGoodbye()
			return nil
		}

		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "/") {
			if !cs.handleSlashCommand(trimmed) {
				cs.printGoodbye()
				return nil
			}
			continue
		}

		if err := cs.send(ctx, line); err != nil {
			if auth.IsAuthError(err) {
				return err
			}
			fmt.Fprintf(env.Err, "%s %s\n", env.style(ErrorStyle, "[Error]"), Message(err))
		}
	}
}

// send passes one input line through the composer. Over-long lines are
// shortened to the limit, the same as a paste in the TUI. Whatever the
// composer's sender queued is then delivered.
func (cs *ChatSession) send(ctx context.Context, line string) error {
	cs.composer.Clear()
	change := cs.composer.Paste(line)
	if _, ok := cs.composer.Submit(false); !ok {
		return nil
	}
	if change.Truncated {
		fmt.Fprintf(cs.env.Err, "%s message shortened to %d characters\n",
			cs.env.style(WarningStyle, "[Warning]"), composer.MaxLength)
	}

	queued := cs.queued
	cs.queued = nil
	for _, text := range queued {
		if err := cs.deliver(ctx, text); err != nil {
			return err
		}
	}
	return nil
}

// deliver sends one accepted message and prints the reply.
func (cs *ChatSession) deliver(ctx context.Context, text string) error {
	if err := auth.Require(cs.session, cs.env.Now()); err != nil {
		return err
	}

	msg := cs.conv.AddUserMessage(text)
	cs.save(ctx, msg)

	req := api.ChatRequest{Message: text}
	if cs.conv.RemoteID > 0 {
		id := cs.conv.RemoteID
		req.ConversationID = &id
	}

	reqCtx, cancel := context.WithCancel(ctx)
	cs.mu.Lock()
	cs.cancel = cancel
	cs.mu.Unlock()
	defer func() {
		cs.mu.Lock()
		cs.cancel = nil
		cs.mu.Unlock()
		cancel()
	}()

	if !cs.quiet {
		fmt.Fprint(cs.env.Err, cs.env.style(DimStyle, "Thinking...")+"\r")
	}
	resp, err := cs.client.Chat(reqCtx, req)
	if !cs.quiet {
		fmt.Fprint(cs.env.Err, "           \r")
	}
	if err != nil {
		reason := api.UserMessage(err)
		if errors.Is(err, context.Canceled) {
			reason = "cancelled"
		}
		cs.conv.MarkFailed(msg.ID, reason)
		cs.save(ctx, msg)
		return err
	}

	cs.conv.RemoteID = resp.ConversationID
	reply := cs.conv.AddAssistantMessage(resp.Response, resp.ToolCalls)
	cs.save(ctx, msg)
	cs.save(ctx, reply)
	cs.printReply(reply)
	return nil
}

// save writes msg to local history. Failures are logged, never fatal.
func (cs *ChatSession) save(ctx context.Context, msg *model.Message) {
	if cs.history == nil {
		return
	}
	if err := cs.history.SaveMessage(ctx, cs.conv, msg); err != nil {
		cs.env.Log.Warn("history write failed", zap.Error(err))
	}
}

// cancelOnInterrupt makes Ctrl+C cancel an in-flight request instead of
// killing the process.
func (cs *ChatSession) cancelOnInterrupt() func() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-done:
				return
			case <-sigChan:
				cs.mu.Lock()
				if cs.cancel != nil {
					cs.cancel()
				}
				cs.mu.Unlock()
			}
		}
	}()

	return func() {
		signal.Stop(sigChan)
		close(done)
	}
}

// handleSlashCommand runs a /command. Returns false to leave the REPL.
func (cs *ChatSession) handleSlashCommand(input string) bool {
	cmd := strings.ToLower(strings.Fields(input)[0])
	switch cmd {
	case "/quit", "/q", "/exit":
		return false
	case "/new", "/clear":
		cs.conv = model.NewConversation()
		fmt.Fprintln(cs.env.Out, cs.env.style(DimStyle, "Started a new conversation."))
	case "/help", "/h", "/?":
		fmt.Fprintln(cs.env.Out, "Commands: /new  start a new conversation, /quit  leave (or Ctrl+D)")
	default:
		fmt.Fprintf(cs.env.Err, "%s unknown command %s (try /help)\n", cs.env.style(WarningStyle, "[Warning]"), cmd)
	}
	return true
}

func (cs *ChatSession) printWelcome() {
	fmt.Fprintln(cs.env.Out, cs.env.style(TitleStyle, "AI Task Assistant"))
	fmt.Fprintln(cs.env.Out, cs.env.style(DimStyle,
		fmt.Sprintf("Signed in as %s. Ask me to add, list or complete tasks. /help for commands.", cs.session.Email())))
	fmt.Fprintln(cs.env.Out)
}

func (cs *ChatSession) printGoodbye() {
	if cs.quiet {
		return
	}
	fmt.Fprintln(cs.env.Out)
	if n := cs.conv.MessageCount(); n > 0 && cs.history != nil {
		fmt.Fprintln(cs.env.Out, cs.env.style(DimStyle,
			fmt.Sprintf("Saved %d messages. Review with: taskchat history show %s", n, shortID(cs.conv.ID))))
	}
}

// printReply writes the assistant's answer and any task operations it ran.
func (cs *ChatSession) printReply(msg *model.Message) {
	out := cs.env.Out
	fmt.Fprintln(out, cs.env.style(TitleStyle, "assistant>"))

	body := msg.Content
	if cs.md != nil {
		if rendered, err := cs.md.Render(body); err == nil {
			body = strings.Trim(rendered, "\n")
		}
	}
	fmt.Fprintln(out, body)

	for _, call := range msg.ToolCalls {
		fmt.Fprintln(out, cs.env.style(ToolStyle, "  ⚙ "+formatToolCall(call)))
	}
	fmt.Fprintln(out)
}

// formatToolCall renders e.g. "add_task (title=milk)".
func formatToolCall(call model.ToolCall) string {
	if len(call.Arguments) == 0 {
		return call.Tool
	}
	keys := make([]string, 0, len(call.Arguments))
	for k := range call.Arguments {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, call.Arguments[k]))
	}
	return fmt.Sprintf("%s (%s)", call.Tool, strings.Join(parts, ", "))
}
