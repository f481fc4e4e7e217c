// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/taskchat-tui/internal/model"
	"github.com/jeranaias/taskchat-tui/internal/storage"
	"github.com/jeranaias/taskchat-tui/internal/util"
)

// errHistoryDisabled is returned when storage.disabled is set.
var errHistoryDisabled = &CommandError{
	Command: "history",
	Action:  "open",
	Reason:  "local history is disabled (storage.disabled = true)",
}

// shortID is the id prefix shown in listings and accepted by show/rm.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// HandleHistory handles "taskchat history [list|show|rm|clear]".
func HandleHistory(ctx context.Context, args Args, env *Env) error {
	p := NewArgParser(args.Raw)
	sub := p.Subcommand()

	history, err := env.OpenHistory()
	if err != nil {
		return &CommandError{Command: "history", Action: "open", Reason: err.Error(), Err: err}
	}
	if history == nil {
		return errHistoryDisabled
	}
	defer history.Close()

	switch sub {
	case "", "list", "ls":
		return historyList(ctx, p, args, env, history)
	case "show", "view":
		return historyShow(ctx, p, args, env, history)
	case "rm", "delete", "del":
		return historyDelete(ctx, p, args, env, history)
	case "clear":
		return historyClear(ctx, p, args, env, history)
	default:
		return NewValidationError("subcommand", sub, "unknown history command")
	}
}

type historyEntry struct {
	ID           string `json:"id"`
	RemoteID     int    `json:"remote_id,omitempty"`
	Title        string `json:"title"`
	MessageCount int    `json:"message_count"`
	UpdatedAt    string `json:"updated_at"`
	Preview      string `json:"preview,omitempty"`
}

func historyList(ctx context.Context, p *ArgParser, args Args, env *Env, h *storage.History) error {
	limit := p.FlagIntOrDefault("limit", 20)
	summaries, err := h.ListConversations(ctx, limit)
	if err != nil {
		return err
	}

	if args.JSON {
		out := make([]historyEntry, 0, len(summaries))
		for _, s := range summaries {
			out = append(out, historyEntry{
				ID:           s.ID,
				RemoteID:     s.RemoteID,
				Title:        s.Title,
				MessageCount: s.MessageCount,
				UpdatedAt:    s.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
				Preview:      s.Preview,
			})
		}
		return WriteJSON(env.Out, out, env.Color)
	}

	if len(summaries) == 0 {
		env.printf("No saved conversations.\n")
		return nil
	}

	table := newTable(env.Out, "ID", "Title", "Messages", "Updated")
	now := env.Now()
	for _, s := range summaries {
		title := s.Title
		if title == "" {
			title = "(untitled)"
		}
		table.Append([]string{
			shortID(s.ID),
			util.Truncate(title, 40),
			fmt.Sprintf("%d", s.MessageCount),
			formatAge(s.UpdatedAt, now),
		})
	}
	table.Render()

	if !args.Quiet {
		env.printf("%s\n", env.style(DimStyle, "Show one with: taskchat history show <id>"))
	}
	return nil
}

func resolveConversation(ctx context.Context, p *ArgParser, h *storage.History) (string, error) {
	prefix := p.Positional(1)
	if strings.TrimSpace(prefix) == "" {
		return "", ErrMissingArgument("id", "taskchat history show 3f2a9c1e")
	}
	id, err := h.Resolve(ctx, prefix)
	if errors.Is(err, storage.ErrAmbiguousID) {
		return "", NewValidationError("id", prefix, "matches more than one conversation; use more characters")
	}
	return id, err
}

func historyShow(ctx context.Context, p *ArgParser, args Args, env *Env, h *storage.History) error {
	id, err := resolveConversation(ctx, p, h)
	if err != nil {
		return err
	}
	conv, err := h.LoadConversation(ctx, id)
	if err != nil {
		return err
	}

	if args.JSON {
		return WriteJSON(env.Out, conv, env.Color)
	}

	title := conv.Title
	if title == "" {
		title = "(untitled)"
	}
	env.printf("%s\n", env.style(TitleStyle, title))
	env.printf("%s\n\n", env.style(DimStyle, fmt.Sprintf("%s · %d messages · %s",
		shortID(conv.ID), conv.MessageCount(), conv.UpdatedAt.Format("2006-01-02 15:04"))))

	for _, msg := range conv.Messages {
		printHistoryMessage(env, msg)
	}
	return nil
}

func printHistoryMessage(env *Env, msg *model.Message) {
	label := string(msg.Role)
	switch msg.Role {
	case model.RoleUser:
		label = env.style(PromptStyle, "you")
	case model.RoleAssistant:
		label = env.style(TitleStyle, "assistant")
	}
	env.printf("%s %s\n", label, env.style(DimStyle, msg.Timestamp.Format("15:04")))
	env.printf("%s\n", msg.Content)
	for _, call := range msg.ToolCalls {
		env.printf("%s\n", env.style(ToolStyle, "  ⚙ "+formatToolCall(call)))
	}
	if msg.Failed {
		reason := msg.Error
		if reason == "" {
			reason = "not delivered"
		}
		env.printf("%s\n", env.style(ErrorStyle, "  ✗ "+reason))
	}
	env.printf("\n")
}

func historyDelete(ctx context.Context, p *ArgParser, args Args, env *Env, h *storage.History) error {
	id, err := resolveConversation(ctx, p, h)
	if err != nil {
		return err
	}
	if err := h.DeleteConversation(ctx, id); err != nil {
		return err
	}
	if args.JSON {
		return WriteJSON(env.Out, map[string]any{"success": true, "deleted": id}, env.Color)
	}
	if !args.Quiet {
		env.printf("%s Deleted conversation %s\n", env.style(SuccessStyle, "✓"), shortID(id))
	}
	return nil
}

func historyClear(ctx context.Context, p *ArgParser, args Args, env *Env, h *storage.History) error {
	if !p.BoolFlag("confirm") && !p.BoolFlag("y") {
		if !env.Interactive {
			return errConfirmRequired("history clear")
		}
		ok, err := env.Confirm("Delete all saved conversations?")
		if err != nil {
			return err
		}
		if !ok {
			env.printf("Cancelled.\n")
			return nil
		}
	}
	if err := h.Clear(ctx); err != nil {
		return err
	}
	if args.JSON {
		return WriteJSON(env.Out, map[string]any{"success": true}, env.Color)
	}
	if !args.Quiet {
		env.printf("%s History cleared\n", env.style(SuccessStyle, "✓"))
	}
	return nil
}

// formatAge renders how long ago t was, coarsely.
func formatAge(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}
