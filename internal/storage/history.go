// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/taskchat-tui/internal/model"
	"github.com/jeranaias/taskchat-tui/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrConversationNotFound is returned when a conversation does not exist.
var ErrConversationNotFound = &HistoryError{Message: "conversation not found"}

// ErrAmbiguousID is returned when an id prefix matches several conversations.
var ErrAmbiguousID = &HistoryError{Message: "id prefix matches more than one conversation"}

// HistoryError represents a history-related error.
// It implements the error interface and can be compared using errors.Is.
type HistoryError struct {
	Message string
}

// Error implements the error interface.
func (e *HistoryError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing history errors.
func (e *HistoryError) Is(target error) bool {
	t, ok := target.(*HistoryError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// =============================================================================
// HISTORY STORE
// =============================================================================

// History is the local chat history database.
type History struct {
	db   *sql.DB
	path string
}

// Summary is one conversation in a listing.
type Summary struct {
	ID           string
	RemoteID     int
	Title        string
	UpdatedAt    time.Time
	MessageCount int
	Preview      string
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	h := &History{db: db, path: path}
	if err := h.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	// The file can hold private chat text.
	_ = os.Chmod(path, 0600)
	return h, nil
}

func (h *History) initSchema() error {
	if _, err := h.db.Exec(Schema); err != nil {
		return err
	}
	_, err := h.db.Exec(
		"INSERT OR IGNORE INTO metadata(key, value) VALUES('schema_version', ?)",
		strconv.Itoa(SchemaVersion))
	return err
}

// Path returns the database file location.
func (h *History) Path() string {
	return h.path
}

// Close closes the database.
func (h *History) Close() error {
	return h.db.Close()
}

// =============================================================================
// WRITES
// =============================================================================

const upsertConversation = `
INSERT INTO conversations(id, remote_id, title, created_at, updated_at)
VALUES(?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    remote_id = excluded.remote_id,
    title = excluded.title,
    updated_at = excluded.updated_at`

// SaveConversation writes the conversation header without its messages.
func (h *History) SaveConversation(ctx context.Context, conv *model.Conversation) error {
	_, err := h.db.ExecContext(ctx, upsertConversation,
		conv.ID, conv.RemoteID, conv.Title, conv.CreatedAt.UnixNano(), conv.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	return nil
}

// SaveMessage writes msg (insert or update) under conv, refreshing the
// conversation header in the same transaction.
func (h *History) SaveMessage(ctx context.Context, conv *model.Conversation, msg *model.Message) error {
	var toolCalls string
	if len(msg.ToolCalls) > 0 {
		data, err := json.Marshal(msg.ToolCalls)
		if err != nil {
			return fmt.Errorf("failed to encode tool calls: %w", err)
		}
		toolCalls = string(data)
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, upsertConversation,
		conv.ID, conv.RemoteID, conv.Title, conv.CreatedAt.UnixNano(), conv.UpdatedAt.UnixNano()); err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO messages(id, conversation_id, seq, role, content, created_at, failed, error, tool_calls)
VALUES(?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM messages WHERE conversation_id = ?), ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    content = excluded.content,
    failed = excluded.failed,
    error = excluded.error,
    tool_calls = excluded.tool_calls`,
		msg.ID, conv.ID, conv.ID, string(msg.Role), msg.Content, msg.Timestamp.UnixNano(),
		boolToInt(msg.Failed), msg.Error, toolCalls)
	if err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}

	return tx.Commit()
}

// DeleteConversation removes a conversation and its messages.
func (h *History) DeleteConversation(ctx context.Context, id string) error {
	res, err := h.db.ExecContext(ctx, "DELETE FROM conversations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConversationNotFound
	}
	return nil
}

// Clear removes all history.
func (h *History) Clear(ctx context.Context) error {
	if _, err := h.db.ExecContext(ctx, "DELETE FROM conversations"); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Prune keeps the max most recently updated conversations and deletes the
// rest. max <= 0 keeps everything. Returns the number deleted.
func (h *History) Prune(ctx context.Context, max int) (int, error) {
	if max <= 0 {
		return 0, nil
	}
	res, err := h.db.ExecContext(ctx, `
DELETE FROM conversations WHERE id NOT IN (
    SELECT id FROM conversations ORDER BY updated_at DESC LIMIT ?
)`, max)
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// =============================================================================
// READS
// =============================================================================

// LoadConversation reads a conversation with all its messages in order.
func (h *History) LoadConversation(ctx context.Context, id string) (*model.Conversation, error) {
	conv := &model.Conversation{ID: id}
	var created, updated int64
	err := h.db.QueryRowContext(ctx,
		"SELECT remote_id, title, created_at, updated_at FROM conversations WHERE id = ?", id).
		Scan(&conv.RemoteID, &conv.Title, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	conv.CreatedAt = time.Unix(0, created)
	conv.UpdatedAt = time.Unix(0, updated)

	rows, err := h.db.QueryContext(ctx, `
SELECT id, role, content, created_at, failed, error, tool_calls
FROM messages WHERE conversation_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	defer rows.Close()

	conv.Messages = make([]*model.Message, 0)
	for rows.Next() {
		var (
			msg       model.Message
			role      string
			ts        int64
			failed    int
			toolCalls string
		)
		if err := rows.Scan(&msg.ID, &role, &msg.Content, &ts, &failed, &msg.Error, &toolCalls); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Role = model.Role(role)
		msg.Timestamp = time.Unix(0, ts)
		msg.Failed = failed != 0
		if toolCalls != "" {
			if err := json.Unmarshal([]byte(toolCalls), &msg.ToolCalls); err != nil {
				return nil, fmt.Errorf("failed to decode tool calls: %w", err)
			}
		}
		conv.Messages = append(conv.Messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return conv, nil
}

// ListConversations returns up to limit conversations, most recent first.
// limit <= 0 returns all.
func (h *History) ListConversations(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := h.db.QueryContext(ctx, `
SELECT c.id, c.remote_id, c.title, c.updated_at,
    (SELECT COUNT(*) FROM messages m WHERE m.conversation_id = c.id),
    COALESCE((SELECT m.content FROM messages m
        WHERE m.conversation_id = c.id ORDER BY m.seq DESC LIMIT 1), '')
FROM conversations c
ORDER BY c.updated_at DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		var updated int64
		var last string
		if err := rows.Scan(&s.ID, &s.RemoteID, &s.Title, &updated, &s.MessageCount, &last); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		s.UpdatedAt = time.Unix(0, updated)
		s.Preview = util.Truncate(util.FirstLine(last), 60)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Resolve expands an id prefix (as printed by `history list`) to a full id.
func (h *History) Resolve(ctx context.Context, prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", ErrConversationNotFound
	}
	escaped := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(prefix)
	rows, err := h.db.QueryContext(ctx,
		`SELECT id FROM conversations WHERE id LIKE ? ESCAPE '\' LIMIT 2`, escaped+"%")
	if err != nil {
		return "", fmt.Errorf("failed to resolve conversation: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch len(ids) {
	case 0:
		return "", ErrConversationNotFound
	case 1:
		return ids[0], nil
	default:
		return "", ErrAmbiguousID
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
