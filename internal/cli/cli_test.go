// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jeranaias/taskchat-tui/internal/api"
	"github.com/jeranaias/taskchat-tui/internal/auth"
	"github.com/jeranaias/taskchat-tui/internal/config"
	"github.com/jeranaias/taskchat-tui/internal/model"
	"github.com/jeranaias/taskchat-tui/internal/storage"
)

// =============================================================================
// ARG PARSER TESTS
// =============================================================================

func TestArgParser_BasicParsing(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantSub  string
		validate func(*testing.T, *ArgParser)
	}{
		{
			name:    "simple subcommand",
			args:    []string{"list"},
			wantSub: "list",
		},
		{
			name:    "subcommand with flag",
			args:    []string{"list", "--limit", "5"},
			wantSub: "list",
			validate: func(t *testing.T, p *ArgParser) {
				if p.FlagIntOrDefault("limit", 20) != 5 {
					t.Errorf("FlagIntOrDefault(limit) = %d, want 5", p.FlagIntOrDefault("limit", 20))
				}
			},
		},
		{
			name:    "flag with equals",
			args:    []string{"list", "--filter=done"},
			wantSub: "list",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("filter") != "done" {
					t.Errorf("Flag(filter) = %q, want %q", p.Flag("filter"), "done")
				}
			},
		},
		{
			name:    "boolean flag at end",
			args:    []string{"rm", "3", "--confirm"},
			wantSub: "rm",
			validate: func(t *testing.T, p *ArgParser) {
				if !p.BoolFlag("confirm") {
					t.Error("BoolFlag(confirm) should be true")
				}
				if p.Positional(1) != "3" {
					t.Errorf("Positional(1) = %q, want 3", p.Positional(1))
				}
			},
		},
		{
			name:    "boolean with equals",
			args:    []string{"list", "--all=false"},
			wantSub: "list",
			validate: func(t *testing.T, p *ArgParser) {
				if p.BoolFlag("all") {
					t.Error("BoolFlag(all) should be false")
				}
				if !p.HasFlag("all") {
					t.Error("HasFlag(all) should be true")
				}
			},
		},
		{
			name:    "multi-word title",
			args:    []string{"add", "Buy", "oat", "milk", "--desc", "2 litres"},
			wantSub: "add",
			validate: func(t *testing.T, p *ArgParser) {
				if got := JoinPositionalArgs(p, 1); got != "Buy oat milk" {
					t.Errorf("JoinPositionalArgs = %q, want %q", got, "Buy oat milk")
				}
				if p.Flag("desc") != "2 litres" {
					t.Errorf("Flag(desc) = %q", p.Flag("desc"))
				}
			},
		},
		{
			name:    "negative number is positional",
			args:    []string{"done", "-4"},
			wantSub: "done",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Positional(1) != "-4" {
					t.Errorf("Positional(1) = %q, want -4", p.Positional(1))
				}
			},
		},
		{
			name:    "empty",
			args:    nil,
			wantSub: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewArgParser(tt.args)
			if p.Subcommand() != tt.wantSub {
				t.Errorf("Subcommand() = %q, want %q", p.Subcommand(), tt.wantSub)
			}
			if tt.validate != nil {
				tt.validate(t, p)
			}
		})
	}
}

func TestParseID(t *testing.T) {
	id, err := ParseID("12", "task id")
	require.NoError(t, err)
	assert.Equal(t, 12, id)

	for _, bad := range []string{"", "0", "-4", "abc"} {
		_, err := ParseID(bad, "task id")
		var verr *ValidationError
		assert.True(t, errors.As(err, &verr), "ParseID(%q) should be a ValidationError", bad)
	}
}

func TestParseBoolString(t *testing.T) {
	for in, want := range map[string]bool{"yes": true, "Y": true, "on": true, "no": false, "0": false} {
		got, err := ParseBoolString(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}

// =============================================================================
// COMMAND PARSING
// =============================================================================

func TestParse(t *testing.T) {
	tests := []struct {
		argv    []string
		want    Command
		raw     []string
		json    bool
		server  string
		unknown string
	}{
		{argv: nil, want: CmdTUI},
		{argv: []string{"tasks", "add", "Buy milk"}, want: CmdTasks, raw: []string{"add", "Buy milk"}},
		{argv: []string{"t", "ls", "--json"}, want: CmdTasks, raw: []string{"ls"}, json: true},
		{argv: []string{"--server", "http://x:9", "whoami"}, want: CmdWhoami, server: "http://x:9"},
		{argv: []string{"signin", "--server=http://y"}, want: CmdLogin, server: "http://y"},
		{argv: []string{"hist", "show", "abc"}, want: CmdHistory, raw: []string{"show", "abc"}},
		{argv: []string{"--config", "/tmp/alt.toml", "config", "path"}, want: CmdConfig, raw: []string{"path"}},
		{argv: []string{"--version"}, want: CmdVersion},
		{argv: []string{"frobnicate"}, want: CmdHelp, unknown: "frobnicate"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.argv, " "), func(t *testing.T) {
			cmd, args := Parse(tt.argv)
			assert.Equal(t, tt.want, cmd)
			assert.Equal(t, tt.json, args.JSON)
			assert.Equal(t, tt.server, args.Server)
			assert.Equal(t, tt.unknown, args.Unknown)
			if tt.raw != nil {
				assert.Equal(t, tt.raw, args.Raw)
			}
		})
	}
}

func TestRunUnknownCommand(t *testing.T) {
	_, args := Parse([]string{"frobnicate"})
	err := Run(context.Background(), CmdHelp, args, &Env{Out: io.Discard})
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

// =============================================================================
// ERRORS
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"validation", NewValidationError("id", "x", "bad"), ExitUsageError},
		{"not logged in", auth.ErrNotAuthenticated, ExitAuthError},
		{"expired", fmt.Errorf("wrap: %w", auth.ErrSessionExpired), ExitAuthError},
		{"401", &api.APIError{Status: http.StatusUnauthorized}, ExitAuthError},
		{"404", &api.APIError{Status: http.StatusNotFound, Detail: "Task not found"}, ExitNotFoundError},
		{"history", storage.ErrConversationNotFound, ExitNotFoundError},
		{"timeout", context.DeadlineExceeded, ExitTimeoutError},
		{"config", config.ValidateErrors{{Field: "ui.theme", Message: "bad"}}, ExitConfigError},
		{"other", errors.New("boom"), ExitGeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestMessage(t *testing.T) {
	assert.Contains(t, Message(auth.ErrSessionExpired), "taskchat login")
	assert.Equal(t, "Task not found", Message(&api.APIError{Status: http.StatusNotFound, Detail: "Task not found"}))
	assert.Equal(t, "", Message(nil))
}

func TestDisplayErrorJSON(t *testing.T) {
	var buf bytes.Buffer
	DisplayError(&buf, auth.ErrNotAuthenticated, true)

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, false, out["success"])
	assert.Equal(t, float64(ExitAuthError), out["code"])
}

func TestWriteJSONPlain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, map[string]int{"id": 3}, false))
	assert.Equal(t, "{\n  \"id\": 3\n}\n", buf.String())
}

// =============================================================================
// FAKE BACKEND
// =============================================================================

const testToken = "cli-token"

type backend struct {
	mu      sync.Mutex
	tasks   map[int]model.Task
	nextID  int
	toggles int
	srv     *httptest.Server
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{tasks: map[int]model.Task{}, nextID: 1}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", b.login)
	mux.HandleFunc("POST /api/auth/register", b.register)
	mux.HandleFunc("GET /api/auth/me", b.guard(b.me))
	mux.HandleFunc("GET /api/tasks", b.guard(b.list))
	mux.HandleFunc("POST /api/tasks", b.guard(b.create))
	mux.HandleFunc("GET /api/tasks/{id}", b.guard(b.get))
	mux.HandleFunc("PUT /api/tasks/{id}", b.guard(b.update))
	mux.HandleFunc("PATCH /api/tasks/{id}/complete", b.guard(b.toggle))
	mux.HandleFunc("DELETE /api/tasks/{id}", b.guard(b.remove))
	mux.HandleFunc("POST /api/chat", b.guard(b.chat))

	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)
	return b
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *backend) guard(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
			return
		}
		next(w, r)
	}
}

func (b *backend) login(w http.ResponseWriter, r *http.Request) {
	var in api.Credentials
	_ = json.NewDecoder(r.Body).Decode(&in)
	if in.Password != "correct-horse" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect email or password"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": testToken,
		"token_type":   "bearer",
		"user":         map[string]any{"id": 9, "email": in.Email},
	})
}

func (b *backend) register(w http.ResponseWriter, r *http.Request) {
	var in api.Credentials
	_ = json.NewDecoder(r.Body).Decode(&in)
	if in.Email == "taken@example.com" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Email already registered"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"access_token": testToken,
		"user":         map[string]any{"id": 10, "email": in.Email},
	})
}

func (b *backend) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"id": 9, "email": "ada@example.com"})
}

func (b *backend) add(title, desc string, done bool) model.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	task := model.Task{
		ID:          b.nextID,
		Title:       title,
		Description: desc,
		IsCompleted: done,
		CreatedAt:   model.Timestamp{Time: time.Now().UTC()},
	}
	b.tasks[task.ID] = task
	b.nextID++
	return task
}

func (b *backend) list(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]model.Task, 0, len(b.tasks))
	for _, t := range b.tasks {
		out = append(out, t)
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *backend) create(w http.ResponseWriter, r *http.Request) {
	var in api.TaskInput
	_ = json.NewDecoder(r.Body).Decode(&in)
	writeJSON(w, http.StatusCreated, b.add(in.Title, in.Description, false))
}

func (b *backend) lookup(w http.ResponseWriter, r *http.Request) (model.Task, bool) {
	id, _ := strconv.Atoi(r.PathValue("id"))
	task, ok := b.tasks[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Task not found"})
	}
	return task, ok
}

func (b *backend) get(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if task, ok := b.lookup(w, r); ok {
		writeJSON(w, http.StatusOK, task)
	}
}

func (b *backend) update(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	task, ok := b.lookup(w, r)
	if !ok {
		return
	}
	var patch api.TaskPatch
	_ = json.NewDecoder(r.Body).Decode(&patch)
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	b.tasks[task.ID] = task
	writeJSON(w, http.StatusOK, task)
}

func (b *backend) toggle(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	task, ok := b.lookup(w, r)
	if !ok {
		return
	}
	b.toggles++
	task.IsCompleted = !task.IsCompleted
	b.tasks[task.ID] = task
	writeJSON(w, http.StatusOK, task)
}

func (b *backend) remove(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	task, ok := b.lookup(w, r)
	if !ok {
		return
	}
	delete(b.tasks, task.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (b *backend) chat(w http.ResponseWriter, r *http.Request) {
	var in api.ChatRequest
	_ = json.NewDecoder(r.Body).Decode(&in)
	resp := api.ChatResponse{ConversationID: 42, Response: "Sure."}
	if strings.Contains(in.Message, "milk") {
		b.add("milk", "", false)
		resp.Response = "Added **milk** to your list."
		resp.ToolCalls = []model.ToolCall{{Tool: "add_task", Arguments: map[string]any{"title": "milk"}}}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (b *backend) task(id int) model.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tasks[id]
}

// =============================================================================
// TEST ENV
// =============================================================================

type testEnv struct {
	*Env
	out       *bytes.Buffer
	errOut    *bytes.Buffer
	passwords []string
	dir       string
}

// newTestEnv builds an Env against b with its home in a temp dir. When
// loggedIn is true valid credentials are already stored.
func newTestEnv(t *testing.T, b *backend, loggedIn bool) *testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("TASKCHAT_HOME", dir)
	t.Setenv("TASKCHAT_TOKEN", "")

	cfg := config.Default()
	cfg.Server.BaseURL = b.srv.URL
	cfg.Server.MaxRetries = 0
	cfg.Server.RequestsPerMinute = 0

	te := &testEnv{out: &bytes.Buffer{}, errOut: &bytes.Buffer{}, dir: dir}
	te.Env = &Env{
		Config:     cfg,
		ConfigPath: filepath.Join(dir, "config.toml"),
		Client:     api.NewFromConfig(cfg, nil),
		Store:      auth.NewStore(filepath.Join(dir, "credentials.json")),
		In:     strings.NewReader(""),
		Out:    te.out,
		Err:    te.errOut,
		Now:    time.Now,
		Log:    zap.NewNop(),
		OpenHistory: func() (*storage.History, error) {
			return storage.Open(filepath.Join(dir, "history.db"))
		},
	}
	te.ReadPassword = func(string) (string, error) {
		if len(te.passwords) == 0 {
			return "", io.EOF
		}
		p := te.passwords[0]
		te.passwords = te.passwords[1:]
		return p, nil
	}

	if loggedIn {
		require.NoError(t, te.Store.Save(auth.Credentials{
			Token:  testToken,
			Email:  "ada@example.com",
			UserID: 9,
		}))
	}
	return te
}

func (te *testEnv) run(t *testing.T, argv ...string) error {
	t.Helper()
	te.out.Reset()
	te.errOut.Reset()
	cmd, args := Parse(argv)
	return Run(context.Background(), cmd, args, te.Env)
}

// =============================================================================
// AUTH COMMANDS
// =============================================================================

func TestLoginSavesCredentials(t *testing.T) {
	b := newBackend(t)
	te := newTestEnv(t, b, false)
	te.passwords = []string{"correct-horse"}

	require.NoError(t, te.run(t, "login", "--email", " ada@example.com "))
	assert.Contains(t, te.out.String(), "Logged in as ada@example.com")

	creds, err := te.Store.Load()
	require.NoError(t, err)
	assert.Equal(t, testToken, creds.Token)
	assert.Equal(t, 9, creds.UserID)
}

func TestLoginWrongPassword(t *testing.T) {
	b := newBackend(t)
	te := newTestEnv(t, b, false)
	te.passwords = []string{"wrong-password"}

	err := te.run(t, "login", "--email", "ada@example.com")
	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr), "got %v", err)
	assert.Equal(t, "Incorrect email or password", cmdErr.Reason)
	assert.NotContains(t, Message(err), "session")

	_, err = te.Store.Load()
	assert.ErrorIs(t, err, auth.ErrNotAuthenticated)
}

func TestLoginValidatesBeforeRequest(t *testing.T) {
	b := newBackend(t)
	te := newTestEnv(t, b, false)
	te.passwords = []string{"short"}

	err := te.run(t, "login", "--email", "not-an-email")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Please enter a valid email address", verr.Reason)
}

func TestRegister(t *testing.T) {
	b := newBackend(t)
	te := newTestEnv(t, b, false)

	te.passwords = []string{"correct-horse", "correct-hose"}
	err := te.run(t, "register", "--email", "new@example.com")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Passwords do not match", verr.Reason)

	te.passwords = []string{"correct-horse", "correct-horse"}
	err = te.run(t, "register", "--email", "taken@example.com")
	assert.ErrorContains(t, err, "Email already registered")

	te.passwords = []string{"correct-horse", "correct-horse"}
	require.NoError(t, te.run(t, "register", "--email", "new@example.com"))
	assert.Contains(t, te.out.String(), "Account created")
}

func TestLogoutAndWhoami(t *testing.T) {
	b := newBackend(t)
	te := newTestEnv(t, b, true)

	require.NoError(t, te.run(t, "whoami", "--json"))
	var info accountInfo
	require.NoError(t, json.Unmarshal(te.out.Bytes(), &info))
	assert.Equal(t, "ada@example.com", info.Email)
	assert.Equal(t, 9, info.UserID)

	require.NoError(t, te.run(t, "logout"))
	err := te.run(t, "whoami")
	assert.Equal(t, ExitAuthError, GetExitCode(err))
}

func TestCommandsRequireLogin(t *testing.T) {
	b := newBackend(t)
	te := newTestEnv(t, b, false)

	for _, argv := range [][]string{{"tasks"}, {"chat"}, {"whoami"}} {
		err := te.run(t, argv...)
		assert.ErrorIs(t, err, auth.ErrNotAuthenticated, argv)
	}
}

func TestRevokedTokenIsAuthError(t *testing.T) {
	b := newBackend(t)
	te := newTestEnv(t, b, false)
	require.NoError(t, te.Store.Save(auth.Credentials{Token: "revoked", Email: "ada@example.com"}))

	err := te.run(t, "tasks")
	assert.Equal(t, ExitAuthError, GetExitCode(err))
	assert.Contains(t, Message(err), "log in again")
}

// =============================================================================
// TASK COMMANDS
// =============================================================================

func TestTasksListEmpty(t *testing.T) {
	b := newBackend(t)
	te := newTestEnv(t, b, true)

	require.NoError(t, te.run(t, "tasks"))
	assert.Contains(t, te.out.String(), "No tasks yet")

	require.NoError(t, te.run(t, "tasks", "list", "--done"))
	assert.Contains(t, te.out.String(), "No completed tasks.")
}

func TestTasksAddListFilter(t *testing.T) {
	b := newBackend(t)
	te := newTestEnv(t, b, true)

	require.NoError(t, te.run(t, "tasks", "add", "Buy", "oat", "milk", "--desc", "2 litres"))
	assert.Contains(t, te.out.String(), "Created task #1: Buy oat milk")
	assert.Equal(t, "2 litres", b.task(1).Description)

	b.add("File taxes", "", true)

	require.NoError(t, te.run(t, "tasks", "list"))
	out := te.out.String()
	assert.Contains(t, out, "Buy oat milk")
	assert.Contains(t, out, "File taxes")
	assert.Contains(t, out, "[x]")

	require.NoError(t, te.run(t, "tasks", "ls", "--pending", "--json"))
	var tasks []model.Task
	require.NoError(t, json.Unmarshal(te.out.Bytes(), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, "Buy oat milk", tasks[0].Title)
}

func TestTasksAddRequiresTitle(t *testing.T) {
	b := newBackend(t)
	te := newTestEnv(t, b, true)

	err := te.run(t, "tasks", "add")
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	err = te.run(t, "tasks", "add", strings.Repeat("x", 201))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Reason, "at most 200")
}

func TestTasksDoneIsIdempotent(t *testing.T) {
	b := newBackend(t)
	te := newTestEnv(t, b, true)
	b.add("Walk dog", "", false)

	require.NoError(t, te.run(t, "tasks", "done", "1"))
	require.NoError(t, te.run(t, "tasks", "done", "1"))
	assert.True(t, b.task(1).IsCompleted)
	assert.Equal(t, 1, b.toggles)

	require.NoError(t, te.run(t, "tasks", "undo", "1"))
	assert.False(t, b.task(1).IsCompleted)
	assert.Contains(t, te.out.String(), "Reopened task #1")
}

func TestTasksEdit(t *testing.T) {
	b := newBackend(t)
	te := newTestEnv(t, b, true)
	b.add("Walk dog", "", false)

	require.NoError(t, te.run(t, "tasks", "edit", "1", "--title", "Walk the dog"))
	assert.Equal(t, "Walk the dog", b.task(1).Title)

	err := te.run(t, "tasks", "edit", "1")
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestTasksDelete(t *testing.T) {
	b := newBackend(t)
	te := newTestEnv(t, b, true)
	b.add("Walk dog", "", false)

	err := te.run(t, "tasks", "rm", "1")
	assert.Equal(t, ExitUsageError, GetExitCode(err), "non-interactive delete needs --confirm")

	require.NoError(t, te.run(t, "tasks", "rm", "1", "--confirm"))
	assert.Contains(t, te.out.String(), "Deleted task #1")

	err = te.run(t, "tasks", "rm", "1", "-y")
	assert.Equal(t, ExitNotFoundError, GetExitCode(err))
	assert.Equal(t, "Task not found", Message(err))
}

func TestTasksDeleteInteractive(t *testing.T) {
	b := newBackend(t)
	te := newTestEnv(t, b, true)
	b.add("Walk dog", "", false)
	te.Interactive = true

	te.In = strings.NewReader("n\n")
	require.NoError(t, te.run(t, "tasks", "rm", "1"))
	assert.Contains(t, te.out.String(), "Cancelled.")
	assert.Equal(t, "Walk dog", b.task(1).Title)
}

// =============================================================================
// CHAT AND HISTORY
// =============================================================================

type fakeLines struct {
	lines  []string
	closed bool
}

func (f *fakeLines) ReadInput(string) (string, error) {
	if len(f.lines) == 0 {
		return "", io.EOF
	}
	line := f.lines[0]
	f.lines = f.lines[1:]
	return line, nil
}

func (f *fakeLines) Close() { f.closed = true }

func withLines(t *testing.T, lines ...string) *fakeLines {
	t.Helper()
	f := &fakeLines{lines: lines}
	orig := newLineReader
	newLineReader = func(*Env) LineReader { return f }
	t.Cleanup(func() { newLineReader = orig })
	return f
}

func TestChatREPL(t *testing.T) {
	b := newBackend(t)
	te := newTestEnv(t, b, true)
	input := withLines(t, "   ", "please add milk", "/help", "/bogus", "thanks")

	require.NoError(t, te.run(t, "chat"))
	assert.True(t, input.closed)

	out := te.out.String()
	assert.Contains(t, out, "Added **milk** to your list.")
	assert.Contains(t, out, "⚙ add_task (title=milk)")
	assert.Contains(t, out, "Sure.")
	assert.Contains(t, out, "/new")
	assert.Contains(t, te.errOut.String(), "unknown command /bogus")

	h, err := te.OpenHistory()
	require.NoError(t, err)
	defer h.Close()
	convs, err := h.ListConversations(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, 42, convs[0].RemoteID)
	assert.Equal(t, 4, convs[0].MessageCount)
}

func TestChatNewStartsFreshConversation(t *testing.T) {
	b := newBackend(t)
	te := newTestEnv(t, b, true)
	withLines(t, "hello", "/new", "hello again", "/quit", "never sent")

	require.NoError(t, te.run(t, "chat"))

	h, err := te.OpenHistory()
	require.NoError(t, err)
	defer h.Close()
	convs, err := h.ListConversations(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, convs, 2)
}

func TestChatTruncatesLongLines(t *testing.T) {
	b := newBackend(t)
	te := newTestEnv(t, b, true)
	withLines(t, strings.Repeat("a", 1200))

	require.NoError(t, te.run(t, "chat", "-q"))
	assert.Contains(t, te.errOut.String(), "shortened to 1000 characters")
}

func TestHistoryCommands(t *testing.T) {
	b := newBackend(t)
	te := newTestEnv(t, b, true)
	withLines(t, "please add milk")
	require.NoError(t, te.run(t, "chat"))

	require.NoError(t, te.run(t, "history", "--json"))
	var entries []historyEntry
	require.NoError(t, json.Unmarshal(te.out.Bytes(), &entries))
	require.Len(t, entries, 1)
	id := entries[0].ID

	require.NoError(t, te.run(t, "history", "show", id[:8]))
	out := te.out.String()
	assert.Contains(t, out, "please add milk")
	assert.Contains(t, out, "add_task")

	err := te.run(t, "history", "show", "zzzz")
	assert.Equal(t, ExitNotFoundError, GetExitCode(err))

	err = te.run(t, "history", "clear")
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	require.NoError(t, te.run(t, "history", "rm", id[:8]))
	require.NoError(t, te.run(t, "history"))
	assert.Contains(t, te.out.String(), "No saved conversations.")
}

func TestHistoryDisabled(t *testing.T) {
	b := newBackend(t)
	te := newTestEnv(t, b, true)
	te.OpenHistory = func() (*storage.History, error) { return nil, nil }

	err := te.run(t, "history")
	assert.ErrorContains(t, err, "disabled")
}

// =============================================================================
// CONFIG
// =============================================================================

func TestConfigGetSet(t *testing.T) {
	b := newBackend(t)
	te := newTestEnv(t, b, true)

	require.NoError(t, te.run(t, "config", "get", "ui.theme"))
	assert.Equal(t, "auto\n", te.out.String())

	require.NoError(t, te.run(t, "config", "set", "ui.theme", "light"))
	require.NoError(t, te.run(t, "config", "set", "server.max_retries", "2"))

	cfg, err := config.LoadForEdit(te.ConfigPath)
	require.NoError(t, err)
	assert.Equal(t, "light", cfg.UI.Theme)
	assert.Equal(t, 2, cfg.Server.MaxRetries)

	err = te.run(t, "config", "set", "ui.theme", "neon")
	assert.Equal(t, ExitConfigError, GetExitCode(err))

	err = te.run(t, "config", "set", "auth.token", "x")
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	err = te.run(t, "config", "set", "ui.theme")
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestConfigPathAndKeys(t *testing.T) {
	b := newBackend(t)
	te := newTestEnv(t, b, true)

	require.NoError(t, te.run(t, "config", "path"))
	assert.Equal(t, filepath.Join(te.dir, "config.toml")+"\n", te.out.String())

	require.NoError(t, te.run(t, "config", "keys"))
	assert.Contains(t, te.out.String(), "server.base_url\n")
	assert.NotContains(t, te.out.String(), "token")
}
