// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jeranaias/taskchat-tui/internal/api"
	"github.com/jeranaias/taskchat-tui/internal/auth"
	"github.com/jeranaias/taskchat-tui/internal/config"
	"github.com/jeranaias/taskchat-tui/internal/logging"
	"github.com/jeranaias/taskchat-tui/internal/model"
	"github.com/jeranaias/taskchat-tui/internal/storage"
	"github.com/jeranaias/taskchat-tui/internal/ui/components"
	"github.com/jeranaias/taskchat-tui/internal/ui/styles"
)

// screen identifies the active view.
type screen int

const (
	screenLogin screen = iota
	screenRegister
	screenDashboard
	screenChat
)

func (s screen) String() string {
	switch s {
	case screenRegister:
		return "Create account"
	case screenDashboard:
		return "Tasks"
	case screenChat:
		return "Assistant"
	default:
		return "Sign in"
	}
}

// Options wires the app to its collaborators. Only Config and Client are
// required.
type Options struct {
	Config *config.Config
	// Client is the unauthenticated backend client.
	Client *api.Client
	// Store persists credentials. Nil keeps the login in memory only.
	Store *auth.Store
	// Session is the resolved session, nil to start at the login screen.
	Session *auth.Session
	// History persists chat messages. Nil disables it.
	History *storage.History
	// Watcher reports logins and logouts from other processes.
	Watcher *auth.Watcher
	Theme   *styles.Theme
}

// Model is the root Bubble Tea model.
type Model struct {
	cfg     *config.Config
	theme   *styles.Theme
	keys    KeyMap
	help    help.Model
	ctx     context.Context
	cancel  context.CancelFunc
	log     *zap.Logger
	now     func() time.Time
	client  *api.Client
	authed  *api.Client
	session *auth.Session
	store   *auth.Store
	history *storage.History
	watcher *auth.Watcher

	screen screen
	width  int
	height int

	// Auth screens
	authForm *components.Form

	// Dashboard
	tasks        *components.TaskList
	loadingTasks bool
	taskForm     *components.Form
	editingID    int
	confirm      *components.ConfirmDialog

	// Chat
	conv     *model.Conversation
	input    *components.ComposerView
	viewport viewport.Model
	renderer *components.MessageRenderer
	welcome  *components.ChatWelcome
	thinking components.Spinner
	sending  bool

	toasts   *components.ToastManager
	showHelp bool
}

// New creates the root model.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme(cfg.UI.Theme)
	}
	ctx, cancel := context.WithCancel(context.Background())

	m := Model{
		cfg:      cfg,
		theme:    theme,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		ctx:      ctx,
		cancel:   cancel,
		log:      logging.L().Named("ui"),
		now:      time.Now,
		client:   opts.Client,
		store:    opts.Store,
		history:  opts.History,
		watcher:  opts.Watcher,
		tasks:    components.NewTaskList(theme),
		conv:     model.NewConversation(),
		input:    components.NewComposerView(theme, cfg.UI.MaxInputLines),
		viewport: viewport.New(80, 10),
		renderer: components.NewMessageRenderer(theme, cfg.UI.ShowTimestamps, cfg.UI.RenderMarkdown),
		welcome:  components.NewChatWelcome(theme),
		thinking: components.NewThinkingSpinner(theme),
		toasts:   components.NewToastManager(),
		width:    80,
		height:   24,
	}
	m.help.Styles.ShortKey = theme.HelpKey
	m.help.Styles.ShortDesc = theme.HelpDesc
	m.help.Styles.FullKey = theme.HelpKey
	m.help.Styles.FullDesc = theme.HelpDesc

	if opts.Session != nil && auth.Require(opts.Session, m.now()) == nil {
		m.setSession(opts.Session)
		m.screen = screenDashboard
		m.loadingTasks = true
	} else {
		m.screen = screenLogin
		m.authForm = m.newAuthForm(false)
	}
	return m
}

// Init starts the first loads and background listeners.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		components.ToastTickCmd(),
		waitForCredentialsCmd(m.ctx, m.watcher),
		loadHistoryCmd(m.ctx, m.history, m.cfg.Storage.MaxConversations),
	}
	if m.screen == screenDashboard {
		cmds = append(cmds, loadTasksCmd(m.ctx, m.authed))
	} else if m.authForm != nil {
		cmds = append(cmds, m.authForm.Init())
	}
	return tea.Batch(cmds...)
}

// Close cancels in-flight commands. Call after the program exits.
func (m Model) Close() {
	m.cancel()
}

func (m *Model) setSession(s *auth.Session) {
	m.session = s
	m.authed = m.client.WithTokens(s)
}

// =============================================================================
// UPDATE
// =============================================================================

// Update routes messages to the active screen.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case components.ToastTickMsg:
		m.toasts.Tick(msg.Time)
		return m, components.ToastTickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.thinking, cmd = m.thinking.Update(msg)
		return m, cmd

	case components.ToastAddMsg:
		m.toasts.Add(components.NewToast(msg.Message, msg.Kind))
		return m, nil

	case credentialsChangedMsg:
		return m.handleCredentialsChanged(msg)

	case authResultMsg:
		return m.handleAuthResult(msg)

	case tasksLoadedMsg:
		return m.handleTasksLoaded(msg)
	case taskSavedMsg:
		return m.handleTaskSaved(msg)
	case taskToggledMsg:
		return m.handleTaskToggled(msg)
	case taskDeletedMsg:
		return m.handleTaskDeleted(msg)

	case chatReplyMsg:
		return m.handleChatReply(msg)
	case historyLoadedMsg:
		return m.handleHistoryLoaded(msg)
	case historySavedMsg:
		if msg.err != nil {
			m.log.Warn("history write failed", zap.Error(msg.err))
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.cancel()
			return m, tea.Quit
		}
	}

	switch m.screen {
	case screenLogin, screenRegister:
		return m.updateAuth(msg)
	case screenDashboard:
		return m.updateDashboard(msg)
	default:
		return m.updateChat(msg)
	}
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.theme.SetSize(width, height)
	content := m.theme.ContentWidth()
	m.help.Width = content
	m.input.SetWidth(content)
	if m.authForm != nil {
		m.authForm.SetWidth(min(content, 60))
	}
	if m.taskForm != nil {
		m.taskForm.SetWidth(min(content, 64))
	}
	m.tasks.SetSize(content, m.bodyHeight()-2)
	m.layoutChat()
}

// bodyHeight is the space between header and help line.
func (m *Model) bodyHeight() int {
	h := m.height - lipgloss.Height(m.headerView()) - 1
	if h < 3 {
		h = 3
	}
	return h
}

// requireSession runs the guard before a protected operation. On failure
// the user is sent to the login screen.
func (m *Model) requireSession() (bool, tea.Cmd) {
	if err := auth.Require(m.session, m.now()); err != nil {
		return false, m.logout(auth.GuardMessage(err))
	}
	return true, nil
}

// handleError shows err, logging out on authentication failures.
func (m *Model) handleError(err error) tea.Cmd {
	if auth.IsAuthError(err) {
		return m.logout(auth.GuardMessage(err))
	}
	m.toasts.AddError(api.UserMessage(err))
	return nil
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the active screen with header, toasts and help.
func (m Model) View() string {
	var body string
	switch m.screen {
	case screenLogin, screenRegister:
		body = m.authView()
	case screenDashboard:
		body = m.dashboardView()
	default:
		body = m.chatView()
	}

	parts := []string{m.headerView(), body}
	if stack := components.RenderToastStack(m.theme, m.toasts.Toasts(), m.theme.ContentWidth()); stack != "" {
		parts = append(parts, stack)
	}
	h := m.help
	h.ShowAll = m.showHelp
	parts = append(parts, h.View(m.keys.helpFor(m.screen)))

	return m.theme.App.Render(strings.Join(parts, "\n"))
}

func (m Model) headerView() string {
	left := m.theme.HeaderTitle.Render("ADDit DOit") + "  " + m.theme.HeaderSubtitle.Render(m.screen.String())
	right := ""
	if m.session != nil {
		right = m.theme.HeaderSubtitle.Render(m.session.Email())
		if m.screen == screenDashboard {
			right = m.theme.Hint.Render(m.tasks.Stats().String()) + "  " + right
		}
	}
	width := m.theme.ContentWidth() - m.theme.Header.GetHorizontalFrameSize()
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return m.theme.Header.Render(left + strings.Repeat(" ", gap) + right)
}

// overlay centers a modal over the body area.
func (m Model) overlay(modal string) string {
	return lipgloss.Place(m.theme.ContentWidth(), m.bodyHeight(), lipgloss.Center, lipgloss.Center, modal)
}
