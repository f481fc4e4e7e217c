// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// FRAME
	// ==========================================================================

	App            lipgloss.Style
	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style
	StatusBar      lipgloss.Style
	Panel          lipgloss.Style

	// ==========================================================================
	// TASKS
	// ==========================================================================

	TaskRow         lipgloss.Style
	TaskRowSelected lipgloss.Style
	TaskTitle       lipgloss.Style
	TaskTitleDone   lipgloss.Style
	TaskDescription lipgloss.Style
	TaskDate        lipgloss.Style
	CheckDone       lipgloss.Style
	CheckPending    lipgloss.Style
	EmptyTitle      lipgloss.Style
	EmptyText       lipgloss.Style

	// ==========================================================================
	// CHAT
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	SystemBubble    lipgloss.Style
	RoleLabel       lipgloss.Style
	Timestamp       lipgloss.Style
	ToolBadge       lipgloss.Style
	FailedNote      lipgloss.Style

	// ==========================================================================
	// INPUT & FORMS
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputFocused     lipgloss.Style
	InputPlaceholder lipgloss.Style
	CharCount        lipgloss.Style
	CharCountWarning lipgloss.Style
	CharCountDanger  lipgloss.Style
	Hint             lipgloss.Style
	Button           lipgloss.Style
	ButtonDisabled   lipgloss.Style
	ButtonDanger     lipgloss.Style
	Modal            lipgloss.Style
	ModalTitle       lipgloss.Style
	FormLabel        lipgloss.Style
	FormError        lipgloss.Style

	// ==========================================================================
	// FEEDBACK
	// ==========================================================================

	ToastError   lipgloss.Style
	ToastSuccess lipgloss.Style
	ToastInfo    lipgloss.Style
	ToastWarning lipgloss.Style
	Spinner      lipgloss.Style
	HelpKey      lipgloss.Style
	HelpDesc     lipgloss.Style
}

// NewTheme creates a theme. mode is "dark", "light" or "auto"; auto asks
// the terminal.
func NewTheme(mode string) *Theme {
	colorProfile := termenv.ColorProfile()

	var isDark bool
	switch strings.ToLower(mode) {
	case "dark":
		isDark = true
	case "light":
		isDark = false
	default:
		isDark = termenv.HasDarkBackground()
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle().Padding(0, 1)

	t.Header = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(GoldDim).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().Bold(true).Foreground(Gold)
	t.HeaderSubtitle = lipgloss.NewStyle().Foreground(TextSecondary)
	t.StatusBar = lipgloss.NewStyle().Foreground(TextMuted).Padding(0, 1)
	t.Panel = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(GoldDim).
		Padding(0, 1)

	// Tasks
	t.TaskRow = lipgloss.NewStyle().PaddingLeft(2)
	t.TaskRowSelected = lipgloss.NewStyle().
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(Gold).
		PaddingLeft(1)
	t.TaskTitle = lipgloss.NewStyle().Bold(true).Foreground(TextPrimary)
	t.TaskTitleDone = lipgloss.NewStyle().Strikethrough(true).Foreground(TextMuted)
	t.TaskDescription = lipgloss.NewStyle().Foreground(TextSecondary)
	t.TaskDate = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)
	t.CheckDone = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.CheckPending = lipgloss.NewStyle().Foreground(Gold)
	t.EmptyTitle = lipgloss.NewStyle().Bold(true).Foreground(Gold)
	t.EmptyText = lipgloss.NewStyle().Foreground(TextSecondary)

	// Chat
	t.UserBubble = lipgloss.NewStyle().
		Foreground(TextPrimary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Gold).
		Padding(0, 1).
		MarginLeft(4)
	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(TextPrimary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(GoldDim).
		Padding(0, 1).
		MarginRight(4)
	t.SystemBubble = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true).
		Padding(0, 1)
	t.RoleLabel = lipgloss.NewStyle().Bold(true).Foreground(Gold)
	t.Timestamp = lipgloss.NewStyle().Foreground(TextMuted)
	t.ToolBadge = lipgloss.NewStyle().Foreground(Sky)
	t.FailedNote = lipgloss.NewStyle().Foreground(Rose)

	// Input & forms
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(GoldDim).
		Padding(0, 1)
	t.InputFocused = t.InputContainer.BorderForeground(Gold)
	t.InputPlaceholder = lipgloss.NewStyle().Foreground(TextMuted)
	t.CharCount = lipgloss.NewStyle().Foreground(TextMuted)
	t.CharCountWarning = lipgloss.NewStyle().Foreground(Amber)
	t.CharCountDanger = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.Hint = lipgloss.NewStyle().Foreground(TextMuted)
	t.Button = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(GoldDeep).
		Bold(true).
		Padding(0, 2)
	t.ButtonDisabled = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(Overlay).
		Padding(0, 2)
	t.ButtonDanger = t.Button.Background(Rose)
	t.Modal = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Gold).
		Padding(1, 2)
	t.ModalTitle = lipgloss.NewStyle().Bold(true).Foreground(Gold).MarginBottom(1)
	t.FormLabel = lipgloss.NewStyle().Foreground(TextSecondary)
	t.FormError = lipgloss.NewStyle().Foreground(Rose)

	// Feedback
	toast := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		Padding(0, 1)
	t.ToastError = toast.BorderForeground(Rose).Foreground(Rose)
	t.ToastSuccess = toast.BorderForeground(Emerald).Foreground(Emerald)
	t.ToastInfo = toast.BorderForeground(Sky).Foreground(Sky)
	t.ToastWarning = toast.BorderForeground(Amber).Foreground(Amber)
	t.Spinner = lipgloss.NewStyle().Foreground(Gold)
	t.HelpKey = lipgloss.NewStyle().Foreground(Gold).Bold(true)
	t.HelpDesc = lipgloss.NewStyle().Foreground(TextMuted)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// ContentWidth is the usable width inside the app padding.
func (t *Theme) ContentWidth() int {
	w := t.Width - t.App.GetHorizontalFrameSize()
	if w < 20 {
		return 20
	}
	return w
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // >= 100 columns
)
