// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/taskchat-tui/internal/composer"
	"github.com/jeranaias/taskchat-tui/internal/ui/styles"
	"github.com/jeranaias/taskchat-tui/internal/util"
)

// =============================================================================
// COMPOSER VIEW - textarea projection of the chat draft
// =============================================================================

// ComposerHint is the helper line shown under the input.
const ComposerHint = "Enter to send, Alt+Enter for new line"

// SubmitMsg carries a message accepted by the submission gate.
type SubmitMsg struct {
	Text string
}

// readClipboard is swapped out in tests.
var readClipboard = clipboard.ReadAll

// ComposerView renders a composer.Composer with a bubbles textarea. The
// composer owns the text; the textarea is redrawn from it after every edit.
// The textarea has no selection, so edits always land at a plain caret.
type ComposerView struct {
	c        *composer.Composer
	ta       textarea.Model
	theme    *styles.Theme
	width    int
	maxLines int
	disabled bool
	outbox   []string
}

// NewComposerView creates a composer view. maxLines bounds the displayed
// height only; the draft may hold any number of lines.
func NewComposerView(theme *styles.Theme, maxLines int) *ComposerView {
	if maxLines < 1 {
		maxLines = 1
	}

	// The composer is the only bound on the text. Textarea limits count
	// cells and lines, which would cut drafts the composer accepted.
	ta := textarea.New()
	ta.Placeholder = "Type your message..."
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.MaxHeight = 0
	ta.SetHeight(1)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"))
	ta.KeyMap.Paste.SetEnabled(false)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Text = lipgloss.NewStyle().Foreground(styles.TextPrimary)
	ta.FocusedStyle.Placeholder = theme.InputPlaceholder
	ta.BlurredStyle = ta.FocusedStyle

	v := &ComposerView{
		c:        c,
		ta:       ta,
		theme:    theme,
		width:    80,
		maxLines: maxLines,
	}
	v.c = composer.New(func(msg string) {
		v.outbox = append(v.outbox, msg)
	})
	v.SetWidth(v.width)
	return v
}

// Composer returns the underlying composer.
func (v *ComposerView) Composer() *composer.Composer {
	return v.c
}

// Focus focuses the input.
func (v *ComposerView) Focus() tea.Cmd {
	return v.ta.Focus()
}

// Blur removes focus.
func (v *ComposerView) Blur() {
	v.ta.Blur()
}

// Focused reports whether the input has focus.
func (v *ComposerView) Focused() bool {
	return v.ta.Focused()
}

// SetDisabled toggles the submission gate. Editing stays possible while
// disabled; only sending is refused.
func (v *ComposerView) SetDisabled(disabled bool) {
	v.disabled = disabled
}

// Disabled reports whether sending is refused.
func (v *ComposerView) Disabled() bool {
	return v.disabled
}

// SetWidth sets the outer width.
func (v *ComposerView) SetWidth(width int) {
	v.width = width
	inner := width - v.theme.InputContainer.GetHorizontalFrameSize()
	if inner < 10 {
		inner = 10
	}
	v.ta.SetWidth(inner)
	v.resize()
}

// Value returns the draft text.
func (v *ComposerView) Value() string {
	return v.c.Text()
}

// SetValue replaces the draft as if typed.
func (v *ComposerView) SetValue(s string) composer.Change {
	ch := v.c.SetText(sanitizeInput(s))
	if ch.Changed {
		v.c.Select(composer.Caret(len([]rune(v.c.Text()))))
		v.sync()
	}
	return ch
}

// Height returns the rendered height in rows.
func (v *ComposerView) Height() int {
	return lipgloss.Height(v.View())
}

// Update handles key input. Enter submits, Alt+Enter inserts a newline and
// pastes go through the bounded splice.
func (v *ComposerView) Update(msg tea.Msg) (*ComposerView, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		v.ta, cmd = v.ta.Update(msg)
		return v, cmd
	}

	switch {
	case km.Type == tea.KeyEnter && !km.Alt && !km.Paste:
		return v, v.submit()

	case km.Paste && km.Type == tea.KeyRunes:
		return v, v.paste(string(km.Runes))

	case km.Type == tea.KeyCtrlV:
		text, err := readClipboard()
		if err != nil {
			return v, toastCmd("Clipboard is not available", ToastKindWarning)
		}
		return v, v.paste(text)
	}

	var cmd tea.Cmd
	v.ta, cmd = v.ta.Update(msg)
	v.reconcile()
	return v, cmd
}

// submit runs the gate. A blank or disabled submit leaves the draft alone.
// Accepted messages reach the program through the composer's sender.
func (v *ComposerView) submit() tea.Cmd {
	if _, ok := v.c.Submit(v.disabled); !ok {
		return nil
	}
	v.sync()

	sent := v.outbox
	v.outbox = nil
	cmds := make([]tea.Cmd, 0, len(sent))
	for _, text := range sent {
		cmds = append(cmds, func() tea.Msg { return SubmitMsg{Text: text} })
	}
	return tea.Batch(cmds...)
}

// paste splices text at the caret.
func (v *ComposerView) paste(text string) tea.Cmd {
	text = sanitizeInput(text)
	if text == "" {
		return nil
	}
	ch := v.c.PasteAt(composer.Caret(v.caret()), text)
	if ch.Changed {
		v.sync()
	}
	if ch.Truncated {
		return toastCmd(
			fmt.Sprintf("Pasted text was shortened to fit the %d character limit", composer.MaxLength),
			ToastKindWarning)
	}
	return nil
}

// reconcile adopts a textarea edit into the composer, or reverts the
// textarea when the composer refuses it.
func (v *ComposerView) reconcile() {
	value := v.ta.Value()
	if value == v.c.Text() {
		v.c.Select(composer.Caret(v.caret()))
		return
	}
	ch := v.c.SetText(value)
	if ch.Rejected {
		v.sync()
		return
	}
	v.c.Select(composer.Caret(v.caret()))
	v.resize()
}

// sync redraws the textarea from the composer, keeping its caret.
func (v *ComposerView) sync() {
	v.ta.SetValue(v.c.Text())
	v.moveCaret(v.c.Draft().Selection().End)
	v.resize()
}

// caret returns the textarea cursor as a rune offset into the value.
func (v *ComposerView) caret() int {
	lines := strings.Split(v.ta.Value(), "\n")
	row := v.ta.Line()
	offset := 0
	for i := 0; i < row && i < len(lines); i++ {
		offset += len([]rune(lines[i])) + 1
	}
	info := v.ta.LineInfo()
	return offset + info.StartColumn + info.ColumnOffset
}

// moveCaret places the textarea cursor at rune offset pos. SetValue leaves
// the cursor at the end, so only upward moves are needed.
func (v *ComposerView) moveCaret(pos int) {
	runes := []rune(v.ta.Value())
	if pos > len(runes) {
		pos = len(runes)
	}
	before := string(runes[:pos])
	row := strings.Count(before, "\n")
	col := len([]rune(before[strings.LastIndex(before, "\n")+1:]))

	for guard := len(runes) + 1; v.ta.Line() > row && guard > 0; guard-- {
		v.ta.CursorUp()
	}
	v.ta.SetCursor(col)
}

// resize grows the textarea with its content up to maxLines rows.
func (v *ComposerView) resize() {
	width := v.ta.Width()
	if width < 1 {
		width = 1
	}
	rows := 0
	for _, line := range strings.Split(v.ta.Value(), "\n") {
		w := util.Width(line)
		rows += 1 + w/width
	}
	if rows < 1 {
		rows = 1
	}
	if rows > v.maxLines {
		rows = v.maxLines
	}
	v.ta.SetHeight(rows)
}

// View renders the input box, send control, hint and counter.
func (v *ComposerView) View() string {
	box := v.theme.InputContainer
	if v.ta.Focused() {
		box = v.theme.InputFocused
	}
	input := box.Width(v.width - box.GetHorizontalBorderSize()).Render(v.ta.View())

	send := v.theme.ButtonDisabled.Render("Send")
	if v.c.CanSubmit(v.disabled) {
		send = v.theme.Button.Render("Send")
	}

	left := v.theme.Hint.Render(ComposerHint)
	right := lipgloss.JoinHorizontal(lipgloss.Center, v.counter(), " ", send)
	gap := v.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	footer := left + strings.Repeat(" ", gap) + right

	return lipgloss.JoinVertical(lipgloss.Left, input, footer)
}

// counter renders the remaining-characters indicator, empty until the
// draft nears the limit.
func (v *ComposerView) counter() string {
	fb := v.c.Feedback()
	text := fmt.Sprintf("%d characters remaining", fb.Remaining)
	switch fb.Severity() {
	case composer.SeverityCritical:
		return v.theme.CharCountDanger.Render(text)
	case composer.SeverityWarning:
		return v.theme.CharCountWarning.Render(text)
	default:
		return ""
	}
}

// sanitizeInput applies the textarea's own input rules (CRLF and CR become
// LF, a tab becomes four spaces, other control runes and invalid bytes are
// dropped) so that redrawing the textarea from the draft is lossless.
func sanitizeInput(s string) string {
	s = util.NormalizeNewlines(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n':
			b.WriteRune(r)
		case r == '\t':
			b.WriteString("    ")
		case r == utf8.RuneError, unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func toastCmd(message string, kind ToastKind) tea.Cmd {
	return func() tea.Msg {
		return ToastAddMsg{Message: message, Kind: kind}
	}
}
