// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/taskchat-tui/internal/ui/styles"
)

// =============================================================================
// FORM - labelled text inputs with per-field errors
// =============================================================================

// FieldSpec describes one form field.
type FieldSpec struct {
	Name        string
	Label       string
	Placeholder string
	Value       string
	Password    bool
	CharLimit   int
}

// FormSubmitMsg is sent when the form is submitted.
type FormSubmitMsg struct {
	FormID string
	Values map[string]string
}

// FormCancelMsg is sent when the form is dismissed.
type FormCancelMsg struct {
	FormID string
}

type formField struct {
	spec  FieldSpec
	input textinput.Model
	err   string
}

// Form is a modal form. Tab and Shift+Tab move between fields, Enter on
// the last field submits, Esc cancels.
type Form struct {
	ID      string
	Title   string
	Submit  string
	fields  []formField
	focus   int
	general string
	busy    bool
	theme   *styles.Theme
	width   int
}

// NewForm builds a form from field specs.
func NewForm(theme *styles.Theme, id, title, submit string, specs ...FieldSpec) *Form {
	f := &Form{
		ID:     id,
		Title:  title,
		Submit: submit,
		theme:  theme,
		width:  56,
	}
	for _, spec := range specs {
		in := textinput.New()
		in.Placeholder = spec.Placeholder
		in.Prompt = ""
		in.CharLimit = spec.CharLimit
		in.SetValue(spec.Value)
		in.TextStyle = lipgloss.NewStyle().Foreground(styles.TextPrimary)
		in.PlaceholderStyle = theme.InputPlaceholder
		if spec.Password {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		f.fields = append(f.fields, formField{spec: spec, input: in})
	}
	f.SetWidth(f.width)
	return f
}

// Init focuses the first field.
func (f *Form) Init() tea.Cmd {
	return f.setFocus(0)
}

// SetWidth sets the modal width.
func (f *Form) SetWidth(width int) {
	f.width = width
	inner := width - f.theme.Modal.GetHorizontalFrameSize() - f.theme.InputContainer.GetHorizontalFrameSize() - 1
	if inner < 10 {
		inner = 10
	}
	for i := range f.fields {
		f.fields[i].input.Width = inner
	}
}

// Values returns the current field values keyed by name.
func (f *Form) Values() map[string]string {
	out := make(map[string]string, len(f.fields))
	for _, fl := range f.fields {
		out[fl.spec.Name] = fl.input.Value()
	}
	return out
}

// SetValue sets a field's value.
func (f *Form) SetValue(name, value string) {
	for i := range f.fields {
		if f.fields[i].spec.Name == name {
			f.fields[i].input.SetValue(value)
		}
	}
}

// SetErrors shows per-field messages, keyed by field name. Messages for
// unknown fields become the general error. Focus moves to the first
// failing field.
func (f *Form) SetErrors(errs map[string]string) tea.Cmd {
	f.general = ""
	first := -1
	for i := range f.fields {
		f.fields[i].err = errs[f.fields[i].spec.Name]
		if f.fields[i].err != "" && first < 0 {
			first = i
		}
	}
	for name, msg := range errs {
		if f.fieldIndex(name) < 0 {
			f.general = msg
		}
	}
	if first >= 0 {
		return f.setFocus(first)
	}
	return nil
}

// SetError shows a form-level error, e.g. from the server.
func (f *Form) SetError(msg string) {
	f.general = msg
}

// Error returns the form-level error.
func (f *Form) Error() string {
	return f.general
}

// SetBusy disables submission while a request is in flight.
func (f *Form) SetBusy(busy bool) {
	f.busy = busy
}

// Busy reports whether a submission is in flight.
func (f *Form) Busy() bool {
	return f.busy
}

// Focused returns the name of the focused field.
func (f *Form) Focused() string {
	if len(f.fields) == 0 {
		return ""
	}
	return f.fields[f.focus].spec.Name
}

func (f *Form) fieldIndex(name string) int {
	for i, fl := range f.fields {
		if fl.spec.Name == name {
			return i
		}
	}
	return -1
}

func (f *Form) setFocus(i int) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	f.focus = (i + len(f.fields)) % len(f.fields)
	for j := range f.fields {
		f.fields[j].input.Blur()
	}
	return f.fields[f.focus].input.Focus()
}

// Update handles navigation and editing.
func (f *Form) Update(msg tea.Msg) (*Form, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "esc":
			id := f.ID
			return f, func() tea.Msg { return FormCancelMsg{FormID: id} }
		case "tab", "down":
			return f, f.setFocus(f.focus + 1)
		case "shift+tab", "up":
			return f, f.setFocus(f.focus - 1)
		case "enter":
			if f.focus < len(f.fields)-1 {
				return f, f.setFocus(f.focus + 1)
			}
			if f.busy {
				return f, nil
			}
			id, values := f.ID, f.Values()
			return f, func() tea.Msg { return FormSubmitMsg{FormID: id, Values: values} }
		}
	}
	if len(f.fields) == 0 {
		return f, nil
	}
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return f, cmd
}

// View renders the form as a modal box.
func (f *Form) View() string {
	var b strings.Builder
	b.WriteString(f.theme.ModalTitle.Render(f.Title))
	b.WriteString("\n")

	for i, fl := range f.fields {
		b.WriteString(f.theme.FormLabel.Render(fl.spec.Label))
		b.WriteString("\n")
		box := f.theme.InputContainer
		if i == f.focus {
			box = f.theme.InputFocused
		}
		if fl.err != "" {
			box = box.BorderForeground(styles.Rose)
		}
		b.WriteString(box.Render(fl.input.View()))
		b.WriteString("\n")
		if fl.err != "" {
			b.WriteString(f.theme.FormError.Render(fl.err))
			b.WriteString("\n")
		}
	}

	if f.general != "" {
		b.WriteString(f.theme.FormError.Render(styles.IconError + " " + f.general))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if f.busy {
		b.WriteString(f.theme.ButtonDisabled.Render(f.Submit + "..."))
	} else {
		b.WriteString(f.theme.Button.Render(f.Submit))
	}
	b.WriteString("  ")
	b.WriteString(f.theme.Hint.Render("tab next  enter submit  esc cancel"))

	return f.theme.Modal.Width(f.width - f.theme.Modal.GetHorizontalBorderSize()).Render(b.String())
}
