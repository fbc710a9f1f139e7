package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/coolteam/cardshop/internal/tui/styles"
)

// formField is one labeled input. Multi-line fields use area, the rest input.
type formField struct {
	label string
	input textinput.Model
	area  textarea.Model
	multi bool
}

func (f *formField) value() string {
	if f.multi {
		return f.area.Value()
	}
	return f.input.Value()
}

// form is a vertical list of fields used by the admin editors.
// enter submits from a single-line field, ctrl+s from anywhere.
type form struct {
	title  string
	fields []*formField
	focus  int
	width  int
}

// formResult is what a key did to a form.
type formResult int

const (
	formEditing formResult = iota
	formSubmitted
	formCanceled
)

// newInput returns a prompt-less single-line input. The cursor does not
// blink so focus changes schedule no timers.
func newInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

func newForm(title string, width int) *form {
	return &form{title: title, width: max(width, 20)}
}

func (f *form) input(label, value string) *form {
	ti := newInput("")
	ti.CharLimit = 0
	ti.Width = f.width
	ti.SetValue(value)
	f.fields = append(f.fields, &formField{label: label, input: ti})
	return f
}

func (f *form) secret(label, value string) *form {
	f.input(label, value)
	field := f.fields[len(f.fields)-1]
	field.input.EchoMode = textinput.EchoPassword
	return f
}

func (f *form) area(label, value string, height int) *form {
	ta := textarea.New()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.Cursor.SetMode(cursor.CursorStatic)
	ta.SetWidth(f.width)
	ta.SetHeight(height)
	ta.SetValue(value)
	f.fields = append(f.fields, &formField{label: label, area: ta, multi: true})
	return f
}

// start focuses the first field.
func (f *form) start() tea.Cmd {
	f.focus = 0
	return f.refocus()
}

func (f *form) refocus() tea.Cmd {
	var cmd tea.Cmd
	for i, field := range f.fields {
		switch {
		case i == f.focus && field.multi:
			cmd = field.area.Focus()
		case i == f.focus:
			cmd = field.input.Focus()
		case field.multi:
			field.area.Blur()
		default:
			field.input.Blur()
		}
	}
	return cmd
}

func (f *form) move(delta int) tea.Cmd {
	n := len(f.fields)
	f.focus = (f.focus + delta + n) % n
	return f.refocus()
}

func (f *form) value(i int) string {
	return f.fields[i].value()
}

func (f *form) set(i int, value string) {
	if f.fields[i].multi {
		f.fields[i].area.SetValue(value)
		return
	}
	f.fields[i].input.SetValue(value)
}

func (f *form) focused() *formField {
	return f.fields[f.focus]
}

// handleKey applies a key and reports whether it submitted or canceled.
func (f *form) handleKey(k tea.KeyMsg) (formResult, tea.Cmd) {
	multi := f.focused().multi
	switch k.String() {
	case "esc":
		return formCanceled, nil
	case "ctrl+s":
		return formSubmitted, nil
	case "enter":
		if !multi {
			return formSubmitted, nil
		}
	case "tab":
		return formEditing, f.move(1)
	case "shift+tab":
		return formEditing, f.move(-1)
	case "down":
		if !multi {
			return formEditing, f.move(1)
		}
	case "up":
		if !multi {
			return formEditing, f.move(-1)
		}
	}
	return formEditing, f.forward(k)
}

// forward passes a message (keys, cursor blink) to the focused field.
func (f *form) forward(m tea.Msg) tea.Cmd {
	field := f.focused()
	var cmd tea.Cmd
	if field.multi {
		field.area, cmd = field.area.Update(m)
	} else {
		field.input, cmd = field.input.Update(m)
	}
	return cmd
}

func (f *form) view() string {
	var b strings.Builder
	b.WriteString(styles.Title.Render(f.title))
	b.WriteString("\n")
	for i, field := range f.fields {
		label := styles.Label
		if i == f.focus {
			label = styles.FieldFocus
		}
		b.WriteString(label.Render(field.label))
		if field.multi {
			b.WriteString("\n")
			b.WriteString(field.area.View())
		} else {
			b.WriteString(field.input.View())
		}
		b.WriteString("\n")
	}
	return b.String()
}
