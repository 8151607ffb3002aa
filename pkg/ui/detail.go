package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/vanderheijden86/prsconf/pkg/attrs"
	"github.com/vanderheijden86/prsconf/pkg/form"
)

// DetailModel shows the form of the loaded entity and edits one field at a
// time.
type DetailModel struct {
	form     *form.Form
	theme    Theme
	cursor   int
	editing  bool
	input    textinput.Model
	viewport viewport.Model
	width    int
	height   int
}

// NewDetailModel wraps a form.
func NewDetailModel(f *form.Form, theme Theme) DetailModel {
	in := textinput.New()
	in.Prompt = ""
	in.Cursor.SetMode(cursor.CursorStatic)
	in.CharLimit = 8192
	return DetailModel{form: f, theme: theme, input: in, viewport: viewport.New(0, 0)}
}

// SetSize updates the pane dimensions.
func (d *DetailModel) SetSize(width, height int) {
	d.width = width
	d.height = height
	d.viewport.Width = width
	d.viewport.Height = height
	d.input.Width = width / 2
}

// Reset moves the cursor to the first field and abandons any edit.
func (d *DetailModel) Reset() {
	d.cursor = 0
	d.CancelEdit()
	d.viewport.GotoTop()
}

// Fields returns the fields currently on screen.
func (d *DetailModel) Fields() []*form.Field {
	return d.form.VisibleFields()
}

// SelectedField returns the field under the cursor, or nil.
func (d *DetailModel) SelectedField() *form.Field {
	fields := d.Fields()
	if d.cursor >= 0 && d.cursor < len(fields) {
		return fields[d.cursor]
	}
	return nil
}

// SelectByID moves the cursor to a visible field.
func (d *DetailModel) SelectByID(id string) bool {
	for i, f := range d.Fields() {
		if f.ID == id {
			d.cursor = i
			return true
		}
	}
	return false
}

// MoveUp moves to the previous field.
func (d *DetailModel) MoveUp() {
	if d.cursor > 0 {
		d.cursor--
	}
}

// MoveDown moves to the next field.
func (d *DetailModel) MoveDown() {
	if d.cursor < len(d.Fields())-1 {
		d.cursor++
	}
}

// Editing reports whether a text edit is in progress.
func (d *DetailModel) Editing() bool { return d.editing }

// Input exposes the text input for key handling.
func (d *DetailModel) Input() *textinput.Model { return &d.input }

// BeginEdit starts editing the selected text, number or date field.
func (d *DetailModel) BeginEdit() bool {
	f := d.SelectedField()
	if f == nil {
		return false
	}
	switch f.Kind {
	case form.Text, form.Number, form.DateTime:
	default:
		return false
	}
	d.input.SetValue(f.Current)
	d.input.CursorEnd()
	d.input.Placeholder = ""
	if f.Kind == form.DateTime {
		d.input.Placeholder = attrs.DisplayLayout
	}
	d.input.Focus()
	d.editing = true
	return true
}

// CommitEdit writes the input back into the form.
func (d *DetailModel) CommitEdit() error {
	f := d.SelectedField()
	d.editing = false
	d.input.Blur()
	if f == nil {
		return nil
	}
	_, err := d.form.Set(f.ID, d.input.Value())
	return err
}

// CancelEdit abandons the edit.
func (d *DetailModel) CancelEdit() {
	d.editing = false
	d.input.Blur()
}

// ToggleBool flips the selected boolean field.
func (d *DetailModel) ToggleBool() bool {
	f := d.SelectedField()
	if f == nil || f.Kind != form.Bool {
		return false
	}
	next := "true"
	if f.Current == "true" {
		next = "false"
	}
	_, _ = d.form.Set(f.ID, next)
	return true
}

// View renders the form.
func (d *DetailModel) View(extra string) string {
	r := d.theme.Renderer
	muted := r.NewStyle().Foreground(d.theme.Muted)
	if !d.form.Shown() {
		return muted.Render("Select a node to see its configuration.")
	}

	var lines []string
	header := r.NewStyle().Foreground(d.theme.Primary).Bold(true).
		Render(fmt.Sprintf("%s %s", d.form.Kind(), d.form.EntityID()))
	if d.form.Dirty() {
		header += r.NewStyle().Foreground(d.theme.Warning).Render("  ● modified")
	}
	lines = append(lines, header, "")

	labelWidth := 0
	fields := d.Fields()
	for _, f := range fields {
		if w := len([]rune(f.Label)); w > labelWidth {
			labelWidth = w
		}
	}

	cursorLine := 0
	for i, f := range fields {
		label := f.Label + strings.Repeat(" ", labelWidth-len([]rune(f.Label)))
		value := fieldDisplay(f)
		if d.editing && i == d.cursor {
			value = d.input.View()
		}
		marker := "  "
		if f.Dirty() {
			marker = "* "
		}
		line := marker + muted.Render(label) + "  " + value
		if i == d.cursor {
			cursorLine = len(lines)
			line = d.theme.Selected.Render(marker+label+"  ") + value
		}
		lines = append(lines, line)
	}

	if d.form.SectionShown(attrs.SectionParameters) {
		lines = append(lines, "", r.NewStyle().Foreground(d.theme.Primary).Bold(true).Render("Parameters"))
		params := d.form.Parameters()
		if len(params) == 0 {
			lines = append(lines, muted.Render("none"))
		}
		for _, p := range params {
			lines = append(lines, fmt.Sprintf("%s  %s  %s", p.Index, p.Name, muted.Render(p.Config)))
		}
	}
	if extra != "" {
		lines = append(lines, "", extra)
	}

	d.viewport.SetContent(strings.Join(lines, "\n"))
	if d.viewport.Height > 0 {
		if cursorLine < d.viewport.YOffset {
			d.viewport.SetYOffset(cursorLine)
		} else if cursorLine >= d.viewport.YOffset+d.viewport.Height {
			d.viewport.SetYOffset(cursorLine - d.viewport.Height + 1)
		}
		return d.viewport.View()
	}
	return strings.Join(lines, "\n")
}

// fieldDisplay renders a field's current value for reading.
func fieldDisplay(f *form.Field) string {
	switch f.Kind {
	case form.Bool:
		if f.Current == "true" {
			return "[x]"
		}
		return "[ ]"
	case form.Select:
		for _, o := range f.Options {
			if o.Value == f.Current {
				return o.Label
			}
		}
		return f.Current
	case form.MultiSelect:
		var picked []string
		for _, o := range f.Options {
			if o.Selected {
				picked = append(picked, o.Label)
			}
		}
		if len(picked) == 0 {
			return fmt.Sprintf("none of %d", len(f.Options))
		}
		return strings.Join(picked, ", ")
	default:
		return f.Current
	}
}
