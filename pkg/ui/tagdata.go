package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/goccy/go-json"

	"github.com/vanderheijden86/prsconf/pkg/api"
	"github.com/vanderheijden86/prsconf/pkg/model"
)

// ParseTagValue converts typed input into the value written for a tag of
// the given value type. Numbers must parse; JSON must be well formed.
func ParseTagValue(vt model.ValueType, raw string) (any, error) {
	switch vt {
	case model.ValueInt, model.ValueFloat:
		s := strings.TrimSpace(raw)
		if s == "" {
			return nil, fmt.Errorf("value is empty")
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", raw)
		}
		return n, nil
	case model.ValueJSON:
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("invalid JSON value: %w", err)
		}
		return v, nil
	default:
		return raw, nil
	}
}

// TagDataPanel reads and writes the values of the tag shown in the form.
type TagDataPanel struct {
	tagID     string
	valueType model.ValueType
	format    bool
	actual    bool
	series    []model.TagData
	loaded    bool
	editing   bool
	input     textinput.Model
}

// NewTagDataPanel creates an inactive panel.
func NewTagDataPanel() TagDataPanel {
	in := textinput.New()
	in.Prompt = "value> "
	in.Cursor.SetMode(cursor.CursorStatic)
	in.CharLimit = 4096
	return TagDataPanel{input: in}
}

// Reset points the panel at a tag and forgets earlier readings.
func (p *TagDataPanel) Reset(tagID string, vt model.ValueType) {
	p.tagID = tagID
	p.valueType = vt
	p.series = nil
	p.loaded = false
	p.StopEditing()
}

// Active reports whether a tag is attached.
func (p *TagDataPanel) Active() bool { return p.tagID != "" }

// TagID returns the attached tag.
func (p *TagDataPanel) TagID() string { return p.tagID }

// ValueType returns the attached tag's value type.
func (p *TagDataPanel) ValueType() model.ValueType { return p.valueType }

// SetValueType follows edits of the tag's value type.
func (p *TagDataPanel) SetValueType(vt model.ValueType) { p.valueType = vt }

// Query builds the read request for the attached tag.
func (p *TagDataPanel) Query() api.DataQuery {
	return api.DataQuery{TagID: p.tagID, Format: p.format, Actual: p.actual}
}

// ToggleFormat switches formatted values on or off.
func (p *TagDataPanel) ToggleFormat() { p.format = !p.format }

// ToggleActual switches between the latest value and history.
func (p *TagDataPanel) ToggleActual() { p.actual = !p.actual }

// SetSeries stores a reading.
func (p *TagDataPanel) SetSeries(series []model.TagData) {
	p.series = series
	p.loaded = true
}

// Rows returns the rows of the attached tag's series.
func (p *TagDataPanel) Rows() [][]any {
	for _, s := range p.series {
		if s.TagID == p.tagID || s.TagID == "" {
			return s.Data
		}
	}
	return nil
}

// StartEditing focuses the value input.
func (p *TagDataPanel) StartEditing() {
	p.editing = true
	p.input.SetValue("")
	p.input.Focus()
}

// StopEditing blurs the value input.
func (p *TagDataPanel) StopEditing() {
	p.editing = false
	p.input.Blur()
}

// Editing reports whether the value input has focus.
func (p *TagDataPanel) Editing() bool { return p.editing }

// Input exposes the value input for key handling.
func (p *TagDataPanel) Input() *textinput.Model { return &p.input }

// Value parses the typed input for the attached tag.
func (p *TagDataPanel) Value() (any, error) {
	return ParseTagValue(p.valueType, p.input.Value())
}

// View renders the readings and, while editing, the value input.
func (p *TagDataPanel) View(theme Theme, width int) string {
	r := theme.Renderer
	title := r.NewStyle().Foreground(theme.Primary).Bold(true)
	muted := r.NewStyle().Foreground(theme.Muted)

	var sb strings.Builder
	sb.WriteString(title.Render("Data"))
	flags := fmt.Sprintf("  format:%s actual:%s", onOff(p.format), onOff(p.actual))
	sb.WriteString(muted.Render(flags))
	sb.WriteString("\n")

	rows := p.Rows()
	switch {
	case !p.loaded:
		sb.WriteString(muted.Render("r: read values  w: write a value  f/a: toggle flags"))
	case len(rows) == 0:
		sb.WriteString(muted.Render("no values"))
	default:
		for i, row := range rows {
			if i > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(truncateLabel(formatDataRow(row), width))
		}
	}
	if p.editing {
		sb.WriteString("\n")
		sb.WriteString(p.input.View())
	}
	return sb.String()
}

// formatDataRow renders [value, timestamp, quality].
func formatDataRow(row []any) string {
	cell := func(i int) string {
		if i < len(row) {
			return model.StringValue(row[i])
		}
		return ""
	}
	out := cell(1) + "  " + cell(0)
	if q := cell(2); q != "" {
		out += "  (" + q + ")"
	}
	return strings.TrimSpace(out)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
