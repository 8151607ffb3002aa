package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// PickerItem is one choice of a picker.
type PickerItem struct {
	Value    string
	Label    string
	Selected bool
}

// PickerModel is a centered modal list. In single mode enter picks the
// highlighted item; in multi mode space toggles items and enter applies the
// whole selection.
type PickerModel struct {
	title         string
	items         []PickerItem
	multi         bool
	selectedIndex int
	width         int
	height        int
	theme         Theme
}

// NewPickerModel creates a single-choice picker with current highlighted.
func NewPickerModel(title string, items []PickerItem, current string, theme Theme) PickerModel {
	idx := 0
	for i, it := range items {
		if it.Value == current {
			idx = i
			break
		}
	}
	return PickerModel{title: title, items: items, selectedIndex: idx, theme: theme}
}

// NewMultiPickerModel creates a picker whose items can be toggled.
func NewMultiPickerModel(title string, items []PickerItem, theme Theme) PickerModel {
	return PickerModel{title: title, items: append([]PickerItem(nil), items...), multi: true, theme: theme}
}

// SetSize updates the picker dimensions.
func (m *PickerModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Multi reports whether the picker toggles items.
func (m *PickerModel) Multi() bool { return m.multi }

// Len returns the number of items.
func (m *PickerModel) Len() int { return len(m.items) }

// MoveUp moves the highlight up.
func (m *PickerModel) MoveUp() {
	if m.selectedIndex > 0 {
		m.selectedIndex--
	}
}

// MoveDown moves the highlight down.
func (m *PickerModel) MoveDown() {
	if m.selectedIndex < len(m.items)-1 {
		m.selectedIndex++
	}
}

// Toggle flips the highlighted item of a multi picker.
func (m *PickerModel) Toggle() {
	if !m.multi || m.selectedIndex >= len(m.items) {
		return
	}
	m.items[m.selectedIndex].Selected = !m.items[m.selectedIndex].Selected
}

// Highlighted returns the highlighted item's value.
func (m *PickerModel) Highlighted() string {
	if m.selectedIndex >= 0 && m.selectedIndex < len(m.items) {
		return m.items[m.selectedIndex].Value
	}
	return ""
}

// Chosen returns the selected values of a multi picker in item order.
func (m *PickerModel) Chosen() []string {
	var out []string
	for _, it := range m.items {
		if it.Selected {
			out = append(out, it.Value)
		}
	}
	return out
}

// View renders the picker overlay.
func (m *PickerModel) View() string {
	if m.width == 0 {
		m.width = 60
	}
	if m.height == 0 {
		m.height = 20
	}
	t := m.theme

	boxWidth := 48
	if m.width < boxWidth+10 {
		boxWidth = m.width - 10
	}
	if boxWidth < 25 {
		boxWidth = 25
	}

	var lines []string
	titleStyle := t.Renderer.NewStyle().Foreground(t.Primary).Bold(true)
	lines = append(lines, titleStyle.Render(m.title), "")

	if len(m.items) == 0 {
		lines = append(lines, t.Renderer.NewStyle().Foreground(t.Muted).Render("nothing to choose"))
	}

	// Keep the highlight on screen for long lists.
	maxRows := m.height - 10
	if maxRows < 3 {
		maxRows = 3
	}
	start := 0
	if m.selectedIndex >= maxRows {
		start = m.selectedIndex - maxRows + 1
	}
	end := start + maxRows
	if end > len(m.items) {
		end = len(m.items)
	}

	for i := start; i < end; i++ {
		it := m.items[i]
		isHighlighted := i == m.selectedIndex
		style := t.Renderer.NewStyle().Foreground(t.Base.GetForeground())
		prefix := "  "
		if isHighlighted {
			style = style.Foreground(t.Primary).Bold(true)
			prefix = "> "
		}
		mark := ""
		if m.multi {
			mark = "[ ] "
			if it.Selected {
				mark = "[x] "
			}
		}
		label := truncateLabel(mark+it.Label, boxWidth-8)
		lines = append(lines, style.Render(prefix+label))
	}

	lines = append(lines, "")
	footer := "j/k: navigate | enter: apply | esc: cancel"
	if m.multi {
		footer = "j/k: navigate | space: toggle | enter: apply | esc: cancel"
	}
	lines = append(lines, t.Renderer.NewStyle().Foreground(t.Secondary).Italic(true).Render(footer))

	box := t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(1, 2).
		Width(boxWidth).
		Render(strings.Join(lines, "\n"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
