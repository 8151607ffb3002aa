package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/prsconf/pkg/form"
)

const helpMarkdown = `## Keys

**Tree**

| Key | Action |
|---|---|
| j / k, ↑ / ↓ | move |
| enter, space | expand, collapse and open details |
| l / → | expand or step into the first child |
| h / ← | collapse or jump to the parent |
| g / G | top / bottom |
| n | create under the selected node |
| d | delete the selected node |
| y | copy the node id |
| i | node summary |

**Details**

| Key | Action |
|---|---|
| tab | switch between tree and details |
| enter | edit the field; toggles and lists open in place |
| ctrl+s | save changes |
| ctrl+r | reset changes |
| r / w | read / write tag values |
| f / a | toggle formatted / latest-only readings |

Press **esc** or **?** to close.`

// Overlay is a scrollable markdown modal.
type Overlay struct {
	title    string
	body     string
	renderer *glamour.TermRenderer
	width    int
	height   int
	theme    Theme
}

// NewOverlay creates a modal around markdown.
func NewOverlay(title, markdown string, theme Theme) Overlay {
	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(64),
	)
	return Overlay{title: title, body: markdown, renderer: r, theme: theme}
}

// NewHelpOverlay creates the key reference.
func NewHelpOverlay(theme Theme) Overlay {
	return NewOverlay("prsconf", helpMarkdown, theme)
}

// SetSize updates the available dimensions.
func (o *Overlay) SetSize(width, height int) {
	o.width = width
	o.height = height
}

// Title returns the overlay title.
func (o *Overlay) Title() string { return o.title }

// Markdown returns the unrendered body.
func (o *Overlay) Markdown() string { return o.body }

// View renders the modal centered in the screen.
func (o *Overlay) View() string {
	r := o.theme.Renderer
	body := o.body
	if o.renderer != nil {
		if out, err := o.renderer.Render(o.body); err == nil {
			body = strings.Trim(out, "\n")
		}
	}

	modalWidth := 72
	if o.width > 0 && modalWidth > o.width-4 {
		modalWidth = o.width - 4
	}
	if modalWidth < 30 {
		modalWidth = 30
	}

	var b strings.Builder
	b.WriteString(r.NewStyle().Bold(true).Foreground(o.theme.Primary).Render(o.title))
	b.WriteString("\n")
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(r.NewStyle().Foreground(o.theme.Muted).Italic(true).Render("esc to close"))

	modal := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(o.theme.Secondary).
		Padding(0, 1).
		Width(modalWidth).
		Render(b.String())
	if o.width == 0 || o.height == 0 {
		return modal
	}
	return lipgloss.Place(o.width, o.height, lipgloss.Center, lipgloss.Center, modal)
}

// summaryMarkdown describes a node and, when loaded, its form.
func summaryMarkdown(n *EntityTreeNode, f *form.Form, queryURL string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", n.Node.Label)
	fmt.Fprintf(&b, "- **id:** `%s`\n", n.Node.ID)
	fmt.Fprintf(&b, "- **kind:** %s\n", n.Node.Kind)
	fmt.Fprintf(&b, "- **collection:** %s\n", n.Collection())
	if n.Parent != nil {
		fmt.Fprintf(&b, "- **parent:** `%s`\n", n.Parent.Node.ID)
	}
	if queryURL != "" {
		fmt.Fprintf(&b, "- **query:** %s\n", queryURL)
	}
	if f == nil || f.EntityID() != n.Node.ID || !f.Loaded() {
		return b.String()
	}

	if dirty := f.DirtyFields(); len(dirty) > 0 {
		b.WriteString("\n**Unsaved changes**\n\n")
		for _, field := range dirty {
			fmt.Fprintf(&b, "- %s: `%s` → `%s`\n", field.Label, field.Initial, field.Current)
		}
	}
	if params := f.Parameters(); len(params) > 0 {
		b.WriteString("\n**Parameters**\n\n| # | Name | Config |\n|---|---|---|\n")
		for _, p := range params {
			fmt.Fprintf(&b, "| %s | %s | `%s` |\n", p.Index, p.Name, p.Config)
		}
	}
	return b.String()
}
