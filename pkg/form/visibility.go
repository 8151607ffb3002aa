package form

import "github.com/vanderheijden86/prsconf/pkg/attrs"

// Visibility tracks which form sections are shown. Sections start hidden.
type Visibility struct {
	shown map[string]bool
}

// NewVisibility returns a state with every section hidden.
func NewVisibility() Visibility {
	return Visibility{shown: make(map[string]bool)}
}

// Apply hides p.Hidden, then shows p.Visible. A section named in neither
// list keeps whatever state it had.
func (v Visibility) Apply(p attrs.Partition) {
	for _, s := range p.Hidden {
		v.shown[s] = false
	}
	for _, s := range p.Visible {
		v.shown[s] = true
	}
}

// Hide hides one section.
func (v Visibility) Hide(section string) {
	v.shown[section] = false
}

// Shown reports whether a section is visible.
func (v Visibility) Shown(section string) bool {
	return v.shown[section]
}
