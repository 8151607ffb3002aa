// tree.go - lazily loaded configuration hierarchy
package ui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/prsconf/pkg/config"
	"github.com/vanderheijden86/prsconf/pkg/model"
)

// TreeOptions controls how the tree is drawn and how links behave.
type TreeOptions struct {
	ExpandIcon          string
	CollapseIcon        string
	LeafIcon            string
	BaseIndent          int
	IndentUnit          int
	OpenLinksExternally bool
}

// TreeOptionsFrom copies the tree section of a configuration.
func TreeOptionsFrom(c config.TreeConfig) TreeOptions {
	return TreeOptions{
		ExpandIcon:          c.ExpandIcon,
		CollapseIcon:        c.CollapseIcon,
		LeafIcon:            c.LeafIcon,
		BaseIndent:          c.BaseIndent,
		IndentUnit:          c.IndentUnit,
		OpenLinksExternally: c.OpenLinksExternally,
	}
}

// DefaultTreeOptions mirrors the default configuration.
func DefaultTreeOptions() TreeOptions {
	return TreeOptionsFrom(config.Default().Tree)
}

// EntityTreeNode is one rendered node. Children are only present while the
// node is expanded; collapsing discards them and expanding fetches again.
type EntityTreeNode struct {
	Node     model.TreeNode
	Children []*EntityTreeNode
	Expanded bool
	Loading  bool
	Depth    int
	Parent   *EntityTreeNode

	// generation identifies the listing a pending fetch belongs to.
	generation uint64
}

// ID returns the node id.
func (n *EntityTreeNode) ID() string { return n.Node.ID }

// IsRoot reports whether the node is one of the fixed top-level nodes.
func (n *EntityTreeNode) IsRoot() bool { return n.Parent == nil && model.IsRootID(n.Node.ID) }

// HasGroup reports whether the node currently owns a child group.
func (n *EntityTreeNode) HasGroup() bool { return len(n.Children) > 0 }

// GroupID is the id of the node's child group.
func (n *EntityTreeNode) GroupID() string { return "group_" + n.Node.ID }

// Collection is the REST collection the node's children and its own record
// are read from. Root ids double as collection names.
func (n *EntityTreeNode) Collection() string {
	if n.IsRoot() {
		return n.Node.ID
	}
	return n.Node.Kind.Collection()
}

// Indicator returns the expand state glyph.
func (n *EntityTreeNode) Indicator(opts TreeOptions) string {
	switch {
	case n.Node.Href != "":
		return opts.LeafIcon
	case n.Expanded:
		return opts.ExpandIcon
	default:
		return opts.CollapseIcon
	}
}

// Activation describes what activating a node requires from the caller.
type Activation struct {
	NodeID string
	Node   model.TreeNode
	IsRoot bool
	// Collapsed is set when the node was expanded and has been folded.
	Collapsed bool
	// Fetch asks for the node's children; Generation must be passed back
	// to ApplyChildren or FailLoad.
	Fetch      bool
	Generation uint64
	// LoadForm asks for the detail form of a non-root node.
	LoadForm bool
	// Href is set for link nodes, which neither expand nor load.
	Href string
}

// TreeModel is the lazily loaded hierarchy plus a cursor over its visible
// rows.
type TreeModel struct {
	roots    []*EntityTreeNode
	flatList []*EntityTreeNode
	nodes    map[string]*EntityTreeNode
	cursor   int
	opts     TreeOptions
	theme    Theme
	marked   string

	width          int
	height         int
	viewportOffset int
	nextGeneration uint64
}

// NewTreeModel creates an empty tree.
func NewTreeModel(theme Theme, opts TreeOptions) TreeModel {
	return TreeModel{
		theme: theme,
		opts:  opts,
		nodes: make(map[string]*EntityTreeNode),
	}
}

// SetOptions replaces the rendering options.
func (t *TreeModel) SetOptions(opts TreeOptions) { t.opts = opts }

// Options returns the rendering options.
func (t *TreeModel) Options() TreeOptions { return t.opts }

// SetSize updates the available dimensions.
func (t *TreeModel) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.ensureCursorVisible()
}

// SetMarked highlights the node whose details are on screen.
func (t *TreeModel) SetMarked(id string) { t.marked = id }

// Build replaces the tree with a forest. Nodes are collapsed unless they
// say otherwise; supplied children become the initial groups.
func (t *TreeModel) Build(forest []model.TreeNode) {
	t.roots = nil
	t.nodes = make(map[string]*EntityTreeNode)
	t.cursor = 0
	t.viewportOffset = 0
	for _, n := range forest {
		if node := t.buildNode(n, 0, nil); node != nil {
			t.roots = append(t.roots, node)
		}
	}
	t.rebuildFlatList()
}

func (t *TreeModel) buildNode(n model.TreeNode, depth int, parent *EntityTreeNode) *EntityTreeNode {
	if n.ID == "" {
		return nil
	}
	if _, dup := t.nodes[n.ID]; dup {
		return nil
	}
	node := &EntityTreeNode{
		Node:     n,
		Expanded: n.Expanded,
		Depth:    depth,
		Parent:   parent,
	}
	node.Node.Children = nil
	t.nodes[n.ID] = node
	for _, c := range n.Children {
		if child := t.buildNode(c, depth+1, node); child != nil {
			node.Children = append(node.Children, child)
		}
	}
	sortSiblings(node.Children)
	return node
}

// sortSiblings orders children for display: an Object always precedes a
// Tag, everything else goes by label.
func sortSiblings(nodes []*EntityTreeNode) {
	model.SortSiblings(nodes,
		func(n *EntityTreeNode) model.EntityKind { return n.Node.Kind },
		func(n *EntityTreeNode) string { return n.Node.Label })
}

// Node returns a node by id.
func (t *TreeModel) Node(id string) (*EntityTreeNode, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Toggle flips a node's expanded state without touching its children.
func (t *TreeModel) Toggle(id string) bool {
	n, ok := t.nodes[id]
	if !ok {
		return false
	}
	n.Expanded = !n.Expanded
	t.rebuildFlatList()
	return true
}

// Activate runs the expand/collapse state machine for a node:
// an expanded node with children collapses and drops them; anything else
// becomes expanded and loading and asks for a fetch.
func (t *TreeModel) Activate(id string) (Activation, bool) {
	n, ok := t.nodes[id]
	if !ok {
		return Activation{}, false
	}
	act := Activation{NodeID: id, Node: n.Node, IsRoot: n.IsRoot()}
	if n.Node.Href != "" {
		act.Href = n.Node.Href
		return act, true
	}

	if n.Expanded && n.HasGroup() {
		t.dropChildren(n)
		n.Expanded = false
		n.Loading = false
		n.generation = 0
		act.Collapsed = true
		t.rebuildFlatList()
		return act, true
	}

	t.nextGeneration++
	n.generation = t.nextGeneration
	n.Expanded = true
	n.Loading = true
	act.Fetch = true
	act.Generation = n.generation
	act.LoadForm = !act.IsRoot
	t.rebuildFlatList()
	return act, true
}

// ApplyChildren installs the result of a listing. It returns false when the
// node is gone or the result is stale. Entries already present, for example
// a node created while the listing was in flight, are not added twice.
func (t *TreeModel) ApplyChildren(id string, generation uint64, children []model.TreeNode) bool {
	n, ok := t.nodes[id]
	if !ok || generation == 0 || n.generation != generation {
		return false
	}
	n.Loading = false
	n.generation = 0

	for _, c := range children {
		if c.ID == "" {
			continue
		}
		if _, exists := t.nodes[c.ID]; exists {
			continue
		}
		if c.Icon == "" {
			c.Icon = c.Kind.Icon()
		}
		c.Children = nil
		child := &EntityTreeNode{Node: c, Depth: n.Depth + 1, Parent: n}
		t.nodes[c.ID] = child
		n.Children = append(n.Children, child)
	}
	sortSiblings(n.Children)
	t.rebuildFlatList()
	return true
}

// FailLoad ends a fetch without children. The node stays expanded without a
// group, so activating it again fetches again.
func (t *TreeModel) FailLoad(id string, generation uint64) bool {
	n, ok := t.nodes[id]
	if !ok || generation == 0 || n.generation != generation {
		return false
	}
	n.Loading = false
	n.generation = 0
	t.rebuildFlatList()
	return true
}

// InsertChild puts a freshly created node at the top of its parent's group,
// creating the group when there is none. The parent becomes expanded.
func (t *TreeModel) InsertChild(parentID string, n model.TreeNode) (*EntityTreeNode, error) {
	parent, ok := t.nodes[parentID]
	if !ok {
		return nil, fmt.Errorf("parent %s not in tree", parentID)
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	if existing, ok := t.nodes[n.ID]; ok {
		return existing, nil
	}
	if n.Icon == "" {
		n.Icon = n.Kind.Icon()
	}
	n.Children = nil
	child := &EntityTreeNode{Node: n, Depth: parent.Depth + 1, Parent: parent}
	t.nodes[n.ID] = child
	parent.Children = append([]*EntityTreeNode{child}, parent.Children...)
	parent.Expanded = true
	t.rebuildFlatList()
	return child, nil
}

// Remove deletes a node together with its group. Roots cannot be removed.
func (t *TreeModel) Remove(id string) bool {
	n, ok := t.nodes[id]
	if !ok || n.Parent == nil {
		return false
	}
	siblings := n.Parent.Children
	for i, s := range siblings {
		if s == n {
			n.Parent.Children = append(siblings[:i:i], siblings[i+1:]...)
			break
		}
	}
	t.dropChildren(n)
	delete(t.nodes, id)
	t.rebuildFlatList()
	return true
}

// Rename changes a node's label in place.
func (t *TreeModel) Rename(id, label string) bool {
	n, ok := t.nodes[id]
	if !ok {
		return false
	}
	n.Node.Label = label
	return true
}

func (t *TreeModel) dropChildren(n *EntityTreeNode) {
	for _, c := range n.Children {
		t.dropChildren(c)
		delete(t.nodes, c.Node.ID)
	}
	n.Children = nil
}

// Indent is the column a node's row starts at.
func (t *TreeModel) Indent(n *EntityTreeNode) int {
	return t.opts.BaseIndent + n.Depth*t.opts.IndentUnit
}

// SelectedNode returns the node under the cursor, or nil.
func (t *TreeModel) SelectedNode() *EntityTreeNode {
	if t.cursor >= 0 && t.cursor < len(t.flatList) {
		return t.flatList[t.cursor]
	}
	return nil
}

// SelectedID returns the id under the cursor, or "".
func (t *TreeModel) SelectedID() string {
	if n := t.SelectedNode(); n != nil {
		return n.Node.ID
	}
	return ""
}

// SelectByID moves the cursor to a visible node.
func (t *TreeModel) SelectByID(id string) bool {
	for i, n := range t.flatList {
		if n.Node.ID == id {
			t.cursor = i
			t.ensureCursorVisible()
			return true
		}
	}
	return false
}

// VisibleIDs lists the ids of the visible rows in order.
func (t *TreeModel) VisibleIDs() []string {
	ids := make([]string, 0, len(t.flatList))
	for _, n := range t.flatList {
		ids = append(ids, n.Node.ID)
	}
	return ids
}

// MoveDown moves the cursor down one row.
func (t *TreeModel) MoveDown() {
	if t.cursor < len(t.flatList)-1 {
		t.cursor++
	}
	t.ensureCursorVisible()
}

// MoveUp moves the cursor up one row.
func (t *TreeModel) MoveUp() {
	if t.cursor > 0 {
		t.cursor--
	}
	t.ensureCursorVisible()
}

// JumpToTop moves the cursor to the first row.
func (t *TreeModel) JumpToTop() {
	t.cursor = 0
	t.ensureCursorVisible()
}

// JumpToBottom moves the cursor to the last row.
func (t *TreeModel) JumpToBottom() {
	if len(t.flatList) > 0 {
		t.cursor = len(t.flatList) - 1
	}
	t.ensureCursorVisible()
}

// JumpToParent moves the cursor to the parent of the selected node.
func (t *TreeModel) JumpToParent() {
	n := t.SelectedNode()
	if n == nil || n.Parent == nil {
		return
	}
	t.SelectByID(n.Parent.Node.ID)
}

// MoveToFirstChild moves the cursor onto the first child of an expanded
// node. It reports whether the cursor moved.
func (t *TreeModel) MoveToFirstChild() bool {
	n := t.SelectedNode()
	if n == nil || !n.Expanded || len(n.Children) == 0 {
		return false
	}
	return t.SelectByID(n.Children[0].Node.ID)
}

// PageDown moves the cursor down half a page.
func (t *TreeModel) PageDown() {
	t.cursor += t.pageSize()
	if t.cursor >= len(t.flatList) {
		t.cursor = len(t.flatList) - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
	t.ensureCursorVisible()
}

// PageUp moves the cursor up half a page.
func (t *TreeModel) PageUp() {
	t.cursor -= t.pageSize()
	if t.cursor < 0 {
		t.cursor = 0
	}
	t.ensureCursorVisible()
}

func (t *TreeModel) pageSize() int {
	if size := t.height / 2; size >= 1 {
		return size
	}
	return 5
}

func (t *TreeModel) rowsAvailable() int {
	if t.height > 0 {
		return t.height
	}
	return 20
}

func (t *TreeModel) ensureCursorVisible() {
	rows := t.rowsAvailable()
	if t.cursor < t.viewportOffset {
		t.viewportOffset = t.cursor
	}
	if t.cursor >= t.viewportOffset+rows {
		t.viewportOffset = t.cursor - rows + 1
	}
	if t.viewportOffset < 0 {
		t.viewportOffset = 0
	}
}

// visibleRange returns the [start, end) rows that fit the viewport.
func (t *TreeModel) visibleRange() (start, end int) {
	if len(t.flatList) == 0 {
		return 0, 0
	}
	rows := t.rowsAvailable()
	start = t.viewportOffset
	end = start + rows
	if end > len(t.flatList) {
		end = len(t.flatList)
		start = end - rows
	}
	if start < 0 {
		start = 0
	}
	return start, end
}

func (t *TreeModel) rebuildFlatList() {
	t.flatList = t.flatList[:0]
	for _, root := range t.roots {
		t.appendVisible(root)
	}
	if t.cursor >= len(t.flatList) {
		t.cursor = len(t.flatList) - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
	t.ensureCursorVisible()
}

func (t *TreeModel) appendVisible(n *EntityTreeNode) {
	t.flatList = append(t.flatList, n)
	if n.Expanded {
		for _, c := range n.Children {
			t.appendVisible(c)
		}
	}
}

// View renders the visible rows.
func (t *TreeModel) View() string {
	if len(t.flatList) == 0 {
		return t.theme.Renderer.NewStyle().Foreground(t.theme.Muted).Render("Nothing to show.")
	}
	var sb strings.Builder
	start, end := t.visibleRange()
	for i := start; i < end; i++ {
		n := t.flatList[i]
		line := t.renderNode(n)
		switch {
		case i == t.cursor:
			line = t.theme.Selected.Render(line)
		case n.Node.ID == t.marked:
			line = t.theme.Current.Render(line)
		}
		sb.WriteString(line)
		if i < end-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func (t *TreeModel) renderNode(n *EntityTreeNode) string {
	r := t.theme.Renderer
	indent := strings.Repeat(" ", t.Indent(n))
	indicator := r.NewStyle().Foreground(t.theme.Secondary).Render(n.Indicator(t.opts))

	icon := n.Node.Icon
	if icon == "" {
		icon = n.Node.Kind.Icon()
	}
	iconText := r.NewStyle().Foreground(t.theme.KindColor(n.Node.Kind)).Render(icon)

	suffix := ""
	if n.Loading {
		suffix = r.NewStyle().Foreground(t.theme.Muted).Render(" …")
	}

	used := runewidth.StringWidth(indent) + runewidth.StringWidth(n.Indicator(t.opts)) +
		runewidth.StringWidth(icon) + 2
	if n.Loading {
		used += 2
	}
	label := truncateLabel(n.Node.Label, t.width-used)
	return indent + indicator + " " + iconText + " " + label + suffix
}

// truncateLabel cuts a label to a display width. A non-positive width
// leaves it whole.
func truncateLabel(label string, width int) string {
	if width <= 0 {
		return label
	}
	if width < 2 {
		width = 2
	}
	return runewidth.Truncate(label, width, "…")
}

// NodeCount returns the number of visible rows.
func (t *TreeModel) NodeCount() int {
	return len(t.flatList)
}

// RootCount returns the number of top-level nodes.
func (t *TreeModel) RootCount() int {
	return len(t.roots)
}
