package ui

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"pgregory.net/rapid"

	"github.com/vanderheijden86/prsconf/pkg/model"
)

func newTreeTestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(nil))
}

func newTestTree() TreeModel {
	tree := NewTreeModel(newTreeTestTheme(), DefaultTreeOptions())
	tree.Build(model.RootNodes())
	return tree
}

func expand(t *testing.T, tree *TreeModel, id string, children ...model.TreeNode) {
	t.Helper()
	act, ok := tree.Activate(id)
	if !ok || !act.Fetch {
		t.Fatalf("Activate(%s) = %+v, %v; want a fetch", id, act, ok)
	}
	if !tree.ApplyChildren(id, act.Generation, children) {
		t.Fatalf("ApplyChildren(%s) rejected", id)
	}
}

func TestTreeBuildRoots(t *testing.T) {
	tree := newTestTree()
	if tree.RootCount() != 4 {
		t.Fatalf("expected 4 roots, got %d", tree.RootCount())
	}
	want := []string{"objects", "tags", "connectors", "schedules"}
	if got := tree.VisibleIDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("VisibleIDs() = %v, want %v", got, want)
	}
	for _, id := range want {
		n, _ := tree.Node(id)
		if !n.IsRoot() || n.Expanded {
			t.Errorf("%s: IsRoot=%v Expanded=%v", id, n.IsRoot(), n.Expanded)
		}
		if n.Collection() != id {
			t.Errorf("%s: Collection() = %q", id, n.Collection())
		}
	}
}

func TestTreeBuildNestedAndExpandedFlag(t *testing.T) {
	tree := NewTreeModel(newTreeTestTheme(), DefaultTreeOptions())
	tree.Build([]model.TreeNode{{
		ID: "a", Label: "A", Kind: model.KindObject, Expanded: true,
		Children: []model.TreeNode{
			{ID: "t", Label: "t", Kind: model.KindTag},
			{ID: "o", Label: "z", Kind: model.KindObject},
		},
	}})
	if got, want := tree.VisibleIDs(), []string{"a", "o", "t"}; !reflect.DeepEqual(got, want) {
		t.Errorf("VisibleIDs() = %v, want %v", got, want)
	}
	child, _ := tree.Node("t")
	if child.Depth != 1 || child.Parent.ID() != "a" {
		t.Errorf("child depth=%d parent=%v", child.Depth, child.Parent)
	}
}

func TestActivateFetchesThenCollapses(t *testing.T) {
	tree := newTestTree()

	act, ok := tree.Activate("objects")
	if !ok {
		t.Fatal("Activate returned false")
	}
	if !act.Fetch || act.Collapsed || act.LoadForm || !act.IsRoot {
		t.Fatalf("first activation = %+v", act)
	}
	n, _ := tree.Node("objects")
	if !n.Expanded || !n.Loading {
		t.Errorf("expected expanded+loading, got %+v", n)
	}

	tree.ApplyChildren("objects", act.Generation, []model.TreeNode{
		{ID: "o1", Label: "Plant", Kind: model.KindObject},
	})
	if n.Loading || !n.HasGroup() || n.GroupID() != "group_objects" {
		t.Errorf("after load: loading=%v group=%v", n.Loading, n.HasGroup())
	}
	if n.Indicator(tree.Options()) != "▾" {
		t.Errorf("expanded indicator = %q", n.Indicator(tree.Options()))
	}

	act, _ = tree.Activate("objects")
	if act.Fetch || !act.Collapsed {
		t.Fatalf("second activation = %+v, want collapse without fetch", act)
	}
	if n.Expanded || n.HasGroup() {
		t.Error("collapse should discard children")
	}
	if _, ok := tree.Node("o1"); ok {
		t.Error("discarded child still indexed")
	}
	if n.Indicator(tree.Options()) != "▸" {
		t.Errorf("collapsed indicator = %q", n.Indicator(tree.Options()))
	}

	act, _ = tree.Activate("objects")
	if !act.Fetch {
		t.Error("re-expanding must fetch again")
	}
}

func TestActivateNonRootLoadsForm(t *testing.T) {
	tree := newTestTree()
	expand(t, &tree, "tags", model.TreeNode{ID: "t1", Label: "Pressure", Kind: model.KindTag})

	act, _ := tree.Activate("t1")
	if !act.Fetch || !act.LoadForm || act.IsRoot {
		t.Errorf("activation = %+v", act)
	}
	n, _ := tree.Node("t1")
	if n.Collection() != "tags" {
		t.Errorf("Collection() = %q", n.Collection())
	}
}

func TestStaleListingIsDiscarded(t *testing.T) {
	tree := newTestTree()
	first, _ := tree.Activate("objects")
	second, _ := tree.Activate("objects")
	if first.Generation == second.Generation {
		t.Fatal("generations must differ")
	}
	if tree.ApplyChildren("objects", first.Generation, []model.TreeNode{{ID: "old", Kind: model.KindObject}}) {
		t.Error("stale result was applied")
	}
	if !tree.ApplyChildren("objects", second.Generation, []model.TreeNode{{ID: "new", Kind: model.KindObject}}) {
		t.Error("current result was rejected")
	}
	if _, ok := tree.Node("old"); ok {
		t.Error("stale child present")
	}
	if tree.ApplyChildren("objects", second.Generation, nil) {
		t.Error("a result must only apply once")
	}
}

func TestListingAfterCollapseIsDiscarded(t *testing.T) {
	tree := newTestTree()
	expand(t, &tree, "objects", model.TreeNode{ID: "o1", Kind: model.KindObject})
	act, _ := tree.Activate("o1")
	tree.Activate("objects")
	if tree.ApplyChildren("o1", act.Generation, nil) {
		t.Error("listing for a discarded node was applied")
	}
}

func TestFailedLoadRefetches(t *testing.T) {
	tree := newTestTree()
	act, _ := tree.Activate("schedules")
	if !tree.FailLoad("schedules", act.Generation) {
		t.Fatal("FailLoad rejected")
	}
	n, _ := tree.Node("schedules")
	if !n.Expanded || n.Loading || n.HasGroup() {
		t.Errorf("after failure: %+v", n)
	}
	act, _ = tree.Activate("schedules")
	if !act.Fetch || act.Collapsed {
		t.Errorf("activation after failure = %+v, want fetch", act)
	}
}

func TestEmptyListingLeavesNoGroup(t *testing.T) {
	tree := newTestTree()
	expand(t, &tree, "connectors")
	n, _ := tree.Node("connectors")
	if n.HasGroup() || !n.Expanded {
		t.Errorf("empty listing: group=%v expanded=%v", n.HasGroup(), n.Expanded)
	}
	act, _ := tree.Activate("connectors")
	if !act.Fetch {
		t.Error("expanded node without group must refetch")
	}
}

func TestApplyChildrenSortsObjectsBeforeTags(t *testing.T) {
	tree := newTestTree()
	expand(t, &tree, "objects",
		model.TreeNode{ID: "t", Label: "alpha", Kind: model.KindTag},
		model.TreeNode{ID: "o2", Label: "Zeta", Kind: model.KindObject},
		model.TreeNode{ID: "o1", Label: "Beta", Kind: model.KindObject},
		model.TreeNode{ID: "m", Label: "Alpha", Kind: model.KindMethod},
	)
	want := []string{"objects", "m", "o1", "o2", "t", "tags", "connectors", "schedules"}
	if got := tree.VisibleIDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("VisibleIDs() = %v, want %v", got, want)
	}
	o1, _ := tree.Node("o1")
	if o1.Node.Icon != model.KindObject.Icon() {
		t.Errorf("icon = %q", o1.Node.Icon)
	}
}

func TestApplyChildrenSkipsKnownIDs(t *testing.T) {
	tree := newTestTree()
	act, _ := tree.Activate("objects")
	if _, err := tree.InsertChild("objects", model.TreeNode{ID: "new", Label: "new", Kind: model.KindObject}); err != nil {
		t.Fatal(err)
	}
	tree.ApplyChildren("objects", act.Generation, []model.TreeNode{
		{ID: "new", Label: "new", Kind: model.KindObject},
		{ID: "old", Label: "old", Kind: model.KindObject},
	})
	n, _ := tree.Node("objects")
	if len(n.Children) != 2 {
		t.Errorf("expected 2 children, got %d", len(n.Children))
	}
}

func TestInsertChildCreatesGroup(t *testing.T) {
	tree := newTestTree()
	expand(t, &tree, "objects",
		model.TreeNode{ID: "o1", Label: "A", Kind: model.KindObject},
		model.TreeNode{ID: "o2", Label: "B", Kind: model.KindObject},
	)
	parent, _ := tree.Node("o2")
	if parent.HasGroup() {
		t.Fatal("o2 should start without a group")
	}

	child, err := tree.InsertChild("o2", model.TreeNode{ID: "t9", Label: "Zed", Kind: model.KindTag})
	if err != nil {
		t.Fatal(err)
	}
	if !parent.HasGroup() || !parent.Expanded {
		t.Error("insert must create an expanded group")
	}
	if child.Depth != 2 {
		t.Errorf("depth = %d, want 2", child.Depth)
	}
	if tree.Indent(child) != 1+2*2 {
		t.Errorf("indent = %d", tree.Indent(child))
	}

	if _, err := tree.InsertChild("o1", model.TreeNode{ID: "first", Label: "zz", Kind: model.KindObject}); err != nil {
		t.Fatal(err)
	}
	if _, err := tree.InsertChild("o1", model.TreeNode{ID: "second", Label: "aa", Kind: model.KindObject}); err != nil {
		t.Fatal(err)
	}
	o1, _ := tree.Node("o1")
	if o1.Children[0].ID() != "second" {
		t.Errorf("new node should be first, got %s", o1.Children[0].ID())
	}

	if _, err := tree.InsertChild("missing", model.TreeNode{ID: "x", Kind: model.KindTag}); err == nil {
		t.Error("expected error for unknown parent")
	}
	if _, err := tree.InsertChild("o1", model.TreeNode{ID: "", Kind: model.KindTag}); err == nil {
		t.Error("expected error for empty id")
	}
}

func TestRemoveDropsSubtree(t *testing.T) {
	tree := newTestTree()
	expand(t, &tree, "objects", model.TreeNode{ID: "o1", Label: "A", Kind: model.KindObject})
	expand(t, &tree, "o1", model.TreeNode{ID: "t1", Label: "T", Kind: model.KindTag})

	if tree.Remove("objects") {
		t.Error("roots cannot be removed")
	}
	if !tree.Remove("o1") {
		t.Fatal("Remove returned false")
	}
	for _, id := range []string{"o1", "t1"} {
		if _, ok := tree.Node(id); ok {
			t.Errorf("%s still indexed", id)
		}
	}
	if got, want := tree.VisibleIDs(), []string{"objects", "tags", "connectors", "schedules"}; !reflect.DeepEqual(got, want) {
		t.Errorf("VisibleIDs() = %v, want %v", got, want)
	}
}

func TestRenameAndToggle(t *testing.T) {
	tree := newTestTree()
	expand(t, &tree, "tags", model.TreeNode{ID: "t1", Label: "Old", Kind: model.KindTag})
	if !tree.Rename("t1", "New") {
		t.Fatal("Rename returned false")
	}
	n, _ := tree.Node("t1")
	if n.Node.Label != "New" {
		t.Errorf("label = %q", n.Node.Label)
	}

	tree.Toggle("tags")
	if got := tree.NodeCount(); got != 4 {
		t.Errorf("after toggle NodeCount() = %d", got)
	}
	if _, ok := tree.Node("t1"); !ok {
		t.Error("Toggle must not discard children")
	}
}

func TestHrefNodeDoesNotExpand(t *testing.T) {
	tree := NewTreeModel(newTreeTestTheme(), DefaultTreeOptions())
	tree.Build([]model.TreeNode{{ID: "docs", Label: "Docs", Kind: model.KindObject, Href: "https://example.com/docs"}})
	act, _ := tree.Activate("docs")
	if act.Href != "https://example.com/docs" || act.Fetch {
		t.Errorf("activation = %+v", act)
	}
	n, _ := tree.Node("docs")
	if n.Expanded || n.Indicator(tree.Options()) != tree.Options().LeafIcon {
		t.Error("link node must stay a leaf")
	}
}

func TestNavigation(t *testing.T) {
	tree := newTestTree()
	expand(t, &tree, "objects",
		model.TreeNode{ID: "o1", Label: "A", Kind: model.KindObject},
		model.TreeNode{ID: "o2", Label: "B", Kind: model.KindObject},
	)

	if tree.SelectedID() != "objects" {
		t.Fatalf("initial selection = %q", tree.SelectedID())
	}
	if !tree.MoveToFirstChild() || tree.SelectedID() != "o1" {
		t.Errorf("MoveToFirstChild -> %q", tree.SelectedID())
	}
	tree.MoveDown()
	if tree.SelectedID() != "o2" {
		t.Errorf("MoveDown -> %q", tree.SelectedID())
	}
	tree.JumpToParent()
	if tree.SelectedID() != "objects" {
		t.Errorf("JumpToParent -> %q", tree.SelectedID())
	}
	tree.JumpToBottom()
	if tree.SelectedID() != "schedules" {
		t.Errorf("JumpToBottom -> %q", tree.SelectedID())
	}
	tree.MoveDown()
	if tree.SelectedID() != "schedules" {
		t.Error("cursor moved past the end")
	}
	tree.JumpToTop()
	tree.MoveUp()
	if tree.SelectedID() != "objects" {
		t.Error("cursor moved before the start")
	}

	tree.SelectByID("o2")
	tree.Remove("o2")
	if tree.SelectedNode() == nil {
		t.Error("cursor should clamp after removal")
	}
}

func TestViewRendersIndicatorsAndTruncates(t *testing.T) {
	tree := newTestTree()
	tree.SetSize(24, 10)
	expand(t, &tree, "objects", model.TreeNode{ID: "o1", Label: "A very long object label that will not fit", Kind: model.KindObject})

	view := tree.View()
	lines := strings.Split(view, "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 rows, got %d:\n%s", len(lines), view)
	}
	if !strings.Contains(lines[0], "▾") || !strings.Contains(lines[2], "▸") {
		t.Errorf("indicators missing:\n%s", view)
	}
	if !strings.Contains(lines[1], "…") {
		t.Errorf("long label should be truncated: %q", lines[1])
	}
	for _, line := range lines {
		if w := lipgloss.Width(line); w > 24 {
			t.Errorf("row wider than pane (%d): %q", w, line)
		}
	}
}

func TestViewScrollsWithCursor(t *testing.T) {
	tree := newTestTree()
	var children []model.TreeNode
	for i := 0; i < 30; i++ {
		children = append(children, model.TreeNode{ID: fmt.Sprintf("o%02d", i), Label: fmt.Sprintf("obj %02d", i), Kind: model.KindObject})
	}
	expand(t, &tree, "objects", children...)
	tree.SetSize(40, 5)
	tree.JumpToBottom()
	view := tree.View()
	if !strings.Contains(view, "Schedules") || strings.Contains(view, "Objects") {
		t.Errorf("viewport did not follow the cursor:\n%s", view)
	}
}

func TestSortSiblingsProperty(t *testing.T) {
	kinds := []model.EntityKind{model.KindObject, model.KindTag, model.KindMethod, model.KindAlert, model.KindConnector}
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 20).Draw(t, "n")
		nodes := make([]*EntityTreeNode, n)
		for i := range nodes {
			kind := rapid.SampledFrom(kinds).Draw(t, "kind")
			label := rapid.StringMatching(`[a-c]{0,2}`).Draw(t, "label")
			nodes[i] = &EntityTreeNode{Node: model.TreeNode{ID: fmt.Sprint(i), Label: label, Kind: kind}}
		}
		sortSiblings(nodes)

		seenTag := false
		var prevOther *EntityTreeNode
		for _, node := range nodes {
			switch node.Node.Kind {
			case model.KindTag:
				seenTag = true
			case model.KindObject:
				if seenTag {
					t.Fatalf("object %s after a tag", node.Node.ID)
				}
			default:
				if prevOther != nil && prevOther.Node.Label > node.Node.Label {
					t.Fatalf("labels out of order: %q > %q", prevOther.Node.Label, node.Node.Label)
				}
				prevOther = node
			}
		}
	})
}

func TestSortSiblingsMethodBeforeLaterObject(t *testing.T) {
	nodes := []*EntityTreeNode{
		{Node: model.TreeNode{ID: "o1", Label: "zeta", Kind: model.KindObject}},
		{Node: model.TreeNode{ID: "m1", Label: "alpha", Kind: model.KindMethod}},
	}
	sortSiblings(nodes)
	if nodes[0].Node.ID != "m1" {
		t.Errorf("order = %s, %s; want the method first", nodes[0].Node.ID, nodes[1].Node.ID)
	}
}
