package ui

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/vanderheijden86/prsconf/pkg/api"
	"github.com/vanderheijden86/prsconf/pkg/attrs"
	"github.com/vanderheijden86/prsconf/pkg/config"
	"github.com/vanderheijden86/prsconf/pkg/form"
	"github.com/vanderheijden86/prsconf/pkg/model"
)

type focus int

const (
	focusTree focus = iota
	focusDetail
	focusPicker
	focusOverlay
)

func (f focus) String() string {
	switch f {
	case focusDetail:
		return "detail"
	case focusPicker:
		return "picker"
	case focusOverlay:
		return "overlay"
	default:
		return "tree"
	}
}

type pickerPurpose int

const (
	pickCreate pickerPurpose = iota
	pickField
)

// Options configures the console model.
type Options struct {
	Config   config.Config
	Backend  Backend
	Recorder Recorder
	Logger   logrus.FieldLogger
	Renderer *lipgloss.Renderer
	// Location renders schedule instants; nil means time.Local.
	Location *time.Location
	// Clipboard replaces the system clipboard.
	Clipboard func(string) error
	// OpenLink replaces launching the configured opener.
	OpenLink func(opener, href string) error
}

// Model is the console's Bubble Tea model. It owns all UI state; backend
// calls run in commands and report back through messages.
type Model struct {
	cfg     config.Config
	profile config.Profile
	backend Backend
	writer  *EntityWriter
	log     logrus.FieldLogger
	theme   Theme
	keys    KeyMap

	tree    TreeModel
	form    *form.Form
	detail  DetailModel
	tagData TagDataPanel
	banners Banners

	focused       focus
	returnFocus   focus
	picker        PickerModel
	pickerPurpose pickerPurpose
	pickerField   string
	overlay       Overlay

	// formSeq identifies the latest form load; older results are dropped.
	formSeq uint64

	copyText func(string) error
	openLink func(opener, href string) error

	width  int
	height int
	ready  bool
}

// NewModel builds the console with the four root nodes collapsed.
func NewModel(opts Options) Model {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	profile := opts.Config.Profile()
	theme := DefaultTheme(opts.Renderer)

	f := form.New(form.Options{
		Location:   opts.Location,
		Structured: profile.StructuredConfig,
		TagData:    profile.TagData,
	})

	tree := NewTreeModel(theme, TreeOptionsFrom(opts.Config.Tree))
	tree.Build(model.RootNodes())

	m := Model{
		cfg:      opts.Config,
		profile:  profile,
		backend:  opts.Backend,
		writer:   NewEntityWriter(opts.Backend, opts.Recorder, log),
		log:      log,
		theme:    theme,
		keys:     DefaultKeyMap(),
		tree:     tree,
		form:     f,
		detail:   NewDetailModel(f, theme),
		tagData:  NewTagDataPanel(),
		banners:  NewBanners(profile.SplitBanners, opts.Config.Banner.Duration),
		copyText: opts.Clipboard,
		openLink: opts.OpenLink,
	}
	if m.copyText == nil {
		m.copyText = clipboard.WriteAll
	}
	if m.openLink == nil {
		m.openLink = func(opener, href string) error {
			return exec.Command(opener, href).Start()
		}
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Tree returns the tree state.
func (m Model) Tree() *TreeModel { return &m.tree }

// Form returns the detail form.
func (m Model) Form() *form.Form { return m.form }

// Banner returns the message shown in an area.
func (m Model) Banner(area BannerArea) (Banner, bool) { return m.banners.Get(area) }

// FocusName names the focused pane: tree, detail, picker or overlay.
func (m Model) FocusName() string { return m.focused.String() }

// Picker returns the open picker.
func (m Model) Picker() (PickerModel, bool) { return m.picker, m.focused == focusPicker }

// TagData returns the tag data panel.
func (m Model) TagData() *TagDataPanel { return &m.tagData }

// Selection returns the node under the cursor.
func (m Model) Selection() Selection {
	n := m.tree.SelectedNode()
	if n == nil {
		return Selection{}
	}
	return Selection{NodeID: n.ID(), Kind: n.Node.Kind, IsRoot: n.IsRoot()}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	return m, cmd
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.layout()
		return nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case childrenLoadedMsg:
		if msg.err != nil {
			if m.tree.FailLoad(msg.nodeID, msg.generation) {
				m.log.WithError(msg.err).WithField("id", msg.nodeID).Warn("listing failed")
				return m.banners.Show(AreaTree, fmt.Sprintf("Could not load %s: %v", m.nodeLabel(msg.nodeID), msg.err), false)
			}
			return nil
		}
		m.tree.ApplyChildren(msg.nodeID, msg.generation, msg.nodes)
		return nil

	case entityLoadedMsg:
		return m.applyEntity(msg)

	case savedMsg:
		return m.applySaved(msg)

	case createdMsg:
		return m.applyCreated(msg)

	case deletedMsg:
		if msg.err != nil {
			return m.banners.Show(AreaTree, fmt.Sprintf("Could not delete %s: %v", msg.target.NodeID, msg.err), false)
		}
		label := m.nodeLabel(msg.target.NodeID)
		m.tree.Remove(msg.target.NodeID)
		if m.form.EntityID() == msg.target.NodeID {
			m.clearForm()
		}
		return m.banners.Show(AreaTree, fmt.Sprintf("Deleted %s", label), true)

	case tagDataMsg:
		if msg.tagID != m.tagData.TagID() {
			return nil
		}
		if msg.err != nil {
			return m.banners.Show(AreaDetail, fmt.Sprintf("Could not read values: %v", msg.err), false)
		}
		m.tagData.SetSeries(msg.series)
		return nil

	case dataWrittenMsg:
		if msg.err != nil {
			return m.banners.Show(AreaDetail, fmt.Sprintf("Could not write value: %v", msg.err), false)
		}
		return m.banners.Show(AreaDetail, "Data written", true)

	case bannerExpiredMsg:
		m.banners.expire(msg)
		return nil

	case ConfigReloadedMsg:
		if msg.Err != nil {
			return m.banners.Show(AreaTree, fmt.Sprintf("Configuration not reloaded: %v", msg.Err), false)
		}
		m.cfg = msg.Config
		m.banners.SetDuration(msg.Config.Banner.Duration)
		m.tree.SetOptions(TreeOptionsFrom(msg.Config.Tree))
		return m.banners.Show(AreaTree, "Configuration reloaded", true)
	}
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}

	switch m.focused {
	case focusOverlay:
		if key.Matches(msg, m.keys.Back, m.keys.Help, m.keys.Quit, m.keys.Info) {
			m.focused = m.returnFocus
		}
		return nil
	case focusPicker:
		return m.handlePickerKey(msg)
	}

	if m.tagData.Editing() {
		return m.handleTagInputKey(msg)
	}
	if m.detail.Editing() {
		switch {
		case msg.Type == tea.KeyEnter:
			if err := m.detail.CommitEdit(); err != nil {
				return m.banners.Show(AreaDetail, err.Error(), false)
			}
			return nil
		case msg.Type == tea.KeyEsc:
			m.detail.CancelEdit()
			return nil
		}
		var cmd tea.Cmd
		*m.detail.Input(), cmd = m.detail.Input().Update(msg)
		return cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.openOverlay(NewHelpOverlay(m.theme))
		return nil
	case key.Matches(msg, m.keys.Focus):
		if m.focused == focusTree && m.form.Shown() {
			m.focused = focusDetail
		} else {
			m.focused = focusTree
		}
		return nil
	case key.Matches(msg, m.keys.Save):
		return m.save()
	case key.Matches(msg, m.keys.Reset):
		m.form.Reset()
		m.syncTagValueType()
		return nil
	}

	if m.tagData.Active() && m.form.SectionShown(attrs.SectionTagData) {
		switch {
		case key.Matches(msg, m.keys.Read):
			return readDataCmd(m.backend, m.tagData.Query())
		case key.Matches(msg, m.keys.Write):
			m.tagData.StartEditing()
			return nil
		case key.Matches(msg, m.keys.Format):
			m.tagData.ToggleFormat()
			return nil
		case key.Matches(msg, m.keys.Actual):
			m.tagData.ToggleActual()
			return nil
		}
	}

	if m.focused == focusDetail {
		return m.handleDetailKey(msg)
	}
	return m.handleTreeKey(msg)
}

func (m *Model) handleTreeKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.tree.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.tree.MoveDown()
	case key.Matches(msg, m.keys.PageUp):
		m.tree.PageUp()
	case key.Matches(msg, m.keys.PageDown):
		m.tree.PageDown()
	case key.Matches(msg, m.keys.Top):
		m.tree.JumpToTop()
	case key.Matches(msg, m.keys.Bottom):
		m.tree.JumpToBottom()
	case key.Matches(msg, m.keys.Activate, m.keys.Toggle):
		return m.activate(m.tree.SelectedID())
	case key.Matches(msg, m.keys.Expand):
		n := m.tree.SelectedNode()
		if n == nil {
			return nil
		}
		if n.Expanded && (n.HasGroup() || n.Loading) {
			m.tree.MoveToFirstChild()
			return nil
		}
		return m.activate(n.ID())
	case key.Matches(msg, m.keys.Collapse):
		n := m.tree.SelectedNode()
		if n == nil {
			return nil
		}
		if n.Expanded && n.HasGroup() {
			return m.activate(n.ID())
		}
		m.tree.JumpToParent()
	case key.Matches(msg, m.keys.Create):
		return m.beginCreate()
	case key.Matches(msg, m.keys.Delete):
		return m.delete()
	case key.Matches(msg, m.keys.Copy):
		return m.copySelected()
	case key.Matches(msg, m.keys.Info):
		if n := m.tree.SelectedNode(); n != nil {
			m.openOverlay(NewOverlay("Node", summaryMarkdown(n, m.form, m.queryURL(n)), m.theme))
		}
	}
	return nil
}

func (m *Model) handleDetailKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.focused = focusTree
	case key.Matches(msg, m.keys.Up):
		m.detail.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.detail.MoveDown()
	case key.Matches(msg, m.keys.Toggle):
		m.detail.ToggleBool()
	case key.Matches(msg, m.keys.Activate):
		f := m.detail.SelectedField()
		if f == nil {
			return nil
		}
		switch f.Kind {
		case form.Bool:
			m.detail.ToggleBool()
		case form.Select:
			m.openFieldPicker(f, false)
		case form.MultiSelect:
			m.openFieldPicker(f, true)
		default:
			m.detail.BeginEdit()
		}
	}
	return nil
}

func (m *Model) handlePickerKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.focused = m.returnFocus
	case key.Matches(msg, m.keys.Up):
		m.picker.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.picker.MoveDown()
	case key.Matches(msg, m.keys.Toggle) && m.picker.Multi():
		m.picker.Toggle()
	case key.Matches(msg, m.keys.Activate):
		m.focused = m.returnFocus
		return m.applyPicker()
	}
	return nil
}

func (m *Model) handleTagInputKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.tagData.StopEditing()
		return nil
	case tea.KeyEnter:
		value, err := m.tagData.Value()
		if err != nil {
			return m.banners.Show(AreaDetail, err.Error(), false)
		}
		m.tagData.StopEditing()
		return m.writer.WriteData(m.tagData.TagID(), value)
	}
	var cmd tea.Cmd
	*m.tagData.Input(), cmd = m.tagData.Input().Update(msg)
	return cmd
}

// activate runs a node's expand/collapse step and, for non-root nodes on
// the expanding path, reloads the form.
func (m *Model) activate(id string) tea.Cmd {
	act, ok := m.tree.Activate(id)
	if !ok {
		return nil
	}
	if act.Href != "" {
		return m.followLink(act.Href)
	}
	n, _ := m.tree.Node(id)

	var cmds []tea.Cmd
	if act.Fetch {
		cmds = append(cmds, listChildrenCmd(m.backend, n.Collection(), id, act.Generation))
	}
	switch {
	case act.IsRoot:
		m.formSeq++
		m.form.Hide()
		m.tagData.Reset("", model.ValueString)
		m.tree.SetMarked("")
		if m.focused == focusDetail {
			m.focused = focusTree
		}
	case act.LoadForm:
		m.formSeq++
		cmds = append(cmds, loadEntityCmd(m.backend, m.formSeq, n.Node.Kind, n.Collection(), id))
	}
	return tea.Batch(cmds...)
}

func (m *Model) applyEntity(msg entityLoadedMsg) tea.Cmd {
	if msg.seq != m.formSeq {
		return nil
	}
	if msg.err != nil {
		m.clearForm()
		return m.banners.Show(AreaDetail, fmt.Sprintf("Could not load details: %v", msg.err), false)
	}

	var cmds []tea.Cmd
	if err := m.form.Load(msg.kind, msg.entity); err != nil {
		cmds = append(cmds, m.banners.Show(AreaDetail, err.Error(), false))
	}
	if msg.kind == model.KindMethod {
		if msg.candidatesErr != nil {
			cmds = append(cmds, m.banners.Show(AreaDetail, fmt.Sprintf("Could not list initiators: %v", msg.candidatesErr), false))
		} else {
			m.form.LoadInitiators(msg.candidates)
		}
	}
	if msg.kind == model.KindTag && m.profile.TagData {
		m.tagData.Reset(msg.entity.ID, model.ParseValueType(msg.entity.Value("prsValueTypeCode")))
	} else {
		m.tagData.Reset("", model.ValueString)
	}
	m.detail.Reset()
	m.tree.SetMarked(msg.entity.ID)
	return tea.Batch(cmds...)
}

func (m *Model) save() tea.Cmd {
	if !m.form.Loaded() || !m.form.Dirty() {
		return nil
	}
	if m.detail.Editing() {
		m.detail.CancelEdit()
	}
	req, err := m.form.Payload()
	if err != nil {
		return m.banners.Show(AreaDetail, err.Error(), false)
	}
	target := Selection{NodeID: m.form.EntityID(), Kind: m.form.Kind()}
	return m.writer.Update(target, req, m.form.Snapshot())
}

func (m *Model) applySaved(msg savedMsg) tea.Cmd {
	if msg.err != nil {
		return m.banners.Show(AreaDetail, fmt.Sprintf("Could not save: %v", msg.err), false)
	}
	if m.form.EntityID() == msg.entityID {
		m.form.Commit(msg.sent)
	}
	if label, ok := msg.request.NewLabel(); ok {
		m.tree.Rename(msg.entityID, label)
	}
	return m.banners.Show(AreaDetail, fmt.Sprintf("Saved %s", m.nodeLabel(msg.entityID)), true)
}

func (m *Model) beginCreate() tea.Cmd {
	sel := m.Selection()
	if sel.Empty() {
		return nil
	}
	allowed := model.AllowedCreations(sel.Kind, sel.IsRoot)
	switch len(allowed) {
	case 0:
		return m.banners.Show(AreaTree, fmt.Sprintf("Nothing can be created under %s", m.nodeLabel(sel.NodeID)), false)
	case 1:
		return m.create(allowed[0])
	}
	items := make([]PickerItem, 0, len(allowed))
	for _, k := range allowed {
		items = append(items, PickerItem{Value: strconv.Itoa(int(k)), Label: k.Icon() + " " + k.String()})
	}
	m.openPicker(NewPickerModel("Create under "+m.nodeLabel(sel.NodeID), items, "", m.theme), pickCreate, "")
	return nil
}

// create adds a child of kind under the selected node. A collapsed parent
// is expanded first so the new node has a group to land in.
func (m *Model) create(kind model.EntityKind) tea.Cmd {
	sel := m.Selection()
	if kind == model.KindConnector {
		return m.banners.Show(AreaTree, "Creating connectors is not supported yet", true)
	}
	var cmds []tea.Cmd
	if n, ok := m.tree.Node(sel.NodeID); ok && !n.Expanded {
		cmds = append(cmds, m.activate(sel.NodeID))
	}
	cmds = append(cmds, m.writer.Create(sel, kind))
	return tea.Batch(cmds...)
}

func (m *Model) applyCreated(msg createdMsg) tea.Cmd {
	if msg.err != nil {
		return m.banners.Show(AreaTree, fmt.Sprintf("Could not create: %v", msg.err), false)
	}
	if _, err := m.tree.InsertChild(msg.parent.NodeID, msg.node); err != nil {
		return m.banners.Show(AreaTree, fmt.Sprintf("Created %s but could not show it: %v", msg.node.ID, err), false)
	}
	m.tree.SelectByID(msg.node.ID)

	cmds := []tea.Cmd{m.activate(msg.node.ID)}
	if msg.linkErr != nil {
		cmds = append(cmds, m.banners.Show(AreaTree,
			fmt.Sprintf("Created %s but could not link it to a data storage: %v", msg.node.Kind, msg.linkErr), false))
	} else {
		cmds = append(cmds, m.banners.Show(AreaTree, fmt.Sprintf("Created %s", msg.node.Kind), true))
	}
	return tea.Batch(cmds...)
}

func (m *Model) delete() tea.Cmd {
	sel := m.Selection()
	if !model.CanDelete(sel.NodeID) {
		return m.banners.Show(AreaTree, "Top-level nodes cannot be deleted", false)
	}
	return m.writer.Delete(sel)
}

func (m *Model) copySelected() tea.Cmd {
	n := m.tree.SelectedNode()
	if n == nil {
		return nil
	}
	text := n.ID()
	if n.Node.Href != "" {
		text = n.Node.Href
	}
	if err := m.copyText(text); err != nil {
		return m.banners.Show(AreaTree, fmt.Sprintf("Clipboard unavailable: %v", err), false)
	}
	return m.banners.Show(AreaTree, fmt.Sprintf("Copied %s", text), true)
}

func (m *Model) followLink(href string) tea.Cmd {
	opts := m.tree.Options()
	if opts.OpenLinksExternally && m.cfg.Tree.Opener != "" {
		if err := m.openLink(m.cfg.Tree.Opener, href); err != nil {
			return m.banners.Show(AreaTree, fmt.Sprintf("Could not open %s: %v", href, err), false)
		}
		return nil
	}
	if err := m.copyText(href); err != nil {
		return m.banners.Show(AreaTree, fmt.Sprintf("Clipboard unavailable: %v", err), false)
	}
	return m.banners.Show(AreaTree, fmt.Sprintf("Copied %s", href), true)
}

func (m *Model) openFieldPicker(f *form.Field, multi bool) {
	items := make([]PickerItem, 0, len(f.Options))
	for _, o := range f.Options {
		items = append(items, PickerItem{Value: o.Value, Label: o.Label, Selected: o.Selected})
	}
	if multi {
		m.openPicker(NewMultiPickerModel(f.Label, items, m.theme), pickField, f.ID)
		return
	}
	m.openPicker(NewPickerModel(f.Label, items, f.Current, m.theme), pickField, f.ID)
}

func (m *Model) openPicker(p PickerModel, purpose pickerPurpose, fieldID string) {
	p.SetSize(m.width, m.height)
	m.picker = p
	m.pickerPurpose = purpose
	m.pickerField = fieldID
	m.returnFocus = m.focused
	m.focused = focusPicker
}

func (m *Model) applyPicker() tea.Cmd {
	switch m.pickerPurpose {
	case pickCreate:
		n, err := strconv.Atoi(m.picker.Highlighted())
		if err != nil {
			return nil
		}
		return m.create(model.EntityKind(n))
	case pickField:
		value := m.picker.Highlighted()
		if m.picker.Multi() {
			value = strings.Join(m.picker.Chosen(), ",")
		}
		if _, err := m.form.Set(m.pickerField, value); err != nil {
			return m.banners.Show(AreaDetail, err.Error(), false)
		}
		m.syncTagValueType()
	}
	return nil
}

func (m *Model) openOverlay(o Overlay) {
	o.SetSize(m.width, m.height)
	m.overlay = o
	m.returnFocus = m.focused
	m.focused = focusOverlay
}

// syncTagValueType keeps value parsing in step with the edited type.
func (m *Model) syncTagValueType() {
	if !m.tagData.Active() {
		return
	}
	if f, ok := m.form.Field(form.FieldID("prsValueTypeCode")); ok {
		m.tagData.SetValueType(model.ParseValueType(f.Current))
	}
}

func (m *Model) clearForm() {
	m.form.Clear()
	m.form.Hide()
	m.detail.Reset()
	m.tagData.Reset("", model.ValueString)
	m.tree.SetMarked("")
	if m.focused == focusDetail {
		m.focused = focusTree
	}
}

func (m *Model) nodeLabel(id string) string {
	if n, ok := m.tree.Node(id); ok && n.Node.Label != "" {
		return n.Node.Label
	}
	return id
}

func (m *Model) queryURL(n *EntityTreeNode) string {
	c, ok := m.backend.(interface {
		QueryURL(collection string, q any) (string, error)
	})
	if !ok {
		return ""
	}
	q := api.ChildrenQuery(n.ID())
	if !n.IsRoot() {
		q = api.EntityQuery(n.ID(), attrs.ReadAttributes)
	}
	u, err := c.QueryURL(n.Collection(), q)
	if err != nil {
		return ""
	}
	return u
}

func (m *Model) layout() {
	treeWidth := m.width / 3
	if treeWidth < 28 {
		treeWidth = 28
	}
	if treeWidth > m.width {
		treeWidth = m.width
	}
	bodyHeight := m.height - 4
	if bodyHeight < 3 {
		bodyHeight = 3
	}
	m.tree.SetSize(treeWidth-2, bodyHeight-2)
	m.detail.SetSize(m.width-treeWidth-4, bodyHeight-2)
	m.picker.SetSize(m.width, m.height)
	m.overlay.SetSize(m.width, m.height)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	switch m.focused {
	case focusPicker:
		return m.picker.View()
	case focusOverlay:
		return m.overlay.View()
	}

	r := m.theme.Renderer
	header := r.NewStyle().Foreground(m.theme.Primary).Bold(true).Render("prsconf") +
		r.NewStyle().Foreground(m.theme.Muted).Render(fmt.Sprintf("  %s  %s", m.profile.Name, m.cfg.BaseURL()))

	treeWidth := m.width / 3
	if treeWidth < 28 {
		treeWidth = 28
	}
	bodyHeight := m.height - 4
	if bodyHeight < 3 {
		bodyHeight = 3
	}
	pane := func(active bool, width int, content string) string {
		border := m.theme.Border
		if active {
			border = m.theme.Primary
		}
		return r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Width(width).
			Height(bodyHeight - 2).
			Render(content)
	}

	treeContent := m.tree.View()
	if b := m.banners.View(m.theme, AreaTree, treeWidth-2); b != "" {
		treeContent = b + "\n" + treeContent
	}
	extra := ""
	if m.tagData.Active() && m.form.SectionShown(attrs.SectionTagData) {
		extra = m.tagData.View(m.theme, m.width-treeWidth-4)
	}
	detailContent := m.detail.View(extra)
	if b := m.banners.View(m.theme, AreaDetail, m.width-treeWidth-4); b != "" {
		detailContent = b + "\n" + detailContent
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		pane(m.focused == focusTree, treeWidth-2, treeContent),
		pane(m.focused == focusDetail, m.width-treeWidth-4, detailContent),
	)

	footer := m.banners.View(m.theme, AreaShared, m.width)
	if footer == "" {
		k := m.keys
		var text string
		if m.focused == focusDetail {
			text = hints(k.Activate, k.Toggle, k.Save, k.Reset, k.Focus, k.Help, k.Quit)
		} else {
			text = hints(k.Activate, k.Create, k.Delete, k.Copy, k.Info, k.Focus, k.Help, k.Quit)
		}
		footer = r.NewStyle().Foreground(m.theme.Muted).Render(text)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}
