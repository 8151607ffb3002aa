package ui_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/vanderheijden86/prsconf/pkg/api"
	"github.com/vanderheijden86/prsconf/pkg/config"
	"github.com/vanderheijden86/prsconf/pkg/form"
	"github.com/vanderheijden86/prsconf/pkg/journal"
	"github.com/vanderheijden86/prsconf/pkg/model"
	"github.com/vanderheijden86/prsconf/pkg/ui"
)

type apiCall struct {
	Method     string
	Collection string
	Query      api.Query
	Body       map[string]any
}

// fakeAPI is an in-memory configuration backend.
type fakeAPI struct {
	mu sync.Mutex

	calls      []apiCall
	children   map[string][]model.Entity // by parent id, or collection for roots
	entities   map[string]model.Entity
	candidates []model.Entity
	storages   []model.Entity
	series     []model.TagData
	newIDs     map[string]string // collection -> id returned by POST
	fail       map[string]int    // "METHOD collection" -> status
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		children: make(map[string][]model.Entity),
		entities: make(map[string]model.Entity),
		newIDs:   make(map[string]string),
		fail:     make(map[string]int),
	}
}

func entity(id string, kind model.EntityKind, cn string) model.Entity {
	return model.Entity{
		ID: id,
		Attributes: map[string][]any{
			"cn":          {cn},
			"objectClass": {kind.ObjectClass()},
		},
	}
}

func (f *fakeAPI) put(parent string, e model.Entity) {
	f.children[parent] = append(f.children[parent], e)
	f.entities[e.ID] = e
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	collection := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/"), "/")
	call := apiCall{Method: r.Method, Collection: collection}
	if q := r.URL.Query().Get("q"); q != "" {
		_ = json.Unmarshal([]byte(q), &call.Query)
	}
	if body, _ := io.ReadAll(r.Body); len(body) > 0 {
		_ = json.Unmarshal(body, &call.Body)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)

	w.Header().Set("Content-Type", "application/json")
	if status, ok := f.fail[r.Method+" "+collection]; ok {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, `{"error":"rejected"}`)
		return
	}

	reply := func(status int, v any) {
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	switch r.Method {
	case http.MethodGet:
		switch {
		case collection == "data":
			reply(http.StatusOK, map[string]any{"data": f.series})
		case collection == "dataStorages":
			reply(http.StatusOK, map[string]any{"data": f.storages})
		case call.Query.ID != "":
			var data []model.Entity
			if e, ok := f.entities[call.Query.ID]; ok {
				data = append(data, e)
			}
			reply(http.StatusOK, map[string]any{"data": data})
		case call.Query.Base != nil && *call.Query.Base == "prs":
			reply(http.StatusOK, map[string]any{"data": f.candidates})
		default:
			parent := collection
			if call.Query.Base != nil && *call.Query.Base != "" {
				parent = *call.Query.Base
			}
			reply(http.StatusOK, map[string]any{"data": f.children[parent]})
		}
	case http.MethodPost:
		if collection == "data" {
			reply(http.StatusOK, map[string]any{})
			return
		}
		reply(http.StatusCreated, map[string]any{"id": f.newIDs[collection]})
	case http.MethodPut:
		if collection == "dataStorages" {
			reply(http.StatusAccepted, map[string]any{})
			return
		}
		reply(http.StatusOK, map[string]any{})
	case http.MethodDelete:
		reply(http.StatusOK, map[string]any{})
	}
}

// matching returns the calls with the given method and collection.
func (f *fakeAPI) matching(method, collection string) []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []apiCall
	for _, c := range f.calls {
		if c.Method == method && c.Collection == collection {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeAPI) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type memoryJournal struct {
	entries []journal.Entry
}

func (j *memoryJournal) Record(_ context.Context, e *journal.Entry) error {
	j.entries = append(j.entries, *e)
	return nil
}

type harness struct {
	api       *fakeAPI
	journal   *memoryJournal
	clipboard []string
}

func newHarness(t *testing.T, profile string, fake *fakeAPI) (*harness, ui.Model) {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	logger, _ := test.NewNullLogger()
	client, err := api.New(srv.URL, api.WithLogger(logger), api.WithTimeout(5*time.Second))
	if err != nil {
		t.Fatalf("api.New: %v", err)
	}

	cfg := config.Default()
	cfg.API.URL = srv.URL
	cfg.API.Profile = profile
	cfg.Banner.Duration = 0

	h := &harness{api: fake, journal: &memoryJournal{}}
	m := ui.NewModel(ui.Options{
		Config:   cfg,
		Backend:  client,
		Recorder: h.journal,
		Logger:   logger,
		Location: time.UTC,
		Clipboard: func(s string) error {
			h.clipboard = append(h.clipboard, s)
			return nil
		},
		OpenLink: func(string, string) error { return nil },
	})
	m = send(m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return h, m
}

// drain runs cmd and feeds every resulting message back into the model
// until nothing is left to do.
func drain(m ui.Model, cmd tea.Cmd) ui.Model {
	queue := collect(cmd)
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]
		next, more := m.Update(msg)
		m = next.(ui.Model)
		queue = append(queue, collect(more)...)
	}
	return m
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case nil, tea.QuitMsg:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, collect(c)...)
		}
		return out
	default:
		return []tea.Msg{msg}
	}
}

func send(m ui.Model, msgs ...tea.Msg) ui.Model {
	for _, msg := range msgs {
		next, cmd := m.Update(msg)
		m = drain(next.(ui.Model), cmd)
	}
	return m
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func special(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

var (
	enter = special(tea.KeyEnter)
	down  = special(tea.KeyDown)
	tab   = special(tea.KeyTab)
	esc   = special(tea.KeyEsc)
	save  = special(tea.KeyCtrlS)
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
)

func plantFixture() *fakeAPI {
	fake := newFakeAPI()
	fake.put("objects", entity("o1", model.KindObject, "Plant"))
	fake.put("tags", entity("t1", model.KindTag, "Pressure"))
	fake.put("tags", entity("t2", model.KindTag, "Level"))
	return fake
}

func assertBanner(t *testing.T, m ui.Model, area ui.BannerArea, want string, success bool) {
	t.Helper()
	b, ok := m.Banner(area)
	if !ok {
		t.Fatalf("no banner in area %d, want %q", area, want)
	}
	if !strings.Contains(b.Message, want) || b.Success != success {
		t.Errorf("banner = %q (success %v), want %q (success %v)", b.Message, b.Success, want, success)
	}
}

func TestInitialTreeShowsRoots(t *testing.T) {
	h, m := newHarness(t, config.ProfileStandalone, plantFixture())

	want := []string{"objects", "tags", "connectors", "schedules"}
	if got := m.Tree().VisibleIDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("VisibleIDs() = %v, want %v", got, want)
	}
	if m.FocusName() != "tree" {
		t.Errorf("initial focus = %q, want tree", m.FocusName())
	}
	if m.Form().Shown() {
		t.Error("form should be hidden before anything is selected")
	}
	if h.api.count() != 0 {
		t.Errorf("startup made %d requests, want 0", h.api.count())
	}
}

func TestRootActivationListsTopOfCollection(t *testing.T) {
	h, m := newHarness(t, config.ProfileStandalone, plantFixture())

	m = send(m, enter)

	calls := h.api.matching(http.MethodGet, "objects")
	if len(calls) != 1 {
		t.Fatalf("expected one listing, got %d", len(calls))
	}
	q := calls[0].Query
	if q.Base == nil || *q.Base != "" || q.Scope != 1 || !q.Hierarchy {
		t.Errorf("root listing query = %+v", q)
	}
	if got := m.Tree().VisibleIDs()[:2]; !reflect.DeepEqual(got, []string{"objects", "o1"}) {
		t.Errorf("VisibleIDs() prefix = %v", got)
	}
	if m.Form().Shown() {
		t.Error("activating a root must hide the form")
	}
}

func TestCollapseAndReexpandFetchesOnce(t *testing.T) {
	h, m := newHarness(t, config.ProfileStandalone, plantFixture())

	m = send(m, enter, enter)
	if n := len(h.api.matching(http.MethodGet, "tags")) + len(h.api.matching(http.MethodGet, "objects")); n != 1 {
		t.Fatalf("expand then collapse made %d listings, want 1", n)
	}
	if len(m.Tree().VisibleIDs()) != 4 {
		t.Errorf("collapse should leave only roots, got %v", m.Tree().VisibleIDs())
	}

	m = send(m, enter)
	if n := len(h.api.matching(http.MethodGet, "objects")); n != 2 {
		t.Errorf("re-expanding should list again, got %d listings", n)
	}
	if _, ok := m.Tree().Node("o1"); !ok {
		t.Error("o1 should be back after re-expanding")
	}
}

func TestListingFailureShowsBannerAndAllowsRetry(t *testing.T) {
	fake := plantFixture()
	fake.fail["GET objects"] = http.StatusInternalServerError
	h, m := newHarness(t, config.ProfileStandalone, fake)

	m = send(m, enter)
	assertBanner(t, m, ui.AreaShared, "Could not load Objects", false)

	fake.mu.Lock()
	delete(fake.fail, "GET objects")
	fake.mu.Unlock()

	m = send(m, enter)
	if n := len(h.api.matching(http.MethodGet, "objects")); n != 2 {
		t.Errorf("retry should list again, got %d listings", n)
	}
	if _, ok := m.Tree().Node("o1"); !ok {
		t.Error("retry should load o1")
	}
}

func TestSelectingTagLoadsFormAndDataPanel(t *testing.T) {
	fake := plantFixture()
	tag := entity("t1", model.KindTag, "Pressure")
	tag.Attributes["prsValueTypeCode"] = []any{1}
	tag.Attributes["prsMeasureUnits"] = []any{"bar"}
	tag.ParentID = "o1"
	fake.entities["t1"] = tag
	h, m := newHarness(t, config.ProfileStandalone, fake)

	// Level sorts before Pressure.
	m = send(m, down, enter, down)
	if m.Tree().SelectedID() != "t2" {
		t.Fatalf("cursor on %q, want t2", m.Tree().SelectedID())
	}
	m = send(m, down, enter)

	f := m.Form()
	if !f.Shown() || !f.Loaded() || f.EntityID() != "t1" || f.Kind() != model.KindTag {
		t.Fatalf("form state: shown=%v loaded=%v id=%q kind=%v", f.Shown(), f.Loaded(), f.EntityID(), f.Kind())
	}
	if f.ParentID() != "o1" {
		t.Errorf("ParentID() = %q, want o1", f.ParentID())
	}
	units, _ := f.Field("input-prsMeasureUnits")
	if units.Current != "bar" {
		t.Errorf("units = %q, want bar", units.Current)
	}
	if !m.TagData().Active() || m.TagData().ValueType() != model.ValueFloat {
		t.Errorf("tag data panel: active=%v type=%v", m.TagData().Active(), m.TagData().ValueType())
	}

	gets := h.api.matching(http.MethodGet, "tags")
	last := gets[len(gets)-1]
	if last.Query.ID != "t1" || !last.Query.GetParent {
		t.Errorf("entity read query = %+v", last.Query)
	}
}

func TestStaleEntityLoadIsDropped(t *testing.T) {
	fake := plantFixture()
	_, m := newHarness(t, config.ProfileStandalone, fake)

	m = send(m, down, enter, down) // t2 (Level)
	next, first := m.Update(enter)
	m = next.(ui.Model)
	m = send(m, down) // t1 (Pressure)
	next, second := m.Update(enter)
	m = next.(ui.Model)

	m = drain(m, second)
	m = drain(m, first)

	if got := m.Form().EntityID(); got != "t1" {
		t.Errorf("form shows %q, want the later selection t1", got)
	}
}

func methodFixture() *fakeAPI {
	fake := plantFixture()
	fake.put("t1", entity("m1", model.KindMethod, "Notify"))
	method := entity("m1", model.KindMethod, "Notify")
	method.Attributes["prsMethodAddress"] = []any{"mail.send"}
	method.InitiatedBy = []string{"t2", "s1"}
	method.ParentID = "t1"
	fake.entities["m1"] = method
	fake.candidates = []model.Entity{
		entity("t1", model.KindTag, "Pressure"),
		entity("t2", model.KindTag, "Level"),
		entity("a1", model.KindAlert, "High"),
		entity("s1", model.KindSchedule, "Nightly"),
	}
	return fake
}

func TestMethodInitiatorsPreselectedAndParentOmitted(t *testing.T) {
	h, m := newHarness(t, config.ProfileStandalone, methodFixture())

	m = send(m, down, enter, down, down) // t1 (Pressure)
	m = send(m, enter, down, enter)      // expand t1, open m1

	f := m.Form()
	if f.EntityID() != "m1" || f.Kind() != model.KindMethod {
		t.Fatalf("form holds %q (%v), want method m1", f.EntityID(), f.Kind())
	}
	tags, _ := f.Field("input-initiatedByTags")
	if len(tags.Options) != 1 || tags.Options[0].Value != "t2" || !tags.Options[0].Selected {
		t.Errorf("tag initiators = %+v, want only t2 selected", tags.Options)
	}
	alerts, _ := f.Field("input-initiatedByAlerts")
	if len(alerts.Options) != 1 || alerts.Options[0].Selected {
		t.Errorf("alert initiators = %+v, want a1 unselected", alerts.Options)
	}
	if len(h.api.matching(http.MethodGet, "objects")) != 1 {
		t.Error("candidates should be listed once from the objects collection")
	}

	// Pick a1 from the alert list and save.
	m = send(m, tab, down, down, down, down, down, enter)
	if p, ok := m.Picker(); !ok || !p.Multi() {
		t.Fatalf("expected the multi picker, focus %q", m.FocusName())
	}
	m = send(m, space, enter)
	if !f.Dirty() {
		t.Fatal("choosing an initiator should dirty the form")
	}
	m = send(m, save)

	puts := h.api.matching(http.MethodPut, "methods")
	if len(puts) != 1 {
		t.Fatalf("expected one update, got %d", len(puts))
	}
	got := puts[0].Body["initiatedBy"]
	want := []any{"t2", "a1", "s1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("initiatedBy = %v, want %v", got, want)
	}
	if f.Dirty() {
		t.Error("a successful save should leave the form clean")
	}
	assertBanner(t, m, ui.AreaShared, "Saved Notify", true)
}

func TestCreateUnderRootOmitsParent(t *testing.T) {
	fake := plantFixture()
	fake.newIDs["objects"] = "o9"
	fake.entities["o9"] = entity("o9", model.KindObject, "New object")
	h, m := newHarness(t, config.ProfileStandalone, fake)

	m = send(m, runes("n"))

	posts := h.api.matching(http.MethodPost, "objects")
	if len(posts) != 1 {
		t.Fatalf("expected one create, got %d", len(posts))
	}
	if _, ok := posts[0].Body["parentId"]; ok {
		t.Errorf("create under a root must omit parentId: %v", posts[0].Body)
	}
	if got := m.Tree().VisibleIDs()[:3]; !reflect.DeepEqual(got, []string{"objects", "o9", "o1"}) {
		t.Errorf("new node should be first under its parent, got %v", got)
	}
	if m.Tree().SelectedID() != "o9" {
		t.Errorf("cursor on %q, want o9", m.Tree().SelectedID())
	}
	if m.Form().EntityID() != "o9" {
		t.Errorf("form should show the new node, got %q", m.Form().EntityID())
	}
	if len(h.api.matching(http.MethodPut, "dataStorages")) != 0 {
		t.Error("objects are not linked to a data storage")
	}
	assertBanner(t, m, ui.AreaShared, "Created Object", true)

	if len(h.journal.entries) == 0 || h.journal.entries[0].Action != journal.ActionCreate || h.journal.entries[0].EntityID != "o9" {
		t.Errorf("journal = %+v", h.journal.entries)
	}
}

func TestCreateTagUnderObjectLinksDataStorage(t *testing.T) {
	fake := plantFixture()
	fake.newIDs["tags"] = "t5"
	fake.entities["t5"] = entity("t5", model.KindTag, "New tag")
	fake.storages = []model.Entity{entity("ds1", model.KindUnknown, "Archive")}
	h, m := newHarness(t, config.ProfileStandalone, fake)

	m = send(m, enter, down, runes("n"))
	p, ok := m.Picker()
	if !ok || p.Len() != 2 {
		t.Fatalf("expected a two-item create picker, focus %q", m.FocusName())
	}
	m = send(m, down, enter)

	posts := h.api.matching(http.MethodPost, "tags")
	if len(posts) != 1 || posts[0].Body["parentId"] != "o1" {
		t.Fatalf("create calls = %+v", posts)
	}
	links := h.api.matching(http.MethodPut, "dataStorages")
	if len(links) != 1 {
		t.Fatalf("expected one data storage link, got %d", len(links))
	}
	if links[0].Body["id"] != "ds1" || !reflect.DeepEqual(links[0].Body["linkTags"], []any{map[string]any{"tagId": "t5"}}) {
		t.Errorf("link body = %v", links[0].Body)
	}
	n, ok := m.Tree().Node("t5")
	if !ok || n.Parent == nil || n.Parent.ID() != "o1" {
		t.Fatal("t5 should be a child of o1")
	}
	if m.Tree().SelectedID() != "t5" {
		t.Errorf("cursor on %q, want t5", m.Tree().SelectedID())
	}

	actions := make([]string, 0, len(h.journal.entries))
	for _, e := range h.journal.entries {
		actions = append(actions, e.Action)
	}
	if !reflect.DeepEqual(actions, []string{journal.ActionCreate, journal.ActionLink}) {
		t.Errorf("journal actions = %v", actions)
	}
}

func TestCreateLinkFailureIsReported(t *testing.T) {
	fake := plantFixture()
	fake.newIDs["tags"] = "t5"
	fake.entities["t5"] = entity("t5", model.KindTag, "New tag")
	_, m := newHarness(t, config.ProfileStandalone, fake)

	m = send(m, down, runes("n"))

	if _, ok := m.Tree().Node("t5"); !ok {
		t.Fatal("the tag exists even without a data storage")
	}
	assertBanner(t, m, ui.AreaShared, "could not link it to a data storage", false)
}

func TestCreatingConnectorIsNotSupported(t *testing.T) {
	h, m := newHarness(t, config.ProfileStandalone, plantFixture())

	m = send(m, down, down, runes("n"))

	assertBanner(t, m, ui.AreaShared, "Creating connectors is not supported yet", true)
	if h.api.count() != 0 {
		t.Errorf("connector create made %d requests, want 0", h.api.count())
	}
}

func TestNothingToCreateUnderMethod(t *testing.T) {
	h, m := newHarness(t, config.ProfileStandalone, methodFixture())

	m = send(m, down, enter, down, down, enter, down)
	before := h.api.count()
	m = send(m, runes("n"))

	assertBanner(t, m, ui.AreaShared, "Nothing can be created under Notify", false)
	if h.api.count() != before {
		t.Error("no request should be made")
	}
}

func TestDeleteRemovesNodeAndClearsForm(t *testing.T) {
	h, m := newHarness(t, config.ProfileStandalone, plantFixture())

	m = send(m, enter, down, enter)
	if m.Form().EntityID() != "o1" {
		t.Fatalf("form shows %q, want o1", m.Form().EntityID())
	}
	m = send(m, runes("d"))

	dels := h.api.matching(http.MethodDelete, "objects")
	if len(dels) != 1 || dels[0].Body["id"] != "o1" {
		t.Fatalf("delete calls = %+v", dels)
	}
	if _, ok := m.Tree().Node("o1"); ok {
		t.Error("o1 should be gone from the tree")
	}
	if m.Form().Shown() || m.Form().Loaded() {
		t.Error("deleting the loaded entity should clear the form")
	}
	assertBanner(t, m, ui.AreaShared, "Deleted Plant", true)
}

func TestRootsCannotBeDeleted(t *testing.T) {
	h, m := newHarness(t, config.ProfileStandalone, plantFixture())

	m = send(m, runes("d"))

	assertBanner(t, m, ui.AreaShared, "Top-level nodes cannot be deleted", false)
	if h.api.count() != 0 {
		t.Error("no request should be made")
	}
}

func TestSaveRenamesNode(t *testing.T) {
	h, m := newHarness(t, config.ProfileStandalone, plantFixture())

	m = send(m, enter, down, enter, tab, enter, runes(" 2"), enter)
	if !m.Form().Dirty() {
		t.Fatal("editing the name should dirty the form")
	}
	m = send(m, save)

	puts := h.api.matching(http.MethodPut, "objects")
	if len(puts) != 1 {
		t.Fatalf("expected one update, got %d", len(puts))
	}
	want := map[string]any{"cn": "Plant 2"}
	if !reflect.DeepEqual(puts[0].Body["attributes"], want) {
		t.Errorf("attributes = %v, want %v", puts[0].Body["attributes"], want)
	}
	if _, ok := puts[0].Body["initiatedBy"]; ok {
		t.Error("only methods send initiatedBy")
	}
	n, _ := m.Tree().Node("o1")
	if n.Node.Label != "Plant 2" {
		t.Errorf("tree label = %q, want the new name", n.Node.Label)
	}
	if m.Form().Dirty() {
		t.Error("form should be clean after saving")
	}
}

func TestEditDuringSaveStaysDirty(t *testing.T) {
	h, m := newHarness(t, config.ProfileStandalone, plantFixture())

	m = send(m, enter, down, enter, tab, enter, runes(" 2"), enter)
	next, pending := m.Update(save)
	m = next.(ui.Model)
	if _, err := m.Form().Set(form.FieldID("description"), "d1"); err != nil {
		t.Fatal(err)
	}
	m = drain(m, pending)

	puts := h.api.matching(http.MethodPut, "objects")
	if len(puts) != 1 {
		t.Fatalf("expected one update, got %d", len(puts))
	}
	if _, ok := puts[0].Body["attributes"].(map[string]any)["description"]; ok {
		t.Error("the description was edited after the update was sent")
	}
	cn, _ := m.Form().Field(form.FieldID("cn"))
	if cn.Dirty() {
		t.Error("the saved name should be clean")
	}
	desc, _ := m.Form().Field(form.FieldID("description"))
	if !desc.Dirty() || !m.Form().Dirty() {
		t.Errorf("description initial=%q current=%q should stay dirty", desc.Initial, desc.Current)
	}
}

func TestSaveFailureKeepsEdits(t *testing.T) {
	fake := plantFixture()
	fake.fail["PUT objects"] = http.StatusBadRequest
	_, m := newHarness(t, config.ProfileStandalone, fake)

	m = send(m, enter, down, enter, tab, enter, runes("X"), enter, save)

	assertBanner(t, m, ui.AreaShared, "Could not save", false)
	if !m.Form().Dirty() {
		t.Error("a failed save must keep the edits")
	}
	n, _ := m.Tree().Node("o1")
	if n.Node.Label != "Plant" {
		t.Errorf("tree label changed to %q on failure", n.Node.Label)
	}
}

func TestSaveWithoutChangesSendsNothing(t *testing.T) {
	h, m := newHarness(t, config.ProfileStandalone, plantFixture())

	m = send(m, enter, down, enter, save)

	if len(h.api.matching(http.MethodPut, "objects")) != 0 {
		t.Error("a clean form must not be saved")
	}
}

func TestEditEscapeLeavesFieldUnchanged(t *testing.T) {
	_, m := newHarness(t, config.ProfileStandalone, plantFixture())

	m = send(m, enter, down, enter, tab, enter, runes("zzz"), esc)

	if m.Form().Dirty() {
		t.Error("esc should abandon the edit")
	}
	if m.FocusName() != "detail" {
		t.Errorf("focus = %q, want detail", m.FocusName())
	}
}

func tagDataFixture(valueType int) *fakeAPI {
	fake := plantFixture()
	tag := entity("t1", model.KindTag, "Pressure")
	tag.Attributes["prsValueTypeCode"] = []any{valueType}
	fake.entities["t1"] = tag
	return fake
}

func TestTagDataRejectsMalformedJSON(t *testing.T) {
	h, m := newHarness(t, config.ProfileStandalone, tagDataFixture(4))

	m = send(m, down, enter, down, down, enter)
	m = send(m, runes("w"), runes(`{bad`), enter)

	assertBanner(t, m, ui.AreaShared, "invalid JSON value", false)
	if len(h.api.matching(http.MethodPost, "data")) != 0 {
		t.Error("malformed input must not be written")
	}
	if !m.TagData().Editing() {
		t.Error("the input should stay open for correction")
	}

	m = send(m, esc, runes("w"), runes(`{"a":1}`), enter)
	writes := h.api.matching(http.MethodPost, "data")
	if len(writes) != 1 {
		t.Fatalf("expected one write, got %d", len(writes))
	}
	want := []any{map[string]any{"tagId": "t1", "data": []any{[]any{map[string]any{"a": float64(1)}}}}}
	if !reflect.DeepEqual(writes[0].Body["data"], want) {
		t.Errorf("write body = %v", writes[0].Body)
	}
	assertBanner(t, m, ui.AreaShared, "Data written", true)
}

func TestTagDataReadAndFlags(t *testing.T) {
	fake := tagDataFixture(1)
	fake.series = []model.TagData{{TagID: "t1", Data: [][]any{{1.5, "2024-05-01T10:00:00Z", 0}}}}
	h, m := newHarness(t, config.ProfileStandalone, fake)

	m = send(m, down, enter, down, down, enter)
	m = send(m, runes("f"), runes("r"))

	reads := h.api.matching(http.MethodGet, "data")
	if len(reads) != 1 {
		t.Fatalf("expected one read, got %d", len(reads))
	}
	rows := m.TagData().Rows()
	if len(rows) != 1 || rows[0][0] != 1.5 {
		t.Errorf("rows = %v", rows)
	}
	q := m.TagData().Query()
	if !q.Format || q.Actual {
		t.Errorf("query flags = %+v, want format only", q)
	}
}

func TestTagNumberWriteRejectsText(t *testing.T) {
	h, m := newHarness(t, config.ProfileStandalone, tagDataFixture(0))

	m = send(m, down, enter, down, down, enter)
	m = send(m, runes("w"), runes("abc"), enter)

	assertBanner(t, m, ui.AreaShared, "is not a number", false)
	if len(h.api.matching(http.MethodPost, "data")) != 0 {
		t.Error("text must not be written to a numeric tag")
	}
}

func TestGrafanaProfileSplitsBannersAndHidesTagData(t *testing.T) {
	fake := tagDataFixture(1)
	fake.newIDs["objects"] = "o9"
	fake.entities["o9"] = entity("o9", model.KindObject, "New object")
	_, m := newHarness(t, config.ProfileGrafana, fake)

	m = send(m, runes("n"))
	assertBanner(t, m, ui.AreaTree, "Created Object", true)
	if _, ok := m.Banner(ui.AreaDetail); ok {
		t.Error("create results belong to the tree banner")
	}

	m = send(m, down, down, enter, down, down, enter) // o9, o1, tags root, then t1
	if m.Form().EntityID() != "t1" {
		t.Fatalf("form shows %q, want t1", m.Form().EntityID())
	}
	if m.TagData().Active() {
		t.Error("grafana profile has no tag data panel")
	}

	m = send(m, tab, enter, runes("!"), enter, save)
	assertBanner(t, m, ui.AreaDetail, "Saved Pressure!", true)
}

func TestConfigReloadAppliesTreeOptions(t *testing.T) {
	_, m := newHarness(t, config.ProfileStandalone, plantFixture())

	cfg := config.Default()
	cfg.Banner.Duration = 0
	cfg.Tree.ExpandIcon = "-"
	cfg.Tree.CollapseIcon = "+"
	m = send(m, ui.ConfigReloadedMsg{Config: cfg})

	if got := m.Tree().Options().CollapseIcon; got != "+" {
		t.Errorf("CollapseIcon = %q, want +", got)
	}
	assertBanner(t, m, ui.AreaShared, "Configuration reloaded", true)
	if !strings.Contains(m.View(), "+") {
		t.Error("view should use the reloaded icons")
	}
}

func TestCopyAndInfoOverlay(t *testing.T) {
	h, m := newHarness(t, config.ProfileStandalone, plantFixture())

	m = send(m, enter, down, runes("y"))
	if !reflect.DeepEqual(h.clipboard, []string{"o1"}) {
		t.Errorf("clipboard = %v, want [o1]", h.clipboard)
	}

	m = send(m, runes("i"))
	if m.FocusName() != "overlay" {
		t.Fatalf("focus = %q, want overlay", m.FocusName())
	}
	m = send(m, esc)
	if m.FocusName() != "tree" {
		t.Errorf("esc should close the overlay, focus %q", m.FocusName())
	}
}

func TestHelpOverlayAndQuit(t *testing.T) {
	_, m := newHarness(t, config.ProfileStandalone, plantFixture())

	m = send(m, runes("?"))
	if m.FocusName() != "overlay" {
		t.Fatalf("focus = %q, want overlay", m.FocusName())
	}
	if !strings.Contains(m.View(), "esc to close") {
		t.Error("overlay should explain how to close it")
	}
	m = send(m, runes("?"))

	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should return tea.Quit")
	}
}

func TestViewShowsPanes(t *testing.T) {
	_, m := newHarness(t, config.ProfileStandalone, plantFixture())

	m = send(m, enter, down, enter)
	view := m.View()
	for _, want := range []string{"prsconf", "standalone", "Objects", "Plant", "Object o1", "Name"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
