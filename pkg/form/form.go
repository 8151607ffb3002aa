// Package form holds the detail form of the selected entity: one field per
// editable attribute, each remembering the value it was loaded with so that
// edits can be tracked, reset and turned into a partial update.
package form

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/vanderheijden86/prsconf/pkg/api"
	"github.com/vanderheijden86/prsconf/pkg/attrs"
	"github.com/vanderheijden86/prsconf/pkg/model"
)

// FieldKind selects how a field is edited.
type FieldKind int

const (
	Text FieldKind = iota
	Bool
	Number
	Select
	MultiSelect
	DateTime
)

// Option is one choice of a Select or MultiSelect field.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// Field is one input of the form. Attribute is the wire attribute the field
// belongs to; sub-fields of structured attributes and the initiator lists
// share a group attribute ("alertConfig", "scheduleConfig", "initiatedBy").
type Field struct {
	ID        string
	Name      string
	Attribute string
	Label     string
	Section   string
	Kind      FieldKind
	Initial   string
	Current   string
	Options   []Option
}

// Dirty reports whether the field differs from its loaded value.
func (f *Field) Dirty() bool {
	return f.Current != f.Initial
}

func (f *Field) selection() string {
	var picked []string
	for _, o := range f.Options {
		if o.Selected {
			picked = append(picked, o.Value)
		}
	}
	return strings.Join(picked, ",")
}

// Selected returns the chosen option values in option order.
func (f *Field) Selected() []string {
	if f.Current == "" {
		return nil
	}
	return strings.Split(f.Current, ",")
}

const (
	groupInitiatedBy = "initiatedBy"
)

// IntervalTypes are the schedule interval units the scheduler understands.
var IntervalTypes = []string{"seconds", "minutes", "hours", "days"}

func layout() []Field {
	valueTypes := []Option{
		{Value: "0", Label: "integer"},
		{Value: "1", Label: "float"},
		{Value: "2", Label: "string"},
		{Value: "4", Label: "json"},
	}
	intervals := make([]Option, 0, len(IntervalTypes))
	for _, it := range IntervalTypes {
		intervals = append(intervals, Option{Value: it, Label: it})
	}
	alert := attrs.AlertCodec{}.Group()
	schedule := attrs.ScheduleCodec{}.Group()

	return []Field{
		{Name: "cn", Attribute: "cn", Label: "Name", Kind: Text},
		{Name: "description", Attribute: "description", Label: "Description", Kind: Text},
		{Name: "prsActive", Attribute: "prsActive", Label: "Active", Kind: Bool},
		{Name: "prsIndex", Attribute: "prsIndex", Label: "Index", Section: attrs.SectionIndex, Kind: Number},
		{Name: "prsMethodAddress", Attribute: "prsMethodAddress", Label: "Method address", Section: attrs.SectionMethodAddress, Kind: Text},
		{Name: "prsValueTypeCode", Attribute: "prsValueTypeCode", Label: "Value type", Section: attrs.SectionValueType, Kind: Select, Options: valueTypes},
		{Name: "prsEntityTypeCode", Attribute: "prsEntityTypeCode", Label: "Entity type", Section: attrs.SectionEntityType, Kind: Number},
		{Name: attrs.ConfigAttribute, Attribute: attrs.ConfigAttribute, Label: "Configuration", Section: attrs.SectionConfig, Kind: Text},
		{Name: "prsUpdate", Attribute: "prsUpdate", Label: "Update on change", Section: attrs.SectionUpdate, Kind: Bool},
		{Name: "prsDefault", Attribute: "prsDefault", Label: "Default", Section: attrs.SectionDefault, Kind: Bool},
		{Name: "prsStep", Attribute: "prsStep", Label: "Step", Section: attrs.SectionStep, Kind: Bool},
		{Name: "prsMeasureUnits", Attribute: "prsMeasureUnits", Label: "Units", Section: attrs.SectionMeasureUnits, Kind: Text},
		{Name: "initiatedByTags", Attribute: groupInitiatedBy, Label: "Initiated by tags", Section: attrs.SectionInitiatedBy, Kind: MultiSelect},
		{Name: "initiatedByAlerts", Attribute: groupInitiatedBy, Label: "Initiated by alerts", Section: attrs.SectionInitiatedBy, Kind: MultiSelect},
		{Name: "initiatedBySchedules", Attribute: groupInitiatedBy, Label: "Initiated by schedules", Section: attrs.SectionInitiatedBy, Kind: MultiSelect},
		{Name: "alertConfHigh", Attribute: alert, Label: "Fires above value", Section: attrs.SectionAlertConfig, Kind: Bool},
		{Name: "alertConfValue", Attribute: alert, Label: "Threshold", Section: attrs.SectionAlertConfig, Kind: Number},
		{Name: "alertConfAutoack", Attribute: alert, Label: "Auto acknowledge", Section: attrs.SectionAlertConfig, Kind: Bool},
		{Name: "scheduleConfStart", Attribute: schedule, Label: "Start", Section: attrs.SectionScheduleConf, Kind: DateTime},
		{Name: "scheduleConfIntervalType", Attribute: schedule, Label: "Interval unit", Section: attrs.SectionScheduleConf, Kind: Select, Options: intervals},
		{Name: "scheduleConfIntervalValue", Attribute: schedule, Label: "Interval", Section: attrs.SectionScheduleConf, Kind: Number},
		{Name: "scheduleConfEnd", Attribute: schedule, Label: "End", Section: attrs.SectionScheduleConf, Kind: DateTime},
	}
}

// initiatorField maps a candidate's kind to the list that offers it.
var initiatorField = map[model.EntityKind]string{
	model.KindTag:      "input-initiatedByTags",
	model.KindAlert:    "input-initiatedByAlerts",
	model.KindSchedule: "input-initiatedBySchedules",
}

// FieldID derives the input id of an attribute or sub-field name.
func FieldID(name string) string {
	return "input-" + name
}

// Parameter is one read-only method parameter.
type Parameter struct {
	ID     string
	Index  string
	Name   string
	Config string
}

// Options configures a Form.
type Options struct {
	// Location renders schedule instants; nil means time.Local.
	Location *time.Location
	// Structured edits alert and schedule configuration as discrete fields.
	Structured bool
	// TagData enables the tag data section.
	TagData bool
}

// Form is the detail form. It is not safe for concurrent use; the UI loop
// owns it.
type Form struct {
	opts   Options
	fields []*Field
	byID   map[string]*Field

	entityID    string
	kind        model.EntityKind
	parentID    string
	initiatedBy []string
	parameters  []Parameter
	loaded      bool

	visibility Visibility
	shown      bool
}

// New builds an empty, hidden form.
func New(opts Options) *Form {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	f := &Form{
		opts:       opts,
		byID:       make(map[string]*Field),
		visibility: NewVisibility(),
	}
	for _, field := range layout() {
		field := field
		field.ID = FieldID(field.Name)
		f.fields = append(f.fields, &field)
		f.byID[field.ID] = &field
	}
	return f
}

// Location returns the zone schedule instants are shown in.
func (f *Form) Location() *time.Location { return f.opts.Location }

// EntityID returns the id of the loaded entity.
func (f *Form) EntityID() string { return f.entityID }

// Kind returns the kind of the loaded entity.
func (f *Form) Kind() model.EntityKind { return f.kind }

// ParentID returns the loaded entity's parent.
func (f *Form) ParentID() string { return f.parentID }

// Loaded reports whether an entity has been loaded since the last Clear.
func (f *Form) Loaded() bool { return f.loaded }

// Shown reports whether the form is displayed at all.
func (f *Form) Shown() bool { return f.shown }

// Field returns a field by id.
func (f *Form) Field(id string) (*Field, bool) {
	field, ok := f.byID[id]
	return field, ok
}

// Fields returns every field in layout order.
func (f *Form) Fields() []*Field {
	return f.fields
}

// VisibleFields returns the fields of shown sections in layout order.
func (f *Form) VisibleFields() []*Field {
	if !f.shown {
		return nil
	}
	var out []*Field
	for _, field := range f.fields {
		if field.Section == "" || f.visibility.Shown(field.Section) {
			out = append(out, field)
		}
	}
	return out
}

// SectionShown reports whether a section is currently visible.
func (f *Form) SectionShown(section string) bool {
	return f.shown && f.visibility.Shown(section)
}

// Parameters returns the method parameters ordered by index.
func (f *Form) Parameters() []Parameter {
	return f.parameters
}

// Hide hides the whole form; used when a root node is selected.
func (f *Form) Hide() {
	f.shown = false
}

// Clear forgets the loaded entity and empties every field.
func (f *Form) Clear() {
	for _, field := range f.fields {
		field.Initial, field.Current = "", ""
		if field.Kind == MultiSelect {
			field.Options = nil
		}
		for i := range field.Options {
			field.Options[i].Selected = false
		}
	}
	f.entityID, f.parentID = "", ""
	f.kind = model.KindUnknown
	f.initiatedBy = nil
	f.parameters = nil
	f.loaded = false
}

// Load replaces the whole form with an entity. Every field is reset first,
// so nothing from the previous selection survives. A malformed structured
// attribute leaves its sub-fields empty and is reported as an error; the
// rest of the form is still loaded.
func (f *Form) Load(kind model.EntityKind, e model.Entity) error {
	f.Clear()
	f.entityID = e.ID
	f.kind = kind
	f.parentID = e.ParentID
	f.initiatedBy = append([]string(nil), e.InitiatedBy...)
	f.parameters = parameters(e.Parameters)
	f.loaded = true

	f.visibility.Apply(attrs.Sections(kind, f.opts.Structured))
	if !f.opts.TagData {
		f.visibility.Hide(attrs.SectionTagData)
	}
	f.shown = true

	var loadErr error
	for name := range e.Attributes {
		value := e.Value(name)
		desc := attrs.Lookup(kind, name, f.opts.Structured)
		if desc.Kind == attrs.Structured {
			fields, err := desc.Codec.Unpack(value, f.opts.Location)
			if err != nil {
				loadErr = fmt.Errorf("%s of %s: %w", name, e.ID, err)
				continue
			}
			for sub, v := range fields {
				f.initialize(FieldID(sub), v)
			}
			continue
		}
		f.initialize(FieldID(name), value)
	}
	return loadErr
}

func (f *Form) initialize(id, value string) {
	field, ok := f.byID[id]
	if !ok || field.Kind == MultiSelect {
		return
	}
	field.Initial, field.Current = value, value
	for i := range field.Options {
		field.Options[i].Selected = field.Options[i].Value == value
	}
}

// LoadInitiators fills the three initiator lists of a method from the
// candidate tags, alerts and schedules. Entries the method is initiated by
// are preselected; the method's own parent is left out unless it is
// already selected.
func (f *Form) LoadInitiators(candidates []model.Entity) {
	selected := make(map[string]bool, len(f.initiatedBy))
	for _, id := range f.initiatedBy {
		selected[id] = true
	}
	for _, id := range initiatorField {
		f.byID[id].Options = nil
	}
	for _, c := range candidates {
		id, ok := initiatorField[c.Kind()]
		if !ok {
			continue
		}
		if c.ID == f.parentID && !selected[c.ID] {
			continue
		}
		field := f.byID[id]
		field.Options = append(field.Options, Option{
			Value:    c.ID,
			Label:    fmt.Sprintf("%s (%s)", c.Label(), c.ID),
			Selected: selected[c.ID],
		})
	}
	for _, id := range initiatorField {
		field := f.byID[id]
		field.Current = field.selection()
		field.Initial = field.Current
	}
}

// Set changes a field's value and reports whether the field is now dirty.
// Multi-select fields take the comma-joined list of chosen values.
func (f *Form) Set(id, value string) (bool, error) {
	field, ok := f.byID[id]
	if !ok {
		return false, fmt.Errorf("unknown field %s", id)
	}
	if field.Kind == MultiSelect {
		want := make(map[string]bool)
		for _, v := range strings.Split(value, ",") {
			if v != "" {
				want[v] = true
			}
		}
		for i := range field.Options {
			field.Options[i].Selected = want[field.Options[i].Value]
		}
		field.Current = field.selection()
		return field.Dirty(), nil
	}
	field.Current = value
	for i := range field.Options {
		field.Options[i].Selected = field.Options[i].Value == value
	}
	return field.Dirty(), nil
}

// ToggleOption flips one choice of a multi-select field.
func (f *Form) ToggleOption(id, value string) (bool, error) {
	field, ok := f.byID[id]
	if !ok {
		return false, fmt.Errorf("unknown field %s", id)
	}
	if field.Kind != MultiSelect {
		return false, fmt.Errorf("field %s is not a multi-select", id)
	}
	found := false
	for i := range field.Options {
		if field.Options[i].Value == value {
			field.Options[i].Selected = !field.Options[i].Selected
			found = true
		}
	}
	if !found {
		return false, fmt.Errorf("field %s has no option %s", id, value)
	}
	field.Current = field.selection()
	return field.Dirty(), nil
}

// Dirty reports whether any field changed; Save and Reset are enabled iff
// it is true.
func (f *Form) Dirty() bool {
	for _, field := range f.fields {
		if field.Dirty() {
			return true
		}
	}
	return false
}

// DirtyFields returns the changed fields in layout order.
func (f *Form) DirtyFields() []*Field {
	var out []*Field
	for _, field := range f.fields {
		if field.Dirty() {
			out = append(out, field)
		}
	}
	return out
}

// Reset restores every dirty field to its loaded value.
func (f *Form) Reset() {
	for _, field := range f.fields {
		if !field.Dirty() {
			continue
		}
		if field.Kind == MultiSelect {
			_, _ = f.Set(field.ID, field.Initial)
			continue
		}
		field.Current = field.Initial
		for i := range field.Options {
			field.Options[i].Selected = field.Options[i].Value == field.Initial
		}
	}
}

// Snapshot maps field ids to the values a save sent.
type Snapshot map[string]string

// Snapshot captures the fields the next Payload sends. A method's three
// initiator lists are always included since Payload always resends them.
func (f *Form) Snapshot() Snapshot {
	sent := make(Snapshot)
	for _, field := range f.DirtyFields() {
		sent[field.ID] = field.Current
	}
	if f.kind == model.KindMethod {
		for _, id := range initiatorIDs {
			sent[id] = f.byID[id].Current
		}
	}
	return sent
}

// Commit marks the sent values as loaded, after a successful save. Fields
// edited after the snapshot was taken stay dirty.
func (f *Form) Commit(sent Snapshot) {
	for id, v := range sent {
		if field, ok := f.byID[id]; ok {
			field.Initial = v
		}
	}
	if f.kind == model.KindMethod {
		f.initiatedBy = f.initiators(func(field *Field) string { return field.Initial })
	}
}

var initiatorIDs = []string{"input-initiatedByTags", "input-initiatedByAlerts", "input-initiatedBySchedules"}

func (f *Form) initiators(value func(*Field) string) []string {
	out := []string{}
	for _, id := range initiatorIDs {
		if v := value(f.byID[id]); v != "" {
			out = append(out, strings.Split(v, ",")...)
		}
	}
	return out
}

func current(field *Field) string { return field.Current }

// Payload builds the partial update for the dirty fields. Structured
// sub-fields are packed back into the configuration attribute from all of
// their current values. A method always resends its complete initiator
// list, since the backend stores the three lists as one relation.
func (f *Form) Payload() (api.UpdateRequest, error) {
	req := api.UpdateRequest{ID: f.entityID, Attributes: map[string]any{}}
	for _, field := range f.DirtyFields() {
		if field.Attribute == groupInitiatedBy {
			continue
		}
		if codec, ok := attrs.CodecForGroup(field.Attribute); ok {
			if !f.opts.Structured {
				continue
			}
			if _, done := req.Attributes[attrs.ConfigAttribute]; done {
				continue
			}
			values := make(map[string]string)
			for _, sub := range codec.Fields() {
				values[sub] = f.byID[FieldID(sub)].Current
			}
			packed, err := codec.Pack(values, f.opts.Location)
			if err != nil {
				return api.UpdateRequest{}, fmt.Errorf("%s: %w", field.Label, err)
			}
			req.Attributes[attrs.ConfigAttribute] = packed
			continue
		}
		value, err := attrs.Lookup(f.kind, field.Attribute, f.opts.Structured).Encode(field.Current)
		if err != nil {
			return api.UpdateRequest{}, fmt.Errorf("%s: %w", field.Label, err)
		}
		req.Attributes[field.Attribute] = value
	}
	if f.kind == model.KindMethod {
		initiators := f.initiators(current)
		req.InitiatedBy = &initiators
	}
	return req, nil
}

func parameters(entities []model.Entity) []Parameter {
	out := make([]Parameter, 0, len(entities))
	for _, e := range entities {
		out = append(out, Parameter{
			ID:     e.ID,
			Index:  e.Value("prsIndex"),
			Name:   e.Label(),
			Config: e.Value(attrs.ConfigAttribute),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, errA := strconv.ParseFloat(out[i].Index, 64)
		b, errB := strconv.ParseFloat(out[j].Index, 64)
		if errA != nil || errB != nil {
			return out[i].Index < out[j].Index
		}
		return a < b
	})
	return out
}
