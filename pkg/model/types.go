package model

import (
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

// EntityKind is the backend's type discriminator for a configuration node.
type EntityKind int

const (
	KindUnknown EntityKind = iota
	KindObject
	KindTag
	KindAlert
	KindMethod
	KindConnector
	KindSchedule
)

// AllKinds lists every known entity kind in display order.
var AllKinds = []EntityKind{KindObject, KindTag, KindAlert, KindMethod, KindConnector, KindSchedule}

type kindInfo struct {
	objectClass string
	collection  string
	name        string
	icon        string
}

var kinds = map[EntityKind]kindInfo{
	KindObject:    {"prsObject", "objects", "Object", "▣"},
	KindTag:       {"prsTag", "tags", "Tag", "◆"},
	KindAlert:     {"prsAlert", "alerts", "Alert", "⚑"},
	KindMethod:    {"prsMethod", "methods", "Method", "ƒ"},
	KindConnector: {"prsConnector", "connectors", "Connector", "⇄"},
	KindSchedule:  {"prsSchedule", "schedules", "Schedule", "◷"},
}

// ObjectClass returns the backend object class, e.g. "prsTag".
func (k EntityKind) ObjectClass() string { return kinds[k].objectClass }

// Collection returns the REST collection name, e.g. "tags".
func (k EntityKind) Collection() string { return kinds[k].collection }

// Icon returns the glyph rendered in front of tree labels.
func (k EntityKind) Icon() string {
	if info, ok := kinds[k]; ok {
		return info.icon
	}
	return "•"
}

// String returns the human-readable kind name.
func (k EntityKind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}
	return "Unknown"
}

// IsValid returns true for every kind except KindUnknown.
func (k EntityKind) IsValid() bool {
	_, ok := kinds[k]
	return ok
}

// ParseObjectClass maps a backend object class to its kind.
func ParseObjectClass(class string) (EntityKind, bool) {
	for k, info := range kinds {
		if info.objectClass == class {
			return k, true
		}
	}
	return KindUnknown, false
}

// ParseCollection maps a REST collection name to its kind.
func ParseCollection(collection string) (EntityKind, bool) {
	for k, info := range kinds {
		if info.collection == collection {
			return k, true
		}
	}
	return KindUnknown, false
}

// ObjectClasses returns the object classes of all known kinds.
func ObjectClasses() []string {
	out := make([]string, 0, len(AllKinds))
	for _, k := range AllKinds {
		out = append(out, k.ObjectClass())
	}
	return out
}

// TreeNode is a backend-supplied node of the configuration hierarchy.
// Identity is ID; uniqueness is enforced by the backend.
type TreeNode struct {
	ID       string     `json:"id"`
	Label    string     `json:"label"`
	Kind     EntityKind `json:"kind"`
	Icon     string     `json:"icon,omitempty"`
	Href     string     `json:"href,omitempty"`
	Children []TreeNode `json:"children,omitempty"`
	Expanded bool       `json:"expanded,omitempty"`
}

// Validate checks that the node can be placed in a tree.
func (n TreeNode) Validate() error {
	if n.ID == "" {
		return fmt.Errorf("tree node ID cannot be empty")
	}
	if !n.Kind.IsValid() {
		return fmt.Errorf("tree node %s has unknown kind", n.ID)
	}
	return nil
}

// RootNodes returns the fixed top level of the hierarchy. Root IDs double as
// collection names.
func RootNodes() []TreeNode {
	return []TreeNode{
		{ID: "objects", Label: "Objects", Kind: KindObject, Icon: "▤"},
		{ID: "tags", Label: "Tags", Kind: KindTag, Icon: "◈"},
		{ID: "connectors", Label: "Connectors", Kind: KindConnector, Icon: KindConnector.Icon()},
		{ID: "schedules", Label: "Schedules", Kind: KindSchedule, Icon: KindSchedule.Icon()},
	}
}

// IsRootID reports whether id names one of the top-level nodes.
func IsRootID(id string) bool {
	switch id {
	case "objects", "tags", "connectors", "schedules":
		return true
	}
	return false
}

// AllowedCreations returns which kinds may be created under a node of the
// given kind.
func AllowedCreations(kind EntityKind, isRoot bool) []EntityKind {
	switch kind {
	case KindObject:
		if isRoot {
			return []EntityKind{KindObject}
		}
		return []EntityKind{KindObject, KindTag}
	case KindTag:
		if isRoot {
			return []EntityKind{KindTag}
		}
		return []EntityKind{KindAlert, KindMethod}
	case KindAlert:
		return []EntityKind{KindMethod}
	case KindSchedule:
		if isRoot {
			return []EntityKind{KindSchedule}
		}
	case KindConnector:
		if isRoot {
			return []EntityKind{KindConnector}
		}
	}
	return nil
}

// CanDelete reports whether a node may be deleted. Roots are permanent.
func CanDelete(id string) bool {
	return id != "" && !IsRootID(id)
}

// Entity is one record of a backend listing:
//
//	{"id": "...", "attributes": {"cn": ["name"]}, "parentId": "..."}
type Entity struct {
	ID          string           `json:"id"`
	Attributes  map[string][]any `json:"attributes"`
	Parameters  []Entity         `json:"parameters,omitempty"`
	InitiatedBy []string         `json:"initiatedBy,omitempty"`
	ParentID    string           `json:"parentId,omitempty"`
}

// Value returns the first value of an attribute as a display string.
// Boolean sentinels "TRUE"/"FALSE" become "true"/"false"; null becomes "".
func (e Entity) Value(name string) string {
	values, ok := e.Attributes[name]
	if !ok || len(values) == 0 {
		return ""
	}
	return StringValue(values[0])
}

// Label returns the entity's common name.
func (e Entity) Label() string {
	return e.Value("cn")
}

// Kind resolves the entity's object class.
func (e Entity) Kind() EntityKind {
	k, _ := ParseObjectClass(e.Value("objectClass"))
	return k
}

// TreeNode converts a listing record into a tree node with its kind's icon.
func (e Entity) TreeNode() TreeNode {
	kind := e.Kind()
	return TreeNode{
		ID:    e.ID,
		Label: e.Label(),
		Kind:  kind,
		Icon:  kind.Icon(),
	}
}

// StringValue coerces a decoded JSON attribute value to its form string.
func StringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		switch val {
		case "TRUE":
			return "true"
		case "FALSE":
			return "false"
		}
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	}
}

// TagData is one series returned by the data endpoint. Each row is
// [value, timestamp, quality].
type TagData struct {
	TagID string  `json:"tagId"`
	Data  [][]any `json:"data"`
}

// ValueType is the prsValueTypeCode of a tag.
type ValueType int

const (
	ValueInt    ValueType = 0
	ValueFloat  ValueType = 1
	ValueString ValueType = 2
	ValueJSON   ValueType = 4
)

// ParseValueType reads a prsValueTypeCode form value. Unknown or empty codes
// fall back to ValueString.
func ParseValueType(code string) ValueType {
	n, err := strconv.Atoi(code)
	if err != nil {
		return ValueString
	}
	switch ValueType(n) {
	case ValueInt, ValueFloat, ValueString, ValueJSON:
		return ValueType(n)
	}
	return ValueString
}
