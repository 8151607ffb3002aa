// Package attrs describes entity attributes: how each one is typed on the
// wire, how structured JSON attributes unpack into discrete form fields, and
// which form sections each entity kind shows.
package attrs

import (
	"fmt"
	"strconv"
	"time"

	"github.com/vanderheijden86/prsconf/pkg/model"
)

// Kind is the wire type of an attribute.
type Kind int

const (
	String Kind = iota
	Number
	Boolean
	Structured
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "number"
	case Boolean:
		return "boolean"
	case Structured:
		return "structured"
	default:
		return "string"
	}
}

// ConfigAttribute carries the JSON configuration of alerts, schedules and
// connectors.
const ConfigAttribute = "prsJsonConfigString"

// ReadAttributes is the fixed attribute set requested when a node is selected.
var ReadAttributes = []string{
	"cn", "objectClass", "description", "prsActive", "prsArchive", "prsCompress",
	"prsDefault", "prsStep", "prsUpdate", "prsValueTypeCode", "prsEntityTypeCode",
	"prsIndex", ConfigAttribute, "prsMeasureUnits", "prsMethodAddress",
}

// Codec converts a structured attribute between its JSON value and the form
// fields that display it.
type Codec interface {
	// Group is the form attribute that owns the sub-fields, e.g. "alertConfig".
	Group() string
	// Fields lists the sub-field names in display order.
	Fields() []string
	Unpack(raw string, loc *time.Location) (map[string]string, error)
	Pack(fields map[string]string, loc *time.Location) (any, error)
}

// Descriptor ties an attribute name to its wire kind and, for structured
// attributes, to the codec that splits it into fields.
type Descriptor struct {
	Name  string
	Kind  Kind
	Codec Codec
}

var numberAttrs = map[string]bool{
	"prsIndex":          true,
	"prsValueTypeCode":  true,
	"prsEntityTypeCode": true,
}

var booleanAttrs = map[string]bool{
	"prsActive":  true,
	"prsStep":    true,
	"prsUpdate":  true,
	"prsDefault": true,
}

// Lookup returns the descriptor of an attribute for an entity kind. The
// configuration attribute is only structured for alerts and schedules, and
// only when structured is set; otherwise it is edited as raw JSON text.
func Lookup(kind model.EntityKind, name string, structured bool) Descriptor {
	switch {
	case name == ConfigAttribute && structured && kind == model.KindAlert:
		return Descriptor{Name: name, Kind: Structured, Codec: AlertCodec{}}
	case name == ConfigAttribute && structured && kind == model.KindSchedule:
		return Descriptor{Name: name, Kind: Structured, Codec: ScheduleCodec{}}
	case numberAttrs[name]:
		return Descriptor{Name: name, Kind: Number}
	case booleanAttrs[name]:
		return Descriptor{Name: name, Kind: Boolean}
	}
	return Descriptor{Name: name, Kind: String}
}

// CodecForGroup finds the codec that owns a sub-field group.
func CodecForGroup(group string) (Codec, bool) {
	switch group {
	case AlertCodec{}.Group():
		return AlertCodec{}, true
	case ScheduleCodec{}.Group():
		return ScheduleCodec{}, true
	}
	return nil, false
}

// Encode converts a form string into its wire value.
func (d Descriptor) Encode(value string) (any, error) {
	switch d.Kind {
	case Number:
		return parseNumber(value)
	case Boolean:
		return value == "true", nil
	case Structured:
		return nil, fmt.Errorf("attribute %s is structured; pack it through its codec", d.Name)
	}
	return value, nil
}

// parseNumber treats an empty field as zero.
func parseNumber(value string) (float64, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", value)
	}
	return n, nil
}
