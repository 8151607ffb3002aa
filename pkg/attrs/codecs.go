package attrs

import (
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// DisplayLayout is the minute-precision local time shown in schedule fields.
const DisplayLayout = "2006-01-02T15:04"

// wireLayout matches the millisecond UTC timestamps the backend stores.
const wireLayout = "2006-01-02T15:04:05.000Z07:00"

// AlertConfig is the configuration of an alert entity.
type AlertConfig struct {
	High    bool    `json:"high"`
	Value   float64 `json:"value"`
	AutoAck bool    `json:"autoAck"`
}

// AlertCodec splits an alert configuration into high/value/autoAck fields.
type AlertCodec struct{}

func (AlertCodec) Group() string { return "alertConfig" }

func (AlertCodec) Fields() []string {
	return []string{"alertConfHigh", "alertConfValue", "alertConfAutoack"}
}

func (AlertCodec) Unpack(raw string, _ *time.Location) (map[string]string, error) {
	var conf AlertConfig
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &conf); err != nil {
			return nil, fmt.Errorf("decode alert config: %w", err)
		}
	}
	return map[string]string{
		"alertConfHigh":    strconv.FormatBool(conf.High),
		"alertConfValue":   strconv.FormatFloat(conf.Value, 'f', -1, 64),
		"alertConfAutoack": strconv.FormatBool(conf.AutoAck),
	}, nil
}

func (AlertCodec) Pack(fields map[string]string, _ *time.Location) (any, error) {
	value, err := parseNumber(fields["alertConfValue"])
	if err != nil {
		return nil, fmt.Errorf("alert value: %w", err)
	}
	return AlertConfig{
		High:    fields["alertConfHigh"] == "true",
		Value:   value,
		AutoAck: fields["alertConfAutoack"] == "true",
	}, nil
}

// ScheduleConfig is the configuration of a schedule entity. Start and End are
// ISO 8601 instants; End is optional.
type ScheduleConfig struct {
	Start         string   `json:"start,omitempty"`
	IntervalType  string   `json:"interval_type,omitempty"`
	IntervalValue *float64 `json:"interval_value,omitempty"`
	End           string   `json:"end,omitempty"`
}

// ScheduleCodec splits a schedule configuration into start/interval/end
// fields. Instants are shown as local wall time at minute precision and
// converted back to UTC on save, so a load followed by a save keeps the
// same instant (modulo the dropped seconds).
type ScheduleCodec struct{}

func (ScheduleCodec) Group() string { return "scheduleConfig" }

func (ScheduleCodec) Fields() []string {
	return []string{"scheduleConfStart", "scheduleConfIntervalType", "scheduleConfIntervalValue", "scheduleConfEnd"}
}

func (ScheduleCodec) Unpack(raw string, loc *time.Location) (map[string]string, error) {
	var conf ScheduleConfig
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &conf); err != nil {
			return nil, fmt.Errorf("decode schedule config: %w", err)
		}
	}

	out := map[string]string{
		"scheduleConfStart":         "",
		"scheduleConfIntervalType":  conf.IntervalType,
		"scheduleConfIntervalValue": "",
		"scheduleConfEnd":           "",
	}
	if conf.IntervalValue != nil {
		out["scheduleConfIntervalValue"] = strconv.FormatFloat(*conf.IntervalValue, 'f', -1, 64)
	}
	if conf.Start != "" {
		display, err := ToDisplay(conf.Start, loc)
		if err != nil {
			return nil, fmt.Errorf("schedule start: %w", err)
		}
		out["scheduleConfStart"] = display
	}
	if conf.End != "" {
		display, err := ToDisplay(conf.End, loc)
		if err != nil {
			return nil, fmt.Errorf("schedule end: %w", err)
		}
		out["scheduleConfEnd"] = display
	}
	return out, nil
}

func (ScheduleCodec) Pack(fields map[string]string, loc *time.Location) (any, error) {
	var conf ScheduleConfig
	if v := fields["scheduleConfStart"]; v != "" {
		wire, err := FromDisplay(v, loc)
		if err != nil {
			return nil, fmt.Errorf("schedule start: %w", err)
		}
		conf.Start = wire
	}
	conf.IntervalType = fields["scheduleConfIntervalType"]
	if v := fields["scheduleConfIntervalValue"]; v != "" {
		n, err := parseNumber(v)
		if err != nil {
			return nil, fmt.Errorf("schedule interval: %w", err)
		}
		conf.IntervalValue = &n
	}
	if v := fields["scheduleConfEnd"]; v != "" {
		wire, err := FromDisplay(v, loc)
		if err != nil {
			return nil, fmt.Errorf("schedule end: %w", err)
		}
		conf.End = wire
	}
	return conf, nil
}

// ToDisplay parses an ISO 8601 instant and renders it as local wall time
// truncated to the minute. Timestamps without an offset are read in loc.
func ToDisplay(iso string, loc *time.Location) (string, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := parseInstant(iso, loc)
	if err != nil {
		return "", err
	}
	return t.In(loc).Format(DisplayLayout), nil
}

// FromDisplay reads a local wall time and returns the UTC instant in wire
// format.
func FromDisplay(display string, loc *time.Location) (string, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DisplayLayout, display, loc)
	if err != nil {
		return "", fmt.Errorf("%q is not a %s timestamp", display, DisplayLayout)
	}
	return t.UTC().Format(wireLayout), nil
}

var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	DisplayLayout,
}

func parseInstant(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range instantLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not an ISO 8601 timestamp", s)
}
