package earnings

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Fields is a loosely-typed vendor payload object.
// Vendor payloads rename the same value across endpoints, so every accessor
// takes a list of candidate keys and returns the first usable one.
type Fields map[string]any

// Has returns true if any of keys is present with a non-nil value
func (f Fields) Has(keys ...string) bool {
	for _, k := range keys {
		if v, ok := f[k]; ok && v != nil {
			return true
		}
	}
	return false
}

// Raw returns the first non-nil value among keys
func (f Fields) Raw(keys ...string) any {
	for _, k := range keys {
		if v, ok := f[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// String returns the first non-empty string form among keys
func (f Fields) String(keys ...string) string {
	for _, k := range keys {
		v, ok := f[k]
		if !ok || v == nil {
			continue
		}
		var s string
		switch t := v.(type) {
		case string:
			s = t
		case json.Number:
			s = t.String()
		case float64:
			s = strconv.FormatFloat(t, 'f', -1, 64)
		case int:
			s = strconv.Itoa(t)
		case int64:
			s = strconv.FormatInt(t, 10)
		case bool:
			s = strconv.FormatBool(t)
		default:
			continue
		}
		if s != "" {
			return s
		}
	}
	return ""
}

// Amount returns the first present value among keys parsed as money
func (f Fields) Amount(keys ...string) decimal.Decimal {
	return ParseAmount(f.Raw(keys...))
}

// Int returns the first present value among keys as an integer, or 0
func (f Fields) Int(keys ...string) int {
	return toInt(f.Raw(keys...))
}

// Bool returns the first present value among keys as a boolean
func (f Fields) Bool(keys ...string) bool {
	switch t := f.Raw(keys...).(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(t)
		return b
	case json.Number:
		return t.String() != "0"
	case float64:
		return t != 0
	default:
		return false
	}
}

// Object returns the first value among keys that is a nested object
func (f Fields) Object(keys ...string) Fields {
	for _, k := range keys {
		switch t := f[k].(type) {
		case map[string]any:
			return Fields(t)
		case Fields:
			return t
		}
	}
	return nil
}

// List returns the first value among keys that is an array of objects.
// Non-object elements are dropped.
func (f Fields) List(keys ...string) []Fields {
	for _, k := range keys {
		arr, ok := f[k].([]any)
		if !ok {
			continue
		}
		out := make([]Fields, 0, len(arr))
		for _, item := range arr {
			if m, ok := item.(map[string]any); ok {
				out = append(out, Fields(m))
			}
		}
		return out
	}
	return nil
}

// Time returns the first parseable timestamp among keys
func (f Fields) Time(keys ...string) (time.Time, bool) {
	for _, k := range keys {
		s := f.String(k)
		if s == "" {
			continue
		}
		if t, ok := ParseTime(s); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// JSON marshals the payload, returning "{}" on failure
func (f Fields) JSON() string {
	return MarshalPayload(f)
}

// RawJSON prepares a stored payload cell for the jsonb raw_payload column.
// Valid JSON is kept as is; any other text is encoded as a JSON string.
func RawJSON(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || json.Valid([]byte(s)) {
		return s
	}
	return MarshalPayload(s)
}

// MarshalPayload marshals v for the raw_payload column, returning "{}" on failure
func MarshalPayload(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// timeLayouts are the timestamp formats seen across vendor payloads
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05-0700", // Graph API
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05-07",
	DateLayout,
}

// ParseTime parses a vendor timestamp in any of the known layouts, returning it in UTC
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func toInt(v any) int {
	switch t := v.(type) {
	case nil:
		return 0
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i)
		}
		if fl, err := t.Float64(); err == nil {
			return int(fl)
		}
		return 0
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(t), ",", "")
		if i, err := strconv.Atoi(s); err == nil {
			return i
		}
		if fl, err := strconv.ParseFloat(s, 64); err == nil {
			return int(fl)
		}
		return 0
	default:
		return 0
	}
}

// ParseAmount converts a vendor money value into a 2dp decimal.
// Strings may carry "$" and "," decorations; anything unparseable is zero.
func ParseAmount(v any) decimal.Decimal {
	var d decimal.Decimal
	switch t := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		d = t
	case float64:
		d = decimal.NewFromFloat(t)
	case float32:
		d = decimal.NewFromFloat32(t)
	case int:
		d = decimal.NewFromInt(int64(t))
	case int64:
		d = decimal.NewFromInt(t)
	case json.Number:
		parsed, err := decimal.NewFromString(t.String())
		if err != nil {
			return decimal.Zero
		}
		d = parsed
	case string:
		s := strings.TrimSpace(strings.NewReplacer("$", "", ",", "").Replace(t))
		if s == "" {
			return decimal.Zero
		}
		parsed, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero
		}
		d = parsed
	default:
		parsed, err := decimal.NewFromString(fmt.Sprint(t))
		if err != nil {
			return decimal.Zero
		}
		d = parsed
	}
	return d.Round(2)
}
