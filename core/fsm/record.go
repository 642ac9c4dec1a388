package fsm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Record is the persisted conversation position of one user.
type Record struct {
	UserID int64
	State  string
	Data   Data
}

// Data is the free-form scratch pad threaded through a flow.
// Values follow JSON semantics: numbers read back from a store are float64.
type Data map[string]any

// Clone returns a shallow copy that is never nil.
func (d Data) Clone() Data {
	out := make(Data, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// With returns a copy of d with key set to value.
func (d Data) With(key string, value any) Data {
	out := d.Clone()
	out[key] = value
	return out
}

// Without returns a copy of d without the given keys.
func (d Data) Without(keys ...string) Data {
	out := d.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Only returns a copy of d restricted to the given keys.
func (d Data) Only(keys ...string) Data {
	out := make(Data, len(keys))
	for _, k := range keys {
		if v, ok := d[k]; ok {
			out[k] = v
		}
	}
	return out
}

// String returns the string stored under key.
func (d Data) String(key string) (string, bool) {
	s, ok := d[key].(string)
	return s, ok
}

// Int64 returns the integer stored under key, accepting any JSON number form.
func (d Data) Int64(key string) (int64, bool) {
	return toInt64(d[key])
}

// Int64s returns the integer list stored under key. Non-numeric entries are skipped.
func (d Data) Int64s(key string) []int64 {
	raw, ok := d[key].([]any)
	if !ok {
		if typed, ok := d[key].([]int64); ok {
			return append([]int64(nil), typed...)
		}
		return nil
	}
	out := make([]int64, 0, len(raw))
	for _, v := range raw {
		if n, ok := toInt64(v); ok {
			out = append(out, n)
		}
	}
	return out
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	}
	return 0, false
}

// Value implements driver.Valuer so Data can be bound to a JSONB column.
func (d Data) Value() (driver.Value, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]any(d))
}

// Scan implements sql.Scanner for JSON and JSONB columns.
func (d *Data) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*d = Data{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("fsm: cannot scan %T into Data", src)
	}
	out := Data{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return fmt.Errorf("fsm: decode data: %w", err)
		}
	}
	if out == nil {
		out = Data{}
	}
	*d = out
	return nil
}

// normalize round-trips d through JSON so in-memory values match what a store returns.
func normalize(d Data) (Data, error) {
	raw, err := d.Value()
	if err != nil {
		return nil, err
	}
	var out Data
	if err := out.Scan(raw); err != nil {
		return nil, err
	}
	return out, nil
}
