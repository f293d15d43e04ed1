package projector

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type record map[string]any

// maxExactInt is 2^53, the largest magnitude at which every integer is an
// exact float64.
const maxExactInt = 1 << 53

type shape struct {
	listField    string
	identityKeys []string
}

var (
	entityShape = shape{listField: "entities", identityKeys: []string{"id"}}
	alertShape  = shape{listField: "alerts", identityKeys: []string{"alert_id", "id"}}
	threatShape = shape{listField: "threats", identityKeys: []string{"threat"}}
)

func decode(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &MappingError{Raw: string(raw), Reason: fmt.Sprintf("invalid json: %v", err)}
	}
	return v, nil
}

// normalize turns the three accepted payload shapes into a uniform record list:
// a bare array, an object wrapping the array in the shape's list field, or a
// single record carrying one of the identity keys.
func normalize(raw []byte, s shape) ([]record, error) {
	v, err := decode(raw)
	if err != nil {
		return nil, err
	}

	switch val := v.(type) {
	case []any:
		return toRecords(val)
	case map[string]any:
		if list, ok := val[s.listField]; ok {
			items, ok := list.([]any)
			if !ok {
				return nil, &MappingError{Raw: val, Reason: fmt.Sprintf("field %q is not an array", s.listField)}
			}
			return toRecords(items)
		}
		for _, key := range s.identityKeys {
			if _, ok := val[key]; ok {
				return []record{val}, nil
			}
		}
		return nil, &MappingError{Raw: val, Reason: fmt.Sprintf("object has no %q field and is not a record", s.listField)}
	default:
		return nil, &MappingError{Raw: val, Reason: fmt.Sprintf("unsupported payload type %T", val)}
	}
}

func toRecords(items []any) ([]record, error) {
	out := make([]record, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, &MappingError{Raw: item, Reason: fmt.Sprintf("element %d is not an object", i)}
		}
		out = append(out, m)
	}
	return out, nil
}

// str returns the first non-empty string form of the named fields.
func (r record) str(keys ...string) string {
	for _, key := range keys {
		v, ok := r[key]
		if !ok || v == nil {
			continue
		}
		var s string
		switch val := v.(type) {
		case string:
			s = val
		case float64:
			if val == math.Trunc(val) && math.Abs(val) < maxExactInt {
				s = strconv.FormatInt(int64(val), 10)
			} else {
				s = strconv.FormatFloat(val, 'f', -1, 64)
			}
		case bool:
			s = strconv.FormatBool(val)
		default:
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

func (r record) strOr(def string, keys ...string) string {
	if s := r.str(keys...); s != "" {
		return s
	}
	return def
}

// num returns the first numeric value of the named fields, rounded. Numeric
// strings are accepted.
func (r record) num(keys ...string) (int, bool) {
	for _, key := range keys {
		v, ok := r[key]
		if !ok || v == nil {
			continue
		}
		switch val := v.(type) {
		case float64:
			if math.IsNaN(val) || math.IsInf(val, 0) {
				continue
			}
			return roundInt(val), true
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
			if err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
				return roundInt(f), true
			}
		}
	}
	return 0, false
}

// roundInt rounds f and clamps it to the int32 range before converting.
func roundInt(f float64) int {
	f = math.Round(f)
	switch {
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}
	return int(f)
}

// strs returns the named string list, or nil when absent. Non-string
// elements are skipped.
func (r record) strs(keys ...string) []string {
	for _, key := range keys {
		v, ok := r[key]
		if !ok || v == nil {
			continue
		}
		items, ok := v.([]any)
		if !ok {
			continue
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func (r record) object(key string) record {
	if m, ok := r[key].(map[string]any); ok {
		return m
	}
	return nil
}
