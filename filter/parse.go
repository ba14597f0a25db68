package filter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/hugr-lab/catalog-filter/internal/msgpack"
	"github.com/hugr-lab/catalog-filter/registry"
)

// FieldError indicates a field value whose shape cannot be decoded.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return "filter: field " + strconv.Quote(e.Field) + ": " + e.Reason
}

// ParseJSON parses a JSON object into a StructuredFilter, keeping key order.
// Null values are dropped. Empty input yields an empty filter.
//
// Error conditions:
//   - Invalid JSON syntax
//   - Top-level value is not an object
//   - A field value has an unsupported shape
//   - A relative date amount is negative or not a whole number (e.g. 1.5)
func ParseJSON(data []byte) (StructuredFilter, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return StructuredFilter{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("filter: invalid JSON: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("filter: expected a JSON object")
	}

	var f StructuredFilter
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("filter: invalid JSON: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("filter: invalid JSON key %v", tok)
		}

		var raw any
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("filter: invalid JSON value for %q: %w", name, err)
		}

		v, err := ValueOf(name, raw)
		if err != nil {
			return nil, err
		}
		f.Set(name, v)
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("filter: invalid JSON: %w", err)
	}

	return f, nil
}

// ParseMsgpack parses a MessagePack map into a StructuredFilter, keeping key order.
func ParseMsgpack(data []byte) (StructuredFilter, error) {
	if len(data) == 0 {
		return StructuredFilter{}, nil
	}

	pairs, err := msgpack.DecodeOrderedMap(data)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}

	var f StructuredFilter
	for _, p := range pairs {
		v, err := ValueOf(p.Key, p.Value)
		if err != nil {
			return nil, err
		}
		f.Set(p.Key, v)
	}
	return f, nil
}

// FromArgs converts loosely typed arguments, such as MCP tool arguments,
// into a StructuredFilter. Go maps are unordered, so fields are ordered by
// the built-in registry's canonical order, then customQuery, then any
// remaining keys sorted by name.
func FromArgs(args map[string]any) (StructuredFilter, error) {
	order := registry.Default().Names()
	order = append(order, registry.CustomQueryField)

	seen := make(map[string]bool, len(order))
	var f StructuredFilter
	add := func(name string) error {
		raw, ok := args[name]
		if !ok || seen[name] {
			return nil
		}
		seen[name] = true
		v, err := ValueOf(name, raw)
		if err != nil {
			return err
		}
		f.Set(name, v)
		return nil
	}

	for _, name := range order {
		if err := add(name); err != nil {
			return nil, err
		}
	}

	rest := make([]string, 0, len(args))
	for name := range args {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		if err := add(name); err != nil {
			return nil, err
		}
	}

	return f, nil
}

// ValueOf converts a decoded value (from JSON, MessagePack or a Go map) into
// a Value variant. A nil result means the field is absent.
func ValueOf(name string, raw any) (Value, error) {
	if raw == nil {
		return nil, nil
	}

	if name == registry.CustomQueryField {
		s, ok := raw.(string)
		if !ok {
			return nil, &FieldError{Field: name, Reason: "customQuery must be a string"}
		}
		return Raw(s), nil
	}

	switch v := raw.(type) {
	case bool:
		return Bool(v), nil
	case string:
		return String(v), nil
	case []string:
		return StringList(v), nil
	case []any:
		return listOf(name, v)
	case map[string]any:
		return objectOf(name, v)
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, val := range v {
			m[fmt.Sprint(k)] = val
		}
		return objectOf(name, m)
	}

	if n, ok := numberOf(raw); ok {
		return Number(n), nil
	}
	if n, ok := raw.(json.Number); ok {
		return String(n.String()), nil
	}
	return nil, &FieldError{Field: name, Reason: fmt.Sprintf("unsupported value type %T", raw)}
}

// numberOf extracts a float64 from the numeric types produced by the decoders.
func numberOf(raw any) (float64, bool) {
	switch v := raw.(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}

// textOf renders a scalar array element as text.
func textOf(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case json.Number:
		return v.String(), true
	}
	if n, ok := numberOf(raw); ok {
		return formatNumber(n), true
	}
	return "", false
}

func listOf(name string, items []any) (Value, error) {
	if len(items) > 0 && allTags(items) {
		tags := make(TagList, 0, len(items))
		for i, item := range items {
			t, err := tagOf(name, toStringMap(item))
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			tags = append(tags, t)
		}
		return tags, nil
	}

	list := make(StringList, 0, len(items))
	for i, item := range items {
		if item == nil {
			continue
		}
		s, ok := textOf(item)
		if !ok {
			return nil, &FieldError{Field: name, Reason: fmt.Sprintf("unsupported array element %d of type %T", i, item)}
		}
		list = append(list, s)
	}
	return list, nil
}

func toStringMap(raw any) map[string]any {
	switch v := raw.(type) {
	case map[string]any:
		return v
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, val := range v {
			m[fmt.Sprint(k)] = val
		}
		return m
	}
	return nil
}

func allTags(items []any) bool {
	for _, item := range items {
		m := toStringMap(item)
		if m == nil {
			return false
		}
		if _, ok := m["tagHierarchy"]; !ok {
			return false
		}
	}
	return true
}

// rawTag is the object shape {tagHierarchy, value}.
type rawTag struct {
	TagHierarchy string `mapstructure:"tagHierarchy"`
	Value        any    `mapstructure:"value"`
}

// rawRange is the object shape {operator, value}.
type rawRange struct {
	Operator string `mapstructure:"operator"`
	Value    any    `mapstructure:"value"`
}

// rawRelative is the object shape {type, amount, unit}.
type rawRelative struct {
	Type   string `mapstructure:"type"`
	Amount int    `mapstructure:"amount"`
	Unit   string `mapstructure:"unit"`
}

func decode(input map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

func objectOf(name string, m map[string]any) (Value, error) {
	if _, ok := m["tagHierarchy"]; ok {
		return tagOf(name, m)
	}
	if _, ok := m["operator"]; ok {
		return rangeOf(name, m)
	}
	if _, ok := m["type"]; ok {
		rel, err := relativeOf(name, m)
		if err != nil {
			return nil, err
		}
		return DateRange{Relative: rel}, nil
	}
	if _, ok := m["value"]; ok {
		return rangeOf(name, m)
	}
	return nil, &FieldError{Field: name, Reason: "unsupported object shape"}
}

func tagOf(name string, m map[string]any) (Tag, error) {
	var raw rawTag
	if err := decode(m, &raw); err != nil {
		return Tag{}, &FieldError{Field: name, Reason: "invalid tag filter: " + err.Error()}
	}

	t := Tag{Hierarchy: raw.TagHierarchy}
	switch v := raw.Value.(type) {
	case nil:
	case []any:
		for _, item := range v {
			if s, ok := textOf(item); ok {
				t.Values = append(t.Values, s)
			}
		}
	case []string:
		t.Values = append(t.Values, v...)
	default:
		s, ok := textOf(v)
		if !ok {
			return Tag{}, &FieldError{Field: name, Reason: fmt.Sprintf("unsupported tag value type %T", v)}
		}
		t.Values = []string{s}
	}
	return t, nil
}

func rangeOf(name string, m map[string]any) (Value, error) {
	var raw rawRange
	if err := decode(m, &raw); err != nil {
		return nil, &FieldError{Field: name, Reason: "invalid range: " + err.Error()}
	}

	if n, ok := numberOf(raw.Value); ok {
		return NumberRange{Operator: raw.Operator, Value: n}, nil
	}

	switch v := raw.Value.(type) {
	case string:
		if n, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
			return NumberRange{Operator: raw.Operator, Value: n}, nil
		}
		return DateRange{Operator: raw.Operator, Absolute: v}, nil
	case time.Time:
		return DateRange{Operator: raw.Operator, Absolute: v.UTC().Format(time.RFC3339)}, nil
	}

	if obj := toStringMap(raw.Value); obj != nil {
		rel, err := relativeOf(name, obj)
		if err != nil {
			return nil, err
		}
		return DateRange{Operator: raw.Operator, Relative: rel}, nil
	}

	return nil, &FieldError{Field: name, Reason: fmt.Sprintf("unsupported range value type %T", raw.Value)}
}

func relativeOf(name string, m map[string]any) (*RelativeDate, error) {
	var raw rawRelative
	if err := decode(m, &raw); err != nil {
		return nil, &FieldError{Field: name, Reason: "invalid relative date: " + err.Error()}
	}

	dir := Direction(raw.Type)
	if dir != Past && dir != Future {
		return nil, &FieldError{Field: name, Reason: fmt.Sprintf("relative date type must be past or future, got %q", raw.Type)}
	}
	if raw.Amount < 0 {
		return nil, &FieldError{Field: name, Reason: fmt.Sprintf("relative date amount must not be negative, got %d", raw.Amount)}
	}
	if raw.Unit == "" {
		raw.Unit = "d"
	}
	return &RelativeDate{Direction: dir, Amount: raw.Amount, Unit: raw.Unit}, nil
}
