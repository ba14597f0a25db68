package filter

import "strconv"

// ValueKind identifies the variant of a field value.
type ValueKind string

const (
	KindString      ValueKind = "string"
	KindNumber      ValueKind = "number"
	KindBool        ValueKind = "bool"
	KindStringList  ValueKind = "string_list"
	KindNumberRange ValueKind = "number_range"
	KindDateRange   ValueKind = "date_range"
	KindTag         ValueKind = "tag"
	KindTagList     ValueKind = "tag_list"
	KindRaw         ValueKind = "raw"
)

// Value is the interface implemented by all field value variants.
// Use a type switch to access the concrete variant.
type Value interface {
	// Kind returns the variant of the value.
	Kind() ValueKind

	// valueMarker is a marker method to prevent external implementation.
	valueMarker()
}

// String is a scalar string value.
type String string

// Number is a scalar numeric value.
type Number float64

// Bool is a scalar boolean value.
type Bool bool

// StringList is an array value. Numeric and boolean array elements are
// carried in their textual form.
type StringList []string

// NumberRange is a comparison against a number, e.g. {operator: greaterThan, value: 5}.
type NumberRange struct {
	Operator string
	Value    float64
}

// DateRange is a comparison against a date. Exactly one of Absolute and
// Relative is set. Absolute holds the literal as given (normally ISO-8601).
// An empty Operator means equal for absolute dates, greaterThan for past
// and lessThan for future relative dates.
type DateRange struct {
	Operator string
	Absolute string
	Relative *RelativeDate
}

// Direction of a relative date.
type Direction string

const (
	Past   Direction = "past"
	Future Direction = "future"
)

// RelativeDate is an offset from now, e.g. 30 days in the past.
type RelativeDate struct {
	Direction Direction
	Amount    int
	Unit      string
}

// Duration renders the backend duration literal. Future offsets are
// negated past durations because the backend has no future() primitive.
func (r RelativeDate) Duration() string {
	d := strconv.Itoa(r.Amount) + r.Unit
	if r.Direction == Future {
		return "-" + d
	}
	return d
}

// Tag selects values under a tag hierarchy.
type Tag struct {
	Hierarchy string
	Values    []string
}

// TagList is an array of tag filters. Members are OR'ed together.
type TagList []Tag

// Raw is a backend expression or bare search term passed through customQuery.
type Raw string

func (String) Kind() ValueKind      { return KindString }
func (Number) Kind() ValueKind      { return KindNumber }
func (Bool) Kind() ValueKind        { return KindBool }
func (StringList) Kind() ValueKind  { return KindStringList }
func (NumberRange) Kind() ValueKind { return KindNumberRange }
func (DateRange) Kind() ValueKind   { return KindDateRange }
func (Tag) Kind() ValueKind         { return KindTag }
func (TagList) Kind() ValueKind     { return KindTagList }
func (Raw) Kind() ValueKind         { return KindRaw }

func (String) valueMarker()      {}
func (Number) valueMarker()      {}
func (Bool) valueMarker()        {}
func (StringList) valueMarker()  {}
func (NumberRange) valueMarker() {}
func (DateRange) valueMarker()   {}
func (Tag) valueMarker()         {}
func (TagList) valueMarker()     {}
func (Raw) valueMarker()         {}

// PastRange returns a relative date range amount units in the past.
func PastRange(operator string, amount int, unit string) DateRange {
	return DateRange{Operator: operator, Relative: &RelativeDate{Direction: Past, Amount: amount, Unit: unit}}
}

// FutureRange returns a relative date range amount units in the future.
func FutureRange(operator string, amount int, unit string) DateRange {
	return DateRange{Operator: operator, Relative: &RelativeDate{Direction: Future, Amount: amount, Unit: unit}}
}

// Field is one named constraint of a structured filter.
type Field struct {
	Name  string
	Value Value
}

// StructuredFilter is an ordered set of named field values.
// Field order is the order fields were supplied and is kept in the compiled query.
// Names are unique; use Set to add or replace a field.
type StructuredFilter []Field

// Set adds the field or replaces its value in place. A nil value removes the field.
func (f *StructuredFilter) Set(name string, v Value) {
	for i := range *f {
		if (*f)[i].Name != name {
			continue
		}
		if v == nil {
			*f = append((*f)[:i], (*f)[i+1:]...)
			return
		}
		(*f)[i].Value = v
		return
	}
	if v != nil {
		*f = append(*f, Field{Name: name, Value: v})
	}
}

// Get returns the value of the named field.
func (f StructuredFilter) Get(name string) (Value, bool) {
	for _, field := range f {
		if field.Name == name {
			return field.Value, true
		}
	}
	return nil, false
}

// Names returns field names in order.
func (f StructuredFilter) Names() []string {
	names := make([]string, 0, len(f))
	for _, field := range f {
		names = append(names, field.Name)
	}
	return names
}

// normalize applies map semantics to hand-built filters: a repeated name
// keeps its first position and its last value, nil values are dropped.
func (f StructuredFilter) normalize() StructuredFilter {
	out := make(StructuredFilter, 0, len(f))
	for _, field := range f {
		out.Set(field.Name, field.Value)
	}
	return out
}
