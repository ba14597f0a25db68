// Package registry holds the field mapping table used to compile structured
// filters into catalog search queries.
//
// A Registry is built once and never mutated. It is safe for concurrent use.
// To change mappings at runtime, build a new Registry and swap the reference.
package registry

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidMapping indicates a field mapping failed validation.
var ErrInvalidMapping = errors.New("invalid field mapping")

// Registry is an immutable set of field mappings plus the default operator table.
type Registry struct {
	fields    map[string]FieldMapping
	order     []string
	operators map[string]string
}

// New builds a Registry from mappings. Mapping order is kept as the canonical
// field order. If operators is nil, the default operator table is used.
func New(mappings []FieldMapping, operators map[string]string) (*Registry, error) {
	if operators == nil {
		operators = defaultOperators
	}

	r := &Registry{
		fields:    make(map[string]FieldMapping, len(mappings)),
		order:     make([]string, 0, len(mappings)),
		operators: copyStrings(operators),
	}

	for i, m := range mappings {
		if err := validateMapping(m); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrInvalidMapping, i, err)
		}
		if _, dup := r.fields[m.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate field %q", ErrInvalidMapping, m.Name)
		}
		if m.Status == "" {
			m.Status = StatusUnknown
		}
		r.fields[m.Name] = m
		r.order = append(r.order, m.Name)
	}

	return r, nil
}

func validateMapping(m FieldMapping) error {
	if m.Name == "" {
		return errors.New("field name is required")
	}
	if m.Name == CustomQueryField {
		return fmt.Errorf("field %q is reserved", m.Name)
	}
	if m.BackendField == "" {
		return fmt.Errorf("field %q: backend field is required", m.Name)
	}
	if !m.Conversion.Valid() {
		return fmt.Errorf("field %q: unknown conversion %q", m.Name, m.Conversion)
	}
	if m.Conversion == ConversionCatalogTag && m.TagHierarchy == "" && !m.DynamicHierarchy {
		return fmt.Errorf("field %q: catalog_tag mapping needs a tag hierarchy", m.Name)
	}
	if m.Conversion != ConversionCatalogTag && (m.TagHierarchy != "" || m.DynamicHierarchy) {
		return fmt.Errorf("field %q: tag hierarchy set on %s mapping", m.Name, m.Conversion)
	}
	return nil
}

var defaultRegistry = mustNew(builtinFields, nil)

func mustNew(mappings []FieldMapping, operators map[string]string) *Registry {
	r, err := New(mappings, operators)
	if err != nil {
		panic(err)
	}
	return r
}

// Default returns the built-in registry.
func Default() *Registry {
	return defaultRegistry
}

// Builtin returns a copy of the built-in mapping list.
func Builtin() []FieldMapping {
	out := make([]FieldMapping, len(builtinFields))
	copy(out, builtinFields)
	return out
}

// Lookup returns the mapping for name. The boolean is false for unknown fields.
func (r *Registry) Lookup(name string) (FieldMapping, bool) {
	m, ok := r.fields[name]
	return m, ok
}

// Operators returns the registry's default operator table.
// The returned map is shared and must not be modified.
func (r *Registry) Operators() map[string]string {
	return r.operators
}

// Vocabulary returns the closed vocabulary for name, or nil if the field
// accepts any value.
func (r *Registry) Vocabulary(name string) []string {
	m, ok := r.fields[name]
	if !ok || len(m.Vocabulary) == 0 {
		return nil
	}
	out := make([]string, len(m.Vocabulary))
	copy(out, m.Vocabulary)
	return out
}

// Names returns field names in canonical order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Mappings returns all mappings in canonical order.
func (r *Registry) Mappings() []FieldMapping {
	out := make([]FieldMapping, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.fields[name])
	}
	return out
}

// Len returns the number of mapped fields.
func (r *Registry) Len() int {
	return len(r.order)
}

// Functioning returns the sorted names of fields known to work.
func (r *Registry) Functioning() []string {
	return r.withStatus(StatusFunctioning)
}

// NonFunctional returns the sorted names of fields known not to work.
func (r *Registry) NonFunctional() []string {
	return r.withStatus(StatusNonFunctional)
}

// NoData returns the sorted names of fields known to return no data.
func (r *Registry) NoData() []string {
	return r.withStatus(StatusNoData)
}

func (r *Registry) withStatus(s WorkingStatus) []string {
	var names []string
	for _, name := range r.order {
		if r.fields[name].Status == s {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
