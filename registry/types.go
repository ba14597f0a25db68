package registry

// ConversionKind identifies how a field's value is wrapped in the backend grammar.
type ConversionKind string

const (
	ConversionNone       ConversionKind = "none"
	ConversionToNumber   ConversionKind = "to_number"
	ConversionToDate     ConversionKind = "to_date"
	ConversionToBool     ConversionKind = "to_bool"
	ConversionCatalogTag ConversionKind = "catalog_tag"
)

// Valid reports whether k is one of the known conversion kinds.
func (k ConversionKind) Valid() bool {
	switch k {
	case ConversionNone, ConversionToNumber, ConversionToDate, ConversionToBool, ConversionCatalogTag:
		return true
	}
	return false
}

// WorkingStatus records what is known about a field's behavior on the backend.
// It is informational only and never blocks compilation.
type WorkingStatus string

const (
	StatusFunctioning   WorkingStatus = "functioning"
	StatusNonFunctional WorkingStatus = "non_functional"
	StatusNoData        WorkingStatus = "no_data"
	StatusUnknown       WorkingStatus = "unknown"
)

// Flagged reports whether the status should be surfaced as a diagnostic.
func (s WorkingStatus) Flagged() bool {
	return s == StatusNonFunctional || s == StatusNoData
}

// Templates holds optional rendering templates for a field.
// Placeholders: {field} is the backend field, {value} a single value,
// {values} the comma-joined quoted value list.
type Templates struct {
	// Single renders one scalar value.
	Single string `msgpack:"single,omitempty" json:"single,omitempty"`

	// Multi renders an array value of any non-zero length.
	// When empty, arrays use the default IN rendering.
	Multi string `msgpack:"multi,omitempty" json:"multi,omitempty"`

	// True and False replace the whole fragment for boolean values.
	True  string `msgpack:"true,omitempty" json:"true,omitempty"`
	False string `msgpack:"false,omitempty" json:"false,omitempty"`
}

// IsZero reports whether no template is set.
func (t Templates) IsZero() bool {
	return t.Single == "" && t.Multi == "" && t.True == "" && t.False == ""
}

// FieldMapping describes how one structured-filter field maps to the backend.
// Mappings obtained from a Registry are shared and must not be modified.
type FieldMapping struct {
	// Name is the structured-filter field name (e.g. "fileSize").
	Name string `msgpack:"name" json:"name"`

	// BackendField is the backend field identifier (e.g. "sizeInBytes").
	BackendField string `msgpack:"backend_field" json:"backendField"`

	// Conversion selects the literal wrapping used when rendering values.
	Conversion ConversionKind `msgpack:"conversion" json:"conversion"`

	// TagHierarchy is the dotted tag path for catalog_tag mappings.
	TagHierarchy string `msgpack:"tag_hierarchy,omitempty" json:"tagHierarchy,omitempty"`

	// DynamicHierarchy marks catalog_tag mappings whose hierarchy is supplied per call.
	DynamicHierarchy bool `msgpack:"dynamic_hierarchy,omitempty" json:"dynamicHierarchy,omitempty"`

	// PatternAware enables regex, wildcard and alternation rendering for string values.
	PatternAware bool `msgpack:"pattern_aware,omitempty" json:"patternAware,omitempty"`

	Templates Templates `msgpack:"templates,omitempty" json:"templates,omitempty"`

	// Operators overrides entries of the default operator table for this field.
	Operators map[string]string `msgpack:"operators,omitempty" json:"operators,omitempty"`

	// Aliases maps accepted input values to the values sent to the backend.
	Aliases map[string]string `msgpack:"aliases,omitempty" json:"aliases,omitempty"`

	// Vocabulary is the closed set of accepted values, if any.
	Vocabulary []string `msgpack:"vocabulary,omitempty" json:"vocabulary,omitempty"`

	Status WorkingStatus `msgpack:"status" json:"status"`
	Notes  string        `msgpack:"notes,omitempty" json:"notes,omitempty"`
}

// Operator resolves an operator name through the field's table first,
// then through defaults. Symbols already present in either table are
// accepted as given.
func (m FieldMapping) Operator(name string, defaults map[string]string) (string, bool) {
	if sym, ok := m.Operators[name]; ok {
		return sym, true
	}
	if sym, ok := defaults[name]; ok {
		return sym, true
	}
	for _, sym := range defaults {
		if sym == name {
			return sym, true
		}
	}
	for _, sym := range m.Operators {
		if sym == name {
			return sym, true
		}
	}
	return "", false
}

// Alias resolves v through the alias table. Unknown values are returned unchanged.
func (m FieldMapping) Alias(v string) string {
	if a, ok := m.Aliases[v]; ok {
		return a
	}
	return v
}

// Accepts reports whether v belongs to the field's vocabulary.
// Fields without a vocabulary accept everything.
func (m FieldMapping) Accepts(v string) bool {
	if len(m.Vocabulary) == 0 {
		return true
	}
	for _, allowed := range m.Vocabulary {
		if allowed == v {
			return true
		}
	}
	return false
}
