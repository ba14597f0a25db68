package filter

import (
	"fmt"
	"strings"

	"github.com/hugr-lab/catalog-filter/registry"
)

// DiagnosticCode classifies a diagnostic.
type DiagnosticCode string

const (
	// DiagInvalidEnum: a value outside the field's closed vocabulary. Compiled as given.
	DiagInvalidEnum DiagnosticCode = "invalid_enum"

	// DiagUnreliableOperator: an operator known to misbehave on the backend. Compiled as given.
	DiagUnreliableOperator DiagnosticCode = "unreliable_operator"

	// DiagFlaggedField: the registry marks the field non-functional or data-less.
	DiagFlaggedField DiagnosticCode = "flagged_field"

	// DiagUnknownOperator: the operator has no symbol. The field is skipped.
	DiagUnknownOperator DiagnosticCode = "unknown_operator"

	// DiagMissingHierarchy: a tag field without a tag hierarchy. The field is skipped.
	DiagMissingHierarchy DiagnosticCode = "missing_hierarchy"

	// DiagUnsupportedValue: the value cannot be rendered for the field, e.g. a
	// non-numeric value on a to_number field. The field is skipped.
	DiagUnsupportedValue DiagnosticCode = "unsupported_value"
)

// Diagnostic is an advisory message about a questionable but handled input.
// Diagnostics never change the compiled query.
type Diagnostic struct {
	Field   string
	Code    DiagnosticCode
	Message string
}

// String returns the human-readable message.
func (d Diagnostic) String() string {
	return d.Message
}

// diagnostics collects diagnostics for one compilation.
type diagnostics []Diagnostic

func (d *diagnostics) add(field string, code DiagnosticCode, format string, args ...any) {
	*d = append(*d, Diagnostic{
		Field:   field,
		Code:    code,
		Message: field + ": " + fmt.Sprintf(format, args...),
	})
}

func (d *diagnostics) invalidEnum(m registry.FieldMapping, value string) {
	d.add(m.Name, DiagInvalidEnum, "unsupported value %q; accepted values: %s",
		value, strings.Join(m.Vocabulary, ", "))
}

func (d *diagnostics) unreliableOperator(m registry.FieldMapping, op string) {
	d.add(m.Name, DiagUnreliableOperator,
		"operator %s is unreliable on the backend and may return unexpected results", op)
}

func (d *diagnostics) flagged(m registry.FieldMapping, skipped bool) {
	msg := "field is marked " + string(m.Status)
	if m.Notes != "" {
		msg += ": " + m.Notes
	}
	if skipped {
		msg += "; field skipped"
	}
	d.add(m.Name, DiagFlaggedField, "%s", msg)
}
