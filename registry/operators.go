package registry

// Operator names accepted in range and comparison objects.
const (
	OpEqual              = "equal"
	OpNotEqual           = "notEqual"
	OpGreaterThan        = "greaterThan"
	OpGreaterThanOrEqual = "greaterThanOrEqual"
	OpLessThan           = "lessThan"
	OpLessThanOrEqual    = "lessThanOrEqual"
	OpContains           = "contains"

	// Date-only aliases.
	OpBefore     = "before"
	OpAfter      = "after"
	OpOnOrBefore = "onOrBefore"
	OpOnOrAfter  = "onOrAfter"
)

// defaultOperators is the global operator name -> symbol table.
var defaultOperators = map[string]string{
	OpEqual:              "=",
	OpNotEqual:           "!=",
	OpGreaterThan:        ">",
	OpGreaterThanOrEqual: ">=",
	OpLessThan:           "<",
	OpLessThanOrEqual:    "<=",
	OpContains:           "LIKE",
}

// dateOperators extends the defaults for date fields.
var dateOperators = map[string]string{
	OpBefore:     "<",
	OpAfter:      ">",
	OpOnOrBefore: "<=",
	OpOnOrAfter:  ">=",
}

// UnreliableOperators lists operators that compile but are known to
// misbehave on the backend for range and date fields.
var UnreliableOperators = map[string]bool{
	OpNotEqual: true,
	"!=":       true,
}

// DefaultOperators returns a copy of the global operator table.
func DefaultOperators() map[string]string {
	return copyStrings(defaultOperators)
}

func copyStrings(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
