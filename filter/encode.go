package filter

import (
	"math"
	"strconv"
	"strings"
)

// literalEscaper escapes in a single pass, so a value can never close its
// own literal.
var literalEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// escapeString escapes backslashes and double quotes in a string value.
func escapeString(s string) string {
	return literalEscaper.Replace(s)
}

// quoteLiteral returns a double-quoted backend string literal.
func quoteLiteral(s string) string {
	return `"` + escapeString(s) + `"`
}

// quoteList returns "a","b",... with each value quoted, order preserved.
func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = quoteLiteral(v)
	}
	return strings.Join(quoted, ",")
}

// formatNumber renders a number without exponent or trailing zeros.
func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// wrap returns fn(arg), e.g. to_number(5).
func wrap(fn, arg string) string {
	return fn + "(" + arg + ")"
}

// applyTemplate fills {field}, {value} and {values} placeholders.
func applyTemplate(tmpl, field, value string, values []string) string {
	return strings.NewReplacer(
		"{field}", field,
		"{value}", value,
		"{values}", quoteList(values),
	).Replace(tmpl)
}
