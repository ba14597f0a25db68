package filter

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/hugr-lab/catalog-filter/registry"
)

// searchTermField is the mapping used for bare customQuery search terms.
const searchTermField = "objectName"

// CompilerOptions configures compilation behavior.
type CompilerOptions struct {
	// SkipFlagged omits fields the registry marks non-functional or data-less.
	// A diagnostic is reported either way.
	SkipFlagged bool
}

// Compiler compiles structured filters into catalog search query strings.
// A Compiler holds no mutable state and is safe for concurrent use.
type Compiler struct {
	reg  *registry.Registry
	opts CompilerOptions
}

// NewCompiler creates a compiler over reg.
// If reg is nil, the built-in registry is used. If opts is nil, default options are used.
func NewCompiler(reg *registry.Registry, opts *CompilerOptions) *Compiler {
	if reg == nil {
		reg = registry.Default()
	}
	c := &Compiler{reg: reg}
	if opts != nil {
		c.opts = *opts
	}
	return c
}

// Registry returns the registry the compiler resolves fields against.
func (c *Compiler) Registry() *registry.Registry {
	return c.reg
}

// fragment is the compiled form of one field. group marks an OR group
// that must stay a single unit inside the AND chain.
type fragment struct {
	text  string
	group bool
}

// Compile converts f to a query string and returns it with any diagnostics.
// Fragments are AND'ed in field order. Returns an empty string if no field
// produced a fragment. Compile never fails: unknown fields and empty arrays
// are omitted, questionable values are compiled as given and reported, and
// values that cannot form a valid literal are reported and omitted.
//
// The result is the fragments joined by " AND " with one exception: a tag
// list compiles to an OR group, which is wrapped in parentheses when it is
// not the only fragment. Compiling such a field alone yields it unwrapped.
func (c *Compiler) Compile(f StructuredFilter) (string, []Diagnostic) {
	var diags diagnostics
	var parts []fragment

	for _, field := range f.normalize() {
		frag := c.compileField(field, &diags)
		if frag.text != "" {
			parts = append(parts, frag)
		}
	}

	if len(parts) == 0 {
		return "", diags
	}
	if len(parts) == 1 {
		return parts[0].text, diags
	}

	texts := make([]string, len(parts))
	for i, p := range parts {
		if p.group {
			texts[i] = "(" + p.text + ")"
			continue
		}
		texts[i] = p.text
	}
	return strings.Join(texts, " AND "), diags
}

func (c *Compiler) compileField(field Field, d *diagnostics) fragment {
	if isEmpty(field.Value) {
		return fragment{}
	}

	if field.Name == registry.CustomQueryField {
		switch v := field.Value.(type) {
		case Raw:
			return fragment{text: c.renderRaw(string(v))}
		case String:
			return fragment{text: c.renderRaw(string(v))}
		default:
			d.add(field.Name, DiagUnsupportedValue, "%s value not supported; field skipped", field.Value.Kind())
			return fragment{}
		}
	}

	m, ok := c.reg.Lookup(field.Name)
	if !ok {
		return fragment{}
	}

	if m.Status.Flagged() {
		d.flagged(m, c.opts.SkipFlagged)
		if c.opts.SkipFlagged {
			return fragment{}
		}
	}

	switch v := field.Value.(type) {
	case String:
		return fragment{text: c.renderScalar(m, string(v), d)}
	case Raw:
		return fragment{text: c.renderScalar(m, string(v), d)}
	case Number:
		return fragment{text: c.renderScalar(m, formatNumber(float64(v)), d)}
	case Bool:
		return fragment{text: c.renderBool(m, bool(v), d)}
	case StringList:
		return fragment{text: c.renderList(m, v, d)}
	case NumberRange:
		return fragment{text: c.renderNumberRange(m, v, d)}
	case DateRange:
		return fragment{text: c.renderDateRange(m, v, d)}
	case Tag:
		return fragment{text: c.renderTag(m, v, d)}
	case TagList:
		return c.renderTagList(m, v, d)
	default:
		return fragment{}
	}
}

// isEmpty reports values equivalent to omitting the field.
func isEmpty(v Value) bool {
	switch v := v.(type) {
	case nil:
		return true
	case String:
		return strings.TrimSpace(string(v)) == ""
	case Raw:
		return strings.TrimSpace(string(v)) == ""
	case StringList:
		return len(v) == 0
	case Tag:
		return len(v.Values) == 0
	case TagList:
		for _, t := range v {
			if len(t.Values) > 0 {
				return false
			}
		}
		return true
	}
	return false
}

// checkVocabulary reports each value outside the field's closed vocabulary.
func (c *Compiler) checkVocabulary(m registry.FieldMapping, values []string, d *diagnostics) {
	for _, v := range values {
		if !m.Accepts(v) {
			d.invalidEnum(m, v)
		}
	}
}

func aliasAll(m registry.FieldMapping, values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = m.Alias(v)
	}
	return out
}

// renderScalar renders a single scalar value by conversion kind.
func (c *Compiler) renderScalar(m registry.FieldMapping, raw string, d *diagnostics) string {
	v := m.Alias(raw)
	c.checkVocabulary(m, []string{v}, d)

	if m.Conversion == registry.ConversionCatalogTag {
		if m.TagHierarchy == "" {
			d.add(m.Name, DiagMissingHierarchy, "tag filter needs a tagHierarchy; field skipped")
			return ""
		}
		return tagExpression(m.BackendField, m.TagHierarchy, []string{v})
	}

	v, ok := operandValue(m, v, d)
	if !ok {
		return ""
	}

	if m.Templates.Single != "" {
		return applyTemplate(m.Templates.Single, m.BackendField, v, []string{v})
	}

	switch m.Conversion {
	case registry.ConversionToNumber, registry.ConversionToDate:
		return m.BackendField + " = " + operand(m, v)
	case registry.ConversionToBool:
		b, _ := strconv.ParseBool(v)
		return c.renderBool(m, b, d)
	}

	if m.PatternAware {
		return renderPattern(m.BackendField, v)
	}
	return m.BackendField + "=" + quoteLiteral(v)
}

// renderPattern renders a pattern-aware string value.
// /re/ is a raw regex literal, * and ? are backend wildcards kept as a quoted
// literal, and a|b becomes the regex alternation /a|b/.
func renderPattern(field, v string) string {
	switch {
	case len(v) >= 2 && strings.HasPrefix(v, "/") && strings.HasSuffix(v, "/"):
		return field + "=" + v
	case strings.ContainsAny(v, "*?"):
		return field + "=" + quoteLiteral(v)
	case strings.Contains(v, "|"):
		return field + "=/" + v + "/"
	default:
		return field + "=" + quoteLiteral(v)
	}
}

// renderBool renders a boolean. True/False templates replace the whole fragment.
func (c *Compiler) renderBool(m registry.FieldMapping, b bool, d *diagnostics) string {
	if b && m.Templates.True != "" {
		return m.Templates.True
	}
	if !b && m.Templates.False != "" {
		return m.Templates.False
	}
	if m.Conversion == registry.ConversionToBool {
		return m.BackendField + "=" + wrap("to_bool", strconv.FormatBool(b))
	}
	return c.renderScalar(m, strconv.FormatBool(b), d)
}

// renderList renders an array. One element without a multi template is
// rendered as that element; two or more become an IN list.
func (c *Compiler) renderList(m registry.FieldMapping, list StringList, d *diagnostics) string {
	if len(list) == 0 {
		return ""
	}
	if len(list) == 1 && m.Templates.Multi == "" && m.Conversion != registry.ConversionCatalogTag {
		return c.renderScalar(m, list[0], d)
	}

	values := aliasAll(m, list)
	c.checkVocabulary(m, values, d)

	if m.Conversion == registry.ConversionCatalogTag {
		if m.TagHierarchy == "" {
			d.add(m.Name, DiagMissingHierarchy, "tag filter needs a tagHierarchy; field skipped")
			return ""
		}
		return tagExpression(m.BackendField, m.TagHierarchy, values)
	}
	if m.Templates.Multi != "" {
		return applyTemplate(m.Templates.Multi, m.BackendField, strings.Join(values, ","), values)
	}
	return m.BackendField + " IN (" + quoteList(values) + ")"
}

// resolveOperator maps an operator name to its symbol and reports
// unreliable or unknown operators.
func (c *Compiler) resolveOperator(m registry.FieldMapping, op string, d *diagnostics) (string, bool) {
	sym, ok := m.Operator(op, c.reg.Operators())
	if !ok {
		d.add(m.Name, DiagUnknownOperator, "unknown operator %q; field skipped", op)
		return "", false
	}
	if registry.UnreliableOperators[op] {
		d.unreliableOperator(m, op)
	}
	return sym, true
}

// dateLiteral matches values safe to place unquoted inside to_date(...).
var dateLiteral = regexp.MustCompile(`^[0-9A-Za-z:+.\-]+$`)

// operandValue validates v for the field's conversion and returns it in
// canonical form. Values that cannot form a function-wrapped literal are
// reported and the field is skipped.
func operandValue(m registry.FieldMapping, v string, d *diagnostics) (string, bool) {
	switch m.Conversion {
	case registry.ConversionToNumber:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			d.add(m.Name, DiagUnsupportedValue, "%q is not a number; field skipped", v)
			return "", false
		}
		return formatNumber(n), true
	case registry.ConversionToDate:
		if !dateLiteral.MatchString(v) {
			d.add(m.Name, DiagUnsupportedValue, "%q is not a date; field skipped", v)
			return "", false
		}
		return v, true
	case registry.ConversionToBool:
		b, err := strconv.ParseBool(v)
		if err != nil {
			d.add(m.Name, DiagUnsupportedValue, "%q is not a boolean; field skipped", v)
			return "", false
		}
		return strconv.FormatBool(b), true
	}
	return v, true
}

// operand renders a validated value as the field's literal.
func operand(m registry.FieldMapping, v string) string {
	switch m.Conversion {
	case registry.ConversionToNumber:
		return wrap("to_number", v)
	case registry.ConversionToDate:
		return wrap("to_date", v)
	case registry.ConversionToBool:
		return wrap("to_bool", v)
	default:
		return quoteLiteral(v)
	}
}

func (c *Compiler) renderNumberRange(m registry.FieldMapping, r NumberRange, d *diagnostics) string {
	if m.Conversion == registry.ConversionCatalogTag {
		d.add(m.Name, DiagUnsupportedValue, "range value not supported for tag field; field skipped")
		return ""
	}
	op := r.Operator
	if op == "" {
		op = registry.OpEqual
	}
	v, ok := operandValue(m, formatNumber(r.Value), d)
	if !ok {
		return ""
	}
	sym, ok := c.resolveOperator(m, op, d)
	if !ok {
		return ""
	}
	return m.BackendField + " " + sym + " " + operand(m, v)
}

func (c *Compiler) renderDateRange(m registry.FieldMapping, r DateRange, d *diagnostics) string {
	if m.Conversion == registry.ConversionCatalogTag {
		d.add(m.Name, DiagUnsupportedValue, "range value not supported for tag field; field skipped")
		return ""
	}

	op := r.Operator
	if r.Relative != nil {
		if r.Relative.Amount < 0 {
			d.add(m.Name, DiagUnsupportedValue, "relative date amount must not be negative; field skipped")
			return ""
		}
		if op == "" {
			op = registry.OpGreaterThan
			if r.Relative.Direction == Future {
				op = registry.OpLessThan
			}
		}
		sym, ok := c.resolveOperator(m, op, d)
		if !ok {
			return ""
		}
		return m.BackendField + " " + sym + " " + wrap("past", quoteLiteral(r.Relative.Duration()))
	}

	if r.Absolute == "" {
		return ""
	}
	if op == "" {
		op = registry.OpEqual
	}
	v, ok := operandValue(m, r.Absolute, d)
	if !ok {
		return ""
	}
	sym, ok := c.resolveOperator(m, op, d)
	if !ok {
		return ""
	}
	return m.BackendField + " " + sym + " " + operand(m, v)
}

// tagExpression renders catalog_tag.<hierarchy> in ("a","b").
func tagExpression(field, hierarchy string, values []string) string {
	return field + "." + hierarchy + " in (" + quoteList(values) + ")"
}

func (c *Compiler) renderTag(m registry.FieldMapping, t Tag, d *diagnostics) string {
	if m.Conversion != registry.ConversionCatalogTag {
		d.add(m.Name, DiagUnsupportedValue, "tag value not supported for %s field; field skipped", m.Conversion)
		return ""
	}
	if len(t.Values) == 0 {
		return ""
	}

	hierarchy := t.Hierarchy
	if hierarchy == "" {
		hierarchy = m.TagHierarchy
	}
	if hierarchy == "" {
		d.add(m.Name, DiagMissingHierarchy, "tag filter needs a tagHierarchy; field skipped")
		return ""
	}

	values := aliasAll(m, t.Values)
	if hierarchy == m.TagHierarchy {
		c.checkVocabulary(m, values, d)
	}
	return tagExpression(m.BackendField, hierarchy, values)
}

// renderTagList renders each tag and joins them with OR as one group.
func (c *Compiler) renderTagList(m registry.FieldMapping, list TagList, d *diagnostics) fragment {
	var parts []string
	for _, t := range list {
		if s := c.renderTag(m, t, d); s != "" {
			parts = append(parts, s)
		}
	}
	switch len(parts) {
	case 0:
		return fragment{}
	case 1:
		return fragment{text: parts[0]}
	default:
		return fragment{text: strings.Join(parts, " OR "), group: true}
	}
}

var (
	// backendExpr detects customQuery strings that are already backend expressions.
	backendExpr = regexp.MustCompile(`=|>|<|\bIN\b|catalog_tag`)

	// compoundExpr detects expressions the backend requires to be parenthesized.
	// Lexical only: operators inside string literals also match.
	compoundExpr = regexp.MustCompile(`>|<|\bIN\b`)
)

// renderRaw renders a customQuery value. Backend expressions pass through,
// parenthesized when they contain a range operator or IN; anything else is
// a bare search term matched against the object name.
func (c *Compiler) renderRaw(q string) string {
	q = strings.TrimSpace(q)
	if q == "" {
		return ""
	}
	if !backendExpr.MatchString(q) {
		field := searchTermField
		if m, ok := c.reg.Lookup(searchTermField); ok {
			field = m.BackendField
		}
		return field + " = " + quoteLiteral(q)
	}
	if compoundExpr.MatchString(q) && !strings.HasPrefix(q, "(") {
		return "(" + q + ")"
	}
	return q
}
