// Package filter compiles structured catalog filters into the catalog search
// backend's query language.
//
// A structured filter is an ordered set of named, typed constraints such as
// "file size greater than 1MB" or "sensitivity in {High, Medium}". The
// compiler resolves each field through a registry.Registry and renders it
// into one predicate; predicates are AND'ed in field order.
//
// # Basic Usage
//
// Parse the filter received from a request and compile it:
//
//	f, err := filter.ParseJSON(body)
//	if err != nil {
//	    return err // Malformed input, the caller's error
//	}
//
//	c := filter.NewCompiler(nil, nil)
//	query, diags := c.Compile(f)
//	for _, d := range diags {
//	    log.Println(d)
//	}
//
// Filters can also be built directly:
//
//	f := filter.StructuredFilter{
//	    {Name: "entityType", Value: filter.String("file")},
//	    {Name: "fileSize", Value: filter.NumberRange{Operator: "greaterThan", Value: 1048576}},
//	}
//	// type="file" AND sizeInBytes > to_number(1048576)
//
// # Output Grammar
//
// The compiler emits:
//   - Literal comparisons: objectName="report.pdf", sizeInBytes > to_number(5)
//   - Function-wrapped literals: to_number(x), to_date(x), to_bool(x), past("30d")
//   - Set membership: type IN ("file","rdb"), catalog_tag.<path> in ("a","b")
//   - Parenthesized compound customQuery expressions
//
// Relative future dates are rendered as negated past durations, past("-7d"),
// because the backend has no future() primitive.
//
// # Degradation
//
// Compile never fails:
//   - Unknown fields are dropped silently
//   - Empty arrays and empty strings are treated as omitted fields
//   - Values outside a closed vocabulary are compiled as given and reported
//   - notEqual on range fields is compiled and reported as unreliable
//   - Fields the registry flags as non-functional or data-less are reported
//   - Values that cannot form a valid literal, such as "abc" on a to_number
//     field, are reported and omitted
//
// String literals escape backslashes and double quotes, so a value never
// ends its own literal.
//
// Diagnostics are returned as data; the compiler does not log.
//
// # Known Approximation
//
// customQuery parenthesization is lexical: an expression containing >, <
// or IN is wrapped unless it already starts with "(". Operators inside
// string literals also trigger wrapping.
package filter
