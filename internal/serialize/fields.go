// Package serialize provides registry serialization: an Arrow IPC field
// listing for tooling and compressed MessagePack snapshots for reloading.
package serialize

import (
	"bytes"
	"fmt"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/apache/arrow/go/v18/arrow/memory"

	"github.com/hugr-lab/catalog-filter/registry"
)

// FieldsSchema is the Arrow schema of the field listing, one row per mapping.
var FieldsSchema = arrow.NewSchema([]arrow.Field{
	{Name: "field_name", Type: arrow.BinaryTypes.String, Nullable: false},
	{Name: "backend_field", Type: arrow.BinaryTypes.String, Nullable: false},
	{Name: "conversion", Type: arrow.BinaryTypes.String, Nullable: false},
	{Name: "tag_hierarchy", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "pattern_aware", Type: arrow.FixedWidthTypes.Boolean, Nullable: false},
	{Name: "vocabulary", Type: arrow.ListOf(arrow.BinaryTypes.String), Nullable: true},
	{Name: "status", Type: arrow.BinaryTypes.String, Nullable: false},
	{Name: "notes", Type: arrow.BinaryTypes.String, Nullable: true},
}, nil)

// SerializeRegistry serializes the registry mappings to Arrow IPC stream format.
// Rows follow the registry's canonical field order.
func SerializeRegistry(reg *registry.Registry, allocator memory.Allocator) ([]byte, error) {
	if reg == nil {
		return nil, fmt.Errorf("registry is nil")
	}
	if allocator == nil {
		allocator = memory.DefaultAllocator
	}

	builder := array.NewRecordBuilder(allocator, FieldsSchema)
	defer builder.Release()

	nameBuilder := builder.Field(0).(*array.StringBuilder)
	backendBuilder := builder.Field(1).(*array.StringBuilder)
	conversionBuilder := builder.Field(2).(*array.StringBuilder)
	hierarchyBuilder := builder.Field(3).(*array.StringBuilder)
	patternBuilder := builder.Field(4).(*array.BooleanBuilder)
	vocabBuilder := builder.Field(5).(*array.ListBuilder)
	vocabValues := vocabBuilder.ValueBuilder().(*array.StringBuilder)
	statusBuilder := builder.Field(6).(*array.StringBuilder)
	notesBuilder := builder.Field(7).(*array.StringBuilder)

	for _, m := range reg.Mappings() {
		nameBuilder.Append(m.Name)
		backendBuilder.Append(m.BackendField)
		conversionBuilder.Append(string(m.Conversion))
		appendOptional(hierarchyBuilder, m.TagHierarchy)
		patternBuilder.Append(m.PatternAware)

		if len(m.Vocabulary) == 0 {
			vocabBuilder.AppendNull()
		} else {
			vocabBuilder.Append(true)
			for _, v := range m.Vocabulary {
				vocabValues.Append(v)
			}
		}

		statusBuilder.Append(string(m.Status))
		appendOptional(notesBuilder, m.Notes)
	}

	record := builder.NewRecord()
	defer record.Release()

	var buf bytes.Buffer
	writer := ipc.NewWriter(&buf, ipc.WithSchema(FieldsSchema), ipc.WithAllocator(allocator))
	defer writer.Close()

	if err := writer.Write(record); err != nil {
		return nil, fmt.Errorf("failed to write IPC record: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close IPC writer: %w", err)
	}

	return buf.Bytes(), nil
}

func appendOptional(b *array.StringBuilder, s string) {
	if s == "" {
		b.AppendNull()
		return
	}
	b.Append(s)
}
