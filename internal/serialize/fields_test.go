package serialize

import (
	"bytes"
	"testing"

	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/apache/arrow/go/v18/arrow/memory"

	"github.com/hugr-lab/catalog-filter/registry"
)

func TestSerializeRegistry(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	reg := registry.Default()
	data, err := SerializeRegistry(reg, mem)
	if err != nil {
		t.Fatalf("SerializeRegistry failed: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty IPC data")
	}

	reader, err := ipc.NewReader(bytes.NewReader(data), ipc.WithAllocator(mem))
	if err != nil {
		t.Fatalf("failed to create IPC reader: %v", err)
	}
	defer reader.Release()

	if !reader.Schema().Equal(FieldsSchema) {
		t.Errorf("unexpected schema: %s", reader.Schema())
	}

	if !reader.Next() {
		t.Fatalf("expected one record: %v", reader.Err())
	}
	record := reader.Record()

	if int(record.NumRows()) != reg.Len() {
		t.Fatalf("expected %d rows, got %d", reg.Len(), record.NumRows())
	}

	names := record.Column(0).(*array.String)
	backends := record.Column(1).(*array.String)
	hierarchies := record.Column(3).(*array.String)
	patterns := record.Column(4).(*array.Boolean)
	vocab := record.Column(5).(*array.List)
	statuses := record.Column(6).(*array.String)

	for i, name := range reg.Names() {
		m, _ := reg.Lookup(name)
		if names.Value(i) != name {
			t.Errorf("row %d: expected name '%s', got '%s'", i, name, names.Value(i))
		}
		if backends.Value(i) != m.BackendField {
			t.Errorf("%s: expected backend '%s', got '%s'", name, m.BackendField, backends.Value(i))
		}
		if (m.TagHierarchy == "") != hierarchies.IsNull(i) {
			t.Errorf("%s: unexpected tag hierarchy null state", name)
		}
		if patterns.Value(i) != m.PatternAware {
			t.Errorf("%s: expected pattern_aware %v", name, m.PatternAware)
		}
		if (len(m.Vocabulary) == 0) != vocab.IsNull(i) {
			t.Errorf("%s: unexpected vocabulary null state", name)
		}
		if statuses.Value(i) != string(m.Status) {
			t.Errorf("%s: expected status '%s', got '%s'", name, m.Status, statuses.Value(i))
		}
	}

	if reader.Next() {
		t.Error("expected a single record")
	}
}

func TestSerializeRegistryVocabulary(t *testing.T) {
	reg, err := registry.New([]registry.FieldMapping{
		{Name: "kind", BackendField: "type", Conversion: registry.ConversionNone, Vocabulary: []string{"a", "b"}},
	}, nil)
	if err != nil {
		t.Fatalf("registry.New failed: %v", err)
	}

	data, err := SerializeRegistry(reg, nil)
	if err != nil {
		t.Fatalf("SerializeRegistry failed: %v", err)
	}

	reader, err := ipc.NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to create IPC reader: %v", err)
	}
	defer reader.Release()

	if !reader.Next() {
		t.Fatal("expected one record")
	}
	list := reader.Record().Column(5).(*array.List)
	values := list.ListValues().(*array.String)
	start, end := list.ValueOffsets(0)
	if end-start != 2 {
		t.Fatalf("expected 2 vocabulary values, got %d", end-start)
	}
	if values.Value(int(start)) != "a" || values.Value(int(start)+1) != "b" {
		t.Errorf("unexpected vocabulary values")
	}
}

func TestSerializeRegistryNil(t *testing.T) {
	if _, err := SerializeRegistry(nil, nil); err == nil {
		t.Error("expected error for nil registry")
	}
}
