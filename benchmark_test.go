package catalogfilter

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/apache/arrow/go/v18/arrow/memory"

	"github.com/hugr-lab/catalog-filter/filter"
	"github.com/hugr-lab/catalog-filter/internal/serialize"
	"github.com/hugr-lab/catalog-filter/registry"
)

var benchFilter = []byte(`{
	"entityType": ["file", "rdb"],
	"containsPI": true,
	"sensitivity": ["High", "Medium"],
	"fileName": "invoice|receipt",
	"fileSize": {"operator": "greaterThan", "value": 1048576},
	"lastScanned": {"operator": "greaterThan", "value": {"type": "past", "amount": 30, "unit": "d"}},
	"tags": [
		{"tagHierarchy": "system.risk.riskGroup", "value": ["high", "medium"]},
		{"tagHierarchy": "system.classifications.Email", "value": "yes"}
	],
	"customQuery": "sizeInBytes < to_number(10000000)"
}`)

// BenchmarkCompile benchmarks compilation of a pre-parsed filter.
func BenchmarkCompile(b *testing.B) {
	f, err := filter.ParseJSON(benchFilter)
	if err != nil {
		b.Fatalf("ParseJSON failed: %v", err)
	}
	c := filter.NewCompiler(nil, nil)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		query, _ := c.Compile(f)
		_ = query
	}
}

// BenchmarkCompileJSON benchmarks decoding and compilation through the Service.
func BenchmarkCompileJSON(b *testing.B) {
	svc, err := New(Config{Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))})
	if err != nil {
		b.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, _, err := svc.CompileJSON(ctx, benchFilter); err != nil {
			b.Fatalf("CompileJSON failed: %v", err)
		}
	}
}

// BenchmarkRegistrySerialization benchmarks the Arrow IPC field listing.
func BenchmarkRegistrySerialization(b *testing.B) {
	reg := registry.Default()
	allocator := memory.DefaultAllocator

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := serialize.SerializeRegistry(reg, allocator); err != nil {
			b.Fatalf("Serialization failed: %v", err)
		}
	}

	b.StopTimer()
	data, _ := serialize.SerializeRegistry(reg, allocator)
	b.ReportMetric(float64(len(data)), "bytes")
}

// BenchmarkSnapshot benchmarks encoding and decoding a registry snapshot.
func BenchmarkSnapshot(b *testing.B) {
	reg := registry.Default()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		data, err := serialize.EncodeRegistry(reg)
		if err != nil {
			b.Fatalf("EncodeRegistry failed: %v", err)
		}
		if _, err := serialize.DecodeRegistry(data); err != nil {
			b.Fatalf("DecodeRegistry failed: %v", err)
		}
	}

	b.StopTimer()
	data, _ := serialize.EncodeRegistry(reg)
	b.ReportMetric(float64(len(data)), "bytes")
}
