package catalogfilter

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/hugr-lab/catalog-filter/filter"
	"github.com/hugr-lab/catalog-filter/registry"
)

func newTestService(t *testing.T, config Config) (*Service, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	svc, err := New(config)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return svc, &buf
}

func TestNewDefaults(t *testing.T) {
	svc, err := New(Config{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if svc.Registry() != registry.Default() {
		t.Error("expected built-in registry")
	}

	level := slog.LevelError
	if _, err := New(Config{LogLevel: &level}); err != nil {
		t.Errorf("New with LogLevel failed: %v", err)
	}
}

func TestNewInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"registry and snapshot", Config{Registry: registry.Default(), SnapshotPath: "x.snap"}},
		{"empty registry", Config{Registry: mustRegistry(t, nil)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.config)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}

	_, err := New(Config{SnapshotPath: filepath.Join(t.TempDir(), "missing.snap")})
	if !errors.Is(err, ErrSnapshot) {
		t.Errorf("expected ErrSnapshot, got %v", err)
	}
}

func TestServiceCompileLogsDiagnostics(t *testing.T) {
	svc, buf := newTestService(t, Config{})

	query, diags := svc.Compile(context.Background(), filter.StructuredFilter{
		{Name: "entityType", Value: filter.String("not_a_type")},
	})
	if query != `type="not_a_type"` {
		t.Errorf("unexpected query '%s'", query)
	}
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}

	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "field=entityType") || !strings.Contains(out, "code=invalid_enum") {
		t.Errorf("expected warn log with field and code, got: %s", out)
	}
}

func TestServiceCompileJSON(t *testing.T) {
	svc, _ := newTestService(t, Config{})
	ctx := context.Background()

	query, _, err := svc.CompileJSON(ctx, []byte(`{"entityType": "file", "fileSize": {"operator": "greaterThan", "value": 5}}`))
	if err != nil {
		t.Fatalf("CompileJSON failed: %v", err)
	}
	expected := `type="file" AND sizeInBytes > to_number(5)`
	if query != expected {
		t.Errorf("expected '%s', got '%s'", expected, query)
	}

	_, _, err = svc.CompileJSON(ctx, []byte(`[1, 2]`))
	if !errors.Is(err, ErrInvalidFilter) {
		t.Errorf("expected ErrInvalidFilter, got %v", err)
	}
}

func TestServiceCompileArgs(t *testing.T) {
	svc, _ := newTestService(t, Config{})
	ctx := context.Background()

	query, _, err := svc.CompileArgs(ctx, map[string]any{
		"customQuery": "report",
		"containsPI":  true,
	})
	if err != nil {
		t.Fatalf("CompileArgs failed: %v", err)
	}
	expected := `total_pii_count > to_number(0) AND objectName = "report"`
	if query != expected {
		t.Errorf("expected '%s', got '%s'", expected, query)
	}

	_, _, err = svc.CompileArgs(ctx, map[string]any{"customQuery": 1})
	if !errors.Is(err, ErrInvalidFilter) {
		t.Errorf("expected ErrInvalidFilter, got %v", err)
	}

	_, _, err = svc.CompileMsgpack(ctx, []byte{0xc1})
	if !errors.Is(err, ErrInvalidFilter) {
		t.Errorf("expected ErrInvalidFilter, got %v", err)
	}
}

func TestServiceSkipFlagged(t *testing.T) {
	svc, _ := newTestService(t, Config{SkipFlagged: true})

	query, diags := svc.Compile(context.Background(), filter.StructuredFilter{
		{Name: "status", Value: filter.String("active")},
		{Name: "entityType", Value: filter.String("rdb")},
	})
	if query != `type="rdb"` {
		t.Errorf("expected flagged field to be skipped, got '%s'", query)
	}
	if len(diags) != 1 || diags[0].Code != filter.DiagFlaggedField {
		t.Errorf("expected one flagged diagnostic, got %v", diags)
	}
}

func TestServiceReload(t *testing.T) {
	svc, buf := newTestService(t, Config{})
	ctx := context.Background()
	f := filter.StructuredFilter{{Name: "owner", Value: filter.String("a@b.c")}}

	if query, _ := svc.Compile(ctx, f); query != "" {
		t.Errorf("expected unknown field to be dropped, got '%s'", query)
	}

	reg := mustRegistry(t, []registry.FieldMapping{
		{Name: "owner", BackendField: "owner_email", Conversion: registry.ConversionNone},
	})
	if err := svc.Reload(reg); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	if query, _ := svc.Compile(ctx, f); query != `owner_email="a@b.c"` {
		t.Errorf("expected reloaded mapping, got '%s'", query)
	}
	if !strings.Contains(buf.String(), "Field registry reloaded") {
		t.Errorf("expected reload log, got: %s", buf.String())
	}

	if err := svc.Reload(nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
	if svc.Registry() != reg {
		t.Error("expected registry to be kept after failed reload")
	}
}

func TestServiceSnapshot(t *testing.T) {
	reg := mustRegistry(t, []registry.FieldMapping{
		{Name: "owner", BackendField: "owner_email", Conversion: registry.ConversionNone},
		{Name: "rows", BackendField: "total_rows", Conversion: registry.ConversionToNumber},
	})
	src, _ := newTestService(t, Config{Registry: reg})

	path := filepath.Join(t.TempDir(), "fields.snap")
	if err := src.WriteSnapshot(path); err != nil {
		t.Fatalf("WriteSnapshot failed: %v", err)
	}

	loaded, _ := newTestService(t, Config{SnapshotPath: path})
	if got := loaded.Registry().Names(); len(got) != 2 || got[0] != "owner" || got[1] != "rows" {
		t.Errorf("unexpected registry after load: %v", got)
	}

	svc, _ := newTestService(t, Config{})
	if err := svc.LoadSnapshot(path); err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	query, _ := svc.Compile(context.Background(), filter.StructuredFilter{
		{Name: "rows", Value: filter.NumberRange{Operator: "greaterThan", Value: 10}},
	})
	if query != "total_rows > to_number(10)" {
		t.Errorf("unexpected query '%s'", query)
	}

	bad := filepath.Join(t.TempDir(), "bad.snap")
	if err := os.WriteFile(bad, []byte("garbage"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := svc.LoadSnapshot(bad); !errors.Is(err, ErrSnapshot) {
		t.Errorf("expected ErrSnapshot, got %v", err)
	}
	if svc.Registry().Len() != 2 {
		t.Error("expected registry to be kept after failed load")
	}
}

func TestServiceFieldsArrow(t *testing.T) {
	svc, _ := newTestService(t, Config{})

	data, err := svc.FieldsArrow(nil)
	if err != nil {
		t.Fatalf("FieldsArrow failed: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected non-empty Arrow IPC data")
	}
}

func TestServiceConcurrentReload(t *testing.T) {
	svc, _ := newTestService(t, Config{Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))})
	ctx := context.Background()
	f := filter.StructuredFilter{{Name: "entityType", Value: filter.String("file")}}

	alt := mustRegistry(t, []registry.FieldMapping{
		{Name: "entityType", BackendField: "kind", Conversion: registry.ConversionNone},
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				query, _ := svc.Compile(ctx, f)
				if query != `type="file"` && query != `kind="file"` {
					t.Errorf("unexpected query '%s'", query)
					return
				}
			}
		}()
	}
	for i := 0; i < 10; i++ {
		if i%2 == 0 {
			_ = svc.Reload(alt)
		} else {
			_ = svc.Reload(registry.Default())
		}
	}
	wg.Wait()
}

func mustRegistry(t *testing.T, mappings []registry.FieldMapping) *registry.Registry {
	t.Helper()
	reg, err := registry.New(mappings, nil)
	if err != nil {
		t.Fatalf("registry.New failed: %v", err)
	}
	return reg
}
