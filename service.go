package catalogfilter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/apache/arrow/go/v18/arrow/memory"

	"github.com/hugr-lab/catalog-filter/filter"
	"github.com/hugr-lab/catalog-filter/internal/logging"
	"github.com/hugr-lab/catalog-filter/internal/serialize"
	"github.com/hugr-lab/catalog-filter/registry"
)

// Service compiles structured filters against a replaceable field registry.
// It is safe for concurrent use; Reload swaps the registry atomically and
// in-flight compilations finish against the registry they started with.
type Service struct {
	compiler atomic.Pointer[filter.Compiler]
	opts     filter.CompilerOptions
	logger   *slog.Logger
}

// New creates a Service from config.
//
// Returns error if config is invalid or the snapshot cannot be loaded.
//
// Example:
//
//	svc, err := catalogfilter.New(catalogfilter.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	query, diags := svc.Compile(ctx, f)
func New(config Config) (*Service, error) {
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	logger := config.Logger
	if logger == nil && config.LogLevel != nil {
		logger = logging.New(os.Stderr, *config.LogLevel, "text")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		opts:   filter.CompilerOptions{SkipFlagged: config.SkipFlagged},
		logger: logger,
	}

	reg := config.Registry
	if config.SnapshotPath != "" {
		var err error
		reg, err = readSnapshot(config.SnapshotPath)
		if err != nil {
			return nil, err
		}
	}
	if reg == nil {
		reg = registry.Default()
	}
	s.compiler.Store(filter.NewCompiler(reg, &s.opts))

	logger.Debug("Filter service created",
		"fields", reg.Len(),
		"skip_flagged", config.SkipFlagged,
		"snapshot", config.SnapshotPath,
	)

	return s, nil
}

// Registry returns the registry currently used for compilation.
func (s *Service) Registry() *registry.Registry {
	return s.compiler.Load().Registry()
}

// Compile compiles f and logs each diagnostic at Warn level.
// Compile never fails; see filter.Compiler.Compile.
func (s *Service) Compile(ctx context.Context, f filter.StructuredFilter) (string, []filter.Diagnostic) {
	query, diags := s.compiler.Load().Compile(f)

	for _, d := range diags {
		s.logger.WarnContext(ctx, "Filter diagnostic",
			"field", d.Field,
			"code", string(d.Code),
			"message", d.Message,
		)
	}
	s.logger.DebugContext(ctx, "Filter compiled",
		"fields", len(f),
		"diagnostics", len(diags),
		"query", query,
	)

	return query, diags
}

// CompileJSON decodes a JSON filter object and compiles it.
// Returns an error wrapping ErrInvalidFilter only if the input cannot be decoded.
func (s *Service) CompileJSON(ctx context.Context, data []byte) (string, []filter.Diagnostic, error) {
	f, err := filter.ParseJSON(data)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	query, diags := s.Compile(ctx, f)
	return query, diags, nil
}

// CompileMsgpack decodes a MessagePack filter map and compiles it.
// Returns an error wrapping ErrInvalidFilter only if the input cannot be decoded.
func (s *Service) CompileMsgpack(ctx context.Context, data []byte) (string, []filter.Diagnostic, error) {
	f, err := filter.ParseMsgpack(data)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	query, diags := s.Compile(ctx, f)
	return query, diags, nil
}

// CompileArgs compiles loosely typed arguments, such as MCP tool arguments.
// Returns an error wrapping ErrInvalidFilter only if the input cannot be decoded.
func (s *Service) CompileArgs(ctx context.Context, args map[string]any) (string, []filter.Diagnostic, error) {
	f, err := filter.FromArgs(args)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	query, diags := s.Compile(ctx, f)
	return query, diags, nil
}

// Reload replaces the registry used for subsequent compilations.
func (s *Service) Reload(reg *registry.Registry) error {
	if reg == nil || reg.Len() == 0 {
		return fmt.Errorf("%w: registry has no fields", ErrInvalidConfig)
	}
	s.compiler.Store(filter.NewCompiler(reg, &s.opts))
	s.logger.Info("Field registry reloaded", "fields", reg.Len())
	return nil
}

// LoadSnapshot reads a registry snapshot file and reloads from it.
// The current registry is kept if the snapshot is unreadable or invalid.
func (s *Service) LoadSnapshot(path string) error {
	reg, err := readSnapshot(path)
	if err != nil {
		s.logger.Error("Failed to load registry snapshot", "path", path, "error", err)
		return err
	}
	return s.Reload(reg)
}

// Snapshot returns the current registry as a compressed snapshot.
func (s *Service) Snapshot() ([]byte, error) {
	data, err := serialize.EncodeRegistry(s.Registry())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshot, err)
	}
	return data, nil
}

// WriteSnapshot writes the current registry snapshot to path.
func (s *Service) WriteSnapshot(path string) error {
	data, err := s.Snapshot()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshot, err)
	}
	return nil
}

// FieldsArrow returns the current registry's field listing as an Arrow IPC stream.
// If allocator is nil, memory.DefaultAllocator is used.
func (s *Service) FieldsArrow(allocator memory.Allocator) ([]byte, error) {
	return serialize.SerializeRegistry(s.Registry(), allocator)
}

func readSnapshot(path string) (*registry.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshot, err)
	}
	reg, err := serialize.DecodeRegistry(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSnapshot, path, err)
	}
	return reg, nil
}
