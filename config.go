package catalogfilter

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/hugr-lab/catalog-filter/registry"
)

// Config contains configuration for a filter Service.
type Config struct {
	// Registry provides the field mappings used for compilation.
	// OPTIONAL: Uses registry.Default() if nil and SnapshotPath is empty.
	Registry *registry.Registry

	// SnapshotPath loads the registry from a snapshot file written by
	// Service.Snapshot or `catalogq snapshot`.
	// OPTIONAL: MUST NOT be set together with Registry.
	SnapshotPath string

	// SkipFlagged omits fields the registry marks non_functional or no_data
	// instead of compiling them. A diagnostic is reported either way.
	// OPTIONAL: Defaults to false.
	SkipFlagged bool

	// Logger for diagnostics and registry reloads.
	// OPTIONAL: Uses slog.Default() if nil.
	// Note: If LogLevel is specified, a new logger will be created with that level.
	Logger *slog.Logger

	// LogLevel sets the logging level.
	// OPTIONAL: If nil, Logger (or slog.Default()) is used as is.
	// If Logger is also provided, LogLevel is ignored.
	LogLevel *slog.Level
}

// Standard errors returned by the catalogfilter package.
var (
	// ErrInvalidConfig indicates Config validation failed.
	ErrInvalidConfig = errors.New("invalid filter service config")

	// ErrInvalidFilter indicates a structured filter could not be decoded.
	// Compilation itself never fails; this is returned only by the decoding
	// entry points (CompileJSON, CompileMsgpack, CompileArgs).
	ErrInvalidFilter = errors.New("invalid structured filter")

	// ErrSnapshot indicates a registry snapshot could not be read or written.
	ErrSnapshot = errors.New("registry snapshot")
)

// validateConfig checks that Config fields are consistent.
func validateConfig(config Config) error {
	if config.Registry != nil && config.SnapshotPath != "" {
		return fmt.Errorf("registry and snapshot path are mutually exclusive")
	}
	if config.Registry != nil && config.Registry.Len() == 0 {
		return fmt.Errorf("registry has no fields")
	}
	return nil
}
