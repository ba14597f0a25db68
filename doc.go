// Package catalogfilter compiles structured catalog filters into query
// strings for the data-catalog search backend.
//
// The catalogfilter package wraps the filter compiler with:
//   - A replaceable field registry, swapped atomically at runtime
//   - Registry snapshots (MessagePack, zstd compressed) for loading field tables from disk
//   - Diagnostic logging through log/slog
//   - JSON, MessagePack and loose argument decoding entry points
//
// # Quick Start
//
//	svc, err := catalogfilter.New(catalogfilter.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	query, diags, err := svc.CompileJSON(ctx, []byte(`{
//	    "entityType": "file",
//	    "sensitivity": ["High", "Medium"],
//	    "lastScanned": {"operator": "greaterThan", "value": {"type": "past", "amount": 30, "unit": "d"}}
//	}`))
//	// type="file" AND catalog_tag.system.sensitivityClassification.Sensitivity in ("High","Medium")
//	//   AND scanDate > past("30d")
//
// Compilation never fails. Unknown fields are dropped, empty arrays are
// treated as omitted fields, and questionable inputs produce diagnostics
// alongside the compiled query. Only the decoding entry points return errors,
// wrapping ErrInvalidFilter.
//
// # Registry
//
// The built-in registry (registry.Default) maps the catalog's structured
// fields to backend fields. Supply a custom one through Config.Registry, or
// load a snapshot:
//
//	svc, err := catalogfilter.New(catalogfilter.Config{
//	    SnapshotPath: "/etc/catalogq/fields.snap",
//	    SkipFlagged:  true,
//	})
//	...
//	if err := svc.LoadSnapshot(path); err != nil {
//	    // previous registry stays active
//	}
//
// # Logging
//
// Each diagnostic is logged at Warn with "field" and "code" attributes.
// Compiled queries are logged at Debug.
//
// # Packages
//
//   - filter: value model, compiler, JSON/MessagePack/argument decoders
//   - registry: field mappings, operator table, vocabularies
//   - cmd/catalogq: command-line compiler and registry tool
package catalogfilter
