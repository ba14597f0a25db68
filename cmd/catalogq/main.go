// Command catalogq compiles structured catalog filters and inspects the
// field registry.
//
// Usage:
//
//	catalogq compile [flags] [file]      compile a filter from file or stdin
//	catalogq fields [flags] [--arrow f]  list registry fields
//	catalogq snapshot [flags] <file>     write the registry snapshot
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/pflag"

	catalogfilter "github.com/hugr-lab/catalog-filter"
	"github.com/hugr-lab/catalog-filter/filter"
	"github.com/hugr-lab/catalog-filter/internal/config"
	"github.com/hugr-lab/catalog-filter/internal/logging"
)

const usage = `usage: catalogq <command> [flags]

commands:
  compile [file]   compile a structured filter (stdin if no file)
  fields           list the field registry
  snapshot <file>  write the field registry snapshot
`

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	cmd, args := args[0], args[1:]

	fs := pflag.NewFlagSet("catalogq "+cmd, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	config.RegisterFlags(fs)
	arrowOut := fs.String("arrow", "", "fields: write the listing as an Arrow IPC stream to this file")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintf(stderr, "catalogq: %v\n", err)
		return 2
	}

	logger := logging.New(stderr, logging.ParseLevel(cfg.Log.Level), cfg.Log.Format)
	svc, err := catalogfilter.New(catalogfilter.Config{
		SnapshotPath: cfg.Registry.Snapshot,
		SkipFlagged:  cfg.Compile.SkipFlagged,
		Logger:       logger,
	})
	if err != nil {
		fmt.Fprintf(stderr, "catalogq: %v\n", err)
		return 1
	}

	switch cmd {
	case "compile":
		err = compileCmd(ctx, svc, cfg, fs.Args(), stdin, stdout)
	case "fields":
		err = fieldsCmd(svc, cfg, *arrowOut, stdout)
	case "snapshot":
		if fs.NArg() != 1 {
			fmt.Fprint(stderr, usage)
			return 2
		}
		err = svc.WriteSnapshot(fs.Arg(0))
	default:
		fmt.Fprintf(stderr, "catalogq: unknown command %q\n%s", cmd, usage)
		return 2
	}

	if err != nil {
		fmt.Fprintf(stderr, "catalogq: %v\n", err)
		return 1
	}
	return 0
}

type compileResult struct {
	Query       string             `json:"query"`
	Diagnostics []diagnosticResult `json:"diagnostics"`
}

type diagnosticResult struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func compileCmd(ctx context.Context, svc *catalogfilter.Service, cfg *config.Config, args []string, stdin io.Reader, stdout io.Writer) error {
	var (
		data []byte
		name string
		err  error
	)
	switch len(args) {
	case 0:
		data, err = io.ReadAll(stdin)
	case 1:
		name = args[0]
		data, err = os.ReadFile(name)
	default:
		return fmt.Errorf("compile takes at most one file")
	}
	if err != nil {
		return err
	}

	var (
		query string
		diags []filter.Diagnostic
	)
	if inputFormat(cfg.Input.Format, name, data) == "msgpack" {
		query, diags, err = svc.CompileMsgpack(ctx, data)
	} else {
		query, diags, err = svc.CompileJSON(ctx, data)
	}
	if err != nil {
		return err
	}

	if strings.EqualFold(cfg.Output.Format, "json") {
		res := compileResult{Query: query, Diagnostics: make([]diagnosticResult, 0, len(diags))}
		for _, d := range diags {
			res.Diagnostics = append(res.Diagnostics, diagnosticResult{Field: d.Field, Code: string(d.Code), Message: d.Message})
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	if _, err := fmt.Fprintln(stdout, query); err != nil {
		return err
	}
	for _, d := range diags {
		if _, err := fmt.Fprintf(stdout, "# %s\n", d); err != nil {
			return err
		}
	}
	return nil
}

// inputFormat resolves "auto" by file extension, then by the first byte.
func inputFormat(format, name string, data []byte) string {
	if !strings.EqualFold(format, "auto") {
		return strings.ToLower(format)
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return "json"
	case ".msgpack", ".mp", ".mpk":
		return "msgpack"
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] == '{' {
		return "json"
	}
	return "msgpack"
}

func fieldsCmd(svc *catalogfilter.Service, cfg *config.Config, arrowOut string, stdout io.Writer) error {
	if arrowOut != "" {
		data, err := svc.FieldsArrow(nil)
		if err != nil {
			return err
		}
		return os.WriteFile(arrowOut, data, 0o644)
	}

	mappings := svc.Registry().Mappings()
	if strings.EqualFold(cfg.Output.Format, "json") {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(mappings)
	}

	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FIELD\tBACKEND\tCONVERSION\tSTATUS\tVALUES")
	for _, m := range mappings {
		backend := m.BackendField
		if m.TagHierarchy != "" {
			backend += "." + m.TagHierarchy
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", m.Name, backend, m.Conversion, m.Status, strings.Join(m.Vocabulary, ","))
	}
	return w.Flush()
}
