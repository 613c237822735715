package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sort"
	"strings"

	"github.com/vk/projgraph/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// pairsFlag collects repeated name=value arguments.
type pairsFlag map[string]string

func (p pairsFlag) String() string {
	pairs := make([]string, 0, len(p))
	for k, v := range p {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}

func (p pairsFlag) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return fmt.Errorf("expected name=value, got %q", s)
	}
	p[name] = value
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("projload", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
projload - Loads a project graph and prints what was found.

Usage:
  projload [options] PATH

Arguments:
  PATH
    A solution file (.slnhcl), a project file, or a directory holding
    exactly one solution file.

Options:
`)
		flagSet.PrintDefaults()
	}

	props := pairsFlag{}
	exts := pairsFlag{}
	flagSet.Var(props, "p", "Global property as name=value. Repeatable.")
	flagSet.Var(exts, "ext", "Associate a project file extension with a language, as .ext=Language. Repeatable.")
	metadataFlag := flagSet.Bool("metadata-refs", false, "Use the prebuilt output of referenced projects when it exists.")
	skipFlag := flagSet.Bool("skip-unrecognized", true, "Log and skip projects that cannot be loaded instead of failing.")
	workersFlag := flagSet.Int("workers", runtime.NumCPU(), "Number of projects processed concurrently.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	outputFlag := flagSet.String("output", "text", "Result format. Options: 'text', 'json' or 'yaml'.")
	notifyFlag := flagSet.String("notify-url", "", "socket.io server to publish progress to, e.g. http://localhost:3000.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if flagSet.NArg() == 0 {
		slog.Debug("No path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}
	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("expected a single PATH, got %d arguments", flagSet.NArg())}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		Path:                              flagSet.Arg(0),
		Properties:                        props,
		Extensions:                        exts,
		LoadMetadataForReferencedProjects: *metadataFlag,
		SkipUnrecognizedProjects:          *skipFlag,
		Workers:                           *workersFlag,
		LogFormat:                         logFormat,
		LogLevel:                          logLevel,
		Output:                            *outputFlag,
		NotifyURL:                         *notifyFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
