package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/pagewin/internal/ir"
)

// EnvPrefix prefixes environment variables that override global flags,
// e.g. PAGEWIN_DB or PAGEWIN_CURSOR_SECRET.
const EnvPrefix = "PAGEWIN"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // optional config file (yaml, json or toml)
	Specs   string // collection specs directory
	DB      string // SQLite database path
	Secret  string // cursor token signing secret

	// Traces generates trace ids for JSON responses. Nil uses UUIDv7.
	Traces TraceIDGenerator

	// Logger receives structured diagnostics. Nil discards them.
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the pagewin CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "pagewin",
		Short: "pagewin - windowed reads over collections",
		Long: `Page through collections with offset pages, keyset windows and
top-K slices, and explain the SQL each request compiles to.`,
		Version:       ir.Version,
		SilenceErrors: true, // main reports errors once
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(v, opts); err != nil {
				return opts.formatter(cmd).fail(ExitCommandError, ErrCodeNotFound, "reading config file", err)
			}
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			opts.Logger = newLogger(cmd.ErrOrStderr(), opts.Verbose)
			return nil
		},
	}

	// Global flags
	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVarP(&opts.Config, "config", "c", "", "config file")
	flags.StringVar(&opts.Specs, "specs", "specs", "collection specs directory")
	flags.StringVar(&opts.DB, "db", "pagewin.db", "SQLite database path")
	flags.StringVar(&opts.Secret, "cursor-secret", "", "secret used to sign cursor tokens")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlags(flags)

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewExplainCommand(opts))
	cmd.AddCommand(NewLoadCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// loadConfig layers flags over the environment over the config file and
// copies the result into opts.
func loadConfig(v *viper.Viper, opts *RootOptions) error {
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}

	opts.Verbose = v.GetBool("verbose")
	opts.Format = v.GetString("format")
	opts.Specs = v.GetString("specs")
	opts.DB = v.GetString("db")
	opts.Secret = v.GetString("cursor-secret")
	return nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// logger returns the configured logger or one that discards everything.
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// formatter builds the OutputFormatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	traces := o.Traces
	if traces == nil {
		traces = UUIDv7Generator{}
	}
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
		Traces:    traces,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
