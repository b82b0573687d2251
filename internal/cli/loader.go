package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/pagewin/internal/collection"
	"github.com/roach88/pagewin/internal/cursor"
	"github.com/roach88/pagewin/internal/store"
	"github.com/roach88/pagewin/internal/window"
)

// Error code constants - unified across all CLI commands.
// Request errors raised by the window package keep their own codes
// (CONFIGURATION, NULL_ARGUMENT, NULL_SORT_KEY).
const (
	ErrCodeGeneric           = "E001" // Generic/unknown error
	ErrCodeNotFound          = "E002" // Path not found
	ErrCodeInvalidSpecs      = "E003" // Specs failed to load or validate
	ErrCodeUnknownCollection = "E004" // Collection not declared or not loaded
	ErrCodeDatabase          = "E005" // Database open or query failure
	ErrCodeFixture           = "E006" // Fixture read or insert failure
	ErrCodeBadRequest        = "E007" // Request parameters rejected before resolving
	ErrCodeInvalidCursor     = "E008" // Cursor token rejected
)

// RequestFlags are the request parameters shared by explain and query.
type RequestFlags struct {
	Collection string
	Sort       string
	Limit      int
	Page       int
	Size       int
	Keyset     bool
	Shape      string
	Filter     []string
	After      string
}

func (f *RequestFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.Collection, "collection", "", "collection name or table (required)")
	flags.StringVar(&f.Sort, "sort", "", `sort order, e.g. "score:desc,title"`)
	flags.IntVar(&f.Limit, "limit", 0, "top-K limit for unpaged reads")
	flags.IntVar(&f.Page, "page", -1, "zero-based offset page")
	flags.IntVar(&f.Size, "size", 0, "page or window size (0 uses the collection default)")
	flags.BoolVar(&f.Keyset, "keyset", false, "start a keyset walk")
	flags.StringVar(&f.Shape, "shape", "", "result shape (list|slice|page|window)")
	flags.StringArrayVar(&f.Filter, "filter", nil, "equality filter field=value (repeatable)")
	flags.StringVar(&f.After, "after", "", "continue from a cursor token")
	_ = cmd.MarkFlagRequired("collection")
}

// Params converts the flags into collection request parameters.
// A cursor token implies a keyset request; its sort and size come from
// the token.
func (f *RequestFlags) Params() (collection.Params, error) {
	p := collection.Params{
		Sort:   f.Sort,
		Limit:  f.Limit,
		Size:   f.Size,
		Keyset: f.Keyset,
		Shape:  f.Shape,
	}
	if f.Page >= 0 {
		page := f.Page
		p.Page = &page
	}
	if f.After != "" {
		if p.Page != nil || p.Sort != "" || p.Limit != 0 {
			return p, errors.New("--after cannot be combined with --page, --sort or --limit")
		}
		p.Keyset = true
	}

	filter, err := parseFilter(f.Filter)
	if err != nil {
		return p, err
	}
	p.Filter = filter
	return p, nil
}

// parseFilter turns field=value pairs into a filter map. Values are read
// as YAML scalars so 3, true and null keep their types; quote a value to
// force text.
func parseFilter(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("filter %q: expected field=value", pair)
		}
		var v any
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("filter %s: %w", name, err)
		}
		switch v.(type) {
		case nil, string, int, bool:
		default:
			return nil, fmt.Errorf("filter %s: unsupported value %q", name, raw)
		}
		if _, dup := out[name]; dup {
			return nil, fmt.Errorf("filter %s given twice", name)
		}
		out[name] = v
	}
	return out, nil
}

// loadCollection loads the specs directory and looks up one collection.
// Failures are reported on f.
func loadCollection(f *OutputFormatter, specsDir, name string) (*collection.Spec, error) {
	specs, err := loadSpecs(f, specsDir)
	if err != nil {
		return nil, err
	}
	spec, ok := specs.Lookup(name)
	if !ok {
		return nil, f.fail(ExitCommandError, ErrCodeUnknownCollection,
			fmt.Sprintf("collection %q not found (have %s)", name, strings.Join(specs.Names(), ", ")), nil)
	}
	return spec, nil
}

func loadSpecs(f *OutputFormatter, specsDir string) (*collection.LoadResult, error) {
	if _, err := os.Stat(specsDir); os.IsNotExist(err) {
		return nil, f.fail(ExitCommandError, ErrCodeNotFound,
			fmt.Sprintf("specs directory not found: %s", specsDir), nil)
	}
	specs, err := collection.LoadDir(specsDir)
	if err != nil {
		return nil, f.fail(ExitCommandError, ErrCodeInvalidSpecs, "loading specs", err)
	}
	f.VerboseLog("Loaded %d collection(s) from %d CUE file(s) in %s",
		len(specs.Specs), specs.FileCount, specsDir)
	return specs, nil
}

// openExistingStore opens the database at path, refusing to create one.
func openExistingStore(f *OutputFormatter, opts *RootOptions) (*store.Store, error) {
	if _, err := os.Stat(opts.DB); os.IsNotExist(err) {
		return nil, f.fail(ExitCommandError, ErrCodeNotFound,
			fmt.Sprintf("database not found: %s", opts.DB), nil)
	}
	return openStore(f, opts)
}

func openStore(f *OutputFormatter, opts *RootOptions) (*store.Store, error) {
	st, err := store.Open(opts.DB, store.WithLogger(opts.logger()))
	if err != nil {
		return nil, f.fail(ExitCommandError, ErrCodeDatabase, "opening database", err)
	}
	return st, nil
}

// requestErrorCode maps an error raised while building, resolving or
// running a request to a response code.
func requestErrorCode(err error) string {
	var werr *window.Error
	switch {
	case errors.As(err, &werr):
		return string(werr.Code)
	case errors.Is(err, cursor.ErrInvalidCursor):
		return ErrCodeInvalidCursor
	case errors.Is(err, collection.ErrUnknownProperty):
		return ErrCodeBadRequest
	case errors.Is(err, store.ErrUnknownCollection):
		return ErrCodeUnknownCollection
	}
	return ErrCodeGeneric
}

// errorList flattens a multierror into its messages.
func errorList(err error) []string {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		out := make([]string, len(merr.Errors))
		for i, e := range merr.Errors {
			out[i] = e.Error()
		}
		return out
	}
	return []string{err.Error()}
}
