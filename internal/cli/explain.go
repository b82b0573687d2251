package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/pagewin/internal/cursor"
	"github.com/roach88/pagewin/internal/pager"
	"github.com/roach88/pagewin/internal/querygoqu"
	"github.com/roach88/pagewin/internal/queryir"
	"github.com/roach88/pagewin/internal/querysql"
	"github.com/roach88/pagewin/internal/store"
	"github.com/roach88/pagewin/internal/window"
)

// DialectNative selects the built-in SQLite compiler.
const DialectNative = "native"

// ExplainOptions holds flags for the explain command.
type ExplainOptions struct {
	*RootOptions
	Request  RequestFlags
	Dialect  string // native or a goqu dialect
	RowValue bool   // row-value keyset predicates instead of the expanded form
}

// ExplainResult describes the queries a request resolves to.
type ExplainResult struct {
	Collection  string   `json:"collection"`
	Dialect     string   `json:"dialect"`
	Shape       string   `json:"shape"`
	Size        int      `json:"size"`
	Probe       bool     `json:"probe"`
	SQL         string   `json:"sql"`
	Params      []any    `json:"params"`
	CountSQL    string   `json:"count_sql,omitempty"`
	CountParams []any    `json:"count_params,omitempty"`
	Portable    bool     `json:"portable"`
	Warnings    []string `json:"warnings,omitempty"`
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExplainOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Show the SQL a request compiles to",
		Long: `Resolve a request against a collection spec and print the fetch
and count queries it compiles to, without opening a database.

Examples:
  pagewin explain --collection Articles --page 2 --size 5
  pagewin explain --collection Articles --keyset --sort score:desc --dialect postgres
  pagewin explain --collection Articles --limit 3 --shape slice --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(opts, cmd)
		},
	}

	opts.Request.register(cmd)
	cmd.Flags().StringVar(&opts.Dialect, "dialect", DialectNative,
		fmt.Sprintf("SQL dialect (%s|%s)", DialectNative, strings.Join(querygoqu.Dialects(), "|")))
	cmd.Flags().BoolVar(&opts.RowValue, "row-value", false, "use row-value keyset predicates")

	return cmd
}

func runExplain(opts *ExplainOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	compiler, err := newCompiler(opts.Dialect)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeBadRequest, "choosing dialect", err)
	}

	spec, err := loadCollection(formatter, opts.Specs, opts.Request.Collection)
	if err != nil {
		return err
	}

	params, err := opts.Request.Params()
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeBadRequest, "invalid request", err)
	}
	req, err := spec.Request(params)
	if err != nil {
		return formatter.fail(ExitCommandError, requestErrorCode(err), "invalid request", err)
	}
	if opts.Request.After != "" {
		scope, err := cursor.Scope(spec.Table, req.Base.Filter)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeBadRequest, "invalid request", err)
		}
		codec := cursor.Codec{Secret: opts.Secret}
		pos, err := codec.Decode(opts.Request.After, scope)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeInvalidCursor, "invalid cursor", err)
		}
		if err := spec.CheckKeyset(pos.Sort); err != nil {
			return formatter.fail(ExitCommandError, requestErrorCode(err), "invalid cursor", err)
		}
		req = req.At(pos)
	}

	var resolving []pager.Option
	if opts.RowValue {
		resolving = append(resolving, pager.WithRewriter(querysql.RowValueRewriter{}))
	}
	plan, err := pager.New(nil, resolving...).Plan(req)
	if err != nil {
		return formatter.fail(ExitCommandError, requestErrorCode(err), "invalid request", err)
	}

	result, err := explainPlan(compiler, plan)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeGeneric, "compiling query", err)
	}
	result.Collection = spec.Name
	result.Dialect = opts.Dialect

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	outputExplainText(formatter, result)
	return nil
}

func newCompiler(dialect string) (store.Compiler, error) {
	if dialect == "" || dialect == DialectNative {
		return querysql.NewSQLCompiler(), nil
	}
	return querygoqu.New(dialect)
}

func explainPlan(c store.Compiler, plan window.Plan) (ExplainResult, error) {
	result := ExplainResult{
		Shape: plan.Shape.String(),
		Size:  plan.Size,
		Probe: plan.Probe,
	}

	sql, params, err := c.Compile(plan.Query)
	if err != nil {
		return result, err
	}
	result.SQL, result.Params = sql, nonNil(params)

	validation := queryir.Validate(plan.Query)
	if plan.Count != nil {
		sql, params, err := c.Compile(*plan.Count)
		if err != nil {
			return result, fmt.Errorf("count: %w", err)
		}
		result.CountSQL, result.CountParams = sql, nonNil(params)
		countValidation := queryir.Validate(*plan.Count)
		validation.Warnings = append(validation.Warnings, countValidation.Warnings...)
	}
	result.Portable = len(validation.Warnings) == 0
	result.Warnings = validation.Warnings
	return result, nil
}

func nonNil(params []any) []any {
	if params == nil {
		return []any{}
	}
	return params
}

func outputExplainText(f *OutputFormatter, r ExplainResult) {
	w := f.Writer
	fmt.Fprintf(w, "collection: %s\n", r.Collection)
	fmt.Fprintf(w, "dialect:    %s\n", r.Dialect)
	fmt.Fprintf(w, "shape:      %s (size %d, probe %t)\n", r.Shape, r.Size, r.Probe)
	fmt.Fprintf(w, "fetch:      %s\n", r.SQL)
	fmt.Fprintf(w, "params:     %v\n", r.Params)
	if r.CountSQL != "" {
		fmt.Fprintf(w, "count:      %s\n", r.CountSQL)
		fmt.Fprintf(w, "params:     %v\n", r.CountParams)
	}
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "warning:    %s\n", warning)
	}
}
