package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/pagewin/internal/cursor"
	"github.com/roach88/pagewin/internal/ir"
	"github.com/roach88/pagewin/internal/pager"
	"github.com/roach88/pagewin/internal/querysql"
	"github.com/roach88/pagewin/internal/window"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Request RequestFlags
}

// QueryResult is one fetched window.
type QueryResult struct {
	Collection  string      `json:"collection"`
	Shape       string      `json:"shape"`
	Items       []ir.Object `json:"items"`
	HasNext     bool        `json:"has_next"`
	HasPrevious bool        `json:"has_previous"`
	Size        int         `json:"size,omitempty"`
	Total       *int64      `json:"total,omitempty"`
	Number      *int        `json:"number,omitempty"`
	NextToken   string      `json:"next_token,omitempty"`
	PrevToken   string      `json:"prev_token,omitempty"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Fetch a window from a collection",
		Long: `Run a windowed request against the SQLite database and print the rows
with their paging metadata. Keyset windows print cursor tokens; pass one
back with --after to continue in either direction.

Examples:
  pagewin query --collection Articles --page 0 --size 5 --shape page
  pagewin query --collection Articles --keyset --sort score:desc --filter status=published
  pagewin query --collection Articles --after <token>`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, cmd)
		},
	}

	opts.Request.register(cmd)

	return cmd
}

func runQuery(opts *QueryOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()

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

	st, err := openExistingStore(formatter, opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	p := pager.New(st,
		pager.WithCodec(cursor.Codec{Secret: opts.Secret}),
		pager.WithRewriter(querysql.RowValueRewriter{}),
		pager.WithLogger(opts.logger()),
	)

	if opts.Request.After != "" {
		pos, err := p.Decode(req, opts.Request.After)
		if err != nil {
			return formatter.fail(ExitCommandError, requestErrorCode(err), "invalid cursor", err)
		}
		if err := spec.CheckKeyset(pos.Sort); err != nil {
			return formatter.fail(ExitCommandError, requestErrorCode(err), "invalid cursor", err)
		}
		req = req.At(pos)
	}

	page, err := p.Find(ctx, req)
	if err != nil {
		return formatter.fail(ExitCommandError, requestErrorCode(err), "query failed", err)
	}

	result := queryResult(page, params.Page != nil)
	result.Collection = spec.Name
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return outputQueryText(formatter, result)
}

// queryResult flattens page. Number is only meaningful for offset pages.
func queryResult(page pager.Page, offset bool) QueryResult {
	result := QueryResult{
		Shape:       page.Shape.String(),
		Items:       page.Items,
		HasNext:     page.HasNext,
		HasPrevious: page.HasPrevious,
		Size:        page.Size,
		NextToken:   page.NextToken,
		PrevToken:   page.PrevToken,
	}
	if result.Items == nil {
		result.Items = []ir.Object{}
	}
	if page.Shape == window.Page {
		total := page.Total
		result.Total = &total
	}
	if offset {
		number := page.Number
		result.Number = &number
	}
	return result
}

func outputQueryText(f *OutputFormatter, r QueryResult) error {
	w := f.Writer
	for _, item := range r.Items {
		b, err := item.MarshalJSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(b))
	}

	fmt.Fprintf(w, "-- %d item(s), shape %s", len(r.Items), r.Shape)
	if r.Number != nil {
		fmt.Fprintf(w, ", page %d", *r.Number)
	}
	if r.Total != nil {
		fmt.Fprintf(w, ", total %d", *r.Total)
	}
	fmt.Fprintf(w, ", has_next %t, has_previous %t\n", r.HasNext, r.HasPrevious)
	if r.NextToken != "" {
		fmt.Fprintf(w, "next: %s\n", r.NextToken)
	}
	if r.PrevToken != "" {
		fmt.Fprintf(w, "prev: %s\n", r.PrevToken)
	}
	return nil
}
