package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/pagewin/internal/store"
)

// LoadOptions holds flags for the load command.
type LoadOptions struct {
	*RootOptions
	Collection string // collection name; defaults to the one owning the fixture's table
}

// LoadResult reports what a load inserted.
type LoadResult struct {
	Collection string `json:"collection"`
	Table      string `json:"table"`
	Rows       int    `json:"rows"`
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "load <fixture.yaml>",
		Short: "Load fixture rows into the database",
		Long: `Create the collection's table in the SQLite database (if needed) and
insert the rows of a YAML fixture. The collection is looked up by the
fixture's table unless --collection is given.

Examples:
  pagewin load --db app.db --specs ./specs fixtures/articles.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Collection, "collection", "", "collection name or table")

	return cmd
}

func runLoad(opts *LoadOptions, fixturePath string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()

	file, err := os.Open(fixturePath)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeNotFound, "opening fixture", err)
	}
	defer file.Close()

	table, rows, err := store.ReadFixture(file)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeFixture, "reading fixture", err)
	}

	name := opts.Collection
	if name == "" {
		name = table
	}
	spec, err := loadCollection(formatter, opts.Specs, name)
	if err != nil {
		return err
	}
	if table != "" && table != spec.Table {
		return formatter.fail(ExitCommandError, ErrCodeFixture,
			fmt.Sprintf("fixture table %q does not match collection table %q", table, spec.Table), nil)
	}

	def, err := spec.Definition()
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeInvalidSpecs, "building table definition", err)
	}

	st, err := openStore(formatter, opts.RootOptions)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.CreateCollection(ctx, def); err != nil {
		return formatter.fail(ExitCommandError, ErrCodeDatabase, "creating collection", err)
	}
	if err := st.Insert(ctx, spec.Table, rows...); err != nil {
		return formatter.fail(ExitCommandError, ErrCodeFixture, "inserting rows", err)
	}
	opts.logger().Info("fixture loaded", "collection", spec.Name, "table", spec.Table, "rows", len(rows))

	result := LoadResult{Collection: spec.Name, Table: spec.Table, Rows: len(rows)}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ Loaded %d row(s) into %s\n", result.Rows, result.Table)
	return nil
}
