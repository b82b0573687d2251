package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/pagewin/internal/collection"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool     `json:"valid"`
	Collections []string `json:"collections,omitempty"`
	Errors      []string `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [specs-dir]",
		Short: "Validate collection specs",
		Long: `Validate CUE collection specs without touching a database.

Checks field types, keys, sortable fields, default sorts and page size
limits, and reports every problem found. The directory defaults to
--specs.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := rootOpts.Specs
			if len(args) == 1 {
				dir = args[0]
			}
			return runValidate(rootOpts, dir, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, specsDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if _, err := os.Stat(specsDir); os.IsNotExist(err) {
		return formatter.fail(ExitCommandError, ErrCodeNotFound,
			fmt.Sprintf("specs directory not found: %s", specsDir), nil)
	}

	specs, err := collection.LoadDir(specsDir)
	if err != nil {
		return outputValidationErrors(formatter, errorList(err))
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", specs.FileCount, specsDir)

	result := ValidationResult{Valid: true, Collections: specs.Names()}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintln(formatter.Writer, "✓ All specs valid")
	for _, spec := range specs.Specs {
		formatter.VerboseLog("  %s (table %s, key %s, %d fields)",
			spec.Name, spec.Table, spec.Key, len(spec.Fields))
	}
	return nil
}

// outputValidationErrors outputs multiple validation errors.
// Validation failures exit with ExitFailure.
func outputValidationErrors(formatter *OutputFormatter, errs []string) error {
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))

	if formatter.Format == "json" {
		if err := formatter.Respond(CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    ErrCodeInvalidSpecs,
				Message: errs[0],
			},
		}); err != nil {
			return err
		}
		return exitErr
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, e := range errs {
		fmt.Fprintf(formatter.Writer, "  %s: %s\n", ErrCodeInvalidSpecs, e)
	}
	return exitErr
}
