package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sumdb/internal/compiler"
	"github.com/roach88/sumdb/internal/engine"
	"github.com/roach88/sumdb/internal/ir"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                       `json:"valid"`
	Tables []ir.TableName             `json:"tables,omitempty"`
	Errors []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <schema-path>",
		Short: "Validate CUE schemas without touching the database",
		Long: `Compile the tables declared in a CUE file or directory and check
that each one could be written as a type definition.

Exit codes:
  0 - All tables valid
  1 - Compile or validation errors
  2 - Command error (path not found, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	loaded, err := LoadSchemas(path)
	if err != nil {
		code := loadErrorCode(err)
		if outErr := formatter.Error(code, err.Error(), nil); outErr != nil {
			return outErr
		}
		exitCode := ExitFailure
		if code == ErrCodeNotFound {
			exitCode = ExitCommandError
		}
		return &ExitError{Code: exitCode, Message: "failed to load schemas", Err: err, Reported: true}
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", loaded.FileCount, path)

	result := validateTables(loaded.Tables, formatter)
	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}

	names := make([]string, len(result.Tables))
	for i, n := range result.Tables {
		names[i] = string(n)
	}
	return formatter.Success(result,
		fmt.Sprintf("✓ %d table(s) valid: %s", len(names), strings.Join(names, ", ")))
}

// validateTables validates every table, qualifying each error field with
// the table it belongs to.
func validateTables(tables []ir.Table, formatter *OutputFormatter) ValidationResult {
	result := ValidationResult{Valid: true}
	for _, t := range tables {
		formatter.VerboseLog("Validating table: %s", t.Name)
		result.Tables = append(result.Tables, t.Name)
		for _, ve := range compiler.Validate(t) {
			ve.Field = fmt.Sprintf("table.%s.%s", t.Name, ve.Field)
			result.Errors = append(result.Errors, ve)
		}
	}
	result.Valid = len(result.Errors) == 0
	return result
}

func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		if err := formatter.Error(string(engine.ErrCodeInvalidSchema), "validation failed", result.Errors); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(formatter.Writer, "✗ %d validation error(s):\n", len(result.Errors))
		for _, ve := range result.Errors {
			fmt.Fprintf(formatter.Writer, "  %s\n", ve.Error())
		}
	}
	return &ExitError{
		Code:     ExitFailure,
		Message:  fmt.Sprintf("%d validation error(s)", len(result.Errors)),
		Reported: true,
	}
}
