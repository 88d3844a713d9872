package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the database file and every stored row",
		Long: `Run the backend's own integrity check (bbolt page check or SQLite
PRAGMA integrity_check), then decode every stored schema and row.

Exit codes:
  0 - Database is consistent
  1 - Corrupt file or undecodable schema or row
  2 - Command error (database cannot be opened, etc.)`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, cmd)
		},
	}
}

func runCheck(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	eng, closeFn, err := openEngine(opts)
	if err != nil {
		return err
	}
	defer closeFn()

	report, err := eng.Check(cmdContext(cmd))
	if err != nil {
		return statementFailed(formatter, err)
	}
	return formatter.Success(report,
		fmt.Sprintf("✓ database ok: %d table(s), %d row(s)", report.Tables, report.Rows))
}
