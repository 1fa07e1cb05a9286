package cli

import (
	"fmt"
	"io"
	"path"

	"github.com/spf13/cobra"

	"eventrsvp/internal/repository/postgres"
)

// MigrateResult lists the schema files that were applied.
type MigrateResult struct {
	Applied []string `json:"applied"`
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long: `Apply the embedded schema to DATABASE_URL.

The schema files are re-runnable, so running migrate against an up-to-date
database is a no-op.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := rootOpts.load(cmd)
			if err != nil {
				return err
			}
			db, err := postgres.Open(cmd.Context(), cfg.DBUrl)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to connect to database", err)
			}
			defer db.Close()

			applied, err := postgres.Migrate(cmd.Context(), db)
			if err != nil {
				return WrapExitError(ExitFailure, "migration failed", err)
			}
			logger.Info("schema up to date", "files", len(applied))

			result := MigrateResult{Applied: make([]string, 0, len(applied))}
			for _, name := range applied {
				result.Applied = append(result.Applied, path.Base(name))
			}
			return writeOutput(cmd.OutOrStdout(), rootOpts.Format, result, func(w io.Writer) error {
				for _, name := range result.Applied {
					if _, err := fmt.Fprintf(w, "applied %s\n", name); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}
