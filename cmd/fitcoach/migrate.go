package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carpenike/fitcoach/internal/database"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long: `Apply all pending schema migrations to FITCOACH_DB_PATH and exit.

The server also migrates on startup, so this is only needed to prepare a
database ahead of a deploy.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.Open(a.cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := database.RunMigrationsContext(cmd.Context(), db)
			if err != nil {
				return err
			}
			a.log.Info().Str("path", a.cfg.DBPath).Int("applied", applied).Msg("migrations complete")
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s) to %s\n", applied, a.cfg.DBPath)
			return nil
		},
	}
}
