package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/carpenike/fitcoach/internal/database"
	"github.com/carpenike/fitcoach/internal/importers"
	"github.com/carpenike/fitcoach/internal/models"
)

func newImportCmd(a *app) *cobra.Command {
	var (
		username string
		format   string
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import workout history from a CSV export",
		Long: `Read workout history exported from Strong, Hevy or a plain
date,exercise,amount CSV and add it to a user's workout log.

Sets are summed per day and exercise. Exercises that cannot be matched are
logged as "기타". Running is converted to minutes and plank to seconds.

EXAMPLES:

  $ fitcoach import --user runner strong_export.csv
  $ fitcoach import --user runner --format hevy --dry-run workouts.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := importers.ParseFormat(format)
			if err != nil {
				return err
			}

			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			pf, err := importers.Parse(file, f)
			if err != nil {
				return err
			}
			plan := importers.Build(pf)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "format: %s\n", plan.Format)
			fmt.Fprintf(out, "entries: %d (total amount %d, skipped %d)\n", len(plan.Entries), plan.Total(), plan.Skipped)
			if len(plan.Unmapped) > 0 {
				fmt.Fprintf(out, "logged as %s: %s\n", models.ExerciseOther.Label(), strings.Join(plan.Unmapped, ", "))
			}
			if dryRun {
				for _, e := range plan.Entries {
					fmt.Fprintf(out, "  %s %s %d\n", e.Date, e.Exercise.Label(), e.Amount)
				}
				return nil
			}

			db, err := database.Open(a.cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()
			if _, err := database.RunMigrationsContext(cmd.Context(), db); err != nil {
				return err
			}

			u, err := models.GetUserByUsername(db, username)
			if errors.Is(err, models.ErrNotFound) {
				return fmt.Errorf("no user named %q", username)
			}
			if err != nil {
				return err
			}

			n, err := plan.Apply(db, u.ID)
			if err != nil {
				return err
			}
			a.log.Info().Str("user", u.Username).Str("format", string(plan.Format)).Int("entries", n).Msg("workout history imported")
			fmt.Fprintf(out, "imported %d entries for %s\n", n, u.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "username to import into")
	cmd.Flags().StringVar(&format, "format", "auto", "file format: auto, strong, hevy or fitcoach")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the entries without writing them")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
