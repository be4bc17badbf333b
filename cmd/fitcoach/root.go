package main

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/carpenike/fitcoach/internal/config"
	"github.com/carpenike/fitcoach/internal/logging"
)

// app is the state shared by all subcommands once the root pre-run has
// loaded configuration.
type app struct {
	cfg       *config.Config
	log       zerolog.Logger
	logCloser io.Closer
}

// newRootCmd builds the command tree. env overrides the process environment
// when non-nil.
func newRootCmd(env map[string]string) *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "fitcoach",
		Short: "Conversational fitness coach",
		Long: `fitcoach is a web app where you chat with a fitness coach in Korean.

It remembers your age, sex, neighbourhood and fitness level from what you
tell it, keeps a workout log, compares test results against population
norms and suggests nearby facilities.

CONFIGURATION:

  All settings come from FITCOACH_* environment variables, for example
  FITCOACH_ADDR, FITCOACH_DB_PATH and FITCOACH_OPENAI_API_KEY. Without an
  API key the coach answers in a simple fallback mode.

COMMANDS:

  $ fitcoach serve                      # Run the web server (default)
  $ fitcoach migrate                    # Apply database migrations
  $ fitcoach classify --age 24 --sex 남 --exercise 윗몸 --value 42
  $ fitcoach import --user runner export.csv   # Import workout history`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			var err error
			if env != nil {
				a.cfg, err = config.LoadFromMap(env)
			} else {
				a.cfg, err = config.Load()
			}
			if err != nil {
				return err
			}
			a.log, a.logCloser, err = logging.New(a.cfg.Log)
			if err != nil {
				return fmt.Errorf("init logging: %w", err)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.logCloser != nil {
				return a.logCloser.Close()
			}
			return nil
		},
	}

	serve := newServeCmd(a)
	root.AddCommand(serve, newMigrateCmd(a), newClassifyCmd(a), newImportCmd(a))
	// Running the bare binary serves.
	root.RunE = serve.RunE
	return root
}
