package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carpenike/fitcoach/internal/profile"
	"github.com/carpenike/fitcoach/internal/reference"
)

var errNoComparison = errors.New("no matching norm row")

func newClassifyCmd(a *app) *cobra.Command {
	var (
		age      int
		sex      string
		exercise string
		value    float64
	)

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Compare a fitness test result against the norm table",
		Long: `Print the norm commentary the coach would give for one result.

The table is read from FITCOACH_NORM_TABLE_PATH.

EXAMPLES:

  $ fitcoach classify --age 24 --sex 남 --exercise 윗몸말아올리기 --value 42
  $ fitcoach classify --age 16 --sex male --exercise 왕복오래달리기 --value 60`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := profile.ParseSex(sex)
			if s == profile.SexUnknown {
				return fmt.Errorf("unknown sex %q (use 남/여 or male/female)", sex)
			}
			if age <= 0 {
				return fmt.Errorf("age must be positive, got %d", age)
			}

			norms, err := reference.LoadNormTable(a.cfg.NormTablePath)
			if err != nil {
				return err
			}

			cmp, ok := norms.Classify(age, s, exercise, value)
			if !ok {
				return fmt.Errorf("%w for age group %s, sex %s, exercise %q",
					errNoComparison, reference.AgeGroupOf(age), s.Label(), exercise)
			}
			fmt.Fprint(cmd.OutOrStdout(), cmp.Comment())
			return nil
		},
	}

	cmd.Flags().IntVar(&age, "age", 0, "age in years")
	cmd.Flags().StringVar(&sex, "sex", "", "sex (남/여 or male/female)")
	cmd.Flags().StringVar(&exercise, "exercise", "", "exercise name, e.g. 윗몸말아올리기")
	cmd.Flags().Float64Var(&value, "value", 0, "measured result")
	for _, f := range []string{"age", "sex", "exercise", "value"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}
