package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStepCommand(opts *options) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "step",
		Short: "Advance the saved city by whole days",
		Long: `Load the saved city, simulate the given number of days, print one line
per day and save the result.

Examples:
  foodcity step
  foodcity step --days 90 --db /tmp/trial.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 {
				return fmt.Errorf("--days must be at least 1, got %d", days)
			}
			a, err := openApp(opts.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			for i := 0; i < days; i++ {
				r := a.sim.AdvanceDay()
				fmt.Fprintln(out, r.String())
				if r.Spawned != nil {
					fmt.Fprintf(out, "  weather: %s\n", r.Spawned)
				}
			}
			if err := a.save(); err != nil {
				return fmt.Errorf("save: %w", err)
			}
			s := a.sim.Summary()
			fmt.Fprintf(out, "saved at day %d, budget %s, psi %s\n", s.Day, rupiah(s.Budget), percent(s.Ratio))
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 1, "Number of days to simulate")
	return cmd
}
