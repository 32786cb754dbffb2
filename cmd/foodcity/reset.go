package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newResetCommand(opts *options) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard the saved city and start a new one",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("reset deletes the saved city; pass --yes to confirm")
			}
			a, err := openApp(opts.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			st, err := a.newCity()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "new city %s: %s, budget %s\n",
				a.WorldID(), st.Grid.String(), rupiah(st.Budget))
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the reset")
	return cmd
}
