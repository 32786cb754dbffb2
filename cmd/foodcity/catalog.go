package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newCatalogCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List crops and building types",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.cfg.LoadCatalog()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)

			fmt.Fprintln(w, "CROP\tNAME\tYIELD\tCYCLE\tWATER\tLOSS\tPRICE")
			for _, id := range cat.CropIDs() {
				c := cat.Crops[id]
				fmt.Fprintf(w, "%s\t%s\t%s\t%dd\t%.0f L/day\t%s\t%s/kg\n",
					id, c.Name, kg(c.BaseYield), c.CycleDays, c.WaterLiters, percent(c.BaseLoss), rupiah(c.Price))
			}
			fmt.Fprintln(w)

			fmt.Fprintln(w, "BUILDING\tLABEL\tCOST\tPLACEMENT\tPLANTABLE\tWORKERS")
			for _, id := range cat.BuildingIDs() {
				b := cat.Buildings[id]
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\t%d\n",
					id, b.Label, rupiah(b.Cost), b.Placement, b.CanPlant, b.Workers)
			}
			return w.Flush()
		},
	}
}
