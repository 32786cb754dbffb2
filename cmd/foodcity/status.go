package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/talgya/foodcity/internal/engine"
	"github.com/talgya/foodcity/internal/tutorial"
)

// statusView is the JSON form of the status command.
type statusView struct {
	WorldID  string             `json:"world_id"`
	Summary  engine.Summary     `json:"summary"`
	Tutorial tutorial.Checklist `json:"tutorial"`
}

func newStatusCommand(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the saved city's indicators",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			view := statusView{
				WorldID:  a.WorldID(),
				Summary:  a.sim.Summary(),
				Tutorial: a.sim.Tutorial(),
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}

			s := view.Summary
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "World\t%s\n", view.WorldID)
			fmt.Fprintf(w, "Day\t%d\n", s.Day)
			fmt.Fprintf(w, "Budget\t%s\n", rupiah(s.Budget))
			fmt.Fprintf(w, "Self-sufficiency\t%s (%s)\n", percent(s.Ratio), s.RatioMode)
			fmt.Fprintf(w, "Happiness\t%.1f\n", s.Happiness)
			fmt.Fprintf(w, "Emissions\t%.3f tCO2e\n", s.Emissions)
			fmt.Fprintf(w, "Water\t%.1f m3/day\n", s.WaterM3)
			fmt.Fprintf(w, "Energy\t%.1f kWh/day\n", s.EnergyKWh)
			fmt.Fprintf(w, "Inventory\t%s\n", kg(s.InventoryKg))
			fmt.Fprintf(w, "Production (7d avg)\t%s/day\n", kg(s.AvgProduction7d))
			fmt.Fprintf(w, "Weather\t%s\n", weatherLine(a.sim.Snapshot()))
			fmt.Fprintf(w, "Tutorial\t%d/%d\n", view.Tutorial.Complete, len(view.Tutorial.Steps))
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func weatherLine(st *engine.State) string {
	if len(st.Events) == 0 {
		return "clear"
	}
	parts := make([]string, len(st.Events))
	for i, ev := range st.Events {
		parts[i] = ev.String()
	}
	return strings.Join(parts, ", ")
}
