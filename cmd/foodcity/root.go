package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/talgya/foodcity/internal/config"
)

// options carries the global flags and the loaded config to subcommands.
type options struct {
	configPath string
	dbPath     string
	seed       uint64

	cfg *config.Config
}

// newRootCommand builds the command tree. Command output goes to out.
func newRootCommand(out io.Writer) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "foodcity",
		Short: "Kota Pangan Mandiri - a city food self-sufficiency simulation",
		Long: `foodcity simulates a city growing its own food one day at a time.
Gardens, rooftop farms and hydroponic tiles produce crops, markets and cold
storage move them to residents, and heatwaves and floods get in the way.

Settings come from config.yaml (., ./configs or /etc/foodcity), then KPM_*
environment variables, then the flags below.

Examples:
  foodcity serve --db data/foodcity.db
  foodcity step --days 30
  foodcity status --json
  foodcity reset --yes`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(opts.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("db") {
				cfg.Database.Path = opts.dbPath
			}
			if cmd.Flags().Changed("seed") {
				cfg.Simulation.Seed = opts.seed
			}
			slog.SetDefault(cfg.Logging.NewLogger(os.Stderr))
			opts.cfg = cfg
			return nil
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	rootCmd.SetOut(out)

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"Path to a config file (default: search for config.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "",
		"SQLite save file (overrides database.path)")
	rootCmd.PersistentFlags().Uint64Var(&opts.seed, "seed", 0,
		"Random seed for a new city and its weather (0 picks one)")

	rootCmd.AddCommand(newServeCommand(opts))
	rootCmd.AddCommand(newStepCommand(opts))
	rootCmd.AddCommand(newStatusCommand(opts))
	rootCmd.AddCommand(newResetCommand(opts))
	rootCmd.AddCommand(newCatalogCommand(opts))

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := newRootCommand(os.Stdout)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
