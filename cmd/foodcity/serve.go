package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/talgya/foodcity/internal/api"
	"github.com/talgya/foodcity/internal/engine"
	"github.com/talgya/foodcity/internal/metrics"
	"github.com/talgya/foodcity/internal/persistence"
)

func newServeCommand(opts *options) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the daily ticker and the HTTP API",
		Long: `Run the simulation in real time. One day passes per tick at speed 1.
Every committed change is saved in the background. On SIGINT or SIGTERM the
server drains, the last snapshot is written and the command exits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if cmd.Flags().Changed("port") {
				cfg.API.Port = port
			}
			a, err := openApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP port (overrides api.port)")
	return cmd
}

// serve runs the saver, the ticker and the API until ctx ends.
func (a *app) serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	recorder := metrics.NewRecorder()
	saver := persistence.NewSaver(a.db)
	a.sim.Subscribe(saver.Observe)
	a.sim.Subscribe(recorder.Observe)

	eng := engine.NewEngine(a.cfg.Simulation.TickInterval)
	if err := eng.SetSpeed(a.cfg.Simulation.Speed); err != nil {
		return err
	}
	eng.OnDay = func() { a.sim.AdvanceDay() }

	srv := &api.Server{
		Sim:         a.sim,
		Eng:         eng,
		Metrics:     recorder,
		Limiter:     api.NewRateLimiter(a.cfg.API.RatePerSecond, a.cfg.API.Burst),
		WorldID:     a.WorldID,
		Port:        a.cfg.API.Port,
		AdminKey:    a.cfg.API.AdminKey,
		CORSOrigins: a.cfg.API.CORSOrigins,
		NewCity:     a.newCity,
	}

	go saver.Run(ctx)
	go eng.Run(ctx)

	err := srv.Run(ctx)
	if err != nil {
		slog.Error("http server stopped", "error", err)
	}
	cancel()
	<-saver.Done()

	if serr := a.save(); serr != nil {
		slog.Error("final save failed", "error", serr)
		if err == nil {
			err = serr
		}
	} else {
		slog.Info("city saved, shutting down", "day", a.sim.Summary().Day)
	}
	return err
}
