package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tiffinbox/tiffin/app/providers"
	"github.com/tiffinbox/tiffin/config"
	"github.com/tiffinbox/tiffin/pkg/app"
	"github.com/tiffinbox/tiffin/pkg/event"
)

// tiffin serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server with its workers and scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		rt, err := app.Boot(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		c := providers.Build(providers.Deps{
			DB:        rt.DB,
			Bus:       rt.Bus,
			Publisher: rt.Publisher,
			Secret:    config.RazorpaySecret(),
		})
		c.Schedule(rt.Scheduler, config.OrderSweepInterval())

		return rt.Serve(ctx, app.Handler(c.Routes()))
	},
}

// tiffin run is serve under the name the old CLI used.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Alias for serve",
	RunE:  serveCmd.RunE,
}

// tiffin route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List every registered route",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := providers.Build(providers.Deps{Bus: event.NewBus(nil)})
		return app.RouteList(os.Stdout, app.NewRouter(c.Routes()))
	},
}
