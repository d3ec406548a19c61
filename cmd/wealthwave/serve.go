package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/womenwealthwave/wealthwave/api"
)

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server and market ticker",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			cfg.API.Port = port
		}
		if dir, _ := cmd.Flags().GetString("web"); dir != "" {
			cfg.Web.DistDir = dir
		}

		srv, err := api.NewServer(cfg, api.WithLogger(log), api.WithVersion(version))
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "🌐 Starting WealthWave API server on %s\n", cfg.API.Addr())

		g, ctx := errgroup.WithContext(cmd.Context())
		g.Go(func() error { return srv.Ticker().Run(ctx) })
		g.Go(func() error { return srv.Serve(ctx) })
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "port override (default from config)")
	serveCmd.Flags().String("web", "", "serve the built web UI from this directory")
	rootCmd.AddCommand(serveCmd)
}
