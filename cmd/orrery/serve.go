package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oxygene76/orrery/pkg/assets"
	"github.com/oxygene76/orrery/pkg/controller"
	"github.com/oxygene76/orrery/pkg/server"
	"github.com/oxygene76/orrery/pkg/simulation"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the system to websocket renderers",
	Long: `Run the simulation at the configured frame rate and stream frames on
/ws. Renderers send commands over the same socket. Prometheus metrics are
exposed on /metrics.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("listen", "", "Listen address (overrides server.listen_addr)")
	serveCmd.Flags().Float64("speed", 0, "Initial global speed (overrides simulation.speed)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		config.Server.ListenAddr = listen
	}
	if speed, _ := cmd.Flags().GetFloat64("speed"); speed > 0 {
		if speed > simulation.MaxSpeed {
			return fmt.Errorf("--speed must not exceed %v", simulation.MaxSpeed)
		}
		config.Simulation.Speed = speed
	}

	metrics := server.NewMetrics()
	ctrl := controller.New(controller.Options{
		Config:   config,
		Loader:   assets.NewDirLoader(config.Assets.TextureDir, config.Assets.ModelDir),
		Observer: metrics,
	})
	defer ctrl.Close()

	srv := server.New(config.Server, ctrl, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("orrery %s: %d planets at speed %.1f, %d fps\n",
		version, len(ctrl.State().Planets), config.Simulation.Speed, config.Simulation.FrameRate)

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	log.Printf("Server shut down")
	return nil
}
