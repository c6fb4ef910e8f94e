// Command hero-preview renders the hero scene offline.
//
// render drives a fresh scene with scripted pointer and scroll input at a fixed time step
// and writes numbered WebP frames; info prints mesh statistics.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/Carmen-Shannon/oxy-hero/common"
	"github.com/Carmen-Shannon/oxy-hero/engine/config"
	"github.com/Carmen-Shannon/oxy-hero/engine/loader"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configPath string
		meshPath   string
		logLevel   string
		logJSON    bool
	)
	scratch := config.Default()
	tunables := flag.NewFlagSet("tunables", flag.ContinueOnError)
	scratch.RegisterFlags(tunables)

	root := &cobra.Command{
		Use:          "hero-preview",
		Short:        "Render the hero scene offline",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := common.NewLogger(os.Stderr, logLevel, logJSON)
			if err != nil {
				return err
			}
			common.SetLogger(logger)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "JSON tunables file")
	root.PersistentFlags().StringVar(&meshPath, "mesh", loader.PlaceholderPath, "mesh to render (.glb or .gltf)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "debug, info, warn or error")
	root.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log JSON records")
	root.PersistentFlags().AddGoFlagSet(tunables)

	resolve := func(cmd *cobra.Command) (config.Tunables, error) {
		return config.Resolve(configPath, tunables, cmd.Flags().Changed)
	}

	root.AddCommand(newRenderCommand(&meshPath, resolve), newInfoCommand(&meshPath, resolve))
	return root
}

func newRenderCommand(meshPath *string, resolve func(*cobra.Command) (config.Tunables, error)) *cobra.Command {
	var (
		o   renderOptions
		fps float64
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Write a scripted sequence of frames as WebP files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolve(cmd)
			if err != nil {
				return err
			}
			if fps <= 0 {
				return fmt.Errorf("--rate must be positive, got %v", fps)
			}
			if o.script.frames <= 0 {
				return fmt.Errorf("--frames must be positive, got %d", o.script.frames)
			}
			o.cfg = cfg
			o.meshPath = *meshPath
			o.script.dt = 1 / fps

			start := time.Now()
			n, err := renderSequence(cmd.Context(), loader.NewLoader(), o)
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d frames to %s in %v\n", n, o.outDir, time.Since(start).Round(time.Millisecond))
			return err
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.outDir, "out", "o", "frames", "output directory")
	f.IntVar(&o.script.frames, "frames", 120, "number of ticks to simulate")
	f.Float64Var(&fps, "rate", 30, "simulated ticks per second")
	f.IntVar(&o.every, "every", 1, "write every nth frame")
	f.IntVar(&o.width, "width", 640, "image width")
	f.IntVar(&o.height, "height", 360, "image height")
	f.IntVar(&o.supersample, "supersample", 2, "raster supersampling factor")
	f.BoolVar(&o.toneMapping, "tonemap", false, "ACES tone mapping instead of clamping")
	f.IntVar(&o.workers, "workers", runtime.NumCPU(), "parallel rasterise and encode workers")
	f.Float64Var(&o.script.scrollTo, "scroll-to", 0.5, "scroll progress reached on the last frame")
	f.Float64Var(&o.script.orbit, "orbit", 4, "seconds per pointer loop")
	return cmd
}

func newInfoCommand(meshPath *string, resolve func(*cobra.Command) (config.Tunables, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "info [mesh]",
		Short: "Print mesh statistics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolve(cmd)
			if err != nil {
				return err
			}
			path := *meshPath
			if len(args) == 1 {
				path = args[0]
			}
			return writeInfo(cmd.OutOrStdout(), loader.NewLoader(), path, cfg.ModelScale)
		},
	}
}
