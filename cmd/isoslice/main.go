// Command isoslice slices the surfaces of a scene file with a cutting plane
// and writes the contour as an image or CSV.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/isoslice"
	_ "github.com/gogpu/isoslice/gpu" // enable GPU intersection
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	logLevel string
	gpu      bool
	config   string
	ticks    int
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "isoslice",
		Short: "Slice implicit surfaces with a cutting plane",
		Long: `isoslice samples the scalar field of the surface closest to a cutting plane,
extracts its iso-contour and places one segment per contour piece.

Scenes are YAML files; keys they omit keep the built-in defaults.`,
		Version:       isoslice.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(g.logLevel)); err != nil {
				return fmt.Errorf("invalid --log-level %q: %w", g.logLevel, err)
			}
			isoslice.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	pf.BoolVar(&g.gpu, "gpu", true, "use the GPU kernel when a device is available")
	pf.StringVarP(&g.config, "config", "c", "", "scene file (default: built-in scene)")
	pf.IntVar(&g.ticks, "ticks", -1, "ticks to simulate (default: from the scene)")

	root.AddCommand(newRenderCmd(g), newExportCmd(g), newWatchCmd(g))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
