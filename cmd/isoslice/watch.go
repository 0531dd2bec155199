package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gogpu/isoslice"
	"github.com/gogpu/isoslice/internal/watcher"
)

const watchDebounce = 200 * time.Millisecond

func newWatchCmd(g *globalFlags) *cobra.Command {
	f := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-render whenever the scene file changes",
		Long: `Render like the render command, then keep watching the scene file and
render again after every save. Stop with Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if g.config == "" {
				return errors.New("watch needs a scene file (--config)")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd, g, f)
		},
	}
	addRenderFlags(cmd, f)
	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, g *globalFlags, f *renderFlags) error {
	log := isoslice.Logger()
	changed := make(chan struct{}, 1)

	fw, err := watcher.NewFileWatcher(watchDebounce, log)
	if err != nil {
		return err
	}
	defer fw.Close()
	if err := fw.Watch([]string{g.config}, func(string) {
		select {
		case changed <- struct{}{}:
		default:
		}
	}); err != nil {
		return err
	}
	fw.Start()

	render := func() {
		if err := runRender(cmd, g, f); err != nil {
			// A half-saved scene is common while editing; keep watching.
			log.Warn("render failed", "config", g.config, "err", err)
			fmt.Fprintf(cmd.ErrOrStderr(), "render failed: %v\n", err)
		}
	}

	render()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changed:
			log.Info("scene changed", "config", g.config)
			render()
		}
	}
}
