package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gogpu/isoslice/debugdraw"
)

type renderFlags struct {
	output       string
	scale        int
	lineWidth    float64
	hideSegments bool
}

func newRenderCmd(g *globalFlags) *cobra.Command {
	f := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the field map and contour of the final pass to PNG",
		Long: `Run the scene's ticks and draw the last sampled field with the accepted
segments stroked on top. A summary of the run is printed to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd, g, f)
		},
	}
	addRenderFlags(cmd, f)
	return cmd
}

func addRenderFlags(cmd *cobra.Command, f *renderFlags) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "isoslice.png", "output PNG file")
	cmd.Flags().IntVar(&f.scale, "scale", 8, "pixels per field sample")
	cmd.Flags().Float64Var(&f.lineWidth, "line-width", 2, "segment stroke width in pixels")
	cmd.Flags().BoolVar(&f.hideSegments, "no-segments", false, "draw the field map only")
}

func runRender(cmd *cobra.Command, g *globalFlags, f *renderFlags) error {
	s, err := openSession(g)
	if err != nil {
		return err
	}
	defer s.Close()

	sum, err := s.run(nil)
	if err != nil {
		return err
	}
	if err := writeImage(s, f); err != nil {
		return err
	}
	sum.print(cmd.OutOrStdout())
	fmt.Fprintf(cmd.OutOrStdout(), "image:    %s\n", f.output)
	return nil
}

func writeImage(s *session, f *renderFlags) error {
	dc, err := debugdraw.Draw(s.plane, debugdraw.Options{
		Scale:        f.scale,
		LineWidth:    f.lineWidth,
		HideSegments: f.hideSegments,
	})
	if err != nil {
		return err
	}
	defer dc.Close()
	if err := dc.SavePNG(f.output); err != nil {
		return fmt.Errorf("saving %s: %w", f.output, err)
	}
	return nil
}
