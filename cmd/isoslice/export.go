package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/isoslice/export"
)

func newExportCmd(g *globalFlags) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the accepted segments of every pass as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, g, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output CSV file, - for stdout")
	return cmd
}

func runExport(cmd *cobra.Command, g *globalFlags, output string) (err error) {
	s, err := openSession(g)
	if err != nil {
		return err
	}
	defer s.Close()

	var out io.Writer = cmd.OutOrStdout()
	if output != "-" {
		file, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating %s: %w", output, err)
		}
		defer func() {
			if cerr := file.Close(); err == nil {
				err = cerr
			}
		}()
		out = file
	}

	w := export.NewWriter(out)
	sum, err := s.run(func(tick int) error {
		return w.Write(export.Records(tick, s.plane))
	})
	if err != nil {
		return err
	}
	if output != "-" {
		sum.print(cmd.OutOrStdout())
		fmt.Fprintf(cmd.OutOrStdout(), "csv:      %s (%d rows)\n", output, w.Rows())
	}
	return nil
}
