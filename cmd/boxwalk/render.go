package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"boxwalk/pkg/pipeline"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		output string
		jobs   int
	)
	cmd := &cobra.Command{
		Use:   "render [file...]",
		Short: "Render HTML documents to PNG",
		Long: `Render lays out each document and paints it to a PNG.

With no file, or "-", the document is read from stdin. With one input
--output names the PNG (default out.png). With several, --output is a
directory (default .) and each PNG takes its input's base name.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := a.pipeline()
			if len(args) <= 1 {
				input := stdinName
				if len(args) == 1 {
					input = args[0]
				}
				if output == "" {
					output = "out.png"
				}
				return a.render(cmd, p, input, output)
			}

			if output == "" {
				output = "."
			}
			if err := os.MkdirAll(output, 0o755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(max(jobs, 1))
			for _, input := range args {
				g.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}
					return a.render(cmd, p, input, filepath.Join(output, pngName(input)))
				})
			}
			return g.Wait()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output PNG, or directory when rendering several files")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "documents rendered in parallel")
	return cmd
}

func (a *app) render(cmd *cobra.Command, p *pipeline.Pipeline, input, output string) error {
	start := time.Now()
	res, err := load(cmd, p, input)
	if err != nil {
		return err
	}
	if err := p.Paint(res).SavePNG(output); err != nil {
		return err
	}
	a.logger.Info("rendered",
		zap.String("input", input),
		zap.String("output", output),
		zap.Int("layout_nodes", res.Layout.Len()),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}
