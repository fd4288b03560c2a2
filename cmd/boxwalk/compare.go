package main

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"boxwalk/pkg/visualtest"
)

func newCompareCmd(a *app) *cobra.Command {
	var (
		opts     = visualtest.DefaultOptions()
		diffPath string
	)
	cmd := &cobra.Command{
		Use:   "compare <actual> <reference.png>",
		Short: "Compare a rendering against a reference PNG",
		Long: `Compare checks a PNG, or an HTML document rendered on the fly, against a
reference PNG and fails when they differ beyond the given tolerances.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			actual, err := a.loadImage(cmd, args[0])
			if err != nil {
				return err
			}
			expected, err := visualtest.LoadPNG(args[1])
			if err != nil {
				return err
			}

			opts.Diff = diffPath != ""
			res, err := visualtest.Compare(actual, expected, opts)
			if err != nil {
				return err
			}
			if res.Diff != nil && !res.Match {
				if err := visualtest.SavePNG(res.Diff, diffPath); err != nil {
					return err
				}
			}

			a.logger.Info("compared",
				zap.String("actual", args[0]),
				zap.String("reference", args[1]),
				zap.Bool("match", res.Match),
				zap.Int("different_pixels", res.DifferentPixels),
				zap.Int("max_difference", res.MaxDifference))
			if !res.Match {
				return fmt.Errorf("%d of %d pixels differ (%.2f%%)",
					res.DifferentPixels, res.TotalPixels, res.DifferentPercent())
			}
			fmt.Fprintln(cmd.OutOrStdout(), "match")
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&opts.Tolerance, "tolerance", opts.Tolerance, "largest per-channel difference counted as equal")
	f.IntVar(&opts.FuzzyRadius, "fuzzy", 0, "match pixels against reference pixels within this radius")
	f.Float64Var(&opts.MaxDifferentPercent, "max-percent", 0, "accept up to this percentage of differing pixels")
	f.StringVar(&diffPath, "diff", "", "write a diff image here when the images differ")
	return cmd
}

// loadImage reads a PNG, or renders an HTML document at the configured
// viewport.
func (a *app) loadImage(cmd *cobra.Command, path string) (image.Image, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		p := a.pipeline()
		res, err := load(cmd, p, path)
		if err != nil {
			return nil, err
		}
		return p.Paint(res).Image(), nil
	}
	return visualtest.LoadPNG(path)
}
