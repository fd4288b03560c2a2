// Command boxview is a desktop viewer showing a rendered document next to
// its layout tree.
package main

import (
	"fmt"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"boxwalk/pkg/config"
	"boxwalk/pkg/observability"
	"boxwalk/pkg/pipeline"
)

func main() {
	var cfgFile string
	cmd := &cobra.Command{
		Use:          "boxview [file]",
		Short:        "View the layout of an HTML document",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			config.SetDefaults(v)
			if err := config.Bind(v, cfgFile); err != nil {
				return err
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			logger, err := observability.NewLogger(cfg.Logger)
			if err != nil {
				return err
			}
			defer logger.Sync()

			initial := ""
			if len(args) == 1 {
				initial = args[0]
			}
			run(cfg, logger, initial)
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgFile, "config", "c", "", "config file")
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger, initial string) {
	p := pipeline.New(pipeline.FromConfig(cfg), logger)

	a := app.New()
	w := a.NewWindow("boxview")
	w.Resize(fyne.NewSize(float32(cfg.Viewport.Width)+360, float32(cfg.Viewport.Height)+80))

	canvasImg := canvas.NewImageFromImage(nil)
	canvasImg.FillMode = canvas.ImageFillOriginal

	status := widget.NewLabel("Enter a file path and press Enter")

	index := newTreeIndex(nil)
	tree := widget.NewTree(
		func(id widget.TreeNodeID) []widget.TreeNodeID { return index.Children(id) },
		func(id widget.TreeNodeID) bool { return index.IsBranch(id) },
		func(bool) fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.TreeNodeID, _ bool, o fyne.CanvasObject) {
			o.(*widget.Label).SetText(index.Label(id))
		},
	)
	tree.OnSelected = func(id widget.TreeNodeID) {
		status.SetText(index.Detail(id))
	}

	pathEntry := widget.NewEntry()
	pathEntry.SetPlaceHolder("page.html")
	pathEntry.OnSubmitted = func(path string) {
		status.SetText("Loading " + path + "...")
		go func() {
			f, err := os.Open(path)
			if err != nil {
				fyne.Do(func() { status.SetText("Error: " + err.Error()) })
				return
			}
			defer f.Close()

			res, err := p.Load(f)
			if err != nil {
				logger.Warn("load failed", zap.String("path", path), zap.Error(err))
				fyne.Do(func() { status.SetText("Error: " + err.Error()) })
				return
			}
			img := p.Paint(res).Image()
			next := newTreeIndex(res.Layout.Root)

			fyne.Do(func() {
				index = next
				tree.Refresh()
				tree.OpenBranch("0")
				canvasImg.Image = img
				canvasImg.Refresh()
				status.SetText(fmt.Sprintf("%s: %d layout nodes", path, res.Layout.Len()))
				w.SetTitle("boxview: " + path)
			})
		}()
	}

	topBar := container.NewBorder(nil, nil, nil, nil, pathEntry)
	split := container.NewHSplit(tree, container.NewScroll(canvasImg))
	split.Offset = 0.3
	w.SetContent(container.NewBorder(topBar, status, nil, nil, split))
	w.Canvas().Focus(pathEntry)

	if initial != "" {
		pathEntry.SetText(initial)
		pathEntry.OnSubmitted(initial)
	}
	w.ShowAndRun()
}
