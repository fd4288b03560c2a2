// Package pipeline strings the engine's stages together: parse, run
// scripts, cascade, lay out and paint.
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"boxwalk/pkg/config"
	"boxwalk/pkg/css"
	"boxwalk/pkg/html"
	"boxwalk/pkg/js"
	"boxwalk/pkg/layout"
	"boxwalk/pkg/render"
	"boxwalk/pkg/text"
)

type Options struct {
	Viewport      layout.Viewport
	Fonts         text.FontConfig
	Measurer      string
	Scripts       bool
	ScriptTimeout time.Duration
}

// FromConfig maps a loaded configuration onto pipeline options.
func FromConfig(cfg *config.Config) Options {
	f := cfg.Text.Fonts
	return Options{
		Viewport: layout.Viewport{
			Width:  float64(cfg.Viewport.Width),
			Height: float64(cfg.Viewport.Height),
		},
		Fonts: text.FontConfig{
			Regular:    f.Regular,
			Bold:       f.Bold,
			Italic:     f.Italic,
			BoldItalic: f.BoldItalic,
			Monospace:  f.Mono,
			MonoBold:   f.MonoBold,
		},
		Measurer:      cfg.Text.Measurer,
		Scripts:       cfg.Scripts.Enabled,
		ScriptTimeout: cfg.Scripts.Timeout,
	}
}

// Pipeline renders documents with one set of options. The text provider
// and its face cache are shared by every document it loads.
type Pipeline struct {
	opts    Options
	logger  *zap.Logger
	metrics text.Provider
	faces   *text.FaceCache
}

func New(opts Options, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pipeline{opts: opts, logger: logger}
	switch opts.Measurer {
	case config.MeasurerHeuristic:
		p.metrics = text.HeuristicProvider{}
	default:
		canvas := text.NewCanvasProvider(opts.Fonts, logger)
		p.metrics = canvas
		p.faces = canvas.Faces()
	}
	return p
}

// Result is one document carried through layout.
type Result struct {
	DOM    *html.Document
	Styles css.Styles
	Layout *layout.Document
}

// Load parses the markup read from r, runs its scripts when enabled, computes
// styles and lays out the document element against the viewport. Input is
// decoded from the charset its BOM or meta tag declares, else UTF-8 or
// windows-1252. A failing script is logged and the remaining stages still run.
func (p *Pipeline) Load(r io.Reader) (*Result, error) {
	logger := p.logger.With(zap.String("run", uuid.NewString()))
	start := time.Now()

	decoded, err := charset.NewReader(r, "")
	if err != nil {
		return nil, fmt.Errorf("detecting charset: %w", err)
	}
	doc, err := html.ParseReader(decoded)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	if p.opts.Scripts && len(doc.Scripts) > 0 {
		engine := js.New(logger, js.WithTimeout(p.opts.ScriptTimeout))
		if err := engine.Execute(doc); err != nil {
			logger.Warn("script execution failed", zap.Error(err))
		}
	}

	styles := css.ApplyStylesToDocument(doc)
	engine := layout.NewEngine(styles, p.metrics, layout.WithLogger(logger))
	res := &Result{
		DOM:    doc,
		Styles: styles,
		Layout: engine.Layout(doc.DocumentElement(), p.opts.Viewport),
	}
	logger.Debug("document loaded",
		zap.Int("scripts", len(doc.Scripts)),
		zap.Int("layout_nodes", res.Layout.Len()),
		zap.Duration("elapsed", time.Since(start)))
	return res, nil
}

// Paint draws a loaded document onto a canvas the size of the viewport.
func (p *Pipeline) Paint(res *Result) *render.Renderer {
	r := render.NewRenderer(int(p.opts.Viewport.Width), int(p.opts.Viewport.Height), p.opts.Fonts,
		render.WithFaces(p.faces), render.WithLogger(p.logger))
	r.Paint(res.Layout, res.Styles)
	return r
}
