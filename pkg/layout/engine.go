package layout

import (
	"strings"

	"go.uber.org/zap"

	"boxwalk/pkg/css"
	"boxwalk/pkg/html"
	"boxwalk/pkg/text"
)

// StyleSource resolves the computed style of a DOM node. css.Styles
// implements it.
type StyleSource interface {
	StyleOf(node *html.Node) css.ComputedStyle
}

// Viewport is the size of the initial containing block.
type Viewport struct {
	Width  float64
	Height float64
}

// Engine lays out DOM trees. An Engine holds no per-pass state and may be
// reused; each Layout call builds a fresh Document.
type Engine struct {
	styles  StyleSource
	metrics text.Provider
	logger  *zap.Logger
}

type Option func(*Engine)

// WithLogger sets the logger used for debug tracing of layout passes.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine. A nil metrics provider selects the heuristic one.
func NewEngine(styles StyleSource, metrics text.Provider, opts ...Option) *Engine {
	if metrics == nil {
		metrics = text.HeuristicProvider{}
	}
	e := &Engine{
		styles:  styles,
		metrics: metrics,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.Named("layout")
	return e
}

// Layout builds the layout tree for root against the viewport. The root is
// always laid out as a block whatever its display value.
func (e *Engine) Layout(root *html.Node, vp Viewport) *Document {
	doc := newDocument(Rect{Width: nonNegative(vp.Width), Height: nonNegative(vp.Height)})
	if root == nil {
		return doc
	}
	env := &Env{
		Factory: NewFactory(doc),
		Styles:  e.styles,
		Metrics: e.metrics,
		Logger:  e.logger,
	}
	e.logger.Debug("layout pass started",
		zap.Stringer("root", root),
		zap.Float64("viewport_width", vp.Width),
		zap.Float64("viewport_height", vp.Height))

	block := env.Factory.NewBlock(root, nil)
	block.Layout(Containing{Rect: doc.viewport, HeightDefinite: true}, 0, env)
	doc.Root = block

	e.logger.Debug("layout pass finished",
		zap.Int("nodes", doc.Len()),
		zap.Float64("root_height", block.box.Outer.Height))
	return doc
}

// Env carries the collaborators of one layout pass.
type Env struct {
	Factory *Factory
	Styles  StyleSource
	Metrics text.Provider
	Logger  *zap.Logger
}

func (env *Env) style(n *html.Node) css.ComputedStyle {
	if env.Styles == nil {
		return (*css.Style)(nil)
	}
	return env.Styles.StyleOf(n)
}

// Display values as layout sees them.
const (
	DisplayBlock       = "block"
	DisplayInline      = "inline"
	DisplayInlineBlock = "inline-block"
	DisplayNone        = "none"
)

// display classifies a DOM node. Text is always inline; unknown keywords
// degrade to block.
func (env *Env) display(n *html.Node) string {
	if n.Type == html.TextNode {
		return DisplayInline
	}
	switch d := strings.TrimSpace(env.style(n).Get("display")); d {
	case DisplayBlock, DisplayInline, DisplayInlineBlock, DisplayNone:
		return d
	case "":
		return DisplayInline
	}
	return DisplayBlock
}
