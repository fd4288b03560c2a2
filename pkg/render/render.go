package render

import (
	"fmt"
	"image"
	"strings"

	"github.com/fogleman/gg"
	"go.uber.org/zap"

	"boxwalk/pkg/css"
	"boxwalk/pkg/html"
	"boxwalk/pkg/layout"
	"boxwalk/pkg/text"
)

// Renderer paints a layout document onto an RGBA canvas.
type Renderer struct {
	context *gg.Context
	faces   *text.FaceCache
	logger  *zap.Logger
	styles  layout.StyleSource
}

type Option func(*Renderer)

func WithLogger(logger *zap.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithFaces shares a face cache, typically the one a text.CanvasProvider
// measured with.
func WithFaces(faces *text.FaceCache) Option {
	return func(r *Renderer) {
		if faces != nil {
			r.faces = faces
		}
	}
}

func NewRenderer(width, height int, fonts text.FontConfig, opts ...Option) *Renderer {
	r := &Renderer{
		context: gg.NewContext(width, height),
		faces:   text.NewFaceCache(fonts),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.Named("render")
	return r
}

// Paint clears the canvas and paints doc in tree order. Styles supply text
// colours, inline backgrounds and decorations; a nil source paints with
// initial values. The layout tree is only read.
func (r *Renderer) Paint(doc *layout.Document, styles layout.StyleSource) {
	r.styles = styles
	r.context.SetRGB(1, 1, 1)
	r.context.Clear()

	doc.Walk(func(n layout.Node) bool {
		switch v := n.(type) {
		case *layout.BlockNode:
			r.drawBackground(v.Box())
			r.drawBorder(v.Box())
		case *layout.LineBoxNode:
			r.drawInlineBackgrounds(v)
			for _, it := range v.Items() {
				if run, ok := it.(*layout.TextRunNode); ok {
					r.drawText(run)
				}
			}
		}
		return true
	})
}

func (r *Renderer) style(n *html.Node) css.ComputedStyle {
	if r.styles == nil || n == nil {
		return (*css.Style)(nil)
	}
	return r.styles.StyleOf(n)
}

// drawBackground fills the padding box.
func (r *Renderer) drawBackground(box *layout.LayoutBox) {
	if box.Background.IsTransparent() {
		return
	}
	bg := box.Scroll
	if bg.Width <= 0 || bg.Height <= 0 {
		return
	}
	r.context.SetColor(box.Background)
	r.context.DrawRectangle(bg.X, bg.Y, bg.Width, bg.Height)
	r.context.Fill()
}

// drawBorder draws each side as a trapezoid between the border box and the
// padding box so that corners miter.
func (r *Renderer) drawBorder(box *layout.LayoutBox) {
	b := box.Border
	if b.Top <= 0 && b.Right <= 0 && b.Bottom <= 0 && b.Left <= 0 {
		return
	}
	if box.BorderColor.IsTransparent() {
		return
	}
	r.context.SetColor(box.BorderColor)

	o, in := box.Outer, box.Scroll
	switch box.BorderStyle {
	case "dashed", "dotted":
		r.strokeBorder(box)
		return
	case "double":
		r.drawDoubleBorder(box)
		return
	}

	if b.Top > 0 {
		r.fillQuad(o.X, o.Y, o.Right(), o.Y, in.Right(), in.Y, in.X, in.Y)
	}
	if b.Right > 0 {
		r.fillQuad(o.Right(), o.Y, o.Right(), o.Bottom(), in.Right(), in.Bottom(), in.Right(), in.Y)
	}
	if b.Bottom > 0 {
		r.fillQuad(o.X, o.Bottom(), o.Right(), o.Bottom(), in.Right(), in.Bottom(), in.X, in.Bottom())
	}
	if b.Left > 0 {
		r.fillQuad(o.X, o.Y, o.X, o.Bottom(), in.X, in.Bottom(), in.X, in.Y)
	}
}

func (r *Renderer) fillQuad(x1, y1, x2, y2, x3, y3, x4, y4 float64) {
	r.context.MoveTo(x1, y1)
	r.context.LineTo(x2, y2)
	r.context.LineTo(x3, y3)
	r.context.LineTo(x4, y4)
	r.context.ClosePath()
	r.context.Fill()
}

func (r *Renderer) strokeBorder(box *layout.LayoutBox) {
	dash, gap := 10.0, 5.0
	if box.BorderStyle == "dotted" {
		dash, gap = 2, 4
	}
	o, b := box.Outer, box.Border
	r.context.SetDash(dash, gap)
	defer r.context.SetDash()

	stroke := func(width, x1, y1, x2, y2 float64) {
		if width <= 0 {
			return
		}
		r.context.SetLineWidth(width)
		r.context.DrawLine(x1, y1, x2, y2)
		r.context.Stroke()
	}
	stroke(b.Top, o.X, o.Y+b.Top/2, o.Right(), o.Y+b.Top/2)
	stroke(b.Right, o.Right()-b.Right/2, o.Y, o.Right()-b.Right/2, o.Bottom())
	stroke(b.Bottom, o.X, o.Bottom()-b.Bottom/2, o.Right(), o.Bottom()-b.Bottom/2)
	stroke(b.Left, o.X+b.Left/2, o.Y, o.X+b.Left/2, o.Bottom())
}

func (r *Renderer) drawDoubleBorder(box *layout.LayoutBox) {
	o, b := box.Outer, box.Border
	rect := func(x, y, w, h float64) {
		if w <= 0 || h <= 0 {
			return
		}
		r.context.DrawRectangle(x, y, w, h)
		r.context.Fill()
	}
	// Outer and inner thirds of every side.
	rect(o.X, o.Y, o.Width, b.Top/3)
	rect(o.X, o.Y+b.Top*2/3, o.Width, b.Top/3)
	rect(o.X, o.Bottom()-b.Bottom/3, o.Width, b.Bottom/3)
	rect(o.X, o.Bottom()-b.Bottom, o.Width, b.Bottom/3)
	rect(o.X, o.Y, b.Left/3, o.Height)
	rect(o.X+b.Left*2/3, o.Y, b.Left/3, o.Height)
	rect(o.Right()-b.Right/3, o.Y, b.Right/3, o.Height)
	rect(o.Right()-b.Right, o.Y, b.Right/3, o.Height)
}

// drawInlineBackgrounds fills the span between each start marker and its
// paired end marker with the element's background colour. Synthetic markers
// pair like real ones, so an element split by a block paints on both lines.
func (r *Renderer) drawInlineBackgrounds(line *layout.LineBoxNode) {
	type open struct {
		el *html.Node
		x  float64
	}
	var stack []open
	lineBox := line.Box().Outer
	for _, it := range line.Items() {
		m, ok := it.(*layout.MarkerNode)
		if !ok {
			continue
		}
		if m.IsStart() {
			stack = append(stack, open{el: m.DOM(), x: m.Box().Outer.X})
			continue
		}
		for i := len(stack) - 1; i >= 0; i-- {
			if stack[i].el != m.DOM() {
				continue
			}
			start := stack[i]
			stack = stack[:i]
			style := r.style(start.el)
			c, ok := css.ResolveColor(style.Get("background-color"), style)
			if ok && !c.IsTransparent() && m.Box().Outer.X > start.x {
				r.context.SetColor(c)
				r.context.DrawRectangle(start.x, lineBox.Y, m.Box().Outer.X-start.x, lineBox.Height)
				r.context.Fill()
			}
			break
		}
	}
}

// drawText draws a run at its baseline. The glyph box (ascent plus descent)
// is centred in the run's line height. The face cache is held for the whole
// draw.
func (r *Renderer) drawText(run *layout.TextRunNode) {
	content := run.Text
	if strings.TrimSpace(content) == "" {
		return
	}
	style := r.style(run.Style)
	color, ok := css.ResolveColor(style.Get("color"), style)
	if !ok {
		color = css.Black
	}
	if color.IsTransparent() {
		return
	}

	r.faces.Lock()
	defer r.faces.Unlock()
	face, err := r.faces.Face(run.Font)
	if err != nil {
		r.logger.Warn("skipping text run without a font face",
			zap.Stringer("font", run.Font), zap.Error(err))
		return
	}

	box := run.Box().Outer
	ascent, descent := run.Metrics.Ascent, run.Metrics.Descent
	if ascent+descent <= 0 {
		ascent, descent = run.Font.Size*0.8, run.Font.Size*0.2
	}
	baseline := box.Y + (box.Height-(ascent+descent))/2 + ascent

	r.context.SetFontFace(face)
	r.context.SetColor(color)
	r.context.DrawString(content, box.X, baseline)

	decoration := strings.TrimSpace(style.Get("text-decoration"))
	if decoration == "" || decoration == "none" {
		return
	}
	thickness := max(run.Font.Size/12, 1)
	r.context.SetLineWidth(thickness)
	for _, d := range strings.Fields(decoration) {
		var y float64
		switch d {
		case "underline":
			y = baseline + descent/2
		case "overline":
			y = baseline - ascent
		case "line-through":
			y = baseline - ascent*0.35
		default:
			continue
		}
		r.context.DrawLine(box.X, y, box.X+box.Width, y)
		r.context.Stroke()
	}
}

// Image returns the canvas.
func (r *Renderer) Image() *image.RGBA {
	return r.context.Image().(*image.RGBA)
}

func (r *Renderer) SavePNG(filename string) error {
	if err := r.context.SavePNG(filename); err != nil {
		return fmt.Errorf("save png %s: %w", filename, err)
	}
	return nil
}
