package render

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boxwalk/pkg/css"
	"boxwalk/pkg/html"
	"boxwalk/pkg/layout"
	"boxwalk/pkg/text"
)

func paint(t *testing.T, markup string, w, h int) (*Renderer, *layout.Document) {
	t.Helper()
	dom, err := html.Parse(markup)
	require.NoError(t, err)
	root := dom.Root.ElementByID("root")
	require.NotNil(t, root)

	styles := css.ApplyStylesToDocument(dom)
	metrics := text.NewCanvasProvider(text.FontConfig{}, nil)
	doc := layout.NewEngine(styles, metrics).Layout(root, layout.Viewport{Width: float64(w), Height: float64(h)})

	r := NewRenderer(w, h, text.FontConfig{}, WithFaces(metrics.Faces()))
	r.Paint(doc, styles)
	return r, doc
}

func rgba(c color.Color) color.RGBA {
	return color.RGBAModel.Convert(c).(color.RGBA)
}

var white = color.RGBA{255, 255, 255, 255}

func TestPaint_BackgroundAndBorder(t *testing.T) {
	r, _ := paint(t, `<div id="root"><div style="width: 20px; height: 20px; margin: 10px; background: red; border: 5px solid blue"></div></div>`, 100, 100)
	img := r.Image()

	assert.Equal(t, white, rgba(img.At(2, 2)), "margin stays unpainted")
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, rgba(img.At(12, 25)), "left border")
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, rgba(img.At(25, 25)), "padding box")
	assert.Equal(t, white, rgba(img.At(50, 50)))
}

func TestPaint_TextRun(t *testing.T) {
	r, doc := paint(t, `<div id="root" style="color: #00ff00; font-size: 24px">MMMM</div>`, 200, 60)
	img := r.Image()

	var run *layout.TextRunNode
	doc.Walk(func(n layout.Node) bool {
		if tr, ok := n.(*layout.TextRunNode); ok {
			run = tr
		}
		return true
	})
	require.NotNil(t, run)
	box := run.Box().Outer
	require.Greater(t, box.Width, 0.0)

	green := 0
	for y := int(box.Y); y < int(box.Bottom()); y++ {
		for x := int(box.X); x < int(box.Right()); x++ {
			c := rgba(img.At(x, y))
			if c.G > 200 && c.R < 100 && c.B < 100 {
				green++
			}
		}
	}
	assert.Greater(t, green, 20, "glyph pixels in the text colour")
	assert.Equal(t, white, rgba(img.At(190, 55)))
}

func TestPaint_InlineBackgroundBetweenMarkers(t *testing.T) {
	r, doc := paint(t, `<div id="root">ab<span style="background-color: yellow">cd</span>ef</div>`, 200, 40)
	img := r.Image()

	var start, end *layout.MarkerNode
	doc.Walk(func(n layout.Node) bool {
		if m, ok := n.(*layout.MarkerNode); ok {
			if m.IsStart() {
				start = m
			} else {
				end = m
			}
		}
		return true
	})
	require.NotNil(t, start)
	require.NotNil(t, end)
	require.Greater(t, end.Box().Outer.X, start.Box().Outer.X)

	// Top row of the line, above any glyph.
	mid := int((start.Box().Outer.X + end.Box().Outer.X) / 2)
	assert.Equal(t, color.RGBA{255, 255, 0, 255}, rgba(img.At(mid, 0)))
	assert.Equal(t, white, rgba(img.At(int(start.Box().Outer.X)-2, 0)))
	assert.Equal(t, white, rgba(img.At(int(end.Box().Outer.X)+2, 0)))
}

func TestPaint_DoesNotMutateLayout(t *testing.T) {
	dom, err := html.Parse(`<div id="root" style="padding: 3px; background: #eee">x<b>y</b></div>`)
	require.NoError(t, err)
	styles := css.ApplyStylesToDocument(dom)
	doc := layout.NewEngine(styles, nil).Layout(dom.Root.ElementByID("root"), layout.Viewport{Width: 50, Height: 50})
	before := layout.Snapshot(doc.Root)

	NewRenderer(50, 50, text.FontConfig{}).Paint(doc, styles)
	assert.Equal(t, before, layout.Snapshot(doc.Root))
}

func TestSavePNG(t *testing.T) {
	r, _ := paint(t, `<div id="root" style="height: 10px; background: black"></div>`, 10, 10)
	path := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, r.SavePNG(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	err = r.SavePNG(filepath.Join(t.TempDir(), "missing", "out.png"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save png")
}
