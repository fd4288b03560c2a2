package text

import (
	"unicode/utf8"

	"github.com/fogleman/gg"
	"go.uber.org/zap"
)

// Request describes one run of text to measure.
type Request struct {
	Text       string
	FontSize   float64
	LineHeight float64
	Font       string // descriptor in ParseFont form
}

// Metrics is the measured extent of a run.
type Metrics struct {
	Width   float64
	Height  float64
	Ascent  float64
	Descent float64
}

// Provider measures text. Implementations must be deterministic for equal requests.
type Provider interface {
	Measure(req Request) Metrics
}

// HeuristicProvider estimates metrics from the rune count alone. It needs no
// fonts and is what layout tests run on.
type HeuristicProvider struct{}

func (HeuristicProvider) Measure(req Request) Metrics {
	size := req.FontSize
	height := req.LineHeight
	if height <= 0 {
		height = size
	}
	return Metrics{
		Width:   0.6 * size * float64(utf8.RuneCountInString(req.Text)),
		Height:  height,
		Ascent:  0.8 * size,
		Descent: 0.2 * size,
	}
}

// CanvasProvider measures with real glyph advances through a gg context.
type CanvasProvider struct {
	faces    *FaceCache
	fallback HeuristicProvider
	logger   *zap.Logger
	failed   map[string]bool
}

// NewCanvasProvider creates a provider over the given fonts. A nil logger
// disables logging.
func NewCanvasProvider(fonts FontConfig, logger *zap.Logger) *CanvasProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CanvasProvider{
		faces:  NewFaceCache(fonts),
		logger: logger.Named("text"),
		failed: make(map[string]bool),
	}
}

// Faces exposes the provider's face cache so a painter can draw with the
// same faces that were used for measuring.
func (p *CanvasProvider) Faces() *FaceCache { return p.faces }

func (p *CanvasProvider) Measure(req Request) Metrics {
	spec := ParseFont(req.Font)
	if req.FontSize > 0 {
		spec.Size = req.FontSize
	}

	p.faces.Lock()
	defer p.faces.Unlock()

	face, err := p.faces.Face(spec)
	if err != nil {
		if key := spec.String(); !p.failed[key] {
			p.failed[key] = true
			p.logger.Warn("font unavailable, using heuristic metrics", zap.String("font", key), zap.Error(err))
		}
		return p.fallback.Measure(req)
	}

	dc := gg.NewContext(1, 1)
	dc.SetFontFace(face)
	width, _ := dc.MeasureString(req.Text)

	fm := face.Metrics()
	ascent := float64(fm.Ascent) / 64
	descent := float64(fm.Descent) / 64
	height := ascent + descent
	if req.LineHeight > height {
		height = req.LineHeight
	}
	return Metrics{
		Width:   width,
		Height:  height,
		Ascent:  ascent,
		Descent: descent,
	}
}
