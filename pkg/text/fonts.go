package text

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
)

// FontConfig holds paths to TrueType files used for measurement and painting.
// An empty path selects the matching embedded Go font.
type FontConfig struct {
	Regular    string
	Bold       string
	Italic     string
	BoldItalic string
	Monospace  string
	MonoBold   string
}

// FontPath returns the configured path for the given style combination, or ""
// when the embedded font should be used.
func (fc FontConfig) FontPath(bold, italic, mono bool) string {
	if mono {
		if bold && fc.MonoBold != "" {
			return fc.MonoBold
		}
		return fc.Monospace
	}
	switch {
	case bold && italic:
		return fc.BoldItalic
	case bold:
		return fc.Bold
	case italic:
		return fc.Italic
	}
	return fc.Regular
}

// embeddedTTF returns the Go font for the style combination.
func embeddedTTF(bold, italic, mono bool) (string, []byte) {
	switch {
	case mono && bold:
		return "gomonobold", gomonobold.TTF
	case mono:
		return "gomono", gomono.TTF
	case bold && italic:
		return "gobolditalic", gobolditalic.TTF
	case bold:
		return "gobold", gobold.TTF
	case italic:
		return "goitalic", goitalic.TTF
	}
	return "goregular", goregular.TTF
}

// FontSpec is a parsed font descriptor.
type FontSpec struct {
	Size   float64
	Bold   bool
	Italic bool
	Mono   bool
	Family string
}

// ParseFont parses a CSS-like font descriptor such as "italic bold 16px monospace".
// Unknown words become the family; a missing size defaults to 16px.
func ParseFont(s string) FontSpec {
	spec := FontSpec{Size: 16}
	var family []string
	for _, word := range strings.Fields(s) {
		lw := strings.ToLower(word)
		switch lw {
		case "italic", "oblique":
			spec.Italic = true
			continue
		case "bold", "bolder", "600", "700", "800", "900":
			spec.Bold = true
			continue
		case "normal", "400", "lighter", "100", "200", "300", "500":
			continue
		}
		if strings.HasSuffix(lw, "px") {
			if size, err := strconv.ParseFloat(strings.TrimSuffix(lw, "px"), 64); err == nil {
				spec.Size = size
				continue
			}
		}
		family = append(family, word)
	}
	spec.Family = strings.Join(family, " ")
	spec.Mono = IsMonospaceFamily(spec.Family)
	return spec
}

// String renders the descriptor in the form ParseFont accepts.
func (f FontSpec) String() string {
	var sb strings.Builder
	if f.Italic {
		sb.WriteString("italic ")
	}
	if f.Bold {
		sb.WriteString("bold ")
	}
	sb.WriteString(strconv.FormatFloat(f.Size, 'f', -1, 64))
	sb.WriteString("px")
	family := f.Family
	if family == "" && f.Mono {
		family = "monospace"
	}
	if family != "" {
		sb.WriteByte(' ')
		sb.WriteString(family)
	}
	return sb.String()
}

// IsMonospaceFamily reports whether a font-family list asks for a fixed-pitch face.
func IsMonospaceFamily(family string) bool {
	lf := strings.ToLower(family)
	for _, name := range []string{"monospace", "mono", "courier", "consolas", "menlo"} {
		if strings.Contains(lf, name) {
			return true
		}
	}
	return false
}

type faceKey struct {
	source string
	size   float64
}

// FaceCache loads and caches font faces. Faces are not safe for concurrent
// use; callers serialise use of a face through Lock/Unlock.
type FaceCache struct {
	fonts FontConfig

	mu     sync.Mutex
	parsed map[string]*truetype.Font
	faces  map[faceKey]font.Face
}

func NewFaceCache(fonts FontConfig) *FaceCache {
	return &FaceCache{
		fonts:  fonts,
		parsed: make(map[string]*truetype.Font),
		faces:  make(map[faceKey]font.Face),
	}
}

func (c *FaceCache) Lock()   { c.mu.Lock() }
func (c *FaceCache) Unlock() { c.mu.Unlock() }

// Face returns the face for spec. The cache must be locked.
func (c *FaceCache) Face(spec FontSpec) (font.Face, error) {
	source := c.fonts.FontPath(spec.Bold, spec.Italic, spec.Mono)
	var data []byte
	if source == "" {
		source, data = embeddedTTF(spec.Bold, spec.Italic, spec.Mono)
	}
	key := faceKey{source: source, size: spec.Size}
	if face, ok := c.faces[key]; ok {
		return face, nil
	}

	f, ok := c.parsed[source]
	if !ok {
		if data == nil {
			b, err := os.ReadFile(source)
			if err != nil {
				return nil, fmt.Errorf("reading font %s: %w", source, err)
			}
			data = b
		}
		parsed, err := truetype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parsing font %s: %w", source, err)
		}
		f = parsed
		c.parsed[source] = f
	}

	face := truetype.NewFace(f, &truetype.Options{Size: spec.Size, DPI: 72, Hinting: font.HintingNone})
	c.faces[key] = face
	return face, nil
}
