// Package visualtest compares rendered pages against reference images.
package visualtest

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

// Result is the outcome of comparing an image against its reference.
type Result struct {
	Match           bool
	DifferentPixels int
	TotalPixels     int
	// MaxDifference is the largest per-channel difference seen, 0-255.
	MaxDifference int
	// Diff shows matching pixels in grey and mismatches in red. Only set
	// when Options.Diff is true.
	Diff *image.RGBA
}

// DifferentPercent is the share of mismatched pixels, 0-100.
func (r *Result) DifferentPercent() float64 {
	if r.TotalPixels == 0 {
		return 0
	}
	return float64(r.DifferentPixels) / float64(r.TotalPixels) * 100
}

type Options struct {
	// Tolerance is the largest per-channel difference still counted as equal.
	Tolerance int
	// FuzzyRadius lets a pixel match any reference pixel within this many
	// pixels, absorbing small text shifts.
	FuzzyRadius int
	// MaxDifferentPercent accepts the comparison when at most this share of
	// pixels differ.
	MaxDifferentPercent float64
	Diff                bool
}

func DefaultOptions() Options {
	return Options{Tolerance: 2}
}

// Compare checks actual against expected pixel by pixel. Images of different
// sizes are an error.
func Compare(actual, expected image.Image, opts Options) (*Result, error) {
	bounds := actual.Bounds()
	if bounds.Size() != expected.Bounds().Size() {
		return nil, fmt.Errorf("image sizes differ: actual %v, expected %v",
			bounds.Size(), expected.Bounds().Size())
	}
	offset := expected.Bounds().Min.Sub(bounds.Min)

	res := &Result{Match: true, TotalPixels: bounds.Dx() * bounds.Dy()}
	if opts.Diff {
		res.Diff = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			a := rgba8(actual.At(x, y))
			d := channelDiff(a, rgba8(expected.At(x+offset.X, y+offset.Y)))
			res.MaxDifference = max(res.MaxDifference, d)

			ok := d <= opts.Tolerance ||
				(opts.FuzzyRadius > 0 && fuzzyMatch(a, expected, x+offset.X, y+offset.Y, opts))
			if !ok {
				res.DifferentPixels++
			}
			if res.Diff != nil {
				px := color.RGBA{255, 0, 0, 255}
				if ok {
					px = color.RGBA{a.R, a.R, a.R, 255}
				}
				res.Diff.SetRGBA(x-bounds.Min.X, y-bounds.Min.Y, px)
			}
		}
	}

	res.Match = res.DifferentPixels == 0 ||
		(opts.MaxDifferentPercent > 0 && res.DifferentPercent() <= opts.MaxDifferentPercent)
	return res, nil
}

// CompareFiles decodes two PNG files and compares them.
func CompareFiles(actualPath, expectedPath string, opts Options) (*Result, error) {
	actual, err := LoadPNG(actualPath)
	if err != nil {
		return nil, err
	}
	expected, err := LoadPNG(expectedPath)
	if err != nil {
		return nil, err
	}
	return Compare(actual, expected, opts)
}

func LoadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func SavePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

func fuzzyMatch(a color.RGBA, expected image.Image, x, y int, opts Options) bool {
	b := expected.Bounds()
	for dy := -opts.FuzzyRadius; dy <= opts.FuzzyRadius; dy++ {
		for dx := -opts.FuzzyRadius; dx <= opts.FuzzyRadius; dx++ {
			p := image.Pt(x+dx, y+dy)
			if !p.In(b) {
				continue
			}
			if channelDiff(a, rgba8(expected.At(p.X, p.Y))) <= opts.Tolerance {
				return true
			}
		}
	}
	return false
}

func rgba8(c color.Color) color.RGBA {
	r, g, b, a := c.RGBA()
	return color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
}

func channelDiff(a, b color.RGBA) int {
	return max(absDiff(a.R, b.R), absDiff(a.G, b.G), absDiff(a.B, b.B), absDiff(a.A, b.A))
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
