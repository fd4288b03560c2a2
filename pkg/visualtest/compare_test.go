package visualtest

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

var (
	red  = color.RGBA{255, 0, 0, 255}
	blue = color.RGBA{0, 0, 255, 255}
)

func TestCompare_Identical(t *testing.T) {
	res, err := Compare(solid(10, 10, red), solid(10, 10, red), DefaultOptions())
	require.NoError(t, err)
	assert.True(t, res.Match)
	assert.Zero(t, res.DifferentPixels)
	assert.Equal(t, 100, res.TotalPixels)
	assert.Nil(t, res.Diff)
}

func TestCompare_Different(t *testing.T) {
	res, err := Compare(solid(10, 10, red), solid(10, 10, blue), Options{Diff: true})
	require.NoError(t, err)
	assert.False(t, res.Match)
	assert.Equal(t, 100, res.DifferentPixels)
	assert.Equal(t, 255, res.MaxDifference)
	assert.Equal(t, red, res.Diff.RGBAAt(3, 3))
}

func TestCompare_Tolerance(t *testing.T) {
	near := color.RGBA{253, 1, 0, 255}
	res, err := Compare(solid(4, 4, red), solid(4, 4, near), Options{Tolerance: 2})
	require.NoError(t, err)
	assert.True(t, res.Match)
	assert.Equal(t, 2, res.MaxDifference)

	res, err = Compare(solid(4, 4, red), solid(4, 4, near), Options{Tolerance: 1})
	require.NoError(t, err)
	assert.False(t, res.Match)
}

func TestCompare_FuzzyRadius(t *testing.T) {
	actual := solid(10, 10, color.RGBA{255, 255, 255, 255})
	expected := solid(10, 10, color.RGBA{255, 255, 255, 255})
	actual.SetRGBA(5, 5, blue)
	expected.SetRGBA(6, 5, blue)

	res, err := Compare(actual, expected, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.DifferentPixels)

	res, err = Compare(actual, expected, Options{FuzzyRadius: 1})
	require.NoError(t, err)
	assert.True(t, res.Match)
}

func TestCompare_MaxDifferentPercent(t *testing.T) {
	actual := solid(10, 10, red)
	actual.SetRGBA(0, 0, blue)

	res, err := Compare(actual, solid(10, 10, red), Options{MaxDifferentPercent: 1})
	require.NoError(t, err)
	assert.True(t, res.Match)
	assert.InDelta(t, 1.0, res.DifferentPercent(), 1e-9)

	res, err = Compare(actual, solid(10, 10, red), Options{MaxDifferentPercent: 0.5})
	require.NoError(t, err)
	assert.False(t, res.Match)
}

func TestCompare_SizeMismatch(t *testing.T) {
	_, err := Compare(solid(10, 10, red), solid(5, 10, red), DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image sizes differ")
}

func TestCompare_OffsetBounds(t *testing.T) {
	sub := solid(20, 20, red).SubImage(image.Rect(10, 10, 20, 20))
	res, err := Compare(solid(10, 10, red), sub, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, res.Match)
}

func TestCompareFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	require.NoError(t, SavePNG(solid(3, 3, red), a))
	require.NoError(t, SavePNG(solid(3, 3, blue), b))

	res, err := CompareFiles(a, a, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, res.Match)

	res, err = CompareFiles(a, b, DefaultOptions())
	require.NoError(t, err)
	assert.False(t, res.Match)

	_, err = CompareFiles(a, filepath.Join(dir, "missing.png"), DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.png")
}
