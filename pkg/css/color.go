package css

import (
	"strconv"
	"strings"
)

// Color is an sRGB colour with straight (non-premultiplied) alpha in [0, 1].
type Color struct {
	R, G, B uint8
	A       float64
}

var (
	Black       = Color{0, 0, 0, 1}
	White       = Color{255, 255, 255, 1}
	Transparent = Color{}
)

// RGBA implements image/color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	alpha := c.A
	if alpha < 0 {
		alpha = 0
	} else if alpha > 1 {
		alpha = 1
	}
	a = uint32(alpha*0xffff + 0.5)
	r = uint32(c.R) * 0x101 * a / 0xffff
	g = uint32(c.G) * 0x101 * a / 0xffff
	b = uint32(c.B) * 0x101 * a / 0xffff
	return r, g, b, a
}

// IsTransparent reports whether painting c would have no effect.
func (c Color) IsTransparent() bool { return c.A <= 0 }

var namedColors = map[string]Color{
	"black":   {0, 0, 0, 1},
	"white":   {255, 255, 255, 1},
	"red":     {255, 0, 0, 1},
	"green":   {0, 128, 0, 1},
	"blue":    {0, 0, 255, 1},
	"yellow":  {255, 255, 0, 1},
	"cyan":    {0, 255, 255, 1},
	"aqua":    {0, 255, 255, 1},
	"magenta": {255, 0, 255, 1},
	"fuchsia": {255, 0, 255, 1},
	"gray":    {128, 128, 128, 1},
	"grey":    {128, 128, 128, 1},
	"silver":  {192, 192, 192, 1},
	"maroon":  {128, 0, 0, 1},
	"olive":   {128, 128, 0, 1},
	"lime":    {0, 255, 0, 1},
	"navy":    {0, 0, 128, 1},
	"teal":    {0, 128, 128, 1},
	"purple":  {128, 0, 128, 1},
	"orange":  {255, 165, 0, 1},
	"pink":    {255, 192, 203, 1},
	"brown":   {165, 42, 42, 1},
	"gold":    {255, 215, 0, 1},
	"indigo":  {75, 0, 130, 1},
	"violet":  {238, 130, 238, 1},
	"coral":   {255, 127, 80, 1},
	"salmon":  {250, 128, 114, 1},
	"khaki":   {240, 230, 140, 1},
	"crimson": {220, 20, 60, 1},

	"lightgray":  {211, 211, 211, 1},
	"lightgrey":  {211, 211, 211, 1},
	"darkgray":   {169, 169, 169, 1},
	"darkgrey":   {169, 169, 169, 1},
	"lightblue":  {173, 216, 230, 1},
	"darkblue":   {0, 0, 139, 1},
	"lightgreen": {144, 238, 144, 1},
	"darkgreen":  {0, 100, 0, 1},
	"darkred":    {139, 0, 0, 1},
	"whitesmoke": {245, 245, 245, 1},
	"beige":      {245, 245, 220, 1},
	"ivory":      {255, 255, 240, 1},
	"tomato":     {255, 99, 71, 1},
	"steelblue":  {70, 130, 180, 1},
	"skyblue":    {135, 206, 235, 1},

	"transparent": {0, 0, 0, 0},
}

// ParseColor parses named colours, #rgb, #rgba, #rrggbb, #rrggbbaa, rgb() and
// rgba(). It does not resolve currentcolor; see ResolveColor.
func ParseColor(colorStr string) (Color, bool) {
	colorStr = strings.ToLower(strings.TrimSpace(colorStr))
	if c, ok := namedColors[colorStr]; ok {
		return c, true
	}
	if strings.HasPrefix(colorStr, "#") {
		return parseHexColor(colorStr[1:])
	}
	if strings.HasPrefix(colorStr, "rgb") {
		return parseRGBFunc(colorStr)
	}
	return Color{}, false
}

// ResolveColor parses value, substituting the style's color for currentcolor.
func ResolveColor(value string, s ComputedStyle) (Color, bool) {
	if strings.EqualFold(strings.TrimSpace(value), "currentcolor") {
		return ParseColor(s.Get("color"))
	}
	return ParseColor(value)
}

func parseHexColor(hex string) (Color, bool) {
	expand := func(s string) string {
		var sb strings.Builder
		for _, r := range s {
			sb.WriteRune(r)
			sb.WriteRune(r)
		}
		return sb.String()
	}
	switch len(hex) {
	case 3, 4:
		hex = expand(hex)
	case 6, 8:
	default:
		return Color{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, false
	}
	if len(hex) == 6 {
		return Color{uint8(v >> 16), uint8(v >> 8), uint8(v), 1}, true
	}
	return Color{uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), float64(uint8(v)) / 255}, true
}

func parseRGBFunc(s string) (Color, bool) {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return Color{}, false
	}
	name := s[:open]
	if name != "rgb" && name != "rgba" {
		return Color{}, false
	}
	body := s[open+1 : len(s)-1]
	body = strings.NewReplacer(",", " ", "/", " ").Replace(body)
	args := strings.Fields(body)
	if len(args) != 3 && len(args) != 4 {
		return Color{}, false
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, ok := parseChannel(args[i])
		if !ok {
			return Color{}, false
		}
		ch[i] = v
	}
	alpha := 1.0
	if len(args) == 4 {
		a, ok := parseAlpha(args[3])
		if !ok {
			return Color{}, false
		}
		alpha = a
	}
	return Color{ch[0], ch[1], ch[2], alpha}, true
}

func parseChannel(s string) (uint8, bool) {
	pct := strings.HasSuffix(s, "%")
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil || !isFinite(v) {
		return 0, false
	}
	if pct {
		v = v * 255 / 100
	}
	return uint8(clamp(v+0.5, 0, 255)), true
}

func parseAlpha(s string) (float64, bool) {
	pct := strings.HasSuffix(s, "%")
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil || !isFinite(v) {
		return 0, false
	}
	if pct {
		v /= 100
	}
	return clamp(v, 0, 1), true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
