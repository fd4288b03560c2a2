package css

import (
	"math"
	"strconv"
	"strings"
)

// lengthProperties are normalised to px by the cascade.
var lengthProperties = map[string]bool{
	"width":               true,
	"height":              true,
	"min-width":           true,
	"min-height":          true,
	"max-width":           true,
	"max-height":          true,
	"margin-top":          true,
	"margin-right":        true,
	"margin-bottom":       true,
	"margin-left":         true,
	"padding-top":         true,
	"padding-right":       true,
	"padding-bottom":      true,
	"padding-left":        true,
	"border-top-width":    true,
	"border-right-width":  true,
	"border-bottom-width": true,
	"border-left-width":   true,
	"top":                 true,
	"right":               true,
	"bottom":              true,
	"left":                true,
	"text-indent":         true,
	"letter-spacing":      true,
	"word-spacing":        true,
}

// Absolute unit sizes in px.
var unitPx = map[string]float64{
	"px": 1,
	"pt": 96.0 / 72,
	"pc": 16,
	"in": 96,
	"cm": 96 / 2.54,
	"mm": 96 / 25.4,
	"q":  96 / 101.6,
}

var fontSizeKeywords = map[string]float64{
	"xx-small": 9,
	"x-small":  10,
	"small":    13,
	"medium":   16,
	"large":    18,
	"x-large":  24,
	"xx-large": 32,
}

// splitUnit splits "12.5em" into 12.5 and "em".
func splitUnit(val string) (float64, string, bool) {
	val = strings.TrimSpace(strings.ToLower(val))
	i := len(val)
	for i > 0 {
		c := val[i-1]
		if (c >= 'a' && c <= 'z') || c == '%' {
			i--
			continue
		}
		break
	}
	num, err := strconv.ParseFloat(val[:i], 64)
	if err != nil || !isFinite(num) {
		return 0, "", false
	}
	return num, val[i:], true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// finitePx rejects results that overflowed during unit conversion.
func finitePx(v float64) (float64, bool) {
	if !isFinite(v) {
		return 0, false
	}
	return v, true
}

// toPx converts an absolute or font-relative length to px. Percentages and
// keywords are not handled.
func toPx(val string, fontSize, rootFontSize float64) (float64, bool) {
	num, unit, ok := splitUnit(val)
	if !ok {
		return 0, false
	}
	switch unit {
	case "":
		return num, true
	case "em":
		return finitePx(num * fontSize)
	case "rem":
		return finitePx(num * rootFontSize)
	case "ex", "ch":
		return finitePx(num * fontSize / 2)
	}
	if f, ok := unitPx[unit]; ok {
		return finitePx(num * f)
	}
	return 0, false
}

func formatPx(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// resolveFontSize computes a font-size in px relative to the parent's size.
func resolveFontSize(val string, parentSize, rootFontSize float64) (float64, bool) {
	val = strings.TrimSpace(strings.ToLower(val))
	if px, ok := fontSizeKeywords[val]; ok {
		return px, true
	}
	switch val {
	case "smaller":
		return parentSize / 1.2, true
	case "larger":
		return parentSize * 1.2, true
	}
	if strings.HasSuffix(val, "%") {
		num, err := strconv.ParseFloat(strings.TrimSuffix(val, "%"), 64)
		if err != nil {
			return 0, false
		}
		return finitePx(parentSize * num / 100)
	}
	return toPx(val, parentSize, rootFontSize)
}

// resolveLineHeight turns normal, numbers, percentages and lengths into px.
func resolveLineHeight(val string, fontSize float64) (float64, bool) {
	val = strings.TrimSpace(strings.ToLower(val))
	if val == "normal" {
		return fontSize * 1.2, true
	}
	num, unit, ok := splitUnit(val)
	if !ok {
		return 0, false
	}
	switch unit {
	case "":
		return finitePx(num * fontSize)
	case "%":
		return finitePx(num * fontSize / 100)
	}
	return toPx(val, fontSize, fontSize)
}

// normalize rewrites a cascaded style in place: font-size against the parent,
// line-height and font-relative lengths against the element's own font-size,
// and display keywords this engine does not lay out degraded to block.
func normalize(s *Style, parentFontSize, rootFontSize float64) {
	fontSize := parentFontSize
	if val, ok := s.Lookup("font-size"); ok {
		if px, ok := resolveFontSize(val, parentFontSize, rootFontSize); ok && px >= 0 {
			fontSize = px
		}
	}
	s.Set("font-size", formatPx(fontSize))

	if val, ok := s.Lookup("line-height"); ok {
		if px, ok := resolveLineHeight(val, fontSize); ok {
			s.Set("line-height", formatPx(px))
		} else {
			delete(s.Properties, "line-height")
		}
	}

	for prop, val := range s.Properties {
		if !lengthProperties[prop] {
			continue
		}
		v := strings.TrimSpace(val)
		if strings.HasSuffix(v, "%") {
			continue
		}
		if px, ok := toPx(v, fontSize, rootFontSize); ok {
			s.Set(prop, formatPx(px))
		}
	}

	if display, ok := s.Lookup("display"); ok {
		s.Set("display", normalizeDisplay(display))
	}
}

func normalizeDisplay(display string) string {
	switch d := strings.TrimSpace(strings.ToLower(display)); d {
	case "block", "inline", "inline-block", "none":
		return d
	}
	return "block"
}
