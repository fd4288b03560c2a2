package css

import (
	"strconv"
	"strings"
)

// ComputedStyle is the read-only view of an element's style that layout and
// painting consume. Get never fails: unset properties report their initial value.
type ComputedStyle interface {
	Get(property string) string
}

type Style struct {
	Properties map[string]string
}

func NewStyle() *Style {
	return &Style{Properties: make(map[string]string)}
}

// Get returns the property's value, or its initial value when unset.
func (s *Style) Get(property string) string {
	if s != nil {
		if val, ok := s.Properties[property]; ok {
			return val
		}
	}
	return InitialValue(property)
}

// Lookup returns the raw value and whether the property was set at all.
func (s *Style) Lookup(property string) (string, bool) {
	if s == nil {
		return "", false
	}
	val, ok := s.Properties[property]
	return val, ok
}

func (s *Style) Set(property, value string) {
	s.Properties[property] = value
}

// Clone returns an independent copy.
func (s *Style) Clone() *Style {
	c := &Style{Properties: make(map[string]string, len(s.Properties))}
	for k, v := range s.Properties {
		c.Properties[k] = v
	}
	return c
}

var initialValues = map[string]string{
	"display":             "inline",
	"width":               "auto",
	"height":              "auto",
	"margin-top":          "0px",
	"margin-right":        "0px",
	"margin-bottom":       "0px",
	"margin-left":         "0px",
	"padding-top":         "0px",
	"padding-right":       "0px",
	"padding-bottom":      "0px",
	"padding-left":        "0px",
	"border-top-width":    "medium",
	"border-right-width":  "medium",
	"border-bottom-width": "medium",
	"border-left-width":   "medium",
	"border-top-style":    "none",
	"border-right-style":  "none",
	"border-bottom-style": "none",
	"border-left-style":   "none",
	"border-top-color":    "currentcolor",
	"border-right-color":  "currentcolor",
	"border-bottom-color": "currentcolor",
	"border-left-color":   "currentcolor",
	"background-color":    "transparent",
	"color":               "black",
	"font-family":         "sans-serif",
	"font-size":           "16px",
	"font-style":          "normal",
	"font-weight":         "normal",
	"line-height":         "normal",
	"text-align":          "left",
	"text-decoration":     "none",
	"visibility":          "visible",
	"white-space":         "normal",
	"float":               "none",
	"clear":               "none",
	"position":            "static",
}

// InitialValue returns the CSS initial value of a property, or "" for
// properties this engine does not know.
func InitialValue(property string) string {
	return initialValues[property]
}

// ParseLength parses an absolute pixel length ("100px" or "100").
func ParseLength(val string) (float64, bool) {
	val = strings.TrimSpace(val)
	val = strings.TrimSuffix(val, "px")
	num, err := strconv.ParseFloat(val, 64)
	if err != nil || !isFinite(num) {
		return 0, false
	}
	return num, true
}

// Length is a resolved length or percentage.
type Length struct {
	Value   float64
	Percent bool
}

// Resolve returns the length in pixels, treating percentages as relative to base.
func (l Length) Resolve(base float64) float64 {
	if l.Percent {
		return l.Value * base / 100
	}
	return l.Value
}

// ParseLengthOrPercent accepts px lengths, bare numbers and percentages.
// Keywords such as "auto" are rejected.
func ParseLengthOrPercent(val string) (Length, bool) {
	val = strings.TrimSpace(val)
	if strings.HasSuffix(val, "%") {
		num, err := strconv.ParseFloat(strings.TrimSuffix(val, "%"), 64)
		if err != nil || !isFinite(num) {
			return Length{}, false
		}
		return Length{Value: num, Percent: true}, true
	}
	num, ok := ParseLength(val)
	if !ok {
		return Length{}, false
	}
	return Length{Value: num}, true
}

// BorderWidth resolves a border width value, including the thin, medium and
// thick keywords.
func BorderWidth(val string) float64 {
	switch strings.TrimSpace(val) {
	case "thin":
		return 1
	case "medium":
		return 3
	case "thick":
		return 5
	}
	if w, ok := ParseLength(val); ok && w > 0 {
		return w
	}
	return 0
}

// BorderVisible reports whether a border style paints anything.
func BorderVisible(style string) bool {
	switch strings.TrimSpace(style) {
	case "", "none", "hidden":
		return false
	}
	return true
}

// FontSize returns the resolved font-size of s in px.
func FontSize(s ComputedStyle) float64 {
	if size, ok := ParseLength(s.Get("font-size")); ok && size > 0 {
		return size
	}
	return 16
}

// LineHeight returns the resolved line-height of s in px.
func LineHeight(s ComputedStyle) float64 {
	fs := FontSize(s)
	val := s.Get("line-height")
	if val == "" || val == "normal" {
		return fs * 1.2
	}
	if px, ok := resolveLineHeight(val, fs); ok {
		return px
	}
	return fs * 1.2
}

func ParseInlineStyle(styleAttr string) *Style {
	style := NewStyle()
	for _, decl := range parseDeclarations(styleAttr) {
		style.Set(decl.Property, decl.Value)
	}
	return style
}

// Declaration is a single longhand property assignment.
type Declaration struct {
	Property string
	Value    string
}

// expandShorthand expands shorthand CSS properties into longhands.
func expandShorthand(property, value string) []Declaration {
	switch property {
	case "margin", "padding":
		return expandBoxProperty(property+"-%s", value)
	case "border-width":
		return expandBoxProperty("border-%s-width", value)
	case "border-style":
		return expandBoxProperty("border-%s-style", value)
	case "border-color":
		return expandBoxProperty("border-%s-color", value)
	case "border":
		var out []Declaration
		for _, side := range sides {
			out = append(out, expandBorderSide(side, value)...)
		}
		return out
	case "border-top", "border-right", "border-bottom", "border-left":
		return expandBorderSide(strings.TrimPrefix(property, "border-"), value)
	case "background":
		for _, part := range splitValue(value) {
			if _, ok := ParseColor(part); ok {
				return []Declaration{{"background-color", part}}
			}
		}
		return nil
	}
	return []Declaration{{property, value}}
}

var sides = [4]string{"top", "right", "bottom", "left"}

// expandBoxProperty expands the one-to-four value box shorthand.
// Supports: "10px" (all), "10px 20px" (vertical horizontal),
// "10px 20px 30px" (top h bottom), "10px 20px 30px 40px" (t r b l).
func expandBoxProperty(pattern, value string) []Declaration {
	parts := splitValue(value)
	var top, right, bottom, left string
	switch len(parts) {
	case 1:
		top, right, bottom, left = parts[0], parts[0], parts[0], parts[0]
	case 2:
		top, right, bottom, left = parts[0], parts[1], parts[0], parts[1]
	case 3:
		top, right, bottom, left = parts[0], parts[1], parts[2], parts[1]
	case 4:
		top, right, bottom, left = parts[0], parts[1], parts[2], parts[3]
	default:
		return nil
	}
	name := func(side string) string { return strings.Replace(pattern, "%s", side, 1) }
	return []Declaration{
		{name("top"), top},
		{name("right"), right},
		{name("bottom"), bottom},
		{name("left"), left},
	}
}

// expandBorderSide expands "1px solid black" for one side. Omitted parts are
// reset to their initial values.
func expandBorderSide(side, value string) []Declaration {
	width, style, color := "medium", "none", "currentcolor"
	for _, part := range splitValue(value) {
		switch {
		case isBorderStyleKeyword(part):
			style = part
		case part == "thin" || part == "medium" || part == "thick":
			width = part
		case looksLikeLength(part):
			width = part
		default:
			color = part
		}
	}
	return []Declaration{
		{"border-" + side + "-width", width},
		{"border-" + side + "-style", style},
		{"border-" + side + "-color", color},
	}
}

func isBorderStyleKeyword(s string) bool {
	switch s {
	case "none", "hidden", "solid", "dotted", "dashed", "double", "groove", "ridge", "inset", "outset":
		return true
	}
	return false
}

func looksLikeLength(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	return (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+'
}

// splitValue splits a value on whitespace that is not inside parentheses, so
// "1px solid rgb(0, 0, 0)" yields three parts.
func splitValue(value string) []string {
	var parts []string
	depth, start := 0, -1
	for i, r := range value {
		switch {
		case r == '(':
			depth++
		case r == ')':
			if depth > 0 {
				depth--
			}
		case depth == 0 && (r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f'):
			if start >= 0 {
				parts = append(parts, value[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		parts = append(parts, value[start:])
	}
	return parts
}
