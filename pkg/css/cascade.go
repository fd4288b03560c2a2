package css

import (
	"sort"

	"boxwalk/pkg/html"
)

// inheritedProperties flow from parent to child unless the child sets them.
var inheritedProperties = []string{
	"color",
	"font-family",
	"font-size",
	"font-style",
	"font-weight",
	"line-height",
	"visibility",
	"white-space",
	"text-align",
}

type uaRule struct {
	tags  []string
	decls string
}

// userAgentSheet holds the default presentation that is not a display value.
var userAgentSheet = []uaRule{
	{[]string{"body"}, "margin: 8px"},
	{[]string{"p", "ul", "ol", "dl", "pre"}, "margin-top: 1em; margin-bottom: 1em"},
	{[]string{"blockquote", "figure"}, "margin: 1em 40px"},
	{[]string{"ul", "ol"}, "padding-left: 40px"},
	{[]string{"dd"}, "margin-left: 40px"},
	{[]string{"h1"}, "font-size: 2em; margin-top: 0.67em; margin-bottom: 0.67em"},
	{[]string{"h2"}, "font-size: 1.5em; margin-top: 0.83em; margin-bottom: 0.83em"},
	{[]string{"h3"}, "font-size: 1.17em; margin-top: 1em; margin-bottom: 1em"},
	{[]string{"h4"}, "margin-top: 1.33em; margin-bottom: 1.33em"},
	{[]string{"h5"}, "font-size: 0.83em; margin-top: 1.67em; margin-bottom: 1.67em"},
	{[]string{"h6"}, "font-size: 0.67em; margin-top: 2.33em; margin-bottom: 2.33em"},
	{[]string{"h1", "h2", "h3", "h4", "h5", "h6", "b", "strong", "th"}, "font-weight: bold"},
	{[]string{"i", "em", "cite", "var", "dfn"}, "font-style: italic"},
	{[]string{"pre", "code", "kbd", "samp", "tt"}, "font-family: monospace"},
	{[]string{"pre"}, "white-space: pre"},
	{[]string{"center"}, "text-align: center"},
	{[]string{"small"}, "font-size: smaller"},
	{[]string{"big"}, "font-size: larger"},
	{[]string{"a"}, "color: #0645ad; text-decoration: underline"},
	{[]string{"u", "ins"}, "text-decoration: underline"},
	{[]string{"s", "strike", "del"}, "text-decoration: line-through"},
	{[]string{"hr"}, "border: 1px inset gray; margin-top: 0.5em; margin-bottom: 0.5em"},
}

var userAgentByTag = func() map[string][]Declaration {
	m := make(map[string][]Declaration)
	for _, r := range userAgentSheet {
		decls := parseDeclarations(r.decls)
		for _, tag := range r.tags {
			m[tag] = append(m[tag], decls...)
		}
	}
	return m
}()

// applyUserAgentStyles applies default browser styles based on element type.
func applyUserAgentStyles(node *html.Node, style *Style) {
	switch {
	case html.IsHiddenTag(node.TagName):
		style.Set("display", "none")
	case html.IsBlockLevelTag(node.TagName):
		style.Set("display", "block")
	default:
		style.Set("display", "inline")
	}
	for _, d := range userAgentByTag[node.TagName] {
		style.Set(d.Property, d.Value)
	}
}

// Styles maps elements to their computed styles. It implements layout's style
// source: text nodes read their parent element's style and unknown nodes get
// initial values.
type Styles map[*html.Node]*Style

// StyleOf returns the computed style for a DOM node.
func (s Styles) StyleOf(node *html.Node) ComputedStyle {
	if node != nil && node.Type == html.TextNode {
		node = node.Parent
	}
	if st, ok := s[node]; ok {
		return st
	}
	return (*Style)(nil)
}

type matchedRule struct {
	rule  Rule
	sheet int
}

// ComputeStyle computes the cascaded style of an element against its parent's
// computed style. parent may be nil for the root.
func ComputeStyle(node *html.Node, stylesheets []*Stylesheet, parent *Style) *Style {
	finalStyle := NewStyle()

	for _, prop := range inheritedProperties {
		if val, ok := parent.Lookup(prop); ok {
			finalStyle.Set(prop, val)
		}
	}

	applyUserAgentStyles(node, finalStyle)

	var matched []matchedRule
	for i, sheet := range stylesheets {
		for _, rule := range FindMatchingRules(node, sheet) {
			matched = append(matched, matchedRule{rule: rule, sheet: i})
		}
	}
	// Lower specificity first; among equals, earlier sheets and rules first.
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.rule.Selector.Specificity != b.rule.Selector.Specificity {
			return a.rule.Selector.Specificity < b.rule.Selector.Specificity
		}
		if a.sheet != b.sheet {
			return a.sheet < b.sheet
		}
		return a.rule.Order < b.rule.Order
	})
	for _, m := range matched {
		for _, d := range m.rule.Declarations {
			applyDeclaration(finalStyle, parent, d)
		}
	}

	// Inline styles win over every stylesheet rule
	if styleAttr, ok := node.GetAttribute("style"); ok {
		for _, d := range parseDeclarations(styleAttr) {
			applyDeclaration(finalStyle, parent, d)
		}
	}

	parentFontSize := 16.0
	if parent != nil {
		parentFontSize = FontSize(parent)
	}
	normalize(finalStyle, parentFontSize, rootFontSize(parent))
	return finalStyle
}

// applyDeclaration handles the inherit and initial keywords.
func applyDeclaration(style, parent *Style, d Declaration) {
	switch d.Value {
	case "inherit":
		if val, ok := parent.Lookup(d.Property); ok {
			style.Set(d.Property, val)
		} else {
			delete(style.Properties, d.Property)
		}
	case "initial":
		delete(style.Properties, d.Property)
	default:
		style.Set(d.Property, d.Value)
	}
}

// rootFontSize is the font-size rem units resolve against: the root element's
// computed size, recorded on every style below it. The root itself resolves
// rem against the initial size.
func rootFontSize(parent *Style) float64 {
	if v, ok := parent.Lookup(rootFontSizeKey); ok {
		if px, ok := ParseLength(v); ok {
			return px
		}
	}
	return 16
}

// rootFontSizeKey is not a CSS property; layout never reads it.
const rootFontSizeKey = "-boxwalk-root-font-size"

// ApplyStylesToDocument parses the document's stylesheets and computes the
// style of every element.
func ApplyStylesToDocument(doc *html.Document) Styles {
	stylesheets := make([]*Stylesheet, 0, len(doc.Stylesheets))
	for _, cssText := range doc.Stylesheets {
		stylesheet, err := ParseStylesheet(cssText)
		if err == nil {
			stylesheets = append(stylesheets, stylesheet)
		}
	}
	return ComputeStyles(doc.Root, stylesheets)
}

// ComputeStyles computes styles for every element below root.
func ComputeStyles(root *html.Node, stylesheets []*Stylesheet) Styles {
	styles := make(Styles)
	applyStylesToNode(root, stylesheets, styles, nil)
	return styles
}

func applyStylesToNode(node *html.Node, stylesheets []*Stylesheet, styles Styles, parent *Style) {
	if !node.IsElement() {
		return
	}
	current := parent
	if node.TagName != html.DocumentTag {
		current = ComputeStyle(node, stylesheets, parent)
		rootSize := FontSize(current)
		if parent != nil {
			rootSize = rootFontSize(parent)
		}
		current.Set(rootFontSizeKey, formatPx(rootSize))
		styles[node] = current
	}
	for _, child := range node.Children {
		applyStylesToNode(child, stylesheets, styles, current)
	}
}
