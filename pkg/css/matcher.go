package css

import (
	"strings"

	"boxwalk/pkg/html"
)

// MatchesSelector returns true if the element matches the complex selector.
func MatchesSelector(node *html.Node, selector Selector) bool {
	if !node.IsElement() || node.TagName == html.DocumentTag {
		return false
	}
	if len(selector.Parts) == 0 {
		return false
	}
	// Start matching from the rightmost part (the subject element)
	return matchesFrom(node, selector, len(selector.Parts)-1)
}

func matchesFrom(node *html.Node, selector Selector, partIndex int) bool {
	if !matchesSelectorPart(node, selector.Parts[partIndex]) {
		return false
	}
	if partIndex == 0 {
		return true
	}

	switch selector.Combinators[partIndex-1] {
	case DescendantCombinator:
		for ancestor := node.Parent; isStyledElement(ancestor); ancestor = ancestor.Parent {
			if matchesFrom(ancestor, selector, partIndex-1) {
				return true
			}
		}
	case ChildCombinator:
		if isStyledElement(node.Parent) {
			return matchesFrom(node.Parent, selector, partIndex-1)
		}
	}
	return false
}

// isStyledElement excludes the synthetic document node from ancestor walks.
func isStyledElement(n *html.Node) bool {
	return n.IsElement() && n.TagName != html.DocumentTag
}

func matchesSelectorPart(node *html.Node, part SelectorPart) bool {
	if part.Element != "" && part.Element != "*" && node.TagName != part.Element {
		return false
	}
	if part.ID != "" && node.ID() != part.ID {
		return false
	}
	for _, cls := range part.Classes {
		if !node.HasClass(cls) {
			return false
		}
	}
	for _, attr := range part.Attributes {
		if !matchesAttributeSelector(node, attr) {
			return false
		}
	}
	return true
}

func matchesAttributeSelector(node *html.Node, attr AttributeSelector) bool {
	value, ok := node.GetAttribute(attr.Name)
	if !ok {
		return false
	}
	switch attr.Operator {
	case "":
		return true
	case "=":
		return value == attr.Value
	case "^=":
		return attr.Value != "" && strings.HasPrefix(value, attr.Value)
	case "$=":
		return attr.Value != "" && strings.HasSuffix(value, attr.Value)
	case "*=":
		return attr.Value != "" && strings.Contains(value, attr.Value)
	case "~=":
		for _, word := range strings.Fields(value) {
			if word == attr.Value {
				return true
			}
		}
		return false
	case "|=":
		return value == attr.Value || strings.HasPrefix(value, attr.Value+"-")
	}
	return false
}

// FindMatchingRules returns all rules of the stylesheet that match the node,
// in stylesheet order.
func FindMatchingRules(node *html.Node, stylesheet *Stylesheet) []Rule {
	matches := make([]Rule, 0)
	for _, rule := range stylesheet.Rules {
		if MatchesSelector(node, rule.Selector) {
			matches = append(matches, rule)
		}
	}
	return matches
}
