package css

import (
	"fmt"
	"strings"
)

// SelectorPart is one compound selector: an optional type plus ids, classes
// and attribute conditions that must all hold for the same element.
type SelectorPart struct {
	Element    string // tag name, "*" or ""
	ID         string
	Classes    []string
	Attributes []AttributeSelector
}

type AttributeSelector struct {
	Name     string
	Operator string // "", "=", "~=", "^=", "$=", "*=", "|="
	Value    string
}

type Combinator int

const (
	DescendantCombinator Combinator = iota // a b
	ChildCombinator                        // a > b
)

// Selector is a complex selector. Combinators[i] joins Parts[i] and Parts[i+1].
type Selector struct {
	Raw         string
	Parts       []SelectorPart
	Combinators []Combinator
	Specificity int
}

// Rule is one selector of a rule set with its expanded declarations. Order is
// the rule's position in the stylesheet; ties in specificity go to the later rule.
type Rule struct {
	Selector     Selector
	Declarations []Declaration
	Order        int
}

type Stylesheet struct {
	Rules []Rule
}

// ParseStylesheet parses CSS text. Malformed rule sets and at-rules are skipped.
func ParseStylesheet(css string) (*Stylesheet, error) {
	sheet := &Stylesheet{Rules: make([]Rule, 0)}
	css = stripComments(css)
	order := 0
	for _, block := range splitRules(css) {
		if strings.HasPrefix(strings.TrimSpace(block.prelude), "@") {
			continue
		}
		decls := parseDeclarations(block.body)
		for _, raw := range splitSelectorList(block.prelude) {
			sel, err := ParseSelector(raw)
			if err != nil {
				continue
			}
			sheet.Rules = append(sheet.Rules, Rule{Selector: sel, Declarations: decls, Order: order})
			order++
		}
	}
	return sheet, nil
}

type ruleBlock struct {
	prelude string
	body    string
}

// splitRules splits CSS into prelude/body pairs at top-level braces. Statement
// at-rules such as @import end at a top-level semicolon and are dropped.
func splitRules(css string) []ruleBlock {
	var blocks []ruleBlock
	depth := 0
	start := 0
	bodyStart := -1
	var quote rune
	for i, ch := range css {
		if quote != 0 {
			if ch == quote {
				quote = 0
			}
			continue
		}
		switch ch {
		case '"', '\'':
			quote = ch
		case '{':
			if depth == 0 {
				bodyStart = i + 1
			}
			depth++
		case '}':
			if depth == 0 {
				start = i + 1
				continue
			}
			depth--
			if depth == 0 {
				blocks = append(blocks, ruleBlock{
					prelude: strings.TrimSpace(css[start : bodyStart-1]),
					body:    css[bodyStart:i],
				})
				start = i + 1
			}
		case ';':
			if depth == 0 {
				start = i + 1
			}
		}
	}
	// An unclosed trailing block is dropped.
	return blocks
}

// stripComments removes /* */ comments outside string literals. An
// unterminated comment runs to the end of the input.
func stripComments(css string) string {
	var sb strings.Builder
	sb.Grow(len(css))
	var quote byte
	for i := 0; i < len(css); i++ {
		c := css[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			sb.WriteByte(c)
			continue
		}
		if c == '"' || c == '\'' {
			quote = c
			sb.WriteByte(c)
			continue
		}
		if c == '/' && i+1 < len(css) && css[i+1] == '*' {
			end := strings.Index(css[i+2:], "*/")
			if end < 0 {
				break
			}
			i += 2 + end + 1
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

func splitSelectorList(prelude string) []string {
	var out []string
	for _, s := range strings.Split(prelude, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ParseSelector parses a complex selector built from type, universal, id,
// class and attribute selectors joined by descendant or child combinators.
// Pseudo-classes, pseudo-elements and sibling combinators are rejected.
func ParseSelector(raw string) (Selector, error) {
	sel := Selector{Raw: strings.TrimSpace(raw)}
	s := sel.Raw
	if s == "" {
		return sel, fmt.Errorf("empty selector")
	}
	pendingChild := false
	i := 0
	for i < len(s) {
		switch c := s[i]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f':
			i++
			continue
		case c == '>':
			if len(sel.Parts) == 0 || pendingChild {
				return sel, fmt.Errorf("selector %q: misplaced '>'", raw)
			}
			pendingChild = true
			i++
			continue
		case c == '+' || c == '~':
			return sel, fmt.Errorf("selector %q: sibling combinators are not supported", raw)
		}

		part, n, err := parseCompound(s[i:])
		if err != nil {
			return sel, fmt.Errorf("selector %q: %w", raw, err)
		}
		if len(sel.Parts) > 0 {
			comb := DescendantCombinator
			if pendingChild {
				comb = ChildCombinator
			}
			sel.Combinators = append(sel.Combinators, comb)
		}
		pendingChild = false
		sel.Parts = append(sel.Parts, part)
		i += n
	}
	if pendingChild || len(sel.Parts) == 0 {
		return sel, fmt.Errorf("selector %q: dangling combinator", raw)
	}
	sel.Specificity = specificity(sel.Parts)
	return sel, nil
}

func parseCompound(s string) (SelectorPart, int, error) {
	var part SelectorPart
	i := 0
	if i < len(s) && s[i] == '*' {
		part.Element = "*"
		i++
	} else if n := identLen(s[i:]); n > 0 {
		part.Element = strings.ToLower(s[i : i+n])
		i += n
	}
	for i < len(s) {
		switch s[i] {
		case '#':
			n := identLen(s[i+1:])
			if n == 0 {
				return part, i, fmt.Errorf("empty id")
			}
			part.ID = s[i+1 : i+1+n]
			i += 1 + n
		case '.':
			n := identLen(s[i+1:])
			if n == 0 {
				return part, i, fmt.Errorf("empty class")
			}
			part.Classes = append(part.Classes, s[i+1:i+1+n])
			i += 1 + n
		case '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return part, i, fmt.Errorf("unclosed attribute selector")
			}
			attr, err := parseAttributeSelector(s[i+1 : i+end])
			if err != nil {
				return part, i, err
			}
			part.Attributes = append(part.Attributes, attr)
			i += end + 1
		case ':':
			return part, i, fmt.Errorf("pseudo selectors are not supported")
		case ' ', '\t', '\n', '\r', '\f', '>', '+', '~':
			return part, i, nil
		default:
			return part, i, fmt.Errorf("unexpected %q", s[i])
		}
	}
	if i == 0 {
		return part, 0, fmt.Errorf("empty compound selector")
	}
	return part, i, nil
}

func parseAttributeSelector(body string) (AttributeSelector, error) {
	body = strings.TrimSpace(body)
	for _, op := range []string{"~=", "^=", "$=", "*=", "|=", "="} {
		if idx := strings.Index(body, op); idx > 0 {
			val := strings.TrimSpace(body[idx+len(op):])
			val = strings.Trim(val, `"'`)
			return AttributeSelector{
				Name:     strings.ToLower(strings.TrimSpace(body[:idx])),
				Operator: op,
				Value:    val,
			}, nil
		}
	}
	if identLen(body) != len(body) || body == "" {
		return AttributeSelector{}, fmt.Errorf("bad attribute selector [%s]", body)
	}
	return AttributeSelector{Name: strings.ToLower(body)}, nil
}

func identLen(s string) int {
	n := 0
	for n < len(s) {
		c := s[n]
		if c == '-' || c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
			(c >= '0' && c <= '9' && n > 0) || c >= 0x80 {
			n++
			continue
		}
		break
	}
	return n
}

// specificity packs (ids, classes+attributes, types) as a*100 + b*10 + c.
func specificity(parts []SelectorPart) int {
	spec := 0
	for _, p := range parts {
		if p.ID != "" {
			spec += 100
		}
		spec += 10 * (len(p.Classes) + len(p.Attributes))
		if p.Element != "" && p.Element != "*" {
			spec++
		}
	}
	return spec
}

// parseDeclarations parses "prop: value; ..." into expanded longhand
// declarations, in source order. !important is accepted and ignored.
func parseDeclarations(declStr string) []Declaration {
	var out []Declaration
	for _, part := range strings.Split(declStr, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		colon := strings.Index(part, ":")
		if colon == -1 {
			continue
		}
		property := strings.ToLower(strings.TrimSpace(part[:colon]))
		value := strings.TrimSpace(part[colon+1:])
		value = strings.TrimSpace(strings.TrimSuffix(value, "!important"))
		if property == "" || value == "" || identLen(property) != len(property) {
			continue
		}
		out = append(out, expandShorthand(property, value)...)
	}
	return out
}
