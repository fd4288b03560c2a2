package js

import (
	"strings"

	"github.com/dop251/goja"

	"boxwalk/pkg/css"
	"boxwalk/pkg/html"
)

// registerQuerySelectors adds querySelector and querySelectorAll to a
// document object.
func registerQuerySelectors(ctx *domContext, obj *goja.Object, root *html.Node) {
	obj.Set("querySelector", querySelectorFn(ctx, root))
	obj.Set("querySelectorAll", querySelectorAllFn(ctx, root))
}

// parseSelectorList parses a comma separated selector list with the
// stylesheet selector parser. Invalid selectors raise a SyntaxError.
func parseSelectorList(ctx *domContext, method string, call goja.FunctionCall) []css.Selector {
	if len(call.Arguments) == 0 {
		panic(ctx.vm.NewTypeError("Failed to execute '" + method + "': 1 argument required"))
	}
	raw := call.Arguments[0].String()
	var out []css.Selector
	for _, part := range strings.Split(raw, ",") {
		sel, err := css.ParseSelector(strings.TrimSpace(part))
		if err != nil {
			panic(ctx.vm.NewGoError(&selectorError{selector: raw, err: err}))
		}
		out = append(out, sel)
	}
	return out
}

type selectorError struct {
	selector string
	err      error
}

func (e *selectorError) Error() string {
	return "SyntaxError: '" + e.selector + "' is not a valid selector: " + e.err.Error()
}

func (e *selectorError) Unwrap() error { return e.err }

func matchesAny(n *html.Node, sels []css.Selector) bool {
	for _, sel := range sels {
		if css.MatchesSelector(n, sel) {
			return true
		}
	}
	return false
}

// querySelectorFn returns the first matching descendant of root in
// document order.
func querySelectorFn(ctx *domContext, root *html.Node) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		sels := parseSelectorList(ctx, "querySelector", call)
		var result *html.Node
		walkElements(root, func(n *html.Node) bool {
			if n != root && matchesAny(n, sels) {
				result = n
				return true
			}
			return false
		})
		return ctx.proxyOrNull(result)
	}
}

func querySelectorAllFn(ctx *domContext, root *html.Node) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		sels := parseSelectorList(ctx, "querySelectorAll", call)
		var results []*html.Node
		walkElements(root, func(n *html.Node) bool {
			if n != root && matchesAny(n, sels) {
				results = append(results, n)
			}
			return false
		})
		return ctx.elementArray(results)
	}
}

func matchesFn(ctx *domContext, node *html.Node) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		sels := parseSelectorList(ctx, "matches", call)
		return ctx.vm.ToValue(node.IsElement() && matchesAny(node, sels))
	}
}

func closestFn(ctx *domContext, node *html.Node) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		sels := parseSelectorList(ctx, "closest", call)
		for cur := node; cur != nil; cur = cur.Parent {
			if cur.IsElement() && cur.TagName != html.DocumentTag && matchesAny(cur, sels) {
				return ctx.elementProxy(cur)
			}
		}
		return goja.Null()
	}
}

// walkElements visits elements depth first. fn returns true to stop.
func walkElements(node *html.Node, fn func(*html.Node) bool) bool {
	if node.IsElement() && fn(node) {
		return true
	}
	for _, child := range node.Children {
		if walkElements(child, fn) {
			return true
		}
	}
	return false
}
