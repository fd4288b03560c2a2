package js

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/dop251/goja"

	"boxwalk/pkg/html"
)

// domContext holds the state of the DOM bindings for one execution. The
// proxy cache returns the same JS object for the same node so that ===
// works in scripts.
type domContext struct {
	vm    *goja.Runtime
	doc   *html.Document
	cache map[*html.Node]goja.Value
}

func newDOMContext(vm *goja.Runtime, doc *html.Document) *domContext {
	return &domContext{
		vm:    vm,
		doc:   doc,
		cache: make(map[*html.Node]goja.Value),
	}
}

// registerDocument sets the global document object.
func registerDocument(vm *goja.Runtime, doc *html.Document) *domContext {
	ctx := newDOMContext(vm, doc)

	docObj := vm.NewObject()
	docObj.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Null()
		}
		return ctx.proxyOrNull(doc.Root.ElementByID(call.Arguments[0].String()))
	})
	docObj.Set("getElementsByTagName", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return ctx.elementArray(nil)
		}
		return ctx.elementArray(doc.Root.ElementsByTag(strings.ToLower(call.Arguments[0].String())))
	})
	docObj.Set("createElement", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(vm.NewTypeError("Failed to execute 'createElement' on 'Document': 1 argument required"))
		}
		return ctx.elementProxy(html.NewElement(call.Arguments[0].String(), nil))
	})
	docObj.Set("createTextNode", func(call goja.FunctionCall) goja.Value {
		text := ""
		if len(call.Arguments) > 0 {
			text = call.Arguments[0].String()
		}
		return ctx.elementProxy(html.NewText(text))
	})
	registerQuerySelectors(ctx, docObj, doc.Root)

	docObj.DefineAccessorProperty("body", vm.ToValue(func(goja.FunctionCall) goja.Value {
		return ctx.proxyOrNull(doc.Body())
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
	docObj.DefineAccessorProperty("documentElement", vm.ToValue(func(goja.FunctionCall) goja.Value {
		return ctx.proxyOrNull(doc.DocumentElement())
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	vm.Set("document", docObj)
	return ctx
}

func (ctx *domContext) proxyOrNull(node *html.Node) goja.Value {
	if node == nil {
		return goja.Null()
	}
	return ctx.elementProxy(node)
}

// elementArray creates a JS array of node proxies.
func (ctx *domContext) elementArray(nodes []*html.Node) goja.Value {
	vals := make([]interface{}, len(nodes))
	for i, n := range nodes {
		vals[i] = ctx.elementProxy(n)
	}
	return ctx.vm.NewArray(vals...)
}

// elementProxy creates, or returns the cached, dynamic object wrapping node.
func (ctx *domContext) elementProxy(node *html.Node) goja.Value {
	if v, ok := ctx.cache[node]; ok {
		return v
	}
	v := ctx.vm.NewDynamicObject(&elementAccessor{ctx: ctx, node: node})
	ctx.cache[node] = v
	return v
}

// unwrapNode returns the node behind a proxy, or nil for anything else.
func (ctx *domContext) unwrapNode(val goja.Value) *html.Node {
	if val == nil || goja.IsNull(val) || goja.IsUndefined(val) {
		return nil
	}
	obj, ok := val.(*goja.Object)
	if !ok {
		return nil
	}
	for node, cached := range ctx.cache {
		if cached.SameAs(obj) {
			return node
		}
	}
	return nil
}

// elementAccessor implements goja.DynamicObject for element and text proxies.
type elementAccessor struct {
	ctx  *domContext
	node *html.Node
}

var elementKeys = []string{
	"nodeType", "nodeName", "nodeValue", "tagName", "id", "className", "textContent",
	"getAttribute", "setAttribute", "hasAttribute", "removeAttribute",
	"children", "childNodes", "parentElement", "parentNode", "style", "classList",
	"appendChild", "removeChild", "insertBefore", "remove", "append",
	"firstChild", "lastChild", "nextSibling", "previousSibling",
	"firstElementChild", "nextElementSibling", "childElementCount",
	"querySelector", "querySelectorAll", "matches", "closest",
	"getElementsByTagName", "contains", "hasChildNodes",
}

func (e *elementAccessor) Get(key string) goja.Value {
	vm := e.ctx.vm
	n := e.node

	switch key {
	case "nodeType":
		if n.IsText() {
			return vm.ToValue(3)
		}
		return vm.ToValue(1)
	case "nodeName":
		if n.IsText() {
			return vm.ToValue("#text")
		}
		return vm.ToValue(strings.ToUpper(n.TagName))
	case "nodeValue":
		if n.IsText() {
			return vm.ToValue(n.Text)
		}
		return goja.Null()
	case "tagName":
		if n.IsText() {
			return goja.Undefined()
		}
		return vm.ToValue(strings.ToUpper(n.TagName))
	case "id":
		return vm.ToValue(n.ID())
	case "className":
		cls, _ := n.GetAttribute("class")
		return vm.ToValue(cls)
	case "textContent":
		return vm.ToValue(n.TextContent())

	case "getAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return goja.Null()
			}
			val, ok := n.GetAttribute(strings.ToLower(call.Arguments[0].String()))
			if !ok {
				return goja.Null()
			}
			return vm.ToValue(val)
		})
	case "setAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) < 2 {
				panic(vm.NewTypeError("Failed to execute 'setAttribute': 2 arguments required"))
			}
			n.SetAttribute(strings.ToLower(call.Arguments[0].String()), call.Arguments[1].String())
			return goja.Undefined()
		})
	case "hasAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return vm.ToValue(false)
			}
			_, ok := n.GetAttribute(strings.ToLower(call.Arguments[0].String()))
			return vm.ToValue(ok)
		})
	case "removeAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) > 0 && n.Attributes != nil {
				delete(n.Attributes, strings.ToLower(call.Arguments[0].String()))
			}
			return goja.Undefined()
		})

	case "children":
		return e.ctx.elementArray(elementChildren(n))
	case "childNodes":
		return e.ctx.elementArray(n.Children)
	case "parentElement", "parentNode":
		if p := n.Parent; p != nil && p.IsElement() && p.TagName != html.DocumentTag {
			return e.ctx.elementProxy(p)
		}
		return goja.Null()
	case "style":
		return vm.NewDynamicObject(&styleAccessor{vm: vm, node: n})
	case "classList":
		return newClassListProxy(e.ctx, n)

	case "appendChild":
		return vm.ToValue(e.appendChildFn())
	case "removeChild":
		return vm.ToValue(e.removeChildFn())
	case "insertBefore":
		return vm.ToValue(e.insertBeforeFn())
	case "remove":
		return vm.ToValue(func(goja.FunctionCall) goja.Value {
			if n.Parent != nil {
				n.Parent.RemoveChild(n)
			}
			return goja.Undefined()
		})
	case "append":
		return vm.ToValue(e.appendFn())

	case "firstChild":
		if len(n.Children) == 0 {
			return goja.Null()
		}
		return e.ctx.elementProxy(n.Children[0])
	case "lastChild":
		if len(n.Children) == 0 {
			return goja.Null()
		}
		return e.ctx.elementProxy(n.Children[len(n.Children)-1])
	case "nextSibling":
		return e.ctx.proxyOrNull(n.NextSibling())
	case "previousSibling":
		return e.ctx.proxyOrNull(n.PrevSibling())
	case "firstElementChild":
		if kids := elementChildren(n); len(kids) > 0 {
			return e.ctx.elementProxy(kids[0])
		}
		return goja.Null()
	case "nextElementSibling":
		for s := n.NextSibling(); s != nil; s = s.NextSibling() {
			if s.IsElement() {
				return e.ctx.elementProxy(s)
			}
		}
		return goja.Null()
	case "childElementCount":
		return vm.ToValue(len(elementChildren(n)))

	case "querySelector":
		return vm.ToValue(querySelectorFn(e.ctx, n))
	case "querySelectorAll":
		return vm.ToValue(querySelectorAllFn(e.ctx, n))
	case "matches":
		return vm.ToValue(matchesFn(e.ctx, n))
	case "closest":
		return vm.ToValue(closestFn(e.ctx, n))
	case "getElementsByTagName":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return e.ctx.elementArray(nil)
			}
			tag := strings.ToLower(call.Arguments[0].String())
			var out []*html.Node
			for _, c := range n.Children {
				out = append(out, c.ElementsByTag(tag)...)
			}
			return e.ctx.elementArray(out)
		})
	case "contains":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return vm.ToValue(false)
			}
			other := e.ctx.unwrapNode(call.Arguments[0])
			return vm.ToValue(other != nil && n.Contains(other))
		})
	case "hasChildNodes":
		return vm.ToValue(func(goja.FunctionCall) goja.Value {
			return vm.ToValue(len(n.Children) > 0)
		})
	}
	return goja.Undefined()
}

func (e *elementAccessor) Set(key string, val goja.Value) bool {
	switch key {
	case "textContent":
		if e.node.IsText() {
			e.node.Text = val.String()
		} else {
			e.node.SetTextContent(val.String())
		}
		return true
	case "nodeValue":
		if e.node.IsText() {
			e.node.Text = val.String()
		}
		return true
	case "className":
		e.node.SetAttribute("class", val.String())
		return true
	case "id":
		e.node.SetAttribute("id", val.String())
		return true
	}
	return false
}

func (e *elementAccessor) Has(key string) bool {
	for _, k := range elementKeys {
		if k == key {
			return true
		}
	}
	return false
}

func (e *elementAccessor) Delete(key string) bool { return false }

func (e *elementAccessor) Keys() []string {
	out := make([]string, len(elementKeys))
	copy(out, elementKeys)
	return out
}

func elementChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for _, c := range n.Children {
		if c.IsElement() {
			out = append(out, c)
		}
	}
	return out
}

// styleAccessor maps camelCase property access to the kebab-case
// declarations of the node's style attribute. Declaration order is kept.
type styleAccessor struct {
	vm   *goja.Runtime
	node *html.Node
}

type inlineDecl struct {
	prop, value string
}

func (s *styleAccessor) Get(key string) goja.Value {
	prop := camelToKebab(key)
	for _, d := range parseInlineDecls(s.attr()) {
		if d.prop == prop {
			return s.vm.ToValue(d.value)
		}
	}
	if key == "cssText" {
		return s.vm.ToValue(s.attr())
	}
	return s.vm.ToValue("")
}

func (s *styleAccessor) Set(key string, val goja.Value) bool {
	if key == "cssText" {
		s.node.SetAttribute("style", val.String())
		return true
	}
	prop := camelToKebab(key)
	value := strings.TrimSpace(val.String())
	decls := parseInlineDecls(s.attr())
	out := decls[:0]
	replaced := false
	for _, d := range decls {
		if d.prop == prop {
			if value == "" || replaced {
				continue
			}
			d.value = value
			replaced = true
		}
		out = append(out, d)
	}
	if !replaced && value != "" {
		out = append(out, inlineDecl{prop: prop, value: value})
	}
	s.node.SetAttribute("style", serializeInlineDecls(out))
	return true
}

func (s *styleAccessor) Has(key string) bool { return true }

func (s *styleAccessor) Delete(key string) bool {
	return s.Set(key, s.vm.ToValue(""))
}

func (s *styleAccessor) Keys() []string {
	decls := parseInlineDecls(s.attr())
	keys := make([]string, len(decls))
	for i, d := range decls {
		keys[i] = d.prop
	}
	return keys
}

func (s *styleAccessor) attr() string {
	v, _ := s.node.GetAttribute("style")
	return v
}

func parseInlineDecls(s string) []inlineDecl {
	var out []inlineDecl
	for _, decl := range strings.Split(s, ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		if prop == "" {
			continue
		}
		out = append(out, inlineDecl{prop: prop, value: strings.TrimSpace(val)})
	}
	return out
}

func serializeInlineDecls(decls []inlineDecl) string {
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d.prop + ": " + d.value
	}
	return strings.Join(parts, "; ")
}

// camelToKebab converts a JS property name such as backgroundColor to
// background-color.
func camelToKebab(s string) string {
	if s == "cssFloat" {
		return "float"
	}
	var sb strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// newClassListProxy exposes the class attribute as a token list.
func newClassListProxy(ctx *domContext, node *html.Node) goja.Value {
	vm := ctx.vm
	obj := vm.NewObject()
	set := func(classes []string) { node.SetAttribute("class", strings.Join(classes, " ")) }

	obj.Set("length", len(node.Classes()))
	obj.Set("contains", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(len(call.Arguments) > 0 && node.HasClass(call.Arguments[0].String()))
	})
	obj.Set("add", func(call goja.FunctionCall) goja.Value {
		classes := node.Classes()
		for _, arg := range call.Arguments {
			if tok := arg.String(); !node.HasClass(tok) {
				classes = append(classes, tok)
				set(classes)
			}
		}
		return goja.Undefined()
	})
	obj.Set("remove", func(call goja.FunctionCall) goja.Value {
		for _, arg := range call.Arguments {
			set(without(node.Classes(), arg.String()))
		}
		return goja.Undefined()
	})
	obj.Set("toggle", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(vm.NewTypeError("Failed to execute 'toggle': 1 argument required"))
		}
		tok := call.Arguments[0].String()
		want := !node.HasClass(tok)
		if len(call.Arguments) > 1 {
			want = call.Arguments[1].ToBoolean()
		}
		if want {
			if !node.HasClass(tok) {
				set(append(node.Classes(), tok))
			}
		} else {
			set(without(node.Classes(), tok))
		}
		return vm.ToValue(want)
	})
	obj.Set("item", func(call goja.FunctionCall) goja.Value {
		classes := node.Classes()
		if len(call.Arguments) == 0 {
			return goja.Null()
		}
		i, err := strconv.Atoi(call.Arguments[0].String())
		if err != nil || i < 0 || i >= len(classes) {
			return goja.Null()
		}
		return vm.ToValue(classes[i])
	})
	return obj
}

func without(tokens []string, tok string) []string {
	out := tokens[:0]
	for _, t := range tokens {
		if t != tok {
			out = append(out, t)
		}
	}
	return out
}
