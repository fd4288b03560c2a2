package js

import (
	"github.com/dop251/goja"

	"boxwalk/pkg/html"
)

// appendChildFn implements node.appendChild(child). A child that is already
// in the tree moves.
func (e *elementAccessor) appendChildFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		child := e.nodeArg(call, "appendChild")
		if child.Contains(e.node) {
			panic(e.ctx.vm.NewTypeError("Failed to execute 'appendChild': the new child contains the parent"))
		}
		e.node.AddChild(child)
		return e.ctx.elementProxy(child)
	}
}

// removeChildFn implements node.removeChild(child).
func (e *elementAccessor) removeChildFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		child := e.nodeArg(call, "removeChild")
		removed := e.node.RemoveChild(child)
		if removed == nil {
			panic(e.ctx.vm.NewTypeError("Failed to execute 'removeChild': The node to be removed is not a child of this node"))
		}
		return e.ctx.elementProxy(removed)
	}
}

// insertBeforeFn implements node.insertBefore(newNode, refNode). A null
// reference appends.
func (e *elementAccessor) insertBeforeFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		newChild := e.nodeArg(call, "insertBefore")
		var ref *html.Node
		if len(call.Arguments) > 1 {
			ref = e.ctx.unwrapNode(call.Arguments[1])
		}
		if ref != nil && ref.Parent != e.node {
			panic(e.ctx.vm.NewTypeError("Failed to execute 'insertBefore': The node before which the new node is to be inserted is not a child of this node"))
		}
		if newChild.Contains(e.node) {
			panic(e.ctx.vm.NewTypeError("Failed to execute 'insertBefore': the new child contains the parent"))
		}
		e.node.InsertBefore(newChild, ref)
		return e.ctx.elementProxy(newChild)
	}
}

// appendFn implements element.append(...nodes). Strings become text nodes.
func (e *elementAccessor) appendFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		for _, arg := range call.Arguments {
			if node := e.ctx.unwrapNode(arg); node != nil {
				e.node.AddChild(node)
				continue
			}
			e.node.AppendText(arg.String())
		}
		return goja.Undefined()
	}
}

func (e *elementAccessor) nodeArg(call goja.FunctionCall, method string) *html.Node {
	if len(call.Arguments) == 0 {
		panic(e.ctx.vm.NewTypeError("Failed to execute '" + method + "': 1 argument required"))
	}
	n := e.ctx.unwrapNode(call.Arguments[0])
	if n == nil {
		panic(e.ctx.vm.NewTypeError("Failed to execute '" + method + "': parameter 1 is not a Node"))
	}
	return n
}
