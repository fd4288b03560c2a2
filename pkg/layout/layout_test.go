package layout

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"boxwalk/pkg/css"
	"boxwalk/pkg/html"
	"boxwalk/pkg/text"
)

var defaultViewport = Viewport{Width: 800, Height: 600}

type fixture struct {
	dom    *html.Document
	styles css.Styles
	root   *html.Node
}

// newFixture parses markup and picks the element with id "root" as the
// layout root, so that body margins stay out of the way.
func newFixture(t *testing.T, markup string) *fixture {
	t.Helper()
	dom, err := html.Parse(markup)
	require.NoError(t, err)
	root := dom.Root.ElementByID("root")
	require.NotNil(t, root, "markup needs an element with id=root")
	return &fixture{dom: dom, styles: css.ApplyStylesToDocument(dom), root: root}
}

func (f *fixture) layout(vp Viewport, opts ...Option) *Document {
	return NewEngine(f.styles, text.HeuristicProvider{}, opts...).Layout(f.root, vp)
}

func (f *fixture) byID(t *testing.T, id string) *html.Node {
	t.Helper()
	n := f.dom.Root.ElementByID(id)
	require.NotNil(t, n, "no element #%s", id)
	return n
}

func kinds(nodes []Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Kind().String()
	}
	return out
}

func lineItems(t *testing.T, n Node) []LineItem {
	t.Helper()
	ib, ok := n.(*InlineBoxNode)
	require.True(t, ok, "expected inline box, got %s", n.Kind())
	require.NotNil(t, ib.Line())
	return ib.Line().Items()
}

type itemSummary struct {
	Kind      string
	Label     string
	Synthetic bool
}

func summarize(items []LineItem) []itemSummary {
	out := make([]itemSummary, len(items))
	for i, it := range items {
		s := itemSummary{Kind: it.Kind().String(), Label: it.DOM().String()}
		switch v := it.(type) {
		case *MarkerNode:
			s.Synthetic = v.Synthetic
		case *TextRunNode:
			s.Label = v.Text
		}
		out[i] = s
	}
	return out
}

func TestLayout_BlockInInlineSplitsRuns(t *testing.T) {
	f := newFixture(t, `<div id="root">a<span>b<div>c</div>d</span>e</div>`)
	doc := f.layout(defaultViewport)

	require.NotNil(t, doc.Root)
	assert.Same(t, f.root, doc.Root.DOM())
	assert.Equal(t, []string{"inline-box", "block", "inline-box"}, kinds(doc.Root.Children()))

	first := summarize(lineItems(t, doc.Root.Children()[0]))
	assert.Equal(t, []itemSummary{
		{Kind: "text-run", Label: "a"},
		{Kind: "inline-start", Label: "span"},
		{Kind: "text-run", Label: "b"},
		{Kind: "inline-end", Label: "span", Synthetic: true},
	}, first)

	last := summarize(lineItems(t, doc.Root.Children()[2]))
	assert.Equal(t, []itemSummary{
		{Kind: "inline-start", Label: "span", Synthetic: true},
		{Kind: "text-run", Label: "d"},
		{Kind: "inline-end", Label: "span"},
		{Kind: "text-run", Label: "e"},
	}, last)
}

func TestLayout_CarriedAncestorsReopenOutermostFirst(t *testing.T) {
	f := newFixture(t, `<div id="root"><b><i>x<div>y</div>z</i></b></div>`)
	doc := f.layout(defaultViewport)

	children := doc.Root.Children()
	require.Len(t, children, 3)

	first := summarize(lineItems(t, children[0]))
	assert.Equal(t, []itemSummary{
		{Kind: "inline-start", Label: "b"},
		{Kind: "inline-start", Label: "i"},
		{Kind: "text-run", Label: "x"},
		{Kind: "inline-end", Label: "i", Synthetic: true},
		{Kind: "inline-end", Label: "b", Synthetic: true},
	}, first)

	items := lineItems(t, children[2])
	assert.Equal(t, []itemSummary{
		{Kind: "inline-start", Label: "b", Synthetic: true},
		{Kind: "inline-start", Label: "i", Synthetic: true},
		{Kind: "text-run", Label: "z"},
		{Kind: "inline-end", Label: "i"},
		{Kind: "inline-end", Label: "b"},
	}, summarize(items))

	// Stack snapshots grow outermost first.
	reopenI := items[1].(*MarkerNode)
	assert.Equal(t, 2, reopenI.Depth())
	assert.Equal(t, "b", reopenI.Stack[0].TagName)
	run := items[2].(*TextRunNode)
	assert.Equal(t, "i", run.Style.TagName, "text takes the innermost open element's style")
}

// Every line must close exactly what it opens, in nesting order.
func TestLayout_MarkersBalancedOnEveryLine(t *testing.T) {
	f := newFixture(t, `<div id="root">
		<a href="#">one <b>two <i>three</i><p>para</p> four</b> five</a>
		<span>six<div><em>seven</em></div></span>
	</div>`)
	doc := f.layout(defaultViewport)

	lines := 0
	doc.Walk(func(n Node) bool {
		line, ok := n.(*LineBoxNode)
		if !ok {
			return true
		}
		lines++
		var stack []*html.Node
		for _, it := range line.Items() {
			m, ok := it.(*MarkerNode)
			if !ok {
				continue
			}
			if m.IsStart() {
				stack = append(stack, m.DOM())
				assert.Equal(t, len(stack), m.Depth())
				continue
			}
			require.NotEmpty(t, stack, "end marker without start on %s", line.DOM())
			assert.Same(t, stack[len(stack)-1], m.DOM())
			assert.Equal(t, len(stack), m.Depth())
			stack = stack[:len(stack)-1]
		}
		assert.Empty(t, stack, "unclosed markers on %s", line.DOM())
		return true
	})
	assert.GreaterOrEqual(t, lines, 4)
}

func TestLayout_InlineGeometry(t *testing.T) {
	f := newFixture(t, `<div id="root">ab<span>cd</span></div>`)
	doc := f.layout(defaultViewport)

	items := lineItems(t, doc.Root.Children()[0])
	require.Len(t, items, 4)

	// The heuristic measures 0.6em per character at 16px.
	assert.InDelta(t, 0, items[0].Box().Outer.X, 1e-9)
	assert.InDelta(t, 19.2, items[0].Box().Outer.Width, 1e-9)
	assert.InDelta(t, 19.2, items[1].Box().Outer.X, 1e-9)
	assert.Zero(t, items[1].Box().Outer.Width)
	assert.InDelta(t, 19.2, items[2].Box().Outer.X, 1e-9)
	assert.InDelta(t, 38.4, items[3].Box().Outer.X, 1e-9)

	for _, it := range items {
		assert.InDelta(t, 19.2, it.Box().Outer.Height, 1e-9, "%s takes the line height", it.Kind())
	}
	line := doc.Root.Children()[0].(*InlineBoxNode).Line()
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 800, Height: line.Box().Outer.Height}, line.Box().Outer)
	assert.InDelta(t, 19.2, doc.Root.Box().Outer.Height, 1e-9)
}

func TestLayout_EmptyInlineUsesBlockLineHeight(t *testing.T) {
	f := newFixture(t, `<div id="root" style="line-height: 30px"><span></span></div>`)
	doc := f.layout(defaultViewport)

	require.Len(t, doc.Root.Children(), 1)
	items := lineItems(t, doc.Root.Children()[0])
	assert.Equal(t, []string{"inline-start", "inline-end"}, kinds(lineItemsAsNodes(items)))
	assert.InDelta(t, 30, doc.Root.Box().Outer.Height, 1e-9)
}

func lineItemsAsNodes(items []LineItem) []Node {
	out := make([]Node, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}

func TestLayout_TextRunOffsetAndFont(t *testing.T) {
	f := newFixture(t, `<div id="root"><b style="font-size: 20px">bold</b> <code>mono</code></div>`)
	doc := f.layout(defaultViewport)

	var runs []*TextRunNode
	doc.Walk(func(n Node) bool {
		if r, ok := n.(*TextRunNode); ok {
			runs = append(runs, r)
		}
		return true
	})
	require.Len(t, runs, 3)
	assert.Equal(t, "bold", runs[0].Text)
	assert.Equal(t, 0, runs[0].Offset)
	assert.True(t, runs[0].Font.Bold)
	assert.InDelta(t, 20, runs[0].Font.Size, 1e-9)
	assert.InDelta(t, 48, runs[0].Metrics.Width, 1e-9)

	assert.Equal(t, " ", runs[1].Text)
	assert.False(t, runs[1].Font.Bold)

	assert.True(t, runs[2].Font.Mono)
	assert.Same(t, runs[2].DOM().Parent, runs[2].Style)
}

func TestLayout_DisplayNoneGeneratesNothing(t *testing.T) {
	f := newFixture(t, `<div id="root">
		<div style="height: 10px"></div>
		<div id="gone" style="display: none; height: 200px">hidden <span>text</span></div>
		<div style="height: 20px"></div>
	</div>`)
	doc := f.layout(defaultViewport)

	assert.Equal(t, []string{"block", "block"}, kinds(doc.Root.Children()))
	assert.InDelta(t, 30, doc.Root.Box().Outer.Height, 1e-9)
	assert.InDelta(t, 10, doc.Root.Children()[1].Box().Outer.Y, 1e-9)

	gone := f.byID(t, "gone")
	assert.Empty(t, doc.NodesByDOM(gone))
	gone.Walk(func(n *html.Node) bool {
		assert.Empty(t, doc.NodesByDOM(n), "%s", n)
		return true
	})
}

func TestLayout_HiddenInlineSkipped(t *testing.T) {
	f := newFixture(t, `<div id="root">a<span style="display:none">zzz</span>b</div>`)
	doc := f.layout(defaultViewport)

	require.Len(t, doc.Root.Children(), 1)
	assert.Equal(t, []itemSummary{
		{Kind: "text-run", Label: "a"},
		{Kind: "text-run", Label: "b"},
	}, summarize(lineItems(t, doc.Root.Children()[0])))
}

func TestLayout_PercentWidth(t *testing.T) {
	f := newFixture(t, `<div id="root" style="width: 200px"><div id="half" style="width: 50%"></div></div>`)
	doc := f.layout(defaultViewport)

	nodes := doc.NodesByDOM(f.byID(t, "half"))
	require.Len(t, nodes, 1)
	assert.InDelta(t, 100, nodes[0].Box().Outer.Width, 1e-9)
	assert.InDelta(t, 100, nodes[0].Box().ContentWidth(), 1e-9)
}

func TestLayout_PercentHeight(t *testing.T) {
	t.Run("definite viewport", func(t *testing.T) {
		f := newFixture(t, `<div id="root" style="height: 50%"></div>`)
		doc := f.layout(defaultViewport)
		assert.InDelta(t, 300, doc.Root.Box().Outer.Height, 1e-9)
	})
	t.Run("auto parent ignores percentage", func(t *testing.T) {
		f := newFixture(t, `<div id="root"><div id="outer"><div id="inner" style="height: 50%">x</div></div></div>`)
		doc := f.layout(defaultViewport)
		inner := doc.NodesByDOM(f.byID(t, "inner"))
		require.Len(t, inner, 1)
		assert.InDelta(t, 19.2, inner[0].Box().Outer.Height, 1e-9)
	})
	t.Run("definite parent", func(t *testing.T) {
		f := newFixture(t, `<div id="root"><div style="height: 80px"><div id="inner" style="height: 25%"></div></div></div>`)
		doc := f.layout(defaultViewport)
		inner := doc.NodesByDOM(f.byID(t, "inner"))
		require.Len(t, inner, 1)
		assert.InDelta(t, 20, inner[0].Box().Outer.Height, 1e-9)
	})
}

func TestLayout_BoxModel(t *testing.T) {
	f := newFixture(t, `<div id="root">
		<div id="box" style="margin: 10px 20px; padding: 5px; border: thick solid red; width: 100px; height: 40px"></div>
		<div id="next" style="height: 1px"></div>
	</div>`)
	doc := f.layout(defaultViewport)

	box := doc.NodesByDOM(f.byID(t, "box"))[0].Box()
	assert.Equal(t, Edges{Top: 10, Right: 20, Bottom: 10, Left: 20}, box.Margin)
	assert.Equal(t, Edges{Top: 5, Right: 5, Bottom: 5, Left: 5}, box.Border)
	assert.Equal(t, Rect{X: 20, Y: 10, Width: 120, Height: 60}, box.Outer)
	assert.Equal(t, box.Outer.Shrink(box.Border), box.Scroll)
	assert.Equal(t, Rect{X: 30, Y: 20, Width: 100, Height: 40}, box.Inner)
	assert.Equal(t, css.Color{R: 255, A: 1}, box.BorderColor)
	assert.Equal(t, "solid", box.BorderStyle)

	next := doc.NodesByDOM(f.byID(t, "next"))[0].Box()
	assert.InDelta(t, 80, next.Outer.Y, 1e-9, "margins do not collapse")
}

func TestLayout_BorderWidths(t *testing.T) {
	tests := []struct {
		name  string
		style string
		want  float64
	}{
		{"thin", "border: thin solid", 1},
		{"medium default", "border-style: solid", 3},
		{"thick", "border: thick dashed", 5},
		{"length", "border: 7px solid", 7},
		{"style none zeroes width", "border-width: 10px; border-style: none", 0},
		{"hidden", "border: 4px hidden", 0},
		{"no style", "border-width: 10px", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, `<div id="root" style="`+tt.style+`"></div>`)
			doc := f.layout(defaultViewport)
			b := doc.Root.Box().Border
			assert.Equal(t, Edges{Top: tt.want, Right: tt.want, Bottom: tt.want, Left: tt.want}, b)
			assert.InDelta(t, 2*tt.want, doc.Root.Box().Outer.Height, 1e-9)
		})
	}
}

func TestLayout_NegativeMarginClamped(t *testing.T) {
	f := newFixture(t, `<div id="root"><div id="neg" style="margin-left: -30px; margin-top: -5px"></div></div>`)
	doc := f.layout(defaultViewport)

	box := doc.NodesByDOM(f.byID(t, "neg"))[0].Box()
	assert.Equal(t, Edges{}, box.Margin)
	assert.Equal(t, Rect{Width: 800}, box.Outer)
}

func TestLayout_InlineBlockIsAtomic(t *testing.T) {
	f := newFixture(t, `<div id="root">x<span id="ib" style="display: inline-block; width: 40px; height: 10px"><b>in</b><div>deep</div></span>y</div>`)
	doc := f.layout(defaultViewport)

	require.Len(t, doc.Root.Children(), 1)
	items := lineItems(t, doc.Root.Children()[0])
	require.Len(t, items, 3)

	ibNode, ok := items[1].(*InlineBlockNode)
	require.True(t, ok)
	el := f.byID(t, "ib")
	assert.Same(t, el, ibNode.DOM())
	require.NotNil(t, ibNode.Block())
	assert.Same(t, el, ibNode.Block().DOM())

	assert.InDelta(t, 9.6, ibNode.Box().Outer.X, 1e-9)
	assert.InDelta(t, 40, ibNode.Box().Outer.Width, 1e-9)
	assert.InDelta(t, 10, ibNode.Box().Outer.Height, 1e-9)
	assert.InDelta(t, 49.6, items[2].Box().Outer.X, 1e-9)

	// The inline-block's content lives only inside the nested block.
	assert.Equal(t, []string{"text-run", "inline-block", "text-run"}, kinds(lineItemsAsNodes(items)))
	assert.Equal(t, []string{"inline-box", "block"}, kinds(ibNode.Block().Children()))
}

func TestLayout_DefaultBlockSizing(t *testing.T) {
	for _, width := range []float64{800, 300} {
		f := newFixture(t, `<div id="root"><div id="c" style="width: 120px"><span>hi</span></div><div id="auto">x</div></div>`)
		doc := f.layout(Viewport{Width: width, Height: 600})

		c := doc.NodesByDOM(f.byID(t, "c"))[0]
		assert.InDelta(t, 120, c.Box().Outer.Width, 1e-9)
		assert.InDelta(t, 19.2, c.Box().Outer.Height, 1e-9)

		auto := doc.NodesByDOM(f.byID(t, "auto"))[0]
		assert.InDelta(t, width, auto.Box().Outer.Width, 1e-9)
		assert.InDelta(t, 19.2, auto.Box().Outer.Y, 1e-9)
	}
}

func TestLayout_RootAlwaysBlock(t *testing.T) {
	f := newFixture(t, `<span id="root">text</span>`)
	doc := f.layout(defaultViewport)

	require.NotNil(t, doc.Root)
	assert.Equal(t, KindBlock, doc.Root.Kind())
	assert.InDelta(t, 800, doc.Root.Box().Outer.Width, 1e-9)
}

func TestLayout_RegistryComplete(t *testing.T) {
	f := newFixture(t, `<div id="root"><p>a <b>b<div>c</div></b></p><span style="display:inline-block">d</span></div>`)
	doc := f.layout(defaultViewport)

	seen := 0
	doc.Walk(func(n Node) bool {
		seen++
		assert.True(t, containsNode(doc.NodesByDOM(n.DOM()), n), "%s for %s not registered", n.Kind(), n.DOM())
		if n != Node(doc.Root) {
			require.NotNil(t, n.Parent())
			assert.True(t, containsNode(n.Parent().Children(), n))
		}
		return true
	})
	assert.Equal(t, seen, doc.Len())
}

func containsNode(nodes []Node, n Node) bool {
	for _, c := range nodes {
		if c == n {
			return true
		}
	}
	return false
}

func TestLayout_Idempotent(t *testing.T) {
	f := newFixture(t, `<div id="root" style="padding: 4px">
		<h1>Title</h1>
		<p>Some <em>emphasised <a href="#">linked</a></em> text<div>block</div>tail</p>
		<span style="display: inline-block; width: 30%">box</span>
	</div>`)
	first := Snapshot(f.layout(defaultViewport).Root)
	second := Snapshot(f.layout(defaultViewport).Root)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("layout not idempotent (-first +second):\n%s", diff)
	}
}

func TestLayout_NilRoot(t *testing.T) {
	doc := NewEngine(nil, nil).Layout(nil, defaultViewport)
	assert.Nil(t, doc.Root)
	assert.Zero(t, doc.Len())
	assert.Equal(t, Rect{Width: 800, Height: 600}, doc.Viewport())
}

func TestLayout_DebugLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	f := newFixture(t, `<div id="root">x</div>`)
	f.layout(defaultViewport, WithLogger(zap.New(core)))

	started := logs.FilterMessage("layout pass started").All()
	require.Len(t, started, 1)
	assert.Equal(t, "layout", started[0].LoggerName)
	assert.Equal(t, "div#root", started[0].ContextMap()["root"])
	assert.Len(t, logs.FilterMessage("layout pass finished").All(), 1)
}

func TestLayout_NonFiniteLengthsIgnored(t *testing.T) {
	tests := []struct {
		name  string
		style string
	}{
		{"nan size", "width: NaN; height: NaN"},
		{"infinite size", "width: inf; height: Infinity"},
		{"negative infinity", "width: -inf; height: -Infinity"},
		{"nan percent", "width: NaN%; height: NaN%"},
		{"overflowing units", "width: 1e308in; height: 2e308em"},
		{"nan edges", "margin: NaN; padding: inf; border-width: NaN; border-style: solid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, `<div id="root"><div id="x" style="`+tt.style+`">a</div></div>`)
			doc := f.layout(defaultViewport)

			nodes := doc.NodesByDOM(f.byID(t, "x"))
			require.Len(t, nodes, 1)
			assert.Equal(t, Rect{Width: 800, Height: 19.2}, nodes[0].Box().Outer, "falls back to auto sizing")
			assert.Equal(t, 19.2, doc.Root.Box().Outer.Height)
		})
	}
}

func TestNonNegative(t *testing.T) {
	tests := map[string]struct {
		in, want float64
	}{
		"positive": {3.5, 3.5},
		"zero":     {0, 0},
		"negative": {-2, 0},
		"nan":      {math.NaN(), 0},
		"+inf":     {math.Inf(1), 0},
		"-inf":     {math.Inf(-1), 0},
	}
	for name, tt := range tests {
		assert.Equal(t, tt.want, nonNegative(tt.in), name)
	}
}

// flipStyles reports el as inline the first time its style is read and as a
// block on every later read, so the block and the inline run disagree about
// the same token.
type flipStyles struct {
	el    *html.Node
	reads int
}

func (s *flipStyles) StyleOf(n *html.Node) css.ComputedStyle {
	style := css.NewStyle()
	if n == s.el {
		s.reads++
		if s.reads == 1 {
			style.Set("display", "inline")
		} else {
			style.Set("display", "block")
		}
	}
	return style
}

func TestLayout_ForcesProgressWhenRunStalls(t *testing.T) {
	root := html.NewElement("div", nil)
	span := html.NewElement("span", nil)
	span.AppendText("x")
	root.AddChild(span)

	core, logs := observer.New(zapcore.DebugLevel)
	styles := &flipStyles{el: span}
	doc := NewEngine(styles, text.HeuristicProvider{}, WithLogger(zap.New(core))).Layout(root, defaultViewport)

	forced := logs.FilterMessage("forcing walker progress").All()
	require.Len(t, forced, 1)
	fields := forced[0].ContextMap()
	assert.Equal(t, "span", fields["node"])
	assert.Equal(t, "div", fields["block"])
	assert.Equal(t, TokenStart.String(), fields["token"])

	// The stalled start token is consumed by drilling in, so the text
	// still lands in one run and the unmatched end token is dropped.
	require.Equal(t, []string{"inline-box"}, kinds(doc.Root.Children()))
	assert.Equal(t, []itemSummary{{Kind: "text-run", Label: "x"}},
		summarize(lineItems(t, doc.Root.Children()[0])))
	assert.Empty(t, doc.NodesByDOM(span))
}

func TestLayoutSegment_NothingEmitted(t *testing.T) {
	root := html.NewElement("div", nil)
	span := html.NewElement("span", nil)
	root.AddChild(span)

	doc := newDocument(Rect{Width: 100, Height: 100})
	env := &Env{Factory: NewFactory(doc), Metrics: text.HeuristicProvider{}, Logger: zap.NewNop()}

	w := NewWalker(root)
	w.Consume(true) // leaves the span's end token unmatched

	ib := env.Factory.NewInlineBox(root, nil)
	open := InlineStack{html.NewElement("q", nil)}
	ok, next := ib.LayoutSegment(w, Containing{Rect: doc.Viewport()}, 0, open, env)
	assert.False(t, ok)
	assert.Equal(t, open, next, "the open stack passes through untouched")
	assert.True(t, w.Done(), "unmatched end tokens are consumed")

	env.Factory.Discard(ib)
	assert.Zero(t, doc.Len())
	assert.Empty(t, doc.NodesByDOM(root))
}

func TestDump(t *testing.T) {
	f := newFixture(t, `<div id="root">hi<span></span></div>`)
	doc := f.layout(Viewport{Width: 100, Height: 50})

	var sb strings.Builder
	require.NoError(t, Dump(&sb, doc.Root))
	want := strings.Join([]string{
		`block div#root [0,0 100x19.2]`,
		`  inline-box div#root [0,0 100x19.2]`,
		`    line-box div#root [0,0 100x19.2]`,
		`      text-run "hi" [0,0 19.2x19.2] "hi"`,
		`      inline-start span [19.2,0 0x19.2]`,
		`      inline-end span [19.2,0 0x19.2]`,
		``,
	}, "\n")
	assert.Equal(t, want, sb.String())
}
