package toast

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"

	"github.com/a-h/templ"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a parsed page whose custom elements are managed by a Runtime.
//
// Every element whose tag is defined is upgraded to an Element, including
// elements that appear inside rendered isolated roots. Attach starts them;
// WriteHTML serializes the page with each isolated root emitted as a
// declarative shadow root:
//
//	<x-card title="Hi"><template shadowrootmode="open">…</template>light DOM</x-card>
//
// Document implements templ.Component, so a page can be embedded in a templ
// layout or served with Render.
type Document struct {
	rt   *Runtime
	tree *html.Node

	mu       sync.Mutex
	elements []*Element
	byNode   map[*html.Node]*Element
	owners   map[*Element]*ShadowRoot // root an element lives in; nil for the page
	closed   bool

	wg sync.WaitGroup
}

var _ templ.Component = (*Document)(nil)

// Parse reads a complete HTML page.
func (rt *Runtime) Parse(r io.Reader) (*Document, error) {
	tree, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return rt.newDocument(tree), nil
}

// ParseFragment reads a page fragment, as found inside <body>.
func (rt *Runtime) ParseFragment(r io.Reader) (*Document, error) {
	nodes, err := html.ParseFragment(r, fragmentContext)
	if err != nil {
		return nil, err
	}
	tree := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		tree.AppendChild(n)
	}
	return rt.newDocument(tree), nil
}

// ParseString is ParseFragment for a string.
func (rt *Runtime) ParseString(markup string) (*Document, error) {
	return rt.ParseFragment(strings.NewReader(markup))
}

func (rt *Runtime) newDocument(tree *html.Node) *Document {
	d := &Document{
		rt:     rt,
		tree:   tree,
		byNode: make(map[*html.Node]*Element),
		owners: make(map[*Element]*ShadowRoot),
	}
	d.mu.Lock()
	d.register(d.scan(tree), nil)
	d.mu.Unlock()
	return d
}

type candidate struct {
	node  *html.Node
	def   Definition
	attrs []html.Attribute
}

// scan finds defined elements under n. Template contents are inert and are
// not scanned.
func (d *Document) scan(n *html.Node) []candidate {
	var found []candidate
	walk(n, func(c *html.Node) bool {
		if c.Type != html.ElementNode {
			return true
		}
		if c.DataAtom == atom.Template || c.DataAtom == atom.Script || c.DataAtom == atom.Style {
			return false
		}
		if def, ok := d.rt.registry.Lookup(c.Data); ok {
			found = append(found, candidate{
				node:  c,
				def:   def,
				attrs: append([]html.Attribute(nil), c.Attr...),
			})
		}
		return true
	})
	return found
}

// register creates elements for new candidates. d.mu must be held.
func (d *Document) register(found []candidate, owner *ShadowRoot) []*Element {
	var added []*Element
	for _, c := range found {
		if _, ok := d.byNode[c.node]; ok {
			continue
		}
		e := d.rt.newElement(c.def, c.attrs)
		e.settled = d.upgradeRoot
		d.byNode[c.node] = e
		d.owners[e] = owner
		d.elements = append(d.elements, e)
		added = append(added, e)
	}
	return added
}

// upgradeRoot attaches the defined elements that a render placed inside e's
// root. It runs on e's render goroutine before e is marked done.
func (d *Document) upgradeRoot(ctx context.Context, e *Element) {
	var found []candidate
	if err := e.root.view(func(container *html.Node) {
		found = d.scan(container)
	}); err != nil {
		return
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	added := d.register(found, e.root)
	d.mu.Unlock()

	for _, child := range added {
		d.attach(ctx, child)
	}
}

func (d *Document) attach(ctx context.Context, e *Element) {
	d.wg.Add(1)
	e.Attach(ctx)
	go func() {
		<-e.Done()
		d.wg.Done()
	}()
}

// Attach attaches every unattached element in the page. Elements found
// inside rendered roots are attached as their parents finish rendering.
func (d *Document) Attach(ctx context.Context) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	var pending []*Element
	for _, e := range d.elements {
		if e.State() == StateUnattached && d.owners[e] == nil {
			pending = append(pending, e)
		}
	}
	d.mu.Unlock()

	for _, e := range pending {
		d.attach(ctx, e)
	}
}

// Wait blocks until every attached element, nested ones included, has
// settled, or ctx is done.
func (d *Document) Wait(ctx context.Context) error {
	settled := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(settled)
	}()
	select {
	case <-settled:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Render attaches all elements, waits for them to settle and writes the
// page to w.
func (d *Document) Render(ctx context.Context, w io.Writer) error {
	d.Attach(ctx)
	if err := d.Wait(ctx); err != nil {
		return err
	}
	return d.WriteHTML(w)
}

// Elements returns the document's elements in discovery order.
func (d *Document) Elements() []*Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Element(nil), d.elements...)
}

// ElementsByTag returns the document's elements with the given tag.
func (d *Document) ElementsByTag(tag string) []*Element {
	var out []*Element
	for _, e := range d.Elements() {
		if e.Tag() == tag {
			out = append(out, e)
		}
	}
	return out
}

// Lookup returns one of the document's elements by instance id.
func (d *Document) Lookup(instanceID string) (*Element, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, e := range d.elements {
		if e.id == instanceID {
			return e, true
		}
	}
	return nil, false
}

// Detach removes an element from the page and detaches it together with the
// elements rendered inside its root.
func (d *Document) Detach(instanceID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	var target *Element
	var host *html.Node
	for n, e := range d.byNode {
		if e.id == instanceID {
			target, host = e, n
			break
		}
	}
	if target == nil {
		return false
	}

	owner := d.owners[target]
	if owner == nil {
		if host.Parent != nil {
			host.Parent.RemoveChild(host)
		}
	} else {
		_ = owner.view(func(*html.Node) {
			if host.Parent != nil {
				host.Parent.RemoveChild(host)
			}
		})
	}
	d.detachLocked(target, host)
	return true
}

func (d *Document) detachLocked(e *Element, host *html.Node) {
	for n, child := range d.byNode {
		if d.owners[child] == e.root {
			d.detachLocked(child, n)
		}
	}
	e.Detach()
	delete(d.byNode, host)
	delete(d.owners, e)
	for i, el := range d.elements {
		if el == e {
			d.elements = append(d.elements[:i], d.elements[i+1:]...)
			break
		}
	}
}

// Close detaches every element. Renders still in flight no longer upgrade
// what they produce.
func (d *Document) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	for n, e := range d.byNode {
		e.Detach()
		delete(d.byNode, n)
	}
	d.elements = nil
	d.owners = make(map[*Element]*ShadowRoot)
}

// WriteHTML serializes the page in its current state. Attached elements get
// their isolated root content as a leading declarative shadow root.
func (d *Document) WriteHTML(w io.Writer) error {
	d.mu.Lock()
	out := d.clone(d.tree)
	d.mu.Unlock()

	for c := out.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(w, c); err != nil {
			return err
		}
	}
	return nil
}

// String returns the serialized page.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.WriteHTML(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// clone deep-copies n, inserting shadow root templates. d.mu must be held.
func (d *Document) clone(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}

	if e, ok := d.byNode[n]; ok && e.State() == StateAttached {
		tmpl := &html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.Template,
			Data:     "template",
			Attr:     []html.Attribute{{Key: "shadowrootmode", Val: "open"}},
		}
		if err := e.root.view(func(container *html.Node) {
			for ch := container.FirstChild; ch != nil; ch = ch.NextSibling {
				tmpl.AppendChild(d.clone(ch))
			}
		}); err == nil {
			c.AppendChild(tmpl)
		}
	}

	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		c.AppendChild(d.clone(ch))
	}
	return c
}
