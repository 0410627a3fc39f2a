package toast

import (
	"bytes"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ShadowRoot is the isolated content boundary owned by one element instance.
//
// Content is replaced wholesale by SetHTML and serialized by HTML. All
// methods are safe for concurrent use. Once Release is called every query
// fails with ErrReleased.
type ShadowRoot struct {
	mu       sync.Mutex
	node     *html.Node
	released bool
}

// NewShadowRoot allocates an empty root.
func NewShadowRoot() *ShadowRoot {
	return &ShadowRoot{node: &html.Node{Type: html.DocumentNode}}
}

// fragmentContext is the element markup fragments are parsed against.
var fragmentContext = &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}

func parseFragment(markup string) ([]*html.Node, error) {
	return html.ParseFragment(strings.NewReader(markup), fragmentContext)
}

// SetHTML replaces the entire content of the root with markup. The markup is
// parsed before the root is touched, so a parse failure leaves the previous
// content in place.
func (r *ShadowRoot) SetHTML(markup string) error {
	nodes, err := parseFragment(markup)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return ErrReleased
	}
	removeChildren(r.node)
	for _, n := range nodes {
		r.node.AppendChild(n)
	}
	return nil
}

// AppendHTML parses markup and appends it after the current content.
func (r *ShadowRoot) AppendHTML(markup string) error {
	nodes, err := parseFragment(markup)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return ErrReleased
	}
	for _, n := range nodes {
		r.node.AppendChild(n)
	}
	return nil
}

// HTML serializes the current content.
func (r *ShadowRoot) HTML() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return "", ErrReleased
	}
	return renderChildren(r.node)
}

// Text returns the concatenated text content, excluding style and script
// bodies.
func (r *ShadowRoot) Text() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return "", ErrReleased
	}
	var sb strings.Builder
	collectText(&sb, r.node)
	return sb.String(), nil
}

// Find returns the elements with the given tag name in document order.
func (r *ShadowRoot) Find(tag string) ([]*ElementRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return nil, ErrReleased
	}
	tag = strings.ToLower(tag)
	var refs []*ElementRef
	walk(r.node, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == tag {
			refs = append(refs, &ElementRef{root: r, node: n})
		}
		return true
	})
	return refs, nil
}

// Release discards the content and marks the root unusable.
func (r *ShadowRoot) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return
	}
	removeChildren(r.node)
	r.released = true
}

// Released reports whether Release has been called.
func (r *ShadowRoot) Released() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.released
}

// view runs fn with the root locked. fn must not retain the node.
func (r *ShadowRoot) view(fn func(container *html.Node)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return ErrReleased
	}
	fn(r.node)
	return nil
}

// ElementRef is a handle to an element inside a ShadowRoot. Every access
// goes through the owning root's lock.
type ElementRef struct {
	root *ShadowRoot
	node *html.Node
}

// Tag returns the element's tag name.
func (e *ElementRef) Tag() string {
	return e.node.Data
}

// Attr returns the value of an attribute.
func (e *ElementRef) Attr(name string) (string, bool) {
	e.root.mu.Lock()
	defer e.root.mu.Unlock()
	if e.root.released {
		return "", false
	}
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or adds an attribute.
func (e *ElementRef) SetAttr(name, value string) error {
	e.root.mu.Lock()
	defer e.root.mu.Unlock()
	if e.root.released {
		return ErrReleased
	}
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			e.node.Attr[i].Val = value
			return nil
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: value})
	return nil
}

// Text returns the element's text content.
func (e *ElementRef) Text() (string, error) {
	e.root.mu.Lock()
	defer e.root.mu.Unlock()
	if e.root.released {
		return "", ErrReleased
	}
	var sb strings.Builder
	collectText(&sb, e.node)
	return sb.String(), nil
}

// SetText replaces the element's children with a single text node.
func (e *ElementRef) SetText(text string) error {
	e.root.mu.Lock()
	defer e.root.mu.Unlock()
	if e.root.released {
		return ErrReleased
	}
	removeChildren(e.node)
	e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return nil
}

func removeChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}

func renderChildren(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// walk visits n's descendants in document order. Returning false from fn
// skips the node's children.
func walk(n *html.Node, fn func(*html.Node) bool) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if fn(c) {
			walk(c, fn)
		}
	}
}

func collectText(sb *strings.Builder, n *html.Node) {
	walk(n, func(c *html.Node) bool {
		switch {
		case c.Type == html.TextNode:
			sb.WriteString(c.Data)
		case c.Type == html.ElementNode && (c.DataAtom == atom.Script || c.DataAtom == atom.Style):
			return false
		}
		return true
	})
}

// contains reports whether n is a descendant of ancestor.
func contains(ancestor, n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

func attrValue(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val
		}
	}
	return ""
}
