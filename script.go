package toast

import (
	"context"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultScriptType is assumed for script blocks without a type attribute.
const DefaultScriptType = "text/starlark"

// ScriptBlock is a script element extracted from rendered content.
type ScriptBlock struct {
	Source string
	Type   string
}

// InstanceLookup resolves an instance id to that instance's isolated root.
type InstanceLookup interface {
	LookupRoot(instanceID string) (*ShadowRoot, bool)
}

// ScriptContext is everything an Executor receives for one script block.
// Component and Attributes are the instance bindings; they are passed as
// values and never spliced into the script source.
type ScriptContext struct {
	Block      ScriptBlock
	InstanceID string
	Component  *ShadowRoot
	Attributes Attributes
	Lookup     InstanceLookup
}

// Executor runs script blocks of one script type.
type Executor interface {
	Execute(ctx context.Context, sc *ScriptContext) error
}

// Isolator re-creates and runs the script blocks of a rendered root.
//
// Script blocks arrive inert: assigning markup never executes them. For each
// block, in document order, the Isolator swaps in a fresh script element of
// the same type and source, then runs it exactly once through the Executor
// registered for its type. Blocks whose type has no Executor are data blocks
// and are left alone.
type Isolator struct {
	executors map[string]Executor

	// OnError receives failures raised by scripts. Errors are not retried
	// and do not stop later blocks from running.
	OnError func(instanceID string, err error)
}

// NewIsolator creates an isolator with no executors.
func NewIsolator() *Isolator {
	return &Isolator{
		executors: make(map[string]Executor),
		OnError:   func(string, error) {},
	}
}

// Register installs the executor for a script type.
func (iso *Isolator) Register(scriptType string, exec Executor) {
	iso.executors[strings.ToLower(scriptType)] = exec
}

// Executor returns the executor for a script type.
func (iso *Isolator) Executor(scriptType string) (Executor, bool) {
	exec, ok := iso.executors[strings.ToLower(scriptType)]
	return exec, ok
}

type pendingScript struct {
	node  *html.Node
	block ScriptBlock
}

// Isolate runs every executable script block under root. When lookup is
// non-nil the component binding is resolved through it by instanceID, and a
// failed lookup (the instance is gone) stops processing.
func (iso *Isolator) Isolate(ctx context.Context, root *ShadowRoot, attrs Attributes, instanceID string, lookup InstanceLookup) error {
	var pending []pendingScript
	err := root.view(func(container *html.Node) {
		walk(container, func(n *html.Node) bool {
			if n.Type != html.ElementNode {
				return true
			}
			if n.DataAtom == atom.Template {
				// Template contents are inert.
				return false
			}
			if n.DataAtom != atom.Script {
				return true
			}
			pending = append(pending, pendingScript{node: n, block: scriptBlock(n)})
			return false
		})
	})
	if err != nil {
		return err
	}

	for _, p := range pending {
		exec, ok := iso.Executor(p.block.Type)
		if !ok {
			continue
		}

		component := root
		if lookup != nil {
			component, ok = lookup.LookupRoot(instanceID)
			if !ok {
				return ErrDetached
			}
		}

		replaced := false
		err := root.view(func(container *html.Node) {
			if !contains(container, p.node) {
				return
			}
			fresh := freshScript(p.node, p.block.Source)
			p.node.Parent.InsertBefore(fresh, p.node)
			p.node.Parent.RemoveChild(p.node)
			replaced = true
		})
		if err != nil {
			return err
		}
		if !replaced {
			// An earlier script replaced the content this block lived in.
			continue
		}

		sc := &ScriptContext{
			Block:      p.block,
			InstanceID: instanceID,
			Component:  component,
			Attributes: attrs,
			Lookup:     lookup,
		}
		if err := exec.Execute(ctx, sc); err != nil {
			iso.OnError(instanceID, &ScriptError{InstanceID: instanceID, Type: p.block.Type, Cause: err})
		}
	}
	return nil
}

func scriptBlock(n *html.Node) ScriptBlock {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	typ := strings.TrimSpace(attrValue(n, "type"))
	if typ == "" {
		typ = DefaultScriptType
	}
	return ScriptBlock{Source: sb.String(), Type: strings.ToLower(typ)}
}

func freshScript(orig *html.Node, source string) *html.Node {
	fresh := &html.Node{
		Type:     html.ElementNode,
		Data:     orig.Data,
		DataAtom: orig.DataAtom,
		Attr:     append([]html.Attribute(nil), orig.Attr...),
	}
	fresh.AppendChild(&html.Node{Type: html.TextNode, Data: source})
	return fresh
}
