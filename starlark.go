package toast

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
	"go.uber.org/zap"
)

// DefaultMaxSteps bounds the work one script block may do.
const DefaultMaxSteps = 1_000_000

// StarlarkExecutor runs text/starlark script blocks.
//
// Each block is executed as its own module with three predeclared names:
//
//	component   the instance's isolated root
//	attributes  frozen dict of the instance's coerced attributes
//	lookup(id)  another instance's component, or None
//
// The component value supports id, html(), set_html(markup),
// append_html(markup), text() and find(tag). Elements returned by find
// support tag, text(), set_text(s), get(name) and set(name, value).
type StarlarkExecutor struct {
	Logger   *zap.Logger
	MaxSteps uint64
}

// Execute runs sc.Block.
func (e *StarlarkExecutor) Execute(ctx context.Context, sc *ScriptContext) error {
	logger := e.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxSteps := e.MaxSteps
	if maxSteps == 0 {
		maxSteps = DefaultMaxSteps
	}

	thread := &starlark.Thread{
		Name: sc.InstanceID,
		Print: func(_ *starlark.Thread, msg string) {
			logger.Info(msg, zap.String("instance", sc.InstanceID))
		},
	}
	thread.SetMaxExecutionSteps(maxSteps)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			thread.Cancel(ctx.Err().Error())
		case <-done:
		}
	}()

	predeclared := starlark.StringDict{
		"component":  newComponentValue(sc.InstanceID, sc.Component),
		"attributes": attributesDict(sc.Attributes),
		"lookup": starlark.NewBuiltin("lookup", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var id string
			if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &id); err != nil {
				return nil, err
			}
			if sc.Lookup == nil {
				return starlark.None, nil
			}
			root, ok := sc.Lookup.LookupRoot(id)
			if !ok {
				return starlark.None, nil
			}
			return newComponentValue(id, root), nil
		}),
	}

	_, err := starlark.ExecFileOptions(scriptFileOptions, thread, sc.InstanceID+".star", dedent(sc.Block.Source), predeclared)
	return err
}

// scriptFileOptions lets a block read like a module body with loops and
// conditionals at the top level.
var scriptFileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
}

// toStarlark converts a coerced attribute. Integral numbers become ints.
func toStarlark(v Value) starlark.Value {
	switch v.Kind {
	case KindBool:
		return starlark.Bool(v.Bool)
	case KindNumber:
		if v.Number == math.Trunc(v.Number) && math.Abs(v.Number) < 1<<53 {
			return starlark.MakeInt64(int64(v.Number))
		}
		return starlark.Float(v.Number)
	default:
		return starlark.String(v.Str)
	}
}

func attributesDict(attrs Attributes) *starlark.Dict {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	d := starlark.NewDict(len(keys))
	for _, k := range keys {
		_ = d.SetKey(starlark.String(k), toStarlark(attrs[k]))
	}
	d.Freeze()
	return d
}

// dedent strips the indentation shared by every non-blank line, so blocks
// indented to match the surrounding markup still parse.
func dedent(src string) string {
	lines := strings.Split(src, "\n")
	prefix := ""
	first := true
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if first {
			prefix = indent
			first = false
			continue
		}
		for !strings.HasPrefix(indent, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	if prefix == "" {
		return src
	}
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, prefix)
	}
	return strings.Join(lines, "\n")
}

func asText(v starlark.Value) string {
	if s, ok := starlark.AsString(v); ok {
		return s
	}
	return v.String()
}

type componentValue struct {
	id   string
	root *ShadowRoot
}

var _ starlark.HasAttrs = (*componentValue)(nil)

func newComponentValue(id string, root *ShadowRoot) *componentValue {
	return &componentValue{id: id, root: root}
}

func (c *componentValue) String() string        { return fmt.Sprintf("<component %s>", c.id) }
func (c *componentValue) Type() string          { return "component" }
func (c *componentValue) Freeze()               {}
func (c *componentValue) Truth() starlark.Bool  { return starlark.True }
func (c *componentValue) Hash() (uint32, error) { return starlark.String(c.id).Hash() }

func (c *componentValue) AttrNames() []string {
	return []string{"append_html", "find", "html", "id", "set_html", "text"}
}

func (c *componentValue) Attr(name string) (starlark.Value, error) {
	switch name {
	case "id":
		return starlark.String(c.id), nil
	case "html":
		return c.method(name, 0, func(starlark.Tuple) (starlark.Value, error) {
			s, err := c.root.HTML()
			return starlark.String(s), err
		}), nil
	case "text":
		return c.method(name, 0, func(starlark.Tuple) (starlark.Value, error) {
			s, err := c.root.Text()
			return starlark.String(s), err
		}), nil
	case "set_html":
		return c.method(name, 1, func(args starlark.Tuple) (starlark.Value, error) {
			return starlark.None, c.root.SetHTML(asText(args[0]))
		}), nil
	case "append_html":
		return c.method(name, 1, func(args starlark.Tuple) (starlark.Value, error) {
			return starlark.None, c.root.AppendHTML(asText(args[0]))
		}), nil
	case "find":
		return c.method(name, 1, func(args starlark.Tuple) (starlark.Value, error) {
			refs, err := c.root.Find(asText(args[0]))
			if err != nil {
				return nil, err
			}
			elems := make([]starlark.Value, len(refs))
			for i, ref := range refs {
				elems[i] = &elementValue{ref: ref}
			}
			return starlark.NewList(elems), nil
		}), nil
	}
	return nil, nil
}

func (c *componentValue) method(name string, arity int, fn func(starlark.Tuple) (starlark.Value, error)) *starlark.Builtin {
	return starlark.NewBuiltin(name, func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if len(kwargs) > 0 {
			return nil, fmt.Errorf("%s: unexpected keyword arguments", b.Name())
		}
		if len(args) != arity {
			return nil, fmt.Errorf("%s: got %d arguments, want %d", b.Name(), len(args), arity)
		}
		return fn(args)
	})
}

type elementValue struct {
	ref *ElementRef
}

var _ starlark.HasAttrs = (*elementValue)(nil)

func (e *elementValue) String() string        { return fmt.Sprintf("<element %s>", e.ref.Tag()) }
func (e *elementValue) Type() string          { return "element" }
func (e *elementValue) Freeze()               {}
func (e *elementValue) Truth() starlark.Bool  { return starlark.True }
func (e *elementValue) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: element") }

func (e *elementValue) AttrNames() []string {
	return []string{"get", "set", "set_text", "tag", "text"}
}

func (e *elementValue) Attr(name string) (starlark.Value, error) {
	switch name {
	case "tag":
		return starlark.String(e.ref.Tag()), nil
	case "text":
		return starlark.NewBuiltin(name, func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0); err != nil {
				return nil, err
			}
			s, err := e.ref.Text()
			return starlark.String(s), err
		}), nil
	case "set_text":
		return starlark.NewBuiltin(name, func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var v starlark.Value
			if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &v); err != nil {
				return nil, err
			}
			return starlark.None, e.ref.SetText(asText(v))
		}), nil
	case "get":
		return starlark.NewBuiltin(name, func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var key string
			if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &key); err != nil {
				return nil, err
			}
			if val, ok := e.ref.Attr(key); ok {
				return starlark.String(val), nil
			}
			return starlark.None, nil
		}), nil
	case "set":
		return starlark.NewBuiltin(name, func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var key string
			var v starlark.Value
			if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 2, &key, &v); err != nil {
				return nil, err
			}
			return starlark.None, e.ref.SetAttr(key, asText(v))
		}), nil
	}
	return nil, nil
}
