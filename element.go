package toast

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// State is the lifecycle position of an Element.
type State int

const (
	// StateUnattached: constructed, root allocated, nothing rendered.
	StateUnattached State = iota
	// StateAttached: render started; stays attached whether it succeeds or not.
	StateAttached
	// StateDetached: root released. Terminal.
	StateDetached
)

func (s State) String() string {
	switch s {
	case StateUnattached:
		return "unattached"
	case StateAttached:
		return "attached"
	case StateDetached:
		return "detached"
	}
	return "unknown"
}

// Element is one instance of a defined component.
//
// An element moves Unattached -> Attached -> Detached. Attach coerces the
// element's attributes and starts rendering in the background; Detach
// cancels any render still in flight and releases the isolated root.
type Element struct {
	rt   *Runtime
	def  Definition
	id   string
	raw  []html.Attribute
	root *ShadowRoot

	mu     sync.Mutex
	state  State
	attrs  Attributes
	ctx    context.Context
	cancel context.CancelFunc
	err    error

	done     chan struct{}
	doneOnce sync.Once

	// settled runs after a successful render, before Done is closed.
	settled func(ctx context.Context, e *Element)
}

func (rt *Runtime) newElement(def Definition, raw []html.Attribute) *Element {
	return &Element{
		rt:   rt,
		def:  def,
		id:   rt.ids.Generate(),
		raw:  raw,
		root: NewShadowRoot(),
		done: make(chan struct{}),
	}
}

// ID returns the instance id.
func (e *Element) ID() string { return e.id }

// Tag returns the element's tag name.
func (e *Element) Tag() string { return e.def.Tag }

// Definition returns the component definition.
func (e *Element) Definition() Definition { return e.def }

// Root returns the isolated root.
func (e *Element) Root() *ShadowRoot { return e.root }

// State returns the current lifecycle state.
func (e *Element) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Done is closed once the initial render has settled, successfully or not,
// or when the element is detached without ever rendering.
func (e *Element) Done() <-chan struct{} {
	return e.done
}

// Err returns the error of the most recent render, if any.
func (e *Element) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// Attributes returns the coerced attributes computed at attach time.
func (e *Element) Attributes() (Attributes, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateDetached {
		return nil, ErrDetached
	}
	out := make(Attributes, len(e.attrs))
	for k, v := range e.attrs {
		out[k] = v
	}
	return out, nil
}

// HTML returns the content of the isolated root.
func (e *Element) HTML() (string, error) {
	if e.State() == StateDetached {
		return "", ErrDetached
	}
	return e.root.HTML()
}

// Attach starts the element's lifecycle. It never fails: render errors are
// logged and recorded in Err, and the element stays attached. Calling
// Attach on an element that is not Unattached does nothing.
func (e *Element) Attach(ctx context.Context) {
	e.mu.Lock()
	if e.state != StateUnattached {
		e.mu.Unlock()
		return
	}
	e.state = StateAttached
	e.attrs = CoerceAttributes(e.raw)
	attrs := e.attrs
	rctx, cancel := context.WithCancel(ctx)
	e.ctx, e.cancel = rctx, cancel
	// Tracked before the state is visible, so a racing Detach untracks after.
	e.rt.track(e)
	e.mu.Unlock()

	go func() {
		defer e.closeDone()
		if e.renderAndReport(rctx, attrs) && e.settled != nil {
			e.settled(rctx, e)
		}
	}()
}

// Refresh renders an attached element again with its current attributes and
// waits for the result. On failure the previous content stays in place.
func (e *Element) Refresh(ctx context.Context) error {
	e.mu.Lock()
	if e.state != StateAttached {
		e.mu.Unlock()
		return ErrDetached
	}
	attrs := e.attrs
	instance := e.ctx
	e.mu.Unlock()

	// Detaching cancels the refresh just like the initial render.
	rctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(instance, cancel)
	defer stop()

	e.renderAndReport(rctx, attrs)
	return e.Err()
}

// Detach cancels any pending render, releases the isolated root and removes
// the element from the instance lookup. The element cannot be reused.
func (e *Element) Detach() {
	e.mu.Lock()
	if e.state == StateDetached {
		e.mu.Unlock()
		return
	}
	e.state = StateDetached
	cancel := e.cancel
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	e.root.Release()
	e.rt.untrack(e)
	e.closeDone()
}

func (e *Element) closeDone() {
	e.doneOnce.Do(func() { close(e.done) })
}

// renderAndReport renders and records the outcome. It reports whether the
// render succeeded.
func (e *Element) renderAndReport(ctx context.Context, attrs Attributes) bool {
	err := e.rt.render(ctx, e, attrs)

	e.mu.Lock()
	e.err = err
	e.mu.Unlock()

	switch {
	case err == nil:
		return true
	case ctx.Err() != nil || IsReleased(err):
		e.rt.logger.Debug("render dropped after detach",
			zap.String("tag", e.def.Tag),
			zap.String("instance", e.id),
		)
	default:
		fields := []zap.Field{
			zap.String("tag", e.def.Tag),
			zap.String("instance", e.id),
			zap.Error(err),
		}
		var fe *ResourceFetchError
		if errors.As(err, &fe) {
			fields = append(fields, zap.String("path", fe.Path), zap.Int("status", fe.Status))
		}
		e.rt.logger.Error("render failed", fields...)
	}
	return false
}
