package toast

import (
	"context"
	"net/http"
	"os"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Option configures a Runtime.
type Option func(*options)

type options struct {
	fetcher       Fetcher
	cache         *Cache
	logger        *zap.Logger
	ids           IDGenerator
	executors     map[string]Executor
	maxSteps      uint64
	onScriptError func(instanceID string, err error)
}

// WithFetcher sets the transport used to load templates and stylesheets.
// Defaults to an FSFetcher over the working directory.
func WithFetcher(f Fetcher) Option {
	return func(o *options) { o.fetcher = f }
}

// WithCache shares an existing cache. Defaults to a new cache per runtime.
func WithCache(c *Cache) Option {
	return func(o *options) { o.cache = c }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithIDGenerator sets the instance id generator. Defaults to UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(o *options) { o.ids = g }
}

// WithExecutor installs an executor for a script type, replacing any
// default for that type.
func WithExecutor(scriptType string, exec Executor) Option {
	return func(o *options) { o.executors[scriptType] = exec }
}

// WithMaxSteps bounds the execution steps of each Starlark script block.
func WithMaxSteps(n uint64) Option {
	return func(o *options) { o.maxSteps = n }
}

// WithScriptErrorHandler receives errors raised by embedded scripts.
// Defaults to logging them at error level.
func WithScriptErrorHandler(fn func(instanceID string, err error)) Option {
	return func(o *options) { o.onScriptError = fn }
}

// Runtime ties together the registry, the resource loader, the renderer and
// the instance lookup. Create one per process (or per test) with New.
type Runtime struct {
	registry *Registry
	loader   *Loader
	isolator *Isolator
	renderer *Renderer
	ids      IDGenerator
	logger   *zap.Logger

	mu        sync.RWMutex
	instances map[string]*Element

	// OnError is called by Handler when a page cannot be served.
	OnError func(http.ResponseWriter, *http.Request, error)
}

// New creates a runtime.
func New(opts ...Option) *Runtime {
	o := &options{executors: make(map[string]Executor)}
	for _, opt := range opts {
		opt(o)
	}
	if o.fetcher == nil {
		o.fetcher = &FSFetcher{FS: os.DirFS(".")}
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.ids == nil {
		o.ids = UUIDv7Generator{}
	}

	rt := &Runtime{
		registry:  NewRegistry(),
		loader:    NewLoader(o.fetcher, o.cache),
		isolator:  NewIsolator(),
		ids:       o.ids,
		logger:    o.logger,
		instances: make(map[string]*Element),
	}

	rt.isolator.Register(DefaultScriptType, &StarlarkExecutor{Logger: o.logger, MaxSteps: o.maxSteps})
	for typ, exec := range o.executors {
		rt.isolator.Register(typ, exec)
	}

	rt.isolator.OnError = o.onScriptError
	if rt.isolator.OnError == nil {
		rt.isolator.OnError = func(instanceID string, err error) {
			rt.logger.Error("script failed", zap.String("instance", instanceID), zap.Error(err))
		}
	}

	rt.renderer = NewRenderer(rt.loader, rt.isolator)

	rt.OnError = func(w http.ResponseWriter, r *http.Request, err error) {
		if IsNotFound(err) {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}

	return rt
}

// Registry returns the runtime's definitions.
func (rt *Runtime) Registry() *Registry {
	return rt.registry
}

// Define registers a component. See Registry.Define.
func (rt *Runtime) Define(tag, templatePath, stylesheetPath string) error {
	return rt.registry.Define(tag, templatePath, stylesheetPath)
}

// Cache returns the shared resource cache.
func (rt *Runtime) Cache() *Cache {
	return rt.loader.Cache()
}

// Logger returns the runtime's logger.
func (rt *Runtime) Logger() *zap.Logger {
	return rt.logger
}

// NewElement creates an unattached instance of a defined tag outside of any
// document.
func (rt *Runtime) NewElement(tag string, attrs map[string]string) (*Element, error) {
	def, ok := rt.registry.Lookup(tag)
	if !ok {
		return nil, &UndefinedTagError{Tag: tag}
	}

	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	raw := make([]html.Attribute, len(keys))
	for i, k := range keys {
		raw[i] = html.Attribute{Key: k, Val: attrs[k]}
	}

	return rt.newElement(def, raw), nil
}

// Lookup returns the attached instance with the given id.
func (rt *Runtime) Lookup(instanceID string) (*Element, bool) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	e, ok := rt.instances[instanceID]
	return e, ok
}

// LookupRoot returns the isolated root of an attached instance.
func (rt *Runtime) LookupRoot(instanceID string) (*ShadowRoot, bool) {
	e, ok := rt.Lookup(instanceID)
	if !ok {
		return nil, false
	}
	return e.root, true
}

func (rt *Runtime) track(e *Element) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.instances[e.id] = e
}

func (rt *Runtime) untrack(e *Element) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	delete(rt.instances, e.id)
}

func (rt *Runtime) render(ctx context.Context, e *Element, attrs Attributes) error {
	return rt.renderer.Render(ctx, RenderRequest{
		Root:       e.root,
		Definition: e.def,
		Attributes: attrs,
		InstanceID: e.id,
		Lookup:     rt,
	})
}
