package section

import (
	"context"
	"fmt"
	"sort"

	"github.com/entrhq/pageobject/pkg/finder"
)

// Attrs are the attribute values an Instance is constructed with.
type Attrs map[string]any

// Instance is a Definition bound to attribute values during one test.
//
// Containers and children are resolved lazily and memoized for the
// lifetime of the instance. Instances are not safe for concurrent use.
type Instance struct {
	def    *Definition
	rt     *Runtime
	attrs  Attrs
	handle string
	owner  *Instance

	container finder.Element
	children  map[string]*Instance
	path      string
	hasPath   bool
}

// Self is the receiver handed to gates, methods and URL functions. Unlike
// the Instance surface, it can call private methods such as the derived
// has_<thing>! assertions.
type Self struct {
	*Instance
}

// LoadOption configures Load and Visit.
type LoadOption func(*loadConfig)

type loadConfig struct {
	handle string
}

// WithHandle sets the name the instance is known by. Portal definitions
// without a declared Handle need one.
func WithHandle(handle string) LoadOption {
	return func(c *loadConfig) {
		c.handle = handle
	}
}

// Load instantiates def and runs its loaded-state gate. attrs must contain
// exactly the declared attributes.
func (d *Definition) Load(ctx context.Context, rt *Runtime, attrs Attrs, opts ...LoadOption) (*Instance, error) {
	inst, err := d.instantiate(rt, attrs, opts...)
	if err != nil {
		return nil, err
	}
	if err := inst.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return inst, nil
}

func (d *Definition) instantiate(rt *Runtime, attrs Attrs, opts ...LoadOption) (*Instance, error) {
	if err := rt.validate(); err != nil {
		return nil, err
	}

	var cfg loadConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.handle == "" {
		cfg.handle = d.handle
	}
	if d.kind == KindPortal && cfg.handle == "" {
		return nil, &MissingHandleError{Definition: d.String()}
	}

	if err := d.checkAttrs(attrs); err != nil {
		return nil, err
	}

	bound := make(Attrs, len(attrs))
	for name, value := range attrs {
		bound[name] = value
	}

	return &Instance{
		def:      d,
		rt:       rt,
		attrs:    bound,
		handle:   cfg.handle,
		children: make(map[string]*Instance),
	}, nil
}

// checkAttrs enforces exact-set binding: no unknown and no missing names.
func (d *Definition) checkAttrs(attrs Attrs) error {
	var unknown, missing []string
	for name := range attrs {
		if !d.HasAttribute(name) {
			unknown = append(unknown, name)
		}
	}
	for _, name := range d.attributes {
		if _, ok := attrs[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(unknown) == 0 && len(missing) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return &AttributeError{Definition: d.String(), Unknown: unknown, Missing: missing}
}

// Definition returns the definition the instance was built from.
func (i *Instance) Definition() *Definition {
	return i.def
}

// Runtime returns the runtime the instance queries through.
func (i *Instance) Runtime() *Runtime {
	return i.rt
}

// Is reports whether the instance's definition is def or extends it.
func (i *Instance) Is(def *Definition) bool {
	return i.def.Extends(def)
}

// Handle returns the name the instance was registered under in its
// parent, or the handle given to Load.
func (i *Instance) Handle() string {
	return i.handle
}

// Attr returns a bound attribute value.
func (i *Instance) Attr(name string) (any, error) {
	if !i.def.HasAttribute(name) {
		return nil, &UndefinedError{Kind: "attribute", Name: name, Definition: i.def.String()}
	}
	return i.attrs[name], nil
}

// Attrs returns a copy of the bound attributes.
func (i *Instance) Attrs() Attrs {
	out := make(Attrs, len(i.attrs))
	for name, value := range i.attrs {
		out[name] = value
	}
	return out
}

func (i *Instance) String() string {
	return fmt.Sprintf("#<%s:%p>", i.def, i)
}

// Section returns the named child, instantiating it on first access. The
// child receives the parent's values of the attributes it declares, and
// its gate runs once. Every fn is called with the (cached or new) child;
// the first error stops the chain and is returned along with the child.
func (i *Instance) Section(ctx context.Context, name string, fns ...func(*Instance) error) (*Instance, error) {
	child, ok := i.children[name]
	if !ok {
		var err error
		if child, err = i.loadChild(ctx, name); err != nil {
			return nil, err
		}
		i.children[name] = child
	}

	for _, fn := range fns {
		if err := fn(child); err != nil {
			return child, err
		}
	}
	return child, nil
}

func (i *Instance) loadChild(ctx context.Context, name string) (*Instance, error) {
	bnd, ok := i.def.children[name]
	if !ok {
		return nil, &UndefinedError{Kind: "section", Name: name, Definition: i.def.String()}
	}

	def := bnd.def
	if bnd.portal {
		var err error
		if def, err = i.resolvePortal(bnd); err != nil {
			return nil, err
		}
	}

	attrs := make(Attrs, len(def.attributes))
	for _, attr := range def.attributes {
		if value, ok := i.attrs[attr]; ok {
			attrs[attr] = value
		}
	}

	child, err := def.instantiate(i.rt, attrs, WithHandle(name))
	if err != nil {
		return nil, err
	}
	// Portals are detached from the parent's scope chain.
	if !bnd.portal {
		child.owner = i
	}

	if err := child.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return child, nil
}

// resolvePortal picks the definition of a portal child from the registry:
// explicit definitions must extend the registered one, anonymous ones are
// built on top of it.
func (i *Instance) resolvePortal(bnd *binding) (*Definition, error) {
	entry, err := i.rt.Portals.Lookup(bnd.name)
	if err != nil {
		return nil, err
	}
	if entry.Definition == nil {
		return bnd.def, nil
	}

	if bnd.cfg.explicit != nil {
		if !bnd.def.Extends(entry.Definition) {
			return nil, &InconsistentPortalError{
				Portal:     bnd.name,
				Registered: entry.Definition.String(),
				Given:      bnd.cfg.explicit.String(),
			}
		}
		return bnd.def, nil
	}
	return bnd.build(entry.Definition)
}

// Call invokes a public method.
func (i *Instance) Call(ctx context.Context, name string, args ...any) (any, error) {
	if i.def.derived[name] {
		return nil, &PrivateMethodError{Name: name, Definition: i.def.String()}
	}
	return i.self().Call(ctx, name, args...)
}

// Query invokes a public method and reports whether its result is truthy.
func (i *Instance) Query(ctx context.Context, name string, args ...any) (bool, error) {
	result, err := i.Call(ctx, name, args...)
	if err != nil {
		return false, err
	}
	return truthy(result), nil
}

// Call invokes any method, private ones included.
func (s *Self) Call(ctx context.Context, name string, args ...any) (any, error) {
	m, ok := s.def.methods[name]
	if !ok {
		return nil, &UndefinedError{Kind: "method", Name: name, Definition: s.def.String()}
	}
	return m(ctx, s, args...)
}

func (i *Instance) self() *Self {
	return &Self{Instance: i}
}
