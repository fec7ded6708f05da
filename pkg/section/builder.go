package section

import (
	"context"
	"errors"
	"fmt"
)

const anonymousAttributeReason = "Attributes cannot be defined in anonymous sections. " +
	"They inherit all arguments from parent pages/sections automatically."

// Builder collects the declarations of one Definition. Builders are only
// valid inside the function passed to Define, DefinePage, DefinePortal,
// Extend or With; declaration errors are collected and returned by the
// constructor.
type Builder struct {
	def      *Definition
	declared map[string]bool
	pending  []*pendingChild
	errs     []error
}

type pendingChild struct {
	name   string
	portal bool
	cfg    childConfig
}

type childConfig struct {
	explicit  *Definition
	testID    string
	hasTestID bool
	block     func(*Builder)
}

// ChildOption customizes a Section or Portal declaration.
type ChildOption func(*childConfig)

// Using binds the child to an explicit definition instead of an anonymous
// one. The child specializes def.
func Using(def *Definition) ChildOption {
	return func(c *childConfig) {
		c.explicit = def
	}
}

// TestID overrides the container test id, which defaults to the child name.
func TestID(id string) ChildOption {
	return func(c *childConfig) {
		c.testID = id
		c.hasTestID = true
	}
}

// With customizes the child definition.
func With(fn func(*Builder)) ChildOption {
	return func(c *childConfig) {
		c.block = fn
	}
}

// Define builds a root section definition.
func Define(name string, fn func(*Builder)) (*Definition, error) {
	return build(newDefinition(name, KindSection), fn)
}

// DefinePage builds a page definition. Pages declare a URL and can be
// visited.
func DefinePage(name string, fn func(*Builder)) (*Definition, error) {
	return build(newDefinition(name, KindPage), fn)
}

// DefinePortal builds a standalone portal definition. It must declare a
// Handle before it can be loaded.
func DefinePortal(name string, fn func(*Builder)) (*Definition, error) {
	return build(newDefinition(name, KindPortal), fn)
}

// Extend builds a definition derived from base. It inherits attributes,
// container, gate, methods, children and URL, and may override any of
// them.
func Extend(base *Definition, name string, fn func(*Builder)) (*Definition, error) {
	if base == nil {
		return nil, &DefinitionError{Definition: name, Reason: "cannot extend a nil definition"}
	}
	def := newDefinition(name, base.kind)
	def.inherit(base)
	return build(def, fn)
}

// Must panics if err is non-nil. It is meant for package-level definitions.
func Must(def *Definition, err error) *Definition {
	if err != nil {
		panic(err)
	}
	return def
}

func build(def *Definition, fn func(*Builder)) (*Definition, error) {
	if def.name == "" {
		return nil, &DefinitionError{Definition: def.String(), Reason: "name must not be empty"}
	}
	if err := finalize(def, fn); err != nil {
		return nil, err
	}
	return def, nil
}

// finalize runs the declarations, then builds the declared children
// against the final attribute set and derives the precondition methods.
func finalize(def *Definition, fn func(*Builder)) error {
	b := &Builder{def: def, declared: make(map[string]bool)}
	if fn != nil {
		fn(b)
	}

	for _, p := range b.pending {
		bnd, err := newBinding(def, p)
		if err != nil {
			b.errs = append(b.errs, err)
			continue
		}
		def.children[p.name] = bnd
	}

	installPredicates(def)
	derivePreconditions(def)

	return errors.Join(b.errs...)
}

// Def returns the definition being built.
func (b *Builder) Def() *Definition {
	return b.def
}

func (b *Builder) fail(reason string) *Builder {
	b.errs = append(b.errs, &DefinitionError{Definition: b.def.String(), Reason: reason})
	return b
}

// Attribute declares required construction attributes.
func (b *Builder) Attribute(names ...string) *Builder {
	if b.def.closed {
		return b.fail(anonymousAttributeReason)
	}
	for _, name := range names {
		if name == "" {
			b.fail("attribute name must not be empty")
			continue
		}
		if !b.def.HasAttribute(name) {
			b.def.attributes = append(b.def.attributes, name)
		}
	}
	return b
}

// ContainerTestID sets the test id the container is found by. Underscores
// are normalized to hyphens.
func (b *Builder) ContainerTestID(id string) *Builder {
	b.def.testID = normalizeTestID(id)
	return b
}

// EnsureLoaded sets the loaded-state gate.
func (b *Builder) EnsureLoaded(gate Gate) *Builder {
	if gate == nil {
		return b.fail("EnsureLoaded requires a gate")
	}
	b.def.gate = gate
	return b
}

// Method declares a named method. Queries named has_<thing>? get a derived
// has_<thing>! assertion unless one is declared too.
func (b *Builder) Method(name string, fn Method) *Builder {
	if name == "" || fn == nil {
		return b.fail("Method requires a name and a function")
	}
	b.def.methods[name] = fn
	delete(b.def.derived, name)
	return b
}

// Section declares a nested section.
func (b *Builder) Section(name string, opts ...ChildOption) *Builder {
	return b.child(name, false, opts)
}

// Portal declares a portal section: its container is found through the
// portal registry, anywhere in the document.
func (b *Builder) Portal(name string, opts ...ChildOption) *Builder {
	return b.child(name, true, opts)
}

func (b *Builder) child(name string, portal bool, opts []ChildOption) *Builder {
	if name == "" {
		return b.fail("section name must not be empty")
	}
	if b.declared[name] {
		return b.fail(fmt.Sprintf("section %q is already declared", name))
	}

	var cfg childConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if portal && cfg.hasTestID {
		return b.fail(fmt.Sprintf("portal %q: test ids of portals are configured in the portal registry", name))
	}

	b.declared[name] = true
	if _, inherited := b.def.children[name]; !inherited {
		b.def.order = append(b.def.order, name)
	}
	b.pending = append(b.pending, &pendingChild{name: name, portal: portal, cfg: cfg})
	return b
}

// URL sets a static page path.
func (b *Builder) URL(path string) *Builder {
	if b.def.kind != KindPage {
		return b.fail("URL can only be declared on pages")
	}
	b.def.url = path
	b.def.urlFunc = nil
	return b
}

// URLFunc sets a path computed from the instance, typically from its
// attributes.
func (b *Builder) URLFunc(fn URLFunc) *Builder {
	if b.def.kind != KindPage {
		return b.fail("URLFunc can only be declared on pages")
	}
	b.def.urlFunc = fn
	b.def.url = ""
	return b
}

// Handle sets the portal name a portal definition resolves through.
func (b *Builder) Handle(name string) *Builder {
	if b.def.kind != KindPortal {
		return b.fail("Handle can only be declared on portals")
	}
	b.def.handle = name
	return b
}

func newBinding(parent *Definition, p *pendingChild) (*binding, error) {
	bnd := &binding{
		name:   p.name,
		portal: p.portal,
		parent: parent.name,
		attrs:  parent.Attributes(),
		cfg:    p.cfg,
	}

	def, err := bnd.build(nil)
	if err != nil {
		return nil, err
	}
	bnd.def = def
	return bnd, nil
}

// build creates the child definition. registered, when set, is the
// definition a portal registration supplies for anonymous portals.
func (bnd *binding) build(registered *Definition) (*Definition, error) {
	cfg := bnd.cfg
	kind := KindSection
	if bnd.portal {
		kind = KindPortal
	}

	var def *Definition
	switch {
	case cfg.explicit != nil:
		def = newDefinition(cfg.explicit.name, kind)
		def.inherit(cfg.explicit)
		def.closed = true
	case registered != nil:
		def = newDefinition(qualify(bnd.parent, bnd.name), kind)
		def.inherit(registered)
		def.anonymous = true
		def.closed = true
	default:
		def = newDefinition(qualify(bnd.parent, bnd.name), kind)
		def.attributes = append(def.attributes, bnd.attrs...)
		def.anonymous = true
		def.closed = true
	}

	if def.gate == nil {
		def.gate = containerGate
	}
	if bnd.portal {
		def.handle = bnd.name
	}

	if err := finalize(def, cfg.block); err != nil {
		return nil, err
	}

	if !bnd.portal {
		switch {
		case cfg.hasTestID:
			def.testID = normalizeTestID(cfg.testID)
		case cfg.explicit != nil && def.testID != "":
		default:
			def.testID = normalizeTestID(bnd.name)
		}
	}
	return def, nil
}

// containerGate passes once the container resolves.
func containerGate(ctx context.Context, self *Self) (any, error) {
	return self.Container(ctx)
}
