package section

import (
	"context"
	"fmt"
	"sort"
)

// Kind selects how a Definition resolves its container.
type Kind int

const (
	// KindSection resolves its container by test id inside its owner.
	KindSection Kind = iota
	// KindPage is a root that can be visited; without a test id its
	// container is the document body.
	KindPage
	// KindPortal resolves its container through the portal Registry,
	// searching the whole document.
	KindPortal
)

func (k Kind) String() string {
	switch k {
	case KindPage:
		return "Page"
	case KindPortal:
		return "Portal"
	default:
		return "Section"
	}
}

// Gate is the loaded-state check run once when an Instance is constructed.
// A falsy result fails construction with *PreconditionNotMetError; a
// returned error is propagated unchanged.
type Gate func(ctx context.Context, self *Self) (any, error)

// Method is a named behavior of a section. Methods named has_<thing>? are
// queries and get a derived has_<thing>! assertion.
type Method func(ctx context.Context, self *Self, args ...any) (any, error)

// URLFunc computes a page path from the instance, for paths that depend on
// attributes.
type URLFunc func(ctx context.Context, self *Self) (string, error)

// Definition is an immutable template for pages and sections. Definitions
// are built once, usually into package-level variables, and instantiated
// per test with Load or Visit.
type Definition struct {
	name       string
	kind       Kind
	base       *Definition
	anonymous  bool
	closed     bool
	attributes []string
	testID     string
	handle     string
	gate       Gate
	url        string
	urlFunc    URLFunc
	methods    map[string]Method
	derived    map[string]bool
	children   map[string]*binding
	order      []string
}

// binding ties a child name to its definition.
type binding struct {
	name   string
	portal bool
	parent string
	attrs  []string
	cfg    childConfig
	def    *Definition
}

// Name returns the qualified name used in diagnostics.
func (d *Definition) Name() string {
	return d.name
}

func (d *Definition) String() string {
	if d.anonymous {
		return fmt.Sprintf("%s(%s)", d.kind, d.name)
	}
	return d.name
}

// Kind returns the container strategy family.
func (d *Definition) Kind() Kind {
	return d.kind
}

// Base returns the definition d was derived from, or nil.
func (d *Definition) Base() *Definition {
	return d.base
}

// Anonymous reports whether d was declared inline.
func (d *Definition) Anonymous() bool {
	return d.anonymous
}

// Attributes returns the declared attribute names in declaration order.
func (d *Definition) Attributes() []string {
	out := make([]string, len(d.attributes))
	copy(out, d.attributes)
	return out
}

// HasAttribute reports whether name is a declared attribute.
func (d *Definition) HasAttribute(name string) bool {
	for _, attr := range d.attributes {
		if attr == name {
			return true
		}
	}
	return false
}

// TestID returns the normalized container test id, if any.
func (d *Definition) TestID() string {
	return d.testID
}

// Handle returns the portal handle, if any.
func (d *Definition) Handle() string {
	return d.handle
}

// Sections returns the child names in declaration order.
func (d *Definition) Sections() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// IsPortal reports whether the named child is a portal.
func (d *Definition) IsPortal(name string) bool {
	b, ok := d.children[name]
	return ok && b.portal
}

// Child returns the definition bound to the named child. For portals whose
// concrete definition comes from the registry, this is the definition used
// when nothing is registered.
func (d *Definition) Child(name string) (*Definition, bool) {
	b, ok := d.children[name]
	if !ok {
		return nil, false
	}
	return b.def, true
}

// Methods returns the public method names, sorted.
func (d *Definition) Methods() []string {
	names := make([]string, 0, len(d.methods))
	for name := range d.methods {
		if !d.derived[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// PrivateMethods returns the derived assertion names, sorted.
func (d *Definition) PrivateMethods() []string {
	names := make([]string, 0, len(d.derived))
	for name := range d.derived {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasMethod reports whether name is callable on instances of d, privately
// or publicly.
func (d *Definition) HasMethod(name string) bool {
	_, ok := d.methods[name]
	return ok
}

// Extends reports whether d is other or was derived from it.
func (d *Definition) Extends(other *Definition) bool {
	for cur := d; cur != nil; cur = cur.base {
		if cur == other {
			return true
		}
	}
	return false
}

// inherit copies everything d carries over from base. Derived assertions
// are left out so they are derived again against d's own queries.
func (d *Definition) inherit(base *Definition) {
	d.base = base
	d.closed = base.closed
	d.attributes = append(d.attributes, base.attributes...)
	d.testID = base.testID
	d.handle = base.handle
	d.gate = base.gate
	d.url = base.url
	d.urlFunc = base.urlFunc

	for name, m := range base.methods {
		if !base.derived[name] {
			d.methods[name] = m
		}
	}
	for _, name := range base.order {
		d.children[name] = base.children[name]
		d.order = append(d.order, name)
	}
}

func newDefinition(name string, kind Kind) *Definition {
	return &Definition{
		name:     name,
		kind:     kind,
		methods:  make(map[string]Method),
		derived:  make(map[string]bool),
		children: make(map[string]*binding),
	}
}
