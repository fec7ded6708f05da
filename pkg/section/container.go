package section

import (
	"context"
	"fmt"

	"github.com/entrhq/pageobject/pkg/finder"
)

// Container returns the element the instance's queries are scoped to,
// resolving it on first use:
//
//   - portals find the registered test id over the entire document;
//   - sections with a test id find it inside their owner's container (or
//     the current scope of ctx for roots);
//   - pages without a test id use the document body.
func (i *Instance) Container(ctx context.Context) (finder.Element, error) {
	if i.container != nil {
		return i.container, nil
	}

	el, err := i.resolveContainer(ctx)
	if err != nil {
		return nil, err
	}
	i.container = el
	return el, nil
}

func (i *Instance) resolveContainer(ctx context.Context) (finder.Element, error) {
	switch {
	case i.def.kind == KindPortal:
		entry, err := i.rt.Portals.Lookup(i.handle)
		if err != nil {
			return nil, err
		}
		return finder.Find(finder.Detached(ctx), i.rt.Driver, i.rt.Selector(entry.TestID))

	case i.def.testID != "":
		if i.owner != nil {
			scope, err := i.owner.Container(ctx)
			if err != nil {
				return nil, err
			}
			ctx = finder.WithScope(finder.Detached(ctx), scope)
		}
		return finder.Find(ctx, i.rt.Driver, i.rt.Selector(i.def.testID))

	case i.def.kind == KindPage:
		return i.rt.Driver.Document(ctx)

	default:
		return nil, &ConfigurationError{
			Definition: i.def.String(),
			Message:    "Container not configured. Define a container with ContainerTestID",
		}
	}
}

// wrapping runs fn scoped to the container, unless ctx is already inside
// it.
func (i *Instance) wrapping(ctx context.Context, fn func(ctx context.Context) error) error {
	container, err := i.Container(ctx)
	if err != nil {
		return err
	}
	if finder.InScope(ctx, container.Path()) {
		return fn(ctx)
	}
	return finder.Within(ctx, container, fn)
}

// Within runs fn with queries scoped to the container. Nested Within calls
// on the same or enclosing sections do not open new scopes.
func (i *Instance) Within(ctx context.Context, fn func(ctx context.Context) error) error {
	return i.wrapping(ctx, fn)
}

// Find resolves selector to exactly one element inside the container.
func (i *Instance) Find(ctx context.Context, selector string) (finder.Element, error) {
	var el finder.Element
	err := i.wrapping(ctx, func(ctx context.Context) error {
		var err error
		el, err = finder.Find(ctx, i.rt.Driver, selector)
		return err
	})
	return el, err
}

// FindAll returns every match of selector inside the container.
func (i *Instance) FindAll(ctx context.Context, selector string) ([]finder.Element, error) {
	var els []finder.Element
	err := i.wrapping(ctx, func(ctx context.Context) error {
		var err error
		els, err = i.rt.Driver.FindAll(ctx, finder.Current(ctx), selector)
		return err
	})
	return els, err
}

// Text returns the normalized text of the container.
func (i *Instance) Text(ctx context.Context) (string, error) {
	container, err := i.Container(ctx)
	if err != nil {
		return "", err
	}
	return i.rt.Driver.Text(ctx, container)
}

// Attribute returns an attribute of the container element.
func (i *Instance) Attribute(ctx context.Context, name string) (string, bool, error) {
	container, err := i.Container(ctx)
	if err != nil {
		return "", false, err
	}
	value, ok, err := i.rt.Driver.Attribute(ctx, container, name)
	if err != nil {
		return "", false, fmt.Errorf("attribute %q of %s: %w", name, i.def, err)
	}
	return value, ok, nil
}
