package finder

import (
	"context"
	"strings"
)

// Element is a node matched by a Driver.
type Element interface {
	// Path identifies the element's position in the document. The path of a
	// descendant always extends the path of its ancestors.
	Path() string
}

// Driver is the set of DOM primitives page objects are built on.
//
// A nil scope means the whole document.
type Driver interface {
	// Visit navigates to path, resolved against the driver's base location.
	Visit(ctx context.Context, path string) error

	// Document returns the body element of the current document.
	Document(ctx context.Context) (Element, error)

	// FindAll returns every descendant of scope matching selector, in
	// document order.
	FindAll(ctx context.Context, scope Element, selector string) ([]Element, error)

	// Text returns the normalized text content of el.
	Text(ctx context.Context, el Element) (string, error)

	// Attribute returns the value of the named attribute of el and whether
	// it is present.
	Attribute(ctx context.Context, el Element, name string) (string, bool, error)
}

// Find resolves selector to exactly one element inside the current scope of
// ctx.
func Find(ctx context.Context, d Driver, selector string) (Element, error) {
	scope := Current(ctx)

	matches, err := d.FindAll(ctx, scope, selector)
	if err != nil {
		return nil, err
	}

	switch len(matches) {
	case 0:
		return nil, &NotFoundError{Kind: KindCSS, Selector: selector, Within: pathOf(scope)}
	case 1:
		return matches[0], nil
	default:
		return nil, &AmbiguousError{Kind: KindCSS, Selector: selector, Within: pathOf(scope), Count: len(matches)}
	}
}

// Contains reports whether the element at path lies inside (or is) the
// element at ancestor. Paths are compared segment by segment so that
// div[1] does not contain div[10].
func Contains(ancestor, path string) bool {
	if ancestor == "" {
		return false
	}
	if path == ancestor {
		return true
	}
	return strings.HasPrefix(path, strings.TrimSuffix(ancestor, "/")+"/")
}

// NormalizeSpace collapses runs of whitespace into single spaces and trims
// the result, matching how browsers render text.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func pathOf(el Element) string {
	if el == nil {
		return ""
	}
	return el.Path()
}
