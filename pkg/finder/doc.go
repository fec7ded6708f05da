// Package finder defines the DOM query boundary used by page objects.
//
// A Driver resolves CSS selectors against a document, either a static HTML
// document (package htmldoc) or a live browser page (package browser).
// The finder package layers the behavior page objects rely on over the
// driver primitives:
//
//   - Find: exactly-one element semantics with NotFound and Ambiguous errors
//   - Scopes: the stack of elements queries are currently scoped to
//   - Predicates: the builtin has_X? query set (content, css, links, ...)
//
// # Scopes
//
// The active scope stack travels in the context.Context instead of living
// in the driver. WithScope pushes an element, Scopes reports the stack, and
// Detached returns a context queries resolve against the whole document
// from. Because contexts are immutable the previous scope is restored on
// every exit path of Within.
//
//	err := finder.Within(ctx, form, func(ctx context.Context) error {
//	    _, err := finder.Find(ctx, driver, "input[name='email']")
//	    return err
//	})
//
// # Element paths
//
// Every Element exposes an opaque Path, an XPath-like string such as
// /html[1]/body[1]/div[2]. Paths of descendants extend the path of their
// ancestors segment by segment, which is what Contains relies on.
package finder
