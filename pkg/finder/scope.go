package finder

import "context"

type scopeKey struct{}

// WithScope returns a context whose queries are scoped to el. The previous
// stack is left untouched.
func WithScope(ctx context.Context, el Element) context.Context {
	prev := Scopes(ctx)
	stack := make([]Element, len(prev), len(prev)+1)
	copy(stack, prev)
	stack = append(stack, el)
	return context.WithValue(ctx, scopeKey{}, stack)
}

// Scopes returns the active scope stack, outermost first.
func Scopes(ctx context.Context) []Element {
	stack, _ := ctx.Value(scopeKey{}).([]Element)
	return stack
}

// Current returns the innermost scope, or nil for the whole document.
func Current(ctx context.Context) Element {
	stack := Scopes(ctx)
	if len(stack) == 0 {
		return nil
	}
	return stack[len(stack)-1]
}

// Detached returns a context with an empty scope stack. Queries made with it
// search the entire document.
func Detached(ctx context.Context) context.Context {
	if len(Scopes(ctx)) == 0 {
		return ctx
	}
	return context.WithValue(ctx, scopeKey{}, []Element(nil))
}

// Within runs fn with el pushed onto the scope stack.
func Within(ctx context.Context, el Element, fn func(ctx context.Context) error) error {
	return fn(WithScope(ctx, el))
}

// InScope reports whether any active scope is path or one of its
// descendants.
func InScope(ctx context.Context, path string) bool {
	for _, el := range Scopes(ctx) {
		if el != nil && Contains(path, el.Path()) {
			return true
		}
	}
	return false
}
