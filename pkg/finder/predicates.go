package finder

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Predicate is a boolean query evaluated inside the current scope of ctx.
type Predicate func(ctx context.Context, d Driver, args ...any) (bool, error)

var predicates = map[string]Predicate{
	"has_content?":     hasContent,
	"has_text?":        hasContent,
	"has_no_content?":  negate(hasContent),
	"has_no_text?":     negate(hasContent),
	"has_css?":         hasSelector,
	"has_selector?":    hasSelector,
	"has_no_css?":      negate(hasSelector),
	"has_no_selector?": negate(hasSelector),
	"has_link?":        hasLink,
	"has_button?":      hasButton,
	"has_field?":       hasField,
}

// Predicates returns the builtin query set keyed by method name.
func Predicates() map[string]Predicate {
	out := make(map[string]Predicate, len(predicates))
	for name, p := range predicates {
		out[name] = p
	}
	return out
}

// PredicateNames returns the builtin query names in sorted order.
func PredicateNames() []string {
	names := make([]string, 0, len(predicates))
	for name := range predicates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func negate(p Predicate) Predicate {
	return func(ctx context.Context, d Driver, args ...any) (bool, error) {
		ok, err := p(ctx, d, args...)
		if err != nil {
			return false, err
		}
		return !ok, nil
	}
}

func hasContent(ctx context.Context, d Driver, args ...any) (bool, error) {
	want, err := stringArg("content", args)
	if err != nil {
		return false, err
	}

	scope := Current(ctx)
	if scope == nil {
		if scope, err = d.Document(ctx); err != nil {
			return false, err
		}
	}

	text, err := d.Text(ctx, scope)
	if err != nil {
		return false, err
	}
	return strings.Contains(text, NormalizeSpace(want)), nil
}

func hasSelector(ctx context.Context, d Driver, args ...any) (bool, error) {
	selector, err := stringArg("selector", args)
	if err != nil {
		return false, err
	}

	matches, err := d.FindAll(ctx, Current(ctx), selector)
	if err != nil {
		return false, err
	}
	return len(matches) > 0, nil
}

func hasLink(ctx context.Context, d Driver, args ...any) (bool, error) {
	locator, err := stringArg("link locator", args)
	if err != nil {
		return false, err
	}
	return anyMatch(ctx, d, "a[href]", locator, []string{"id", "title"}, true)
}

func hasButton(ctx context.Context, d Driver, args ...any) (bool, error) {
	locator, err := stringArg("button locator", args)
	if err != nil {
		return false, err
	}
	selector := "button, input[type='submit'], input[type='button'], input[type='reset'], input[type='image']"
	return anyMatch(ctx, d, selector, locator, []string{"id", "name", "value", "title"}, true)
}

func hasField(ctx context.Context, d Driver, args ...any) (bool, error) {
	locator, err := stringArg("field locator", args)
	if err != nil {
		return false, err
	}

	selector := "input:not([type='submit']):not([type='button']):not([type='reset']):not([type='image']):not([type='hidden']), textarea, select"
	if ok, err := anyMatch(ctx, d, selector, locator, []string{"id", "name", "placeholder"}, false); ok || err != nil {
		return ok, err
	}

	// Fall back to <label for=...> text.
	labels, err := d.FindAll(ctx, Current(ctx), "label[for]")
	if err != nil {
		return false, err
	}
	for _, label := range labels {
		text, err := d.Text(ctx, label)
		if err != nil {
			return false, err
		}
		if !strings.Contains(text, NormalizeSpace(locator)) {
			continue
		}
		id, _, err := d.Attribute(ctx, label, "for")
		if err != nil {
			return false, err
		}
		fields, err := d.FindAll(ctx, Current(ctx), fmt.Sprintf("[id='%s']", id))
		if err != nil {
			return false, err
		}
		if len(fields) > 0 {
			return true, nil
		}
	}
	return false, nil
}

// anyMatch reports whether an element matching selector is identified by
// locator through one of attrs, or through its text when matchText is set.
func anyMatch(ctx context.Context, d Driver, selector, locator string, attrs []string, matchText bool) (bool, error) {
	elements, err := d.FindAll(ctx, Current(ctx), selector)
	if err != nil {
		return false, err
	}

	for _, el := range elements {
		for _, attr := range attrs {
			value, ok, err := d.Attribute(ctx, el, attr)
			if err != nil {
				return false, err
			}
			if ok && value == locator {
				return true, nil
			}
		}

		if !matchText {
			continue
		}
		text, err := d.Text(ctx, el)
		if err != nil {
			return false, err
		}
		if strings.Contains(text, NormalizeSpace(locator)) {
			return true, nil
		}
	}
	return false, nil
}

func stringArg(what string, args []any) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("expected 1 argument (%s), got %d", what, len(args))
	}
	switch v := args[0].(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", fmt.Errorf("expected %s to be a string, got %T", what, args[0])
	}
}
