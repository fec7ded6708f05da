package finder

import (
	"errors"
	"fmt"
)

// KindCSS is the selector kind used for CSS selectors.
const KindCSS = "css"

var (
	// ErrNotFound matches every *NotFoundError.
	ErrNotFound = errors.New("element not found")

	// ErrAmbiguous matches every *AmbiguousError.
	ErrAmbiguous = errors.New("ambiguous match")
)

// NotFoundError reports a selector with no match inside its scope.
type NotFoundError struct {
	Kind     string
	Selector string
	Within   string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("Unable to find %s %q", e.Kind, e.Selector)
	if e.Within != "" {
		msg += " within " + e.Within
	}
	return msg
}

// Is makes errors.Is(err, ErrNotFound) hold.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AmbiguousError reports a selector that matched more than one element
// where exactly one was expected.
type AmbiguousError struct {
	Kind     string
	Selector string
	Within   string
	Count    int
}

func (e *AmbiguousError) Error() string {
	msg := fmt.Sprintf("Ambiguous match, found %d elements matching %s %q", e.Count, e.Kind, e.Selector)
	if e.Within != "" {
		msg += " within " + e.Within
	}
	return msg
}

// Is makes errors.Is(err, ErrAmbiguous) hold.
func (e *AmbiguousError) Is(target error) bool {
	return target == ErrAmbiguous
}
