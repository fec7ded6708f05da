package section

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	// ErrDefinition matches errors raised while building a Definition.
	ErrDefinition = errors.New("invalid definition")
	// ErrAttribute matches attribute binding errors.
	ErrAttribute = errors.New("invalid attributes")
	// ErrConfiguration matches missing gate, container or URL errors.
	ErrConfiguration = errors.New("not configured")
	// ErrPreconditionNotMet matches failed gates and failed has_X! assertions.
	ErrPreconditionNotMet = errors.New("precondition not met")
	// ErrPortalNotConfigured matches lookups of unregistered portals.
	ErrPortalNotConfigured = errors.New("portal not configured")
	// ErrDuplicatePortal matches repeated portal registrations.
	ErrDuplicatePortal = errors.New("portal already registered")
	// ErrMissingHandle matches portals instantiated without a handle.
	ErrMissingHandle = errors.New("missing portal handle")
	// ErrInconsistentPortal matches portal definitions that do not extend
	// the registered one.
	ErrInconsistentPortal = errors.New("inconsistent portal definition")
	// ErrUndefined matches lookups of undeclared sections, attributes and
	// methods.
	ErrUndefined = errors.New("undefined")
	// ErrPrivateMethod matches public calls of derived assertion methods.
	ErrPrivateMethod = errors.New("private method")
)

// DefinitionError is returned when a Definition is declared incorrectly,
// such as an attribute declared on an anonymous section.
type DefinitionError struct {
	Definition string
	Reason     string
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Definition, e.Reason)
}

func (e *DefinitionError) Is(target error) bool { return target == ErrDefinition }

// AttributeError is returned when the attributes passed to Load do not
// exactly match the declared ones.
type AttributeError struct {
	Definition string
	Unknown    []string
	Missing    []string
}

func (e *AttributeError) Error() string {
	var parts []string
	if len(e.Unknown) > 0 {
		parts = append(parts, fmt.Sprintf("Unknown attribute(s) passed to %s: %v", e.Definition, e.Unknown))
	}
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("Missing attribute(s) passed to %s: %v", e.Definition, e.Missing))
	}
	return strings.Join(parts, "; ")
}

func (e *AttributeError) Is(target error) bool { return target == ErrAttribute }

// ConfigurationError is returned when a Definition lacks something it needs
// at runtime: a gate, a container strategy, a URL or a driver.
type ConfigurationError struct {
	Definition string
	Message    string
}

func (e *ConfigurationError) Error() string {
	if e.Definition == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (in %s)", e.Message, e.Definition)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// PreconditionNotMetError is returned when a gate or a derived has_X!
// assertion observes a falsy value.
type PreconditionNotMetError struct {
	// Method is the failing assertion, e.g. has_content!
	Method string
	// Query is the query it forwarded to, e.g. has_content?
	Query string
	// Value is the falsy value the query returned
	Value any
}

func (e *PreconditionNotMetError) Error() string {
	return fmt.Sprintf("%s: Expected %s to return truthy, but it returned %s", e.Method, e.Query, inspect(e.Value))
}

func (e *PreconditionNotMetError) Is(target error) bool { return target == ErrPreconditionNotMet }

// PortalNotConfiguredError is returned when a portal name has no
// registration.
type PortalNotConfiguredError struct {
	Name string
}

func (e *PortalNotConfiguredError) Error() string {
	return fmt.Sprintf("The portal %q is not configured", e.Name)
}

func (e *PortalNotConfiguredError) Is(target error) bool { return target == ErrPortalNotConfigured }

// DuplicatePortalError is returned when a portal name is registered twice.
type DuplicatePortalError struct {
	Name string
}

func (e *DuplicatePortalError) Error() string {
	return fmt.Sprintf("The portal %q is already registered", e.Name)
}

func (e *DuplicatePortalError) Is(target error) bool { return target == ErrDuplicatePortal }

// MissingHandleError is returned when a portal definition without a handle
// is instantiated.
type MissingHandleError struct {
	Definition string
}

func (e *MissingHandleError) Error() string {
	return fmt.Sprintf("A handle must be defined when using portals (in %s)", e.Definition)
}

func (e *MissingHandleError) Is(target error) bool { return target == ErrMissingHandle }

// InconsistentPortalError is returned when a portal's explicit definition
// does not extend the definition registered for that portal.
type InconsistentPortalError struct {
	Portal     string
	Registered string
	Given      string
}

func (e *InconsistentPortalError) Error() string {
	return fmt.Sprintf("portal %q is registered with %s, but %s does not extend it", e.Portal, e.Registered, e.Given)
}

func (e *InconsistentPortalError) Is(target error) bool { return target == ErrInconsistentPortal }

// UndefinedError is returned when an undeclared section, attribute or
// method is requested.
type UndefinedError struct {
	Kind       string
	Name       string
	Definition string
}

func (e *UndefinedError) Error() string {
	return fmt.Sprintf("undefined %s %q for %s", e.Kind, e.Name, e.Definition)
}

func (e *UndefinedError) Is(target error) bool { return target == ErrUndefined }

// PrivateMethodError is returned when a derived assertion method is called
// from outside the section.
type PrivateMethodError struct {
	Name       string
	Definition string
}

func (e *PrivateMethodError) Error() string {
	return fmt.Sprintf("private method %q called for %s", e.Name, e.Definition)
}

func (e *PrivateMethodError) Is(target error) bool { return target == ErrPrivateMethod }

// truthy treats nil, false and nil references as falsy.
func truthy(v any) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	}
	return true
}

func inspect(v any) string {
	if v == nil {
		return "nil"
	}
	switch val := v.(type) {
	case string:
		return fmt.Sprintf("%q", val)
	case bool:
		return fmt.Sprintf("%t", val)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return fmt.Sprintf("(%T)(nil)", v)
		}
	}
	return fmt.Sprintf("%v", v)
}
