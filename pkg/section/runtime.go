package section

import (
	"fmt"
	"strings"

	"github.com/entrhq/pageobject/pkg/finder"
)

// DefaultTestIDAttribute is the attribute container test ids are matched on.
const DefaultTestIDAttribute = "data-testid"

// Runtime is what instances need at run time: the driver queries go
// through and the portal registry of the current test configuration.
//
// A Runtime is created per test (or per suite) by the harness and passed to
// Load and Visit. It is not safe for concurrent use by multiple tests.
type Runtime struct {
	Driver  finder.Driver
	Portals *Registry

	// TestIDAttribute overrides DefaultTestIDAttribute.
	TestIDAttribute string
}

// Selector returns the CSS selector matching a container test id.
func (rt *Runtime) Selector(testID string) string {
	attr := rt.TestIDAttribute
	if attr == "" {
		attr = DefaultTestIDAttribute
	}
	return fmt.Sprintf("[%s='%s']", attr, quoteEscaper.Replace(testID))
}

// quoteEscaper escapes a value for a single-quoted CSS string.
var quoteEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func (rt *Runtime) validate() error {
	if rt == nil || rt.Driver == nil {
		return &ConfigurationError{Message: "Runtime has no driver"}
	}
	return nil
}
