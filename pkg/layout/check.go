package layout

import (
	"context"
	"fmt"
	"time"

	"github.com/gobwas/glob"

	"github.com/entrhq/pageobject/pkg/logging"
	"github.com/entrhq/pageobject/pkg/section"
)

// Result is the outcome of loading one page or section.
type Result struct {
	// Path names the page and the sections leading to the checked one,
	// e.g. "Contact > contact_form"
	Path     string
	Portal   bool
	Err      error
	Duration time.Duration
}

// Passed reports whether the page or section loaded.
func (r Result) Passed() bool {
	return r.Err == nil
}

// Checker visits pages and loads every declared section.
type Checker struct {
	rt      *section.Runtime
	filters []glob.Glob
	logger  *logging.Logger
}

// NewChecker creates a checker. Only pages whose name or URL matches one
// of filters are checked; no filters means every page.
func NewChecker(rt *section.Runtime, filters []string, logger *logging.Logger) (*Checker, error) {
	c := &Checker{rt: rt, logger: logger}
	for _, pattern := range filters {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid page filter '%s': %w", pattern, err)
		}
		c.filters = append(c.filters, g)
	}
	return c, nil
}

// Selected reports whether a page passes the filters.
func (c *Checker) Selected(def *section.Definition) bool {
	if len(c.filters) == 0 {
		return true
	}
	for _, g := range c.filters {
		if g.Match(def.Name()) || g.Match(def.URL()) {
			return true
		}
	}
	return false
}

// Check visits every selected page and loads its sections depth first.
// A failing section is reported and its children are skipped; checking
// carries on with its siblings.
func (c *Checker) Check(ctx context.Context, pages []*section.Definition) ([]Result, error) {
	var results []Result
	for _, def := range pages {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if !c.Selected(def) {
			c.logger.Debugf("skipping %s", def)
			continue
		}
		start := time.Now()
		inst, err := def.Visit(ctx, c.rt, nil)
		results = append(results, c.record(def.Name(), false, err, start))
		if err != nil {
			continue
		}
		results = c.walk(ctx, inst, def.Name(), results)
	}
	return results, nil
}

func (c *Checker) walk(ctx context.Context, inst *section.Instance, path string, results []Result) []Result {
	def := inst.Definition()
	for _, name := range def.Sections() {
		childPath := path + " > " + name
		start := time.Now()
		child, err := inst.Section(ctx, name)
		results = append(results, c.record(childPath, def.IsPortal(name), err, start))
		if err != nil {
			continue
		}
		results = c.walk(ctx, child, childPath, results)
	}
	return results
}

func (c *Checker) record(path string, portal bool, err error, start time.Time) Result {
	r := Result{Path: path, Portal: portal, Err: err, Duration: time.Since(start)}
	if err != nil {
		c.logger.Warnf("%s: %v", path, err)
	} else {
		c.logger.Debugf("%s: ok (%s)", path, r.Duration)
	}
	return r
}

// Failed counts the failed results.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.Passed() {
			n++
		}
	}
	return n
}
