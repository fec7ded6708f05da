package section

import (
	"context"
	"strings"

	"github.com/entrhq/pageobject/pkg/finder"
)

// installPredicates gives def every builtin query it does not declare
// itself. Builtins run inside the container scope.
func installPredicates(def *Definition) {
	for name, p := range finder.Predicates() {
		if _, ok := def.methods[name]; ok {
			continue
		}
		def.methods[name] = predicateMethod(p)
	}
}

func predicateMethod(p finder.Predicate) Method {
	return func(ctx context.Context, self *Self, args ...any) (any, error) {
		var ok bool
		err := self.wrapping(ctx, func(ctx context.Context) error {
			var err error
			ok, err = p(ctx, self.rt.Driver, args...)
			return err
		})
		if err != nil {
			return nil, err
		}
		return ok, nil
	}
}

// derivePreconditions installs a private has_<thing>! for every
// has_<thing>? that has no explicit assertion. Runs on every build, so
// queries overridden by a derived definition are the ones asserted.
func derivePreconditions(def *Definition) {
	var queries []string
	for name := range def.methods {
		if _, ok := assertionName(name); ok {
			queries = append(queries, name)
		}
	}

	for _, query := range queries {
		bang, _ := assertionName(query)
		if _, explicit := def.methods[bang]; explicit && !def.derived[bang] {
			continue
		}
		def.methods[bang] = assertion(bang, query)
		def.derived[bang] = true
	}
}

// assertionName maps has_<thing>? to has_<thing>!.
func assertionName(query string) (string, bool) {
	if !strings.HasPrefix(query, "has_") || !strings.HasSuffix(query, "?") || len(query) <= len("has_?") {
		return "", false
	}
	return strings.TrimSuffix(query, "?") + "!", true
}

func assertion(bang, query string) Method {
	return func(ctx context.Context, self *Self, args ...any) (any, error) {
		result, err := self.Call(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		if !truthy(result) {
			return nil, &PreconditionNotMetError{Method: bang, Query: query, Value: result}
		}
		return result, nil
	}
}

// Ensure calls the assertion derived from query (has_<thing>?), failing
// with *PreconditionNotMetError when the query is falsy.
func (s *Self) Ensure(ctx context.Context, query string, args ...any) (any, error) {
	bang, ok := assertionName(query)
	if !ok {
		return nil, &UndefinedError{Kind: "query", Name: query, Definition: s.def.String()}
	}
	return s.Call(ctx, bang, args...)
}
