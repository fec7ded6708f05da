package section

import "context"

// ensureLoaded runs the loaded-state gate. It is called exactly once per
// instance, at construction.
func (i *Instance) ensureLoaded(ctx context.Context) error {
	if i.def.gate == nil {
		return &ConfigurationError{
			Definition: i.def.String(),
			Message: "Page and section objects must define how to check whether their " +
				"content has loaded with EnsureLoaded",
		}
	}

	result, err := i.def.gate(ctx, i.self())
	if err != nil {
		return err
	}
	if !truthy(result) {
		return &PreconditionNotMetError{
			Method: "EnsureLoaded",
			Query:  "the loaded-state gate of " + i.def.String(),
			Value:  result,
		}
	}
	return nil
}
