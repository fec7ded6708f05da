package section

import "context"

// Visit instantiates a page, navigates to its path and runs its gate.
func (d *Definition) Visit(ctx context.Context, rt *Runtime, attrs Attrs, opts ...LoadOption) (*Instance, error) {
	if d.kind != KindPage {
		return nil, &ConfigurationError{Definition: d.String(), Message: "only pages can be visited"}
	}

	inst, err := d.instantiate(rt, attrs, opts...)
	if err != nil {
		return nil, err
	}

	path, err := inst.Path(ctx)
	if err != nil {
		return nil, err
	}
	if err := rt.Driver.Visit(ctx, path); err != nil {
		return nil, err
	}

	if err := inst.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return inst, nil
}

// URL returns the static path of a page definition, if it has one.
func (d *Definition) URL() string {
	return d.url
}

// Path resolves the page path, from the static URL or the URL function.
// The result is memoized.
func (i *Instance) Path(ctx context.Context) (string, error) {
	if i.hasPath {
		return i.path, nil
	}

	var path string
	switch {
	case i.def.urlFunc != nil:
		var err error
		if path, err = i.def.urlFunc(ctx, i.self()); err != nil {
			return "", err
		}
	case i.def.url != "":
		path = i.def.url
	default:
		return "", &ConfigurationError{
			Definition: i.def.String(),
			Message:    "URL not configured. Define a path with URL or URLFunc",
		}
	}

	i.path = path
	i.hasPath = true
	return path, nil
}
