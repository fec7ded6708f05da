package section_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/pageobject/pkg/finder"
	"github.com/entrhq/pageobject/pkg/finder/htmldoc"
	"github.com/entrhq/pageobject/pkg/section"
)

const dashboard = `<html><body>
  <div data-testid="root">
    <h1>Welcome John</h1>
    <div data-testid="user-profile">
      <p>Name: John</p>
      <a href="/edit">Edit profile</a>
      <div data-testid="details"><span>Admin</span></div>
    </div>
    <div data-testid="settings"><button>Save</button></div>
  </div>
  <div data-testid="toast">Saved!</div>
  <div data-testid="modal"><h2>Confirm</h2><button>OK</button></div>
</body></html>`

func loaded(ctx context.Context, self *section.Self) (any, error) {
	return self.Container(ctx)
}

func newRuntime(t *testing.T, doc string) *section.Runtime {
	t.Helper()
	d := htmldoc.New(nil)
	require.NoError(t, d.Load(doc))
	return &section.Runtime{Driver: d, Portals: section.NewRegistry()}
}

func TestAttributes(t *testing.T) {
	ctx := context.Background()
	rt := newRuntime(t, dashboard)

	card := section.Must(section.Define("UserCard", func(b *section.Builder) {
		b.Attribute("user", "role").
			ContainerTestID("root").
			EnsureLoaded(loaded)
	}))

	tests := []struct {
		name    string
		attrs   section.Attrs
		wantErr string
	}{
		{
			name:  "exact set",
			attrs: section.Attrs{"user": "John", "role": "admin"},
		},
		{
			name:    "missing",
			attrs:   section.Attrs{"user": "John"},
			wantErr: "Missing attribute(s) passed to UserCard: [role]",
		},
		{
			name:    "unknown",
			attrs:   section.Attrs{"user": "John", "role": "admin", "team": "qa"},
			wantErr: "Unknown attribute(s) passed to UserCard: [team]",
		},
		{
			name:    "unknown and missing",
			attrs:   section.Attrs{"team": "qa", "age": 3},
			wantErr: "Unknown attribute(s) passed to UserCard: [age team]; Missing attribute(s) passed to UserCard: [user role]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst, err := card.Load(ctx, rt, tt.attrs)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, section.ErrAttribute)
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.attrs, inst.Attrs())
		})
	}

	t.Run("undeclared attribute lookup", func(t *testing.T) {
		inst, err := card.Load(ctx, rt, section.Attrs{"user": "John", "role": "admin"})
		require.NoError(t, err)

		_, err = inst.Attr("team")
		assert.ErrorIs(t, err, section.ErrUndefined)
	})
}

func TestAttributePropagation(t *testing.T) {
	ctx := context.Background()
	rt := newRuntime(t, dashboard)

	profile := section.Must(section.Define("Profile", func(b *section.Builder) {
		b.Attribute("user")
	}))

	page := section.Must(section.Define("Dashboard", func(b *section.Builder) {
		b.Attribute("user", "role").
			ContainerTestID("root").
			EnsureLoaded(loaded).
			Section("user_profile", section.With(func(b *section.Builder) {
				b.Section("details")
			})).
			Section("profile", section.Using(profile), section.TestID("user_profile"))
	}))

	inst, err := page.Load(ctx, rt, section.Attrs{"user": "John", "role": "admin"})
	require.NoError(t, err)

	t.Run("anonymous children receive every parent attribute", func(t *testing.T) {
		child, err := inst.Section(ctx, "user_profile")
		require.NoError(t, err)
		assert.Equal(t, section.Attrs{"user": "John", "role": "admin"}, child.Attrs())

		details, err := child.Section(ctx, "details")
		require.NoError(t, err)
		user, err := details.Attr("user")
		require.NoError(t, err)
		assert.Equal(t, "John", user)
	})

	t.Run("explicit children receive only what they declare", func(t *testing.T) {
		child, err := inst.Section(ctx, "profile")
		require.NoError(t, err)
		assert.Equal(t, section.Attrs{"user": "John"}, child.Attrs())
		assert.True(t, child.Is(profile))
		assert.Equal(t, "profile", child.Handle())
	})
}

func TestUserScenario(t *testing.T) {
	ctx := context.Background()
	rt := newRuntime(t, dashboard)

	users := section.Must(section.Define("UserSection", func(b *section.Builder) {
		b.Attribute("user").
			ContainerTestID("root").
			EnsureLoaded(loaded).
			Section("user_profile")
	}))

	inst, err := users.Load(ctx, rt, section.Attrs{"user": "John"})
	require.NoError(t, err)

	child, err := inst.Section(ctx, "user_profile")
	require.NoError(t, err)
	user, err := child.Attr("user")
	require.NoError(t, err)
	assert.Equal(t, "John", user)

	_, err = users.Load(ctx, rt, section.Attrs{})
	require.Error(t, err)
	var attrErr *section.AttributeError
	require.True(t, errors.As(err, &attrErr))
	assert.Equal(t, []string{"user"}, attrErr.Missing)
}

func TestAnonymousSectionsCannotDeclareAttributes(t *testing.T) {
	_, err := section.Define("Dashboard", func(b *section.Builder) {
		b.Attribute("user").
			Section("profile", section.With(func(b *section.Builder) {
				b.Attribute("age")
			}))
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, section.ErrDefinition)
	assert.Contains(t, err.Error(), "Attributes cannot be defined in anonymous sections")
	assert.Contains(t, err.Error(), "Section(Dashboard|Profile)")
}

func TestDefinitionErrors(t *testing.T) {
	tests := []struct {
		name string
		fn   func(b *section.Builder)
	}{
		{"duplicate section", func(b *section.Builder) { b.Section("a").Section("a") }},
		{"empty section name", func(b *section.Builder) { b.Section("") }},
		{"url on a section", func(b *section.Builder) { b.URL("/x") }},
		{"handle on a section", func(b *section.Builder) { b.Handle("toast") }},
		{"portal test id", func(b *section.Builder) { b.Portal("toast", section.TestID("x")) }},
		{"nil gate", func(b *section.Builder) { b.EnsureLoaded(nil) }},
		{"nil method", func(b *section.Builder) { b.Method("has_x?", nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := section.Define("Broken", tt.fn)
			assert.ErrorIs(t, err, section.ErrDefinition)
		})
	}

	t.Run("must panics", func(t *testing.T) {
		assert.Panics(t, func() {
			section.Must(section.Define("", nil))
		})
	})
}

func TestDefinitionNames(t *testing.T) {
	page := section.Must(section.Define("Dashboard", func(b *section.Builder) {
		b.Section("user_profile", section.With(func(b *section.Builder) {
			b.Section("details")
		})).
			Portal("toast")
	}))

	assert.Equal(t, "Dashboard", page.String())
	assert.Equal(t, []string{"user_profile", "toast"}, page.Sections())

	profile, ok := page.Child("user_profile")
	require.True(t, ok)
	assert.Equal(t, "Section(Dashboard|User_profile)", profile.String())
	assert.Equal(t, "user-profile", profile.TestID())
	assert.True(t, profile.Anonymous())

	details, ok := profile.Child("details")
	require.True(t, ok)
	assert.Equal(t, "Section(Dashboard|User_profile|Details)", details.String())

	toast, ok := page.Child("toast")
	require.True(t, ok)
	assert.True(t, page.IsPortal("toast"))
	assert.Equal(t, "Portal(Dashboard|Toast)", toast.String())
	assert.Equal(t, "toast", toast.Handle())
}

func TestChildrenAreMemoized(t *testing.T) {
	ctx := context.Background()
	rt := newRuntime(t, dashboard)

	gateRuns := 0
	page := section.Must(section.Define("Dashboard", func(b *section.Builder) {
		b.ContainerTestID("root").
			EnsureLoaded(loaded).
			Section("settings", section.With(func(b *section.Builder) {
				b.EnsureLoaded(func(ctx context.Context, self *section.Self) (any, error) {
					gateRuns++
					return self.Container(ctx)
				})
			}))
	}))

	inst, err := page.Load(ctx, rt, nil)
	require.NoError(t, err)

	first, err := inst.Section(ctx, "settings")
	require.NoError(t, err)
	second, err := inst.Section(ctx, "settings")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, gateRuns)

	t.Run("callbacks receive the cached child", func(t *testing.T) {
		var seen []*section.Instance
		child, err := inst.Section(ctx, "settings",
			func(s *section.Instance) error {
				seen = append(seen, s)
				return nil
			},
			func(s *section.Instance) error {
				seen = append(seen, s)
				return nil
			},
		)
		require.NoError(t, err)
		assert.Same(t, first, child)
		assert.Equal(t, []*section.Instance{first, first}, seen)
	})

	t.Run("callback errors stop the chain", func(t *testing.T) {
		boom := errors.New("boom")
		called := false
		child, err := inst.Section(ctx, "settings",
			func(*section.Instance) error { return boom },
			func(*section.Instance) error { called = true; return nil },
		)
		assert.ErrorIs(t, err, boom)
		assert.Same(t, first, child)
		assert.False(t, called)
	})

	t.Run("undeclared section", func(t *testing.T) {
		_, err := inst.Section(ctx, "billing")
		assert.ErrorIs(t, err, section.ErrUndefined)
	})
}

func TestLoadedStateGate(t *testing.T) {
	ctx := context.Background()
	rt := newRuntime(t, dashboard)

	t.Run("missing gate", func(t *testing.T) {
		def := section.Must(section.Define("NoGate", func(b *section.Builder) {
			b.ContainerTestID("root")
		}))
		_, err := def.Load(ctx, rt, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, section.ErrConfiguration)
		assert.Contains(t, err.Error(), "must define how to check whether their content has loaded")
	})

	t.Run("falsy gate", func(t *testing.T) {
		def := section.Must(section.Define("NotReady", func(b *section.Builder) {
			b.ContainerTestID("root").
				EnsureLoaded(func(ctx context.Context, self *section.Self) (any, error) {
					return self.Call(ctx, "has_content?", "Goodbye")
				})
		}))
		_, err := def.Load(ctx, rt, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, section.ErrPreconditionNotMet)
		assert.Contains(t, err.Error(), "returned false")
	})

	t.Run("gate errors propagate unchanged", func(t *testing.T) {
		boom := errors.New("still spinning")
		def := section.Must(section.Define("Spinner", func(b *section.Builder) {
			b.EnsureLoaded(func(context.Context, *section.Self) (any, error) {
				return nil, boom
			})
		}))
		_, err := def.Load(ctx, rt, nil)
		assert.Same(t, boom, err)
	})

	t.Run("gate may use assertions", func(t *testing.T) {
		def := section.Must(section.Define("Ready", func(b *section.Builder) {
			b.ContainerTestID("root").
				EnsureLoaded(func(ctx context.Context, self *section.Self) (any, error) {
					return self.Ensure(ctx, "has_content?", "Welcome")
				})
		}))
		_, err := def.Load(ctx, rt, nil)
		assert.NoError(t, err)
	})

	t.Run("no driver", func(t *testing.T) {
		def := section.Must(section.Define("Ready", func(b *section.Builder) {
			b.EnsureLoaded(loaded)
		}))
		_, err := def.Load(ctx, &section.Runtime{}, nil)
		assert.ErrorIs(t, err, section.ErrConfiguration)
	})

	t.Run("root section without container", func(t *testing.T) {
		def := section.Must(section.Define("Floating", func(b *section.Builder) {
			b.EnsureLoaded(loaded)
		}))
		_, err := def.Load(ctx, rt, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, section.ErrConfiguration)
		assert.Contains(t, err.Error(), "Container not configured")
	})
}

func TestPreconditions(t *testing.T) {
	ctx := context.Background()
	rt := newRuntime(t, dashboard)

	base := section.Must(section.Define("Dashboard", func(b *section.Builder) {
		b.ContainerTestID("root").
			EnsureLoaded(loaded).
			Method("has_greeting?", func(ctx context.Context, self *section.Self, args ...any) (any, error) {
				return self.Call(ctx, "has_content?", args...)
			}).
			Method("has_name?", func(ctx context.Context, self *section.Self, _ ...any) (any, error) {
				return "John", nil
			}).
			Method("has_nothing?", func(context.Context, *section.Self, ...any) (any, error) {
				return nil, nil
			}).
			Method("has_custom!", func(context.Context, *section.Self, ...any) (any, error) {
				return "explicit", nil
			}).
			Method("has_custom?", func(context.Context, *section.Self, ...any) (any, error) {
				return false, nil
			}).
			Method("greet", func(ctx context.Context, self *section.Self, args ...any) (any, error) {
				return self.Call(ctx, "has_greeting!", args...)
			}).
			Method("ensure", func(ctx context.Context, self *section.Self, args ...any) (any, error) {
				return self.Ensure(ctx, args[0].(string), args[1:]...)
			})
	}))

	inst, err := base.Load(ctx, rt, nil)
	require.NoError(t, err)

	t.Run("derived assertions are private", func(t *testing.T) {
		assert.Contains(t, base.PrivateMethods(), "has_greeting!")
		assert.Contains(t, base.PrivateMethods(), "has_content!")
		assert.NotContains(t, base.Methods(), "has_greeting!")

		_, err := inst.Call(ctx, "has_greeting!", "Welcome")
		assert.ErrorIs(t, err, section.ErrPrivateMethod)
	})

	t.Run("truthy results are returned", func(t *testing.T) {
		got, err := inst.Call(ctx, "greet", "Welcome")
		require.NoError(t, err)
		assert.Equal(t, true, got)

		got, err = inst.Call(ctx, "ensure", "has_name?")
		require.NoError(t, err)
		assert.Equal(t, "John", got)
	})

	t.Run("falsy results fail", func(t *testing.T) {
		_, err := inst.Call(ctx, "greet", "Goodbye")
		require.Error(t, err)
		assert.ErrorIs(t, err, section.ErrPreconditionNotMet)
		assert.Equal(t, "has_greeting!: Expected has_greeting? to return truthy, but it returned false", err.Error())

		_, err = inst.Call(ctx, "ensure", "has_nothing?")
		require.Error(t, err)
		assert.Equal(t, "has_nothing!: Expected has_nothing? to return truthy, but it returned nil", err.Error())
	})

	t.Run("explicit assertions are kept", func(t *testing.T) {
		got, err := inst.Call(ctx, "has_custom!")
		require.NoError(t, err)
		assert.Equal(t, "explicit", got)
		assert.NotContains(t, base.PrivateMethods(), "has_custom!")
	})

	t.Run("inherited queries are derived again", func(t *testing.T) {
		ext := section.Must(section.Extend(base, "AdminDashboard", func(b *section.Builder) {
			b.Method("has_greeting?", func(context.Context, *section.Self, ...any) (any, error) {
				return "overridden", nil
			})
		}))
		assert.Contains(t, ext.PrivateMethods(), "has_greeting!")
		assert.Contains(t, ext.PrivateMethods(), "has_name!")

		admin, err := ext.Load(ctx, rt, nil)
		require.NoError(t, err)
		got, err := admin.Call(ctx, "greet", "Goodbye")
		require.NoError(t, err)
		assert.Equal(t, "overridden", got)
		assert.True(t, admin.Is(base))
	})

	t.Run("undefined methods", func(t *testing.T) {
		_, err := inst.Call(ctx, "has_unicorns?")
		assert.ErrorIs(t, err, section.ErrUndefined)
	})
}

func TestScoping(t *testing.T) {
	ctx := context.Background()
	rt := newRuntime(t, dashboard)

	page := section.Must(section.DefinePage("Dashboard", func(b *section.Builder) {
		b.EnsureLoaded(loaded).
			Section("root", section.With(func(b *section.Builder) {
				b.Section("user_profile").
					Section("settings")
			}))
	}))

	inst, err := page.Load(ctx, rt, nil)
	require.NoError(t, err)
	root, err := inst.Section(ctx, "root")
	require.NoError(t, err)
	profile, err := root.Section(ctx, "user_profile")
	require.NoError(t, err)
	settings, err := root.Section(ctx, "settings")
	require.NoError(t, err)

	tests := []struct {
		name  string
		inst  *section.Instance
		query string
		arg   string
		want  bool
	}{
		{"page sees the whole body", inst, "has_content?", "Saved!", true},
		{"root does not see the toast", root, "has_content?", "Saved!", false},
		{"settings has the button", settings, "has_button?", "Save", true},
		{"profile does not", profile, "has_button?", "Save", false},
		{"profile has the link", profile, "has_link?", "Edit profile", true},
		{"root has no modal", root, "has_no_content?", "Confirm", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.inst.Query(ctx, tt.query, tt.arg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("find is scoped", func(t *testing.T) {
		el, err := profile.Find(ctx, "span")
		require.NoError(t, err)
		assert.True(t, finder.Contains(mustContainer(t, profile).Path(), el.Path()))

		_, err = settings.Find(ctx, "span")
		require.Error(t, err)
		assert.ErrorIs(t, err, finder.ErrNotFound)

		buttons, err := inst.FindAll(ctx, "button")
		require.NoError(t, err)
		assert.Len(t, buttons, 2)
	})

	t.Run("nested scopes are not reopened", func(t *testing.T) {
		err := root.Within(ctx, func(ctx context.Context) error {
			assert.Len(t, finder.Scopes(ctx), 1)
			return profile.Within(ctx, func(ctx context.Context) error {
				assert.Len(t, finder.Scopes(ctx), 2)
				return root.Within(ctx, func(ctx context.Context) error {
					assert.Len(t, finder.Scopes(ctx), 2)
					return nil
				})
			})
		})
		require.NoError(t, err)
	})

	t.Run("text", func(t *testing.T) {
		text, err := profile.Text(ctx)
		require.NoError(t, err)
		assert.Contains(t, text, "Name: John")
		assert.NotContains(t, text, "Welcome")

		id, ok, err := profile.Attribute(ctx, "data-testid")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "user-profile", id)
	})
}

func TestExplicitSections(t *testing.T) {
	ctx := context.Background()
	rt := newRuntime(t, dashboard)

	panel := section.Must(section.Define("Panel", func(b *section.Builder) {
		b.ContainerTestID("settings").
			Method("has_save?", func(ctx context.Context, self *section.Self, _ ...any) (any, error) {
				return self.Call(ctx, "has_button?", "Save")
			})
	}))

	page := section.Must(section.Define("Dashboard", func(b *section.Builder) {
		b.ContainerTestID("root").
			EnsureLoaded(loaded).
			Section("preferences", section.Using(panel)).
			Section("profile", section.Using(panel), section.TestID("user_profile")).
			Section("extended", section.Using(panel), section.With(func(b *section.Builder) {
				b.Method("has_extra?", func(context.Context, *section.Self, ...any) (any, error) {
					return true, nil
				})
			}))
	}))

	inst, err := page.Load(ctx, rt, nil)
	require.NoError(t, err)

	preferences, err := inst.Section(ctx, "preferences")
	require.NoError(t, err)
	ok, err := preferences.Query(ctx, "has_save?")
	require.NoError(t, err)
	assert.True(t, ok, "explicit definitions keep their own test id")
	assert.Equal(t, "Panel", preferences.Definition().String())

	profile, err := inst.Section(ctx, "profile")
	require.NoError(t, err)
	ok, err = profile.Query(ctx, "has_save?")
	require.NoError(t, err)
	assert.False(t, ok, "the test id option overrides the definition's")

	extended, err := inst.Section(ctx, "extended")
	require.NoError(t, err)
	ok, err = extended.Query(ctx, "has_extra?")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, extended.Is(panel))
}

func TestPortals(t *testing.T) {
	ctx := context.Background()

	page := section.Must(section.Define("Dashboard", func(b *section.Builder) {
		b.ContainerTestID("root").
			EnsureLoaded(loaded).
			Section("user_profile", section.With(func(b *section.Builder) {
				b.Section("details", section.With(func(b *section.Builder) {
					b.Portal("toast")
				}))
			})).
			Portal("modal").
			Portal("dialog")
	}))

	load := func(t *testing.T, rt *section.Runtime) *section.Instance {
		t.Helper()
		inst, err := page.Load(ctx, rt, nil)
		require.NoError(t, err)
		return inst
	}

	t.Run("reachable from deeply nested sections", func(t *testing.T) {
		rt := newRuntime(t, dashboard)
		require.NoError(t, rt.Portals.Register("toast"))

		inst := load(t, rt)
		profile, err := inst.Section(ctx, "user_profile")
		require.NoError(t, err)
		details, err := profile.Section(ctx, "details")
		require.NoError(t, err)

		toast, err := details.Section(ctx, "toast")
		require.NoError(t, err)
		assert.Equal(t, "toast", toast.Handle())

		ok, err := toast.Query(ctx, "has_content?", "Saved!")
		require.NoError(t, err)
		assert.True(t, ok)

		// Queries from inside the nested section's scope still reach it
		err = details.Within(ctx, func(ctx context.Context) error {
			ok, err := toast.Query(ctx, "has_content?", "Saved!")
			assert.True(t, ok)
			return err
		})
		require.NoError(t, err)
	})

	t.Run("unregistered portal", func(t *testing.T) {
		rt := newRuntime(t, dashboard)
		_, err := load(t, rt).Section(ctx, "modal")
		require.Error(t, err)
		assert.ErrorIs(t, err, section.ErrPortalNotConfigured)
		assert.Equal(t, `The portal "modal" is not configured`, err.Error())
	})

	t.Run("registered test id", func(t *testing.T) {
		rt := newRuntime(t, dashboard)
		require.NoError(t, rt.Portals.Register("dialog", section.PortalTestID("modal")))

		dialog, err := load(t, rt).Section(ctx, "dialog")
		require.NoError(t, err)
		ok, err := dialog.Query(ctx, "has_button?", "OK")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("missing portal element", func(t *testing.T) {
		rt := newRuntime(t, dashboard)
		require.NoError(t, rt.Portals.Register("modal", section.PortalTestID("drawer")))

		_, err := load(t, rt).Section(ctx, "modal")
		require.Error(t, err)
		assert.ErrorIs(t, err, finder.ErrNotFound)
		assert.Contains(t, err.Error(), `[data-testid='drawer']`)
		assert.NotContains(t, err.Error(), "within")
	})
}

func TestPortalDefinitions(t *testing.T) {
	ctx := context.Background()

	toast := section.Must(section.DefinePortal("Toast", func(b *section.Builder) {
		b.EnsureLoaded(loaded).
			Method("message", func(ctx context.Context, self *section.Self, _ ...any) (any, error) {
				return self.Text(ctx)
			})
	}))
	unrelated := section.Must(section.DefinePortal("Banner", func(b *section.Builder) {
		b.EnsureLoaded(loaded)
	}))
	errorToast := section.Must(section.Extend(toast, "ErrorToast", nil))

	page := section.Must(section.Define("Dashboard", func(b *section.Builder) {
		b.ContainerTestID("root").
			EnsureLoaded(loaded).
			Portal("toast").
			Portal("banner", section.Using(unrelated)).
			Portal("error", section.Using(errorToast))
	}))

	rt := newRuntime(t, dashboard)
	require.NoError(t, rt.Portals.Register("toast", section.PortalDefinition(toast)))
	require.NoError(t, rt.Portals.Register("banner", section.PortalDefinition(toast), section.PortalTestID("toast")))
	require.NoError(t, rt.Portals.Register("error", section.PortalDefinition(toast), section.PortalTestID("toast")))

	inst, err := page.Load(ctx, rt, nil)
	require.NoError(t, err)

	t.Run("anonymous portals build on the registered definition", func(t *testing.T) {
		child, err := inst.Section(ctx, "toast")
		require.NoError(t, err)
		assert.True(t, child.Is(toast))

		msg, err := child.Call(ctx, "message")
		require.NoError(t, err)
		assert.Equal(t, "Saved!", msg)
	})

	t.Run("explicit portals must extend the registered definition", func(t *testing.T) {
		_, err := inst.Section(ctx, "banner")
		require.Error(t, err)
		assert.ErrorIs(t, err, section.ErrInconsistentPortal)

		child, err := inst.Section(ctx, "error")
		require.NoError(t, err)
		assert.True(t, child.Is(toast))
	})

	t.Run("standalone portals need a handle", func(t *testing.T) {
		_, err := toast.Load(ctx, rt, nil)
		assert.ErrorIs(t, err, section.ErrMissingHandle)

		child, err := toast.Load(ctx, rt, nil, section.WithHandle("toast"))
		require.NoError(t, err)
		assert.Equal(t, "toast", child.Handle())

		handled := section.Must(section.Extend(toast, "HandledToast", func(b *section.Builder) {
			b.Handle("toast")
		}))
		_, err = handled.Load(ctx, rt, nil)
		assert.NoError(t, err)
	})
}

func TestRegistry(t *testing.T) {
	r := section.NewRegistry()

	require.NoError(t, r.Register("toast"))
	err := r.Register("toast")
	require.Error(t, err)
	assert.ErrorIs(t, err, section.ErrDuplicatePortal)

	require.NoError(t, r.RegisterDefault("floating_ui"))
	entry, err := r.Lookup(section.DefaultPortal)
	require.NoError(t, err)
	assert.Equal(t, "floating-ui", entry.TestID)
	assert.Equal(t, []string{"portal", "toast"}, r.Names())

	r.Reset()
	assert.Empty(t, r.Names())
	_, err = r.Lookup("toast")
	assert.ErrorIs(t, err, section.ErrPortalNotConfigured)
	assert.NoError(t, r.Register("toast"))

	assert.ErrorIs(t, r.Register(""), section.ErrConfiguration)

	var missing *section.Registry
	_, err = missing.Lookup("toast")
	assert.ErrorIs(t, err, section.ErrPortalNotConfigured)
}

func mustContainer(t *testing.T, inst *section.Instance) finder.Element {
	t.Helper()
	el, err := inst.Container(context.Background())
	require.NoError(t, err)
	return el
}

func TestQuotedTestIDs(t *testing.T) {
	ctx := context.Background()
	rt := newRuntime(t, `<html><body>
  <div data-testid="it's"><p>Quoted</p></div>
  <div data-testid="back\slash"><p>Escaped</p></div>
</body></html>`)

	assert.Equal(t, `[data-testid='it\'s']`, rt.Selector("it's"))
	assert.Equal(t, `[data-testid='back\\slash']`, rt.Selector(`back\slash`))

	for id, text := range map[string]string{"it's": "Quoted", `back\slash`: "Escaped"} {
		def := section.Must(section.Define("Quoted", func(b *section.Builder) {
			b.ContainerTestID(id).EnsureLoaded(loaded)
		}))
		inst, err := def.Load(ctx, rt, nil)
		require.NoError(t, err, id)
		got, err := inst.Text(ctx)
		require.NoError(t, err)
		assert.Equal(t, text, got)
	}

	missing := section.Must(section.Define("Missing", func(b *section.Builder) {
		b.ContainerTestID("don't").EnsureLoaded(loaded)
	}))
	_, err := missing.Load(ctx, rt, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, finder.ErrNotFound))
	assert.Contains(t, err.Error(), `Unable to find css "[data-testid='don\\'t']"`)
}
