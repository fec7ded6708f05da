// Package section is a page-object DSL for browser acceptance tests.
//
// Pages and sections are described once, as immutable Definitions:
//
//	var ContactPage = section.Must(section.DefinePage("ContactPage", func(b *section.Builder) {
//	    b.URL("contact.html").
//	        ContainerTestID("root").
//	        EnsureLoaded(func(ctx context.Context, self *section.Self) (any, error) {
//	            return self.Call(ctx, "has_content?", "Contact us")
//	        }).
//	        Section("contact_form").
//	        Portal("toast")
//	}))
//
// and instantiated per test with Load or Visit against a Runtime (a
// finder.Driver and a portal Registry):
//
//	page, err := ContactPage.Visit(ctx, rt, nil)
//	form, err := page.Section(ctx, "contact_form")
//	ok, err := form.Query(ctx, "has_button?", "Send")
//
// Every query made through an Instance is scoped to its container, found
// by test id inside the parent container. Portals are sections whose
// container is found anywhere in the document through the Registry, for
// modals, toasts and other UI rendered outside its logical parent.
//
// Instances check their loaded-state gate exactly once, at construction.
// Each query method named has_<thing>? gets a private has_<thing>!
// assertion, available to gates and methods through Self.
package section
