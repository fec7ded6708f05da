// Package layout describes pages in YAML and compiles them into section
// definitions, so a site's structure can be smoke-checked without writing
// Go page objects.
//
//	pages:
//	  - name: Contact
//	    url: contact.html
//	    test_id: root
//	    expect: ["Contact us"]
//	    sections:
//	      - name: contact_form
//	        expect: ["Send message"]
//	    portals:
//	      - name: toast
package layout

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/entrhq/pageobject/pkg/section"
)

// File is a layout file.
type File struct {
	Pages []Page `yaml:"pages" json:"pages"`
}

// Page describes a visitable page.
type Page struct {
	Name   string `yaml:"name" json:"name"`
	URL    string `yaml:"url" json:"url"`
	TestID string `yaml:"test_id" json:"test_id"`
	Node   `yaml:",inline"`
}

// Section describes a nested section or portal.
type Section struct {
	Name   string `yaml:"name" json:"name"`
	TestID string `yaml:"test_id" json:"test_id"`
	Node   `yaml:",inline"`
}

// Node is what pages and sections have in common: the text they must
// contain once loaded and their children.
type Node struct {
	Expect   []string  `yaml:"expect" json:"expect"`
	Sections []Section `yaml:"sections" json:"sections"`
	Portals  []Section `yaml:"portals" json:"portals"`
}

// Load reads a layout file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a layout.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse layout file: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks that every page has a name and a URL and every section a
// name.
func (f *File) Validate() error {
	if len(f.Pages) == 0 {
		return fmt.Errorf("layout declares no pages")
	}
	seen := make(map[string]bool, len(f.Pages))
	for i, p := range f.Pages {
		if p.Name == "" {
			return fmt.Errorf("pages[%d]: name is required", i)
		}
		if p.URL == "" {
			return fmt.Errorf("page %s: url is required", p.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("page %s: declared twice", p.Name)
		}
		seen[p.Name] = true
		if err := p.Node.validate(p.Name); err != nil {
			return err
		}
	}
	return nil
}

func (n *Node) validate(where string) error {
	for i, s := range append(append([]Section(nil), n.Sections...), n.Portals...) {
		if s.Name == "" {
			return fmt.Errorf("%s: sections[%d]: name is required", where, i)
		}
		if err := s.Node.validate(where + " > " + s.Name); err != nil {
			return err
		}
	}
	return nil
}

// Compile builds the page definitions of the layout.
func (f *File) Compile() ([]*section.Definition, error) {
	defs := make([]*section.Definition, 0, len(f.Pages))
	for _, p := range f.Pages {
		def, err := p.Compile()
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// Compile builds the page definition.
func (p Page) Compile() (*section.Definition, error) {
	return section.DefinePage(p.Name, func(b *section.Builder) {
		b.URL(p.URL)
		if p.TestID != "" {
			b.ContainerTestID(p.TestID)
		}
		p.Node.declare(b)
	})
}

// declare adds the gate and the children of n to b.
func (n Node) declare(b *section.Builder) {
	b.EnsureLoaded(expectGate(n.Expect))

	for _, s := range n.Sections {
		opts := []section.ChildOption{section.With(s.Node.declare)}
		if s.TestID != "" {
			opts = append(opts, section.TestID(s.TestID))
		}
		b.Section(s.Name, opts...)
	}
	for _, s := range n.Portals {
		b.Portal(s.Name, section.With(s.Node.declare))
	}
}

// expectGate passes once the container resolves and contains every
// expected text.
func expectGate(expect []string) section.Gate {
	return func(ctx context.Context, self *section.Self) (any, error) {
		container, err := self.Container(ctx)
		if err != nil {
			return nil, err
		}
		for _, text := range expect {
			if _, err := self.Ensure(ctx, "has_content?", text); err != nil {
				return nil, err
			}
		}
		return container, nil
	}
}
