// Package htmldoc implements finder.Driver over static HTML documents.
//
// Documents are read from an fs.FS (a fixtures directory, an embed.FS or a
// testing/fstest.MapFS) and parsed with golang.org/x/net/html. Selectors
// are matched with cascadia. There is no JavaScript, layout or waiting: the
// driver answers for the document exactly as written, which makes it the
// driver of choice for unit tests of page objects.
package htmldoc

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/entrhq/pageobject/pkg/finder"
	"github.com/entrhq/pageobject/pkg/logging"
)

// ErrNoDocument is returned when a query is made before any Visit or Load.
var ErrNoDocument = errors.New("htmldoc: no document loaded")

const notFoundPage = `<!DOCTYPE html><html><head><title>404 Not Found</title></head><body><h1>Not Found</h1></body></html>`

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the logger navigation and parse failures are reported to.
func WithLogger(l *logging.Logger) Option {
	return func(d *Driver) {
		d.logger = l
	}
}

// Driver serves documents from a file system.
type Driver struct {
	fsys      fs.FS
	doc       *html.Node
	url       string
	selectors map[string]cascadia.Selector
	logger    *logging.Logger
}

var _ finder.Driver = (*Driver)(nil)

// New creates a driver reading documents from fsys. fsys may be nil when
// documents are only supplied through Load.
func New(fsys fs.FS, opts ...Option) *Driver {
	d := &Driver{
		fsys:      fsys,
		selectors: make(map[string]cascadia.Selector),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Visit loads the document at p. Query strings and fragments are ignored.
// A missing file renders a 404 page, the way a web server would.
func (d *Driver) Visit(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.fsys == nil {
		return fmt.Errorf("htmldoc: cannot visit %q without a file system", p)
	}

	name := p
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	if name == "" {
		name = "index.html"
	}

	data, err := fs.ReadFile(d.fsys, name)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		d.logger.Warnf("visit %s: not found, rendering 404 page", p)
		data = []byte(notFoundPage)
	case err != nil:
		return fmt.Errorf("failed to read %s: %w", name, err)
	default:
		d.logger.Debugf("visit %s", p)
	}

	if err := d.Load(string(data)); err != nil {
		return err
	}
	d.url = p
	return nil
}

// Load replaces the current document with rawHTML.
func (d *Driver) Load(rawHTML string) error {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return fmt.Errorf("failed to parse HTML: %w", err)
	}
	d.doc = doc
	d.url = ""
	return nil
}

// URL returns the path of the last visited document.
func (d *Driver) URL() string {
	return d.url
}

// Document returns the <body> element of the current document.
func (d *Driver) Document(ctx context.Context) (finder.Element, error) {
	if d.doc == nil {
		return nil, ErrNoDocument
	}
	body := cascadia.Query(d.doc, cascadia.MustCompile("body"))
	if body == nil {
		return nil, &finder.NotFoundError{Kind: finder.KindCSS, Selector: "body"}
	}
	return wrap(body), nil
}

// FindAll returns the descendants of scope matching selector.
func (d *Driver) FindAll(ctx context.Context, scope finder.Element, selector string) ([]finder.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.doc == nil {
		return nil, ErrNoDocument
	}

	root := d.doc
	if scope != nil {
		n, err := unwrap(scope)
		if err != nil {
			return nil, err
		}
		root = n.node
	}

	sel, err := d.compile(selector)
	if err != nil {
		return nil, err
	}

	matches := cascadia.QueryAll(root, sel)
	out := make([]finder.Element, 0, len(matches))
	for _, m := range matches {
		out = append(out, wrap(m))
	}
	return out, nil
}

// Text returns the whitespace-normalized text of el, leaving out scripts,
// styles and other non-rendered content.
func (d *Driver) Text(ctx context.Context, el finder.Element) (string, error) {
	n, err := unwrap(el)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	collectText(n.node, &b)
	return finder.NormalizeSpace(b.String()), nil
}

// Attribute returns the named attribute of el.
func (d *Driver) Attribute(ctx context.Context, el finder.Element, name string) (string, bool, error) {
	n, err := unwrap(el)
	if err != nil {
		return "", false, err
	}
	for _, attr := range n.node.Attr {
		if attr.Namespace == "" && attr.Key == name {
			return attr.Val, true, nil
		}
	}
	return "", false, nil
}

func (d *Driver) compile(selector string) (cascadia.Selector, error) {
	if sel, ok := d.selectors[selector]; ok {
		return sel, nil
	}
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	d.selectors[selector] = sel
	return sel, nil
}

// collectText appends the text below n, separating block elements with
// spaces so adjacent headings do not run together.
func collectText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		if isSkippedElement(n.Data) {
			return
		}
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, b)
	}
	if n.Type == html.ElementNode && !isInlineElement(n.Data) {
		b.WriteByte(' ')
	}
}

func isInlineElement(tag string) bool {
	switch strings.ToLower(tag) {
	case "a", "abbr", "b", "code", "em", "i", "label", "mark", "s", "small", "span", "strong", "sub", "sup", "u":
		return true
	}
	return false
}

// isSkippedElement reports elements whose content is never rendered as text.
func isSkippedElement(tag string) bool {
	switch strings.ToLower(tag) {
	case "script", "style", "noscript", "template", "head":
		return true
	}
	return false
}
