// Package browser implements finder.Driver on a live browser through
// Playwright.
//
// A Driver owns one Playwright runtime, one browser, one context and one
// page. Page objects run against it exactly as they run against the static
// htmldoc driver; the difference is that text is the rendered text of the
// page and documents may change as scripts run.
//
//	d, err := browser.Start(browser.Options{
//	    BaseURL:  "http://localhost:3000",
//	    Headless: true,
//	}, logger)
//	if err != nil {
//	    return err
//	}
//	defer d.Close()
package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/pageobject/pkg/finder"
	"github.com/entrhq/pageobject/pkg/logging"
)

// pathScript computes the same XPath-like path the htmldoc driver produces.
const pathScript = `el => {
  const parts = [];
  for (let n = el; n && n.nodeType === 1; n = n.parentElement) {
    let i = 1;
    for (let s = n.previousElementSibling; s; s = s.previousElementSibling) {
      if (s.tagName === n.tagName) i++;
    }
    parts.unshift(n.tagName.toLowerCase() + '[' + i + ']');
  }
  return '/' + parts.join('/');
}`

const attributeScript = `(el, name) => el.hasAttribute(name) ? el.getAttribute(name) : null`

// Element is a located node of the live page.
type Element struct {
	loc  playwright.Locator
	path string
}

// Path returns the element's XPath-like location.
func (e *Element) Path() string {
	return e.path
}

// Locator exposes the underlying Playwright locator for interactions the
// finder boundary does not cover (click, fill, ...).
func (e *Element) Locator() playwright.Locator {
	return e.loc
}

// Driver drives a single browser page.
type Driver struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	opts    Options
	logger  *logging.Logger
}

var _ finder.Driver = (*Driver)(nil)

// Start launches Playwright and opens a page.
func Start(opts Options, logger *logging.Logger) (*Driver, error) {
	opts = opts.withDefaults()

	// Discard driver output so it does not interleave with test output
	runOpts := &playwright.RunOptions{
		Browsers: []string{opts.Browser},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}

	if opts.Install {
		logger.Infof("installing playwright %s", opts.Browser)
		if err := playwright.Install(runOpts); err != nil {
			return nil, fmt.Errorf("failed to install playwright: %w", err)
		}
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browserType, err := selectBrowser(pw, opts.Browser)
	if err != nil {
		_ = pw.Stop()
		return nil, err
	}

	browser, err := browserType.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: &opts.Headless,
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  opts.Viewport.Width,
			Height: opts.Viewport.Height,
		},
	})
	if err != nil {
		browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		bctx.Close()
		browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(opts.Timeout)

	logger.Infof("started %s (headless=%v)", opts.Browser, opts.Headless)

	return &Driver{
		pw:      pw,
		browser: browser,
		context: bctx,
		page:    page,
		opts:    opts,
		logger:  logger,
	}, nil
}

func selectBrowser(pw *playwright.Playwright, name string) (playwright.BrowserType, error) {
	switch name {
	case "chromium":
		return pw.Chromium, nil
	case "firefox":
		return pw.Firefox, nil
	case "webkit":
		return pw.WebKit, nil
	default:
		return nil, fmt.Errorf("unsupported browser: %s", name)
	}
}

// Page returns the Playwright page.
func (d *Driver) Page() playwright.Page {
	return d.page
}

// Visit navigates to path resolved against the base URL. Error statuses are
// logged but do not fail the navigation: the page renders whatever the
// server sent and page objects decide whether that is acceptable.
func (d *Driver) Visit(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target, err := resolveURL(d.opts.BaseURL, path)
	if err != nil {
		return err
	}

	waitUntil := playwright.WaitUntilState(d.opts.WaitUntil)
	resp, err := d.page.Goto(target, playwright.PageGotoOptions{
		WaitUntil: &waitUntil,
	})
	if err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}

	if resp != nil && resp.Status() >= 400 {
		d.logger.Warnf("visit %s: status %d", target, resp.Status())
	} else {
		d.logger.Debugf("visit %s", target)
	}
	return nil
}

// Document returns the page body.
func (d *Driver) Document(ctx context.Context) (finder.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body := d.page.Locator("body")
	found, err := d.waitAttached(body)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &finder.NotFoundError{Kind: finder.KindCSS, Selector: "body"}
	}
	return &Element{loc: body, path: "/html[1]/body[1]"}, nil
}

// FindAll locates every match of selector below scope. It waits up to
// Options.Timeout for a first match to be attached and returns no elements
// when none appears, so absent elements cost the full timeout.
func (d *Driver) FindAll(ctx context.Context, scope finder.Element, selector string) ([]finder.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var loc playwright.Locator
	if scope == nil {
		loc = d.page.Locator(selector)
	} else {
		el, err := unwrap(scope)
		if err != nil {
			return nil, err
		}
		loc = el.loc.Locator(selector)
	}

	found, err := d.waitAttached(loc)
	if err != nil {
		return nil, err
	}
	if !found {
		return []finder.Element{}, nil
	}

	count, err := loc.Count()
	if err != nil {
		return nil, fmt.Errorf("selector query failed: %w", err)
	}

	out := make([]finder.Element, 0, count)
	for i := 0; i < count; i++ {
		item := loc.Nth(i)
		path, err := elementPath(item)
		if err != nil {
			return nil, err
		}
		out = append(out, &Element{loc: item, path: path})
	}
	return out, nil
}

// Text returns the rendered, whitespace-normalized text of el.
func (d *Driver) Text(ctx context.Context, el finder.Element) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	e, err := unwrap(el)
	if err != nil {
		return "", err
	}
	text, err := e.loc.InnerText()
	if err != nil {
		return "", fmt.Errorf("text extraction failed: %w", err)
	}
	return finder.NormalizeSpace(text), nil
}

// Attribute returns the named attribute of el.
func (d *Driver) Attribute(ctx context.Context, el finder.Element, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	e, err := unwrap(el)
	if err != nil {
		return "", false, err
	}
	value, err := e.loc.Evaluate(attributeScript, name)
	if err != nil {
		return "", false, fmt.Errorf("attribute lookup failed: %w", err)
	}
	s, ok := value.(string)
	return s, ok, nil
}

// Close releases the page, context, browser and Playwright runtime.
func (d *Driver) Close() error {
	_ = d.page.Close()    // Ignore errors, continue cleanup
	_ = d.context.Close() // Ignore errors, continue cleanup
	_ = d.browser.Close() // Ignore errors, continue cleanup

	if err := d.pw.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	d.logger.Infof("stopped %s", d.opts.Browser)
	return nil
}

// waitAttached waits up to the configured timeout for the first match of
// loc to be attached to the DOM.
func (d *Driver) waitAttached(loc playwright.Locator) (bool, error) {
	timeout := d.opts.Timeout
	return waitResult(loc.First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: &timeout,
	}))
}

// waitResult maps the outcome of a wait to whether anything matched. A
// timeout is not an error: it means no element appeared in time.
func waitResult(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, playwright.ErrTimeout):
		return false, nil
	default:
		return false, fmt.Errorf("wait for selector failed: %w", err)
	}
}

func elementPath(loc playwright.Locator) (string, error) {
	value, err := loc.Evaluate(pathScript, nil)
	if err != nil {
		return "", fmt.Errorf("failed to compute element path: %w", err)
	}
	path, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("unexpected element path type %T", value)
	}
	return path, nil
}

func unwrap(el finder.Element) (*Element, error) {
	e, ok := el.(*Element)
	if !ok || e == nil {
		return nil, fmt.Errorf("browser: foreign element %T", el)
	}
	return e, nil
}

// resolveURL joins path onto base. Absolute URLs are returned unchanged.
func resolveURL(base, path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}
	if ref.IsAbs() || base == "" {
		return ref.String(), nil
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", base, err)
	}
	if baseURL.Path == "" {
		baseURL.Path = "/"
	}
	return baseURL.ResolveReference(ref).String(), nil
}
