package browser

// Options configures a browser session.
type Options struct {
	// BaseURL is prepended to relative paths passed to Visit
	BaseURL string

	// Headless controls whether the browser runs without a visible window
	Headless bool

	// Browser selects the engine: chromium, firefox or webkit
	Browser string

	// Viewport sets the initial viewport size
	Viewport *Viewport

	// Timeout sets the default timeout for operations, including how long
	// queries wait for elements to appear (in milliseconds)
	Timeout float64

	// WaitUntil specifies when navigation is considered done:
	// "load", "domcontentloaded" or "networkidle"
	WaitUntil string

	// Install downloads the browser binaries before starting
	Install bool
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// Default values for sessions
const (
	DefaultTimeout        = 30000.0 // 30 seconds in milliseconds
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
	DefaultBrowser        = "chromium"
	DefaultWaitUntil      = "load"
)

// withDefaults fills in unset options.
func (o Options) withDefaults() Options {
	if o.Viewport == nil {
		o.Viewport = &Viewport{
			Width:  DefaultViewportWidth,
			Height: DefaultViewportHeight,
		}
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Browser == "" {
		o.Browser = DefaultBrowser
	}
	if o.WaitUntil == "" {
		o.WaitUntil = DefaultWaitUntil
	}
	return o
}
