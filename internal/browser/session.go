// Package browser owns the headless Chrome session a crawl runs in.
package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// Options configures a browser session.
type Options struct {
	Headless   bool
	UserAgent  string
	Proxy      string
	ChromePath string
}

// Session wraps one automation runtime, one browser, and one page context.
// All navigation during a crawl goes through the page context. The three
// layers are cancelled independently on Close so a wedged page cannot keep
// the browser process alive.
type Session struct {
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	pageCtx       context.Context
	pageCancel    context.CancelFunc
}

// Open launches Chrome and warms up a page context. The caller must Close
// the session on every path, success or failure.
func Open(parent context.Context, opts Options) (*Session, error) {
	if parent == nil {
		parent = context.Background()
	}

	chromePath := opts.ChromePath
	if chromePath == "" {
		chromePath = FindChrome()
	}

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-breakpad", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-hang-monitor", true),
		chromedp.Flag("disable-prompt-on-repost", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("window-size", "1920,1080"),
		chromedp.Flag("log-level", "3"),
	}
	if chromePath != "" {
		allocOpts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(chromePath)}, allocOpts...)
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
	} else {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if opts.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(opts.Proxy))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	pageCtx, pageCancel := chromedp.NewContext(browserCtx)

	s := &Session{
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		pageCtx:       pageCtx,
		pageCancel:    pageCancel,
	}

	// Warm up so the browser process is running before the crawl starts.
	if err := chromedp.Run(pageCtx, chromedp.Navigate("about:blank")); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	log.Debug().Bool("headless", opts.Headless).Str("chrome", chromePath).Msg("Browser session ready")
	return s, nil
}

// Context returns the page context all navigation runs against.
func (s *Session) Context() context.Context {
	return s.pageCtx
}

// Close tears the session down. Each layer is cancelled on its own so a
// failure in one does not leave the others running.
func (s *Session) Close() {
	if s.pageCancel != nil {
		s.pageCancel()
	}
	if s.browserCancel != nil {
		s.browserCancel()
	}
	if s.allocCancel != nil {
		s.allocCancel()
	}
	log.Debug().Msg("Browser session closed")
}
