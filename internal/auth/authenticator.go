// Package auth establishes the authenticated browser session a crawl
// requires. Authentication is cookie injection: the site's session tokens
// are set on its domain, the page is reloaded, and login is verified by
// probing known logged-in indicators. Verification failure is the one
// fatal, non-retried failure mode of the whole system.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"github.com/bbachinco/yeoshin/internal/browser"
	"github.com/bbachinco/yeoshin/internal/config"
	"github.com/bbachinco/yeoshin/internal/credentials"
	"github.com/bbachinco/yeoshin/internal/selector"
)

// ErrNotAuthenticated is returned when login verification fails after
// cookie injection. The crawl must abort; there is no retry.
var ErrNotAuthenticated = errors.New("login verification failed")

// Authenticator injects credential cookies and verifies the session.
// Each step is an injectable function so the escalation rules around
// cookie failures are testable without a browser.
type Authenticator struct {
	cfg      *config.Config
	resolver *selector.Resolver

	navigate  func(ctx context.Context, url string) error
	setCookie func(ctx context.Context, name, value string) error
	reload    func(ctx context.Context) error
	verify    func(ctx context.Context) bool
}

// New creates an Authenticator backed by chromedp.
func New(cfg *config.Config) *Authenticator {
	a := &Authenticator{cfg: cfg, resolver: selector.New()}
	a.navigate = a.navigatePage
	a.setCookie = a.setSessionCookie
	a.reload = a.reloadPage
	a.verify = a.verifyPage
	return a
}

// loggedInChain lists the indicators probed on the authenticated-only
// page, likeliest first. The structural candidates break when the site
// front-end is redeployed; the class-based ones survive longer.
func loggedInChain(timeout time.Duration) selector.Chain {
	return selector.Chain{
		Field:   "logged-in indicator",
		Timeout: timeout,
		Locators: []selector.Locator{
			selector.CSS("#ct-view > div > div > div.sc-d64fbdbd-0.IeGIQ > a"),
			selector.XPath(`//*[@id="ct-view"]/div/div/div[1]/a`),
			selector.CSS(".user-info"),
			selector.CSS(".mypage-user"),
		},
	}
}

// Authenticate sets every populated credential token as a cookie on the
// site domain, reloads, and verifies login. A failure setting one cookie
// is logged and escalates only if the reload after injection also fails;
// a verification miss always aborts.
func (a *Authenticator) Authenticate(ctx context.Context, creds credentials.Set) error {
	if err := a.navigate(ctx, a.cfg.BaseURL); err != nil {
		return fmt.Errorf("failed to reach site root: %w", err)
	}

	cookieErrs := 0
	for _, name := range config.CookieNames {
		value, ok := creds[name]
		if !ok {
			continue
		}
		if err := a.setCookie(ctx, name, value); err != nil {
			cookieErrs++
			log.Error().Str("cookie", name).Err(err).Msg("Failed to set cookie")
			continue
		}
		log.Debug().Str("cookie", name).Msg("Cookie set")
	}

	// Force-reload so the injected tokens take effect.
	if err := a.reload(ctx); err != nil {
		if cookieErrs > 0 {
			return fmt.Errorf("reload failed after %d cookie errors: %w", cookieErrs, err)
		}
		return fmt.Errorf("reload failed after cookie injection: %w", err)
	}

	if !a.verify(ctx) {
		return ErrNotAuthenticated
	}

	log.Info().Int("cookies", len(creds)).Msg("Session authenticated")
	return nil
}

// Verify reports whether the current session is logged in.
func (a *Authenticator) Verify(ctx context.Context) bool {
	return a.verify(ctx)
}

func (a *Authenticator) navigatePage(ctx context.Context, url string) error {
	return browser.WithNavTimeout(ctx, a.cfg.NavTimeout, func(ctx context.Context) error {
		return chromedp.Run(ctx, chromedp.Navigate(url))
	})
}

func (a *Authenticator) setSessionCookie(ctx context.Context, name, value string) error {
	return chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return network.SetCookie(name, value).
			WithDomain(a.cfg.CookieDomain).
			WithPath("/").
			Do(ctx)
	}))
}

func (a *Authenticator) reloadPage(ctx context.Context) error {
	return browser.WithNavTimeout(ctx, a.cfg.NavTimeout, func(ctx context.Context) error {
		return chromedp.Run(ctx, chromedp.Reload(), chromedp.Sleep(a.cfg.SettleDelay))
	})
}

// verifyPage navigates to the authenticated-only page and probes the
// logged-in indicator chain. A visible login link is taken as a definite
// "not logged in"; an inconclusive page is treated the same way.
func (a *Authenticator) verifyPage(ctx context.Context) bool {
	err := browser.WithNavTimeout(ctx, a.cfg.NavTimeout, func(ctx context.Context) error {
		return chromedp.Run(ctx,
			chromedp.Navigate(a.cfg.VerifyURL()),
			chromedp.Sleep(a.cfg.SettleDelay),
		)
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to open verification page")
		return false
	}

	if _, ok := a.resolver.WaitVisible(ctx, loggedInChain(a.cfg.AnchorTimeout)); ok {
		log.Info().Msg("Login verified")
		return true
	}

	// No indicator resolved; a login link confirms the session is anonymous.
	var hasLogin bool
	err = chromedp.Run(ctx, chromedp.Evaluate(`document.querySelector("a[href*='login']") !== null`, &hasLogin))
	if err == nil && hasLogin {
		log.Error().Msg("Login link present, session not authenticated")
		return false
	}

	log.Error().Msg("Could not determine login state")
	return false
}
