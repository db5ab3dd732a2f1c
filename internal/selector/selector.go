// Package selector resolves page elements through ordered fallback chains.
//
// The target site regenerates its styled-component class names on every
// deploy, so each field keeps at least two independent locator strategies
// (a structural XPath and a class-based CSS path). Candidates are tried in
// order; exhausting the chain is an expected outcome, not an error.
package selector

import (
	"context"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// By selects the location strategy for a locator expression.
type By int

const (
	// ByQuery is a CSS selector.
	ByQuery By = iota
	// ByXPath is an XPath expression.
	ByXPath
)

// Locator is one candidate element-location expression.
type Locator struct {
	Query string
	By    By
}

// CSS builds a CSS locator.
func CSS(q string) Locator { return Locator{Query: q, By: ByQuery} }

// XPath builds an XPath locator.
func XPath(q string) Locator { return Locator{Query: q, By: ByXPath} }

// Opt returns the chromedp query option for the locator strategy.
func (l Locator) Opt() chromedp.QueryOption {
	if l.By == ByXPath {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

// Chain is an ordered fallback list for one named field.
type Chain struct {
	Field    string
	Locators []Locator
	// Timeout bounds each individual candidate attempt.
	Timeout time.Duration
}

// probeFunc resolves one locator to its visible text. Split out so tests
// can exercise fallback ordering without a browser.
type probeFunc func(ctx context.Context, loc Locator, timeout time.Duration) (string, error)

// Resolver tries each candidate of a chain in order and returns the first
// hit. The zero Resolver is not usable; call New.
type Resolver struct {
	probe probeFunc
}

// New returns a Resolver backed by chromedp.
func New() *Resolver {
	return &Resolver{probe: chromedpProbe}
}

// Text resolves the chain to the trimmed text of the first candidate that
// exists and is visible within its attempt timeout. The second return is
// false when every candidate failed; callers treat that as a missing
// field, never as an error.
func (r *Resolver) Text(ctx context.Context, ch Chain) (string, bool) {
	for i, loc := range ch.Locators {
		if ctx.Err() != nil {
			return "", false
		}
		text, err := r.probe(ctx, loc, ch.Timeout)
		if err == nil {
			log.Debug().Str("field", ch.Field).Int("candidate", i).Msg("Locator resolved")
			return strings.TrimSpace(text), true
		}
		log.Debug().Str("field", ch.Field).Int("candidate", i).Err(err).Msg("Locator failed")
	}
	return "", false
}

// WaitVisible resolves the chain to the first candidate that becomes
// visible, returning the winning locator for follow-up actions.
func (r *Resolver) WaitVisible(ctx context.Context, ch Chain) (Locator, bool) {
	for i, loc := range ch.Locators {
		if ctx.Err() != nil {
			return Locator{}, false
		}
		attempt, cancel := context.WithTimeout(ctx, ch.Timeout)
		err := chromedp.Run(attempt, chromedp.WaitVisible(loc.Query, loc.Opt()))
		cancel()
		if err == nil {
			log.Debug().Str("field", ch.Field).Int("candidate", i).Msg("Anchor visible")
			return loc, true
		}
	}
	return Locator{}, false
}

func chromedpProbe(ctx context.Context, loc Locator, timeout time.Duration) (string, error) {
	attempt, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var text string
	err := chromedp.Run(attempt,
		chromedp.WaitVisible(loc.Query, loc.Opt()),
		chromedp.Text(loc.Query, &text, loc.Opt()),
	)
	if err != nil {
		return "", err
	}
	return text, nil
}
