// Package listing enumerates search results on the keyword-filtered
// listing view. The listing is infinite-scroll: content is loaded by
// scrolling to the bottom until the page height stops growing, then item
// positions are probed 1, 2, 3, ... until one fails to resolve.
package listing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"github.com/bbachinco/yeoshin/internal/browser"
	"github.com/bbachinco/yeoshin/internal/config"
	"github.com/bbachinco/yeoshin/internal/retry"
	"github.com/bbachinco/yeoshin/internal/selector"
)

// ErrNoListing is returned when the search results container never
// resolves. This is fatal for the crawl.
var ErrNoListing = errors.New("search results container not found")

// Index is the immutable enumeration of item positions for one search.
// Positions are 1-based navigation keys, not stable identifiers: reaching
// an item later requires re-resolving the same position.
type Index struct {
	Count int
	// Capped reports that enumeration stopped at the configured maximum
	// rather than at the first missing position. The caller surfaces a
	// one-time advisory in that case.
	Capped bool
}

// Positions returns the ordered positions 1..Count.
func (i Index) Positions() []int {
	out := make([]int, i.Count)
	for n := range out {
		out[n] = n + 1
	}
	return out
}

// ContainerChain locates the search results container.
func ContainerChain(timeout time.Duration) selector.Chain {
	return selector.Chain{
		Field:   "listing container",
		Timeout: timeout,
		Locators: []selector.Locator{
			selector.XPath(`//*[@id="ct-view"]/div/main/article/section[2]/section`),
			selector.CSS("#ct-view > div > main > article > section:nth-child(2) > section"),
		},
	}
}

// ItemChain locates the article element at the given 1-based position.
func ItemChain(pos int, timeout time.Duration) selector.Chain {
	return selector.Chain{
		Field:   fmt.Sprintf("listing item %d", pos),
		Timeout: timeout,
		Locators: []selector.Locator{
			selector.XPath(fmt.Sprintf(`//*[@id="ct-view"]/div/main/article/section[2]/section/div[%d]/article`, pos)),
			selector.CSS(fmt.Sprintf("#ct-view > div > main > article > section:nth-child(2) > section > div:nth-child(%d) > article", pos)),
		},
	}
}

// Navigator drives the search and enumeration steps.
type Navigator struct {
	cfg      *config.Config
	resolver *selector.Resolver
	// probe resolves one item position; injectable for enumeration tests.
	probe func(ctx context.Context, pos int) bool
}

// New creates a Navigator.
func New(cfg *config.Config) *Navigator {
	n := &Navigator{cfg: cfg, resolver: selector.New()}
	n.probe = n.probeItem
	return n
}

// Search navigates to the keyword listing, loads all reachable content,
// and enumerates item positions up to the configured maximum. The
// searched hook, when non-nil, fires once after the search navigation
// succeeds and before scrolling or enumeration begin.
func (n *Navigator) Search(ctx context.Context, keyword string, searched func()) (Index, error) {
	searchURL := n.cfg.SearchURL(keyword)
	log.Info().Str("keyword", keyword).Str("url", searchURL).Msg("Searching")

	err := retry.Do(ctx, retry.DefaultConfig(), func() error {
		return browser.WithNavTimeout(ctx, n.cfg.NavTimeout, func(ctx context.Context) error {
			return chromedp.Run(ctx,
				chromedp.Navigate(searchURL),
				chromedp.WaitReady("body", chromedp.ByQuery),
				chromedp.Sleep(n.cfg.SearchSettle),
			)
		})
	})
	if err != nil {
		return Index{}, fmt.Errorf("search navigation failed: %w", err)
	}
	if searched != nil {
		searched()
	}

	n.scrollToEnd(ctx)

	if _, ok := n.resolver.WaitVisible(ctx, ContainerChain(n.cfg.AnchorTimeout)); !ok {
		return Index{}, ErrNoListing
	}

	return n.enumerate(ctx), nil
}

// scrollToEnd scrolls to the bottom repeatedly until the document height
// stops growing or the round cap is hit.
func (n *Navigator) scrollToEnd(ctx context.Context) {
	var prevHeight int64 = -1
	for round := 0; round < n.cfg.ScrollRounds; round++ {
		var height int64
		err := browser.WithNavTimeout(ctx, n.cfg.NavTimeout, func(ctx context.Context) error {
			return chromedp.Run(ctx,
				chromedp.Evaluate(`document.body.scrollHeight`, &height),
				chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
				chromedp.Sleep(n.cfg.ScrollDelay),
			)
		})
		if err != nil {
			log.Warn().Err(err).Int("round", round+1).Msg("Scroll failed")
			return
		}
		if height == prevHeight {
			log.Debug().Int("round", round+1).Msg("Content exhausted")
			return
		}
		prevHeight = height
	}
}

// enumerate probes item positions in order. The first failing position
// terminates enumeration: that index is one past the last real item.
// Enumeration never counts past the configured maximum.
func (n *Navigator) enumerate(ctx context.Context) Index {
	count := 0
	for pos := 1; pos <= n.cfg.MaxItems; pos++ {
		if !n.probe(ctx, pos) {
			break
		}
		count = pos
	}

	idx := Index{Count: count}
	// A page may hold exactly MaxItems items. Truncation is reported
	// only when one more position actually resolves; that boundary probe
	// is never counted and nothing beyond it is ever probed.
	if count == n.cfg.MaxItems {
		idx.Capped = n.probe(ctx, n.cfg.MaxItems+1)
	}
	log.Info().Int("items", idx.Count).Bool("capped", idx.Capped).Msg("Listing enumerated")
	return idx
}

func (n *Navigator) probeItem(ctx context.Context, pos int) bool {
	_, ok := n.resolver.WaitVisible(ctx, ItemChain(pos, n.cfg.AnchorTimeout))
	return ok
}
