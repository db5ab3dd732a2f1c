// Package detail extracts one event record plus its option rows from a
// detail view. Every extraction boundary fails closed: a missing field
// becomes an unset optional, a missing purchase control or option list
// produces the placeholder row, and only a failure to reach the detail
// view at all surfaces as an error (the item is then skipped upstream).
package detail

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"github.com/bbachinco/yeoshin/internal/browser"
	"github.com/bbachinco/yeoshin/internal/config"
	"github.com/bbachinco/yeoshin/internal/listing"
	"github.com/bbachinco/yeoshin/internal/selector"
	"github.com/bbachinco/yeoshin/pkg/models"
)

// Extractor navigates into listing items and pulls their records.
type Extractor struct {
	cfg      *config.Config
	resolver *selector.Resolver
	// optionProbe resolves one option sub-position; injectable for tests.
	optionProbe func(ctx context.Context, idx int) (name, price models.Field, ok bool)
}

// New creates an Extractor.
func New(cfg *config.Config) *Extractor {
	e := &Extractor{cfg: cfg, resolver: selector.New()}
	e.optionProbe = e.probeOption
	return e
}

// Extract processes the item at the given 1-based listing position. The
// page must currently show the listing; on return it shows the listing
// again. An error is returned only when the detail view could not be
// entered, in which case the item contributes no rows and the caller
// skips it.
func (e *Extractor) Extract(ctx context.Context, pos int) ([]models.OptionRecord, error) {
	var listingURL string
	if err := chromedp.Run(ctx, chromedp.Location(&listingURL)); err != nil {
		return nil, fmt.Errorf("item %d: cannot read listing URL: %w", pos, err)
	}

	// Items are reached by re-resolving the Nth listing element; the
	// position is a navigation key, nothing is remembered across visits.
	loc, ok := e.resolver.WaitVisible(ctx, listing.ItemChain(pos, e.cfg.AnchorTimeout))
	if !ok {
		return nil, fmt.Errorf("item %d: listing element not found", pos)
	}
	err := browser.WithNavTimeout(ctx, e.cfg.NavTimeout, func(ctx context.Context) error {
		return chromedp.Run(ctx,
			chromedp.Click(loc.Query, loc.Opt()),
			chromedp.Sleep(e.cfg.SettleDelay),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("item %d: failed to open detail view: %w", pos, err)
	}
	defer e.returnToListing(ctx, listingURL)

	ev := e.extractFields(ctx, pos)

	records := e.expandOptions(ctx, ev)
	log.Info().Int("position", pos).Int("rows", len(records)).Msg("Item extracted")
	return records, nil
}

// extractFields runs the per-field fallback chains. Fields are
// independent; a miss leaves the optional unset and extraction continues.
func (e *Extractor) extractFields(ctx context.Context, pos int) models.EventRecord {
	ev := models.EventRecord{Position: pos}

	var detailURL string
	if err := chromedp.Run(ctx, chromedp.Location(&detailURL)); err == nil && detailURL != "" {
		ev.DetailURL = models.Set(detailURL)
	}

	t := e.cfg.FieldTimeout
	fields := []struct {
		chain selector.Chain
		dst   *models.Field
	}{
		{titleChain(t), &ev.Title},
		{ratingChain(t), &ev.Rating},
		{reviewCountChain(t), &ev.ReviewCount},
		{providerChain(t), &ev.Provider},
		{locationChain(t), &ev.Location},
		{inquiryCountChain(t), &ev.InquiryCount},
		{scrapCountChain(t), &ev.ScrapCount},
	}
	for _, f := range fields {
		if text, ok := e.resolver.Text(ctx, f.chain); ok && text != "" {
			*f.dst = models.Set(text)
		}
	}

	// Selector misses get one more chance from the page's embedded state
	// blob before the placeholders win.
	if !ev.Title.OK() || !ev.Provider.OK() || !ev.Location.OK() {
		e.fillFromPageState(ctx, &ev)
	}

	if desc, ok := e.captureDescription(ctx); ok {
		ev.Description = models.Set(desc)
	}

	return ev
}

// expandOptions opens the purchase modal and walks the numbered option
// list. Any failure along the way yields the single placeholder row.
func (e *Extractor) expandOptions(ctx context.Context, ev models.EventRecord) []models.OptionRecord {
	if _, ok := e.resolver.WaitVisible(ctx, purchaseSectionChain(e.cfg.FieldTimeout)); !ok {
		log.Debug().Int("position", ev.Position).Msg("No purchase section")
		return []models.OptionRecord{models.Placeholder(ev)}
	}

	count, err := e.countPurchaseButtons(ctx)
	if err != nil || count == 0 {
		log.Debug().Int("position", ev.Position).Err(err).Msg("No purchase buttons")
		return []models.OptionRecord{models.Placeholder(ev)}
	}

	// Site convention: with multiple buttons, index 0 is a secondary
	// action and the purchase control is the second one.
	choose := 0
	if count >= 2 {
		choose = 1
	}
	if err := e.clickPurchaseButton(ctx, choose); err != nil {
		log.Warn().Int("position", ev.Position).Int("button", choose).Err(err).Msg("Purchase button click failed")
		return []models.OptionRecord{models.Placeholder(ev)}
	}

	// Let the modal open before resolving the option list.
	if err := chromedp.Run(ctx, chromedp.Sleep(e.cfg.SettleDelay)); err != nil {
		return []models.OptionRecord{models.Placeholder(ev)}
	}
	if _, ok := e.resolver.WaitVisible(ctx, optionContainerChain(e.cfg.AnchorTimeout)); !ok {
		log.Debug().Int("position", ev.Position).Msg("Option container not found")
		return []models.OptionRecord{models.Placeholder(ev)}
	}

	return e.collectOptions(ctx, ev)
}

// collectOptions walks the numbered option entries inside an open modal.
// The first missing sub-position stops enumeration; the cap guards
// against a page that keeps generating siblings.
func (e *Extractor) collectOptions(ctx context.Context, ev models.EventRecord) []models.OptionRecord {
	var records []models.OptionRecord
	for idx := 1; idx <= e.cfg.MaxOptions; idx++ {
		name, price, ok := e.optionProbe(ctx, idx)
		if !ok {
			break
		}
		records = append(records, models.OptionRecord{Event: ev, Name: name, Price: price})
	}

	log.Debug().Int("position", ev.Position).Int("options", len(records)).Msg("Options expanded")
	if len(records) == 0 {
		return []models.OptionRecord{models.Placeholder(ev)}
	}
	return records
}

// probeOption resolves one numbered option entry. The entry element must
// resolve; name and price are then extracted independently so one missing
// sub-element does not drop the row.
func (e *Extractor) probeOption(ctx context.Context, idx int) (models.Field, models.Field, bool) {
	if _, ok := e.resolver.WaitVisible(ctx, optionChain(idx, e.cfg.FieldTimeout)); !ok {
		return models.Field{}, models.Field{}, false
	}

	var name, price models.Field
	if text, ok := e.resolver.Text(ctx, optionNameChain(idx, e.cfg.FieldTimeout)); ok && text != "" {
		name = models.Set(text)
	}
	if text, ok := e.resolver.Text(ctx, optionPriceChain(idx, e.cfg.FieldTimeout)); ok && text != "" {
		price = models.Set(text)
	}
	return name, price, true
}

func (e *Extractor) countPurchaseButtons(ctx context.Context) (int, error) {
	var count int
	err := chromedp.Run(ctx, chromedp.Evaluate(
		`document.querySelectorAll("#ct-view > div > div > section button").length`, &count))
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (e *Extractor) clickPurchaseButton(ctx context.Context, idx int) error {
	var clicked bool
	js := fmt.Sprintf(`(() => {
		const btns = document.querySelectorAll("#ct-view > div > div > section button");
		if (btns.length <= %d) return false;
		btns[%d].click();
		return true;
	})()`, idx, idx)
	if err := chromedp.Run(ctx, chromedp.Evaluate(js, &clicked)); err != nil {
		return err
	}
	if !clicked {
		return fmt.Errorf("purchase button %d not present", idx)
	}
	return nil
}

// returnToListing restores the pre-click listing state. Best effort: a
// failure here surfaces on the next item's element resolution instead.
func (e *Extractor) returnToListing(ctx context.Context, listingURL string) {
	err := browser.WithNavTimeout(ctx, e.cfg.NavTimeout, func(ctx context.Context) error {
		return chromedp.Run(ctx,
			chromedp.Navigate(listingURL),
			chromedp.WaitReady("body", chromedp.ByQuery),
			chromedp.Sleep(e.cfg.SettleDelay),
		)
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to return to listing")
	}
}
