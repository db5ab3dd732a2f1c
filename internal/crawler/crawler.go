// Package crawler orchestrates a full crawl: authenticate, search,
// enumerate, then extract every listed item. Per-item failures are
// contained (the item is skipped); only authentication, the search
// navigation, and listing discovery abort the run. Whatever rows were
// collected before an abort are still returned.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/bbachinco/yeoshin/internal/auth"
	"github.com/bbachinco/yeoshin/internal/browser"
	"github.com/bbachinco/yeoshin/internal/config"
	"github.com/bbachinco/yeoshin/internal/credentials"
	"github.com/bbachinco/yeoshin/internal/detail"
	"github.com/bbachinco/yeoshin/internal/listing"
	"github.com/bbachinco/yeoshin/internal/ratelimit"
	"github.com/bbachinco/yeoshin/pkg/models"
)

// Crawl stages named in errors and logs.
const (
	StageAuth    = "auth"
	StageSearch  = "search"
	StageListing = "listing-discovery"
)

// CrawlError is a fatal failure of one crawl stage.
type CrawlError struct {
	Stage string
	Err   error
}

func (e *CrawlError) Error() string { return e.Stage + ": " + e.Err.Error() }
func (e *CrawlError) Unwrap() error { return e.Err }

// Progress checkpoints. Search completion and enumeration each pin a
// fixed fraction; item completions fill the remainder linearly.
const (
	progressSearch     = 0.2
	progressEnumerated = 0.3
)

// ProgressFunc receives monotone non-decreasing completion fractions in
// [0, 1]. It is called synchronously; implementations must not block.
type ProgressFunc func(fraction float64)

// session is one authenticated browser ready to search and extract.
// Split out so orchestration tests can run without Chrome. The searched
// hook fires after the search navigation, before enumeration.
type session interface {
	Search(keyword string, searched func()) (listing.Index, error)
	Extract(pos int) ([]models.OptionRecord, error)
	Close()
}

// Crawler runs keyword crawls.
type Crawler struct {
	cfg      *config.Config
	limiter  ratelimit.Limiter
	progress ProgressFunc

	mu   sync.Mutex
	last float64

	// openSession dials and authenticates one browser; injectable for tests.
	openSession func(ctx context.Context, creds credentials.Set) (session, error)
}

// New creates a Crawler.
func New(cfg *config.Config) *Crawler {
	c := &Crawler{
		cfg:     cfg,
		limiter: ratelimit.NewDomainLimiter(cfg.NavRateRPS, cfg.NavRateBurst),
	}
	c.openSession = c.openBrowserSession
	return c
}

// OnProgress registers the progress callback. Pass nil to disable.
func (c *Crawler) OnProgress(fn ProgressFunc) { c.progress = fn }

func (c *Crawler) report(fraction float64) {
	if c.progress == nil {
		return
	}
	c.mu.Lock()
	if fraction < c.last {
		fraction = c.last
	}
	c.last = fraction
	fn := c.progress
	c.mu.Unlock()
	fn(fraction)
}

// Run crawls one keyword. The returned table is never nil once
// authentication succeeded, so callers get partial results even when the
// run is cut short.
func (c *Crawler) Run(ctx context.Context, keyword string, creds credentials.Set) (*models.ResultTable, error) {
	table := &models.ResultTable{Keyword: keyword}

	primary, err := c.openSession(ctx, creds)
	if err != nil {
		return table, &CrawlError{Stage: StageAuth, Err: err}
	}
	defer primary.Close()

	if err := c.limiter.Wait(ctx, c.cfg.SearchURL(keyword)); err != nil {
		return table, &CrawlError{Stage: StageSearch, Err: err}
	}
	idx, err := primary.Search(keyword, func() { c.report(progressSearch) })
	if err != nil {
		if errors.Is(err, listing.ErrNoListing) {
			return table, &CrawlError{Stage: StageListing, Err: err}
		}
		return table, &CrawlError{Stage: StageSearch, Err: err}
	}
	c.report(progressEnumerated)

	table.Truncated = idx.Capped
	if idx.Capped {
		log.Warn().Int("cap", c.cfg.MaxItems).Msg("Listing hit the item cap, results are truncated")
	}
	if idx.Count == 0 {
		log.Info().Str("keyword", keyword).Msg("No items listed for keyword")
		c.report(1.0)
		return table, nil
	}

	agg := &aggregator{}
	if c.cfg.Workers <= 1 {
		err = c.runSequential(ctx, primary, idx, agg)
	} else {
		err = c.runPooled(ctx, primary, keyword, creds, idx, agg)
	}

	table.Rows = agg.Snapshot()
	if err != nil {
		return table, err
	}
	c.report(1.0)
	log.Info().Str("keyword", keyword).Int("items", idx.Count).Int("rows", table.Len()).Msg("Crawl complete")
	return table, nil
}

// runSequential processes every position on the primary session in
// listing order.
func (c *Crawler) runSequential(ctx context.Context, sess session, idx listing.Index, agg *aggregator) error {
	total := idx.Count
	for i, pos := range idx.Positions() {
		if err := c.limiter.Wait(ctx, c.cfg.BaseURL); err != nil {
			return err
		}
		c.processItem(sess, pos, agg)
		c.report(progressEnumerated + (1-progressEnumerated)*float64(i+1)/float64(total))
	}
	return ctx.Err()
}

// runPooled fans positions out to a pool of sessions, one browser per
// worker. The primary session is worker zero; extra sessions that fail to
// open just shrink the pool. Rows land in completion order.
func (c *Crawler) runPooled(ctx context.Context, primary session, keyword string, creds credentials.Set, idx listing.Index, agg *aggregator) error {
	workers := c.cfg.Workers
	if workers > idx.Count {
		workers = idx.Count
	}

	sessions := []session{primary}
	for len(sessions) < workers {
		sess, err := c.openSession(ctx, creds)
		if err != nil {
			log.Warn().Err(err).Int("pool", len(sessions)).Msg("Could not open extra worker session")
			break
		}
		if _, err := sess.Search(keyword, nil); err != nil {
			log.Warn().Err(err).Msg("Worker session could not load the listing")
			sess.Close()
			break
		}
		sessions = append(sessions, sess)
	}
	log.Info().Int("workers", len(sessions)).Int("items", idx.Count).Msg("Starting pooled extraction")

	jobs := make(chan int)
	var done atomic.Int64
	total := idx.Count

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for _, pos := range idx.Positions() {
			select {
			case jobs <- pos:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	for i, sess := range sessions {
		worker := i
		sess := sess
		g.Go(func() error {
			if worker > 0 {
				defer sess.Close()
			}
			for pos := range jobs {
				if err := c.limiter.Wait(gctx, c.cfg.BaseURL); err != nil {
					return err
				}
				c.processItem(sess, pos, agg)
				n := done.Add(1)
				c.report(progressEnumerated + (1-progressEnumerated)*float64(n)/float64(total))
			}
			return nil
		})
	}
	return g.Wait()
}

// processItem extracts one position. Failures skip the item; they never
// propagate.
func (c *Crawler) processItem(sess session, pos int, agg *aggregator) {
	rows, err := sess.Extract(pos)
	if err != nil {
		log.Warn().Int("position", pos).Err(err).Msg("Item skipped")
		return
	}
	agg.Append(rows)
}

// browserSession binds a real browser to the navigator and extractor.
type browserSession struct {
	sess      *browser.Session
	navigator *listing.Navigator
	extractor *detail.Extractor
}

func (c *Crawler) openBrowserSession(ctx context.Context, creds credentials.Set) (session, error) {
	sess, err := browser.Open(ctx, browser.Options{
		Headless:   c.cfg.Headless,
		UserAgent:  c.cfg.UserAgent,
		Proxy:      c.cfg.Proxy,
		ChromePath: c.cfg.ChromePath,
	})
	if err != nil {
		return nil, fmt.Errorf("browser launch failed: %w", err)
	}

	if err := auth.New(c.cfg).Authenticate(sess.Context(), creds); err != nil {
		sess.Close()
		return nil, err
	}

	return &browserSession{
		sess:      sess,
		navigator: listing.New(c.cfg),
		extractor: detail.New(c.cfg),
	}, nil
}

func (s *browserSession) Search(keyword string, searched func()) (listing.Index, error) {
	return s.navigator.Search(s.sess.Context(), keyword, searched)
}

func (s *browserSession) Extract(pos int) ([]models.OptionRecord, error) {
	return s.extractor.Extract(s.sess.Context(), pos)
}

func (s *browserSession) Close() { s.sess.Close() }
