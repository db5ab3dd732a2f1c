package crawler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/bbachinco/yeoshin/internal/config"
	"github.com/bbachinco/yeoshin/internal/credentials"
	"github.com/bbachinco/yeoshin/internal/listing"
	"github.com/bbachinco/yeoshin/pkg/models"
)

type fakeSession struct {
	idx       listing.Index
	searchErr error
	// failAt lists positions whose extraction fails (the item is skipped).
	failAt map[int]bool

	mu        sync.Mutex
	extracted []int
	closed    bool
}

func (s *fakeSession) Search(keyword string, searched func()) (listing.Index, error) {
	if s.searchErr != nil {
		return listing.Index{}, s.searchErr
	}
	if searched != nil {
		searched()
	}
	return s.idx, nil
}

func (s *fakeSession) Extract(pos int) ([]models.OptionRecord, error) {
	s.mu.Lock()
	s.extracted = append(s.extracted, pos)
	s.mu.Unlock()
	if s.failAt[pos] {
		return nil, fmt.Errorf("detail view unreachable for item %d", pos)
	}
	ev := models.EventRecord{Position: pos, Title: models.Set(fmt.Sprintf("event %d", pos))}
	return []models.OptionRecord{
		{Event: ev, Name: models.Set("a"), Price: models.Set("1")},
		{Event: ev, Name: models.Set("b"), Price: models.Set("2")},
	}, nil
}

func (s *fakeSession) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

type openLimiter struct{}

func (openLimiter) Wait(ctx context.Context, urlStr string) error { return ctx.Err() }
func (openLimiter) Allow(urlStr string) bool                      { return true }

func testConfig(workers int) *config.Config {
	return &config.Config{
		BaseURL:      "https://example.test",
		SearchFormat: "https://example.test/search?q=%s",
		MaxItems:     50,
		Workers:      workers,
	}
}

func testCrawler(cfg *config.Config, sess *fakeSession) *Crawler {
	c := New(cfg)
	c.limiter = openLimiter{}
	c.openSession = func(ctx context.Context, creds credentials.Set) (session, error) {
		return sess, nil
	}
	return c
}

func TestRunSequentialCollectsAllItems(t *testing.T) {
	sess := &fakeSession{idx: listing.Index{Count: 4}}
	c := testCrawler(testConfig(1), sess)

	table, err := c.Run(context.Background(), "lifting", credentials.Set{"_kau": "x"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if table.Len() != 8 {
		t.Errorf("got %d rows, want 8 (two per item)", table.Len())
	}
	if len(sess.extracted) != 4 {
		t.Errorf("extracted %v, want all four positions", sess.extracted)
	}
	if !sess.closed {
		t.Error("primary session was not closed")
	}
}

func TestRunSkipsFailedItems(t *testing.T) {
	sess := &fakeSession{
		idx:    listing.Index{Count: 5},
		failAt: map[int]bool{3: true},
	}
	c := testCrawler(testConfig(1), sess)

	table, err := c.Run(context.Background(), "lifting", credentials.Set{"_kau": "x"})
	if err != nil {
		t.Fatalf("a skipped item must not fail the run: %v", err)
	}
	if table.Len() != 8 {
		t.Errorf("got %d rows, want 8 (item 3 skipped)", table.Len())
	}
	for _, r := range table.Rows {
		if r.Event.Position == 3 {
			t.Error("skipped item contributed rows")
		}
	}
}

func TestRunAuthFailureIsFatal(t *testing.T) {
	c := New(testConfig(1))
	c.limiter = openLimiter{}
	c.openSession = func(ctx context.Context, creds credentials.Set) (session, error) {
		return nil, errors.New("login verification failed")
	}

	table, err := c.Run(context.Background(), "lifting", credentials.Set{"_kau": "x"})
	var ce *CrawlError
	if !errors.As(err, &ce) || ce.Stage != StageAuth {
		t.Fatalf("err = %v, want CrawlError in stage %s", err, StageAuth)
	}
	if table == nil {
		t.Error("even a failed run returns a table")
	}
}

func TestRunNoListingIsFatal(t *testing.T) {
	sess := &fakeSession{searchErr: listing.ErrNoListing}
	c := testCrawler(testConfig(1), sess)

	_, err := c.Run(context.Background(), "lifting", credentials.Set{"_kau": "x"})
	var ce *CrawlError
	if !errors.As(err, &ce) || ce.Stage != StageListing {
		t.Fatalf("err = %v, want CrawlError in stage %s", err, StageListing)
	}
}

func TestRunZeroItemsIsNotAnError(t *testing.T) {
	sess := &fakeSession{idx: listing.Index{Count: 0}}
	c := testCrawler(testConfig(1), sess)

	table, err := c.Run(context.Background(), "nothing", credentials.Set{"_kau": "x"})
	if err != nil {
		t.Fatalf("empty listing must not be an error: %v", err)
	}
	if !table.Empty() {
		t.Errorf("got %d rows, want none", table.Len())
	}
}

func TestRunMarksTruncation(t *testing.T) {
	sess := &fakeSession{idx: listing.Index{Count: 50, Capped: true}}
	c := testCrawler(testConfig(1), sess)

	table, err := c.Run(context.Background(), "lifting", credentials.Set{"_kau": "x"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !table.Truncated {
		t.Error("capped enumeration must mark the table truncated")
	}
}

func TestRunPooledProcessesEveryPosition(t *testing.T) {
	sess := &fakeSession{idx: listing.Index{Count: 9}}
	c := testCrawler(testConfig(3), sess)

	table, err := c.Run(context.Background(), "lifting", credentials.Set{"_kau": "x"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if table.Len() != 18 {
		t.Errorf("got %d rows, want 18", table.Len())
	}

	seen := map[int]bool{}
	for _, pos := range sess.extracted {
		if seen[pos] {
			t.Errorf("position %d extracted twice", pos)
		}
		seen[pos] = true
	}
	for pos := 1; pos <= 9; pos++ {
		if !seen[pos] {
			t.Errorf("position %d never extracted", pos)
		}
	}
}

func TestProgressIsMonotone(t *testing.T) {
	sess := &fakeSession{idx: listing.Index{Count: 6}, failAt: map[int]bool{2: true}}
	c := testCrawler(testConfig(1), sess)

	var reported []float64
	c.OnProgress(func(fraction float64) {
		reported = append(reported, fraction)
	})

	if _, err := c.Run(context.Background(), "lifting", credentials.Set{"_kau": "x"}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(reported) == 0 {
		t.Fatal("no progress reported")
	}
	prev := 0.0
	for i, f := range reported {
		if f < prev {
			t.Fatalf("progress went backwards at %d: %v", i, reported)
		}
		prev = f
	}
	if reported[len(reported)-1] != 1.0 {
		t.Errorf("final progress = %v, want 1.0", reported[len(reported)-1])
	}
	// The search checkpoint fires from inside the search call, the
	// enumeration checkpoint after it returns, both before any item.
	if reported[0] != 0.2 || reported[1] != 0.3 {
		t.Errorf("checkpoints = %v, %v, want 0.2 then 0.3", reported[0], reported[1])
	}
	if reported[2] <= 0.3 {
		t.Errorf("first item completion reported %v, want above 0.3", reported[2])
	}
}

func TestAggregatorSnapshotIsACopy(t *testing.T) {
	agg := &aggregator{}
	agg.Append([]models.OptionRecord{models.Placeholder(models.EventRecord{Position: 1})})

	snap := agg.Snapshot()
	agg.Append([]models.OptionRecord{models.Placeholder(models.EventRecord{Position: 2})})
	if len(snap) != 1 {
		t.Errorf("snapshot grew after a later append: %d", len(snap))
	}
	if got := agg.Snapshot(); len(got) != 2 {
		t.Errorf("aggregator has %d rows, want 2", len(got))
	}
}
