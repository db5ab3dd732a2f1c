package detail

import (
	"context"
	"testing"

	"github.com/bbachinco/yeoshin/internal/config"
	"github.com/bbachinco/yeoshin/pkg/models"
)

func testExtractor(maxOptions int, probe func(idx int) (models.Field, models.Field, bool)) *Extractor {
	e := New(&config.Config{MaxOptions: maxOptions})
	e.optionProbe = func(ctx context.Context, idx int) (models.Field, models.Field, bool) {
		return probe(idx)
	}
	return e
}

func TestCollectOptionsStopsAtFirstMissing(t *testing.T) {
	e := testExtractor(40, func(idx int) (models.Field, models.Field, bool) {
		if idx > 3 {
			return models.Field{}, models.Field{}, false
		}
		return models.Set("option"), models.Set("1,000원"), true
	})

	ev := models.EventRecord{Position: 1, Title: models.Set("Event")}
	rows := e.collectOptions(context.Background(), ev)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	for _, r := range rows {
		if !r.Name.OK() || !r.Price.OK() {
			t.Error("resolved options should carry name and price")
		}
		if title, _ := r.Event.Title.Value(); title != "Event" {
			t.Error("every option row must carry its parent event fields")
		}
	}
}

func TestCollectOptionsEmptyYieldsPlaceholder(t *testing.T) {
	e := testExtractor(40, func(idx int) (models.Field, models.Field, bool) {
		return models.Field{}, models.Field{}, false
	})

	ev := models.EventRecord{Position: 2, Title: models.Set("Event")}
	rows := e.collectOptions(context.Background(), ev)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want exactly one placeholder", len(rows))
	}
	row := rows[0].Row()
	if row[3] != models.SentinelOption || row[4] != models.SentinelPrice {
		t.Errorf("placeholder row lacks option sentinels: %v", row)
	}
	if row[2] != "Event" {
		t.Errorf("placeholder row must keep event fields, got %q", row[2])
	}
}

func TestCollectOptionsHonorsCap(t *testing.T) {
	highest := 0
	e := testExtractor(40, func(idx int) (models.Field, models.Field, bool) {
		if idx > highest {
			highest = idx
		}
		return models.Set("option"), models.Set("1,000원"), true
	})

	rows := e.collectOptions(context.Background(), models.EventRecord{Position: 1})
	if len(rows) != 40 {
		t.Errorf("got %d rows, want cap of 40", len(rows))
	}
	if highest > 40 {
		t.Errorf("probed option %d beyond the cap", highest)
	}
}

func TestCollectOptionsKeepsPartialRows(t *testing.T) {
	// An option whose price element is missing still produces a row; the
	// price sentinel appears at the export boundary.
	e := testExtractor(40, func(idx int) (models.Field, models.Field, bool) {
		if idx > 1 {
			return models.Field{}, models.Field{}, false
		}
		return models.Set("only name"), models.Field{}, true
	})

	rows := e.collectOptions(context.Background(), models.EventRecord{Position: 1})
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	row := rows[0].Row()
	if row[3] != "only name" {
		t.Errorf("name = %q", row[3])
	}
	if row[4] != models.SentinelPrice {
		t.Errorf("missing price should render as sentinel, got %q", row[4])
	}
}
