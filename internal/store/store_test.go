package store

import (
	"context"
	"testing"

	"github.com/bbachinco/yeoshin/pkg/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSaveAndListRuns(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	ev := models.EventRecord{Position: 1, Title: models.Set("Event"), Provider: models.Set("Clinic")}
	table := &models.ResultTable{
		Keyword:   "lifting",
		Truncated: true,
		Rows: []models.OptionRecord{
			{Event: ev, Name: models.Set("Basic"), Price: models.Set("99,000원")},
			models.Placeholder(models.EventRecord{Position: 2}),
		},
	}

	id, err := st.SaveRun(ctx, table)
	if err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	if id == 0 {
		t.Error("run ID should be assigned")
	}

	runs, err := st.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	r := runs[0]
	if r.Keyword != "lifting" || r.RowCount != 2 || !r.Truncated {
		t.Errorf("run = %+v", r)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	for _, kw := range []string{"first", "second", "third"} {
		if _, err := st.SaveRun(ctx, &models.ResultTable{Keyword: kw}); err != nil {
			t.Fatalf("SaveRun(%s) failed: %v", kw, err)
		}
	}

	runs, err := st.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want limit of 2", len(runs))
	}
	if runs[0].Keyword != "third" {
		t.Errorf("newest run first, got %q", runs[0].Keyword)
	}
}

func TestSaveRunEmptyTable(t *testing.T) {
	st := openTestStore(t)

	id, err := st.SaveRun(context.Background(), &models.ResultTable{Keyword: "nothing"})
	if err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	if id == 0 {
		t.Error("empty runs are still recorded")
	}
}
