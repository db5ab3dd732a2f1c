package models

import "testing"

func TestFieldZeroValueIsUnset(t *testing.T) {
	var f Field
	if f.OK() {
		t.Error("zero Field should not be set")
	}
	if got := f.Or("fallback"); got != "fallback" {
		t.Errorf("Or returned %q, want fallback", got)
	}
}

func TestFieldSet(t *testing.T) {
	f := Set("hello")
	if !f.OK() {
		t.Fatal("Set Field should report OK")
	}
	v, ok := f.Value()
	if !ok || v != "hello" {
		t.Errorf("Value returned (%q, %v)", v, ok)
	}
	if got := f.Or("fallback"); got != "hello" {
		t.Errorf("Or returned %q, want hello", got)
	}
}

func TestRowSubstitutesSentinels(t *testing.T) {
	r := Placeholder(EventRecord{Position: 3})
	row := r.Row()

	want := []string{
		SentinelProvider, SentinelLocation, SentinelTitle,
		SentinelOption, SentinelPrice,
		SentinelNA, SentinelNA, SentinelNA, SentinelNA,
	}
	if len(row) != len(Columns()) {
		t.Fatalf("row has %d cells, want %d", len(row), len(Columns()))
	}
	for i, cell := range row {
		if cell != want[i] {
			t.Errorf("column %s = %q, want %q", Columns()[i], cell, want[i])
		}
	}
}

func TestRowKeepsExtractedValues(t *testing.T) {
	ev := EventRecord{
		Position: 1,
		Provider: Set("Some Clinic"),
		Title:    Set("Summer Event"),
		Rating:   Set("4.8"),
	}
	r := OptionRecord{Event: ev, Name: Set("Basic"), Price: Set("99,000원")}
	row := r.Row()

	if row[0] != "Some Clinic" || row[2] != "Summer Event" || row[3] != "Basic" || row[4] != "99,000원" {
		t.Errorf("extracted values lost in row: %v", row)
	}
	if row[1] != SentinelLocation {
		t.Errorf("missing location should be %q, got %q", SentinelLocation, row[1])
	}
	if row[5] != "4.8" {
		t.Errorf("rating = %q, want 4.8", row[5])
	}
}

func TestResultTableEmpty(t *testing.T) {
	tbl := &ResultTable{Keyword: "test"}
	if !tbl.Empty() {
		t.Error("table with no rows should be empty")
	}
	tbl.Rows = append(tbl.Rows, Placeholder(EventRecord{Position: 1}))
	if tbl.Empty() || tbl.Len() != 1 {
		t.Error("table with one row should not be empty")
	}
}
