// Package models defines the records produced by a crawl.
package models

// Placeholder sentinels emitted at the export boundary when a field could
// not be extracted. Internally fields stay optional; consumers of the
// result table must tolerate these strings in any column.
const (
	SentinelProvider = "provider info unavailable"
	SentinelLocation = "location info unavailable"
	SentinelTitle    = "event info unavailable"
	SentinelOption   = "option info unavailable"
	SentinelPrice    = "price info unavailable"
	SentinelNA       = "N/A"
)

// Field is an optional string. The zero value is "not extracted".
// Sentinel substitution happens only when a record is rendered to a row,
// so callers can still distinguish a missing value from a literal string.
type Field struct {
	value string
	set   bool
}

// Set returns a populated Field.
func Set(v string) Field {
	return Field{value: v, set: true}
}

// OK reports whether the field was extracted.
func (f Field) OK() bool { return f.set }

// Value returns the extracted value and whether it was set.
func (f Field) Value() (string, bool) { return f.value, f.set }

// Or returns the extracted value, or the given sentinel when unset.
func (f Field) Or(sentinel string) string {
	if f.set {
		return f.value
	}
	return sentinel
}

// EventRecord is one promotional listing entry. Position is the 1-based
// listing position the record was extracted from; it is a navigation key,
// not a stable identifier.
type EventRecord struct {
	Position     int
	Provider     Field
	Location     Field
	Title        Field
	Rating       Field
	ReviewCount  Field
	ScrapCount   Field
	InquiryCount Field
	DetailURL    Field
	// Description is the detail page body converted to markdown,
	// carried for reporting only and never part of the tabular columns.
	Description Field
}

// OptionRecord is one purchasable variant of an event. Every option row
// carries a full copy of its parent event's fields (one row per option).
type OptionRecord struct {
	Event EventRecord
	Name  Field
	Price Field
}

// Placeholder returns the single row emitted for an event whose options
// could not be discovered. Name and Price stay unset so the option and
// price sentinels appear at the boundary.
func Placeholder(ev EventRecord) OptionRecord {
	return OptionRecord{Event: ev}
}

// Columns is the fixed column set of the result table.
func Columns() []string {
	return []string{
		"provider", "location", "event", "option", "price",
		"rating", "reviews", "scraps", "inquiries",
	}
}

// Row renders the record to the fixed column set, substituting sentinels
// for missing fields. All values are strings; numeric coercion is the
// consumer's responsibility.
func (r OptionRecord) Row() []string {
	return []string{
		r.Event.Provider.Or(SentinelProvider),
		r.Event.Location.Or(SentinelLocation),
		r.Event.Title.Or(SentinelTitle),
		r.Name.Or(SentinelOption),
		r.Price.Or(SentinelPrice),
		r.Event.Rating.Or(SentinelNA),
		r.Event.ReviewCount.Or(SentinelNA),
		r.Event.ScrapCount.Or(SentinelNA),
		r.Event.InquiryCount.Or(SentinelNA),
	}
}

// ResultTable is the ordered sequence of all option rows across processed
// items. Insertion order follows listing order in sequential mode and
// completion order in pooled mode.
type ResultTable struct {
	Keyword string
	Rows    []OptionRecord
	// Truncated reports that listing enumeration stopped at the item cap,
	// so more results may exist than the table covers.
	Truncated bool
}

// Empty reports whether the crawl produced no usable rows.
func (t *ResultTable) Empty() bool { return len(t.Rows) == 0 }

// Len returns the number of option rows.
func (t *ResultTable) Len() int { return len(t.Rows) }
