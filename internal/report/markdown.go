package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"

	"github.com/bbachinco/yeoshin/pkg/models"
)

// MarkdownWriter renders the table as a shareable Markdown report: a
// summary header, the full option table, and per-event descriptions for
// events that had one.
type MarkdownWriter struct {
	// Now is overridable so report output is stable in tests.
	Now func() time.Time
}

// Write renders the full Markdown report.
func (mw *MarkdownWriter) Write(w io.Writer, table *models.ResultTable) error {
	now := time.Now
	if mw.Now != nil {
		now = mw.Now
	}

	md := markdown.NewMarkdown(w)
	md.H1("Event Crawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Keyword", "`" + table.Keyword + "`"},
			{"Generated", now().Format("2006-01-02 15:04:05 MST")},
			{"Option rows", strconv.Itoa(table.Len())},
			{"Truncated", strconv.FormatBool(table.Truncated)},
		},
	})
	md.PlainText("")

	if table.Empty() {
		md.PlainText("No usable results were found for this keyword.")
		return md.Build()
	}

	md.H2("Options")
	md.PlainText("")
	rows := make([][]string, 0, len(table.Rows))
	for _, r := range table.Rows {
		rows = append(rows, r.Row())
	}
	md.Table(markdown.TableSet{Header: models.Columns(), Rows: rows})
	md.PlainText("")

	mw.writeDescriptions(md, table)
	return md.Build()
}

// writeDescriptions emits one section per distinct event that carried a
// description. Rows share their parent event, so positions are
// deduplicated in listing order of appearance.
func (mw *MarkdownWriter) writeDescriptions(md *markdown.Markdown, table *models.ResultTable) {
	seen := map[int]bool{}
	wrote := false
	for _, r := range table.Rows {
		desc, ok := r.Event.Description.Value()
		if !ok || seen[r.Event.Position] {
			continue
		}
		seen[r.Event.Position] = true
		if !wrote {
			md.H2("Event Details")
			md.PlainText("")
			wrote = true
		}
		md.H3(r.Event.Title.Or(models.SentinelTitle))
		if url, ok := r.Event.DetailURL.Value(); ok {
			md.PlainText(markdown.Link("Event page", url))
		}
		md.PlainText("")
		md.PlainText(desc)
		md.PlainText("")
	}
}
