package report

import (
	"encoding/json"
	"io"

	"github.com/bbachinco/yeoshin/pkg/models"
)

// JSONWriter renders the table as a single JSON document. Unlike the
// tabular formats it carries the detail URL and description alongside the
// fixed columns.
type JSONWriter struct{}

type jsonRow struct {
	Position    int    `json:"position"`
	Provider    string `json:"provider"`
	Location    string `json:"location"`
	Event       string `json:"event"`
	Option      string `json:"option"`
	Price       string `json:"price"`
	Rating      string `json:"rating"`
	Reviews     string `json:"reviews"`
	Scraps      string `json:"scraps"`
	Inquiries   string `json:"inquiries"`
	DetailURL   string `json:"detail_url,omitempty"`
	Description string `json:"description,omitempty"`
}

type jsonDoc struct {
	Keyword   string    `json:"keyword"`
	Truncated bool      `json:"truncated"`
	Rows      []jsonRow `json:"rows"`
}

// Write renders the table as indented JSON.
func (JSONWriter) Write(w io.Writer, table *models.ResultTable) error {
	doc := jsonDoc{
		Keyword:   table.Keyword,
		Truncated: table.Truncated,
		Rows:      make([]jsonRow, 0, len(table.Rows)),
	}
	for _, r := range table.Rows {
		cols := r.Row()
		detailURL, _ := r.Event.DetailURL.Value()
		description, _ := r.Event.Description.Value()
		doc.Rows = append(doc.Rows, jsonRow{
			Position:    r.Event.Position,
			Provider:    cols[0],
			Location:    cols[1],
			Event:       cols[2],
			Option:      cols[3],
			Price:       cols[4],
			Rating:      cols[5],
			Reviews:     cols[6],
			Scraps:      cols[7],
			Inquiries:   cols[8],
			DetailURL:   detailURL,
			Description: description,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(doc)
}
