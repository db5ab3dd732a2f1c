package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/bbachinco/yeoshin/pkg/models"
)

// CSVWriter renders the fixed column table. Missing fields appear as
// their placeholder sentinels, so every row has the full column set.
type CSVWriter struct{}

// Write renders the table as CSV with a header row.
func (CSVWriter) Write(w io.Writer, table *models.ResultTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(models.Columns()); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range table.Rows {
		if err := cw.Write(row.Row()); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
