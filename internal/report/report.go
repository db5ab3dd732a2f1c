// Package report renders a crawl result table to CSV, JSON, or Markdown.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bbachinco/yeoshin/pkg/models"
)

// Format identifies an output rendering.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Writer renders one result table to an output stream.
type Writer interface {
	Write(w io.Writer, table *models.ResultTable) error
}

// ForFormat returns the writer for a format name.
func ForFormat(f Format) (Writer, error) {
	switch f {
	case FormatCSV:
		return &CSVWriter{}, nil
	case FormatJSON:
		return &JSONWriter{}, nil
	case FormatMarkdown:
		return &MarkdownWriter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", f)
	}
}

// FormatForPath picks the format from a file extension. Unknown
// extensions fall back to CSV, the default tabular export.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".md", ".markdown":
		return FormatMarkdown
	default:
		return FormatCSV
	}
}

// WriteFile renders the table to a file, choosing the format from the
// file extension.
func WriteFile(path string, table *models.ResultTable) error {
	wr, err := ForFormat(FormatForPath(path))
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := wr.Write(f, table); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
