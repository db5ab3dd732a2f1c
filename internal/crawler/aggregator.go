package crawler

import (
	"sync"

	"github.com/bbachinco/yeoshin/pkg/models"
)

// aggregator collects option rows from concurrently processed items.
// Rows arrive in completion order; per-item row groups stay contiguous
// because each Append call covers one whole item.
type aggregator struct {
	mu   sync.Mutex
	rows []models.OptionRecord
}

func (a *aggregator) Append(rows []models.OptionRecord) {
	if len(rows) == 0 {
		return
	}
	a.mu.Lock()
	a.rows = append(a.rows, rows...)
	a.mu.Unlock()
}

func (a *aggregator) Snapshot() []models.OptionRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.OptionRecord, len(a.rows))
	copy(out, a.rows)
	return out
}
