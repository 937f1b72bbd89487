// Package history holds the session-scoped, append-only record of
// normalized scans. It is the single source of truth for every derived
// dashboard view; corrections are new scans, never edits.
package history

import (
	"sync"

	"github.com/phishscope/phishscope/pkg/scan"
)

// History is an insertion-ordered scan collection. Repeated scans of the
// same target create new entries; nothing is deduplicated. Readers always
// get snapshot copies, so an aggregation running during an append never
// observes a half-updated sequence.
type History struct {
	mu    sync.Mutex
	scans []scan.Scan
}

func New() *History {
	return &History{}
}

// Append records one scan. Entries are immutable once appended.
func (h *History) Append(s scan.Scan) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.scans = append(h.scans, s)
}

// AppendAll records a sequence of scans in the given order.
func (h *History) AppendAll(scans []scan.Scan) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.scans = append(h.scans, scans...)
}

// All returns a snapshot of every scan in arrival order.
func (h *History) All() []scan.Scan {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]scan.Scan, len(h.scans))
	copy(out, h.scans)
	return out
}

// Recent returns up to n scans, newest first.
func (h *History) Recent(n int) []scan.Scan {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n > len(h.scans) {
		n = len(h.scans)
	}
	out := make([]scan.Scan, 0, n)
	for i := len(h.scans) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, h.scans[i])
	}
	return out
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.scans)
}

// Clear empties the cache. Invoked when the session ends.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.scans = nil
}
