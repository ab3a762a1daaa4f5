package service

import "sync"

// historyRingSize bounds the façade's in-memory decision history: the last
// N individual Results, kept for the CLI/metrics layer to inspect, never
// consulted by evaluation itself (spec §5: no cross-request evaluation
// state).
const historyRingSize = 256

// decisionHistory is a bounded FIFO of the most recent individual Results,
// generalized from the teacher's PolicyEvaluationService evaluations map
// (there keyed by request id, unbounded) to a fixed-size ring so memory use
// never grows with traffic.
type decisionHistory struct {
	mu      sync.Mutex
	entries []Result
	next    int
	full    bool
}

func newDecisionHistory() *decisionHistory {
	return &decisionHistory{entries: make([]Result, historyRingSize)}
}

func (h *decisionHistory) record(r Result) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[h.next] = r
	h.next = (h.next + 1) % len(h.entries)
	if h.next == 0 {
		h.full = true
	}
}

// Recent returns up to the last n Results, most recent first.
func (h *decisionHistory) Recent(n int) []Result {
	h.mu.Lock()
	defer h.mu.Unlock()

	size := h.next
	if h.full {
		size = len(h.entries)
	}
	if n > size {
		n = size
	}
	out := make([]Result, 0, n)
	for i := 0; i < n; i++ {
		idx := (h.next - 1 - i + len(h.entries)) % len(h.entries)
		out = append(out, h.entries[idx])
	}
	return out
}

// History returns the façade's last-N-decisions ring buffer for the
// CLI/metrics layer. Never read by Evaluate itself.
func (s *Service) History(n int) []Result {
	return s.history.Recent(n)
}
