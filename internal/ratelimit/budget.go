package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// RunBudget caps how many pipeline runs one requester may start per window.
// Each run fans out into several paid agent calls, so the cap is on runs.
type RunBudget struct {
	mu      sync.Mutex
	windows map[string]*window

	maxRuns    int
	windowSize time.Duration
	now        func() time.Time
}

type window struct {
	count int
	end   time.Time
}

// NewRunBudget creates a budget of maxRuns per requester within windowSize.
// A non-positive maxRuns disables the budget.
func NewRunBudget(maxRuns int, windowSize time.Duration) *RunBudget {
	return &RunBudget{
		windows:    make(map[string]*window),
		maxRuns:    maxRuns,
		windowSize: windowSize,
		now:        time.Now,
	}
}

// Allow records a run for the requester, or returns an error if the
// requester's window is already full.
func (b *RunBudget) Allow(requester string) error {
	if b == nil || b.maxRuns <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	w, ok := b.windows[requester]
	if !ok || now.After(w.end) {
		b.windows[requester] = &window{count: 1, end: now.Add(b.windowSize)}
		return nil
	}
	if w.count >= b.maxRuns {
		return fmt.Errorf("run budget exceeded: requester %s (%d/%d in window, resets in %s)",
			requester, w.count, b.maxRuns, w.end.Sub(now).Round(time.Second))
	}
	w.count++
	return nil
}

// Remaining reports how many runs the requester may still start in the current window.
func (b *RunBudget) Remaining(requester string) int {
	if b == nil || b.maxRuns <= 0 {
		return -1
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	w, ok := b.windows[requester]
	if !ok || b.now().After(w.end) {
		return b.maxRuns
	}
	return b.maxRuns - w.count
}
