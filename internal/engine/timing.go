package engine

import (
	"math"
	"time"
)

// Tracker records per-question wall-clock windows. Timers are logical
// deltas, not scheduled callbacks, so there is nothing to cancel; closing
// happens implicitly when an answer is recorded.
type Tracker struct {
	entries map[string]*TimingEntry
	now     func() time.Time
}

// NewTracker creates an empty tracker using the given clock (time.Now
// when nil).
func NewTracker(now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{entries: make(map[string]*TimingEntry), now: now}
}

// Start inserts or overwrites the timing entry for a question. Starting
// again on a revisit reopens the window.
func (t *Tracker) Start(id string) {
	t.entries[id] = &TimingEntry{StartTime: t.now()}
}

// Close stamps the end time for a question and returns the elapsed whole
// seconds. A close without a prior start yields 0 rather than an error.
func (t *Tracker) Close(id string) int {
	entry, ok := t.entries[id]
	if !ok {
		return 0
	}
	end := t.now()
	duration := int(math.Round(end.Sub(entry.StartTime).Seconds()))
	if duration < 0 {
		duration = 0
	}
	entry.EndTime = &end
	entry.DurationSeconds = &duration
	return duration
}

// Reset discards all entries.
func (t *Tracker) Reset() {
	t.entries = make(map[string]*TimingEntry)
}

// Entries returns a copy of the timing table for snapshotting.
func (t *Tracker) Entries() map[string]TimingEntry {
	out := make(map[string]TimingEntry, len(t.entries))
	for id, entry := range t.entries {
		out[id] = *entry
	}
	return out
}

// RestoreEntries replaces the timing table from a snapshot.
func (t *Tracker) RestoreEntries(entries map[string]TimingEntry) {
	t.entries = make(map[string]*TimingEntry, len(entries))
	for id, entry := range entries {
		e := entry
		t.entries[id] = &e
	}
}
