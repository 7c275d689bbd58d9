package game

import (
	"sync"

	"github.com/ultma/ultma-server-go/internal/game/rules"
)

// DefaultJournalSize is used when Options.JournalSize is not positive.
const DefaultJournalSize = 256

// JournalEntry is a committed event tagged with its position in the stream.
type JournalEntry struct {
	Seq   int64       `json:"seq"`
	Event rules.Event `json:"event"`
}

// Journal records committed events in order so late clients can catch up.
// Only the most recent entries are kept; sequence numbers keep growing across
// evictions and resets.
type Journal struct {
	mu      sync.RWMutex
	entries []JournalEntry
	limit   int
	nextSeq int64
}

// NewJournal creates a journal holding at most limit entries.
func NewJournal(limit int) *Journal {
	if limit <= 0 {
		limit = DefaultJournalSize
	}
	return &Journal{
		entries: make([]JournalEntry, 0, limit),
		limit:   limit,
		nextSeq: 1,
	}
}

// Record appends an event. It has the rules.Listener signature so it can be
// subscribed to an EventBus directly.
func (j *Journal) Record(e rules.Event) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if len(j.entries) == j.limit {
		copy(j.entries, j.entries[1:])
		j.entries = j.entries[:len(j.entries)-1]
	}
	j.entries = append(j.entries, JournalEntry{Seq: j.nextSeq, Event: e})
	j.nextSeq++
}

// Since returns the retained entries with a sequence greater than after, and
// the sequence to pass on the next call.
func (j *Journal) Since(after int64) ([]JournalEntry, int64) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	cursor := j.nextSeq - 1
	out := make([]JournalEntry, 0)
	for _, entry := range j.entries {
		if entry.Seq > after {
			out = append(out, entry)
		}
	}
	return out, cursor
}

// Size returns the number of retained entries.
func (j *Journal) Size() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.entries)
}

// Clear drops every retained entry. Sequence numbers are not reused.
func (j *Journal) Clear() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = j.entries[:0]
}
