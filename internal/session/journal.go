package session

import (
	"slices"
	"time"

	"github.com/rocketscienceinc/chainreaction/internal/entity"
)

// Journal - the user-facing session log. Newest entry first.
type Journal struct {
	entries []entity.LogEntry
	seq     int
}

func (that *Journal) Append(at time.Time, message string) entity.LogEntry {
	that.seq++

	entry := entity.LogEntry{Seq: that.seq, At: at, Message: message}
	that.entries = slices.Insert(that.entries, 0, entry)

	return entry
}

func (that *Journal) Entries() []entity.LogEntry {
	return slices.Clone(that.entries)
}

func (that *Journal) Len() int {
	return len(that.entries)
}
