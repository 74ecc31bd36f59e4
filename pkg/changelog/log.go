// Package changelog records voxel edits of a system matrix and persists
// them next to the data.
//
// Two sidecar files are kept in the processed-data directory: a binary
// table that can be read back (modificationTable.bin) and a text rendering
// of the same entries for humans (modificationTable.txt). Both are
// rewritten completely after every change and removed once the log is
// empty.
package changelog

import "sfview/internal/models"

// Log is the ordered list of change entries, oldest first.
type Log struct {
	entries []models.ChangeEntry
}

// NewLog returns a log holding entries.
func NewLog(entries []models.ChangeEntry) *Log {
	return &Log{entries: entries}
}

// Append adds an entry at the end.
func (l *Log) Append(e models.ChangeEntry) {
	l.entries = append(l.entries, e)
}

// Last returns the newest entry.
func (l *Log) Last() (models.ChangeEntry, bool) {
	if len(l.entries) == 0 {
		return models.ChangeEntry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// PopLast removes and returns the newest entry.
func (l *Log) PopLast() (models.ChangeEntry, bool) {
	e, ok := l.Last()
	if ok {
		l.entries = l.entries[:len(l.entries)-1]
	}
	return e, ok
}

// Entries returns the entries, oldest first. The slice must not be modified.
func (l *Log) Entries() []models.ChangeEntry {
	return l.entries
}

// Len returns the number of entries.
func (l *Log) Len() int {
	return len(l.entries)
}

// Empty reports whether the log has no entries.
func (l *Log) Empty() bool {
	return len(l.entries) == 0
}

// Clear removes all entries.
func (l *Log) Clear() {
	l.entries = nil
}
