package models

import "time"

// Entry is a note or task owned by a user. Entries form a forest through
// ParentEntryID; children are discovered by querying rows whose parent
// reference equals the entry id, never by walking an in-memory graph.
type Entry struct {
	ID            int64
	Title         string
	Description   string
	Priority      EntryPriority
	Type          EntryType
	DueDate       *time.Time
	Completed     *time.Time
	OwnerID       int64
	ProjectID     *int64
	ParentEntryID *int64
	CreatedOn     time.Time
	LastUpdated   *time.Time

	// ChildEntries is filled by the service layer from rows whose
	// parent_entry_id equals ID. Repositories leave it nil.
	ChildEntries []*Entry
}

// IsCompleted reports whether the entry is in the Completed state.
func (e *Entry) IsCompleted() bool {
	return e.Completed != nil
}
