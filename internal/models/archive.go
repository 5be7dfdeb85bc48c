package models

import "time"

// WorkspaceSnapshot is one frozen past term: the roster plus every
// auxiliary collection as they existed at archive time. Snapshots are
// immutable once written; restore flows only read them.
type WorkspaceSnapshot struct {
	TermID      string                `json:"termId"`
	ArchivedAt  time.Time             `json:"archivedAt"`
	Members     []Member              `json:"members"`
	Collections map[string][]Document `json:"collections"`
}

// CollectionDocs returns the archived documents of one auxiliary
// collection. A missing key is an empty list, never an error.
func (s WorkspaceSnapshot) CollectionDocs(name string) []Document {
	if s.Collections == nil {
		return nil
	}
	return s.Collections[name]
}

// ArchiveSummary is the listing row shown in the archive picker.
type ArchiveSummary struct {
	TermID     string    `json:"termId"`
	ArchivedAt time.Time `json:"archivedAt"`
	Members    int       `json:"members"`
	Notices    int       `json:"notices"`
	Events     int       `json:"events"`
	Tasks      int       `json:"tasks"`
}

// Summary condenses a snapshot into its picker row.
func (s WorkspaceSnapshot) Summary() ArchiveSummary {
	return ArchiveSummary{
		TermID:     s.TermID,
		ArchivedAt: s.ArchivedAt,
		Members:    len(s.Members),
		Notices:    len(s.CollectionDocs(CollectionNotices)),
		Events:     len(s.CollectionDocs(CollectionEvents)),
		Tasks:      len(s.CollectionDocs(CollectionTasks)),
	}
}
