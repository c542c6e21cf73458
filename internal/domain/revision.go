package domain

import "time"

// Revision is a saved snapshot of a page's element list.
type Revision struct {
	ID        string          `json:"id"`
	PageID    string          `json:"pageId"`
	Label     string          `json:"label"`
	Elements  []CanvasElement `json:"elements,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// RevisionSummary is a revision without its snapshot.
type RevisionSummary struct {
	ID        string    `json:"id"`
	PageID    string    `json:"pageId"`
	Label     string    `json:"label"`
	Elements  int       `json:"elements"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r Revision) Summary() RevisionSummary {
	return RevisionSummary{
		ID:        r.ID,
		PageID:    r.PageID,
		Label:     r.Label,
		Elements:  len(r.Elements),
		CreatedAt: r.CreatedAt,
	}
}

// RevisionStore persists page snapshots.
type RevisionStore interface {
	Save(rev *Revision, maxPerPage int) error
	List(pageID string) ([]RevisionSummary, error)
	Get(id string) (*Revision, error)
	ClearPage(pageID string) error
}
