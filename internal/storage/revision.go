package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pagebuilder/internal/domain"
)

// RevisionStore keeps named snapshots of page element lists.
type RevisionStore struct {
	db *DB
}

func NewRevisionStore(db *DB) *RevisionStore {
	return &RevisionStore{db: db}
}

// Save stores a snapshot of elements for pageID and prunes the page down to
// maxPerPage revisions. maxPerPage <= 0 disables pruning.
func (s *RevisionStore) Save(rev *domain.Revision, maxPerPage int) error {
	if rev.CreatedAt.IsZero() {
		rev.CreatedAt = time.Now()
	}
	snapshot, err := encodeJSON(rev.Elements, "[]")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	_, err = s.db.conn.Exec(
		`INSERT INTO revisions (id, page_id, label, snapshot_json, created_at) VALUES (?, ?, ?, ?, ?)`,
		rev.ID, rev.PageID, rev.Label, snapshot, rev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert revision: %w", err)
	}

	if maxPerPage > 0 {
		if _, err := s.Prune(rev.PageID, maxPerPage); err != nil {
			return fmt.Errorf("prune revisions: %w", err)
		}
	}
	return nil
}

// List returns the page's revisions newest first, without their snapshots.
func (s *RevisionStore) List(pageID string) ([]domain.RevisionSummary, error) {
	rows, err := s.db.conn.Query(
		`SELECT id, page_id, label, COALESCE(json_array_length(snapshot_json), 0), created_at
		FROM revisions WHERE page_id = ? ORDER BY created_at DESC, rowid DESC`, pageID,
	)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	defer rows.Close()

	revs := []domain.RevisionSummary{}
	for rows.Next() {
		var r domain.RevisionSummary
		if err := rows.Scan(&r.ID, &r.PageID, &r.Label, &r.Elements, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		revs = append(revs, r)
	}
	return revs, rows.Err()
}

// Get returns one revision including its snapshot.
func (s *RevisionStore) Get(id string) (*domain.Revision, error) {
	var r domain.Revision
	var snapshot string
	err := s.db.conn.QueryRow(
		`SELECT id, page_id, label, snapshot_json, created_at FROM revisions WHERE id = ?`, id,
	).Scan(&r.ID, &r.PageID, &r.Label, &snapshot, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get revision %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get revision: %w", err)
	}
	if err := json.Unmarshal([]byte(snapshot), &r.Elements); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &r, nil
}

// Prune deletes the oldest revisions of a page beyond maxPerPage and
// returns how many were removed.
func (s *RevisionStore) Prune(pageID string, maxPerPage int) (int, error) {
	var count int
	if err := s.db.conn.QueryRow(`SELECT COUNT(*) FROM revisions WHERE page_id = ?`, pageID).Scan(&count); err != nil {
		return 0, err
	}
	if count <= maxPerPage {
		return 0, nil
	}

	res, err := s.db.conn.Exec(
		`DELETE FROM revisions WHERE id IN (
			SELECT id FROM revisions WHERE page_id = ? ORDER BY created_at ASC, rowid ASC LIMIT ?
		)`, pageID, count-maxPerPage,
	)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// ClearPage removes all revisions for a page.
func (s *RevisionStore) ClearPage(pageID string) error {
	_, err := s.db.conn.Exec(`DELETE FROM revisions WHERE page_id = ?`, pageID)
	return err
}

var _ domain.RevisionStore = (*RevisionStore)(nil)
