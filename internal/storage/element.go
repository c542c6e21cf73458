package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"pagebuilder/internal/domain"
)

// ElementStore implements domain.ElementStore using SQLite. Each page's
// element list is stored as rows ordered by position.
type ElementStore struct {
	db *DB
}

func NewElementStore(db *DB) *ElementStore {
	return &ElementStore{db: db}
}

const elementColumns = `id, type, x, y, width, height, rotation, z_index, visible, locked, props_json, styles_json, parent_id, children_json, animation_json`

// ListElements returns the page's elements in list order.
func (s *ElementStore) ListElements(pageID string) ([]domain.CanvasElement, error) {
	rows, err := s.db.conn.Query(
		`SELECT `+elementColumns+` FROM elements WHERE page_id = ? ORDER BY position ASC`, pageID,
	)
	if err != nil {
		return nil, fmt.Errorf("list elements: %w", err)
	}
	defer rows.Close()

	elements := []domain.CanvasElement{}
	for rows.Next() {
		e, err := scanElement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan element: %w", err)
		}
		elements = append(elements, e)
	}
	return elements, rows.Err()
}

// ReplacePageElements atomically replaces the page's element list.
func (s *ElementStore) ReplacePageElements(pageID string, elements []domain.CanvasElement) error {
	tx, err := s.db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM elements WHERE page_id = ?`, pageID); err != nil {
		return fmt.Errorf("delete elements: %w", err)
	}

	for i, e := range elements {
		if err := insertElement(tx, pageID, i, e); err != nil {
			return fmt.Errorf("insert element %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

func (s *ElementStore) DeleteElementsByPage(pageID string) error {
	_, err := s.db.conn.Exec(`DELETE FROM elements WHERE page_id = ?`, pageID)
	return err
}

func insertElement(tx *sql.Tx, pageID string, position int, e domain.CanvasElement) error {
	props, err := encodeJSON(e.Props, "{}")
	if err != nil {
		return err
	}
	styles, err := encodeJSON(e.Styles, "")
	if err != nil {
		return err
	}
	children, err := encodeJSON(e.Children, "")
	if err != nil {
		return err
	}
	animation, err := encodeJSON(e.Animation, "")
	if err != nil {
		return err
	}
	_, err = tx.Exec(
		`INSERT INTO elements (page_id, position, `+elementColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		pageID, position, e.ID, e.Type, e.X, e.Y, e.Width, e.Height, e.Rotation, e.ZIndex,
		boolInt(e.Visible), boolInt(e.Locked), props, styles, e.ParentID, children, animation,
	)
	return err
}

func scanElement(rows *sql.Rows) (domain.CanvasElement, error) {
	var e domain.CanvasElement
	var props, styles, children, animation string
	if err := rows.Scan(&e.ID, &e.Type, &e.X, &e.Y, &e.Width, &e.Height, &e.Rotation, &e.ZIndex,
		&e.Visible, &e.Locked, &props, &styles, &e.ParentID, &children, &animation); err != nil {
		return e, err
	}
	if err := decodeJSON(props, &e.Props); err != nil {
		return e, fmt.Errorf("props: %w", err)
	}
	if err := decodeJSON(styles, &e.Styles); err != nil {
		return e, fmt.Errorf("styles: %w", err)
	}
	if err := decodeJSON(children, &e.Children); err != nil {
		return e, fmt.Errorf("children: %w", err)
	}
	if err := decodeJSON(animation, &e.Animation); err != nil {
		return e, fmt.Errorf("animation: %w", err)
	}
	return e, nil
}

// encodeJSON returns empty for nil values so optional columns stay blank.
func encodeJSON[T any](v T, empty string) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(data) == "null" {
		return empty, nil
	}
	return string(data), nil
}

func decodeJSON(data string, target any) error {
	if data == "" {
		return nil
	}
	return json.Unmarshal([]byte(data), target)
}

var _ domain.ElementStore = (*ElementStore)(nil)
