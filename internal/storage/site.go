package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pagebuilder/internal/domain"
)

// SiteStore implements domain.SiteStore using SQLite.
type SiteStore struct {
	db *DB
}

func NewSiteStore(db *DB) *SiteStore {
	return &SiteStore{db: db}
}

func (s *SiteStore) CreateSite(site *domain.Site) error {
	now := time.Now()
	site.CreatedAt = now
	site.UpdatedAt = now
	_, err := s.db.conn.Exec(
		`INSERT INTO sites (id, name, domain, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		site.ID, site.Name, site.Domain, site.CreatedAt, site.UpdatedAt,
	)
	return err
}

func (s *SiteStore) GetSite(id string) (*domain.Site, error) {
	site := &domain.Site{}
	err := s.db.conn.QueryRow(
		`SELECT id, name, domain, created_at, updated_at FROM sites WHERE id = ?`, id,
	).Scan(&site.ID, &site.Name, &site.Domain, &site.CreatedAt, &site.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get site %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get site: %w", err)
	}
	return site, nil
}

func (s *SiteStore) ListSites() ([]domain.Site, error) {
	rows, err := s.db.conn.Query(`SELECT id, name, domain, created_at, updated_at FROM sites ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sites []domain.Site
	for rows.Next() {
		var site domain.Site
		if err := rows.Scan(&site.ID, &site.Name, &site.Domain, &site.CreatedAt, &site.UpdatedAt); err != nil {
			return nil, err
		}
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

func (s *SiteStore) UpdateSite(site *domain.Site) error {
	site.UpdatedAt = time.Now()
	_, err := s.db.conn.Exec(
		`UPDATE sites SET name = ?, domain = ?, updated_at = ? WHERE id = ?`,
		site.Name, site.Domain, site.UpdatedAt, site.ID,
	)
	return err
}

func (s *SiteStore) DeleteSite(id string) error {
	_, err := s.db.conn.Exec(`DELETE FROM sites WHERE id = ?`, id)
	return err
}

func (s *SiteStore) CreatePage(p *domain.Page) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	_, err := s.db.conn.Exec(
		`INSERT INTO pages (id, site_id, title, slug, sort_order, published, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.SiteID, p.Title, p.Slug, p.Order, boolInt(p.Published), p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (s *SiteStore) GetPage(id string) (*domain.Page, error) {
	p := &domain.Page{}
	err := s.db.conn.QueryRow(
		`SELECT id, site_id, title, slug, sort_order, published, created_at, updated_at FROM pages WHERE id = ?`, id,
	).Scan(&p.ID, &p.SiteID, &p.Title, &p.Slug, &p.Order, &p.Published, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get page %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get page: %w", err)
	}
	return p, nil
}

func (s *SiteStore) ListPages(siteID string) ([]domain.Page, error) {
	rows, err := s.db.conn.Query(
		`SELECT id, site_id, title, slug, sort_order, published, created_at, updated_at FROM pages WHERE site_id = ? ORDER BY sort_order ASC, created_at ASC`,
		siteID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []domain.Page
	for rows.Next() {
		var p domain.Page
		if err := rows.Scan(&p.ID, &p.SiteID, &p.Title, &p.Slug, &p.Order, &p.Published, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

func (s *SiteStore) UpdatePage(p *domain.Page) error {
	p.UpdatedAt = time.Now()
	_, err := s.db.conn.Exec(
		`UPDATE pages SET title = ?, slug = ?, sort_order = ?, published = ?, updated_at = ? WHERE id = ?`,
		p.Title, p.Slug, p.Order, boolInt(p.Published), p.UpdatedAt, p.ID,
	)
	return err
}

func (s *SiteStore) DeletePage(id string) error {
	_, err := s.db.conn.Exec(`DELETE FROM pages WHERE id = ?`, id)
	return err
}

func (s *SiteStore) DeletePagesBySite(siteID string) error {
	_, err := s.db.conn.Exec(`DELETE FROM pages WHERE site_id = ?`, siteID)
	return err
}

// TouchPage bumps a page's updated_at.
func (s *SiteStore) TouchPage(id string) error {
	_, err := s.db.conn.Exec(`UPDATE pages SET updated_at = ? WHERE id = ?`, time.Now(), id)
	return err
}

var _ domain.SiteStore = (*SiteStore)(nil)
