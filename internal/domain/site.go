package domain

import "time"

// Site is a tenant: a website with its own set of pages.
type Site struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Domain    string    `json:"domain"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Page struct {
	ID        string    `json:"id"`
	SiteID    string    `json:"siteId"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Order     int       `json:"order"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type SiteStore interface {
	CreateSite(s *Site) error
	GetSite(id string) (*Site, error)
	ListSites() ([]Site, error)
	UpdateSite(s *Site) error
	DeleteSite(id string) error

	CreatePage(p *Page) error
	GetPage(id string) (*Page, error)
	ListPages(siteID string) ([]Page, error)
	UpdatePage(p *Page) error
	DeletePage(id string) error
	DeletePagesBySite(siteID string) error
}
