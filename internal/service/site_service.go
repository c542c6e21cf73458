package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Site Service: business logic for sites and pages
// ─────────────────────────────────────────────────────────────

// SiteService manages sites and their pages. Deleting a page also removes
// its canvas, its revisions and any open editing session.
type SiteService struct {
	store     *storage.SiteStore
	elements  *storage.ElementStore
	revisions *storage.RevisionStore
	editor    *EditorService
	emitter   EventEmitter
	log       *zap.Logger
}

// NewSiteService creates a SiteService.
func NewSiteService(
	store *storage.SiteStore,
	elements *storage.ElementStore,
	revisions *storage.RevisionStore,
	editor *EditorService,
	emitter EventEmitter,
	log *zap.Logger,
) *SiteService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SiteService{
		store:     store,
		elements:  elements,
		revisions: revisions,
		editor:    editor,
		emitter:   emitter,
		log:       log,
	}
}

// ── Sites ──────────────────────────────────────────────────

func (s *SiteService) ListSites() ([]domain.Site, error) {
	return s.store.ListSites()
}

func (s *SiteService) GetSite(id string) (*domain.Site, error) {
	return s.store.GetSite(id)
}

func (s *SiteService) CreateSite(name, siteDomain string) (*domain.Site, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("create site: name is required")
	}
	site := &domain.Site{
		ID:     uuid.New().String(),
		Name:   name,
		Domain: strings.ToLower(strings.TrimSpace(siteDomain)),
	}
	if err := s.store.CreateSite(site); err != nil {
		return nil, fmt.Errorf("create site: %w", err)
	}
	s.log.Info("site created", zap.String("siteId", site.ID), zap.String("name", site.Name))
	return site, nil
}

func (s *SiteService) RenameSite(id, name string) error {
	site, err := s.store.GetSite(id)
	if err != nil {
		return err
	}
	site.Name = name
	return s.store.UpdateSite(site)
}

// DeleteSite removes a site with all of its pages.
func (s *SiteService) DeleteSite(ctx context.Context, id string) error {
	pages, err := s.store.ListPages(id)
	if err != nil {
		return fmt.Errorf("delete site: %w", err)
	}
	for _, p := range pages {
		if err := s.purgePage(p.ID); err != nil {
			return fmt.Errorf("delete site: %w", err)
		}
	}
	if err := s.store.DeletePagesBySite(id); err != nil {
		return fmt.Errorf("delete site pages: %w", err)
	}
	if err := s.store.DeleteSite(id); err != nil {
		return fmt.Errorf("delete site: %w", err)
	}
	s.emitter.Emit(ctx, EventPagesChanged, map[string]any{"siteId": id})
	return nil
}

// ── Pages ──────────────────────────────────────────────────

func (s *SiteService) ListPages(siteID string) ([]domain.Page, error) {
	return s.store.ListPages(siteID)
}

// CreatePage adds a page at the end of the site's page order. An empty slug
// is derived from the title.
func (s *SiteService) CreatePage(ctx context.Context, siteID, title, slug string) (*domain.Page, error) {
	if _, err := s.store.GetSite(siteID); err != nil {
		return nil, err
	}
	existing, err := s.store.ListPages(siteID)
	if err != nil {
		return nil, err
	}
	if slug == "" {
		slug = Slugify(title)
	}
	for _, p := range existing {
		if p.Slug == slug {
			return nil, fmt.Errorf("create page: slug %q already used by page %s", slug, p.ID)
		}
	}
	p := &domain.Page{
		ID:     uuid.New().String(),
		SiteID: siteID,
		Title:  title,
		Slug:   slug,
		Order:  len(existing),
	}
	if err := s.store.CreatePage(p); err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	s.emitter.Emit(ctx, EventPagesChanged, map[string]any{"siteId": siteID})
	return p, nil
}

func (s *SiteService) GetPage(id string) (*domain.Page, error) {
	return s.store.GetPage(id)
}

// SetPublished flips the published flag of a page.
func (s *SiteService) SetPublished(ctx context.Context, id string, published bool) error {
	p, err := s.store.GetPage(id)
	if err != nil {
		return err
	}
	p.Published = published
	if err := s.store.UpdatePage(p); err != nil {
		return fmt.Errorf("publish page: %w", err)
	}
	s.emitter.Emit(ctx, EventPagesChanged, map[string]any{"siteId": p.SiteID})
	return nil
}

func (s *SiteService) DeletePage(ctx context.Context, id string) error {
	p, err := s.store.GetPage(id)
	if err != nil {
		return err
	}
	if err := s.purgePage(id); err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	if err := s.store.DeletePage(id); err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	s.emitter.Emit(ctx, EventPagesChanged, map[string]any{"siteId": p.SiteID})
	return nil
}

// purgePage drops everything hanging off a page except the page row.
func (s *SiteService) purgePage(pageID string) error {
	if s.editor != nil {
		s.editor.Close(pageID)
	}
	if err := s.elements.DeleteElementsByPage(pageID); err != nil {
		return err
	}
	return s.revisions.ClearPage(pageID)
}

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a page title into a URL path segment.
func Slugify(title string) string {
	s := slugUnsafe.ReplaceAllString(strings.ToLower(title), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "/"
	}
	return "/" + s
}
