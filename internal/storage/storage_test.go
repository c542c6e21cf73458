package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pagebuilder/internal/domain"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "pagebuilder.db"))
	require.NoError(t, err, "open test database")
	t.Cleanup(func() { db.Close() })
	return db
}

func seedPage(t *testing.T, db *DB) (*domain.Site, *domain.Page) {
	t.Helper()
	sites := NewSiteStore(db)
	site := &domain.Site{ID: "site-1", Name: "Acme", Domain: "acme.test"}
	require.NoError(t, sites.CreateSite(site))
	page := &domain.Page{ID: "page-1", SiteID: site.ID, Title: "Home", Slug: "/"}
	require.NoError(t, sites.CreatePage(page))
	return site, page
}

func TestNew_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagebuilder.db")
	db, err := New(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = New(path)
	require.NoError(t, err, "reopening must not fail on existing schema")
	require.NoError(t, db.Close())
}

func TestSiteStore_CRUD(t *testing.T) {
	db := newTestDB(t)
	sites := NewSiteStore(db)
	site, page := seedPage(t, db)

	got, err := sites.GetSite(site.ID)
	require.NoError(t, err)
	require.Equal(t, "Acme", got.Name)

	got.Name = "Acme Inc"
	require.NoError(t, sites.UpdateSite(got))
	list, err := sites.ListSites()
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Acme Inc", list[0].Name)

	page.Published = true
	page.Title = "Welcome"
	require.NoError(t, sites.UpdatePage(page))
	gotPage, err := sites.GetPage(page.ID)
	require.NoError(t, err)
	require.True(t, gotPage.Published)
	require.Equal(t, "Welcome", gotPage.Title)

	pages, err := sites.ListPages(site.ID)
	require.NoError(t, err)
	require.Len(t, pages, 1)

	require.NoError(t, sites.DeletePagesBySite(site.ID))
	require.NoError(t, sites.DeleteSite(site.ID))
	_, err = sites.GetSite(site.ID)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = sites.GetPage(page.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestElementStore_ReplaceKeepsOrderAndBags(t *testing.T) {
	db := newTestDB(t)
	_, page := seedPage(t, db)
	store := NewElementStore(db)

	elements := []domain.CanvasElement{
		{
			ID: "b", Type: domain.ElementButton, X: 10, Y: 20, Width: 120, Height: 40, ZIndex: 2,
			Visible: true, Props: map[string]any{"content": "Buy", "href": "/buy"},
			Styles:    map[string]any{"color": "#fff"},
			Animation: &domain.Animation{Type: "fade", DurationMs: 300},
		},
		{
			ID: "a", Type: domain.ElementContainer, Width: 600, Height: 400, Locked: true,
			Props: map[string]any{}, Children: []string{"b"},
		},
	}
	require.NoError(t, store.ReplacePageElements(page.ID, elements))

	got, err := store.ListElements(page.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "b", got[0].ID, "list order must survive storage")
	require.Equal(t, "a", got[1].ID)
	require.Equal(t, "Buy", got[0].PropString("content"))
	require.Equal(t, map[string]any{"color": "#fff"}, got[0].Styles)
	require.Equal(t, &domain.Animation{Type: "fade", DurationMs: 300}, got[0].Animation)
	require.True(t, got[0].Visible)
	require.True(t, got[1].Locked)
	require.Nil(t, got[1].Styles)
	require.Equal(t, []string{"b"}, got[1].Children)

	require.NoError(t, store.ReplacePageElements(page.ID, elements[1:]))
	got, err = store.ListElements(page.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)

	require.NoError(t, store.DeleteElementsByPage(page.ID))
	got, err = store.ListElements(page.ID)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestRevisionStore_SaveListPrune(t *testing.T) {
	db := newTestDB(t)
	_, page := seedPage(t, db)
	revs := NewRevisionStore(db)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		rev := &domain.Revision{
			ID:        "rev-" + string(rune('a'+i)),
			PageID:    page.ID,
			Label:     "checkpoint",
			Elements:  []domain.CanvasElement{{ID: "x", Type: domain.ElementText, X: float64(i)}},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, revs.Save(rev, 3))
	}

	list, err := revs.List(page.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "rev-e", list[0].ID, "newest first")
	require.Equal(t, 1, list[0].Elements)
	require.Equal(t, "rev-c", list[2].ID)

	got, err := revs.Get("rev-d")
	require.NoError(t, err)
	require.Len(t, got.Elements, 1)
	require.Equal(t, 3.0, got.Elements[0].X)

	_, err = revs.Get("rev-a")
	require.ErrorIs(t, err, ErrNotFound, "oldest revisions are pruned")

	n, err := revs.Prune(page.ID, 1)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	n, err = revs.Prune(page.ID, 1)
	require.NoError(t, err)
	require.Zero(t, n)
	list, err = revs.List(page.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "rev-e", list[0].ID)

	require.NoError(t, revs.ClearPage(page.ID))
	list, err = revs.List(page.ID)
	require.NoError(t, err)
	require.Empty(t, list)
}
