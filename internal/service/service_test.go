package service_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/service"
	"pagebuilder/internal/storage"
)

// ── Helpers ────────────────────────────────────────────────

type fixture struct {
	db        *storage.DB
	sites     *service.SiteService
	editor    *service.EditorService
	checks    *service.Checkpointer
	elements  *storage.ElementStore
	revisions *storage.RevisionStore
	emitter   *service.MockEmitter
	pageID    string
}

func newFixture(t *testing.T, opts service.EditorOptions) *fixture {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "pagebuilder.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		db:        db,
		elements:  storage.NewElementStore(db),
		revisions: storage.NewRevisionStore(db),
		emitter:   &service.MockEmitter{},
	}
	siteStore := storage.NewSiteStore(db)
	f.editor = service.NewEditorService(siteStore, f.elements, f.emitter, nil, opts)
	f.checks = service.NewCheckpointer(f.editor, f.revisions, 10, f.emitter, nil)
	f.sites = service.NewSiteService(siteStore, f.elements, f.revisions, f.editor, f.emitter, nil)

	site, err := f.sites.CreateSite("Acme", "acme.test")
	require.NoError(t, err)
	page, err := f.sites.CreatePage(context.Background(), site.ID, "Home", "")
	require.NoError(t, err)
	f.pageID = page.ID
	return f
}

func text(id string, x, y float64) domain.CanvasElement {
	return domain.CanvasElement{
		ID: id, Type: domain.ElementText, X: x, Y: y, Width: 100, Height: 30, Visible: true,
		Props: map[string]any{"content": id},
	}
}

func ids(elements []domain.CanvasElement) []string {
	out := make([]string, len(elements))
	for i, e := range elements {
		out[i] = e.ID
	}
	return out
}

// ── MockEmitter ────────────────────────────────────────────

func TestMockEmitter_Named(t *testing.T) {
	m := &service.MockEmitter{}
	m.Emit(context.Background(), "a", 1)
	m.Emit(context.Background(), "b", 2)
	m.Emit(context.Background(), "a", 3)

	got := m.Named("a")
	require.Len(t, got, 2)
	require.Equal(t, 3, got[1].Data)
}

// ── SiteService ────────────────────────────────────────────

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Home":              "/home",
		"About Us!":         "/about-us",
		"  Pricing & Plans": "/pricing-plans",
		"":                  "/",
	}
	for in, want := range cases {
		if got := service.Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSiteService_CreatePageRejectsDuplicateSlug(t *testing.T) {
	f := newFixture(t, service.EditorOptions{})
	page, err := f.sites.GetPage(f.pageID)
	require.NoError(t, err)

	_, err = f.sites.CreatePage(context.Background(), page.SiteID, "Home", "")
	require.Error(t, err)

	second, err := f.sites.CreatePage(context.Background(), page.SiteID, "About", "")
	require.NoError(t, err)
	require.Equal(t, 1, second.Order)
	require.Equal(t, "/about", second.Slug)
}

func TestSiteService_DeletePagePurgesCanvas(t *testing.T) {
	f := newFixture(t, service.EditorOptions{})
	ctx := context.Background()

	_, err := f.editor.AddElement(ctx, f.pageID, text("a", 0, 0))
	require.NoError(t, err)
	_, err = f.checks.Save(ctx, f.pageID, "before delete")
	require.NoError(t, err)

	require.NoError(t, f.sites.DeletePage(ctx, f.pageID))

	_, err = f.sites.GetPage(f.pageID)
	require.ErrorIs(t, err, storage.ErrNotFound)
	left, err := f.elements.ListElements(f.pageID)
	require.NoError(t, err)
	require.Empty(t, left)
	revs, err := f.revisions.List(f.pageID)
	require.NoError(t, err)
	require.Empty(t, revs)
	require.Empty(t, f.editor.OpenPages())
}
