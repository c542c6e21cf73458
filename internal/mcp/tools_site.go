package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerSiteTools() {
	// ── list_sites ─────────────────────────────────────
	s.addTool(mcp.NewTool("list_sites",
		mcp.WithDescription("List all sites in the workspace"),
	), s.handleListSites)

	// ── create_site ────────────────────────────────────
	s.addTool(mcp.NewTool("create_site",
		mcp.WithDescription("Create a new site"),
		mcp.WithString("name", mcp.Description("Site name"), mcp.Required()),
		mcp.WithString("domain", mcp.Description("Domain the site is served on (optional)")),
	), s.handleCreateSite)

	// ── list_pages ─────────────────────────────────────
	s.addTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List all pages of a site in navigation order"),
		mcp.WithString("siteId", mcp.Description("ID of the site"), mcp.Required()),
	), s.handleListPages)

	// ── create_page ────────────────────────────────────
	s.addTool(mcp.NewTool("create_page",
		mcp.WithDescription("Create a new page in a site and make it the active page"),
		mcp.WithString("siteId", mcp.Description("ID of the site"), mcp.Required()),
		mcp.WithString("title", mcp.Description("Page title"), mcp.Required()),
		mcp.WithString("slug", mcp.Description("URL path, e.g. /pricing (optional, derived from the title)")),
	), s.handleCreatePage)

	// ── set_active_page ────────────────────────────────
	s.addTool(mcp.NewTool("set_active_page",
		mcp.WithDescription("Open a page for editing. Tools that accept pageId will default to this."),
		mcp.WithString("pageId", mcp.Description("ID of the page to make active"), mcp.Required()),
	), s.handleSetActivePage)

	// ── publish_page ───────────────────────────────────
	s.addTool(mcp.NewTool("publish_page",
		mcp.WithDescription("Publish or unpublish a page"),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithBoolean("published", mcp.Description("true to publish, false to take offline"), mcp.Required()),
	), s.handlePublishPage)
}

func (s *Server) handleListSites(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sites, err := s.sites.ListSites()
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	return jsonResult(sites)
}

func (s *Server) handleCreateSite(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	site, err := s.sites.CreateSite(name, req.GetString("domain", ""))
	if err != nil {
		return nil, err
	}
	return jsonResult(site)
}

func (s *Server) handleListPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	siteID := req.GetString("siteId", "")
	if siteID == "" {
		return nil, fmt.Errorf("siteId is required")
	}
	pages, err := s.sites.ListPages(siteID)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	return jsonResult(pages)
}

func (s *Server) handleCreatePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	siteID := req.GetString("siteId", "")
	title := req.GetString("title", "")
	if siteID == "" || title == "" {
		return nil, fmt.Errorf("siteId and title are required")
	}
	page, err := s.sites.CreatePage(ctx, siteID, title, req.GetString("slug", ""))
	if err != nil {
		return nil, err
	}
	s.setActivePage(page.ID)
	return jsonResult(page)
}

func (s *Server) handleSetActivePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID := req.GetString("pageId", "")
	if pageID == "" {
		return nil, fmt.Errorf("pageId is required")
	}
	state, err := s.editor.Open(pageID)
	if err != nil {
		return nil, err
	}
	s.setActivePage(pageID)
	return textResult(fmt.Sprintf("Active page set to %q (%s) with %d element(s)",
		state.Page.Title, pageID, len(state.Elements))), nil
}

func (s *Server) handlePublishPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	pageID, err := s.resolvePageID(args)
	if err != nil {
		return nil, err
	}
	published := getBool(args, "published", false)
	if err := s.sites.SetPublished(ctx, pageID, published); err != nil {
		return nil, err
	}
	if published {
		return textResult(fmt.Sprintf("Page %s published", pageID)), nil
	}
	return textResult(fmt.Sprintf("Page %s unpublished", pageID)), nil
}
