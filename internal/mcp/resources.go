package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	sitesURI       = "pagebuilder://sites"
	pageURIPrefix  = "pagebuilder://page/"
	elementsSuffix = "/elements"
)

func (s *Server) registerResources() {
	// ── pagebuilder://sites ────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		sitesURI,
		"All Sites",
		mcp.WithMIMEType("application/json"),
	), s.handleSitesResource)

	// ── pagebuilder://page/{pageId}/elements ───────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			pageURIPrefix+"{pageId}"+elementsSuffix,
			"Elements on a Page",
		),
		s.handlePageElementsResource,
	)
}

func (s *Server) handleSitesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	sites, err := s.sites.ListSites()
	if err != nil {
		return nil, err
	}

	type pageSummary struct {
		ID        string `json:"id"`
		Title     string `json:"title"`
		Slug      string `json:"slug"`
		Published bool   `json:"published"`
	}
	type siteSummary struct {
		ID     string        `json:"id"`
		Name   string        `json:"name"`
		Domain string        `json:"domain,omitempty"`
		Pages  []pageSummary `json:"pages"`
	}

	summaries := make([]siteSummary, 0, len(sites))
	for _, site := range sites {
		pages, err := s.sites.ListPages(site.ID)
		if err != nil {
			return nil, err
		}
		sum := siteSummary{ID: site.ID, Name: site.Name, Domain: site.Domain, Pages: []pageSummary{}}
		for _, p := range pages {
			sum.Pages = append(sum.Pages, pageSummary{ID: p.ID, Title: p.Title, Slug: p.Slug, Published: p.Published})
		}
		summaries = append(summaries, sum)
	}

	data, _ := json.MarshalIndent(summaries, "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      sitesURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handlePageElementsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	pageID := pageIDFromURI(uri)
	if pageID == "" {
		return nil, fmt.Errorf("could not extract pageId from URI: %s", uri)
	}

	elements, err := s.editor.Elements(pageID)
	if err != nil {
		return nil, err
	}

	data, _ := json.MarshalIndent(elements, "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// pageIDFromURI extracts the page ID from "pagebuilder://page/{id}/elements".
func pageIDFromURI(uri string) string {
	rest, ok := strings.CutPrefix(uri, pageURIPrefix)
	if !ok {
		return ""
	}
	id, ok := strings.CutSuffix(rest, elementsSuffix)
	if !ok || strings.Contains(id, "/") {
		return ""
	}
	return id
}
