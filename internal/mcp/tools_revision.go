package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerRevisionTools() {
	// ── save_revision ──────────────────────────────────
	s.addTool(mcp.NewTool("save_revision",
		mcp.WithDescription("Save the current canvas of a page as a named revision"),
		mcp.WithString("label", mcp.Description("Revision label (optional, defaults to the latest edit)")),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleSaveRevision)

	// ── list_revisions ─────────────────────────────────
	s.addTool(mcp.NewTool("list_revisions",
		mcp.WithDescription("List saved revisions of a page, newest first"),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleListRevisions)

	// ── restore_revision ───────────────────────────────
	s.addTool(mcp.NewTool("restore_revision",
		mcp.WithDescription("Replace the canvas with a saved revision. The restore can be undone."),
		mcp.WithString("revisionId", mcp.Description("Revision ID"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleRestoreRevision)
}

func (s *Server) handleSaveRevision(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := s.resolvePageID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	rev, err := s.checkpoints.Save(ctx, pageID, req.GetString("label", ""))
	if err != nil {
		return nil, err
	}
	return jsonResult(rev.Summary())
}

func (s *Server) handleListRevisions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := s.resolvePageID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	revs, err := s.checkpoints.List(pageID)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	return jsonResult(revs)
}

func (s *Server) handleRestoreRevision(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := s.resolvePageID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	revisionID := req.GetString("revisionId", "")
	if revisionID == "" {
		return nil, fmt.Errorf("revisionId is required")
	}
	rev, err := s.checkpoints.Restore(ctx, pageID, revisionID)
	if err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Restored revision %q (%d element(s)); use undo to go back",
		rev.Label, len(rev.Elements))), nil
}
