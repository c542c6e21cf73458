package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerHistoryTools() {
	pageArg := mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)"))

	s.addTool(mcp.NewTool("undo",
		mcp.WithDescription("Undo the latest edit of a page"),
		pageArg,
	), s.handleUndo)

	s.addTool(mcp.NewTool("redo",
		mcp.WithDescription("Redo the latest undone edit of a page"),
		pageArg,
	), s.handleRedo)

	s.addTool(mcp.NewTool("history_state",
		mcp.WithDescription("Show the undo and redo stacks of a page, oldest first"),
		pageArg,
	), s.handleHistoryState)

	s.addTool(mcp.NewTool("clear_history",
		mcp.WithDescription("Forget the undo and redo stacks of a page. The canvas is not changed."),
		pageArg,
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleClearHistory)
}

func (s *Server) handleUndo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := s.resolvePageID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	cmd, err := s.editor.Undo(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if cmd == nil {
		return textResult("Nothing to undo"), nil
	}
	return textResult(fmt.Sprintf("Undid: %s", cmd.Head().Description)), nil
}

func (s *Server) handleRedo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := s.resolvePageID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	cmd, err := s.editor.Redo(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if cmd == nil {
		return textResult("Nothing to redo"), nil
	}
	return textResult(fmt.Sprintf("Redid: %s", cmd.Head().Description)), nil
}

func (s *Server) handleHistoryState(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := s.resolvePageID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	st, err := s.editor.HistoryState(pageID)
	if err != nil {
		return nil, err
	}
	return jsonResult(st)
}

func (s *Server) handleClearHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := s.resolvePageID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	if err := s.editor.ClearHistory(ctx, pageID); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("History of page %s cleared", pageID)), nil
}
