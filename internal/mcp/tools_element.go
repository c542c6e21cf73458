package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/service"
)

func (s *Server) registerElementTools() {
	types := make([]string, len(domain.ElementTypes))
	for i, t := range domain.ElementTypes {
		types[i] = string(t)
	}

	// ── list_elements ──────────────────────────────────
	s.addTool(mcp.NewTool("list_elements",
		mcp.WithDescription("List the elements of a page in paint order, optionally filtered by type"),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithString("type", mcp.Description("Filter by element type (optional)")),
	), s.handleListElements)

	// ── get_element ────────────────────────────────────
	s.addTool(mcp.NewTool("get_element",
		mcp.WithDescription("Get one element with all of its props and styles"),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleGetElement)

	// ── add_element ────────────────────────────────────
	s.addTool(mcp.NewTool("add_element",
		mcp.WithDescription("Add an element to the page. Position is auto-calculated if not provided."),
		mcp.WithString("type",
			mcp.Description("Element type: "+strings.Join(types, ", ")),
			mcp.Required(),
		),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithNumber("x", mcp.Description("X position (optional, auto-layout if omitted)")),
		mcp.WithNumber("y", mcp.Description("Y position (optional, auto-layout if omitted)")),
		mcp.WithNumber("width", mcp.Description("Width (optional, per-type default)")),
		mcp.WithNumber("height", mcp.Description("Height (optional, per-type default)")),
		mcp.WithString("props", mcp.Description(`JSON object of content props, e.g. {"content":"Hello","href":"/about"}`)),
		mcp.WithString("styles", mcp.Description(`JSON object of style overrides, e.g. {"color":"#333"}`)),
		mcp.WithString("parentId", mcp.Description("ID of the containing element (optional)")),
	), s.handleAddElement)

	// ── delete_element (destructive) ───────────────────
	s.addTool(mcp.NewTool("delete_element",
		mcp.WithDescription("Delete an element. Can be undone with the undo tool."),
		mcp.WithString("elementId", mcp.Description("Element ID to delete"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteElement)

	// ── move_element ───────────────────────────────────
	s.addTool(mcp.NewTool("move_element",
		mcp.WithDescription("Move an element to a new position"),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("New X position"), mcp.Required()),
		mcp.WithNumber("y", mcp.Description("New Y position"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleMoveElement)

	// ── resize_element ─────────────────────────────────
	s.addTool(mcp.NewTool("resize_element",
		mcp.WithDescription("Resize an element, optionally moving it at the same time"),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
		mcp.WithNumber("width", mcp.Description("New width"), mcp.Required()),
		mcp.WithNumber("height", mcp.Description("New height"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("New X position (optional)")),
		mcp.WithNumber("y", mcp.Description("New Y position (optional)")),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleResizeElement)

	// ── update_element_props ───────────────────────────
	s.addTool(mcp.NewTool("update_element_props",
		mcp.WithDescription("Merge props into an element. Keys not given are left as they are."),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
		mcp.WithString("props", mcp.Description("JSON object of props to set"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleUpdateProps)

	// ── update_element_styles ──────────────────────────
	s.addTool(mcp.NewTool("update_element_styles",
		mcp.WithDescription("Merge style overrides into an element. Keys not given are left as they are."),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
		mcp.WithString("styles", mcp.Description("JSON object of styles to set"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleUpdateStyles)

	// ── reorder_element ────────────────────────────────
	s.addTool(mcp.NewTool("reorder_element",
		mcp.WithDescription("Move an element to another position in paint order (0 = bottom)"),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
		mcp.WithNumber("toIndex", mcp.Description("Target index in the element list"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleReorderElement)

	// ── batch_move_elements ────────────────────────────
	s.addTool(mcp.NewTool("batch_move_elements",
		mcp.WithDescription("Move several elements by a relative offset (dx, dy) as one undo step"),
		mcp.WithString("elementIds", mcp.Description("Comma-separated element IDs"), mcp.Required()),
		mcp.WithNumber("dx", mcp.Description("Horizontal offset"), mcp.Required()),
		mcp.WithNumber("dy", mcp.Description("Vertical offset"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleBatchMoveElements)

	// ── arrange_elements ───────────────────────────────
	s.addTool(mcp.NewTool("arrange_elements",
		mcp.WithDescription("Flow the top-level elements of a page into rows as one undo step"),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithNumber("startX", mcp.Description("Starting X position (default 0)")),
		mcp.WithNumber("startY", mcp.Description("Starting Y position (default 0)")),
	), s.handleArrangeElements)
}

// elementSummary is the compact view of an element returned by list tools.
type elementSummary struct {
	ID       string             `json:"id"`
	Type     domain.ElementType `json:"type"`
	X        float64            `json:"x"`
	Y        float64            `json:"y"`
	Width    float64            `json:"width"`
	Height   float64            `json:"height"`
	ZIndex   int                `json:"zIndex"`
	Hidden   bool               `json:"hidden,omitempty"`
	Locked   bool               `json:"locked,omitempty"`
	ParentID string             `json:"parentId,omitempty"`
	Preview  string             `json:"preview,omitempty"`
}

func summarizeElement(e domain.CanvasElement) elementSummary {
	preview := e.PropString("content")
	if preview == "" {
		preview = e.PropString("src")
	}
	if r := []rune(preview); len(r) > 80 {
		preview = string(r[:80]) + "…"
	}
	return elementSummary{
		ID: e.ID, Type: e.Type,
		X: e.X, Y: e.Y, Width: e.Width, Height: e.Height, ZIndex: e.ZIndex,
		Hidden: !e.Visible, Locked: e.Locked, ParentID: e.ParentID,
		Preview: preview,
	}
}

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleListElements(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	pageID, err := s.resolvePageID(args)
	if err != nil {
		return nil, err
	}
	elements, err := s.editor.Elements(pageID)
	if err != nil {
		return nil, fmt.Errorf("list elements: %w", err)
	}

	filterType, _ := args["type"].(string)
	summaries := make([]elementSummary, 0, len(elements))
	for _, e := range elements {
		if filterType != "" && string(e.Type) != filterType {
			continue
		}
		summaries = append(summaries, summarizeElement(e))
	}
	return jsonResult(summaries)
}

func (s *Server) handleGetElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	pageID, err := s.resolvePageID(args)
	if err != nil {
		return nil, err
	}
	elementID, err := requireElementID(args)
	if err != nil {
		return nil, err
	}
	elements, err := s.editor.Elements(pageID)
	if err != nil {
		return nil, err
	}
	idx := domain.IndexOf(elements, elementID)
	if idx < 0 {
		return nil, fmt.Errorf("element %s: %w", elementID, service.ErrElementNotFound)
	}
	return jsonResult(elements[idx])
}

func (s *Server) handleAddElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	elType := domain.ElementType(req.GetString("type", ""))
	if elType == "" {
		return nil, fmt.Errorf("type is required")
	}
	pageID, err := s.resolvePageID(args)
	if err != nil {
		return nil, err
	}
	props, err := parseBag(args, "props")
	if err != nil {
		return nil, err
	}
	styles, err := parseBag(args, "styles")
	if err != nil {
		return nil, err
	}

	dw, dh := DefaultSize(elType)
	el := domain.CanvasElement{
		Type:     elType,
		Width:    getFloat(args, "width", dw),
		Height:   getFloat(args, "height", dh),
		Visible:  true,
		Props:    props,
		Styles:   styles,
		ParentID: req.GetString("parentId", ""),
	}

	// Auto-layout if position not provided
	x, hasX := args["x"].(float64)
	y, hasY := args["y"].(float64)
	if !hasX || !hasY {
		existing, err := s.editor.Elements(pageID)
		if err != nil {
			return nil, err
		}
		p := s.layout.NextPosition(existing, el.Width, el.Height)
		if !hasX {
			x = p.X
		}
		if !hasY {
			y = p.Y
		}
	}
	el.X, el.Y = x, y

	added, err := s.editor.AddElement(ctx, pageID, el)
	if err != nil {
		return nil, fmt.Errorf("add element: %w", err)
	}
	return jsonResult(added)
}

func (s *Server) handleDeleteElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	pageID, err := s.resolvePageID(args)
	if err != nil {
		return nil, err
	}
	elementID, err := requireElementID(args)
	if err != nil {
		return nil, err
	}
	if err := s.editor.DeleteElement(ctx, pageID, elementID); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Element %s deleted", elementID)), nil
}

func (s *Server) handleMoveElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	pageID, err := s.resolvePageID(args)
	if err != nil {
		return nil, err
	}
	elementID, err := requireElementID(args)
	if err != nil {
		return nil, err
	}
	x, hasX := args["x"].(float64)
	y, hasY := args["y"].(float64)
	if !hasX || !hasY {
		return nil, fmt.Errorf("x and y are required")
	}
	if err := s.editor.MoveElement(ctx, pageID, elementID, domain.Point{X: x, Y: y}); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Element %s moved to (%.0f, %.0f)", elementID, x, y)), nil
}

func (s *Server) handleResizeElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	pageID, err := s.resolvePageID(args)
	if err != nil {
		return nil, err
	}
	elementID, err := requireElementID(args)
	if err != nil {
		return nil, err
	}
	elements, err := s.editor.Elements(pageID)
	if err != nil {
		return nil, err
	}
	idx := domain.IndexOf(elements, elementID)
	if idx < 0 {
		return nil, fmt.Errorf("element %s: %w", elementID, service.ErrElementNotFound)
	}
	cur := elements[idx]
	to := domain.Rect{
		X:      getFloat(args, "x", cur.X),
		Y:      getFloat(args, "y", cur.Y),
		Width:  getFloat(args, "width", cur.Width),
		Height: getFloat(args, "height", cur.Height),
	}
	if err := s.editor.ResizeElement(ctx, pageID, elementID, to); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Element %s resized to %.0fx%.0f at (%.0f, %.0f)",
		elementID, to.Width, to.Height, to.X, to.Y)), nil
}

func (s *Server) handleUpdateProps(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.updateBag(ctx, req, "props", s.editor.UpdateProps)
}

func (s *Server) handleUpdateStyles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.updateBag(ctx, req, "styles", s.editor.UpdateStyles)
}

func (s *Server) updateBag(
	ctx context.Context,
	req mcp.CallToolRequest,
	key string,
	update func(ctx context.Context, pageID, elementID string, patch map[string]any) error,
) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	pageID, err := s.resolvePageID(args)
	if err != nil {
		return nil, err
	}
	elementID, err := requireElementID(args)
	if err != nil {
		return nil, err
	}
	patch, err := parseBag(args, key)
	if err != nil {
		return nil, err
	}
	if len(patch) == 0 {
		return nil, fmt.Errorf("%s must be a non-empty JSON object", key)
	}
	if err := update(ctx, pageID, elementID, patch); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Element %s: %d %s key(s) updated", elementID, len(patch), key)), nil
}

func (s *Server) handleReorderElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	pageID, err := s.resolvePageID(args)
	if err != nil {
		return nil, err
	}
	elementID, err := requireElementID(args)
	if err != nil {
		return nil, err
	}
	to, ok := args["toIndex"].(float64)
	if !ok {
		return nil, fmt.Errorf("toIndex is required")
	}
	if err := s.editor.Reorder(ctx, pageID, elementID, int(to)); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Element %s moved to index %d", elementID, int(to))), nil
}

func (s *Server) handleBatchMoveElements(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	pageID, err := s.resolvePageID(args)
	if err != nil {
		return nil, err
	}
	ids := splitIDs(req.GetString("elementIds", ""))
	if len(ids) == 0 {
		return nil, fmt.Errorf("elementIds is required")
	}
	dx := getFloat(args, "dx", 0)
	dy := getFloat(args, "dy", 0)

	elements, err := s.editor.Elements(pageID)
	if err != nil {
		return nil, err
	}
	moves := make([]service.ElementMove, 0, len(ids))
	for _, id := range ids {
		idx := domain.IndexOf(elements, id)
		if idx < 0 {
			return nil, fmt.Errorf("element %s: %w", id, service.ErrElementNotFound)
		}
		moves = append(moves, service.ElementMove{
			ID: id,
			To: domain.Point{X: elements[idx].X + dx, Y: elements[idx].Y + dy},
		})
	}
	n, err := s.editor.MoveMany(ctx, pageID, moves, "")
	if err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Moved %d element(s) by (%.0f, %.0f)", n, dx, dy)), nil
}

func (s *Server) handleArrangeElements(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	pageID, err := s.resolvePageID(args)
	if err != nil {
		return nil, err
	}
	elements, err := s.editor.Elements(pageID)
	if err != nil {
		return nil, err
	}

	var top []domain.CanvasElement
	for _, e := range elements {
		if e.ParentID == "" && !e.Locked {
			top = append(top, e)
		}
	}
	positions := s.layout.Arrange(top, getFloat(args, "startX", 0), getFloat(args, "startY", 0))
	moves := make([]service.ElementMove, len(top))
	for i, e := range top {
		moves[i] = service.ElementMove{ID: e.ID, To: positions[i]}
	}
	n, err := s.editor.MoveMany(ctx, pageID, moves, "Arrange elements")
	if err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Arranged %d element(s)", n)), nil
}
