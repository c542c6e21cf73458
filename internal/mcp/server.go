package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"pagebuilder/internal/service"
)

// Server is the MCP server of the page builder. It exposes the editor as
// tools, resources and prompts so AI agents can build pages.
type Server struct {
	mcp    *server.MCPServer
	log    *zap.Logger
	layout *LayoutEngine

	sites       *service.SiteService
	editor      *service.EditorService
	checkpoints *service.Checkpointer

	// Active page context (set by set_active_page / create_page)
	mu           sync.Mutex
	activePageID string
}

// Deps holds the services the MCP server drives.
type Deps struct {
	Sites       *service.SiteService
	Editor      *service.EditorService
	Checkpoints *service.Checkpointer
	Log         *zap.Logger
	Version     string
}

// New creates and configures a new MCP server with all tools and resources.
func New(deps Deps) *Server {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	version := deps.Version
	if version == "" {
		version = "dev"
	}
	s := &Server{
		log:         log.Named("mcp"),
		layout:      NewLayoutEngine(),
		sites:       deps.Sites,
		editor:      deps.Editor,
		checkpoints: deps.Checkpoints,
	}

	s.mcp = server.NewMCPServer(
		"pagebuilder-mcp",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerSiteTools()
	s.registerElementTools()
	s.registerHistoryTools()
	s.registerRevisionTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	s.log.Info("starting stdio server")
	return server.ServeStdio(s.mcp)
}

// ── Helpers ────────────────────────────────────────────────

// addTool registers a tool whose failures are logged before they go back to
// the client.
func (s *Server) addTool(tool mcp.Tool, handler server.ToolHandlerFunc) {
	name := tool.Name
	s.mcp.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := handler(ctx, req)
		if err != nil {
			s.log.Warn("tool failed", zap.String("tool", name), zap.Error(err))
		}
		return res, err
	})
}

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

func (s *Server) setActivePage(pageID string) {
	s.mu.Lock()
	s.activePageID = pageID
	s.mu.Unlock()
}

// resolvePageID returns the pageId from tool args or falls back to the
// active page.
func (s *Server) resolvePageID(args map[string]any) (string, error) {
	if pid, ok := args["pageId"].(string); ok && pid != "" {
		return pid, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activePageID != "" {
		return s.activePageID, nil
	}
	return "", fmt.Errorf("no pageId provided and no active page set (use set_active_page first)")
}

// requireElementID returns the elementId argument.
func requireElementID(args map[string]any) (string, error) {
	id, ok := args["elementId"].(string)
	if !ok || id == "" {
		return "", fmt.Errorf("elementId is required")
	}
	return id, nil
}
