package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("landing_page",
		mcp.WithPromptDescription("Guide through building a landing page on the active page"),
		mcp.WithArgument("product",
			mcp.ArgumentDescription("Product or company the page is about"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("audience",
			mcp.ArgumentDescription("Who the page is for (optional)"),
		),
	), s.handleLandingPagePrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("tidy_page",
		mcp.WithPromptDescription("Review the active page and clean up overlapping or misaligned elements"),
	), s.handleTidyPagePrompt)
}

func (s *Server) handleLandingPagePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	product := req.Params.Arguments["product"]
	audience := req.Params.Arguments["audience"]
	if audience == "" {
		audience = "first-time visitors"
	}
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Build a landing page for: %s", product),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Build a landing page for "%s" aimed at %s on the active page. Follow these steps:

1. Add a container element as the hero section, then a heading and a paragraph inside it (parentId = the container)
2. Add a button with props {"content": "...", "href": "..."} as the call to action
3. Add three container cards in a row for the main features, each with a heading and a paragraph
4. Add a form with input elements for a signup or contact block
5. Use update_element_styles for colors and spacing, then arrange_elements if the layout looks uneven
6. When you are happy with the result, save_revision with a short label

Every edit can be reverted with undo, so experiment freely.`, product, audience),
				},
			},
		},
	}, nil
}

func (s *Server) handleTidyPagePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Tidy up the active page",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: `Tidy up the active page. Follow these steps:

1. Call save_revision with label "Before tidy" so the current state can be restored
2. Use list_elements to find overlapping elements and elements off the 10px grid
3. Fix positions with move_element or batch_move_elements, sizes with resize_element
4. Use reorder_element so backgrounds sit below the content drawn on top of them
5. Call history_state and summarise what changed`,
				},
			},
		},
	}, nil
}
