package domain

// PageState is a page together with its canvas, in paint order.
type PageState struct {
	Page     Page            `json:"page"`
	Elements []CanvasElement `json:"elements"`
}
