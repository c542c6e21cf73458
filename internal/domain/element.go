package domain

// ElementType is the type tag of a canvas element. It selects how the
// renderer interprets the element's Props bag.
type ElementType string

const (
	ElementText      ElementType = "text"
	ElementHeading   ElementType = "heading"
	ElementParagraph ElementType = "paragraph"
	ElementImage     ElementType = "image"
	ElementButton    ElementType = "button"
	ElementContainer ElementType = "container"
	ElementForm      ElementType = "form"
	ElementInput     ElementType = "input"
	ElementTextarea  ElementType = "textarea"
	ElementList      ElementType = "list"
	ElementLink      ElementType = "link"
	ElementVideo     ElementType = "video"
	ElementDivider   ElementType = "divider"
	ElementSpacer    ElementType = "spacer"
	ElementIcon      ElementType = "icon"
)

// ElementTypes lists every known element type in palette order.
var ElementTypes = []ElementType{
	ElementText, ElementHeading, ElementParagraph, ElementImage, ElementButton,
	ElementContainer, ElementForm, ElementInput, ElementTextarea, ElementList,
	ElementLink, ElementVideo, ElementDivider, ElementSpacer, ElementIcon,
}

// Valid reports whether t is one of the known element types.
func (t ElementType) Valid() bool {
	for _, known := range ElementTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Animation configures an entrance animation for an element.
type Animation struct {
	Type       string `json:"type" yaml:"type"` // fade, slide-up, zoom, ...
	DurationMs int    `json:"durationMs" yaml:"durationMs"`
	DelayMs    int    `json:"delayMs,omitempty" yaml:"delayMs,omitempty"`
	Easing     string `json:"easing,omitempty" yaml:"easing,omitempty"`
}

// CanvasElement is a positioned visual node on a page canvas. Props holds
// type-specific content (text, color, href, src, ...) and Styles holds style
// overrides.
//
// Elements are values. Code that changes an element builds a new one and a
// new element list; Props and Styles maps reachable from a list that has been
// handed out must not be written to.
type CanvasElement struct {
	ID        string         `json:"id" yaml:"id"`
	Type      ElementType    `json:"type" yaml:"type"`
	X         float64        `json:"x" yaml:"x"`
	Y         float64        `json:"y" yaml:"y"`
	Width     float64        `json:"width" yaml:"width"`
	Height    float64        `json:"height" yaml:"height"`
	Rotation  float64        `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	ZIndex    int            `json:"zIndex" yaml:"zIndex"`
	Visible   bool           `json:"visible" yaml:"visible"`
	Locked    bool           `json:"locked" yaml:"locked"`
	Props     map[string]any `json:"props" yaml:"props"`
	Styles    map[string]any `json:"styles,omitempty" yaml:"styles,omitempty"`
	ParentID  string         `json:"parentId,omitempty" yaml:"parentId,omitempty"`
	Children  []string       `json:"children,omitempty" yaml:"children,omitempty"`
	Animation *Animation     `json:"animation,omitempty" yaml:"animation,omitempty"`
}

// Point is an element position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an element's position and size.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Position returns the element's top-left corner.
func (e CanvasElement) Position() Point {
	return Point{X: e.X, Y: e.Y}
}

// Bounds returns the element's geometry.
func (e CanvasElement) Bounds() Rect {
	return Rect{X: e.X, Y: e.Y, Width: e.Width, Height: e.Height}
}

// PropString returns Props[key] as a string, or "" when absent or not a string.
func (e CanvasElement) PropString(key string) string {
	s, _ := e.Props[key].(string)
	return s
}

// IndexOf returns the index of the element with the given id, or -1.
func IndexOf(elements []CanvasElement, id string) int {
	for i := range elements {
		if elements[i].ID == id {
			return i
		}
	}
	return -1
}

// ElementStore persists the element list of each page.
type ElementStore interface {
	ListElements(pageID string) ([]CanvasElement, error)
	ReplacePageElements(pageID string, elements []CanvasElement) error
	DeleteElementsByPage(pageID string) error
}
