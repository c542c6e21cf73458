package mcpserver

import (
	"math"

	"pagebuilder/internal/domain"
)

const (
	GridSize  = 10.0   // editor snap grid
	Padding   = 20.0   // gap kept around placed elements
	PageWidth = 1200.0 // content width rows wrap at
)

// defaultSizes is the footprint of a new element per type when the caller
// gives none.
var defaultSizes = map[domain.ElementType][2]float64{
	domain.ElementText:      {300, 40},
	domain.ElementHeading:   {600, 60},
	domain.ElementParagraph: {600, 120},
	domain.ElementImage:     {400, 300},
	domain.ElementButton:    {160, 48},
	domain.ElementContainer: {1200, 400},
	domain.ElementForm:      {480, 360},
	domain.ElementInput:     {320, 40},
	domain.ElementTextarea:  {320, 120},
	domain.ElementList:      {400, 200},
	domain.ElementLink:      {160, 30},
	domain.ElementVideo:     {640, 360},
	domain.ElementDivider:   {1200, 10},
	domain.ElementSpacer:    {1200, 60},
	domain.ElementIcon:      {40, 40},
}

// DefaultSize returns the default width and height of an element type.
func DefaultSize(t domain.ElementType) (float64, float64) {
	if sz, ok := defaultSizes[t]; ok {
		return sz[0], sz[1]
	}
	return 300, 100
}

// LayoutEngine places elements on the canvas so that elements created by
// tools don't land on top of existing ones.
type LayoutEngine struct {
	gridSize  float64
	padding   float64
	pageWidth float64
}

func NewLayoutEngine() *LayoutEngine {
	return &LayoutEngine{
		gridSize:  GridSize,
		padding:   Padding,
		pageWidth: PageWidth,
	}
}

// snap rounds v to the nearest grid point.
func (le *LayoutEngine) snap(v float64) float64 {
	return math.Round(v/le.gridSize) * le.gridSize
}

// rect is a simple axis-aligned bounding box.
type rect struct {
	x, y, w, h float64
}

func (a rect) intersects(b rect) bool {
	return a.x < b.x+b.w && a.x+a.w > b.x &&
		a.y < b.y+b.h && a.y+a.h > b.y
}

// NextPosition finds the first free grid position, scanning rows top to
// bottom, for an element of size (w, h). Hidden elements and children of
// containers don't take up room.
func (le *LayoutEngine) NextPosition(existing []domain.CanvasElement, w, h float64) domain.Point {
	var occupied []rect
	maxY := 0.0
	for _, e := range existing {
		if !e.Visible || e.ParentID != "" {
			continue
		}
		occupied = append(occupied, rect{
			x: e.X - le.padding,
			y: e.Y - le.padding,
			w: e.Width + le.padding*2,
			h: e.Height + le.padding*2,
		})
		maxY = max(maxY, e.Y+e.Height)
	}
	if len(occupied) == 0 {
		return domain.Point{}
	}

	limit := le.snap(maxY + le.padding)
	candidate := rect{w: w, h: h}
	for y := 0.0; y <= limit; y += le.gridSize {
		for x := 0.0; x+w <= le.pageWidth; x += le.gridSize {
			candidate.x, candidate.y = x, y
			free := true
			for _, occ := range occupied {
				if candidate.intersects(occ) {
					free = false
					break
				}
			}
			if free {
				return domain.Point{X: x, Y: y}
			}
		}
	}

	// Wider than the page or no gap: stack below everything.
	return domain.Point{X: 0, Y: limit}
}

// Arrange flows elements left to right in rows starting at (startX,
// startY), wrapping at the page width. It returns the new position of each
// element in input order and leaves the elements untouched.
func (le *LayoutEngine) Arrange(elements []domain.CanvasElement, startX, startY float64) []domain.Point {
	out := make([]domain.Point, len(elements))
	x0 := le.snap(startX)
	x, y := x0, le.snap(startY)
	rowHeight := 0.0

	for i, e := range elements {
		if x > x0 && x+e.Width > le.pageWidth {
			x = x0
			y += le.snap(rowHeight + le.padding)
			rowHeight = 0
		}
		out[i] = domain.Point{X: x, Y: y}
		rowHeight = max(rowHeight, e.Height)
		x += le.snap(e.Width + le.padding)
	}
	return out
}
