package history

import (
	"slices"

	"pagebuilder/internal/domain"
)

// Apply returns the element list that results from executing cmd against
// elements. The input slice and the maps it references are left untouched.
// A nil command returns elements unchanged.
func Apply(elements []domain.CanvasElement, cmd Command) []domain.CanvasElement {
	switch c := cmd.(type) {
	case AddElement:
		return insertAt(elements, len(elements), c.Element)
	case DeleteElement:
		return removeByID(elements, c.Element.ID)
	case MoveElement:
		return updateByID(elements, c.ElementID, func(e *domain.CanvasElement) {
			e.X, e.Y = c.To.X, c.To.Y
		})
	case ResizeElement:
		return updateByID(elements, c.ElementID, func(e *domain.CanvasElement) {
			setRect(e, c.To)
		})
	case UpdateProps:
		return updateByID(elements, c.ElementID, func(e *domain.CanvasElement) {
			e.Props = merge(e.Props, c.To)
		})
	case UpdateStyles:
		return updateByID(elements, c.ElementID, func(e *domain.CanvasElement) {
			e.Styles = merge(e.Styles, c.To)
		})
	case ReorderElement:
		return move(elements, c.FromIndex, c.ToIndex)
	case Batch:
		out := elements
		for _, sub := range c.Commands {
			out = Apply(out, sub)
		}
		return out
	}
	return elements
}

// Reverse returns the element list that results from undoing cmd against
// elements.
//
// Props and style updates are undone by merging the command's From bag back
// in and deleting its Unset keys, so keys that something else changed after
// the command ran are only restored if the command touched them. A bag left
// with no keys becomes nil.
func Reverse(elements []domain.CanvasElement, cmd Command) []domain.CanvasElement {
	switch c := cmd.(type) {
	case AddElement:
		return removeByID(elements, c.Element.ID)
	case DeleteElement:
		return insertAt(elements, c.Index, c.Element)
	case MoveElement:
		return updateByID(elements, c.ElementID, func(e *domain.CanvasElement) {
			e.X, e.Y = c.From.X, c.From.Y
		})
	case ResizeElement:
		return updateByID(elements, c.ElementID, func(e *domain.CanvasElement) {
			setRect(e, c.From)
		})
	case UpdateProps:
		return updateByID(elements, c.ElementID, func(e *domain.CanvasElement) {
			e.Props = without(merge(e.Props, c.From), c.Unset)
		})
	case UpdateStyles:
		return updateByID(elements, c.ElementID, func(e *domain.CanvasElement) {
			e.Styles = without(merge(e.Styles, c.From), c.Unset)
		})
	case ReorderElement:
		return move(elements, c.ToIndex, c.FromIndex)
	case Batch:
		// Last executed first: later sub-commands may depend on state the
		// earlier ones set up.
		out := elements
		for i := len(c.Commands) - 1; i >= 0; i-- {
			out = Reverse(out, c.Commands[i])
		}
		return out
	}
	return elements
}

func setRect(e *domain.CanvasElement, r domain.Rect) {
	e.X, e.Y, e.Width, e.Height = r.X, r.Y, r.Width, r.Height
}

// insertAt returns a copy of elements with el inserted at idx. idx is
// clamped to [0, len(elements)].
func insertAt(elements []domain.CanvasElement, idx int, el domain.CanvasElement) []domain.CanvasElement {
	idx = max(0, min(idx, len(elements)))
	out := make([]domain.CanvasElement, len(elements), len(elements)+1)
	copy(out, elements)
	return slices.Insert(out, idx, el)
}

func removeByID(elements []domain.CanvasElement, id string) []domain.CanvasElement {
	out := make([]domain.CanvasElement, 0, len(elements))
	for _, e := range elements {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}

// updateByID copies elements and applies fn to the copy of the element with
// the given id. Missing ids yield an unchanged copy.
func updateByID(elements []domain.CanvasElement, id string, fn func(*domain.CanvasElement)) []domain.CanvasElement {
	out := make([]domain.CanvasElement, len(elements))
	copy(out, elements)
	for i := range out {
		if out[i].ID == id {
			fn(&out[i])
		}
	}
	return out
}

// move is a splice move: remove the element at from, then insert it at to.
// Out-of-range indices leave the list unchanged.
func move(elements []domain.CanvasElement, from, to int) []domain.CanvasElement {
	n := len(elements)
	if from < 0 || from >= n || to < 0 || to >= n {
		return elements
	}
	out := make([]domain.CanvasElement, 0, n)
	out = append(out, elements[:from]...)
	out = append(out, elements[from+1:]...)
	return slices.Insert(out, to, elements[from])
}

// merge returns a new bag holding base overlaid with patch. base is never
// written to; an empty patch returns base itself.
func merge(base, patch map[string]any) map[string]any {
	if len(patch) == 0 {
		return base
	}
	out := make(map[string]any, len(base)+len(patch))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// without returns a copy of bag lacking keys. bag is never written to.
func without(bag map[string]any, keys []string) map[string]any {
	if len(keys) == 0 {
		return bag
	}
	out := make(map[string]any, len(bag))
	for k, v := range bag {
		if !slices.Contains(keys, k) {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
