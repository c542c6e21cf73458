package history

import (
	"slices"
	"time"

	"pagebuilder/internal/domain"
)

const batchDescription = "Batch operation"

// now is swapped in tests that need deterministic timestamps.
var now = time.Now

func newHeader(description string) Header {
	return Header{Timestamp: now(), Description: description}
}

func NewAddCommand(el domain.CanvasElement) AddElement {
	return AddElement{Header: newHeader("Add element"), Element: el}
}

// NewDeleteCommand records the deletion of el, which sat at index.
func NewDeleteCommand(el domain.CanvasElement, index int) DeleteElement {
	return DeleteElement{Header: newHeader("Delete element"), Element: el, Index: index}
}

func NewMoveCommand(elementID string, from, to domain.Point) MoveElement {
	return MoveElement{Header: newHeader("Move element"), ElementID: elementID, From: from, To: to}
}

func NewResizeCommand(elementID string, from, to domain.Rect) ResizeElement {
	return ResizeElement{Header: newHeader("Resize element"), ElementID: elementID, From: from, To: to}
}

// NewUpdatePropsCommand records merging to into an element's props. from
// holds the previous values (see PreviousValues); keys of to missing from
// from were absent and are removed again on undo.
func NewUpdatePropsCommand(elementID string, from, to map[string]any) UpdateProps {
	return UpdateProps{
		Header:    newHeader("Update properties"),
		ElementID: elementID,
		From:      from,
		To:        to,
		Unset:     absentKeys(from, to),
	}
}

func NewUpdateStylesCommand(elementID string, from, to map[string]any) UpdateStyles {
	return UpdateStyles{
		Header:    newHeader("Update styles"),
		ElementID: elementID,
		From:      from,
		To:        to,
		Unset:     absentKeys(from, to),
	}
}

func NewReorderCommand(fromIndex, toIndex int) ReorderElement {
	return ReorderElement{Header: newHeader("Reorder element"), FromIndex: fromIndex, ToIndex: toIndex}
}

// NewBatchCommand groups commands. An empty description defaults to
// "Batch operation".
func NewBatchCommand(commands []Command, description string) Batch {
	if description == "" {
		description = batchDescription
	}
	return Batch{Header: newHeader(description), Commands: commands}
}

// PreviousValues returns the value bag currently holds for every key of
// patch it has. Keys bag lacks are left out.
func PreviousValues(bag, patch map[string]any) map[string]any {
	from := make(map[string]any, len(patch))
	for k := range patch {
		if v, ok := bag[k]; ok {
			from[k] = v
		}
	}
	return from
}

func absentKeys(from, to map[string]any) []string {
	var keys []string
	for k := range to {
		if _, ok := from[k]; !ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}
