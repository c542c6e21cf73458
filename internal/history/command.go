// Package history records reversible edits to a page canvas and keeps a
// bounded undo/redo log of them.
//
// A Command describes one completed mutation of an element list. Apply and
// Reverse are pure functions over element lists; Manager only stores
// commands and never touches element state. Callers keep their own element
// list in step by applying or reversing the commands the manager hands back.
package history

import (
	"time"

	"pagebuilder/internal/domain"
)

// CommandType tags a command variant.
type CommandType string

const (
	CommandAdd          CommandType = "ADD_ELEMENT"
	CommandDelete       CommandType = "DELETE_ELEMENT"
	CommandMove         CommandType = "MOVE_ELEMENT"
	CommandResize       CommandType = "RESIZE_ELEMENT"
	CommandUpdateProps  CommandType = "UPDATE_PROPS"
	CommandUpdateStyles CommandType = "UPDATE_STYLES"
	CommandReorder      CommandType = "REORDER_ELEMENT"
	CommandBatch        CommandType = "BATCH"
)

// Header is the part every command carries.
type Header struct {
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
}

// Head returns the command header.
func (h Header) Head() Header { return h }

func (Header) isCommand() {}

// Command is one of AddElement, DeleteElement, MoveElement, ResizeElement,
// UpdateProps, UpdateStyles, ReorderElement or Batch.
type Command interface {
	Type() CommandType
	Head() Header
	isCommand()
}

// AddElement appends Element to the list.
type AddElement struct {
	Header
	Element domain.CanvasElement `json:"element"`
}

// DeleteElement removes Element. Index is where it sat before removal so
// undo can put it back in the same paint position.
type DeleteElement struct {
	Header
	Element domain.CanvasElement `json:"element"`
	Index   int                  `json:"index"`
}

// MoveElement changes an element's position.
type MoveElement struct {
	Header
	ElementID string       `json:"elementId"`
	From      domain.Point `json:"from"`
	To        domain.Point `json:"to"`
}

// ResizeElement changes an element's position and size.
type ResizeElement struct {
	Header
	ElementID string      `json:"elementId"`
	From      domain.Rect `json:"from"`
	To        domain.Rect `json:"to"`
}

// UpdateProps shallow-merges To into the element's Props. From holds the
// previous values of the keys in To that the element already had; Unset
// lists the keys of To it did not have, which undo removes again.
type UpdateProps struct {
	Header
	ElementID string         `json:"elementId"`
	From      map[string]any `json:"from"`
	To        map[string]any `json:"to"`
	Unset     []string       `json:"unset,omitempty"`
}

// UpdateStyles shallow-merges To into the element's Styles. From and Unset
// work as in UpdateProps.
type UpdateStyles struct {
	Header
	ElementID string         `json:"elementId"`
	From      map[string]any `json:"from"`
	To        map[string]any `json:"to"`
	Unset     []string       `json:"unset,omitempty"`
}

// ReorderElement moves the element at FromIndex to ToIndex.
type ReorderElement struct {
	Header
	FromIndex int `json:"fromIndex"`
	ToIndex   int `json:"toIndex"`
}

// Batch groups commands into a single undo/redo unit.
type Batch struct {
	Header
	Commands []Command `json:"commands"`
}

func (AddElement) Type() CommandType { return CommandAdd }
func (DeleteElement) Type() CommandType { return CommandDelete }
func (MoveElement) Type() CommandType { return CommandMove }
func (ResizeElement) Type() CommandType { return CommandResize }
func (UpdateProps) Type() CommandType { return CommandUpdateProps }
func (UpdateStyles) Type() CommandType { return CommandUpdateStyles }
func (ReorderElement) Type() CommandType { return CommandReorder }
func (Batch) Type() CommandType { return CommandBatch }

// Summary is a compact, serialisable view of a command.
type Summary struct {
	Type        CommandType `json:"type"`
	Description string      `json:"description"`
	Timestamp   time.Time   `json:"timestamp"`
	ElementID   string      `json:"elementId,omitempty"`
	Size        int         `json:"size,omitempty"` // sub-command count for batches
}

// Summarize returns the summary of c.
func Summarize(c Command) Summary {
	h := c.Head()
	s := Summary{Type: c.Type(), Description: h.Description, Timestamp: h.Timestamp}
	switch v := c.(type) {
	case AddElement:
		s.ElementID = v.Element.ID
	case DeleteElement:
		s.ElementID = v.Element.ID
	case MoveElement:
		s.ElementID = v.ElementID
	case ResizeElement:
		s.ElementID = v.ElementID
	case UpdateProps:
		s.ElementID = v.ElementID
	case UpdateStyles:
		s.ElementID = v.ElementID
	case Batch:
		s.Size = len(v.Commands)
	}
	return s
}
