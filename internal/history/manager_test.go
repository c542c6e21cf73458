package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pagebuilder/internal/domain"
)

func TestNewManager_DefaultSize(t *testing.T) {
	require.Equal(t, DefaultMaxSize, NewManager(0, Hooks{}).MaxSize())
	require.Equal(t, DefaultMaxSize, NewManager(-3, Hooks{}).MaxSize())
	require.Equal(t, 7, NewManager(7, Hooks{}).MaxSize())
}

func TestManager_EmptyUndoRedoAreNoops(t *testing.T) {
	m := NewManager(10, Hooks{})

	require.Nil(t, m.Undo())
	require.Nil(t, m.Redo())
	require.False(t, m.CanUndo())
	require.False(t, m.CanRedo())
	require.Zero(t, m.UndoCount())
}

func TestManager_ExecuteUndoRedo(t *testing.T) {
	var executed, undone, redone []Command
	m := NewManager(10, Hooks{
		OnExecute: func(c Command) { executed = append(executed, c) },
		OnUndo:    func(c Command) { undone = append(undone, c) },
		OnRedo:    func(c Command) { redone = append(redone, c) },
	})

	a := NewAddCommand(el("a", 0, 0))
	m.Execute(a)
	require.True(t, m.CanUndo())
	require.Len(t, executed, 1)

	got := m.Undo()
	require.Equal(t, a, got)
	require.False(t, m.CanUndo())
	require.True(t, m.CanRedo())
	require.Len(t, undone, 1)

	got = m.Redo()
	require.Equal(t, a, got)
	require.Equal(t, 1, m.UndoCount())
	require.Zero(t, m.RedoCount())
	require.Len(t, redone, 1)
}

func TestManager_ExecuteClearsRedo(t *testing.T) {
	m := NewManager(10, Hooks{})
	m.Execute(NewAddCommand(el("a", 0, 0)))
	m.Undo()
	require.True(t, m.CanRedo())

	m.Execute(NewAddCommand(el("b", 0, 0)))
	require.False(t, m.CanRedo())
	require.Nil(t, m.Redo())
}

func TestManager_EvictsOldest(t *testing.T) {
	const maxSize = 5
	m := NewManager(maxSize, Hooks{})

	var all []Command
	for i := 0; i < maxSize+5; i++ {
		c := NewMoveCommand("a", domain.Point{X: float64(i)}, domain.Point{X: float64(i + 1)})
		all = append(all, c)
		m.Execute(c)
	}
	require.Equal(t, maxSize, m.UndoCount())

	var undone []Command
	for m.CanUndo() {
		undone = append(undone, m.Undo())
	}
	require.Len(t, undone, maxSize)
	// Most recent first; the five oldest are gone.
	for i, c := range undone {
		require.Equal(t, all[len(all)-1-i], c)
	}
	require.Nil(t, m.Undo())
}

func TestManager_ClearAndState(t *testing.T) {
	m := NewManager(3, Hooks{})
	a := NewAddCommand(el("a", 0, 0))
	b := NewAddCommand(el("b", 0, 0))
	m.Execute(a)
	m.Execute(b)
	m.Undo()

	st := m.State()
	require.Equal(t, []Command{a}, st.Undo)
	require.Equal(t, []Command{b}, st.Redo)
	require.Equal(t, 3, st.MaxSize)

	// The copy is detached from the manager.
	st.Undo[0] = nil
	require.Equal(t, a, m.State().Undo[0])

	m.Clear()
	require.False(t, m.CanUndo())
	require.False(t, m.CanRedo())
	require.Empty(t, m.State().Undo)
}

func TestManager_NilExecuteIgnored(t *testing.T) {
	calls := 0
	m := NewManager(3, Hooks{OnExecute: func(Command) { calls++ }})
	m.Execute(nil)
	require.Zero(t, m.UndoCount())
	require.Zero(t, calls)
}

func TestFactories_StampTimestamp(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	orig := now
	now = func() time.Time { return fixed }
	defer func() { now = orig }()

	c := NewResizeCommand("a", domain.Rect{}, domain.Rect{Width: 1})
	require.Equal(t, fixed, c.Timestamp)
	require.Equal(t, "Resize element", c.Description)
	require.Equal(t, CommandResize, c.Type())
}

// Scenario: add then undo.
func TestScenario_AddThenUndo(t *testing.T) {
	m := NewManager(50, Hooks{})
	var list []domain.CanvasElement

	cmd := NewAddCommand(el("x", 0, 0))
	m.Execute(cmd)
	list = Apply(list, cmd)
	require.Equal(t, []string{"x"}, ids(list))

	undone := m.Undo()
	require.NotNil(t, undone)
	list = Reverse(list, undone)
	require.Empty(t, list)
}

// Scenario: delete then undo puts the element back where it was.
func TestScenario_DeleteThenUndo(t *testing.T) {
	m := NewManager(50, Hooks{})
	list := []domain.CanvasElement{el("a", 0, 0), el("b", 0, 0), el("c", 0, 0)}

	cmd := NewDeleteCommand(list[1], 1)
	m.Execute(cmd)
	list = Apply(list, cmd)
	require.Equal(t, []string{"a", "c"}, ids(list))

	list = Reverse(list, m.Undo())
	require.Equal(t, []string{"a", "b", "c"}, ids(list))
}

// Scenario: reorder, undo, redo.
func TestScenario_ReorderUndoRedo(t *testing.T) {
	m := NewManager(50, Hooks{})
	list := []domain.CanvasElement{el("a", 0, 0), el("b", 0, 0), el("c", 0, 0)}

	cmd := NewReorderCommand(0, 2)
	m.Execute(cmd)
	list = Apply(list, cmd)
	require.Equal(t, []string{"b", "c", "a"}, ids(list))

	list = Reverse(list, m.Undo())
	require.Equal(t, []string{"a", "b", "c"}, ids(list))

	list = Apply(list, m.Redo())
	require.Equal(t, []string{"b", "c", "a"}, ids(list))
}
