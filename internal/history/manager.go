package history

import "slices"

// DefaultMaxSize is the undo depth used when NewManager is given a
// non-positive size.
const DefaultMaxSize = 50

// Hooks are optional callbacks fired after the matching Manager operation.
type Hooks struct {
	OnExecute func(Command)
	OnUndo    func(Command)
	OnRedo    func(Command)
}

// Manager is a bounded undo/redo log. It is not safe for concurrent use;
// one editing session owns one Manager.
type Manager struct {
	undo    []Command
	redo    []Command
	maxSize int
	hooks   Hooks
}

// State is a copy of a Manager's stacks, oldest entry first.
type State struct {
	Undo    []Command `json:"undo"`
	Redo    []Command `json:"redo"`
	MaxSize int       `json:"maxSize"`
}

// NewManager creates a manager keeping at most maxSize undo entries.
func NewManager(maxSize int, hooks Hooks) *Manager {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Manager{maxSize: maxSize, hooks: hooks}
}

// Execute records cmd as the most recent edit. The redo stack is discarded
// and, past maxSize, the oldest undo entry is dropped for good.
func (m *Manager) Execute(cmd Command) {
	if cmd == nil {
		return
	}
	m.undo = append(m.undo, cmd)
	if len(m.undo) > m.maxSize {
		m.undo = slices.Delete(m.undo, 0, 1)
	}
	m.redo = nil
	if m.hooks.OnExecute != nil {
		m.hooks.OnExecute(cmd)
	}
}

// Undo pops the most recent command onto the redo stack and returns it so
// the caller can reverse it. It returns nil when there is nothing to undo.
func (m *Manager) Undo() Command {
	if len(m.undo) == 0 {
		return nil
	}
	cmd := m.undo[len(m.undo)-1]
	m.undo[len(m.undo)-1] = nil
	m.undo = m.undo[:len(m.undo)-1]
	m.redo = append(m.redo, cmd)
	if m.hooks.OnUndo != nil {
		m.hooks.OnUndo(cmd)
	}
	return cmd
}

// Redo pops the most recently undone command back onto the undo stack and
// returns it. It returns nil when there is nothing to redo.
func (m *Manager) Redo() Command {
	if len(m.redo) == 0 {
		return nil
	}
	cmd := m.redo[len(m.redo)-1]
	m.redo[len(m.redo)-1] = nil
	m.redo = m.redo[:len(m.redo)-1]
	m.undo = append(m.undo, cmd)
	if m.hooks.OnRedo != nil {
		m.hooks.OnRedo(cmd)
	}
	return cmd
}

// PeekUndo returns the command Undo would pop, without popping it or
// firing hooks. It returns nil when there is nothing to undo.
func (m *Manager) PeekUndo() Command {
	if len(m.undo) == 0 {
		return nil
	}
	return m.undo[len(m.undo)-1]
}

// PeekRedo is PeekUndo for the redo stack.
func (m *Manager) PeekRedo() Command {
	if len(m.redo) == 0 {
		return nil
	}
	return m.redo[len(m.redo)-1]
}

func (m *Manager) CanUndo() bool { return len(m.undo) > 0 }
func (m *Manager) CanRedo() bool { return len(m.redo) > 0 }
func (m *Manager) UndoCount() int { return len(m.undo) }
func (m *Manager) RedoCount() int { return len(m.redo) }
func (m *Manager) MaxSize() int { return m.maxSize }

// Clear empties both stacks.
func (m *Manager) Clear() {
	m.undo = nil
	m.redo = nil
}

// State returns a copy of both stacks.
func (m *Manager) State() State {
	return State{
		Undo:    slices.Clone(m.undo),
		Redo:    slices.Clone(m.redo),
		MaxSize: m.maxSize,
	}
}
