package history

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"

	"pagebuilder/internal/domain"
)

var (
	propKeys  = []string{"content", "color", "href"}
	styleKeys = []string{"padding", "opacity"}
)

func genElements(t *rapid.T) []domain.CanvasElement {
	n := rapid.IntRange(0, 6).Draw(t, "n")
	out := make([]domain.CanvasElement, n)
	for i := range out {
		props := genBag(t, propKeys, `[a-z]{1,4}`)
		styles := genBag(t, styleKeys, `[0-9]{1,2}px`)
		out[i] = domain.CanvasElement{
			ID:      fmt.Sprintf("el-%d", i),
			Type:    rapid.SampledFrom(domain.ElementTypes).Draw(t, "type"),
			X:       float64(rapid.IntRange(0, 500).Draw(t, "x")),
			Y:       float64(rapid.IntRange(0, 500).Draw(t, "y")),
			Width:   float64(rapid.IntRange(1, 300).Draw(t, "w")),
			Height:  float64(rapid.IntRange(1, 300).Draw(t, "h")),
			ZIndex:  i,
			Visible: true,
			Props:   props,
			Styles:  styles,
		}
	}
	return out
}

// genBag draws a bag holding any subset of keys. A bag with no keys is nil,
// the form undo leaves behind once every key is gone.
func genBag(t *rapid.T, keys []string, pattern string) map[string]any {
	var bag map[string]any
	for _, k := range keys {
		if rapid.Bool().Draw(t, "has_"+k) {
			if bag == nil {
				bag = map[string]any{}
			}
			bag[k] = rapid.StringMatching(pattern).Draw(t, k)
		}
	}
	return bag
}

func genPatch(t *rapid.T, keys []string) map[string]any {
	patch := map[string]any{}
	for _, k := range keys {
		if rapid.Bool().Draw(t, "include") {
			patch[k] = rapid.StringMatching(`[A-Z]{1,3}`).Draw(t, "value")
		}
	}
	return patch
}

func fullElement(id string) domain.CanvasElement {
	e := domain.CanvasElement{ID: id, Type: domain.ElementButton, Width: 120, Height: 40, Visible: true,
		Props: map[string]any{}, Styles: map[string]any{}}
	for _, k := range propKeys {
		e.Props[k] = "new"
	}
	for _, k := range styleKeys {
		e.Styles[k] = "0px"
	}
	return e
}

// genCommand draws a command that is valid against elements. seq numbers
// added elements so ids stay unique across a batch.
func genCommand(t *rapid.T, elements []domain.CanvasElement, depth int, seq *int) Command {
	kinds := []CommandType{CommandAdd}
	if len(elements) > 0 {
		kinds = append(kinds, CommandDelete, CommandMove, CommandResize,
			CommandUpdateProps, CommandUpdateStyles, CommandReorder)
	}
	if depth == 0 {
		kinds = append(kinds, CommandBatch)
	}
	kind := rapid.SampledFrom(kinds).Draw(t, "kind")

	pick := func() (int, domain.CanvasElement) {
		i := rapid.IntRange(0, len(elements)-1).Draw(t, "index")
		return i, elements[i]
	}

	switch kind {
	case CommandAdd:
		*seq++
		return NewAddCommand(fullElement(fmt.Sprintf("new-%d", *seq)))
	case CommandDelete:
		i, e := pick()
		return NewDeleteCommand(e, i)
	case CommandMove:
		_, e := pick()
		to := domain.Point{X: float64(rapid.IntRange(-50, 900).Draw(t, "tx")), Y: float64(rapid.IntRange(-50, 900).Draw(t, "ty"))}
		return NewMoveCommand(e.ID, e.Position(), to)
	case CommandResize:
		_, e := pick()
		to := domain.Rect{
			X: e.X, Y: e.Y,
			Width:  float64(rapid.IntRange(1, 800).Draw(t, "tw")),
			Height: float64(rapid.IntRange(1, 800).Draw(t, "th")),
		}
		return NewResizeCommand(e.ID, e.Bounds(), to)
	case CommandUpdateProps:
		_, e := pick()
		to := genPatch(t, propKeys)
		return NewUpdatePropsCommand(e.ID, PreviousValues(e.Props, to), to)
	case CommandUpdateStyles:
		_, e := pick()
		to := genPatch(t, styleKeys)
		return NewUpdateStylesCommand(e.ID, PreviousValues(e.Styles, to), to)
	case CommandReorder:
		n := len(elements)
		return NewReorderCommand(rapid.IntRange(0, n-1).Draw(t, "from"), rapid.IntRange(0, n-1).Draw(t, "to"))
	default:
		// Sub-commands are drawn against the list as it evolves so later
		// ones may depend on earlier ones.
		var subs []Command
		cur := elements
		for i := rapid.IntRange(0, 4).Draw(t, "batchLen"); i > 0; i-- {
			sub := genCommand(t, cur, depth+1, seq)
			subs = append(subs, sub)
			cur = Apply(cur, sub)
		}
		return NewBatchCommand(subs, "")
	}
}

func TestProperty_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		elements := genElements(t)
		var seq int
		cmd := genCommand(t, elements, 0, &seq)

		got := Reverse(Apply(elements, cmd), cmd)
		if diff := cmp.Diff(elements, got); diff != "" {
			t.Fatalf("%s did not round trip (-want +got):\n%s", cmd.Type(), diff)
		}
	})
}

func TestProperty_ApplyDoesNotMutateInput(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		elements := genElements(t)
		snapshot := make([]domain.CanvasElement, len(elements))
		for i, e := range elements {
			e.Props = cloneBag(e.Props)
			e.Styles = cloneBag(e.Styles)
			snapshot[i] = e
		}

		var seq int
		cmd := genCommand(t, elements, 0, &seq)
		Reverse(Apply(elements, cmd), cmd)

		if diff := cmp.Diff(snapshot, elements); diff != "" {
			t.Fatalf("input mutated by %s (-want +got):\n%s", cmd.Type(), diff)
		}
	})
}

func TestProperty_UndoRedoReplay(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := NewManager(rapid.IntRange(1, 8).Draw(t, "maxSize"), Hooks{})
		list := genElements(t)
		states := [][]domain.CanvasElement{list}

		var seq int
		steps := rapid.IntRange(1, 12).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			cmd := genCommand(t, list, 0, &seq)
			m.Execute(cmd)
			list = Apply(list, cmd)
			states = append(states, list)
		}

		// Undo everything still undoable, then redo it all.
		undoable := m.UndoCount()
		for i := 0; i < undoable; i++ {
			list = Reverse(list, m.Undo())
		}
		if diff := cmp.Diff(states[len(states)-1-undoable], list); diff != "" {
			t.Fatalf("undo chain mismatch:\n%s", diff)
		}
		for m.CanRedo() {
			list = Apply(list, m.Redo())
		}
		if diff := cmp.Diff(states[len(states)-1], list); diff != "" {
			t.Fatalf("redo chain mismatch:\n%s", diff)
		}
	})
}

func cloneBag(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
