package history

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"pagebuilder/internal/domain"
)

func el(id string, x, y float64) domain.CanvasElement {
	return domain.CanvasElement{
		ID:      id,
		Type:    domain.ElementText,
		X:       x,
		Y:       y,
		Width:   100,
		Height:  40,
		Visible: true,
		Props:   map[string]any{"content": "text " + id, "color": "#000"},
	}
}

func ids(elements []domain.CanvasElement) []string {
	out := make([]string, len(elements))
	for i, e := range elements {
		out[i] = e.ID
	}
	return out
}

func TestApply_Add(t *testing.T) {
	x := el("x", 0, 0)
	got := Apply(nil, NewAddCommand(x))
	require.Equal(t, []string{"x"}, ids(got))
}

func TestApply_Delete(t *testing.T) {
	list := []domain.CanvasElement{el("a", 0, 0), el("b", 0, 0), el("c", 0, 0)}
	got := Apply(list, NewDeleteCommand(list[1], 1))
	require.Equal(t, []string{"a", "c"}, ids(got))
	require.Equal(t, []string{"a", "b", "c"}, ids(list), "input must not change")
}

func TestApply_MoveAndResize(t *testing.T) {
	list := []domain.CanvasElement{el("a", 10, 20)}

	moved := Apply(list, NewMoveCommand("a", domain.Point{X: 10, Y: 20}, domain.Point{X: 50, Y: 60}))
	require.Equal(t, domain.Point{X: 50, Y: 60}, moved[0].Position())
	require.Equal(t, 10.0, list[0].X)

	resized := Apply(list, NewResizeCommand("a",
		domain.Rect{X: 10, Y: 20, Width: 100, Height: 40},
		domain.Rect{X: 0, Y: 0, Width: 300, Height: 200}))
	require.Equal(t, domain.Rect{X: 0, Y: 0, Width: 300, Height: 200}, resized[0].Bounds())
}

func TestApply_UpdatePropsKeepsOtherKeys(t *testing.T) {
	list := []domain.CanvasElement{el("a", 0, 0)}
	to := map[string]any{"color": "#f00", "href": "/about"}
	cmd := NewUpdatePropsCommand("a", PreviousValues(list[0].Props, to), to)

	got := Apply(list, cmd)
	require.Equal(t, map[string]any{"content": "text a", "color": "#f00", "href": "/about"}, got[0].Props)
	require.Equal(t, "#000", list[0].Props["color"], "original props map must not be written")
}

func TestApply_UpdateStylesOnElementWithoutStyles(t *testing.T) {
	list := []domain.CanvasElement{el("a", 0, 0)}
	got := Apply(list, NewUpdateStylesCommand("a", map[string]any{"padding": nil}, map[string]any{"padding": "8px"}))
	require.Equal(t, map[string]any{"padding": "8px"}, got[0].Styles)
	require.Nil(t, list[0].Styles)
}

func TestApply_MissingElementIsNoop(t *testing.T) {
	list := []domain.CanvasElement{el("a", 0, 0)}
	got := Apply(list, NewMoveCommand("ghost", domain.Point{}, domain.Point{X: 1, Y: 1}))
	require.Empty(t, cmp.Diff(list, got))
}

func TestApply_NilCommandReturnsInput(t *testing.T) {
	list := []domain.CanvasElement{el("a", 0, 0)}
	require.Empty(t, cmp.Diff(list, Apply(list, nil)))
	require.Empty(t, cmp.Diff(list, Reverse(list, nil)))
}

func TestReorder(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []string
	}{
		{"first to last", 0, 2, []string{"b", "c", "a"}},
		{"last to first", 2, 0, []string{"c", "a", "b"}},
		{"middle forward", 1, 2, []string{"a", "c", "b"}},
		{"same index", 1, 1, []string{"a", "b", "c"}},
		{"from out of range", 3, 0, []string{"a", "b", "c"}},
		{"negative to", 0, -1, []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := []domain.CanvasElement{el("a", 0, 0), el("b", 0, 0), el("c", 0, 0)}
			cmd := NewReorderCommand(tt.from, tt.to)
			got := Apply(list, cmd)
			require.Equal(t, tt.want, ids(got))
			require.Equal(t, []string{"a", "b", "c"}, ids(Reverse(got, cmd)))
		})
	}
}

func TestReverse_DeleteRestoresPosition(t *testing.T) {
	list := []domain.CanvasElement{el("a", 0, 0), el("b", 0, 0), el("c", 0, 0)}
	cmd := NewDeleteCommand(list[1], 1)

	after := Apply(list, cmd)
	require.Equal(t, []string{"a", "c"}, ids(after))

	restored := Reverse(after, cmd)
	require.Equal(t, []string{"a", "b", "c"}, ids(restored))
	require.Empty(t, cmp.Diff(list, restored))
}

func TestReverse_DeleteIndexPastEndAppends(t *testing.T) {
	list := []domain.CanvasElement{el("a", 0, 0)}
	got := Reverse(list, NewDeleteCommand(el("z", 0, 0), 9))
	require.Equal(t, []string{"a", "z"}, ids(got))
}

func TestReverse_UpdatePropsMergesFrom(t *testing.T) {
	list := []domain.CanvasElement{el("a", 0, 0)}
	to := map[string]any{"color": "#f00"}
	cmd := NewUpdatePropsCommand("a", PreviousValues(list[0].Props, to), to)

	after := Apply(list, cmd)
	// Someone else edits content in between; undo only restores color.
	after = Apply(after, NewUpdatePropsCommand("a", nil, map[string]any{"content": "edited"}))

	got := Reverse(after, cmd)
	require.Equal(t, "#000", got[0].Props["color"])
	require.Equal(t, "edited", got[0].Props["content"])
}

func TestReverse_UpdateRemovesKeysItAdded(t *testing.T) {
	list := []domain.CanvasElement{{ID: "a", Type: domain.ElementLink, Props: map[string]any{"content": "hi"}}}
	to := map[string]any{"content": "docs", "href": "/x"}
	cmd := NewUpdatePropsCommand("a", PreviousValues(list[0].Props, to), to)
	require.Equal(t, []string{"href"}, cmd.Unset)

	after := Apply(list, cmd)
	require.Equal(t, map[string]any{"content": "docs", "href": "/x"}, after[0].Props)

	got := Reverse(after, cmd)
	if diff := cmp.Diff(list, got); diff != "" {
		t.Fatalf("undo left added keys behind (-want +got):\n%s", diff)
	}
	require.Equal(t, after, Apply(got, cmd), "redo sets the removed key again")

	styles := NewUpdateStylesCommand("a", PreviousValues(nil, map[string]any{"gap": "4px"}), map[string]any{"gap": "4px"})
	require.Nil(t, Reverse(Apply(list, styles), styles)[0].Styles, "emptied bag goes back to nil")
}

func TestRoundTrip_EachKind(t *testing.T) {
	base := []domain.CanvasElement{el("a", 0, 0), el("b", 10, 10), el("c", 20, 20)}
	base[1].Styles = map[string]any{"opacity": 1.0}

	propsTo := map[string]any{"content": "new"}
	stylesTo := map[string]any{"opacity": 0.5}

	commands := map[string]Command{
		"add":     NewAddCommand(el("d", 5, 5)),
		"delete":  NewDeleteCommand(base[0], 0),
		"move":    NewMoveCommand("b", base[1].Position(), domain.Point{X: 99, Y: 99}),
		"resize":  NewResizeCommand("c", base[2].Bounds(), domain.Rect{X: 1, Y: 2, Width: 3, Height: 4}),
		"props":   NewUpdatePropsCommand("a", PreviousValues(base[0].Props, propsTo), propsTo),
		"styles":  NewUpdateStylesCommand("b", PreviousValues(base[1].Styles, stylesTo), stylesTo),
		"reorder": NewReorderCommand(2, 0),
		"batch": NewBatchCommand([]Command{
			NewMoveCommand("a", base[0].Position(), domain.Point{X: 7, Y: 7}),
			NewAddCommand(el("e", 0, 0)),
		}, ""),
	}

	for name, cmd := range commands {
		t.Run(name, func(t *testing.T) {
			got := Reverse(Apply(base, cmd), cmd)
			if diff := cmp.Diff(base, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// Two dependent moves of the same element: undoing them first-to-last would
// leave the element at the intermediate position.
func TestReverse_BatchUnwindsLastFirst(t *testing.T) {
	list := []domain.CanvasElement{el("a", 0, 0)}
	batch := NewBatchCommand([]Command{
		NewMoveCommand("a", domain.Point{X: 0, Y: 0}, domain.Point{X: 10, Y: 10}),
		NewMoveCommand("a", domain.Point{X: 10, Y: 10}, domain.Point{X: 20, Y: 20}),
	}, "Drag")

	after := Apply(list, batch)
	require.Equal(t, domain.Point{X: 20, Y: 20}, after[0].Position())

	got := Reverse(after, batch)
	require.Equal(t, domain.Point{X: 0, Y: 0}, got[0].Position())

	forwardOrder := after
	for _, sub := range batch.Commands {
		forwardOrder = Reverse(forwardOrder, sub)
	}
	require.Equal(t, domain.Point{X: 10, Y: 10}, forwardOrder[0].Position(),
		"undoing in execution order must not restore the original state")
}

func TestReverse_BatchAddThenReorder(t *testing.T) {
	list := []domain.CanvasElement{el("a", 0, 0), el("b", 0, 0)}
	batch := NewBatchCommand([]Command{
		NewAddCommand(el("c", 0, 0)),
		NewReorderCommand(2, 0),
	}, "Insert at top")

	after := Apply(list, batch)
	require.Equal(t, []string{"c", "a", "b"}, ids(after))
	require.Equal(t, []string{"a", "b"}, ids(Reverse(after, batch)))
}

func TestSummarize(t *testing.T) {
	s := Summarize(NewDeleteCommand(el("a", 0, 0), 0))
	require.Equal(t, CommandDelete, s.Type)
	require.Equal(t, "Delete element", s.Description)
	require.Equal(t, "a", s.ElementID)

	b := Summarize(NewBatchCommand([]Command{NewReorderCommand(0, 1)}, ""))
	require.Equal(t, "Batch operation", b.Description)
	require.Equal(t, 1, b.Size)
}
