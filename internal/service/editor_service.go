package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/history"
	"pagebuilder/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Editor Service: undoable edits to a page canvas
// ─────────────────────────────────────────────────────────────

var (
	ErrElementNotFound = errors.New("element not found")
	ErrElementExists   = errors.New("element already exists")
	ErrElementLocked   = errors.New("element is locked")
	ErrInvalidElement  = errors.New("invalid element")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// session is the editing state of one open page. mu serialises every
// access so the history manager only ever sees a single actor.
type session struct {
	mu       sync.Mutex
	pageID   string
	elements []domain.CanvasElement
	history  *history.Manager
	dirty    bool
	version  int
}

// EditorOptions tunes the editor service.
type EditorOptions struct {
	MaxHistory int           // undo depth per page, history.DefaultMaxSize when <= 0
	SessionTTL time.Duration // idle time before a session is dropped, never when <= 0

	// CleanupInterval is how often expired sessions are collected. Defaults
	// to SessionTTL.
	CleanupInterval time.Duration
}

// EvictFunc is called when an open session is dropped, by Close or by idle
// expiry. dirty reports whether edits were made since the last checkpoint.
type EvictFunc func(pageID string, elements []domain.CanvasElement, dirty bool)

// EditorService owns one editing session per open page. Every edit is
// applied to the in-memory element list, recorded in the page's history and
// written through to the element store.
type EditorService struct {
	pages      *storage.SiteStore
	elements   *storage.ElementStore
	emitter    EventEmitter
	log        *zap.Logger
	maxHistory int

	openMu   sync.Mutex
	sessions *cache.Cache

	evictMu sync.Mutex
	onEvict []EvictFunc
}

// NewEditorService creates an EditorService.
func NewEditorService(
	pages *storage.SiteStore,
	elements *storage.ElementStore,
	emitter EventEmitter,
	log *zap.Logger,
	opts EditorOptions,
) *EditorService {
	if log == nil {
		log = zap.NewNop()
	}
	ttl := opts.SessionTTL
	cleanup := ttl
	if opts.CleanupInterval > 0 {
		cleanup = opts.CleanupInterval
	}
	if ttl <= 0 {
		ttl = cache.NoExpiration
		cleanup = 0
	}
	s := &EditorService{
		pages:      pages,
		elements:   elements,
		emitter:    emitter,
		log:        log,
		maxHistory: opts.MaxHistory,
		sessions:   cache.New(ttl, cleanup),
	}
	s.sessions.OnEvicted(s.evicted)
	return s
}

// OnSessionEvicted registers fn to run whenever a session is dropped.
func (s *EditorService) OnSessionEvicted(fn EvictFunc) {
	s.evictMu.Lock()
	defer s.evictMu.Unlock()
	s.onEvict = append(s.onEvict, fn)
}

func (s *EditorService) evicted(pageID string, v any) {
	sess := v.(*session)
	sess.mu.Lock()
	elements, dirty := sess.elements, sess.dirty
	sess.mu.Unlock()

	s.log.Debug("editor session closed", zap.String("pageId", pageID), zap.Bool("dirty", dirty))

	s.evictMu.Lock()
	hooks := slices.Clone(s.onEvict)
	s.evictMu.Unlock()
	for _, fn := range hooks {
		fn(pageID, elements, dirty)
	}
}

// session returns the open session of pageID, loading it from the store on
// first use. Each access pushes back the idle expiry.
func (s *EditorService) session(pageID string) (*session, error) {
	s.openMu.Lock()
	defer s.openMu.Unlock()

	if v, ok := s.sessions.Get(pageID); ok {
		s.sessions.SetDefault(pageID, v)
		return v.(*session), nil
	}
	// An expired session the janitor has not collected yet would be
	// overwritten silently below; deleting it runs the eviction hooks.
	s.sessions.Delete(pageID)
	if _, err := s.pages.GetPage(pageID); err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	elements, err := s.elements.ListElements(pageID)
	if err != nil {
		return nil, fmt.Errorf("load elements: %w", err)
	}

	sess := &session{pageID: pageID, elements: elements}
	sess.history = history.NewManager(s.maxHistory, history.Hooks{
		OnExecute: func(cmd history.Command) { s.emitHistory(sess, "execute", cmd) },
		OnUndo:    func(cmd history.Command) { s.emitHistory(sess, "undo", cmd) },
		OnRedo:    func(cmd history.Command) { s.emitHistory(sess, "redo", cmd) },
	})
	s.sessions.SetDefault(pageID, sess)
	s.log.Debug("editor session opened", zap.String("pageId", pageID), zap.Int("elements", len(elements)))
	return sess, nil
}

// ── Session lifecycle ──────────────────────────────────────

// Open loads pageID into an editing session and returns its state.
func (s *EditorService) Open(pageID string) (*domain.PageState, error) {
	sess, err := s.session(pageID)
	if err != nil {
		return nil, err
	}
	page, err := s.pages.GetPage(pageID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return &domain.PageState{Page: *page, Elements: slices.Clone(sess.elements)}, nil
}

// Elements returns the current element list of pageID in paint order.
func (s *EditorService) Elements(pageID string) ([]domain.CanvasElement, error) {
	sess, err := s.session(pageID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return slices.Clone(sess.elements), nil
}

// Close drops the session of pageID. The element list is already stored;
// only the undo history is lost.
func (s *EditorService) Close(pageID string) {
	s.openMu.Lock()
	defer s.openMu.Unlock()
	s.sessions.Delete(pageID)
}

// OpenPages returns the ids of pages with a live session.
func (s *EditorService) OpenPages() []string {
	items := s.sessions.Items()
	ids := make([]string, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// ── History ────────────────────────────────────────────────

// Execute applies cmd to pageID and records it as the latest edit.
func (s *EditorService) Execute(ctx context.Context, pageID string, cmd history.Command) ([]domain.CanvasElement, error) {
	var out []domain.CanvasElement
	_, err := s.edit(ctx, pageID, func(sess *session) (history.Command, error) {
		return cmd, nil
	}, func(sess *session) { out = slices.Clone(sess.elements) })
	return out, err
}

// Undo reverses the latest edit of pageID and returns it, or nil when there
// is nothing to undo.
func (s *EditorService) Undo(ctx context.Context, pageID string) (history.Command, error) {
	sess, err := s.session(pageID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	// Pop only once the reversed canvas is stored, so a failed write leaves
	// the stacks and their subscribers untouched.
	cmd := sess.history.PeekUndo()
	if cmd == nil {
		return nil, nil
	}
	if err := s.commit(sess, history.Reverse(sess.elements, cmd)); err != nil {
		return nil, fmt.Errorf("undo %s: %w", cmd.Head().Description, err)
	}
	sess.history.Undo()
	s.emitElements(ctx, sess, "Undo: "+cmd.Head().Description)
	return cmd, nil
}

// Redo re-applies the latest undone edit of pageID and returns it, or nil
// when there is nothing to redo.
func (s *EditorService) Redo(ctx context.Context, pageID string) (history.Command, error) {
	sess, err := s.session(pageID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	cmd := sess.history.PeekRedo()
	if cmd == nil {
		return nil, nil
	}
	if err := s.commit(sess, history.Apply(sess.elements, cmd)); err != nil {
		return nil, fmt.Errorf("redo %s: %w", cmd.Head().Description, err)
	}
	sess.history.Redo()
	s.emitElements(ctx, sess, "Redo: "+cmd.Head().Description)
	return cmd, nil
}

// HistoryState describes the undo/redo stacks of one page.
type HistoryState struct {
	PageID    string            `json:"pageId"`
	CanUndo   bool              `json:"canUndo"`
	CanRedo   bool              `json:"canRedo"`
	UndoCount int               `json:"undoCount"`
	RedoCount int               `json:"redoCount"`
	MaxSize   int               `json:"maxSize"`
	Undo      []history.Summary `json:"undo"`
	Redo      []history.Summary `json:"redo"`
}

func (s *EditorService) HistoryState(pageID string) (*HistoryState, error) {
	sess, err := s.session(pageID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return historyState(sess), nil
}

func historyState(sess *session) *HistoryState {
	st := sess.history.State()
	hs := &HistoryState{
		PageID:    sess.pageID,
		CanUndo:   sess.history.CanUndo(),
		CanRedo:   sess.history.CanRedo(),
		UndoCount: len(st.Undo),
		RedoCount: len(st.Redo),
		MaxSize:   st.MaxSize,
		Undo:      make([]history.Summary, 0, len(st.Undo)),
		Redo:      make([]history.Summary, 0, len(st.Redo)),
	}
	for _, c := range st.Undo {
		hs.Undo = append(hs.Undo, history.Summarize(c))
	}
	for _, c := range st.Redo {
		hs.Redo = append(hs.Redo, history.Summarize(c))
	}
	return hs
}

// ClearHistory forgets the undo and redo stacks of pageID. The canvas is
// left as it is.
func (s *EditorService) ClearHistory(ctx context.Context, pageID string) error {
	sess, err := s.session(pageID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.history.Clear()
	s.emitter.Emit(ctx, EventHistory, HistoryEvent{Action: "clear", State: historyState(sess)})
	return nil
}

// ── Edits ──────────────────────────────────────────────────

// AddElement appends el to the page. A missing id is generated; a zero
// z-index puts the element on top.
func (s *EditorService) AddElement(ctx context.Context, pageID string, el domain.CanvasElement) (domain.CanvasElement, error) {
	_, err := s.edit(ctx, pageID, func(sess *session) (history.Command, error) {
		if !el.Type.Valid() {
			return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidElement, el.Type)
		}
		if el.Width < 0 || el.Height < 0 {
			return nil, fmt.Errorf("%w: negative size", ErrInvalidElement)
		}
		if el.ID == "" {
			el.ID = uuid.New().String()
		}
		if domain.IndexOf(sess.elements, el.ID) >= 0 {
			return nil, fmt.Errorf("add %s: %w", el.ID, ErrElementExists)
		}
		if el.Props == nil {
			el.Props = map[string]any{}
		}
		if el.ZIndex == 0 {
			el.ZIndex = topZ(sess.elements) + 1
		}
		return history.NewAddCommand(el), nil
	}, nil)
	return el, err
}

// DeleteElement removes an unlocked element, remembering its index for undo.
func (s *EditorService) DeleteElement(ctx context.Context, pageID, elementID string) error {
	_, err := s.edit(ctx, pageID, func(sess *session) (history.Command, error) {
		el, err := unlocked(sess, elementID)
		if err != nil {
			return nil, err
		}
		idx := domain.IndexOf(sess.elements, elementID)
		return history.NewDeleteCommand(el, idx), nil
	}, nil)
	return err
}

// MoveElement moves an element's top-left corner to to.
func (s *EditorService) MoveElement(ctx context.Context, pageID, elementID string, to domain.Point) error {
	_, err := s.edit(ctx, pageID, func(sess *session) (history.Command, error) {
		el, err := unlocked(sess, elementID)
		if err != nil {
			return nil, err
		}
		if el.Position() == to {
			return nil, nil
		}
		return history.NewMoveCommand(elementID, el.Position(), to), nil
	}, nil)
	return err
}

// ResizeElement changes an element's geometry.
func (s *EditorService) ResizeElement(ctx context.Context, pageID, elementID string, to domain.Rect) error {
	_, err := s.edit(ctx, pageID, func(sess *session) (history.Command, error) {
		if to.Width <= 0 || to.Height <= 0 {
			return nil, fmt.Errorf("%w: size must be positive", ErrInvalidElement)
		}
		el, err := unlocked(sess, elementID)
		if err != nil {
			return nil, err
		}
		if el.Bounds() == to {
			return nil, nil
		}
		return history.NewResizeCommand(elementID, el.Bounds(), to), nil
	}, nil)
	return err
}

// UpdateProps shallow-merges patch into an element's props.
func (s *EditorService) UpdateProps(ctx context.Context, pageID, elementID string, patch map[string]any) error {
	_, err := s.edit(ctx, pageID, func(sess *session) (history.Command, error) {
		if len(patch) == 0 {
			return nil, nil
		}
		idx, err := find(sess, elementID)
		if err != nil {
			return nil, err
		}
		from := history.PreviousValues(sess.elements[idx].Props, patch)
		return history.NewUpdatePropsCommand(elementID, from, patch), nil
	}, nil)
	return err
}

// UpdateStyles shallow-merges patch into an element's styles.
func (s *EditorService) UpdateStyles(ctx context.Context, pageID, elementID string, patch map[string]any) error {
	_, err := s.edit(ctx, pageID, func(sess *session) (history.Command, error) {
		if len(patch) == 0 {
			return nil, nil
		}
		idx, err := find(sess, elementID)
		if err != nil {
			return nil, err
		}
		from := history.PreviousValues(sess.elements[idx].Styles, patch)
		return history.NewUpdateStylesCommand(elementID, from, patch), nil
	}, nil)
	return err
}

// Reorder moves an element to position toIndex in paint order.
func (s *EditorService) Reorder(ctx context.Context, pageID, elementID string, toIndex int) error {
	_, err := s.edit(ctx, pageID, func(sess *session) (history.Command, error) {
		from, err := find(sess, elementID)
		if err != nil {
			return nil, err
		}
		if toIndex < 0 || toIndex >= len(sess.elements) {
			return nil, fmt.Errorf("reorder to %d of %d: %w", toIndex, len(sess.elements), ErrIndexOutOfRange)
		}
		if from == toIndex {
			return nil, nil
		}
		return history.NewReorderCommand(from, toIndex), nil
	}, nil)
	return err
}

// ElementMove is one entry of a MoveMany call.
type ElementMove struct {
	ID string       `json:"id"`
	To domain.Point `json:"to"`
}

// MoveMany moves several elements as a single undo step. Elements already at
// their target are skipped; a locked or missing element fails the whole call.
func (s *EditorService) MoveMany(ctx context.Context, pageID string, moves []ElementMove, description string) (int, error) {
	var n int
	_, err := s.edit(ctx, pageID, func(sess *session) (history.Command, error) {
		var cmds []history.Command
		for _, m := range moves {
			el, err := unlocked(sess, m.ID)
			if err != nil {
				return nil, err
			}
			if el.Position() == m.To {
				continue
			}
			cmds = append(cmds, history.NewMoveCommand(m.ID, el.Position(), m.To))
		}
		n = len(cmds)
		if n == 0 {
			return nil, nil
		}
		if description == "" {
			description = fmt.Sprintf("Move %d elements", n)
		}
		return history.NewBatchCommand(cmds, description), nil
	}, nil)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// ReplaceAll swaps the whole canvas of pageID for elements as one undo step.
// Undoing it brings back the previous canvas in its original order. A canvas
// equal to the current one records nothing.
func (s *EditorService) ReplaceAll(ctx context.Context, pageID string, elements []domain.CanvasElement, description string) error {
	seen := make(map[string]bool, len(elements))
	for _, el := range elements {
		if el.ID == "" || seen[el.ID] {
			return fmt.Errorf("%w: missing or duplicate id %q", ErrInvalidElement, el.ID)
		}
		if !el.Type.Valid() {
			return fmt.Errorf("%w: element %s has unknown type %q", ErrInvalidElement, el.ID, el.Type)
		}
		seen[el.ID] = true
	}
	_, err := s.edit(ctx, pageID, func(sess *session) (history.Command, error) {
		if cmp.Equal(sess.elements, elements, cmpopts.EquateEmpty()) {
			return nil, nil
		}
		cmds := make([]history.Command, 0, len(sess.elements)+len(elements))
		// Deleting from the end keeps every recorded index valid when the
		// batch is unwound.
		for i := len(sess.elements) - 1; i >= 0; i-- {
			cmds = append(cmds, history.NewDeleteCommand(sess.elements[i], i))
		}
		for _, el := range elements {
			cmds = append(cmds, history.NewAddCommand(el))
		}
		if len(cmds) == 0 {
			return nil, nil
		}
		return history.NewBatchCommand(cmds, description), nil
	}, nil)
	return err
}

// ── Internals ──────────────────────────────────────────────

// edit builds a command against the current canvas, applies it, stores the
// result and records the command. A nil command from build is a no-op.
func (s *EditorService) edit(
	ctx context.Context,
	pageID string,
	build func(*session) (history.Command, error),
	after func(*session),
) (history.Command, error) {
	sess, err := s.session(pageID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	cmd, err := build(sess)
	if err != nil {
		return nil, err
	}
	if cmd != nil {
		if err := s.commit(sess, history.Apply(sess.elements, cmd)); err != nil {
			return nil, fmt.Errorf("%s: %w", cmd.Head().Description, err)
		}
		sess.history.Execute(cmd)
		s.emitElements(ctx, sess, cmd.Head().Description)
	}
	if after != nil {
		after(sess)
	}
	return cmd, nil
}

// commit writes next through to the store and makes it the session canvas.
// Must hold sess.mu.
func (s *EditorService) commit(sess *session, next []domain.CanvasElement) error {
	if err := s.elements.ReplacePageElements(sess.pageID, next); err != nil {
		return fmt.Errorf("save elements: %w", err)
	}
	sess.elements = next
	sess.dirty = true
	sess.version++
	if err := s.pages.TouchPage(sess.pageID); err != nil {
		s.log.Warn("touch page failed", zap.String("pageId", sess.pageID), zap.Error(err))
	}
	return nil
}

// snapshot returns the canvas of pageID with the session version and the
// description of the latest undoable edit.
func (s *EditorService) snapshot(pageID string) (elements []domain.CanvasElement, version int, last string, err error) {
	sess, err := s.session(pageID)
	if err != nil {
		return nil, 0, "", err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if st := sess.history.State(); len(st.Undo) > 0 {
		last = st.Undo[len(st.Undo)-1].Head().Description
	}
	return slices.Clone(sess.elements), sess.version, last, nil
}

// markClean clears the dirty flag of pageID unless the canvas changed
// after version was taken.
func (s *EditorService) markClean(pageID string, version int) {
	v, ok := s.sessions.Get(pageID)
	if !ok {
		return
	}
	sess := v.(*session)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.version == version {
		sess.dirty = false
	}
}

// dirtyPages lists open pages with edits since their last checkpoint.
func (s *EditorService) dirtyPages() []string {
	var out []string
	for id, item := range s.sessions.Items() {
		sess := item.Object.(*session)
		sess.mu.Lock()
		if sess.dirty {
			out = append(out, id)
		}
		sess.mu.Unlock()
	}
	slices.Sort(out)
	return out
}

func find(sess *session, elementID string) (int, error) {
	idx := domain.IndexOf(sess.elements, elementID)
	if idx < 0 {
		return -1, fmt.Errorf("element %s: %w", elementID, ErrElementNotFound)
	}
	return idx, nil
}

func unlocked(sess *session, elementID string) (domain.CanvasElement, error) {
	idx, err := find(sess, elementID)
	if err != nil {
		return domain.CanvasElement{}, err
	}
	el := sess.elements[idx]
	if el.Locked {
		return el, fmt.Errorf("element %s: %w", elementID, ErrElementLocked)
	}
	return el, nil
}

func topZ(elements []domain.CanvasElement) int {
	z := 0
	for _, e := range elements {
		z = max(z, e.ZIndex)
	}
	return z
}

// ── Events ─────────────────────────────────────────────────

// ElementsChanged is the payload of EventElementsChanged.
type ElementsChanged struct {
	PageID      string                 `json:"pageId"`
	Description string                 `json:"description"`
	Elements    []domain.CanvasElement `json:"elements"`
}

// HistoryEvent is the payload of EventHistory.
type HistoryEvent struct {
	Action  string           `json:"action"` // execute, undo, redo, clear
	Command *history.Summary `json:"command,omitempty"`
	State   *HistoryState    `json:"state"`
}

func (s *EditorService) emitElements(ctx context.Context, sess *session, description string) {
	s.emitter.Emit(ctx, EventElementsChanged, ElementsChanged{
		PageID:      sess.pageID,
		Description: description,
		Elements:    slices.Clone(sess.elements),
	})
}

// emitHistory runs from the manager hooks, inside sess.mu.
func (s *EditorService) emitHistory(sess *session, action string, cmd history.Command) {
	sum := history.Summarize(cmd)
	s.log.Debug("history",
		zap.String("pageId", sess.pageID),
		zap.String("action", action),
		zap.String("command", string(sum.Type)),
		zap.Int("undo", sess.history.UndoCount()),
		zap.Int("redo", sess.history.RedoCount()),
	)
	s.emitter.Emit(context.Background(), EventHistory, HistoryEvent{
		Action:  action,
		Command: &sum,
		State:   historyState(sess),
	})
}
