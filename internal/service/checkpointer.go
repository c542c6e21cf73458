package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Checkpointer: periodic revision snapshots of edited pages
// ─────────────────────────────────────────────────────────────

// ErrCheckpointBusy is returned when a checkpoint of the same page is
// already running.
var ErrCheckpointBusy = errors.New("checkpoint already running")

const autosaveLabel = "Autosave"

// Checkpointer saves revisions of pages with unsaved edits on a cron
// schedule and when their session is dropped, and restores revisions as
// undoable edits.
type Checkpointer struct {
	editor     *EditorService
	revisions  *storage.RevisionStore
	maxPerPage int
	emitter    EventEmitter
	log        *zap.Logger
	running    pageSlots

	cronSched *cron.Cron
}

// NewCheckpointer creates a Checkpointer and subscribes it to session
// evictions of editor.
func NewCheckpointer(
	editor *EditorService,
	revisions *storage.RevisionStore,
	maxPerPage int,
	emitter EventEmitter,
	log *zap.Logger,
) *Checkpointer {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Checkpointer{
		editor:     editor,
		revisions:  revisions,
		maxPerPage: maxPerPage,
		emitter:    emitter,
		log:        log,
	}
	editor.OnSessionEvicted(c.sessionEvicted)
	return c
}

// ── Schedule ───────────────────────────────────────────────

// Start runs CheckpointDirty on the given cron schedule ("@every 5m",
// "*/10 * * * *", ...). An empty schedule disables it.
func (c *Checkpointer) Start(schedule string) error {
	if schedule == "" {
		return nil
	}
	sched := cron.New()
	if _, err := sched.AddFunc(schedule, func() {
		n := c.CheckpointDirty(context.Background())
		if n > 0 {
			c.log.Info("checkpoint cron: saved revisions", zap.Int("pages", n))
		}
	}); err != nil {
		return fmt.Errorf("checkpoint cron: invalid schedule %q: %w", schedule, err)
	}
	sched.Start()
	c.cronSched = sched
	c.log.Debug("checkpoint cron: scheduled", zap.String("schedule", schedule))
	return nil
}

// Stop halts the schedule and waits for running checkpoints or ctx.
func (c *Checkpointer) Stop(ctx context.Context) {
	if c.cronSched != nil {
		select {
		case <-c.cronSched.Stop().Done():
		case <-ctx.Done():
		}
		c.cronSched = nil
	}
	if err := c.running.drain(ctx); err != nil {
		c.log.Warn("checkpoint: stopped with snapshots still running", zap.Error(err))
	}
}

// CheckpointDirty saves a revision of every open page edited since its last
// checkpoint and returns how many were saved.
func (c *Checkpointer) CheckpointDirty(ctx context.Context) int {
	saved := 0
	for _, pageID := range c.editor.dirtyPages() {
		if _, err := c.Save(ctx, pageID, autosaveLabel); err != nil {
			c.log.Warn("checkpoint failed", zap.String("pageId", pageID), zap.Error(err))
			continue
		}
		saved++
	}
	return saved
}

// ── Revisions ──────────────────────────────────────────────

// Save stores the current canvas of pageID as a revision. An empty label
// falls back to the description of the latest edit.
func (c *Checkpointer) Save(ctx context.Context, pageID, label string) (*domain.Revision, error) {
	release, ok := c.running.acquire(pageID)
	if !ok {
		return nil, fmt.Errorf("save revision of %s: %w", pageID, ErrCheckpointBusy)
	}
	defer release()

	elements, version, last, err := c.editor.snapshot(pageID)
	if err != nil {
		return nil, fmt.Errorf("save revision: %w", err)
	}
	if label == "" {
		label = last
	}
	if label == "" {
		label = "Snapshot"
	}
	rev, err := c.store(pageID, label, elements)
	if err != nil {
		return nil, err
	}
	c.editor.markClean(pageID, version)
	c.emitter.Emit(ctx, EventRevisionSaved, rev.Summary())
	return rev, nil
}

func (c *Checkpointer) List(pageID string) ([]domain.RevisionSummary, error) {
	return c.revisions.List(pageID)
}

// Restore puts the canvas of revisionID back on its page as a single edit,
// so the restore itself can be undone.
func (c *Checkpointer) Restore(ctx context.Context, pageID, revisionID string) (*domain.Revision, error) {
	rev, err := c.revisions.Get(revisionID)
	if err != nil {
		return nil, err
	}
	if rev.PageID != pageID {
		return nil, fmt.Errorf("revision %s belongs to page %s: %w", revisionID, rev.PageID, storage.ErrNotFound)
	}
	desc := fmt.Sprintf("Restore revision %q", rev.Label)
	if err := c.editor.ReplaceAll(ctx, pageID, rev.Elements, desc); err != nil {
		return nil, fmt.Errorf("restore revision: %w", err)
	}
	return rev, nil
}

func (c *Checkpointer) store(pageID, label string, elements []domain.CanvasElement) (*domain.Revision, error) {
	rev := &domain.Revision{
		ID:        uuid.New().String(),
		PageID:    pageID,
		Label:     label,
		Elements:  elements,
		CreatedAt: time.Now(),
	}
	if err := c.revisions.Save(rev, c.maxPerPage); err != nil {
		return nil, fmt.Errorf("save revision: %w", err)
	}
	c.log.Debug("revision saved",
		zap.String("pageId", pageID),
		zap.String("revisionId", rev.ID),
		zap.String("label", label),
		zap.Int("elements", len(elements)),
	)
	return rev, nil
}

// sessionEvicted keeps the last state of a dropped session that was never
// checkpointed.
func (c *Checkpointer) sessionEvicted(pageID string, elements []domain.CanvasElement, dirty bool) {
	if !dirty {
		return
	}
	release, ok := c.running.acquire(pageID)
	if !ok {
		return
	}
	defer release()
	if _, err := c.store(pageID, autosaveLabel, elements); err != nil {
		c.log.Warn("checkpoint on close failed", zap.String("pageId", pageID), zap.Error(err))
	}
}
