package cmd

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pagebuilder/internal/service"
	"pagebuilder/internal/storage"
)

// backend is the storage and service graph shared by every subcommand.
type backend struct {
	db          *storage.DB
	sites       *service.SiteService
	editor      *service.EditorService
	checkpoints *service.Checkpointer
	log         *zap.Logger
}

func openBackend(log *zap.Logger) (*backend, error) {
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	siteStore := storage.NewSiteStore(db)
	elementStore := storage.NewElementStore(db)
	revisionStore := storage.NewRevisionStore(db)
	emitter := service.LogEmitter{Log: log.Named("events")}

	editor := service.NewEditorService(siteStore, elementStore, emitter, log.Named("editor"), service.EditorOptions{
		MaxHistory: cfg.History.MaxSize,
		SessionTTL: cfg.History.SessionTTL,
	})
	checkpoints := service.NewCheckpointer(editor, revisionStore, cfg.Revisions.MaxPerPage, emitter, log.Named("checkpoint"))
	sites := service.NewSiteService(siteStore, elementStore, revisionStore, editor, emitter, log.Named("sites"))

	log.Debug("database opened", zap.String("path", cfg.DBPath))
	return &backend{
		db:          db,
		sites:       sites,
		editor:      editor,
		checkpoints: checkpoints,
		log:         log,
	}, nil
}

// Close stops the checkpoint schedule, closes open sessions so unsaved edits
// get a revision, and closes the database.
func (b *backend) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	b.checkpoints.Stop(ctx)
	for _, pageID := range b.editor.OpenPages() {
		b.editor.Close(pageID)
	}
	return b.db.Close()
}
