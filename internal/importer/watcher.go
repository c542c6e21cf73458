// Package importer loads page content files from a directory into the
// editor. A file named <pageId>.json, <pageId>.yaml or <pageId>.yml holds
// the full element list of that page; every save of the file replaces the
// page canvas.
package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"pagebuilder/internal/domain"
)

// DefaultDebounce is how long a file must stay quiet before it is imported.
const DefaultDebounce = 300 * time.Millisecond

// Handler receives the decoded content of a page file.
type Handler func(ctx context.Context, pageID string, elements []domain.CanvasElement) error

// Watcher imports content files as they are written.
type Watcher struct {
	dir      string
	handle   Handler
	log      *zap.Logger
	debounce time.Duration

	watcher *fsnotify.Watcher
	ctx     context.Context
	cancel  context.CancelFunc
	loop    chan struct{}

	mu      sync.Mutex
	timers  map[string]*time.Timer
	pending sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// Watch starts watching dir. Call Close to stop.
func Watch(dir string, handle Handler, log *zap.Logger, opts ...Option) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve import dir: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(abs); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", abs, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		dir:      abs,
		handle:   handle,
		log:      log.With(zap.String("dir", abs)),
		debounce: DefaultDebounce,
		watcher:  fw,
		ctx:      ctx,
		cancel:   cancel,
		loop:     make(chan struct{}),
		timers:   make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}

	go w.watchLoop()
	w.log.Info("import watcher started")
	return w, nil
}

// Close stops watching and waits for imports already in progress.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.watcher.Close()
	<-w.loop

	w.mu.Lock()
	for path, t := range w.timers {
		if t.Stop() {
			w.pending.Done()
		}
		delete(w.timers, path)
	}
	w.mu.Unlock()

	w.pending.Wait()
	return err
}

func (w *Watcher) watchLoop() {
	defer close(w.loop)
	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if _, ok := PageID(event.Name); !ok {
				continue
			}
			w.schedule(event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("import watcher error", zap.Error(err))
		}
	}
}

// schedule (re)arms the debounce timer of path.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ctx.Err() != nil {
		return
	}
	if t, ok := w.timers[path]; ok && t.Stop() {
		w.pending.Done()
	}
	w.pending.Add(1)
	var t *time.Timer
	t = time.AfterFunc(w.debounce, func() {
		defer w.pending.Done()
		w.mu.Lock()
		if w.timers[path] == t {
			delete(w.timers, path)
		}
		w.mu.Unlock()
		if err := ImportFile(w.ctx, path, w.handle); err != nil {
			if errors.Is(err, ErrEmpty) {
				return
			}
			w.log.Warn("import failed", zap.String("file", filepath.Base(path)), zap.Error(err))
			return
		}
		w.log.Info("page imported", zap.String("file", filepath.Base(path)))
	})
	w.timers[path] = t
}

// ImportFile reads one content file and hands it to handle.
func ImportFile(ctx context.Context, path string, handle Handler) error {
	pageID, ok := PageID(path)
	if !ok {
		return fmt.Errorf("not a content file: %s", filepath.Base(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	elements, err := Decode(path, data)
	if err != nil {
		return err
	}
	return handle(ctx, pageID, elements)
}

// ImportDir imports every content file in dir once and returns the ids of
// the pages it loaded. It stops at the first failure.
func ImportDir(ctx context.Context, dir string, handle Handler) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read import dir: %w", err)
	}
	var pages []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		pageID, ok := PageID(e.Name())
		if !ok {
			continue
		}
		if err := ImportFile(ctx, filepath.Join(dir, e.Name()), handle); err != nil {
			return pages, err
		}
		pages = append(pages, pageID)
	}
	return pages, nil
}
