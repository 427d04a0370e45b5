package catalog

import (
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/madhurim15/flow-shift-companion-sub000/internal/logging"
)

// watcher hot-reloads profile overrides when files in the profiles directory
// change. Rapid saves are debounced so an editor writing a file twice only
// triggers one reload.
type watcher struct {
	fsw     *fsnotify.Watcher
	catalog *Catalog

	mu      sync.Mutex
	pending time.Time // zero = no reload pending

	onReload func()
	stopCh   chan struct{}
	doneCh   chan struct{}
}

const reloadDebounce = 500 * time.Millisecond

// Watch starts watching the profiles directory for changes. onReload, if
// non-nil, runs after each successful reload. No-op if the catalog has no
// profiles directory or a watcher is already running.
func (c *Catalog) Watch(onReload func()) error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.watcher != nil {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(c.dir); err != nil {
		// Directory may not exist yet; reload stays manual in that case.
		logging.Warn("catalog", "watch failed for %s: %v", c.dir, err)
		fsw.Close()
		return nil
	}

	w := &watcher{
		fsw:      fsw,
		catalog:  c,
		onReload: onReload,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	c.watcher = w
	go w.run()
	logging.Info("catalog", "watching %s for profile changes", c.dir)
	return nil
}

// StopWatch stops the profile watcher, if running.
func (c *Catalog) StopWatch() {
	c.mu.Lock()
	w := c.watcher
	c.watcher = nil
	c.mu.Unlock()

	if w == nil {
		return
	}
	close(w.stopCh)
	<-w.doneCh
	w.fsw.Close()
}

func (w *watcher) run() {
	defer close(w.doneCh)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.Warn("catalog", "watcher error: %v", err)

		case <-ticker.C:
			w.maybeReload()
		}
	}
}

func (w *watcher) handleEvent(event fsnotify.Event) {
	if !strings.HasSuffix(event.Name, ".yaml") && !strings.HasSuffix(event.Name, ".yml") {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	w.mu.Lock()
	w.pending = time.Now()
	w.mu.Unlock()
}

func (w *watcher) maybeReload() {
	w.mu.Lock()
	if w.pending.IsZero() || time.Since(w.pending) < reloadDebounce {
		w.mu.Unlock()
		return
	}
	w.pending = time.Time{}
	w.mu.Unlock()

	if err := w.catalog.LoadOverrides(); err != nil {
		logging.Warn("catalog", "reload failed: %v", err)
		return
	}
	if w.onReload != nil {
		w.onReload()
	}
}
