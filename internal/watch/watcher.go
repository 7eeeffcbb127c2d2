// Package watch retunes engine pacing from config file changes while a
// batch is running. A long batch at 3s pacing can run for many minutes;
// editing the config file lets the operator slow down or speed up the run
// without losing recorded progress.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/forgebit/mailforge/internal/cliconfig"
	"github.com/forgebit/mailforge/internal/ports"
)

const defaultDebounce = 100 * time.Millisecond

// Retunable accepts live pacing updates.
type Retunable interface {
	SetPacing(time.Duration)
}

// Watcher monitors the mailforge config file and retunes the engine's
// pacing when it changes. It never touches classification or the ledger;
// watch failures are warnings, not errors.
type Watcher struct {
	path     string
	target   Retunable
	logger   ports.Logger
	debounce time.Duration

	mu     sync.Mutex
	timer  *time.Timer
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a watcher for the config file at path.
func New(path string, target Retunable, logger ports.Logger) *Watcher {
	return &Watcher{
		path:     path,
		target:   target,
		logger:   logger,
		debounce: defaultDebounce,
	}
}

// Start begins watching. Watching the parent directory rather than the file
// itself survives editors that replace the file on save.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		fw.Close()
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.wg.Add(1)
	go w.loop(ctx, fw)
	return nil
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher) {
	defer w.wg.Done()
	defer fw.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watch error", ports.Err(err))
		}
	}
}

// scheduleReload debounces bursts of file events into a single reload.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	fc, err := cliconfig.LoadFileConfig(w.path)
	if err != nil {
		w.logger.Warn("config reload failed", ports.Err(err))
		return
	}
	if fc.Pacing == "" {
		return
	}
	d, err := time.ParseDuration(fc.Pacing)
	if err != nil || d <= 0 {
		w.logger.Warn("ignoring invalid pacing", ports.String("pacing", fc.Pacing))
		return
	}
	w.target.SetPacing(d)
	w.logger.Info("pacing retuned", ports.Duration("pacing", d))
}

// Stop ends watching and waits for the watch goroutine to exit.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
}
