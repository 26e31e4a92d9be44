package index

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/halvard/tavla/internal/store"
)

// EventCallback is called after a watcher-driven index change.
// kind is one of "created", "updated", "deleted".
type EventCallback func(kind string, canvasID string)

// Watch starts an fsnotify watcher on the canvases directory and keeps
// the index in step with external edits (another process writing canvas
// documents) until ctx is cancelled. cb, if non-nil, is called after each
// successful index mutation so the UI can be told to reload.
//
// Saves land as a temp-file rename, so a single external write surfaces
// as several events in quick succession; a short debounce coalesces them
// into one reconciliation pass per canvas.
func Watch(ctx context.Context, db *DB, fs *store.FS, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := fs.CanvasesDir()
	if err := w.Add(dir); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("dir", dir))

	pending := map[string]struct{}{}
	var flushTimer *time.Timer
	var flushCh <-chan time.Time

	scheduleFlush := func() {
		if flushTimer == nil {
			flushTimer = time.NewTimer(200 * time.Millisecond)
			flushCh = flushTimer.C
		} else {
			flushTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if flushTimer != nil {
				flushTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-flushCh:
			for id := range pending {
				delete(pending, id)
				reconcileCanvas(db, fs, id, logger, cb)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(ev.Name)
			if !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, ".") {
				continue
			}
			pending[strings.TrimSuffix(name, ".json")] = struct{}{}
			scheduleFlush()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reconcileCanvas re-indexes one canvas from disk, or drops it when the
// file is gone. The stored checksum decides created vs updated.
func reconcileCanvas(db *DB, fs *store.FS, id string, logger *slog.Logger, cb EventCallback) {
	data, err := fs.ReadCanvasRaw(id)
	if err != nil {
		if delErr := db.DeleteCanvas(id); delErr != nil {
			logger.Warn("watcher: delete failed", slog.String("canvas", id), slog.String("error", delErr.Error()))
			return
		}
		logger.Debug("watcher: deindexed", slog.String("canvas", id))
		if cb != nil {
			cb("deleted", id)
		}
		return
	}

	cs := store.Checksum(data)
	prev, _ := db.GetChecksum(id)
	if prev == cs {
		return
	}
	if err := db.IndexDocument(id, data, cs); err != nil {
		logger.Warn("watcher: index failed", slog.String("canvas", id), slog.String("error", err.Error()))
		return
	}
	kind := "updated"
	if prev == "" {
		kind = "created"
	}
	logger.Debug("watcher: indexed", slog.String("canvas", id), slog.String("op", kind))
	if cb != nil {
		cb(kind, id)
	}
}
