package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/joseph-ayodele/vet-records/internal/core/async"
)

type WatchConfig struct {
	Roots       []string      // directories to watch (recursive)
	InitialScan bool          // if true, walk roots and emit existing files
	Debounce    time.Duration // coalesce rapid create/write bursts per path
}

// StartWatcher emits paths of allowed files created or written under the
// roots. Both channels close when ctx is done.
func StartWatcher(ctx context.Context, cfg WatchConfig, logger *slog.Logger) (<-chan string, <-chan error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Roots) == 0 {
		return nil, nil, errors.New("no roots provided")
	}
	evCh := make(chan string, 256)
	errCh := make(chan error, 1)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("ingest.watch.create_failed", "error", err)
		return nil, nil, err
	}

	var initial []string
	addDir := func(root string) error {
		return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() {
				if path != root && IsHidden(path) {
					return filepath.SkipDir
				}
				return w.Add(path)
			}
			if cfg.InitialScan && AllowedExt(filepath.Ext(path)) && !IsHidden(path) {
				initial = append(initial, path)
			}
			return nil
		})
	}
	for _, r := range cfg.Roots {
		if err := addDir(r); err != nil {
			logger.Error("ingest.watch.add_failed", "root", r, "error", err)
			_ = w.Close()
			return nil, nil, err
		}
	}
	logger.Info("ingest.watch.started", "roots", cfg.Roots, "initial", len(initial))

	go func() {
		defer close(evCh)
		defer close(errCh)
		defer func() {
			if err := w.Close(); err != nil {
				logger.Warn("ingest.watch.close_failed", "error", err)
			}
		}()

		emit := func(p string) bool {
			select {
			case evCh <- p:
				return true
			case <-ctx.Done():
				return false
			}
		}
		for _, p := range initial {
			if !emit(p) {
				return
			}
		}

		// pending maps a path to the time it becomes due.
		pending := map[string]time.Time{}
		ticker := time.NewTicker(tickFor(cfg.Debounce))
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Has(fsnotify.Create) {
					if st, err := os.Stat(e.Name); err == nil && st.IsDir() && !IsHidden(e.Name) {
						if err := w.Add(e.Name); err != nil {
							logger.Warn("ingest.watch.add_failed", "path", e.Name, "error", err)
						}
						continue
					}
				}
				if IsHidden(e.Name) || !AllowedExt(filepath.Ext(e.Name)) {
					continue
				}
				if e.Has(fsnotify.Create) || e.Has(fsnotify.Write) || e.Has(fsnotify.Rename) {
					pending[e.Name] = time.Now().Add(cfg.Debounce)
				}
			case now := <-ticker.C:
				for p, due := range pending {
					if now.Before(due) {
						continue
					}
					delete(pending, p)
					if _, err := os.Stat(p); err != nil {
						continue
					}
					if !emit(p) {
						return
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("ingest.watch.error", "error", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return evCh, errCh, nil
}

func tickFor(debounce time.Duration) time.Duration {
	switch {
	case debounce <= 0:
		return 10 * time.Millisecond
	case debounce < 40*time.Millisecond:
		return debounce / 2
	default:
		return debounce / 4
	}
}

// Feed ingests every path the watcher emits and queues the records still
// pending, so a file seen again after a failed enqueue is retried. It returns
// when events closes or ctx is done.
func Feed(ctx context.Context, events <-chan string, ing Ingestor, queue async.Queue, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-events:
			if !ok {
				return
			}
			res, err := ing.IngestPath(ctx, path)
			if err != nil {
				logger.Warn("ingest.watch.ingest_failed", "path", path, "error", err)
				continue
			}
			if !res.Pending() {
				continue
			}
			if res.Deduplicated {
				logger.Info("ingest.watch.requeue_pending", "path", path, "record_id", res.RecordID)
			}
			if err := queue.Enqueue(ctx, async.Job{RecordID: res.RecordID, SubmittedAt: time.Now()}); err != nil {
				logger.Error("ingest.watch.enqueue_failed", "path", path, "record_id", res.RecordID, "error", err)
			}
		}
	}
}
