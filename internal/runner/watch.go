package runner

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch runs the trace once and again every time the source file is written,
// until ctx is cancelled. Trace failures are reported and do not stop it.
func (r *Runner) Watch(ctx context.Context) error {
	abs, err := filepath.Abs(r.SourceFile)
	if err != nil {
		return fmt.Errorf("failed to resolve source path: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	// editors often replace the file, so the directory is watched
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", r.SourceFile, err)
	}

	r.rerun(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			r.logger().Info("Source changed", "file", r.SourceFile, "op", ev.Op)
			r.rerun(ctx)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.logger().Warn("Watch error", "error", err)
		}
	}
}

func (r *Runner) rerun(ctx context.Context) {
	if err := r.Run(ctx); err != nil {
		r.logger().Warn("Trace failed", "file", r.SourceFile, "error", err)
	}
}
