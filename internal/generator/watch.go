package generator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits for changes to settle.
const DefaultDebounce = 300 * time.Millisecond

// Watch runs the generator once, then again after every burst of changes
// under the templates root, until ctx is done. Runs never overlap.
// onRun, if set, is called after each run.
func (g *Generator) Watch(ctx context.Context, debounce time.Duration, onRun func(Summary, error)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(g.templatesDir); err != nil {
		return fmt.Errorf("watch %s: %w", g.templatesDir, err)
	}

	run := func() {
		g.addTemplateDirs(watcher)
		sum, err := g.Run(ctx)
		if err != nil && ctx.Err() == nil {
			g.log.LogError(ctx, "generator run failed", err)
		}
		if onRun != nil {
			onRun(sum, err)
		}
	}
	run()

	g.log.Info("watching templates", "dir", g.templatesDir, "debounce", debounce.String())

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			g.log.Info("stopped watching templates")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			g.log.Debug("template change", "path", event.Name, "op", event.Op.String())
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			g.log.Warn("watcher error", "error", err.Error())

		case <-timer.C:
			run()
		}
	}
}

// addTemplateDirs watches every current template directory. Adding a path
// that is already watched is a no-op.
func (g *Generator) addTemplateDirs(w *fsnotify.Watcher) {
	ids, err := g.templateIDs()
	if err != nil {
		return
	}
	for _, id := range ids {
		dir := filepath.Join(g.templatesDir, id)
		if err := w.Add(dir); err != nil && !os.IsNotExist(err) {
			g.log.Warn("cannot watch template", "dir", dir, "error", err.Error())
		}
	}
}

func relevant(e fsnotify.Event) bool {
	if e.Has(fsnotify.Chmod) && !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
		return false
	}
	base := filepath.Base(e.Name)
	return len(base) > 0 && base[0] != '.'
}
