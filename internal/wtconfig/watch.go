package wtconfig

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 200 * time.Millisecond

// WatchReload watches the directories holding userPath and
// projectPath and calls onChange (debounced) after either settles.
// Directories are watched rather than the files themselves so an
// editor's atomic rename-swap save (vim, emacs) still triggers a
// reload, grounded on the teacher pack's gascity watchConfigDirs.
//
// Returns a stop function; call it to close the watcher. If the
// watcher cannot be created, onChange is never called and the
// returned stop func is a no-op — `wt config show --watch` degrades
// to a one-shot print rather than failing the command.
func WatchReload(userPath, projectPath string, onChange func(), stderr io.Writer) func() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(stderr, "config watch: %v (no live reload)\n", err)
		return func() {}
	}

	dirs := map[string]bool{filepath.Dir(userPath): true, filepath.Dir(projectPath): true}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			fmt.Fprintf(stderr, "config watch: cannot watch %s: %v\n", dir, err)
		}
	}

	go func() {
		var debounce *time.Timer
		for {
			select {
			case _, ok := <-watcher.Events:
				if !ok {
					return
				}
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(watchDebounce, onChange)
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return func() { watcher.Close() }
}
