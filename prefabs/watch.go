package prefabs

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/zeebo/xxh3"
)

// Watcher reports prefab and script files whose content changed on disk.
// Saves that leave the bytes untouched are dropped.
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
	digests *contentDigests
}

func NewWatcher(dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	digests := newContentDigests()
	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
		digests.seed(dir)
	}

	watcher := &Watcher{
		watcher: w,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		digests: digests,
	}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.Events)
	defer close(w.Errors)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !isSpecFile(event.Name) && !isScriptFile(event.Name) {
				continue
			}
			if !w.digests.changed(event.Name) {
				continue
			}
			select {
			case w.Events <- event.Name:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

// contentDigests remembers the xxh3 digest of every file seen so far.
type contentDigests struct {
	byPath map[string]uint64
}

func newContentDigests() *contentDigests {
	return &contentDigests{byPath: make(map[string]uint64)}
}

func (d *contentDigests) seed(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := filepath.Join(dir, entry.Name())
		if isSpecFile(name) || isScriptFile(name) {
			d.changed(name)
		}
	}
}

// changed records the current digest of path and reports whether it differs
// from the previous one. A missing file counts as a change once.
func (d *contentDigests) changed(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		if _, ok := d.byPath[path]; !ok {
			return false
		}
		delete(d.byPath, path)
		return true
	}
	sum := xxh3.Hash(data)
	prev, ok := d.byPath[path]
	d.byPath[path] = sum
	return !ok || prev != sum
}

func isSpecFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func isScriptFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".tengo"
}
