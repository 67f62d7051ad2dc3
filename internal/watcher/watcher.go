// Package watcher reports changes to the Homebrew Cellar and Caskroom made
// outside the dashboard, such as an install from another shell.
package watcher

import (
	"log"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long the directories must be quiet before a change is reported.
const DefaultSettle = 2 * time.Second

// Watcher coalesces filesystem events into single change notifications.
type Watcher struct {
	fs     *fsnotify.Watcher
	settle time.Duration

	changes chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup

	mu     sync.Mutex
	paused bool
}

// New watches every directory in dirs that exists. Missing directories are
// skipped; if none exist the watcher never reports anything.
func New(dirs []string, settle time.Duration) (*Watcher, error) {
	if settle <= 0 {
		settle = DefaultSettle
	}
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		if err := fs.Add(dir); err != nil {
			fs.Close()
			return nil, err
		}
	}

	w := &Watcher{
		fs:      fs,
		settle:  settle,
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Changes delivers one value per burst of filesystem activity.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Watching returns the directories being watched.
func (w *Watcher) Watching() []string {
	return w.fs.WatchList()
}

// Pause suppresses notifications, e.g. while the dashboard itself runs brew.
func (w *Watcher) Pause(paused bool) {
	w.mu.Lock()
	w.paused = paused
	w.mu.Unlock()
}

func (w *Watcher) isPaused() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.paused
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	timer := time.NewTimer(w.settle)
	timer.Stop()
	pending := false

	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if ev.Op == fsnotify.Chmod || w.isPaused() {
				continue
			}
			if pending && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.settle)
			pending = true

		case <-timer.C:
			pending = false
			if w.isPaused() {
				continue
			}
			select {
			case w.changes <- struct{}{}:
			default:
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Printf("watcher: %v", err)

		case <-w.done:
			timer.Stop()
			return
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
	}
	close(w.done)
	err := w.fs.Close()
	w.wg.Wait()
	return err
}
