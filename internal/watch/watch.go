// Package watch polls schema sources and reports when any of them changes.
package watch

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Watcher polls the modification times of a fixed set of files.
type Watcher struct {
	fs          afero.Fs
	paths       []string
	interval    time.Duration
	logger      logrus.FieldLogger
	subscribers []func(changed []string)
	mu          sync.RWMutex
	done        chan struct{}
	closeOnce   sync.Once
}

// New starts polling paths on fs every interval. Files that do not exist yet
// are reported once they appear.
func New(fs afero.Fs, paths []string, interval time.Duration, logger logrus.FieldLogger) *Watcher {
	w := &Watcher{
		fs:       fs,
		paths:    append([]string(nil), paths...),
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}

	modTimes := make([]time.Time, len(w.paths))
	for i, path := range w.paths {
		modTimes[i] = w.modTime(path)
	}

	go w.poll(modTimes)

	return w
}

// Subscribe adds a callback invoked with the changed paths, in the order
// they were given to New. Returns an unsubscribe function.
func (w *Watcher) Subscribe(callback func(changed []string)) func() {
	w.mu.Lock()
	w.subscribers = append(w.subscribers, callback)
	index := len(w.subscribers) - 1
	w.mu.Unlock()

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if index < len(w.subscribers) {
			w.subscribers[index] = nil
		}
	}
}

func (w *Watcher) poll(last []time.Time) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			var changed []string
			for i, path := range w.paths {
				mt := w.modTime(path)
				if !mt.Equal(last[i]) {
					last[i] = mt
					if !mt.IsZero() {
						changed = append(changed, path)
					}
				}
			}
			if len(changed) > 0 {
				w.logger.WithField("paths", changed).Debug("Sources changed")
				w.notify(changed)
			}
		}
	}
}

func (w *Watcher) notify(changed []string) {
	w.mu.RLock()
	subscribers := make([]func([]string), len(w.subscribers))
	copy(subscribers, w.subscribers)
	w.mu.RUnlock()

	for _, callback := range subscribers {
		if callback != nil {
			callback(changed)
		}
	}
}

// Close stops polling. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() { close(w.done) })
	return nil
}

// modTime returns the zero time for files that cannot be read.
func (w *Watcher) modTime(path string) time.Time {
	info, err := w.fs.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
