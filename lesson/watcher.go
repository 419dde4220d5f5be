package lesson

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ByteMirror/gitcoach/log"
)

// debounce is the quiet period after the last change before reloading.
const debounce = 500 * time.Millisecond

// Watch reloads c from dir whenever a lesson file changes and then calls
// onReload (which may be nil). The directory is created if missing. Returns
// a stop function.
func Watch(c *Catalog, dir string, onReload func()) (stop func(), err error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return func() {}, fmt.Errorf("create lessons dir: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return func() {}, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return func() {}, err
	}

	done := make(chan struct{})
	go func() {
		defer watcher.Close()
		errEvery := log.NewEvery(time.Minute)
		dirty := false
		timer := time.NewTimer(24 * time.Hour) // initially idle
		timer.Stop()

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !strings.HasSuffix(event.Name, ".md") {
					continue
				}
				dirty = true
				timer.Reset(debounce)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if errEvery.ShouldLog() {
					log.WarningLog.Printf("lessons watcher: %v", err)
				}

			case <-timer.C:
				if !dirty {
					continue
				}
				dirty = false
				if err := c.Reload(dir); err != nil {
					log.WarningLog.Printf("lessons watcher: reload: %v", err)
					continue
				}
				log.InfoLog.Printf("lessons watcher: reloaded %d lessons", c.Len())
				if onReload != nil {
					onReload()
				}

			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }, nil
}
