// Package monitor watches the ALSA state file so mixer changes made outside
// the daemon (amixer, alsactl store) are reported to subscribed clients.
package monitor

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/user/volumed/internal/sse"
)

// Hub is the subset of the SSE hub the monitor needs.
type Hub interface {
	Broadcast(event sse.Event)
}

// Monitor broadcasts a state-change event whenever a watched file is written
// or recreated.
type Monitor struct {
	hub     Hub
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// New creates a monitor for the given paths. Missing paths are skipped; the
// state file only exists once alsactl has stored the mixer state.
func New(hub Hub, paths ...string) (*Monitor, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	m := &Monitor{hub: hub, watcher: watcher, done: make(chan struct{})}
	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			log.Warn("state file not found, skipping watch", "path", path)
			continue
		}
		if err := watcher.Add(path); err != nil {
			log.Warn("failed to watch state file", "path", path, "err", err)
		}
	}
	return m, nil
}

// Start begins watching in a background goroutine.
func (m *Monitor) Start() {
	go m.run()
}

// Stop terminates the watcher and waits for the goroutine to exit.
func (m *Monitor) Stop() {
	m.watcher.Close()
	<-m.done
}

func (m *Monitor) run() {
	defer close(m.done)
	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				log.Debug("mixer state file changed", "path", event.Name)
				m.hub.Broadcast(sse.Event{
					Type: sse.TypeStateChange,
					Data: map[string]any{"path": event.Name},
				})
			}
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			log.Error("state file watch error", "err", err)
		}
	}
}
