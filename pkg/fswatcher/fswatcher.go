// Package fswatcher polls documents for modification so the viewer can
// re-render them. Polling keeps the watcher portable and dependency free;
// the interval is configurable and the watched set is small (individual
// files, not trees).
package fswatcher

import "time"

// Event is a single file notification.
type Event struct {
	Name string
	Op   Op
}

// Op describes what happened to a watched file.
type Op uint32

const (
	Create Op = 1 << iota
	Write
	Remove
)

func (op Op) String() string {
	switch op {
	case Create:
		return "CREATE"
	case Write:
		return "WRITE"
	case Remove:
		return "REMOVE"
	}
	return "?"
}

// Watcher is an fsnotify-like interface for file watchers.
type Watcher interface {
	Events() <-chan Event
	Errors() <-chan error
	Add(name string) error
	Remove(name string) error
	Start(interval time.Duration) error
	Close() error
}
