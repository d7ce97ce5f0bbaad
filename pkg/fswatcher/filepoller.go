package fswatcher

import (
	"errors"
	"io/fs"
	"sync"
	"time"
)

const minInterval = time.Millisecond * 20

// filePoller is a polling implementation of the Watcher interface. It
// stats each watched file on every tick and compares modification times.
type filePoller struct {
	fsys   fs.FS
	events chan Event
	errors chan error
	done   chan struct{}

	mu      sync.Mutex
	files   map[string]fs.FileInfo // nil info = file currently missing
	running bool
	closed  bool
}

// NewFilePoller creates a watcher that polls files inside fsys.
func NewFilePoller(fsys fs.FS) Watcher {
	return &filePoller{
		fsys:   fsys,
		events: make(chan Event),
		errors: make(chan error),
		done:   make(chan struct{}),
		files:  map[string]fs.FileInfo{},
	}
}

func (p *filePoller) Add(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return errors.New("poller is closed")
	}
	fi, err := fs.Stat(p.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			p.files[name] = nil
			return nil
		}
		return err
	}
	p.files[name] = fi
	return nil
}

func (p *filePoller) Remove(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.files, name)
	return nil
}

func (p *filePoller) Start(interval time.Duration) error {
	if interval < minInterval {
		interval = minInterval
	}

	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return errors.New("poller is already running")
	}
	p.running = true
	p.mu.Unlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return nil
		case <-ticker.C:
			p.scan()
		}
	}
}

func (p *filePoller) scan() {
	p.mu.Lock()
	names := make([]string, 0, len(p.files))
	for name := range p.files {
		names = append(names, name)
	}
	p.mu.Unlock()

	for _, name := range names {
		p.check(name)
	}
}

func (p *filePoller) check(name string) {
	p.mu.Lock()
	old, watched := p.files[name]
	p.mu.Unlock()
	if !watched {
		return
	}

	fi, err := fs.Stat(p.fsys, name)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if old != nil {
			p.update(name, nil)
			p.send(Event{Name: name, Op: Remove})
		}
	case err != nil:
		p.sendError(err)
	case old == nil:
		p.update(name, fi)
		p.send(Event{Name: name, Op: Create})
	case old.ModTime() != fi.ModTime() || old.Size() != fi.Size():
		p.update(name, fi)
		p.send(Event{Name: name, Op: Write})
	}
}

func (p *filePoller) update(name string, fi fs.FileInfo) {
	p.mu.Lock()
	if _, ok := p.files[name]; ok {
		p.files[name] = fi
	}
	p.mu.Unlock()
}

func (p *filePoller) send(e Event) {
	select {
	case p.events <- e:
	case <-p.done:
	}
}

func (p *filePoller) sendError(err error) {
	select {
	case p.errors <- err:
	case <-p.done:
	}
}

func (p *filePoller) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.running = false
	close(p.done)
	return nil
}

func (p *filePoller) Events() <-chan Event { return p.events }
func (p *filePoller) Errors() <-chan error { return p.errors }
