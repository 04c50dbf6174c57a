package project

import "sync"

// DragTracker counts enter/leave events so nested targets do not clear the indicator early.
type DragTracker struct {
	mu      sync.Mutex
	counter int
}

func (d *DragTracker) Enter() {
	d.mu.Lock()
	d.counter++
	d.mu.Unlock()
}

func (d *DragTracker) Leave() {
	d.mu.Lock()
	if d.counter > 0 {
		d.counter--
	}
	d.mu.Unlock()
}

// Dropped ends the drag regardless of how many enters were seen.
func (d *DragTracker) Dropped() {
	d.mu.Lock()
	d.counter = 0
	d.mu.Unlock()
}

func (d *DragTracker) Dragging() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.counter > 0
}
