package editor

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RemoveLine hides a line from the active list and arms the undo timer.
// If the grace window expires the line is dropped permanently; until then
// every field is kept so an undo loses nothing. Removing a line that is
// already pending removal re-arms its timer.
func (e *Editor) RemoveLine(key uuid.UUID) error {
	e.mu.Lock()
	var target *Line
	for _, ln := range e.lines {
		if ln.Key == key {
			target = ln
			break
		}
	}
	if target == nil {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrLineNotFound, key)
	}
	target.state = linePendingRemoval
	e.mu.Unlock()

	e.removals.schedule(key, e.grace, func() {
		e.finalizeRemoval(key)
	})
	return nil
}

// UndoRemove cancels a pending removal and restores the line in place, all
// fields intact. Returns false when the grace window already expired (or no
// removal was pending).
func (e *Editor) UndoRemove(key uuid.UUID) bool {
	if !e.removals.cancel(key) {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ln := range e.lines {
		if ln.Key == key {
			ln.state = lineActive
			return true
		}
	}
	return false
}

// finalizeRemoval drops the line for good. Runs on the timer goroutine.
func (e *Editor) finalizeRemoval(key uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, ln := range e.lines {
		if ln.Key == key && ln.state == linePendingRemoval {
			e.lines = append(e.lines[:i], e.lines[i+1:]...)
			return
		}
	}
}

// removalController owns the cancellable grace timers, one per line key.
// Scheduling a key that already has a pending timer replaces it, so a
// repeated removal can never double-fire.
type removalController struct {
	mu     sync.Mutex
	timers map[uuid.UUID]*time.Timer
}

func newRemovalController() *removalController {
	return &removalController{timers: make(map[uuid.UUID]*time.Timer)}
}

func (c *removalController) schedule(key uuid.UUID, grace time.Duration, expire func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.timers[key]; ok {
		t.Stop()
	}
	c.timers[key] = time.AfterFunc(grace, func() {
		c.mu.Lock()
		delete(c.timers, key)
		c.mu.Unlock()
		expire()
	})
}

// cancel stops the timer for key. Returns false if none was pending.
func (c *removalController) cancel(key uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.timers[key]
	if !ok {
		return false
	}
	delete(c.timers, key)
	return t.Stop()
}

func (c *removalController) stopAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, t := range c.timers {
		t.Stop()
		delete(c.timers, key)
	}
}
