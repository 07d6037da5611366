package services

import (
	"sync"
	"time"
)

// Flash holds a success message that clears itself after a fixed window.
// Setting a new message restarts the window; messages never queue.
type Flash struct {
	ttl time.Duration

	mu      sync.Mutex
	message string
	timer   *time.Timer
	seq     uint64
}

// NewFlash creates a flash with the given self-clear window.
func NewFlash(ttl time.Duration) *Flash {
	return &Flash{ttl: ttl}
}

// Set replaces the current message and restarts the window.
func (f *Flash) Set(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.timer != nil {
		f.timer.Stop()
	}
	f.seq++
	seq := f.seq
	f.message = message
	f.timer = time.AfterFunc(f.ttl, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		// A stopped timer may still fire once; only the latest one clears.
		if f.seq == seq {
			f.message = ""
			f.timer = nil
		}
	})
}

// Message returns the current message, or "" once the window has passed.
func (f *Flash) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

// Clear drops the message immediately.
func (f *Flash) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.seq++
	f.message = ""
}

// Stop releases the pending timer without clearing the message.
func (f *Flash) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}
