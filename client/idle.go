package client

import (
	"sync"
	"time"
)

// IdleWatcher calls onExpire once after timeout passes without a Touch
type IdleWatcher struct {
	mu       sync.Mutex
	timer    *time.Timer
	timeout  time.Duration
	onExpire func()
	done     bool
}

func NewIdleWatcher(timeout time.Duration, onExpire func()) *IdleWatcher {
	w := &IdleWatcher{timeout: timeout, onExpire: onExpire}
	w.timer = time.AfterFunc(timeout, w.fire)
	return w
}

func (w *IdleWatcher) fire() {
	w.mu.Lock()
	if w.done {
		w.mu.Unlock()
		return
	}
	w.done = true
	w.mu.Unlock()
	w.onExpire()
}

// Touch restarts the countdown; it has no effect once the watcher fired or stopped
func (w *IdleWatcher) Touch() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done {
		return
	}
	w.timer.Reset(w.timeout)
}

// Stop cancels the watcher; onExpire will not run afterwards
func (w *IdleWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.done = true
	w.timer.Stop()
}
