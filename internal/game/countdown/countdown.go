// Package countdown provides a question timer as an explicit owned
// handle: the caller holds the value and drives Start/Stop/Reset, there
// is no process-wide timer registry.
package countdown

import (
	"sync"
	"time"
)

// Countdown ticks down from a configured duration at one-second
// resolution, invoking the tick callback with the new remaining value
// each second and the completion callback exactly once at zero.
type Countdown struct {
	mu         sync.Mutex
	duration   int
	remaining  int
	onTick     func(remaining int)
	onComplete func()

	tickInterval time.Duration
	running      bool
	completed    bool
	stopCh       chan struct{}
}

// New creates a countdown for the given number of seconds. Either
// callback may be nil. The countdown does not start ticking until
// Start is called.
func New(seconds int, onTick func(remaining int), onComplete func()) *Countdown {
	return &Countdown{
		duration:     seconds,
		remaining:    seconds,
		onTick:       onTick,
		onComplete:   onComplete,
		tickInterval: time.Second,
	}
}

// Start begins ticking. Calling Start on a running countdown is a no-op.
func (c *Countdown) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running || c.remaining <= 0 {
		return
	}
	c.running = true
	c.stopCh = make(chan struct{})
	go c.run(c.stopCh)
}

// Stop halts ticking. No callback fires after Stop returns observed
// state; the countdown can be restarted from the current remaining value.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.halt()
}

// Reset stops the countdown and restores the configured duration, so a
// later Start begins a fresh run.
func (c *Countdown) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.halt()
	c.remaining = c.duration
	c.completed = false
}

// Remaining returns the seconds left on the clock.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// halt must be called with the mutex held.
func (c *Countdown) halt() {
	if !c.running {
		return
	}
	c.running = false
	close(c.stopCh)
	c.stopCh = nil
}

func (c *Countdown) run(stop <-chan struct{}) {
	ticker := time.NewTicker(c.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if done := c.step(); done {
				return
			}
		}
	}
}

// step decrements once and fires callbacks. Returns true when the
// countdown reached zero and the goroutine should exit.
func (c *Countdown) step() bool {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return true
	}
	c.remaining--
	remaining := c.remaining

	finished := remaining <= 0 && !c.completed
	if finished {
		c.completed = true
		c.running = false
		c.stopCh = nil
	}
	onTick := c.onTick
	onComplete := c.onComplete
	c.mu.Unlock()

	if onTick != nil {
		onTick(remaining)
	}
	if finished && onComplete != nil {
		onComplete()
	}
	return finished
}
