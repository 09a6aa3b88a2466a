// Package engine drives timed focus/break cycles: a countdown clock, and a
// session state machine that reconciles its optimistic local state with the
// authoritative remote session record.
package engine

import (
	"sync"
	"time"
)

// Clock decrements a remaining-seconds value once per interval while
// running and emits a single expired signal at zero. It knows nothing about
// sessions or rewards.
type Clock struct {
	mu        sync.Mutex
	remaining int
	running   bool
	stopCh    chan struct{}

	interval  time.Duration
	onTick    func(remaining int)
	onExpired func()
}

type ClockOption func(*Clock)

// WithTickInterval overrides the one-second tick interval.
func WithTickInterval(d time.Duration) ClockOption {
	return func(c *Clock) {
		c.interval = d
	}
}

func NewClock(onTick func(remaining int), onExpired func(), opts ...ClockOption) *Clock {
	c := &Clock{
		interval:  time.Second,
		onTick:    onTick,
		onExpired: onExpired,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start begins ticking down from seconds. Starting an already-running clock
// is a no-op so a second concurrent ticking source can never exist.
func (c *Clock) Start(seconds int) {
	c.mu.Lock()
	if c.running || seconds <= 0 {
		c.mu.Unlock()
		return
	}
	c.remaining = seconds
	c.running = true
	c.stopCh = make(chan struct{})
	stopCh := c.stopCh
	c.mu.Unlock()

	go c.run(stopCh)
}

func (c *Clock) run(stopCh chan struct{}) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			c.mu.Lock()
			if !c.running {
				c.mu.Unlock()
				return
			}
			c.remaining--
			r := c.remaining
			if r <= 0 {
				// expired clocks stop themselves, no auto-restart
				c.running = false
			}
			c.mu.Unlock()

			if c.onTick != nil {
				c.onTick(r)
			}
			if r <= 0 {
				if c.onExpired != nil {
					c.onExpired()
				}
				return
			}
		}
	}
}

// Stop halts ticking and leaves the remaining value as-is (supports pause).
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.running = false
	close(c.stopCh)
}

// Reset stops the clock if running, then sets the remaining value.
func (c *Clock) Reset(seconds int) {
	c.Stop()
	c.mu.Lock()
	c.remaining = seconds
	c.mu.Unlock()
}

func (c *Clock) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
