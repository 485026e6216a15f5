package sched

import (
	"sync"
	"sync/atomic"
	"time"
)

// tickBuffer is the tick channel depth; absorbs handler latency spikes
// without dropping ticks.
const tickBuffer = 256

// TickClock is the periodic tick source, the host stand-in for the hardware
// timer interrupt. It emits on Ch at a fixed period and counts emissions
// atomically.
type TickClock struct {
	Ch    chan struct{}
	count atomic.Uint32
	stop  chan struct{}
	once  sync.Once
}

// NewTickClock creates a clock but does not start it.
func NewTickClock(buffer int) *TickClock {
	return &TickClock{
		Ch:   make(chan struct{}, buffer),
		stop: make(chan struct{}),
	}
}

// Start begins emitting ticks at the given period.
func (c *TickClock) Start(period time.Duration) {
	ticker := time.NewTicker(period)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.count.Add(1)
				select {
				case c.Ch <- struct{}{}:
				default:
					// consumer stalled; losing a tick beats wedging the clock
				}
			case <-c.stop:
				close(c.Ch)
				return
			}
		}
	}()
}

// Stop signals the clock to stop emitting ticks. Safe to call twice.
func (c *TickClock) Stop() {
	c.once.Do(func() { close(c.stop) })
}

// Count returns the number of ticks emitted so far.
func (c *TickClock) Count() uint32 {
	return c.count.Load()
}
