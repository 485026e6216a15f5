// Package job holds the demo workloads: ordinary clients of the scheduler's
// Delay/Yield operations with no scheduling logic of their own.
package job

import (
	"fmt"
	"io"
	"sync"

	"ticksched/internal/sched"
)

// Pin is a virtual output pin, the host stand-in for a GPIO register bit.
type Pin struct {
	mu   sync.Mutex
	name string
	high bool
	w    io.Writer
}

// NewPin creates a pin that reports level changes to w.
func NewPin(name string, w io.Writer) *Pin {
	return &Pin{name: name, w: w}
}

// Toggle flips the pin level.
func (p *Pin) Toggle() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.high = !p.high
	level := "low"
	if p.high {
		level = "high"
	}
	fmt.Fprintf(p.w, "[%s] %s\n", p.name, level)
}

// High reports the current pin level.
func (p *Pin) High() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.high
}

// Blink returns a task that toggles pin every period ticks, forever.
func Blink(s *sched.Scheduler, pin *Pin, period uint16) sched.TaskFunc {
	return func() {
		for {
			pin.Toggle()
			s.Delay(period)
		}
	}
}
