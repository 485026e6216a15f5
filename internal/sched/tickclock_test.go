package sched

import (
	"testing"
	"time"
)

func TestTickClockEmitsAndCounts(t *testing.T) {
	c := NewTickClock(16)
	c.Start(time.Millisecond)

	for i := 0; i < 3; i++ {
		select {
		case <-c.Ch:
		case <-time.After(time.Second):
			t.Fatalf("no tick %d within a second", i)
		}
	}
	if got := c.Count(); got < 3 {
		t.Errorf("Count() = %d, want >= 3", got)
	}

	c.Stop()
	c.Stop() // must stay safe on repeat

	// the channel closes once the clock goroutine winds down
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-c.Ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("tick channel never closed after Stop")
		}
	}
}
