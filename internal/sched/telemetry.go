package sched

import "fmt"

// stats holds the aggregate counters. They reset together, never individually.
type stats struct {
	totalTicks      uint32
	contextSwitches uint32
	voluntaryYields uint32
}

// Stats is a snapshot of the aggregate scheduler counters.
type Stats struct {
	TotalTicks      uint32
	ContextSwitches uint32
	VoluntaryYields uint32
}

// TaskStats is a snapshot of one task's scheduling counters.
type TaskStats struct {
	State          TaskState
	DelayTicks     uint16
	RuntimeTicks   uint32
	TimesScheduled uint32
}

// Stats returns the aggregate counters, consistent with respect to the tick
// handler. Not for use inside a critical section.
func (s *Scheduler) Stats() Stats {
	s.irq.Lock()
	defer s.irq.Unlock()
	return Stats{
		TotalTicks:      s.stats.totalTicks,
		ContextSwitches: s.stats.contextSwitches,
		VoluntaryYields: s.stats.voluntaryYields,
	}
}

// TaskStats returns the counters for one task.
func (s *Scheduler) TaskStats(id TaskID) (TaskStats, error) {
	s.irq.Lock()
	defer s.irq.Unlock()
	if uint8(id) >= s.taskCount {
		return TaskStats{}, fmt.Errorf("%w: %d", ErrBadTaskID, id)
	}
	t := &s.tasks[id]
	return TaskStats{
		State:          t.state,
		DelayTicks:     t.delayTicks,
		RuntimeTicks:   t.runtimeTicks,
		TimesScheduled: t.timesScheduled,
	}, nil
}

// ResetStats zeroes the aggregate and per-task counters atomically with
// respect to the tick handler.
func (s *Scheduler) ResetStats() {
	s.irq.Lock()
	defer s.irq.Unlock()
	s.stats = stats{}
	for i := uint8(0); i < s.taskCount; i++ {
		s.tasks[i].runtimeTicks = 0
		s.tasks[i].timesScheduled = 0
	}
}
