package sched

import (
	"runtime"
	"sync"
	"time"
)

// Scheduler multiplexes up to MaxTasks cooperative tasks onto one logical
// execution context, round robin. Task switches happen only at Yield and
// Delay; the periodic tick maintains timers and eligibility but never
// switches by itself.
//
// Yield and Delay must be called from the running task. Registration,
// suspend/resume and the stats queries may be called from anywhere.
type Scheduler struct {
	cfg Config

	// irq is the tick gate: held by the tick handler for its whole body and
	// by every critical section that touches interrupt-shared fields.
	// irqOff is the mask as seen by the single logical runner, so nested
	// critical sections restore rather than unconditionally re-enable.
	irq    sync.Mutex
	irqOff bool

	tasks     [MaxTasks]task
	taskCount uint8
	current   TaskID
	running   bool

	stats stats

	clock *TickClock
	trace *Trace
}

// New creates a scheduler in the empty, not-running state.
func New(cfg Config) *Scheduler {
	s := &Scheduler{
		cfg:   cfg,
		trace: newTrace(cfg.TraceDepth),
	}
	s.Init()
	return s
}

// Init returns the scheduler to the empty, not-running state: no tasks, task
// 0 current, telemetry zeroed, tick source stopped. Idempotent.
func (s *Scheduler) Init() {
	s.irq.Lock()
	defer s.irq.Unlock()

	if s.clock != nil {
		s.clock.Stop()
		s.clock = nil
	}
	s.running = false
	s.taskCount = 0
	s.current = 0
	for i := range s.tasks {
		s.tasks[i] = task{}
	}
	s.stats = stats{}
	s.trace.reset()
}

// AddTask registers a task and returns its ID. The entry function gets a
// private stack with a boot context image so the first dispatch restores it
// like any other task. No side effects on failure.
func (s *Scheduler) AddTask(fn TaskFunc) (TaskID, error) {
	if fn == nil {
		return 0, ErrNilTask
	}
	s.irq.Lock()
	defer s.irq.Unlock()

	if s.running || s.taskCount >= MaxTasks {
		return 0, ErrTaskLimit
	}

	id := TaskID(s.taskCount)
	t := &s.tasks[id]
	t.id = id
	t.state = TaskReady
	t.delayTicks = 0
	t.entry = fn
	t.gate = make(chan struct{})
	t.cursor = initStack(t.stack[:], funcPC(fn), taskExitPC)
	s.taskCount++

	s.trace.emit(Event{Kind: EventAdd, Task: id, Tick: s.stats.totalTicks})
	return id, nil
}

// Start freezes the task table, fires up the tick source, and hands the
// machine to task 0. It never returns. Starting with no tasks panics: there
// is nothing to run.
func (s *Scheduler) Start() {
	prev := s.maskTick()
	if s.taskCount == 0 {
		s.restoreTick(prev)
		panic("sched: start with no tasks")
	}
	s.current = 0
	s.tasks[0].state = TaskRunning
	s.running = true
	s.trace.emit(Event{Kind: EventStart, Task: 0})
	s.restoreTick(prev)

	if !s.cfg.ManualTick {
		s.clock = NewTickClock(tickBuffer)
		s.clock.Start(time.Duration(s.cfg.TickMS) * time.Millisecond)
		go func(ch <-chan struct{}) {
			for range ch {
				s.Tick()
			}
		}(s.clock.Ch)
	}

	s.coldStart(&s.tasks[0])
}

// Tick is the periodic tick handler: on hardware the timer interrupt, in
// manual mode invoked directly by the host. It advances the tick counter and
// every countdown, promotes expired blocked tasks to ready, and nothing else;
// the next voluntary yield observes the updated eligibility.
func (s *Scheduler) Tick() {
	s.irq.Lock()
	defer s.irq.Unlock()

	if !s.running || s.taskCount == 0 {
		return
	}
	s.stats.totalTicks++
	if s.cfg.Telemetry {
		if cur := &s.tasks[s.current]; cur.state == TaskRunning {
			cur.runtimeTicks++
		}
	}
	for i := uint8(0); i < s.taskCount; i++ {
		t := &s.tasks[i]
		if t.state == TaskSuspended || t.delayTicks == 0 {
			continue
		}
		t.delayTicks--
		if t.delayTicks == 0 && t.state == TaskBlocked {
			t.state = TaskReady
			s.trace.emit(Event{Kind: EventWake, Task: t.id, Tick: s.stats.totalTicks})
		}
	}
	s.trace.emit(Event{Kind: EventTick, Task: s.current, Tick: s.stats.totalTicks})
}

// Yield voluntarily hands the processor to the next eligible task in
// round-robin order. With no other eligible task it is a scheduling no-op,
// but it always counts as a voluntary yield.
func (s *Scheduler) Yield() {
	s.reschedule(callerPC(2))
}

// Delay blocks the calling task for the given number of ticks and hands off
// the processor. It returns only once the countdown has elapsed and the task
// has been promoted back to running. Delay(0) is a no-op.
func (s *Scheduler) Delay(ticks uint16) {
	if ticks == 0 {
		return
	}
	prev := s.maskTick()
	if !s.running {
		s.restoreTick(prev)
		return
	}
	t := &s.tasks[s.current]
	t.delayTicks = ticks
	t.state = TaskBlocked
	s.trace.emit(Event{Kind: EventBlock, Task: t.id, Delay: ticks, Tick: s.stats.totalTicks})
	s.restoreTick(prev)

	s.reschedule(callerPC(2))

	// With nowhere to switch, idle here until the tick handler promotes the
	// task, then reclaim the processor. Another task waking first gets the
	// machine handed over mid-idle.
	for {
		prev = s.maskTick()
		st := t.state
		if st == TaskReady && s.current == t.id {
			t.state = TaskRunning
			s.restoreTick(prev)
			return
		}
		s.restoreTick(prev)
		if st == TaskRunning {
			return
		}
		if s.trySwitch(callerPC(2)) {
			continue
		}
		runtime.Gosched()
	}
}

// Suspend parks a task until Resume. The running task, an exited task, and an
// out-of-range ID are silent no-ops.
func (s *Scheduler) Suspend(id TaskID) {
	s.irq.Lock()
	defer s.irq.Unlock()

	if uint8(id) >= s.taskCount {
		return
	}
	t := &s.tasks[id]
	if t.state != TaskReady && t.state != TaskBlocked {
		return
	}
	t.state = TaskSuspended
	s.trace.emit(Event{Kind: EventSuspend, Task: id, Tick: s.stats.totalTicks})
}

// Resume makes a suspended task eligible again. Anything but a suspended task
// is a silent no-op.
func (s *Scheduler) Resume(id TaskID) {
	s.irq.Lock()
	defer s.irq.Unlock()

	if uint8(id) >= s.taskCount || s.tasks[id].state != TaskSuspended {
		return
	}
	s.tasks[id].state = TaskReady
	s.trace.emit(Event{Kind: EventResume, Task: id, Tick: s.stats.totalTicks})
}

// CurrentTask returns the ID of the task presently running. Meaningful once
// Start has been called.
func (s *Scheduler) CurrentTask() TaskID {
	s.irq.Lock()
	defer s.irq.Unlock()
	return s.current
}

// TaskCount returns the number of registered tasks.
func (s *Scheduler) TaskCount() uint8 {
	s.irq.Lock()
	defer s.irq.Unlock()
	return s.taskCount
}

// Running reports whether the scheduler has been started.
func (s *Scheduler) Running() bool {
	s.irq.Lock()
	defer s.irq.Unlock()
	return s.running
}

// Trace exposes the scheduler's event trace.
func (s *Scheduler) Trace() *Trace { return s.trace }

// reschedule runs the round-robin selection and, when it finds a different
// eligible task, performs a warm context switch to it. pc is the resumption
// address saved for the outgoing task.
func (s *Scheduler) reschedule(pc uintptr) {
	prev := s.maskTick()
	s.stats.voluntaryYields++
	s.restoreTick(prev)
	s.trySwitch(pc)
}

// trySwitch runs one round-robin selection and, when it lands on a different
// eligible task, performs a warm switch to it. Reports whether a switch
// happened.
func (s *Scheduler) trySwitch(pc uintptr) bool {
	prev := s.maskTick()
	if !s.running || s.taskCount < 2 {
		s.restoreTick(prev)
		return false
	}
	next, ok := s.pickNext()
	if !ok {
		s.restoreTick(prev)
		return false
	}

	out := &s.tasks[s.current]
	in := &s.tasks[next]
	if out.state == TaskRunning {
		out.state = TaskReady
	}
	in.state = TaskRunning
	s.current = next
	s.stats.contextSwitches++
	if s.cfg.Telemetry {
		in.timesScheduled++
	}
	s.trace.emit(Event{Kind: EventSwitch, Task: out.id, Next: next, Tick: s.stats.totalTicks})
	s.restoreTick(prev)

	s.switchOut(out, in, pc)
	return true
}

// pickNext scans task IDs ascending from the slot after current, wrapping
// once around the table, and returns the first eligible task. ok is false
// when no eligible task other than the current one exists. Callers hold the
// tick gate.
func (s *Scheduler) pickNext() (TaskID, bool) {
	if s.taskCount == 0 {
		return s.current, false
	}
	next := s.current
	for i := uint8(0); i < s.taskCount; i++ {
		next = TaskID((uint8(next) + 1) % s.taskCount)
		if s.tasks[next].state.eligible() {
			return next, next != s.current
		}
	}
	return s.current, false
}

// maskTick enters a critical section against the tick handler and returns the
// previous mask state for restoreTick, which reinstates exactly that state.
// The pairing mirrors a status-register save/restore: an inner section never
// re-enables an outer section's mask. Only code running on the task side uses
// this; entry points reachable from other goroutines lock irq directly.
func (s *Scheduler) maskTick() bool {
	if s.irqOff {
		return false
	}
	s.irq.Lock()
	s.irqOff = true
	return true
}

func (s *Scheduler) restoreTick(wasOn bool) {
	if !wasOn {
		return
	}
	s.irqOff = false
	s.irq.Unlock()
}
