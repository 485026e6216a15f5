package sched

import (
	"fmt"
	"runtime"
)

// Context switch primitive.
//
// A host has no raw register file to swap, so each task owns one execution
// unit (a goroutine) and a single unbuffered gate channel. Whoever holds the
// baton is the machine: a warm switch saves a context image onto the outgoing
// task's stack, passes the baton, and parks the outgoing goroutine on its own
// gate until it is switched back in. Exactly one task executes at a time, and
// a task that yields truly stops at the call site.

// dispatch hands the baton to t, consuming its saved context image. The
// caller must already have marked t running. The execution unit is launched
// on first dispatch.
func (s *Scheduler) dispatch(t *task) {
	f, err := t.popFrame()
	if err != nil {
		panic(fmt.Sprintf("sched: task %d: %v", t.id, err))
	}
	if !t.started {
		if f.kind != frameBoot {
			panic(fmt.Sprintf("sched: task %d: first dispatch without boot image", t.id))
		}
		t.started = true
		go s.run(t)
	}
	t.gate <- struct{}{}
}

// switchOut captures the current context onto out and transfers the machine
// to in. It returns when out is next dispatched. pc is the resumption address
// recorded in the saved image.
func (s *Scheduler) switchOut(out, in *task, pc uintptr) {
	out.pushFrame(frame{
		status: statusIntEnabled,
		kind:   frameSaved,
		pc:     pc,
		ret:    taskExitPC,
	})
	s.dispatch(in)
	<-out.gate
}

// coldStart performs the one bootstrap transfer into the first task. It never
// returns; the calling context ceases to execute.
func (s *Scheduler) coldStart(t *task) {
	s.dispatch(t)
	select {}
}

// run is the body of a task's execution unit.
func (s *Scheduler) run(t *task) {
	<-t.gate
	t.entry()
	s.exitTask(t)
}

// exitTask takes over when a task entry function returns. The task becomes
// permanently ineligible; the machine idles until some other task is
// eligible, then moves on. With nothing left to wake the machine halts here.
func (s *Scheduler) exitTask(t *task) {
	prev := s.maskTick()
	t.state = TaskExited
	s.trace.emit(Event{Kind: EventExit, Task: t.id, Tick: s.stats.totalTicks})
	s.restoreTick(prev)

	for {
		prev = s.maskTick()
		if next, ok := s.pickNext(); ok {
			in := &s.tasks[next]
			in.state = TaskRunning
			s.current = next
			s.stats.contextSwitches++
			if s.cfg.Telemetry {
				in.timesScheduled++
			}
			s.trace.emit(Event{Kind: EventSwitch, Task: t.id, Next: next, Tick: s.stats.totalTicks})
			s.restoreTick(prev)
			s.dispatch(in)
			return
		}
		s.restoreTick(prev)
		runtime.Gosched()
	}
}

// callerPC reports the program counter of the caller skip frames up, for the
// resumption address of a saved context image.
func callerPC(skip int) uintptr {
	pc, _, _, ok := runtime.Caller(skip)
	if !ok {
		return 0
	}
	return pc
}
