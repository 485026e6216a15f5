package sched

const (
	// MaxTasks is the fixed capacity of the task table.
	MaxTasks = 8

	// TaskStackSize is the byte size of each task's private stack region.
	TaskStackSize = 128
)

// TaskID uniquely identifies a task. IDs are dense, assigned from 0 in
// registration order, and stable for the task's lifetime.
type TaskID uint8

// TaskFunc is a task entry point. Tasks are expected to loop forever and
// relinquish the processor via Yield or Delay; a TaskFunc that returns is
// marked exited and never scheduled again.
type TaskFunc func()

// TaskState is the scheduling state of one task.
type TaskState uint8

const (
	TaskReady TaskState = iota
	TaskRunning
	TaskBlocked
	TaskSuspended
	TaskExited
)

func (st TaskState) String() string {
	switch st {
	case TaskReady:
		return "ready"
	case TaskRunning:
		return "running"
	case TaskBlocked:
		return "blocked"
	case TaskSuspended:
		return "suspended"
	case TaskExited:
		return "exited"
	default:
		return "unknown"
	}
}

// eligible reports whether the round-robin scan may select a task in this state.
func (st TaskState) eligible() bool {
	return st == TaskReady || st == TaskRunning
}

// task is one task control block. A slot is claimed by AddTask and never
// reused within a run; Init wipes the whole table.
type task struct {
	id         TaskID
	state      TaskState
	stack      [TaskStackSize]byte
	cursor     int    // saved-context position in stack; meaningful while not running
	delayTicks uint16 // remaining tick countdown, 0 = not waiting on a timer

	entry   TaskFunc
	gate    chan struct{} // hand-off baton, see switch.go
	started bool          // execution unit launched

	// telemetry counters, maintained when Config.Telemetry is set
	runtimeTicks   uint32
	timesScheduled uint32
}

// pushFrame writes a saved-context image below the current cursor.
// A task has at most one outstanding frame, so the guard only trips if the
// cursor has been corrupted.
func (t *task) pushFrame(f frame) {
	if t.cursor < frameSize {
		panic("sched: task stack overflow")
	}
	t.cursor -= frameSize
	putFrame(t.stack[t.cursor:], f)
}

// popFrame consumes the saved-context image at the cursor.
func (t *task) popFrame() (frame, error) {
	f, err := readFrame(t.stack[t.cursor:])
	if err != nil {
		return frame{}, err
	}
	t.cursor += frameSize
	return f, nil
}
