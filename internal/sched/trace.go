package sched

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/emirpasic/gods/queues/circularbuffer"
)

// EventKind classifies a scheduler trace event.
type EventKind int

const (
	EventAdd EventKind = iota
	EventStart
	EventSwitch
	EventBlock
	EventWake
	EventSuspend
	EventResume
	EventExit
	EventTick
)

func (k EventKind) String() string {
	switch k {
	case EventAdd:
		return "Add"
	case EventStart:
		return "Start"
	case EventSwitch:
		return "Switch"
	case EventBlock:
		return "Block"
	case EventWake:
		return "Wake"
	case EventSuspend:
		return "Suspend"
	case EventResume:
		return "Resume"
	case EventExit:
		return "Exit"
	case EventTick:
		return "Tick"
	default:
		return "Unknown"
	}
}

// Event is emitted on every scheduler state change and on every tick.
type Event struct {
	Time  time.Time
	Tick  uint32 // tick counter at emission
	Kind  EventKind
	Task  TaskID
	Next  TaskID // incoming task, switch events only
	Delay uint16 // countdown, block events only
}

// Trace collects scheduler events: a bounded ring of recent state changes for
// snapshots, plus a best-effort live stream. emit runs inside critical
// sections and the tick handler, so it never blocks: a full stream drops
// events, a full ring overwrites the oldest. Tick events go to the stream
// only, to keep the ring from drowning in them.
type Trace struct {
	mu   sync.Mutex
	ring *circularbuffer.Queue
	ch   chan Event

	csvFile   *os.File
	csvWriter *csv.Writer
}

func newTrace(depth int) *Trace {
	if depth <= 0 {
		depth = defaultTraceDepth
	}
	return &Trace{
		ring: circularbuffer.New(depth),
		ch:   make(chan Event, depth),
	}
}

func (tr *Trace) emit(ev Event) {
	ev.Time = time.Now()
	if ev.Kind != EventTick {
		tr.mu.Lock()
		tr.ring.Enqueue(ev)
		tr.mu.Unlock()
	}
	select {
	case tr.ch <- ev:
	default:
	}
}

func (tr *Trace) reset() {
	tr.mu.Lock()
	tr.ring.Clear()
	tr.mu.Unlock()
}

// Events exposes the live event stream.
func (tr *Trace) Events() <-chan Event { return tr.ch }

// Snapshot returns the retained state-change events, oldest first.
func (tr *Trace) Snapshot() []Event {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	vals := tr.ring.Values()
	out := make([]Event, 0, len(vals))
	for _, v := range vals {
		out = append(out, v.(Event))
	}
	return out
}

// EnableCSVLogging opens the given file path for CSV logging of events.
// Must be called before Run().
func (tr *Trace) EnableCSVLogging(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)

	// write header
	w.Write([]string{"timestamp", "tick", "event", "task_id", "next_id", "delay_ticks"})
	w.Flush()
	tr.csvFile = f
	tr.csvWriter = w
	return nil
}

// Run consumes the event stream until the context is cancelled, printing one
// line per state change and appending CSV rows when logging is enabled.
func (tr *Trace) Run(ctx context.Context) {
	defer func() {
		if tr.csvFile != nil {
			tr.csvWriter.Flush()
			tr.csvFile.Close()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-tr.ch:
			tr.handleEvent(ev)
		}
	}
}

func (tr *Trace) handleEvent(ev Event) {
	// periodic tick events are stream noise; skip them for the brevity of output.
	if ev.Kind == EventTick {
		return
	}

	// an auxiliary function to center the event kind in the output
	center := func(str string, width int) string {
		spaces := int(float64(width-len(str)) / 2)
		return strings.Repeat(" ", spaces) + str + strings.Repeat(" ", width-(spaces+len(str)))
	}

	msg := fmt.Sprintf("%s = Tick: %07d [%s] => Task: %03d",
		ev.Time.Format("Jan 02 15:04:05.000"),
		ev.Tick,
		center(ev.Kind.String(), 10),
		ev.Task,
	)
	switch ev.Kind {
	case EventSwitch:
		msg += fmt.Sprintf(" -> %03d", ev.Next)
	case EventBlock:
		msg += fmt.Sprintf(", delay=%d ticks", ev.Delay)
	}
	fmt.Println(msg)

	// CSV output
	if tr.csvWriter != nil {
		rec := []string{
			ev.Time.Format(time.RFC3339Nano),
			strconv.FormatUint(uint64(ev.Tick), 10),
			ev.Kind.String(),
			strconv.FormatUint(uint64(ev.Task), 10),
			strconv.FormatUint(uint64(ev.Next), 10),
			strconv.FormatUint(uint64(ev.Delay), 10),
		}
		tr.csvWriter.Write(rec)
		tr.csvWriter.Flush()
	}
}
