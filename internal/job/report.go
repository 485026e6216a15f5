package job

import (
	"fmt"
	"io"

	"ticksched/internal/sched"
)

// Report returns a task that prints the scheduler counters every period
// ticks, the moral equivalent of a UART debug reporter.
func Report(s *sched.Scheduler, w io.Writer, period uint16) sched.TaskFunc {
	return func() {
		for {
			s.Delay(period)
			WriteStats(s, w)
		}
	}
}

// WriteStats dumps the aggregate and per-task counters to w.
func WriteStats(s *sched.Scheduler, w io.Writer) {
	st := s.Stats()
	fmt.Fprintf(w, "--- ticks=%d switches=%d yields=%d ---\n",
		st.TotalTicks, st.ContextSwitches, st.VoluntaryYields)
	for id := sched.TaskID(0); uint8(id) < s.TaskCount(); id++ {
		ts, err := s.TaskStats(id)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "  task %d: %-9s runtime=%-6d scheduled=%d\n",
			id, ts.State, ts.RuntimeTicks, ts.TimesScheduled)
	}
}
