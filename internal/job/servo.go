package job

import (
	"fmt"
	"io"

	"ticksched/internal/sched"
)

// Sweep returns a task that sweeps a servo angle between 0 and 180 degrees,
// stepping every period ticks and reversing at the ends.
func Sweep(s *sched.Scheduler, w io.Writer, period uint16, step int) sched.TaskFunc {
	if step <= 0 {
		step = 5
	}
	return func() {
		angle, dir := 0, step
		for {
			fmt.Fprintf(w, "[servo] %3d deg\n", angle)
			angle += dir
			if angle >= 180 {
				angle, dir = 180, -step
			} else if angle <= 0 {
				angle, dir = 0, step
			}
			s.Delay(period)
		}
	}
}
