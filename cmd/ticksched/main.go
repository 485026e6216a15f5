package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"ticksched/internal/job"
	"ticksched/internal/sched"
)

var (
	runOpts = struct {
		config   string
		csv      string
		duration time.Duration
		jobs     []string
	}{}

	rootCmd = &cobra.Command{
		Use:   "ticksched",
		Short: "Cooperative round-robin scheduler demo",
		Long: "Runs three LED blinkers, a servo sweep and a debug reporter on the\n" +
			"cooperative tick-driven scheduler, then prints a fairness summary.",
		Run: func(cmd *cobra.Command, args []string) {
			runDemo()
		},
	}
)

func init() {
	rootCmd.Flags().StringVar(&runOpts.config, "config", "config.yml", "scheduler config file")
	rootCmd.Flags().StringVar(&runOpts.csv, "csv", "", "write the event trace to a CSV file")
	rootCmd.Flags().DurationVar(&runOpts.duration, "for", 3*time.Second, "how long to run the demo")
	rootCmd.Flags().StringSliceVar(&runOpts.jobs, "jobs",
		[]string{"led1", "led2", "led3", "servo", "report"}, "which demo jobs to register")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runDemo() {
	cfg := sched.Load(runOpts.config)
	s := sched.New(cfg)

	tasks := []struct {
		name  string
		entry sched.TaskFunc
	}{
		{"led1", job.Blink(s, job.NewPin("led1", os.Stdout), 500)},
		{"led2", job.Blink(s, job.NewPin("led2", os.Stdout), 300)},
		{"led3", job.Blink(s, job.NewPin("led3", os.Stdout), 200)},
		{"servo", job.Sweep(s, os.Stdout, 20, 5)},
		{"report", job.Report(s, os.Stdout, 1000)},
	}

	wanted := make(map[string]bool, len(runOpts.jobs))
	for _, name := range runOpts.jobs {
		wanted[name] = true
	}

	ids := make([]sched.TaskID, 0, len(tasks))
	for _, t := range tasks {
		if !wanted[t.name] {
			continue
		}
		id, err := s.AddTask(t.entry)
		if err != nil {
			fmt.Fprintf(os.Stderr, "add %s: %v\n", t.name, err)
			os.Exit(1)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		fmt.Fprintln(os.Stderr, "no known jobs selected")
		os.Exit(1)
	}

	if runOpts.csv != "" {
		if err := s.Trace().EnableCSVLogging(runOpts.csv); err != nil {
			fmt.Fprintf(os.Stderr, "csv log: %v\n", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), runOpts.duration)
	defer cancel()
	go s.Trace().Run(ctx)

	// Start never returns; a watcher ends the demo and prints the summary.
	go func() {
		<-ctx.Done()
		printSummary(s, ids)
		os.Exit(0)
	}()

	s.Start()
}

func printSummary(s *sched.Scheduler, ids []sched.TaskID) {
	job.WriteStats(s, os.Stdout)

	runtimes := make([]float64, 0, len(ids))
	for _, id := range ids {
		ts, err := s.TaskStats(id)
		if err != nil {
			continue
		}
		runtimes = append(runtimes, float64(ts.RuntimeTicks))
	}
	if len(runtimes) > 1 {
		fmt.Printf("fairness: runtime mean=%.1f stddev=%.1f ticks\n",
			stat.Mean(runtimes, nil), stat.StdDev(runtimes, nil))
	}
}
