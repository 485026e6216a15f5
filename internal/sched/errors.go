package sched

import "errors"

var (
	// ErrTaskLimit is returned by AddTask when the task table is full, or
	// when the table has been frozen by Start.
	ErrTaskLimit = errors.New("sched: task table full")

	// ErrNilTask is returned by AddTask for a nil entry function.
	ErrNilTask = errors.New("sched: nil task function")

	// ErrBadTaskID is returned by stats queries for an unregistered task ID.
	ErrBadTaskID = errors.New("sched: no such task")
)
