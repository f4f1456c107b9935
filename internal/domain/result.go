package domain

import "fmt"

// TaskFailure describes the command that stopped a build.
type TaskFailure struct {
	Err     error
	Task    string
	Command string
}

func (f *TaskFailure) Error() string {
	if f.Command == "" {
		return fmt.Sprintf("task %q: %v", f.Task, f.Err)
	}
	return fmt.Sprintf("task %q: command %q: %v", f.Task, f.Command, f.Err)
}

func (f *TaskFailure) Unwrap() error { return f.Err }

// RunResult is the aggregate outcome of executing an ordered task list.
// Fields are ordered to minimize memory padding.
type RunResult struct {
	Failure  *TaskFailure // nil when every scheduled task succeeded or was skipped
	Total    int          // Tasks in the ordered list
	Executed int          // Tasks whose commands ran successfully
	Skipped  int          // Tasks found up to date
}

// Succeeded returns true if no command failed.
func (r RunResult) Succeeded() bool {
	return r.Failure == nil
}

// NotRun returns the number of tasks that were neither executed nor skipped.
func (r RunResult) NotRun() int {
	return r.Total - r.Executed - r.Skipped
}
