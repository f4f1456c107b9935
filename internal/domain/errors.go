package domain

import (
	"errors"
	"fmt"
)

// Domain errors.
var (
	ErrConfigNotFound     = errors.New("configuration file not found")
	ErrInvalidConfig      = errors.New("invalid tool configuration")
	ErrInvalidTask        = errors.New("invalid task configuration")
	ErrDuplicateTask      = errors.New("found multiple tasks with the same name")
	ErrUnknownTask        = errors.New("task not found")
	ErrUnknownDependency  = errors.New("unknown dependency")
	ErrCycle              = errors.New("circular dependency")
	ErrDigest             = errors.New("digest failed")
	ErrBuildFailed        = errors.New("build failed")
	ErrInvalidVerbosity   = errors.New("verbosity must be 0, 1 or 2")
	ErrInvalidOutputStyle = errors.New("output must be text or yaml")
)

// CycleError reports the dependency edge at which a cycle was detected.
type CycleError struct {
	Task       string // Task whose dependency closes the cycle
	Dependency string // Dependency already on the traversal path
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("found circular dependency on task %q to its dependency %q", e.Task, e.Dependency)
}

func (e *CycleError) Unwrap() error { return ErrCycle }

// DigestError reports a matched path that could not be hashed.
type DigestError struct {
	Err  error
	Task string
	Path string
}

func (e *DigestError) Error() string {
	return fmt.Sprintf("digest task %q: %s: %v", e.Task, e.Path, e.Err)
}

func (e *DigestError) Unwrap() []error { return []error{ErrDigest, e.Err} }
