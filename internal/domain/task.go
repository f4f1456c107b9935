// Package domain contains core build entities, the dependency graph and interfaces.
package domain

import "fmt"

// TaskSpec is a named unit of work declared in the configuration.
// Identity is defined by Name alone; two specs with the same name are the same task.
// Fields are ordered to minimize memory padding.
type TaskSpec struct {
	Name           string   // Unique task name (required)
	Commands       []string // Shell commands, executed in order
	DependsOn      []string // Names of tasks that must run first, in declaration order
	InputPatterns  []string // Glob patterns for input files
	OutputPatterns []string // Glob patterns for output files
}

// Cacheable returns true if the task declares at least one input or output pattern.
// Tasks without patterns are never compared against the cache and always execute.
func (t TaskSpec) Cacheable() bool {
	return len(t.InputPatterns) > 0 || len(t.OutputPatterns) > 0
}

// Registry is an immutable index of task specifications keyed by name.
type Registry struct {
	tasks map[string]TaskSpec
	names []string // declaration order
}

// NewRegistry builds a registry from task specs.
// It rejects empty names, the reserved project record name, duplicate names
// and references to undefined tasks.
func NewRegistry(specs []TaskSpec) (*Registry, error) {
	reg := &Registry{
		tasks: make(map[string]TaskSpec, len(specs)),
		names: make([]string, 0, len(specs)),
	}

	for i, spec := range specs {
		if spec.Name == "" {
			return nil, fmt.Errorf("%w: task #%d has an empty name", ErrInvalidTask, i+1)
		}
		if spec.Name == ProjectRecordName {
			return nil, fmt.Errorf("%w: task name %q is reserved for the configuration record", ErrInvalidTask, spec.Name)
		}
		if _, exists := reg.tasks[spec.Name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTask, spec.Name)
		}
		reg.tasks[spec.Name] = spec
		reg.names = append(reg.names, spec.Name)
	}

	for _, name := range reg.names {
		for _, dep := range reg.tasks[name].DependsOn {
			if _, ok := reg.tasks[dep]; !ok {
				return nil, fmt.Errorf("%w: task %q depends on %q", ErrUnknownDependency, name, dep)
			}
		}
	}

	return reg, nil
}

// Get returns the task with the given name.
func (r *Registry) Get(name string) (TaskSpec, bool) {
	t, ok := r.tasks[name]
	return t, ok
}

// Names returns task names in declaration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Len returns the number of registered tasks.
func (r *Registry) Len() int {
	return len(r.names)
}
