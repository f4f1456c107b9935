package usecase

import (
	"context"

	"github.com/borca-dev/borca/internal/domain"
)

// ListTasksInput contains the parameters for listing tasks.
type ListTasksInput struct {
	ConfigPath string // Path to the configuration file (required)
}

// ListTasksOutput contains the tasks defined in a configuration file.
type ListTasksOutput struct {
	DefaultTask string
	Tasks       []domain.TaskSpec // Declaration order
	Warnings    []string
}

// ListTasks is the use case for listing defined tasks.
type ListTasks struct {
	loader domain.ConfigLoader
}

// NewListTasks creates a new ListTasks use case.
func NewListTasks(loader domain.ConfigLoader) *ListTasks {
	return &ListTasks{loader: loader}
}

// Execute loads the configuration and returns its tasks in declaration order.
func (uc *ListTasks) Execute(_ context.Context, in ListTasksInput) (*ListTasksOutput, error) {
	project, err := uc.loader.Load(in.ConfigPath)
	if err != nil {
		return nil, err
	}

	names := project.Registry.Names()
	tasks := make([]domain.TaskSpec, 0, len(names))
	for _, name := range names {
		task, _ := project.Registry.Get(name)
		tasks = append(tasks, task)
	}

	return &ListTasksOutput{
		DefaultTask: project.DefaultTask,
		Tasks:       tasks,
		Warnings:    project.Warnings,
	}, nil
}
