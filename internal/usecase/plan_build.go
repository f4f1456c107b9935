package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/borca-dev/borca/internal/domain"
)

// PlanBuildInput contains the parameters for planning a build.
type PlanBuildInput struct {
	ConfigPath string // Path to the configuration file (required)
	Task       string // Root task; empty selects the default task
	NoHash     bool   // Plan as if the cache were disabled
}

// PlanBuildOutput contains the planned tasks in execution order.
type PlanBuildOutput struct {
	Project *domain.Project
	Root    string
	Tasks   []domain.PlannedTask
}

// PlanBuild is the use case for a dry run: it reports what a build would do
// without running commands or writing to the cache.
// Fields are ordered to minimize memory padding.
type PlanBuild struct {
	loader   domain.ConfigLoader
	store    domain.CacheStore
	digester domain.Digester
	logger   *slog.Logger
}

// NewPlanBuild creates a new PlanBuild use case.
func NewPlanBuild(loader domain.ConfigLoader, store domain.CacheStore, digester domain.Digester, logger *slog.Logger) *PlanBuild {
	return &PlanBuild{
		loader:   loader,
		store:    store,
		digester: digester,
		logger:   logger,
	}
}

// Execute returns the execution order of the root task with the cache
// decision for each task.
func (uc *PlanBuild) Execute(_ context.Context, in PlanBuildInput) (*PlanBuildOutput, error) {
	project, err := uc.loader.Load(in.ConfigPath)
	if err != nil {
		return nil, err
	}

	root := project.RootTask(in.Task)
	order, err := domain.Order(project.Registry, root)
	if err != nil {
		return nil, fmt.Errorf("invalid task graph: %w", err)
	}

	var opts EngineOptions
	if !in.NoHash {
		state := checkProject(uc.store, uc.digester, uc.logger, project)
		opts.CacheEnabled = state.cacheEnabled
		opts.Suppressed = state.changed
	}
	// The engine never runs a command here, so no runner is needed.
	engine := NewEngine(uc.store, uc.digester, nil, uc.logger, project.Dir, opts)

	planned := make([]domain.PlannedTask, 0, len(order))
	for _, task := range order {
		decision := engine.Decide(task)
		planned = append(planned, domain.PlannedTask{
			Name:      task.Name,
			Status:    decision.Status,
			Reason:    decision.Reason,
			Commands:  task.Commands,
			DependsOn: task.DependsOn,
		})
	}

	return &PlanBuildOutput{
		Project: project,
		Root:    root,
		Tasks:   planned,
	}, nil
}
