package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/borca-dev/borca/internal/domain"
)

// RunBuildInput contains the parameters for running a build.
type RunBuildInput struct {
	ConfigPath string // Path to the configuration file (required)
	Task       string // Root task; empty selects the default task
	Jobs       int    // Maximum parallel tasks; <= 1 runs sequentially
	NoHash     bool   // Disable the cache for this run
}

// RunBuildOutput contains the result of a build.
type RunBuildOutput struct {
	Project *domain.Project
	Order   []domain.TaskSpec // Tasks in execution order
	Result  domain.RunResult  // Counts and failure of the run
}

// RunBuild is the use case for building a root task and its dependencies.
// Fields are ordered to minimize memory padding.
type RunBuild struct {
	loader   domain.ConfigLoader
	store    domain.CacheStore
	digester domain.Digester
	runner   domain.CommandRunner
	logger   *slog.Logger
}

// NewRunBuild creates a new RunBuild use case.
func NewRunBuild(
	loader domain.ConfigLoader,
	store domain.CacheStore,
	digester domain.Digester,
	runner domain.CommandRunner,
	logger *slog.Logger,
) *RunBuild {
	return &RunBuild{
		loader:   loader,
		store:    store,
		digester: digester,
		runner:   runner,
		logger:   logger,
	}
}

// Execute loads the configuration, orders the tasks reachable from the root
// and runs them.
//
// Configuration and cycle errors are returned before any command runs. A
// failing command is not an error: it is reported in Output.Result.Failure.
func (uc *RunBuild) Execute(ctx context.Context, in RunBuildInput) (*RunBuildOutput, error) {
	project, err := uc.loader.Load(in.ConfigPath)
	if err != nil {
		return nil, err
	}
	for _, w := range project.Warnings {
		uc.logger.Warn("configuration warning", "detail", w)
	}

	root := project.RootTask(in.Task)
	order, err := domain.Order(project.Registry, root)
	if err != nil {
		return nil, fmt.Errorf("invalid task graph: %w", err)
	}
	uc.logger.Debug("resolved execution order", "task", root, "count", len(order))

	opts := EngineOptions{Jobs: in.Jobs}
	if !in.NoHash {
		opts.CacheEnabled, opts.Suppressed = uc.applyProjectGate(project)
	}

	engine := NewEngine(uc.store, uc.digester, uc.runner, uc.logger, project.Dir, opts)
	result := engine.Execute(ctx, order)

	return &RunBuildOutput{
		Project: project,
		Order:   order,
		Result:  result,
	}, nil
}

// applyProjectGate compares the configuration digest with the project record.
// On a change, task records are purged and caching is suppressed for the run.
// The project record is written once, before any task runs.
func (uc *RunBuild) applyProjectGate(project *domain.Project) (enabled, suppressed bool) {
	state := checkProject(uc.store, uc.digester, uc.logger, project)
	if !state.cacheEnabled {
		return false, false
	}

	if state.changed {
		uc.logger.Info("configuration changed, all tasks will run")
		if err := uc.store.Purge(); err != nil {
			uc.logger.Warn("cannot purge task records", "error", err)
		}
		if err := uc.store.Save(domain.ProjectRecordName, state.digest, nil); err != nil {
			uc.logger.Warn("cannot write project record", "error", err)
		}
	}
	return true, state.changed
}
