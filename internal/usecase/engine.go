package usecase

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/borca-dev/borca/internal/domain"
)

// EngineOptions controls how an Engine uses the cache.
type EngineOptions struct {
	Jobs         int  // Maximum tasks running at once; <= 1 runs sequentially
	CacheEnabled bool // false disables every cache read and write
	Suppressed   bool // true treats every task as stale but still records digests
}

// Engine runs an ordered task list, skipping tasks whose digests match the cache.
// Fields are ordered to minimize memory padding.
type Engine struct {
	store    domain.CacheStore
	digester domain.Digester
	runner   domain.CommandRunner
	logger   *slog.Logger
	dir      string
	opts     EngineOptions
}

// NewEngine creates a new Engine. Commands run in dir.
func NewEngine(
	store domain.CacheStore,
	digester domain.Digester,
	runner domain.CommandRunner,
	logger *slog.Logger,
	dir string,
	opts EngineOptions,
) *Engine {
	return &Engine{
		store:    store,
		digester: digester,
		runner:   runner,
		logger:   logger,
		dir:      dir,
		opts:     opts,
	}
}

type taskOutcome int

const (
	outcomeFailed taskOutcome = iota
	outcomeExecuted
	outcomeSkipped
)

// Execute runs tasks in the given order. Every dependency of a task must
// appear before it in tasks.
//
// The first failing command stops the build: the remaining commands of that
// task and every task not yet started are not run. Cache records of tasks
// that completed before the failure are kept.
func (e *Engine) Execute(ctx context.Context, tasks []domain.TaskSpec) domain.RunResult {
	if e.opts.Jobs > 1 && len(tasks) > 1 {
		return e.executeParallel(ctx, tasks)
	}

	result := domain.RunResult{Total: len(tasks)}
	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			result.Failure = &domain.TaskFailure{Task: task.Name, Err: err}
			return result
		}

		outcome, failure := e.runTask(ctx, task)
		if failure != nil {
			result.Failure = failure
			return result
		}
		tally(&result, outcome)
	}
	return result
}

// executeParallel runs mutually independent tasks concurrently, up to Jobs at once.
// A task starts once every dependency in tasks has executed or been skipped.
func (e *Engine) executeParallel(ctx context.Context, tasks []domain.TaskSpec) domain.RunResult {
	type done struct {
		failure *domain.TaskFailure
		name    string
		outcome taskOutcome
	}

	result := domain.RunResult{Total: len(tasks)}
	dependents := domain.Dependents(tasks)

	byName := make(map[string]domain.TaskSpec, len(tasks))
	for _, t := range tasks {
		byName[t.Name] = t
	}
	pending := make(map[string]int, len(tasks))
	for _, deps := range dependents {
		for _, d := range deps {
			pending[d]++
		}
	}

	var ready []string
	for _, t := range tasks {
		if pending[t.Name] == 0 {
			ready = append(ready, t.Name)
		}
	}

	var g errgroup.Group
	g.SetLimit(e.opts.Jobs)
	results := make(chan done, len(tasks))
	running := 0
	stopped := false

	for {
		for !stopped && len(ready) > 0 {
			if err := ctx.Err(); err != nil {
				result.Failure = &domain.TaskFailure{Task: ready[0], Err: err}
				stopped = true
				break
			}
			task := byName[ready[0]]
			ready = ready[1:]
			running++
			g.Go(func() error {
				outcome, failure := e.runTask(ctx, task)
				results <- done{name: task.Name, outcome: outcome, failure: failure}
				return nil
			})
		}
		if running == 0 {
			break
		}

		d := <-results
		running--
		if d.failure != nil {
			if result.Failure == nil {
				result.Failure = d.failure
			}
			stopped = true
			continue
		}
		tally(&result, d.outcome)
		for _, next := range dependents[d.name] {
			pending[next]--
			if pending[next] == 0 {
				ready = append(ready, next)
			}
		}
	}

	_ = g.Wait()
	return result
}

// tally counts a successful outcome.
func tally(r *domain.RunResult, outcome taskOutcome) {
	switch outcome {
	case outcomeExecuted:
		r.Executed++
	case outcomeSkipped:
		r.Skipped++
	case outcomeFailed:
	}
}

// runTask decides whether a task is up to date and runs its commands if not.
func (e *Engine) runTask(ctx context.Context, task domain.TaskSpec) (taskOutcome, *domain.TaskFailure) {
	log := e.logger.With("task", task.Name)

	decision := e.Decide(task)
	if decision.Status == domain.StatusUpToDate {
		log.Info("task up to date, skipping")
		return outcomeSkipped, nil
	}

	log.Info("running task", "reason", decision.Reason)
	for _, command := range task.Commands {
		log.Debug("running command", "command", command)
		if err := e.runner.Run(ctx, e.dir, command); err != nil {
			log.Error("command failed", "command", command, "error", err)
			return outcomeFailed, &domain.TaskFailure{Task: task.Name, Command: command, Err: err}
		}
	}

	if decision.Status == domain.StatusStale {
		e.record(log, task)
	}
	return outcomeExecuted, nil
}

// Decide returns the cache decision for a task without running anything.
func (e *Engine) Decide(task domain.TaskSpec) domain.Decision {
	if !e.opts.CacheEnabled {
		return domain.Decision{Status: domain.StatusAlways, Reason: domain.ReasonCacheDisabled}
	}
	if !task.Cacheable() {
		return domain.Decision{Status: domain.StatusAlways, Reason: domain.ReasonNoPatterns}
	}
	if e.opts.Suppressed {
		return domain.Decision{Status: domain.StatusStale, Reason: domain.ReasonConfigChanged}
	}

	log := e.logger.With("task", task.Name)
	input, output, err := e.digests(task)
	if err != nil {
		log.Warn("cannot compute digests, treating task as stale", "error", err)
		return domain.Decision{Status: domain.StatusStale, Reason: domain.ReasonDigestFailed}
	}

	record, err := e.store.Load(task.Name)
	if err != nil {
		log.Warn("cannot read cache record, treating task as stale", "error", err)
		return domain.Decision{Status: domain.StatusStale, Reason: domain.ReasonRecordUnusable}
	}
	log.Debug("compared digests",
		"input", input.String(), "output", output.String(),
		"cached_input", record.Input.String(), "cached_output", record.Output.String())

	switch {
	case !record.Found:
		return domain.Decision{Status: domain.StatusStale, Reason: domain.ReasonNoRecord}
	case !record.Matches(input, output):
		return domain.Decision{Status: domain.StatusStale, Reason: domain.ReasonChanged}
	default:
		return domain.Decision{Status: domain.StatusUpToDate, Reason: domain.ReasonUnchanged}
	}
}

// record stores the digests of a task that just ran. Failures only warn.
func (e *Engine) record(log *slog.Logger, task domain.TaskSpec) {
	input, output, err := e.digests(task)
	if err != nil {
		log.Warn("cannot compute digests, cache not updated", "error", err)
		return
	}
	if err := e.store.Save(task.Name, input, output); err != nil {
		log.Warn("cannot write cache record", "error", err)
		return
	}
	log.Debug("cache record updated", "input", input.String(), "output", output.String())
}

func (e *Engine) digests(task domain.TaskSpec) (domain.Digest, domain.Digest, error) {
	input, err := e.digester.DigestOf(task.Name, task.InputPatterns)
	if err != nil {
		return nil, nil, err
	}
	output, err := e.digester.DigestOf(task.Name, task.OutputPatterns)
	if err != nil {
		return nil, nil, err
	}
	return input, output, nil
}
