// Package app provides the dependency injection container for the application.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/borca-dev/borca/internal/domain"
	"github.com/borca-dev/borca/internal/infra/cachestore"
	"github.com/borca-dev/borca/internal/infra/config"
	"github.com/borca-dev/borca/internal/infra/digest"
	"github.com/borca-dev/borca/internal/infra/logging"
	"github.com/borca-dev/borca/internal/infra/runner"
	"github.com/borca-dev/borca/internal/usecase"
)

// Options holds the process-level settings used to build a Container.
type Options struct {
	Stdout     io.Writer  // Command output; defaults to os.Stdout
	Stderr     io.Writer  // Command errors and log records; defaults to os.Stderr
	ConfigPath string     // Configuration file, relative to the working directory or absolute
	LogLevel   slog.Level // Minimum level of log records
}

// Config holds the application configuration paths.
type Config struct {
	ConfigPath string // Absolute path of the configuration file
	ProjectDir string // Directory containing the configuration file; commands run here
	CacheDir   string // Path to .borca_cache
}

// newConfig derives the paths of a run from the configuration file path.
func newConfig(configPath string) (Config, error) {
	if configPath == "" {
		configPath = domain.DefaultConfigFileName
	}
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return Config{}, fmt.Errorf("resolve config path: %w", err)
	}
	projectDir := filepath.Dir(abs)
	return Config{
		ConfigPath: abs,
		ProjectDir: projectDir,
		CacheDir:   domain.CacheDir(projectDir),
	}, nil
}

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
type Container struct {
	// Ports (interfaces bound to implementations)
	ConfigLoader domain.ConfigLoader
	Cache        domain.CacheStore
	Digester     domain.Digester
	Runner       domain.CommandRunner

	// Pointer fields
	Logger *slog.Logger

	// Configuration
	Config Config
}

// New creates a new Container for the configuration file named in opts.
// The file itself is read later, by the use cases.
func New(opts Options) (*Container, error) {
	cfg, err := newConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	stdout, stderr := opts.Stdout, opts.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	return &Container{
		ConfigLoader: config.NewLoader(),
		Cache:        cachestore.New(cfg.CacheDir),
		Digester:     digest.NewHasher(cfg.ProjectDir, domain.CacheDirName),
		Runner:       runner.NewClient(stdout, stderr),
		Logger:       logging.New(stderr, opts.LogLevel),
		Config:       cfg,
	}, nil
}

// NewWithDeps creates a new Container with custom dependencies for testing.
func NewWithDeps(
	cfg Config,
	loader domain.ConfigLoader,
	cache domain.CacheStore,
	digester domain.Digester,
	runner domain.CommandRunner,
	logger *slog.Logger,
) *Container {
	return &Container{
		ConfigLoader: loader,
		Cache:        cache,
		Digester:     digester,
		Runner:       runner,
		Logger:       logger,
		Config:       cfg,
	}
}

// UseCase factory methods

// RunBuildUseCase returns a new RunBuild use case.
func (c *Container) RunBuildUseCase() *usecase.RunBuild {
	return usecase.NewRunBuild(c.ConfigLoader, c.Cache, c.Digester, c.Runner, c.Logger)
}

// PlanBuildUseCase returns a new PlanBuild use case.
func (c *Container) PlanBuildUseCase() *usecase.PlanBuild {
	return usecase.NewPlanBuild(c.ConfigLoader, c.Cache, c.Digester, c.Logger)
}

// ListTasksUseCase returns a new ListTasks use case.
func (c *Container) ListTasksUseCase() *usecase.ListTasks {
	return usecase.NewListTasks(c.ConfigLoader)
}

// CleanCacheUseCase returns a new CleanCache use case.
func (c *Container) CleanCacheUseCase() *usecase.CleanCache {
	return usecase.NewCleanCache(c.Cache, c.Logger)
}
