// Package cli provides the command-line interface for borca.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/borca-dev/borca/internal/app"
	"github.com/borca-dev/borca/internal/domain"
	"github.com/borca-dev/borca/internal/infra/logging"
	"github.com/borca-dev/borca/internal/usecase"
)

// Output styles accepted by --output.
const (
	outputText = "text"
	outputYAML = "yaml"
)

// logLevelEnv overrides the log level when --verbosity is not given.
const logLevelEnv = "BORCA_LOG_LEVEL"

// ContainerFactory builds the container once flags are parsed.
type ContainerFactory func(opts app.Options) (*app.Container, error)

// rootFlags holds the parsed command-line flags.
type rootFlags struct {
	tomlPath  string
	output    string
	verbosity int
	jobs      int
	noHash    bool
	dryRun    bool
	list      bool
	clean     bool
}

// NewRootCommand creates the root command for borca.
// It receives the container factory for dependency injection and version for display.
func NewRootCommand(newContainer ContainerFactory, version string) *cobra.Command {
	var f rootFlags

	root := &cobra.Command{
		Use:   "borca [task-name]",
		Short: "Incremental task runner",
		Long: `borca runs a task and its dependencies as declared in the [tool.borca]
section of pyproject.toml (or a borca.yaml file).

Tasks run in dependency order. A task that declares input-paths or
output-paths is skipped when none of the matched files changed since it
last succeeded. Without a task name the default-task is run.

Patterns are relative to the configuration file. "*" matches within one
directory, "**" matches across directories, and "src/**/*.py" also matches
files directly in src. The task name "project" is reserved.`,
		Example: `  borca
  borca test --verbosity 2
  borca build --toml-path packages/core/pyproject.toml
  borca --dry-run --output yaml`,
		Version: version,
		Args:    cobra.MaximumNArgs(1),
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := resolveLevel(cmd, f.verbosity)
			if err != nil {
				return err
			}
			if f.output != outputText && f.output != outputYAML {
				return fmt.Errorf("%w: got %q", domain.ErrInvalidOutputStyle, f.output)
			}
			if f.jobs < 1 {
				return fmt.Errorf("--jobs must be at least 1, got %d", f.jobs)
			}

			c, err := newContainer(app.Options{
				ConfigPath: f.tomlPath,
				Stdout:     cmd.OutOrStdout(),
				Stderr:     cmd.ErrOrStderr(),
				LogLevel:   level,
			})
			if err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}

			var task string
			if len(args) > 0 {
				task = args[0]
			}

			switch {
			case f.list:
				return runList(cmd, c, f)
			case f.dryRun:
				return runPlan(cmd, c, f, task)
			default:
				return runBuild(cmd, c, f, task)
			}
		},
	}

	flags := root.Flags()
	flags.BoolVar(&f.noHash, "no-hash", false, "Run every task regardless of the cache")
	flags.StringVar(&f.tomlPath, "toml-path", domain.DefaultConfigFileName, "Path to the configuration file")
	flags.IntVarP(&f.verbosity, "verbosity", "v", logging.VerbosityNormal, "Log verbosity: 0 errors only, 1 progress, 2 debug")
	flags.IntVarP(&f.jobs, "jobs", "j", 1, "Maximum number of independent tasks to run at once")
	flags.BoolVarP(&f.dryRun, "dry-run", "n", false, "Print what would run without running anything")
	flags.StringVarP(&f.output, "output", "o", outputText, "Output style for --dry-run and --list: text or yaml")
	flags.BoolVarP(&f.list, "list", "l", false, "List defined tasks and exit")
	flags.BoolVar(&f.clean, "clean", false, "Remove the cache before running")
	root.MarkFlagsMutuallyExclusive("list", "dry-run")
	root.MarkFlagsMutuallyExclusive("list", "clean")
	root.MarkFlagsMutuallyExclusive("dry-run", "clean")

	return root
}

// resolveLevel returns the log level from --verbosity, or from the
// environment when the flag was not given.
func resolveLevel(cmd *cobra.Command, verbosity int) (slog.Level, error) {
	if !cmd.Flags().Changed("verbosity") {
		if env := os.Getenv(logLevelEnv); env != "" {
			return logging.ParseLevel(env), nil
		}
	}
	return logging.LevelFromVerbosity(verbosity)
}

func runList(cmd *cobra.Command, c *app.Container, f rootFlags) error {
	out, err := c.ListTasksUseCase().Execute(cmd.Context(), usecase.ListTasksInput{
		ConfigPath: c.Config.ConfigPath,
	})
	if err != nil {
		return err
	}
	printWarnings(cmd.ErrOrStderr(), out.Warnings)
	if f.output == outputYAML {
		return printTaskListYAML(cmd.OutOrStdout(), out)
	}
	return printTaskList(cmd.OutOrStdout(), out)
}

func runPlan(cmd *cobra.Command, c *app.Container, f rootFlags, task string) error {
	out, err := c.PlanBuildUseCase().Execute(cmd.Context(), usecase.PlanBuildInput{
		ConfigPath: c.Config.ConfigPath,
		Task:       task,
		NoHash:     f.noHash,
	})
	if err != nil {
		return err
	}
	printWarnings(cmd.ErrOrStderr(), out.Project.Warnings)
	if f.output == outputYAML {
		return printPlanYAML(cmd.OutOrStdout(), out)
	}
	return printPlan(cmd.OutOrStdout(), out)
}

func runBuild(cmd *cobra.Command, c *app.Container, f rootFlags, task string) error {
	if f.clean {
		if err := c.CleanCacheUseCase().Execute(cmd.Context(), usecase.CleanCacheInput{}); err != nil {
			return err
		}
	}

	out, err := c.RunBuildUseCase().Execute(cmd.Context(), usecase.RunBuildInput{
		ConfigPath: c.Config.ConfigPath,
		Task:       task,
		Jobs:       f.jobs,
		NoHash:     f.noHash,
	})
	if err != nil {
		return err
	}

	printSummary(cmd.ErrOrStderr(), out)
	if out.Result.Failure != nil {
		return fmt.Errorf("%w: %v", domain.ErrBuildFailed, out.Result.Failure)
	}
	return nil
}
