package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/borca-dev/borca/internal/domain"
	"github.com/borca-dev/borca/internal/usecase"
)

// printWarnings writes configuration warnings to w.
func printWarnings(w io.Writer, warnings []string) {
	styles := DefaultStyles()
	for _, warning := range warnings {
		_, _ = fmt.Fprintln(w, styles.Warning.Render("Warning: "+warning))
	}
}

// printSummary writes the one-line result of a build.
func printSummary(w io.Writer, out *usecase.RunBuildOutput) {
	styles := DefaultStyles()
	r := out.Result
	counts := fmt.Sprintf("%d tasks, %d executed, %d skipped", r.Total, r.Executed, r.Skipped)

	if r.Failure == nil {
		_, _ = fmt.Fprintf(w, "%s %s\n",
			styles.Success.Render("Build succeeded:"),
			counts)
		return
	}

	_, _ = fmt.Fprintf(w, "%s task %s failed: %s, %d not run\n",
		styles.Failure.Render("Build failed:"),
		styles.TaskName.Render(r.Failure.Task),
		counts, r.NotRun())
}

// printTaskList writes defined tasks as a table, marking the default task.
func printTaskList(w io.Writer, out *usecase.ListTasksOutput) error {
	styles := DefaultStyles()
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tDEPENDS ON\tCOMMANDS")
	for _, task := range out.Tasks {
		name := task.Name
		if name == out.DefaultTask {
			name += " " + styles.Default.Render("(default)")
		}
		deps := strings.Join(task.DependsOn, ", ")
		if deps == "" {
			deps = "-"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\n", name, deps, len(task.Commands))
	}
	return tw.Flush()
}

// printPlan writes a dry-run plan, one task per line in execution order.
func printPlan(w io.Writer, out *usecase.PlanBuildOutput) error {
	styles := DefaultStyles()
	_, _ = fmt.Fprintf(w, "Plan for %s:\n", styles.TaskName.Render(out.Root))

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	for i, task := range out.Tasks {
		status := styles.StatusStyle(task.Status).Render(task.Status.Display())
		_, _ = fmt.Fprintf(tw, "%d.\t%s\t%s\t%s\n", i+1, task.Name, status, styles.Muted.Render(task.Reason))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	var run int
	for _, task := range out.Tasks {
		if task.Status != domain.StatusUpToDate {
			run++
		}
	}
	_, _ = fmt.Fprintf(w, "%d of %d tasks would run\n", run, len(out.Tasks))
	return nil
}

// planDocument is the YAML form of a dry-run plan.
type planDocument struct {
	Root  string               `yaml:"root"`
	Tasks []domain.PlannedTask `yaml:"tasks"`
}

// printPlanYAML writes a dry-run plan as YAML.
func printPlanYAML(w io.Writer, out *usecase.PlanBuildOutput) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(planDocument{Root: out.Root, Tasks: out.Tasks}); err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	return enc.Close()
}

// listedTask is the YAML form of a defined task.
type listedTask struct {
	Name        string   `yaml:"name"`
	Commands    []string `yaml:"commands"`
	DependsOn   []string `yaml:"depends-on,omitempty"`
	InputPaths  []string `yaml:"input-paths,omitempty"`
	OutputPaths []string `yaml:"output-paths,omitempty"`
}

// listDocument is the YAML form of the task list.
type listDocument struct {
	DefaultTask string       `yaml:"default-task"`
	Tasks       []listedTask `yaml:"task"`
}

// printTaskListYAML writes defined tasks as YAML using the configuration keys.
func printTaskListYAML(w io.Writer, out *usecase.ListTasksOutput) error {
	doc := listDocument{DefaultTask: out.DefaultTask}
	for _, task := range out.Tasks {
		doc.Tasks = append(doc.Tasks, listedTask{
			Name:        task.Name,
			Commands:    task.Commands,
			DependsOn:   task.DependsOn,
			InputPaths:  task.InputPatterns,
			OutputPaths: task.OutputPatterns,
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode task list: %w", err)
	}
	return enc.Close()
}
