package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/borca-dev/borca/internal/app"
	"github.com/borca-dev/borca/internal/domain"
	"github.com/borca-dev/borca/internal/testutil"
)

const projectConfig = `
[tool.borca]
default-task = "build"

[[tool.borca.task]]
name = "lint"
commands = ["echo lint >> trace.log"]
input-paths = ["src/**/*.py"]

[[tool.borca.task]]
name = "test"
commands = ["echo test >> trace.log"]
depends-on = ["lint"]
input-paths = ["tests/*.py"]

[[tool.borca.task]]
name = "build"
commands = ["echo build >> trace.log", "mkdir -p dist", "cp src/pkg/app.py dist/app.py"]
depends-on = ["test", "lint"]
input-paths = ["src/**/*.py"]
output-paths = ["dist/*"]

[[tool.borca.task]]
name = "fmt"
commands = ["echo fmt >> trace.log"]
`

// testProject writes a configuration and sources into a temporary directory.
func testProject(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("Skipping test on Windows")
	}

	dir := t.TempDir()
	writeFile(t, dir, "pyproject.toml", projectConfig)
	writeFile(t, dir, "src/pkg/app.py", "print('app')\n")
	writeFile(t, dir, "tests/test_app.py", "def test_app(): pass\n")
	return dir
}

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
}

// trace returns the task names recorded by commands, then clears the record.
func trace(t *testing.T, dir string) []string {
	t.Helper()
	p := filepath.Join(dir, "trace.log")
	content, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	require.NoError(t, os.Remove(p))
	return strings.Fields(string(content))
}

// execute runs the root command against the project in dir.
func execute(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCommand(app.New, "test-version")
	root.SetArgs(append([]string{"--toml-path", filepath.Join(dir, "pyproject.toml")}, args...))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRoot_BuildDefaultTask(t *testing.T) {
	dir := testProject(t)

	_, stderr, err := execute(t, dir)

	require.NoError(t, err)
	assert.Equal(t, []string{"lint", "test", "build"}, trace(t, dir))
	assert.Contains(t, stderr, "3 tasks, 3 executed, 0 skipped")
	assert.FileExists(t, filepath.Join(dir, domain.CacheDirName, "project.in"))
	assert.FileExists(t, filepath.Join(dir, domain.CacheDirName, "build.in"))
	assert.FileExists(t, filepath.Join(dir, domain.CacheDirName, "build.out"))
	assert.NoFileExists(t, filepath.Join(dir, domain.CacheDirName, "lint.out"))
}

func TestRoot_SecondRunSkipsEverything(t *testing.T) {
	dir := testProject(t)
	_, _, err := execute(t, dir)
	require.NoError(t, err)
	trace(t, dir)

	_, stderr, err := execute(t, dir)

	require.NoError(t, err)
	assert.Empty(t, trace(t, dir))
	assert.Contains(t, stderr, "3 tasks, 0 executed, 3 skipped")
}

func TestRoot_ChangedInputRerunsOnlyThatTask(t *testing.T) {
	dir := testProject(t)
	_, _, err := execute(t, dir)
	require.NoError(t, err)
	trace(t, dir)

	writeFile(t, dir, "tests/test_app.py", "def test_app(): assert True\n")
	_, stderr, err := execute(t, dir)

	require.NoError(t, err)
	assert.Equal(t, []string{"test"}, trace(t, dir))
	assert.Contains(t, stderr, "1 executed, 2 skipped")
}

func TestRoot_DeletedOutputRerunsTask(t *testing.T) {
	dir := testProject(t)
	_, _, err := execute(t, dir)
	require.NoError(t, err)
	trace(t, dir)

	require.NoError(t, os.RemoveAll(filepath.Join(dir, "dist")))
	_, _, err = execute(t, dir)

	require.NoError(t, err)
	assert.Equal(t, []string{"build"}, trace(t, dir))
	assert.FileExists(t, filepath.Join(dir, "dist", "app.py"))
}

func TestRoot_ConfigChangeRerunsEverything(t *testing.T) {
	dir := testProject(t)
	_, _, err := execute(t, dir)
	require.NoError(t, err)
	trace(t, dir)

	writeFile(t, dir, "pyproject.toml", projectConfig+"\n# tweak\n")
	_, _, err = execute(t, dir)

	require.NoError(t, err)
	assert.Equal(t, []string{"lint", "test", "build"}, trace(t, dir))
}

func TestRoot_ZeroPatternTaskAlwaysRuns(t *testing.T) {
	dir := testProject(t)

	for range 2 {
		_, stderr, err := execute(t, dir, "fmt")
		require.NoError(t, err)
		assert.Equal(t, []string{"fmt"}, trace(t, dir))
		assert.Contains(t, stderr, "1 tasks, 1 executed, 0 skipped")
	}
	assert.NoFileExists(t, filepath.Join(dir, domain.CacheDirName, "fmt.in"))
}

func TestRoot_NoHash(t *testing.T) {
	dir := testProject(t)
	_, _, err := execute(t, dir)
	require.NoError(t, err)
	trace(t, dir)

	_, _, err = execute(t, dir, "--no-hash")

	require.NoError(t, err)
	assert.Equal(t, []string{"lint", "test", "build"}, trace(t, dir))
}

func TestRoot_Clean(t *testing.T) {
	dir := testProject(t)
	_, _, err := execute(t, dir)
	require.NoError(t, err)
	trace(t, dir)

	_, _, err = execute(t, dir, "--clean", "test")

	require.NoError(t, err)
	assert.Equal(t, []string{"lint", "test"}, trace(t, dir))
	assert.NoFileExists(t, filepath.Join(dir, domain.CacheDirName, "build.in"))
}

func TestRoot_ParallelJobs(t *testing.T) {
	dir := testProject(t)

	_, stderr, err := execute(t, dir, "--jobs", "4")

	require.NoError(t, err)
	assert.Equal(t, []string{"lint", "test", "build"}, trace(t, dir))
	assert.Contains(t, stderr, "3 executed")
}

func TestRoot_CommandFailure(t *testing.T) {
	dir := testProject(t)
	writeFile(t, dir, "pyproject.toml", `
[tool.borca]
default-task = "build"

[[tool.borca.task]]
name = "test"
commands = ["echo test >> trace.log", "exit 3", "echo unreachable >> trace.log"]

[[tool.borca.task]]
name = "build"
commands = ["echo build >> trace.log"]
depends-on = ["test"]
`)

	_, stderr, err := execute(t, dir)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBuildFailed)
	assert.Equal(t, []string{"test"}, trace(t, dir))
	assert.Contains(t, stderr, "Build failed:")
	assert.Contains(t, stderr, "2 not run")
}

func TestRoot_CycleFailsBeforeRunning(t *testing.T) {
	dir := testProject(t)
	writeFile(t, dir, "pyproject.toml", `
[tool.borca]
default-task = "build"

[[tool.borca.task]]
name = "build"
commands = ["echo build >> trace.log"]
depends-on = ["test"]

[[tool.borca.task]]
name = "test"
commands = ["echo test >> trace.log"]
depends-on = ["build"]
`)

	_, _, err := execute(t, dir)

	assert.ErrorIs(t, err, domain.ErrCycle)
	assert.Empty(t, trace(t, dir))
}

func TestRoot_UnknownTask(t *testing.T) {
	dir := testProject(t)

	_, _, err := execute(t, dir, "deploy")

	assert.ErrorIs(t, err, domain.ErrUnknownTask)
}

func TestRoot_DryRun(t *testing.T) {
	dir := testProject(t)
	_, _, err := execute(t, dir)
	require.NoError(t, err)
	trace(t, dir)
	writeFile(t, dir, "tests/test_app.py", "changed\n")

	stdout, _, err := execute(t, dir, "--dry-run")

	require.NoError(t, err)
	assert.Empty(t, trace(t, dir))
	assert.Contains(t, stdout, "Plan for build")
	assert.Contains(t, stdout, "1 of 3 tasks would run")
}

func TestRoot_DryRunLeavesCacheUntouched(t *testing.T) {
	dir := testProject(t)
	_, _, err := execute(t, dir)
	require.NoError(t, err)
	trace(t, dir)
	cacheDir := filepath.Join(dir, domain.CacheDirName)
	require.NoError(t, os.Remove(filepath.Join(cacheDir, ".lock")))
	before, err := os.ReadDir(cacheDir)
	require.NoError(t, err)

	_, _, err = execute(t, dir, "--dry-run")

	require.NoError(t, err)
	after, err := os.ReadDir(cacheDir)
	require.NoError(t, err)
	assert.Equal(t, entryNames(before), entryNames(after))
}

func entryNames(entries []os.DirEntry) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestRoot_DryRunYAML(t *testing.T) {
	dir := testProject(t)

	stdout, _, err := execute(t, dir, "--dry-run", "--output", "yaml", "test")

	require.NoError(t, err)
	var doc struct {
		Root  string               `yaml:"root"`
		Tasks []domain.PlannedTask `yaml:"tasks"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, "test", doc.Root)
	require.Len(t, doc.Tasks, 2)
	assert.Equal(t, "lint", doc.Tasks[0].Name)
	assert.Equal(t, domain.StatusStale, doc.Tasks[1].Status)
	assert.Empty(t, trace(t, dir))
}

func TestRoot_List(t *testing.T) {
	dir := testProject(t)

	stdout, _, err := execute(t, dir, "--list")

	require.NoError(t, err)
	assert.Contains(t, stdout, "NAME")
	assert.Contains(t, stdout, "(default)")
	for _, name := range []string{"lint", "test", "build", "fmt"} {
		assert.Contains(t, stdout, name)
	}
	assert.Empty(t, trace(t, dir))
}

func TestRoot_ListYAML(t *testing.T) {
	dir := testProject(t)

	stdout, _, err := execute(t, dir, "--list", "-o", "yaml")

	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, "build", doc["default-task"])
	assert.Len(t, doc["task"], 4)
}

func TestRoot_Warnings(t *testing.T) {
	dir := testProject(t)
	writeFile(t, dir, "pyproject.toml", strings.Replace(projectConfig,
		`default-task = "build"`, "default-task = \"build\"\ncolour = \"always\"", 1))

	_, stderr, err := execute(t, dir, "--list")

	require.NoError(t, err)
	assert.Contains(t, stderr, "Warning: unknown key in [tool.borca]: colour")
}

func TestRoot_FlagValidation(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		args    []string
	}{
		{name: "verbosity out of range", args: []string{"--verbosity", "3"}, wantErr: domain.ErrInvalidVerbosity},
		{name: "unknown output style", args: []string{"--dry-run", "--output", "json"}, wantErr: domain.ErrInvalidOutputStyle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := testProject(t)

			_, _, err := execute(t, dir, tt.args...)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, trace(t, dir))
		})
	}
}

func TestRoot_InvalidJobs(t *testing.T) {
	dir := testProject(t)

	_, _, err := execute(t, dir, "--jobs", "0")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--jobs")
}

func TestRoot_TooManyArgs(t *testing.T) {
	dir := testProject(t)

	_, _, err := execute(t, dir, "lint", "test")

	assert.Error(t, err)
}

func TestRoot_MutuallyExclusiveFlags(t *testing.T) {
	dir := testProject(t)

	_, _, err := execute(t, dir, "--list", "--dry-run")

	assert.Error(t, err)
}

func TestRoot_Version(t *testing.T) {
	var stdout bytes.Buffer
	root := NewRootCommand(app.New, "1.2.3")
	root.SetArgs([]string{"--version"})
	root.SetOut(&stdout)

	require.NoError(t, root.Execute())
	assert.Contains(t, stdout.String(), "1.2.3")
}

func TestRoot_UsesContainerFactory(t *testing.T) {
	project := testutil.NewProject("/virtual", "lint",
		domain.TaskSpec{Name: "lint", Commands: []string{"ruff ."}})
	runner := testutil.NewMockCommandRunner()
	var got app.Options
	factory := func(opts app.Options) (*app.Container, error) {
		got = opts
		return app.NewWithDeps(app.Config{ConfigPath: "/virtual/pyproject.toml"},
			&testutil.MockConfigLoader{Project: project},
			testutil.NewMockCacheStore(),
			testutil.NewMockDigester(),
			runner,
			testutil.NewDiscardLogger(),
		), nil
	}
	root := NewRootCommand(factory, "test-version")
	root.SetArgs([]string{"--toml-path", "custom.toml", "--verbosity", "0"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	require.NoError(t, root.Execute())
	assert.Equal(t, "custom.toml", got.ConfigPath)
	assert.Equal(t, []string{"ruff ."}, runner.Commands())
	assert.Equal(t, "/virtual", runner.Calls[0].Dir)
}
