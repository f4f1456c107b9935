// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/borca-dev/borca/internal/domain"
)

// Ensure mocks implement their domain interfaces.
var (
	_ domain.CacheStore    = (*MockCacheStore)(nil)
	_ domain.Digester      = (*MockDigester)(nil)
	_ domain.CommandRunner = (*MockCommandRunner)(nil)
	_ domain.ConfigLoader  = (*MockConfigLoader)(nil)
)

// MockCacheStore is an in-memory test double for domain.CacheStore.
// Fields are ordered to minimize memory padding.
type MockCacheStore struct {
	Records  map[string]domain.CacheRecord
	LoadErr  error
	SaveErr  error
	PurgeErr error
	ClearErr error
	Saves    []string // Record names in the order they were saved
	Purges   int
	Clears   int
	mu       sync.Mutex
}

// NewMockCacheStore creates a new MockCacheStore with an initialized map.
func NewMockCacheStore() *MockCacheStore {
	return &MockCacheStore{
		Records: make(map[string]domain.CacheRecord),
	}
}

// Load returns the stored record for name.
func (m *MockCacheStore) Load(name string) (domain.CacheRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return domain.CacheRecord{}, m.LoadErr
	}
	return m.Records[name], nil
}

// Save stores a record for name.
func (m *MockCacheStore) Save(name string, input, output domain.Digest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Records[name] = domain.CacheRecord{Input: input, Output: output, Found: true}
	m.Saves = append(m.Saves, name)
	return nil
}

// Purge removes every record except the project record.
func (m *MockCacheStore) Purge() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PurgeErr != nil {
		return m.PurgeErr
	}
	m.Purges++
	for name := range m.Records {
		if name != domain.ProjectRecordName {
			delete(m.Records, name)
		}
	}
	return nil
}

// Clear removes every record.
func (m *MockCacheStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ClearErr != nil {
		return m.ClearErr
	}
	m.Clears++
	m.Records = make(map[string]domain.CacheRecord)
	return nil
}

// MockDigester is a test double for domain.Digester.
// Patterns without a configured digest hash to their own joined text, so
// digests are stable until a test changes them with Set.
// Fields are ordered to minimize memory padding.
type MockDigester struct {
	Digests map[string]domain.Digest // keyed by PatternKey
	Errs    map[string]error         // keyed by task name
	Calls   int
	mu      sync.Mutex
}

// NewMockDigester creates a new MockDigester with initialized maps.
func NewMockDigester() *MockDigester {
	return &MockDigester{
		Digests: make(map[string]domain.Digest),
		Errs:    make(map[string]error),
	}
}

// PatternKey returns the map key used for a pattern list.
func PatternKey(patterns []string) string {
	return strings.Join(patterns, "\x00")
}

// Set overrides the digest returned for a pattern list.
func (m *MockDigester) Set(patterns []string, d domain.Digest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Digests[PatternKey(patterns)] = d
}

// DigestOf returns the configured digest for patterns.
func (m *MockDigester) DigestOf(taskName string, patterns []string) (domain.Digest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if err, ok := m.Errs[taskName]; ok {
		return nil, err
	}
	if len(patterns) == 0 {
		return domain.Digest{}, nil
	}
	key := PatternKey(patterns)
	if d, ok := m.Digests[key]; ok {
		return d, nil
	}
	return domain.Digest(key), nil
}

// RunCall records one command execution.
type RunCall struct {
	Dir     string
	Command string
}

// MockCommandRunner is a test double for domain.CommandRunner.
// Fields are ordered to minimize memory padding.
type MockCommandRunner struct {
	FailOn map[string]error          // Commands that fail with the given error
	OnRun  func(command string) error // Optional hook called before recording
	Calls  []RunCall
	mu     sync.Mutex
}

// NewMockCommandRunner creates a new MockCommandRunner.
func NewMockCommandRunner() *MockCommandRunner {
	return &MockCommandRunner{
		FailOn: make(map[string]error),
	}
}

// Run records the command and returns the configured error, if any.
func (m *MockCommandRunner) Run(ctx context.Context, dir, command string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.OnRun != nil {
		if err := m.OnRun(command); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, RunCall{Dir: dir, Command: command})
	return m.FailOn[command]
}

// Commands returns the executed commands in call order.
func (m *MockCommandRunner) Commands() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.Calls))
	for _, c := range m.Calls {
		out = append(out, c.Command)
	}
	return out
}

// MockConfigLoader is a test double for domain.ConfigLoader.
type MockConfigLoader struct {
	Project    *domain.Project
	Err        error
	LoadedPath string
}

// Load returns the configured project.
func (m *MockConfigLoader) Load(path string) (*domain.Project, error) {
	m.LoadedPath = path
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Project, nil
}

// NewProject builds a project for tests. It panics on an invalid registry.
func NewProject(dir, defaultTask string, specs ...domain.TaskSpec) *domain.Project {
	reg, err := domain.NewRegistry(specs)
	if err != nil {
		panic(err)
	}
	return &domain.Project{
		Registry:    reg,
		Path:        dir + "/" + domain.DefaultConfigFileName,
		Dir:         dir,
		DefaultTask: defaultTask,
	}
}

// NewDiscardLogger returns a logger that drops every record.
func NewDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
