package domain

import "context"

// CacheStore persists the last known digests of each task.
type CacheStore interface {
	// Load returns the record for a task. A missing record is returned with
	// Found set to false and a nil error.
	Load(name string) (CacheRecord, error)

	// Save persists both digests of a task.
	Save(name string, input, output Digest) error

	// Purge removes every task record except the project record.
	Purge() error

	// Clear removes the whole cache, including the project record.
	Clear() error
}

// Digester computes content digests for a task's file patterns.
type Digester interface {
	// DigestOf folds the content of every regular file matched by patterns
	// into a single digest. Zero patterns yield the empty digest.
	DigestOf(taskName string, patterns []string) (Digest, error)
}

// CommandRunner executes a single shell command.
type CommandRunner interface {
	// Run executes command in dir and returns an error if it fails.
	Run(ctx context.Context, dir, command string) error
}

// ConfigLoader loads a project from a configuration file.
type ConfigLoader interface {
	// Load parses and validates the configuration file at path.
	Load(path string) (*Project, error)
}
