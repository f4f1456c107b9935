// Package runner provides shell command execution for tasks.
package runner

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/borca-dev/borca/internal/domain"
)

// waitDelay bounds how long a cancelled command may hold its output pipes
// open through orphaned child processes.
const waitDelay = 2 * time.Second

// Client implements domain.CommandRunner interface.
type Client struct {
	stdout io.Writer
	stderr io.Writer
	shell  string
}

// NewClient creates a new command runner that streams command output to
// stdout and stderr. Nil writers discard the output.
func NewClient(stdout, stderr io.Writer) *Client {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	return &Client{
		stdout: stdout,
		stderr: stderr,
		shell:  "sh",
	}
}

// Ensure Client implements domain.CommandRunner interface.
var _ domain.CommandRunner = (*Client)(nil)

// Run executes a command through the shell in dir.
func (c *Client) Run(ctx context.Context, dir, command string) error {
	// #nosec G204 - commands come from the project's own configuration file
	cmd := exec.CommandContext(ctx, c.shell, "-c", command)
	cmd.Dir = dir
	cmd.Stdout = c.stdout
	cmd.Stderr = c.stderr
	cmd.WaitDelay = waitDelay

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("execute command: %w", err)
	}

	return nil
}
