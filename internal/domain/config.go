package domain

import "path/filepath"

// File and directory names used by borca.
const (
	DefaultConfigFileName = "pyproject.toml" // Config file looked up in the working directory
	CacheDirName          = ".borca_cache"   // Cache directory next to the config file
	InputRecordExt        = ".in"            // Extension of input digest records
	OutputRecordExt       = ".out"           // Extension of output digest records
)

// Project is a parsed and validated configuration file.
// Fields are ordered to minimize memory padding.
type Project struct {
	Registry    *Registry // Tasks defined in the file
	Path        string    // Absolute path of the config file
	Dir         string    // Directory containing the config file
	DefaultTask string    // Task used when none is given on the command line
	Warnings    []string  // Unknown keys and other non-fatal findings
}

// RootTask returns the requested task name, falling back to the default task.
func (p *Project) RootTask(requested string) string {
	if requested != "" {
		return requested
	}
	return p.DefaultTask
}

// CacheDir returns the cache directory for a project directory.
func CacheDir(projectDir string) string {
	return filepath.Join(projectDir, CacheDirName)
}
