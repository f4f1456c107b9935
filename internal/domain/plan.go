package domain

// TaskStatus is the cache decision taken for a task before it runs.
type TaskStatus string

// Task statuses.
const (
	StatusUpToDate TaskStatus = "up-to-date" // digests match the stored record
	StatusStale    TaskStatus = "stale"      // commands must run
	StatusAlways   TaskStatus = "always"     // not cacheable, runs every time
)

// Display returns a human-readable label for the status.
func (s TaskStatus) Display() string {
	switch s {
	case StatusUpToDate:
		return "up to date"
	case StatusStale:
		return "stale"
	case StatusAlways:
		return "always runs"
	default:
		return string(s)
	}
}

// Reasons attached to a cache decision.
const (
	ReasonNoPatterns     = "no input or output paths"
	ReasonCacheDisabled  = "caching disabled"
	ReasonConfigChanged  = "configuration changed"
	ReasonNoRecord       = "no cache record"
	ReasonChanged        = "inputs or outputs changed"
	ReasonDigestFailed   = "digest failed"
	ReasonRecordUnusable = "cache record unreadable"
	ReasonUnchanged      = "inputs and outputs unchanged"
)

// Decision is the cache decision for one task.
type Decision struct {
	Status TaskStatus
	Reason string
}

// PlannedTask is one entry of a dry-run plan.
// Fields are ordered to minimize memory padding.
type PlannedTask struct {
	Name      string     `yaml:"name"`
	Status    TaskStatus `yaml:"status"`
	Reason    string     `yaml:"reason"`
	Commands  []string   `yaml:"commands"`
	DependsOn []string   `yaml:"depends-on,omitempty"`
}
