package usecase

import (
	"log/slog"

	"github.com/borca-dev/borca/internal/domain"
)

// projectState is the outcome of comparing the configuration file with the
// digest stored under the project record.
type projectState struct {
	digest       domain.Digest
	cacheEnabled bool // false if the configuration could not be digested
	changed      bool // true if no matching project record exists
}

// checkProject digests the configuration file and compares it with the
// project record. It never writes to the store.
func checkProject(store domain.CacheStore, digester domain.Digester, logger *slog.Logger, project *domain.Project) projectState {
	digest, err := digester.DigestOf(domain.ProjectRecordName, []string{project.Path})
	if err != nil {
		logger.Warn("cannot digest configuration file, caching disabled for this run",
			"path", project.Path, "error", err)
		return projectState{}
	}

	state := projectState{digest: digest, cacheEnabled: true}
	record, err := store.Load(domain.ProjectRecordName)
	if err != nil {
		logger.Warn("cannot read project record, treating configuration as changed", "error", err)
		state.changed = true
		return state
	}
	state.changed = !record.Matches(digest, nil)
	return state
}
