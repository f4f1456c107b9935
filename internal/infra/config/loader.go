// Package config provides configuration loading functionality.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/borca-dev/borca/internal/domain"
)

// Ensure Loader implements domain.ConfigLoader.
var _ domain.ConfigLoader = (*Loader)(nil)

// Configuration keys.
const (
	keyTool        = "tool"
	keyBorca       = "borca"
	keyDefaultTask = "default-task"
	keyTask        = "task"
	keyName        = "name"
	keyCommands    = "commands"
	keyDependsOn   = "depends-on"
	keyInputPaths  = "input-paths"
	keyOutputPaths = "output-paths"
)

// Loader loads a project from a TOML or YAML file.
//
// TOML files (pyproject.toml) keep the configuration under [tool.borca].
// YAML files (.yaml, .yml) hold the same keys at the document root.
type Loader struct{}

// NewLoader creates a new Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads, parses and validates the configuration file at path.
func (l *Loader) Load(path string) (*domain.Project, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: could not find %s", domain.ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrConfigNotFound, path)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	section, err := decodeSection(absPath, data)
	if err != nil {
		return nil, err
	}

	project, err := convertRawToProject(section)
	if err != nil {
		return nil, err
	}
	project.Path = absPath
	project.Dir = filepath.Dir(absPath)
	return project, nil
}

// decodeSection decodes the file and returns the map holding the borca keys.
func decodeSection(path string, data []byte) (map[string]any, error) {
	var raw map[string]any

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrInvalidConfig, filepath.Base(path), err)
		}
		if raw == nil {
			return nil, fmt.Errorf("%w: %s is empty", domain.ErrInvalidConfig, filepath.Base(path))
		}
		return raw, nil
	default:
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrInvalidConfig, filepath.Base(path), err)
		}
	}

	tool, ok := raw[keyTool]
	if !ok {
		return nil, fmt.Errorf("%w: heading for %q not found", domain.ErrInvalidConfig, keyTool)
	}
	toolMap, ok := tool.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q must be a table", domain.ErrInvalidConfig, keyTool)
	}
	borca, ok := toolMap[keyBorca]
	if !ok {
		return nil, fmt.Errorf("%w: heading for %q not found", domain.ErrInvalidConfig, "tool.borca")
	}
	section, ok := borca.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q must be a table, found %T", domain.ErrInvalidConfig, "tool.borca", borca)
	}
	return section, nil
}

// convertRawToProject converts the raw borca section into a validated project and collects warnings.
func convertRawToProject(raw map[string]any) (*domain.Project, error) {
	var warnings []string
	res := &domain.Project{}

	var rawTasks []any
	for key, value := range raw {
		switch key {
		case keyDefaultTask:
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("%w: invalid type for %q (should be string)", domain.ErrInvalidConfig, keyDefaultTask)
			}
			res.DefaultTask = s
		case keyTask:
			list, ok := value.([]any)
			if !ok {
				return nil, fmt.Errorf("%w: invalid type for %q (must be a list)", domain.ErrInvalidConfig, keyTask)
			}
			rawTasks = list
		default:
			warnings = append(warnings, fmt.Sprintf("unknown key in [tool.borca]: %s", key))
		}
	}

	if _, ok := raw[keyDefaultTask]; !ok {
		return nil, fmt.Errorf("%w: %q field not found", domain.ErrInvalidConfig, keyDefaultTask)
	}
	if res.DefaultTask == "" {
		return nil, fmt.Errorf("%w: %q must not be empty", domain.ErrInvalidConfig, keyDefaultTask)
	}
	if _, ok := raw[keyTask]; !ok {
		return nil, fmt.Errorf("%w: heading for %q not found", domain.ErrInvalidConfig, "tool.borca.task")
	}
	if len(rawTasks) == 0 {
		return nil, fmt.Errorf("%w: must have at least one task", domain.ErrInvalidConfig)
	}

	specs := make([]domain.TaskSpec, 0, len(rawTasks))
	for i, item := range rawTasks {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: task #%d must be a table", domain.ErrInvalidTask, i+1)
		}
		spec, taskWarnings, err := parseTask(i, m)
		if err != nil {
			return nil, err
		}
		warnings = append(warnings, taskWarnings...)
		specs = append(specs, spec)
	}

	reg, err := domain.NewRegistry(specs)
	if err != nil {
		return nil, err
	}
	if _, ok := reg.Get(res.DefaultTask); !ok {
		return nil, fmt.Errorf("%w: default task %q was not found in defined tasks", domain.ErrUnknownTask, res.DefaultTask)
	}

	sort.Strings(warnings)
	res.Registry = reg
	res.Warnings = warnings
	return res, nil
}

// parseTask converts one raw task table into a TaskSpec.
func parseTask(index int, raw map[string]any) (domain.TaskSpec, []string, error) {
	var spec domain.TaskSpec
	var warnings []string

	name, ok := raw[keyName].(string)
	if !ok || name == "" {
		return spec, nil, fmt.Errorf("%w: task #%d requires a non-empty %q", domain.ErrInvalidTask, index+1, keyName)
	}
	spec.Name = name

	if _, ok := raw[keyCommands]; !ok {
		return spec, nil, fmt.Errorf("%w: task %q requires %q", domain.ErrInvalidTask, name, keyCommands)
	}

	for key, value := range raw {
		var err error
		switch key {
		case keyName:
		case keyCommands:
			spec.Commands, err = stringList(name, key, value)
		case keyDependsOn:
			spec.DependsOn, err = stringList(name, key, value)
		case keyInputPaths:
			spec.InputPatterns, err = stringList(name, key, value)
		case keyOutputPaths:
			spec.OutputPatterns, err = stringList(name, key, value)
		default:
			warnings = append(warnings, fmt.Sprintf("unknown key in task %q: %s", name, key))
		}
		if err != nil {
			return spec, nil, err
		}
	}

	return spec, warnings, nil
}

// stringList converts a raw list value into a slice of strings.
func stringList(task, key string, value any) ([]string, error) {
	list, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: task %q: %q must be a list of strings", domain.ErrInvalidTask, task, key)
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: task %q: %q must contain only strings, found %T", domain.ErrInvalidTask, task, key, item)
		}
		out = append(out, s)
	}
	return out, nil
}
