package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		specs   []TaskSpec
	}{
		{
			name: "valid tasks",
			specs: []TaskSpec{
				{Name: "lint", Commands: []string{"ruff ."}},
				{Name: "test", DependsOn: []string{"lint"}},
			},
		},
		{
			name:  "empty registry",
			specs: nil,
		},
		{
			name:    "empty name",
			specs:   []TaskSpec{{Name: ""}},
			wantErr: ErrInvalidTask,
		},
		{
			name:    "reserved name",
			specs:   []TaskSpec{{Name: ProjectRecordName, Commands: []string{"make"}}},
			wantErr: ErrInvalidTask,
		},
		{
			name:    "duplicate name",
			specs:   []TaskSpec{{Name: "lint"}, {Name: "lint", Commands: []string{"other"}}},
			wantErr: ErrDuplicateTask,
		},
		{
			name:    "unknown dependency",
			specs:   []TaskSpec{{Name: "build", DependsOn: []string{"missing"}}},
			wantErr: ErrUnknownDependency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := NewRegistry(tt.specs)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, reg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.specs), reg.Len())
		})
	}
}

func TestRegistry_GetAndNames(t *testing.T) {
	reg, err := NewRegistry([]TaskSpec{
		{Name: "test", Commands: []string{"pytest"}},
		{Name: "lint", Commands: []string{"ruff ."}},
	})
	require.NoError(t, err)

	task, ok := reg.Get("lint")
	assert.True(t, ok)
	assert.Equal(t, []string{"ruff ."}, task.Commands)

	_, ok = reg.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"test", "lint"}, reg.Names())

	// Names returns a copy.
	got := reg.Names()
	got[0] = "mutated"
	assert.Equal(t, []string{"test", "lint"}, reg.Names())
}

func TestTaskSpec_Cacheable(t *testing.T) {
	assert.False(t, TaskSpec{Name: "a"}.Cacheable())
	assert.True(t, TaskSpec{Name: "a", InputPatterns: []string{"src/*.py"}}.Cacheable())
	assert.True(t, TaskSpec{Name: "a", OutputPatterns: []string{"dist/*"}}.Cacheable())
}

func TestProject_RootTask(t *testing.T) {
	p := &Project{DefaultTask: "build"}
	assert.Equal(t, "build", p.RootTask(""))
	assert.Equal(t, "lint", p.RootTask("lint"))
}
