package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_ResolvesPaths(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/offset_pages.yaml")
	require.NoError(t, err)

	assert.Equal(t, "offset_pages", s.Name)
	assert.Equal(t, filepath.Join("testdata", "specs"), s.Specs)
	assert.Equal(t, filepath.Join("testdata", "fixtures", "articles.yaml"), s.Fixture)
	require.Len(t, s.Steps, 5)
	require.NotNil(t, s.Steps[1].Request.Page)
	assert.Equal(t, 3, *s.Steps[1].Request.Page)
	assert.Equal(t, map[string]any{"status": "published"}, s.Steps[0].Request.Filter)
}

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "specs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rows.yaml"), []byte("table: articles\nrows: []\n"), 0644))
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

const scenarioHeader = `name: s
description: d
specs: specs
collection: Articles
fixture: rows.yaml
`

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"unknown field", scenarioHeader + "step: []\n", "failed to parse YAML"},
		{"no steps", scenarioHeader, "steps list is required"},
		{"missing name", "description: d\nsteps: [{name: a}]\n", "name is required"},
		{"missing fixture file", "name: s\ndescription: d\nspecs: specs\ncollection: A\nfixture: nope.yaml\nsteps: [{name: a}]\n", "file not found"},
		{"unknown backend", scenarioHeader + "backends: [oracle]\nsteps: [{name: a}]\n", `unknown backend "oracle"`},
		{"unnamed step", scenarioHeader + "steps: [{request: {}}]\n", "steps[0]: name is required"},
		{"duplicate step", scenarioHeader + "steps: [{name: a}, {name: a}]\n", "duplicate step name"},
		{"first step follows", scenarioHeader + "steps: [{name: a, follow: next}]\n", "cannot follow"},
		{"bad follow", scenarioHeader + "steps: [{name: a}, {name: b, follow: up}]\n", "follow must be"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/nope.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenarios_Empty(t *testing.T) {
	_, err := LoadScenarios(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no scenario files")
}
