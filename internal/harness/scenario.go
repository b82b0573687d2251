package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/pagewin/internal/collection"
)

// Scenario is a sequence of windowed reads over one collection.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Specs is the CUE spec directory, relative to the scenario file.
	Specs string `yaml:"specs"`

	// Collection names the collection (or its table) within Specs.
	Collection string `yaml:"collection"`

	// Fixture is a store fixture file, relative to the scenario file.
	Fixture string `yaml:"fixture"`

	// Backends lists the backends to run on. Empty means all.
	Backends []string `yaml:"backends,omitempty"`

	// Steps run in order on each backend.
	Steps []Step `yaml:"steps"`
}

// Step is one read.
type Step struct {
	// Name identifies the step in errors and snapshots.
	Name string `yaml:"name"`

	// Request holds the read parameters. Ignored when Follow is set.
	Request collection.Params `yaml:"request,omitempty"`

	// Follow reruns the previous step's request at its "next" or "prev"
	// token.
	Follow string `yaml:"follow,omitempty"`

	// Expect lists the outcome fields to check.
	Expect Expect `yaml:"expect"`
}

// Expect is a subset match against a step outcome: nil fields are not
// checked.
type Expect struct {
	Keys        []any  `yaml:"keys,omitempty"`
	Count       *int   `yaml:"count,omitempty"`
	HasNext     *bool  `yaml:"has_next,omitempty"`
	HasPrevious *bool  `yaml:"has_previous,omitempty"`
	Total       *int64 `yaml:"total,omitempty"`
	Number      *int   `yaml:"number,omitempty"`
	Error       string `yaml:"error,omitempty"`
}

// Follow directions.
const (
	FollowNext = "next"
	FollowPrev = "prev"
)

// LoadScenario reads and parses a scenario YAML file. Specs and Fixture
// are resolved relative to the file. Returns an error if the file doesn't
// exist, is malformed, contains unknown fields (typos), or is missing
// required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "step:" vs "steps:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Dir(path)
	if scenario.Specs != "" && !filepath.IsAbs(scenario.Specs) {
		scenario.Specs = filepath.Join(base, scenario.Specs)
	}
	if scenario.Fixture != "" && !filepath.IsAbs(scenario.Fixture) {
		scenario.Fixture = filepath.Join(base, scenario.Fixture)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml and *.yml file in dir, sorted by file
// name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenario files found in %s", dir)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Specs == "" {
		return fmt.Errorf("specs is required")
	}
	if s.Collection == "" {
		return fmt.Errorf("collection is required")
	}
	if s.Fixture == "" {
		return fmt.Errorf("fixture is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for _, path := range []string{s.Specs, s.Fixture} {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", path)
		}
	}

	for _, b := range s.Backends {
		if !slices.Contains(AllBackends, b) {
			return fmt.Errorf("unknown backend %q (want one of %v)", b, AllBackends)
		}
	}

	names := make(map[string]bool, len(s.Steps))
	for i, step := range s.Steps {
		if step.Name == "" {
			return fmt.Errorf("steps[%d]: name is required", i)
		}
		if names[step.Name] {
			return fmt.Errorf("steps[%d]: duplicate step name %q", i, step.Name)
		}
		names[step.Name] = true

		switch step.Follow {
		case "":
		case FollowNext, FollowPrev:
			if i == 0 {
				return fmt.Errorf("steps[%d]: the first step cannot follow", i)
			}
		default:
			return fmt.Errorf("steps[%d]: follow must be %q or %q, got %q", i, FollowNext, FollowPrev, step.Follow)
		}
	}
	return nil
}
