package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/pagewin/internal/ir"
)

// Snapshot captures the outcomes of a scenario for golden comparison.
// It is serialized as canonical JSON so equal outcomes always produce the
// same bytes.
type Snapshot struct {
	ScenarioName string    `json:"scenario_name"`
	Backends     []string  `json:"backends"`
	Outcomes     []Outcome `json:"outcomes"`
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical JSON serialization.
// This is required because ir.MarshalCanonical only handles IR types and primitives.
func (s *Snapshot) toCanonicalMap() map[string]any {
	outcomes := make([]any, len(s.Outcomes))
	for i, o := range s.Outcomes {
		outcomes[i] = o.canonical()
	}
	backends := make([]any, len(s.Backends))
	for i, b := range s.Backends {
		backends[i] = b
	}
	return map[string]any{
		"scenario_name": s.ScenarioName,
		"backends":      backends,
		"outcomes":      outcomes,
	}
}

// RunWithGolden executes a scenario and compares its outcomes against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also assert on Pass; test failure
// (via goldie) occurs if the outcomes don't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := Snapshot{
		ScenarioName: scenarioName,
		Backends:     result.Backends,
		Outcomes:     result.Outcomes,
	}
	data, err := ir.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
