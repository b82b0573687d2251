package store

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/roach88/pagewin/internal/ir"
)

// Fixture is a YAML row file:
//
//	table: articles
//	rows:
//	  - {id: 1, title: Alpha, published: true}
type Fixture struct {
	Table string           `yaml:"table"`
	Rows  []map[string]any `yaml:"rows"`
}

// ReadFixture decodes a fixture and converts its rows to ir.Object.
// Unknown top-level keys are rejected.
func ReadFixture(r io.Reader) (string, []ir.Object, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil {
		return "", nil, fmt.Errorf("decode fixture: %w", err)
	}

	rows := make([]ir.Object, len(f.Rows))
	for i, raw := range f.Rows {
		row, err := ir.ObjectFromMap(raw)
		if err != nil {
			return "", nil, fmt.Errorf("fixture row %d: %w", i, err)
		}
		rows[i] = row
	}
	return f.Table, rows, nil
}
