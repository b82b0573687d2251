package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pagewin/internal/ir"
)

func TestReadFixture(t *testing.T) {
	table, rows, err := ReadFixture(strings.NewReader(`
table: articles
rows:
  - {id: 1, title: Alpha, featured: true, author: null}
  - {id: 2, title: bravo}
`))
	require.NoError(t, err)
	assert.Equal(t, "articles", table)
	assert.Equal(t, []ir.Object{
		{"id": ir.Int(1), "title": ir.String("Alpha"), "featured": ir.Bool(true), "author": ir.Null{}},
		{"id": ir.Int(2), "title": ir.String("bravo")},
	}, rows)
}

func TestReadFixture_Errors(t *testing.T) {
	tests := map[string]string{
		"unknown key": "table: a\nextra: 1\n",
		"float value": "table: a\nrows:\n  - {id: 1.5}\n",
		"not yaml":    "table: [",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := ReadFixture(strings.NewReader(input))
			assert.Error(t, err)
		})
	}
}
