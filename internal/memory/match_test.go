package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pagewin/internal/ir"
	"github.com/roach88/pagewin/internal/queryir"
	"github.com/roach88/pagewin/internal/testutil"
	"github.com/roach88/pagewin/internal/window"
)

func TestMatch(t *testing.T) {
	row := ir.Object{"id": ir.Int(5), "title": ir.String("m"), "author": ir.Null{}, "featured": ir.Bool(true)}

	tests := []struct {
		name string
		pred queryir.Predicate
		want bool
	}{
		{"nil", nil, true},
		{"equals", queryir.Equals{Field: "title", Value: ir.String("m")}, true},
		{"equals pointer", &queryir.Equals{Field: "id", Value: ir.Int(4)}, false},
		{"bool as number", queryir.Equals{Field: "featured", Value: ir.Int(1)}, true},
		{"null never equals", queryir.Equals{Field: "author", Value: ir.Null{}}, false},
		{"missing field is null", queryir.IsNull{Field: "nope"}, true},
		{"is null", queryir.IsNull{Field: "author"}, true},
		{"is not null", queryir.IsNull{Field: "author", Negate: true}, false},
		{"lt", queryir.Compare{Field: "id", Op: queryir.OpLt, Value: ir.Int(6)}, true},
		{"lte", queryir.Compare{Field: "id", Op: queryir.OpLte, Value: ir.Int(5)}, true},
		{"gt", queryir.Compare{Field: "id", Op: queryir.OpGt, Value: ir.Int(5)}, false},
		{"gte text", queryir.Compare{Field: "title", Op: queryir.OpGte, Value: ir.String("a")}, true},
		{"null compare", queryir.Compare{Field: "author", Op: queryir.OpGt, Value: ir.String("a")}, false},
		{"number before text", queryir.Compare{Field: "id", Op: queryir.OpLt, Value: ir.String("0")}, true},
		{"empty and", queryir.And{}, true},
		{"empty or", queryir.Or{}, false},
		{"or", queryir.Or{Predicates: []queryir.Predicate{
			queryir.Equals{Field: "id", Value: ir.Int(1)},
			queryir.Equals{Field: "id", Value: ir.Int(5)},
		}}, true},
		{"and", queryir.And{Predicates: []queryir.Predicate{
			queryir.Equals{Field: "id", Value: ir.Int(5)},
			queryir.IsNull{Field: "title"},
		}}, false},
		{"row gt decided by second key", queryir.RowCompare{
			Fields: []string{"title", "id"}, Op: queryir.OpGt,
			Values: []ir.Value{ir.String("m"), ir.Int(4)},
		}, true},
		{"row gte all equal", queryir.RowCompare{
			Fields: []string{"title", "id"}, Op: queryir.OpGte,
			Values: []ir.Value{ir.String("m"), ir.Int(5)},
		}, true},
		{"row null is unknown", queryir.RowCompare{
			Fields: []string{"author", "id"}, Op: queryir.OpGt,
			Values: []ir.Value{ir.String("a"), ir.Int(1)},
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Match(row, tt.pred)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatch_Errors(t *testing.T) {
	row := ir.Object{"tags": ir.Array{ir.String("x")}}

	_, err := Match(row, queryir.Equals{Field: "tags", Value: ir.Array{}})
	assert.Error(t, err)

	_, err = Match(row, queryir.Compare{Field: "tags", Op: "!", Value: ir.Int(1)})
	assert.Error(t, err)

	_, err = Match(row, queryir.RowCompare{Fields: []string{"a"}, Op: queryir.OpGt})
	assert.Error(t, err)
}

// Row-value and expanded keyset predicates must select the same rows.
func TestMatch_RowValueAgreesWithExpansion(t *testing.T) {
	orders := []queryir.Order{{Field: "title"}, {Field: "score"}, {Field: "id"}}
	rows := testutil.Articles()

	for _, anchor := range rows {
		values := anchor.Pick("title", "score", "id")
		expanded, err := window.ExpansionRewriter{}.Rewrite(orders, values)
		require.NoError(t, err)
		rowValue := queryir.RowCompare{Fields: []string{"title", "score", "id"}, Op: queryir.OpGt, Values: values}

		for _, row := range rows {
			a, err := Match(row, expanded)
			require.NoError(t, err)
			b, err := Match(row, rowValue)
			require.NoError(t, err)
			assert.Equal(t, a, b, "anchor %v row %v", anchor.Get("id"), row.Get("id"))
		}
	}
}
