package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pagewin/internal/ir"
	"github.com/roach88/pagewin/internal/queryir"
)

func TestCompile_SimpleSelect(t *testing.T) {
	compiler := NewSQLCompiler()

	query := queryir.Select{
		From: "articles",
		Bindings: map[string]string{
			"title": "title",
			"id":    "article_id",
		},
		Filter: queryir.Equals{
			Field: "status",
			Value: ir.String("published"),
		},
	}

	sql, params, err := compiler.Compile(query)
	require.NoError(t, err)

	assert.Equal(t, "SELECT id AS article_id, title FROM articles WHERE status = ?", sql)
	assert.NotContains(t, sql, "published")
	assert.Equal(t, []any{"published"}, params)
}

func TestCompile_SelectPointer(t *testing.T) {
	query := &queryir.Select{
		From:   "articles",
		Filter: &queryir.Compare{Field: "score", Op: queryir.OpGte, Value: ir.Int(10)},
	}

	sql, params, err := NewSQLCompiler().Compile(query)
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM articles WHERE score >= ?", sql)
	assert.Equal(t, []any{int64(10)}, params)
}

func TestCompile_OrderLimitOffset(t *testing.T) {
	query := queryir.Select{
		From:    "articles",
		OrderBy: []queryir.Order{{Field: "score", Desc: true}, {Field: "id"}},
		Limit:   11,
		Offset:  30,
	}

	sql, params, err := NewSQLCompiler().Compile(query)
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM articles ORDER BY score COLLATE BINARY DESC, id COLLATE BINARY ASC LIMIT ? OFFSET ?", sql)
	assert.Equal(t, []any{int64(11), int64(30)}, params)
}

func TestCompile_OffsetWithoutLimit(t *testing.T) {
	sql, params, err := NewSQLCompiler().Compile(queryir.Select{
		From:    "articles",
		OrderBy: []queryir.Order{{Field: "id"}},
		Offset:  5,
	})
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM articles ORDER BY id COLLATE BINARY ASC LIMIT -1 OFFSET ?", sql)
	assert.Equal(t, []any{int64(5)}, params)
}

func TestCompile_NoOrderWhenUnsorted(t *testing.T) {
	sql, _, err := NewSQLCompiler().Compile(queryir.Select{From: "articles"})
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM articles", sql)
}

func TestCompile_Count(t *testing.T) {
	sql, params, err := NewSQLCompiler().Compile(queryir.Count{
		From:   "articles",
		Filter: queryir.Equals{Field: "status", Value: ir.String("draft")},
	})
	require.NoError(t, err)

	assert.Equal(t, "SELECT COUNT(*) FROM articles WHERE status = ?", sql)
	assert.Equal(t, []any{"draft"}, params)
}

func TestCompile_KeysetExpansion(t *testing.T) {
	filter := queryir.And{Predicates: []queryir.Predicate{
		queryir.Equals{Field: "status", Value: ir.String("published")},
		queryir.Or{Predicates: []queryir.Predicate{
			queryir.Compare{Field: "score", Op: queryir.OpLt, Value: ir.Int(40)},
			queryir.And{Predicates: []queryir.Predicate{
				queryir.Equals{Field: "score", Value: ir.Int(40)},
				queryir.Compare{Field: "id", Op: queryir.OpGt, Value: ir.Int(7)},
			}},
		}},
	}}

	sql, params, err := NewSQLCompiler().Compile(queryir.Count{From: "articles", Filter: filter})
	require.NoError(t, err)

	assert.Equal(t, "SELECT COUNT(*) FROM articles WHERE status = ? AND (score < ? OR (score = ? AND id > ?))", sql)
	assert.Equal(t, []any{"published", int64(40), int64(40), int64(7)}, params)
}

func TestCompile_RowCompare(t *testing.T) {
	sql, params, err := NewSQLCompiler().Compile(queryir.Count{
		From: "articles",
		Filter: queryir.RowCompare{
			Fields: []string{"title", "id"},
			Op:     queryir.OpGt,
			Values: []ir.Value{ir.String("m"), ir.Int(3)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "SELECT COUNT(*) FROM articles WHERE (title, id) > (?, ?)", sql)
	assert.Equal(t, []any{"m", int64(3)}, params)
}

func TestCompile_IsNullAndEmptyJunctions(t *testing.T) {
	filter := queryir.And{Predicates: []queryir.Predicate{
		queryir.IsNull{Field: "deleted_at"},
		queryir.IsNull{Field: "author", Negate: true},
		queryir.Or{},
		queryir.And{},
	}}

	sql, params, err := NewSQLCompiler().Compile(queryir.Count{From: "articles", Filter: filter})
	require.NoError(t, err)

	assert.Equal(t, "SELECT COUNT(*) FROM articles WHERE deleted_at IS NULL AND author IS NOT NULL AND 1 = 0 AND 1 = 1", sql)
	assert.Empty(t, params)
}

func TestCompile_BoolParam(t *testing.T) {
	_, params, err := NewSQLCompiler().Compile(queryir.Count{
		From:   "articles",
		Filter: queryir.Equals{Field: "featured", Value: ir.Bool(true)},
	})
	require.NoError(t, err)
	assert.Equal(t, []any{true}, params)
}

func TestCompile_Errors(t *testing.T) {
	tests := map[string]queryir.Query{
		"nil query":          nil,
		"nil pointer":        (*queryir.Select)(nil),
		"bad table":          queryir.Select{From: "articles; DROP TABLE x"},
		"bad binding":        queryir.Select{From: "articles", Bindings: map[string]string{"id": "a b"}},
		"bad order field":    queryir.Select{From: "articles", OrderBy: []queryir.Order{{Field: "id desc"}}},
		"bad filter field":   queryir.Count{From: "articles", Filter: queryir.IsNull{Field: "1x"}},
		"array param":        queryir.Count{From: "articles", Filter: queryir.Equals{Field: "tags", Value: ir.Array{}}},
		"bad operator":       queryir.Count{From: "articles", Filter: queryir.Compare{Field: "id", Op: "<>", Value: ir.Int(1)}},
		"row arity":          queryir.Count{From: "articles", Filter: queryir.RowCompare{Fields: []string{"a"}, Op: queryir.OpGt}},
		"negative limit":     queryir.Select{From: "articles", Limit: -1},
		"nested bad operand": queryir.Count{From: "articles", Filter: queryir.Or{Predicates: []queryir.Predicate{queryir.Equals{Field: "x", Value: ir.Object{}}}}},
	}
	for name, q := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := NewSQLCompiler().Compile(q)
			assert.Error(t, err)
		})
	}
}

func TestCheckIdentifier(t *testing.T) {
	assert.NoError(t, CheckIdentifier("created_at"))
	assert.NoError(t, CheckIdentifier("_x1"))
	assert.Error(t, CheckIdentifier(""))
	assert.Error(t, CheckIdentifier("a.b"))
	assert.Error(t, CheckIdentifier(`"quoted"`))
}
