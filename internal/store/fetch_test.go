package store

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pagewin/internal/ir"
	"github.com/roach88/pagewin/internal/memory"
	"github.com/roach88/pagewin/internal/querygoqu"
	"github.com/roach88/pagewin/internal/queryir"
	"github.com/roach88/pagewin/internal/testutil"
)

func TestFetch_OrderLimitOffset(t *testing.T) {
	s := createArticlesStore(t)

	rows, err := s.Fetch(context.Background(), queryir.Select{
		From:     "articles",
		Bindings: map[string]string{"id": "id"},
		OrderBy:  []queryir.Order{{Field: "id", Desc: true}},
		Limit:    3,
		Offset:   2,
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{22, 21, 20}, testutil.IDs(rows))
}

func TestFetch_DecodesTypes(t *testing.T) {
	s := createArticlesStore(t)

	rows, err := s.Fetch(context.Background(), queryir.Select{
		From:    "articles",
		Filter:  queryir.Equals{Field: "id", Value: ir.Int(20)},
		OrderBy: []queryir.Order{{Field: "id"}},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	want := testutil.Articles()[19]
	assert.Equal(t, want, rows[0])
	assert.Equal(t, ir.Bool(true), rows[0]["featured"])
	assert.Equal(t, ir.Null{}, rows[0]["author"])
}

func TestFetch_Aliases(t *testing.T) {
	s := createArticlesStore(t)

	rows, err := s.Fetch(context.Background(), queryir.Select{
		From:     "articles",
		Bindings: map[string]string{"id": "article_id", "featured": "pinned"},
		OrderBy:  []queryir.Order{{Field: "id"}},
		Limit:    4,
	})
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, ir.Object{"article_id": ir.Int(4), "pinned": ir.Bool(true)}, rows[3])
	assert.Equal(t, ir.Object{"article_id": ir.Int(1), "pinned": ir.Bool(false)}, rows[0])
}

func TestFetch_UnknownCollection(t *testing.T) {
	s := createTestStore(t)
	_, err := s.Fetch(context.Background(), queryir.Select{From: "missing"})
	assert.ErrorIs(t, err, ErrUnknownCollection)

	_, err = s.Count(context.Background(), queryir.Count{From: "missing"})
	assert.ErrorIs(t, err, ErrUnknownCollection)
}

func TestCount_Filter(t *testing.T) {
	s := createArticlesStore(t)
	ctx := context.Background()

	n, err := s.Count(ctx, queryir.Count{From: "articles"})
	require.NoError(t, err)
	assert.Equal(t, int64(testutil.ArticleCount), n)

	n, err = s.Count(ctx, queryir.Count{
		From:   "articles",
		Filter: queryir.Equals{Field: "status", Value: ir.String("published")},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(16), n)

	n, err = s.Count(ctx, queryir.Count{
		From:   "articles",
		Filter: queryir.IsNull{Field: "author"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

// Both compilers and the in-memory executor must return the same rows for
// the same query, including null ordering and byte-wise text order.
func TestFetch_BackendsAgree(t *testing.T) {
	goquSQLite, err := querygoqu.New(querygoqu.SQLite3)
	require.NoError(t, err)

	sqlStore := createArticlesStore(t)
	goquStore := createArticlesStore(t, WithCompiler(goquSQLite))
	mem := memory.New()
	require.NoError(t, mem.Insert(context.Background(), "articles", testutil.Articles()...))

	queries := map[string]queryir.Select{
		"title then id": {
			From:    "articles",
			OrderBy: []queryir.Order{{Field: "title"}, {Field: "id"}},
		},
		"author desc nulls last": {
			From:    "articles",
			OrderBy: []queryir.Order{{Field: "author", Desc: true}, {Field: "id"}},
			Limit:   10,
		},
		"keyset expansion": {
			From: "articles",
			Filter: queryir.Or{Predicates: []queryir.Predicate{
				queryir.Compare{Field: "score", Op: queryir.OpLt, Value: ir.Int(20)},
				queryir.And{Predicates: []queryir.Predicate{
					queryir.Equals{Field: "score", Value: ir.Int(20)},
					queryir.Compare{Field: "id", Op: queryir.OpGt, Value: ir.Int(10)},
				}},
			}},
			OrderBy: []queryir.Order{{Field: "score", Desc: true}, {Field: "id"}},
		},
		"row value": {
			From: "articles",
			Filter: queryir.RowCompare{
				Fields: []string{"score", "id"},
				Op:     queryir.OpGt,
				Values: []ir.Value{ir.Int(20), ir.Int(10)},
			},
			OrderBy: []queryir.Order{{Field: "score"}, {Field: "id"}},
			Offset:  1,
		},
		"featured published": {
			From: "articles",
			Filter: queryir.And{Predicates: []queryir.Predicate{
				queryir.Equals{Field: "featured", Value: ir.Bool(true)},
				queryir.Equals{Field: "status", Value: ir.String("published")},
			}},
			OrderBy: []queryir.Order{{Field: "id"}},
		},
	}

	ctx := context.Background()
	for name, q := range queries {
		t.Run(strings.ReplaceAll(name, " ", "_"), func(t *testing.T) {
			want, err := mem.Fetch(ctx, q)
			require.NoError(t, err)

			got, err := sqlStore.Fetch(ctx, q)
			require.NoError(t, err)
			assert.Equal(t, testutil.IDs(want), testutil.IDs(got), "querysql")

			got, err = goquStore.Fetch(ctx, q)
			require.NoError(t, err)
			assert.Equal(t, testutil.IDs(want), testutil.IDs(got), "goqu")
		})
	}
}
