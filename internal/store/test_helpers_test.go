package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/pagewin/internal/testutil"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func articlesDefinition() Definition {
	return Definition{
		Table: testutil.ArticlesTable,
		Key:   "id",
		Columns: []Column{
			{Name: "id", Type: TypeInteger},
			{Name: "title", Type: TypeText},
			{Name: "score", Type: TypeInteger},
			{Name: "status", Type: TypeText},
			{Name: "author", Type: TypeText},
			{Name: "featured", Type: TypeBoolean},
		},
	}
}

// createArticlesStore returns a store holding testutil.Articles.
func createArticlesStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s := createTestStore(t, opts...)
	ctx := context.Background()
	require.NoError(t, s.CreateCollection(ctx, articlesDefinition()))
	require.NoError(t, s.Insert(ctx, testutil.ArticlesTable, testutil.Articles()...))
	return s
}
