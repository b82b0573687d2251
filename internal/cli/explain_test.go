package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pagewin/internal/cursor"
	"github.com/roach88/pagewin/internal/ir"
	"github.com/roach88/pagewin/internal/window"
)

func scoreToken(t *testing.T, secret string) string {
	t.Helper()
	pos, err := window.KeysetStart(window.By(window.Asc("score"), window.Asc("id")), 3)
	require.NoError(t, err)
	token, err := cursor.Codec{Secret: secret}.Encode(pos.After(ir.Int(15), ir.Int(15)), "articles")
	require.NoError(t, err)
	return token
}

func TestExplain_OffsetPage(t *testing.T) {
	opts := testOptions(t, "json")
	out, err := execute(t, NewExplainCommand(opts),
		"--collection", "Articles", "--page", "1", "--size", "5", "--shape", "page")
	require.NoError(t, err)

	var result ExplainResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "test-trace", resp.TraceID)

	assert.Equal(t, "Articles", result.Collection)
	assert.Equal(t, DialectNative, result.Dialect)
	assert.Equal(t, "page", result.Shape)
	assert.Equal(t, 5, result.Size)
	assert.False(t, result.Probe)
	assert.Contains(t, result.SQL, "FROM articles ORDER BY title COLLATE BINARY ASC, id COLLATE BINARY ASC LIMIT ? OFFSET ?")
	assert.Equal(t, []any{float64(5), float64(5)}, result.Params)
	assert.Equal(t, "SELECT COUNT(*) FROM articles", result.CountSQL)
	assert.True(t, result.Portable)
	assert.Empty(t, result.Warnings)
}

func TestExplain_SliceProbes(t *testing.T) {
	opts := testOptions(t, "json")
	out, err := execute(t, NewExplainCommand(opts),
		"--collection", "Articles", "--limit", "3", "--shape", "slice",
		"--sort", "score:desc", "--filter", "status=published")
	require.NoError(t, err)

	var result ExplainResult
	decodeResponse(t, out, &result)
	assert.True(t, result.Probe)
	assert.Equal(t, 3, result.Size)
	assert.Contains(t, result.SQL, "WHERE status = ?")
	assert.Contains(t, result.SQL, "ORDER BY score COLLATE BINARY DESC, id COLLATE BINARY ASC")
	assert.Equal(t, []any{"published", float64(4)}, result.Params)
	assert.Empty(t, result.CountSQL)
}

func TestExplain_TokenWithRowValues(t *testing.T) {
	opts := testOptions(t, "json")
	out, err := execute(t, NewExplainCommand(opts),
		"--collection", "Articles", "--after", scoreToken(t, testSecret), "--row-value")
	require.NoError(t, err)

	var result ExplainResult
	decodeResponse(t, out, &result)
	assert.Contains(t, result.SQL, "(score, id) > (?, ?)")
	assert.Equal(t, []any{float64(15), float64(15), float64(4)}, result.Params)
	assert.False(t, result.Portable)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "Row-value comparison on (score, id)")
}

func TestExplain_GoquDialect(t *testing.T) {
	opts := testOptions(t, "json")
	out, err := execute(t, NewExplainCommand(opts),
		"--collection", "Articles", "--keyset", "--sort", "score", "--size", "3", "--dialect", "postgres")
	require.NoError(t, err)

	var result ExplainResult
	decodeResponse(t, out, &result)
	assert.Equal(t, "postgres", result.Dialect)
	assert.Contains(t, result.SQL, `FROM "articles"`)
	assert.Contains(t, result.SQL, `ORDER BY "score" ASC, "id" ASC`)
	assert.True(t, result.Probe)
}

func TestExplain_Text(t *testing.T) {
	opts := testOptions(t, "text")
	out, err := execute(t, NewExplainCommand(opts), "--collection", "articles", "--page", "0")
	require.NoError(t, err)

	assert.Contains(t, out, "collection: Articles")
	assert.Contains(t, out, "shape:      list (size 5, probe false)")
	assert.Contains(t, out, "fetch:      SELECT")
	assert.NotContains(t, out, "count:")
}

func TestExplain_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code string
	}{
		{"limit with page", []string{"--collection", "Articles", "--limit", "3", "--page", "0"}, "CONFIGURATION"},
		{"unknown sort property", []string{"--collection", "Articles", "--sort", "body"}, ErrCodeBadRequest},
		{"unknown collection", []string{"--collection", "Comments"}, ErrCodeUnknownCollection},
		{"bad dialect", []string{"--collection", "Articles", "--dialect", "oracle"}, ErrCodeBadRequest},
		{"after with sort", []string{"--collection", "Articles", "--after", "x", "--sort", "score"}, ErrCodeBadRequest},
		{"bad token", []string{"--collection", "Articles", "--after", "not-a-token"}, ErrCodeInvalidCursor},
		{"bad filter", []string{"--collection", "Articles", "--filter", "status"}, ErrCodeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions(t, "json")
			out, err := execute(t, NewExplainCommand(opts), tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))

			resp := decodeResponse(t, out, nil)
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestExplain_TokenFromOtherSecret(t *testing.T) {
	opts := testOptions(t, "json")
	out, err := execute(t, NewExplainCommand(opts),
		"--collection", "Articles", "--after", scoreToken(t, "other"))
	require.Error(t, err)

	resp := decodeResponse(t, out, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidCursor, resp.Error.Code)
}
