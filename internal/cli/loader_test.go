package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pagewin/internal/collection"
	"github.com/roach88/pagewin/internal/cursor"
	"github.com/roach88/pagewin/internal/store"
	"github.com/roach88/pagewin/internal/window"
)

func TestParseFilter(t *testing.T) {
	got, err := parseFilter([]string{"status=published", "score=7", "featured=true", "author=null", `title="42"`})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"status":   "published",
		"score":    7,
		"featured": true,
		"author":   nil,
		"title":    "42",
	}, got)

	none, err := parseFilter(nil)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestParseFilter_Errors(t *testing.T) {
	tests := map[string][]string{
		"no equals":  {"status"},
		"no field":   {"=x"},
		"float":      {"score=1.5"},
		"list":       {"score=[1, 2]"},
		"duplicated": {"score=1", "score=2"},
	}
	for name, pairs := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := parseFilter(pairs)
			assert.Error(t, err)
		})
	}
}

func TestRequestFlags_Params(t *testing.T) {
	f := RequestFlags{Sort: "score:desc", Page: 2, Size: 4, Shape: "page", Filter: []string{"status=draft"}}
	p, err := f.Params()
	require.NoError(t, err)
	require.NotNil(t, p.Page)
	assert.Equal(t, 2, *p.Page)
	assert.Equal(t, 4, p.Size)
	assert.Equal(t, "score:desc", p.Sort)
	assert.Equal(t, map[string]any{"status": "draft"}, p.Filter)

	unpaged, err := (&RequestFlags{Page: -1, Limit: 3}).Params()
	require.NoError(t, err)
	assert.Nil(t, unpaged.Page)
	assert.Equal(t, 3, unpaged.Limit)
}

func TestRequestFlags_AfterImpliesKeyset(t *testing.T) {
	p, err := (&RequestFlags{Page: -1, After: "tok"}).Params()
	require.NoError(t, err)
	assert.True(t, p.Keyset)

	for _, f := range []RequestFlags{
		{Page: 0, After: "tok"},
		{Page: -1, Sort: "score", After: "tok"},
		{Page: -1, Limit: 2, After: "tok"},
	} {
		_, err := f.Params()
		assert.Error(t, err)
	}
}

func TestRequestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{fmt.Errorf("plan: %w", &window.Error{Code: window.ErrCodeConfiguration, Message: "limit with a position"}), "CONFIGURATION"},
		{&window.Error{Code: window.ErrCodeNullSortKey}, "NULL_SORT_KEY"},
		{fmt.Errorf("decode: %w", cursor.ErrInvalidCursor), ErrCodeInvalidCursor},
		{fmt.Errorf("%w: body", collection.ErrUnknownProperty), ErrCodeBadRequest},
		{fmt.Errorf("fetch: %w", store.ErrUnknownCollection), ErrCodeUnknownCollection},
		{errors.New("disk on fire"), ErrCodeGeneric},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, requestErrorCode(tt.err), tt.err.Error())
	}
}

func TestErrorList(t *testing.T) {
	var merr *multierror.Error
	merr = multierror.Append(merr, errors.New("one"), errors.New("two"))

	assert.Equal(t, []string{"one", "two"}, errorList(merr.ErrorOrNil()))
	assert.Equal(t, []string{"plain"}, errorList(errors.New("plain")))
}
