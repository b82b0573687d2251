package window

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pagewin/internal/ir"
)

func TestPageOf(t *testing.T) {
	p, err := PageOf(3, 20, By(Asc("id")))
	require.NoError(t, err)

	assert.Equal(t, 60, p.Offset())
	assert.Equal(t, 4, p.Next().Page)

	prev, ok := p.Previous()
	require.True(t, ok)
	assert.Equal(t, 2, prev.Page)
	assert.Equal(t, 20, prev.Size)

	first, _ := PageOf(0, 20, Unsorted())
	_, ok = first.Previous()
	assert.False(t, ok)
}

func TestOffsetPosition_OffsetSaturates(t *testing.T) {
	huge := mustPage(t, math.MaxInt/2+1, 2, By(Asc("id")))
	assert.Equal(t, math.MaxInt, huge.Offset())

	last := mustPage(t, math.MaxInt, MaxSize, By(Asc("id")))
	assert.Equal(t, math.MaxInt, last.Offset())

	exact := mustPage(t, math.MaxInt/4, 4, By(Asc("id")))
	assert.Equal(t, math.MaxInt/4*4, exact.Offset())
}

func TestPageOf_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		page, size int
		sort       Sort
	}{
		{"negative page", -1, 10, Unsorted()},
		{"zero size", 0, 0, Unsorted()},
		{"negative size", 0, -5, Unsorted()},
		{"size leaves no room to probe", 0, math.MaxInt, Unsorted()},
		{"bad sort", 0, 10, By(Order{Property: "id", Direction: "sideways"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PageOf(tt.page, tt.size, tt.sort)
			assert.True(t, IsConfigurationError(err), "got %v", err)
		})
	}
}

func TestKeysetStart(t *testing.T) {
	p, err := KeysetStart(By(Asc("title"), Asc("id")), 10)
	require.NoError(t, err)
	assert.True(t, p.IsStart())
	assert.False(t, p.Backward)

	next := p.After(ir.String("m"), ir.Int(7))
	assert.False(t, next.IsStart())
	assert.False(t, next.Backward)
	assert.Equal(t, 10, next.Size)

	prev := next.Before(ir.String("a"), ir.Int(1))
	assert.True(t, prev.Backward)
	assert.Equal(t, []ir.Value{ir.String("a"), ir.Int(1)}, prev.Values)
}

func TestKeysetStart_Invalid(t *testing.T) {
	_, err := KeysetStart(Unsorted(), 10)
	assert.True(t, IsConfigurationError(err))

	_, err = KeysetStart(By(Asc("id")), 0)
	assert.True(t, IsConfigurationError(err))
}

func TestKeysetPosition_Validate(t *testing.T) {
	start, err := KeysetStart(By(Asc("title"), Asc("id")), 5)
	require.NoError(t, err)

	t.Run("arity mismatch", func(t *testing.T) {
		err := start.After(ir.String("m")).validate()
		require.Error(t, err)
		assert.True(t, IsConfigurationError(err))

		var we *Error
		require.ErrorAs(t, err, &we)
		assert.Equal(t, "title:asc,id:asc", we.Details["sort"])
		assert.Equal(t, `["m"]`, we.Details["values"])
	})

	t.Run("null value", func(t *testing.T) {
		err := start.After(ir.Null{}, ir.Int(1)).validate()
		assert.True(t, IsNullSortKeyError(err))
	})

	t.Run("nil value", func(t *testing.T) {
		err := start.After(ir.String("m"), nil).validate()
		assert.True(t, IsNullSortKeyError(err))
	})
}

func TestUnwrapPosition(t *testing.T) {
	var nilOffset *OffsetPosition
	var nilKeyset *KeysetPosition

	assert.Nil(t, unwrapPosition(nil))
	assert.Nil(t, unwrapPosition(nilOffset))
	assert.Nil(t, unwrapPosition(nilKeyset))
	assert.Equal(t, OffsetPosition{Size: 3}, unwrapPosition(&OffsetPosition{Size: 3}))
	assert.True(t, IsUnpaged(Unpaged()))
	assert.False(t, IsUnpaged(OffsetPosition{}))
}
