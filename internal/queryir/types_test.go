package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pagewin/internal/ir"
)

func TestSelect_ImplementsQuery(t *testing.T) {
	var q Query = Select{From: "articles"}

	switch q.(type) {
	case Select:
	case Count:
		t.Fatal("unexpected type")
	}
}

func TestSelect_CountQueryDropsWindow(t *testing.T) {
	sel := Select{
		From:     "articles",
		Filter:   Equals{Field: "status", Value: ir.String("published")},
		Bindings: map[string]string{"id": "id"},
		OrderBy:  []Order{{Field: "id"}},
		Limit:    10,
		Offset:   20,
	}

	count := sel.CountQuery()

	assert.Equal(t, Count{From: "articles", Filter: sel.Filter}, count)
}

func TestSelect_OutputName(t *testing.T) {
	sel := Select{Bindings: map[string]string{"created_at": "created", "id": ""}}

	assert.Equal(t, "created", sel.OutputName("created_at"))
	assert.Equal(t, "id", sel.OutputName("id"), "empty alias falls back to field")
	assert.Equal(t, "title", sel.OutputName("title"), "unbound field keeps its name")
}

func TestReverseOrders(t *testing.T) {
	orders := []Order{{Field: "score", Desc: true}, {Field: "id"}}

	reversed := ReverseOrders(orders)

	assert.Equal(t, []Order{{Field: "score"}, {Field: "id", Desc: true}}, reversed)
	assert.True(t, orders[0].Desc, "input is not modified")
}

func TestOp_Holds(t *testing.T) {
	tests := []struct {
		op   Op
		c    int
		want bool
	}{
		{OpLt, -1, true},
		{OpLt, 0, false},
		{OpLte, 0, true},
		{OpLte, 1, false},
		{OpGt, 1, true},
		{OpGt, 0, false},
		{OpGte, 0, true},
		{OpGte, -1, false},
		{Op("=="), 0, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.op.Holds(tt.c), "%s holds for %d", tt.op, tt.c)
	}
}

func TestOp_Strict(t *testing.T) {
	assert.Equal(t, OpLt, OpLte.Strict())
	assert.Equal(t, OpGt, OpGte.Strict())
	assert.Equal(t, OpGt, OpGt.Strict())
	assert.False(t, Op("=").Valid())
}

func TestUnwrap(t *testing.T) {
	eq := &Equals{Field: "id", Value: ir.Int(1)}
	assert.Equal(t, Equals{Field: "id", Value: ir.Int(1)}, Unwrap(eq))

	var nilAnd *And
	assert.Nil(t, Unwrap(nilAnd))
	assert.Nil(t, Unwrap(nil))

	or := Or{}
	assert.Equal(t, or, Unwrap(or))

	var nilSel *Select
	assert.Nil(t, UnwrapQuery(nilSel))
	assert.Equal(t, Count{From: "t"}, UnwrapQuery(&Count{From: "t"}))
}

func TestConjoin(t *testing.T) {
	a := Equals{Field: "a", Value: ir.Int(1)}
	b := IsNull{Field: "b", Negate: true}
	c := Compare{Field: "c", Op: OpGt, Value: ir.Int(3)}

	t.Run("nothing", func(t *testing.T) {
		assert.Nil(t, Conjoin())
		assert.Nil(t, Conjoin(nil, nil))
	})

	t.Run("single", func(t *testing.T) {
		assert.Equal(t, a, Conjoin(nil, &a))
	})

	t.Run("flattens nested and", func(t *testing.T) {
		got := Conjoin(And{Predicates: []Predicate{a, b}}, c)
		and, ok := got.(And)
		require.True(t, ok)
		assert.Equal(t, []Predicate{a, b, c}, and.Predicates)
	})

	t.Run("keeps or intact", func(t *testing.T) {
		or := Or{Predicates: []Predicate{a, b}}
		got := Conjoin(or, c)
		assert.Equal(t, And{Predicates: []Predicate{or, c}}, got)
	})
}
