package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want int
	}{
		{"null equals null", Null{}, Null{}, 0},
		{"nil is null", nil, Null{}, 0},
		{"null before int", Null{}, Int(-100), -1},
		{"null before text", Null{}, String(""), -1},
		{"int before text", Int(999), String("0"), -1},
		{"text after int", String("a"), Int(1), 1},
		{"ints", Int(2), Int(10), -1},
		{"equal ints", Int(5), Int(5), 0},
		{"bool as int", Bool(true), Int(1), 0},
		{"false before true", Bool(false), Bool(true), -1},
		{"text bytewise", String("B"), String("a"), -1},
		{"text prefix", String("ab"), String("abc"), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compare(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			rev, err := Compare(tt.b, tt.a)
			require.NoError(t, err)
			assert.Equal(t, -tt.want, rev, "compare must be antisymmetric")
		})
	}
}

func TestCompareRejectsComposites(t *testing.T) {
	_, err := Compare(Array{}, Int(1))
	require.Error(t, err)

	_, err = Compare(String("x"), Object{})
	require.Error(t, err)
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(String("x"), String("x")))
	assert.False(t, Equal(String("x"), String("y")))
	assert.False(t, Equal(Array{}, Array{}))
}
