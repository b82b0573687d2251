package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintDeterministic(t *testing.T) {
	a := Object{"sort": Array{String("title:asc")}, "size": Int(10)}
	b := Object{"size": Int(10), "sort": Array{String("title:asc")}}

	fa, err := Fingerprint(DomainCursor, a)
	require.NoError(t, err)
	fb, err := Fingerprint(DomainCursor, b)
	require.NoError(t, err)

	assert.Equal(t, fa, fb, "key order must not change the fingerprint")
	assert.Len(t, fa, 64)
}

func TestFingerprintDomainSeparation(t *testing.T) {
	v := Object{"x": Int(1)}

	assert.NotEqual(t,
		MustFingerprint(DomainCursor, v),
		MustFingerprint(DomainCollection, v))
}

func TestFingerprintChangesWithContent(t *testing.T) {
	assert.NotEqual(t,
		MustFingerprint(DomainCursor, Object{"x": Int(1)}),
		MustFingerprint(DomainCursor, Object{"x": Int(2)}))
}

func TestFingerprintRejectsNull(t *testing.T) {
	_, err := Fingerprint(DomainCursor, Object{"x": Null{}})
	require.Error(t, err)

	assert.Panics(t, func() {
		MustFingerprint(DomainCursor, Null{})
	})
}
