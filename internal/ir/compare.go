package ir

import (
	"fmt"
	"strings"
)

// Compare orders two scalar values the way SQLite orders them under
// COLLATE BINARY: Null sorts before every other value, Bool and Int share
// the numeric class (false = 0, true = 1), and numbers sort before text.
// Text compares byte-wise.
//
// Returns -1, 0 or +1. Arrays and objects have no ordering and return an
// error.
func Compare(a, b Value) (int, error) {
	ca, err := classOf(a)
	if err != nil {
		return 0, err
	}
	cb, err := classOf(b)
	if err != nil {
		return 0, err
	}
	if ca != cb {
		if ca < cb {
			return -1, nil
		}
		return 1, nil
	}

	switch ca {
	case classNull:
		return 0, nil
	case classNumeric:
		na, nb := numeric(a), numeric(b)
		switch {
		case na < nb:
			return -1, nil
		case na > nb:
			return 1, nil
		}
		return 0, nil
	default:
		return strings.Compare(string(a.(String)), string(b.(String))), nil
	}
}

// Equal reports whether two scalar values compare equal.
// Values that cannot be compared are never equal.
func Equal(a, b Value) bool {
	c, err := Compare(a, b)
	return err == nil && c == 0
}

type valueClass int

const (
	classNull valueClass = iota
	classNumeric
	classText
)

func classOf(v Value) (valueClass, error) {
	switch v.(type) {
	case nil, Null:
		return classNull, nil
	case Int, Bool:
		return classNumeric, nil
	case String:
		return classText, nil
	default:
		return 0, fmt.Errorf("values of type %T are not ordered", v)
	}
}

func numeric(v Value) int64 {
	switch val := v.(type) {
	case Int:
		return int64(val)
	case Bool:
		if val {
			return 1
		}
	}
	return 0
}
