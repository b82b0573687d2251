package window

import (
	"fmt"
	"strings"
)

// Shape is the result envelope a caller asks for.
type Shape int

const (
	// List is a plain sequence with no metadata.
	List Shape = iota
	// Slice adds HasNext, computed from one probe row.
	Slice
	// Page adds HasNext and Total, which costs a count query.
	Page
	// Window is a slice addressed by offset or keyset position.
	Window
)

var shapeNames = map[Shape]string{
	List:   "list",
	Slice:  "slice",
	Page:   "page",
	Window: "window",
}

func (s Shape) String() string {
	if name, ok := shapeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// Valid reports whether s is a known shape.
func (s Shape) Valid() bool {
	_, ok := shapeNames[s]
	return ok
}

// ParseShape parses "list", "slice", "page" or "window".
func ParseShape(text string) (Shape, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	for shape, name := range shapeNames {
		if name == text {
			return shape, nil
		}
	}
	return List, configError("shape", "unknown shape %q", text)
}

// probes reports whether the shape needs a has-next probe row.
func (s Shape) probes() bool {
	return s == Slice || s == Window
}

// MarshalText implements encoding.TextMarshaler.
func (s Shape) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, configError("shape", "unknown shape %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Shape) UnmarshalText(text []byte) error {
	shape, err := ParseShape(string(text))
	if err != nil {
		return err
	}
	*s = shape
	return nil
}
