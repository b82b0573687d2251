package window

import (
	"strings"

	"github.com/roach88/pagewin/internal/queryir"
)

// Direction is the ordering of one sort key.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Order is one (property, direction) pair.
type Order struct {
	Property  string
	Direction Direction
}

// Asc orders property ascending.
func Asc(property string) Order {
	return Order{Property: property, Direction: Ascending}
}

// Desc orders property descending.
func Desc(property string) Order {
	return Order{Property: property, Direction: Descending}
}

// Reverse flips the direction.
func (o Order) Reverse() Order {
	if o.Direction == Descending {
		return Asc(o.Property)
	}
	return Desc(o.Property)
}

// Sort is an ordered sequence of sort keys. The zero value is Unsorted:
// the backend may return rows in any order.
type Sort struct {
	orders []Order
}

// Unsorted returns the sentinel for "no explicit order".
func Unsorted() Sort {
	return Sort{}
}

// By builds a sort from orders, primary key first.
func By(orders ...Order) Sort {
	if len(orders) == 0 {
		return Sort{}
	}
	return Sort{orders: append([]Order(nil), orders...)}
}

// And concatenates other after s.
func (s Sort) And(other Sort) Sort {
	return By(append(s.Orders(), other.orders...)...)
}

// Orders returns a copy of the sort keys.
func (s Sort) Orders() []Order {
	return append([]Order(nil), s.orders...)
}

// IsSorted reports whether s holds at least one key.
func (s Sort) IsSorted() bool {
	return len(s.orders) > 0
}

// Len returns the number of sort keys.
func (s Sort) Len() int {
	return len(s.orders)
}

// Properties returns the sorted properties in key order.
func (s Sort) Properties() []string {
	props := make([]string, len(s.orders))
	for i, o := range s.orders {
		props[i] = o.Property
	}
	return props
}

// Has reports whether property is one of the sort keys.
func (s Sort) Has(property string) bool {
	for _, o := range s.orders {
		if o.Property == property {
			return true
		}
	}
	return false
}

// Reverse flips every direction.
func (s Sort) Reverse() Sort {
	out := make([]Order, len(s.orders))
	for i, o := range s.orders {
		out[i] = o.Reverse()
	}
	return By(out...)
}

// Equal reports whether both sorts hold the same keys in the same order.
func (s Sort) Equal(other Sort) bool {
	if len(s.orders) != len(other.orders) {
		return false
	}
	for i := range s.orders {
		if s.orders[i] != other.orders[i] {
			return false
		}
	}
	return true
}

// String renders the sort as "title:asc,id:desc". Unsorted renders empty.
func (s Sort) String() string {
	parts := make([]string, len(s.orders))
	for i, o := range s.orders {
		parts[i] = o.Property + ":" + string(o.Direction)
	}
	return strings.Join(parts, ",")
}

// ParseSort parses "title:asc,id:desc". The direction defaults to
// ascending; an empty string is Unsorted.
func ParseSort(text string) (Sort, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Unsorted(), nil
	}

	var orders []Order
	for _, term := range strings.Split(text, ",") {
		prop, dir, _ := strings.Cut(strings.TrimSpace(term), ":")
		prop = strings.TrimSpace(prop)
		order := Order{Property: prop, Direction: Ascending}
		switch strings.ToLower(strings.TrimSpace(dir)) {
		case "", "asc":
		case "desc":
			order.Direction = Descending
		default:
			return Sort{}, configError("sort", "unknown direction %q for %q", dir, prop)
		}
		orders = append(orders, order)
	}

	s := By(orders...)
	if err := s.validate(); err != nil {
		return Sort{}, err
	}
	return s, nil
}

func (s Sort) validate() error {
	seen := make(map[string]bool, len(s.orders))
	for i, o := range s.orders {
		if o.Property == "" {
			return configError("sort", "sort key %d has no property", i)
		}
		if o.Direction != Ascending && o.Direction != Descending {
			return configError("sort", "unknown direction %q for %q", o.Direction, o.Property)
		}
		if seen[o.Property] {
			return configError("sort", "property %q is sorted twice", o.Property)
		}
		seen[o.Property] = true
	}
	return nil
}

func (s Sort) queryOrders() []queryir.Order {
	if len(s.orders) == 0 {
		return nil
	}
	out := make([]queryir.Order, len(s.orders))
	for i, o := range s.orders {
		out[i] = queryir.Order{Field: o.Property, Desc: o.Direction == Descending}
	}
	return out
}
