package window

import "github.com/roach88/pagewin/internal/queryir"

// Request is a windowed read over a base query.
//
// Sort, Limit and Position must never be nil: leave them at Unsorted(),
// Unlimited() and Unpaged() instead. For fills every field with its
// sentinel.
type Request struct {
	Base     queryir.Select
	Sort     *Sort
	Limit    *Limit
	Position Position
	Shape    Shape
}

// For starts a request over base with every parameter at its sentinel and
// the List shape.
func For(base queryir.Select) Request {
	sort := Unsorted()
	limit := Unlimited()
	return Request{
		Base:     base,
		Sort:     &sort,
		Limit:    &limit,
		Position: Unpaged(),
		Shape:    List,
	}
}

// Sorted returns a copy of r ordered by sort.
func (r Request) Sorted(sort Sort) Request {
	r.Sort = &sort
	return r
}

// Limited returns a copy of r capped by limit.
func (r Request) Limited(limit Limit) Request {
	r.Limit = &limit
	return r
}

// At returns a copy of r starting at position.
func (r Request) At(position Position) Request {
	r.Position = position
	return r
}

// As returns a copy of r asking for shape.
func (r Request) As(shape Shape) Request {
	r.Shape = shape
	return r
}
