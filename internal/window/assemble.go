package window

import (
	"slices"

	"github.com/roach88/pagewin/internal/ir"
)

// Result is the envelope returned to the caller.
//
// Which fields carry meaning depends on Shape:
//   - List: Items only
//   - Slice, Window: Items, HasNext, HasPrevious, Size, Number, Next, Prev
//   - Page: all of the above plus Total
type Result[T any] struct {
	Shape       Shape
	Items       []T
	HasNext     bool
	HasPrevious bool

	// Total counts rows matching the base filter. Page shape only.
	Total int64

	// Number is the zero-based page index for offset positions.
	Number int

	// Size is the requested page size or limit, 0 when unbounded.
	Size int

	// Next and Prev address the neighbouring windows, nil when there is
	// none.
	Next Position
	Prev Position
}

// KeyFunc extracts the sort key values of a row, in sort key order.
type KeyFunc[T any] func(T) []ir.Value

// ObjectKeys returns the KeyFunc for ir.Object rows fetched by plan.
// Sort properties are looked up under their output names.
func ObjectKeys(plan Plan) KeyFunc[ir.Object] {
	props := plan.Sort.Properties()
	names := make([]string, len(props))
	for i, prop := range props {
		names[i] = plan.Query.OutputName(prop)
	}
	return func(row ir.Object) []ir.Value {
		return row.Pick(names...)
	}
}

// Assemble builds the envelope from fetched rows.
//
// rows must be exactly what plan.Query returned, in fetch order. total is
// the result of plan.Count and is ignored when plan.Count is nil. keyOf is
// required for keyset plans and may be nil otherwise.
//
// The probe row, when present, is dropped and only sets HasNext (or
// HasPrevious for backward windows). Backward windows are reversed back
// into caller order.
func Assemble[T any](plan Plan, rows []T, total int64, keyOf KeyFunc[T]) (Result[T], error) {
	items := rows
	extra := false
	if plan.Probe && plan.Size > 0 && len(items) > plan.Size {
		extra = true
		items = items[:plan.Size]
	}
	if plan.Backward() {
		items = slices.Clone(items)
		slices.Reverse(items)
	}
	if items == nil {
		items = []T{}
	}

	res := Result[T]{Shape: plan.Shape, Items: items}
	if plan.Shape == List {
		return res, nil
	}
	res.Size = plan.Size
	if plan.Shape == Page {
		if plan.Count != nil {
			res.Total = total
		} else {
			res.Total = int64(len(items))
		}
	}

	switch pos := plan.Position.(type) {
	case OffsetPosition:
		res.Number = pos.Page
		if plan.Shape == Page {
			res.HasNext = int64(pos.Offset())+int64(len(items)) < res.Total
		} else {
			res.HasNext = extra
		}
		if res.HasNext {
			res.Next = pos.Next()
		}
		if prev, ok := pos.Previous(); ok {
			res.HasPrevious = true
			res.Prev = prev
		}
	case KeysetPosition:
		if err := linkKeyset(&res, pos, extra, keyOf); err != nil {
			return Result[T]{}, err
		}
	default:
		if plan.Shape == Page && plan.Count != nil {
			res.HasNext = int64(len(items)) < res.Total
		} else {
			res.HasNext = extra
		}
	}
	return res, nil
}

func linkKeyset[T any](res *Result[T], pos KeysetPosition, extra bool, keyOf KeyFunc[T]) error {
	if pos.Backward {
		res.HasPrevious = extra
		res.HasNext = !pos.IsStart()
	} else {
		res.HasNext = extra
		res.HasPrevious = !pos.IsStart()
	}

	if len(res.Items) == 0 {
		// Nothing lies beyond the anchor in fetch direction, so the way
		// back is the window starting from the opposite end.
		if pos.Backward && res.HasNext {
			res.Next = KeysetPosition{Sort: pos.Sort, Size: pos.Size}
		}
		if !pos.Backward && res.HasPrevious {
			res.Prev = KeysetPosition{Sort: pos.Sort, Size: pos.Size, Backward: true}
		}
		return nil
	}
	if keyOf == nil {
		return configError("position", "keyset results need a key function")
	}

	if res.HasNext {
		keys, err := boundaryKeys(pos.Sort, keyOf(res.Items[len(res.Items)-1]))
		if err != nil {
			return err
		}
		res.Next = pos.After(keys...)
	}
	if res.HasPrevious {
		keys, err := boundaryKeys(pos.Sort, keyOf(res.Items[0]))
		if err != nil {
			return err
		}
		res.Prev = pos.Before(keys...)
	}
	return nil
}

func boundaryKeys(sort Sort, keys []ir.Value) ([]ir.Value, error) {
	if len(keys) != sort.Len() {
		return nil, configError("position", "key function returned %d values for %d sort keys", len(keys), sort.Len())
	}
	for i, v := range keys {
		if ir.IsNull(v) {
			return nil, nullSortKeyError(sort.orders[i].Property, i)
		}
	}
	return keys, nil
}
