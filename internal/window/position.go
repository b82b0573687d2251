package window

import (
	"math"

	"github.com/roach88/pagewin/internal/ir"
)

// Position is a sealed interface over where a window starts.
//
// Position types:
//   - Unpaged(): no position; the whole result, optionally sorted and capped
//   - OffsetPosition: page index and page size over a sort
//   - KeysetPosition: last-seen sort key values and a page size
//
// A position already defines its ordering and page size, so a request
// carrying one must leave Sort and Limit at their sentinels.
type Position interface {
	position()
}

type unpaged struct{}

func (unpaged) position() {}

// Unpaged returns the sentinel for "no position".
func Unpaged() Position {
	return unpaged{}
}

// IsUnpaged reports whether p is the Unpaged sentinel.
func IsUnpaged(p Position) bool {
	switch p.(type) {
	case unpaged, *unpaged:
		return true
	}
	return false
}

// OffsetPosition addresses page Page (zero-based) of Size rows under Sort.
type OffsetPosition struct {
	Page int
	Size int
	Sort Sort
}

func (OffsetPosition) position() {}

// PageOf returns the offset position for a zero-based page index.
func PageOf(page, size int, sort Sort) (OffsetPosition, error) {
	p := OffsetPosition{Page: page, Size: size, Sort: sort}
	if err := p.validate(); err != nil {
		return OffsetPosition{}, err
	}
	return p, nil
}

// Offset returns the number of rows skipped. It saturates at math.MaxInt,
// which lies past the end of any result.
func (p OffsetPosition) Offset() int {
	if p.Page > 0 && p.Size > math.MaxInt/p.Page {
		return math.MaxInt
	}
	return p.Page * p.Size
}

// Next returns the following page.
func (p OffsetPosition) Next() OffsetPosition {
	return OffsetPosition{Page: p.Page + 1, Size: p.Size, Sort: p.Sort}
}

// Previous returns the preceding page, or false on the first page.
func (p OffsetPosition) Previous() (OffsetPosition, bool) {
	if p.Page == 0 {
		return OffsetPosition{}, false
	}
	return OffsetPosition{Page: p.Page - 1, Size: p.Size, Sort: p.Sort}, true
}

func (p OffsetPosition) validate() error {
	if p.Page < 0 {
		return configError("position", "page index must not be negative, got %d", p.Page)
	}
	if err := checkSize("position", "page size", p.Size); err != nil {
		return err
	}
	return p.Sort.validate()
}

// KeysetPosition addresses the Size rows after (or, when Backward, before)
// the row whose sort keys equal Values. Empty Values means the first
// window, or the last one when Backward.
type KeysetPosition struct {
	Sort     Sort
	Values   []ir.Value
	Size     int
	Backward bool
}

func (KeysetPosition) position() {}

// KeysetStart returns the first keyset window of size rows under sort.
// Sort must hold at least one key; the last key should be unique per row
// or rows sharing a full key are skipped between windows.
//
// Every sort key must be non-null in every row. Rows with a null key never
// satisfy the keyset predicate and are silently skipped; callers that know
// which properties are nullable reject them up front (see
// NullableSortKeyError).
func KeysetStart(sort Sort, size int) (KeysetPosition, error) {
	p := KeysetPosition{Sort: sort, Size: size}
	if err := p.validate(); err != nil {
		return KeysetPosition{}, err
	}
	return p, nil
}

// After returns the forward window following the row with the given keys.
func (p KeysetPosition) After(values ...ir.Value) KeysetPosition {
	return KeysetPosition{Sort: p.Sort, Values: append([]ir.Value(nil), values...), Size: p.Size}
}

// Before returns the backward window preceding the row with the given
// keys. With no values it addresses the last window.
func (p KeysetPosition) Before(values ...ir.Value) KeysetPosition {
	return KeysetPosition{Sort: p.Sort, Values: append([]ir.Value(nil), values...), Size: p.Size, Backward: true}
}

// IsStart reports whether p addresses the first (or last) window.
func (p KeysetPosition) IsStart() bool {
	return len(p.Values) == 0
}

func (p KeysetPosition) validate() error {
	if !p.Sort.IsSorted() {
		return configError("position", "keyset position requires a sort")
	}
	if err := p.Sort.validate(); err != nil {
		return err
	}
	if err := checkSize("position", "page size", p.Size); err != nil {
		return err
	}
	if len(p.Values) == 0 {
		return nil
	}
	if len(p.Values) != p.Sort.Len() {
		return &Error{
			Code:    ErrCodeConfiguration,
			Message: "keyset values do not match sort keys",
			Field:   "position",
			Details: map[string]string{
				"sort":   p.Sort.String(),
				"values": ir.Format(ir.Array(p.Values)),
			},
		}
	}
	for i, v := range p.Values {
		if ir.IsNull(v) {
			return nullSortKeyError(p.Sort.orders[i].Property, i)
		}
	}
	return nil
}

// unwrapPosition returns the value form of pointer positions and reports
// nil (including typed nil pointers) as nil.
func unwrapPosition(p Position) Position {
	switch pos := p.(type) {
	case *OffsetPosition:
		if pos == nil {
			return nil
		}
		return *pos
	case *KeysetPosition:
		if pos == nil {
			return nil
		}
		return *pos
	case *unpaged:
		if pos == nil {
			return nil
		}
		return unpaged{}
	}
	return p
}
