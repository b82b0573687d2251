// Package window decides which subset of a query's rows a caller gets and
// what metadata comes back with them.
//
// A caller describes a read with a Request: a base query plus a Sort, a
// Limit, a Position and the envelope Shape it wants. Resolve turns the
// request into a Plan (the rewritten query, an optional count query and
// the probe decision), an executor runs it, and Assemble builds the Result.
//
//	pos, _ := window.PageOf(2, 20, sort)
//	plan, err := window.Resolve(window.For(base).At(pos).As(window.Slice))
//	rows, err := exec.Fetch(ctx, plan.Query) // 21 rows at most
//	res, err := window.Assemble(plan, rows, 0, window.ObjectKeys(plan))
//
// ENVELOPES:
//
//	List    rows only
//	Slice   rows + HasNext (one probe row, no count)
//	Page    rows + HasNext + Total (count query over the base filter)
//	Window  a slice addressed by offset or keyset position
//
// SENTINELS:
//
// Unsorted(), Unlimited() and Unpaged() mean "not specified" and are always
// valid. Passing nil instead is a NULL_ARGUMENT error. A position already
// defines order and page size, so combining it with an explicit sort or
// limit is a CONFIGURATION error.
//
// KEYSET PAGING:
//
// A KeysetPosition holds the sort key values of the last row seen. The
// KeysetRewriter turns them into a lexicographic "after" predicate that
// respects each key's direction. Null key values have no agreed ordering
// across backends and are rejected with NULL_SORT_KEY. The last sort key
// should be unique so that no two rows share a full key.
//
// Resolve and Assemble are pure and safe for concurrent use.
package window
