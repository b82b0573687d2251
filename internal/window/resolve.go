package window

import (
	"strconv"

	"github.com/roach88/pagewin/internal/queryir"
)

// Plan is a resolved request: the query to fetch, the optional count
// query, and what Assemble needs to build the envelope.
type Plan struct {
	// Query is the base query with order, limit, offset and keyset
	// predicate applied.
	Query queryir.Select

	// Count is set when the envelope needs a total (Page shape). It covers
	// the base source and filter only.
	Count *queryir.Count

	// Shape is the requested envelope.
	Shape Shape

	// Size is the page size or limit. 0 means unbounded.
	Size int

	// Probe is true when Query.Limit is Size+1; the extra row only decides
	// HasNext (or HasPrevious for backward windows).
	Probe bool

	// Position is the validated request position.
	Position Position

	// Sort is the caller-facing order of Items.
	Sort Sort
}

// Backward reports whether the plan fetches a backward keyset window.
func (p Plan) Backward() bool {
	kp, ok := p.Position.(KeysetPosition)
	return ok && kp.Backward
}

// ResolveOption configures Resolve.
type ResolveOption func(*resolveConfig)

type resolveConfig struct {
	rewriter KeysetRewriter
}

// WithRewriter selects the keyset predicate rewriter. The default is
// ExpansionRewriter.
func WithRewriter(r KeysetRewriter) ResolveOption {
	return func(c *resolveConfig) {
		if r != nil {
			c.rewriter = r
		}
	}
}

// Resolve turns a request into a plan. It is pure: no I/O, no state.
//
// Rules:
//   - Offset position: OFFSET page*size, ORDER BY the position sort, fetch
//     size+1 rows for Slice and Window, size otherwise. Page adds a count.
//   - Keyset position: AND the base filter with the rewritten "after last
//     seen" predicate (none for a start position), fetch size+1. Backward
//     windows reverse every order.
//   - Sort and/or limit only: ORDER BY the sort, LIMIT the cap (top-K).
//     Slice and Window probe one extra row when a cap is set; Page counts
//     when a cap is set and otherwise totals the rows it fetched.
//
// A position combined with an explicit sort or an explicit limit is a
// CONFIGURATION error, as is a base query that already carries ORDER BY,
// LIMIT or OFFSET. Nil Sort, Limit or Position is a NULL_ARGUMENT error.
// Null keyset values are a NULL_SORT_KEY error.
func Resolve(req Request, opts ...ResolveOption) (Plan, error) {
	cfg := resolveConfig{rewriter: ExpansionRewriter{}}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := checkRequest(req); err != nil {
		return Plan{}, err
	}

	switch pos := unwrapPosition(req.Position).(type) {
	case OffsetPosition:
		return resolveOffset(req, pos)
	case KeysetPosition:
		return resolveKeyset(req, pos, cfg.rewriter)
	default:
		return resolveUnpaged(req)
	}
}

func checkRequest(req Request) error {
	if req.Sort == nil {
		return nullArgumentError("sort", "Unsorted")
	}
	if req.Limit == nil {
		return nullArgumentError("limit", "Unlimited")
	}
	pos := unwrapPosition(req.Position)
	if pos == nil {
		return nullArgumentError("position", "Unpaged")
	}
	if !req.Shape.Valid() {
		return configError("shape", "unknown shape %d", int(req.Shape))
	}

	base := req.Base
	if base.From == "" {
		return configError("base", "base query has no source")
	}
	if len(base.OrderBy) > 0 || base.Limit != 0 || base.Offset != 0 {
		return configError("base", "base query must not carry ORDER BY, LIMIT or OFFSET")
	}

	if err := req.Sort.validate(); err != nil {
		return err
	}

	if IsUnpaged(pos) {
		return nil
	}
	if req.Sort.IsSorted() {
		return &Error{
			Code:    ErrCodeConfiguration,
			Message: "position already defines the sort; leave Sort at Unsorted()",
			Field:   "sort",
			Details: map[string]string{"sort": req.Sort.String()},
		}
	}
	if req.Limit.IsLimited() {
		return &Error{
			Code:    ErrCodeConfiguration,
			Message: "position already defines the page size; leave Limit at Unlimited()",
			Field:   "limit",
			Details: map[string]string{"limit": strconv.Itoa(req.Limit.max)},
		}
	}
	return nil
}

func resolveOffset(req Request, pos OffsetPosition) (Plan, error) {
	if err := pos.validate(); err != nil {
		return Plan{}, err
	}

	probe := req.Shape.probes()
	q := req.Base
	q.OrderBy = pos.Sort.queryOrders()
	q.Offset = pos.Offset()
	q.Limit = pos.Size
	if probe {
		q.Limit++
	}

	plan := Plan{
		Query:    q,
		Shape:    req.Shape,
		Size:     pos.Size,
		Probe:    probe,
		Position: pos,
		Sort:     pos.Sort,
	}
	if req.Shape == Page {
		count := req.Base.CountQuery()
		plan.Count = &count
	}
	return plan, nil
}

func resolveKeyset(req Request, pos KeysetPosition, rewriter KeysetRewriter) (Plan, error) {
	if err := pos.validate(); err != nil {
		return Plan{}, err
	}

	fetchSort := pos.Sort
	if pos.Backward {
		fetchSort = pos.Sort.Reverse()
	}
	orders := fetchSort.queryOrders()

	q := req.Base
	q.OrderBy = orders
	q.Limit = pos.Size + 1
	if !pos.IsStart() {
		after, err := rewriter.Rewrite(orders, pos.Values)
		if err != nil {
			return Plan{}, err
		}
		q.Filter = queryir.Conjoin(req.Base.Filter, after)
	}

	plan := Plan{
		Query:    q,
		Shape:    req.Shape,
		Size:     pos.Size,
		Probe:    true,
		Position: pos,
		Sort:     pos.Sort,
	}
	if req.Shape == Page {
		count := req.Base.CountQuery()
		plan.Count = &count
	}
	return plan, nil
}

func resolveUnpaged(req Request) (Plan, error) {
	limit := req.Limit.Max()
	probe := limit > 0 && req.Shape.probes()

	q := req.Base
	q.OrderBy = req.Sort.queryOrders()
	q.Limit = limit
	if probe {
		q.Limit++
	}

	plan := Plan{
		Query:    q,
		Shape:    req.Shape,
		Size:     limit,
		Probe:    probe,
		Position: Unpaged(),
		Sort:     *req.Sort,
	}
	if req.Shape == Page && limit > 0 {
		count := req.Base.CountQuery()
		plan.Count = &count
	}
	return plan, nil
}
