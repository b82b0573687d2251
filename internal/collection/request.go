package collection

import (
	"errors"
	"fmt"
	"sort"

	"github.com/roach88/pagewin/internal/ir"
	"github.com/roach88/pagewin/internal/queryir"
	"github.com/roach88/pagewin/internal/window"
)

// Params are caller-facing request parameters, as given on the command
// line or in a scenario step.
type Params struct {
	// Filter maps field names to required values; null means IS NULL.
	Filter map[string]any `yaml:"filter,omitempty" json:"filter,omitempty"`

	// Sort is "field:dir,..."; the key is appended as tie-breaker.
	Sort string `yaml:"sort,omitempty" json:"sort,omitempty"`

	// Limit caps an unpaged read (top-K). 0 means no cap.
	Limit int `yaml:"limit,omitempty" json:"limit,omitempty"`

	// Page selects an offset position. Nil means no offset position.
	Page *int `yaml:"page,omitempty" json:"page,omitempty"`

	// Size is the page size for offset and keyset positions, clamped by
	// the collection's page size limits.
	Size int `yaml:"size,omitempty" json:"size,omitempty"`

	// Keyset starts a keyset walk from the first window.
	Keyset bool `yaml:"keyset,omitempty" json:"keyset,omitempty"`

	// Shape is list, slice, page or window. Empty means list.
	Shape string `yaml:"shape,omitempty" json:"shape,omitempty"`
}

// Request builds a window request over the collection.
//
// The sort is checked against the sortable fields and normalized. With a
// page or keyset the normalized sort travels in the position; otherwise
// it is the request sort. A limit is passed through as given, so a limit
// combined with a position fails in window.Resolve. A keyset walk over a
// nullable property is a NULL_SORT_KEY error.
func (s *Spec) Request(p Params) (window.Request, error) {
	if p.Page != nil && p.Keyset {
		return window.Request{}, errors.New("page and keyset are mutually exclusive")
	}

	base := s.Base()
	filter, err := s.Filter(p.Filter)
	if err != nil {
		return window.Request{}, err
	}
	base.Filter = filter

	srt, err := window.ParseSort(p.Sort)
	if err != nil {
		return window.Request{}, err
	}
	if err := s.CheckSort(srt); err != nil {
		return window.Request{}, err
	}
	srt = s.Normalize(srt)

	req := window.For(base)
	if p.Shape != "" {
		shape, err := window.ParseShape(p.Shape)
		if err != nil {
			return window.Request{}, err
		}
		req = req.As(shape)
	}
	if p.Limit != 0 {
		limit, err := window.LimitOf(p.Limit)
		if err != nil {
			return window.Request{}, err
		}
		req = req.Limited(limit)
	}

	switch {
	case p.Page != nil:
		pos, err := window.PageOf(*p.Page, s.ClampSize(p.Size), srt)
		if err != nil {
			return window.Request{}, err
		}
		return req.At(pos), nil
	case p.Keyset:
		if err := s.CheckKeyset(srt); err != nil {
			return window.Request{}, err
		}
		pos, err := window.KeysetStart(srt, s.ClampSize(p.Size))
		if err != nil {
			return window.Request{}, err
		}
		return req.At(pos), nil
	}
	return req.Sorted(srt), nil
}

// Filter turns an equality map into a predicate, fields in name order.
// Returns nil for an empty map.
func (s *Spec) Filter(values map[string]any) (queryir.Predicate, error) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	preds := make([]queryir.Predicate, 0, len(names))
	for _, name := range names {
		if _, ok := s.Field(name); !ok {
			return nil, fmt.Errorf("filter: %q is not a field of %s", name, s.Name)
		}
		v, err := ir.FromAny(values[name])
		if err != nil {
			return nil, fmt.Errorf("filter %s: %w", name, err)
		}
		if ir.IsNull(v) {
			preds = append(preds, queryir.IsNull{Field: name})
			continue
		}
		preds = append(preds, queryir.Equals{Field: name, Value: v})
	}
	return queryir.Conjoin(preds...), nil
}
