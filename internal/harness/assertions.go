package harness

import (
	"fmt"
	"reflect"

	"github.com/roach88/pagewin/internal/ir"
)

// checkExpect compares the fields set in expect with the outcome and
// returns one message per mismatch.
func checkExpect(expect Expect, out Outcome) []string {
	var msgs []string
	mismatch := func(field string, want, got any) {
		msgs = append(msgs, fmt.Sprintf("%s: expected %v, got %v", field, want, got))
	}

	if expect.Error != "" || out.Error != "" {
		if expect.Error != out.Error {
			mismatch("error", orNone(expect.Error), orNone(out.Error))
		}
		// An errored step has no other fields to check.
		return msgs
	}

	if expect.Keys != nil {
		want, err := ir.FromAny(expect.Keys)
		if err != nil {
			msgs = append(msgs, fmt.Sprintf("keys: bad expectation: %v", err))
		} else if got, _ := ir.FromAny(out.Keys); !reflect.DeepEqual(want, got) {
			mismatch("keys", ir.Format(want), ir.Format(got))
		}
	}
	if expect.Count != nil && *expect.Count != len(out.Keys) {
		mismatch("count", *expect.Count, len(out.Keys))
	}
	if expect.HasNext != nil && *expect.HasNext != out.HasNext {
		mismatch("has_next", *expect.HasNext, out.HasNext)
	}
	if expect.HasPrevious != nil && *expect.HasPrevious != out.HasPrevious {
		mismatch("has_previous", *expect.HasPrevious, out.HasPrevious)
	}
	if expect.Total != nil && *expect.Total != out.Total {
		mismatch("total", *expect.Total, out.Total)
	}
	if expect.Number != nil && *expect.Number != out.Number {
		mismatch("number", *expect.Number, out.Number)
	}
	return msgs
}

func orNone(s string) string {
	if s == "" {
		return "no error"
	}
	return s
}
