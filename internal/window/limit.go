package window

import "math"

// MaxSize is the largest page size or limit. Slices and windows fetch one
// row more to detect a next page, and that count must still fit in an int.
const MaxSize = math.MaxInt - 1

// Limit caps the number of rows returned. The zero value is Unlimited.
type Limit struct {
	max int
}

// Unlimited returns the sentinel for "no cap".
func Unlimited() Limit {
	return Limit{}
}

// LimitOf caps results at n rows. n must be in 1..MaxSize.
func LimitOf(n int) (Limit, error) {
	if err := checkSize("limit", "limit", n); err != nil {
		return Limit{}, err
	}
	return Limit{max: n}, nil
}

func checkSize(field, what string, n int) error {
	if n <= 0 {
		return configError(field, "%s must be positive, got %d", what, n)
	}
	if n > MaxSize {
		return configError(field, "%s must not exceed %d, got %d", what, MaxSize, n)
	}
	return nil
}

// IsLimited reports whether a cap is set.
func (l Limit) IsLimited() bool {
	return l.max > 0
}

// Max returns the cap, 0 when unlimited.
func (l Limit) Max() int {
	return l.max
}
