package models

// TimeRange is a query range of zero, one or two epoch-millisecond
// instants. A one-instant range behaves as a degenerate pair with both
// endpoints equal.
type TimeRange []int64

// Start returns the near endpoint. Panics on an empty range; callers
// check len first.
func (r TimeRange) Start() int64 { return r[0] }

// End returns the far endpoint, duplicating the single endpoint of a
// one-instant range.
func (r TimeRange) End() int64 { return r[len(r)-1] }

// Pair normalizes the range to two endpoints.
func (r TimeRange) Pair() TimeRange {
	if len(r) == 1 {
		return TimeRange{r[0], r[0]}
	}
	return r
}
