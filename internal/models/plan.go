package models

// ExcludeKind tags a plan override. An edited occurrence is backed by a
// concrete stored task; a deleted occurrence is suppressed entirely.
type ExcludeKind int

const (
	ExcludeEdited ExcludeKind = iota + 1
	ExcludeDeleted
)

func (k ExcludeKind) String() string {
	switch k {
	case ExcludeEdited:
		return "edited"
	case ExcludeDeleted:
		return "deleted"
	}
	return "unknown"
}

// Override is one per-occurrence exception row of a plan. TaskID is set
// only for edited overrides.
type Override struct {
	Number int
	Kind   ExcludeKind
	TaskID *int64
}

// Plan couples one template task to a repeat shift, an optional end
// instant and the set of overridden occurrence numbers. Occurrence number
// 0 is always the template's own unshifted window.
type Plan struct {
	ID    int64
	TID   int64 // template task
	Shift int64 // milliseconds per occurrence, signed nonzero
	End   *int64

	// Exclude holds the occurrence numbers of all overrides, deleted and
	// edited alike. The walk treats both as excluded; the distinction
	// matters only to the override operations.
	Exclude []int
}

// Excluded reports whether the occurrence number carries an override.
func (p *Plan) Excluded(number int) bool {
	for _, n := range p.Exclude {
		if n == number {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the plan.
func (p *Plan) Clone() *Plan {
	c := *p
	c.End = cloneInt64(p.End)
	c.Exclude = append([]int(nil), p.Exclude...)
	return &c
}
