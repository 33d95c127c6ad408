package models

// Status is the lifecycle state of a task. Pending, active and completed
// form a total order; overdue is a parallel failed state.
type Status int

const (
	StatusPending Status = iota
	StatusActive
	StatusCompleted
	StatusOverdue
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusActive:
		return "active"
	case StatusCompleted:
		return "completed"
	case StatusOverdue:
		return "overdue"
	}
	return "unknown"
}

// ParseStatus maps a status name to its Status value.
// The second result is false for unrecognized names.
func ParseStatus(s string) (Status, bool) {
	switch s {
	case "pending":
		return StatusPending, true
	case "active":
		return StatusActive, true
	case "completed":
		return StatusCompleted, true
	case "overdue":
		return StatusOverdue, true
	}
	return StatusPending, false
}

// Raise moves the status one step up without breaking the status order:
// completed stays completed and overdue recovers to pending. Never raise
// with s+1 directly.
func (s Status) Raise() Status {
	switch s {
	case StatusCompleted:
		return StatusCompleted
	case StatusOverdue:
		return StatusPending
	}
	return s + 1
}

// Downgrade moves the status one step down: overdue stays overdue and
// pending falls to overdue.
func (s Status) Downgrade() Status {
	switch s {
	case StatusOverdue, StatusPending:
		return StatusOverdue
	}
	return s - 1
}

type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityHighest
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityHighest:
		return "highest"
	}
	return "unknown"
}

func ParsePriority(s string) (Priority, bool) {
	switch s {
	case "low":
		return PriorityLow, true
	case "normal":
		return PriorityNormal, true
	case "high":
		return PriorityHigh, true
	case "highest":
		return PriorityHighest, true
	}
	return PriorityNormal, false
}

// Task is one schedulable unit of work. The three window fields are epoch
// milliseconds and each may be absent independently; the supported shapes
// are "only a start", "only an end" (end and/or deadline without a start),
// a two-sided window, or no window at all (timeless).
type Task struct {
	TID         int64
	UID         int64
	PID         int64
	ParentTID   *int64
	Title       string
	Description string

	SupposedStart *int64
	SupposedEnd   *int64
	Deadline      *int64

	Priority Priority
	Status   Status

	NotifyStart    bool
	NotifyEnd      bool
	NotifyDeadline bool
}

// Clone returns a deep copy of the task. Virtual plan occurrences are
// produced by cloning the template and shifting the clone, never by
// mutating the stored row.
func (t *Task) Clone() *Task {
	c := *t
	c.ParentTID = cloneInt64(t.ParentTID)
	c.SupposedStart = cloneInt64(t.SupposedStart)
	c.SupposedEnd = cloneInt64(t.SupposedEnd)
	c.Deadline = cloneInt64(t.Deadline)
	return &c
}

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// OnlyStart reports whether the task has a start and nothing else.
func (t *Task) OnlyStart() bool {
	return t.SupposedStart != nil && t.SupposedEnd == nil && t.Deadline == nil
}

// OnlyEnd reports whether the task has an end and/or deadline but no start.
func (t *Task) OnlyEnd() bool {
	return t.SupposedStart == nil && (t.SupposedEnd != nil || t.Deadline != nil)
}

// Timeless reports whether no window field is set.
func (t *Task) Timeless() bool {
	return t.SupposedStart == nil && t.SupposedEnd == nil && t.Deadline == nil
}

// Window resolves the task's time range: empty for a timeless task, a
// single instant for a one-sided window, otherwise (start, effective end)
// where the effective end is the supposed end if set, else the deadline.
func (t *Task) Window() TimeRange {
	var right *int64
	if t.SupposedEnd != nil {
		right = t.SupposedEnd
	} else if t.Deadline != nil {
		right = t.Deadline
	}
	left := t.SupposedStart

	switch {
	case left == nil && right == nil:
		return nil
	case left != nil && right != nil:
		return TimeRange{*left, *right}
	case left != nil:
		return TimeRange{*left}
	default:
		return TimeRange{*right}
	}
}

// LeftBorder returns the earliest set window field, or nil for a timeless
// task.
func (t *Task) LeftBorder() *int64 {
	if t.SupposedStart != nil {
		return t.SupposedStart
	}
	if t.SupposedEnd != nil {
		return t.SupposedEnd
	}
	return t.Deadline
}

// Interval returns the window length in milliseconds, 0 for one-sided or
// timeless windows.
func (t *Task) Interval() int64 {
	r := t.Window()
	if len(r) != 2 {
		return 0
	}
	return r[1] - r[0]
}

// ShiftWindow adds delta milliseconds to every set window field.
func (t *Task) ShiftWindow(delta int64) {
	if t.SupposedStart != nil {
		*t.SupposedStart += delta
	}
	if t.SupposedEnd != nil {
		*t.SupposedEnd += delta
	}
	if t.Deadline != nil {
		*t.Deadline += delta
	}
}

// compareWindow reports whether every set window field satisfies cmp
// against the instant. A timeless task vacuously satisfies any comparison,
// so timeless tasks never block range walks.
func (t *Task) compareWindow(instant int64, cmp func(field, instant int64) bool) bool {
	for _, f := range [...]*int64{t.SupposedStart, t.SupposedEnd, t.Deadline} {
		if f != nil && !cmp(*f, instant) {
			return false
		}
	}
	return true
}

// IsAfter reports whether the whole window lies after both endpoints of
// the range, strictly unless inclusive is set. A single-instant range is
// treated as a degenerate pair.
func (t *Task) IsAfter(r TimeRange, inclusive bool) bool {
	if len(r) == 0 {
		return false
	}
	cmp := func(field, instant int64) bool { return field > instant }
	if inclusive {
		cmp = func(field, instant int64) bool { return field >= instant }
	}
	return t.compareWindow(r.Start(), cmp) && t.compareWindow(r.End(), cmp)
}

// IsBefore is the mirror of IsAfter.
func (t *Task) IsBefore(r TimeRange, inclusive bool) bool {
	if len(r) == 0 {
		return false
	}
	cmp := func(field, instant int64) bool { return field < instant }
	if inclusive {
		cmp = func(field, instant int64) bool { return field <= instant }
	}
	return t.compareWindow(r.Start(), cmp) && t.compareWindow(r.End(), cmp)
}

// Overlaps reports whether the task's window and the range share at least
// one instant or straddle each other.
func (t *Task) Overlaps(r TimeRange) bool {
	return !t.IsAfter(r, false) && !t.IsBefore(r, false)
}

// OverlapsFully is the strong overlap test: the window must not lie
// entirely before the range start nor after the range end. Used where
// partial overlap is not acceptable, e.g. resolving the canonical
// occurrence number for a concrete task.
func (t *Task) OverlapsFully(r TimeRange) bool {
	if len(r) != 2 {
		return false
	}
	return !t.IsAfter(TimeRange{r[0]}, false) && !t.IsBefore(TimeRange{r[1]}, false)
}

// InsideOfRange reports whether every window field lies within [r0, r1]
// inclusive. This is the parent/child containment test.
func (t *Task) InsideOfRange(r TimeRange) bool {
	if len(r) != 2 {
		return false
	}
	return t.IsBefore(TimeRange{r[1]}, true) && t.IsAfter(TimeRange{r[0]}, true)
}
