package controller

import (
	"github.com/samber/mo"

	"github.com/avoronkov/tasktracker/internal/models"
)

// Field is a tri-state edit field: the zero value leaves the target
// unchanged, Set assigns a value and Clear assigns null. This makes
// "set to null" and "leave alone" distinguishable without sentinel
// values.
type Field[T any] struct {
	set bool
	val mo.Option[T]
}

func Set[T any](v T) Field[T] {
	return Field[T]{set: true, val: mo.Some(v)}
}

func Clear[T any]() Field[T] {
	return Field[T]{set: true, val: mo.None[T]()}
}

func (f Field[T]) IsSet() bool { return f.set }

// Ptr resolves the field against a nullable target: unchanged fields
// keep cur, Clear yields nil.
func (f Field[T]) Ptr(cur *T) *T {
	if !f.set {
		return cur
	}
	if v, ok := f.val.Get(); ok {
		return &v
	}
	return nil
}

// Value resolves the field against a non-nullable target; Clear keeps
// the current value.
func (f Field[T]) Value(cur T) T {
	if !f.set {
		return cur
	}
	if v, ok := f.val.Get(); ok {
		return v
	}
	return cur
}

// NewTask carries the caller-supplied fields for task creation. Nil
// optionals fall back to defaults: the user's default project, pending
// status, normal priority.
type NewTask struct {
	TID       *int64 // explicit id, normally storage-assigned
	PID       *int64
	ParentTID *int64

	Title       string
	Description string

	SupposedStart *int64
	SupposedEnd   *int64
	Deadline      *int64

	Priority *models.Priority
	Status   *models.Status

	NotifyStart    bool
	NotifyEnd      bool
	NotifyDeadline bool
}

// TaskPatch carries per-field task edits.
type TaskPatch struct {
	PID       Field[int64]
	ParentTID Field[int64]

	Title       Field[string]
	Description Field[string]

	SupposedStart Field[int64]
	SupposedEnd   Field[int64]
	Deadline      Field[int64]

	Priority Field[models.Priority]
	Status   Field[models.Status]

	NotifyStart    Field[bool]
	NotifyEnd      Field[bool]
	NotifyDeadline Field[bool]
}

func (p TaskPatch) touchesWindow() bool {
	return p.SupposedStart.IsSet() || p.SupposedEnd.IsSet() || p.Deadline.IsSet()
}

// RepeatPatch carries the per-occurrence edits a plan allows. Window
// fields are deliberately absent: an occurrence's window is always
// derived from the template.
type RepeatPatch struct {
	Status   Field[models.Status]
	Priority Field[models.Priority]

	NotifyStart    Field[bool]
	NotifyEnd      Field[bool]
	NotifyDeadline Field[bool]
}

// PlanPatch carries plan edits. Shift is never cleared (it is non-null
// by construction); clearing End removes the plan's end instant.
type PlanPatch struct {
	Shift Field[int64]
	End   Field[int64]
}
