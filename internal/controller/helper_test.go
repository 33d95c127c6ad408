package controller

import (
	"testing"
	"time"

	"github.com/avoronkov/tasktracker/internal/models"
	"github.com/avoronkov/tasktracker/internal/storage/memory"
	"github.com/avoronkov/tasktracker/internal/timeutil"
)

const dayMs = int64(24 * time.Hour / time.Millisecond)

type env struct {
	t     *testing.T
	reg   *Registry
	store *memory.Store
	// base is tomorrow midnight, so test windows sit in the future and
	// pass the status/time check.
	base int64
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.New()
	reg := New(store)
	if _, err := reg.Users.SaveUser("alice"); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}
	if err := reg.AuthenticateByLogin("alice"); err != nil {
		t.Fatalf("AuthenticateByLogin: %v", err)
	}
	base := timeutil.ToMillis(timeutil.Today().AddDate(0, 0, 1))
	return &env{t: t, reg: reg, store: store, base: base}
}

func (e *env) day(n int64) int64 {
	return e.base + n*dayMs
}

func (e *env) dayPtr(n int64) *int64 {
	d := e.day(n)
	return &d
}

func (e *env) days(ns ...int64) models.TimeRange {
	rng := make(models.TimeRange, 0, len(ns))
	for _, n := range ns {
		rng = append(rng, e.day(n))
	}
	return rng
}

// windowTask saves a task spanning [start, end] days from base.
func (e *env) windowTask(title string, start, end int64) int64 {
	e.t.Helper()
	tid, err := e.reg.Tasks.SaveTask(NewTask{
		Title:         title,
		SupposedStart: e.dayPtr(start),
		SupposedEnd:   e.dayPtr(end),
	})
	if err != nil {
		e.t.Fatalf("SaveTask(%s): %v", title, err)
	}
	return tid
}

// attach creates a plan repeating tid every shiftDays days, optionally
// ending at endDay.
func (e *env) attach(tid, shiftDays int64, endDay *int64) int64 {
	e.t.Helper()
	var end *int64
	if endDay != nil {
		end = e.dayPtr(*endDay)
	}
	planID, err := e.reg.Plans.AttachPlan(tid, shiftDays*dayMs, end)
	if err != nil {
		e.t.Fatalf("AttachPlan(%d): %v", tid, err)
	}
	return planID
}

func (e *env) repeats(planID int64, rng models.TimeRange, strong, withExcluded bool) []int {
	e.t.Helper()
	numbers, err := e.reg.Plans.RepeatsByTimeRange(planID, rng, strong, withExcluded)
	if err != nil {
		e.t.Fatalf("RepeatsByTimeRange: %v", err)
	}
	return numbers
}

func (e *env) getTask(tid int64) *models.Task {
	e.t.Helper()
	task, err := e.store.Tasks().GetTask(tid)
	if err != nil {
		e.t.Fatalf("GetTask(%d): %v", tid, err)
	}
	return task
}

func (e *env) getPlan(planID int64) *models.Plan {
	e.t.Helper()
	plan, err := e.store.Plans().GetPlan(planID)
	if err != nil {
		e.t.Fatalf("GetPlan(%d): %v", planID, err)
	}
	return plan
}

func int64Ptr(v int64) *int64 { return &v }

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
