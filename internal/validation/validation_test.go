package validation

import (
	"errors"
	"testing"
	"time"

	trackerrors "github.com/avoronkov/tasktracker/internal/errors"
	"github.com/avoronkov/tasktracker/internal/models"
	"github.com/avoronkov/tasktracker/internal/storage"
	"github.com/avoronkov/tasktracker/internal/storage/memory"
	"github.com/avoronkov/tasktracker/internal/timeutil"
)

const dayMs = int64(24 * time.Hour / time.Millisecond)

type fixture struct {
	t     *testing.T
	store storage.Store
	pid   int64
	// base is tomorrow midnight, keeping windows out of the past.
	base int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	uid, err := store.Users().SaveUser(&models.User{Login: "alice"})
	if err != nil {
		t.Fatalf("SaveUser: %v", err)
	}
	pid, err := store.Projects().SaveProject(&models.Project{Creator: uid, Name: "inbox"})
	if err != nil {
		t.Fatalf("SaveProject: %v", err)
	}
	return &fixture{
		t:     t,
		store: store,
		pid:   pid,
		base:  timeutil.ToMillis(timeutil.Today().AddDate(0, 0, 1)),
	}
}

func (f *fixture) day(n int64) *int64 {
	d := f.base + n*dayMs
	return &d
}

func (f *fixture) task(start, end *int64) *models.Task {
	return &models.Task{
		UID:           1,
		PID:           f.pid,
		Title:         "task",
		SupposedStart: start,
		SupposedEnd:   end,
		Priority:      models.PriorityNormal,
		Status:        models.StatusPending,
	}
}

func (f *fixture) save(task *models.Task) int64 {
	f.t.Helper()
	tid, err := f.store.Tasks().SaveTask(task)
	if err != nil {
		f.t.Fatalf("SaveTask: %v", err)
	}
	return tid
}

func TestValidateTimeOrder(t *testing.T) {
	f := newFixture(t)

	task := f.task(f.day(5), f.day(2))
	var timeErr *trackerrors.InvalidTimeError
	if err := ValidateTask(f.store, task, Options{}); !errors.As(err, &timeErr) {
		t.Errorf("start after end: err = %v, want InvalidTimeError", err)
	}

	task = f.task(f.day(0), f.day(3))
	task.Deadline = f.day(2)
	if err := ValidateTask(f.store, task, Options{}); !errors.As(err, &timeErr) {
		t.Errorf("deadline before end: err = %v, want InvalidTimeError", err)
	}

	task = f.task(f.day(0), f.day(2))
	task.Deadline = f.day(3)
	if err := ValidateTask(f.store, task, Options{}); err != nil {
		t.Errorf("ordered window rejected: %v", err)
	}
}

func TestValidateParentExistence(t *testing.T) {
	f := newFixture(t)

	task := f.task(f.day(0), f.day(1))
	missing := int64(999)
	task.ParentTID = &missing
	var parentErr *trackerrors.InvalidParentError
	if err := ValidateTask(f.store, task, Options{}); !errors.As(err, &parentErr) {
		t.Errorf("missing parent: err = %v, want InvalidParentError", err)
	}

	tid := f.save(f.task(f.day(0), f.day(1)))
	self := f.task(f.day(0), f.day(1))
	self.TID = tid
	self.ParentTID = &tid
	if err := ValidateTask(f.store, self, Options{ForEdit: true}); !errors.As(err, &parentErr) {
		t.Errorf("self parent: err = %v, want InvalidParentError", err)
	}
}

func TestValidateParentPriorityAndStatus(t *testing.T) {
	f := newFixture(t)
	parentTID := f.save(f.task(f.day(0), f.day(5)))

	child := f.task(f.day(1), f.day(2))
	child.ParentTID = &parentTID
	child.Priority = models.PriorityHigh
	var parentErr *trackerrors.InvalidParentError
	if err := ValidateTask(f.store, child, Options{}); !errors.As(err, &parentErr) {
		t.Errorf("priority mismatch: err = %v, want InvalidParentError", err)
	}

	completedParent := f.task(f.day(0), f.day(5))
	completedParent.Status = models.StatusCompleted
	completedTID := f.save(completedParent)
	child = f.task(f.day(1), f.day(2))
	child.ParentTID = &completedTID
	if err := ValidateTask(f.store, child, Options{}); !errors.As(err, &parentErr) {
		t.Errorf("pending child of completed parent: err = %v, want InvalidParentError", err)
	}

	activeParent := f.task(f.day(0), f.day(5))
	activeParent.Status = models.StatusActive
	activeTID := f.save(activeParent)
	child = f.task(f.day(1), f.day(2))
	child.ParentTID = &activeTID
	if err := ValidateTask(f.store, child, Options{}); err != nil {
		t.Fatalf("pending child of active parent: %v", err)
	}
	if child.Status != models.StatusActive {
		t.Errorf("child status = %v, want raised to active", child.Status)
	}
}

func TestValidateParentContainment(t *testing.T) {
	f := newFixture(t)
	parentTID := f.save(f.task(f.day(2), f.day(5)))

	child := f.task(f.day(1), f.day(3))
	child.ParentTID = &parentTID
	var parentErr *trackerrors.InvalidParentError
	if err := ValidateTask(f.store, child, Options{}); !errors.As(err, &parentErr) {
		t.Errorf("child starting before parent: err = %v, want InvalidParentError", err)
	}

	child = f.task(nil, nil)
	child.ParentTID = &parentTID
	if err := ValidateTask(f.store, child, Options{}); err != nil {
		t.Fatalf("timeless child: %v", err)
	}
	if child.SupposedStart == nil || *child.SupposedStart != *f.day(2) {
		t.Error("timeless child should inherit the parent window")
	}

	startOnly := f.task(f.day(3), nil)
	startOnlyTID := f.save(startOnly)
	child = f.task(f.day(1), f.day(2))
	child.ParentTID = &startOnlyTID
	if err := ValidateTask(f.store, child, Options{}); !errors.As(err, &parentErr) {
		t.Errorf("child before a start-only parent: err = %v, want InvalidParentError", err)
	}
	child = f.task(f.day(3), f.day(4))
	child.ParentTID = &startOnlyTID
	if err := ValidateTask(f.store, child, Options{}); err != nil {
		t.Errorf("child after a start-only parent: %v", err)
	}

	endOnly := f.task(nil, f.day(4))
	endOnlyTID := f.save(endOnly)
	child = f.task(f.day(3), f.day(6))
	child.ParentTID = &endOnlyTID
	if err := ValidateTask(f.store, child, Options{}); !errors.As(err, &parentErr) {
		t.Errorf("child past an end-only parent: err = %v, want InvalidParentError", err)
	}
}

func TestValidateParentPlanned(t *testing.T) {
	f := newFixture(t)
	parentTID := f.save(f.task(f.day(0), f.day(1)))
	if _, err := f.store.Plans().SavePlan(&models.Plan{TID: parentTID, Shift: dayMs}); err != nil {
		t.Fatalf("SavePlan: %v", err)
	}

	child := f.task(f.day(0), f.day(1))
	child.ParentTID = &parentTID
	var parentErr *trackerrors.InvalidParentError
	if err := ValidateTask(f.store, child, Options{}); !errors.As(err, &parentErr) {
		t.Errorf("planned parent: err = %v, want InvalidParentError", err)
	}
}

func TestValidateProjectExists(t *testing.T) {
	f := newFixture(t)
	task := f.task(f.day(0), f.day(1))
	task.PID = 999
	var projErr *trackerrors.InvalidProjectError
	if err := ValidateTask(f.store, task, Options{}); !errors.As(err, &projErr) {
		t.Errorf("missing project: err = %v, want InvalidProjectError", err)
	}
}

func TestValidateStatusTime(t *testing.T) {
	f := newFixture(t)

	past := f.task(f.day(-10), f.day(-9))
	var statusErr *trackerrors.InvalidStatusError
	if err := ValidateTask(f.store, past, Options{}); !errors.As(err, &statusErr) {
		t.Errorf("pending in the past: err = %v, want InvalidStatusError", err)
	}
	if err := ValidateTask(f.store, past, Options{Force: true}); err != nil {
		t.Errorf("force should skip the check: %v", err)
	}

	past.Status = models.StatusCompleted
	if err := ValidateTask(f.store, past, Options{}); err != nil {
		t.Errorf("completed in the past: %v", err)
	}

	future := f.task(f.day(1), f.day(2))
	future.Status = models.StatusOverdue
	if err := ValidateTask(f.store, future, Options{}); !errors.As(err, &statusErr) {
		t.Errorf("overdue in the future: err = %v, want InvalidStatusError", err)
	}

	timeless := f.task(nil, nil)
	timeless.Status = models.StatusOverdue
	if err := ValidateTask(f.store, timeless, Options{}); err != nil {
		t.Errorf("timeless tasks skip the check: %v", err)
	}

	// A start-only window that has passed may stay pending: the task has
	// no end to miss.
	startOnly := f.task(f.day(-10), nil)
	if err := ValidateTask(f.store, startOnly, Options{}); err != nil {
		t.Errorf("start-only in the past: %v", err)
	}
}

func TestValidatePlanEdit(t *testing.T) {
	f := newFixture(t)
	templateTID := f.save(f.task(f.day(0), f.day(1)))
	editedTID := f.save(f.task(f.day(2), f.day(3)))
	if _, err := f.store.Plans().SavePlan(&models.Plan{
		TID:   templateTID,
		Shift: 2 * dayMs,
	}); err != nil {
		t.Fatalf("SavePlan: %v", err)
	}
	plan, err := f.store.Plans().GetPlanByTemplateTask(templateTID)
	if err != nil {
		t.Fatalf("GetPlanByTemplateTask: %v", err)
	}
	if err := f.store.Plans().SaveOverride(plan.ID, models.Override{
		Number: 1,
		Kind:   models.ExcludeEdited,
		TaskID: &editedTID,
	}); err != nil {
		t.Fatalf("SaveOverride: %v", err)
	}

	edited, _ := f.store.Tasks().GetTask(editedTID)
	err = ValidateTask(f.store, edited, Options{ForEdit: true})
	if !errors.Is(err, trackerrors.ErrPlanEditViaTask) {
		t.Errorf("editing an occurrence task: err = %v, want ErrPlanEditViaTask", err)
	}

	// Without ForEdit the check does not apply; creation never targets an
	// occurrence task.
	if err := ValidateTask(f.store, edited, Options{}); err != nil {
		t.Errorf("create path: %v", err)
	}
}
