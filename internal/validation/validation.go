// Package validation checks tasks against the relational invariants the
// storage layer cannot express on its own.
package validation

import (
	"github.com/avoronkov/tasktracker/internal/errors"
	"github.com/avoronkov/tasktracker/internal/logger"
	"github.com/avoronkov/tasktracker/internal/models"
	"github.com/avoronkov/tasktracker/internal/storage"
	"github.com/avoronkov/tasktracker/internal/timeutil"
)

// Options tune which checks apply for a particular save path.
type Options struct {
	// ForEdit marks validation of an existing task rather than a new one.
	ForEdit bool
	// Force skips the status/time consistency check.
	Force bool
}

// ValidateTask runs every task check in order. The task may be mutated:
// missing priority, status, and window fields are inherited from the
// parent when one is set.
func ValidateTask(store storage.Store, task *models.Task, opts Options) error {
	if err := validateTime(task); err != nil {
		return err
	}
	if err := validateParent(store, task); err != nil {
		return err
	}
	if err := validateProject(store, task); err != nil {
		return err
	}
	if err := validateStatusTime(task, opts.Force); err != nil {
		return err
	}
	if opts.ForEdit {
		if err := validatePlanEdit(store, task); err != nil {
			return err
		}
	}
	return nil
}

func validateTime(task *models.Task) error {
	pairs := [][2]*int64{
		{task.SupposedStart, task.SupposedEnd},
		{task.SupposedEnd, task.Deadline},
		{task.SupposedStart, task.Deadline},
	}
	for _, p := range pairs {
		if p[0] != nil && p[1] != nil && *p[0] > *p[1] {
			return &errors.InvalidTimeError{Start: *p[0], End: *p[1]}
		}
	}
	return nil
}

func validateParent(store storage.Store, task *models.Task) error {
	if task.ParentTID == nil {
		return nil
	}
	parentTID := *task.ParentTID

	if task.TID != 0 && parentTID == task.TID {
		logger.Error("task cannot be its own parent", "tid", task.TID)
		return &errors.InvalidParentError{ParentTID: parentTID, Reason: "task cannot be its own parent"}
	}

	parent, err := store.Tasks().GetTask(parentTID)
	if err != nil {
		return err
	}
	if parent == nil {
		logger.Error("parent does not exist", "parent", parentTID)
		return &errors.InvalidParentError{ParentTID: parentTID, Reason: "parent does not exist"}
	}

	if task.Priority != parent.Priority {
		logger.Error("priority differs from parent", "parent", parentTID)
		return &errors.InvalidParentError{
			ParentTID: parentTID,
			Reason:    "priority must match parent priority " + parent.Priority.String(),
		}
	}

	if parent.Status == models.StatusCompleted && task.Status != models.StatusCompleted {
		logger.Error("incomplete child of completed parent", "parent", parentTID)
		return &errors.InvalidParentError{
			ParentTID: parentTID,
			Reason:    "child of a completed task must be completed",
		}
	}
	if parent.Status == models.StatusActive && task.Status == models.StatusPending {
		task.Status = parent.Status
	}
	if parent.Status == models.StatusOverdue && task.Status != models.StatusOverdue {
		logger.Error("child of overdue parent must be overdue", "parent", parentTID)
		return &errors.InvalidParentError{
			ParentTID: parentTID,
			Reason:    "child of an overdue task must be overdue",
		}
	}

	parentRange := parent.Window()
	if task.Timeless() {
		task.SupposedStart = parent.SupposedStart
		task.SupposedEnd = parent.SupposedEnd
		task.Deadline = parent.Deadline
	}
	switch len(parentRange) {
	case 2:
		if !task.InsideOfRange(parentRange) {
			logger.Error("child window wider than parent", "parent", parentTID)
			return &errors.InvalidParentError{
				ParentTID: parentTID,
				Reason:    "child window must lie inside the parent window",
			}
		}
	case 1:
		if parent.SupposedStart == nil {
			if !task.IsBefore(parentRange, true) {
				logger.Error("child window wider than parent", "parent", parentTID)
				return &errors.InvalidParentError{
					ParentTID: parentTID,
					Reason:    "child window must end before the parent end",
				}
			}
		} else {
			if !task.IsAfter(parentRange, true) {
				logger.Error("child window wider than parent", "parent", parentTID)
				return &errors.InvalidParentError{
					ParentTID: parentTID,
					Reason:    "child window must start after the parent start",
				}
			}
		}
	}

	plan, err := store.Plans().GetPlanByTemplateTask(parentTID)
	if err != nil {
		return err
	}
	if plan != nil {
		logger.Error("parent is planned", "parent", parentTID)
		return &errors.InvalidParentError{ParentTID: parentTID, Reason: "parent cannot be planned"}
	}
	return nil
}

func validateProject(store storage.Store, task *models.Task) error {
	project, err := store.Projects().GetProject(task.PID)
	if err != nil {
		return err
	}
	if project == nil {
		logger.Error("project does not exist", "pid", task.PID)
		return &errors.InvalidProjectError{PID: task.PID}
	}
	return nil
}

func validateStatusTime(task *models.Task, force bool) error {
	if force || task.Timeless() {
		return nil
	}
	now := timeutil.ToMillis(timeutil.Now())
	if task.IsBefore(models.TimeRange{now}, false) && !task.OnlyStart() {
		if task.Status == models.StatusPending || task.Status == models.StatusActive {
			return &errors.InvalidStatusError{
				Status: task.Status,
				Reason: "a task in the past cannot be pending or active",
			}
		}
	} else if task.Status == models.StatusOverdue {
		return &errors.InvalidStatusError{
			Status: task.Status,
			Reason: "a task that is not in the past cannot be overdue",
		}
	}
	return nil
}

func validatePlanEdit(store storage.Store, task *models.Task) error {
	plan, err := store.Plans().GetPlanByEditedTask(task.TID)
	if err != nil {
		return err
	}
	if plan != nil {
		return errors.ErrPlanEditViaTask
	}
	return nil
}
