package controller

import (
	stderrors "errors"
	"fmt"

	trackerrors "github.com/avoronkov/tasktracker/internal/errors"
	"github.com/avoronkov/tasktracker/internal/logger"
	"github.com/avoronkov/tasktracker/internal/models"
)

// PlanController manages plans: attaching them to template tasks, the
// occurrence walk, per-occurrence overrides and renumbering.
type PlanController struct {
	*core
}

// AttachPlan creates a plan repeating the task every shift milliseconds,
// optionally until end. The task must have a time window and must not
// participate in a parent/child relation.
func (c *PlanController) AttachPlan(tid, shift int64, end *int64) (int64, error) {
	if err := c.requireAuth(); err != nil {
		return 0, err
	}
	if err := c.users().CheckTaskAvailable(c.uid(), tid, true); err != nil {
		return 0, err
	}
	if shift == 0 {
		return 0, fmt.Errorf("plan shift must be nonzero")
	}

	task, err := c.store.Tasks().GetTask(tid)
	if err != nil {
		return 0, err
	}
	if task == nil {
		return 0, trackerrors.ErrNotFound
	}
	if task.Timeless() {
		return 0, fmt.Errorf("task %d has no time window to repeat", tid)
	}
	if task.ParentTID != nil {
		return 0, fmt.Errorf("task %d has a parent and cannot be planned", tid)
	}
	children, err := c.store.Tasks().FindTasks(taskFilterByParent(tid))
	if err != nil {
		return 0, err
	}
	if len(children) != 0 {
		return 0, fmt.Errorf("task %d has subtasks and cannot be planned", tid)
	}

	plan := &models.Plan{TID: tid, Shift: shift}
	if end != nil {
		e := *end
		plan.End = &e
	}
	planID, err := c.store.Plans().SavePlan(plan)
	if err != nil {
		return 0, err
	}
	logger.Info("Plan attached", "plan", planID, "task", tid, "shift", shift)
	return planID, nil
}

// RepeatsByTimeRange walks the plan's occurrence grid and returns the
// numbers whose windows fall into rng. With strong set only occurrences
// fully inside rng qualify, otherwise any overlap does. With withExcluded
// set overridden numbers are reported too.
func (c *PlanController) RepeatsByTimeRange(planID int64, rng models.TimeRange, strong, withExcluded bool) ([]int, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	if err := c.users().CheckPlanAvailable(c.uid(), planID, false); err != nil {
		return nil, err
	}
	plan, err := c.store.Plans().GetPlan(planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, trackerrors.ErrNotFound
	}
	template, err := c.store.Tasks().GetTask(plan.TID)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, trackerrors.ErrNotFound
	}
	return walkRepeats(plan, template, rng, strong, withExcluded), nil
}

// walkRepeats is the occurrence walk. The template's own window is
// occurrence 0; each step shifts the window by plan.Shift. The walk stops
// once the window passes the queried range or the plan's end instant,
// which bounds it by the plan's own data.
func walkRepeats(plan *models.Plan, template *models.Task, rng models.TimeRange, strong, withExcluded bool) []int {
	numbers := []int{}
	if template.Timeless() {
		return numbers
	}
	walk := template.Clone()
	for number := 0; !walk.IsAfter(rng, false); number++ {
		if plan.End != nil && walk.IsAfter(models.TimeRange{*plan.End}, false) {
			break
		}

		excluded := !withExcluded && plan.Excluded(number)

		var overlaps bool
		if strong {
			overlaps = walk.OverlapsFully(rng)
		} else {
			overlaps = walk.Overlaps(rng)
		}
		if overlaps && !excluded {
			numbers = append(numbers, number)
		}

		walk.ShiftWindow(plan.Shift)
		if plan.Shift < 0 && walk.IsBefore(rng, false) {
			break
		}
	}
	return numbers
}

// IsAllowableRepeat reports whether occurrence number of the plan
// materializes: it must not start after the plan's end and must not be
// overridden. Agrees with the per-step logic of the walk.
func IsAllowableRepeat(number int, plan *models.Plan, task *models.Task) bool {
	shifted := task.Clone()
	shifted.ShiftWindow(int64(number) * plan.Shift)

	beforeEnd := plan.End == nil || !shifted.IsAfter(models.TimeRange{*plan.End}, false)
	return beforeEnd && !plan.Excluded(number)
}

// EditRepeat replaces occurrence number with an edited task carrying the
// patched status, priority or notification flags. The occurrence window
// itself stays derived from the template. A previous override for the
// number is replaced, and a previously edited backing task is removed.
func (c *PlanController) EditRepeat(planID int64, number int, patch RepeatPatch) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	if err := c.users().CheckPlanAvailable(c.uid(), planID, true); err != nil {
		return err
	}
	return c.atomic(func(cc *core) error {
		return editRepeat(cc, planID, number, patch)
	})
}

func editRepeat(cc *core, planID int64, number int, patch RepeatPatch) error {
	plan, err := cc.store.Plans().GetPlan(planID)
	if err != nil {
		return err
	}
	if plan == nil {
		return trackerrors.ErrNotFound
	}

	tasks, err := cc.tasks().planTasksByNumbers(plan, []int{number})
	if err != nil {
		return err
	}
	if len(tasks) != 1 {
		return fmt.Errorf("plan %d has no repeat %d", planID, number)
	}
	task := tasks[0]

	task.Status = patch.Status.Value(task.Status)
	task.Priority = patch.Priority.Value(task.Priority)
	task.NotifyStart = patch.NotifyStart.Value(task.NotifyStart)
	task.NotifyEnd = patch.NotifyEnd.Value(task.NotifyEnd)
	task.NotifyDeadline = patch.NotifyDeadline.Value(task.NotifyDeadline)

	prevTID, err := editedTaskID(cc, planID, number)
	if err != nil {
		return err
	}
	if prevTID != nil {
		if err := cc.store.Tasks().DeleteTask(*prevTID); err != nil {
			return err
		}
	}

	task.TID = 0
	tid, err := cc.store.Tasks().SaveTask(&task)
	if err != nil {
		return err
	}

	// An existing DELETED override is replaced: editing implies restore.
	if err := cc.store.Plans().DeleteOverride(planID, number); err != nil {
		return err
	}
	if err := cc.store.Plans().SaveOverride(planID, models.Override{
		Number: number,
		Kind:   models.ExcludeEdited,
		TaskID: &tid,
	}); err != nil {
		return err
	}
	logger.Info("Repeat edited", "plan", planID, "number", number, "task", tid)
	return nil
}

// DeleteRepeat suppresses occurrence number. If the occurrence was edited
// the backing task is removed as well. Deleting an already deleted repeat
// is a no-op.
func (c *PlanController) DeleteRepeat(planID int64, number int) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	if err := c.users().CheckPlanAvailable(c.uid(), planID, true); err != nil {
		return err
	}
	return c.atomic(func(cc *core) error {
		return deleteRepeat(cc, planID, number)
	})
}

func deleteRepeat(cc *core, planID int64, number int) error {
	kind, tid, err := overrideFor(cc, planID, number)
	if err != nil {
		return err
	}
	if kind != nil && *kind == models.ExcludeDeleted {
		return nil
	}
	if kind != nil {
		if err := cc.store.Plans().DeleteOverride(planID, number); err != nil {
			return err
		}
		if tid != nil {
			if err := cc.store.Tasks().DeleteTask(*tid); err != nil {
				return err
			}
		}
	}
	if err := cc.store.Plans().SaveOverride(planID, models.Override{
		Number: number,
		Kind:   models.ExcludeDeleted,
	}); err != nil {
		return err
	}
	logger.Info("Repeat deleted", "plan", planID, "number", number)
	return nil
}

// DeleteRepeatsByTimeRange deletes every occurrence in rng, overridden
// ones included.
func (c *PlanController) DeleteRepeatsByTimeRange(planID int64, rng models.TimeRange) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	if err := c.users().CheckPlanAvailable(c.uid(), planID, true); err != nil {
		return err
	}
	return c.atomic(func(cc *core) error {
		numbers, err := repeatsInTx(cc, planID, rng, false, true)
		if err != nil {
			return err
		}
		for _, number := range numbers {
			if err := deleteRepeat(cc, planID, number); err != nil {
				return err
			}
		}
		return nil
	})
}

// RestoreRepeat drops the override for occurrence number so the template
// materializes again. The backing task of an edited occurrence is removed.
func (c *PlanController) RestoreRepeat(planID int64, number int) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	if err := c.users().CheckPlanAvailable(c.uid(), planID, true); err != nil {
		return err
	}
	return c.atomic(func(cc *core) error {
		return restoreRepeat(cc, planID, number)
	})
}

func restoreRepeat(cc *core, planID int64, number int) error {
	_, tid, err := overrideFor(cc, planID, number)
	if err != nil {
		return err
	}
	if err := cc.store.Plans().DeleteOverride(planID, number); err != nil {
		return err
	}
	if tid != nil {
		if err := cc.store.Tasks().DeleteTask(*tid); err != nil {
			return err
		}
	}
	logger.Info("Repeat restored", "plan", planID, "number", number)
	return nil
}

// RestoreAllRepeats drops every override of the plan.
func (c *PlanController) RestoreAllRepeats(planID int64) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	if err := c.users().CheckPlanAvailable(c.uid(), planID, true); err != nil {
		return err
	}
	return c.atomic(func(cc *core) error {
		return restoreAllRepeats(cc, planID)
	})
}

func restoreAllRepeats(cc *core, planID int64) error {
	overrides, err := cc.store.Plans().ListOverrides(planID)
	if err != nil {
		return err
	}
	for _, o := range overrides {
		if err := restoreRepeat(cc, planID, o.Number); err != nil {
			return err
		}
	}
	return nil
}

// RestoreRepeatsByTimeRange restores every overridden occurrence in rng.
func (c *PlanController) RestoreRepeatsByTimeRange(planID int64, rng models.TimeRange) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	if err := c.users().CheckPlanAvailable(c.uid(), planID, true); err != nil {
		return err
	}
	return c.atomic(func(cc *core) error {
		numbers, err := repeatsInTx(cc, planID, rng, false, true)
		if err != nil {
			return err
		}
		for _, number := range numbers {
			if err := restoreRepeat(cc, planID, number); err != nil {
				return err
			}
		}
		return nil
	})
}

// EditPlan changes the plan's shift and end. A shift change renumbers
// every override onto the new occurrence grid: override n becomes
// n*oldShift/newShift when that division is exact, otherwise the override
// no longer lands on an occurrence boundary and is discarded together
// with its backing task.
func (c *PlanController) EditPlan(planID int64, patch PlanPatch) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	if err := c.users().CheckPlanAvailable(c.uid(), planID, true); err != nil {
		return err
	}
	return c.atomic(func(cc *core) error {
		plan, err := cc.store.Plans().GetPlan(planID)
		if err != nil {
			return err
		}
		if plan == nil {
			return trackerrors.ErrNotFound
		}

		oldShift := plan.Shift
		plan.Shift = patch.Shift.Value(plan.Shift)
		if plan.Shift == 0 {
			return fmt.Errorf("plan shift must be nonzero")
		}
		plan.End = patch.End.Ptr(plan.End)
		if err := cc.store.Plans().UpdatePlan(plan); err != nil {
			return err
		}

		if !patch.Shift.IsSet() || plan.Shift == oldShift {
			return nil
		}

		renumber := func(n int) (int, bool) {
			scaled := int64(n) * oldShift
			if scaled%plan.Shift != 0 {
				return 0, false
			}
			return int(scaled / plan.Shift), true
		}
		return renumberOverrides(cc, planID, renumber)
	})
}

// ShiftStart moves the plan's occurrence grid by delta milliseconds, as
// happens when the template's window is shifted. When delta is a whole
// number of shifts the overrides slide along the grid; numbers that fall
// off the front are discarded. Otherwise the grid no longer aligns and
// every override is dropped.
func (c *PlanController) ShiftStart(planID int64, delta int64) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	if err := c.users().CheckPlanAvailable(c.uid(), planID, true); err != nil {
		return err
	}
	return c.atomic(func(cc *core) error {
		plan, err := cc.store.Plans().GetPlan(planID)
		if err != nil {
			return err
		}
		if plan == nil {
			return trackerrors.ErrNotFound
		}
		if delta%plan.Shift != 0 {
			logger.Warn("Start shift off the occurrence grid, dropping all overrides",
				"plan", planID, "delta", delta, "shift", plan.Shift)
			return restoreAllRepeats(cc, planID)
		}
		steps := int(delta / plan.Shift)
		renumber := func(n int) (int, bool) {
			moved := n - steps
			return moved, moved >= 0
		}
		return renumberOverrides(cc, planID, renumber)
	})
}

// renumberOverrides rewrites every override number through fn. Overrides
// fn rejects are discarded along with their backing edited tasks. Rows
// are removed first and re-added after so renumbering cannot collide
// with a not yet rewritten row.
func renumberOverrides(cc *core, planID int64, fn func(int) (int, bool)) error {
	overrides, err := cc.store.Plans().ListOverrides(planID)
	if err != nil {
		return err
	}
	kept := make([]models.Override, 0, len(overrides))
	for _, o := range overrides {
		if err := cc.store.Plans().DeleteOverride(planID, o.Number); err != nil {
			return err
		}
		moved, ok := fn(o.Number)
		if !ok {
			logger.Warn("Override off the new occurrence grid, discarding",
				"plan", planID, "number", o.Number)
			if o.TaskID != nil {
				if err := cc.store.Tasks().DeleteTask(*o.TaskID); err != nil {
					return err
				}
			}
			continue
		}
		o.Number = moved
		kept = append(kept, o)
	}
	for _, o := range kept {
		if err := cc.store.Plans().SaveOverride(planID, o); err != nil {
			return err
		}
	}
	return nil
}

// DeletePlan removes the plan, its overrides and the tasks backing its
// edited occurrences. The template task itself survives.
func (c *PlanController) DeletePlan(planID int64) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	if err := c.users().CheckPlanAvailable(c.uid(), planID, true); err != nil {
		return err
	}
	return c.atomic(func(cc *core) error {
		overrides, err := cc.store.Plans().ListOverrides(planID)
		if err != nil {
			return err
		}
		for _, o := range overrides {
			if o.TaskID == nil {
				continue
			}
			if err := cc.store.Tasks().DeleteTask(*o.TaskID); err != nil {
				return err
			}
		}
		if err := cc.store.Plans().DeletePlan(planID); err != nil {
			return err
		}
		logger.Info("Plan deleted", "plan", planID)
		return nil
	})
}

// PlanForTemplateTask resolves the plan whose template is tid, or nil.
func (c *PlanController) PlanForTemplateTask(tid int64) (*models.Plan, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	if err := c.users().CheckTaskAvailable(c.uid(), tid, false); err != nil {
		return nil, err
	}
	return c.store.Plans().GetPlanByTemplateTask(tid)
}

// PlanForEditedTask resolves the plan owning the edited occurrence backed
// by tid, or nil.
func (c *PlanController) PlanForEditedTask(tid int64) (*models.Plan, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	if err := c.users().CheckTaskAvailable(c.uid(), tid, false); err != nil {
		return nil, err
	}
	return c.store.Plans().GetPlanByEditedTask(tid)
}

// PlanByID fetches one plan, or nil when absent.
func (c *PlanController) PlanByID(planID int64) (*models.Plan, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	if err := c.users().CheckPlanAvailable(c.uid(), planID, false); err != nil {
		return nil, err
	}
	return c.store.Plans().GetPlan(planID)
}

// PlansByTimeRange returns every plan visible to the user that has at
// least one occurrence in rng.
func (c *PlanController) PlansByTimeRange(rng models.TimeRange) ([]models.Plan, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	plans, err := c.store.Plans().ListPlans()
	if err != nil {
		return nil, err
	}
	var out []models.Plan
	for _, plan := range plans {
		numbers, err := c.RepeatsByTimeRange(plan.ID, rng, false, false)
		if err != nil {
			if stderrors.Is(err, trackerrors.ErrPermissionDenied) {
				continue
			}
			return nil, err
		}
		if len(numbers) != 0 {
			out = append(out, plan)
		}
	}
	return out, nil
}

// RepeatNumberForTask finds the occurrence number whose window matches
// the task's window exactly, or nil when the task lies off the grid.
func (c *PlanController) RepeatNumberForTask(planID int64, task *models.Task) (*int, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	if err := c.users().CheckPlanAvailable(c.uid(), planID, false); err != nil {
		return nil, err
	}

	start := task.SupposedStart
	if start == nil {
		start = task.SupposedEnd
	}
	if start == nil {
		start = task.Deadline
	}
	end := task.Deadline
	if end == nil {
		end = task.SupposedEnd
	}
	if end == nil {
		end = task.SupposedStart
	}
	if start == nil || end == nil {
		return nil, nil
	}

	numbers, err := c.RepeatsByTimeRange(planID, models.TimeRange{*start, *end}, true, true)
	if err != nil {
		return nil, err
	}
	if len(numbers) == 0 {
		return nil, nil
	}
	return &numbers[0], nil
}

// TimeForRepeat computes the window occurrence number would carry.
func (c *PlanController) TimeForRepeat(planID int64, number int) (models.TimeRange, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	if err := c.users().CheckPlanAvailable(c.uid(), planID, false); err != nil {
		return nil, err
	}
	plan, err := c.store.Plans().GetPlan(planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, trackerrors.ErrNotFound
	}
	template, err := c.store.Tasks().GetTask(plan.TID)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, trackerrors.ErrNotFound
	}
	shifted := template.Clone()
	shifted.ShiftWindow(int64(number) * plan.Shift)
	return shifted.Window(), nil
}

// ExcludeKindOf reports whether occurrence number is edited or deleted,
// or nil when it carries no override.
func (c *PlanController) ExcludeKindOf(planID int64, number int) (*models.ExcludeKind, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	if err := c.users().CheckPlanAvailable(c.uid(), planID, false); err != nil {
		return nil, err
	}
	kind, _, err := overrideFor(c.core, planID, number)
	return kind, err
}

// EditedTaskID resolves the stored task backing an edited occurrence, or
// nil when the occurrence is not edited.
func (c *PlanController) EditedTaskID(planID int64, number int) (*int64, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	if err := c.users().CheckPlanAvailable(c.uid(), planID, false); err != nil {
		return nil, err
	}
	return editedTaskID(c.core, planID, number)
}

// TaskPlanned reports whether tid participates in any plan, as template
// or as the backing task of an edited occurrence.
func (c *PlanController) TaskPlanned(tid int64) (bool, error) {
	if err := c.requireAuth(); err != nil {
		return false, err
	}
	plan, err := c.store.Plans().GetPlanByTemplateTask(tid)
	if err != nil {
		return false, err
	}
	if plan != nil {
		return true, nil
	}
	plan, err = c.store.Plans().GetPlanByEditedTask(tid)
	if err != nil {
		return false, err
	}
	return plan != nil, nil
}

// repeatsInTx runs the occurrence walk against a transactional core.
func repeatsInTx(cc *core, planID int64, rng models.TimeRange, strong, withExcluded bool) ([]int, error) {
	plan, err := cc.store.Plans().GetPlan(planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, trackerrors.ErrNotFound
	}
	template, err := cc.store.Tasks().GetTask(plan.TID)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, trackerrors.ErrNotFound
	}
	return walkRepeats(plan, template, rng, strong, withExcluded), nil
}

func overrideFor(cc *core, planID int64, number int) (*models.ExcludeKind, *int64, error) {
	overrides, err := cc.store.Plans().ListOverrides(planID)
	if err != nil {
		return nil, nil, err
	}
	for _, o := range overrides {
		if o.Number == number {
			kind := o.Kind
			return &kind, o.TaskID, nil
		}
	}
	return nil, nil, nil
}

func editedTaskID(cc *core, planID int64, number int) (*int64, error) {
	kind, tid, err := overrideFor(cc, planID, number)
	if err != nil {
		return nil, err
	}
	if kind == nil || *kind != models.ExcludeEdited {
		return nil, nil
	}
	return tid, nil
}
