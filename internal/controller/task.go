package controller

import (
	"strings"

	trackerrors "github.com/avoronkov/tasktracker/internal/errors"
	"github.com/avoronkov/tasktracker/internal/logger"
	"github.com/avoronkov/tasktracker/internal/models"
	"github.com/avoronkov/tasktracker/internal/storage"
	"github.com/avoronkov/tasktracker/internal/validation"
)

// TaskController manages tasks: creation, edits with parent/child
// propagation, queries that splice in virtual plan occurrences, and the
// overdue sweep.
type TaskController struct {
	*core
}

// TaskQuery selects tasks for FetchTasks. Nil fields do not constrain.
// Title and Description match by substring. When PID is set the query
// spans the whole project, otherwise it covers the session user's tasks.
type TaskQuery struct {
	TID       *int64
	PID       *int64
	ParentTID *int64

	Title       *string
	Description *string

	Priority *models.Priority
	Status   *models.Status

	NotifyStart    *bool
	NotifyEnd      *bool
	NotifyDeadline *bool

	// Range selects tasks overlapping the range and splices in the plan
	// occurrences falling into it. A single-element range means one
	// instant.
	Range    models.TimeRange
	Timeless bool
}

// SaveTask validates and stores a new task owned by the session user.
// Missing fields fall back to defaults: the user's default project,
// pending status, normal priority.
func (c *TaskController) SaveTask(n NewTask) (int64, error) {
	if err := c.requireAuth(); err != nil {
		return 0, err
	}

	pid, err := c.resolvePID(n.PID)
	if err != nil {
		return 0, err
	}
	if err := c.users().CheckProjectAvailable(c.uid(), pid, true); err != nil {
		return 0, err
	}

	task := &models.Task{
		UID:         c.uid(),
		PID:         pid,
		ParentTID:   cloneOpt(n.ParentTID),
		Title:       n.Title,
		Description: n.Description,

		SupposedStart: cloneOpt(n.SupposedStart),
		SupposedEnd:   cloneOpt(n.SupposedEnd),
		Deadline:      cloneOpt(n.Deadline),

		Priority: models.PriorityNormal,
		Status:   models.StatusPending,

		NotifyStart:    n.NotifyStart,
		NotifyEnd:      n.NotifyEnd,
		NotifyDeadline: n.NotifyDeadline,
	}
	if n.TID != nil {
		task.TID = *n.TID
	}
	if n.Priority != nil {
		task.Priority = *n.Priority
	}
	if n.Status != nil {
		task.Status = *n.Status
	}

	if err := validation.ValidateTask(c.store, task, validation.Options{}); err != nil {
		return 0, err
	}
	tid, err := c.store.Tasks().SaveTask(task)
	if err != nil {
		return 0, err
	}
	logger.Info("Task saved", "task", tid, "title", task.Title)
	return tid, nil
}

// EditTask applies the patch to the task. Editing the window of a plan
// template moves the plan's occurrence grid, which renumbers or drops its
// overrides; editing the status of a template is rejected since status
// lives on the occurrences. Status and priority changes propagate to all
// descendants.
func (c *TaskController) EditTask(tid int64, patch TaskPatch, force bool) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	if err := c.users().CheckTaskAvailable(c.uid(), tid, true); err != nil {
		return err
	}
	return c.atomic(func(cc *core) error {
		return editTask(cc, tid, patch, force)
	})
}

func editTask(cc *core, tid int64, patch TaskPatch, force bool) error {
	task, err := cc.store.Tasks().GetTask(tid)
	if err != nil {
		return err
	}
	if task == nil {
		return trackerrors.ErrNotFound
	}

	plan, err := cc.store.Plans().GetPlanByTemplateTask(tid)
	if err != nil {
		return err
	}
	if plan != nil && patch.Status.IsSet() {
		return trackerrors.ErrPlanEditViaTask
	}

	oldLeft := cloneOpt(task.LeftBorder())

	if patch.PID.IsSet() {
		pid, err := cc.tasks().resolvePID(patch.PID.Ptr(nil))
		if err != nil {
			return err
		}
		task.PID = pid
	}
	task.ParentTID = patch.ParentTID.Ptr(task.ParentTID)
	task.Title = patch.Title.Value(task.Title)
	task.Description = patch.Description.Value(task.Description)
	task.SupposedStart = patch.SupposedStart.Ptr(task.SupposedStart)
	task.SupposedEnd = patch.SupposedEnd.Ptr(task.SupposedEnd)
	task.Deadline = patch.Deadline.Ptr(task.Deadline)
	task.Priority = patch.Priority.Value(task.Priority)
	task.Status = patch.Status.Value(task.Status)
	task.NotifyStart = patch.NotifyStart.Value(task.NotifyStart)
	task.NotifyEnd = patch.NotifyEnd.Value(task.NotifyEnd)
	task.NotifyDeadline = patch.NotifyDeadline.Value(task.NotifyDeadline)

	if err := validation.ValidateTask(cc.store, task, validation.Options{ForEdit: true, Force: force}); err != nil {
		return err
	}
	if err := cc.store.Tasks().UpdateTask(task); err != nil {
		return err
	}

	if plan != nil && patch.touchesWindow() {
		if err := moveOccurrenceGrid(cc, plan, oldLeft, task.LeftBorder()); err != nil {
			return err
		}
	}

	if patch.Status.IsSet() || patch.Priority.IsSet() {
		if err := propagateToChildren(cc, tid, patch); err != nil {
			return err
		}
	}
	logger.Info("Task edited", "task", tid)
	return nil
}

// moveOccurrenceGrid reconciles a plan's overrides after its template
// window moved. A move by a whole number of shifts slides the override
// numbers along the grid; any other move, or a move to or from a
// one-sided window, drops every override.
func moveOccurrenceGrid(cc *core, plan *models.Plan, oldLeft, newLeft *int64) error {
	if oldLeft == nil || newLeft == nil {
		return restoreAllRepeats(cc, plan.ID)
	}
	delta := *newLeft - *oldLeft
	if delta == 0 {
		return nil
	}
	if delta%plan.Shift != 0 {
		logger.Warn("Template window moved off the occurrence grid, dropping all overrides",
			"plan", plan.ID, "delta", delta)
		return restoreAllRepeats(cc, plan.ID)
	}
	steps := int(delta / plan.Shift)
	return renumberOverrides(cc, plan.ID, func(n int) (int, bool) {
		moved := n - steps
		return moved, moved >= 0
	})
}

// propagateToChildren pushes a status or priority change down the subtree
// breadth-first, in task id order.
func propagateToChildren(cc *core, tid int64, patch TaskPatch) error {
	queue := []int64{tid}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]

		children, err := cc.store.Tasks().FindTasks(taskFilterByParent(parent))
		if err != nil {
			return err
		}
		for i := range children {
			child := &children[i]
			child.Status = patch.Status.Value(child.Status)
			child.Priority = patch.Priority.Value(child.Priority)
			if err := cc.store.Tasks().UpdateTask(child); err != nil {
				return err
			}
			queue = append(queue, child.TID)
		}
	}
	return nil
}

// RemoveTask deletes the task and its descendants. Deleting a plan
// template removes the whole plan; deleting the backing task of an edited
// occurrence drops that override.
func (c *TaskController) RemoveTask(tid int64) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	if err := c.users().CheckTaskAvailable(c.uid(), tid, true); err != nil {
		return err
	}
	return c.atomic(func(cc *core) error {
		return removeTask(cc, tid)
	})
}

// removeTask is the transactional body of RemoveTask.
func removeTask(cc *core, tid int64) error {
	editPlan, err := cc.store.Plans().GetPlanByEditedTask(tid)
	if err != nil {
		return err
	}
	if editPlan != nil {
		overrides, err := cc.store.Plans().ListOverrides(editPlan.ID)
		if err != nil {
			return err
		}
		for _, o := range overrides {
			if o.TaskID != nil && *o.TaskID == tid {
				if err := cc.store.Plans().DeleteOverride(editPlan.ID, o.Number); err != nil {
					return err
				}
				break
			}
		}
	}

	plan, err := cc.store.Plans().GetPlanByTemplateTask(tid)
	if err != nil {
		return err
	}
	if plan != nil {
		overrides, err := cc.store.Plans().ListOverrides(plan.ID)
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
		if err := cc.store.Plans().DeletePlan(plan.ID); err != nil {
			return err
		}
	}

	if err := cc.store.Tasks().DeleteTask(tid); err != nil {
		return err
	}
	logger.Info("Task removed", "task", tid)
	return nil
}

// FetchTasks queries stored tasks and folds in plan occurrences. Without
// a range, each plan template collapses to its most valuable occurrence.
// With a range, templates are replaced by the materialized occurrences
// falling into it.
func (c *TaskController) FetchTasks(q TaskQuery) ([]models.Task, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}

	f := storage.TaskFilter{
		TID:            q.TID,
		ParentTID:      q.ParentTID,
		Priority:       q.Priority,
		Status:         q.Status,
		NotifyStart:    q.NotifyStart,
		NotifyEnd:      q.NotifyEnd,
		NotifyDeadline: q.NotifyDeadline,
		Timeless:       q.Timeless,
	}
	if q.PID != nil {
		if err := c.users().CheckProjectAvailable(c.uid(), *q.PID, false); err != nil {
			return nil, err
		}
		f.PID = q.PID
	} else {
		uid := c.uid()
		f.UID = &uid
	}
	if len(q.Range) == 1 {
		f.Range = models.TimeRange{q.Range[0], q.Range[0]}
	} else {
		f.Range = q.Range
	}

	tasks, err := c.store.Tasks().FindTasks(f)
	if err != nil {
		return nil, err
	}

	result := make([]models.Task, 0, len(tasks))
	for i := range tasks {
		task := tasks[i]
		plan, err := c.store.Plans().GetPlanByTemplateTask(task.TID)
		if err != nil {
			return nil, err
		}
		if plan == nil {
			result = append(result, task)
			continue
		}
		// A template never surfaces as itself.
		if len(q.Range) == 0 {
			mvt, err := c.MostValuableTask(plan.ID)
			if err != nil {
				return nil, err
			}
			if mvt != nil {
				result = append(result, *mvt)
			}
		}
	}

	if len(q.Range) != 0 {
		plans, err := c.plans().PlansByTimeRange(f.Range)
		if err != nil {
			return nil, err
		}
		seen := map[int64]bool{}
		for _, plan := range plans {
			if seen[plan.TID] {
				continue
			}
			seen[plan.TID] = true
			occurrences, err := c.PlanTasksByTimeRange(plan.ID, f.Range)
			if err != nil {
				return nil, err
			}
			result = append(result, occurrences...)
		}
	}

	if q.Title != nil {
		result = filterTasks(result, func(t *models.Task) bool {
			return strings.Contains(t.Title, *q.Title)
		})
	}
	if q.Description != nil {
		result = filterTasks(result, func(t *models.Task) bool {
			return strings.Contains(t.Description, *q.Description)
		})
	}
	return result, nil
}

// MostValuableTask returns the first occurrence of the plan that is not
// overdue, or nil when the template itself sits overdue.
func (c *TaskController) MostValuableTask(planID int64) (*models.Task, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	plan, err := c.store.Plans().GetPlan(planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, trackerrors.ErrNotFound
	}
	for number := 0; ; number++ {
		tasks, err := c.planTasksByNumbers(plan, []int{number})
		if err != nil {
			return nil, err
		}
		if len(tasks) == 0 {
			// Deleted occurrences materialize to nothing but do not end
			// the plan.
			if plan.Excluded(number) {
				continue
			}
			return nil, nil
		}
		if tasks[0].Status != models.StatusOverdue {
			return &tasks[0], nil
		}
		// Non-overridden occurrences carry the template's status, so an
		// overdue one here means every later occurrence is overdue too.
		if !plan.Excluded(number) {
			return nil, nil
		}
	}
}

// PlanTasksByTimeRange materializes the plan's occurrences in rng.
func (c *TaskController) PlanTasksByTimeRange(planID int64, rng models.TimeRange) ([]models.Task, error) {
	numbers, err := c.plans().RepeatsByTimeRange(planID, rng, false, false)
	if err != nil {
		return nil, err
	}
	return c.PlanTasksByNumbers(planID, numbers)
}

// PlanTasksByNumbers materializes the given occurrences of the plan:
// edited occurrences come back as their stored tasks, ordinary ones as
// template clones with shifted windows. Deleted or out-of-plan numbers
// yield nothing.
func (c *TaskController) PlanTasksByNumbers(planID int64, numbers []int) ([]models.Task, error) {
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
		return []models.Task{}, nil
	}
	return c.planTasksByNumbers(plan, numbers)
}

func (c *TaskController) planTasksByNumbers(plan *models.Plan, numbers []int) ([]models.Task, error) {
	template, err := c.store.Tasks().GetTask(plan.TID)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return []models.Task{}, nil
	}

	result := []models.Task{}
	remaining := append([]int(nil), numbers...)
	for _, excluded := range plan.Exclude {
		idx := indexOf(remaining, excluded)
		if idx < 0 {
			continue
		}
		remaining = append(remaining[:idx], remaining[idx+1:]...)
		tid, err := editedTaskID(c.core, plan.ID, excluded)
		if err != nil {
			return nil, err
		}
		if tid == nil {
			continue
		}
		edited, err := c.store.Tasks().GetTask(*tid)
		if err != nil {
			return nil, err
		}
		if edited != nil {
			result = append(result, *edited)
		}
	}

	for _, number := range remaining {
		if !IsAllowableRepeat(number, plan, template) {
			continue
		}
		occurrence := template.Clone()
		occurrence.ShiftWindow(int64(number) * plan.Shift)
		result = append(result, *occurrence)
	}
	return result, nil
}

// TasksWithNotificationsToTime returns the session user's uncompleted
// tasks that have a notification flag set and any window field before t.
func (c *TaskController) TasksWithNotificationsToTime(t int64) ([]models.Task, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	uid := c.uid()
	return c.store.Tasks().FindTasks(storage.TaskFilter{
		UID:          &uid,
		AnyNotify:    true,
		ToTime:       &t,
		NotCompleted: true,
	})
}

// OverdueTasks returns the session user's tasks already marked overdue
// before t.
func (c *TaskController) OverdueTasks(t int64) ([]models.Task, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	uid := c.uid()
	overdue := models.StatusOverdue
	return c.store.Tasks().FindTasks(storage.TaskFilter{
		UID:    &uid,
		ToTime: &t,
		Status: &overdue,
	})
}

// FindOverdueTasks sweeps the session user's tasks whose windows passed t
// and marks them overdue. Plan templates are never marked directly: their
// passed occurrences are materialized as overdue edited tasks instead.
func (c *TaskController) FindOverdueTasks(t int64) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	logger.Debug("Overdue sweep started", "to", t)

	uid := c.uid()
	tasks, err := c.store.Tasks().FindTasks(storage.TaskFilter{
		UID:       &uid,
		OverdueBy: &t,
	})
	if err != nil {
		return err
	}

	overduePatch := RepeatPatch{Status: Set(models.StatusOverdue)}
	for i := range tasks {
		task := &tasks[i]
		if task.Status == models.StatusOverdue || task.Status == models.StatusCompleted {
			continue
		}

		plan, err := c.store.Plans().GetPlanByTemplateTask(task.TID)
		if err != nil {
			return err
		}
		if plan != nil {
			left := task.LeftBorder()
			if left == nil {
				continue
			}
			numbers, err := c.plans().RepeatsByTimeRange(plan.ID, models.TimeRange{*left, t}, false, false)
			if err != nil {
				return err
			}
			for _, number := range numbers {
				if err := c.plans().EditRepeat(plan.ID, number, overduePatch); err != nil {
					return err
				}
			}
			continue
		}

		editPlan, err := c.store.Plans().GetPlanByEditedTask(task.TID)
		if err != nil {
			return err
		}
		if editPlan != nil {
			number, err := c.plans().RepeatNumberForTask(editPlan.ID, task)
			if err != nil {
				return err
			}
			if number != nil {
				if err := c.plans().EditRepeat(editPlan.ID, *number, overduePatch); err != nil {
					return err
				}
			}
			continue
		}

		// The sweep instant decides overdueness, not the wall clock.
		err = c.EditTask(task.TID, TaskPatch{Status: Set(models.StatusOverdue)}, true)
		if err != nil {
			return err
		}
	}
	logger.Debug("Overdue sweep finished", "to", t)
	return nil
}

// resolvePID maps a nil project reference to the user's default project.
func (c *TaskController) resolvePID(pid *int64) (int64, error) {
	if pid != nil {
		return *pid, nil
	}
	project, err := c.projects().DefaultProjectForUser(c.uid())
	if err != nil {
		return 0, err
	}
	if project == nil {
		return 0, trackerrors.ErrNotFound
	}
	return project.PID, nil
}

func taskFilterByParent(tid int64) storage.TaskFilter {
	return storage.TaskFilter{ParentTID: &tid}
}

func filterTasks(tasks []models.Task, keep func(*models.Task) bool) []models.Task {
	out := tasks[:0]
	for i := range tasks {
		if keep(&tasks[i]) {
			out = append(out, tasks[i])
		}
	}
	return out
}

func indexOf(numbers []int, n int) int {
	for i, v := range numbers {
		if v == n {
			return i
		}
	}
	return -1
}

func cloneOpt(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
