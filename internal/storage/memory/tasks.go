package memory

import (
	"fmt"
	"sort"

	"github.com/avoronkov/tasktracker/internal/models"
	"github.com/avoronkov/tasktracker/internal/storage"
)

func (s *Store) SaveTask(task *models.Task) (int64, error) {
	t := task.Clone()
	if t.TID == 0 {
		t.TID = s.nextTID
	}
	if t.TID >= s.nextTID {
		s.nextTID = t.TID + 1
	}
	if _, ok := s.tasks[t.TID]; ok {
		return 0, fmt.Errorf("task %d already exists", t.TID)
	}
	s.tasks[t.TID] = t
	return t.TID, nil
}

func (s *Store) GetTask(tid int64) (*models.Task, error) {
	t, ok := s.tasks[tid]
	if !ok {
		return nil, nil
	}
	return t.Clone(), nil
}

func (s *Store) FindTasks(f storage.TaskFilter) ([]models.Task, error) {
	ids := make([]int64, 0, len(s.tasks))
	for id := range s.tasks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []models.Task
	for _, id := range ids {
		t := s.tasks[id]
		if matchTask(t, f) {
			out = append(out, *t.Clone())
		}
	}
	return out, nil
}

func (s *Store) UpdateTask(task *models.Task) error {
	if _, ok := s.tasks[task.TID]; !ok {
		return fmt.Errorf("task %d does not exist", task.TID)
	}
	s.tasks[task.TID] = task.Clone()
	return nil
}

func (s *Store) DeleteTask(tid int64) error {
	if _, ok := s.tasks[tid]; !ok {
		return fmt.Errorf("task %d does not exist", tid)
	}
	// Worklist delete over the child tree.
	pending := []int64{tid}
	for len(pending) > 0 {
		id := pending[0]
		pending = pending[1:]
		delete(s.tasks, id)
		for childID, child := range s.tasks {
			if child.ParentTID != nil && *child.ParentTID == id {
				pending = append(pending, childID)
			}
		}
	}
	return nil
}

func matchTask(t *models.Task, f storage.TaskFilter) bool {
	if f.TID != nil && t.TID != *f.TID {
		return false
	}
	if f.PID != nil && t.PID != *f.PID {
		return false
	}
	if f.UID != nil && t.UID != *f.UID {
		return false
	}
	if f.ParentTID != nil && (t.ParentTID == nil || *t.ParentTID != *f.ParentTID) {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.NotifyStart != nil && t.NotifyStart != *f.NotifyStart {
		return false
	}
	if f.NotifyEnd != nil && t.NotifyEnd != *f.NotifyEnd {
		return false
	}
	if f.NotifyDeadline != nil && t.NotifyDeadline != *f.NotifyDeadline {
		return false
	}
	if f.AnyNotify && !(t.NotifyStart || t.NotifyEnd || t.NotifyDeadline) {
		return false
	}
	if f.NotCompleted && t.Status == models.StatusCompleted {
		return false
	}
	if f.ToTime != nil && !anyFieldBefore(t, *f.ToTime) {
		return false
	}
	if f.OverdueBy != nil && !overdueBy(t, *f.OverdueBy) {
		return false
	}
	if len(f.Range) > 0 && !inRange(t, f.Range.Pair()) {
		return false
	}
	if f.Timeless && !t.Timeless() {
		return false
	}
	return true
}

func anyFieldBefore(t *models.Task, instant int64) bool {
	for _, f := range []*int64{t.SupposedStart, t.SupposedEnd, t.Deadline} {
		if f != nil && *f < instant {
			return true
		}
	}
	return false
}

func overdueBy(t *models.Task, instant int64) bool {
	startBefore := t.SupposedStart != nil && *t.SupposedStart < instant
	endBefore := t.SupposedEnd != nil && *t.SupposedEnd < instant
	deadlineBefore := t.Deadline != nil && *t.Deadline < instant
	onlyEnd := t.SupposedStart == nil
	return (onlyEnd && (endBefore || deadlineBefore)) ||
		(startBefore && (endBefore || deadlineBefore))
}

func inRange(t *models.Task, r models.TimeRange) bool {
	startBeforeEnd := t.SupposedStart != nil && *t.SupposedStart <= r.End()
	endAfterStart := t.SupposedEnd != nil && *t.SupposedEnd >= r.Start()
	deadlineAfterStart := t.Deadline != nil && *t.Deadline >= r.Start()
	onlyStart := t.SupposedEnd == nil && t.Deadline == nil
	onlyEnd := t.SupposedStart == nil
	return (onlyStart && startBeforeEnd) ||
		(onlyEnd && (endAfterStart || deadlineAfterStart)) ||
		(startBeforeEnd && (endAfterStart || deadlineAfterStart))
}
