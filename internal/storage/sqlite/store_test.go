package sqlite

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/avoronkov/tasktracker/internal/models"
	"github.com/avoronkov/tasktracker/internal/storage"
)

const dayMs = int64(24 * time.Hour / time.Millisecond)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(filepath.Join(t.TempDir(), "tracker.db"))
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func ptr(v int64) *int64 { return &v }

func seedTask(t *testing.T, s *Store, task *models.Task) int64 {
	t.Helper()
	tid, err := s.Tasks().SaveTask(task)
	if err != nil {
		t.Fatalf("SaveTask: %v", err)
	}
	return tid
}

func TestTaskRoundTrip(t *testing.T) {
	s := newTestStore(t)

	in := &models.Task{
		UID:            1,
		PID:            2,
		Title:          "water plants",
		Description:    "the ficus too",
		SupposedStart:  ptr(dayMs),
		SupposedEnd:    ptr(2 * dayMs),
		Deadline:       ptr(3 * dayMs),
		Priority:       models.PriorityHigh,
		Status:         models.StatusActive,
		NotifyDeadline: true,
	}
	tid := seedTask(t, s, in)

	got, err := s.Tasks().GetTask(tid)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.Title != in.Title || got.Description != in.Description ||
		*got.SupposedStart != dayMs || *got.SupposedEnd != 2*dayMs || *got.Deadline != 3*dayMs ||
		got.Priority != models.PriorityHigh || got.Status != models.StatusActive ||
		!got.NotifyDeadline || got.NotifyStart {
		t.Errorf("round trip mismatch: %+v", got)
	}

	got.Title = "water the plants"
	got.Deadline = nil
	if err := s.Tasks().UpdateTask(got); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	got, _ = s.Tasks().GetTask(tid)
	if got.Title != "water the plants" || got.Deadline != nil {
		t.Errorf("update mismatch: %+v", got)
	}

	if missing, err := s.Tasks().GetTask(9999); err != nil || missing != nil {
		t.Errorf("GetTask(absent) = %v, %v, want nil, nil", missing, err)
	}
	if err := s.Tasks().UpdateTask(&models.Task{TID: 9999}); err == nil {
		t.Error("updating an absent task should fail")
	}
}

func TestFindTasksFilters(t *testing.T) {
	s := newTestStore(t)

	past := seedTask(t, s, &models.Task{
		UID: 1, PID: 1, Title: "past",
		SupposedStart: ptr(0), SupposedEnd: ptr(dayMs),
	})
	current := seedTask(t, s, &models.Task{
		UID: 1, PID: 1, Title: "current",
		SupposedStart: ptr(2 * dayMs), SupposedEnd: ptr(6 * dayMs),
		NotifyEnd: true,
	})
	timeless := seedTask(t, s, &models.Task{
		UID: 1, PID: 1, Title: "timeless",
		Status: models.StatusCompleted,
	})
	seedTask(t, s, &models.Task{
		UID: 2, PID: 2, Title: "other user's",
		SupposedStart: ptr(0), SupposedEnd: ptr(dayMs),
	})

	uid := int64(1)
	overdueBy := 4 * dayMs
	tasks, err := s.Tasks().FindTasks(storage.TaskFilter{UID: &uid, OverdueBy: &overdueBy})
	if err != nil {
		t.Fatalf("FindTasks overdue: %v", err)
	}
	if len(tasks) != 1 || tasks[0].TID != past {
		t.Errorf("overdue = %v, want only the past task", tasks)
	}

	tasks, err = s.Tasks().FindTasks(storage.TaskFilter{UID: &uid, Range: models.TimeRange{3 * dayMs, 5 * dayMs}})
	if err != nil {
		t.Fatalf("FindTasks range: %v", err)
	}
	if len(tasks) != 1 || tasks[0].TID != current {
		t.Errorf("range = %v, want only the overlapping task", tasks)
	}

	tasks, err = s.Tasks().FindTasks(storage.TaskFilter{UID: &uid, AnyNotify: true, NotCompleted: true})
	if err != nil {
		t.Fatalf("FindTasks notify: %v", err)
	}
	if len(tasks) != 1 || tasks[0].TID != current {
		t.Errorf("notify = %v, want only the notifying task", tasks)
	}

	tasks, err = s.Tasks().FindTasks(storage.TaskFilter{UID: &uid, Timeless: true})
	if err != nil {
		t.Fatalf("FindTasks timeless: %v", err)
	}
	if len(tasks) != 1 || tasks[0].TID != timeless {
		t.Errorf("timeless = %v, want only the timeless task", tasks)
	}
}

func TestDeleteTaskCascades(t *testing.T) {
	s := newTestStore(t)

	parent := seedTask(t, s, &models.Task{UID: 1, PID: 1, Title: "parent"})
	child := seedTask(t, s, &models.Task{UID: 1, PID: 1, Title: "child", ParentTID: &parent})
	grandchild := seedTask(t, s, &models.Task{UID: 1, PID: 1, Title: "grandchild", ParentTID: &child})

	if err := s.Tasks().DeleteTask(parent); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	for _, tid := range []int64{parent, child, grandchild} {
		if got, _ := s.Tasks().GetTask(tid); got != nil {
			t.Errorf("task %d survived the cascade", tid)
		}
	}
}

func TestPlanAndOverrides(t *testing.T) {
	s := newTestStore(t)
	tid := seedTask(t, s, &models.Task{UID: 1, PID: 1, Title: "template", SupposedStart: ptr(0), SupposedEnd: ptr(dayMs)})

	planID, err := s.Plans().SavePlan(&models.Plan{
		TID:     tid,
		Shift:   2 * dayMs,
		End:     ptr(20 * dayMs),
		Exclude: []int{5, 3},
	})
	if err != nil {
		t.Fatalf("SavePlan: %v", err)
	}

	plan, err := s.Plans().GetPlan(planID)
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	if plan.TID != tid || plan.Shift != 2*dayMs || *plan.End != 20*dayMs {
		t.Errorf("plan mismatch: %+v", plan)
	}
	// Exclude comes back sorted regardless of insertion order.
	if len(plan.Exclude) != 2 || plan.Exclude[0] != 3 || plan.Exclude[1] != 5 {
		t.Errorf("exclude = %v, want [3 5]", plan.Exclude)
	}

	edited := seedTask(t, s, &models.Task{UID: 1, PID: 1, Title: "edited occurrence"})
	if err := s.Plans().SaveOverride(planID, models.Override{
		Number: 7, Kind: models.ExcludeEdited, TaskID: &edited,
	}); err != nil {
		t.Fatalf("SaveOverride: %v", err)
	}
	if err := s.Plans().SaveOverride(planID, models.Override{
		Number: 7, Kind: models.ExcludeDeleted,
	}); err == nil {
		t.Error("a second override for the same number should fail")
	}

	byEdited, err := s.Plans().GetPlanByEditedTask(edited)
	if err != nil || byEdited == nil || byEdited.ID != planID {
		t.Errorf("GetPlanByEditedTask = %v, %v", byEdited, err)
	}
	byTemplate, err := s.Plans().GetPlanByTemplateTask(tid)
	if err != nil || byTemplate == nil || byTemplate.ID != planID {
		t.Errorf("GetPlanByTemplateTask = %v, %v", byTemplate, err)
	}

	if err := s.Plans().DeleteOverride(planID, 99); err != nil {
		t.Errorf("deleting an absent override should be a no-op: %v", err)
	}
	if err := s.Plans().DeleteOverride(planID, 7); err != nil {
		t.Fatalf("DeleteOverride: %v", err)
	}
	overrides, err := s.Plans().ListOverrides(planID)
	if err != nil {
		t.Fatalf("ListOverrides: %v", err)
	}
	if len(overrides) != 2 || overrides[0].Number != 3 || overrides[1].Number != 5 {
		t.Errorf("overrides = %v, want the two deleted ones", overrides)
	}

	if err := s.Plans().DeletePlan(planID); err != nil {
		t.Fatalf("DeletePlan: %v", err)
	}
	if plan, _ := s.Plans().GetPlan(planID); plan != nil {
		t.Error("plan survived DeletePlan")
	}
}

func TestUsersAndProjects(t *testing.T) {
	s := newTestStore(t)

	alice, err := s.Users().SaveUser(&models.User{Login: "alice"})
	if err != nil {
		t.Fatalf("SaveUser: %v", err)
	}
	if _, err := s.Users().SaveUser(&models.User{Login: "alice"}); err == nil {
		t.Error("duplicate login should violate the unique constraint")
	}
	bob, err := s.Users().SaveUser(&models.User{Login: "bob"})
	if err != nil {
		t.Fatalf("SaveUser: %v", err)
	}

	pid, err := s.Projects().SaveProject(&models.Project{Creator: alice, Name: "shared"})
	if err != nil {
		t.Fatalf("SaveProject: %v", err)
	}
	if err := s.Projects().AddMember(pid, bob, models.UserKindGuest); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	project, err := s.Projects().GetProject(pid)
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if kind := project.KindOf(bob); kind == nil || *kind != models.UserKindGuest {
		t.Errorf("bob's role = %v, want guest", kind)
	}

	// Membership makes the project visible to bob.
	projects, err := s.Projects().ListProjectsForUser(bob)
	if err != nil {
		t.Fatalf("ListProjectsForUser: %v", err)
	}
	if len(projects) != 1 || projects[0].PID != pid {
		t.Errorf("bob's projects = %v, want the shared one", projects)
	}

	if err := s.Projects().RemoveMember(pid, bob, models.UserKindGuest); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	projects, _ = s.Projects().ListProjectsForUser(bob)
	if len(projects) != 0 {
		t.Errorf("bob's projects after removal = %v, want none", projects)
	}
}

func TestAtomicRollsBack(t *testing.T) {
	s := newTestStore(t)
	boom := errors.New("boom")

	var tid int64
	err := s.Atomic(func(view storage.Store) error {
		var err error
		tid, err = view.Tasks().SaveTask(&models.Task{UID: 1, PID: 1, Title: "doomed"})
		if err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Atomic = %v, want the inner error", err)
	}
	if task, _ := s.Tasks().GetTask(tid); task != nil {
		t.Error("rolled back task still present")
	}

	// Nested Atomic joins the outer transaction.
	err = s.Atomic(func(outer storage.Store) error {
		if _, err := outer.Tasks().SaveTask(&models.Task{UID: 1, PID: 1, Title: "kept"}); err != nil {
			return err
		}
		return outer.Atomic(func(inner storage.Store) error {
			_, err := inner.Tasks().SaveTask(&models.Task{UID: 1, PID: 1, Title: "kept too"})
			return err
		})
	})
	if err != nil {
		t.Fatalf("nested Atomic: %v", err)
	}
	tasks, err := s.Tasks().FindTasks(storage.TaskFilter{})
	if err != nil {
		t.Fatalf("FindTasks: %v", err)
	}
	if len(tasks) != 2 {
		t.Errorf("tasks = %v, want the two committed ones", tasks)
	}
}
