package notifier

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/avoronkov/tasktracker/internal/controller"
	"github.com/avoronkov/tasktracker/internal/models"
	"github.com/avoronkov/tasktracker/internal/storage/memory"
	"github.com/avoronkov/tasktracker/internal/timeutil"
)

func testRegistry(t *testing.T) (*controller.Registry, *memory.Store) {
	t.Helper()
	store := memory.New()
	reg := controller.New(store)
	if _, err := reg.Users.SaveUser("alice"); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}
	if err := reg.AuthenticateByLogin("alice"); err != nil {
		t.Fatalf("AuthenticateByLogin: %v", err)
	}
	return reg, store
}

func TestWatcherSweep(t *testing.T) {
	reg, store := testRegistry(t)

	def, err := reg.Projects.DefaultProjectForUser(reg.Session().UID())
	if err != nil || def == nil {
		t.Fatalf("DefaultProjectForUser: %v, %v", def, err)
	}

	// Stored directly: a passed window cannot be created through the
	// controller.
	start := timeutil.ToMillis(time.Now().Add(-48 * time.Hour))
	end := timeutil.ToMillis(time.Now().Add(-24 * time.Hour))
	tid, err := store.Tasks().SaveTask(&models.Task{
		UID:           reg.Session().UID(),
		PID:           def.PID,
		Title:         "water plants",
		SupposedStart: &start,
		SupposedEnd:   &end,
		Status:        models.StatusPending,
		Priority:      models.PriorityNormal,
		NotifyEnd:     true,
	})
	if err != nil {
		t.Fatalf("SaveTask: %v", err)
	}

	var out bytes.Buffer
	w := New(reg, "@every 1h", &out)
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	w.Stop()

	task, err := store.Tasks().GetTask(tid)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if task.Status != models.StatusOverdue {
		t.Errorf("status = %v, want overdue after the sweep", task.Status)
	}

	got := out.String()
	if !strings.Contains(got, "water plants") || !strings.Contains(got, "should finish by") {
		t.Errorf("output = %q, want an end notification", got)
	}
	if n := strings.Count(got, "water plants"); n != 1 {
		t.Errorf("notified %d times, want once", n)
	}

	// A second start reuses the seen set: no repeated notification.
	if err := w.Start(); err != nil {
		t.Fatalf("Start again: %v", err)
	}
	w.Stop()
	if n := strings.Count(out.String(), "water plants"); n != 1 {
		t.Errorf("notified %d times after restart, want once", n)
	}
}

func TestWatcherRejectsBadSchedule(t *testing.T) {
	reg, _ := testRegistry(t)
	w := New(reg, "not a schedule", new(bytes.Buffer))
	if err := w.Start(); err == nil {
		w.Stop()
		t.Error("invalid schedule should fail")
	}
}
