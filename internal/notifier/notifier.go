// Package notifier runs the periodic background sweep: it refreshes
// overdue statuses and surfaces tasks whose notification instants have
// arrived.
package notifier

import (
	"fmt"
	"io"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/avoronkov/tasktracker/internal/controller"
	"github.com/avoronkov/tasktracker/internal/logger"
	"github.com/avoronkov/tasktracker/internal/models"
	"github.com/avoronkov/tasktracker/internal/timeutil"
)

// Watcher drives the sweep on a cron schedule. Each tick marks passed
// tasks overdue and reports pending notifications to the output writer,
// each task once per run of the watcher.
type Watcher struct {
	registry *controller.Registry
	spec     string
	out      io.Writer

	cron *cron.Cron
	seen map[int64]bool
}

// New builds a watcher. spec is a cron expression or an @every duration,
// e.g. "@every 1m".
func New(registry *controller.Registry, spec string, out io.Writer) *Watcher {
	return &Watcher{
		registry: registry,
		spec:     spec,
		out:      out,
		seen:     map[int64]bool{},
	}
}

// Start schedules the sweep and runs it once immediately.
func (w *Watcher) Start() error {
	w.cron = cron.New()
	if _, err := w.cron.AddFunc(w.spec, w.sweep); err != nil {
		return fmt.Errorf("invalid notify schedule %q: %w", w.spec, err)
	}
	w.sweep()
	w.cron.Start()
	logger.Info("Watcher started", "schedule", w.spec)
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (w *Watcher) Stop() {
	if w.cron != nil {
		<-w.cron.Stop().Done()
	}
	logger.Info("Watcher stopped")
}

func (w *Watcher) sweep() {
	now := timeutil.ToMillis(time.Now())

	if err := w.registry.Tasks.FindOverdueTasks(now); err != nil {
		logger.Error("Overdue sweep failed", "error", err)
	}

	tasks, err := w.registry.Tasks.TasksWithNotificationsToTime(now)
	if err != nil {
		logger.Error("Notification query failed", "error", err)
		return
	}
	for i := range tasks {
		task := &tasks[i]
		if w.seen[task.TID] {
			continue
		}
		w.seen[task.TID] = true
		fmt.Fprintf(w.out, "%s\n", describe(task))
		logger.Debug("Notification emitted", "task", task.TID)
	}
}

func describe(task *models.Task) string {
	switch {
	case task.NotifyDeadline && task.Deadline != nil:
		return fmt.Sprintf("[%s] %q has a deadline at %s",
			task.Status, task.Title, timeutil.FromMillis(*task.Deadline).Format(timeutil.DateTimeFormat))
	case task.NotifyEnd && task.SupposedEnd != nil:
		return fmt.Sprintf("[%s] %q should finish by %s",
			task.Status, task.Title, timeutil.FromMillis(*task.SupposedEnd).Format(timeutil.DateTimeFormat))
	case task.NotifyStart && task.SupposedStart != nil:
		return fmt.Sprintf("[%s] %q should start at %s",
			task.Status, task.Title, timeutil.FromMillis(*task.SupposedStart).Format(timeutil.DateTimeFormat))
	}
	return fmt.Sprintf("[%s] %q needs attention", task.Status, task.Title)
}
