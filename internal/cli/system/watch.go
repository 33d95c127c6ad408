package system

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avoronkov/tasktracker/internal/cli"
	"github.com/avoronkov/tasktracker/internal/notifier"
	"github.com/avoronkov/tasktracker/internal/timeutil"
)

// OverdueCmd runs one overdue refresh pass and reports what it marked.
type OverdueCmd struct{}

func (c *OverdueCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireLogin(); err != nil {
		return err
	}

	now := timeutil.ToMillis(time.Now())
	if err := ctx.Registry.Tasks.FindOverdueTasks(now); err != nil {
		return err
	}

	tasks, err := ctx.Registry.Tasks.OverdueTasks(now)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Println("Nothing overdue")
		return nil
	}
	for i := range tasks {
		fmt.Println(cli.FormatTaskLine(&tasks[i]))
	}
	return nil
}

// WatchCmd runs the notification sweep on the configured schedule until
// interrupted.
type WatchCmd struct {
	Schedule string `short:"s" help:"Cron spec or @every interval, overrides the config file."`
}

func (c *WatchCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireLogin(); err != nil {
		return err
	}

	spec := ctx.Config.NotifySpec
	if c.Schedule != "" {
		spec = c.Schedule
	}

	watcher := notifier.New(ctx.Registry, spec, os.Stdout)
	if err := watcher.Start(); err != nil {
		return err
	}
	fmt.Printf("Watching on schedule %q, Ctrl-C to stop\n", spec)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	watcher.Stop()
	return nil
}
