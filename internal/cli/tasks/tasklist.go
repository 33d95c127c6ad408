package tasks

import (
	"fmt"

	"github.com/avoronkov/tasktracker/internal/cli"
	"github.com/avoronkov/tasktracker/internal/controller"
)

type TaskListCmd struct {
	Title       string `short:"t" help:"Filter by title substring."`
	Description string `help:"Filter by description substring."`
	Status      string `help:"Filter by status (pending|active|completed|overdue)."`
	Priority    string `short:"p" help:"Filter by priority (low|normal|high|highest)."`

	Project string `help:"Filter by project id."`
	Parent  *int64 `help:"Filter by parent task id."`

	From string `help:"Range start, 'DD-MM-YYYY [HH:MM]'. With --to, plan occurrences in the range are listed too."`
	To   string `help:"Range end."`

	Timeless bool `help:"Only tasks without a time window."`
}

func (c *TaskListCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireLogin(); err != nil {
		return err
	}

	q := controller.TaskQuery{
		ParentTID: c.Parent,
		Timeless:  c.Timeless,
	}
	if c.Title != "" {
		q.Title = &c.Title
	}
	if c.Description != "" {
		q.Description = &c.Description
	}
	var err error
	if q.Status, err = cli.ParseStatusFlag(c.Status); err != nil {
		return err
	}
	if q.Priority, err = cli.ParsePriorityFlag(c.Priority); err != nil {
		return err
	}
	if q.PID, err = parseIDFlag(c.Project); err != nil {
		return err
	}
	if q.Range, err = cli.ParseRangeFlags(c.From, c.To); err != nil {
		return err
	}

	tasks, err := ctx.Registry.Tasks.FetchTasks(q)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Println("No tasks found")
		return nil
	}

	for i := range tasks {
		fmt.Println(cli.FormatTaskLine(&tasks[i]))
	}
	return nil
}
