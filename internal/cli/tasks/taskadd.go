package tasks

import (
	"fmt"

	"github.com/avoronkov/tasktracker/internal/cli"
	"github.com/avoronkov/tasktracker/internal/controller"
)

type TaskAddCmd struct {
	Title       string `arg:"" help:"Task title."`
	Description string `short:"d" help:"Task description."`

	Start    string `short:"s" help:"Supposed start, 'DD-MM-YYYY [HH:MM]' or 'today±N [now±N]'."`
	End      string `short:"e" help:"Supposed end, same formats as --start."`
	Deadline string `help:"Hard deadline, same formats as --start."`

	Priority string `short:"p" help:"Priority (low|normal|high|highest)." default:"normal"`
	Status   string `help:"Initial status (pending|active|completed|overdue)." default:"pending"`

	Project string `help:"Project id, defaults to the user's default project."`
	Parent  *int64 `help:"Parent task id."`

	NotifyStart    bool `help:"Notify when the start time arrives."`
	NotifyEnd      bool `help:"Notify when the end time arrives."`
	NotifyDeadline bool `help:"Notify when the deadline arrives."`
}

func (c *TaskAddCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireLogin(); err != nil {
		return err
	}

	start, err := cli.ParseInstantFlag(c.Start)
	if err != nil {
		return err
	}
	end, err := cli.ParseInstantFlag(c.End)
	if err != nil {
		return err
	}
	deadline, err := cli.ParseInstantFlag(c.Deadline)
	if err != nil {
		return err
	}
	priority, err := cli.ParsePriorityFlag(c.Priority)
	if err != nil {
		return err
	}
	status, err := cli.ParseStatusFlag(c.Status)
	if err != nil {
		return err
	}
	pid, err := parseIDFlag(c.Project)
	if err != nil {
		return err
	}

	tid, err := ctx.Registry.Tasks.SaveTask(controller.NewTask{
		PID:            pid,
		ParentTID:      c.Parent,
		Title:          c.Title,
		Description:    c.Description,
		SupposedStart:  start,
		SupposedEnd:    end,
		Deadline:       deadline,
		Priority:       priority,
		Status:         status,
		NotifyStart:    c.NotifyStart,
		NotifyEnd:      c.NotifyEnd,
		NotifyDeadline: c.NotifyDeadline,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Added task %d: %s\n", tid, c.Title)
	return nil
}
