package tasks

import (
	"fmt"
	"strconv"

	"github.com/avoronkov/tasktracker/internal/cli"
	"github.com/avoronkov/tasktracker/internal/controller"
)

// clearMark empties a window field when passed as its flag value.
const clearMark = "none"

type TaskEditCmd struct {
	TID int64 `arg:"" help:"Task id."`

	Title       *string `short:"t" help:"New title."`
	Description *string `short:"d" help:"New description."`

	Start    string `short:"s" help:"New supposed start, or 'none' to drop it."`
	End      string `short:"e" help:"New supposed end, or 'none' to drop it."`
	Deadline string `help:"New deadline, or 'none' to drop it."`

	Priority string `short:"p" help:"New priority (low|normal|high|highest)."`
	Status   string `help:"New status (pending|active|completed|overdue)."`

	Project string `help:"Move to project id."`
	Parent  string `help:"New parent task id, or 'none' to detach."`

	NotifyStart    *bool `help:"Toggle start notification." negatable:""`
	NotifyEnd      *bool `help:"Toggle end notification." negatable:""`
	NotifyDeadline *bool `help:"Toggle deadline notification." negatable:""`

	Force bool `short:"f" help:"Skip the status/time consistency check."`
}

func (c *TaskEditCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireLogin(); err != nil {
		return err
	}

	var patch controller.TaskPatch
	if c.Title != nil {
		patch.Title = controller.Set(*c.Title)
	}
	if c.Description != nil {
		patch.Description = controller.Set(*c.Description)
	}

	var err error
	if patch.SupposedStart, err = instantField(c.Start); err != nil {
		return err
	}
	if patch.SupposedEnd, err = instantField(c.End); err != nil {
		return err
	}
	if patch.Deadline, err = instantField(c.Deadline); err != nil {
		return err
	}

	if c.Priority != "" {
		p, err := cli.ParsePriorityFlag(c.Priority)
		if err != nil {
			return err
		}
		patch.Priority = controller.Set(*p)
	}
	if c.Status != "" {
		s, err := cli.ParseStatusFlag(c.Status)
		if err != nil {
			return err
		}
		patch.Status = controller.Set(*s)
	}
	if c.Project != "" {
		pid, err := strconv.ParseInt(c.Project, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid project id %q", c.Project)
		}
		patch.PID = controller.Set(pid)
	}
	if c.Parent != "" {
		if c.Parent == clearMark {
			patch.ParentTID = controller.Clear[int64]()
		} else {
			tid, err := strconv.ParseInt(c.Parent, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid parent id %q", c.Parent)
			}
			patch.ParentTID = controller.Set(tid)
		}
	}
	if c.NotifyStart != nil {
		patch.NotifyStart = controller.Set(*c.NotifyStart)
	}
	if c.NotifyEnd != nil {
		patch.NotifyEnd = controller.Set(*c.NotifyEnd)
	}
	if c.NotifyDeadline != nil {
		patch.NotifyDeadline = controller.Set(*c.NotifyDeadline)
	}

	if err := ctx.Registry.Tasks.EditTask(c.TID, patch, c.Force); err != nil {
		return err
	}
	fmt.Printf("Edited task %d\n", c.TID)
	return nil
}

func instantField(arg string) (controller.Field[int64], error) {
	switch arg {
	case "":
		return controller.Field[int64]{}, nil
	case clearMark:
		return controller.Clear[int64](), nil
	}
	ms, err := cli.ParseInstantFlag(arg)
	if err != nil {
		return controller.Field[int64]{}, err
	}
	return controller.Set(*ms), nil
}

func parseIDFlag(arg string) (*int64, error) {
	if arg == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid id %q", arg)
	}
	return &id, nil
}
