package tasks

import (
	"fmt"

	"github.com/avoronkov/tasktracker/internal/cli"
)

type TaskRemoveCmd struct {
	TID int64 `arg:"" help:"Task id."`
}

func (c *TaskRemoveCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireLogin(); err != nil {
		return err
	}
	if err := ctx.Registry.Tasks.RemoveTask(c.TID); err != nil {
		return err
	}
	fmt.Printf("Removed task %d\n", c.TID)
	return nil
}
