package tasks

import (
	"fmt"

	"github.com/avoronkov/tasktracker/internal/cli"
	"github.com/avoronkov/tasktracker/internal/controller"
)

type TaskShowCmd struct {
	TID int64 `arg:"" help:"Task id."`
}

func (c *TaskShowCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireLogin(); err != nil {
		return err
	}

	tasks, err := ctx.Registry.Tasks.FetchTasks(controller.TaskQuery{TID: &c.TID})
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		return fmt.Errorf("task %d not found", c.TID)
	}
	task := &tasks[0]

	fmt.Printf("Task %d: %s\n", task.TID, task.Title)
	if task.Description != "" {
		fmt.Printf("  Description: %s\n", task.Description)
	}
	fmt.Printf("  Status:   %s\n", task.Status)
	fmt.Printf("  Priority: %s\n", task.Priority)
	fmt.Printf("  Window:   %s\n", cli.FormatWindow(task))
	fmt.Printf("  Project:  %d\n", task.PID)
	if task.ParentTID != nil {
		fmt.Printf("  Parent:   %d\n", *task.ParentTID)
	}

	if plan, err := ctx.Registry.Plans.PlanForTemplateTask(task.TID); err == nil && plan != nil {
		fmt.Printf("  Repeats every %s (plan %d)\n", cli.FormatShift(plan.Shift), plan.ID)
		if plan.End != nil {
			fmt.Printf("  Repeats until %s\n", cli.FormatInstant(*plan.End))
		}
	}
	if plan, err := ctx.Registry.Plans.PlanForEditedTask(task.TID); err == nil && plan != nil {
		if number, err := ctx.Registry.Plans.RepeatNumberForTask(plan.ID, task); err == nil && number != nil {
			fmt.Printf("  Edited occurrence %d of plan %d\n", *number, plan.ID)
		}
	}
	return nil
}
