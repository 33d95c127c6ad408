package plans

import (
	"fmt"

	"github.com/avoronkov/tasktracker/internal/cli"
	"github.com/avoronkov/tasktracker/internal/controller"
)

type PlanEditRepeatCmd struct {
	PlanID int64 `arg:"" help:"Plan id."`
	Number int   `arg:"" help:"Occurrence number."`

	Priority string `short:"p" help:"New priority (low|normal|high|highest)."`
	Status   string `help:"New status (pending|active|completed|overdue)."`

	NotifyStart    *bool `help:"Toggle start notification." negatable:""`
	NotifyEnd      *bool `help:"Toggle end notification." negatable:""`
	NotifyDeadline *bool `help:"Toggle deadline notification." negatable:""`
}

func (c *PlanEditRepeatCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireLogin(); err != nil {
		return err
	}

	var patch controller.RepeatPatch
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
	if c.NotifyStart != nil {
		patch.NotifyStart = controller.Set(*c.NotifyStart)
	}
	if c.NotifyEnd != nil {
		patch.NotifyEnd = controller.Set(*c.NotifyEnd)
	}
	if c.NotifyDeadline != nil {
		patch.NotifyDeadline = controller.Set(*c.NotifyDeadline)
	}

	if err := ctx.Registry.Plans.EditRepeat(c.PlanID, c.Number, patch); err != nil {
		return err
	}
	fmt.Printf("Edited occurrence %d of plan %d\n", c.Number, c.PlanID)
	return nil
}

type PlanDeleteRepeatCmd struct {
	PlanID int64 `arg:"" help:"Plan id."`
	Number *int  `arg:"" optional:"" help:"Occurrence number. Omit to delete by range."`

	From string `help:"Range start for bulk deletion."`
	To   string `help:"Range end for bulk deletion."`
}

func (c *PlanDeleteRepeatCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireLogin(); err != nil {
		return err
	}

	if c.Number != nil {
		if err := ctx.Registry.Plans.DeleteRepeat(c.PlanID, *c.Number); err != nil {
			return err
		}
		fmt.Printf("Deleted occurrence %d of plan %d\n", *c.Number, c.PlanID)
		return nil
	}

	rng, err := cli.ParseRangeFlags(c.From, c.To)
	if err != nil {
		return err
	}
	if rng == nil {
		return fmt.Errorf("either an occurrence number or --from/--to is required")
	}
	if err := ctx.Registry.Plans.DeleteRepeatsByTimeRange(c.PlanID, rng); err != nil {
		return err
	}
	fmt.Printf("Deleted occurrences of plan %d in range\n", c.PlanID)
	return nil
}

type PlanRestoreRepeatCmd struct {
	PlanID int64 `arg:"" help:"Plan id."`
	Number *int  `arg:"" optional:"" help:"Occurrence number. Omit to restore by range."`

	From string `help:"Range start for bulk restore."`
	To   string `help:"Range end for bulk restore."`
}

func (c *PlanRestoreRepeatCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireLogin(); err != nil {
		return err
	}

	if c.Number != nil {
		if err := ctx.Registry.Plans.RestoreRepeat(c.PlanID, *c.Number); err != nil {
			return err
		}
		fmt.Printf("Restored occurrence %d of plan %d\n", *c.Number, c.PlanID)
		return nil
	}

	rng, err := cli.ParseRangeFlags(c.From, c.To)
	if err != nil {
		return err
	}
	if rng == nil {
		return fmt.Errorf("either an occurrence number or --from/--to is required")
	}
	if err := ctx.Registry.Plans.RestoreRepeatsByTimeRange(c.PlanID, rng); err != nil {
		return err
	}
	fmt.Printf("Restored occurrences of plan %d in range\n", c.PlanID)
	return nil
}

type PlanRestoreAllCmd struct {
	PlanID int64 `arg:"" help:"Plan id."`
}

func (c *PlanRestoreAllCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireLogin(); err != nil {
		return err
	}
	if err := ctx.Registry.Plans.RestoreAllRepeats(c.PlanID); err != nil {
		return err
	}
	fmt.Printf("Restored all overridden occurrences of plan %d\n", c.PlanID)
	return nil
}
