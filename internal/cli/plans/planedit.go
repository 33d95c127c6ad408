package plans

import (
	"fmt"

	"github.com/avoronkov/tasktracker/internal/cli"
	"github.com/avoronkov/tasktracker/internal/controller"
	"github.com/avoronkov/tasktracker/internal/timeutil"
)

type PlanEditCmd struct {
	PlanID int64  `arg:"" help:"Plan id."`
	Shift  string `short:"s" help:"New interval between occurrences (Nd, Nw or a duration)."`
	End    string `short:"e" help:"New end instant, or 'none' to repeat forever."`
}

func (c *PlanEditCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireLogin(); err != nil {
		return err
	}

	var patch controller.PlanPatch
	if c.Shift != "" {
		shift, err := timeutil.ParseShift(c.Shift)
		if err != nil {
			return err
		}
		patch.Shift = controller.Set(shift)
	}
	switch c.End {
	case "":
	case "none":
		patch.End = controller.Clear[int64]()
	default:
		end, err := cli.ParseInstantFlag(c.End)
		if err != nil {
			return err
		}
		patch.End = controller.Set(*end)
	}

	if err := ctx.Registry.Plans.EditPlan(c.PlanID, patch); err != nil {
		return err
	}
	fmt.Printf("Edited plan %d\n", c.PlanID)
	return nil
}

type PlanShiftStartCmd struct {
	PlanID int64  `arg:"" help:"Plan id."`
	Delta  string `arg:"" help:"Interval to move the first occurrence by (Nd, Nw or a duration, may be negative)."`
}

func (c *PlanShiftStartCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireLogin(); err != nil {
		return err
	}

	delta, err := timeutil.ParseShift(c.Delta)
	if err != nil {
		return err
	}
	if err := ctx.Registry.Plans.ShiftStart(c.PlanID, delta); err != nil {
		return err
	}
	fmt.Printf("Shifted plan %d start by %s\n", c.PlanID, cli.FormatShift(delta))
	return nil
}

type PlanRemoveCmd struct {
	PlanID int64 `arg:"" help:"Plan id."`
}

func (c *PlanRemoveCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireLogin(); err != nil {
		return err
	}
	if err := ctx.Registry.Plans.DeletePlan(c.PlanID); err != nil {
		return err
	}
	fmt.Printf("Removed plan %d\n", c.PlanID)
	return nil
}
