package plans

import (
	"fmt"

	"github.com/avoronkov/tasktracker/internal/cli"
	"github.com/avoronkov/tasktracker/internal/timeutil"
)

type PlanAttachCmd struct {
	TID   int64  `arg:"" help:"Template task id."`
	Shift string `short:"s" help:"Interval between occurrences: Nd, Nw or a duration like 72h. Negative walks backwards." required:""`
	End   string `short:"e" help:"Last instant the plan repeats to, 'DD-MM-YYYY [HH:MM]'."`
}

func (c *PlanAttachCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireLogin(); err != nil {
		return err
	}

	shift, err := timeutil.ParseShift(c.Shift)
	if err != nil {
		return err
	}
	end, err := cli.ParseInstantFlag(c.End)
	if err != nil {
		return err
	}

	planID, err := ctx.Registry.Plans.AttachPlan(c.TID, shift, end)
	if err != nil {
		return err
	}
	fmt.Printf("Attached plan %d to task %d, repeating every %s\n",
		planID, c.TID, cli.FormatShift(shift))
	return nil
}
