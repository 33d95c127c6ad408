package plans

import (
	"fmt"

	"github.com/avoronkov/tasktracker/internal/cli"
)

type PlanRepeatsCmd struct {
	PlanID int64  `arg:"" help:"Plan id."`
	From   string `help:"Range start, 'DD-MM-YYYY [HH:MM]'." required:""`
	To     string `help:"Range end." required:""`

	Strong       bool `help:"Only occurrences lying fully inside the range."`
	WithExcluded bool `help:"Include deleted and edited occurrence numbers."`
}

func (c *PlanRepeatsCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireLogin(); err != nil {
		return err
	}

	rng, err := cli.ParseRangeFlags(c.From, c.To)
	if err != nil {
		return err
	}
	numbers, err := ctx.Registry.Plans.RepeatsByTimeRange(c.PlanID, rng, c.Strong, c.WithExcluded)
	if err != nil {
		return err
	}
	if len(numbers) == 0 {
		fmt.Println("No occurrences in range")
		return nil
	}

	for _, n := range numbers {
		window, err := ctx.Registry.Plans.TimeForRepeat(c.PlanID, n)
		if err != nil {
			return err
		}
		line := fmt.Sprintf("%4d  %s", n, cli.FormatInstant(window.Start()))
		if len(window) == 2 {
			line += " .. " + cli.FormatInstant(window.End())
		}
		if kind, err := ctx.Registry.Plans.ExcludeKindOf(c.PlanID, n); err == nil && kind != nil {
			line += fmt.Sprintf("  (%s)", kind)
		}
		fmt.Println(line)
	}
	return nil
}

type PlanTasksCmd struct {
	PlanID int64  `arg:"" help:"Plan id."`
	From   string `help:"Range start, 'DD-MM-YYYY [HH:MM]'." required:""`
	To     string `help:"Range end." required:""`
}

func (c *PlanTasksCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireLogin(); err != nil {
		return err
	}

	rng, err := cli.ParseRangeFlags(c.From, c.To)
	if err != nil {
		return err
	}
	tasks, err := ctx.Registry.Tasks.PlanTasksByTimeRange(c.PlanID, rng)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Println("No occurrences in range")
		return nil
	}
	for i := range tasks {
		fmt.Println(cli.FormatTaskLine(&tasks[i]))
	}
	return nil
}
