package projects

import (
	"fmt"

	"github.com/avoronkov/tasktracker/internal/cli"
	"github.com/avoronkov/tasktracker/internal/controller"
)

type ProjectAddCmd struct {
	Name string `arg:"" help:"Project name, unique per user."`
}

func (c *ProjectAddCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireLogin(); err != nil {
		return err
	}
	pid, err := ctx.Registry.Projects.SaveProject(c.Name)
	if err != nil {
		return err
	}
	fmt.Printf("Added project %d: %s\n", pid, c.Name)
	return nil
}

type ProjectListCmd struct {
	Name string `short:"n" help:"Filter by exact name."`
}

func (c *ProjectListCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireLogin(); err != nil {
		return err
	}

	var q controller.ProjectQuery
	if c.Name != "" {
		q.Name = &c.Name
	}
	projects, err := ctx.Registry.Projects.FetchProjects(q)
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		fmt.Println("No projects found")
		return nil
	}

	uid := ctx.Registry.Session().UID()
	for i := range projects {
		p := &projects[i]
		role := "creator"
		if p.Creator != uid {
			if kind := p.KindOf(uid); kind != nil {
				role = kind.String()
			}
		}
		fmt.Printf("%4d  %s  (%s)\n", p.PID, p.Name, role)
	}
	return nil
}

type ProjectEditCmd struct {
	PID  int64  `arg:"" help:"Project id."`
	Name string `arg:"" help:"New project name."`
}

func (c *ProjectEditCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireLogin(); err != nil {
		return err
	}
	if err := ctx.Registry.Projects.EditProject(c.PID, c.Name); err != nil {
		return err
	}
	fmt.Printf("Renamed project %d to %s\n", c.PID, c.Name)
	return nil
}

type ProjectRemoveCmd struct {
	PID int64 `arg:"" help:"Project id."`
}

func (c *ProjectRemoveCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireLogin(); err != nil {
		return err
	}
	if err := ctx.Registry.Projects.RemoveProject(c.PID); err != nil {
		return err
	}
	fmt.Printf("Removed project %d\n", c.PID)
	return nil
}

type ProjectInviteCmd struct {
	PID  int64  `arg:"" help:"Project id."`
	UID  int64  `arg:"" help:"User id to invite."`
	Role string `short:"r" help:"Membership role (admin|guest)." default:"guest"`
}

func (c *ProjectInviteCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireLogin(); err != nil {
		return err
	}
	kind, err := cli.ParseKindFlag(c.Role)
	if err != nil {
		return err
	}
	if err := ctx.Registry.Projects.InviteUser(c.PID, c.UID, kind); err != nil {
		return err
	}
	fmt.Printf("Invited user %d to project %d as %s\n", c.UID, c.PID, c.Role)
	return nil
}

type ProjectExcludeCmd struct {
	PID int64 `arg:"" help:"Project id."`
	UID int64 `arg:"" help:"User id to exclude."`
}

func (c *ProjectExcludeCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireLogin(); err != nil {
		return err
	}
	if err := ctx.Registry.Projects.ExcludeUser(c.PID, c.UID); err != nil {
		return err
	}
	fmt.Printf("Excluded user %d from project %d\n", c.UID, c.PID)
	return nil
}
