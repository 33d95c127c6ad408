package users

import (
	"fmt"

	"github.com/avoronkov/tasktracker/internal/cli"
	"github.com/avoronkov/tasktracker/internal/controller"
)

type UserAddCmd struct {
	Name string `arg:"" help:"User name, unique."`
}

func (c *UserAddCmd) Run(ctx *cli.Context) error {
	uid, err := ctx.Registry.Users.SaveUser(c.Name)
	if err != nil {
		return err
	}
	fmt.Printf("Added user %d: %s\n", uid, c.Name)
	return nil
}

type UserListCmd struct {
	Name   string `short:"n" help:"Filter by exact name."`
	Online *bool  `help:"Filter by online state." negatable:""`
}

func (c *UserListCmd) Run(ctx *cli.Context) error {
	var q controller.UserQuery
	if c.Name != "" {
		q.Login = &c.Name
	}
	q.Online = c.Online

	users, err := ctx.Registry.Users.FetchUsers(q)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Println("No users found")
		return nil
	}
	for _, u := range users {
		state := ""
		if u.Online {
			state = "  (online)"
		}
		fmt.Printf("%4d  %s%s\n", u.UID, u.Login, state)
	}
	return nil
}

type UserEditCmd struct {
	UID  int64  `arg:"" help:"User id."`
	Name string `arg:"" help:"New user name."`
}

func (c *UserEditCmd) Run(ctx *cli.Context) error {
	patch := controller.UserPatch{Login: controller.Set(c.Name)}
	if err := ctx.Registry.Users.EditUser(c.UID, patch); err != nil {
		return err
	}
	fmt.Printf("Renamed user %d to %s\n", c.UID, c.Name)
	return nil
}

type UserRemoveCmd struct {
	UID int64 `arg:"" help:"User id."`
}

func (c *UserRemoveCmd) Run(ctx *cli.Context) error {
	if err := ctx.Registry.Users.DeleteUser(c.UID); err != nil {
		return err
	}
	fmt.Printf("Removed user %d\n", c.UID)
	return nil
}
