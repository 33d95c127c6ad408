package cli

import (
	"fmt"

	"github.com/avoronkov/tasktracker/internal/controller"
)

type LoginCmd struct {
	Name string `arg:"" help:"User name to log in as."`
}

func (c *LoginCmd) Run(ctx *Context) error {
	if err := ctx.Registry.AuthenticateByLogin(c.Name); err != nil {
		return err
	}
	uid := ctx.Registry.Session().UID()
	if err := ctx.Registry.Users.EditUser(uid, controller.UserPatch{Online: controller.Set(true)}); err != nil {
		return err
	}
	if err := ctx.SaveSession(c.Name); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	fmt.Printf("Logged in as %s\n", c.Name)
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *Context) error {
	if ctx.Registry.Session().Authenticated() {
		uid := ctx.Registry.Session().UID()
		if err := ctx.Registry.Users.EditUser(uid, controller.UserPatch{Online: controller.Set(false)}); err != nil {
			return err
		}
	}
	ctx.Registry.Logout()
	if err := ctx.ClearSession(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	fmt.Println("Logged out")
	return nil
}
