package system

import (
	"fmt"
	"os"
	"strings"

	"github.com/avoronkov/tasktracker/internal/cli"
)

type InitCmd struct {
	Force bool `help:"Delete the existing sqlite database before initializing."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	db := ctx.Config.Database
	isFile := !strings.HasPrefix(db, "postgres://") && !strings.HasPrefix(db, "postgresql://")

	if c.Force && isFile {
		if _, err := os.Stat(db); err == nil {
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(db); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			fmt.Printf("Deleted existing database at %s\n", db)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized tasktracker storage at %s\n", db)
	return nil
}
