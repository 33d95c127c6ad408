// Package cli holds the shared command context and the output helpers
// the command groups render with.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/avoronkov/tasktracker/internal/config"
	"github.com/avoronkov/tasktracker/internal/controller"
	"github.com/avoronkov/tasktracker/internal/logger"
)

// Store is what every command needs from the storage backend. The
// controller registry talks to the full interface; commands only open
// and close it.
type Store interface {
	Init() error
	Load() error
	Close() error
}

type Context struct {
	Store    Store
	Registry *controller.Registry
	Config   config.Config
	// ConfigDir is where the session file and logs live.
	ConfigDir string
}

const sessionFile = "session"

// SaveSession persists the logged-in user's name so later invocations
// start authenticated.
func (c *Context) SaveSession(login string) error {
	if err := os.MkdirAll(c.ConfigDir, 0700); err != nil {
		return err
	}
	path := filepath.Join(c.ConfigDir, sessionFile)
	return os.WriteFile(path, []byte(login+"\n"), 0600)
}

// LoadSession returns the persisted login name, or "" when nobody is
// logged in.
func (c *Context) LoadSession() string {
	data, err := os.ReadFile(filepath.Join(c.ConfigDir, sessionFile))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (c *Context) ClearSession() error {
	err := os.Remove(filepath.Join(c.ConfigDir, sessionFile))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// RestoreSession authenticates from the session file if one exists.
// A stale file (deleted user) is cleared rather than reported.
func (c *Context) RestoreSession() {
	login := c.LoadSession()
	if login == "" {
		return
	}
	if err := c.Registry.AuthenticateByLogin(login); err != nil {
		logger.Warn("Stale session dropped", "login", login, "error", err)
		_ = c.ClearSession()
	}
}

// RequireLogin fails with a hint when no user is authenticated.
func (c *Context) RequireLogin() error {
	if !c.Registry.Session().Authenticated() {
		return fmt.Errorf("not logged in, run 'tasktracker login <name>' first")
	}
	return nil
}
