package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/avoronkov/tasktracker/internal/cli"
	"github.com/avoronkov/tasktracker/internal/cli/plans"
	"github.com/avoronkov/tasktracker/internal/cli/projects"
	"github.com/avoronkov/tasktracker/internal/cli/system"
	"github.com/avoronkov/tasktracker/internal/cli/tasks"
	"github.com/avoronkov/tasktracker/internal/cli/users"
	"github.com/avoronkov/tasktracker/internal/config"
	"github.com/avoronkov/tasktracker/internal/controller"
	"github.com/avoronkov/tasktracker/internal/keyring"
	"github.com/avoronkov/tasktracker/internal/logger"
	"github.com/avoronkov/tasktracker/internal/storage"
	"github.com/avoronkov/tasktracker/internal/storage/postgres"
	"github.com/avoronkov/tasktracker/internal/storage/sqlite"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"Config file path." type:"path"`
	Database string `help:"SQLite file path or PostgreSQL connection string, overrides the config file. Connection strings must NOT embed a password; use the keyring or .pgpass."`
	Debug    bool   `help:"Verbose logging to stderr."`

	Init system.InitCmd `cmd:"" help:"Initialize tasktracker storage."`

	Task struct {
		Add    tasks.TaskAddCmd    `cmd:"" help:"Add a new task."`
		Edit   tasks.TaskEditCmd   `cmd:"" help:"Edit a task."`
		List   tasks.TaskListCmd   `cmd:"" help:"List tasks." default:"1"`
		Remove tasks.TaskRemoveCmd `cmd:"" help:"Remove a task and its subtasks."`
		Show   tasks.TaskShowCmd   `cmd:"" help:"Show one task in detail."`
	} `cmd:"" help:"Manage tasks."`

	Plan struct {
		Attach        plans.PlanAttachCmd        `cmd:"" help:"Attach a repeat plan to a task."`
		Edit          plans.PlanEditCmd          `cmd:"" help:"Change a plan's interval or end."`
		ShiftStart    plans.PlanShiftStartCmd    `cmd:"" name:"shift-start" help:"Move the plan's first occurrence."`
		Repeats       plans.PlanRepeatsCmd       `cmd:"" help:"List occurrence numbers in a range."`
		Tasks         plans.PlanTasksCmd         `cmd:"" help:"List occurrence tasks in a range."`
		EditRepeat    plans.PlanEditRepeatCmd    `cmd:"" name:"edit-repeat" help:"Edit one occurrence."`
		DeleteRepeat  plans.PlanDeleteRepeatCmd  `cmd:"" name:"delete-repeat" help:"Delete occurrences."`
		RestoreRepeat plans.PlanRestoreRepeatCmd `cmd:"" name:"restore-repeat" help:"Restore deleted or edited occurrences."`
		RestoreAll    plans.PlanRestoreAllCmd    `cmd:"" name:"restore-all" help:"Restore every overridden occurrence."`
		Remove        plans.PlanRemoveCmd        `cmd:"" help:"Remove a plan, keeping its template task."`
	} `cmd:"" help:"Manage repeat plans."`

	Project struct {
		Add     projects.ProjectAddCmd     `cmd:"" help:"Add a project."`
		List    projects.ProjectListCmd    `cmd:"" help:"List your projects." default:"1"`
		Edit    projects.ProjectEditCmd    `cmd:"" help:"Rename a project."`
		Remove  projects.ProjectRemoveCmd  `cmd:"" help:"Remove a project and its tasks."`
		Invite  projects.ProjectInviteCmd  `cmd:"" help:"Invite a user to a project."`
		Exclude projects.ProjectExcludeCmd `cmd:"" help:"Exclude a user from a project."`
	} `cmd:"" help:"Manage projects."`

	User struct {
		Add    users.UserAddCmd    `cmd:"" help:"Add a user."`
		List   users.UserListCmd   `cmd:"" help:"List users." default:"1"`
		Edit   users.UserEditCmd   `cmd:"" help:"Rename a user."`
		Remove users.UserRemoveCmd `cmd:"" help:"Remove a user and everything they own."`
	} `cmd:"" help:"Manage users."`

	Login  cli.LoginCmd  `cmd:"" help:"Log in and persist the session."`
	Logout cli.LogoutCmd `cmd:"" help:"Log out."`

	Overdue system.OverdueCmd `cmd:"" help:"Refresh overdue statuses once."`
	Watch   system.WatchCmd   `cmd:"" help:"Run the notification sweep on a schedule."`

	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store the database connection string."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check keyring availability."`
	} `cmd:"" help:"Manage the OS keyring entry."`
}

type store interface {
	storage.Store
	Load() error
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("tasktracker"),
		kong.Description("Personal task tracker with repeating plans and shared projects"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": "v0.1.0"},
	)

	configDir := config.DefaultDir()
	configPath := CLI.Config
	if configPath == "" {
		configPath = filepath.Join(configDir, "config.yaml")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if CLI.Database != "" {
		cfg.Database = CLI.Database
	}
	if CLI.Debug {
		cfg.Debug = true
	}

	if err := logger.Init(logger.Config{Debug: cfg.Debug, ConfigDir: configDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	st, err := openStore(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	appCtx := &cli.Context{
		Store:     st,
		Registry:  controller.New(st),
		Config:    cfg,
		ConfigDir: configDir,
	}

	// Init prepares its own storage; everything else needs it loaded.
	if ctx.Selected() != nil && ctx.Selected().Name != "init" {
		if err := st.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		appCtx.RestoreSession()
	}
	defer st.Close()

	if err := ctx.Run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openStore picks the backend from the database setting: a postgres
// connection string (or the literal "postgres", resolved through the OS
// keyring) selects PostgreSQL, anything else is an sqlite file path.
func openStore(db string) (store, error) {
	if db == "postgres" {
		connStr, err := keyring.GetConnectionString()
		if err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				return nil, errors.New("no connection string in keyring, run 'tasktracker keyring set' first")
			}
			return nil, err
		}
		return postgres.New(connStr), nil
	}

	if strings.HasPrefix(db, "postgres://") || strings.HasPrefix(db, "postgresql://") {
		if _, err := postgres.ValidateConnString(db); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, errors.New("connection string must not embed a password; store it with 'tasktracker keyring set' or use .pgpass")
			}
			return nil, err
		}
		return postgres.New(db), nil
	}

	return sqlite.NewStore(db), nil
}
