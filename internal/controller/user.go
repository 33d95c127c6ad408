package controller

import (
	trackerrors "github.com/avoronkov/tasktracker/internal/errors"
	"github.com/avoronkov/tasktracker/internal/logger"
	"github.com/avoronkov/tasktracker/internal/models"
)

// UserController manages users and answers the availability checks the
// other controllers run before touching tasks, plans and projects. User
// operations themselves need no authenticated session.
type UserController struct {
	*core
}

// UserPatch carries per-field user edits.
type UserPatch struct {
	Login  Field[string]
	Online Field[bool]
}

// UserQuery selects users for FetchUsers. Nil fields do not constrain.
type UserQuery struct {
	UID    *int64
	Login  *string
	Online *bool
}

// SaveUser creates a user together with their default project.
func (c *UserController) SaveUser(login string) (int64, error) {
	existing, err := c.store.Users().GetUserByLogin(login)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		logger.Error("Login already taken", "login", login)
		return 0, &trackerrors.UserExistsError{Login: login}
	}

	var uid int64
	err = c.atomic(func(cc *core) error {
		var err error
		uid, err = cc.store.Users().SaveUser(&models.User{Login: login})
		if err != nil {
			return err
		}
		_, err = cc.store.Projects().SaveProject(&models.Project{
			Creator: uid,
			Name:    models.DefaultProjectName,
		})
		return err
	})
	if err != nil {
		return 0, err
	}
	logger.Info("User saved", "uid", uid, "login", login)
	return uid, nil
}

// FetchUsers returns users matching the query.
func (c *UserController) FetchUsers(q UserQuery) ([]models.User, error) {
	users, err := c.store.Users().ListUsers()
	if err != nil {
		return nil, err
	}
	out := users[:0]
	for _, u := range users {
		if q.UID != nil && u.UID != *q.UID {
			continue
		}
		if q.Login != nil && u.Login != *q.Login {
			continue
		}
		if q.Online != nil && u.Online != *q.Online {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

// EditUser changes the user's login or online flag. A login change to a
// name already taken fails.
func (c *UserController) EditUser(uid int64, patch UserPatch) error {
	user, err := c.store.Users().GetUser(uid)
	if err != nil {
		return err
	}
	if user == nil {
		return trackerrors.ErrNotFound
	}

	if patch.Login.IsSet() {
		login := patch.Login.Value(user.Login)
		existing, err := c.store.Users().GetUserByLogin(login)
		if err != nil {
			return err
		}
		if existing != nil && existing.UID != uid {
			logger.Error("Login already taken", "login", login)
			return &trackerrors.UserExistsError{Login: login}
		}
		user.Login = login
	}
	user.Online = patch.Online.Value(user.Online)
	return c.store.Users().UpdateUser(user)
}

// DeleteUser removes the user and every project they created, including
// the default one, with all contained tasks.
func (c *UserController) DeleteUser(uid int64) error {
	return c.atomic(func(cc *core) error {
		projects, err := cc.store.Projects().ListProjectsForUser(uid)
		if err != nil {
			return err
		}
		for _, project := range projects {
			if project.Creator != uid {
				continue
			}
			if err := removeProject(cc, project.PID); err != nil {
				return err
			}
		}
		if err := cc.store.Users().DeleteUser(uid); err != nil {
			return err
		}
		logger.Info("User deleted", "uid", uid)
		return nil
	})
}

// CheckTaskAvailable verifies uid may see the task, or edit it when edit
// is set. A task in a shared project follows the project membership
// rules; guests cannot edit. A task outside any visible project must be
// owned by uid.
func (c *UserController) CheckTaskAvailable(uid, tid int64, edit bool) error {
	task, err := c.store.Tasks().GetTask(tid)
	if err != nil {
		return err
	}
	if task == nil {
		return nil
	}
	project, err := c.store.Projects().GetProject(task.PID)
	if err != nil {
		return err
	}
	if project != nil {
		kind := project.KindOf(uid)
		if kind == nil {
			logger.Error("Task access denied", "uid", uid, "task", tid)
			return trackerrors.ErrPermissionDenied
		}
		if edit && *kind == models.UserKindGuest {
			logger.Error("Guest cannot edit task", "uid", uid, "task", tid)
			return trackerrors.ErrPermissionDenied
		}
		return nil
	}
	if task.UID != uid {
		logger.Error("Task access denied", "uid", uid, "task", tid)
		return trackerrors.ErrPermissionDenied
	}
	return nil
}

// CheckPlanAvailable verifies availability of the plan's template task.
func (c *UserController) CheckPlanAvailable(uid, planID int64, edit bool) error {
	plan, err := c.store.Plans().GetPlan(planID)
	if err != nil {
		return err
	}
	if plan == nil {
		return nil
	}
	return c.CheckTaskAvailable(uid, plan.TID, edit)
}

// CheckProjectAvailable verifies uid participates in the project; with
// edit set, guests are rejected.
func (c *UserController) CheckProjectAvailable(uid, pid int64, edit bool) error {
	project, err := c.store.Projects().GetProject(pid)
	if err != nil {
		return err
	}
	if project == nil {
		return nil
	}
	kind := project.KindOf(uid)
	if kind == nil {
		logger.Error("Project access denied", "uid", uid, "project", pid)
		return trackerrors.ErrPermissionDenied
	}
	if edit && *kind == models.UserKindGuest {
		logger.Error("Guest cannot edit project", "uid", uid, "project", pid)
		return trackerrors.ErrPermissionDenied
	}
	return nil
}
