package controller

import (
	"fmt"

	trackerrors "github.com/avoronkov/tasktracker/internal/errors"
	"github.com/avoronkov/tasktracker/internal/logger"
	"github.com/avoronkov/tasktracker/internal/models"
	"github.com/avoronkov/tasktracker/internal/storage"
)

// ProjectController manages projects and their membership. Every user
// owns an immortal default project; further projects can be shared with
// invited admins and guests.
type ProjectController struct {
	*core
}

// ProjectQuery selects projects for FetchProjects. Nil fields do not
// constrain.
type ProjectQuery struct {
	PID  *int64
	Name *string
}

// SaveProject creates a project owned by the session user. Project names
// are unique per user.
func (c *ProjectController) SaveProject(name string) (int64, error) {
	if err := c.requireAuth(); err != nil {
		return 0, err
	}
	existing, err := c.FetchProjects(ProjectQuery{Name: &name})
	if err != nil {
		return 0, err
	}
	if len(existing) != 0 {
		return 0, fmt.Errorf("project %q already exists", name)
	}
	pid, err := c.store.Projects().SaveProject(&models.Project{
		Creator: c.uid(),
		Name:    name,
	})
	if err != nil {
		return 0, err
	}
	logger.Info("Project saved", "project", pid, "name", name)
	return pid, nil
}

// FetchProjects returns the session user's projects matching the query.
func (c *ProjectController) FetchProjects(q ProjectQuery) ([]models.Project, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}
	projects, err := c.store.Projects().ListProjectsForUser(c.uid())
	if err != nil {
		return nil, err
	}
	out := projects[:0]
	for _, p := range projects {
		if q.PID != nil && p.PID != *q.PID {
			continue
		}
		if q.Name != nil && p.Name != *q.Name {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// DefaultProjectForUser resolves the default project created alongside
// the user, or nil when the user does not exist.
func (c *ProjectController) DefaultProjectForUser(uid int64) (*models.Project, error) {
	projects, err := c.store.Projects().ListProjectsForUser(uid)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if projects[i].Creator == uid && projects[i].Name == models.DefaultProjectName {
			return &projects[i], nil
		}
	}
	return nil, nil
}

// EditProject renames the project. The default project cannot be renamed.
func (c *ProjectController) EditProject(pid int64, name string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	if err := c.users().CheckProjectAvailable(c.uid(), pid, true); err != nil {
		return err
	}
	project, err := c.store.Projects().GetProject(pid)
	if err != nil {
		return err
	}
	if project == nil {
		return trackerrors.ErrNotFound
	}
	if project.Name == models.DefaultProjectName {
		return fmt.Errorf("the default project cannot be renamed")
	}
	project.Name = name
	return c.store.Projects().UpdateProject(project)
}

// RemoveProject deletes the project and every task in it. The default
// project cannot be removed.
func (c *ProjectController) RemoveProject(pid int64) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	if err := c.users().CheckProjectAvailable(c.uid(), pid, true); err != nil {
		return err
	}
	project, err := c.store.Projects().GetProject(pid)
	if err != nil {
		return err
	}
	if project == nil {
		return trackerrors.ErrNotFound
	}
	if project.Name == models.DefaultProjectName && project.Creator == c.uid() {
		return fmt.Errorf("the default project cannot be removed")
	}
	return c.atomic(func(cc *core) error {
		return removeProject(cc, pid)
	})
}

// removeProject cascades the project's tasks, plans included, then drops
// the project row. Used by RemoveProject and by user deletion, which is
// allowed to take the default project with it.
func removeProject(cc *core, pid int64) error {
	tasks, err := cc.store.Tasks().FindTasks(storage.TaskFilter{PID: &pid})
	if err != nil {
		return err
	}
	for i := range tasks {
		// A plan cascade may have removed the row already.
		task, err := cc.store.Tasks().GetTask(tasks[i].TID)
		if err != nil {
			return err
		}
		if task == nil {
			continue
		}
		if err := removeTask(cc, task.TID); err != nil {
			return err
		}
	}
	if err := cc.store.Projects().DeleteProject(pid); err != nil {
		return err
	}
	logger.Info("Project removed", "project", pid)
	return nil
}

// InviteUser adds uid to the project as admin or guest. The user and the
// project must exist, the user must not already participate, and the
// session user cannot invite themselves.
func (c *ProjectController) InviteUser(pid, uid int64, kind models.UserKind) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	if err := c.users().CheckProjectAvailable(c.uid(), pid, true); err != nil {
		return err
	}

	user, err := c.store.Users().GetUser(uid)
	if err != nil {
		return err
	}
	if user == nil {
		logger.Warn("Cannot invite a user that does not exist", "uid", uid)
		return trackerrors.ErrNotFound
	}
	project, err := c.store.Projects().GetProject(pid)
	if err != nil {
		return err
	}
	if project == nil {
		logger.Warn("Cannot invite into a project that does not exist", "project", pid)
		return trackerrors.ErrNotFound
	}
	if project.KindOf(uid) != nil {
		return fmt.Errorf("user %d already participates in project %d", uid, pid)
	}
	if uid == c.uid() {
		return fmt.Errorf("cannot invite yourself")
	}

	if err := c.store.Projects().AddMember(pid, uid, kind); err != nil {
		return err
	}
	logger.Info("User invited", "project", pid, "uid", uid, "kind", kind.String())
	return nil
}

// ExcludeUser removes uid from the project. Guests may only exclude
// themselves and the creator cannot be excluded. Tasks an excluded admin
// owned inside the project revert to the creator.
func (c *ProjectController) ExcludeUser(pid, uid int64) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	if err := c.users().CheckProjectAvailable(c.uid(), pid, false); err != nil {
		return err
	}

	user, err := c.store.Users().GetUser(uid)
	if err != nil {
		return err
	}
	if user == nil {
		logger.Warn("Cannot exclude a user that does not exist", "uid", uid)
		return trackerrors.ErrNotFound
	}
	project, err := c.store.Projects().GetProject(pid)
	if err != nil {
		return err
	}
	if project == nil {
		return trackerrors.ErrNotFound
	}

	kind := project.KindOf(uid)
	if kind == nil || project.Creator == uid {
		if project.Creator == uid {
			logger.Error("Cannot exclude the project creator", "project", pid, "uid", uid)
			return trackerrors.ErrPermissionDenied
		}
		return fmt.Errorf("user %d does not participate in project %d", uid, pid)
	}
	callerKind := project.KindOf(c.uid())
	if callerKind != nil && *callerKind == models.UserKindGuest && uid != c.uid() {
		logger.Error("Guest cannot exclude other participants", "project", pid, "uid", uid)
		return trackerrors.ErrPermissionDenied
	}

	return c.atomic(func(cc *core) error {
		if *kind == models.UserKindAdmin {
			tasks, err := cc.store.Tasks().FindTasks(storage.TaskFilter{PID: &pid, UID: &uid})
			if err != nil {
				return err
			}
			for i := range tasks {
				tasks[i].UID = project.Creator
				if err := cc.store.Tasks().UpdateTask(&tasks[i]); err != nil {
					return err
				}
			}
		}
		if err := cc.store.Projects().RemoveMember(pid, uid, *kind); err != nil {
			return err
		}
		logger.Info("User excluded", "project", pid, "uid", uid)
		return nil
	})
}
