// Package controller implements the library operations over the storage
// collaborators: task, plan, user and project management and the plan
// recurrence engine. Controllers are constructed with their stores passed
// in explicitly and share one authentication session.
package controller

import (
	trackerrors "github.com/avoronkov/tasktracker/internal/errors"
	"github.com/avoronkov/tasktracker/internal/logger"
	"github.com/avoronkov/tasktracker/internal/storage"
)

// Session holds the authenticated user, shared by all controllers built
// from the same Registry.
type Session struct {
	uid *int64
}

func (s *Session) Authenticated() bool { return s.uid != nil }

// UID returns the authenticated user id; valid only when Authenticated.
func (s *Session) UID() int64 { return *s.uid }

// core is the state every controller shares.
type core struct {
	store   storage.Store
	session *Session
}

// Registry wires the controllers over one store and one session.
type Registry struct {
	Tasks    *TaskController
	Plans    *PlanController
	Users    *UserController
	Projects *ProjectController

	core *core
}

func New(store storage.Store) *Registry {
	c := &core{store: store, session: &Session{}}
	return &Registry{
		Tasks:    &TaskController{c},
		Plans:    &PlanController{c},
		Users:    &UserController{c},
		Projects: &ProjectController{c},
		core:     c,
	}
}

// Session exposes the shared session, e.g. for the CLI to restore a
// persisted login.
func (r *Registry) Session() *Session { return r.core.session }

// Authenticate logs the session in by user id.
func (r *Registry) Authenticate(uid int64) error {
	user, err := r.core.store.Users().GetUser(uid)
	if err != nil {
		return err
	}
	if user == nil {
		logger.Error("Authentication failed", "uid", uid)
		return &trackerrors.AuthenticationError{UID: uid}
	}
	logger.Info("Authenticated", "uid", user.UID)
	r.core.session.uid = &user.UID
	return nil
}

// AuthenticateByLogin logs the session in by user name.
func (r *Registry) AuthenticateByLogin(login string) error {
	user, err := r.core.store.Users().GetUserByLogin(login)
	if err != nil {
		return err
	}
	if user == nil {
		logger.Error("Authentication failed", "login", login)
		return &trackerrors.AuthenticationError{Login: login}
	}
	logger.Info("Authenticated", "uid", user.UID, "login", login)
	r.core.session.uid = &user.UID
	return nil
}

func (r *Registry) Logout() {
	r.core.session.uid = nil
}

func (c *core) requireAuth() error {
	if !c.session.Authenticated() {
		return trackerrors.ErrNotAuthenticated
	}
	return nil
}

func (c *core) uid() int64 { return c.session.UID() }

// atomic runs fn against a core bound to a transactional store view, so
// cross-controller calls inside fn stay within one transaction.
func (c *core) atomic(fn func(*core) error) error {
	return c.store.Atomic(func(s storage.Store) error {
		return fn(&core{store: s, session: c.session})
	})
}

// Sibling views for cross-controller calls.
func (c *core) tasks() *TaskController       { return &TaskController{c} }
func (c *core) plans() *PlanController       { return &PlanController{c} }
func (c *core) users() *UserController       { return &UserController{c} }
func (c *core) projects() *ProjectController { return &ProjectController{c} }
