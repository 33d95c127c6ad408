package storage

import "github.com/avoronkov/tasktracker/internal/models"

// Store is the root storage collaborator. Atomic runs fn against a view
// of the store inside one transaction boundary; multi-step mutations
// (repeat edits, renumbering, cascading deletes) must go through it so a
// mid-sequence failure leaves no partial writes.
type Store interface {
	Init() error
	Close() error

	Tasks() TaskStore
	Plans() PlanStore
	Users() UserStore
	Projects() ProjectStore

	Atomic(fn func(Store) error) error
}

// TaskStore persists tasks. Lookups return nil (no error) when the row
// is absent; mutations report failure when they did not affect exactly
// one row.
type TaskStore interface {
	// SaveTask inserts the task and returns the assigned id.
	SaveTask(task *models.Task) (int64, error)
	GetTask(tid int64) (*models.Task, error)
	FindTasks(f TaskFilter) ([]models.Task, error)
	UpdateTask(task *models.Task) error
	// DeleteTask removes the task and all its descendants.
	DeleteTask(tid int64) error
}

// TaskFilter is a conjunction of predicates; nil fields do not constrain.
type TaskFilter struct {
	TID       *int64
	PID       *int64
	UID       *int64
	ParentTID *int64

	Priority *models.Priority
	Status   *models.Status

	NotifyStart    *bool
	NotifyEnd      *bool
	NotifyDeadline *bool

	// AnyNotify selects tasks with at least one notification flag set.
	AnyNotify bool
	// NotCompleted selects pending, active and overdue tasks.
	NotCompleted bool
	// ToTime selects tasks with any window field before the instant.
	ToTime *int64
	// OverdueBy selects tasks whose resolved window has entirely passed
	// the instant.
	OverdueBy *int64
	// Range selects tasks whose window overlaps [Range.Start, Range.End].
	Range models.TimeRange
	// Timeless selects tasks with no window fields at all.
	Timeless bool
}

// PlanStore persists plans and their per-occurrence overrides.
type PlanStore interface {
	// SavePlan inserts the plan (and any pre-populated overrides) and
	// returns the assigned id.
	SavePlan(plan *models.Plan) (int64, error)
	GetPlan(planID int64) (*models.Plan, error)
	// GetPlanByTemplateTask resolves the plan whose template is tid.
	GetPlanByTemplateTask(tid int64) (*models.Plan, error)
	// GetPlanByEditedTask resolves the plan owning the edited occurrence
	// backed by tid.
	GetPlanByEditedTask(tid int64) (*models.Plan, error)
	ListPlans() ([]models.Plan, error)
	// UpdatePlan rewrites shift and end. Override renumbering is the
	// controller's job.
	UpdatePlan(plan *models.Plan) error
	DeletePlan(planID int64) error

	SaveOverride(planID int64, o models.Override) error
	DeleteOverride(planID int64, number int) error
	ListOverrides(planID int64) ([]models.Override, error)
}

// UserStore persists users.
type UserStore interface {
	SaveUser(user *models.User) (int64, error)
	GetUser(uid int64) (*models.User, error)
	GetUserByLogin(login string) (*models.User, error)
	ListUsers() ([]models.User, error)
	UpdateUser(user *models.User) error
	DeleteUser(uid int64) error
}

// ProjectStore persists projects and membership relations.
type ProjectStore interface {
	SaveProject(project *models.Project) (int64, error)
	GetProject(pid int64) (*models.Project, error)
	// ListProjectsForUser returns every project uid participates in, as
	// creator, admin or guest.
	ListProjectsForUser(uid int64) ([]models.Project, error)
	UpdateProject(project *models.Project) error
	DeleteProject(pid int64) error

	AddMember(pid, uid int64, kind models.UserKind) error
	RemoveMember(pid, uid int64, kind models.UserKind) error
}
