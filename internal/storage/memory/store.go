// Package memory provides an in-memory Store used by tests and for
// ephemeral runs. Atomic snapshots the whole state and rolls back when
// the wrapped function fails.
package memory

import (
	"sort"

	"github.com/avoronkov/tasktracker/internal/models"
	"github.com/avoronkov/tasktracker/internal/storage"
)

type Store struct {
	nextTID    int64
	nextPlanID int64
	nextUID    int64
	nextPID    int64

	tasks     map[int64]*models.Task
	plans     map[int64]*models.Plan
	overrides map[int64][]models.Override
	users     map[int64]*models.User
	projects  map[int64]*models.Project
}

func New() *Store {
	s := &Store{}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.nextTID, s.nextPlanID, s.nextUID, s.nextPID = 1, 1, 1, 1
	s.tasks = map[int64]*models.Task{}
	s.plans = map[int64]*models.Plan{}
	s.overrides = map[int64][]models.Override{}
	s.users = map[int64]*models.User{}
	s.projects = map[int64]*models.Project{}
}

func (s *Store) Init() error  { return nil }
func (s *Store) Close() error { return nil }

func (s *Store) Tasks() storage.TaskStore       { return s }
func (s *Store) Plans() storage.PlanStore       { return s }
func (s *Store) Users() storage.UserStore       { return s }
func (s *Store) Projects() storage.ProjectStore { return s }

// Atomic runs fn and restores the pre-call state when it fails.
func (s *Store) Atomic(fn func(storage.Store) error) error {
	snap := s.snapshot()
	if err := fn(s); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	nextTID, nextPlanID, nextUID, nextPID int64

	tasks     map[int64]*models.Task
	plans     map[int64]*models.Plan
	overrides map[int64][]models.Override
	users     map[int64]*models.User
	projects  map[int64]*models.Project
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		nextTID:    s.nextTID,
		nextPlanID: s.nextPlanID,
		nextUID:    s.nextUID,
		nextPID:    s.nextPID,
		tasks:      map[int64]*models.Task{},
		plans:      map[int64]*models.Plan{},
		overrides:  map[int64][]models.Override{},
		users:      map[int64]*models.User{},
		projects:   map[int64]*models.Project{},
	}
	for id, t := range s.tasks {
		snap.tasks[id] = t.Clone()
	}
	for id, p := range s.plans {
		snap.plans[id] = p.Clone()
	}
	for id, ovr := range s.overrides {
		snap.overrides[id] = append([]models.Override(nil), ovr...)
	}
	for id, u := range s.users {
		c := *u
		snap.users[id] = &c
	}
	for id, p := range s.projects {
		c := *p
		c.Admins = append([]int64(nil), p.Admins...)
		c.Guests = append([]int64(nil), p.Guests...)
		snap.projects[id] = &c
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.nextTID, s.nextPlanID, s.nextUID, s.nextPID = snap.nextTID, snap.nextPlanID, snap.nextUID, snap.nextPID
	s.tasks, s.plans, s.overrides = snap.tasks, snap.plans, snap.overrides
	s.users, s.projects = snap.users, snap.projects
}

func sortedNumbers(overrides []models.Override) []int {
	numbers := make([]int, 0, len(overrides))
	for _, o := range overrides {
		numbers = append(numbers, o.Number)
	}
	sort.Ints(numbers)
	return numbers
}
