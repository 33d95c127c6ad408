package memory

import (
	"fmt"
	"sort"

	"github.com/avoronkov/tasktracker/internal/models"
)

func cloneProject(p *models.Project) *models.Project {
	c := *p
	c.Admins = append([]int64(nil), p.Admins...)
	c.Guests = append([]int64(nil), p.Guests...)
	return &c
}

func (s *Store) SaveProject(project *models.Project) (int64, error) {
	p := cloneProject(project)
	if p.PID == 0 {
		p.PID = s.nextPID
	}
	if p.PID >= s.nextPID {
		s.nextPID = p.PID + 1
	}
	if _, ok := s.projects[p.PID]; ok {
		return 0, fmt.Errorf("project %d already exists", p.PID)
	}
	s.projects[p.PID] = p
	return p.PID, nil
}

func (s *Store) GetProject(pid int64) (*models.Project, error) {
	p, ok := s.projects[pid]
	if !ok {
		return nil, nil
	}
	return cloneProject(p), nil
}

func (s *Store) ListProjectsForUser(uid int64) ([]models.Project, error) {
	ids := make([]int64, 0, len(s.projects))
	for id := range s.projects {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []models.Project
	for _, id := range ids {
		p := s.projects[id]
		if p.KindOf(uid) != nil {
			out = append(out, *cloneProject(p))
		}
	}
	return out, nil
}

func (s *Store) UpdateProject(project *models.Project) error {
	if _, ok := s.projects[project.PID]; !ok {
		return fmt.Errorf("project %d does not exist", project.PID)
	}
	s.projects[project.PID] = cloneProject(project)
	return nil
}

func (s *Store) DeleteProject(pid int64) error {
	if _, ok := s.projects[pid]; !ok {
		return fmt.Errorf("project %d does not exist", pid)
	}
	delete(s.projects, pid)
	return nil
}

func (s *Store) AddMember(pid, uid int64, kind models.UserKind) error {
	p, ok := s.projects[pid]
	if !ok {
		return fmt.Errorf("project %d does not exist", pid)
	}
	if kind == models.UserKindAdmin {
		p.Admins = append(p.Admins, uid)
	} else {
		p.Guests = append(p.Guests, uid)
	}
	return nil
}

func (s *Store) RemoveMember(pid, uid int64, kind models.UserKind) error {
	p, ok := s.projects[pid]
	if !ok {
		return fmt.Errorf("project %d does not exist", pid)
	}
	remove := func(uids []int64) []int64 {
		for i, u := range uids {
			if u == uid {
				return append(uids[:i], uids[i+1:]...)
			}
		}
		return uids
	}
	if kind == models.UserKindAdmin {
		p.Admins = remove(p.Admins)
	} else {
		p.Guests = remove(p.Guests)
	}
	return nil
}
