package postgres

import (
	"database/sql"
	"fmt"

	"github.com/avoronkov/tasktracker/internal/models"
)

func (s *Store) SaveProject(project *models.Project) (int64, error) {
	var pid int64
	err := s.q.QueryRow(`INSERT INTO project (creator, name) VALUES ($1, $2) RETURNING pid`,
		project.Creator, project.Name).Scan(&pid)
	if err != nil {
		return 0, fmt.Errorf("failed to save project: %w", err)
	}
	for _, uid := range project.Admins {
		if err := s.AddMember(pid, uid, models.UserKindAdmin); err != nil {
			return 0, err
		}
	}
	for _, uid := range project.Guests {
		if err := s.AddMember(pid, uid, models.UserKindGuest); err != nil {
			return 0, err
		}
	}
	return pid, nil
}

func (s *Store) GetProject(pid int64) (*models.Project, error) {
	row := s.q.QueryRow(`SELECT pid, creator, name FROM project WHERE pid = $1`, pid)
	var p models.Project
	err := row.Scan(&p.PID, &p.Creator, &p.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project %d: %w", pid, err)
	}
	if err := s.loadMembers(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListProjectsForUser(uid int64) ([]models.Project, error) {
	rows, err := s.q.Query(`SELECT DISTINCT p.pid FROM project p
		LEFT JOIN project_member m ON m.pid = p.pid
		WHERE p.creator = $1 OR m.uid = $1
		ORDER BY p.pid`, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects for user %d: %w", uid, err)
	}
	defer rows.Close()

	var pids []int64
	for rows.Next() {
		var pid int64
		if err := rows.Scan(&pid); err != nil {
			return nil, err
		}
		pids = append(pids, pid)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var projects []models.Project
	for _, pid := range pids {
		p, err := s.GetProject(pid)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, nil
}

func (s *Store) UpdateProject(project *models.Project) error {
	res, err := s.q.Exec(`UPDATE project SET creator = $1, name = $2 WHERE pid = $3`,
		project.Creator, project.Name, project.PID)
	if err != nil {
		return fmt.Errorf("failed to update project %d: %w", project.PID, err)
	}
	return requireOneRow(res, "project", project.PID)
}

func (s *Store) DeleteProject(pid int64) error {
	if _, err := s.q.Exec(`DELETE FROM project_member WHERE pid = $1`, pid); err != nil {
		return fmt.Errorf("failed to delete members of project %d: %w", pid, err)
	}
	res, err := s.q.Exec(`DELETE FROM project WHERE pid = $1`, pid)
	if err != nil {
		return fmt.Errorf("failed to delete project %d: %w", pid, err)
	}
	return requireOneRow(res, "project", pid)
}

func (s *Store) AddMember(pid, uid int64, kind models.UserKind) error {
	_, err := s.q.Exec(`INSERT INTO project_member (pid, uid, kind) VALUES ($1, $2, $3)`,
		pid, uid, int(kind))
	if err != nil {
		return fmt.Errorf("failed to add member %d to project %d: %w", uid, pid, err)
	}
	return nil
}

func (s *Store) RemoveMember(pid, uid int64, kind models.UserKind) error {
	res, err := s.q.Exec(`DELETE FROM project_member WHERE pid = $1 AND uid = $2 AND kind = $3`,
		pid, uid, int(kind))
	if err != nil {
		return fmt.Errorf("failed to remove member %d from project %d: %w", uid, pid, err)
	}
	return requireOneRow(res, "project member", uid)
}

func (s *Store) loadMembers(p *models.Project) error {
	rows, err := s.q.Query(`SELECT uid, kind FROM project_member WHERE pid = $1 ORDER BY uid`, p.PID)
	if err != nil {
		return fmt.Errorf("failed to query members of project %d: %w", p.PID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var uid int64
		var kind int
		if err := rows.Scan(&uid, &kind); err != nil {
			return err
		}
		if models.UserKind(kind) == models.UserKindAdmin {
			p.Admins = append(p.Admins, uid)
		} else {
			p.Guests = append(p.Guests, uid)
		}
	}
	return rows.Err()
}
