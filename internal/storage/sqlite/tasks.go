package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/avoronkov/tasktracker/internal/models"
	"github.com/avoronkov/tasktracker/internal/storage"
)

const taskColumns = `tid, uid, pid, parent_tid, title, description,
	supposed_start, supposed_end, deadline, priority, status,
	notify_start, notify_end, notify_deadline`

func (s *Store) SaveTask(task *models.Task) (int64, error) {
	if task.TID != 0 {
		_, err := s.q.Exec(`INSERT INTO task (`+taskColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			task.TID, task.UID, task.PID, nullInt64(task.ParentTID),
			task.Title, task.Description,
			nullInt64(task.SupposedStart), nullInt64(task.SupposedEnd), nullInt64(task.Deadline),
			int(task.Priority), int(task.Status),
			task.NotifyStart, task.NotifyEnd, task.NotifyDeadline)
		if err != nil {
			return 0, fmt.Errorf("failed to save task: %w", err)
		}
		return task.TID, nil
	}

	res, err := s.q.Exec(`INSERT INTO task (uid, pid, parent_tid, title, description,
		supposed_start, supposed_end, deadline, priority, status,
		notify_start, notify_end, notify_deadline)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.UID, task.PID, nullInt64(task.ParentTID),
		task.Title, task.Description,
		nullInt64(task.SupposedStart), nullInt64(task.SupposedEnd), nullInt64(task.Deadline),
		int(task.Priority), int(task.Status),
		task.NotifyStart, task.NotifyEnd, task.NotifyDeadline)
	if err != nil {
		return 0, fmt.Errorf("failed to save task: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) GetTask(tid int64) (*models.Task, error) {
	row := s.q.QueryRow(`SELECT `+taskColumns+` FROM task WHERE tid = ?`, tid)
	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task %d: %w", tid, err)
	}
	return task, nil
}

func (s *Store) FindTasks(f storage.TaskFilter) ([]models.Task, error) {
	where, args := buildTaskFilter(f)
	query := `SELECT ` + taskColumns + ` FROM task`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY tid"

	rows, err := s.q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (s *Store) UpdateTask(task *models.Task) error {
	res, err := s.q.Exec(`UPDATE task SET uid = ?, pid = ?, parent_tid = ?,
		title = ?, description = ?,
		supposed_start = ?, supposed_end = ?, deadline = ?,
		priority = ?, status = ?,
		notify_start = ?, notify_end = ?, notify_deadline = ?
		WHERE tid = ?`,
		task.UID, task.PID, nullInt64(task.ParentTID),
		task.Title, task.Description,
		nullInt64(task.SupposedStart), nullInt64(task.SupposedEnd), nullInt64(task.Deadline),
		int(task.Priority), int(task.Status),
		task.NotifyStart, task.NotifyEnd, task.NotifyDeadline,
		task.TID)
	if err != nil {
		return fmt.Errorf("failed to update task %d: %w", task.TID, err)
	}
	return requireOneRow(res, "task", task.TID)
}

// DeleteTask removes the task together with its whole child tree.
func (s *Store) DeleteTask(tid int64) error {
	pending := []int64{tid}
	for len(pending) > 0 {
		id := pending[0]
		pending = pending[1:]

		rows, err := s.q.Query(`SELECT tid FROM task WHERE parent_tid = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to query subtasks of %d: %w", id, err)
		}
		for rows.Next() {
			var child int64
			if err := rows.Scan(&child); err != nil {
				rows.Close()
				return err
			}
			pending = append(pending, child)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()

		if _, err := s.q.Exec(`DELETE FROM task WHERE tid = ?`, id); err != nil {
			return fmt.Errorf("failed to delete task %d: %w", id, err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var task models.Task
	var parent, start, end, deadline sql.NullInt64
	var priority, status int
	err := row.Scan(&task.TID, &task.UID, &task.PID, &parent,
		&task.Title, &task.Description,
		&start, &end, &deadline, &priority, &status,
		&task.NotifyStart, &task.NotifyEnd, &task.NotifyDeadline)
	if err != nil {
		return nil, err
	}
	task.ParentTID = int64Ptr(parent)
	task.SupposedStart = int64Ptr(start)
	task.SupposedEnd = int64Ptr(end)
	task.Deadline = int64Ptr(deadline)
	task.Priority = models.Priority(priority)
	task.Status = models.Status(status)
	return &task, nil
}

func buildTaskFilter(f storage.TaskFilter) ([]string, []any) {
	var where []string
	var args []any

	eq := func(column string, value any) {
		where = append(where, column+" = ?")
		args = append(args, value)
	}
	if f.TID != nil {
		eq("tid", *f.TID)
	}
	if f.PID != nil {
		eq("pid", *f.PID)
	}
	if f.UID != nil {
		eq("uid", *f.UID)
	}
	if f.ParentTID != nil {
		eq("parent_tid", *f.ParentTID)
	}
	if f.Priority != nil {
		eq("priority", int(*f.Priority))
	}
	if f.Status != nil {
		eq("status", int(*f.Status))
	}
	if f.NotifyStart != nil {
		eq("notify_start", *f.NotifyStart)
	}
	if f.NotifyEnd != nil {
		eq("notify_end", *f.NotifyEnd)
	}
	if f.NotifyDeadline != nil {
		eq("notify_deadline", *f.NotifyDeadline)
	}
	if f.AnyNotify {
		where = append(where, "(notify_start OR notify_end OR notify_deadline)")
	}
	if f.NotCompleted {
		where = append(where, "status != ?")
		args = append(args, int(models.StatusCompleted))
	}
	if f.ToTime != nil {
		where = append(where, `((supposed_start IS NOT NULL AND supposed_start < ?)
			OR (supposed_end IS NOT NULL AND supposed_end < ?)
			OR (deadline IS NOT NULL AND deadline < ?))`)
		args = append(args, *f.ToTime, *f.ToTime, *f.ToTime)
	}
	if f.OverdueBy != nil {
		// Entirely passed: a window end already behind the instant, with
		// either no start at all or a started window.
		where = append(where, `(((supposed_end IS NOT NULL AND supposed_end < ?)
				OR (deadline IS NOT NULL AND deadline < ?))
			AND (supposed_start IS NULL OR supposed_start < ?))`)
		args = append(args, *f.OverdueBy, *f.OverdueBy, *f.OverdueBy)
	}
	if len(f.Range) > 0 {
		r := f.Range.Pair()
		where = append(where, `(
			(supposed_end IS NULL AND deadline IS NULL AND supposed_start <= ?)
			OR (supposed_start IS NULL AND ((supposed_end IS NOT NULL AND supposed_end >= ?)
				OR (deadline IS NOT NULL AND deadline >= ?)))
			OR (supposed_start <= ? AND ((supposed_end IS NOT NULL AND supposed_end >= ?)
				OR (deadline IS NOT NULL AND deadline >= ?))))`)
		args = append(args, r.End(), r.Start(), r.Start(), r.End(), r.Start(), r.Start())
	}
	if f.Timeless {
		where = append(where, "supposed_start IS NULL AND supposed_end IS NULL AND deadline IS NULL")
	}
	return where, args
}

func requireOneRow(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return fmt.Errorf("%s %d does not exist", entity, id)
	}
	return nil
}
