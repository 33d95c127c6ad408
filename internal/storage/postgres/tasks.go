package postgres

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
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
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

	var tid int64
	err := s.q.QueryRow(`INSERT INTO task (uid, pid, parent_tid, title, description,
		supposed_start, supposed_end, deadline, priority, status,
		notify_start, notify_end, notify_deadline)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING tid`,
		task.UID, task.PID, nullInt64(task.ParentTID),
		task.Title, task.Description,
		nullInt64(task.SupposedStart), nullInt64(task.SupposedEnd), nullInt64(task.Deadline),
		int(task.Priority), int(task.Status),
		task.NotifyStart, task.NotifyEnd, task.NotifyDeadline).Scan(&tid)
	if err != nil {
		return 0, fmt.Errorf("failed to save task: %w", err)
	}
	return tid, nil
}

func (s *Store) GetTask(tid int64) (*models.Task, error) {
	row := s.q.QueryRow(`SELECT `+taskColumns+` FROM task WHERE tid = $1`, tid)
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
	res, err := s.q.Exec(`UPDATE task SET uid = $1, pid = $2, parent_tid = $3,
		title = $4, description = $5,
		supposed_start = $6, supposed_end = $7, deadline = $8,
		priority = $9, status = $10,
		notify_start = $11, notify_end = $12, notify_deadline = $13
		WHERE tid = $14`,
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

		rows, err := s.q.Query(`SELECT tid FROM task WHERE parent_tid = $1`, id)
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

		if _, err := s.q.Exec(`DELETE FROM task WHERE tid = $1`, id); err != nil {
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

// buildTaskFilter numbers its placeholders on the fly, so conditions can
// be composed in any order.
func buildTaskFilter(f storage.TaskFilter) ([]string, []any) {
	var where []string
	var args []any

	arg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.TID != nil {
		where = append(where, "tid = "+arg(*f.TID))
	}
	if f.PID != nil {
		where = append(where, "pid = "+arg(*f.PID))
	}
	if f.UID != nil {
		where = append(where, "uid = "+arg(*f.UID))
	}
	if f.ParentTID != nil {
		where = append(where, "parent_tid = "+arg(*f.ParentTID))
	}
	if f.Priority != nil {
		where = append(where, "priority = "+arg(int(*f.Priority)))
	}
	if f.Status != nil {
		where = append(where, "status = "+arg(int(*f.Status)))
	}
	if f.NotifyStart != nil {
		where = append(where, "notify_start = "+arg(*f.NotifyStart))
	}
	if f.NotifyEnd != nil {
		where = append(where, "notify_end = "+arg(*f.NotifyEnd))
	}
	if f.NotifyDeadline != nil {
		where = append(where, "notify_deadline = "+arg(*f.NotifyDeadline))
	}
	if f.AnyNotify {
		where = append(where, "(notify_start OR notify_end OR notify_deadline)")
	}
	if f.NotCompleted {
		where = append(where, "status != "+arg(int(models.StatusCompleted)))
	}
	if f.ToTime != nil {
		t := arg(*f.ToTime)
		where = append(where, fmt.Sprintf(`((supposed_start IS NOT NULL AND supposed_start < %[1]s)
			OR (supposed_end IS NOT NULL AND supposed_end < %[1]s)
			OR (deadline IS NOT NULL AND deadline < %[1]s))`, t))
	}
	if f.OverdueBy != nil {
		t := arg(*f.OverdueBy)
		where = append(where, fmt.Sprintf(`(((supposed_end IS NOT NULL AND supposed_end < %[1]s)
				OR (deadline IS NOT NULL AND deadline < %[1]s))
			AND (supposed_start IS NULL OR supposed_start < %[1]s))`, t))
	}
	if len(f.Range) > 0 {
		r := f.Range.Pair()
		end := arg(r.End())
		start := arg(r.Start())
		where = append(where, fmt.Sprintf(`(
			(supposed_end IS NULL AND deadline IS NULL AND supposed_start <= %[1]s)
			OR (supposed_start IS NULL AND ((supposed_end IS NOT NULL AND supposed_end >= %[2]s)
				OR (deadline IS NOT NULL AND deadline >= %[2]s)))
			OR (supposed_start <= %[1]s AND ((supposed_end IS NOT NULL AND supposed_end >= %[2]s)
				OR (deadline IS NOT NULL AND deadline >= %[2]s))))`, end, start))
	}
	if f.Timeless {
		where = append(where, "supposed_start IS NULL AND supposed_end IS NULL AND deadline IS NULL")
	}
	return where, args
}
