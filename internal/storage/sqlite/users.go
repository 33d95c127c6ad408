package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/avoronkov/tasktracker/internal/models"
)

func (s *Store) SaveUser(user *models.User) (int64, error) {
	res, err := s.q.Exec(`INSERT INTO user (login, online) VALUES (?, ?)`,
		user.Login, user.Online)
	if err != nil {
		return 0, fmt.Errorf("failed to save user: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) GetUser(uid int64) (*models.User, error) {
	row := s.q.QueryRow(`SELECT uid, login, online FROM user WHERE uid = ?`, uid)
	return scanUser(row)
}

func (s *Store) GetUserByLogin(login string) (*models.User, error) {
	row := s.q.QueryRow(`SELECT uid, login, online FROM user WHERE login = ?`, login)
	return scanUser(row)
}

func (s *Store) ListUsers() ([]models.User, error) {
	rows, err := s.q.Query(`SELECT uid, login, online FROM user ORDER BY uid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.UID, &u.Login, &u.Online); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) UpdateUser(user *models.User) error {
	res, err := s.q.Exec(`UPDATE user SET login = ?, online = ? WHERE uid = ?`,
		user.Login, user.Online, user.UID)
	if err != nil {
		return fmt.Errorf("failed to update user %d: %w", user.UID, err)
	}
	return requireOneRow(res, "user", user.UID)
}

func (s *Store) DeleteUser(uid int64) error {
	res, err := s.q.Exec(`DELETE FROM user WHERE uid = ?`, uid)
	if err != nil {
		return fmt.Errorf("failed to delete user %d: %w", uid, err)
	}
	return requireOneRow(res, "user", uid)
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.UID, &u.Login, &u.Online)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}
