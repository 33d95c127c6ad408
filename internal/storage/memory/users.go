package memory

import (
	"fmt"
	"sort"

	"github.com/avoronkov/tasktracker/internal/models"
)

func (s *Store) SaveUser(user *models.User) (int64, error) {
	u := *user
	if u.UID == 0 {
		u.UID = s.nextUID
	}
	if u.UID >= s.nextUID {
		s.nextUID = u.UID + 1
	}
	if _, ok := s.users[u.UID]; ok {
		return 0, fmt.Errorf("user %d already exists", u.UID)
	}
	s.users[u.UID] = &u
	return u.UID, nil
}

func (s *Store) GetUser(uid int64) (*models.User, error) {
	u, ok := s.users[uid]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (s *Store) GetUserByLogin(login string) (*models.User, error) {
	for _, u := range s.users {
		if u.Login == login {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (s *Store) ListUsers() ([]models.User, error) {
	ids := make([]int64, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []models.User
	for _, id := range ids {
		out = append(out, *s.users[id])
	}
	return out, nil
}

func (s *Store) UpdateUser(user *models.User) error {
	if _, ok := s.users[user.UID]; !ok {
		return fmt.Errorf("user %d does not exist", user.UID)
	}
	c := *user
	s.users[user.UID] = &c
	return nil
}

func (s *Store) DeleteUser(uid int64) error {
	if _, ok := s.users[uid]; !ok {
		return fmt.Errorf("user %d does not exist", uid)
	}
	delete(s.users, uid)
	return nil
}
