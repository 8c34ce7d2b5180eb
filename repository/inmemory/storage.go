package storage

import (
	"context"
	"sync"
	"time"

	"taskdeck/internal/domain/errors"
	"taskdeck/internal/domain/models"

	"github.com/google/uuid"
)

// Storage keeps one document per user with the task list and notes blob
// embedded, mirroring what the database store persists as JSONB.
type Storage struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewStorage() *Storage {
	return &Storage{
		users: make(map[string]models.User),
	}
}

func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return errors.ErrUserAlreadyExists
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Tasks == nil {
		user.Tasks = []models.Task{}
	}
	s.users[user.ID] = *user
	return nil
}

func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, exists := s.users[id]
	if !exists {
		return nil, errors.ErrUserNotFound
	}
	return &user, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, errors.ErrUserNotFound
}

func (s *Storage) SetLastLogin(ctx context.Context, id string, when time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, exists := s.users[id]
	if !exists {
		return errors.ErrUserNotFound
	}
	user.LastLogin = when
	s.users[id] = user
	return nil
}

func (s *Storage) AddTask(ctx context.Context, userID string, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, exists := s.users[userID]
	if !exists {
		return errors.ErrUserNotFound
	}
	task.ID = uuid.New().String()
	user.Tasks = append(user.Tasks, *task)
	s.users[userID] = user
	return nil
}

func (s *Storage) UpdateTask(ctx context.Context, userID string, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, exists := s.users[userID]
	if !exists {
		return errors.ErrUserNotFound
	}
	for i := range user.Tasks {
		if user.Tasks[i].ID == task.ID {
			user.Tasks[i] = *task
			s.users[userID] = user
			return nil
		}
	}
	return errors.ErrTaskNotFound
}

func (s *Storage) DeleteTask(ctx context.Context, userID, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, exists := s.users[userID]
	if !exists {
		return errors.ErrUserNotFound
	}
	for i := range user.Tasks {
		if user.Tasks[i].ID == taskID {
			user.Tasks = append(user.Tasks[:i], user.Tasks[i+1:]...)
			s.users[userID] = user
			return nil
		}
	}
	return errors.ErrTaskNotFound
}

func (s *Storage) GetNotes(ctx context.Context, userID string) (*models.Notes, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, exists := s.users[userID]
	if !exists {
		return nil, errors.ErrUserNotFound
	}
	if user.Notes == nil {
		return nil, nil
	}
	notes := *user.Notes
	return &notes, nil
}

func (s *Storage) SaveNotes(ctx context.Context, userID string, notes *models.Notes) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, exists := s.users[userID]
	if !exists {
		return errors.ErrUserNotFound
	}
	user.Notes = notes
	s.users[userID] = user
	return nil
}
