package storage

import (
	"context"
	"testing"
	"time"

	"taskdeck/internal/domain/errors"
	"taskdeck/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, s *Storage) *models.User {
	t.Helper()
	user := &models.User{
		Name:      "Test User",
		Email:     "test@example.com",
		Password:  "hashed",
		CreatedAt: time.Now(),
	}
	require.NoError(t, s.CreateUser(context.Background(), user))
	require.NotEmpty(t, user.ID)
	return user
}

func TestCreateUser(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*Storage)
		user  models.User
		want  struct {
			err error
		}
	}{
		{
			name:  "creates a user and assigns an id",
			setup: func(s *Storage) {},
			user:  models.User{Name: "A", Email: "a@example.com", Password: "x"},
			want:  struct{ err error }{err: nil},
		},
		{
			name: "duplicate email rejected",
			setup: func(s *Storage) {
				_ = s.CreateUser(context.Background(), &models.User{Name: "B", Email: "dup@example.com", Password: "x"})
			},
			user: models.User{Name: "C", Email: "dup@example.com", Password: "y"},
			want: struct{ err error }{err: errors.ErrUserAlreadyExists},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStorage()
			tt.setup(s)

			user := tt.user
			err := s.CreateUser(context.Background(), &user)

			if tt.want.err != nil {
				assert.Equal(t, tt.want.err, err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, user.ID)
			assert.NotNil(t, user.Tasks, "task list starts as an empty document array")

			loaded, err := s.GetUserByID(context.Background(), user.ID)
			require.NoError(t, err)
			assert.Equal(t, user.Email, loaded.Email)
		})
	}
}

func TestGetUserByEmail(t *testing.T) {
	s := NewStorage()
	user := seedUser(t, s)

	loaded, err := s.GetUserByEmail(context.Background(), user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, loaded.ID)

	_, err = s.GetUserByEmail(context.Background(), "ghost@example.com")
	assert.Equal(t, errors.ErrUserNotFound, err)
}

func TestSetLastLogin(t *testing.T) {
	s := NewStorage()
	user := seedUser(t, s)

	when := time.Now()
	require.NoError(t, s.SetLastLogin(context.Background(), user.ID, when))

	loaded, err := s.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, loaded.LastLogin.Equal(when))

	assert.Equal(t, errors.ErrUserNotFound, s.SetLastLogin(context.Background(), "missing", when))
}

func TestTaskLifecycle(t *testing.T) {
	s := NewStorage()
	user := seedUser(t, s)
	ctx := context.Background()

	task := models.Task{Description: "write tests", Status: "pending", Priority: "low"}
	require.NoError(t, s.AddTask(ctx, user.ID, &task))
	require.NotEmpty(t, task.ID, "store assigns the task id on insert")

	loaded, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Tasks, 1)
	assert.Equal(t, "write tests", loaded.Tasks[0].Description)

	task.Status = "completed"
	task.Description = "write more tests"
	require.NoError(t, s.UpdateTask(ctx, user.ID, &task))

	loaded, err = s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Tasks, 1)
	assert.Equal(t, "completed", loaded.Tasks[0].Status)
	assert.Equal(t, "write more tests", loaded.Tasks[0].Description)

	require.NoError(t, s.DeleteTask(ctx, user.ID, task.ID))
	loaded, err = s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.Tasks)
}

func TestTaskErrors(t *testing.T) {
	s := NewStorage()
	user := seedUser(t, s)
	ctx := context.Background()

	tests := []struct {
		name string
		run  func() error
		want struct {
			err error
		}
	}{
		{
			name: "add task for missing user",
			run: func() error {
				return s.AddTask(ctx, "missing", &models.Task{Description: "x"})
			},
			want: struct{ err error }{err: errors.ErrUserNotFound},
		},
		{
			name: "update missing task",
			run: func() error {
				return s.UpdateTask(ctx, user.ID, &models.Task{ID: "missing", Description: "x"})
			},
			want: struct{ err error }{err: errors.ErrTaskNotFound},
		},
		{
			name: "delete missing task",
			run: func() error {
				return s.DeleteTask(ctx, user.ID, "missing")
			},
			want: struct{ err error }{err: errors.ErrTaskNotFound},
		},
		{
			name: "delete leaves list unchanged on error",
			run: func() error {
				task := models.Task{Description: "keep me"}
				if err := s.AddTask(ctx, user.ID, &task); err != nil {
					return err
				}
				if err := s.DeleteTask(ctx, user.ID, "missing"); err != errors.ErrTaskNotFound {
					return err
				}
				loaded, err := s.GetUserByID(ctx, user.ID)
				if err != nil {
					return err
				}
				if len(loaded.Tasks) != 1 {
					return errors.ErrInternalServer
				}
				return errors.ErrTaskNotFound
			},
			want: struct{ err error }{err: errors.ErrTaskNotFound},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want.err, tt.run())
		})
	}
}

func TestNotes(t *testing.T) {
	s := NewStorage()
	user := seedUser(t, s)
	ctx := context.Background()

	notes, err := s.GetNotes(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, notes, "unset notes come back nil")

	saved := &models.Notes{Content: "<p>ideas</p>", LastUpdate: time.Now()}
	require.NoError(t, s.SaveNotes(ctx, user.ID, saved))

	notes, err = s.GetNotes(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, notes)
	assert.Equal(t, "<p>ideas</p>", notes.Content)

	// Saves replace the blob wholesale.
	require.NoError(t, s.SaveNotes(ctx, user.ID, &models.Notes{Content: "new", LastUpdate: time.Now()}))
	notes, err = s.GetNotes(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", notes.Content)

	_, err = s.GetNotes(ctx, "missing")
	assert.Equal(t, errors.ErrUserNotFound, err)
	assert.Equal(t, errors.ErrUserNotFound, s.SaveNotes(ctx, "missing", saved))
}
