package db

import (
	"context"
	"log"
	"time"

	"taskdeck/internal/domain/errors"
	"taskdeck/internal/domain/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const opTimeout = 15 * time.Second

// Storage persists one row per user: scalar account columns plus the task
// list and notes blob as JSONB documents. Task mutations are plain
// read-modify-write cycles on the tasks document; the last writer wins.
type Storage struct {
	pool *pgxpool.Pool

	qCreateUser     string
	qGetUserByID    string
	qGetUserByEmail string
	qSetLastLogin   string
	qGetTasks       string
	qSaveTasks      string
	qGetNotes       string
	qSaveNotes      string
}

// NewStorage connects a pgx pool once at startup; the pool handle is owned
// by the caller's lifecycle and shared by every handler.
func NewStorage(ctx context.Context, connStr string) (*Storage, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		log.Println("[ERROR] failed to create connection pool:", err)
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		log.Println("[ERROR] failed to reach database:", err)
		return nil, errors.ErrDatabaseConnection
	}

	s := &Storage{
		pool:            pool,
		qCreateUser:     `INSERT INTO users (id, name, email, password, created_at, tasks) VALUES ($1, $2, $3, $4, $5, '[]')`,
		qGetUserByID:    `SELECT id, name, email, password, created_at, last_login, tasks, notes FROM users WHERE id = $1`,
		qGetUserByEmail: `SELECT id, name, email, password, created_at, last_login, tasks, notes FROM users WHERE email = $1`,
		qSetLastLogin:   `UPDATE users SET last_login = $1 WHERE id = $2`,
		qGetTasks:       `SELECT tasks FROM users WHERE id = $1`,
		qSaveTasks:      `UPDATE users SET tasks = $1 WHERE id = $2`,
		qGetNotes:       `SELECT notes FROM users WHERE id = $1`,
		qSaveNotes:      `UPDATE users SET notes = $1 WHERE id = $2`,
	}
	log.Println("[SUCCESS] database connection pool established")
	return s, nil
}

func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	_, err := s.pool.Exec(ctx, s.qCreateUser, user.ID, user.Name, user.Email, user.Password, user.CreatedAt)
	if err != nil {
		log.Println("[ERROR] failed to create user:", err)
		return errors.ErrUserAlreadyExists
	}
	if user.Tasks == nil {
		user.Tasks = []models.Task{}
	}
	log.Println("[SUCCESS] user created:", user.ID)
	return nil
}

func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return s.scanUser(s.pool.QueryRow(ctx, s.qGetUserByID, id))
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return s.scanUser(s.pool.QueryRow(ctx, s.qGetUserByEmail, email))
}

func (s *Storage) scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	var lastLogin *time.Time
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.CreatedAt, &lastLogin, &user.Tasks, &user.Notes); err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.ErrUserNotFound
		}
		log.Println("[ERROR] failed to read user:", err)
		return nil, err
	}
	if lastLogin != nil {
		user.LastLogin = *lastLogin
	}
	if user.Tasks == nil {
		user.Tasks = []models.Task{}
	}
	return user, nil
}

func (s *Storage) SetLastLogin(ctx context.Context, id string, when time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	ct, err := s.pool.Exec(ctx, s.qSetLastLogin, when, id)
	if err != nil {
		log.Println("[ERROR] failed to update last login:", err)
		return err
	}
	if ct.RowsAffected() == 0 {
		return errors.ErrUserNotFound
	}
	return nil
}

func (s *Storage) AddTask(ctx context.Context, userID string, task *models.Task) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	tasks, err := s.loadTasks(ctx, userID)
	if err != nil {
		return err
	}
	task.ID = uuid.New().String()
	tasks = append(tasks, *task)
	if err := s.saveTasks(ctx, userID, tasks); err != nil {
		return err
	}
	log.Println("[SUCCESS] task created:", task.ID)
	return nil
}

func (s *Storage) UpdateTask(ctx context.Context, userID string, task *models.Task) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	tasks, err := s.loadTasks(ctx, userID)
	if err != nil {
		return err
	}
	for i := range tasks {
		if tasks[i].ID == task.ID {
			tasks[i] = *task
			return s.saveTasks(ctx, userID, tasks)
		}
	}
	log.Println("[ERROR] task to update not found:", task.ID)
	return errors.ErrTaskNotFound
}

func (s *Storage) DeleteTask(ctx context.Context, userID, taskID string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	tasks, err := s.loadTasks(ctx, userID)
	if err != nil {
		return err
	}
	for i := range tasks {
		if tasks[i].ID == taskID {
			tasks = append(tasks[:i], tasks[i+1:]...)
			return s.saveTasks(ctx, userID, tasks)
		}
	}
	log.Println("[ERROR] task to delete not found:", taskID)
	return errors.ErrTaskNotFound
}

func (s *Storage) GetNotes(ctx context.Context, userID string) (*models.Notes, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	var notes *models.Notes
	if err := s.pool.QueryRow(ctx, s.qGetNotes, userID).Scan(&notes); err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.ErrUserNotFound
		}
		log.Println("[ERROR] failed to read notes:", err)
		return nil, err
	}
	return notes, nil
}

func (s *Storage) SaveNotes(ctx context.Context, userID string, notes *models.Notes) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	ct, err := s.pool.Exec(ctx, s.qSaveNotes, notes, userID)
	if err != nil {
		log.Println("[ERROR] failed to save notes:", err)
		return err
	}
	if ct.RowsAffected() == 0 {
		return errors.ErrUserNotFound
	}
	return nil
}

func (s *Storage) loadTasks(ctx context.Context, userID string) ([]models.Task, error) {
	var tasks []models.Task
	if err := s.pool.QueryRow(ctx, s.qGetTasks, userID).Scan(&tasks); err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.ErrUserNotFound
		}
		log.Println("[ERROR] failed to read tasks:", err)
		return nil, err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

func (s *Storage) saveTasks(ctx context.Context, userID string, tasks []models.Task) error {
	ct, err := s.pool.Exec(ctx, s.qSaveTasks, tasks, userID)
	if err != nil {
		log.Println("[ERROR] failed to save tasks:", err)
		return err
	}
	if ct.RowsAffected() == 0 {
		return errors.ErrUserNotFound
	}
	return nil
}
