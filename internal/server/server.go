package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"taskdeck/internal/dashboard"
	"taskdeck/internal/domain/errors"
	"taskdeck/internal/domain/models"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator"
	"github.com/google/uuid"

	"golang.org/x/crypto/bcrypt"
)

// Repository is the user-document store: one record per user embedding the
// task list and notes blob.
type Repository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SetLastLogin(ctx context.Context, id string, when time.Time) error
	GetNotes(ctx context.Context, userID string) (*models.Notes, error)
	SaveNotes(ctx context.Context, userID string, notes *models.Notes) error
}

// TaskRepository mutates the task list embedded in a user's document. Task
// ids are assigned by the store on insert.
type TaskRepository interface {
	AddTask(ctx context.Context, userID string, task *models.Task) error
	UpdateTask(ctx context.Context, userID string, task *models.Task) error
	DeleteTask(ctx context.Context, userID, taskID string) error
}

type TaskAPI struct {
	httpSrv *http.Server
	users   Repository
	tasks   TaskRepository
	cfg     *Config
	valid   *validator.Validate
}

func NewTaskAPI(users Repository, tasks TaskRepository, cfg *Config) *TaskAPI {
	if users == nil || tasks == nil {
		return nil
	}
	if cfg == nil {
		cfg = &Config{}
	}

	httpSrv := http.Server{
		Addr: fmt.Sprintf("%s:%d", cfg.Addr, cfg.Port),
	}

	api := TaskAPI{
		httpSrv: &httpSrv,
		users:   users,
		tasks:   tasks,
		cfg:     cfg,
		valid:   validator.New(),
	}

	api.configRoutes()

	return &api
}

func (api *TaskAPI) Start() error {
	if api.httpSrv == nil {
		return errors.ErrInternalServer
	}
	if api.httpSrv.Addr == "" || api.httpSrv.Addr == ":0" {
		api.httpSrv.Addr = ":8080"
	}
	return api.httpSrv.ListenAndServe()
}

func (api *TaskAPI) Shutdown(ctx context.Context) error {
	if api.httpSrv == nil {
		return nil
	}
	return api.httpSrv.Shutdown(ctx)
}

func (api *TaskAPI) configRoutes() {
	router := gin.Default()
	router.Use(GzipResponseCompress())

	router.NoMethod(func(ctx *gin.Context) {
		ctx.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed", "success": false})
	})

	users := router.Group("/api/users")
	{
		users.POST("/register", api.register)
		users.POST("/login", api.login)
	}

	protected := users.Group("")
	protected.Use(AuthRequired(api.cfg.TokenSecret))
	{
		protected.POST("/logout", api.logout)
		protected.GET("/me", api.me)
		protected.GET("/dashboard", api.dashboard)
		protected.GET("/notes", api.getNotes)
		protected.PUT("/notes", api.saveNotes)
		protected.POST("/tasks", api.createTask)
		protected.PUT("/tasks/:taskId", api.updateTask)
		protected.PATCH("/tasks/:taskId/status", api.patchTaskStatus)
		protected.DELETE("/tasks/:taskId", api.deleteTask)
	}

	api.httpSrv.Handler = router
}

func (api *TaskAPI) register(ctx *gin.Context) {
	var req models.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorJSON(ctx, http.StatusBadRequest, errors.ErrBadRequest)
		return
	}
	if err := api.valid.Struct(req); err != nil {
		errorJSON(ctx, http.StatusBadRequest, validationErrorToErrorResponse(err))
		return
	}

	if existing, _ := api.users.GetUserByEmail(ctx, req.Email); existing != nil {
		errorJSON(ctx, http.StatusBadRequest, errors.ErrUserAlreadyExists)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		errorJSON(ctx, http.StatusInternalServerError, err)
		return
	}

	user := models.User{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Email:     req.Email,
		Password:  string(hash),
		CreatedAt: time.Now(),
		Tasks:     []models.Task{},
	}
	if err := api.users.CreateUser(ctx, &user); err != nil {
		errorJSON(ctx, http.StatusBadRequest, err)
		return
	}

	saved := user
	saved.Password = ""
	ctx.JSON(http.StatusCreated, gin.H{
		"message":   "User created",
		"success":   true,
		"savedUser": saved,
	})
}

func (api *TaskAPI) login(ctx *gin.Context) {
	var req models.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorJSON(ctx, http.StatusBadRequest, errors.ErrBadRequest)
		return
	}
	if err := api.valid.Struct(req); err != nil {
		errorJSON(ctx, http.StatusBadRequest, validationErrorToErrorResponse(err))
		return
	}

	user, err := api.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		errorJSON(ctx, http.StatusBadRequest, errors.ErrUserDoesNotExist)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		errorJSON(ctx, http.StatusUnauthorized, errors.ErrInvalidPassword)
		return
	}

	token, ttl, err := issueToken(api.cfg.TokenSecret, user.ID, user.Email, req.RememberMe)
	if err != nil {
		errorJSON(ctx, http.StatusInternalServerError, err)
		return
	}

	if err := api.users.SetLastLogin(ctx, user.ID, time.Now()); err != nil {
		errorJSON(ctx, http.StatusInternalServerError, err)
		return
	}

	ctx.SetCookie(tokenCookie, token, int(ttl.Seconds()), "/", "", false, true)
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"success": true,
	})
}

func (api *TaskAPI) logout(ctx *gin.Context) {
	ctx.SetCookie(tokenCookie, "", -1, "/", "", false, true)
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Logout successful",
		"success": true,
	})
}

// me returns the account without credential or audit fields, the same view
// the original profile endpoint exposed.
func (api *TaskAPI) me(ctx *gin.Context) {
	user, err := api.users.GetUserByID(ctx, currentUserID(ctx))
	if err != nil {
		errorJSON(ctx, http.StatusNotFound, errors.ErrUserNotFound)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "User found",
		"success": true,
		"user": gin.H{
			"name":  user.Name,
			"email": user.Email,
			"tasks": user.Tasks,
			"notes": user.Notes,
		},
	})
}

func (api *TaskAPI) dashboard(ctx *gin.Context) {
	user, err := api.users.GetUserByID(ctx, currentUserID(ctx))
	if err != nil {
		errorJSON(ctx, http.StatusNotFound, errors.ErrUserNotFound)
		return
	}

	snap := dashboard.Aggregate(user.Tasks, time.Now())
	ctx.JSON(http.StatusOK, gin.H{
		"success":       true,
		"stats":         snap.Stats,
		"recentTasks":   snap.RecentTasks,
		"upcomingTasks": snap.UpcomingTasks,
	})
}

func (api *TaskAPI) getNotes(ctx *gin.Context) {
	notes, err := api.users.GetNotes(ctx, currentUserID(ctx))
	if err != nil {
		errorJSON(ctx, http.StatusNotFound, errors.ErrUserNotFound)
		return
	}

	content := ""
	lastUpdated := time.Now()
	if notes != nil {
		content = notes.Content
		lastUpdated = notes.LastUpdate
	}
	ctx.JSON(http.StatusOK, gin.H{
		"success":     true,
		"notes":       content,
		"lastUpdated": lastUpdated.Format(time.RFC3339),
	})
}

// saveNotes overwrites the notes blob wholesale; no diffing, no history.
func (api *TaskAPI) saveNotes(ctx *gin.Context) {
	var req models.SaveNotesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorJSON(ctx, http.StatusBadRequest, errors.ErrBadRequest)
		return
	}
	if req.Notes == nil {
		errorJSON(ctx, http.StatusBadRequest, errors.ErrNotesRequired)
		return
	}

	notes := &models.Notes{
		Content:    *req.Notes,
		LastUpdate: time.Now(),
	}
	if err := api.users.SaveNotes(ctx, currentUserID(ctx), notes); err != nil {
		if err == errors.ErrUserNotFound {
			errorJSON(ctx, http.StatusNotFound, err)
			return
		}
		errorJSON(ctx, http.StatusInternalServerError, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Notes saved successfully",
		"notes":   notes,
	})
}

func (api *TaskAPI) createTask(ctx *gin.Context) {
	var req models.CreateTaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorJSON(ctx, http.StatusBadRequest, errors.ErrBadRequest)
		return
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		errorJSON(ctx, http.StatusBadRequest, errors.ErrDescriptionRequired)
		return
	}
	if err := api.valid.Struct(req); err != nil {
		errorJSON(ctx, http.StatusBadRequest, validationErrorToErrorResponse(err))
		return
	}

	userID := currentUserID(ctx)
	user, err := api.users.GetUserByID(ctx, userID)
	if err != nil {
		errorJSON(ctx, http.StatusNotFound, errors.ErrUserNotFound)
		return
	}

	now := time.Now()
	status := models.NormalizeStatus(req.Status)
	if status == "" {
		status = models.StatusPending
	}
	priority := req.Priority
	if priority == "" {
		priority = "low"
	}
	task := models.Task{
		Description: description,
		Status:      status,
		Priority:    priority,
		DueDate:     req.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := api.tasks.AddTask(ctx, userID, &task); err != nil {
		api.taskError(ctx, err)
		return
	}

	stats := dashboard.Aggregate(append(user.Tasks, task), now).Stats
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Task created successfully",
		"success": true,
		"task":    task,
		"stats":   stats,
	})
}

func (api *TaskAPI) updateTask(ctx *gin.Context) {
	taskID := ctx.Param("taskId")

	var req models.UpdateTaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorJSON(ctx, http.StatusBadRequest, errors.ErrBadRequest)
		return
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		errorJSON(ctx, http.StatusBadRequest, errors.ErrDescriptionRequired)
		return
	}
	if err := api.valid.Struct(req); err != nil {
		errorJSON(ctx, http.StatusBadRequest, validationErrorToErrorResponse(err))
		return
	}

	userID := currentUserID(ctx)
	user, err := api.users.GetUserByID(ctx, userID)
	if err != nil {
		errorJSON(ctx, http.StatusNotFound, errors.ErrUserNotFound)
		return
	}

	task, found := findTask(user.Tasks, taskID)
	if !found {
		errorJSON(ctx, http.StatusNotFound, errors.ErrTaskNotFound)
		return
	}

	now := time.Now()
	task.Description = description
	if req.Status != "" {
		task.Status = models.NormalizeStatus(req.Status)
	}
	if req.Priority != "" {
		task.Priority = req.Priority
	}
	// An explicit empty string clears the due date; the field is only left
	// alone when absent from the request body.
	if req.DueDate != nil {
		task.DueDate = *req.DueDate
	}
	task.UpdatedAt = now

	if err := api.tasks.UpdateTask(ctx, userID, &task); err != nil {
		api.taskError(ctx, err)
		return
	}

	stats := dashboard.Aggregate(replaceTask(user.Tasks, task), now).Stats
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Task updated successfully",
		"success": true,
		"task":    task,
		"stats":   stats,
	})
}

func (api *TaskAPI) patchTaskStatus(ctx *gin.Context) {
	taskID := ctx.Param("taskId")

	var req models.PatchStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorJSON(ctx, http.StatusBadRequest, errors.ErrBadRequest)
		return
	}
	if err := api.valid.Struct(req); err != nil {
		errorJSON(ctx, http.StatusBadRequest, errors.ErrInvalidStatus)
		return
	}

	userID := currentUserID(ctx)
	user, err := api.users.GetUserByID(ctx, userID)
	if err != nil {
		errorJSON(ctx, http.StatusNotFound, errors.ErrUserNotFound)
		return
	}

	task, found := findTask(user.Tasks, taskID)
	if !found {
		errorJSON(ctx, http.StatusNotFound, errors.ErrTaskNotFound)
		return
	}

	now := time.Now()
	task.Status = models.NormalizeStatus(req.Status)
	task.UpdatedAt = now

	if err := api.tasks.UpdateTask(ctx, userID, &task); err != nil {
		api.taskError(ctx, err)
		return
	}

	stats := dashboard.Aggregate(replaceTask(user.Tasks, task), now).Stats
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Task status updated successfully",
		"success": true,
		"task":    task,
		"stats":   stats,
	})
}

func (api *TaskAPI) deleteTask(ctx *gin.Context) {
	taskID := ctx.Param("taskId")
	userID := currentUserID(ctx)

	user, err := api.users.GetUserByID(ctx, userID)
	if err != nil {
		errorJSON(ctx, http.StatusNotFound, errors.ErrUserNotFound)
		return
	}

	if err := api.tasks.DeleteTask(ctx, userID, taskID); err != nil {
		api.taskError(ctx, err)
		return
	}

	now := time.Now()
	remaining := make([]models.Task, 0, len(user.Tasks))
	for _, t := range user.Tasks {
		if t.ID != taskID {
			remaining = append(remaining, t)
		}
	}
	stats := dashboard.Aggregate(remaining, now).Stats
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
		"success": true,
		"stats":   stats,
	})
}

func (api *TaskAPI) taskError(ctx *gin.Context, err error) {
	switch err {
	case errors.ErrUserNotFound, errors.ErrTaskNotFound:
		errorJSON(ctx, http.StatusNotFound, err)
	default:
		errorJSON(ctx, http.StatusInternalServerError, err)
	}
}

func currentUserID(ctx *gin.Context) string {
	return ctx.GetString(ctxUserID)
}

func errorJSON(ctx *gin.Context, status int, err error) {
	ctx.JSON(status, gin.H{"error": err.Error(), "success": false})
}

func findTask(tasks []models.Task, id string) (models.Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return models.Task{}, false
}

func replaceTask(tasks []models.Task, task models.Task) []models.Task {
	updated := make([]models.Task, len(tasks))
	copy(updated, tasks)
	for i := range updated {
		if updated[i].ID == task.ID {
			updated[i] = task
		}
	}
	return updated
}

func validationErrorToErrorResponse(err error) error {
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, verr := range verrs {
			switch verr.Field() {
			case "Name":
				return errors.ErrInvalidName
			case "Email":
				return errors.ErrInvalidEmail
			case "Password":
				return errors.ErrPasswordTooShort
			case "Description":
				return errors.ErrDescriptionRequired
			case "Status":
				return errors.ErrInvalidStatus
			case "Priority":
				return errors.ErrInvalidPriority
			case "Notes":
				return errors.ErrNotesRequired
			}
		}
	}
	return errors.ErrValidationFailed
}
