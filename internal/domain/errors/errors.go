package errors

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrTaskNotFound       = errors.New("task not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserDoesNotExist   = errors.New("user does not exist")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInternalServer     = errors.New("internal server error")
	ErrBadRequest         = errors.New("invalid request data")
	ErrValidationFailed   = errors.New("validation failed")
	ErrDatabaseConnection = errors.New("failed to connect to database")

	ErrDescriptionRequired = errors.New("task description is required")
	ErrInvalidStatus       = errors.New("invalid status, must be: pending, in-progress, or completed")
	ErrInvalidPriority     = errors.New("invalid priority, must be: low, medium, or high")
	ErrNotesRequired       = errors.New("notes content is required")
	ErrInvalidName         = errors.New("invalid name")
	ErrInvalidEmail        = errors.New("invalid email")
	ErrPasswordTooShort    = errors.New("password must be at least 6 characters")

	ErrConfigFileReadFailed = errors.New("failed to read config file")
	ErrConfigParseFailed    = errors.New("failed to parse config file")
	ErrConfigInvalidFormat  = errors.New("invalid config value")
)
