package services

import apierrors "github.com/yukikurage/kanban-api/internal/errors"

// Auth
var (
	ErrMissingFields       = apierrors.Validation("name, email and password are required")
	ErrPasswordTooLong     = apierrors.Validation("password must be at most 72 bytes")
	ErrUserExists          = apierrors.Conflict("user already exists")
	ErrInvalidCredentials  = apierrors.Validation("invalid credentials")
	ErrInvalidToken        = apierrors.Authentication("invalid or expired token")
	ErrUserNotFound        = apierrors.NotFoundError("user not found")
	ErrEmailTaken          = apierrors.Conflict("email already in use")
)

// Projects
var (
	ErrProjectNameRequired = apierrors.Validation("project name is required")
	ErrProjectNotFound     = apierrors.NotFoundError("project not found")
	ErrProjectForbidden    = apierrors.Forbidden("access denied")
	ErrOwnerOnly           = apierrors.Forbidden("only the project owner can perform this action")
	ErrEmailRequired       = apierrors.Validation("email is required")
	ErrAlreadyMember       = apierrors.Conflict("user is already a member of the project")
)

// Tasks
var (
	ErrProjectIDRequired = apierrors.Validation("project id is required")
	ErrTitleRequired     = apierrors.Validation("title is required")
	ErrTitleEmpty        = apierrors.Validation("title cannot be empty")
	ErrInvalidStatus     = apierrors.Validation("status must be one of planned, inProgress, done")
	ErrInvalidView       = apierrors.Validation("view must be one of board, archived, deleted")
	ErrTaskNotFound      = apierrors.NotFoundError("task not found")
)
