package services

import (
	"errors"
	"strings"
)

var (
	ErrValidation               = errors.New("validation failed")
	ErrAlreadyExists            = errors.New("already exists")
	ErrNotFound                 = errors.New("not found or access denied")
	ErrInvalidPassword          = errors.New("invalid password")
	ErrCurrentPasswordIncorrect = errors.New("current password is incorrect")
	ErrUsernameTaken            = errors.New("username is already taken")
	ErrInvalidCredentials       = errors.New("invalid username or password")
)

// ValidationError carries user-facing messages for rejected input
type ValidationError struct {
	Messages []string
}

func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// AlreadyExistsError names the registration field that collided with an existing account
type AlreadyExistsError struct {
	Field string
}

func (e *AlreadyExistsError) Error() string {
	return e.Field + " already exists"
}

func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}
