// Package server provides the CareerMate HTTP API.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rizzrioo06/careermate/internal/career"
	"github.com/rizzrioo06/careermate/internal/llmjson"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrPasswordMismatch indicates current password is incorrect
type ErrPasswordMismatch struct{}

func (e *ErrPasswordMismatch) Error() string {
	return "current password is incorrect"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

const generationFailedMessage = "generation failed, please retry"

// HTTPStatus returns the appropriate HTTP status code for an error.
func HTTPStatus(err error) int {
	var (
		emailTaken   *ErrEmailAlreadyExists
		badCreds     *ErrInvalidCredentials
		pwMismatch   *ErrPasswordMismatch
		userNotFound *ErrUserNotFound
		validation   *ErrValidation
		invalidInput *career.InvalidInputError
		apiCall      *career.APICallError
	)

	switch {
	case errors.As(err, &emailTaken):
		return http.StatusConflict
	case errors.As(err, &badCreds), errors.As(err, &pwMismatch):
		return http.StatusUnauthorized
	case errors.As(err, &userNotFound), errors.Is(err, career.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &invalidInput):
		return http.StatusBadRequest
	case errors.Is(err, llmjson.ErrParseFailure), errors.As(err, &apiCall):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage returns the error text shown to API clients. Internal and
// upstream failures are not echoed back.
func publicMessage(err error) string {
	switch HTTPStatus(err) {
	case http.StatusBadGateway:
		return generationFailedMessage
	case http.StatusInternalServerError:
		return "internal server error"
	default:
		return err.Error()
	}
}
