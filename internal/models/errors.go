package models

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse represents a standardized API error response.
type ErrorResponse struct {
	Message string              `json:"message"`
	Code    string              `json:"code,omitempty"`
	Details string              `json:"details,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
	// HasRelations flags integrity conflicts (e.g. deleting a program that
	// still has enrolled students) so the dashboard can show a tailored hint.
	HasRelations bool `json:"has_relations,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
	// FieldErrors carries per-field validation messages for 422 responses.
	FieldErrors map[string][]string
	// HasRelations marks integrity conflicts surfaced as 422.
	HasRelations bool
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    "VALIDATION_ERROR",
		Message: message,
	}
}

// NewFieldValidationError builds a 422-style error carrying the Laravel-shaped
// {errors: {field: [messages]}} map.
func NewFieldValidationError(fields map[string][]string) *AppError {
	return &AppError{
		Code:        "VALIDATION_ERROR",
		Message:     "The given data was invalid",
		FieldErrors: fields,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
	}
}

// NewConflictError marks an integrity conflict (dependent rows exist).
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:         "CONFLICT",
		Message:      message,
		HasRelations: true,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "Internal server error",
		Err:     err,
	}
}

// RespondWithError creates a standardized error response.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	if appErr, ok := err.(*AppError); ok {
		response = ErrorResponse{
			Message:      appErr.Message,
			Code:         appErr.Code,
			Errors:       appErr.FieldErrors,
			HasRelations: appErr.HasRelations,
		}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Message: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}

// RespondWithFieldErrors writes a 422 with the {errors: {...}} body the
// admin dashboard expects from validation failures.
func RespondWithFieldErrors(c *fiber.Ctx, fields map[string][]string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"errors": fields,
	})
}
