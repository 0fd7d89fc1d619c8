package errors

import "fmt"

// ErrorCode represents a Flow-Lyfe error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrDuplicateID    ErrorCode = "DUPLICATE_ID"    // 409
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// FlowError represents a structured error with code, status, and details.
type FlowError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *FlowError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *FlowError {
	return &FlowError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a record cannot be found.
func NewNotFound(id string) *FlowError {
	return &FlowError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("record not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewDuplicateID creates a 409 error for id collisions on insert.
func NewDuplicateID(id string) *FlowError {
	return &FlowError{
		Code:    ErrDuplicateID,
		Status:  409,
		Message: fmt.Sprintf("record with id %q already exists", id),
		Details: map[string]any{"id": id},
	}
}

// NewInternal creates a 500 error for unexpected storage or runtime errors.
func NewInternal(err error) *FlowError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &FlowError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a FlowError with the given code.
func Is(err error, code ErrorCode) bool {
	if fErr, ok := err.(*FlowError); ok {
		return fErr.Code == code
	}
	return false
}
