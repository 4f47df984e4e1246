// Package apperror holds the error taxonomy shared by services and the HTTP
// layer. Every AppError carries the HTTP status it maps to, a stable
// machine-readable code and a message that is safe to show to clients.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation Kind = "validation"
	KindAuth       Kind = "auth"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindStorage    Kind = "storage"
	KindDatabase   Kind = "database"
)

// Upload failure codes. Clients branch on these instead of the message text.
const (
	CodeFileRequired           = "FILE_REQUIRED"
	CodeFileTooLarge           = "FILE_TOO_LARGE"
	CodeInvalidImageFormat     = "INVALID_IMAGE_FORMAT"
	CodeInvalidImageDimensions = "INVALID_IMAGE_DIMENSIONS"
	CodeCorruptImage           = "CORRUPT_IMAGE"
	CodeTranscodeFailed        = "TRANSCODE_FAILED"
	CodeStorageFailed          = "STORAGE_FAILED"
	CodeDatabaseError          = "DATABASE_ERROR"
	CodeInvalidType            = "INVALID_TYPE"
	CodeInvalidID              = "INVALID_ID"
	CodeInvalidRequest         = "INVALID_REQUEST"
	CodeUnauthenticated        = "UNAUTHENTICATED"
	CodeForbidden              = "FORBIDDEN"
	CodeNotFound               = "NOT_FOUND"
	CodeConflict               = "CONFLICT"
)

type AppError struct {
	Kind    Kind
	Status  int
	Code    string
	Message string
	// Err is the underlying cause. It is logged, and only exposed to clients
	// outside production.
	Err error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// As extracts an *AppError from err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}

	return nil, false
}

// IsKind reports whether err carries an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}

func Validation(status int, code, message string) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Status:  status,
		Code:    code,
		Message: message,
	}
}

func BadRequest(code, message string) *AppError {
	return Validation(http.StatusBadRequest, code, message)
}

func FileTooLarge() *AppError {
	return Validation(http.StatusRequestEntityTooLarge, CodeFileTooLarge, "File size too large")
}

func InvalidImageFormat() *AppError {
	return Validation(http.StatusUnsupportedMediaType, CodeInvalidImageFormat, "Invalid image format")
}

func ImageTooSmall() *AppError {
	return Validation(http.StatusBadRequest, CodeInvalidImageDimensions, "Image dimensions too small")
}

func CorruptImage(err error) *AppError {
	e := Validation(http.StatusBadRequest, CodeCorruptImage, "Invalid or corrupt image file")
	e.Err = err

	return e
}

func Unauthenticated() *AppError {
	return &AppError{
		Kind:    KindAuth,
		Status:  http.StatusUnauthorized,
		Code:    CodeUnauthenticated,
		Message: "Authentication required",
	}
}

func Forbidden() *AppError {
	return &AppError{
		Kind:    KindAuth,
		Status:  http.StatusForbidden,
		Code:    CodeForbidden,
		Message: "Access denied",
	}
}

func InvalidCredentials() *AppError {
	return &AppError{
		Kind:    KindAuth,
		Status:  http.StatusUnauthorized,
		Code:    "INVALID_CREDENTIALS",
		Message: "Invalid credentials",
	}
}

func NotFound(message string) *AppError {
	return &AppError{
		Kind:    KindNotFound,
		Status:  http.StatusNotFound,
		Code:    CodeNotFound,
		Message: message,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Kind:    KindConflict,
		Status:  http.StatusConflict,
		Code:    CodeConflict,
		Message: message,
	}
}

func Storage(code string, err error) *AppError {
	return &AppError{
		Kind:    KindStorage,
		Status:  http.StatusInternalServerError,
		Code:    code,
		Message: "Failed to process file",
		Err:     err,
	}
}

func Database(err error) *AppError {
	return &AppError{
		Kind:    KindDatabase,
		Status:  http.StatusInternalServerError,
		Code:    CodeDatabaseError,
		Message: "Database error",
		Err:     err,
	}
}
