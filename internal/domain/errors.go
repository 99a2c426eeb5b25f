package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserInactive        = errors.New("user is inactive")
	ErrInvalidRole         = errors.New("invalid role")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrEmptyFile           = errors.New("file is empty")
	ErrDuplicateUsername   = errors.New("username already exists")
	ErrDuplicateEmail      = errors.New("email already exists")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrDownloadFailed      = errors.New("file download from storage failed")
	ErrFileNotFound        = errors.New("file not found")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrEventNotFound       = errors.New("event not found")
	ErrAnalysisFailed      = errors.New("document analysis failed")
	ErrInvalidFilter       = errors.New("invalid filter")
)

// CSVRejectedError is returned when a CSV upload carries error-severity
// validations and must not be stored.
type CSVRejectedError struct {
	Errors []ValidationResult
}

func (e *CSVRejectedError) Error() string {
	return fmt.Sprintf("csv rejected with %d blocking validation(s)", len(e.Errors))
}
