package itunesget

import "fmt"

// Error types for itunes-get operations
var (
	// ErrDatabaseNotFound is returned when the iTunesDB file does not exist
	ErrDatabaseNotFound = &LibraryError{Code: "DATABASE_NOT_FOUND", Message: "iTunes database not found"}

	// ErrInvalidDatabase is returned when the database root chunk is not recognized
	ErrInvalidDatabase = &LibraryError{Code: "INVALID_DATABASE_FORMAT", Message: "invalid iTunes database format"}

	// ErrInvalidPlayCounts is returned when the Play Counts file is not recognized
	ErrInvalidPlayCounts = &LibraryError{Code: "INVALID_PLAY_COUNTS_FORMAT", Message: "invalid play counts file format"}

	// ErrPlaylistNotFound is returned when a requested playlist is not in the library
	ErrPlaylistNotFound = &LibraryError{Code: "PLAYLIST_NOT_FOUND", Message: "playlist not found"}

	// ErrExportFailed is returned when writing the CSV export fails
	ErrExportFailed = &LibraryError{Code: "EXPORT_FAILED", Message: "export failed"}
)

// LibraryError represents a structured error in itunes-get operations
type LibraryError struct {
	Code    string                 // Error code for programmatic handling
	Message string                 // Human-readable error message
	Cause   error                  // Underlying error, if any
	Details map[string]interface{} // Additional context
}

// Error implements the error interface
func (e *LibraryError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	if len(e.Details) > 0 {
		return fmt.Sprintf("[%s] %s (details: %v)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *LibraryError) Unwrap() error {
	return e.Cause
}

// WithCause adds a cause to the error
func (e *LibraryError) WithCause(cause error) *LibraryError {
	return &LibraryError{
		Code:    e.Code,
		Message: e.Message,
		Cause:   cause,
		Details: e.Details,
	}
}

// WithDetail adds a detail key-value pair to the error
func (e *LibraryError) WithDetail(key string, value interface{}) *LibraryError {
	details := make(map[string]interface{})
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &LibraryError{
		Code:    e.Code,
		Message: e.Message,
		Cause:   e.Cause,
		Details: details,
	}
}

// WithMessage overrides the error message
func (e *LibraryError) WithMessage(message string) *LibraryError {
	return &LibraryError{
		Code:    e.Code,
		Message: message,
		Cause:   e.Cause,
		Details: e.Details,
	}
}

// IsLibraryError checks if an error is a LibraryError
func IsLibraryError(err error) bool {
	_, ok := err.(*LibraryError)
	return ok
}

// GetErrorCode extracts the error code from a LibraryError
func GetErrorCode(err error) string {
	if libErr, ok := err.(*LibraryError); ok {
		return libErr.Code
	}
	return ""
}
