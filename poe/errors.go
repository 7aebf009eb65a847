package poe

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	// ErrAccessKeyRequired is returned by New when no access key is supplied
	// and POE_ACCESS_KEY is unset.
	ErrAccessKeyRequired = errors.New("access key is required: pass it to New or set POE_ACCESS_KEY")

	// ErrBotNameRequired is returned by New when the bot name is empty.
	ErrBotNameRequired = errors.New("bot name is required")
)

// APIError is a non-success HTTP response from the service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("poe API error (status %d): %s", e.StatusCode, e.Message)
}

// UploadError is a failed file upload.
type UploadError struct {
	// Target is the local path or download URL that failed.
	Target string
	Cause  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload of %q failed: %v", e.Target, e.Cause)
}

func (e *UploadError) Unwrap() error {
	return e.Cause
}
