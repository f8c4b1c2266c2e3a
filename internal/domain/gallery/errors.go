package gallery

import "errors"

var (
	ErrNotFound        = errors.New("image not found")
	ErrValidation      = errors.New("validation error")
	ErrEmptyName       = errors.New("name must not be empty")
	ErrBackend         = errors.New("backend operation failed")
	ErrEmptyFile       = errors.New("file is empty")
	ErrFileTooLarge    = errors.New("file exceeds maximum allowed size")
	ErrInvalidMimeType = errors.New("file type is not allowed")
	ErrNoFiles         = errors.New("no files provided")
	ErrHandleReleased  = errors.New("display handle already released")
	ErrStoreClosed     = errors.New("store is closed")
)
