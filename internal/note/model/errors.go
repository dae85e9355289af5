package model

import "errors"

var (
	ErrSubjectRequired  = errors.New("subject is required")
	ErrContentRequired  = errors.New("content is required")
	ErrInvalidStatus    = errors.New("invalid status. Must be pending, in-progress, or completed")
	ErrInvalidSortBy    = errors.New("invalid sort key. Must be date or subject")
	ErrInvalidSortOrder = errors.New("invalid sort order. Must be asc or desc")
	ErrNoteNotFound     = errors.New("note not found")
	ErrNoActiveForm     = errors.New("no form is open")
)

// IsValidation reports whether err is a rejected user input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrSubjectRequired) ||
		errors.Is(err, ErrContentRequired) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrInvalidSortBy) ||
		errors.Is(err, ErrInvalidSortOrder)
}
