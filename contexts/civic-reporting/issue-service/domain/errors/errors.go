package errors

import "errors"

var (
	ErrInvalidIssueInput = errors.New("invalid issue input")
	ErrIssueNotFound     = errors.New("issue not found")
	ErrForbidden         = errors.New("actor is not permitted to perform this action")
)
