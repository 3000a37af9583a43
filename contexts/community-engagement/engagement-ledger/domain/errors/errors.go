package errors

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidVoteInput  = errors.New("invalid vote input")
	ErrIssueNotFound     = errors.New("issue not found")
	ErrIssueTerminal     = errors.New("issue is in a terminal state")
	ErrInvalidTransition = errors.New("status transition violates forward-only ordering")
	ErrEmptyComment      = errors.New("comment text is empty")
	ErrCommentNotFound   = errors.New("comment not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrConflict          = errors.New("engagement state conflict")
)
