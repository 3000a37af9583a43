package entities

import "time"

type VoteType string

const (
	VoteTypeUpvote  VoteType = "upvote"
	VoteTypeConfirm VoteType = "confirm"
)

func (v VoteType) Valid() bool {
	return v == VoteTypeUpvote || v == VoteTypeConfirm
}

// Vote is one active vote. Identity is (IssueID, UserID, VoteType); a user
// may hold an upvote and a confirm on the same issue, never two of a kind.
// CastAt is retained per vote so trending windows can be answered.
type Vote struct {
	VoteID   string
	IssueID  string
	UserID   string
	VoteType VoteType
	CastAt   time.Time
}
