package entities

import "time"

// Comment is immutable once recorded; display order is creation order with a
// configurable newest-first read option.
type Comment struct {
	CommentID string
	IssueID   string
	UserID    string
	Text      string
	CreatedAt time.Time
}
