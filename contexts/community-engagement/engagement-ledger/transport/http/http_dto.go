// Package httptransport defines the JSON shapes for the engagement ledger API.
package httptransport

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CastVoteRequest struct {
	VoteType string `json:"vote_type"`
}

type VoteResponse struct {
	IssueID       string `json:"issue_id"`
	VoteType      string `json:"vote_type"`
	Applied       bool   `json:"applied"`
	NewCount      int    `json:"new_count"`
	Upvotes       int    `json:"upvotes"`
	Confirmations int    `json:"confirmations"`
	UrgencyScore  int    `json:"urgency_score"`
}

type CreateCommentRequest struct {
	Text string `json:"text"`
}

type CommentResponse struct {
	CommentID string    `json:"comment_id"`
	IssueID   string    `json:"issue_id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type CommentListResponse struct {
	Items []CommentResponse `json:"items"`
}

type EngagementResponse struct {
	IssueID       string    `json:"issue_id"`
	ReporterID    string    `json:"reporter_id"`
	Upvotes       int       `json:"upvotes"`
	Confirmations int       `json:"confirmations"`
	UrgencyScore  int       `json:"urgency_score"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type TrendingItem struct {
	IssueID       string    `json:"issue_id"`
	WindowUpvotes int       `json:"window_upvotes"`
	Upvotes       int       `json:"upvotes"`
	Confirmations int       `json:"confirmations"`
	UrgencyScore  int       `json:"urgency_score"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

type TrendingResponse struct {
	WindowHours int            `json:"window_hours"`
	Items       []TrendingItem `json:"items"`
}

type LeaderboardItem struct {
	Rank   int    `json:"rank"`
	UserID string `json:"user_id"`
	Karma  int    `json:"karma"`
}

type LeaderboardResponse struct {
	Items []LeaderboardItem `json:"items"`
}

type BadgeResponse struct {
	BadgeKey    string    `json:"badge_key"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	EarnedAt    time.Time `json:"earned_at"`
}

type UserStatsResponse struct {
	UserID         string          `json:"user_id"`
	Karma          int             `json:"karma"`
	IssuesReported int             `json:"issues_reported"`
	UpvotesCast    int             `json:"upvotes_cast"`
	ConfirmsCast   int             `json:"confirms_cast"`
	CommentsPosted int             `json:"comments_posted"`
	IssuesResolved int             `json:"issues_resolved"`
	Badges         []BadgeResponse `json:"badges"`
}
