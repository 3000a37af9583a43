package ports

import (
	"context"
	"time"

	"civicpulse/contexts/civic-reporting/issue-service/domain/entities"
)

// IssueFilter narrows ListIssues. Zero values mean no constraint.
type IssueFilter struct {
	Category   entities.Category
	ReporterID string
	Limit      int
}

type IssueRepository interface {
	SaveIssue(ctx context.Context, issue entities.Issue) error
	GetIssue(ctx context.Context, issueID string) (entities.Issue, error)
	ListIssues(ctx context.Context, filter IssueFilter) ([]entities.Issue, error)
}

// EngagementView is the ledger's read model for one issue as seen from this
// context.
type EngagementView struct {
	Upvotes       int
	Confirmations int
	UrgencyScore  int
	Status        string
}

// EngagementGateway is the in-process seam to the engagement ledger. Status
// transitions are delegated so lifecycle rules live in exactly one place.
// The category travels with the creation hook so the ledger can keep its
// per-category report counts.
type EngagementGateway interface {
	IssueCreated(ctx context.Context, issueID, reporterID, category string, createdAt time.Time) error
	StatusChanged(ctx context.Context, issueID, from, to string) error
	Engagement(ctx context.Context, issueID string) (EngagementView, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
