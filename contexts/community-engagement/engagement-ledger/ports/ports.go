package ports

import (
	"context"
	"time"

	"civicpulse/contexts/community-engagement/engagement-ledger/domain/entities"
)

// KarmaDelta is one additive karma adjustment applied inside a commit.
// Counter/CounterDelta bump the matching activity counter in the same step;
// a non-empty ReportCategory bumps that category's report count too.
type KarmaDelta struct {
	UserID         string
	Delta          int
	Reason         string
	EventKey       string
	Counter        entities.ActivityCounter
	CounterDelta   int
	ReportCategory string
}

// EventEnvelope is the outbox payload shape for ledger events.
type EventEnvelope struct {
	EventID      string         `json:"event_id"`
	EventType    string         `json:"event_type"`
	PartitionKey string         `json:"partition_key"`
	OccurredAt   time.Time      `json:"occurred_at"`
	Data         map[string]any `json:"data"`
}

// EngagementCreation seeds the engagement record for a newly reported issue.
type EngagementCreation struct {
	Engagement entities.IssueEngagement
	Karma      []KarmaDelta
	Event      *EventEnvelope
}

// VoteMutation carries the full effect of one toggle: the vote row to insert
// (Applied) or delete (!Applied), the updated counts/urgency, and the karma
// deltas. Adapters apply the whole mutation atomically.
type VoteMutation struct {
	Engagement entities.IssueEngagement
	Vote       entities.Vote
	Applied    bool
	Karma      []KarmaDelta
	Event      *EventEnvelope
}

type CommentMutation struct {
	Comment entities.Comment
	Karma   []KarmaDelta
	Event   *EventEnvelope
}

type StatusMutation struct {
	Engagement entities.IssueEngagement
	Karma      []KarmaDelta
	Event      *EventEnvelope
}

type EngagementRepository interface {
	GetEngagement(ctx context.Context, issueID string) (entities.IssueEngagement, error)
	ListEngagements(ctx context.Context) ([]entities.IssueEngagement, error)
	GetVote(ctx context.Context, issueID string, userID string, voteType entities.VoteType) (entities.Vote, bool, error)
	ListVotesSince(ctx context.Context, voteType entities.VoteType, since time.Time) ([]entities.Vote, error)
	ListComments(ctx context.Context, issueID string, newestFirst bool) ([]entities.Comment, error)

	// CreateEngagement is idempotent per issue: it reports created=false and
	// applies nothing when the engagement record already exists.
	CreateEngagement(ctx context.Context, creation EngagementCreation) (bool, error)
	CommitVoteToggle(ctx context.Context, mutation VoteMutation) error
	CommitComment(ctx context.Context, mutation CommentMutation) error
	CommitStatusChange(ctx context.Context, mutation StatusMutation) error
}

type KarmaRepository interface {
	GetKarmaAccount(ctx context.Context, userID string) (entities.KarmaAccount, bool, error)
	ListLeaderboard(ctx context.Context, limit int) ([]entities.KarmaAccount, error)
	ListBadges(ctx context.Context, userID string) ([]entities.Badge, error)
	// GrantBadge reports false when the user already holds the badge.
	GrantBadge(ctx context.Context, badge entities.Badge) (bool, error)
}

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

// Notification is the fire-and-forget reporter notice on status changes.
type Notification struct {
	UserID  string
	IssueID string
	Title   string
	Message string
}

type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
