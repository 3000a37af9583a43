package commands

import (
	"time"

	"civicpulse/contexts/community-engagement/engagement-ledger/ports"
)

const (
	EventIssueCreated  = "engagement.issue.created"
	EventVoteCast      = "engagement.vote.cast"
	EventVoteRetracted = "engagement.vote.retracted"
	EventCommentAdded  = "engagement.comment.recorded"
	EventStatusChanged = "engagement.status.changed"
)

// newLedgerEnvelope builds the outbox event for a ledger mutation,
// partitioned by issue so downstream consumers see per-issue ordering.
func newLedgerEnvelope(eventID, eventType, issueID string, occurredAt time.Time, data map[string]any) *ports.EventEnvelope {
	return &ports.EventEnvelope{
		EventID:      eventID,
		EventType:    eventType,
		PartitionKey: issueID,
		OccurredAt:   occurredAt.UTC(),
		Data:         data,
	}
}
