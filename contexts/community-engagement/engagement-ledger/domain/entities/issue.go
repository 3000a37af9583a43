package entities

import "time"

type IssueStatus string

const (
	StatusSubmitted    IssueStatus = "submitted"
	StatusAcknowledged IssueStatus = "acknowledged"
	StatusInProgress   IssueStatus = "in_progress"
	StatusResolved     IssueStatus = "resolved"
	StatusClosed       IssueStatus = "closed"
	StatusRejected     IssueStatus = "rejected"
)

// statusRank orders the normal forward lifecycle. Rejected sits outside the
// chain and is only reachable from submitted/acknowledged.
var statusRank = map[IssueStatus]int{
	StatusSubmitted:    0,
	StatusAcknowledged: 1,
	StatusInProgress:   2,
	StatusResolved:     3,
	StatusClosed:       4,
}

func (s IssueStatus) Valid() bool {
	if s == StatusRejected {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

func (s IssueStatus) Terminal() bool {
	return s == StatusClosed || s == StatusRejected
}

// CanTransitionTo reports whether a staff transition from s to target is a
// legal forward move. Same-state moves are not transitions; callers treat
// them as idempotent replays.
func (s IssueStatus) CanTransitionTo(target IssueStatus) bool {
	if !s.Valid() || !target.Valid() || s == target {
		return false
	}
	if s.Terminal() {
		return false
	}
	if target == StatusRejected {
		return s == StatusSubmitted || s == StatusAcknowledged
	}
	return statusRank[target] > statusRank[s]
}

// IssueEngagement is the Ledger-owned view of an issue: vote counts, derived
// urgency, lifecycle status, and the one-time resolve-bonus flag.
type IssueEngagement struct {
	IssueID              string
	ReporterID           string
	Upvotes              int
	Confirmations        int
	UrgencyScore         int
	Status               IssueStatus
	ResolvedKarmaApplied bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// ComputeUrgency derives the feed ranking score from raw counts.
func ComputeUrgency(upvotes, confirmations int) int {
	return upvotes*2 + confirmations
}

// Recompute refreshes the derived urgency score from the current counts.
func (e *IssueEngagement) Recompute() {
	e.UrgencyScore = ComputeUrgency(e.Upvotes, e.Confirmations)
}
