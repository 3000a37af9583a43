package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	application "civicpulse/contexts/community-engagement/engagement-ledger/application"
	"civicpulse/contexts/community-engagement/engagement-ledger/domain/entities"
	domainerrors "civicpulse/contexts/community-engagement/engagement-ledger/domain/errors"
	"civicpulse/contexts/community-engagement/engagement-ledger/ports"
)

type IssueCreatedCommand struct {
	IssueID    string
	ReporterID string
	// Category is the issue's category key; blank means uncategorized and
	// skips the per-category report count.
	Category  string
	CreatedAt time.Time
}

type StatusChangeCommand struct {
	IssueID string
	// From is the caller's view of the current status; blank skips the
	// stale-view check.
	From entities.IssueStatus
	To   entities.IssueStatus
}

// OnIssueCreated seeds the engagement record for a new issue and grants the
// reporter's reporting karma. Replays are no-ops: an existing record means
// the seed already committed.
func (uc LedgerUseCase) OnIssueCreated(ctx context.Context, cmd IssueCreatedCommand) error {
	logger := application.ResolveLogger(uc.Logger)

	issueID := strings.TrimSpace(cmd.IssueID)
	reporterID := strings.TrimSpace(cmd.ReporterID)
	if issueID == "" || reporterID == "" {
		return domainerrors.ErrInvalidInput
	}

	category := strings.TrimSpace(cmd.Category)
	createdAt := cmd.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = uc.now()
	}

	engagement := entities.IssueEngagement{
		IssueID:    issueID,
		ReporterID: reporterID,
		Status:     entities.StatusSubmitted,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
	engagement.Recompute()

	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return fmt.Errorf("generate event id: %w", err)
	}
	creation := ports.EngagementCreation{
		Engagement: engagement,
		Karma: []ports.KarmaDelta{{
			UserID:         reporterID,
			Delta:          entities.KarmaIssueReported,
			Reason:         "issue reported",
			EventKey:       "issue_created:" + issueID,
			Counter:        entities.CounterIssuesReported,
			CounterDelta:   1,
			ReportCategory: category,
		}},
		Event: newLedgerEnvelope(eventID, EventIssueCreated, issueID, createdAt, map[string]any{
			"issue_id":    issueID,
			"reporter_id": reporterID,
			"category":    category,
		}),
	}

	created, err := uc.Engagements.CreateEngagement(ctx, creation)
	if err != nil {
		return err
	}
	if !created {
		logger.Info("engagement seed replayed",
			"event", "ledger_engagement_exists",
			"module", "community-engagement/engagement-ledger",
			"layer", "application",
			"issue_id", issueID,
		)
		return nil
	}

	logger.Info("engagement seeded",
		"event", "ledger_engagement_seeded",
		"module", "community-engagement/engagement-ledger",
		"layer", "application",
		"issue_id", issueID,
		"reporter_id", reporterID,
	)

	uc.evaluateBadges(ctx, reporterID)
	return nil
}

// OnStatusChanged advances an issue through the forward-only lifecycle.
// Re-applying the current status is a replay no-op. The first transition to
// resolved grants the reporter's resolution bonus exactly once.
func (uc LedgerUseCase) OnStatusChanged(ctx context.Context, cmd StatusChangeCommand) error {
	logger := application.ResolveLogger(uc.Logger)

	issueID := strings.TrimSpace(cmd.IssueID)
	if issueID == "" {
		return domainerrors.ErrInvalidInput
	}
	if !cmd.To.Valid() {
		return domainerrors.ErrInvalidTransition
	}

	unlock := uc.lock("status/" + issueID)
	defer unlock()

	engagement, err := uc.Engagements.GetEngagement(ctx, issueID)
	if err != nil {
		return err
	}
	if cmd.From != "" && cmd.From != engagement.Status {
		return domainerrors.ErrConflict
	}
	if cmd.To == engagement.Status {
		return nil
	}
	if !engagement.Status.CanTransitionTo(cmd.To) {
		logger.Warn("status transition rejected",
			"event", "ledger_transition_rejected",
			"module", "community-engagement/engagement-ledger",
			"layer", "application",
			"issue_id", issueID,
			"from", string(engagement.Status),
			"to", string(cmd.To),
		)
		return domainerrors.ErrInvalidTransition
	}

	now := uc.now()
	previous := engagement.Status
	engagement.Status = cmd.To
	engagement.UpdatedAt = now

	var deltas []ports.KarmaDelta
	resolvedNow := cmd.To == entities.StatusResolved && !engagement.ResolvedKarmaApplied
	if resolvedNow {
		engagement.ResolvedKarmaApplied = true
		deltas = append(deltas, ports.KarmaDelta{
			UserID:       engagement.ReporterID,
			Delta:        entities.KarmaIssueResolved,
			Reason:       "reported issue resolved",
			EventKey:     "issue_resolved:" + issueID,
			Counter:      entities.CounterIssuesResolved,
			CounterDelta: 1,
		})
	}

	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return fmt.Errorf("generate event id: %w", err)
	}
	mutation := ports.StatusMutation{
		Engagement: engagement,
		Karma:      deltas,
		Event: newLedgerEnvelope(eventID, EventStatusChanged, issueID, now, map[string]any{
			"issue_id": issueID,
			"from":     string(previous),
			"to":       string(cmd.To),
		}),
	}

	if err := uc.Engagements.CommitStatusChange(ctx, mutation); err != nil {
		return err
	}

	logger.Info("status changed",
		"event", "ledger_status_changed",
		"module", "community-engagement/engagement-ledger",
		"layer", "application",
		"issue_id", issueID,
		"from", string(previous),
		"to", string(cmd.To),
	)

	uc.notifyReporter(ctx, engagement, previous)
	if resolvedNow {
		uc.evaluateBadges(ctx, engagement.ReporterID)
	}
	return nil
}

// notifyReporter is best-effort: delivery failures are logged, never returned.
func (uc LedgerUseCase) notifyReporter(ctx context.Context, engagement entities.IssueEngagement, previous entities.IssueStatus) {
	if uc.Notifier == nil || engagement.ReporterID == "" {
		return
	}
	notification := ports.Notification{
		UserID:  engagement.ReporterID,
		IssueID: engagement.IssueID,
		Title:   "Issue status updated",
		Message: fmt.Sprintf("Your issue moved from %s to %s", previous, engagement.Status),
	}
	if err := uc.Notifier.Notify(ctx, notification); err != nil {
		application.ResolveLogger(uc.Logger).Warn("reporter notification failed",
			"event", "ledger_notify_failed",
			"module", "community-engagement/engagement-ledger",
			"layer", "application",
			"issue_id", engagement.IssueID,
			"user_id", engagement.ReporterID,
			"error", err.Error(),
		)
	}
}
