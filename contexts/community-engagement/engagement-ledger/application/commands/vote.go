package commands

import (
	"context"
	"fmt"
	"strings"

	application "civicpulse/contexts/community-engagement/engagement-ledger/application"
	"civicpulse/contexts/community-engagement/engagement-ledger/domain/entities"
	domainerrors "civicpulse/contexts/community-engagement/engagement-ledger/domain/errors"
	"civicpulse/contexts/community-engagement/engagement-ledger/ports"
)

type CastVoteCommand struct {
	IssueID  string
	UserID   string
	VoteType entities.VoteType
}

type CastVoteResult struct {
	Applied       bool
	Upvotes       int
	Confirmations int
	NewCount      int
	UrgencyScore  int
}

// CastVote toggles a (issue, user, voteType) vote. A first call casts the
// vote; an identical repeat retracts it and reverses the exact karma it
// granted. Counts, urgency, karma, and the outbox event land in one commit.
func (uc LedgerUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (CastVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	issueID := strings.TrimSpace(cmd.IssueID)
	userID := strings.TrimSpace(cmd.UserID)
	if issueID == "" || userID == "" || !cmd.VoteType.Valid() {
		logger.Warn("vote rejected by validation",
			"event", "ledger_vote_invalid",
			"module", "community-engagement/engagement-ledger",
			"layer", "application",
			"issue_id", issueID,
			"user_id", userID,
			"vote_type", string(cmd.VoteType),
		)
		return CastVoteResult{}, domainerrors.ErrInvalidVoteInput
	}

	unlock := uc.lock("vote/" + issueID + "/" + userID + "/" + string(cmd.VoteType))
	defer unlock()

	engagement, err := uc.Engagements.GetEngagement(ctx, issueID)
	if err != nil {
		return CastVoteResult{}, err
	}
	if engagement.Status.Terminal() {
		return CastVoteResult{}, domainerrors.ErrIssueTerminal
	}

	existing, found, err := uc.Engagements.GetVote(ctx, issueID, userID, cmd.VoteType)
	if err != nil {
		return CastVoteResult{}, err
	}

	now := uc.now()
	mutation := ports.VoteMutation{Applied: !found}
	if found {
		mutation.Vote = existing
		switch cmd.VoteType {
		case entities.VoteTypeUpvote:
			engagement.Upvotes = max(0, engagement.Upvotes-1)
		case entities.VoteTypeConfirm:
			engagement.Confirmations = max(0, engagement.Confirmations-1)
		}
	} else {
		voteID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return CastVoteResult{}, fmt.Errorf("generate vote id: %w", err)
		}
		mutation.Vote = entities.Vote{
			VoteID:   voteID,
			IssueID:  issueID,
			UserID:   userID,
			VoteType: cmd.VoteType,
			CastAt:   now,
		}
		switch cmd.VoteType {
		case entities.VoteTypeUpvote:
			engagement.Upvotes++
		case entities.VoteTypeConfirm:
			engagement.Confirmations++
		}
	}

	engagement.Recompute()
	engagement.UpdatedAt = now
	mutation.Engagement = engagement
	mutation.Karma = voteKarmaDeltas(engagement.ReporterID, mutation.Vote, mutation.Applied)

	eventType := EventVoteCast
	if !mutation.Applied {
		eventType = EventVoteRetracted
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return CastVoteResult{}, fmt.Errorf("generate event id: %w", err)
	}
	mutation.Event = newLedgerEnvelope(eventID, eventType, issueID, now, map[string]any{
		"issue_id":      issueID,
		"user_id":       userID,
		"vote_type":     string(cmd.VoteType),
		"upvotes":       engagement.Upvotes,
		"confirmations": engagement.Confirmations,
		"urgency_score": engagement.UrgencyScore,
	})

	if err := uc.Engagements.CommitVoteToggle(ctx, mutation); err != nil {
		return CastVoteResult{}, err
	}

	logger.Info("vote toggled",
		"event", "ledger_vote_toggled",
		"module", "community-engagement/engagement-ledger",
		"layer", "application",
		"issue_id", issueID,
		"user_id", userID,
		"vote_type", string(cmd.VoteType),
		"applied", mutation.Applied,
		"urgency_score", engagement.UrgencyScore,
	)

	uc.evaluateBadges(ctx, userID)
	if cmd.VoteType == entities.VoteTypeUpvote && engagement.ReporterID != userID {
		uc.evaluateBadges(ctx, engagement.ReporterID)
	}

	result := CastVoteResult{
		Applied:       mutation.Applied,
		Upvotes:       engagement.Upvotes,
		Confirmations: engagement.Confirmations,
		UrgencyScore:  engagement.UrgencyScore,
	}
	if cmd.VoteType == entities.VoteTypeUpvote {
		result.NewCount = engagement.Upvotes
	} else {
		result.NewCount = engagement.Confirmations
	}
	return result, nil
}

// voteKarmaDeltas mirrors cast and retraction exactly: the voter's +1 and,
// on upvotes, the reporter's +2 flip sign when the vote is removed. Cast and
// retraction write distinct event keys so each log row identifies one event.
func voteKarmaDeltas(reporterID string, vote entities.Vote, applied bool) []ports.KarmaDelta {
	sign := 1
	voterReason := "vote cast"
	voterKey := "vote_cast:" + vote.VoteID
	reporterReason := "upvote received"
	reporterKey := "upvote_received:" + vote.VoteID
	if !applied {
		sign = -1
		voterReason = "vote retracted"
		voterKey = "vote_retracted:" + vote.VoteID
		reporterReason = "upvote retracted"
		reporterKey = "upvote_retracted:" + vote.VoteID
	}

	counter := entities.CounterUpvotesCast
	if vote.VoteType == entities.VoteTypeConfirm {
		counter = entities.CounterConfirmsCast
	}

	deltas := []ports.KarmaDelta{{
		UserID:       vote.UserID,
		Delta:        sign * entities.KarmaVoteCast,
		Reason:       voterReason,
		EventKey:     voterKey,
		Counter:      counter,
		CounterDelta: sign,
	}}
	if vote.VoteType == entities.VoteTypeUpvote && reporterID != "" {
		deltas = append(deltas, ports.KarmaDelta{
			UserID:   reporterID,
			Delta:    sign * entities.KarmaUpvoteReceive,
			Reason:   reporterReason,
			EventKey: reporterKey,
		})
	}
	return deltas
}
