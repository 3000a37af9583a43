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

type RecordCommentCommand struct {
	IssueID string
	UserID  string
	Text    string
}

// RecordComment appends a comment to an existing issue's thread. Comments
// stay open on terminal issues; only the text must be non-blank.
func (uc LedgerUseCase) RecordComment(ctx context.Context, cmd RecordCommentCommand) (entities.Comment, error) {
	logger := application.ResolveLogger(uc.Logger)

	issueID := strings.TrimSpace(cmd.IssueID)
	userID := strings.TrimSpace(cmd.UserID)
	if issueID == "" || userID == "" {
		return entities.Comment{}, domainerrors.ErrInvalidInput
	}
	text := strings.TrimSpace(cmd.Text)
	if text == "" {
		logger.Warn("comment rejected by validation",
			"event", "ledger_comment_empty",
			"module", "community-engagement/engagement-ledger",
			"layer", "application",
			"issue_id", issueID,
			"user_id", userID,
		)
		return entities.Comment{}, domainerrors.ErrEmptyComment
	}

	if _, err := uc.Engagements.GetEngagement(ctx, issueID); err != nil {
		return entities.Comment{}, err
	}

	commentID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Comment{}, fmt.Errorf("generate comment id: %w", err)
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Comment{}, fmt.Errorf("generate event id: %w", err)
	}

	now := uc.now()
	comment := entities.Comment{
		CommentID: commentID,
		IssueID:   issueID,
		UserID:    userID,
		Text:      text,
		CreatedAt: now,
	}
	mutation := ports.CommentMutation{
		Comment: comment,
		Karma: []ports.KarmaDelta{{
			UserID:       userID,
			Delta:        entities.KarmaCommentPosted,
			Reason:       "comment posted",
			EventKey:     "comment:" + commentID,
			Counter:      entities.CounterCommentsPosted,
			CounterDelta: 1,
		}},
		Event: newLedgerEnvelope(eventID, EventCommentAdded, issueID, now, map[string]any{
			"issue_id":   issueID,
			"user_id":    userID,
			"comment_id": commentID,
		}),
	}

	if err := uc.Engagements.CommitComment(ctx, mutation); err != nil {
		return entities.Comment{}, err
	}

	logger.Info("comment recorded",
		"event", "ledger_comment_recorded",
		"module", "community-engagement/engagement-ledger",
		"layer", "application",
		"issue_id", issueID,
		"user_id", userID,
		"comment_id", commentID,
	)

	uc.evaluateBadges(ctx, userID)
	return comment, nil
}
