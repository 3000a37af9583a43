package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"civicpulse/contexts/community-engagement/engagement-ledger/domain/entities"
	domainerrors "civicpulse/contexts/community-engagement/engagement-ledger/domain/errors"
)

func TestRecordCommentRejectsBlankText(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)}
	uc, _ := newTestLedger(clock)
	seedIssue(t, uc, "issue-1", "reporter-1")

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := uc.RecordComment(context.Background(), RecordCommentCommand{
			IssueID: "issue-1",
			UserID:  "user-1",
			Text:    text,
		})
		if !errors.Is(err, domainerrors.ErrEmptyComment) {
			t.Fatalf("expected ErrEmptyComment for %q, got %v", text, err)
		}
	}
}

func TestRecordCommentUnknownIssue(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)}
	uc, _ := newTestLedger(clock)

	_, err := uc.RecordComment(context.Background(), RecordCommentCommand{
		IssueID: "missing",
		UserID:  "user-1",
		Text:    "hello",
	})
	if !errors.Is(err, domainerrors.ErrIssueNotFound) {
		t.Fatalf("expected ErrIssueNotFound, got %v", err)
	}
}

func TestRecordCommentAppendsAndPaysKarma(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)}
	uc, store := newTestLedger(clock)
	seedIssue(t, uc, "issue-1", "reporter-1")

	first, err := uc.RecordComment(context.Background(), RecordCommentCommand{
		IssueID: "issue-1",
		UserID:  "user-1",
		Text:    "  streetlight has been out for a week  ",
	})
	if err != nil {
		t.Fatalf("first comment failed: %v", err)
	}
	if first.Text != "streetlight has been out for a week" {
		t.Fatalf("text not trimmed: %q", first.Text)
	}

	clock.Advance(time.Minute)
	if _, err := uc.RecordComment(context.Background(), RecordCommentCommand{
		IssueID: "issue-1",
		UserID:  "user-1",
		Text:    "still dark tonight",
	}); err != nil {
		t.Fatalf("second comment failed: %v", err)
	}

	oldestFirst, err := store.ListComments(context.Background(), "issue-1", false)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(oldestFirst) != 2 || oldestFirst[0].CommentID != first.CommentID {
		t.Fatalf("unexpected chronological order: %+v", oldestFirst)
	}
	newestFirst, _ := store.ListComments(context.Background(), "issue-1", true)
	if newestFirst[0].CommentID == first.CommentID {
		t.Fatalf("newest-first order not reversed: %+v", newestFirst)
	}

	account := karmaOf(t, store, "user-1")
	if account.Karma != 2 || account.CommentsPosted != 2 {
		t.Fatalf("commenter karma = %+v, want 2 points over 2 comments", account)
	}
}

func TestRecordCommentAllowedOnTerminalIssue(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)}
	uc, _ := newTestLedger(clock)
	seedIssue(t, uc, "issue-1", "reporter-1")

	if err := uc.OnStatusChanged(context.Background(), StatusChangeCommand{
		IssueID: "issue-1", To: entities.StatusRejected,
	}); err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	if _, err := uc.RecordComment(context.Background(), RecordCommentCommand{
		IssueID: "issue-1",
		UserID:  "user-1",
		Text:    "why was this rejected?",
	}); err != nil {
		t.Fatalf("comments should stay open on terminal issues, got %v", err)
	}
}
