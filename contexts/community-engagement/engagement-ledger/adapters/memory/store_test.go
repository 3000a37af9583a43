package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"civicpulse/contexts/community-engagement/engagement-ledger/domain/entities"
	domainerrors "civicpulse/contexts/community-engagement/engagement-ledger/domain/errors"
	"civicpulse/contexts/community-engagement/engagement-ledger/ports"
)

var testTime = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func seedEngagement(t *testing.T, store *Store, issueID string) {
	t.Helper()
	created, err := store.CreateEngagement(context.Background(), ports.EngagementCreation{
		Engagement: entities.IssueEngagement{
			IssueID:    issueID,
			ReporterID: "reporter-1",
			Status:     entities.StatusSubmitted,
			CreatedAt:  testTime,
			UpdatedAt:  testTime,
		},
	})
	if err != nil || !created {
		t.Fatalf("seed engagement: created=%v err=%v", created, err)
	}
}

func TestCreateEngagementReplay(t *testing.T) {
	store := NewStore()
	seedEngagement(t, store, "issue-1")

	created, err := store.CreateEngagement(context.Background(), ports.EngagementCreation{
		Engagement: entities.IssueEngagement{IssueID: "issue-1"},
		Karma:      []ports.KarmaDelta{{UserID: "reporter-1", Delta: 10}},
	})
	if err != nil {
		t.Fatalf("replay errored: %v", err)
	}
	if created {
		t.Fatal("replay reported created=true")
	}
	if _, found, _ := store.GetKarmaAccount(context.Background(), "reporter-1"); found {
		t.Fatal("replay must not apply karma")
	}
}

func TestCommitVoteToggleConflicts(t *testing.T) {
	store := NewStore()
	seedEngagement(t, store, "issue-1")

	vote := entities.Vote{
		VoteID:   "vote-1",
		IssueID:  "issue-1",
		UserID:   "voter-1",
		VoteType: entities.VoteTypeUpvote,
		CastAt:   testTime,
	}

	// Deleting a vote that is not there is a lost race.
	err := store.CommitVoteToggle(context.Background(), ports.VoteMutation{
		Engagement: entities.IssueEngagement{IssueID: "issue-1"},
		Vote:       vote,
		Applied:    false,
	})
	if !errors.Is(err, domainerrors.ErrConflict) {
		t.Fatalf("expected ErrConflict deleting missing vote, got %v", err)
	}

	if err := store.CommitVoteToggle(context.Background(), ports.VoteMutation{
		Engagement: entities.IssueEngagement{IssueID: "issue-1", Upvotes: 1, UrgencyScore: 2},
		Vote:       vote,
		Applied:    true,
	}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	// So is inserting over an existing one.
	err = store.CommitVoteToggle(context.Background(), ports.VoteMutation{
		Engagement: entities.IssueEngagement{IssueID: "issue-1", Upvotes: 2},
		Vote:       vote,
		Applied:    true,
	})
	if !errors.Is(err, domainerrors.ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate insert, got %v", err)
	}

	// The failed commit must not have touched the engagement row.
	engagement, _ := store.GetEngagement(context.Background(), "issue-1")
	if engagement.Upvotes != 1 {
		t.Fatalf("engagement mutated by failed commit: %+v", engagement)
	}
}

func TestKarmaFloorsAtZero(t *testing.T) {
	store := NewStore()
	seedEngagement(t, store, "issue-1")

	mutation := ports.CommentMutation{
		Comment: entities.Comment{CommentID: "c1", IssueID: "issue-1", UserID: "u1", Text: "x", CreatedAt: testTime},
		Karma:   []ports.KarmaDelta{{UserID: "u1", Delta: -5, Reason: "test"}},
	}
	if err := store.CommitComment(context.Background(), mutation); err != nil {
		t.Fatalf("commit: %v", err)
	}

	account, found, _ := store.GetKarmaAccount(context.Background(), "u1")
	if !found || account.Karma != 0 {
		t.Fatalf("karma should floor at zero, got %+v (found=%v)", account, found)
	}
	if logs := store.KarmaLog(); len(logs) != 1 || logs[0].Delta != -5 {
		t.Fatalf("audit log should record the raw delta, got %+v", logs)
	}
}

func TestCategoryReportsTrackPerCategory(t *testing.T) {
	store := NewStore()

	deltas := []ports.KarmaDelta{
		{UserID: "u1", Delta: 10, Counter: entities.CounterIssuesReported, CounterDelta: 1, ReportCategory: "parks"},
		{UserID: "u1", Delta: 10, Counter: entities.CounterIssuesReported, CounterDelta: 1, ReportCategory: "parks"},
		{UserID: "u1", Delta: 10, Counter: entities.CounterIssuesReported, CounterDelta: 1, ReportCategory: "traffic"},
	}
	for i, delta := range deltas {
		created, err := store.CreateEngagement(context.Background(), ports.EngagementCreation{
			Engagement: entities.IssueEngagement{IssueID: "issue-" + string(rune('a'+i)), CreatedAt: testTime},
			Karma:      []ports.KarmaDelta{delta},
		})
		if err != nil || !created {
			t.Fatalf("seed %d: created=%v err=%v", i, created, err)
		}
	}

	account, found, _ := store.GetKarmaAccount(context.Background(), "u1")
	if !found || account.IssuesReported != 3 {
		t.Fatalf("issues_reported = %d (found=%v), want 3", account.IssuesReported, found)
	}
	if account.ReportsInCategory("parks") != 2 || account.ReportsInCategory("traffic") != 1 {
		t.Fatalf("category reports wrong: %+v", account.CategoryReports)
	}
	if account.ReportsInCategory("sanitation") != 0 {
		t.Fatalf("untouched category should be zero: %+v", account.CategoryReports)
	}
}

func TestOutboxLifecycle(t *testing.T) {
	store := NewStore()
	seedEngagement(t, store, "issue-1")

	mutation := ports.CommentMutation{
		Comment: entities.Comment{CommentID: "c1", IssueID: "issue-1", UserID: "u1", Text: "x", CreatedAt: testTime},
		Event: &ports.EventEnvelope{
			EventID:      "evt-1",
			EventType:    "engagement.comment.recorded",
			PartitionKey: "issue-1",
			OccurredAt:   testTime,
		},
	}
	if err := store.CommitComment(context.Background(), mutation); err != nil {
		t.Fatalf("commit: %v", err)
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil || len(pending) != 1 {
		t.Fatalf("pending = %v (err %v), want one row", pending, err)
	}
	if pending[0].EventType != "engagement.comment.recorded" || pending[0].PartitionKey != "issue-1" {
		t.Fatalf("unexpected outbox row: %+v", pending[0])
	}

	if err := store.MarkOutboxPublished(context.Background(), pending[0].OutboxID, testTime.Add(time.Second)); err != nil {
		t.Fatalf("mark published: %v", err)
	}
	pending, _ = store.ListPendingOutbox(context.Background(), 10)
	if len(pending) != 0 {
		t.Fatalf("published row still pending: %+v", pending)
	}

	if err := store.MarkOutboxPublished(context.Background(), "no-such-row", testTime); err == nil {
		t.Fatal("expected error marking unknown outbox row")
	}
}

func TestGrantBadgeDeduplicates(t *testing.T) {
	store := NewStore()
	badge := entities.Badge{
		BadgeID:  "b1",
		UserID:   "u1",
		BadgeKey: "first_report",
		Name:     "First Steps",
		EarnedAt: testTime,
	}

	granted, err := store.GrantBadge(context.Background(), badge)
	if err != nil || !granted {
		t.Fatalf("first grant: granted=%v err=%v", granted, err)
	}
	granted, err = store.GrantBadge(context.Background(), badge)
	if err != nil || granted {
		t.Fatalf("second grant should dedupe: granted=%v err=%v", granted, err)
	}

	badges, _ := store.ListBadges(context.Background(), "u1")
	if len(badges) != 1 {
		t.Fatalf("expected one badge, got %+v", badges)
	}
}

func TestListVotesSinceFiltersTypeAndTime(t *testing.T) {
	store := NewStore()
	seedEngagement(t, store, "issue-1")

	votes := []entities.Vote{
		{VoteID: "v1", IssueID: "issue-1", UserID: "u1", VoteType: entities.VoteTypeUpvote, CastAt: testTime.Add(-2 * time.Hour)},
		{VoteID: "v2", IssueID: "issue-1", UserID: "u2", VoteType: entities.VoteTypeUpvote, CastAt: testTime},
		{VoteID: "v3", IssueID: "issue-1", UserID: "u3", VoteType: entities.VoteTypeConfirm, CastAt: testTime},
	}
	upvotes := 0
	for _, vote := range votes {
		if vote.VoteType == entities.VoteTypeUpvote {
			upvotes++
		}
		if err := store.CommitVoteToggle(context.Background(), ports.VoteMutation{
			Engagement: entities.IssueEngagement{IssueID: "issue-1", Upvotes: upvotes},
			Vote:       vote,
			Applied:    true,
		}); err != nil {
			t.Fatalf("insert %s: %v", vote.VoteID, err)
		}
	}

	recent, err := store.ListVotesSince(context.Background(), entities.VoteTypeUpvote, testTime.Add(-time.Hour))
	if err != nil {
		t.Fatalf("list votes: %v", err)
	}
	if len(recent) != 1 || recent[0].VoteID != "v2" {
		t.Fatalf("expected only the recent upvote, got %+v", recent)
	}
}
