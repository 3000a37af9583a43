package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"civicpulse/contexts/community-engagement/engagement-ledger/adapters/memory"
	"civicpulse/contexts/community-engagement/engagement-ledger/application/commands"
	"civicpulse/contexts/community-engagement/engagement-ledger/domain/entities"
	domainerrors "civicpulse/contexts/community-engagement/engagement-ledger/domain/errors"
	"civicpulse/internal/shared/keymutex"
)

func TestLeaderboardRanksByKarma(t *testing.T) {
	store := memory.NewStore()
	clock := &fakeClock{now: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)}
	ledger := commands.LedgerUseCase{
		Engagements: store,
		Karma:       store,
		Locks:       keymutex.New(),
		Clock:       clock,
		IDGen:       &seqIDGen{},
	}
	karma := KarmaUseCase{Karma: store}

	// alice reports two issues (20), bob reports one and upvotes one of
	// alice's (10 + 1, paying alice +2).
	for _, issueID := range []string{"a1", "a2"} {
		if err := ledger.OnIssueCreated(context.Background(), commands.IssueCreatedCommand{
			IssueID: issueID, ReporterID: "alice",
		}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	if err := ledger.OnIssueCreated(context.Background(), commands.IssueCreatedCommand{
		IssueID: "b1", ReporterID: "bob",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := ledger.CastVote(context.Background(), commands.CastVoteCommand{
		IssueID: "a1", UserID: "bob", VoteType: entities.VoteTypeUpvote,
	}); err != nil {
		t.Fatalf("vote: %v", err)
	}

	entries, err := karma.Leaderboard(context.Background(), 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(entries))
	}
	if entries[0].Account.UserID != "alice" || entries[0].Account.Karma != 22 || entries[0].Rank != 1 {
		t.Fatalf("unexpected leader: %+v", entries[0])
	}
	if entries[1].Account.UserID != "bob" || entries[1].Account.Karma != 11 {
		t.Fatalf("unexpected runner-up: %+v", entries[1])
	}
}

func TestStatsUnknownUser(t *testing.T) {
	karma := KarmaUseCase{Karma: memory.NewStore()}

	_, err := karma.Stats(context.Background(), "ghost")
	if !errors.Is(err, domainerrors.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
