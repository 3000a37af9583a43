package queries

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"civicpulse/contexts/community-engagement/engagement-ledger/domain/entities"
	domainerrors "civicpulse/contexts/community-engagement/engagement-ledger/domain/errors"
	"civicpulse/contexts/community-engagement/engagement-ledger/ports"
)

// DefaultTrendingWindow bounds the trending feed when no window is given.
const DefaultTrendingWindow = 24 * time.Hour

// FeedItem is one trending row: the engagement record plus the upvote count
// inside the requested window.
type FeedItem struct {
	Engagement    entities.IssueEngagement
	WindowUpvotes int
}

type TrendingQuery struct {
	Window time.Duration
	Limit  int
}

// FeedUseCase answers read-only engagement queries.
type FeedUseCase struct {
	Engagements ports.EngagementRepository
	Clock       ports.Clock
	Logger      *slog.Logger
}

func (uc FeedUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}

// Trending ranks issues by upvotes received inside the window, most first.
// Ties and zero-activity issues fall back to newest createdAt so a quiet
// window still yields a usable feed.
func (uc FeedUseCase) Trending(ctx context.Context, query TrendingQuery) ([]FeedItem, error) {
	window := query.Window
	if window <= 0 {
		window = DefaultTrendingWindow
	}
	since := uc.now().Add(-window)

	votes, err := uc.Engagements.ListVotesSince(ctx, entities.VoteTypeUpvote, since)
	if err != nil {
		return nil, err
	}
	windowCounts := make(map[string]int, len(votes))
	for _, vote := range votes {
		windowCounts[vote.IssueID]++
	}

	engagements, err := uc.Engagements.ListEngagements(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]FeedItem, 0, len(engagements))
	for _, engagement := range engagements {
		items = append(items, FeedItem{
			Engagement:    engagement,
			WindowUpvotes: windowCounts[engagement.IssueID],
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].WindowUpvotes != items[j].WindowUpvotes {
			return items[i].WindowUpvotes > items[j].WindowUpvotes
		}
		if !items[i].Engagement.CreatedAt.Equal(items[j].Engagement.CreatedAt) {
			return items[i].Engagement.CreatedAt.After(items[j].Engagement.CreatedAt)
		}
		return items[i].Engagement.IssueID < items[j].Engagement.IssueID
	})

	if query.Limit > 0 && len(items) > query.Limit {
		items = items[:query.Limit]
	}
	return items, nil
}

// Engagement returns the ledger's view of one issue.
func (uc FeedUseCase) Engagement(ctx context.Context, issueID string) (entities.IssueEngagement, error) {
	issueID = strings.TrimSpace(issueID)
	if issueID == "" {
		return entities.IssueEngagement{}, domainerrors.ErrInvalidInput
	}
	return uc.Engagements.GetEngagement(ctx, issueID)
}

// Comments lists an issue's thread, oldest first unless newestFirst is set.
func (uc FeedUseCase) Comments(ctx context.Context, issueID string, newestFirst bool) ([]entities.Comment, error) {
	issueID = strings.TrimSpace(issueID)
	if issueID == "" {
		return nil, domainerrors.ErrInvalidInput
	}
	if _, err := uc.Engagements.GetEngagement(ctx, issueID); err != nil {
		return nil, err
	}
	return uc.Engagements.ListComments(ctx, issueID, newestFirst)
}
