package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"civicpulse/contexts/community-engagement/engagement-ledger/application/commands"
	"civicpulse/contexts/community-engagement/engagement-ledger/application/queries"
	"civicpulse/contexts/community-engagement/engagement-ledger/domain/entities"
	httptransport "civicpulse/contexts/community-engagement/engagement-ledger/transport/http"
)

type Handler struct {
	Ledger commands.LedgerUseCase
	Feed   queries.FeedUseCase
	Karma  queries.KarmaUseCase
	Logger *slog.Logger
}

func (h Handler) CastVoteHandler(
	ctx context.Context,
	issueID string,
	userID string,
	req httptransport.CastVoteRequest,
) (httptransport.VoteResponse, error) {
	result, err := h.Ledger.CastVote(ctx, commands.CastVoteCommand{
		IssueID:  issueID,
		UserID:   userID,
		VoteType: entities.VoteType(req.VoteType),
	})
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return httptransport.VoteResponse{
		IssueID:       issueID,
		VoteType:      req.VoteType,
		Applied:       result.Applied,
		NewCount:      result.NewCount,
		Upvotes:       result.Upvotes,
		Confirmations: result.Confirmations,
		UrgencyScore:  result.UrgencyScore,
	}, nil
}

func (h Handler) CreateCommentHandler(
	ctx context.Context,
	issueID string,
	userID string,
	req httptransport.CreateCommentRequest,
) (httptransport.CommentResponse, error) {
	comment, err := h.Ledger.RecordComment(ctx, commands.RecordCommentCommand{
		IssueID: issueID,
		UserID:  userID,
		Text:    req.Text,
	})
	if err != nil {
		return httptransport.CommentResponse{}, err
	}
	return commentResponse(comment), nil
}

func (h Handler) ListCommentsHandler(ctx context.Context, issueID string, newestFirst bool) (httptransport.CommentListResponse, error) {
	comments, err := h.Feed.Comments(ctx, issueID, newestFirst)
	if err != nil {
		return httptransport.CommentListResponse{}, err
	}
	items := make([]httptransport.CommentResponse, 0, len(comments))
	for _, comment := range comments {
		items = append(items, commentResponse(comment))
	}
	return httptransport.CommentListResponse{Items: items}, nil
}

func (h Handler) EngagementHandler(ctx context.Context, issueID string) (httptransport.EngagementResponse, error) {
	engagement, err := h.Feed.Engagement(ctx, issueID)
	if err != nil {
		return httptransport.EngagementResponse{}, err
	}
	return httptransport.EngagementResponse{
		IssueID:       engagement.IssueID,
		ReporterID:    engagement.ReporterID,
		Upvotes:       engagement.Upvotes,
		Confirmations: engagement.Confirmations,
		UrgencyScore:  engagement.UrgencyScore,
		Status:        string(engagement.Status),
		CreatedAt:     engagement.CreatedAt,
		UpdatedAt:     engagement.UpdatedAt,
	}, nil
}

func (h Handler) TrendingHandler(ctx context.Context, window time.Duration, limit int) (httptransport.TrendingResponse, error) {
	items, err := h.Feed.Trending(ctx, queries.TrendingQuery{Window: window, Limit: limit})
	if err != nil {
		return httptransport.TrendingResponse{}, err
	}
	if window <= 0 {
		window = queries.DefaultTrendingWindow
	}
	response := httptransport.TrendingResponse{
		WindowHours: int(window / time.Hour),
		Items:       make([]httptransport.TrendingItem, 0, len(items)),
	}
	for _, item := range items {
		response.Items = append(response.Items, httptransport.TrendingItem{
			IssueID:       item.Engagement.IssueID,
			WindowUpvotes: item.WindowUpvotes,
			Upvotes:       item.Engagement.Upvotes,
			Confirmations: item.Engagement.Confirmations,
			UrgencyScore:  item.Engagement.UrgencyScore,
			Status:        string(item.Engagement.Status),
			CreatedAt:     item.Engagement.CreatedAt,
		})
	}
	return response, nil
}

func (h Handler) LeaderboardHandler(ctx context.Context, limit int) (httptransport.LeaderboardResponse, error) {
	entries, err := h.Karma.Leaderboard(ctx, limit)
	if err != nil {
		return httptransport.LeaderboardResponse{}, err
	}
	items := make([]httptransport.LeaderboardItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, httptransport.LeaderboardItem{
			Rank:   entry.Rank,
			UserID: entry.Account.UserID,
			Karma:  entry.Account.Karma,
		})
	}
	return httptransport.LeaderboardResponse{Items: items}, nil
}

func (h Handler) UserStatsHandler(ctx context.Context, userID string) (httptransport.UserStatsResponse, error) {
	stats, err := h.Karma.Stats(ctx, userID)
	if err != nil {
		return httptransport.UserStatsResponse{}, err
	}
	badges := make([]httptransport.BadgeResponse, 0, len(stats.Badges))
	for _, badge := range stats.Badges {
		badges = append(badges, httptransport.BadgeResponse{
			BadgeKey:    badge.BadgeKey,
			Name:        badge.Name,
			Description: badge.Description,
			EarnedAt:    badge.EarnedAt,
		})
	}
	return httptransport.UserStatsResponse{
		UserID:         stats.Account.UserID,
		Karma:          stats.Account.Karma,
		IssuesReported: stats.Account.IssuesReported,
		UpvotesCast:    stats.Account.UpvotesCast,
		ConfirmsCast:   stats.Account.ConfirmsCast,
		CommentsPosted: stats.Account.CommentsPosted,
		IssuesResolved: stats.Account.IssuesResolved,
		Badges:         badges,
	}, nil
}

func commentResponse(comment entities.Comment) httptransport.CommentResponse {
	return httptransport.CommentResponse{
		CommentID: comment.CommentID,
		IssueID:   comment.IssueID,
		UserID:    comment.UserID,
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt,
	}
}
