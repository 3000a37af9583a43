package httpadapter

import (
	"context"
	"log/slog"

	"civicpulse/contexts/civic-reporting/issue-service/application"
	"civicpulse/contexts/civic-reporting/issue-service/domain/entities"
	httptransport "civicpulse/contexts/civic-reporting/issue-service/transport/http"
)

type Handler struct {
	Issues application.IssueUseCase
	Logger *slog.Logger
}

func (h Handler) CreateIssueHandler(
	ctx context.Context,
	userID string,
	req httptransport.CreateIssueRequest,
) (httptransport.IssueResponse, error) {
	issue, err := h.Issues.CreateIssue(ctx, application.CreateIssueCommand{
		ReporterID:  userID,
		Title:       req.Title,
		Description: req.Description,
		Category:    entities.Category(req.Category),
		Priority:    entities.Priority(req.Priority),
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Address:     req.Address,
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		return httptransport.IssueResponse{}, err
	}
	response := issueResponse(issue)
	response.Status = "submitted"
	return response, nil
}

func (h Handler) UpdateStatusHandler(
	ctx context.Context,
	issueID string,
	userID string,
	userRole string,
	req httptransport.UpdateStatusRequest,
) error {
	return h.Issues.UpdateStatus(ctx, application.UpdateStatusCommand{
		IssueID:   issueID,
		ActorID:   userID,
		ActorRole: userRole,
		From:      req.From,
		To:        req.To,
	})
}

func (h Handler) GetIssueHandler(ctx context.Context, issueID string) (httptransport.IssueResponse, error) {
	detail, err := h.Issues.GetIssue(ctx, issueID)
	if err != nil {
		return httptransport.IssueResponse{}, err
	}
	return detailResponse(detail), nil
}

func (h Handler) ListIssuesHandler(
	ctx context.Context,
	category string,
	status string,
	reporterID string,
	limit int,
) (httptransport.IssueListResponse, error) {
	details, err := h.Issues.ListIssues(ctx, application.ListIssuesQuery{
		Category:   entities.Category(category),
		Status:     status,
		ReporterID: reporterID,
		Limit:      limit,
	})
	if err != nil {
		return httptransport.IssueListResponse{}, err
	}
	items := make([]httptransport.IssueResponse, 0, len(details))
	for _, detail := range details {
		items = append(items, detailResponse(detail))
	}
	return httptransport.IssueListResponse{Items: items}, nil
}

func (h Handler) NearbyHandler(
	ctx context.Context,
	latitude float64,
	longitude float64,
	radiusKm float64,
	limit int,
) (httptransport.NearbyListResponse, error) {
	nearby, err := h.Issues.Nearby(ctx, application.NearbyQuery{
		Latitude:  latitude,
		Longitude: longitude,
		RadiusKm:  radiusKm,
		Limit:     limit,
	})
	if err != nil {
		return httptransport.NearbyListResponse{}, err
	}
	items := make([]httptransport.NearbyIssueResponse, 0, len(nearby))
	for _, item := range nearby {
		items = append(items, httptransport.NearbyIssueResponse{
			Issue:      issueResponse(item.Issue),
			DistanceKm: item.DistanceKm,
		})
	}
	return httptransport.NearbyListResponse{Items: items}, nil
}

func issueResponse(issue entities.Issue) httptransport.IssueResponse {
	return httptransport.IssueResponse{
		IssueID:       issue.IssueID,
		ReporterID:    issue.ReporterID,
		Title:         issue.Title,
		Description:   issue.Description,
		Category:      string(issue.Category),
		CategoryLabel: issue.Category.DisplayLabel(),
		Department:    issue.Department,
		Priority:      string(issue.Priority),
		Latitude:      issue.Latitude,
		Longitude:     issue.Longitude,
		Address:       issue.Address,
		PhotoURL:      issue.PhotoURL,
		CreatedAt:     issue.CreatedAt,
		UpdatedAt:     issue.UpdatedAt,
	}
}

func detailResponse(detail application.IssueDetail) httptransport.IssueResponse {
	response := issueResponse(detail.Issue)
	response.Status = detail.Engagement.Status
	response.Upvotes = detail.Engagement.Upvotes
	response.Confirmations = detail.Engagement.Confirmations
	response.UrgencyScore = detail.Engagement.UrgencyScore
	return response
}
