// Package application holds the issue-service use cases.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"civicpulse/contexts/civic-reporting/issue-service/domain/entities"
	domainerrors "civicpulse/contexts/civic-reporting/issue-service/domain/errors"
	"civicpulse/contexts/civic-reporting/issue-service/ports"
)

const (
	defaultNearbyRadiusKm = 5.0
	maxTitleLength        = 200
	maxDescriptionLength  = 5000
)

// staffRoles may change issue status.
var staffRoles = map[string]bool{
	"staff": true,
	"admin": true,
}

type CreateIssueCommand struct {
	ReporterID  string
	Title       string
	Description string
	Category    entities.Category
	Priority    entities.Priority
	Latitude    float64
	Longitude   float64
	Address     string
	PhotoURL    string
}

type UpdateStatusCommand struct {
	IssueID   string
	ActorID   string
	ActorRole string
	From      string
	To        string
}

// IssueDetail joins the descriptive record with the ledger's engagement view.
type IssueDetail struct {
	Issue      entities.Issue
	Engagement ports.EngagementView
}

type ListIssuesQuery struct {
	Category   entities.Category
	Status     string
	ReporterID string
	Limit      int
}

type NearbyQuery struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
	Limit     int
}

type NearbyIssue struct {
	Issue      entities.Issue
	DistanceKm float64
}

// IssueUseCase orchestrates issue intake and reads. All engagement state is
// delegated to the ledger through the gateway.
type IssueUseCase struct {
	Issues     ports.IssueRepository
	Engagement ports.EngagementGateway
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func (uc IssueUseCase) logger() *slog.Logger {
	if uc.Logger == nil {
		return slog.Default()
	}
	return uc.Logger
}

func (uc IssueUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}

// CreateIssue stores the report and seeds its engagement record. The ledger
// seed is idempotent, so a retry after a partial failure converges.
func (uc IssueUseCase) CreateIssue(ctx context.Context, cmd CreateIssueCommand) (entities.Issue, error) {
	reporterID := strings.TrimSpace(cmd.ReporterID)
	title := strings.TrimSpace(cmd.Title)
	description := strings.TrimSpace(cmd.Description)
	if reporterID == "" || title == "" || description == "" {
		return entities.Issue{}, domainerrors.ErrInvalidIssueInput
	}
	if len(title) > maxTitleLength || len(description) > maxDescriptionLength {
		return entities.Issue{}, domainerrors.ErrInvalidIssueInput
	}
	if !cmd.Category.Valid() {
		return entities.Issue{}, domainerrors.ErrInvalidIssueInput
	}
	priority := cmd.Priority
	if priority == "" {
		priority = entities.PriorityMedium
	}
	if !priority.Valid() {
		return entities.Issue{}, domainerrors.ErrInvalidIssueInput
	}
	if !entities.ValidCoordinates(cmd.Latitude, cmd.Longitude) {
		return entities.Issue{}, domainerrors.ErrInvalidIssueInput
	}

	issueID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Issue{}, fmt.Errorf("generate issue id: %w", err)
	}
	now := uc.now()
	issue := entities.Issue{
		IssueID:     issueID,
		ReporterID:  reporterID,
		Title:       title,
		Description: description,
		Category:    cmd.Category,
		Department:  cmd.Category.Department(),
		Priority:    priority,
		Latitude:    cmd.Latitude,
		Longitude:   cmd.Longitude,
		Address:     strings.TrimSpace(cmd.Address),
		PhotoURL:    strings.TrimSpace(cmd.PhotoURL),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.Issues.SaveIssue(ctx, issue); err != nil {
		return entities.Issue{}, err
	}
	if err := uc.Engagement.IssueCreated(ctx, issueID, reporterID, string(cmd.Category), now); err != nil {
		return entities.Issue{}, err
	}

	uc.logger().Info("issue created",
		"event", "issue_created",
		"module", "civic-reporting/issue-service",
		"layer", "application",
		"issue_id", issueID,
		"reporter_id", reporterID,
		"category", string(cmd.Category),
		"department", issue.Department,
	)
	return issue, nil
}

// UpdateStatus delegates the transition to the ledger after the staff check.
func (uc IssueUseCase) UpdateStatus(ctx context.Context, cmd UpdateStatusCommand) error {
	issueID := strings.TrimSpace(cmd.IssueID)
	if issueID == "" || strings.TrimSpace(cmd.To) == "" {
		return domainerrors.ErrInvalidIssueInput
	}
	if !staffRoles[strings.ToLower(strings.TrimSpace(cmd.ActorRole))] {
		uc.logger().Warn("status update forbidden",
			"event", "issue_status_forbidden",
			"module", "civic-reporting/issue-service",
			"layer", "application",
			"issue_id", issueID,
			"actor_id", strings.TrimSpace(cmd.ActorID),
		)
		return domainerrors.ErrForbidden
	}
	if _, err := uc.Issues.GetIssue(ctx, issueID); err != nil {
		return err
	}
	return uc.Engagement.StatusChanged(ctx, issueID, strings.TrimSpace(cmd.From), strings.TrimSpace(cmd.To))
}

// GetIssue returns the descriptive record joined with live engagement state.
func (uc IssueUseCase) GetIssue(ctx context.Context, issueID string) (IssueDetail, error) {
	issueID = strings.TrimSpace(issueID)
	if issueID == "" {
		return IssueDetail{}, domainerrors.ErrInvalidIssueInput
	}
	issue, err := uc.Issues.GetIssue(ctx, issueID)
	if err != nil {
		return IssueDetail{}, err
	}
	view, err := uc.Engagement.Engagement(ctx, issueID)
	if err != nil {
		return IssueDetail{}, err
	}
	return IssueDetail{Issue: issue, Engagement: view}, nil
}

// ListIssues filters by category/reporter in storage and by lifecycle status
// against the ledger view.
func (uc IssueUseCase) ListIssues(ctx context.Context, query ListIssuesQuery) ([]IssueDetail, error) {
	if query.Category != "" && !query.Category.Valid() {
		return nil, domainerrors.ErrInvalidIssueInput
	}
	issues, err := uc.Issues.ListIssues(ctx, ports.IssueFilter{
		Category:   query.Category,
		ReporterID: strings.TrimSpace(query.ReporterID),
	})
	if err != nil {
		return nil, err
	}

	status := strings.TrimSpace(query.Status)
	details := make([]IssueDetail, 0, len(issues))
	for _, issue := range issues {
		view, err := uc.Engagement.Engagement(ctx, issue.IssueID)
		if err != nil {
			return nil, err
		}
		if status != "" && view.Status != status {
			continue
		}
		details = append(details, IssueDetail{Issue: issue, Engagement: view})
		if query.Limit > 0 && len(details) >= query.Limit {
			break
		}
	}
	return details, nil
}

// Nearby returns issues within the radius, closest first. Distance is the
// flat-earth approximation; callers wanting geodesic accuracy should move to
// a geospatial index.
func (uc IssueUseCase) Nearby(ctx context.Context, query NearbyQuery) ([]NearbyIssue, error) {
	if !entities.ValidCoordinates(query.Latitude, query.Longitude) {
		return nil, domainerrors.ErrInvalidIssueInput
	}
	radius := query.RadiusKm
	if radius <= 0 {
		radius = defaultNearbyRadiusKm
	}

	issues, err := uc.Issues.ListIssues(ctx, ports.IssueFilter{})
	if err != nil {
		return nil, err
	}
	var nearby []NearbyIssue
	for _, issue := range issues {
		distance := entities.DistanceKm(query.Latitude, query.Longitude, issue.Latitude, issue.Longitude)
		if distance > radius {
			continue
		}
		nearby = append(nearby, NearbyIssue{Issue: issue, DistanceKm: distance})
	}
	sort.Slice(nearby, func(i, j int) bool {
		if nearby[i].DistanceKm != nearby[j].DistanceKm {
			return nearby[i].DistanceKm < nearby[j].DistanceKm
		}
		return nearby[i].Issue.IssueID < nearby[j].Issue.IssueID
	})
	if query.Limit > 0 && len(nearby) > query.Limit {
		nearby = nearby[:query.Limit]
	}
	return nearby, nil
}
