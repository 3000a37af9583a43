// Package ledgergateway bridges the issue service to the engagement ledger
// without crossing context boundaries below the module surface.
package ledgergateway

import (
	"context"
	"time"

	ledgercommands "civicpulse/contexts/community-engagement/engagement-ledger/application/commands"
	ledgerqueries "civicpulse/contexts/community-engagement/engagement-ledger/application/queries"
	ledgerentities "civicpulse/contexts/community-engagement/engagement-ledger/domain/entities"

	"civicpulse/contexts/civic-reporting/issue-service/ports"
)

type Gateway struct {
	Ledger ledgercommands.LedgerUseCase
	Feed   ledgerqueries.FeedUseCase
}

func (g Gateway) IssueCreated(ctx context.Context, issueID, reporterID, category string, createdAt time.Time) error {
	return g.Ledger.OnIssueCreated(ctx, ledgercommands.IssueCreatedCommand{
		IssueID:    issueID,
		ReporterID: reporterID,
		Category:   category,
		CreatedAt:  createdAt,
	})
}

func (g Gateway) StatusChanged(ctx context.Context, issueID, from, to string) error {
	return g.Ledger.OnStatusChanged(ctx, ledgercommands.StatusChangeCommand{
		IssueID: issueID,
		From:    ledgerentities.IssueStatus(from),
		To:      ledgerentities.IssueStatus(to),
	})
}

func (g Gateway) Engagement(ctx context.Context, issueID string) (ports.EngagementView, error) {
	engagement, err := g.Feed.Engagement(ctx, issueID)
	if err != nil {
		return ports.EngagementView{}, err
	}
	return ports.EngagementView{
		Upvotes:       engagement.Upvotes,
		Confirmations: engagement.Confirmations,
		UrgencyScore:  engagement.UrgencyScore,
		Status:        string(engagement.Status),
	}, nil
}

var _ ports.EngagementGateway = Gateway{}
