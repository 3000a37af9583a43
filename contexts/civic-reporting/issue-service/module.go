package issueservice

import (
	"log/slog"

	httpadapter "civicpulse/contexts/civic-reporting/issue-service/adapters/http"
	ledgergateway "civicpulse/contexts/civic-reporting/issue-service/adapters/ledger"
	"civicpulse/contexts/civic-reporting/issue-service/adapters/memory"
	"civicpulse/contexts/civic-reporting/issue-service/application"
	"civicpulse/contexts/civic-reporting/issue-service/ports"
	engagementledger "civicpulse/contexts/community-engagement/engagement-ledger"
)

type Module struct {
	Handler httpadapter.Handler
	Issues  application.IssueUseCase
	Store   *memory.Store
}

type Dependencies struct {
	Issues     ports.IssueRepository
	Engagement ports.EngagementGateway
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	issueUseCase := application.IssueUseCase{
		Issues:     deps.Issues,
		Engagement: deps.Engagement,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Logger:     deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Issues: issueUseCase,
			Logger: deps.Logger,
		},
		Issues: issueUseCase,
	}
}

// NewInMemoryModule wires the issue service against an in-memory store and
// the given ledger module.
func NewInMemoryModule(ledger engagementledger.Module, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Issues: store,
		Engagement: ledgergateway.Gateway{
			Ledger: ledger.Ledger,
			Feed:   ledger.Feed,
		},
		Clock:  memory.SystemClock{},
		IDGen:  memory.UUIDGenerator{},
		Logger: logger,
	})
	module.Store = store
	return module
}
