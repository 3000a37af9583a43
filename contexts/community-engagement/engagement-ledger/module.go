package engagementledger

import (
	"log/slog"

	httpadapter "civicpulse/contexts/community-engagement/engagement-ledger/adapters/http"
	"civicpulse/contexts/community-engagement/engagement-ledger/adapters/memory"
	"civicpulse/contexts/community-engagement/engagement-ledger/application/commands"
	"civicpulse/contexts/community-engagement/engagement-ledger/application/queries"
	"civicpulse/contexts/community-engagement/engagement-ledger/ports"
	"civicpulse/internal/shared/keymutex"
)

type Module struct {
	Handler httpadapter.Handler
	Ledger  commands.LedgerUseCase
	Feed    queries.FeedUseCase
	Store   *memory.Store
}

type Dependencies struct {
	Engagements ports.EngagementRepository
	Karma       ports.KarmaRepository
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Notifier    ports.Notifier
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	ledgerUseCase := commands.LedgerUseCase{
		Engagements: deps.Engagements,
		Karma:       deps.Karma,
		Locks:       keymutex.New(),
		Clock:       deps.Clock,
		IDGen:       deps.IDGen,
		Notifier:    deps.Notifier,
		Logger:      deps.Logger,
	}
	feedUseCase := queries.FeedUseCase{
		Engagements: deps.Engagements,
		Clock:       deps.Clock,
		Logger:      deps.Logger,
	}
	karmaUseCase := queries.KarmaUseCase{
		Karma:  deps.Karma,
		Logger: deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Ledger: ledgerUseCase,
			Feed:   feedUseCase,
			Karma:  karmaUseCase,
			Logger: deps.Logger,
		},
		Ledger: ledgerUseCase,
		Feed:   feedUseCase,
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Engagements: store,
		Karma:       store,
		Clock:       memory.SystemClock{},
		IDGen:       memory.UUIDGenerator{},
		Logger:      logger,
	})
	module.Store = store
	return module
}
