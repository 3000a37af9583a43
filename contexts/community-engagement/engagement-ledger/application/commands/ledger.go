package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "civicpulse/contexts/community-engagement/engagement-ledger/application"
	"civicpulse/contexts/community-engagement/engagement-ledger/domain/entities"
	"civicpulse/contexts/community-engagement/engagement-ledger/ports"
	"civicpulse/internal/shared/keymutex"
)

// LedgerUseCase orchestrates the engagement write model: vote toggles,
// comments, and issue lifecycle hooks. Calls touching the same
// (issue, user, voteType) key serialize through Locks; each logical
// operation commits through a single repository call so counts, urgency,
// and karma can never be observed half-applied.
type LedgerUseCase struct {
	Engagements ports.EngagementRepository
	Karma       ports.KarmaRepository
	Locks       *keymutex.Map
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Notifier    ports.Notifier
	Logger      *slog.Logger
}

func (uc LedgerUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}

func (uc LedgerUseCase) lock(key string) func() {
	if uc.Locks == nil {
		return func() {}
	}
	return uc.Locks.Lock(key)
}

// evaluateBadges grants any newly earned badges for the user. Grants are
// best-effort: a failure is logged and never unwinds the triggering commit.
func (uc LedgerUseCase) evaluateBadges(ctx context.Context, userID string) {
	logger := application.ResolveLogger(uc.Logger)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return
	}

	account, found, err := uc.Karma.GetKarmaAccount(ctx, userID)
	if err != nil {
		logger.Warn("badge evaluation account lookup failed",
			"event", "ledger_badge_lookup_failed",
			"module", "community-engagement/engagement-ledger",
			"layer", "application",
			"user_id", userID,
			"error", err.Error(),
		)
		return
	}
	if !found {
		return
	}

	for _, rule := range entities.BadgeRules {
		if !rule.Qualifies(account) {
			continue
		}
		badgeID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			logger.Warn("badge id generation failed",
				"event", "ledger_badge_id_failed",
				"module", "community-engagement/engagement-ledger",
				"layer", "application",
				"user_id", userID,
				"badge_key", rule.Key,
				"error", err.Error(),
			)
			continue
		}
		granted, err := uc.Karma.GrantBadge(ctx, entities.Badge{
			BadgeID:     badgeID,
			UserID:      userID,
			BadgeKey:    rule.Key,
			Name:        rule.Name,
			Description: rule.Description,
			EarnedAt:    uc.now(),
		})
		if err != nil {
			logger.Warn("badge grant failed",
				"event", "ledger_badge_grant_failed",
				"module", "community-engagement/engagement-ledger",
				"layer", "application",
				"user_id", userID,
				"badge_key", rule.Key,
				"error", err.Error(),
			)
			continue
		}
		if granted {
			logger.Info("badge granted",
				"event", "ledger_badge_granted",
				"module", "community-engagement/engagement-ledger",
				"layer", "application",
				"user_id", userID,
				"badge_key", rule.Key,
			)
		}
	}
}
