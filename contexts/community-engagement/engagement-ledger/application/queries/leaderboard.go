package queries

import (
	"context"
	"log/slog"
	"strings"

	"civicpulse/contexts/community-engagement/engagement-ledger/domain/entities"
	domainerrors "civicpulse/contexts/community-engagement/engagement-ledger/domain/errors"
	"civicpulse/contexts/community-engagement/engagement-ledger/ports"
)

const defaultLeaderboardLimit = 10

type LeaderboardEntry struct {
	Rank    int
	Account entities.KarmaAccount
}

// UserStats bundles a user's karma account with the badges they hold.
type UserStats struct {
	Account entities.KarmaAccount
	Badges  []entities.Badge
}

type KarmaUseCase struct {
	Karma  ports.KarmaRepository
	Logger *slog.Logger
}

// Leaderboard returns the top karma accounts, ranked from 1.
func (uc KarmaUseCase) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	accounts, err := uc.Karma.ListLeaderboard(ctx, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]LeaderboardEntry, 0, len(accounts))
	for i, account := range accounts {
		entries = append(entries, LeaderboardEntry{Rank: i + 1, Account: account})
	}
	return entries, nil
}

// Stats returns one user's karma account and badges.
func (uc KarmaUseCase) Stats(ctx context.Context, userID string) (UserStats, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return UserStats{}, domainerrors.ErrInvalidInput
	}
	account, found, err := uc.Karma.GetKarmaAccount(ctx, userID)
	if err != nil {
		return UserStats{}, err
	}
	if !found {
		return UserStats{}, domainerrors.ErrUserNotFound
	}
	badges, err := uc.Karma.ListBadges(ctx, userID)
	if err != nil {
		return UserStats{}, err
	}
	return UserStats{Account: account, Badges: badges}, nil
}
