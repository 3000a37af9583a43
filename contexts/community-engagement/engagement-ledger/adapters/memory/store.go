package memory

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"civicpulse/contexts/community-engagement/engagement-ledger/domain/entities"
	domainerrors "civicpulse/contexts/community-engagement/engagement-ledger/domain/errors"
	"civicpulse/contexts/community-engagement/engagement-ledger/ports"
)

var errOutboxRowNotFound = errors.New("outbox row not found")

type outboxRecord struct {
	message     ports.OutboxMessage
	published   bool
	publishedAt time.Time
}

// Store is the in-memory ledger used by unit tests and local runs. One
// mutex guards every map so each Commit* call applies atomically.
type Store struct {
	mu          sync.RWMutex
	engagements map[string]entities.IssueEngagement
	votes       map[string]entities.Vote
	comments    map[string][]entities.Comment
	accounts    map[string]entities.KarmaAccount
	karmaLog    []entities.KarmaLogEntry
	badges      map[string]entities.Badge
	outbox      []outboxRecord
}

func NewStore() *Store {
	return &Store{
		engagements: make(map[string]entities.IssueEngagement),
		votes:       make(map[string]entities.Vote),
		comments:    make(map[string][]entities.Comment),
		accounts:    make(map[string]entities.KarmaAccount),
		badges:      make(map[string]entities.Badge),
	}
}

func voteKey(issueID, userID string, voteType entities.VoteType) string {
	return issueID + "/" + userID + "/" + string(voteType)
}

func (s *Store) GetEngagement(_ context.Context, issueID string) (entities.IssueEngagement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	engagement, ok := s.engagements[issueID]
	if !ok {
		return entities.IssueEngagement{}, domainerrors.ErrIssueNotFound
	}
	return engagement, nil
}

func (s *Store) ListEngagements(_ context.Context) ([]entities.IssueEngagement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entities.IssueEngagement, 0, len(s.engagements))
	for _, engagement := range s.engagements {
		out = append(out, engagement)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssueID < out[j].IssueID })
	return out, nil
}

func (s *Store) GetVote(_ context.Context, issueID, userID string, voteType entities.VoteType) (entities.Vote, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vote, ok := s.votes[voteKey(issueID, userID, voteType)]
	return vote, ok, nil
}

func (s *Store) ListVotesSince(_ context.Context, voteType entities.VoteType, since time.Time) ([]entities.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []entities.Vote
	for _, vote := range s.votes {
		if vote.VoteType != voteType || vote.CastAt.Before(since) {
			continue
		}
		out = append(out, vote)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VoteID < out[j].VoteID })
	return out, nil
}

func (s *Store) ListComments(_ context.Context, issueID string, newestFirst bool) ([]entities.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.comments[issueID]
	out := make([]entities.Comment, len(stored))
	copy(out, stored)
	if newestFirst {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

func (s *Store) CreateEngagement(_ context.Context, creation ports.EngagementCreation) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	issueID := creation.Engagement.IssueID
	if _, exists := s.engagements[issueID]; exists {
		return false, nil
	}
	s.engagements[issueID] = creation.Engagement
	s.applyKarmaLocked(creation.Karma, creation.Engagement.CreatedAt)
	if err := s.appendOutboxLocked(creation.Event); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) CommitVoteToggle(_ context.Context, mutation ports.VoteMutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	issueID := mutation.Engagement.IssueID
	if _, exists := s.engagements[issueID]; !exists {
		return domainerrors.ErrIssueNotFound
	}

	key := voteKey(mutation.Vote.IssueID, mutation.Vote.UserID, mutation.Vote.VoteType)
	if mutation.Applied {
		if _, exists := s.votes[key]; exists {
			return domainerrors.ErrConflict
		}
		s.votes[key] = mutation.Vote
	} else {
		if _, exists := s.votes[key]; !exists {
			return domainerrors.ErrConflict
		}
		delete(s.votes, key)
	}

	s.engagements[issueID] = mutation.Engagement
	s.applyKarmaLocked(mutation.Karma, mutation.Engagement.UpdatedAt)
	return s.appendOutboxLocked(mutation.Event)
}

func (s *Store) CommitComment(_ context.Context, mutation ports.CommentMutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	issueID := mutation.Comment.IssueID
	if _, exists := s.engagements[issueID]; !exists {
		return domainerrors.ErrIssueNotFound
	}

	s.comments[issueID] = append(s.comments[issueID], mutation.Comment)
	s.applyKarmaLocked(mutation.Karma, mutation.Comment.CreatedAt)
	return s.appendOutboxLocked(mutation.Event)
}

func (s *Store) CommitStatusChange(_ context.Context, mutation ports.StatusMutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	issueID := mutation.Engagement.IssueID
	if _, exists := s.engagements[issueID]; !exists {
		return domainerrors.ErrIssueNotFound
	}

	s.engagements[issueID] = mutation.Engagement
	s.applyKarmaLocked(mutation.Karma, mutation.Engagement.UpdatedAt)
	return s.appendOutboxLocked(mutation.Event)
}

// applyKarmaLocked folds deltas into accounts and appends audit log rows.
// Karma floors at zero; counters do the same.
func (s *Store) applyKarmaLocked(deltas []ports.KarmaDelta, at time.Time) {
	for _, delta := range deltas {
		account := s.accounts[delta.UserID]
		account.UserID = delta.UserID
		account.Karma = max(0, account.Karma+delta.Delta)
		bumpCounter(&account, delta.Counter, delta.CounterDelta)
		if delta.ReportCategory != "" {
			if account.CategoryReports == nil {
				account.CategoryReports = make(map[string]int)
			}
			account.CategoryReports[delta.ReportCategory] = max(0, account.CategoryReports[delta.ReportCategory]+delta.CounterDelta)
		}
		account.UpdatedAt = at
		s.accounts[delta.UserID] = account

		s.karmaLog = append(s.karmaLog, entities.KarmaLogEntry{
			LogID:     uuid.NewString(),
			UserID:    delta.UserID,
			Delta:     delta.Delta,
			Reason:    delta.Reason,
			EventKey:  delta.EventKey,
			CreatedAt: at,
		})
	}
}

func bumpCounter(account *entities.KarmaAccount, counter entities.ActivityCounter, delta int) {
	switch counter {
	case entities.CounterIssuesReported:
		account.IssuesReported = max(0, account.IssuesReported+delta)
	case entities.CounterUpvotesCast:
		account.UpvotesCast = max(0, account.UpvotesCast+delta)
	case entities.CounterConfirmsCast:
		account.ConfirmsCast = max(0, account.ConfirmsCast+delta)
	case entities.CounterCommentsPosted:
		account.CommentsPosted = max(0, account.CommentsPosted+delta)
	case entities.CounterIssuesResolved:
		account.IssuesResolved = max(0, account.IssuesResolved+delta)
	}
}

func (s *Store) appendOutboxLocked(event *ports.EventEnvelope) error {
	if event == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	s.outbox = append(s.outbox, outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     uuid.NewString(),
			EventType:    event.EventType,
			PartitionKey: event.PartitionKey,
			Payload:      payload,
			CreatedAt:    event.OccurredAt,
		},
	})
	return nil
}

func (s *Store) GetKarmaAccount(_ context.Context, userID string) (entities.KarmaAccount, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[userID]
	return account, ok, nil
}

func (s *Store) ListLeaderboard(_ context.Context, limit int) ([]entities.KarmaAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entities.KarmaAccount, 0, len(s.accounts))
	for _, account := range s.accounts {
		out = append(out, account)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Karma != out[j].Karma {
			return out[i].Karma > out[j].Karma
		}
		return out[i].UserID < out[j].UserID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ListBadges(_ context.Context, userID string) ([]entities.Badge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []entities.Badge
	for _, badge := range s.badges {
		if badge.UserID == userID {
			out = append(out, badge)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EarnedAt.Equal(out[j].EarnedAt) {
			return out[i].EarnedAt.Before(out[j].EarnedAt)
		}
		return out[i].BadgeKey < out[j].BadgeKey
	})
	return out, nil
}

func (s *Store) GrantBadge(_ context.Context, badge entities.Badge) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := badge.UserID + "/" + badge.BadgeKey
	if _, exists := s.badges[key]; exists {
		return false, nil
	}
	s.badges[key] = badge
	return true, nil
}

// KarmaLog exposes the audit rows for assertions in tests.
func (s *Store) KarmaLog() []entities.KarmaLogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entities.KarmaLogEntry, len(s.karmaLog))
	copy(out, s.karmaLog)
	return out
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ports.OutboxMessage
	for _, record := range s.outbox {
		if record.published {
			continue
		}
		out = append(out, record.message)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.outbox {
		if s.outbox[i].message.OutboxID == outboxID {
			s.outbox[i].published = true
			s.outbox[i].publishedAt = publishedAt
			return nil
		}
	}
	return errOutboxRowNotFound
}

// SystemClock satisfies the clock port with wall time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator issues UUIDv4 identifiers.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(context.Context) (string, error) { return uuid.NewString(), nil }

var (
	_ ports.EngagementRepository = (*Store)(nil)
	_ ports.KarmaRepository      = (*Store)(nil)
	_ ports.OutboxRepository     = (*Store)(nil)
	_ ports.Clock                = SystemClock{}
	_ ports.IDGenerator          = UUIDGenerator{}
)
